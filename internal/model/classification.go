// Package model defines the core domain records produced and consumed by the
// transaction intelligence engine.
package model

// CategoryAlternative is a lower-ranked candidate category for a transaction.
type CategoryAlternative struct {
	Category    string
	Subcategory string
	Confidence  float64
}

// Classification represents the engine's category assignment for a
// transaction. Confidence is always the fractional [0,1] representation;
// display percentages are a presentation concern.
type Classification struct {
	TransactionID   string
	Category        string
	Subcategory     string
	Explanation     string
	Tags            []string
	Alternatives    []CategoryAlternative // sorted descending by confidence
	Confidence      float64
	ConfirmedByUser bool // set only by an external confirmation action
}
