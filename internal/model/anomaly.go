package model

// AnomalyType identifies the rule that flagged a transaction.
type AnomalyType string

// Anomaly type constants, in detection precedence order.
const (
	AnomalyUnusuallyHigh   AnomalyType = "UNUSUALLY_HIGH"
	AnomalyUnusualMerchant AnomalyType = "UNUSUAL_MERCHANT"
	AnomalyUnusualTime     AnomalyType = "UNUSUAL_TIME"
	AnomalyUnusualCategory AnomalyType = "UNUSUAL_CATEGORY"
)

// Valid reports whether the anomaly type is one of the known variants.
func (a AnomalyType) Valid() bool {
	switch a {
	case AnomalyUnusuallyHigh, AnomalyUnusualMerchant, AnomalyUnusualTime, AnomalyUnusualCategory:
		return true
	}
	return false
}

// Severity is the ordinal ranking used to sort anomalies for attention.
type Severity string

// Severity constants.
const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Weight returns the numeric weight used by suggestion scoring.
func (s Severity) Weight() float64 {
	switch s {
	case SeverityHigh:
		return 1.0
	case SeverityMedium:
		return 0.6
	case SeverityLow:
		return 0.3
	}
	return 0
}

// AnomalyRecord describes a single flagged transaction. Records are derived
// per analysis run and never persisted by the engine itself.
type AnomalyRecord struct {
	ID            string
	TransactionID string
	Type          AnomalyType
	Severity      Severity
	Explanation   string
	// ExpectedAmount is the historical mean for UnusuallyHigh records;
	// nil for the other anomaly types.
	ExpectedAmount *float64
}
