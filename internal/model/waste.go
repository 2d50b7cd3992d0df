package model

// WasteType classifies why a recurring charge was flagged as low-value.
type WasteType string

// Waste type constants.
const (
	WasteUnusedSubscription WasteType = "UNUSED_SUBSCRIPTION"
	WasteDuplicateService   WasteType = "DUPLICATE_SERVICE"
	WasteHighCostLowUsage   WasteType = "HIGH_COST_LOW_USAGE"
	WasteBetterAlternative  WasteType = "BETTER_ALTERNATIVE"
)

// UsageFrequency is the external usage signal for a merchant's service.
type UsageFrequency string

// Usage frequency constants, least to most active.
const (
	UsageNever        UsageFrequency = "NEVER"
	UsageRarely       UsageFrequency = "RARELY"
	UsageOccasionally UsageFrequency = "OCCASIONALLY"
	UsageFrequently   UsageFrequency = "FREQUENTLY"
)

// UsageCount maps the coarse signal to an approximate uses-per-month figure
// for cost-per-use math.
func (u UsageFrequency) UsageCount() int {
	switch u {
	case UsageNever:
		return 0
	case UsageRarely:
		return 1
	case UsageOccasionally:
		return 4
	case UsageFrequently:
		return 15
	}
	return 0
}

// WasteItem is a recurring charge flagged as low-value relative to its cost.
type WasteItem struct {
	ID              string
	Type            WasteType
	MerchantName    string
	Recommendation  string
	UsageFrequency  UsageFrequency
	MonthlyCost     float64
	PotentialSaving float64 // annualized
	CostPerUse      float64
}
