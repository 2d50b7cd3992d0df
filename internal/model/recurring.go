package model

import "time"

// Frequency is the inferred cadence of a recurring charge.
type Frequency string

// Frequency constants.
const (
	FrequencyDaily     Frequency = "DAILY"
	FrequencyWeekly    Frequency = "WEEKLY"
	FrequencyBiweekly  Frequency = "BIWEEKLY"
	FrequencyMonthly   Frequency = "MONTHLY"
	FrequencyQuarterly Frequency = "QUARTERLY"
	FrequencyYearly    Frequency = "YEARLY"
)

// OccurrencesPerYear returns how many charges a year this cadence implies.
func (f Frequency) OccurrencesPerYear() float64 {
	switch f {
	case FrequencyDaily:
		return 365
	case FrequencyWeekly:
		return 52
	case FrequencyBiweekly:
		return 26
	case FrequencyMonthly:
		return 12
	case FrequencyQuarterly:
		return 4
	case FrequencyYearly:
		return 1
	}
	return 0
}

// IntervalDays returns the nominal interval between charges in days.
func (f Frequency) IntervalDays() float64 {
	switch f {
	case FrequencyDaily:
		return 1
	case FrequencyWeekly:
		return 7
	case FrequencyBiweekly:
		return 14
	case FrequencyMonthly:
		return 30
	case FrequencyQuarterly:
		return 91
	case FrequencyYearly:
		return 365
	}
	return 0
}

// RecurringPattern is a detected repeating charge from one merchant.
// Patterns are recomputed wholesale on each analysis run; there is no
// incremental mutation.
type RecurringPattern struct {
	NextExpectedDate time.Time
	ID               string
	MerchantName     string
	Category         string
	Frequency        Frequency
	AverageAmount    float64
	// Variance is the amount stddev relative to the mean, expressed as a
	// percentage (the one display-style field the engine carries).
	Variance         float64
	Confidence       float64
	TransactionCount int
}

// MonthlyCost returns the pattern's cost normalized to a calendar month.
func (p *RecurringPattern) MonthlyCost() float64 {
	return p.AverageAmount * p.Frequency.OccurrencesPerYear() / 12
}

// AnnualCost returns the pattern's cost normalized to a year.
func (p *RecurringPattern) AnnualCost() float64 {
	return p.AverageAmount * p.Frequency.OccurrencesPerYear()
}
