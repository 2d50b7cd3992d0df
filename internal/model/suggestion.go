package model

import "time"

// SuggestionCategory groups suggestions by the kind of action they propose.
type SuggestionCategory string

// Suggestion category constants.
const (
	SuggestionSavings       SuggestionCategory = "SAVINGS"
	SuggestionSubscriptions SuggestionCategory = "SUBSCRIPTIONS"
	SuggestionAlternatives  SuggestionCategory = "ALTERNATIVES"
	SuggestionTiming        SuggestionCategory = "TIMING"
	SuggestionCashflow      SuggestionCategory = "CASHFLOW"
)

// Priority is the ordinal ranking used to surface suggestions.
type Priority string

// Priority constants, lowest to highest.
const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// Rank returns a sortable ordinal for the priority.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 0
	}
	return -1
}

// SuggestionStatus tracks the lifecycle of a suggestion. The engine always
// emits Active; transitions happen only via explicit external actions.
type SuggestionStatus string

// Suggestion status constants.
const (
	SuggestionActive      SuggestionStatus = "ACTIVE"
	SuggestionImplemented SuggestionStatus = "IMPLEMENTED"
	SuggestionDismissed   SuggestionStatus = "DISMISSED"
)

// SuggestionAction is an external user action applied to a suggestion.
type SuggestionAction string

// Suggestion action constants.
const (
	ActionImplement SuggestionAction = "IMPLEMENT"
	ActionDismiss   SuggestionAction = "DISMISS"
)

// Status returns the lifecycle status the action transitions to.
func (a SuggestionAction) Status() (SuggestionStatus, bool) {
	switch a {
	case ActionImplement:
		return SuggestionImplemented, true
	case ActionDismiss:
		return SuggestionDismissed, true
	}
	return "", false
}

// Suggestion is an actionable, ranked optimization recommendation derived
// from the detector outputs for one financial profile.
type Suggestion struct {
	CreatedAt        time.Time
	ID               string
	MerchantName     string
	RuleKey          string // root cause identifier: merchant + rule pair
	Explanation      string
	Category         SuggestionCategory
	Priority         Priority
	Status           SuggestionStatus
	ActionSteps      []string
	PotentialSavings float64 // annualized
	MonthlySavings   float64
	Confidence       float64
	Score            float64 // the weighted priority score behind Priority
}
