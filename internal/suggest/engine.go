// Package suggest aggregates detector outputs into ranked, explainable
// optimization suggestions.
package suggest

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finsight-io/finsight/internal/model"
	"github.com/finsight-io/finsight/internal/scoring"
)

// Config holds the suggestion scoring parameters.
type Config struct {
	// DismissalCooldown suppresses re-deriving a suggestion for a
	// merchant+rule pair the user recently dismissed.
	DismissalCooldown time.Duration
}

// DefaultConfig returns the default suggestion configuration.
func DefaultConfig() Config {
	return Config{
		DismissalCooldown: 30 * 24 * time.Hour,
	}
}

// Input carries one profile's detector outputs into suggestion building.
type Input struct {
	Now       time.Time
	Anomalies []model.AnomalyRecord
	Patterns  []model.RecurringPattern
	Waste     []model.WasteItem
	// Transactions indexes the analyzed transactions by ID, used to name
	// the merchant behind an anomaly.
	Transactions map[string]model.Transaction
	// Dismissed maps rule keys to the time the user dismissed them.
	Dismissed map[string]time.Time
}

// Engine turns waste items and qualifying anomalies into ranked suggestions.
// Stateless; lifecycle transitions happen only through external stores.
type Engine struct {
	config Config
}

// New creates a suggestion engine with default configuration.
func New() *Engine {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a suggestion engine with custom configuration.
func NewWithConfig(config Config) *Engine {
	if config.DismissalCooldown <= 0 {
		config.DismissalCooldown = DefaultConfig().DismissalCooldown
	}
	return &Engine{config: config}
}

// candidate is a scored suggestion before ranking.
type candidate struct {
	suggestion model.Suggestion
	severity   model.Severity
	savings    float64
	confidence float64
}

// Build produces the ranked Active suggestion list for one profile. Each
// merchant+rule root cause yields at most one suggestion, and root causes
// dismissed within the cooldown window are skipped entirely.
func (e *Engine) Build(input Input) []model.Suggestion {
	confidenceByMerchant := make(map[string]float64, len(input.Patterns))
	for _, p := range input.Patterns {
		confidenceByMerchant[p.MerchantName] = p.Confidence
	}

	var candidates []candidate
	for _, item := range input.Waste {
		candidates = append(candidates, e.fromWaste(item, confidenceByMerchant))
	}
	for _, rec := range input.Anomalies {
		if c, ok := e.fromAnomaly(rec, input.Transactions); ok {
			candidates = append(candidates, c)
		}
	}

	candidates = e.applyCooldown(candidates, input.Dismissed, input.Now)
	candidates = dedupeByRuleKey(candidates)

	// Savings are normalized against the largest candidate in this run so
	// the weighted score stays in [0,1].
	var maxSavings float64
	for _, c := range candidates {
		if c.savings > maxSavings {
			maxSavings = c.savings
		}
	}

	suggestions := make([]model.Suggestion, 0, len(candidates))
	for _, c := range candidates {
		normSavings := 0.0
		if maxSavings > 0 {
			normSavings = c.savings / maxSavings
		}
		score := 0.5*normSavings + 0.3*c.confidence + 0.2*c.severity.Weight()

		s := c.suggestion
		s.Score = score
		s.Priority = priorityFromScore(score)
		s.Confidence = c.confidence
		s.PotentialSavings = c.savings
		s.MonthlySavings = c.savings / 12
		s.Status = model.SuggestionActive
		s.CreatedAt = input.Now
		suggestions = append(suggestions, s)
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}
		return suggestions[i].PotentialSavings > suggestions[j].PotentialSavings
	})
	return suggestions
}

// fromWaste maps a waste item onto a suggestion candidate.
func (e *Engine) fromWaste(item model.WasteItem, confidenceByMerchant map[string]float64) candidate {
	confidence, ok := confidenceByMerchant[item.MerchantName]
	if !ok {
		confidence = 0.6
	}

	var (
		category model.SuggestionCategory
		severity model.Severity
		steps    []string
	)
	switch item.Type {
	case model.WasteUnusedSubscription:
		category = model.SuggestionSubscriptions
		severity = model.SeverityHigh
		steps = []string{
			fmt.Sprintf("Review your %s subscription and recent usage", item.MerchantName),
			fmt.Sprintf("Cancel %s before the next billing date", item.MerchantName),
		}
	case model.WasteDuplicateService:
		category = model.SuggestionAlternatives
		severity = model.SeverityMedium
		steps = []string{
			"Compare the overlapping services and pick one to keep",
			fmt.Sprintf("Cancel %s once you have migrated", item.MerchantName),
		}
	case model.WasteHighCostLowUsage:
		category = model.SuggestionSavings
		severity = model.SeverityMedium
		steps = []string{
			fmt.Sprintf("Check whether a cheaper %s tier covers your usage", item.MerchantName),
			"Downgrade or cancel if the cost per use stays high",
		}
	case model.WasteBetterAlternative:
		category = model.SuggestionAlternatives
		severity = model.SeverityLow
		steps = []string{
			fmt.Sprintf("Compare alternatives to %s", item.MerchantName),
		}
	default:
		category = model.SuggestionSavings
		severity = model.SeverityLow
	}

	return candidate{
		suggestion: model.Suggestion{
			ID:           uuid.New().String(),
			MerchantName: item.MerchantName,
			RuleKey:      ruleKey(item.MerchantName, string(item.Type)),
			Category:     category,
			Explanation:  item.Recommendation,
			ActionSteps:  steps,
		},
		severity:   severity,
		savings:    item.PotentialSaving,
		confidence: scoring.Clamp01(confidence),
	}
}

// fromAnomaly maps a qualifying anomaly onto a suggestion candidate. Only
// amount anomalies of at least Medium severity are actionable enough to
// surface as suggestions; the rest stay in the anomaly list.
func (e *Engine) fromAnomaly(rec model.AnomalyRecord, txns map[string]model.Transaction) (candidate, bool) {
	if rec.Type != model.AnomalyUnusuallyHigh || rec.Severity == model.SeverityLow {
		return candidate{}, false
	}

	txn, ok := txns[rec.TransactionID]
	if !ok {
		return candidate{}, false
	}

	savings := 0.0
	if rec.ExpectedAmount != nil {
		savings = txn.AbsAmount() - *rec.ExpectedAmount
	}
	if savings <= 0 {
		return candidate{}, false
	}

	confidence := 0.7
	if rec.Severity == model.SeverityHigh {
		confidence = 0.9
	}

	merchant := txn.MerchantName
	return candidate{
		suggestion: model.Suggestion{
			ID:           uuid.New().String(),
			MerchantName: merchant,
			RuleKey:      ruleKey(merchant, string(rec.Type)),
			Category:     model.SuggestionCashflow,
			Explanation:  fmt.Sprintf("a charge from %s was well above your usual spending: %s", merchant, rec.Explanation),
			ActionSteps: []string{
				fmt.Sprintf("Verify the %.2f charge from %s", txn.AbsAmount(), merchant),
				"Dispute it with your bank if you do not recognize it",
			},
		},
		severity:   rec.Severity,
		savings:    savings,
		confidence: confidence,
	}, true
}

// applyCooldown drops candidates whose rule key was dismissed inside the
// cooldown window.
func (e *Engine) applyCooldown(candidates []candidate, dismissed map[string]time.Time, now time.Time) []candidate {
	if len(dismissed) == 0 {
		return candidates
	}
	cutoff := now.Add(-e.config.DismissalCooldown)

	kept := candidates[:0]
	for _, c := range candidates {
		if at, ok := dismissed[c.suggestion.RuleKey]; ok && at.After(cutoff) {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// dedupeByRuleKey keeps the highest-value candidate per merchant+rule pair.
func dedupeByRuleKey(candidates []candidate) []candidate {
	best := make(map[string]candidate, len(candidates))
	var order []string
	for _, c := range candidates {
		key := c.suggestion.RuleKey
		existing, ok := best[key]
		if !ok {
			best[key] = c
			order = append(order, key)
			continue
		}
		if c.savings > existing.savings {
			best[key] = c
		}
	}

	out := make([]candidate, 0, len(best))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out
}

// priorityFromScore buckets the weighted score into a priority.
func priorityFromScore(score float64) model.Priority {
	switch {
	case score >= 0.8:
		return model.PriorityCritical
	case score >= 0.6:
		return model.PriorityHigh
	case score >= 0.35:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}

// ruleKey normalizes the merchant+rule root cause identifier.
func ruleKey(merchant, rule string) string {
	return strings.ToLower(strings.TrimSpace(merchant)) + ":" + strings.ToLower(rule)
}
