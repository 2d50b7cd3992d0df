// Package waste flags recurring charges whose cost is out of proportion to
// their use.
package waste

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"

	"github.com/finsight-io/finsight/internal/model"
	"github.com/finsight-io/finsight/internal/scoring"
)

// Config holds the waste detection thresholds.
type Config struct {
	// OverlapThreshold is the share of a category's total recurring cost
	// below which each individual service counts toward a duplicate group.
	OverlapThreshold float64
	// SimilarNameDistance is the maximum Levenshtein distance at which two
	// merchant names are treated as the same underlying service.
	SimilarNameDistance int
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{
		OverlapThreshold:    0.7,
		SimilarNameDistance: 3,
	}
}

// Detector derives waste items from recurring patterns and usage signals.
// Stateless and safe for concurrent use.
type Detector struct {
	config Config
}

// New creates a detector with default thresholds.
func New() *Detector {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a detector with custom thresholds.
func NewWithConfig(config Config) *Detector {
	if config.OverlapThreshold <= 0 || config.OverlapThreshold > 1 {
		config.OverlapThreshold = DefaultConfig().OverlapThreshold
	}
	return &Detector{config: config}
}

// Detect classifies the account's recurring patterns. usage maps merchant
// names, as they appear on the patterns, to their observed usage frequency;
// merchants absent from the map default to Occasionally. At most one item is produced per
// merchant. Output is sorted by potential saving descending, ties by
// merchant name.
func (d *Detector) Detect(patterns []model.RecurringPattern, usage map[string]model.UsageFrequency) []model.WasteItem {
	var items []model.WasteItem
	flagged := make(map[string]bool)

	for _, p := range patterns {
		freq := usageFor(usage, p.MerchantName)

		if item := d.checkUnusedSubscription(p, freq); item != nil {
			items = append(items, *item)
			flagged[p.MerchantName] = true
			continue
		}
		if item := d.checkHighCostLowUsage(p, freq, patterns); item != nil {
			items = append(items, *item)
			flagged[p.MerchantName] = true
		}
	}

	items = append(items, d.checkDuplicateServices(patterns, usage, flagged)...)

	sort.Slice(items, func(i, j int) bool {
		if items[i].PotentialSaving != items[j].PotentialSaving {
			return items[i].PotentialSaving > items[j].PotentialSaving
		}
		return items[i].MerchantName < items[j].MerchantName
	})
	return items
}

// checkUnusedSubscription flags never-used subscription-cadence charges.
func (d *Detector) checkUnusedSubscription(p model.RecurringPattern, freq model.UsageFrequency) *model.WasteItem {
	if freq != model.UsageNever {
		return nil
	}
	switch p.Frequency {
	case model.FrequencyMonthly, model.FrequencyQuarterly, model.FrequencyYearly:
	default:
		return nil
	}

	monthly := p.MonthlyCost()
	return &model.WasteItem{
		ID:              uuid.New().String(),
		Type:            model.WasteUnusedSubscription,
		MerchantName:    p.MerchantName,
		UsageFrequency:  freq,
		MonthlyCost:     monthly,
		PotentialSaving: p.AnnualCost(),
		CostPerUse:      costPerUse(monthly, freq),
		Recommendation: fmt.Sprintf("cancel %s: no recorded usage for a %.2f/month charge",
			p.MerchantName, monthly),
	}
}

// checkHighCostLowUsage flags rarely-used charges in the top quartile of the
// account's recurring amounts.
func (d *Detector) checkHighCostLowUsage(p model.RecurringPattern, freq model.UsageFrequency, all []model.RecurringPattern) *model.WasteItem {
	if freq != model.UsageNever && freq != model.UsageRarely {
		return nil
	}
	if len(all) < 2 {
		return nil
	}

	amounts := make([]float64, len(all))
	for i, q := range all {
		amounts[i] = q.AverageAmount
	}
	if p.AverageAmount < scoring.Quartile(amounts, 0.75) {
		return nil
	}

	monthly := p.MonthlyCost()
	return &model.WasteItem{
		ID:              uuid.New().String(),
		Type:            model.WasteHighCostLowUsage,
		MerchantName:    p.MerchantName,
		UsageFrequency:  freq,
		MonthlyCost:     monthly,
		PotentialSaving: p.AnnualCost(),
		CostPerUse:      costPerUse(monthly, freq),
		Recommendation: fmt.Sprintf("%s is among your most expensive recurring charges but sees little use",
			p.MerchantName),
	}
}

// checkDuplicateServices flags overlapping services within one category:
// groups of two or more recurring merchants where each costs less than the
// overlap threshold share of the category total. Every member except the
// cheapest is flagged.
func (d *Detector) checkDuplicateServices(patterns []model.RecurringPattern, usage map[string]model.UsageFrequency, flagged map[string]bool) []model.WasteItem {
	byCategory := make(map[string][]model.RecurringPattern)
	for _, p := range patterns {
		if p.Category == "" {
			continue
		}
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var items []model.WasteItem
	for _, category := range categories {
		group := byCategory[category]
		if len(group) < 2 {
			continue
		}

		var total float64
		for _, p := range group {
			total += p.MonthlyCost()
		}
		if total <= 0 {
			continue
		}

		eachBelowThreshold := true
		for _, p := range group {
			if p.MonthlyCost() >= d.config.OverlapThreshold*total {
				eachBelowThreshold = false
				break
			}
		}
		if !eachBelowThreshold {
			continue
		}

		sort.Slice(group, func(i, j int) bool {
			return group[i].MonthlyCost() < group[j].MonthlyCost()
		})
		cheapest := group[0]

		for _, p := range group[1:] {
			if flagged[p.MerchantName] {
				continue
			}
			freq := usageFor(usage, p.MerchantName)
			monthly := p.MonthlyCost()
			// Saving is the delta against the cheapest member: the user is
			// assumed to consolidate onto it, not drop the category.
			monthlyDelta := monthly - cheapest.MonthlyCost()

			recommendation := fmt.Sprintf("%s overlaps with %s in %s; switching to %s would save %.2f/month",
				p.MerchantName, cheapest.MerchantName, category, cheapest.MerchantName, monthlyDelta)
			if similarNames(p.MerchantName, cheapest.MerchantName, d.config.SimilarNameDistance) {
				recommendation = fmt.Sprintf("%s appears to be the same service as %s; cancel the duplicate",
					p.MerchantName, cheapest.MerchantName)
			}

			items = append(items, model.WasteItem{
				ID:              uuid.New().String(),
				Type:            model.WasteDuplicateService,
				MerchantName:    p.MerchantName,
				UsageFrequency:  freq,
				MonthlyCost:     monthly,
				PotentialSaving: monthlyDelta * 12,
				CostPerUse:      costPerUse(monthly, freq),
				Recommendation:  recommendation,
			})
		}
	}
	return items
}

// usageFor resolves the usage signal for a merchant, applying the default
// when no signal exists.
func usageFor(usage map[string]model.UsageFrequency, merchant string) model.UsageFrequency {
	if freq, ok := usage[merchant]; ok {
		return freq
	}
	return model.UsageOccasionally
}

// costPerUse divides the monthly cost by the approximate monthly use count,
// never by zero.
func costPerUse(monthlyCost float64, freq model.UsageFrequency) float64 {
	uses := freq.UsageCount()
	if uses < 1 {
		uses = 1
	}
	return monthlyCost / float64(uses)
}

// similarNames reports whether two merchant names are within the given edit
// distance, case-insensitively.
func similarNames(a, b string, maxDistance int) bool {
	return levenshtein.ComputeDistance(strings.ToLower(a), strings.ToLower(b)) <= maxDistance
}
