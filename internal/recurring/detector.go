// Package recurring infers repeating billing patterns from a single
// account's transaction history.
package recurring

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"time"

	"github.com/finsight-io/finsight/internal/model"
	"github.com/finsight-io/finsight/internal/scoring"
)

// MinOccurrences is the minimum charge count before a merchant can be
// considered recurring.
const MinOccurrences = 3

// confidenceSaturation is the sample count at which the sample bonus
// saturates at 1.0.
const confidenceSaturation = 12

// frequencyBucket matches a median interval against a nominal cadence.
type frequencyBucket struct {
	frequency model.Frequency
	midpoint  float64 // days
}

// Buckets in ascending interval order. Tolerance is ±20% of each midpoint,
// which keeps adjacent buckets disjoint.
var buckets = []frequencyBucket{
	{model.FrequencyDaily, 1},
	{model.FrequencyWeekly, 7},
	{model.FrequencyBiweekly, 14},
	{model.FrequencyMonthly, 29.5},
	{model.FrequencyQuarterly, 91},
	{model.FrequencyYearly, 365},
}

const bucketTolerance = 0.20

// Detector scans merchant groups for recurring cadences. Stateless; given an
// unchanged history and analysis time it produces identical output.
type Detector struct{}

// New creates a pattern detector.
func New() *Detector {
	return &Detector{}
}

// Detect groups the account history by normalized merchant and returns one
// RecurringPattern per merchant whose charge cadence fits a known bucket.
// now anchors the next-expected-date computation; output is sorted by
// merchant name for stable results.
func (d *Detector) Detect(history []model.Transaction, now time.Time) []model.RecurringPattern {
	groups := make(map[string][]model.Transaction)
	for _, txn := range history {
		if !txn.IsExpense() {
			continue
		}
		key := txn.NormalizedMerchant()
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], txn)
	}

	merchants := make([]string, 0, len(groups))
	for m := range groups {
		merchants = append(merchants, m)
	}
	sort.Strings(merchants)

	var patterns []model.RecurringPattern
	for _, merchant := range merchants {
		if p := d.detectMerchant(merchant, groups[merchant], now); p != nil {
			patterns = append(patterns, *p)
		}
	}
	return patterns
}

// detectMerchant evaluates one merchant group. Returns nil when the group is
// too small or its cadence fits no bucket.
func (d *Detector) detectMerchant(merchant string, txns []model.Transaction, now time.Time) *model.RecurringPattern {
	occurrences := dedupeByDay(txns)
	if len(occurrences) < MinOccurrences {
		return nil
	}

	sort.Slice(occurrences, func(i, j int) bool {
		return occurrences[i].Date.Before(occurrences[j].Date)
	})

	intervals := make([]float64, 0, len(occurrences)-1)
	for i := 1; i < len(occurrences); i++ {
		days := occurrences[i].Date.Sub(occurrences[i-1].Date).Hours() / 24
		intervals = append(intervals, days)
	}

	median := scoring.Median(intervals)
	frequency, ok := matchBucket(median)
	if !ok {
		return nil
	}

	amounts := make([]float64, len(occurrences))
	for i, txn := range occurrences {
		amounts[i] = txn.AbsAmount()
	}
	averageAmount := scoring.Mean(amounts)

	variance := 0.0
	if averageAmount > 0 {
		variance = scoring.StdDev(amounts) / averageAmount * 100
	}

	regularity := scoring.RegularityConfidence(intervals)
	// Three samples already carry some trust; twelve carry full trust.
	sampleBonus := scoring.Clamp01(0.5 + 0.5*scoring.SampleBonus(len(occurrences), confidenceSaturation))
	confidence := scoring.Clamp01(0.7*regularity + 0.3*sampleBonus)

	displayName := occurrences[len(occurrences)-1].MerchantName
	if displayName == "" {
		displayName = merchant
	}

	return &model.RecurringPattern{
		ID:               patternID(merchant, frequency),
		MerchantName:     displayName,
		Category:         modalCategory(occurrences),
		Frequency:        frequency,
		AverageAmount:    averageAmount,
		Variance:         variance,
		Confidence:       confidence,
		TransactionCount: len(occurrences),
		NextExpectedDate: nextExpected(occurrences[len(occurrences)-1].Date, median, now),
	}
}

// dedupeByDay collapses same-day charges from one merchant into a single
// occurrence so a zero-length interval cannot collapse confidence.
func dedupeByDay(txns []model.Transaction) []model.Transaction {
	seen := make(map[string]bool, len(txns))
	out := make([]model.Transaction, 0, len(txns))
	for _, txn := range txns {
		day := txn.Date.Format("2006-01-02")
		if seen[day] {
			continue
		}
		seen[day] = true
		out = append(out, txn)
	}
	return out
}

// matchBucket returns the cadence whose midpoint the median interval falls
// within ±20% of.
func matchBucket(medianDays float64) (model.Frequency, bool) {
	for _, b := range buckets {
		lo := b.midpoint * (1 - bucketTolerance)
		hi := b.midpoint * (1 + bucketTolerance)
		if medianDays >= lo && medianDays <= hi {
			return b.frequency, true
		}
	}
	return "", false
}

// nextExpected projects the last charge forward by whole intervals until it
// lands strictly after the analysis time.
func nextExpected(last time.Time, medianDays float64, now time.Time) time.Time {
	step := time.Duration(medianDays * 24 * float64(time.Hour))
	if step <= 0 {
		step = 24 * time.Hour
	}
	next := last.Add(step)
	for !next.After(now) {
		next = next.Add(step)
	}
	return next
}

// modalCategory returns the most common category in the group, preferring
// the lexicographically smaller name on ties.
func modalCategory(txns []model.Transaction) string {
	counts := make(map[string]int)
	for _, txn := range txns {
		if txn.Category != "" {
			counts[txn.Category]++
		}
	}

	var best string
	bestCount := 0
	for cat, n := range counts {
		if n > bestCount || (n == bestCount && (best == "" || cat < best)) {
			best, bestCount = cat, n
		}
	}
	return best
}

// patternID derives a stable identifier from the merchant and cadence so
// repeated runs over unchanged history yield identical patterns.
func patternID(merchant string, frequency model.Frequency) string {
	sum := sha256.Sum256([]byte(merchant + ":" + string(frequency)))
	return fmt.Sprintf("pat-%x", sum[:8])
}
