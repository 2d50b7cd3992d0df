package suggest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-io/finsight/internal/model"
)

var now = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func wasteItem(merchant string, wasteType model.WasteType, saving float64) model.WasteItem {
	return model.WasteItem{
		ID:              "w-" + merchant,
		Type:            wasteType,
		MerchantName:    merchant,
		MonthlyCost:     saving / 12,
		PotentialSaving: saving,
		UsageFrequency:  model.UsageNever,
		Recommendation:  "cancel " + merchant,
	}
}

func netflixPattern() model.RecurringPattern {
	return model.RecurringPattern{
		MerchantName: "Netflix",
		Category:     "Entertainment",
		Frequency:    model.FrequencyMonthly,
		Confidence:   0.95,
	}
}

func TestBuild_WasteBecomesSuggestion(t *testing.T) {
	e := New()

	got := e.Build(Input{
		Now:      now,
		Patterns: []model.RecurringPattern{netflixPattern()},
		Waste:    []model.WasteItem{wasteItem("Netflix", model.WasteUnusedSubscription, 191.88)},
	})
	require.Len(t, got, 1)

	s := got[0]
	assert.Equal(t, model.SuggestionSubscriptions, s.Category)
	assert.Equal(t, model.SuggestionActive, s.Status)
	assert.Equal(t, "netflix:unused_subscription", s.RuleKey)
	assert.InDelta(t, 191.88, s.PotentialSavings, 1e-9)
	assert.InDelta(t, 191.88/12, s.MonthlySavings, 1e-9)
	assert.NotEmpty(t, s.ActionSteps)
	// Sole candidate: normalized savings 1.0, confidence 0.95, severity High.
	// 0.5 + 0.3*0.95 + 0.2*1.0 = 0.985 -> Critical.
	assert.InDelta(t, 0.985, s.Score, 1e-9)
	assert.Equal(t, model.PriorityCritical, s.Priority)
}

func TestBuild_QualifyingAnomalyBecomesSuggestion(t *testing.T) {
	e := New()
	expected := 130.0

	txn := model.Transaction{ID: "tx-1", MerchantName: "Luxury Store", Amount: -450}
	got := e.Build(Input{
		Now:          now,
		Transactions: map[string]model.Transaction{"tx-1": txn},
		Anomalies: []model.AnomalyRecord{{
			ID:             "a-1",
			TransactionID:  "tx-1",
			Type:           model.AnomalyUnusuallyHigh,
			Severity:       model.SeverityHigh,
			ExpectedAmount: &expected,
			Explanation:    "amount is 3.5x the Shopping average of 130.00",
		}},
	})
	require.Len(t, got, 1)

	s := got[0]
	assert.Equal(t, model.SuggestionCashflow, s.Category)
	assert.InDelta(t, 320.0, s.PotentialSavings, 1e-9)
	assert.Equal(t, "luxury store:unusually_high", s.RuleKey)
}

func TestBuild_LowSeverityAnomaliesStayOut(t *testing.T) {
	e := New()

	got := e.Build(Input{
		Now: now,
		Anomalies: []model.AnomalyRecord{
			{ID: "a-1", TransactionID: "tx-1", Type: model.AnomalyUnusualTime, Severity: model.SeverityLow},
			{ID: "a-2", TransactionID: "tx-2", Type: model.AnomalyUnusualMerchant, Severity: model.SeverityMedium},
		},
		Transactions: map[string]model.Transaction{
			"tx-1": {ID: "tx-1", MerchantName: "A"},
			"tx-2": {ID: "tx-2", MerchantName: "B"},
		},
	})

	assert.Empty(t, got)
}

func TestBuild_SortedByScoreThenSavings(t *testing.T) {
	e := New()

	got := e.Build(Input{
		Now: now,
		Patterns: []model.RecurringPattern{
			{MerchantName: "Big Sub", Confidence: 0.9},
			{MerchantName: "Small Sub", Confidence: 0.9},
			{MerchantName: "Duplicate Svc", Confidence: 0.9},
		},
		Waste: []model.WasteItem{
			wasteItem("Small Sub", model.WasteUnusedSubscription, 48),
			wasteItem("Big Sub", model.WasteUnusedSubscription, 1200),
			wasteItem("Duplicate Svc", model.WasteDuplicateService, 48),
		},
	})
	require.Len(t, got, 3)

	assert.Equal(t, "Big Sub", got[0].MerchantName)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
	// Equal savings: the unused subscription outranks the duplicate because
	// of its higher severity weight.
	assert.Equal(t, "Small Sub", got[1].MerchantName)
}

func TestBuild_DedupePerRuleKey(t *testing.T) {
	e := New()

	got := e.Build(Input{
		Now: now,
		Waste: []model.WasteItem{
			wasteItem("Netflix", model.WasteUnusedSubscription, 100),
			wasteItem("Netflix", model.WasteUnusedSubscription, 191.88),
		},
	})
	require.Len(t, got, 1)
	// The higher-value candidate for the root cause survives.
	assert.InDelta(t, 191.88, got[0].PotentialSavings, 1e-9)

	seen := make(map[string]bool)
	for _, s := range got {
		require.False(t, seen[s.RuleKey], "duplicate rule key %s", s.RuleKey)
		seen[s.RuleKey] = true
	}
}

func TestBuild_DismissalCooldown(t *testing.T) {
	e := New()
	input := Input{
		Now:   now,
		Waste: []model.WasteItem{wasteItem("Netflix", model.WasteUnusedSubscription, 191.88)},
		Dismissed: map[string]time.Time{
			"netflix:unused_subscription": now.AddDate(0, 0, -10),
		},
	}

	assert.Empty(t, e.Build(input), "dismissed 10 days ago, inside the 30-day cooldown")

	input.Dismissed["netflix:unused_subscription"] = now.AddDate(0, 0, -45)
	assert.Len(t, e.Build(input), 1, "dismissal older than the cooldown no longer suppresses")
}

func TestBuild_ScoreBucketing(t *testing.T) {
	tests := []struct {
		score float64
		want  model.Priority
	}{
		{score: 0.85, want: model.PriorityCritical},
		{score: 0.8, want: model.PriorityCritical},
		{score: 0.7, want: model.PriorityHigh},
		{score: 0.5, want: model.PriorityMedium},
		{score: 0.35, want: model.PriorityMedium},
		{score: 0.2, want: model.PriorityLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, priorityFromScore(tt.score), "score %.2f", tt.score)
	}
}
