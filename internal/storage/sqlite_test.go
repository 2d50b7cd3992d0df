package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-io/finsight/internal/common"
	"github.com/finsight-io/finsight/internal/model"
	"github.com/finsight-io/finsight/internal/service"
)

func setup(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func expense(id, accountID, merchant string, amount float64, date time.Time) model.Transaction {
	return model.Transaction{
		ID:           id,
		AccountID:    accountID,
		MerchantName: merchant,
		Description:  merchant,
		Currency:     "USD",
		Amount:       -amount,
		Date:         date,
	}
}

func TestSaveAndFetchHistory(t *testing.T) {
	store := setup(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	txns := []model.Transaction{
		expense("t2", "acct-1", "Netflix", 15.99, base.AddDate(0, 0, 10)),
		expense("t1", "acct-1", "Esselunga", 54.20, base),
		expense("t3", "acct-2", "Spotify", 9.99, base),
	}
	require.NoError(t, store.SaveTransactions(ctx, txns))

	window := service.TrailingWindow(base.AddDate(0, 0, 30), 90)
	got, err := store.FetchHistory(ctx, "acct-1", window)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Ordered by date ascending.
	assert.Equal(t, "t1", got[0].ID)
	assert.Equal(t, "t2", got[1].ID)
	assert.Equal(t, "Esselunga", got[0].MerchantName)
	assert.InDelta(t, -54.20, got[0].Amount, 1e-9)
}

func TestSaveTransactions_DuplicateHashIgnored(t *testing.T) {
	store := setup(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	txn := expense("t1", "acct-1", "Netflix", 15.99, base)
	require.NoError(t, store.SaveTransactions(ctx, []model.Transaction{txn}))

	// Same hash under a new ID: skipped, not duplicated.
	dup := txn
	dup.ID = "t1-reimport"
	require.NoError(t, store.SaveTransactions(ctx, []model.Transaction{dup}))

	got, err := store.FetchHistory(ctx, "acct-1", service.TrailingWindow(base.AddDate(0, 0, 1), 30))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSaveTransactions_RejectsInvalid(t *testing.T) {
	store := setup(t)
	err := store.SaveTransactions(context.Background(), []model.Transaction{{ID: "x"}})
	assert.Error(t, err)
}

func TestFetchHistory_WindowExcludesOldTransactions(t *testing.T) {
	store := setup(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveTransactions(ctx, []model.Transaction{
		expense("old", "acct-1", "Gym", 40, now.AddDate(0, 0, -120)),
		expense("recent", "acct-1", "Gym", 40, now.AddDate(0, 0, -10)),
	}))

	got, err := store.FetchHistory(ctx, "acct-1", service.TrailingWindow(now, 90))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "recent", got[0].ID)
}

func TestMerchantsSeenBefore(t *testing.T) {
	store := setup(t)
	ctx := context.Background()
	cutoff := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveTransactions(ctx, []model.Transaction{
		expense("old", "acct-1", "Corner Cafe", 5, cutoff.AddDate(0, 0, -30)),
		expense("edge", "acct-1", "Gym", 40, cutoff),
		expense("later", "acct-1", "Pop Up Store", 30, cutoff.AddDate(0, 0, 5)),
		expense("other", "acct-2", "Bodega", 12, cutoff.AddDate(0, 0, -10)),
	}))

	seen, err := store.MerchantsSeenBefore(ctx, "acct-1", cutoff)
	require.NoError(t, err)

	// Keys are normalized; the cutoff is exclusive and other accounts do
	// not leak in.
	assert.Equal(t, map[string]bool{"corner cafe": true}, seen)
}

func TestListAccounts(t *testing.T) {
	store := setup(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveTransactions(ctx, []model.Transaction{
		expense("a", "acct-2", "Netflix", 16, base),
		expense("b", "acct-1", "Spotify", 10, base),
		expense("c", "acct-1", "Hulu", 13, base),
	}))

	accounts, err := store.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"acct-1", "acct-2"}, accounts)
}

func TestConfirmations_RoundTrip(t *testing.T) {
	store := setup(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveTransactions(ctx, []model.Transaction{
		expense("t1", "acct-1", "Netflix", 15.99, base),
	}))

	for i := 0; i < 3; i++ {
		require.NoError(t, store.SaveConfirmation(ctx, &model.Classification{
			TransactionID: "t1",
			Category:      "Entertainment",
			Subcategory:   "Streaming",
		}))
	}

	got, err := store.PriorConfirmations(ctx, "netflix")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, c := range got {
		assert.Equal(t, "Entertainment", c.Category)
		assert.True(t, c.ConfirmedByUser)
		assert.Equal(t, 1.0, c.Confidence)
	}
}

func TestConfirmations_UnknownMerchantIsEmpty(t *testing.T) {
	store := setup(t)

	got, err := store.PriorConfirmations(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUsageSignals(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	_, ok, err := store.FrequencyFor(ctx, "Netflix")
	require.NoError(t, err)
	assert.False(t, ok, "no signal recorded yet")

	require.NoError(t, store.SetUsageFrequency(ctx, "Netflix", model.UsageNever))

	freq, ok, err := store.FrequencyFor(ctx, "NETFLIX")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.UsageNever, freq)

	// Replacing the signal keeps one row per merchant.
	require.NoError(t, store.SetUsageFrequency(ctx, "netflix", model.UsageFrequently))
	freq, ok, err = store.FrequencyFor(ctx, "Netflix")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.UsageFrequently, freq)
}

func suggestion(id, ruleKey string, savings float64) model.Suggestion {
	return model.Suggestion{
		ID:               id,
		MerchantName:     "Netflix",
		RuleKey:          ruleKey,
		Category:         model.SuggestionSubscriptions,
		Priority:         model.PriorityHigh,
		Status:           model.SuggestionActive,
		Explanation:      "cancel it",
		ActionSteps:      []string{"review", "cancel"},
		PotentialSavings: savings,
		MonthlySavings:   savings / 12,
		Confidence:       0.9,
		Score:            0.7,
		CreatedAt:        time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSuggestions_SaveAndGet(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSuggestions(ctx, "acct-1", []model.Suggestion{
		suggestion("s1", "netflix:unused_subscription", 191.88),
	}))

	got, err := store.GetSuggestion(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "netflix:unused_subscription", got.RuleKey)
	assert.Equal(t, model.SuggestionActive, got.Status)
	assert.Equal(t, []string{"review", "cancel"}, got.ActionSteps)
	assert.InDelta(t, 191.88, got.PotentialSavings, 1e-6)
}

func TestSuggestions_GetUnknownIsNotFound(t *testing.T) {
	store := setup(t)

	_, err := store.GetSuggestion(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSuggestions_UpsertKeepsIDForActiveRows(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSuggestions(ctx, "acct-1", []model.Suggestion{
		suggestion("s1", "netflix:unused_subscription", 100),
	}))

	// A later run re-derives the same root cause with a fresh ID.
	require.NoError(t, store.SaveSuggestions(ctx, "acct-1", []model.Suggestion{
		suggestion("s2", "netflix:unused_subscription", 191.88),
	}))

	// The original row survives with updated scoring.
	got, err := store.GetSuggestion(ctx, "s1")
	require.NoError(t, err)
	assert.InDelta(t, 191.88, got.PotentialSavings, 1e-6)

	_, err = store.GetSuggestion(ctx, "s2")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSuggestions_RecordActionAndCooldown(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSuggestions(ctx, "acct-1", []model.Suggestion{
		suggestion("s1", "netflix:unused_subscription", 191.88),
	}))

	require.NoError(t, store.RecordAction(ctx, "s1", model.ActionDismiss))

	got, err := store.GetSuggestion(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, model.SuggestionDismissed, got.Status)

	dismissed, err := store.DismissedRuleKeys(ctx, "acct-1", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Contains(t, dismissed, "netflix:unused_subscription")

	// A dismissed row ignores later upserts.
	require.NoError(t, store.SaveSuggestions(ctx, "acct-1", []model.Suggestion{
		suggestion("s3", "netflix:unused_subscription", 500),
	}))
	got, err = store.GetSuggestion(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, model.SuggestionDismissed, got.Status)
	assert.InDelta(t, 191.88, got.PotentialSavings, 1e-6)
}

func TestSuggestions_RecordActionUnknownID(t *testing.T) {
	store := setup(t)

	err := store.RecordAction(context.Background(), "missing", model.ActionImplement)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListSuggestions_OrderedByScore(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	low := suggestion("low", "a:rule", 10)
	low.Score = 0.2
	high := suggestion("high", "b:rule", 500)
	high.Score = 0.9

	require.NoError(t, store.SaveSuggestions(ctx, "acct-1", []model.Suggestion{low, high}))

	got, err := store.ListSuggestions(ctx, "acct-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "high", got[0].ID)
}
