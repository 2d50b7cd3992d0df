package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-io/finsight/internal/classify"
	"github.com/finsight-io/finsight/internal/engine"
	"github.com/finsight-io/finsight/internal/lexicon"
	"github.com/finsight-io/finsight/internal/model"
	"github.com/finsight-io/finsight/internal/storage"
	"github.com/finsight-io/finsight/internal/testutil"
)

func newTestServer(t *testing.T) (*Server, *storage.SQLiteStorage) {
	t.Helper()

	store := testutil.SetupTestDB(t)
	eng := engine.New(store, classify.New(lexicon.Default()))

	srv, err := New(eng, store, Config{Addr: ":0", ShutdownTimeout: time.Second})
	require.NoError(t, err)
	return srv, store
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestClassifyEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"ID":"txn-1","AccountID":"acct-1","MerchantName":"Netflix","Description":"NETFLIX.COM","Amount":-15.99}`
	req := httptest.NewRequest(http.MethodPost, "/api/classify", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got model.Classification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Entertainment", got.Category)
	assert.Equal(t, "Streaming", got.Subcategory)
	assert.GreaterOrEqual(t, got.Confidence, 0.7)
}

func TestClassifyEndpoint_InvalidBody(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/classify", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalysisEndpoint(t *testing.T) {
	srv, store := newTestServer(t)

	now := time.Now().UTC()
	var txns []model.Transaction
	for i := 0; i < 3; i++ {
		txns = append(txns, testutil.Transaction(
			"txn-"+string(rune('a'+i)), "acct-1", "Esselunga", 54.30,
			now.AddDate(0, 0, -7*(i+1))))
	}
	require.NoError(t, store.SaveTransactions(context.Background(), txns))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/accounts/acct-1/analysis", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var result engine.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "acct-1", result.AccountID)
}

func TestListAccountsEndpoint(t *testing.T) {
	srv, store := newTestServer(t)

	now := time.Now().UTC()
	require.NoError(t, store.SaveTransactions(context.Background(), []model.Transaction{
		testutil.Transaction("txn-1", "acct-1", "Netflix", 15.99, now.AddDate(0, 0, -3)),
	}))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/accounts", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []string{"acct-1"}, got["accounts"])
}

func TestSuggestionActionEndpoint(t *testing.T) {
	srv, store := newTestServer(t)

	suggestion := model.Suggestion{
		ID:               "sug-1",
		MerchantName:     "Netflix",
		RuleKey:          "netflix:unused-subscription",
		Explanation:      "Netflix appears unused over the last year",
		Category:         model.SuggestionSubscriptions,
		Priority:         model.PriorityHigh,
		Status:           model.SuggestionActive,
		PotentialSavings: 191.88,
		MonthlySavings:   15.99,
		Confidence:       0.9,
		CreatedAt:        time.Now().UTC(),
	}
	require.NoError(t, store.SaveSuggestions(context.Background(), "acct-1", []model.Suggestion{suggestion}))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/suggestions/sug-1/dismiss", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := store.GetSuggestion(context.Background(), "sug-1")
	require.NoError(t, err)
	assert.Equal(t, model.SuggestionDismissed, got.Status)
}

func TestSuggestionActionEndpoint_UnknownAction(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/suggestions/sug-1/snooze", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSuggestionActionEndpoint_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/suggestions/missing/dismiss", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNew_RejectsBadSchedule(t *testing.T) {
	store := testutil.SetupTestDB(t)
	eng := engine.New(store, classify.New(lexicon.Default()))

	_, err := New(eng, store, Config{Addr: ":0", AnalyzeSchedule: "not a schedule"})
	require.Error(t, err)
}
