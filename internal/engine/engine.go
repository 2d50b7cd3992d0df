// Package engine orchestrates the transaction intelligence pipeline: it
// fetches one profile's history, classifies it, and runs the anomaly,
// pattern, waste, and suggestion stages over the result.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/finsight-io/finsight/internal/anomaly"
	"github.com/finsight-io/finsight/internal/classify"
	"github.com/finsight-io/finsight/internal/common"
	"github.com/finsight-io/finsight/internal/model"
	"github.com/finsight-io/finsight/internal/recurring"
	"github.com/finsight-io/finsight/internal/service"
	"github.com/finsight-io/finsight/internal/suggest"
	"github.com/finsight-io/finsight/internal/waste"
)

// Config holds the engine's run parameters.
type Config struct {
	// WindowDays is the trailing analysis window.
	WindowDays int
	// ClassifyWorkers bounds the classification fan-out within one run.
	ClassifyWorkers int
	// DismissalCooldown mirrors the suggestion engine's cooldown when
	// reading dismissal history.
	DismissalCooldown time.Duration
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		WindowDays:        90,
		ClassifyWorkers:   4,
		DismissalCooldown: 30 * 24 * time.Hour,
	}
}

// AnalysisResult is the complete output of one profile's analysis run.
type AnalysisResult struct {
	AccountID   string
	Anomalies   []model.AnomalyRecord
	Patterns    []model.RecurringPattern
	Waste       []model.WasteItem
	Suggestions []model.Suggestion
}

// Engine is the batch entry point a transport layer calls. Each analysis run
// is a pure fetch-then-compute pass over an immutable history snapshot, so
// runs for different accounts may execute fully in parallel.
type Engine struct {
	repo          service.TransactionRepository
	confirmations service.UserConfirmationStore
	usage         service.UsageSignalSource
	suggestions   service.SuggestionStateStore

	classifier      *classify.Classifier
	anomalyDetector *anomaly.Detector
	patternDetector *recurring.Detector
	wasteDetector   *waste.Detector
	suggestEngine   *suggest.Engine

	config Config
	now    func() time.Time
}

// New creates an engine over the given collaborators with default detectors.
func New(storage service.Storage, classifier *classify.Classifier) *Engine {
	return NewWithConfig(storage, classifier, DefaultConfig())
}

// NewWithConfig creates an engine with custom run parameters.
func NewWithConfig(storage service.Storage, classifier *classify.Classifier, config Config) *Engine {
	if config.WindowDays <= 0 {
		config.WindowDays = DefaultConfig().WindowDays
	}
	if config.ClassifyWorkers <= 0 {
		config.ClassifyWorkers = DefaultConfig().ClassifyWorkers
	}
	if config.DismissalCooldown <= 0 {
		config.DismissalCooldown = DefaultConfig().DismissalCooldown
	}

	return &Engine{
		repo:            storage,
		confirmations:   storage,
		usage:           storage,
		suggestions:     storage,
		classifier:      classifier,
		anomalyDetector: anomaly.New(),
		patternDetector: recurring.New(),
		wasteDetector:   waste.New(),
		suggestEngine: suggest.NewWithConfig(suggest.Config{
			DismissalCooldown: config.DismissalCooldown,
		}),
		config: config,
		now:    time.Now,
	}
}

// WithClock overrides the engine's time source. Used by tests and scheduled
// replays to anchor a run at a fixed instant.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Classify assigns a category to a single transaction, consulting prior
// user confirmations for the merchant.
func (e *Engine) Classify(ctx context.Context, txn model.Transaction) (model.Classification, error) {
	prior, err := e.confirmations.PriorConfirmations(ctx, txn.NormalizedMerchant())
	if err != nil {
		return model.Classification{}, fmt.Errorf("failed to load prior confirmations: %w", err)
	}
	return e.classifier.Classify(txn, prior)
}

// Analyze runs the full pipeline for one account. The run is all-or-nothing:
// a fault in any stage aborts the whole run so no partial suggestion set can
// be observed.
func (e *Engine) Analyze(ctx context.Context, accountID string) (*AnalysisResult, error) {
	if accountID == "" {
		return nil, common.ValidationError("accountID", "must not be empty")
	}

	runTime := e.now()
	window := service.TrailingWindow(runTime, e.config.WindowDays)

	// Fetch-then-compute: all storage reads happen up front, the stages
	// below run over the immutable snapshot.
	history, err := e.repo.FetchHistory(ctx, accountID, window)
	if err != nil {
		return nil, common.NewUserError("analysis unavailable, please retry",
			fmt.Errorf("failed to fetch history for account %s: %w", accountID, err))
	}
	if err := checkDuplicateIDs(history); err != nil {
		return nil, err
	}

	// First-contact merchant checks look past the window start, so a
	// merchant the account used months ago never reads as brand new.
	knownMerchants, err := e.repo.MerchantsSeenBefore(ctx, accountID, window.Start)
	if err != nil {
		return nil, common.NewUserError("analysis unavailable, please retry",
			fmt.Errorf("failed to load prior merchants for account %s: %w", accountID, err))
	}

	slog.Info("starting analysis run",
		"account_id", accountID,
		"transactions", len(history),
		"window_days", e.config.WindowDays)

	priorByMerchant, err := e.loadConfirmations(ctx, history)
	if err != nil {
		return nil, common.NewUserError("analysis unavailable, please retry", err)
	}

	classified, err := e.classifyAll(ctx, history, priorByMerchant)
	if err != nil {
		return nil, common.NewUserError("analysis unavailable, please retry", err)
	}

	// History is date-ascending, so each transaction is compared against
	// strictly earlier ones.
	var anomalies []model.AnomalyRecord
	for i, txn := range classified {
		if rec := e.anomalyDetector.Detect(txn, txn.Category, classified[:i], knownMerchants); rec != nil {
			anomalies = append(anomalies, *rec)
		}
	}

	// Pattern and waste stages need the full merchant grouping, so they run
	// only after every transaction has been classified.
	patterns := e.patternDetector.Detect(classified, runTime)

	usage, err := e.loadUsage(ctx, patterns)
	if err != nil {
		return nil, common.NewUserError("analysis unavailable, please retry", err)
	}
	wasteItems := e.wasteDetector.Detect(patterns, usage)

	dismissed, err := e.suggestions.DismissedRuleKeys(ctx, accountID, runTime.Add(-e.config.DismissalCooldown))
	if err != nil {
		return nil, common.NewUserError("analysis unavailable, please retry",
			fmt.Errorf("failed to load dismissal history: %w", err))
	}

	txnByID := make(map[string]model.Transaction, len(classified))
	for _, txn := range classified {
		txnByID[txn.ID] = txn
	}

	suggestions := e.suggestEngine.Build(suggest.Input{
		Now:          runTime,
		Anomalies:    anomalies,
		Patterns:     patterns,
		Waste:        wasteItems,
		Transactions: txnByID,
		Dismissed:    dismissed,
	})

	if err := e.suggestions.SaveSuggestions(ctx, accountID, suggestions); err != nil {
		return nil, common.NewUserError("analysis unavailable, please retry",
			fmt.Errorf("failed to persist suggestions: %w", err))
	}

	slog.Info("analysis run complete",
		"account_id", accountID,
		"anomalies", len(anomalies),
		"patterns", len(patterns),
		"waste_items", len(wasteItems),
		"suggestions", len(suggestions))

	return &AnalysisResult{
		AccountID:   accountID,
		Anomalies:   anomalies,
		Patterns:    patterns,
		Waste:       wasteItems,
		Suggestions: suggestions,
	}, nil
}

// AccountResult pairs one account's outcome with its error, for batch runs.
type AccountResult struct {
	Result    *AnalysisResult
	Err       error
	AccountID string
}

// AnalyzeAll runs independent analysis passes for every account in parallel.
// One account's failure never aborts the others.
func (e *Engine) AnalyzeAll(ctx context.Context, accountIDs []string) []AccountResult {
	results := make([]AccountResult, len(accountIDs))

	var wg sync.WaitGroup
	for i, accountID := range accountIDs {
		wg.Add(1)
		go func(i int, accountID string) {
			defer wg.Done()
			result, err := e.Analyze(ctx, accountID)
			results[i] = AccountResult{AccountID: accountID, Result: result, Err: err}
			if err != nil {
				common.LogError(err, "analysis run failed", common.Fields{"account_id": accountID})
			}
		}(i, accountID)
	}
	wg.Wait()

	return results
}

// RecordSuggestionAction applies an external implement/dismiss action. The
// write goes to the suggestion state store only; engine output is never
// mutated in place.
func (e *Engine) RecordSuggestionAction(ctx context.Context, suggestionID string, action model.SuggestionAction) error {
	if suggestionID == "" {
		return common.ValidationError("suggestionID", "must not be empty")
	}
	if _, ok := action.Status(); !ok {
		return common.ValidationError("action", fmt.Sprintf("%q is not a known suggestion action", action))
	}
	return e.suggestions.RecordAction(ctx, suggestionID, action)
}

// loadConfirmations gathers prior user confirmations once per unique
// merchant, before the classification fan-out starts.
func (e *Engine) loadConfirmations(ctx context.Context, history []model.Transaction) (map[string][]model.Classification, error) {
	prior := make(map[string][]model.Classification)
	for _, txn := range history {
		merchant := txn.NormalizedMerchant()
		if merchant == "" {
			continue
		}
		if _, ok := prior[merchant]; ok {
			continue
		}
		confirmations, err := e.confirmations.PriorConfirmations(ctx, merchant)
		if err != nil {
			return nil, fmt.Errorf("failed to load confirmations for %q: %w", merchant, err)
		}
		prior[merchant] = confirmations
	}
	return prior, nil
}

// classifyAll classifies the history over a bounded worker pool and returns
// a copy of the transactions with their categories applied. Order is
// preserved; the first classification error aborts the run.
func (e *Engine) classifyAll(ctx context.Context, history []model.Transaction, priorByMerchant map[string][]model.Classification) ([]model.Transaction, error) {
	classified := make([]model.Transaction, len(history))
	copy(classified, history)

	indexes := make(chan int)
	errs := make(chan error, e.config.ClassifyWorkers)

	var wg sync.WaitGroup
	for w := 0; w < e.config.ClassifyWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				txn := classified[i]
				classification, err := e.classifier.Classify(txn, priorByMerchant[txn.NormalizedMerchant()])
				if err != nil {
					select {
					case errs <- fmt.Errorf("failed to classify transaction %s: %w", txn.ID, err):
					default:
					}
					continue
				}
				classified[i].Category = classification.Category
			}
		}()
	}

feed:
	for i := range classified {
		select {
		case <-ctx.Done():
			break feed
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()
	close(errs)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := <-errs; err != nil {
		return nil, err
	}
	return classified, nil
}

// loadUsage resolves the usage signal for each recurring merchant. A missing
// signal is normal; the waste detector applies the default.
func (e *Engine) loadUsage(ctx context.Context, patterns []model.RecurringPattern) (map[string]model.UsageFrequency, error) {
	usage := make(map[string]model.UsageFrequency, len(patterns))
	for _, p := range patterns {
		freq, ok, err := e.usage.FrequencyFor(ctx, p.MerchantName)
		if err != nil {
			return nil, fmt.Errorf("failed to load usage signal for %q: %w", p.MerchantName, err)
		}
		if ok {
			usage[p.MerchantName] = freq
		}
	}
	return usage, nil
}

// checkDuplicateIDs rejects histories with repeated transaction IDs; the
// repository contract tolerates gaps but not duplicates.
func checkDuplicateIDs(history []model.Transaction) error {
	seen := make(map[string]bool, len(history))
	for _, txn := range history {
		if seen[txn.ID] {
			return common.ValidationError("history", fmt.Sprintf("contains duplicate transaction ID %q", txn.ID))
		}
		seen[txn.ID] = true
	}
	return nil
}
