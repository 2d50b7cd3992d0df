// Package anomaly flags transactions that deviate from an account's
// historical statistics.
package anomaly

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/finsight-io/finsight/internal/model"
	"github.com/finsight-io/finsight/internal/scoring"
)

// Config holds the detector's statistical thresholds.
type Config struct {
	// MinAmountSamples is the minimum same-category history required before
	// the amount deviation check runs.
	MinAmountSamples int
	// MinWeekdaySamples is the minimum same-category history required before
	// the day-of-week check runs, to avoid false positives on sparse data.
	MinWeekdaySamples int
	// MinWindowTransactions is the account activity floor for the rare
	// category check.
	MinWindowTransactions int
	// RareCategoryMax is the occurrence ceiling below which a category
	// counts as rarely used.
	RareCategoryMax int
}

// DefaultConfig returns the default detection thresholds.
func DefaultConfig() Config {
	return Config{
		MinAmountSamples:      5,
		MinWeekdaySamples:     8,
		MinWindowTransactions: 20,
		RareCategoryMax:       2,
	}
}

// Detector compares a transaction against the account's trailing-window
// history. It is stateless and safe for concurrent use.
type Detector struct {
	config Config
}

// New creates a detector with default thresholds.
func New() *Detector {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a detector with custom thresholds.
func NewWithConfig(config Config) *Detector {
	return &Detector{config: config}
}

// Detect evaluates the transaction against the account's window history and
// returns at most one anomaly record: the rules run in precedence order and
// the first match wins. Insufficient history for every rule is silence, not
// an error. The transaction itself is excluded from the history if present.
// knownMerchants carries the normalized merchant keys seen before the window
// started, so the first-contact check spans the account's full history.
func (d *Detector) Detect(txn model.Transaction, category string, history []model.Transaction, knownMerchants map[string]bool) *model.AnomalyRecord {
	prior := make([]model.Transaction, 0, len(history))
	for _, h := range history {
		if h.ID != txn.ID {
			prior = append(prior, h)
		}
	}

	if rec := d.checkUnusuallyHigh(txn, category, prior); rec != nil {
		return rec
	}
	if rec := d.checkUnusualMerchant(txn, prior, knownMerchants); rec != nil {
		return rec
	}
	if rec := d.checkUnusualTime(txn, category, prior); rec != nil {
		return rec
	}
	return d.checkUnusualCategory(txn, category, prior)
}

// checkUnusuallyHigh flags amounts more than two standard deviations and 50%
// above the same-category mean.
func (d *Detector) checkUnusuallyHigh(txn model.Transaction, category string, prior []model.Transaction) *model.AnomalyRecord {
	var amounts []float64
	for _, h := range prior {
		if h.Category == category {
			amounts = append(amounts, h.AbsAmount())
		}
	}
	if len(amounts) < d.config.MinAmountSamples {
		return nil
	}

	mean := scoring.Mean(amounts)
	stddev := scoring.StdDev(amounts)
	amount := txn.AbsAmount()

	if amount <= mean+2*stddev || amount <= mean*1.5 {
		return nil
	}

	severity := model.SeverityMedium
	if amount > mean*3 {
		severity = model.SeverityHigh
	}

	expected := mean
	return &model.AnomalyRecord{
		ID:             uuid.New().String(),
		TransactionID:  txn.ID,
		Type:           model.AnomalyUnusuallyHigh,
		Severity:       severity,
		ExpectedAmount: &expected,
		Explanation: fmt.Sprintf("amount is %.1fx the %s average of %.2f",
			amount/mean, category, mean),
	}
}

// checkUnusualMerchant flags the account's first-ever transaction with a
// merchant, consulting both the window and the pre-window known set. An
// empty history is no signal at all, so the account's very first
// transaction is never flagged.
func (d *Detector) checkUnusualMerchant(txn model.Transaction, prior []model.Transaction, known map[string]bool) *model.AnomalyRecord {
	merchant := txn.NormalizedMerchant()
	if merchant == "" || (len(prior) == 0 && len(known) == 0) {
		return nil
	}
	if known[merchant] {
		return nil
	}
	for _, h := range prior {
		if h.NormalizedMerchant() == merchant {
			return nil
		}
	}

	return &model.AnomalyRecord{
		ID:            uuid.New().String(),
		TransactionID: txn.ID,
		Type:          model.AnomalyUnusualMerchant,
		Severity:      model.SeverityMedium,
		Explanation:   fmt.Sprintf("first transaction with merchant %q", txn.MerchantName),
	}
}

// checkUnusualTime flags a day of week never before seen for the category.
func (d *Detector) checkUnusualTime(txn model.Transaction, category string, prior []model.Transaction) *model.AnomalyRecord {
	var sameCategory []model.Transaction
	for _, h := range prior {
		if h.Category == category {
			sameCategory = append(sameCategory, h)
		}
	}
	if len(sameCategory) < d.config.MinWeekdaySamples {
		return nil
	}

	weekday := txn.Date.Weekday()
	for _, h := range sameCategory {
		if h.Date.Weekday() == weekday {
			return nil
		}
	}

	return &model.AnomalyRecord{
		ID:            uuid.New().String(),
		TransactionID: txn.ID,
		Type:          model.AnomalyUnusualTime,
		Severity:      model.SeverityLow,
		Explanation:   fmt.Sprintf("no prior %s transaction on a %s", category, weekday),
	}
}

// checkUnusualCategory flags a rarely used category on an active account.
func (d *Detector) checkUnusualCategory(txn model.Transaction, category string, prior []model.Transaction) *model.AnomalyRecord {
	if len(prior) < d.config.MinWindowTransactions {
		return nil
	}

	count := 0
	for _, h := range prior {
		if h.Category == category {
			count++
		}
	}
	if count >= d.config.RareCategoryMax {
		return nil
	}

	return &model.AnomalyRecord{
		ID:            uuid.New().String(),
		TransactionID: txn.ID,
		Type:          model.AnomalyUnusualCategory,
		Severity:      model.SeverityLow,
		Explanation:   fmt.Sprintf("category %s is rarely used on this account", category),
	}
}
