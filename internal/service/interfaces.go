// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/finsight-io/finsight/internal/model"
)

// Window is the trailing analysis period for one engine run.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window (inclusive bounds).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// TrailingWindow builds a window ending at end and reaching back the given
// number of days.
func TrailingWindow(end time.Time, days int) Window {
	return Window{Start: end.AddDate(0, 0, -days), End: end}
}

// TransactionRepository supplies historical transactions per financial
// profile. Read-only to the engine; implementations must return transactions
// ordered by date ascending with no duplicate IDs.
type TransactionRepository interface {
	FetchHistory(ctx context.Context, accountID string, window Window) ([]model.Transaction, error)
	// MerchantsSeenBefore returns the normalized merchant keys of the
	// account's transactions dated strictly before the given time, so
	// first-contact checks can look past the analysis window.
	MerchantsSeenBefore(ctx context.Context, accountID string, before time.Time) (map[string]bool, error)
	ListAccounts(ctx context.Context) ([]string, error)
}

// UserConfirmationStore exposes prior user-confirmed classifications for a
// merchant. Read-only; confirmations are written by an external action.
type UserConfirmationStore interface {
	PriorConfirmations(ctx context.Context, merchantName string) ([]model.Classification, error)
}

// UsageSignalSource reports how often a merchant's service is actually used.
// Absence of a signal is not an error; ok is false when no data exists and
// the caller applies the default.
type UsageSignalSource interface {
	FrequencyFor(ctx context.Context, merchantName string) (freq model.UsageFrequency, ok bool, err error)
}

// SuggestionStateStore tracks suggestion lifecycle outside the engine. The
// engine reads dismissal history to honor the re-derivation cooldown and
// writes through user actions; it never transitions state on its own.
type SuggestionStateStore interface {
	SaveSuggestions(ctx context.Context, accountID string, suggestions []model.Suggestion) error
	RecordAction(ctx context.Context, suggestionID string, action model.SuggestionAction) error
	GetSuggestion(ctx context.Context, suggestionID string) (*model.Suggestion, error)
	// DismissedRuleKeys returns the rule keys dismissed for the account on or
	// after the given time.
	DismissedRuleKeys(ctx context.Context, accountID string, since time.Time) (map[string]time.Time, error)
	ListSuggestions(ctx context.Context, accountID string) ([]model.Suggestion, error)
}

// Storage is the full persistence contract implemented by the sqlite layer.
// The engine itself depends only on the narrow read interfaces above.
type Storage interface {
	TransactionRepository
	UserConfirmationStore
	UsageSignalSource
	SuggestionStateStore

	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	SaveConfirmation(ctx context.Context, classification *model.Classification) error
	SetUsageFrequency(ctx context.Context, merchantName string, freq model.UsageFrequency) error

	Migrate(ctx context.Context) error
	Close() error
}
