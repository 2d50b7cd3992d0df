package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/finsight-io/finsight/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidSuggestion  = errors.New("invalid suggestion")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransaction validates a single transaction before persistence.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.AccountID == "" {
		return fmt.Errorf("%w: missing account ID", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.MerchantName == "" && txn.Description == "" {
		return fmt.Errorf("%w: missing merchant name and description", ErrInvalidTransaction)
	}
	return nil
}

// validateSuggestion validates a suggestion before persistence.
func validateSuggestion(s *model.Suggestion) error {
	if s == nil {
		return fmt.Errorf("%w: suggestion", ErrNilParameter)
	}
	if s.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidSuggestion)
	}
	if s.RuleKey == "" {
		return fmt.Errorf("%w: missing rule key", ErrInvalidSuggestion)
	}
	return nil
}
