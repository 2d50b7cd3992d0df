package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/finsight-io/finsight/internal/model"
)

// PriorConfirmations returns the user-confirmed classifications recorded for
// a merchant, most recent first.
func (s *SQLiteStorage) PriorConfirmations(ctx context.Context, merchantName string) ([]model.Classification, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	key := merchantKey(merchantName)
	if key == "" {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT transaction_id, category, subcategory
		FROM confirmations
		WHERE merchant_key = ?
		ORDER BY confirmed_at DESC`, key)
	if err != nil {
		return nil, fmt.Errorf("failed to query confirmations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var confirmations []model.Classification
	for rows.Next() {
		var c model.Classification
		var transactionID, subcategory sql.NullString
		if err := rows.Scan(&transactionID, &c.Category, &subcategory); err != nil {
			return nil, fmt.Errorf("failed to scan confirmation: %w", err)
		}
		c.TransactionID = transactionID.String
		c.Subcategory = subcategory.String
		c.Confidence = 1.0
		c.ConfirmedByUser = true
		confirmations = append(confirmations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate confirmations: %w", err)
	}

	return confirmations, nil
}

// SaveConfirmation records a user-confirmed classification for a merchant.
// The merchant key is derived from the classification's transaction via the
// stored transaction row when available, otherwise from the category's
// explanation context; callers should set TransactionID.
func (s *SQLiteStorage) SaveConfirmation(ctx context.Context, classification *model.Classification) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if classification == nil {
		return fmt.Errorf("%w: classification", ErrNilParameter)
	}
	if classification.Category == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidSuggestion)
	}

	key := ""
	if classification.TransactionID != "" {
		var merchant, description sql.NullString
		err := s.db.QueryRowContext(ctx,
			`SELECT merchant_name, description FROM transactions WHERE id = ?`,
			classification.TransactionID).Scan(&merchant, &description)
		switch {
		case err == sql.ErrNoRows:
		case err != nil:
			return fmt.Errorf("failed to resolve transaction merchant: %w", err)
		default:
			key = merchantKey(merchant.String)
			if key == "" {
				key = merchantKey(description.String)
			}
		}
	}
	if key == "" {
		return fmt.Errorf("%w: confirmation requires a stored transaction with a merchant", ErrInvalidTransaction)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO confirmations (merchant_key, transaction_id, category, subcategory)
		VALUES (?, ?, ?, ?)`,
		key, classification.TransactionID, classification.Category, classification.Subcategory)
	if err != nil {
		return fmt.Errorf("failed to save confirmation: %w", err)
	}
	return nil
}

// merchantKey normalizes a merchant name for lookup.
func merchantKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(name))), " ")
}
