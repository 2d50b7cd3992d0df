package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/finsight-io/finsight/internal/model"
)

// FrequencyFor returns the recorded usage signal for a merchant. A missing
// signal is reported through ok, not as an error.
func (s *SQLiteStorage) FrequencyFor(ctx context.Context, merchantName string) (model.UsageFrequency, bool, error) {
	if err := validateContext(ctx); err != nil {
		return "", false, err
	}
	key := merchantKey(merchantName)
	if key == "" {
		return "", false, nil
	}

	var frequency string
	err := s.db.QueryRowContext(ctx,
		`SELECT frequency FROM usage_signals WHERE merchant_key = ?`, key).Scan(&frequency)
	switch {
	case err == sql.ErrNoRows:
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("failed to query usage signal: %w", err)
	}

	return model.UsageFrequency(frequency), true, nil
}

// SetUsageFrequency records or replaces the usage signal for a merchant.
func (s *SQLiteStorage) SetUsageFrequency(ctx context.Context, merchantName string, freq model.UsageFrequency) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(merchantName, "merchantName"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_signals (merchant_key, frequency, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(merchant_key) DO UPDATE SET
			frequency = excluded.frequency,
			updated_at = CURRENT_TIMESTAMP`,
		merchantKey(merchantName), string(freq))
	if err != nil {
		return fmt.Errorf("failed to save usage signal: %w", err)
	}
	return nil
}
