package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/finsight-io/finsight/internal/model"
	"github.com/finsight-io/finsight/internal/service"
)

// SaveTransactions persists transactions, skipping duplicates by hash.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	for i := range transactions {
		if err := validateTransaction(&transactions[i]); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions
			(id, hash, account_id, date, merchant_name, description, currency, category, amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, txn := range transactions {
		hash := txn.Hash
		if hash == "" {
			hash = txn.GenerateHash()
		}
		if _, err := stmt.ExecContext(ctx,
			txn.ID, hash, txn.AccountID, txn.Date,
			txn.MerchantName, txn.Description, txn.Currency, txn.Category, txn.Amount); err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
		}
	}

	return tx.Commit()
}

// FetchHistory returns the account's transactions inside the window ordered
// by date ascending.
func (s *SQLiteStorage) FetchHistory(ctx context.Context, accountID string, window service.Window) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hash, account_id, date, merchant_name, description, currency, category, amount
		FROM transactions
		WHERE account_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC, id ASC`,
		accountID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		var merchant, description, currency, category sql.NullString
		if err := rows.Scan(&txn.ID, &txn.Hash, &txn.AccountID, &txn.Date,
			&merchant, &description, &currency, &category, &txn.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.MerchantName = merchant.String
		txn.Description = description.String
		txn.Currency = currency.String
		txn.Category = category.String
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}

	return transactions, nil
}

// MerchantsSeenBefore returns the normalized merchant keys of the account's
// transactions dated strictly before the given time.
func (s *SQLiteStorage) MerchantsSeenBefore(ctx context.Context, accountID string, before time.Time) (map[string]bool, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT merchant_name, description
		FROM transactions
		WHERE account_id = ? AND date < ?`,
		accountID, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query prior merchants: %w", err)
	}
	defer func() { _ = rows.Close() }()

	seen := make(map[string]bool)
	for rows.Next() {
		var merchant, description sql.NullString
		if err := rows.Scan(&merchant, &description); err != nil {
			return nil, fmt.Errorf("failed to scan prior merchant: %w", err)
		}
		txn := model.Transaction{MerchantName: merchant.String, Description: description.String}
		if key := txn.NormalizedMerchant(); key != "" {
			seen[key] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate prior merchants: %w", err)
	}

	return seen, nil
}

// ListAccounts returns every account ID with stored transactions.
func (s *SQLiteStorage) ListAccounts(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT account_id FROM transactions ORDER BY account_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan account ID: %w", err)
		}
		accounts = append(accounts, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}
