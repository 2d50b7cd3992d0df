// Package testutil provides shared helpers for tests that need a real
// storage layer.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/finsight-io/finsight/internal/model"
	"github.com/finsight-io/finsight/internal/storage"
)

// SetupTestDB creates a migrated in-memory SQLite storage with automatic
// cleanup.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// Transaction builds a valid expense transaction for tests.
func Transaction(id, accountID, merchant string, amount float64, date time.Time) model.Transaction {
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
