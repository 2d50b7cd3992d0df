package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
)

// Transaction represents a single financial transaction from any source.
// Amounts are signed: negative values are expenses, positive values income.
// The engine never mutates a transaction.
type Transaction struct {
	Date         time.Time
	ID           string
	AccountID    string
	MerchantName string // Cleaned merchant name
	Description  string // Raw transaction description
	Currency     string
	Category     string // Optional category hint from the source
	Hash         string
	Amount       float64
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.MerchantName,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// NormalizedMerchant returns the canonical lowercase merchant key used for
// grouping. Falls back to the description when no merchant name is present.
func (t *Transaction) NormalizedMerchant() string {
	name := strings.TrimSpace(strings.ToLower(t.MerchantName))
	if name == "" {
		name = strings.TrimSpace(strings.ToLower(t.Description))
	}
	return strings.Join(strings.Fields(name), " ")
}

// IsExpense reports whether the transaction is an outgoing charge.
func (t *Transaction) IsExpense() bool {
	return t.Amount < 0
}

// AbsAmount returns the unsigned magnitude of the transaction amount.
func (t *Transaction) AbsAmount() float64 {
	if t.Amount < 0 {
		return -t.Amount
	}
	return t.Amount
}
