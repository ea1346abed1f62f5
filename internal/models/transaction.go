package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Amount constraints: cents precision, 18 integer digits (NUMERIC(20,2)).
const (
	AmountScale = 2
	// DefaultCategory is used when a transaction is created without a category.
	DefaultCategory = "general"
)

var maxAmount = decimal.New(1, 18)

// Transaction is a single ledger entry. Positive amounts are credits, negative are debits.
type Transaction struct {
	ID          uuid.UUID       `db:"id"`          // Server-assigned identifier
	OwnerID     uuid.UUID       `db:"owner_id"`    // Owning user
	Amount      decimal.Decimal `db:"amount"`      // Signed exact amount
	Category    string          `db:"category"`    // Free-form category
	Description string          `db:"description"` // Free-form description
	CreatedAt   time.Time       `db:"created_at"`  // Default ordering key
}

// TransactionFilter narrows a transaction listing. From is inclusive, To is exclusive.
type TransactionFilter struct {
	From     *time.Time
	To       *time.Time
	Category string
}

// Page selects a window of a listing. AsOf bounds the listing to rows created
// at or before it. After, when set, starts the window right after a cursor
// instead of at an offset.
type Page struct {
	Number int
	Size   int
	AsOf   time.Time
	After  *Cursor
}

// Pagination defaults.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Offset returns the number of rows to skip. It is zero for cursor pages.
func (p Page) Offset() int {
	if p.After != nil {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// TransactionPage is one page of an owner's transactions.
type TransactionPage struct {
	Transactions []Transaction
	Page         int
	PageSize     int
	Total        int64
	AsOf         time.Time
	Next         *Cursor // nil on the last page
}

// TransactionEvent is published after a transaction has been stored.
type TransactionEvent struct {
	Type          string `json:"type"`           // Event type, e.g. "transaction.created"
	TransactionID string `json:"transaction_id"` // Transaction identifier
	OwnerID       string `json:"owner_id"`       // Owning user
	Amount        string `json:"amount"`         // Exact decimal amount
	Category      string `json:"category"`       // Category
	Timestamp     int64  `json:"timestamp"`      // Unix timestamp (seconds) of creation
}

// ValidateAmount checks the ledger rules for an amount.
func ValidateAmount(amount decimal.Decimal) error {
	switch {
	case amount.IsZero():
		return ErrInvalidAmount
	case amount.Abs().GreaterThanOrEqual(maxAmount):
		return ErrInvalidAmount
	case !amount.Equal(amount.Truncate(AmountScale)):
		return ErrInvalidAmount
	}
	return nil
}

// FormatAmount renders an amount as an exact JSON number with two fractional digits.
func FormatAmount(amount decimal.Decimal) json.Number {
	return json.Number(amount.StringFixed(AmountScale))
}
