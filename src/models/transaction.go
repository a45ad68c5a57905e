package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO 8601 calendar date used on every transaction.
const DateLayout = "2006-01-02"

// Transaction is a single money movement as produced by intake. It carries no
// identifier; whoever stores it assigns one.
type Transaction struct {
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	Category    Category        `json:"category"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	AccountID   AccountID       `json:"accountId"`
}

// Complete reports whether every field is populated with an allowed value.
func (t Transaction) Complete() bool {
	if !t.Amount.IsPositive() || t.Description == "" {
		return false
	}
	if _, err := time.Parse(DateLayout, t.Date); err != nil {
		return false
	}
	return t.Type.Valid() && t.Category.Valid() && t.AccountID.Valid()
}

// StoredTransaction is a Transaction after the store has accepted it.
type StoredTransaction struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	Transaction
}

// TransactionFilter narrows a transaction listing. Zero values mean no bound.
type TransactionFilter struct {
	From  string
	To    string
	Type  TransactionType
	Limit int
}
