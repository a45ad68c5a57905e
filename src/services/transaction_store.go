package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/username/fintrack/backend/src/intake"
	"github.com/username/fintrack/backend/src/logger"
	"github.com/username/fintrack/backend/src/models"
)

// TransactionStore is the append-only home of recorded transactions. It is the
// side of the intake boundary that assigns identifiers.
type TransactionStore struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
}

func NewTransactionStore(db *sql.DB) *TransactionStore {
	return &TransactionStore{
		db:    db,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Append stores tx for userID under a fresh id.
func (s *TransactionStore) Append(ctx context.Context, userID int64, tx models.Transaction) (models.StoredTransaction, error) {
	if !tx.Complete() {
		return models.StoredTransaction{}, fmt.Errorf("refusing to store incomplete transaction %+v", tx)
	}

	stored := models.StoredTransaction{
		ID:          s.newID(),
		UserID:      userID,
		CreatedAt:   s.now().UTC(),
		Transaction: tx,
	}

	_, err := s.db.ExecContext(ctx, `
	INSERT INTO transactions (id, user_id, amount, type, category, description, date, account_id, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stored.ID,
		stored.UserID,
		stored.Amount.String(),
		string(stored.Type),
		string(stored.Category),
		stored.Description,
		stored.Date,
		string(stored.AccountID),
		stored.CreatedAt,
	)
	if err != nil {
		return models.StoredTransaction{}, fmt.Errorf("failed to store transaction for userID %d: %w", userID, err)
	}

	logger.FromContext(ctx).Info("Transaction recorded",
		"userID", userID, "transactionID", stored.ID,
		"type", stored.Type, "category", stored.Category, "accountID", stored.AccountID)
	return stored, nil
}

// List returns the user's transactions, newest first.
func (s *TransactionStore) List(ctx context.Context, userID int64, filter models.TransactionFilter) ([]models.StoredTransaction, error) {
	query := `
	SELECT id, user_id, amount, type, category, description, date, account_id, created_at
	FROM transactions
	WHERE user_id = ?`
	args := []interface{}{userID}

	if filter.From != "" {
		query += " AND date >= ?"
		args = append(args, filter.From)
	}
	if filter.To != "" {
		query += " AND date <= ?"
		args = append(args, filter.To)
	}
	if filter.Type != "" {
		query += " AND type = ?"
		args = append(args, string(filter.Type))
	}
	query += " ORDER BY date DESC, created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for userID %d: %w", userID, err)
	}
	defer rows.Close()

	transactions := []models.StoredTransaction{}
	for rows.Next() {
		var (
			tx     models.StoredTransaction
			amount string
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &amount, &tx.Type, &tx.Category, &tx.Description, &tx.Date, &tx.AccountID, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction for userID %d: %w", userID, err)
		}
		if tx.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("transaction %s has unreadable amount %q: %w", tx.ID, amount, err)
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions for userID %d: %w", userID, err)
	}
	return transactions, nil
}

// Sink binds the store to one user for the intake service. The stored record
// is handed to onStored, which may be nil.
func (s *TransactionStore) Sink(userID int64, onStored func(models.StoredTransaction)) intake.Sink {
	return intake.SinkFunc(func(ctx context.Context, tx models.Transaction) error {
		stored, err := s.Append(ctx, userID, tx)
		if err != nil {
			return err
		}
		if onStored != nil {
			onStored(stored)
		}
		return nil
	})
}
