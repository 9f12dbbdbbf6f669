package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/securebank/payment-core/internal/domain"
	"github.com/securebank/payment-core/internal/logger"
	"github.com/shopspring/decimal"
)

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `
id, transaction_id, sender_account_id, receiver_account_id, sender_user_id,
receiver_user_id, type, amount, currency, sender_balance_before,
sender_balance_after, receiver_balance_before, receiver_balance_after,
description, category, status, fraud_score, is_flagged, is_fraudulent,
ledger_digest, payment_token_id, created_at, completed_at`

func (r *TransactionRepository) Create(ctx context.Context, transaction domain.Transaction) (domain.Transaction, error) {
	logger.Info("transaction repository create", logger.Fields{
		"transactionId": transaction.TransactionID,
		"type":          transaction.Type,
		"status":        transaction.Status,
	})

	const query = `
INSERT INTO transactions (
	id, transaction_id, sender_account_id, receiver_account_id, sender_user_id,
	receiver_user_id, type, amount, currency, sender_balance_before,
	sender_balance_after, receiver_balance_before, receiver_balance_after,
	description, category, status, fraud_score, is_flagged, is_fraudulent,
	ledger_digest, payment_token_id, completed_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
	$12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22
)
RETURNING created_at`

	if err := r.db.QueryRowContext(
		ctx,
		query,
		transaction.ID,
		transaction.TransactionID,
		transaction.SenderAccountID,
		transaction.ReceiverAccountID,
		transaction.SenderUserID,
		transaction.ReceiverUserID,
		transaction.Type,
		transaction.Amount,
		transaction.Currency,
		decimalPtr(transaction.SenderBalanceBefore),
		decimalPtr(transaction.SenderBalanceAfter),
		decimalPtr(transaction.ReceiverBalanceBefore),
		decimalPtr(transaction.ReceiverBalanceAfter),
		transaction.Description,
		transaction.Category,
		transaction.Status,
		transaction.FraudScore,
		transaction.IsFlagged,
		transaction.IsFraudulent,
		transaction.LedgerDigest,
		transaction.PaymentTokenID,
		transaction.CompletedAt,
	).Scan(&transaction.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.Transaction{}, domain.ErrDuplicateRecord
		}
		logger.Error("transaction repository create failed", err, logger.Fields{
			"transactionId": transaction.TransactionID,
		})
		return domain.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	return transaction, nil
}

func (r *TransactionRepository) GetByTransactionID(ctx context.Context, transactionID string) (domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1`

	rows, err := r.db.QueryContext(ctx, query, transactionID)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return domain.Transaction{}, fmt.Errorf("get transaction: %w", err)
		}
		return domain.Transaction{}, domain.ErrRecordNotFound
	}
	return scanTransaction(rows)
}

func (r *TransactionRepository) ListForUser(ctx context.Context, userID string, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + transactionColumns + `
FROM transactions
WHERE sender_user_id = $1 OR receiver_user_id = $1
ORDER BY created_at DESC
LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

func scanTransaction(rows *sql.Rows) (domain.Transaction, error) {
	var (
		transaction domain.Transaction
		sbb, sba    decimal.NullDecimal
		rbb, rba    decimal.NullDecimal
		completedAt sql.NullTime
	)

	if err := rows.Scan(
		&transaction.ID,
		&transaction.TransactionID,
		&transaction.SenderAccountID,
		&transaction.ReceiverAccountID,
		&transaction.SenderUserID,
		&transaction.ReceiverUserID,
		&transaction.Type,
		&transaction.Amount,
		&transaction.Currency,
		&sbb,
		&sba,
		&rbb,
		&rba,
		&transaction.Description,
		&transaction.Category,
		&transaction.Status,
		&transaction.FraudScore,
		&transaction.IsFlagged,
		&transaction.IsFraudulent,
		&transaction.LedgerDigest,
		&transaction.PaymentTokenID,
		&transaction.CreatedAt,
		&completedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Transaction{}, domain.ErrRecordNotFound
		}
		return domain.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	transaction.SenderBalanceBefore = nullDecimalPtr(sbb)
	transaction.SenderBalanceAfter = nullDecimalPtr(sba)
	transaction.ReceiverBalanceBefore = nullDecimalPtr(rbb)
	transaction.ReceiverBalanceAfter = nullDecimalPtr(rba)
	if completedAt.Valid {
		value := completedAt.Time
		transaction.CompletedAt = &value
	}

	return transaction, nil
}

func decimalPtr(value *decimal.Decimal) decimal.NullDecimal {
	if value == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *value, Valid: true}
}

func nullDecimalPtr(value decimal.NullDecimal) *decimal.Decimal {
	if !value.Valid {
		return nil
	}
	out := value.Decimal
	return &out
}
