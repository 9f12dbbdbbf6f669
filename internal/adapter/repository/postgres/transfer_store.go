package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/securebank/payment-core/internal/adapter/repository/repo_interfaces"
	"github.com/securebank/payment-core/internal/domain"
)

var _ repo_interfaces.TransferStore = (*TransferStore)(nil)

// TransferStore opens one database transaction per transfer attempt.
// Row locks taken by SELECT ... FOR UPDATE give the exclusive account
// scope; they are held until Commit or Rollback.
type TransferStore struct {
	db *sql.DB
}

func NewTransferStore(db *sql.DB) *TransferStore {
	return &TransferStore{db: db}
}

func (s *TransferStore) Begin(ctx context.Context) (repo_interfaces.TransferUnitOfWork, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transfer unit of work: %w", err)
	}
	return &transferUnitOfWork{tx: tx}, nil
}

type transferUnitOfWork struct {
	tx       *sql.Tx
	balances []domain.BalanceMutation
	records  []domain.Transaction
	done     bool
}

func (u *transferUnitOfWork) GetAccountForUpdate(ctx context.Context, accountID string) (domain.Account, error) {
	const query = `
SELECT id, user_id, alias, balance, currency, is_primary, created_at, updated_at
FROM accounts
WHERE id = $1
FOR UPDATE`

	var account domain.Account
	if err := u.tx.QueryRowContext(ctx, query, accountID).Scan(
		&account.ID,
		&account.UserID,
		&account.Alias,
		&account.Balance,
		&account.Currency,
		&account.IsPrimary,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrRecordNotFound
		}
		return domain.Account{}, fmt.Errorf("lock account: %w", err)
	}
	return account, nil
}

func (u *transferUnitOfWork) StageBalance(mutation domain.BalanceMutation) {
	u.balances = append(u.balances, mutation)
}

func (u *transferUnitOfWork) StageTransaction(transaction domain.Transaction) {
	u.records = append(u.records, transaction)
}

func (u *transferUnitOfWork) RedeemToken(ctx context.Context, tokenID string, redeemerUserID string, at time.Time) error {
	const update = `
UPDATE payment_tokens
SET status = CASE WHEN is_single_use THEN $4::text ELSE status END,
    redeemed_by = $2,
    redeemed_at = $3
WHERE id = $1 AND status = $5`

	result, err := u.tx.ExecContext(ctx, update, tokenID, redeemerUserID, at, domain.TokenStatusUsed, domain.TokenStatusActive)
	if err != nil {
		return fmt.Errorf("redeem payment token: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("redeem payment token: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var status domain.TokenStatus
	err = u.tx.QueryRowContext(ctx, `SELECT status FROM payment_tokens WHERE id = $1`, tokenID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrRecordNotFound
	}
	if err != nil {
		return fmt.Errorf("redeem payment token: %w", err)
	}
	if status == domain.TokenStatusExpired {
		return domain.ErrTokenExpired
	}
	return domain.ErrTokenAlreadyUsed
}

func (u *transferUnitOfWork) Commit(ctx context.Context) error {
	for _, mutation := range u.balances {
		if err := u.applyBalance(ctx, mutation); err != nil {
			return err
		}
	}
	for _, transaction := range u.records {
		if err := u.insertTransaction(ctx, transaction); err != nil {
			return err
		}
	}
	if err := u.tx.Commit(); err != nil {
		return fmt.Errorf("commit transfer unit of work: %w", err)
	}
	u.done = true
	return nil
}

func (u *transferUnitOfWork) Rollback(_ context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback transfer unit of work: %w", err)
	}
	return nil
}

func (u *transferUnitOfWork) applyBalance(ctx context.Context, mutation domain.BalanceMutation) error {
	const query = `
UPDATE accounts
SET balance = $2, updated_at = NOW()
WHERE id = $1 AND balance = $3`

	result, err := u.tx.ExecContext(ctx, query, mutation.AccountID, mutation.BalanceAfter, mutation.BalanceBefore)
	if err != nil {
		return fmt.Errorf("apply balance mutation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("apply balance mutation: %w", err)
	}
	if affected == 0 {
		return domain.ErrConcurrencyConflict
	}
	return nil
}

func (u *transferUnitOfWork) insertTransaction(ctx context.Context, transaction domain.Transaction) error {
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
)`

	if _, err := u.tx.ExecContext(
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
	); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}
