package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/securebank/payment-core/internal/domain"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	const query = `
INSERT INTO accounts (
	user_id,
	alias,
	balance,
	currency,
	is_primary
) VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at, updated_at`

	if err := r.db.QueryRowContext(
		ctx,
		query,
		account.UserID,
		account.Alias,
		account.Balance,
		account.Currency,
		account.IsPrimary,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt); err != nil {
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (domain.Account, error) {
	const query = `
SELECT id, user_id, alias, balance, currency, is_primary, created_at, updated_at
FROM accounts
WHERE id = $1`

	return r.scanAccount(r.db.QueryRowContext(ctx, query, id))
}

func (r *AccountRepository) GetByAlias(ctx context.Context, alias string) (domain.Account, error) {
	const query = `
SELECT id, user_id, alias, balance, currency, is_primary, created_at, updated_at
FROM accounts
WHERE alias = $1`

	return r.scanAccount(r.db.QueryRowContext(ctx, query, alias))
}

func (r *AccountRepository) GetPrimaryForUser(ctx context.Context, userID string) (domain.Account, error) {
	const query = `
SELECT id, user_id, alias, balance, currency, is_primary, created_at, updated_at
FROM accounts
WHERE user_id = $1 AND is_primary = TRUE`

	return r.scanAccount(r.db.QueryRowContext(ctx, query, userID))
}

func (r *AccountRepository) scanAccount(row *sql.Row) (domain.Account, error) {
	var account domain.Account
	if err := row.Scan(
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
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}
	return account, nil
}
