package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/securebank/payment-core/internal/domain"
	"github.com/shopspring/decimal"
)

type TokenRepository struct {
	db *sql.DB
}

func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

const tokenColumns = `
id, creator_user_id, amount, description, nonce, signature, artifact_hash,
is_single_use, status, expires_at, redeemed_by, redeemed_at, created_at`

func (r *TokenRepository) Create(ctx context.Context, token domain.PaymentToken) (domain.PaymentToken, error) {
	const query = `
INSERT INTO payment_tokens (
	id, creator_user_id, amount, description, nonce, signature,
	artifact_hash, is_single_use, status, expires_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING created_at`

	var amount decimal.NullDecimal
	if token.Amount != nil {
		amount = decimal.NullDecimal{Decimal: *token.Amount, Valid: true}
	}

	if err := r.db.QueryRowContext(
		ctx,
		query,
		token.ID,
		token.CreatorUserID,
		amount,
		token.Description,
		token.Nonce,
		token.Signature,
		token.ArtifactHash,
		token.IsSingleUse,
		token.Status,
		token.ExpiresAt,
	).Scan(&token.CreatedAt); err != nil {
		return domain.PaymentToken{}, fmt.Errorf("create payment token: %w", err)
	}

	return token, nil
}

func (r *TokenRepository) GetByID(ctx context.Context, id string) (domain.PaymentToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM payment_tokens WHERE id = $1`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return domain.PaymentToken{}, fmt.Errorf("get payment token: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return domain.PaymentToken{}, fmt.Errorf("get payment token: %w", err)
		}
		return domain.PaymentToken{}, domain.ErrRecordNotFound
	}
	return scanToken(rows)
}

func (r *TokenRepository) ListForCreator(ctx context.Context, creatorUserID string, limit int) ([]domain.PaymentToken, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + tokenColumns + `
FROM payment_tokens
WHERE creator_user_id = $1
ORDER BY created_at DESC
LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, creatorUserID, limit)
	if err != nil {
		return nil, fmt.Errorf("list payment tokens: %w", err)
	}
	defer rows.Close()

	var out []domain.PaymentToken
	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, token)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list payment tokens: %w", err)
	}
	return out, nil
}

func (r *TokenRepository) MarkExpired(ctx context.Context, id string) error {
	const query = `
UPDATE payment_tokens
SET status = $2
WHERE id = $1 AND status = $3`

	if _, err := r.db.ExecContext(ctx, query, id, domain.TokenStatusExpired, domain.TokenStatusActive); err != nil {
		return fmt.Errorf("expire payment token: %w", err)
	}
	return nil
}

func (r *TokenRepository) Cancel(ctx context.Context, id string, creatorUserID string) error {
	const query = `
UPDATE payment_tokens
SET status = $3
WHERE id = $1 AND creator_user_id = $2 AND status = $4`

	result, err := r.db.ExecContext(ctx, query, id, creatorUserID, domain.TokenStatusCancelled, domain.TokenStatusActive)
	if err != nil {
		return fmt.Errorf("cancel payment token: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("cancel payment token: %w", err)
	}
	if affected == 0 {
		return domain.ErrTokenAlreadyUsed
	}
	return nil
}

func scanToken(rows *sql.Rows) (domain.PaymentToken, error) {
	var (
		token      domain.PaymentToken
		amount     decimal.NullDecimal
		redeemedAt sql.NullTime
	)

	if err := rows.Scan(
		&token.ID,
		&token.CreatorUserID,
		&amount,
		&token.Description,
		&token.Nonce,
		&token.Signature,
		&token.ArtifactHash,
		&token.IsSingleUse,
		&token.Status,
		&token.ExpiresAt,
		&token.RedeemedBy,
		&redeemedAt,
		&token.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PaymentToken{}, domain.ErrRecordNotFound
		}
		return domain.PaymentToken{}, fmt.Errorf("scan payment token: %w", err)
	}

	if amount.Valid {
		value := amount.Decimal
		token.Amount = &value
	}
	if redeemedAt.Valid {
		value := redeemedAt.Time
		token.RedeemedAt = &value
	}

	return token, nil
}
