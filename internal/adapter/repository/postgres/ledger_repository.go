package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/securebank/payment-core/internal/domain"
)

type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) AppendBlock(ctx context.Context, block domain.LedgerBlock) error {
	const query = `
INSERT INTO ledger_blocks (
	block_index, block_timestamp, digests, nonce, previous_hash, hash
) VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := r.db.ExecContext(
		ctx,
		query,
		block.Index,
		block.Timestamp,
		pq.Array(block.Digests),
		block.Nonce,
		block.PreviousHash,
		block.Hash,
	); err != nil {
		return fmt.Errorf("append ledger block: %w", err)
	}
	return nil
}

func (r *LedgerRepository) LoadChain(ctx context.Context) ([]domain.LedgerBlock, error) {
	const query = `
SELECT block_index, block_timestamp, digests, nonce, previous_hash, hash
FROM ledger_blocks
ORDER BY block_index ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load ledger chain: %w", err)
	}
	defer rows.Close()

	var out []domain.LedgerBlock
	for rows.Next() {
		var block domain.LedgerBlock
		if err := rows.Scan(
			&block.Index,
			&block.Timestamp,
			pq.Array(&block.Digests),
			&block.Nonce,
			&block.PreviousHash,
			&block.Hash,
		); err != nil {
			return nil, fmt.Errorf("scan ledger block: %w", err)
		}
		out = append(out, block)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load ledger chain: %w", err)
	}
	return out, nil
}

func (r *LedgerRepository) SavePending(ctx context.Context, pending domain.PendingDigest) error {
	const query = `
INSERT INTO ledger_pending_digests (digest, digest_timestamp)
VALUES ($1, $2)
ON CONFLICT (digest) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, pending.Digest, pending.Timestamp); err != nil {
		return fmt.Errorf("save pending digest: %w", err)
	}
	return nil
}

func (r *LedgerRepository) LoadPending(ctx context.Context) ([]domain.PendingDigest, error) {
	const query = `
SELECT digest, digest_timestamp
FROM ledger_pending_digests
ORDER BY digest_timestamp ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load pending digests: %w", err)
	}
	defer rows.Close()

	var out []domain.PendingDigest
	for rows.Next() {
		var pending domain.PendingDigest
		if err := rows.Scan(&pending.Digest, &pending.Timestamp); err != nil {
			return nil, fmt.Errorf("scan pending digest: %w", err)
		}
		out = append(out, pending)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load pending digests: %w", err)
	}
	return out, nil
}

func (r *LedgerRepository) DeletePending(ctx context.Context, digests []string) error {
	if len(digests) == 0 {
		return nil
	}
	const query = `DELETE FROM ledger_pending_digests WHERE digest = ANY($1)`
	if _, err := r.db.ExecContext(ctx, query, pq.Array(digests)); err != nil {
		return fmt.Errorf("delete pending digests: %w", err)
	}
	return nil
}
