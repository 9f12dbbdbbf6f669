package repo_interfaces

import (
	"context"

	"github.com/securebank/payment-core/internal/domain"
)

// LedgerRepository persists the hash chain and the pending-digest queue so
// the ledger survives process restart.
type LedgerRepository interface {
	AppendBlock(ctx context.Context, block domain.LedgerBlock) error
	LoadChain(ctx context.Context) ([]domain.LedgerBlock, error)
	SavePending(ctx context.Context, pending domain.PendingDigest) error
	LoadPending(ctx context.Context) ([]domain.PendingDigest, error)
	// DeletePending removes exactly the given digests; digests admitted
	// concurrently with a mining pass stay queued.
	DeletePending(ctx context.Context, digests []string) error
}
