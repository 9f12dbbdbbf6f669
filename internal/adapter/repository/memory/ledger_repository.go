package memory

import (
	"context"
	"sync"

	"github.com/securebank/payment-core/internal/domain"
)

type LedgerRepository struct {
	mu      sync.Mutex
	blocks  []domain.LedgerBlock
	pending []domain.PendingDigest
}

func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{}
}

func (r *LedgerRepository) AppendBlock(_ context.Context, block domain.LedgerBlock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blocks = append(r.blocks, block)
	return nil
}

func (r *LedgerRepository) LoadChain(_ context.Context) ([]domain.LedgerBlock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.LedgerBlock, len(r.blocks))
	copy(out, r.blocks)
	return out, nil
}

func (r *LedgerRepository) SavePending(_ context.Context, pending domain.PendingDigest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, pending)
	return nil
}

func (r *LedgerRepository) LoadPending(_ context.Context) ([]domain.PendingDigest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.PendingDigest, len(r.pending))
	copy(out, r.pending)
	return out, nil
}

func (r *LedgerRepository) DeletePending(_ context.Context, digests []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	drained := make(map[string]struct{}, len(digests))
	for _, digest := range digests {
		drained[digest] = struct{}{}
	}

	kept := r.pending[:0]
	for _, pending := range r.pending {
		if _, ok := drained[pending.Digest]; !ok {
			kept = append(kept, pending)
		}
	}
	r.pending = kept
	return nil
}
