package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/securebank/payment-core/internal/adapter/repository/repo_interfaces"
	"github.com/securebank/payment-core/internal/domain"
	"github.com/securebank/payment-core/internal/logger"
	"github.com/securebank/payment-core/internal/metrics"
	"github.com/securebank/payment-core/internal/usecase/service_interfaces"
)

const genesisPreviousHash = "0000000000000000000000000000000000000000000000000000000000000000"
const genesisDigest = "Genesis Block - SecureBank Initialized"
const defaultMaxMiningAttempts = 10_000_000

// LedgerService keeps the append-only hash chain in memory and mirrors it
// through the repository so it survives restart. Block mining is the one
// unbounded-ish operation in the system; it is bounded by maxAttempts and
// the caller's context, and runs outside the chain lock so admissions are
// never blocked behind a nonce search.
type LedgerService struct {
	mu          sync.Mutex
	repo        repo_interfaces.LedgerRepository
	difficulty  int
	maxAttempts int64
	chain       []domain.LedgerBlock
	pending     []domain.PendingDigest
}

var _ service_interfaces.LedgerService = (*LedgerService)(nil)

func NewLedgerService(ctx context.Context, repo repo_interfaces.LedgerRepository, difficulty int, maxAttempts int64) (*LedgerService, error) {
	if difficulty < 1 {
		return nil, fmt.Errorf("ledger difficulty must be at least 1")
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxMiningAttempts
	}

	s := &LedgerService{repo: repo, difficulty: difficulty, maxAttempts: maxAttempts}

	chain, err := repo.LoadChain(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger chain: %w", err)
	}
	s.chain = chain

	if len(s.chain) == 0 {
		genesis := domain.LedgerBlock{
			Index:        0,
			Timestamp:    blockTime(),
			Digests:      []string{genesisDigest},
			Nonce:        0,
			PreviousHash: genesisPreviousHash,
		}
		genesis.Hash = blockHash(genesis)
		if err := repo.AppendBlock(ctx, genesis); err != nil {
			return nil, fmt.Errorf("persist genesis block: %w", err)
		}
		s.chain = append(s.chain, genesis)
	}

	pending, err := repo.LoadPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pending digests: %w", err)
	}
	s.pending = pending

	return s, nil
}

// HashTransaction computes the digest admitted to the chain for a
// transaction payload, over its canonical serialization.
func (s *LedgerService) HashTransaction(payload any) (string, error) {
	canonical, err := canonicalJSON(payload)
	if err != nil {
		return "", fmt.Errorf("hash transaction payload: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

func (s *LedgerService) Admit(ctx context.Context, digest string) error {
	pending := domain.PendingDigest{Digest: digest, Timestamp: blockTime()}

	s.mu.Lock()
	s.pending = append(s.pending, pending)
	s.mu.Unlock()

	if err := s.repo.SavePending(ctx, pending); err != nil {
		// The digest stays admitted in memory; persistence is best effort
		// and the digest will be committed with the next mined block.
		logger.Error("ledger persist pending digest failed", err, logger.Fields{"digest": digest})
	}
	return nil
}

// MineBlock drains the currently pending digests into one new block. It
// returns nil with no error when nothing is pending.
func (s *LedgerService) MineBlock(ctx context.Context) (*domain.LedgerBlock, error) {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return nil, nil
	}
	previous := s.chain[len(s.chain)-1]
	drained := len(s.pending)
	digests := make([]string, drained)
	for i, pending := range s.pending[:drained] {
		digests[i] = pending.Digest
	}
	s.mu.Unlock()

	start := time.Now()
	nonce, err := s.proofOfWork(ctx, previous.Nonce)
	if err != nil {
		return nil, err
	}
	metrics.MiningDuration.Observe(time.Since(start).Seconds())

	block := domain.LedgerBlock{
		Index:        previous.Index + 1,
		Timestamp:    blockTime(),
		Digests:      digests,
		Nonce:        nonce,
		PreviousHash: previous.Hash,
	}
	block.Hash = blockHash(block)

	s.mu.Lock()
	if s.chain[len(s.chain)-1].Index != previous.Index {
		s.mu.Unlock()
		return nil, domain.ErrConcurrencyConflict
	}
	s.chain = append(s.chain, block)
	s.pending = s.pending[drained:]
	s.mu.Unlock()

	if err := s.repo.AppendBlock(ctx, block); err != nil {
		return nil, fmt.Errorf("persist mined block: %w", err)
	}
	// Only the drained digests leave the repository; anything admitted
	// during the nonce search stays queued for the next block.
	if err := s.repo.DeletePending(ctx, digests); err != nil {
		logger.Error("ledger delete pending failed", err, nil)
	}

	metrics.BlocksMinedTotal.Inc()
	logger.Info("ledger block mined", logger.Fields{
		"index":   block.Index,
		"digests": len(block.Digests),
		"proof":   block.Nonce,
	})
	return &block, nil
}

func (s *LedgerService) proofOfWork(ctx context.Context, previousNonce int64) (int64, error) {
	for nonce := int64(0); nonce < s.maxAttempts; nonce++ {
		if nonce%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return 0, fmt.Errorf("mining cancelled: %w", err)
			}
		}
		if s.isValidProof(previousNonce, nonce) {
			return nonce, nil
		}
	}
	return 0, fmt.Errorf("mining budget of %d attempts exhausted", s.maxAttempts)
}

func (s *LedgerService) isValidProof(previousNonce int64, nonce int64) bool {
	guess := sha256.Sum256([]byte(fmt.Sprintf("%d%d", previousNonce, nonce)))
	return strings.HasPrefix(hex.EncodeToString(guess[:]), strings.Repeat("0", s.difficulty))
}

func (s *LedgerService) VerifyDigest(digest string) domain.DigestVerification {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, block := range s.chain {
		for _, d := range block.Digests {
			if d == digest {
				return domain.DigestVerification{
					Found:      true,
					BlockIndex: block.Index,
					BlockHash:  block.Hash,
					Timestamp:  block.Timestamp,
				}
			}
		}
	}
	for _, pending := range s.pending {
		if pending.Digest == digest {
			return domain.DigestVerification{
				Found:     true,
				Pending:   true,
				Timestamp: pending.Timestamp,
			}
		}
	}
	return domain.DigestVerification{}
}

// ValidateChain is a read-only diagnostic; a broken chain is reported,
// never repaired.
func (s *LedgerService) ValidateChain() bool {
	chain := s.Chain()

	for i := range chain {
		if chain[i].Hash != blockHash(chain[i]) {
			return false
		}
		if i == 0 {
			continue
		}
		if chain[i].PreviousHash != chain[i-1].Hash {
			return false
		}
		if !s.isValidProof(chain[i-1].Nonce, chain[i].Nonce) {
			return false
		}
	}
	return true
}

func (s *LedgerService) Chain() []domain.LedgerBlock {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.LedgerBlock, len(s.chain))
	copy(out, s.chain)
	return out
}

func (s *LedgerService) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// blockTime truncates to microseconds, the precision of a timestamptz
// column; a finer-grained timestamp would hash differently after a reload.
func blockTime() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func blockHash(block domain.LedgerBlock) string {
	canonical, err := canonicalJSON(map[string]any{
		"index":         block.Index,
		"timestamp":     block.Timestamp.UTC().Format(time.RFC3339Nano),
		"transactions":  block.Digests,
		"proof":         block.Nonce,
		"previous_hash": block.PreviousHash,
	})
	if err != nil {
		// canonicalJSON cannot fail for this shape
		return ""
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

// canonicalJSON renders a value as JSON with deterministically ordered
// object keys.
func canonicalJSON(value any) ([]byte, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return json.Marshal(generic)
}
