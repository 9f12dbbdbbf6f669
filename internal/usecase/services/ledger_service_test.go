package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/securebank/payment-core/internal/adapter/repository/memory"
)

func newTestLedger(t *testing.T, difficulty int, maxAttempts int64) (*LedgerService, *memory.LedgerRepository) {
	t.Helper()
	repo := memory.NewLedgerRepository()
	svc, err := NewLedgerService(context.Background(), repo, difficulty, maxAttempts)
	if err != nil {
		t.Fatalf("NewLedgerService: %v", err)
	}
	return svc, repo
}

func TestLedgerCreatesGenesisBlock(t *testing.T) {
	svc, _ := newTestLedger(t, 1, 0)

	chain := svc.Chain()
	if len(chain) != 1 {
		t.Fatalf("expected chain of length 1, got %d", len(chain))
	}
	genesis := chain[0]
	if genesis.Index != 0 {
		t.Errorf("expected genesis index 0, got %d", genesis.Index)
	}
	if genesis.PreviousHash != strings.Repeat("0", 64) {
		t.Errorf("unexpected genesis previous hash %q", genesis.PreviousHash)
	}
	if genesis.Hash == "" {
		t.Error("expected genesis hash to be set")
	}
	if !svc.ValidateChain() {
		t.Error("expected fresh chain to validate")
	}
}

func TestLedgerAdmitAndMine(t *testing.T) {
	svc, _ := newTestLedger(t, 1, 0)
	ctx := context.Background()

	digestA, err := svc.HashTransaction(map[string]any{"transaction_id": "TXN1", "amount": "100"})
	if err != nil {
		t.Fatalf("HashTransaction: %v", err)
	}
	digestB, err := svc.HashTransaction(map[string]any{"transaction_id": "TXN2", "amount": "200"})
	if err != nil {
		t.Fatalf("HashTransaction: %v", err)
	}

	if err := svc.Admit(ctx, digestA); err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if err := svc.Admit(ctx, digestB); err != nil {
		t.Fatalf("Admit: %v", err)
	}

	pending := svc.VerifyDigest(digestA)
	if !pending.Found || !pending.Pending {
		t.Fatalf("expected admitted digest to be pending, got %+v", pending)
	}

	block, err := svc.MineBlock(ctx)
	if err != nil {
		t.Fatalf("MineBlock: %v", err)
	}
	if block == nil {
		t.Fatal("expected a mined block")
	}
	if block.Index != 1 {
		t.Errorf("expected block index 1, got %d", block.Index)
	}
	if len(block.Digests) != 2 {
		t.Errorf("expected 2 digests in block, got %d", len(block.Digests))
	}
	if svc.PendingCount() != 0 {
		t.Errorf("expected no pending digests after mining, got %d", svc.PendingCount())
	}

	verified := svc.VerifyDigest(digestB)
	if !verified.Found || verified.Pending {
		t.Fatalf("expected digest committed to a block, got %+v", verified)
	}
	if verified.BlockIndex != 1 {
		t.Errorf("expected digest in block 1, got %d", verified.BlockIndex)
	}
	if !svc.ValidateChain() {
		t.Error("expected chain to validate after mining")
	}
}

func TestLedgerMineWithNothingPending(t *testing.T) {
	svc, _ := newTestLedger(t, 1, 0)

	block, err := svc.MineBlock(context.Background())
	if err != nil {
		t.Fatalf("MineBlock: %v", err)
	}
	if block != nil {
		t.Fatalf("expected no block, got index %d", block.Index)
	}
}

func TestLedgerDetectsTampering(t *testing.T) {
	svc, _ := newTestLedger(t, 1, 0)
	ctx := context.Background()

	digest, _ := svc.HashTransaction(map[string]any{"transaction_id": "TXN1"})
	_ = svc.Admit(ctx, digest)
	if _, err := svc.MineBlock(ctx); err != nil {
		t.Fatalf("MineBlock: %v", err)
	}
	if !svc.ValidateChain() {
		t.Fatal("expected chain to validate before tampering")
	}

	svc.mu.Lock()
	svc.chain[1].Digests[0] = "tampered"
	svc.mu.Unlock()

	if svc.ValidateChain() {
		t.Error("expected tampered chain to fail validation")
	}
}

func TestLedgerMiningBudgetExhausted(t *testing.T) {
	svc, _ := newTestLedger(t, 8, 10)
	ctx := context.Background()

	digest, _ := svc.HashTransaction(map[string]any{"transaction_id": "TXN1"})
	_ = svc.Admit(ctx, digest)

	if _, err := svc.MineBlock(ctx); err == nil {
		t.Fatal("expected mining budget exhaustion error")
	}
	if svc.PendingCount() != 1 {
		t.Errorf("expected digest to stay pending after failed mining, got %d", svc.PendingCount())
	}
	if len(svc.Chain()) != 1 {
		t.Errorf("expected no block appended after failed mining, got %d", len(svc.Chain()))
	}
}

func TestLedgerMiningCancelled(t *testing.T) {
	svc, _ := newTestLedger(t, 8, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	digest, _ := svc.HashTransaction(map[string]any{"transaction_id": "TXN1"})
	_ = svc.Admit(context.Background(), digest)

	if _, err := svc.MineBlock(ctx); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestLedgerRestartRestoresChainAndPending(t *testing.T) {
	svc, repo := newTestLedger(t, 1, 0)
	ctx := context.Background()

	mined, _ := svc.HashTransaction(map[string]any{"transaction_id": "TXN1"})
	_ = svc.Admit(ctx, mined)
	if _, err := svc.MineBlock(ctx); err != nil {
		t.Fatalf("MineBlock: %v", err)
	}
	waiting, _ := svc.HashTransaction(map[string]any{"transaction_id": "TXN2"})
	_ = svc.Admit(ctx, waiting)

	restarted, err := NewLedgerService(ctx, repo, 1, 0)
	if err != nil {
		t.Fatalf("NewLedgerService after restart: %v", err)
	}
	if len(restarted.Chain()) != 2 {
		t.Errorf("expected restored chain of length 2, got %d", len(restarted.Chain()))
	}
	if restarted.PendingCount() != 1 {
		t.Errorf("expected 1 restored pending digest, got %d", restarted.PendingCount())
	}
	if !restarted.ValidateChain() {
		t.Error("expected restored chain to validate")
	}

	verification := restarted.VerifyDigest(mined)
	if !verification.Found || verification.Pending {
		t.Errorf("expected mined digest found in a block after restart, got %+v", verification)
	}
}

func TestLedgerChainValidatesAfterTimestampRoundTrip(t *testing.T) {
	svc, _ := newTestLedger(t, 1, 0)
	ctx := context.Background()

	digest, _ := svc.HashTransaction(map[string]any{"transaction_id": "TXN1"})
	_ = svc.Admit(ctx, digest)
	if _, err := svc.MineBlock(ctx); err != nil {
		t.Fatalf("MineBlock: %v", err)
	}

	for _, block := range svc.Chain() {
		if block.Timestamp.Nanosecond()%1000 != 0 {
			t.Fatalf("block %d timestamp carries sub-microsecond precision: %s", block.Index, block.Timestamp.Format(time.RFC3339Nano))
		}
	}

	// A timestamptz column keeps microseconds; simulate the storage round
	// trip and make sure every hash still recomputes.
	svc.mu.Lock()
	for i := range svc.chain {
		svc.chain[i].Timestamp = svc.chain[i].Timestamp.Truncate(time.Microsecond)
	}
	svc.mu.Unlock()

	if !svc.ValidateChain() {
		t.Error("expected chain to validate after microsecond truncation")
	}
}

type admitDuringDeleteRepo struct {
	*memory.LedgerRepository
	beforeDelete func()
}

func (r *admitDuringDeleteRepo) DeletePending(ctx context.Context, digests []string) error {
	if r.beforeDelete != nil {
		r.beforeDelete()
	}
	return r.LedgerRepository.DeletePending(ctx, digests)
}

func TestLedgerMiningKeepsDigestAdmittedDuringDrain(t *testing.T) {
	repo := &admitDuringDeleteRepo{LedgerRepository: memory.NewLedgerRepository()}
	svc, err := NewLedgerService(context.Background(), repo, 1, 0)
	if err != nil {
		t.Fatalf("NewLedgerService: %v", err)
	}
	ctx := context.Background()

	mined, _ := svc.HashTransaction(map[string]any{"transaction_id": "TXN1"})
	_ = svc.Admit(ctx, mined)

	late, _ := svc.HashTransaction(map[string]any{"transaction_id": "TXN2"})
	repo.beforeDelete = func() {
		_ = svc.Admit(ctx, late)
	}

	if _, err := svc.MineBlock(ctx); err != nil {
		t.Fatalf("MineBlock: %v", err)
	}
	if svc.PendingCount() != 1 {
		t.Fatalf("expected the late digest to stay pending, got %d", svc.PendingCount())
	}

	restarted, err := NewLedgerService(ctx, repo, 1, 0)
	if err != nil {
		t.Fatalf("NewLedgerService after restart: %v", err)
	}
	verification := restarted.VerifyDigest(late)
	if !verification.Found || !verification.Pending {
		t.Errorf("expected the late digest pending after restart, got %+v", verification)
	}
	if minedVerification := restarted.VerifyDigest(mined); !minedVerification.Found || minedVerification.Pending {
		t.Errorf("expected the mined digest in a block after restart, got %+v", minedVerification)
	}
}

func TestLedgerHashTransactionIsDeterministic(t *testing.T) {
	svc, _ := newTestLedger(t, 1, 0)

	a, err := svc.HashTransaction(map[string]any{"b": 2, "a": 1})
	if err != nil {
		t.Fatalf("HashTransaction: %v", err)
	}
	b, err := svc.HashTransaction(map[string]any{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("HashTransaction: %v", err)
	}
	if a != b {
		t.Errorf("expected key order not to affect digest: %s vs %s", a, b)
	}

	c, _ := svc.HashTransaction(map[string]any{"a": 1, "b": 3})
	if a == c {
		t.Error("expected different payloads to produce different digests")
	}
}
