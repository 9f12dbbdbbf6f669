package service_interfaces

import (
	"context"

	"github.com/securebank/payment-core/internal/domain"
)

// TransactionLedger is the slice of the ledger the transfer engine needs:
// digest computation and pending-digest admission. Block mining stays off
// the transfer path.
type TransactionLedger interface {
	HashTransaction(payload any) (string, error)
	Admit(ctx context.Context, digest string) error
}

type LedgerService interface {
	TransactionLedger
	MineBlock(ctx context.Context) (*domain.LedgerBlock, error)
	VerifyDigest(digest string) domain.DigestVerification
	ValidateChain() bool
	Chain() []domain.LedgerBlock
}
