package repo_interfaces

import (
	"context"
	"time"

	"github.com/securebank/payment-core/internal/domain"
)

// TransferUnitOfWork is the exclusive-access scope around one transfer
// attempt. Account records read through GetAccountForUpdate stay locked
// until Commit or Rollback; callers must acquire accounts in ascending id
// order. Staged mutations are applied together at Commit or not at all.
type TransferUnitOfWork interface {
	GetAccountForUpdate(ctx context.Context, accountID string) (domain.Account, error)
	StageBalance(mutation domain.BalanceMutation)
	StageTransaction(transaction domain.Transaction)
	// RedeemToken stages the active -> used transition for a single-use
	// token. The transition is re-verified atomically at Commit; losing a
	// concurrent redemption race surfaces domain.ErrTokenAlreadyUsed.
	RedeemToken(ctx context.Context, tokenID string, redeemerUserID string, at time.Time) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type TransferStore interface {
	Begin(ctx context.Context) (TransferUnitOfWork, error)
}
