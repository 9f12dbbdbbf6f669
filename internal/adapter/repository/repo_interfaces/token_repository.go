package repo_interfaces

import (
	"context"

	"github.com/securebank/payment-core/internal/domain"
)

type TokenRepository interface {
	Create(ctx context.Context, token domain.PaymentToken) (domain.PaymentToken, error)
	GetByID(ctx context.Context, id string) (domain.PaymentToken, error)
	ListForCreator(ctx context.Context, creatorUserID string, limit int) ([]domain.PaymentToken, error)
	// MarkExpired flips an active token to expired. It is a no-op if the
	// token already reached a terminal status.
	MarkExpired(ctx context.Context, id string) error
	Cancel(ctx context.Context, id string, creatorUserID string) error
}
