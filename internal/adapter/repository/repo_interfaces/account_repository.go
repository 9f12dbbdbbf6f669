package repo_interfaces

import (
	"context"

	"github.com/securebank/payment-core/internal/domain"
)

type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) (domain.Account, error)
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByAlias(ctx context.Context, alias string) (domain.Account, error)
	GetPrimaryForUser(ctx context.Context, userID string) (domain.Account, error)
}
