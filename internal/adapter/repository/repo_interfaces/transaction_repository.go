package repo_interfaces

import (
	"context"

	"github.com/securebank/payment-core/internal/domain"
)

type TransactionRepository interface {
	Create(ctx context.Context, transaction domain.Transaction) (domain.Transaction, error)
	GetByTransactionID(ctx context.Context, transactionID string) (domain.Transaction, error)
	ListForUser(ctx context.Context, userID string, limit int) ([]domain.Transaction, error)
}
