package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/securebank/payment-core/internal/domain"
)

type TransactionRepository struct {
	store *Store
}

func NewTransactionRepository(store *Store) *TransactionRepository {
	return &TransactionRepository{store: store}
}

func (r *TransactionRepository) Create(_ context.Context, transaction domain.Transaction) (domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.transactions[transaction.TransactionID]; exists {
		return domain.Transaction{}, fmt.Errorf("transaction %s: %w", transaction.TransactionID, domain.ErrDuplicateRecord)
	}
	if transaction.CreatedAt.IsZero() {
		transaction.CreatedAt = time.Now().UTC()
	}
	r.store.transactions[transaction.TransactionID] = transaction
	r.store.txOrder = append(r.store.txOrder, transaction.TransactionID)
	return transaction, nil
}

func (r *TransactionRepository) GetByTransactionID(_ context.Context, transactionID string) (domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	transaction, ok := r.store.transactions[transactionID]
	if !ok {
		return domain.Transaction{}, domain.ErrRecordNotFound
	}
	return transaction, nil
}

func (r *TransactionRepository) ListForUser(_ context.Context, userID string, limit int) ([]domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []domain.Transaction
	for i := len(r.store.txOrder) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		transaction := r.store.transactions[r.store.txOrder[i]]
		if matchesUser(transaction.SenderUserID, userID) || matchesUser(transaction.ReceiverUserID, userID) {
			out = append(out, transaction)
		}
	}
	return out, nil
}

func matchesUser(id *string, userID string) bool {
	return id != nil && *id == userID
}
