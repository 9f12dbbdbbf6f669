package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/securebank/payment-core/internal/domain"
)

type AccountRepository struct {
	store *Store
}

func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

func (r *AccountRepository) Create(_ context.Context, account domain.Account) (domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	r.store.accounts[account.ID] = &accountRecord{account: account}
	return account, nil
}

func (r *AccountRepository) GetByID(_ context.Context, id string) (domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	record, ok := r.store.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrRecordNotFound
	}
	return record.account, nil
}

func (r *AccountRepository) GetByAlias(_ context.Context, alias string) (domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, record := range r.store.accounts {
		if record.account.Alias == alias {
			return record.account, nil
		}
	}
	return domain.Account{}, domain.ErrRecordNotFound
}

func (r *AccountRepository) GetPrimaryForUser(_ context.Context, userID string) (domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, record := range r.store.accounts {
		if record.account.UserID == userID && record.account.IsPrimary {
			return record.account, nil
		}
	}
	return domain.Account{}, domain.ErrRecordNotFound
}
