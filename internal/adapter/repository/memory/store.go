package memory

import (
	"context"
	"sync"
	"time"

	"github.com/securebank/payment-core/internal/adapter/repository/repo_interfaces"
	"github.com/securebank/payment-core/internal/domain"
)

var _ repo_interfaces.TransferStore = (*Store)(nil)

type accountRecord struct {
	mu      sync.Mutex
	account domain.Account
}

// Store is an in-memory backing store for accounts, transactions and
// payment tokens. It implements the repository interfaces plus the
// TransferStore unit-of-work contract, and is used by tests and by the
// server when no database DSN is configured.
type Store struct {
	mu           sync.Mutex
	accounts     map[string]*accountRecord
	transactions map[string]domain.Transaction
	txOrder      []string
	tokens       map[string]domain.PaymentToken
}

func NewStore() *Store {
	return &Store{
		accounts:     make(map[string]*accountRecord),
		transactions: make(map[string]domain.Transaction),
		tokens:       make(map[string]domain.PaymentToken),
	}
}

func (s *Store) Begin(_ context.Context) (repo_interfaces.TransferUnitOfWork, error) {
	return &UnitOfWork{store: s}, nil
}

// UnitOfWork holds per-account locks from first GetAccountForUpdate until
// Commit or Rollback. Callers acquire accounts in ascending id order.
type UnitOfWork struct {
	store      *Store
	locked     []*accountRecord
	balances   []domain.BalanceMutation
	records    []domain.Transaction
	tokenID    string
	redeemerID string
	redeemedAt time.Time
	done       bool
}

func (u *UnitOfWork) GetAccountForUpdate(_ context.Context, accountID string) (domain.Account, error) {
	u.store.mu.Lock()
	record, ok := u.store.accounts[accountID]
	u.store.mu.Unlock()

	if !ok {
		return domain.Account{}, domain.ErrRecordNotFound
	}

	record.mu.Lock()
	u.locked = append(u.locked, record)
	return record.account, nil
}

func (u *UnitOfWork) StageBalance(mutation domain.BalanceMutation) {
	u.balances = append(u.balances, mutation)
}

func (u *UnitOfWork) StageTransaction(transaction domain.Transaction) {
	u.records = append(u.records, transaction)
}

func (u *UnitOfWork) RedeemToken(_ context.Context, tokenID string, redeemerUserID string, at time.Time) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	token, ok := u.store.tokens[tokenID]
	if !ok {
		return domain.ErrRecordNotFound
	}
	switch token.Status {
	case domain.TokenStatusActive:
	case domain.TokenStatusExpired:
		return domain.ErrTokenExpired
	default:
		return domain.ErrTokenAlreadyUsed
	}

	u.tokenID = tokenID
	u.redeemerID = redeemerUserID
	u.redeemedAt = at
	return nil
}

func (u *UnitOfWork) Commit(_ context.Context) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	if u.tokenID != "" {
		token, ok := u.store.tokens[u.tokenID]
		if !ok || token.Status != domain.TokenStatusActive {
			return domain.ErrTokenAlreadyUsed
		}
	}

	for _, mutation := range u.balances {
		record, ok := u.store.accounts[mutation.AccountID]
		if !ok {
			return domain.ErrRecordNotFound
		}
		record.account.Balance = mutation.BalanceAfter
		record.account.UpdatedAt = time.Now().UTC()
	}

	for _, transaction := range u.records {
		u.store.transactions[transaction.TransactionID] = transaction
		u.store.txOrder = append(u.store.txOrder, transaction.TransactionID)
	}

	if u.tokenID != "" {
		token := u.store.tokens[u.tokenID]
		if token.IsSingleUse {
			token.Status = domain.TokenStatusUsed
		}
		redeemer := u.redeemerID
		at := u.redeemedAt
		token.RedeemedBy = &redeemer
		token.RedeemedAt = &at
		u.store.tokens[u.tokenID] = token
	}

	u.release()
	return nil
}

func (u *UnitOfWork) Rollback(_ context.Context) error {
	u.release()
	return nil
}

func (u *UnitOfWork) release() {
	if u.done {
		return
	}
	u.done = true
	for i := len(u.locked) - 1; i >= 0; i-- {
		u.locked[i].mu.Unlock()
	}
	u.locked = nil
}
