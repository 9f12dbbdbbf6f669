package memory

import (
	"context"
	"sort"
	"time"

	"github.com/securebank/payment-core/internal/domain"
)

type TokenRepository struct {
	store *Store
}

func NewTokenRepository(store *Store) *TokenRepository {
	return &TokenRepository{store: store}
}

func (r *TokenRepository) Create(_ context.Context, token domain.PaymentToken) (domain.PaymentToken, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	r.store.tokens[token.ID] = token
	return token, nil
}

func (r *TokenRepository) GetByID(_ context.Context, id string) (domain.PaymentToken, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	token, ok := r.store.tokens[id]
	if !ok {
		return domain.PaymentToken{}, domain.ErrRecordNotFound
	}
	return token, nil
}

func (r *TokenRepository) ListForCreator(_ context.Context, creatorUserID string, limit int) ([]domain.PaymentToken, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []domain.PaymentToken
	for _, token := range r.store.tokens {
		if token.CreatorUserID == creatorUserID {
			out = append(out, token)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *TokenRepository) MarkExpired(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	token, ok := r.store.tokens[id]
	if !ok {
		return domain.ErrRecordNotFound
	}
	if token.Status.Terminal() {
		return nil
	}
	token.Status = domain.TokenStatusExpired
	r.store.tokens[id] = token
	return nil
}

func (r *TokenRepository) Cancel(_ context.Context, id string, creatorUserID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	token, ok := r.store.tokens[id]
	if !ok || token.CreatorUserID != creatorUserID {
		return domain.ErrRecordNotFound
	}
	if token.Status != domain.TokenStatusActive {
		return domain.ErrTokenAlreadyUsed
	}
	token.Status = domain.TokenStatusCancelled
	r.store.tokens[id] = token
	return nil
}
