package service_interfaces

import (
	"context"

	"github.com/securebank/payment-core/internal/adapter/http/models"
	"github.com/securebank/payment-core/internal/commons"
	"github.com/securebank/payment-core/internal/domain"
)

// TokenResolver verifies a distributable artifact end to end (integrity
// digest, decryption, signature, expiry, stored status) and returns the
// backing token record. Verification failures surface as the domain token
// errors, never as panics or raw crypto errors.
type TokenResolver interface {
	Resolve(ctx context.Context, artifact string) (domain.PaymentToken, error)
}

type TokenService interface {
	TokenResolver
	Generate(ctx context.Context, req models.GenerateTokenRequest) (commons.Response[models.GenerateTokenResponse], error)
	Verify(ctx context.Context, req models.VerifyTokenRequest) (commons.Response[models.VerifyTokenResponse], error)
	ListForCreator(ctx context.Context, creatorUserID string) (commons.Response[models.TokenListResponse], error)
	Cancel(ctx context.Context, tokenID string, creatorUserID string) (commons.Response[models.CancelTokenResponse], error)
}
