package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/securebank/payment-core/internal/adapter/http/models"
	"github.com/securebank/payment-core/internal/adapter/repository/repo_interfaces"
	"github.com/securebank/payment-core/internal/commons"
	"github.com/securebank/payment-core/internal/domain"
	"github.com/securebank/payment-core/internal/logger"
	"github.com/securebank/payment-core/internal/metrics"
	"github.com/securebank/payment-core/internal/usecase/service_interfaces"
)

const tokenListLimit = 50

type TokenServiceImpl struct {
	codec         *TokenCodec
	tokens        repo_interfaces.TokenRepository
	accounts      repo_interfaces.AccountRepository
	defaultExpiry time.Duration
	now           func() time.Time
}

var _ service_interfaces.TokenService = (*TokenServiceImpl)(nil)

func NewTokenService(codec *TokenCodec, tokens repo_interfaces.TokenRepository, accounts repo_interfaces.AccountRepository, defaultExpiryMinutes int) *TokenServiceImpl {
	return &TokenServiceImpl{
		codec:         codec,
		tokens:        tokens,
		accounts:      accounts,
		defaultExpiry: time.Duration(defaultExpiryMinutes) * time.Minute,
		now:           time.Now,
	}
}

func (s *TokenServiceImpl) Generate(ctx context.Context, req models.GenerateTokenRequest) (commons.Response[models.GenerateTokenResponse], error) {
	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.GenerateTokenResponse]("Invalid payment code request", err.Error()), nil
	}

	receiver, err := s.accounts.GetPrimaryForUser(ctx, req.CreatorUserID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.GenerateTokenResponse]("Creator has no primary account"), nil
		}
		logger.Error("failed to resolve creator account", err, logger.Fields{"creatorUserId": req.CreatorUserID})
		return commons.ErrorResponse[models.GenerateTokenResponse]("Failed to generate payment code"), err
	}

	expiry := s.defaultExpiry
	if req.ExpiresInMinutes > 0 {
		expiry = time.Duration(req.ExpiresInMinutes) * time.Minute
	}

	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(expiry)

	payload := TokenPayload{
		PaymentID:     uuid.NewString(),
		ReceiverID:    receiver.ID,
		ReceiverAlias: receiver.Alias,
		Description:   req.Description,
		Timestamp:     issuedAt.Format(time.RFC3339Nano),
		ExpiresAt:     expiresAt.Format(time.RFC3339Nano),
		Nonce:         newNonce(),
	}
	if req.Amount != nil {
		payload.Amount = req.Amount.String()
	}

	artifact, artifactHash, err := s.codec.Encode(payload)
	if err != nil {
		logger.Error("failed to encode payment artifact", err, logger.Fields{"creatorUserId": req.CreatorUserID})
		return commons.ErrorResponse[models.GenerateTokenResponse]("Failed to generate payment code"), err
	}

	signature, err := s.codec.Sign(payload)
	if err != nil {
		return commons.ErrorResponse[models.GenerateTokenResponse]("Failed to generate payment code"), err
	}

	singleUse := true
	if req.IsSingleUse != nil {
		singleUse = *req.IsSingleUse
	}

	token := domain.PaymentToken{
		ID:            payload.PaymentID,
		CreatorUserID: req.CreatorUserID,
		Amount:        req.Amount,
		Description:   req.Description,
		Nonce:         payload.Nonce,
		Signature:     signature,
		ArtifactHash:  artifactHash,
		IsSingleUse:   singleUse,
		Status:        domain.TokenStatusActive,
		ExpiresAt:     expiresAt,
		CreatedAt:     issuedAt,
	}
	if _, err := s.tokens.Create(ctx, token); err != nil {
		logger.Error("failed to persist payment token", err, logger.Fields{"paymentId": token.ID})
		return commons.ErrorResponse[models.GenerateTokenResponse]("Failed to generate payment code"), err
	}

	metrics.TokensIssuedTotal.Inc()
	logger.Info("payment code generated", logger.Fields{"paymentId": token.ID, "creatorUserId": req.CreatorUserID})

	return commons.SuccessResponse("Payment code generated", models.GenerateTokenResponse{
		PaymentID:    token.ID,
		Artifact:     artifact,
		ArtifactHash: artifactHash,
		Amount:       req.Amount,
		Description:  req.Description,
		ExpiresAt:    expiresAt,
	}), nil
}

// Verify checks an artifact without redeeming it. Invalid artifacts are a
// normal outcome here, reported in the response body rather than as an
// error; the stored record is lazily flipped to expired when the embedded
// expiry has passed.
func (s *TokenServiceImpl) Verify(ctx context.Context, req models.VerifyTokenRequest) (commons.Response[models.VerifyTokenResponse], error) {
	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.VerifyTokenResponse]("Invalid verification request", err.Error()), nil
	}

	payload, err := s.codec.Decode(req.Artifact, s.now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) && payload.PaymentID != "" {
			s.expireStored(ctx, payload.PaymentID)
		}
		return commons.SuccessResponse("Payment code verified", models.VerifyTokenResponse{
			Valid: false,
			Error: verificationFailure(err),
		}), nil
	}

	token, err := s.tokens.GetByID(ctx, payload.PaymentID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.SuccessResponse("Payment code verified", models.VerifyTokenResponse{
				Valid: false,
				Error: "unknown payment code",
			}), nil
		}
		return commons.ErrorResponse[models.VerifyTokenResponse]("Failed to verify payment code"), err
	}

	if token.Status != domain.TokenStatusActive {
		return commons.SuccessResponse("Payment code verified", models.VerifyTokenResponse{
			Valid: false,
			Error: statusFailure(token.Status),
		}), nil
	}

	expiresAt, _ := time.Parse(time.RFC3339Nano, payload.ExpiresAt)
	return commons.SuccessResponse("Payment code verified", models.VerifyTokenResponse{
		Valid:         true,
		PaymentID:     payload.PaymentID,
		ReceiverID:    payload.ReceiverID,
		ReceiverAlias: payload.ReceiverAlias,
		Amount:        token.Amount,
		Description:   payload.Description,
		ExpiresAt:     &expiresAt,
	}), nil
}

// Resolve is the redemption-path verification: it validates the artifact
// end to end and returns the backing record, or a domain token error.
func (s *TokenServiceImpl) Resolve(ctx context.Context, artifact string) (domain.PaymentToken, error) {
	payload, err := s.codec.Decode(artifact, s.now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) && payload.PaymentID != "" {
			s.expireStored(ctx, payload.PaymentID)
		}
		return domain.PaymentToken{}, err
	}

	token, err := s.tokens.GetByID(ctx, payload.PaymentID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.PaymentToken{}, fmt.Errorf("%w: unknown payment code", domain.ErrTokenIntegrity)
		}
		return domain.PaymentToken{}, err
	}

	// The artifact must match the record it claims to redeem.
	if token.Signature != payload.Signature || token.Nonce != payload.Nonce {
		return domain.PaymentToken{}, fmt.Errorf("%w: artifact does not match issued code", domain.ErrTokenIntegrity)
	}

	switch token.Status {
	case domain.TokenStatusActive:
	case domain.TokenStatusUsed:
		return domain.PaymentToken{}, domain.ErrTokenAlreadyUsed
	default:
		return domain.PaymentToken{}, domain.ErrTokenExpired
	}

	if s.now().UTC().After(token.ExpiresAt) {
		s.expireStored(ctx, token.ID)
		return domain.PaymentToken{}, domain.ErrTokenExpired
	}

	return token, nil
}

func (s *TokenServiceImpl) ListForCreator(ctx context.Context, creatorUserID string) (commons.Response[models.TokenListResponse], error) {
	tokens, err := s.tokens.ListForCreator(ctx, creatorUserID, tokenListLimit)
	if err != nil {
		logger.Error("failed to list payment tokens", err, logger.Fields{"creatorUserId": creatorUserID})
		return commons.ErrorResponse[models.TokenListResponse]("Failed to list payment codes"), err
	}

	summaries := make([]models.TokenSummary, 0, len(tokens))
	for _, token := range tokens {
		summaries = append(summaries, models.TokenSummary{
			PaymentID:   token.ID,
			Amount:      token.Amount,
			Description: token.Description,
			Status:      string(token.Status),
			IsSingleUse: token.IsSingleUse,
			ExpiresAt:   token.ExpiresAt,
			CreatedAt:   token.CreatedAt,
		})
	}

	return commons.SuccessResponse("Payment codes retrieved", models.TokenListResponse{Tokens: summaries}), nil
}

func (s *TokenServiceImpl) Cancel(ctx context.Context, tokenID string, creatorUserID string) (commons.Response[models.CancelTokenResponse], error) {
	if err := s.tokens.Cancel(ctx, tokenID, creatorUserID); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.CancelTokenResponse]("Payment code not found or not cancellable"), nil
		}
		logger.Error("failed to cancel payment token", err, logger.Fields{"paymentId": tokenID})
		return commons.ErrorResponse[models.CancelTokenResponse]("Failed to cancel payment code"), err
	}

	logger.Info("payment code cancelled", logger.Fields{"paymentId": tokenID, "creatorUserId": creatorUserID})
	return commons.SuccessResponse("Payment code cancelled", models.CancelTokenResponse{
		PaymentID: tokenID,
		Status:    string(domain.TokenStatusCancelled),
	}), nil
}

func (s *TokenServiceImpl) expireStored(ctx context.Context, tokenID string) {
	if err := s.tokens.MarkExpired(ctx, tokenID); err != nil {
		logger.Error("failed to expire payment token", err, logger.Fields{"paymentId": tokenID})
	}
}

func verificationFailure(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return "payment code has expired"
	default:
		return "payment code failed integrity checks"
	}
}

func statusFailure(status domain.TokenStatus) string {
	switch status {
	case domain.TokenStatusUsed:
		return "payment code has already been used"
	case domain.TokenStatusCancelled:
		return "payment code was cancelled"
	default:
		return "payment code has expired"
	}
}

func newNonce() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return uuid.NewString()
	}
	return hex.EncodeToString(buf)
}
