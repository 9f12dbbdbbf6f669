package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type GenerateTokenRequest struct {
	CreatorUserID    string           `json:"creatorUserId"`
	Amount           *decimal.Decimal `json:"amount,omitempty"`
	Description      string           `json:"description"`
	ExpiresInMinutes int              `json:"expiresInMinutes"`
	IsSingleUse      *bool            `json:"isSingleUse,omitempty"`
}

func (r GenerateTokenRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.CreatorUserID) == "" {
		errs = append(errs, "creatorUserId is required")
	}
	if r.Amount != nil && r.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}
	if r.ExpiresInMinutes < 0 {
		errs = append(errs, "expiresInMinutes cannot be negative")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type GenerateTokenResponse struct {
	PaymentID    string           `json:"paymentId"`
	Artifact     string           `json:"artifact"`
	ArtifactHash string           `json:"artifactHash"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	Description  string           `json:"description"`
	ExpiresAt    time.Time        `json:"expiresAt"`
}

type VerifyTokenRequest struct {
	Artifact string `json:"artifact"`
}

func (r VerifyTokenRequest) Validate() error {
	if strings.TrimSpace(r.Artifact) == "" {
		return errors.New("artifact is required")
	}
	return nil
}

type VerifyTokenResponse struct {
	Valid         bool             `json:"valid"`
	Error         string           `json:"error,omitempty"`
	PaymentID     string           `json:"paymentId,omitempty"`
	ReceiverID    string           `json:"receiverId,omitempty"`
	ReceiverAlias string           `json:"receiverAlias,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Description   string           `json:"description,omitempty"`
	ExpiresAt     *time.Time       `json:"expiresAt,omitempty"`
}

type TokenSummary struct {
	PaymentID   string           `json:"paymentId"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Description string           `json:"description"`
	Status      string           `json:"status"`
	IsSingleUse bool             `json:"isSingleUse"`
	ExpiresAt   time.Time        `json:"expiresAt"`
	CreatedAt   time.Time        `json:"createdAt"`
}

type TokenListResponse struct {
	Tokens []TokenSummary `json:"tokens"`
}

type CancelTokenResponse struct {
	PaymentID string `json:"paymentId"`
	Status    string `json:"status"`
}
