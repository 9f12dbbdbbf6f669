package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TokenStatus string

const (
	TokenStatusActive    TokenStatus = "ACTIVE"
	TokenStatusUsed      TokenStatus = "USED"
	TokenStatusExpired   TokenStatus = "EXPIRED"
	TokenStatusCancelled TokenStatus = "CANCELLED"
)

// PaymentToken is the stored record behind a distributable QR artifact.
// Once status is USED or EXPIRED no redemption may succeed again, even
// with a valid signature.
type PaymentToken struct {
	ID            string
	CreatorUserID string
	Amount        *decimal.Decimal
	Description   string
	Nonce         string
	Signature     string
	ArtifactHash  string
	IsSingleUse   bool
	Status        TokenStatus
	ExpiresAt     time.Time
	RedeemedBy    *string
	RedeemedAt    *time.Time
	CreatedAt     time.Time
}

func (s TokenStatus) Terminal() bool {
	return s == TokenStatusUsed || s == TokenStatusExpired || s == TokenStatusCancelled
}
