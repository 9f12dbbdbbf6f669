package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeTransfer TransactionType = "TRANSFER"
	TransactionTypePayment  TransactionType = "PAYMENT"
	TransactionTypeCashIn   TransactionType = "CASH_IN"
	TransactionTypeCashOut  TransactionType = "CASH_OUT"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusBlocked   TransactionStatus = "BLOCKED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Transaction is immutable once it reaches a terminal status. Balance
// snapshot fields are set atomically with the terminal status transition.
type Transaction struct {
	ID                    string
	TransactionID         string
	SenderAccountID       *string
	ReceiverAccountID     *string
	SenderUserID          *string
	ReceiverUserID        *string
	Type                  TransactionType
	Amount                decimal.Decimal
	Currency              string
	SenderBalanceBefore   *decimal.Decimal
	SenderBalanceAfter    *decimal.Decimal
	ReceiverBalanceBefore *decimal.Decimal
	ReceiverBalanceAfter  *decimal.Decimal
	Description           string
	Category              string
	Status                TransactionStatus
	FraudScore            float64
	IsFlagged             bool
	IsFraudulent          bool
	LedgerDigest          *string
	PaymentTokenID        *string
	CreatedAt             time.Time
	CompletedAt           *time.Time
}

func (s TransactionStatus) Terminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusBlocked || s == TransactionStatusFailed
}
