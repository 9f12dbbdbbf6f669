package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type SendMoneyRequest struct {
	SenderUserID      string          `json:"senderUserId"`
	ReceiverAccountID string          `json:"receiverAccountId"`
	ReceiverAlias     string          `json:"receiverAlias"`
	Amount            decimal.Decimal `json:"amount"`
	Description       string          `json:"description"`
	Category          string          `json:"category"`
}

func (r SendMoneyRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.SenderUserID) == "" {
		errs = append(errs, "senderUserId is required")
	}
	if strings.TrimSpace(r.ReceiverAccountID) == "" && strings.TrimSpace(r.ReceiverAlias) == "" {
		errs = append(errs, "receiverAccountId or receiverAlias is required")
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type DepositRequest struct {
	UserID      string          `json:"userId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

func (r DepositRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.UserID) == "" {
		errs = append(errs, "userId is required")
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type PayTokenRequest struct {
	PayerUserID string           `json:"payerUserId"`
	Artifact    string           `json:"artifact"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
}

func (r PayTokenRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.PayerUserID) == "" {
		errs = append(errs, "payerUserId is required")
	}
	if strings.TrimSpace(r.Artifact) == "" {
		errs = append(errs, "artifact is required")
	}
	if r.Amount != nil && r.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type MoneyRequestRequest struct {
	RequesterUserID string          `json:"requesterUserId"`
	FromUserID      string          `json:"fromUserId"`
	FromAlias       string          `json:"fromAlias"`
	Amount          decimal.Decimal `json:"amount"`
	Note            string          `json:"note"`
}

func (r MoneyRequestRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.RequesterUserID) == "" {
		errs = append(errs, "requesterUserId is required")
	}
	if strings.TrimSpace(r.FromUserID) == "" && strings.TrimSpace(r.FromAlias) == "" {
		errs = append(errs, "fromUserId or fromAlias is required")
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type FraudCheckResult struct {
	RiskLevel   string   `json:"riskLevel"`
	RiskFactors []string `json:"riskFactors,omitempty"`
	WasFlagged  bool     `json:"wasFlagged"`
}

type TransferResponse struct {
	TransactionID        string           `json:"transactionId"`
	Type                 string           `json:"type"`
	Status               string           `json:"status"`
	Amount               decimal.Decimal  `json:"amount"`
	Currency             string           `json:"currency"`
	SenderBalanceAfter   *decimal.Decimal `json:"senderBalanceAfter,omitempty"`
	ReceiverBalanceAfter *decimal.Decimal `json:"receiverBalanceAfter,omitempty"`
	Description          string           `json:"description"`
	LedgerDigest         string           `json:"ledgerDigest,omitempty"`
	FraudCheck           FraudCheckResult `json:"fraudCheck"`
}

type MoneyRequestResponse struct {
	RequestID string          `json:"requestId"`
	Amount    decimal.Decimal `json:"amount"`
}

type TransactionView struct {
	TransactionID string          `json:"transactionId"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Description   string          `json:"description"`
	Category      string          `json:"category,omitempty"`
	IsFlagged     bool            `json:"isFlagged"`
	LedgerDigest  string          `json:"ledgerDigest,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type TransactionListResponse struct {
	Transactions []TransactionView `json:"transactions"`
}
