package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	ID        string
	UserID    string
	Alias     string
	Balance   decimal.Decimal
	Currency  string
	IsPrimary bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BalanceMutation is one staged balance change inside a unit of work.
type BalanceMutation struct {
	AccountID     string
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
}
