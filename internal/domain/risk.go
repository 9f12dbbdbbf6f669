package domain

import "github.com/shopspring/decimal"

type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

// RiskFeatures carries the projected before/after balances of a proposed
// transaction, built once at the boundary by the transfer engine.
type RiskFeatures struct {
	Type                  TransactionType
	Amount                decimal.Decimal
	SenderBalanceBefore   decimal.Decimal
	SenderBalanceAfter    decimal.Decimal
	ReceiverBalanceBefore decimal.Decimal
	ReceiverBalanceAfter  decimal.Decimal
	HourOfDay             int
}

type RiskAssessment struct {
	IsFraud          bool
	FraudProbability float64
	RiskLevel        RiskLevel
	RiskFactors      []string
	ShouldFlag       bool
	ShouldBlock      bool
	Method           string
}

// RiskLevelForProbability buckets a probability at 0.3 / 0.5 / 0.7.
func RiskLevelForProbability(p float64) RiskLevel {
	switch {
	case p < 0.3:
		return RiskLevelLow
	case p < 0.5:
		return RiskLevelMedium
	case p < 0.7:
		return RiskLevelHigh
	default:
		return RiskLevelCritical
	}
}
