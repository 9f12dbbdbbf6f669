package service_interfaces

import (
	"context"

	"github.com/securebank/payment-core/internal/domain"
)

// RiskScorer turns projected transaction features into a fraud verdict.
// Implementations must be side-effect free and deterministic for identical
// inputs and identical underlying weights.
type RiskScorer interface {
	Score(ctx context.Context, features domain.RiskFeatures) (domain.RiskAssessment, error)
}
