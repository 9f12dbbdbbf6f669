package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/securebank/payment-core/internal/domain"
	"github.com/securebank/payment-core/internal/logger"
	"github.com/securebank/payment-core/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
)

// ErrScoringUnavailable is the only condition on which FailoverScorer
// falls back from the model to the rules.
var ErrScoringUnavailable = errors.New("risk scoring unavailable")

var (
	largeAmountThreshold = decimal.NewFromInt(100000)
	highAmountThreshold  = decimal.NewFromInt(200000)
	ninetyPercent        = decimal.NewFromFloat(0.9)
)

// RuleScorer is the additive-points fallback. It never returns an error:
// malformed inputs yield the safe low-risk default rather than blocking
// the payment pipeline.
type RuleScorer struct{}

func NewRuleScorer() *RuleScorer {
	return &RuleScorer{}
}

func (s *RuleScorer) Score(_ context.Context, features domain.RiskFeatures) (domain.RiskAssessment, error) {
	if features.Amount.LessThanOrEqual(decimal.Zero) {
		return safeDefaultAssessment("rule_based"), nil
	}

	score := 0.0
	var factors []string

	if features.Amount.GreaterThan(largeAmountThreshold) {
		score += 0.2
		factors = append(factors, "Large transaction amount")
	}
	if features.SenderBalanceAfter.IsZero() && features.SenderBalanceBefore.GreaterThan(decimal.Zero) {
		score += 0.3
		factors = append(factors, "Account completely emptied")
	}
	if features.Type == domain.TransactionTypeTransfer || features.Type == domain.TransactionTypeCashOut {
		score += 0.1
		factors = append(factors, fmt.Sprintf("High-risk transaction type: %s", features.Type))
	}
	// The ratio rule only makes sense when there is a sender balance to
	// compare against; credit-only movements have none.
	if features.SenderBalanceBefore.GreaterThan(decimal.Zero) && features.Amount.GreaterThan(features.SenderBalanceBefore.Mul(ninetyPercent)) {
		score += 0.2
		factors = append(factors, "Transaction amount is most of the balance")
	}
	if features.HourOfDay < 6 || features.HourOfDay >= 22 {
		score += 0.1
		factors = append(factors, "Transaction at unusual time")
	}

	if score > 1.0 {
		score = 1.0
	}

	return assessmentForProbability(score, factors, "rule_based"), nil
}

// ModelScorer evaluates a trained logistic classifier whose weights and
// feature scaler are exported to a JSON file. The 18-entry feature vector
// matches the exported model's training order.
type ModelScorer struct {
	weights   []float64
	intercept float64
	means     []float64
	stds      []float64
	loaded    bool
}

type modelWeightsFile struct {
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
	Means     []float64 `json:"means"`
	Stds      []float64 `json:"stds"`
}

const modelFeatureCount = 18

func NewModelScorer(weightsPath string) *ModelScorer {
	scorer := &ModelScorer{}
	if weightsPath == "" {
		return scorer
	}

	raw, err := os.ReadFile(weightsPath)
	if err != nil {
		logger.Error("model scorer weights not loaded", err, logger.Fields{"path": weightsPath})
		return scorer
	}

	var file modelWeightsFile
	if err := json.Unmarshal(raw, &file); err != nil {
		logger.Error("model scorer weights malformed", err, logger.Fields{"path": weightsPath})
		return scorer
	}
	if len(file.Weights) != modelFeatureCount || len(file.Means) != modelFeatureCount || len(file.Stds) != modelFeatureCount {
		logger.Error("model scorer weights have wrong dimensions", nil, logger.Fields{
			"path":    weightsPath,
			"weights": len(file.Weights),
		})
		return scorer
	}

	scorer.weights = file.Weights
	scorer.intercept = file.Intercept
	scorer.means = file.Means
	scorer.stds = file.Stds
	scorer.loaded = true
	logger.Info("model scorer weights loaded", logger.Fields{"path": weightsPath})
	return scorer
}

func (s *ModelScorer) Score(_ context.Context, features domain.RiskFeatures) (domain.RiskAssessment, error) {
	if !s.loaded {
		return domain.RiskAssessment{}, ErrScoringUnavailable
	}

	vector, err := featureVector(features)
	if err != nil {
		return domain.RiskAssessment{}, fmt.Errorf("%w: %s", ErrScoringUnavailable, err)
	}

	z := s.intercept
	for i, value := range vector {
		std := s.stds[i]
		if std == 0 {
			std = 1
		}
		z += s.weights[i] * ((value - s.means[i]) / std)
	}
	probability := 1.0 / (1.0 + math.Exp(-z))
	if math.IsNaN(probability) || math.IsInf(probability, 0) {
		return domain.RiskAssessment{}, ErrScoringUnavailable
	}

	factors := identifyRiskFactors(features, probability)
	return assessmentForProbability(probability, factors, "model"), nil
}

func featureVector(features domain.RiskFeatures) ([]float64, error) {
	amount, _ := features.Amount.Float64()
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}

	oldOrg, _ := features.SenderBalanceBefore.Float64()
	newOrg, _ := features.SenderBalanceAfter.Float64()
	oldDest, _ := features.ReceiverBalanceBefore.Float64()
	newDest, _ := features.ReceiverBalanceAfter.Float64()

	typeEncoded := map[domain.TransactionType]float64{
		domain.TransactionTypePayment:  0,
		domain.TransactionTypeTransfer: 1,
		domain.TransactionTypeCashOut:  2,
		domain.TransactionTypeCashIn:   3,
	}[features.Type]

	origDiff := oldOrg - newOrg
	destDiff := newDest - oldDest

	origRatio := 0.0
	if oldOrg > 0 {
		origRatio = newOrg / oldOrg
	}
	destRatio := 1.0
	if oldDest > 0 {
		destRatio = newDest / oldDest
	}

	amountToOrig := amount
	if oldOrg > 0 {
		amountToOrig = amount / oldOrg
	}

	vector := []float64{
		float64(features.HourOfDay),
		typeEncoded,
		amount,
		oldOrg,
		newOrg,
		oldDest,
		newDest,
		origDiff,
		destDiff,
		origRatio,
		destRatio,
		origDiff - amount,
		destDiff - amount,
		boolFeature(newOrg == 0),
		amountToOrig,
		boolFeature(features.Type == domain.TransactionTypeTransfer),
		boolFeature(features.Type == domain.TransactionTypeCashOut),
		boolFeature(features.Amount.GreaterThan(highAmountThreshold)),
	}

	for i, value := range vector {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			vector[i] = 0
		}
	}
	return vector, nil
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// FailoverScorer tries the model first and falls back to the rules only
// when scoring is unavailable. It never returns an error.
type FailoverScorer struct {
	model service_interfaces.RiskScorer
	rules service_interfaces.RiskScorer
}

func NewFailoverScorer(model service_interfaces.RiskScorer, rules service_interfaces.RiskScorer) *FailoverScorer {
	return &FailoverScorer{model: model, rules: rules}
}

func (s *FailoverScorer) Score(ctx context.Context, features domain.RiskFeatures) (domain.RiskAssessment, error) {
	if s.model != nil {
		assessment, err := s.model.Score(ctx, features)
		if err == nil {
			return assessment, nil
		}
		if !errors.Is(err, ErrScoringUnavailable) {
			logger.Error("model scorer failed, falling back to rules", err, nil)
		}
	}

	if s.rules == nil {
		return safeDefaultAssessment("rule_based"), nil
	}
	assessment, err := s.rules.Score(ctx, features)
	if err != nil {
		return safeDefaultAssessment("rule_based"), nil
	}
	return assessment, nil
}

func identifyRiskFactors(features domain.RiskFeatures, probability float64) []string {
	var factors []string

	if features.Amount.GreaterThan(largeAmountThreshold) {
		factors = append(factors, "Large transaction amount detected")
	}
	if features.SenderBalanceAfter.IsZero() && features.SenderBalanceBefore.GreaterThan(decimal.Zero) {
		factors = append(factors, "Account balance will be emptied")
	}
	if features.Type == domain.TransactionTypeTransfer || features.Type == domain.TransactionTypeCashOut {
		factors = append(factors, fmt.Sprintf("Transaction type (%s) is commonly associated with fraud", features.Type))
	}
	if probability >= 0.7 {
		factors = append(factors, "Model detected high fraud probability pattern")
	}
	return factors
}

func assessmentForProbability(probability float64, factors []string, method string) domain.RiskAssessment {
	return domain.RiskAssessment{
		IsFraud:          probability >= 0.5,
		FraudProbability: probability,
		RiskLevel:        domain.RiskLevelForProbability(probability),
		RiskFactors:      factors,
		ShouldFlag:       probability >= 0.5,
		ShouldBlock:      probability >= 0.8,
		Method:           method,
	}
}

func safeDefaultAssessment(method string) domain.RiskAssessment {
	return domain.RiskAssessment{
		IsFraud:          false,
		FraudProbability: 0,
		RiskLevel:        domain.RiskLevelLow,
		ShouldFlag:       false,
		ShouldBlock:      false,
		Method:           method,
	}
}
