package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/securebank/payment-core/internal/domain"
)

func transferFeatures(amount int64, balanceBefore int64, hour int) domain.RiskFeatures {
	amt := decimal.NewFromInt(amount)
	before := decimal.NewFromInt(balanceBefore)
	return domain.RiskFeatures{
		Type:                  domain.TransactionTypeTransfer,
		Amount:                amt,
		SenderBalanceBefore:   before,
		SenderBalanceAfter:    before.Sub(amt),
		ReceiverBalanceBefore: decimal.NewFromInt(5000),
		ReceiverBalanceAfter:  decimal.NewFromInt(5000).Add(amt),
		HourOfDay:             hour,
	}
}

func TestRuleScorerLowRiskTransfer(t *testing.T) {
	scorer := NewRuleScorer()

	assessment, err := scorer.Score(context.Background(), transferFeatures(1500, 10000, 12))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if assessment.ShouldFlag || assessment.ShouldBlock {
		t.Errorf("expected unflagged assessment, got %+v", assessment)
	}
	if assessment.RiskLevel != domain.RiskLevelLow {
		t.Errorf("expected low risk, got %s", assessment.RiskLevel)
	}
	if math.Abs(assessment.FraudProbability-0.1) > 1e-9 {
		t.Errorf("expected probability 0.1, got %f", assessment.FraudProbability)
	}
}

func TestRuleScorerBlocksEmptyingLargeTransferAtNight(t *testing.T) {
	scorer := NewRuleScorer()

	// Large amount, account emptied, risky type, >90% of balance, 23:00.
	assessment, err := scorer.Score(context.Background(), transferFeatures(150000, 150000, 23))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if math.Abs(assessment.FraudProbability-0.9) > 1e-9 {
		t.Errorf("expected probability 0.9, got %f", assessment.FraudProbability)
	}
	if !assessment.ShouldFlag {
		t.Error("expected assessment to be flagged")
	}
	if !assessment.ShouldBlock {
		t.Error("expected assessment to block")
	}
	if assessment.RiskLevel != domain.RiskLevelCritical {
		t.Errorf("expected critical risk, got %s", assessment.RiskLevel)
	}
	if len(assessment.RiskFactors) != 5 {
		t.Errorf("expected 5 risk factors, got %v", assessment.RiskFactors)
	}
}

func TestRuleScorerScoreIsCapped(t *testing.T) {
	scorer := NewRuleScorer()

	assessment, _ := scorer.Score(context.Background(), transferFeatures(250000, 250000, 2))
	if assessment.FraudProbability > 1.0 {
		t.Errorf("expected probability capped at 1.0, got %f", assessment.FraudProbability)
	}
}

func TestRuleScorerSafeDefaultOnNonPositiveAmount(t *testing.T) {
	scorer := NewRuleScorer()

	features := transferFeatures(100, 10000, 12)
	features.Amount = decimal.Zero
	assessment, err := scorer.Score(context.Background(), features)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if assessment.ShouldFlag || assessment.ShouldBlock || assessment.FraudProbability != 0 {
		t.Errorf("expected safe default assessment, got %+v", assessment)
	}
}

func TestRiskLevelBuckets(t *testing.T) {
	cases := []struct {
		probability float64
		want        domain.RiskLevel
	}{
		{0.0, domain.RiskLevelLow},
		{0.29, domain.RiskLevelLow},
		{0.3, domain.RiskLevelMedium},
		{0.49, domain.RiskLevelMedium},
		{0.5, domain.RiskLevelHigh},
		{0.69, domain.RiskLevelHigh},
		{0.7, domain.RiskLevelCritical},
		{1.0, domain.RiskLevelCritical},
	}
	for _, tc := range cases {
		if got := domain.RiskLevelForProbability(tc.probability); got != tc.want {
			t.Errorf("RiskLevelForProbability(%f) = %s, want %s", tc.probability, got, tc.want)
		}
	}
}

func writeWeightsFile(t *testing.T, intercept float64) string {
	t.Helper()
	weights := make([]float64, modelFeatureCount)
	means := make([]float64, modelFeatureCount)
	stds := make([]float64, modelFeatureCount)
	for i := range stds {
		stds[i] = 1
	}
	raw, err := json.Marshal(modelWeightsFile{
		Weights:   weights,
		Intercept: intercept,
		Means:     means,
		Stds:      stds,
	})
	if err != nil {
		t.Fatalf("marshal weights: %v", err)
	}
	path := filepath.Join(t.TempDir(), "weights.json")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write weights: %v", err)
	}
	return path
}

func TestModelScorerUnavailableWithoutWeights(t *testing.T) {
	scorer := NewModelScorer("")

	_, err := scorer.Score(context.Background(), transferFeatures(100, 10000, 12))
	if !errors.Is(err, ErrScoringUnavailable) {
		t.Fatalf("expected ErrScoringUnavailable, got %v", err)
	}
}

func TestModelScorerUnavailableOnMalformedWeights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.json")
	if err := os.WriteFile(path, []byte("not json"), 0o600); err != nil {
		t.Fatalf("write weights: %v", err)
	}

	scorer := NewModelScorer(path)
	_, err := scorer.Score(context.Background(), transferFeatures(100, 10000, 12))
	if !errors.Is(err, ErrScoringUnavailable) {
		t.Fatalf("expected ErrScoringUnavailable, got %v", err)
	}
}

func TestModelScorerEvaluatesLogistic(t *testing.T) {
	// Zero weights leave only the intercept: sigmoid(-10) is close to 0,
	// sigmoid(10) close to 1.
	low := NewModelScorer(writeWeightsFile(t, -10))
	high := NewModelScorer(writeWeightsFile(t, 10))
	features := transferFeatures(100, 10000, 12)

	lowAssessment, err := low.Score(context.Background(), features)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if lowAssessment.Method != "model" {
		t.Errorf("expected model method, got %s", lowAssessment.Method)
	}
	if lowAssessment.ShouldFlag || lowAssessment.ShouldBlock {
		t.Errorf("expected low intercept to stay unflagged, got %+v", lowAssessment)
	}

	highAssessment, err := high.Score(context.Background(), features)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if !highAssessment.ShouldFlag || !highAssessment.ShouldBlock {
		t.Errorf("expected high intercept to block, got %+v", highAssessment)
	}
	if highAssessment.RiskLevel != domain.RiskLevelCritical {
		t.Errorf("expected critical risk, got %s", highAssessment.RiskLevel)
	}
}

func TestModelScorerUnavailableOnNonPositiveAmount(t *testing.T) {
	scorer := NewModelScorer(writeWeightsFile(t, 0))
	features := transferFeatures(100, 10000, 12)
	features.Amount = decimal.Zero

	_, err := scorer.Score(context.Background(), features)
	if !errors.Is(err, ErrScoringUnavailable) {
		t.Fatalf("expected ErrScoringUnavailable, got %v", err)
	}
}

type stubScorer struct {
	assessment domain.RiskAssessment
	err        error
	calls      int
}

func (s *stubScorer) Score(_ context.Context, _ domain.RiskFeatures) (domain.RiskAssessment, error) {
	s.calls++
	return s.assessment, s.err
}

func TestFailoverScorerPrefersModel(t *testing.T) {
	model := &stubScorer{assessment: domain.RiskAssessment{Method: "model", FraudProbability: 0.42}}
	rules := &stubScorer{assessment: domain.RiskAssessment{Method: "rule_based"}}
	scorer := NewFailoverScorer(model, rules)

	assessment, err := scorer.Score(context.Background(), transferFeatures(100, 10000, 12))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if assessment.Method != "model" {
		t.Errorf("expected model assessment, got %s", assessment.Method)
	}
	if rules.calls != 0 {
		t.Errorf("expected rules not to be consulted, got %d calls", rules.calls)
	}
}

func TestFailoverScorerFallsBackWhenModelUnavailable(t *testing.T) {
	model := &stubScorer{err: ErrScoringUnavailable}
	rules := &stubScorer{assessment: domain.RiskAssessment{Method: "rule_based", FraudProbability: 0.1}}
	scorer := NewFailoverScorer(model, rules)

	assessment, err := scorer.Score(context.Background(), transferFeatures(100, 10000, 12))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if assessment.Method != "rule_based" {
		t.Errorf("expected rule fallback, got %s", assessment.Method)
	}
}

func TestFailoverScorerNeverErrors(t *testing.T) {
	model := &stubScorer{err: errors.New("weights corrupted")}
	scorer := NewFailoverScorer(model, NewRuleScorer())

	assessment, err := scorer.Score(context.Background(), transferFeatures(1500, 10000, 12))
	if err != nil {
		t.Fatalf("expected no error from failover scorer, got %v", err)
	}
	if assessment.Method != "rule_based" {
		t.Errorf("expected rule fallback, got %s", assessment.Method)
	}
}

func TestRuleScorerDepositWithoutSenderSkipsBalanceRules(t *testing.T) {
	scorer := NewRuleScorer()

	amount := decimal.NewFromInt(400)
	assessment, err := scorer.Score(context.Background(), domain.RiskFeatures{
		Type:                  domain.TransactionTypeCashIn,
		Amount:                amount,
		ReceiverBalanceBefore: decimal.NewFromInt(5000),
		ReceiverBalanceAfter:  decimal.NewFromInt(5000).Add(amount),
		HourOfDay:             12,
	})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if assessment.FraudProbability != 0 {
		t.Errorf("expected probability 0 for a plain deposit, got %f", assessment.FraudProbability)
	}
	if len(assessment.RiskFactors) != 0 {
		t.Errorf("expected no risk factors for a plain deposit, got %v", assessment.RiskFactors)
	}
	if assessment.ShouldFlag || assessment.ShouldBlock {
		t.Errorf("expected unflagged assessment, got %+v", assessment)
	}
}
