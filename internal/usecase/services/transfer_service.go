package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/securebank/payment-core/internal/adapter/http/models"
	"github.com/securebank/payment-core/internal/adapter/repository/repo_interfaces"
	"github.com/securebank/payment-core/internal/commons"
	"github.com/securebank/payment-core/internal/domain"
	"github.com/securebank/payment-core/internal/logger"
	"github.com/securebank/payment-core/internal/metrics"
	"github.com/securebank/payment-core/internal/usecase/service_interfaces"
)

// TransferServiceImpl orchestrates every balance-mutating operation: it
// resolves the parties, scores the proposed movement, and applies the
// mutation inside a single unit of work. Nothing else in the codebase
// writes balances.
type TransferServiceImpl struct {
	accounts     repo_interfaces.AccountRepository
	transactions repo_interfaces.TransactionRepository
	store        repo_interfaces.TransferStore
	tokens       service_interfaces.TokenResolver
	ledger       service_interfaces.TransactionLedger
	scorer       service_interfaces.RiskScorer
	sink         domain.EventSink
	currency     string
	now          func() time.Time
}

var _ service_interfaces.TransferService = (*TransferServiceImpl)(nil)

func NewTransferService(
	accounts repo_interfaces.AccountRepository,
	transactions repo_interfaces.TransactionRepository,
	store repo_interfaces.TransferStore,
	tokens service_interfaces.TokenResolver,
	ledger service_interfaces.TransactionLedger,
	scorer service_interfaces.RiskScorer,
	sink domain.EventSink,
	currency string,
) *TransferServiceImpl {
	return &TransferServiceImpl{
		accounts:     accounts,
		transactions: transactions,
		store:        store,
		tokens:       tokens,
		ledger:       ledger,
		scorer:       scorer,
		sink:         sink,
		currency:     currency,
		now:          time.Now,
	}
}

// transferPlan is the fully resolved input to executeTransfer. Receiver is
// always set; sender is nil for cash-in.
type transferPlan struct {
	transferType   domain.TransactionType
	sender         *domain.Account
	receiver       domain.Account
	amount         decimal.Decimal
	description    string
	category       string
	paymentTokenID *string
}

func (s *TransferServiceImpl) SendMoney(ctx context.Context, req models.SendMoneyRequest) (commons.Response[models.TransferResponse], error) {
	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.TransferResponse]("Invalid transfer request", err.Error()), nil
	}

	sender, err := s.accounts.GetPrimaryForUser(ctx, req.SenderUserID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.TransferResponse]("Sender account not found"), nil
		}
		return commons.ErrorResponse[models.TransferResponse]("Failed to process transfer"), err
	}

	receiver, err := s.resolveReceiver(ctx, req.ReceiverAccountID, req.ReceiverAlias)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.TransferResponse]("Receiver account not found"), nil
		}
		return commons.ErrorResponse[models.TransferResponse]("Failed to process transfer"), err
	}

	if sender.ID == receiver.ID {
		return commons.ErrorResponse[models.TransferResponse]("Cannot transfer to the same account"), nil
	}

	return s.executeTransfer(ctx, transferPlan{
		transferType: domain.TransactionTypeTransfer,
		sender:       &sender,
		receiver:     receiver,
		amount:       req.Amount,
		description:  req.Description,
		category:     req.Category,
	})
}

func (s *TransferServiceImpl) Deposit(ctx context.Context, req models.DepositRequest) (commons.Response[models.TransferResponse], error) {
	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.TransferResponse]("Invalid deposit request", err.Error()), nil
	}

	receiver, err := s.accounts.GetPrimaryForUser(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.TransferResponse]("Account not found"), nil
		}
		return commons.ErrorResponse[models.TransferResponse]("Failed to process deposit"), err
	}

	description := req.Description
	if strings.TrimSpace(description) == "" {
		description = "Cash deposit"
	}

	return s.executeTransfer(ctx, transferPlan{
		transferType: domain.TransactionTypeCashIn,
		receiver:     receiver,
		amount:       req.Amount,
		description:  description,
	})
}

func (s *TransferServiceImpl) PayToken(ctx context.Context, req models.PayTokenRequest) (commons.Response[models.TransferResponse], error) {
	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.TransferResponse]("Invalid payment request", err.Error()), nil
	}

	token, err := s.tokens.Resolve(ctx, req.Artifact)
	if err != nil {
		return s.tokenFailureResponse(err), nil
	}

	if token.CreatorUserID == req.PayerUserID {
		metrics.TokenRedemptionsTotal.WithLabelValues("rejected").Inc()
		return commons.ErrorResponse[models.TransferResponse]("Cannot pay your own payment code"), nil
	}

	amount := req.Amount
	if token.Amount != nil {
		amount = token.Amount
	}
	if amount == nil {
		return commons.ErrorResponse[models.TransferResponse]("Amount is required for this payment code"), nil
	}

	payer, err := s.accounts.GetPrimaryForUser(ctx, req.PayerUserID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.TransferResponse]("Payer account not found"), nil
		}
		return commons.ErrorResponse[models.TransferResponse]("Failed to process payment"), err
	}

	receiver, err := s.accounts.GetPrimaryForUser(ctx, token.CreatorUserID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.TransferResponse]("Payment code creator has no active account"), nil
		}
		return commons.ErrorResponse[models.TransferResponse]("Failed to process payment"), err
	}

	tokenID := token.ID
	response, err := s.executeTransfer(ctx, transferPlan{
		transferType:   domain.TransactionTypePayment,
		sender:         &payer,
		receiver:       receiver,
		amount:         *amount,
		description:    token.Description,
		paymentTokenID: &tokenID,
	})
	if err == nil && response.Success {
		metrics.TokenRedemptionsTotal.WithLabelValues("redeemed").Inc()
	}
	return response, err
}

func (s *TransferServiceImpl) RequestMoney(ctx context.Context, req models.MoneyRequestRequest) (commons.Response[models.MoneyRequestResponse], error) {
	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.MoneyRequestResponse]("Invalid money request", err.Error()), nil
	}

	requester, err := s.accounts.GetPrimaryForUser(ctx, req.RequesterUserID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.MoneyRequestResponse]("Requester account not found"), nil
		}
		return commons.ErrorResponse[models.MoneyRequestResponse]("Failed to create money request"), err
	}

	targetUserID := req.FromUserID
	if targetUserID == "" {
		target, err := s.accounts.GetByAlias(ctx, req.FromAlias)
		if err != nil {
			if errors.Is(err, domain.ErrRecordNotFound) {
				return commons.ErrorResponse[models.MoneyRequestResponse]("Requested user not found"), nil
			}
			return commons.ErrorResponse[models.MoneyRequestResponse]("Failed to create money request"), err
		}
		targetUserID = target.UserID
	}

	if targetUserID == req.RequesterUserID {
		return commons.ErrorResponse[models.MoneyRequestResponse]("Cannot request money from yourself"), nil
	}

	requestID := uuid.NewString()
	s.publish(domain.EventMoneyRequest, targetUserID, map[string]any{
		"requestId":  requestID,
		"fromUserId": req.RequesterUserID,
		"fromAlias":  requester.Alias,
		"amount":     req.Amount.String(),
		"note":       req.Note,
	})

	logger.Info("money request published", logger.Fields{"requestId": requestID, "requesterUserId": req.RequesterUserID})
	return commons.SuccessResponse("Money request sent", models.MoneyRequestResponse{
		RequestID: requestID,
		Amount:    req.Amount,
	}), nil
}

// executeTransfer runs the gate-then-mutate pipeline: score the projected
// movement, persist a blocked record if the verdict says so, otherwise
// apply the mutation atomically, admit the digest to the ledger, and fan
// out events. The risk verdict is advisory on errors: a scorer failure is
// logged and the transfer proceeds unflagged.
func (s *TransferServiceImpl) executeTransfer(ctx context.Context, plan transferPlan) (commons.Response[models.TransferResponse], error) {
	started := s.now()
	defer func() {
		metrics.TransferDuration.Observe(s.now().Sub(started).Seconds())
	}()

	assessment := s.assess(ctx, plan)
	if assessment.ShouldBlock {
		return s.persistBlocked(ctx, plan, assessment)
	}

	uow, err := s.store.Begin(ctx)
	if err != nil {
		return commons.ErrorResponse[models.TransferResponse]("Failed to process transfer"), err
	}

	response, err := s.applyWithinUnitOfWork(ctx, uow, plan, assessment)
	if err != nil {
		if rbErr := uow.Rollback(ctx); rbErr != nil {
			logger.Error("rollback failed", rbErr, nil)
		}
		return s.handleApplyFailure(ctx, plan, assessment, err)
	}

	return response, nil
}

func (s *TransferServiceImpl) applyWithinUnitOfWork(ctx context.Context, uow repo_interfaces.TransferUnitOfWork, plan transferPlan, assessment domain.RiskAssessment) (commons.Response[models.TransferResponse], error) {
	now := s.now().UTC()

	// Accounts lock in ascending id order so two concurrent transfers in
	// opposite directions cannot deadlock each other.
	lockOrder := []string{plan.receiver.ID}
	if plan.sender != nil {
		if plan.sender.ID < plan.receiver.ID {
			lockOrder = []string{plan.sender.ID, plan.receiver.ID}
		} else {
			lockOrder = []string{plan.receiver.ID, plan.sender.ID}
		}
	}

	locked := make(map[string]domain.Account, len(lockOrder))
	for _, id := range lockOrder {
		account, err := uow.GetAccountForUpdate(ctx, id)
		if err != nil {
			return commons.Response[models.TransferResponse]{}, err
		}
		locked[id] = account
	}

	receiver := locked[plan.receiver.ID]
	transaction := domain.Transaction{
		ID:            uuid.NewString(),
		TransactionID: newTransactionID(now),
		Type:          plan.transferType,
		Amount:        plan.amount,
		Currency:      s.currency,
		Description:   plan.description,
		Category:      plan.category,
		Status:        domain.TransactionStatusCompleted,
		FraudScore:    assessment.FraudProbability,
		IsFlagged:     assessment.ShouldFlag,
		CreatedAt:     now,
		CompletedAt:   &now,
	}
	transaction.ReceiverAccountID = &receiver.ID
	transaction.ReceiverUserID = &receiver.UserID
	transaction.PaymentTokenID = plan.paymentTokenID

	var senderAfter *decimal.Decimal
	if plan.sender != nil {
		sender := locked[plan.sender.ID]
		if sender.Balance.LessThan(plan.amount) {
			return commons.Response[models.TransferResponse]{}, domain.ErrInsufficientBalance
		}
		after := sender.Balance.Sub(plan.amount)
		uow.StageBalance(domain.BalanceMutation{
			AccountID:     sender.ID,
			BalanceBefore: sender.Balance,
			BalanceAfter:  after,
		})
		transaction.SenderAccountID = &sender.ID
		transaction.SenderUserID = &sender.UserID
		transaction.SenderBalanceBefore = &sender.Balance
		transaction.SenderBalanceAfter = &after
		senderAfter = &after
	}

	receiverAfter := receiver.Balance.Add(plan.amount)
	uow.StageBalance(domain.BalanceMutation{
		AccountID:     receiver.ID,
		BalanceBefore: receiver.Balance,
		BalanceAfter:  receiverAfter,
	})
	transaction.ReceiverBalanceBefore = &receiver.Balance
	transaction.ReceiverBalanceAfter = &receiverAfter

	digest, err := s.ledger.HashTransaction(ledgerPayload(transaction))
	if err != nil {
		return commons.Response[models.TransferResponse]{}, err
	}
	transaction.LedgerDigest = &digest

	if plan.paymentTokenID != nil {
		redeemer := ""
		if transaction.SenderUserID != nil {
			redeemer = *transaction.SenderUserID
		}
		if err := uow.RedeemToken(ctx, *plan.paymentTokenID, redeemer, now); err != nil {
			return commons.Response[models.TransferResponse]{}, err
		}
	}

	uow.StageTransaction(transaction)

	if err := uow.Commit(ctx); err != nil {
		return commons.Response[models.TransferResponse]{}, err
	}

	if err := s.ledger.Admit(ctx, digest); err != nil {
		// The transfer is committed; a ledger admission failure is an
		// observability gap, not grounds to unwind the movement.
		logger.Error("ledger admission failed", err, logger.Fields{"transactionId": transaction.TransactionID})
	}

	s.publishTransferEvents(transaction)
	metrics.TransfersTotal.WithLabelValues(string(plan.transferType), string(domain.TransactionStatusCompleted)).Inc()
	logger.Info("transfer completed", logger.Fields{
		"transactionId": transaction.TransactionID,
		"type":          string(plan.transferType),
		"flagged":       assessment.ShouldFlag,
	})

	return commons.SuccessResponse("Transfer completed", models.TransferResponse{
		TransactionID:        transaction.TransactionID,
		Type:                 string(transaction.Type),
		Status:               string(transaction.Status),
		Amount:               transaction.Amount,
		Currency:             transaction.Currency,
		SenderBalanceAfter:   senderAfter,
		ReceiverBalanceAfter: &receiverAfter,
		Description:          transaction.Description,
		LedgerDigest:         digest,
		FraudCheck: models.FraudCheckResult{
			RiskLevel:   string(assessment.RiskLevel),
			RiskFactors: assessment.RiskFactors,
			WasFlagged:  assessment.ShouldFlag,
		},
	}), nil
}

// handleApplyFailure translates a failed mutation into the caller-facing
// response and, for persistence-level failures, records the attempt as a
// failed transaction so the audit trail shows it happened.
func (s *TransferServiceImpl) handleApplyFailure(ctx context.Context, plan transferPlan, assessment domain.RiskAssessment, err error) (commons.Response[models.TransferResponse], error) {
	switch {
	case errors.Is(err, domain.ErrInsufficientBalance):
		metrics.TransfersTotal.WithLabelValues(string(plan.transferType), string(domain.TransactionStatusFailed)).Inc()
		return commons.ErrorResponse[models.TransferResponse]("Insufficient balance"), nil
	case errors.Is(err, domain.ErrTokenAlreadyUsed):
		metrics.TokenRedemptionsTotal.WithLabelValues("replayed").Inc()
		metrics.TransfersTotal.WithLabelValues(string(plan.transferType), string(domain.TransactionStatusFailed)).Inc()
		return commons.ErrorResponse[models.TransferResponse]("Payment code has already been used"), nil
	case errors.Is(err, domain.ErrTokenExpired):
		metrics.TokenRedemptionsTotal.WithLabelValues("expired").Inc()
		metrics.TransfersTotal.WithLabelValues(string(plan.transferType), string(domain.TransactionStatusFailed)).Inc()
		return commons.ErrorResponse[models.TransferResponse]("Payment code has expired"), nil
	case errors.Is(err, domain.ErrRecordNotFound):
		metrics.TransfersTotal.WithLabelValues(string(plan.transferType), string(domain.TransactionStatusFailed)).Inc()
		return commons.ErrorResponse[models.TransferResponse]("Account not found"), nil
	}

	s.persistFailed(ctx, plan, assessment, err)
	metrics.TransfersTotal.WithLabelValues(string(plan.transferType), string(domain.TransactionStatusFailed)).Inc()
	logger.Error("transfer failed", err, logger.Fields{"type": string(plan.transferType)})
	return commons.ErrorResponse[models.TransferResponse]("Failed to process transfer"), err
}

// persistBlocked records a risk-blocked attempt as a terminal BLOCKED
// transaction with untouched balance snapshots and alerts the sender.
func (s *TransferServiceImpl) persistBlocked(ctx context.Context, plan transferPlan, assessment domain.RiskAssessment) (commons.Response[models.TransferResponse], error) {
	now := s.now().UTC()
	transaction := domain.Transaction{
		ID:             uuid.NewString(),
		TransactionID:  newTransactionID(now),
		Type:           plan.transferType,
		Amount:         plan.amount,
		Currency:       s.currency,
		Description:    plan.description,
		Category:       plan.category,
		Status:         domain.TransactionStatusBlocked,
		FraudScore:     assessment.FraudProbability,
		IsFlagged:      true,
		IsFraudulent:   true,
		PaymentTokenID: plan.paymentTokenID,
		CreatedAt:      now,
		CompletedAt:    &now,
	}
	transaction.ReceiverAccountID = &plan.receiver.ID
	transaction.ReceiverUserID = &plan.receiver.UserID
	transaction.ReceiverBalanceBefore = &plan.receiver.Balance
	transaction.ReceiverBalanceAfter = &plan.receiver.Balance
	if plan.sender != nil {
		transaction.SenderAccountID = &plan.sender.ID
		transaction.SenderUserID = &plan.sender.UserID
		transaction.SenderBalanceBefore = &plan.sender.Balance
		transaction.SenderBalanceAfter = &plan.sender.Balance
	}

	if _, err := s.createWithIDRetry(ctx, transaction); err != nil {
		logger.Error("failed to persist blocked transaction", err, logger.Fields{"transactionId": transaction.TransactionID})
		return commons.ErrorResponse[models.TransferResponse]("Failed to process transfer"), err
	}

	if plan.sender != nil {
		s.publish(domain.EventFraudAlert, plan.sender.UserID, map[string]any{
			"transactionId": transaction.TransactionID,
			"riskLevel":     string(assessment.RiskLevel),
			"riskFactors":   assessment.RiskFactors,
		})
	}

	metrics.TransfersTotal.WithLabelValues(string(plan.transferType), string(domain.TransactionStatusBlocked)).Inc()
	logger.Info("transfer blocked by risk policy", logger.Fields{
		"transactionId": transaction.TransactionID,
		"riskLevel":     string(assessment.RiskLevel),
	})

	data := models.TransferResponse{
		TransactionID: transaction.TransactionID,
		Type:          string(transaction.Type),
		Status:        string(transaction.Status),
		Amount:        transaction.Amount,
		Currency:      transaction.Currency,
		Description:   transaction.Description,
		FraudCheck: models.FraudCheckResult{
			RiskLevel:   string(assessment.RiskLevel),
			RiskFactors: assessment.RiskFactors,
			WasFlagged:  true,
		},
	}
	return commons.Response[models.TransferResponse]{
		Success: false,
		Message: domain.ErrRiskBlocked.Error(),
		Data:    &data,
	}, nil
}

func (s *TransferServiceImpl) persistFailed(ctx context.Context, plan transferPlan, assessment domain.RiskAssessment, cause error) {
	now := s.now().UTC()
	transaction := domain.Transaction{
		ID:             uuid.NewString(),
		TransactionID:  newTransactionID(now),
		Type:           plan.transferType,
		Amount:         plan.amount,
		Currency:       s.currency,
		Description:    plan.description,
		Category:       plan.category,
		Status:         domain.TransactionStatusFailed,
		FraudScore:     assessment.FraudProbability,
		IsFlagged:      assessment.ShouldFlag,
		PaymentTokenID: plan.paymentTokenID,
		CreatedAt:      now,
		CompletedAt:    &now,
	}
	transaction.ReceiverAccountID = &plan.receiver.ID
	transaction.ReceiverUserID = &plan.receiver.UserID
	if plan.sender != nil {
		transaction.SenderAccountID = &plan.sender.ID
		transaction.SenderUserID = &plan.sender.UserID
	}

	if _, err := s.createWithIDRetry(ctx, transaction); err != nil {
		logger.Error("failed to persist failed transaction", err, logger.Fields{
			"transactionId": transaction.TransactionID,
			"cause":         cause.Error(),
		})
	}
}

// createWithIDRetry regenerates the reference id on a duplicate-key
// collision. The timestamp component makes collisions rare; this keeps
// them harmless.
func (s *TransferServiceImpl) createWithIDRetry(ctx context.Context, transaction domain.Transaction) (domain.Transaction, error) {
	for attempt := 0; ; attempt++ {
		created, err := s.transactions.Create(ctx, transaction)
		if err == nil || !errors.Is(err, domain.ErrDuplicateRecord) || attempt >= 2 {
			return created, err
		}
		transaction.TransactionID = newTransactionID(s.now().UTC())
	}
}

func (s *TransferServiceImpl) assess(ctx context.Context, plan transferPlan) domain.RiskAssessment {
	features := domain.RiskFeatures{
		Type:      plan.transferType,
		Amount:    plan.amount,
		HourOfDay: s.now().UTC().Hour(),
	}
	features.ReceiverBalanceBefore = plan.receiver.Balance
	features.ReceiverBalanceAfter = plan.receiver.Balance.Add(plan.amount)
	if plan.sender != nil {
		features.SenderBalanceBefore = plan.sender.Balance
		features.SenderBalanceAfter = plan.sender.Balance.Sub(plan.amount)
	}

	assessment, err := s.scorer.Score(ctx, features)
	if err != nil {
		logger.Error("risk scoring unavailable, proceeding unscored", err, logger.Fields{"type": string(plan.transferType)})
		return domain.RiskAssessment{RiskLevel: domain.RiskLevelLow, Method: "unscored"}
	}
	return assessment
}

func (s *TransferServiceImpl) resolveReceiver(ctx context.Context, accountID string, alias string) (domain.Account, error) {
	if strings.TrimSpace(accountID) != "" {
		return s.accounts.GetByID(ctx, accountID)
	}
	return s.accounts.GetByAlias(ctx, alias)
}

func (s *TransferServiceImpl) publishTransferEvents(transaction domain.Transaction) {
	amount := transaction.Amount.String()

	if transaction.SenderUserID != nil {
		s.publish(domain.EventPaymentSent, *transaction.SenderUserID, map[string]any{
			"transactionId": transaction.TransactionID,
			"amount":        amount,
			"currency":      transaction.Currency,
		})
		if transaction.SenderBalanceAfter != nil {
			s.publish(domain.EventBalanceUpdate, *transaction.SenderUserID, map[string]any{
				"balance": transaction.SenderBalanceAfter.String(),
			})
		}
	}

	if transaction.ReceiverUserID != nil {
		s.publish(domain.EventPaymentReceived, *transaction.ReceiverUserID, map[string]any{
			"transactionId": transaction.TransactionID,
			"amount":        amount,
			"currency":      transaction.Currency,
		})
		if transaction.ReceiverBalanceAfter != nil {
			s.publish(domain.EventBalanceUpdate, *transaction.ReceiverUserID, map[string]any{
				"balance": transaction.ReceiverBalanceAfter.String(),
			})
		}
	}
}

func (s *TransferServiceImpl) publish(eventType string, userID string, payload map[string]any) {
	if s.sink == nil {
		return
	}
	s.sink.Publish(eventType, userID, payload)
	metrics.EventsPublishedTotal.WithLabelValues(eventType).Inc()
}

func (s *TransferServiceImpl) tokenFailureResponse(err error) commons.Response[models.TransferResponse] {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		metrics.TokenRedemptionsTotal.WithLabelValues("expired").Inc()
		return commons.ErrorResponse[models.TransferResponse]("Payment code has expired")
	case errors.Is(err, domain.ErrTokenAlreadyUsed):
		metrics.TokenRedemptionsTotal.WithLabelValues("replayed").Inc()
		return commons.ErrorResponse[models.TransferResponse]("Payment code has already been used")
	case errors.Is(err, domain.ErrTokenIntegrity):
		metrics.TokenRedemptionsTotal.WithLabelValues("rejected").Inc()
		return commons.ErrorResponse[models.TransferResponse]("Payment code failed verification")
	default:
		metrics.TokenRedemptionsTotal.WithLabelValues("error").Inc()
		return commons.ErrorResponse[models.TransferResponse]("Failed to verify payment code")
	}
}

// ledgerPayload is the digest input for a transaction: the identifying
// and monetary fields only, so the digest is reproducible from the stored
// record.
func ledgerPayload(transaction domain.Transaction) map[string]any {
	payload := map[string]any{
		"transaction_id": transaction.TransactionID,
		"type":           string(transaction.Type),
		"amount":         transaction.Amount.String(),
		"currency":       transaction.Currency,
		"created_at":     transaction.CreatedAt.Format(time.RFC3339Nano),
	}
	if transaction.SenderAccountID != nil {
		payload["sender_account_id"] = *transaction.SenderAccountID
	}
	if transaction.ReceiverAccountID != nil {
		payload["receiver_account_id"] = *transaction.ReceiverAccountID
	}
	return payload
}

func newTransactionID(now time.Time) string {
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
	return "TXN" + now.Format("20060102150405") + fragment
}
