package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/securebank/payment-core/internal/adapter/http/models"
	"github.com/securebank/payment-core/internal/adapter/repository/repo_interfaces"
	"github.com/securebank/payment-core/internal/commons"
	"github.com/securebank/payment-core/internal/domain"
	"github.com/securebank/payment-core/internal/logger"
)

const transactionListLimit = 50

type TransferService interface {
	SendMoney(ctx context.Context, req models.SendMoneyRequest) (commons.Response[models.TransferResponse], error)
	Deposit(ctx context.Context, req models.DepositRequest) (commons.Response[models.TransferResponse], error)
	PayToken(ctx context.Context, req models.PayTokenRequest) (commons.Response[models.TransferResponse], error)
	RequestMoney(ctx context.Context, req models.MoneyRequestRequest) (commons.Response[models.MoneyRequestResponse], error)
}

type PaymentController struct {
	service      TransferService
	transactions repo_interfaces.TransactionRepository
}

func NewPaymentController(service TransferService, transactions repo_interfaces.TransactionRepository) *PaymentController {
	return &PaymentController{service: service, transactions: transactions}
}

func (c *PaymentController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	wrap := func(h http.HandlerFunc) http.Handler {
		if authMiddleware != nil {
			return authMiddleware(h)
		}
		return h
	}

	mux.Handle("/payments/send", wrap(c.send))
	mux.Handle("/payments/deposit", wrap(c.deposit))
	mux.Handle("/payments/request", wrap(c.request))
	mux.Handle("/qr/pay", wrap(c.pay))
	mux.Handle("/transactions", wrap(c.list))
}

func (c *PaymentController) send(w http.ResponseWriter, r *http.Request) {
	handlePost(w, r, c.service.SendMoney)
}

func (c *PaymentController) deposit(w http.ResponseWriter, r *http.Request) {
	handlePost(w, r, c.service.Deposit)
}

func (c *PaymentController) request(w http.ResponseWriter, r *http.Request) {
	handlePost(w, r, c.service.RequestMoney)
}

func (c *PaymentController) pay(w http.ResponseWriter, r *http.Request) {
	handlePost(w, r, c.service.PayToken)
}

func (c *PaymentController) list(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodGet {
		response := commons.ErrorResponse[models.TransactionListResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		response := commons.ErrorResponse[models.TransactionListResponse]("userId query parameter is required")
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}

	transactions, err := c.transactions.ListForUser(r.Context(), userID, transactionListLimit)
	if err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.TransactionListResponse]("Failed to list transactions")
		writeJSON(w, http.StatusInternalServerError, response)
		logResponse(r, http.StatusInternalServerError, response, start)
		return
	}

	views := make([]models.TransactionView, 0, len(transactions))
	for _, transaction := range transactions {
		view := models.TransactionView{
			TransactionID: transaction.TransactionID,
			Type:          string(transaction.Type),
			Status:        string(transaction.Status),
			Amount:        transaction.Amount,
			Currency:      transaction.Currency,
			Description:   transaction.Description,
			Category:      transaction.Category,
			IsFlagged:     transaction.IsFlagged,
			CreatedAt:     transaction.CreatedAt,
		}
		if transaction.LedgerDigest != nil {
			view.LedgerDigest = *transaction.LedgerDigest
		}
		views = append(views, view)
	}

	response := commons.SuccessResponse("Transactions retrieved", models.TransactionListResponse{Transactions: views})
	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

// handlePost decodes a JSON request, invokes the service, and maps the
// outcome to an HTTP status from the response message.
func handlePost[Req any, Resp any](w http.ResponseWriter, r *http.Request, invoke func(context.Context, Req) (commons.Response[Resp], error)) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[Resp]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	var req Req
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[Resp]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	response, err := invoke(r.Context(), req)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		writeJSON(w, http.StatusInternalServerError, response)
		logResponse(r, http.StatusInternalServerError, response, start)
		return
	}

	status := http.StatusOK
	if !response.Success {
		status = failureStatus(response.Message)
	}
	writeJSON(w, status, response)
	logResponse(r, status, response, start)
}

func failureStatus(message string) int {
	switch message {
	case "Insufficient balance":
		return http.StatusUnprocessableEntity
	case domain.ErrRiskBlocked.Error():
		return http.StatusForbidden
	case "Payment code has already been used":
		return http.StatusConflict
	case "Payment code has expired":
		return http.StatusGone
	}

	if strings.HasSuffix(message, "not found") || strings.Contains(message, "no active account") {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}
