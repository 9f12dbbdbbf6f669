package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/securebank/payment-core/internal/adapter/http/models"
	"github.com/securebank/payment-core/internal/adapter/repository/memory"
	"github.com/securebank/payment-core/internal/commons"
	"github.com/securebank/payment-core/internal/domain"
)

type stubTransferService struct {
	transfer commons.Response[models.TransferResponse]
	request  commons.Response[models.MoneyRequestResponse]
	err      error
}

func (s *stubTransferService) SendMoney(context.Context, models.SendMoneyRequest) (commons.Response[models.TransferResponse], error) {
	return s.transfer, s.err
}

func (s *stubTransferService) Deposit(context.Context, models.DepositRequest) (commons.Response[models.TransferResponse], error) {
	return s.transfer, s.err
}

func (s *stubTransferService) PayToken(context.Context, models.PayTokenRequest) (commons.Response[models.TransferResponse], error) {
	return s.transfer, s.err
}

func (s *stubTransferService) RequestMoney(context.Context, models.MoneyRequestRequest) (commons.Response[models.MoneyRequestResponse], error) {
	return s.request, s.err
}

func newPaymentMux(service TransferService) *http.ServeMux {
	store := memory.NewStore()
	mux := http.NewServeMux()
	NewPaymentController(service, memory.NewTransactionRepository(store)).RegisterRoutes(mux, nil)
	return mux
}

func postJSON(t *testing.T, mux *http.ServeMux, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestSendEndpointSuccess(t *testing.T) {
	service := &stubTransferService{
		transfer: commons.SuccessResponse("Transfer completed", models.TransferResponse{
			TransactionID: "TXN20260310120000ABCDEF1234",
			Status:        string(domain.TransactionStatusCompleted),
			Amount:        decimal.NewFromInt(100),
		}),
	}
	rec := postJSON(t, newPaymentMux(service), "/payments/send",
		`{"senderUserId":"alice","receiverAccountId":"acc-bob","amount":"100"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var response commons.Response[models.TransferResponse]
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !response.Success || response.Data == nil || response.Data.TransactionID == "" {
		t.Fatalf("unexpected envelope %+v", response)
	}
}

func TestSendEndpointFailureStatusMapping(t *testing.T) {
	cases := []struct {
		name    string
		message string
		status  int
	}{
		{"insufficient balance", "Insufficient balance", http.StatusUnprocessableEntity},
		{"risk blocked", domain.ErrRiskBlocked.Error(), http.StatusForbidden},
		{"token replay", "Payment code has already been used", http.StatusConflict},
		{"token expired", "Payment code has expired", http.StatusGone},
		{"unknown receiver", "Receiver account not found", http.StatusNotFound},
		{"validation", "Invalid transfer request", http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service := &stubTransferService{
				transfer: commons.ErrorResponse[models.TransferResponse](tc.message),
			}
			rec := postJSON(t, newPaymentMux(service), "/payments/send",
				`{"senderUserId":"alice","receiverAccountId":"acc-bob","amount":"100"}`)
			if rec.Code != tc.status {
				t.Errorf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}

func TestSendEndpointInternalError(t *testing.T) {
	service := &stubTransferService{
		transfer: commons.ErrorResponse[models.TransferResponse]("Failed to process transfer"),
		err:      context.DeadlineExceeded,
	}
	rec := postJSON(t, newPaymentMux(service), "/payments/send",
		`{"senderUserId":"alice","receiverAccountId":"acc-bob","amount":"100"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestSendEndpointRejectsMalformedBody(t *testing.T) {
	rec := postJSON(t, newPaymentMux(&stubTransferService{}), "/payments/send", `{`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestSendEndpointRejectsGet(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/payments/send", nil)
	rec := httptest.NewRecorder()
	newPaymentMux(&stubTransferService{}).ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestTransactionListRequiresUserID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
	rec := httptest.NewRecorder()
	newPaymentMux(&stubTransferService{}).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestTransactionListReturnsUserHistory(t *testing.T) {
	store := memory.NewStore()
	transactions := memory.NewTransactionRepository(store)
	sender := "alice"
	digest := "deadbeef"
	if _, err := transactions.Create(context.Background(), domain.Transaction{
		ID:            "row-1",
		TransactionID: "TXN20260310120000ABCDEF1234",
		Type:          domain.TransactionTypeTransfer,
		Status:        domain.TransactionStatusCompleted,
		Amount:        decimal.NewFromInt(100),
		Currency:      "USD",
		SenderUserID:  &sender,
		LedgerDigest:  &digest,
	}); err != nil {
		t.Fatalf("seed transaction: %v", err)
	}

	mux := http.NewServeMux()
	NewPaymentController(&stubTransferService{}, transactions).RegisterRoutes(mux, nil)

	req := httptest.NewRequest(http.MethodGet, "/transactions?userId=alice", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var response commons.Response[models.TransactionListResponse]
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(response.Data.Transactions) != 1 {
		t.Fatalf("expected one transaction, got %+v", response.Data)
	}
	view := response.Data.Transactions[0]
	if view.TransactionID != "TXN20260310120000ABCDEF1234" || view.LedgerDigest != digest {
		t.Errorf("unexpected view %+v", view)
	}
}
