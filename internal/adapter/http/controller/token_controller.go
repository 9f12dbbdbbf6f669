package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/securebank/payment-core/internal/adapter/http/models"
	"github.com/securebank/payment-core/internal/commons"
)

type TokenService interface {
	Generate(ctx context.Context, req models.GenerateTokenRequest) (commons.Response[models.GenerateTokenResponse], error)
	Verify(ctx context.Context, req models.VerifyTokenRequest) (commons.Response[models.VerifyTokenResponse], error)
	ListForCreator(ctx context.Context, creatorUserID string) (commons.Response[models.TokenListResponse], error)
	Cancel(ctx context.Context, tokenID string, creatorUserID string) (commons.Response[models.CancelTokenResponse], error)
}

type TokenController struct {
	service TokenService
}

func NewTokenController(service TokenService) *TokenController {
	return &TokenController{service: service}
}

func (c *TokenController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	wrap := func(h http.HandlerFunc) http.Handler {
		if authMiddleware != nil {
			return authMiddleware(h)
		}
		return h
	}

	mux.Handle("/qr/generate", wrap(c.generate))
	mux.Handle("/qr/verify", wrap(c.verify))
	mux.Handle("/qr/codes", wrap(c.list))
	mux.Handle("/qr/cancel", wrap(c.cancel))
}

func (c *TokenController) generate(w http.ResponseWriter, r *http.Request) {
	handlePost(w, r, c.service.Generate)
}

func (c *TokenController) verify(w http.ResponseWriter, r *http.Request) {
	handlePost(w, r, c.service.Verify)
}

func (c *TokenController) list(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodGet {
		response := commons.ErrorResponse[models.TokenListResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	creatorUserID := strings.TrimSpace(r.URL.Query().Get("creatorUserId"))
	if creatorUserID == "" {
		response := commons.ErrorResponse[models.TokenListResponse]("creatorUserId query parameter is required")
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}

	response, err := c.service.ListForCreator(r.Context(), creatorUserID)
	if err != nil {
		logError(r, err, nil)
		writeJSON(w, http.StatusInternalServerError, response)
		logResponse(r, http.StatusInternalServerError, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

type cancelTokenRequest struct {
	PaymentID     string `json:"paymentId"`
	CreatorUserID string `json:"creatorUserId"`
}

func (c *TokenController) cancel(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.CancelTokenResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	var req cancelTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.CancelTokenResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}

	if strings.TrimSpace(req.PaymentID) == "" || strings.TrimSpace(req.CreatorUserID) == "" {
		response := commons.ErrorResponse[models.CancelTokenResponse]("paymentId and creatorUserId are required")
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}

	response, err := c.service.Cancel(r.Context(), req.PaymentID, req.CreatorUserID)
	if err != nil {
		logError(r, err, nil)
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
