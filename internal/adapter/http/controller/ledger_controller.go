package controller

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/securebank/payment-core/internal/adapter/http/models"
	"github.com/securebank/payment-core/internal/commons"
	"github.com/securebank/payment-core/internal/domain"
)

type LedgerService interface {
	MineBlock(ctx context.Context) (*domain.LedgerBlock, error)
	VerifyDigest(digest string) domain.DigestVerification
	ValidateChain() bool
	Chain() []domain.LedgerBlock
}

type LedgerController struct {
	service LedgerService
}

func NewLedgerController(service LedgerService) *LedgerController {
	return &LedgerController{service: service}
}

func (c *LedgerController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	wrap := func(h http.HandlerFunc) http.Handler {
		if authMiddleware != nil {
			return authMiddleware(h)
		}
		return h
	}

	mux.Handle("/ledger/chain", wrap(c.chain))
	mux.Handle("/ledger/mine", wrap(c.mine))
	mux.Handle("/ledger/verify/", wrap(c.verify))
}

func (c *LedgerController) chain(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodGet {
		response := commons.ErrorResponse[models.ChainResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	chain := c.service.Chain()
	views := make([]models.LedgerBlockView, 0, len(chain))
	for _, block := range chain {
		views = append(views, blockView(block))
	}

	response := commons.SuccessResponse("Chain retrieved", models.ChainResponse{
		Chain:  views,
		Length: len(views),
		Valid:  c.service.ValidateChain(),
	})
	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func (c *LedgerController) mine(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.MineBlockResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	block, err := c.service.MineBlock(r.Context())
	if err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.MineBlockResponse]("Failed to mine block")
		writeJSON(w, http.StatusInternalServerError, response)
		logResponse(r, http.StatusInternalServerError, response, start)
		return
	}

	if block == nil {
		response := commons.SuccessResponse("No pending digests to mine", models.MineBlockResponse{Mined: false})
		writeJSON(w, http.StatusOK, response)
		logResponse(r, http.StatusOK, response, start)
		return
	}

	view := blockView(*block)
	response := commons.SuccessResponse("Block mined", models.MineBlockResponse{Mined: true, Block: &view})
	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func (c *LedgerController) verify(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodGet {
		response := commons.ErrorResponse[models.VerifyDigestResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	digest := strings.TrimPrefix(r.URL.Path, "/ledger/verify/")
	if digest == "" || strings.Contains(digest, "/") {
		response := commons.ErrorResponse[models.VerifyDigestResponse]("digest path segment is required")
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}

	verification := c.service.VerifyDigest(digest)
	view := models.VerifyDigestResponse{
		Verified: verification.Found,
		Pending:  verification.Pending,
	}
	if verification.Found && !verification.Pending {
		index := verification.BlockIndex
		timestamp := verification.Timestamp
		view.BlockIndex = &index
		view.BlockHash = verification.BlockHash
		view.Timestamp = &timestamp
	}

	response := commons.SuccessResponse("Digest verification complete", view)
	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func blockView(block domain.LedgerBlock) models.LedgerBlockView {
	return models.LedgerBlockView{
		Index:        block.Index,
		Timestamp:    block.Timestamp,
		Digests:      append([]string(nil), block.Digests...),
		Nonce:        block.Nonce,
		PreviousHash: block.PreviousHash,
		Hash:         block.Hash,
	}
}
