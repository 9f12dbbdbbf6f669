package router

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/securebank/payment-core/internal/adapter/notify"
)

type PaymentRouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler)
}

type TokenRouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler)
}

type LedgerRouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler)
}

func New(
	paymentController PaymentRouteRegistrar,
	tokenController TokenRouteRegistrar,
	ledgerController LedgerRouteRegistrar,
	hub *notify.Hub,
	authMiddleware func(http.Handler) http.Handler,
) *http.ServeMux {
	mux := http.NewServeMux()

	if paymentController != nil {
		paymentController.RegisterRoutes(mux, authMiddleware)
	}
	if tokenController != nil {
		tokenController.RegisterRoutes(mux, authMiddleware)
	}
	if ledgerController != nil {
		ledgerController.RegisterRoutes(mux, authMiddleware)
	}

	if hub != nil {
		mux.Handle("/ws", websocketHandler(hub))
	}

	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// websocketHandler upgrades /ws?userId=... connections. Browsers cannot
// send basic-auth headers on websocket upgrades from JS, so the endpoint
// sits outside the auth middleware.
func websocketHandler(hub *notify.Hub) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.URL.Query().Get("userId"))
		if userID == "" {
			http.Error(w, "userId query parameter is required", http.StatusBadRequest)
			return
		}
		hub.ServeWS(w, r, userID)
	})
}
