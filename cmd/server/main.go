package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/securebank/payment-core/internal/adapter/http/controller"
	"github.com/securebank/payment-core/internal/adapter/http/middleware"
	"github.com/securebank/payment-core/internal/adapter/http/router"
	"github.com/securebank/payment-core/internal/adapter/notify"
	"github.com/securebank/payment-core/internal/adapter/repository/memory"
	"github.com/securebank/payment-core/internal/adapter/repository/postgres"
	"github.com/securebank/payment-core/internal/adapter/repository/repo_interfaces"
	"github.com/securebank/payment-core/internal/config"
	"github.com/securebank/payment-core/internal/domain"
	"github.com/securebank/payment-core/internal/logger"
	"github.com/securebank/payment-core/internal/usecase/service_interfaces"
	"github.com/securebank/payment-core/internal/usecase/services"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	accounts, transactions, tokens, ledgerRepo, transferStore, err := buildRepositories(ctx, cfg)
	if err != nil {
		log.Fatalf("initialize repositories: %v", err)
	}

	ledger, err := services.NewLedgerService(ctx, ledgerRepo, cfg.LedgerDifficulty, 0)
	if err != nil {
		log.Fatalf("initialize ledger: %v", err)
	}

	scorer := buildScorer(cfg)
	hub := notify.NewHub()

	codec := services.NewTokenCodec(cfg.QRSecret)
	tokenService := services.NewTokenService(codec, tokens, accounts, cfg.TokenExpiryMinutes)
	transferService := services.NewTransferService(accounts, transactions, transferStore, tokenService, ledger, scorer, hub, cfg.Currency)

	mux := router.New(
		controller.NewPaymentController(transferService, transactions),
		controller.NewTokenController(tokenService),
		controller.NewLedgerController(ledger),
		hub,
		middleware.BasicAuth(cfg.ChannelID, cfg.ChannelKey),
	)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("http server starting", logger.Fields{"addr": cfg.HTTPAddr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Fatalf("server error: %v", err)
	}
	logger.Info("server stopped", nil)
}

func buildRepositories(ctx context.Context, cfg config.Config) (
	repo_interfaces.AccountRepository,
	repo_interfaces.TransactionRepository,
	repo_interfaces.TokenRepository,
	repo_interfaces.LedgerRepository,
	repo_interfaces.TransferStore,
	error,
) {
	if cfg.DatabaseDSN != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, nil, nil, nil, err
		}
		return postgres.NewAccountRepository(db),
			postgres.NewTransactionRepository(db),
			postgres.NewTokenRepository(db),
			postgres.NewLedgerRepository(db),
			postgres.NewTransferStore(db),
			nil
	}

	logger.Info("no database configured, using in-memory repositories", nil)
	store := memory.NewStore()
	accounts := memory.NewAccountRepository(store)
	seedDemoAccounts(ctx, accounts, cfg.Currency)

	return accounts,
		memory.NewTransactionRepository(store),
		memory.NewTokenRepository(store),
		memory.NewLedgerRepository(),
		store,
		nil
}

func buildScorer(cfg config.Config) service_interfaces.RiskScorer {
	rules := services.NewRuleScorer()
	if cfg.ModelWeightsPath == "" {
		return rules
	}
	return services.NewFailoverScorer(services.NewModelScorer(cfg.ModelWeightsPath), rules)
}

// seedDemoAccounts makes the in-memory mode usable out of the box.
func seedDemoAccounts(ctx context.Context, accounts repo_interfaces.AccountRepository, currency string) {
	seeds := []domain.Account{
		{ID: "acc-alice", UserID: "alice", Alias: "alice@securebank", Balance: decimal.NewFromInt(10000), Currency: currency, IsPrimary: true},
		{ID: "acc-bob", UserID: "bob", Alias: "bob@securebank", Balance: decimal.NewFromInt(5000), Currency: currency, IsPrimary: true},
	}
	for _, seed := range seeds {
		if _, err := accounts.Create(ctx, seed); err != nil {
			logger.Error("failed to seed demo account", err, logger.Fields{"accountId": seed.ID})
		}
	}
}
