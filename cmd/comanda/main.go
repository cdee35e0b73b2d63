package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/comanda-erp/comanda-erp/internal/accounting/accounts"
	"github.com/comanda-erp/comanda-erp/internal/accounting/bridge"
	"github.com/comanda-erp/comanda-erp/internal/accounting/costcenters"
	"github.com/comanda-erp/comanda-erp/internal/accounting/journals"
	"github.com/comanda-erp/comanda-erp/internal/accounting/ledger"
	"github.com/comanda-erp/comanda-erp/internal/accounting/mappings"
	"github.com/comanda-erp/comanda-erp/internal/accounting/periods"
	"github.com/comanda-erp/comanda-erp/internal/accounting/reports"
	"github.com/comanda-erp/comanda-erp/internal/ap"
	"github.com/comanda-erp/comanda-erp/internal/app"
	"github.com/comanda-erp/comanda-erp/internal/ar"
	"github.com/comanda-erp/comanda-erp/internal/platform/cache"
	"github.com/comanda-erp/comanda-erp/internal/platform/db"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	validate := validator.New()

	accountRepo := accounts.NewRepository(pool)
	mappingRepo := mappings.NewRepository(pool)
	periodRepo := periods.NewRepository(pool)
	costCenterRepo := costcenters.NewRepository(pool)
	journalRepo := journals.NewRepository(pool)
	ledgerRepo := ledger.NewRepository(pool)
	reportRepo := reports.NewRepository(pool)
	arRepo := ar.NewRepository(pool)
	apRepo := ap.NewRepository(pool)

	accountSvc := accounts.NewService(logger, accountRepo, mappingRepo)
	periodSvc := periods.NewService(periodRepo)
	costCenterSvc := costcenters.NewService(costCenterRepo, logger)
	ledgerSvc := ledger.NewService(pool, ledgerRepo, periodSvc, ledger.NewRedisLocker(redisClient), logger)
	journalSvc := journals.NewService(pool, journalRepo, accountRepo, periodSvc, ledgerSvc, logger)
	reportSvc := reports.NewService(reportRepo)
	// No catalog here: the menu system registers item costing when it is
	// deployed alongside; sales then post without cost-of-sales lines.
	bridgeSvc := bridge.NewService(journalSvc, accountSvc, nil, logger)
	arSvc := ar.NewService(pool, arRepo, bridgeSvc, nil, logger)
	apSvc := ap.NewService(pool, apRepo, bridgeSvc, logger)

	router := app.NewRouter(cfg, logger, app.Handlers{
		Accounts:    accounts.NewHandler(logger, accountSvc, validate),
		Mappings: mappings.NewHandler(mappingRepo, func(ctx context.Context, accountID, businessID int64) error {
			_, err := accountRepo.Get(ctx, accountID, businessID)
			return err
		}, validate),
		Periods:     periods.NewHandler(logger, periodSvc),
		CostCenters: costcenters.NewHandler(costCenterSvc, validate),
		Journals:    journals.NewHandler(journalSvc, validate),
		Ledger:      ledger.NewHandler(ledgerSvc),
		Reports:     reports.NewHandler(reportSvc),
		Receivables: ar.NewHandler(arSvc, validate),
		Payables:    ap.NewHandler(apSvc, validate),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", slog.Any("error", err))
	}
}
