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

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-bom/internal/app"
	"github.com/odyssey-erp/odyssey-bom/internal/audit"
	"github.com/odyssey-erp/odyssey-bom/internal/auth"
	"github.com/odyssey-erp/odyssey-bom/internal/bom"
	"github.com/odyssey-erp/odyssey-bom/internal/classification"
	"github.com/odyssey-erp/odyssey-bom/internal/items"
	"github.com/odyssey-erp/odyssey-bom/internal/observability"
	"github.com/odyssey-erp/odyssey-bom/internal/platform/db"
	"github.com/odyssey-erp/odyssey-bom/internal/platform/db/migrations"
	"github.com/odyssey-erp/odyssey-bom/internal/rbac"
	"github.com/odyssey-erp/odyssey-bom/internal/roles"
	"github.com/odyssey-erp/odyssey-bom/internal/shared"
	"github.com/odyssey-erp/odyssey-bom/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping server startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	pool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.PGAutoMigrate {
		version, err := migrations.Apply(ctx, db.SQL(pool))
		if err != nil {
			logger.Error("apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("schema migrated", slog.Uint64("version", uint64(version)))
	}

	verifier, err := auth.NewVerifier(auth.VerifierConfig{
		Secret:    cfg.JWTSecret,
		Algorithm: cfg.JWTAlgorithm,
		Issuer:    cfg.JWTIssuer,
		Leeway:    cfg.JWTLeeway,
	})
	if err != nil {
		logger.Error("init token verifier", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	guard := rbac.Middleware{Logger: logger}
	auditLogger := shared.NewAuditLogger(pool)

	itemsService := items.NewService(items.NewRepository(pool), classification.Default(), cfg.ClassificationScheme, auditLogger)
	bomService := bom.NewService(bom.NewRepository(pool), auditLogger, bom.ServiceConfig{FanOut: cfg.BOMFanOut})
	auditService := audit.NewService(audit.NewRepository(pool))

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("close job client", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() { _ = inspector.Close() }()

	router := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		Authenticate: auth.NewHandler(logger, verifier).Authenticate,
		ItemsHandler: items.NewHandler(logger, itemsService, guard),
		BOMHandler:   bom.NewHandler(logger, bomService, guard),
		AuditHandler: audit.NewHandler(logger, auditService, guard),
		RolesHandler: roles.NewHandler(guard),
		JobHandler:   jobs.NewHandler(inspector, jobClient, guard, logger),
		Metrics:      metrics,
	})

	server := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           router,
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening",
			slog.String("addr", cfg.AppAddr),
			slog.String("scheme", itemsService.SchemeID()),
			slog.String("commit", cfg.EngineCommitSHA),
		)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown http server", slog.Any("error", err))
	}
}
