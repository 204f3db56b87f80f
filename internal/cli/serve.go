package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/auth"
	"fintrack/internal/config"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	LoadEnvFile()
	cfg, err := LoadAndValidateConfig(flagConfig)
	if err != nil {
		return err
	}
	logger := SetupLogger(cfg.LogLevel)

	repo, err := InitSQLite(logger, cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	alerts, closeAlerts := budgetAlerts(logger, cfg)
	defer closeAlerts()

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		DB:                 repo,
		Accounts:           services.NewAccountService(auth.NewHasher(cfg.BcryptCost)),
		Ledger:             services.NewLedgerService(alerts),
		Sessions:           auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL, cfg.CookieSecure),
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting fintrack server", "port", cfg.Port, "budget_alerts", alerts != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}

// budgetAlerts connects the broker publisher when AMQP_URL is configured. A
// broker that cannot be reached disables alerts rather than blocking start-up.
func budgetAlerts(logger *log.Logger, cfg *config.Config) (services.AlertPublisher, func()) {
	noop := func() {}
	if cfg.AMQPURL == "" {
		return nil, noop
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("Budget alerts disabled, broker unavailable", log.FieldError, err)
		return nil, noop
	}
	logger.Info("Budget alerts enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client, func() {
		if err := client.Close(); err != nil {
			logger.Warn("Failed to close AMQP client", log.FieldError, err)
		}
	}
}
