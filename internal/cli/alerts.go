package cli

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
	"fintrack/internal/worker"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Consume budget alerts from the broker and deliver them",
	RunE:  runAlerts,
}

func runAlerts(cmd *cobra.Command, _ []string) error {
	LoadEnvFile()
	cfg, err := LoadAndValidateConfig(flagConfig)
	if err != nil {
		return err
	}
	logger := SetupLogger(cfg.LogLevel)

	if cfg.AMQPURL == "" {
		return errors.New("alerts: AMQP_URL is not set")
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := worker.NewAlertWorker(worker.LogNotifier{Logger: logger}, logger)
	logger.Info("Alert worker started", "queue", cfg.AMQPQueue)
	if err := w.Run(ctx, client); err != nil {
		logger.Error("Alert worker stopped", log.FieldError, err)
		return err
	}
	logger.Info("Alert worker stopped")
	return nil
}
