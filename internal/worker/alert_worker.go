package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
)

// staleAfter bounds how old an alert may be and still be delivered; older
// ones are acknowledged and dropped.
const staleAfter = 24 * time.Hour

var alertsHandled = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "fintrack",
		Subsystem: "alerts",
		Name:      "handled_total",
		Help:      "Budget alerts taken off the queue by outcome.",
	},
	[]string{"level", "outcome"},
)

// Consumer is the broker side the worker reads from.
type Consumer interface {
	ConsumeBudgetAlerts(ctx context.Context, handler func(context.Context, *amqp.BudgetAlert) error) error
}

// Notifier delivers an alert to the user, e.g. by mail or chat.
type Notifier interface {
	Notify(ctx context.Context, alert *amqp.BudgetAlert) error
}

// LogNotifier writes alerts to the application log.
type LogNotifier struct {
	Logger *log.Logger
}

func (n LogNotifier) Notify(ctx context.Context, alert *amqp.BudgetAlert) error {
	n.Logger.WarnContext(ctx, "Budget alert",
		log.FieldUserID, alert.UserID,
		"level", alert.Level,
		"total", alert.Total,
		"budget", alert.Budget,
		log.FieldMonth, alert.Month)
	return nil
}

// AlertWorker drains the budget alert queue into a Notifier.
type AlertWorker struct {
	notifier Notifier
	logger   *log.Logger
	now      func() time.Time
}

func NewAlertWorker(notifier Notifier, logger *log.Logger) *AlertWorker {
	return &AlertWorker{
		notifier: notifier,
		logger:   logger.WithComponent(log.ComponentAMQP),
		now:      time.Now,
	}
}

// Run consumes until ctx is cancelled. Cancellation is not an error.
func (w *AlertWorker) Run(ctx context.Context, c Consumer) error {
	err := c.ConsumeBudgetAlerts(ctx, w.HandleBudgetAlert)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// HandleBudgetAlert validates one alert and passes it on. A returned error
// asks the broker to redeliver, so only notifier failures produce one.
func (w *AlertWorker) HandleBudgetAlert(ctx context.Context, alert *amqp.BudgetAlert) error {
	switch alert.Level {
	case amqp.AlertWarning, amqp.AlertExceeded:
	default:
		w.logger.WarnContext(ctx, "Dropping budget alert with unknown level", "level", alert.Level, log.FieldUserID, alert.UserID)
		alertsHandled.WithLabelValues("unknown", "dropped").Inc()
		return nil
	}

	if age := w.now().Sub(alert.Timestamp); age > staleAfter {
		w.logger.InfoContext(ctx, "Dropping stale budget alert", log.FieldUserID, alert.UserID, "age", age.String())
		alertsHandled.WithLabelValues(alert.Level, "stale").Inc()
		return nil
	}

	if err := w.notifier.Notify(ctx, alert); err != nil {
		alertsHandled.WithLabelValues(alert.Level, "failed").Inc()
		return fmt.Errorf("notify user %d: %w", alert.UserID, err)
	}
	alertsHandled.WithLabelValues(alert.Level, "delivered").Inc()
	return nil
}
