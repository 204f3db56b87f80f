package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

var warnRatio = decimal.RequireFromString("0.8")

// LedgerService records expenses and budgets and builds the spending summary.
type LedgerService struct {
	alerts AlertPublisher
	now    func() time.Time
}

// NewLedgerService returns a service that publishes budget alerts to alerts;
// alerts may be nil.
func NewLedgerService(alerts AlertPublisher) *LedgerService {
	return &LedgerService{alerts: alerts, now: time.Now}
}

// AddExpense stores one expense for e.UserID. Date, category and description
// are kept as entered.
func (s *LedgerService) AddExpense(ctx context.Context, st Store, e core.Expense) (core.Expense, error) {
	created, err := st.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}

	log.FromContext(ctx).WithComponent(log.ComponentExpense).InfoContext(ctx, "Expense added",
		log.NewFields().
			WithUser(created.UserID).
			WithExpense(created.ID, created.Date, created.Category, created.Amount.String()).
			WithOperation(log.OpCreate).
			ToSlice()...)

	s.checkBudget(ctx, st, created)
	return created, nil
}

// SetBudget creates the user's budget stamped with the current month name, or
// updates the amount of the existing one.
func (s *LedgerService) SetBudget(ctx context.Context, st Store, userID int64, amount decimal.Decimal) (core.Budget, error) {
	b, err := st.UpsertBudget(ctx, userID, core.MonthLabel(s.now()), amount)
	if err != nil {
		return core.Budget{}, fmt.Errorf("set budget: %w", err)
	}

	log.FromContext(ctx).WithComponent(log.ComponentBudget).InfoContext(ctx, "Budget set",
		log.FieldUserID, userID,
		log.FieldMonth, b.Month,
		log.FieldAmount, b.Amount.String(),
		log.FieldOperation, log.OpUpsert)
	return b, nil
}

// GetBudget returns the user's budget, or nil when none was set.
func (s *LedgerService) GetBudget(ctx context.Context, st Store, userID int64) (*core.Budget, error) {
	b, err := st.GetBudgetByUser(ctx, userID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get budget: %w", err)
	}
	return &b, nil
}

// Summary lists all of the user's expenses with their total and budget.
func (s *LedgerService) Summary(ctx context.Context, st Store, userID int64) (core.Summary, error) {
	items, err := st.ListExpensesByUser(ctx, userID)
	if err != nil {
		return core.Summary{}, fmt.Errorf("summary: %w", err)
	}
	budget, err := s.GetBudget(ctx, st, userID)
	if err != nil {
		return core.Summary{}, fmt.Errorf("summary: %w", err)
	}
	return core.NewSummary(items, budget), nil
}

// checkBudget publishes an alert when the new expense moves spending across
// the warning or exceeded threshold. Failures are logged only.
func (s *LedgerService) checkBudget(ctx context.Context, st Store, added core.Expense) {
	if s.alerts == nil {
		return
	}
	logger := log.FromContext(ctx).WithComponent(log.ComponentAMQP)

	summary, err := s.Summary(ctx, st, added.UserID)
	if err != nil {
		logger.WarnContext(ctx, "Budget check skipped", log.FieldError, err)
		return
	}
	if summary.Budget == nil || !summary.Budget.Amount.IsPositive() {
		return
	}

	before := alertLevel(summary.Total.Sub(added.Amount), summary.Budget.Amount)
	after := alertLevel(summary.Total, summary.Budget.Amount)
	if after == "" || after == before {
		return
	}

	alert := amqp.BudgetAlert{
		UserID:    added.UserID,
		Level:     after,
		Total:     core.FormatAmount(summary.Total),
		Budget:    core.FormatAmount(summary.Budget.Amount),
		Month:     summary.Budget.Month,
		Timestamp: s.now(),
	}
	if err := s.alerts.PublishBudgetAlert(ctx, alert); err != nil {
		logger.ErrorContext(ctx, "Failed to publish budget alert",
			log.FieldUserID, added.UserID, log.FieldError, err, log.FieldOperation, log.OpPublish)
	}
}

func alertLevel(total, budget decimal.Decimal) string {
	switch {
	case total.GreaterThan(budget):
		return amqp.AlertExceeded
	case total.GreaterThanOrEqual(budget.Mul(warnRatio)):
		return amqp.AlertWarning
	default:
		return ""
	}
}
