package services

import (
	"context"

	"github.com/shopspring/decimal"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
)

// Store is the slice of storage the services need. The HTTP layer passes the
// request-scoped handle on every call.
type Store interface {
	CreateUser(ctx context.Context, username, passwordHash string) (core.User, error)
	GetUserByUsername(ctx context.Context, username string) (core.User, error)
	CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	ListExpensesByUser(ctx context.Context, userID int64) ([]core.Expense, error)
	GetBudgetByUser(ctx context.Context, userID int64) (core.Budget, error)
	UpsertBudget(ctx context.Context, userID int64, month string, amount decimal.Decimal) (core.Budget, error)
}

// AlertPublisher delivers budget alerts, e.g. to a message broker.
type AlertPublisher interface {
	PublishBudgetAlert(ctx context.Context, alert amqp.BudgetAlert) error
}
