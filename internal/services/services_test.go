package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/amqp"
	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type fakePublisher struct {
	alerts []amqp.BudgetAlert
	err    error
}

func (f *fakePublisher) PublishBudgetAlert(_ context.Context, alert amqp.BudgetAlert) error {
	f.alerts = append(f.alerts, alert)
	return f.err
}

func newStore(t *testing.T) *storage.Queries {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "svc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo.Queries()
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAccountService(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	svc := NewAccountService(auth.NewHasher(bcrypt.MinCost))

	u, err := svc.Register(ctx, st, core.Credentials{Username: "alice", Password: "pw1"})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "pw1", u.PasswordHash)

	_, err = svc.Register(ctx, st, core.Credentials{Username: "alice", Password: "other"})
	require.ErrorIs(t, err, core.ErrDuplicateUsername)

	spaced, err := svc.Register(ctx, st, core.Credentials{Username: " alice ", Password: "pw2"})
	require.NoError(t, err)
	assert.Equal(t, " alice ", spaced.Username)
	assert.NotEqual(t, u.ID, spaced.ID)

	empty, err := svc.Register(ctx, st, core.Credentials{})
	require.NoError(t, err)
	assert.Equal(t, "", empty.Username)

	got, err := svc.Authenticate(ctx, st, core.Credentials{})
	require.NoError(t, err)
	assert.Equal(t, empty.ID, got.ID)

	got, err = svc.Authenticate(ctx, st, core.Credentials{Username: " alice ", Password: "pw2"})
	require.NoError(t, err)
	assert.Equal(t, spaced.ID, got.ID)

	got, err = svc.Authenticate(ctx, st, core.Credentials{Username: "alice", Password: "pw1"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.Authenticate(ctx, st, core.Credentials{Username: "alice", Password: "other"})
	require.ErrorIs(t, err, core.ErrAuthenticationFailed)

	_, err = svc.Authenticate(ctx, st, core.Credentials{Username: "nobody", Password: "pw1"})
	require.ErrorIs(t, err, core.ErrAuthenticationFailed)
}

func TestLedgerSummary(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	u, err := st.CreateUser(ctx, "alice", "h")
	require.NoError(t, err)

	svc := NewLedgerService(nil)

	s, err := svc.Summary(ctx, st, u.ID)
	require.NoError(t, err)
	assert.Empty(t, s.Expenses)
	assert.True(t, s.Total.IsZero())
	assert.Nil(t, s.Budget)

	for _, amt := range []string{"10.25", "20.50", "5.00"} {
		_, err := svc.AddExpense(ctx, st, core.Expense{UserID: u.ID, Date: "2024-01-01", Category: "Food", Amount: dec(amt)})
		require.NoError(t, err)
	}

	s, err = svc.Summary(ctx, st, u.ID)
	require.NoError(t, err)
	assert.Len(t, s.Expenses, 3)
	assert.Equal(t, "35.75", core.FormatAmount(s.Total))

	again, err := svc.Summary(ctx, st, u.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Total.String(), again.Total.String())
	assert.Len(t, again.Expenses, 3)
}

func TestLedgerAddExpenseKeepsFieldsAsEntered(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	u, err := st.CreateUser(ctx, "alice", "h")
	require.NoError(t, err)

	svc := NewLedgerService(nil)
	description := strings.Repeat("é", 250)
	_, err = svc.AddExpense(ctx, st, core.Expense{UserID: u.ID, Amount: dec("-1"), Description: description})
	require.NoError(t, err)

	s, err := svc.Summary(ctx, st, u.ID)
	require.NoError(t, err)
	require.Len(t, s.Expenses, 1)
	assert.Empty(t, s.Expenses[0].Date)
	assert.Empty(t, s.Expenses[0].Category)
	assert.Equal(t, description, s.Expenses[0].Description)
	assert.Equal(t, "-1.00", core.FormatAmount(s.Total))
}

func TestLedgerSetBudget(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	u, err := st.CreateUser(ctx, "alice", "h")
	require.NoError(t, err)

	svc := NewLedgerService(nil)
	svc.now = func() time.Time { return time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC) }

	b, err := svc.GetBudget(ctx, st, u.ID)
	require.NoError(t, err)
	assert.Nil(t, b)

	first, err := svc.SetBudget(ctx, st, u.ID, dec("500"))
	require.NoError(t, err)
	assert.Equal(t, "January", first.Month)

	svc.now = func() time.Time { return time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC) }
	second, err := svc.SetBudget(ctx, st, u.ID, dec("750"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "January", second.Month)
	assert.True(t, second.Amount.Equal(dec("750")))

	stored, err := st.GetBudgetByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.True(t, stored.Amount.Equal(dec("750")))
}

func TestLedgerBudgetAlerts(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	u, err := st.CreateUser(ctx, "alice", "h")
	require.NoError(t, err)

	pub := &fakePublisher{}
	svc := NewLedgerService(pub)
	_, err = svc.SetBudget(ctx, st, u.ID, dec("100"))
	require.NoError(t, err)

	add := func(amount string) {
		t.Helper()
		_, err := svc.AddExpense(ctx, st, core.Expense{UserID: u.ID, Date: "2024-01-01", Category: "Food", Amount: dec(amount)})
		require.NoError(t, err)
	}

	add("50")
	assert.Empty(t, pub.alerts)

	add("35")
	require.Len(t, pub.alerts, 1)
	assert.Equal(t, amqp.AlertWarning, pub.alerts[0].Level)
	assert.Equal(t, "85.00", pub.alerts[0].Total)
	assert.Equal(t, "100.00", pub.alerts[0].Budget)

	add("5")
	assert.Len(t, pub.alerts, 1, "no new alert while staying in the warning band")

	add("20")
	require.Len(t, pub.alerts, 2)
	assert.Equal(t, amqp.AlertExceeded, pub.alerts[1].Level)
}

func TestLedgerAlertFailureDoesNotFailExpense(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	u, err := st.CreateUser(ctx, "alice", "h")
	require.NoError(t, err)

	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewLedgerService(pub)
	_, err = svc.SetBudget(ctx, st, u.ID, dec("10"))
	require.NoError(t, err)

	e, err := svc.AddExpense(ctx, st, core.Expense{UserID: u.ID, Date: "2024-01-01", Category: "Food", Amount: dec("11")})
	require.NoError(t, err)
	assert.NotZero(t, e.ID)
	assert.Len(t, pub.alerts, 1)
}

func TestAlertLevel(t *testing.T) {
	budget := dec("100")
	assert.Equal(t, "", alertLevel(dec("79.99"), budget))
	assert.Equal(t, amqp.AlertWarning, alertLevel(dec("80"), budget))
	assert.Equal(t, amqp.AlertWarning, alertLevel(dec("100"), budget))
	assert.Equal(t, amqp.AlertExceeded, alertLevel(dec("100.01"), budget))
}
