package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"fintrack/internal/core"
)

// DBTX is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// Queries runs the application statements against a single DBTX.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) CreateUser(ctx context.Context, username, passwordHash string) (core.User, error) {
	query, args, err := qb.Insert("user").
		Columns("username", "password_hash").
		Values(username, passwordHash).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return core.User{}, fmt.Errorf("build insert user: %w", err)
	}

	u := core.User{Username: username, PasswordHash: passwordHash}
	if err := q.db.QueryRowContext(ctx, query, args...).Scan(&u.ID); err != nil {
		if isUniqueViolation(err) {
			return core.User{}, core.ErrDuplicateUsername
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	return q.getUser(ctx, sq.Eq{"username": username})
}

func (q *Queries) GetUserByID(ctx context.Context, id int64) (core.User, error) {
	return q.getUser(ctx, sq.Eq{"id": id})
}

func (q *Queries) getUser(ctx context.Context, where sq.Eq) (core.User, error) {
	query, args, err := qb.Select("id", "username", "password_hash").
		From("user").
		Where(where).
		ToSql()
	if err != nil {
		return core.User{}, fmt.Errorf("build select user: %w", err)
	}

	var u core.User
	err = q.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

func (q *Queries) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	var desc any
	if e.Description != "" {
		desc = e.Description
	}
	query, args, err := qb.Insert("expense").
		Columns("user_id", "date", "category", "amount", "description").
		Values(e.UserID, e.Date, e.Category, e.Amount.String(), desc).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return core.Expense{}, fmt.Errorf("build insert expense: %w", err)
	}

	if err := q.db.QueryRowContext(ctx, query, args...).Scan(&e.ID); err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	return e, nil
}

// ListExpensesByUser returns every expense of the user in insertion order.
func (q *Queries) ListExpensesByUser(ctx context.Context, userID int64) ([]core.Expense, error) {
	query, args, err := qb.Select("id", "user_id", "date", "category", "amount", "description").
		From("expense").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select expenses: %w", err)
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select expenses: %w", err)
	}
	defer rows.Close()

	var items []core.Expense
	for rows.Next() {
		var (
			e    core.Expense
			desc sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Date, &e.Category, &e.Amount, &desc); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Description = desc.String
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return items, nil
}

func (q *Queries) GetBudgetByUser(ctx context.Context, userID int64) (core.Budget, error) {
	query, args, err := qb.Select("id", "user_id", "month", "amount").
		From("budget").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return core.Budget{}, fmt.Errorf("build select budget: %w", err)
	}

	var b core.Budget
	err = q.db.QueryRowContext(ctx, query, args...).Scan(&b.ID, &b.UserID, &b.Month, &b.Amount)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, core.ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("select budget: %w", err)
	}
	return b, nil
}

// UpsertBudget inserts the user's budget stamped with month, or updates the
// amount of the existing row. The month label of an existing row is kept.
func (q *Queries) UpsertBudget(ctx context.Context, userID int64, month string, amount decimal.Decimal) (core.Budget, error) {
	query, args, err := qb.Insert("budget").
		Columns("user_id", "month", "amount").
		Values(userID, month, amount.String()).
		Suffix("ON CONFLICT(user_id) DO UPDATE SET amount = excluded.amount RETURNING id, user_id, month, amount").
		ToSql()
	if err != nil {
		return core.Budget{}, fmt.Errorf("build upsert budget: %w", err)
	}

	var b core.Budget
	if err := q.db.QueryRowContext(ctx, query, args...).Scan(&b.ID, &b.UserID, &b.Month, &b.Amount); err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	return b, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE")
}
