package core

import "github.com/shopspring/decimal"

// Summary compares a user's total spend to their budget.
type Summary struct {
	Expenses []Expense
	Total    decimal.Decimal
	Budget   *Budget // nil when no budget was ever set
}

// NewSummary sums the expense amounts exactly, in the order given.
func NewSummary(expenses []Expense, budget *Budget) Summary {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return Summary{Expenses: expenses, Total: total, Budget: budget}
}

// Remaining is budget minus total; ok is false without a budget.
func (s Summary) Remaining() (decimal.Decimal, bool) {
	if s.Budget == nil {
		return decimal.Zero, false
	}
	return s.Budget.Amount.Sub(s.Total), true
}

// SpentRatio returns total/budget, or ok=false when there is no positive budget.
func (s Summary) SpentRatio() (decimal.Decimal, bool) {
	if s.Budget == nil || !s.Budget.Amount.IsPositive() {
		return decimal.Zero, false
	}
	return s.Total.Div(s.Budget.Amount), true
}
