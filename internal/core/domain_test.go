package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestMonthLabel(t *testing.T) {
	if got := MonthLabel(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)); got != "March" {
		t.Fatalf("got %s", got)
	}
}

func TestNewSummary(t *testing.T) {
	exp := []Expense{
		{Amount: decimal.RequireFromString("10.00")},
		{Amount: decimal.RequireFromString("20.50")},
		{Amount: decimal.RequireFromString("5.25")},
	}
	s := NewSummary(exp, nil)
	if !s.Total.Equal(decimal.RequireFromString("35.75")) {
		t.Fatalf("total %s", s.Total)
	}
	if _, ok := s.Remaining(); ok {
		t.Fatalf("remaining without budget")
	}

	s = NewSummary(exp, &Budget{Amount: decimal.NewFromInt(50)})
	rem, ok := s.Remaining()
	if !ok || !rem.Equal(decimal.RequireFromString("14.25")) {
		t.Fatalf("remaining %s ok=%v", rem, ok)
	}
	ratio, ok := s.SpentRatio()
	if !ok || !ratio.Equal(decimal.RequireFromString("0.715")) {
		t.Fatalf("ratio %s ok=%v", ratio, ok)
	}

	empty := NewSummary(nil, nil)
	if !empty.Total.IsZero() {
		t.Fatalf("empty total %s", empty.Total)
	}
}
