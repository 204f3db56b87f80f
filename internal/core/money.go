// Package core holds the domain types of the finance tracker.
//
// This file contains amount parsing and formatting.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-entered amount to a decimal.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted and a
// leading sign is kept, so refunds can be recorded as negative expenses.
// Anything that is not a plain number returns ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.50")  -> 12.5, nil
//	ParseAmount("12,50")  -> 12.5, nil
//	ParseAmount("-3")     -> -3, nil
//	ParseAmount("twelve") -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	body := strings.TrimLeft(s, "+-")
	if len(s)-len(body) > 1 || body == "" || body == "." {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range body {
		if (r < '0' || r > '9') && r != '.' {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(s, "+"))
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders an amount with two decimals for display.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
