package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"12.50", "12.5", true},
		{"12,50", "12.5", true},
		{" 2.50 ", "2.5", true},
		{"-3", "-3", true},
		{"+4.25", "4.25", true},
		{"0", "0", true},
		{".5", "0.5", true},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"--1", "", false},
		{"1e3", "", false},
		{"", "", false},
		{"-", "", false},
		{".", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err != ErrInvalidAmount {
			t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(decimal.RequireFromString("35.75")); got != "35.75" {
		t.Fatalf("got %s", got)
	}
	if got := FormatAmount(decimal.RequireFromString("12.5")); got != "12.50" {
		t.Fatalf("got %s", got)
	}
}
