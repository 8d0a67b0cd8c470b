// Package core holds the records exchanged with the backend and the
// money helpers shared by forms, analytics and templates.
//
// This file contains amount parsing from user input and ruble formatting.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

const nbsp = "\u00a0"

// ParseAmount converts user input to a non-negative decimal.
//
// Both dot (12.34) and comma (12,34) separators are accepted, spaces used as
// thousands separators are ignored. Empty input is an error; callers treat
// optional amounts separately with ParseOptionalAmount.
//
// Examples:
//
//	ParseAmount("1 250,50") -> 1250.5, nil
//	ParseAmount("-3")       -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(" ", "", nbsp, "", ",", ".").Replace(s)
	if s == "" || strings.HasPrefix(s, "+") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseOptionalAmount is ParseAmount where blank input means "not set".
func ParseOptionalAmount(s string) (decimal.NullDecimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

// FormatRubles renders an amount in the ru-RU currency style with no
// fraction digits: "1 234 567 ₽" (non-breaking spaces).
func FormatRubles(d decimal.Decimal) string {
	return groupThousands(d.Round(0).Abs().String(), d.Round(0).IsNegative()) + nbsp + "₽"
}

// FormatNumber renders an amount with thousands grouping and up to places
// fraction digits, trailing zeros trimmed ("1 234,5").
func FormatNumber(d decimal.Decimal, places int32) string {
	r := d.Round(places)
	s := r.Abs().String()
	intPart, frac, _ := strings.Cut(s, ".")
	out := groupThousands(intPart, r.IsNegative())
	if frac != "" {
		out += "," + frac
	}
	return out
}

// FormatPercent renders v with a fixed number of decimals and a percent sign.
func FormatPercent(v decimal.Decimal, places int32) string {
	return v.StringFixed(places) + "%"
}

func groupThousands(digits string, negative bool) string {
	var b strings.Builder
	if negative && digits != "0" {
		b.WriteString("-")
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteString(nbsp)
		}
		b.WriteRune(r)
	}
	return b.String()
}
