// Package core provides the domain types shared by the insight engines.
//
// This file contains functions for parsing monetary amounts from strings
// and formatting euro values for display.
package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts a decimal string to a signed euro amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional leading sign. Debits commonly arrive as negative values.
// Returns an error for anything that is not a plain decimal number.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("-12,34") -> -12.34, nil
//	ParseAmount("12.3.4") -> 0, error
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")

	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	for _, part := range parts {
		for _, r := range part {
			if !unicode.IsDigit(r) {
				return 0, fmt.Errorf("invalid amount %q", s)
			}
		}
	}
	if parts[0] == "" && (len(parts) == 1 || parts[1] == "") {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if neg {
		v = -v
	}
	return v, nil
}

// FormatEUR renders an amount as a euro string with two decimals, e.g. "€12.34".
// Negative amounts carry the sign before the currency symbol.
func FormatEUR(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "€0.00"
	}
	if amount < 0 {
		return fmt.Sprintf("-€%.2f", -amount)
	}
	return fmt.Sprintf("€%.2f", amount)
}
