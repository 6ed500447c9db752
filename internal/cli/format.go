// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatMoney formats a dollar amount with thousands separators and no cents
// once it passes a thousand. e.g., 1234567.8 -> "$1,234,568", -12.5 -> "-$12.50"
func FormatMoney(v float64) string {
	if v < 0 {
		return "-" + FormatMoney(-v)
	}
	if v >= 1000 {
		return "$" + FormatNumber(int64(math.Round(v)))
	}
	return fmt.Sprintf("$%.2f", v)
}

// FormatCompact formats a large amount with a suffix.
// e.g., 1234 -> "$1.2K", 2500000 -> "$2.5M"
func FormatCompact(v float64) string {
	abs := math.Abs(v)
	sign := ""
	if v < 0 {
		sign = "-"
	}
	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%s$%.1fB", sign, abs/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%s$%.1fM", sign, abs/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%s$%.1fK", sign, abs/1_000)
	default:
		return fmt.Sprintf("%s$%.0f", sign, abs)
	}
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDelta formats a signed money difference.
func FormatDelta(delta float64) string {
	if delta >= 0 {
		return "+" + FormatMoney(delta)
	}
	return "-" + FormatMoney(-delta)
}

// FormatYears formats a fractional year count, e.g. 1.25 -> "1y 3m".
func FormatYears(years float64) string {
	sign := ""
	if years < 0 {
		sign = "-"
		years = -years
	}
	months := int(math.Round(years * 12))
	y, m := months/12, months%12
	switch {
	case y == 0:
		return fmt.Sprintf("%s%dm", sign, m)
	case m == 0:
		return fmt.Sprintf("%s%dy", sign, y)
	default:
		return fmt.Sprintf("%s%dy %dm", sign, y, m)
	}
}

// FormatDays formats a signed day count, "earlier" when positive.
func FormatDays(days float64) string {
	n := int64(math.Round(days))
	switch {
	case n > 0:
		return FormatNumber(n) + "d earlier"
	case n < 0:
		return FormatNumber(-n) + "d later"
	default:
		return "same day"
	}
}
