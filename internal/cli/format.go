// Package cli provides the cashflow terminal client: cobra commands and
// lipgloss rendering of forecasts, scenarios and collisions.
package cli

import (
	"strings"

	"github.com/warp/cashflow-engine/generic"
)

// FormatMoney formats an amount as dollars with comma separators.
// e.g., 1234.5 -> "$1,234.50", -300 -> "-$300.00"
func FormatMoney(a generic.Amount) string {
	s := a.Abs().String()
	whole, cents, _ := strings.Cut(s, ".")

	var b strings.Builder
	if a.IsNegative() && !a.Round(2).IsZero() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	b.WriteString(groupThousands(whole))
	b.WriteByte('.')
	b.WriteString(cents)
	return b.String()
}

// groupThousands adds comma separators to a string of digits.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	remainder := len(digits) % 3
	if remainder > 0 {
		b.WriteString(digits[:remainder])
	}
	for i := remainder; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatDate formats a date, or "-" when absent.
func FormatDate(d generic.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.String()
}

// Truncate shortens s to at most n runes with a trailing ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n < 2 {
		return s
	}
	return string(r[:n-1]) + "…"
}
