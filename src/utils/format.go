package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ru-RU style formatting for API payloads and email bodies: space-grouped
// thousands, comma decimals, ruble sign suffix.

// FormatCurrency formats an amount as whole rubles, e.g. "12 345 ₽".
// Fractions are rounded away, matching how the dashboard displays money.
func FormatCurrency(amount float64) string {
	return groupThousands(math.Round(amount)) + " ₽"
}

// FormatPercent formats a percentage with two decimals and a comma
// separator, e.g. "55,00".
func FormatPercent(percent float64) string {
	return strings.Replace(strconv.FormatFloat(RoundFloat(percent, 2), 'f', 2, 64), ".", ",", 1)
}

func groupThousands(v float64) string {
	neg := v < 0
	s := fmt.Sprintf("%.0f", math.Abs(v))
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
		if len(s) > lead {
			b.WriteByte(' ')
		}
	}
	for i := lead; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
