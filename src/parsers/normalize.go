package parsers

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/username/clinicboard/backend/src/models"
)

// Genitive month forms as they appear in date-like headers ("5 января").
var genitiveMonths = map[string]string{
	"января":   "январь",
	"февраля":  "февраль",
	"марта":    "март",
	"апреля":   "апрель",
	"мая":      "май",
	"июня":     "июнь",
	"июля":     "июль",
	"августа":  "август",
	"сентября": "сентябрь",
	"октября":  "октябрь",
	"ноября":   "ноябрь",
	"декабря":  "декабрь",
}

// Date layouts seen in header cells of exported sheets.
var headerDateLayouts = []string{
	"02.01.2006",
	"2.1.2006",
	"2006-01-02",
	"02/01/2006",
}

// CleanNumber converts one raw cell into a float64. "" , "-" and "0" are
// zero; the "р." currency suffix, whitespace of any kind (including the
// non-breaking and thin spaces sheets use as thousands separators) and any
// other non-numeric rune are stripped; a decimal comma becomes a decimal
// dot. Anything still unparsable is zero. The result is always finite.
//
// Every comma is treated as a decimal separator, so a cell carrying more
// than one ("1,234,56") is rejected as a whole and yields zero rather than
// a silently truncated prefix. Comma-grouped thousands do not occur in the
// feed; its grouping separator is a space.
func CleanNumber(val string) float64 {
	s := strings.TrimSpace(val)
	if s == "" || s == "-" || s == "0" {
		return 0
	}
	s = strings.ReplaceAll(s, "р.", "")
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		case r == ',':
			b.WriteByte('.')
		}
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// NormalizeMonthName maps a raw header cell to the canonical nominative
// month name. Genitive and nominative Russian forms are recognized, as are
// plain date strings, from which the month is taken. Anything else returns
// "", which callers treat as "skip this column".
func NormalizeMonthName(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	if nom, ok := genitiveMonths[s]; ok {
		return nom
	}
	if models.MonthIndexOf(s) != 0 {
		return s
	}
	for _, layout := range headerDateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
			return models.CanonicalMonths[int(t.Month())-1]
		}
	}
	return ""
}

// MonthIndex returns the 1-based calendar index for a raw header cell, or 0
// when it does not normalize to a month.
func MonthIndex(raw string) int {
	return models.MonthIndexOf(NormalizeMonthName(raw))
}
