package parsers

import "testing"

func TestCleanNumber(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"empty", "", 0},
		{"dash placeholder", "-", 0},
		{"plain zero", "0", 0},
		{"integer", "500", 500},
		{"currency suffix", "1234р.", 1234},
		{"space grouped with currency", "55 000р.", 55000},
		{"nbsp thousands separator", "1 234,56", 1234.56},
		{"thin space thousands separator", "5 000", 5000},
		{"decimal comma", "120,5", 120.5},
		{"decimal dot", "12.5", 12.5},
		{"negative", "-500", -500},
		{"letters only", "abc", 0},
		{"mixed garbage", "1.2.3", 0},
		{"double decimal comma", "1,234,56", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanNumber(tt.in); got != tt.want {
				t.Errorf("CleanNumber(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeMonthName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"genitive", "января", "январь"},
		{"genitive mixed case", "Января", "январь"},
		{"nominative passthrough", "январь", "январь"},
		{"nominative uppercase", "ИЮЛЬ", "июль"},
		{"dotted date", "05.03.2024", "март"},
		{"iso date", "2024-12-01", "декабрь"},
		{"slash date", "15/08/2024", "август"},
		{"empty", "", ""},
		{"unrelated text", "за год", ""},
		{"number", "42", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeMonthName(tt.in); got != tt.want {
				t.Errorf("NormalizeMonthName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMonthIndex(t *testing.T) {
	if got := MonthIndex("февраля"); got != 2 {
		t.Errorf("MonthIndex(февраля) = %d, want 2", got)
	}
	if got := MonthIndex("не месяц"); got != 0 {
		t.Errorf("MonthIndex(не месяц) = %d, want 0", got)
	}
}
