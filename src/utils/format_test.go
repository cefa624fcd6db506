package utils

import "testing"

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0 ₽"},
		{999, "999 ₽"},
		{1000, "1 000 ₽"},
		{12345, "12 345 ₽"},
		{1234567, "1 234 567 ₽"},
		{12345.6, "12 346 ₽"},
		{-5000, "-5 000 ₽"},
	}
	for _, tt := range tests {
		if got := FormatCurrency(tt.in); got != tt.want {
			t.Errorf("FormatCurrency(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0,00"},
		{55, "55,00"},
		{45.5, "45,50"},
		{33.333, "33,33"},
	}
	for _, tt := range tests {
		if got := FormatPercent(tt.in); got != tt.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRoundFloat(t *testing.T) {
	if got := RoundFloat(3.14159, 2); got != 3.14 {
		t.Errorf("RoundFloat(3.14159, 2) = %v, want 3.14", got)
	}
	if got := RoundFloat(2.675, 0); got != 3 {
		t.Errorf("RoundFloat(2.675, 0) = %v, want 3", got)
	}
}

func TestGenerateETagIsStable(t *testing.T) {
	payload := map[string]int{"a": 1}
	first, err := GenerateETag(payload)
	if err != nil {
		t.Fatalf("GenerateETag: %v", err)
	}
	second, _ := GenerateETag(payload)
	if first != second {
		t.Error("same payload produced different ETags")
	}
	other, _ := GenerateETag(map[string]int{"a": 2})
	if first == other {
		t.Error("different payloads produced the same ETag")
	}
}
