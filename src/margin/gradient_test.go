package margin

import (
	"testing"

	"github.com/username/clinicboard/backend/src/models"
)

func TestMarginColor(t *testing.T) {
	tests := []struct {
		percent float64
		want    string
	}{
		{55, colorMarginGood},
		{50, colorMarginGood},
		{49.9, colorMarginWarn},
		{45, colorMarginWarn},
		{44.9, colorMarginBad},
		{0, colorMarginBad},
		{-10, colorMarginBad},
	}
	for _, tt := range tests {
		if got := MarginColor(tt.percent); got != tt.want {
			t.Errorf("MarginColor(%v) = %q, want %q", tt.percent, got, tt.want)
		}
	}
}

func TestSegmentsZeroPrice(t *testing.T) {
	got := Segments(0, sampleExpenses(), 0)
	if len(got) != 0 {
		t.Errorf("zero price must yield no segments, got %+v", got)
	}
}

func TestSegments(t *testing.T) {
	expenses := sampleExpenses()
	expenses.Custom = []models.CustomExpense{
		{ID: "c1", Name: "Стерилизация", ExpenseItem: models.ExpenseItem{Rub: 50}},
	}

	got := Segments(1000, expenses, 40)
	if len(got) != 5 {
		t.Fatalf("expected 5 segments, got %d: %+v", len(got), got)
	}

	want := []models.GradientSegment{
		{Label: "ЗП врача", Percent: 20, Color: colorDoctorSalary},
		{Label: "Расходники", Percent: 15, Color: colorMaterials},
		{Label: "Эквайринг", Percent: 10, Color: colorAcquiring},
		{Label: "Стерилизация", Percent: 5, Color: colorCustom},
		{Label: "Маржа", Percent: 40, Color: colorMarginBad},
	}
	for i, seg := range got {
		if seg != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, seg, want[i])
		}
	}
}

func TestSegmentsNotRenormalized(t *testing.T) {
	// Expenses exceeding the price must pass through without scaling. The
	// margin percent is chosen independently of the expense percents so the
	// raw sum lands far from 100.
	expenses := models.ServiceExpenses{
		DoctorSalary: models.ExpenseItem{Rub: 900},
		Materials:    models.ExpenseItem{Rub: 600},
	}
	got := Segments(1000, expenses, 20)

	sum := 0.0
	for _, seg := range got {
		sum += seg.Percent
	}
	if sum != 170 {
		t.Errorf("segment percents sum = %v, want the raw 170", sum)
	}
	if got[0].Percent != 90 || got[1].Percent != 60 {
		t.Errorf("fixed segments = %+v, want raw 90 and 60", got[:2])
	}
}
