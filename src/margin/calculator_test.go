package margin

import (
	"math"
	"testing"

	"github.com/username/clinicboard/backend/src/models"
)

func sampleExpenses() models.ServiceExpenses {
	return models.ServiceExpenses{
		DoctorSalary: models.ExpenseItem{Rub: 200},
		Materials:    models.ExpenseItem{Rub: 150},
		Acquiring:    models.ExpenseItem{Rub: 100},
		Custom: []models.CustomExpense{
			{ID: "c1", Name: "Стерилизация", ExpenseItem: models.ExpenseItem{Rub: 0}},
		},
	}
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTotalExpenses(t *testing.T) {
	e := sampleExpenses()
	if got := TotalExpenses(e); got != 450 {
		t.Errorf("TotalExpenses = %v, want 450", got)
	}

	e.Custom = append(e.Custom, models.CustomExpense{ID: "c2", ExpenseItem: models.ExpenseItem{Rub: 50}})
	if got := TotalExpenses(e); got != 500 {
		t.Errorf("TotalExpenses with custom = %v, want 500", got)
	}
}

func TestPercentOf(t *testing.T) {
	tests := []struct {
		name        string
		part, total float64
		want        float64
	}{
		{"regular", 450, 1000, 45},
		{"zero total", 450, 0, 0},
		{"zero part", 0, 1000, 0},
		{"over hundred", 1500, 1000, 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PercentOf(tt.part, tt.total); !approxEqual(got, tt.want) {
				t.Errorf("PercentOf(%v, %v) = %v, want %v", tt.part, tt.total, got, tt.want)
			}
		})
	}
}

func TestRubFromPercentRoundTrip(t *testing.T) {
	prices := []float64{1000, 3500, 12345.67}
	parts := []float64{0, 150, 999.5}
	for _, price := range prices {
		for _, part := range parts {
			back := RubFromPercent(PercentOf(part, price), price)
			if !approxEqual(back, part) {
				t.Errorf("round trip for part=%v price=%v gave %v", part, price, back)
			}
		}
	}
}

func TestCalculate(t *testing.T) {
	calc := Calculate(1000, sampleExpenses(), 55, 0)

	if calc.TotalExpenses != 450 {
		t.Errorf("TotalExpenses = %v, want 450", calc.TotalExpenses)
	}
	if calc.CurrentProfit != 550 {
		t.Errorf("CurrentProfit = %v, want 550", calc.CurrentProfit)
	}
	if !approxEqual(calc.CurrentMarginPercent, 55) {
		t.Errorf("CurrentMarginPercent = %v, want 55", calc.CurrentMarginPercent)
	}
	// 450 / (1 - 0.55) = 1000
	if !approxEqual(calc.RecommendedPrice, 1000) {
		t.Errorf("RecommendedPrice = %v, want 1000", calc.RecommendedPrice)
	}
	if calc.NewProfit != 0 || calc.NewMarginPercent != 0 {
		t.Errorf("new-price fields must stay zero when no new price is supplied: %+v", calc)
	}
}

func TestCalculateWithNewPrice(t *testing.T) {
	calc := Calculate(1000, sampleExpenses(), 0, 900)

	if calc.RecommendedPrice != 0 {
		t.Errorf("RecommendedPrice = %v, want 0 when no target margin supplied", calc.RecommendedPrice)
	}
	if calc.NewProfit != 450 {
		t.Errorf("NewProfit = %v, want 450", calc.NewProfit)
	}
	if !approxEqual(calc.NewMarginPercent, 50) {
		t.Errorf("NewMarginPercent = %v, want 50", calc.NewMarginPercent)
	}
}

func TestCalculateUnreachableMargin(t *testing.T) {
	for _, desired := range []float64{100, 120, -5} {
		calc := Calculate(1000, sampleExpenses(), desired, 0)
		if calc.RecommendedPrice != 0 {
			t.Errorf("desired margin %v: RecommendedPrice = %v, want 0", desired, calc.RecommendedPrice)
		}
	}
}

func TestCalculateZeroPrice(t *testing.T) {
	calc := Calculate(0, sampleExpenses(), 0, 0)
	if calc.CurrentMarginPercent != 0 {
		t.Errorf("CurrentMarginPercent = %v, want 0 at zero price", calc.CurrentMarginPercent)
	}
	if calc.CurrentProfit != -450 {
		t.Errorf("CurrentProfit = %v, want -450", calc.CurrentProfit)
	}
}

func TestApplyRubEdit(t *testing.T) {
	var item models.ExpenseItem
	ApplyRubEdit(&item, 250, 1000)
	if item.Rub != 250 || !approxEqual(item.Percent, 25) {
		t.Errorf("after rub edit: %+v, want rub 250 percent 25", item)
	}

	// A later price change does not touch the pair until the next edit.
	ApplyPercentEdit(&item, 10, 2000)
	if !approxEqual(item.Rub, 200) || item.Percent != 10 {
		t.Errorf("after percent edit: %+v, want rub 200 percent 10", item)
	}
}

func TestApplyRubEditZeroPrice(t *testing.T) {
	var item models.ExpenseItem
	ApplyRubEdit(&item, 250, 0)
	if item.Rub != 250 || item.Percent != 0 {
		t.Errorf("rub edit at zero price: %+v, want rub 250 percent 0", item)
	}
}
