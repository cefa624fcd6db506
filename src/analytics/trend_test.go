package analytics

import (
	"math"
	"testing"

	"github.com/username/clinicboard/backend/src/models"
)

func points(amounts ...float64) []models.DailyIncomePoint {
	pts := make([]models.DailyIncomePoint, len(amounts))
	for i, a := range amounts {
		pts[i] = models.DailyIncomePoint{Day: i + 1, Amount: a}
	}
	return pts
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeTrendEmpty(t *testing.T) {
	got := ComputeTrend(nil)
	if len(got) != 0 {
		t.Errorf("expected empty result, got %+v", got)
	}
}

func TestComputeTrendAllZero(t *testing.T) {
	got := ComputeTrend(points(0, 0, 0))
	for _, pt := range got {
		if pt.Trend != 0 {
			t.Errorf("day %d: trend = %v, want 0", pt.Day, pt.Trend)
		}
	}
}

func TestComputeTrendSinglePointFallsBackToAmount(t *testing.T) {
	got := ComputeTrend(points(150))
	if len(got) != 1 {
		t.Fatalf("expected 1 point, got %d", len(got))
	}
	if got[0].Trend != 150 {
		t.Errorf("trend = %v, want the observed amount 150", got[0].Trend)
	}
}

func TestComputeTrendPerfectLinearFit(t *testing.T) {
	// Amounts lie exactly on trend = 100*day.
	got := ComputeTrend(points(100, 200, 300, 400))
	for _, pt := range got {
		want := 100 * float64(pt.Day)
		if !approxEqual(pt.Trend, want) {
			t.Errorf("day %d: trend = %v, want %v", pt.Day, pt.Trend, want)
		}
	}
}

func TestComputeTrendProjectsOverTrailingZeroDays(t *testing.T) {
	// Only days 1-2 carry data; days 3-4 are the not-yet-happened rest of
	// the month and must get projected values, not drag the fit down.
	got := ComputeTrend(points(10, 20, 0, 0))
	if !approxEqual(got[2].Trend, 30) {
		t.Errorf("day 3 projection = %v, want 30", got[2].Trend)
	}
	if !approxEqual(got[3].Trend, 40) {
		t.Errorf("day 4 projection = %v, want 40", got[3].Trend)
	}
	if got[2].Amount != 0 || got[3].Amount != 0 {
		t.Error("projected days must keep their observed zero amounts")
	}
}

func TestComputeTrendClampsAtZero(t *testing.T) {
	// Steeply falling series: the fitted line goes negative on later days
	// and must be clamped.
	got := ComputeTrend(points(30, 10, 0, 0, 0))
	for _, pt := range got {
		if pt.Trend < 0 {
			t.Errorf("day %d: trend = %v, negative values must be clamped", pt.Day, pt.Trend)
		}
	}
	last := got[len(got)-1]
	if last.Trend != 0 {
		t.Errorf("day %d: trend = %v, want 0 after clamping", last.Day, last.Trend)
	}
}
