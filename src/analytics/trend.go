package analytics

import (
	"math"

	"github.com/username/clinicboard/backend/src/models"
)

// TrendPoint is one daily revenue point with its fitted trend value attached.
type TrendPoint struct {
	Day    int     `json:"day"`
	Amount float64 `json:"amount"`
	Trend  float64 `json:"trend"`
}

// ComputeTrend fits an ordinary-least-squares line to one month's daily
// revenue and returns the series with a trend value per point.
//
// The fit only uses the prefix up to the last day with nonzero revenue, so
// trailing empty days (the rest of the current month) do not drag the line
// down; those days still get a projected value from the fitted line. An
// all-zero series gets trend 0 everywhere. When the fit denominator is zero
// (a single point), the trend falls back to the observed amount with no
// extrapolation. Trend values never go below zero.
func ComputeTrend(series []models.DailyIncomePoint) []TrendPoint {
	if len(series) == 0 {
		return []TrendPoint{}
	}

	lastWithData := -1
	for i := len(series) - 1; i >= 0; i-- {
		if series[i].Amount > 0 {
			lastWithData = i
			break
		}
	}

	out := make([]TrendPoint, len(series))
	if lastWithData == -1 {
		for i, pt := range series {
			out[i] = TrendPoint{Day: pt.Day, Amount: pt.Amount}
		}
		return out
	}

	fit := series[:lastWithData+1]
	n := float64(len(fit))
	var sumX, sumY, sumXY, sumX2 float64
	for _, pt := range fit {
		x := float64(pt.Day)
		sumX += x
		sumY += pt.Amount
		sumXY += x * pt.Amount
		sumX2 += x * x
	}

	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		for i, pt := range series {
			out[i] = TrendPoint{Day: pt.Day, Amount: pt.Amount, Trend: math.Max(0, pt.Amount)}
		}
		return out
	}

	m := (n*sumXY - sumX*sumY) / denom
	b := (sumY - m*sumX) / n
	for i, pt := range series {
		out[i] = TrendPoint{
			Day:    pt.Day,
			Amount: pt.Amount,
			Trend:  math.Max(0, m*float64(pt.Day)+b),
		}
	}
	return out
}
