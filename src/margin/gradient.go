package margin

import "github.com/username/clinicboard/backend/src/models"

// Fixed segment colors for the price composition chart.
const (
	colorDoctorSalary = "#60a5fa"
	colorMaterials    = "#fbbf24"
	colorAcquiring    = "#fb923c"
	colorCustom       = "#a78bfa"

	colorMarginGood = "#10b981"
	colorMarginWarn = "#fbbf24"
	colorMarginBad  = "#ef4444"
)

// MarginColor picks the margin segment color by a three-tier threshold.
func MarginColor(marginPercent float64) string {
	switch {
	case marginPercent >= 50:
		return colorMarginGood
	case marginPercent >= 45:
		return colorMarginWarn
	default:
		return colorMarginBad
	}
}

// Segments turns an expense breakdown plus the margin percentage into the
// ordered slice list for the composition chart: the three fixed categories,
// then custom expenses, then the margin itself. A zero price yields an empty
// list. Percents are reported as-is, never renormalized to sum to 100.
func Segments(currentPrice float64, expenses models.ServiceExpenses, marginPercent float64) []models.GradientSegment {
	if currentPrice == 0 {
		return []models.GradientSegment{}
	}

	segments := []models.GradientSegment{
		{Label: "ЗП врача", Percent: PercentOf(expenses.DoctorSalary.Rub, currentPrice), Color: colorDoctorSalary},
		{Label: "Расходники", Percent: PercentOf(expenses.Materials.Rub, currentPrice), Color: colorMaterials},
		{Label: "Эквайринг", Percent: PercentOf(expenses.Acquiring.Rub, currentPrice), Color: colorAcquiring},
	}

	for _, item := range expenses.Custom {
		segments = append(segments, models.GradientSegment{
			Label:   item.Name,
			Percent: PercentOf(item.Rub, currentPrice),
			Color:   colorCustom,
		})
	}

	segments = append(segments, models.GradientSegment{
		Label:   "Маржа",
		Percent: marginPercent,
		Color:   MarginColor(marginPercent),
	})

	return segments
}
