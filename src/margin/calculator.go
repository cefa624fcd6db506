// Package margin holds the pure arithmetic behind the service margin
// calculator: converting between absolute and percentage expense
// representations and pricing a service against a target margin.
package margin

import "github.com/username/clinicboard/backend/src/models"

// TotalExpenses sums the absolute values of the three fixed expense
// categories and every custom expense line.
func TotalExpenses(e models.ServiceExpenses) float64 {
	total := e.DoctorSalary.Rub + e.Materials.Rub + e.Acquiring.Rub
	for _, item := range e.Custom {
		total += item.Rub
	}
	return total
}

// PercentOf returns part as a percentage of total, or 0 when total is 0.
func PercentOf(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total * 100
}

// RubFromPercent converts a percentage of total back to an absolute value.
func RubFromPercent(percent, total float64) float64 {
	return percent / 100 * total
}

// Calculate computes the margin picture for a service at its current price.
// desiredMarginPercent and newPrice are optional; zero means "not supplied"
// and leaves the corresponding result fields at zero.
//
// A desired margin of 100% or more (or a negative one) has no finite
// price, so RecommendedPrice stays 0 in that case rather than propagating
// an infinite or negative price.
func Calculate(currentPrice float64, expenses models.ServiceExpenses, desiredMarginPercent, newPrice float64) models.MarginCalculation {
	total := TotalExpenses(expenses)

	calc := models.MarginCalculation{
		TotalExpenses:        total,
		CurrentProfit:        currentPrice - total,
		CurrentMarginPercent: PercentOf(currentPrice-total, currentPrice),
	}

	if desiredMarginPercent > 0 && desiredMarginPercent < 100 {
		calc.RecommendedPrice = total / (1 - desiredMarginPercent/100)
	}

	if newPrice != 0 {
		calc.NewProfit = newPrice - total
		calc.NewMarginPercent = PercentOf(calc.NewProfit, newPrice)
	}

	return calc
}

// ApplyRubEdit records an absolute-value edit on one expense line: the
// edited rub amount is authoritative and the percentage is recomputed from
// it relative to the current price.
func ApplyRubEdit(item *models.ExpenseItem, rub, currentPrice float64) {
	item.Rub = rub
	item.Percent = PercentOf(rub, currentPrice)
}

// ApplyPercentEdit records a percentage edit on one expense line: the edited
// percentage is authoritative and the rub amount is recomputed from it.
func ApplyPercentEdit(item *models.ExpenseItem, percent, currentPrice float64) {
	item.Percent = percent
	item.Rub = RubFromPercent(percent, currentPrice)
}
