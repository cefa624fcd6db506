package models

import "time"

// ExpenseItem stores one expense line as a derived (absolute, percentage)
// pair. Neither field is ground truth on its own: whichever was edited last
// is authoritative for that edit, and the other is recomputed from it
// relative to the service's current price.
type ExpenseItem struct {
	Rub     float64 `json:"rub"`
	Percent float64 `json:"percent"`
}

// CustomExpense is a user-defined expense line with the same pairing. The
// embedded pair flattens into the JSON object alongside id and name.
type CustomExpense struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	ExpenseItem
}

// ServiceExpenses is the expense breakdown of a priced service: three fixed
// categories plus an open-ended list of custom entries.
type ServiceExpenses struct {
	DoctorSalary ExpenseItem     `json:"doctorSalary"`
	Materials    ExpenseItem     `json:"materials"`
	Acquiring    ExpenseItem     `json:"acquiring"`
	Custom       []CustomExpense `json:"custom"`
}

// NewServiceExpenses returns an all-zero breakdown for a freshly created service.
func NewServiceExpenses() ServiceExpenses {
	return ServiceExpenses{Custom: []CustomExpense{}}
}

// MarginService is one priced service owned by a user.
type MarginService struct {
	ID           string          `json:"id"`
	UserID       int64           `json:"-"`
	Name         string          `json:"name"`
	CurrentPrice float64         `json:"currentPrice"`
	Expenses     ServiceExpenses `json:"expenses"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// MarginCalculation is the result of one margin computation. RecommendedPrice
// and the New* fields are zero when the corresponding optional input was not
// supplied.
type MarginCalculation struct {
	TotalExpenses        float64 `json:"totalExpenses"`
	CurrentProfit        float64 `json:"currentProfit"`
	CurrentMarginPercent float64 `json:"currentMarginPercent"`
	RecommendedPrice     float64 `json:"recommendedPrice"`
	NewProfit            float64 `json:"newProfit"`
	NewMarginPercent     float64 `json:"newMarginPercent"`
}

// GradientSegment is one proportionally sized slice of a price breakdown,
// used by the composition chart. Segments are not renormalized: their
// percents may not sum to 100 and that discrepancy passes through.
type GradientSegment struct {
	Label   string  `json:"label"`
	Percent float64 `json:"percent"`
	Color   string  `json:"color"`
}
