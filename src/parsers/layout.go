package parsers

// The summary feed has no named headers: semantically unrelated tables are
// stacked at fixed line and column offsets. A Layout spells those offsets
// out as data, so supporting a rearranged export (or a third year) is a
// layout change, not a parser change.

// MonthSpan maps twelve consecutive columns to one calendar year. Year 0
// means the feed carries no year information for the span.
type MonthSpan struct {
	FirstCol int
	Year     int
}

// TotalsBlock holds the row offsets of the monthly income/expense/delta rows.
type TotalsBlock struct {
	IncomeRow  int
	ExpenseRow int
	DeltaRow   int
}

// CategoryBlock is a run of label+amounts rows. Rows whose label cell
// contains Sentinel are captions interleaved with the data and are skipped.
type CategoryBlock struct {
	FirstRow int
	LastRow  int
	Sentinel string
}

// AveragesBlock holds the row offsets of the per-day average rows.
type AveragesBlock struct {
	RevenueRow int
	ExpenseRow int
	ProfitRow  int
}

// BalancesBlock holds the row offsets of the funds snapshot. Values sit in
// ValueCol of each row.
type BalancesBlock struct {
	TotalRow int
	CashRow  int
	BankRow  int
	ValueCol int
}

// ReviewsBlock is a run of review-platform rows: label, rating and review
// count at fixed columns. Rows with an empty or dash label are skipped.
type ReviewsBlock struct {
	FirstRow  int
	LastRow   int
	RatingCol int
	CountCol  int
}

// DailyBlock is the day-by-day revenue table: a month header row followed by
// up to Days data rows whose first cell is the day number.
type DailyBlock struct {
	HeaderRow int
	Days      int
}

// Layout is the complete positional schema of one feed variant.
type Layout struct {
	Name           string
	MinLines       int
	MonthHeaderRow int
	Spans          []MonthSpan
	YearlyCol      int
	Totals         TotalsBlock
	Income         CategoryBlock
	Expenses       CategoryBlock
	Averages       AveragesBlock
	Balances       BalancesBlock
	Reviews        ReviewsBlock
	Daily          DailyBlock
}

// SingleYearLayout describes the twelve-month export: month columns B..M
// (indexes 1-12) and the yearly aggregate in column N (index 13).
var SingleYearLayout = Layout{
	Name:           "single-year",
	MinLines:       10,
	MonthHeaderRow: 0,
	Spans:          []MonthSpan{{FirstCol: 1}},
	YearlyCol:      13,
	Totals:         TotalsBlock{IncomeRow: 1, ExpenseRow: 2, DeltaRow: 3},
	Income:         CategoryBlock{FirstRow: 6, LastRow: 14, Sentinel: "доходы по категориям"},
	Expenses:       CategoryBlock{FirstRow: 17, LastRow: 42, Sentinel: "расходы по категориям"},
	Averages:       AveragesBlock{RevenueRow: 45, ExpenseRow: 46, ProfitRow: 47},
	Balances:       BalancesBlock{TotalRow: 50, CashRow: 51, BankRow: 52, ValueCol: 1},
	Reviews:        ReviewsBlock{FirstRow: 54, LastRow: 57, RatingCol: 1, CountCol: 2},
	Daily:          DailyBlock{HeaderRow: 59, Days: 31},
}

// DualYearLayout describes the 24-month export covering two consecutive
// years: columns B..Y (indexes 1-24) split into two spans, with the yearly
// aggregate shifted to column Z (index 25). Row offsets match the
// single-year variant.
func DualYearLayout(baseYear int) Layout {
	l := SingleYearLayout
	l.Name = "dual-year"
	l.Spans = []MonthSpan{
		{FirstCol: 1, Year: baseYear},
		{FirstCol: 13, Year: baseYear + 1},
	}
	l.YearlyCol = 25
	return l
}
