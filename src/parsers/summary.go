package parsers

import (
	"strconv"
	"strings"

	"github.com/username/clinicboard/backend/src/models"
)

// SummaryParser decodes the fixed-offset summary feed into a DashboardData.
// Parse is pure: no state survives a call, malformed cells become zeroes or
// skips, and a short or empty feed yields the all-empty default instead of
// an error.
type SummaryParser struct {
	layout Layout
}

func NewSummaryParser(layout Layout) *SummaryParser {
	return &SummaryParser{layout: layout}
}

// ParseSummaryCSV parses raw feed text with the single-year layout. This is
// the convenience entry point for callers that do not configure a layout.
func ParseSummaryCSV(raw string) models.DashboardData {
	return NewSummaryParser(SingleYearLayout).Parse(raw)
}

// monthColumn ties a physical column index to the month it holds. Columns
// whose header cell failed to normalize are absent, so stray header text
// never produces a key and every value stays aligned to its own header.
type monthColumn struct {
	col int
	key models.MonthKey
}

func (p *SummaryParser) Parse(raw string) models.DashboardData {
	data := models.NewDashboardData()

	lines := splitLines(raw)
	if len(lines) < p.layout.MinLines {
		return data
	}

	months := p.monthColumns(SplitCells(lines[p.layout.MonthHeaderRow]))

	p.parseMonthlyTotals(lines, months, &data)
	p.parseCategories(lines, months, p.layout.Income, data.DetailedIncome)
	p.parseCategories(lines, months, p.layout.Expenses, data.DetailedExpenses)
	p.parseAverages(lines, months, &data)
	p.parseBalances(lines, &data)
	p.parseReviews(lines, &data)
	p.parseDaily(lines, &data)

	return data
}

// splitLines trims every line and drops blank ones, so all layout offsets
// address non-empty lines.
func splitLines(raw string) []string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func (p *SummaryParser) monthColumns(header []string) []monthColumn {
	var months []monthColumn
	for _, span := range p.layout.Spans {
		for i := 0; i < 12; i++ {
			col := span.FirstCol + i
			name := NormalizeMonthName(cellAt(header, col))
			if name == "" {
				continue
			}
			months = append(months, monthColumn{
				col: col,
				key: models.NewMonthKey(span.Year, models.MonthIndexOf(name)),
			})
		}
	}
	return months
}

// rowCells tokenizes line idx, or returns nil when the file is too short.
func rowCells(lines []string, idx int) []string {
	if idx < 0 || idx >= len(lines) {
		return nil
	}
	return SplitCells(lines[idx])
}

func (p *SummaryParser) parseMonthlyTotals(lines []string, months []monthColumn, data *models.DashboardData) {
	if p.layout.Totals.DeltaRow >= len(lines) {
		return
	}
	incomeRow := rowCells(lines, p.layout.Totals.IncomeRow)
	expenseRow := rowCells(lines, p.layout.Totals.ExpenseRow)
	deltaRow := rowCells(lines, p.layout.Totals.DeltaRow)

	for _, m := range months {
		data.Monthly = append(data.Monthly, models.SummaryRecord{
			Month:   m.key.Name(),
			Year:    m.key.Year,
			Income:  CleanNumber(cellAt(incomeRow, m.col)),
			Expense: CleanNumber(cellAt(expenseRow, m.col)),
			// Delta is its own source row, not income-expense: the sheet
			// sometimes carries adjustments there.
			Delta: CleanNumber(cellAt(deltaRow, m.col)),
		})
	}
}

func (p *SummaryParser) parseCategories(lines []string, months []monthColumn, block CategoryBlock, out map[models.MonthKey][]models.ExpenseCategory) {
	for idx := block.FirstRow; idx <= block.LastRow && idx < len(lines); idx++ {
		row := rowCells(lines, idx)
		name := cellAt(row, 0)
		if name == "" || name == "-" || strings.Contains(strings.ToLower(name), block.Sentinel) {
			continue
		}
		for _, m := range months {
			amount := CleanNumber(cellAt(row, m.col))
			if amount == 0 {
				// Zero means "no entry for this month", not a zero-amount category.
				continue
			}
			out[m.key] = append(out[m.key], models.ExpenseCategory{Name: name, Amount: amount})
		}
	}
}

func (p *SummaryParser) parseAverages(lines []string, months []monthColumn, data *models.DashboardData) {
	if p.layout.Averages.ProfitRow >= len(lines) {
		return
	}
	revenueRow := rowCells(lines, p.layout.Averages.RevenueRow)
	expenseRow := rowCells(lines, p.layout.Averages.ExpenseRow)
	profitRow := rowCells(lines, p.layout.Averages.ProfitRow)

	for _, m := range months {
		data.DailyAverages[m.key] = models.AverageStats{
			Revenue: CleanNumber(cellAt(revenueRow, m.col)),
			Expense: CleanNumber(cellAt(expenseRow, m.col)),
			Profit:  CleanNumber(cellAt(profitRow, m.col)),
		}
	}

	data.YearlyAverages = models.AverageStats{
		Revenue: CleanNumber(cellAt(revenueRow, p.layout.YearlyCol)),
		Expense: CleanNumber(cellAt(expenseRow, p.layout.YearlyCol)),
		Profit:  CleanNumber(cellAt(profitRow, p.layout.YearlyCol)),
	}
}

func (p *SummaryParser) parseBalances(lines []string, data *models.DashboardData) {
	if p.layout.Balances.BankRow >= len(lines) {
		return
	}
	col := p.layout.Balances.ValueCol
	data.Balances = models.Balances{
		// TotalFunds is taken verbatim even when it disagrees with
		// cash+bankAccount; deriving it would hide source discrepancies.
		TotalFunds:  CleanNumber(cellAt(rowCells(lines, p.layout.Balances.TotalRow), col)),
		Cash:        CleanNumber(cellAt(rowCells(lines, p.layout.Balances.CashRow), col)),
		BankAccount: CleanNumber(cellAt(rowCells(lines, p.layout.Balances.BankRow), col)),
	}
}

func (p *SummaryParser) parseReviews(lines []string, data *models.DashboardData) {
	block := p.layout.Reviews
	for idx := block.FirstRow; idx <= block.LastRow && idx < len(lines); idx++ {
		row := rowCells(lines, idx)
		name := cellAt(row, 0)
		if name == "" || name == "-" {
			continue
		}
		data.Reviews = append(data.Reviews, models.ReviewRecord{
			Platform: name,
			Rating:   CleanNumber(cellAt(row, block.RatingCol)),
			Count:    CleanNumber(cellAt(row, block.CountCol)),
		})
	}
}

func (p *SummaryParser) parseDaily(lines []string, data *models.DashboardData) {
	if p.layout.Daily.HeaderRow >= len(lines) {
		return
	}
	// The daily table has its own header row; its months may be a subset of
	// the top header (e.g. only months with activity).
	months := p.monthColumns(rowCells(lines, p.layout.Daily.HeaderRow))
	if len(months) == 0 {
		return
	}

	for day := 1; day <= p.layout.Daily.Days; day++ {
		idx := p.layout.Daily.HeaderRow + day
		if idx >= len(lines) {
			break
		}
		row := rowCells(lines, idx)
		dayNum, err := strconv.Atoi(cellAt(row, 0))
		if err != nil {
			// Caption or blank row inside the 31-row window.
			continue
		}
		for _, m := range months {
			data.DailyIncome[m.key] = append(data.DailyIncome[m.key], models.DailyIncomePoint{
				Day:    dayNum,
				Amount: CleanNumber(cellAt(row, m.col)),
			})
		}
	}
}
