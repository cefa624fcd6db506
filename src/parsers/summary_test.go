package parsers

import (
	"reflect"
	"strings"
	"testing"

	"github.com/username/clinicboard/backend/src/models"
)

// buildSingleYearFeed assembles a feed exercising every block of the
// single-year layout. Rows not used by the layout carry a dash placeholder.
func buildSingleYearFeed() string {
	rows := make([]string, 91)
	for i := range rows {
		rows[i] = "-"
	}

	rows[0] = "," + strings.Join(models.CanonicalMonths[:], ",") + ",за год"
	rows[1] = "Доходы,100000,120000"
	rows[2] = "Расходы,60000,70000"
	// Delta deliberately disagrees with income-expense: it must be read
	// literally from its own row.
	rows[3] = "Дельта,41000,49000"

	rows[6] = `Приём врача,"55 000р.",60000`
	rows[7] = "Продажи,0,15000"
	rows[9] = "Доходы по категориям,999,999"

	rows[17] = `Аренда,"20 000",20000`
	rows[18] = `ЗП врача,"30 500,50",35000`
	rows[19] = "Расходы по категориям,777,777"

	rows[45] = "Выручка в день,3200,4100" + strings.Repeat(",", 10) + ",3650"
	rows[46] = "Расходы в день,1900,2000" + strings.Repeat(",", 10) + ",1950"
	rows[47] = "Прибыль в день,1300,2100" + strings.Repeat(",", 10) + ",1700"

	rows[50] = `Всего средств,"150 000,25"`
	rows[51] = "Наличные,50000"
	rows[52] = `Расчётный счёт,"100 000"`

	rows[54] = `Яндекс Карты,"4,9",512`
	rows[55] = `2ГИС,"4,8",208`

	rows[59] = ",январь,февраль"
	rows[60] = "1,5000,4000"
	rows[61] = "2,6000,0"
	rows[62] = "итого,999,999"
	rows[63] = "3,7000,4500"

	return strings.Join(rows, "\n")
}

func TestParseSummaryCSVSingleYear(t *testing.T) {
	data := ParseSummaryCSV(buildSingleYearFeed())

	january := models.NewMonthKey(0, 1)
	february := models.NewMonthKey(0, 2)

	if len(data.Monthly) != 12 {
		t.Fatalf("expected 12 monthly records, got %d", len(data.Monthly))
	}
	wantJan := models.SummaryRecord{Month: "январь", Income: 100000, Expense: 60000, Delta: 41000}
	if data.Monthly[0] != wantJan {
		t.Errorf("january totals = %+v, want %+v", data.Monthly[0], wantJan)
	}
	// March has no data cells; its record exists with zeroes.
	wantMar := models.SummaryRecord{Month: "март"}
	if data.Monthly[2] != wantMar {
		t.Errorf("march totals = %+v, want %+v", data.Monthly[2], wantMar)
	}

	wantIncomeJan := []models.ExpenseCategory{{Name: "Приём врача", Amount: 55000}}
	if !reflect.DeepEqual(data.DetailedIncome[january], wantIncomeJan) {
		t.Errorf("january income categories = %+v, want %+v", data.DetailedIncome[january], wantIncomeJan)
	}
	wantIncomeFeb := []models.ExpenseCategory{
		{Name: "Приём врача", Amount: 60000},
		{Name: "Продажи", Amount: 15000},
	}
	if !reflect.DeepEqual(data.DetailedIncome[february], wantIncomeFeb) {
		t.Errorf("february income categories = %+v, want %+v", data.DetailedIncome[february], wantIncomeFeb)
	}

	wantExpensesJan := []models.ExpenseCategory{
		{Name: "Аренда", Amount: 20000},
		{Name: "ЗП врача", Amount: 30500.50},
	}
	if !reflect.DeepEqual(data.DetailedExpenses[january], wantExpensesJan) {
		t.Errorf("january expense categories = %+v, want %+v", data.DetailedExpenses[january], wantExpensesJan)
	}

	for key, categories := range data.DetailedIncome {
		for _, c := range categories {
			if strings.Contains(strings.ToLower(c.Name), "категориям") {
				t.Errorf("caption row leaked into categories for %v: %+v", key, c)
			}
			if c.Amount == 0 {
				t.Errorf("zero-amount category stored for %v: %+v", key, c)
			}
		}
	}

	wantAvgJan := models.AverageStats{Revenue: 3200, Expense: 1900, Profit: 1300}
	if data.DailyAverages[january] != wantAvgJan {
		t.Errorf("january averages = %+v, want %+v", data.DailyAverages[january], wantAvgJan)
	}
	wantYearly := models.AverageStats{Revenue: 3650, Expense: 1950, Profit: 1700}
	if data.YearlyAverages != wantYearly {
		t.Errorf("yearly averages = %+v, want %+v", data.YearlyAverages, wantYearly)
	}

	wantBalances := models.Balances{TotalFunds: 150000.25, Cash: 50000, BankAccount: 100000}
	if data.Balances != wantBalances {
		t.Errorf("balances = %+v, want %+v", data.Balances, wantBalances)
	}

	wantReviews := []models.ReviewRecord{
		{Platform: "Яндекс Карты", Rating: 4.9, Count: 512},
		{Platform: "2ГИС", Rating: 4.8, Count: 208},
	}
	if !reflect.DeepEqual(data.Reviews, wantReviews) {
		t.Errorf("reviews = %+v, want %+v", data.Reviews, wantReviews)
	}

	wantDailyJan := []models.DailyIncomePoint{{Day: 1, Amount: 5000}, {Day: 2, Amount: 6000}, {Day: 3, Amount: 7000}}
	if !reflect.DeepEqual(data.DailyIncome[january], wantDailyJan) {
		t.Errorf("january daily income = %+v, want %+v", data.DailyIncome[january], wantDailyJan)
	}
	wantDailyFeb := []models.DailyIncomePoint{{Day: 1, Amount: 4000}, {Day: 2, Amount: 0}, {Day: 3, Amount: 4500}}
	if !reflect.DeepEqual(data.DailyIncome[february], wantDailyFeb) {
		t.Errorf("february daily income = %+v, want %+v", data.DailyIncome[february], wantDailyFeb)
	}
}

func TestParseSummaryCSVShortInput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace only", "\n\n  \n"},
		{"below minimum lines", "a\nb\nc\nd\ne"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := ParseSummaryCSV(tt.raw)
			want := models.NewDashboardData()
			if !reflect.DeepEqual(data, want) {
				t.Errorf("short input produced non-default data: %+v", data)
			}
		})
	}
}

func TestParseSummaryCSVMisalignedHeader(t *testing.T) {
	rows := make([]string, 10)
	for i := range rows {
		rows[i] = "-"
	}
	// February's header cell is empty: its column must be skipped while
	// March stays aligned to its own column.
	rows[0] = ",январь,,март"
	rows[1] = "Доходы,10,20,30"
	rows[2] = "Расходы,1,2,3"
	rows[3] = "Дельта,9,18,27"

	data := ParseSummaryCSV(strings.Join(rows, "\n"))

	if len(data.Monthly) != 2 {
		t.Fatalf("expected 2 monthly records, got %d: %+v", len(data.Monthly), data.Monthly)
	}
	if data.Monthly[0].Month != "январь" || data.Monthly[0].Income != 10 {
		t.Errorf("first record = %+v, want январь/10", data.Monthly[0])
	}
	if data.Monthly[1].Month != "март" || data.Monthly[1].Income != 30 {
		t.Errorf("second record = %+v, want март/30", data.Monthly[1])
	}
}

func TestParseSummaryCSVDualYear(t *testing.T) {
	rows := make([]string, 10)
	for i := range rows {
		rows[i] = "-"
	}
	rows[0] = ",январь" + strings.Repeat(",", 11) + ",январь"
	rows[1] = ",1000" + strings.Repeat(",", 11) + ",2000"
	rows[2] = ",400" + strings.Repeat(",", 11) + ",800"
	rows[3] = ",600" + strings.Repeat(",", 11) + ",1200"

	parser := NewSummaryParser(DualYearLayout(2024))
	data := parser.Parse(strings.Join(rows, "\n"))

	want := []models.SummaryRecord{
		{Month: "январь", Year: 2024, Income: 1000, Expense: 400, Delta: 600},
		{Month: "январь", Year: 2025, Income: 2000, Expense: 800, Delta: 1200},
	}
	if !reflect.DeepEqual(data.Monthly, want) {
		t.Errorf("dual-year monthly = %+v, want %+v", data.Monthly, want)
	}
}

func TestParseIsRepeatable(t *testing.T) {
	raw := buildSingleYearFeed()
	first := ParseSummaryCSV(raw)
	second := ParseSummaryCSV(raw)
	if !reflect.DeepEqual(first, second) {
		t.Error("parsing the same input twice produced different results")
	}
}
