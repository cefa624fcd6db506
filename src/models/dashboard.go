package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Canonical nominative month names, lowercase, in calendar order. These are
// the only values a MonthKey may carry.
var CanonicalMonths = [12]string{
	"январь", "февраль", "март", "апрель", "май", "июнь",
	"июль", "август", "сентябрь", "октябрь", "ноябрь", "декабрь",
}

var monthIndexByName = func() map[string]int {
	m := make(map[string]int, 12)
	for i, name := range CanonicalMonths {
		m[name] = i + 1
	}
	return m
}()

// MonthIndexOf returns the 1-based calendar index of a canonical month name,
// or 0 when the name is not one of the twelve canonical values.
func MonthIndexOf(name string) int {
	return monthIndexByName[name]
}

// MonthKey identifies one calendar month of the source data. Year is 0 for
// the single-year feed layout, which carries no year information; the
// dual-year layout assigns the year of the column span the value came from.
type MonthKey struct {
	Year  int
	Month int // 1..12
}

func NewMonthKey(year, month int) MonthKey {
	return MonthKey{Year: year, Month: month}
}

// Name returns the canonical month name, or "" for an invalid key.
func (k MonthKey) Name() string {
	if k.Month < 1 || k.Month > 12 {
		return ""
	}
	return CanonicalMonths[k.Month-1]
}

func (k MonthKey) String() string {
	if k.Year == 0 {
		return k.Name()
	}
	return fmt.Sprintf("%d-%s", k.Year, k.Name())
}

// MarshalText serializes the key as "январь" or "2025-январь", which also
// makes MonthKey usable as a JSON map key.
func (k MonthKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *MonthKey) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	year := 0
	if idx := strings.IndexByte(s, '-'); idx > 0 {
		y, err := strconv.Atoi(s[:idx])
		if err != nil {
			return fmt.Errorf("invalid month key %q: %w", s, err)
		}
		year = y
		s = s[idx+1:]
	}
	month, ok := monthIndexByName[strings.ToLower(s)]
	if !ok {
		return fmt.Errorf("invalid month key: unknown month %q", s)
	}
	k.Year = year
	k.Month = month
	return nil
}

// SummaryRecord is one month's totals as authored in the source. Delta is
// read literally from its own row: the spreadsheet sometimes carries
// adjustments there, so it is not required to equal Income-Expense and must
// never be re-derived.
type SummaryRecord struct {
	Month   string  `json:"month"`
	Year    int     `json:"year,omitempty"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Delta   float64 `json:"delta"`
}

// ExpenseCategory is a single named category amount for one month. Amounts
// are always > 0: zero-amount cells mean "no entry" and are never stored.
type ExpenseCategory struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// DailyIncomePoint is revenue for one day of a month, in source row order.
type DailyIncomePoint struct {
	Day    int     `json:"day"`
	Amount float64 `json:"amount"`
}

// AverageStats carries per-day averages for a month, or the yearly aggregate.
type AverageStats struct {
	Revenue float64 `json:"revenue"`
	Expense float64 `json:"expense"`
	Profit  float64 `json:"profit"`
}

// ReviewRecord is one review-platform summary line: the platform name, its
// current average rating and the review count, all read verbatim.
type ReviewRecord struct {
	Platform string  `json:"platform"`
	Rating   float64 `json:"rating"`
	Count    float64 `json:"count"`
}

// Balances is a point-in-time snapshot of funds. TotalFunds is read verbatim
// from its source row and is not required to equal Cash+BankAccount.
type Balances struct {
	TotalFunds  float64 `json:"totalFunds"`
	Cash        float64 `json:"cash"`
	BankAccount float64 `json:"bankAccount"`
}

// DashboardData is the aggregate produced by one parse of the summary feed.
// It is rebuilt from scratch on every parse; a failed or short parse yields
// the value from NewDashboardData unchanged.
type DashboardData struct {
	Monthly          []SummaryRecord                `json:"monthly"`
	Balances         Balances                       `json:"balances"`
	Reviews          []ReviewRecord                 `json:"reviews"`
	DetailedExpenses map[MonthKey][]ExpenseCategory `json:"detailedExpenses"`
	DetailedIncome   map[MonthKey][]ExpenseCategory `json:"detailedIncome"`
	DailyIncome      map[MonthKey][]DailyIncomePoint `json:"dailyIncome"`
	DailyAverages    map[MonthKey]AverageStats      `json:"dailyAverages"`
	YearlyAverages   AverageStats                   `json:"yearlyAverages"`
}

// NewDashboardData returns the all-empty default model.
func NewDashboardData() DashboardData {
	return DashboardData{
		Monthly:          []SummaryRecord{},
		Reviews:          []ReviewRecord{},
		DetailedExpenses: map[MonthKey][]ExpenseCategory{},
		DetailedIncome:   map[MonthKey][]ExpenseCategory{},
		DailyIncome:      map[MonthKey][]DailyIncomePoint{},
		DailyAverages:    map[MonthKey]AverageStats{},
	}
}
