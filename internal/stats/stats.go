// Package stats is the aggregation engine behind the dashboard. Every
// function is a pure, total scan over in-memory collections: no storage
// access, no mutation of inputs, no error paths. Degenerate input (empty
// ledger, zero denominators, dangling category references) produces defined
// zero-value output instead of failures. Input validation belongs to the
// write boundary, not here.
package stats

import (
	"math"
	"sort"
	"time"

	"dompetku/internal/core"
)

// monthAbbrev is the fixed Indonesian month label table used by the trend
// series, indexed by zero-based month ordinal.
var monthAbbrev = [12]string{
	"Jan", "Feb", "Mar", "Apr", "Mei", "Jun",
	"Jul", "Agu", "Sep", "Okt", "Nov", "Des",
}

// Stats is the dashboard summary for the calendar month containing the
// reference instant, compared against the month before it.
type Stats struct {
	TotalBalance     core.Money `json:"totalBalance"`
	MonthlyIncome    core.Money `json:"monthlyIncome"`
	MonthlyExpense   core.Money `json:"monthlyExpense"`
	LastMonthExpense core.Money `json:"lastMonthExpense"`
	ExpenseChange    int        `json:"expenseChange"`
	BudgetRemaining  core.Money `json:"budgetRemaining"`
}

// CategorySlice is one wedge of the current-month expense pie.
type CategorySlice struct {
	Name  string     `json:"name"`
	Value core.Money `json:"value"`
	Color string     `json:"color"`
}

func sameMonth(d core.Date, year int, month time.Month) bool {
	return d.Year() == year && d.Month() == month
}

// prevMonth steps one calendar month back, wrapping December across the year
// boundary.
func prevMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

// MonthlyStats computes the summary figures for the month containing ref.
//
// TotalBalance is the running ledger balance over every transaction ever
// recorded (income adds, expense subtracts, implicit zero start).
// BudgetRemaining is the simplified income-minus-expense figure for the
// current month; it deliberately ignores configured Budget records, whose
// spent fields live an independent life.
func MonthlyStats(txs []core.Transaction, ref time.Time) Stats {
	year, month := ref.Year(), ref.Month()
	lastYear, lastMonth := prevMonth(year, month)

	var s Stats
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			s.TotalBalance += tx.Amount
			if sameMonth(tx.Date, year, month) {
				s.MonthlyIncome += tx.Amount
			}
		case core.Expense:
			s.TotalBalance -= tx.Amount
			if sameMonth(tx.Date, year, month) {
				s.MonthlyExpense += tx.Amount
			} else if sameMonth(tx.Date, lastYear, lastMonth) {
				s.LastMonthExpense += tx.Amount
			}
		}
	}

	s.ExpenseChange = changePercent(s.MonthlyExpense, s.LastMonthExpense)
	s.BudgetRemaining = s.MonthlyIncome - s.MonthlyExpense
	return s
}

// changePercent is the month-over-month delta rounded to the nearest integer
// percent. A zero previous month is reported as 0, not infinity.
func changePercent(current, previous core.Money) int {
	if previous <= 0 {
		return 0
	}
	return int(math.Round(float64(current-previous) / float64(previous) * 100))
}

// CategoryBreakdown groups the current month's expense transactions by
// category and returns the slices sorted by value, largest first (ties keep
// first-appearance order). A transaction whose category_id is missing from
// the lookup is left out of every bucket; it still counts toward
// MonthlyExpense, so the sum of slices may undershoot it.
func CategoryBreakdown(txs []core.Transaction, categories map[string]core.Category, ref time.Time) []CategorySlice {
	year, month := ref.Year(), ref.Month()

	slices := []CategorySlice{}
	index := make(map[string]int)
	for _, tx := range txs {
		if tx.Type != core.Expense || !sameMonth(tx.Date, year, month) {
			continue
		}
		cat, ok := categories[tx.CategoryID]
		if !ok {
			continue
		}
		i, seen := index[cat.ID]
		if !seen {
			i = len(slices)
			index[cat.ID] = i
			slices = append(slices, CategorySlice{Name: cat.Name, Color: cat.Color})
		}
		slices[i].Value += tx.Amount
	}

	sort.SliceStable(slices, func(i, j int) bool {
		return slices[i].Value > slices[j].Value
	})
	return slices
}

// Percentage is the rounded value/total percent used for budget and goal
// progress figures. A zero total yields 0.
func Percentage(value, total core.Money) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(value) / float64(total) * 100))
}
