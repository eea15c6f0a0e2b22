package stats

import (
	"strconv"
	"time"

	"dompetku/internal/core"
)

// TrendPoint is one weekly bucket of the current-month trend line.
type TrendPoint struct {
	Date    string     `json:"date"`
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
}

// MonthPoint is one calendar-month bucket of the six-month comparison chart.
type MonthPoint struct {
	Month   string     `json:"month"`
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
}

// WeeklyTrend buckets the reference month's transactions into exactly four
// ranges with day-of-month thresholds 1, 7, 14, 21 and daysInMonth. Ranges
// are half-open (day >= start && day < end), so the last calendar day of the
// month lands outside every bucket. That boundary gap is the dashboard's
// long-standing behaviour and is pinned by tests; closing it would shift the
// chart's historical numbers.
func WeeklyTrend(txs []core.Transaction, ref time.Time) []TrendPoint {
	year, month := ref.Year(), ref.Month()
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local).Day()
	thresholds := [5]int{1, 7, 14, 21, daysInMonth}
	label := monthAbbrev[int(month)-1]

	points := make([]TrendPoint, 0, 4)
	for i := 0; i < len(thresholds)-1; i++ {
		startDay, endDay := thresholds[i], thresholds[i+1]
		p := TrendPoint{Date: strconv.Itoa(startDay) + " " + label}
		for _, tx := range txs {
			if !sameMonth(tx.Date, year, month) {
				continue
			}
			day := tx.Date.Day()
			if day < startDay || day >= endDay {
				continue
			}
			if tx.Type == core.Income {
				p.Income += tx.Amount
			} else {
				p.Expense += tx.Amount
			}
		}
		points = append(points, p)
	}
	return points
}

// SixMonthTrend returns one bucket per calendar month for the reference month
// and the five before it, oldest first. The target month is materialised as a
// first-of-month date and its year/month read back, which makes the lookback
// cross year boundaries correctly (March 2025 starts at October 2024).
func SixMonthTrend(txs []core.Transaction, ref time.Time) []MonthPoint {
	points := make([]MonthPoint, 0, 6)
	for i := 5; i >= 0; i-- {
		target := time.Date(ref.Year(), ref.Month()-time.Month(i), 1, 0, 0, 0, 0, time.Local)
		year, month := target.Year(), target.Month()

		p := MonthPoint{Month: monthAbbrev[int(month)-1]}
		for _, tx := range txs {
			if !sameMonth(tx.Date, year, month) {
				continue
			}
			if tx.Type == core.Income {
				p.Income += tx.Amount
			} else {
				p.Expense += tx.Amount
			}
		}
		points = append(points, p)
	}
	return points
}
