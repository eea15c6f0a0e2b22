package stats

import (
	"math"
	"sort"
	"time"

	"dompetku/internal/core"
)

// DashboardBillWindow and DashboardBillCap parameterise the dashboard's
// upcoming-bills card. The subscriptions page runs its own, wider query via
// DueWithin with a 7-day window; the two windows are independent contracts.
const (
	DashboardBillWindow = 14
	DashboardBillCap    = 3
)

// Bill is an upcoming subscription charge projected from NextBillingDate.
type Bill struct {
	Name   string     `json:"name"`
	Amount core.Money `json:"amount"`
	DueIn  int        `json:"dueIn"`
	Icon   string     `json:"icon"`
}

// daysUntil is the whole-day countdown to a billing date, rounded up so a
// charge later today reports as due in 0 days.
func daysUntil(d core.Date, ref time.Time) int {
	return int(math.Ceil(d.Sub(ref).Hours() / 24))
}

// UpcomingBills projects the active subscriptions due within windowDays of
// ref, soonest first, capped at DashboardBillCap entries. Inactive
// subscriptions and anything already past due are excluded.
func UpcomingBills(subs []core.Subscription, ref time.Time, windowDays int) []Bill {
	bills := []Bill{}
	for _, sub := range subs {
		if !sub.IsActive {
			continue
		}
		due := daysUntil(sub.NextBillingDate, ref)
		if due < 0 || due > windowDays {
			continue
		}
		bills = append(bills, Bill{
			Name:   sub.Name,
			Amount: sub.Amount,
			DueIn:  due,
			Icon:   sub.Icon,
		})
	}

	sort.SliceStable(bills, func(i, j int) bool {
		return bills[i].DueIn < bills[j].DueIn
	})
	if len(bills) > DashboardBillCap {
		bills = bills[:DashboardBillCap]
	}
	return bills
}

// DueWithin counts the active subscriptions whose next charge falls within
// the given number of days from ref.
func DueWithin(subs []core.Subscription, ref time.Time, days int) int {
	n := 0
	for _, sub := range subs {
		if !sub.IsActive {
			continue
		}
		if due := daysUntil(sub.NextBillingDate, ref); due >= 0 && due <= days {
			n++
		}
	}
	return n
}
