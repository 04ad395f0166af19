// Package payments summarizes a client's payment schedule.
package payments

import (
	"sort"
	"time"

	"github.com/barretodotcom/inmocrm/db"
	"github.com/shopspring/decimal"
)

const UpcomingWindow = 30 * 24 * time.Hour

type Summary struct {
	Scheduled     int             `json:"scheduled"`
	Total         decimal.Decimal `json:"total"`
	Paid          decimal.Decimal `json:"paid"`
	Pending       decimal.Decimal `json:"pending"`
	OverdueCount  int             `json:"overdueCount"`
	Overdue       decimal.Decimal `json:"overdue"`
	UpcomingCount int             `json:"upcomingCount"`
	Upcoming      decimal.Decimal `json:"upcoming"`
	ByStatus      map[string]int  `json:"byStatus"`
}

// Overdue: flagged overdue, or still pending past its due date.
func isOverdue(s db.PaymentSchedule, now time.Time) bool {
	return s.Status == "overdue" || (s.Status == "pending" && s.DueDate.Before(now))
}

func isUpcoming(s db.PaymentSchedule, now time.Time) bool {
	if s.Status != "pending" && s.Status != "partial" {
		return false
	}
	return !s.DueDate.Before(now) && !s.DueDate.After(now.Add(UpcomingWindow))
}

func remaining(s db.PaymentSchedule) decimal.Decimal {
	return s.Amount.Sub(s.PaidAmount)
}

func Summarize(schedules []db.PaymentSchedule, now time.Time) Summary {
	sum := Summary{
		Scheduled: len(schedules),
		Total:     decimal.Zero,
		Paid:      decimal.Zero,
		Overdue:   decimal.Zero,
		Upcoming:  decimal.Zero,
	}
	statuses := make([]string, 0, len(schedules))
	for _, s := range schedules {
		sum.Total = sum.Total.Add(s.Amount)
		sum.Paid = sum.Paid.Add(s.PaidAmount)
		statuses = append(statuses, s.Status)

		if isOverdue(s, now) {
			sum.OverdueCount++
			sum.Overdue = sum.Overdue.Add(remaining(s))
		}
		if isUpcoming(s, now) {
			sum.UpcomingCount++
			sum.Upcoming = sum.Upcoming.Add(remaining(s))
		}
	}
	sum.Pending = sum.Total.Sub(sum.Paid)
	sum.ByStatus = GroupByStatus(statuses)
	return sum
}

// GroupByStatus counts occurrences; a blank status is counted as "unknown".
func GroupByStatus(statuses []string) map[string]int {
	out := map[string]int{}
	for _, s := range statuses {
		if s == "" {
			s = "unknown"
		}
		out[s]++
	}
	return out
}

// SortedStatuses gives a stable iteration order for reports.
func SortedStatuses(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
