package payments

import (
	"testing"
	"time"

	"github.com/barretodotcom/inmocrm/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func sched(amount, paid int64, due time.Time, status string) db.PaymentSchedule {
	return db.PaymentSchedule{
		Amount:     decimal.NewFromInt(amount),
		PaidAmount: decimal.NewFromInt(paid),
		DueDate:    due,
		Status:     status,
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	schedules := []db.PaymentSchedule{
		sched(1000, 1000, now.AddDate(0, -2, 0), "paid"),
		sched(1000, 0, now.AddDate(0, -1, 0), "pending"),  // pending past due
		sched(1000, 400, now.AddDate(0, 0, -3), "overdue"), // flagged
		sched(1000, 250, now.AddDate(0, 0, 10), "partial"),
		sched(1000, 0, now.AddDate(0, 0, 20), "pending"),
		sched(1000, 0, now.AddDate(0, 2, 0), "pending"), // beyond window
	}

	s := Summarize(schedules, now)

	assert.Equal(t, 6, s.Scheduled)
	assert.True(t, decimal.NewFromInt(6000).Equal(s.Total))
	assert.True(t, decimal.NewFromInt(1650).Equal(s.Paid))
	assert.True(t, s.Total.Sub(s.Paid).Equal(s.Pending))

	assert.Equal(t, 2, s.OverdueCount)
	assert.True(t, decimal.NewFromInt(1600).Equal(s.Overdue), s.Overdue.String())

	assert.Equal(t, 2, s.UpcomingCount)
	assert.True(t, decimal.NewFromInt(1750).Equal(s.Upcoming), s.Upcoming.String())

	assert.Equal(t, map[string]int{"paid": 1, "pending": 3, "overdue": 1, "partial": 1}, s.ByStatus)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, time.Now())
	assert.Equal(t, 0, s.Scheduled)
	assert.True(t, s.Pending.IsZero())
	assert.Empty(t, s.ByStatus)
}

func TestGroupByStatus(t *testing.T) {
	got := GroupByStatus([]string{"new", "new", "", "closed"})
	assert.Equal(t, map[string]int{"new": 2, "unknown": 1, "closed": 1}, got)
	assert.Equal(t, []string{"closed", "new", "unknown"}, SortedStatuses(got))
}
