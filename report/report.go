// Package report renders maintenance results as tables for the operator.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/barretodotcom/inmocrm/breadcrumbs"
	"github.com/barretodotcom/inmocrm/codes"
	"github.com/barretodotcom/inmocrm/db"
	"github.com/barretodotcom/inmocrm/payments"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var titleStyle = lipgloss.NewStyle().Bold(true)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
}

func title(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf(format, args...)))
}

func ts(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func SoftDelete(w io.Writer, s *db.SoftDeleteSummary) {
	title(w, "%s: soft delete state", s.Table)
	t := newTable("ID", "STATE", "DELETED AT")
	for _, r := range s.Recent {
		state := "active"
		if !r.Active() {
			state = "deleted"
		}
		t.Row(r.ID, state, ts(r.DeletedAt))
	}
	fmt.Fprintln(w, t.Render())

	fmt.Fprintf(w, "active: %d  deleted: %d  total: %d  filtered active: %d\n",
		s.Active, s.Deleted, s.Total, s.FilteredActive)
	if s.Consistent {
		fmt.Fprintln(w, "consistent: filter matches manual count")
	} else {
		fmt.Fprintln(w, "DISCREPANCY: filtered query disagrees with manual count")
	}
}

func Tables(w io.Writer, statuses []db.TableStatus) {
	title(w, "tables")
	t := newTable("TABLE", "EXISTS", "ROWS", "ERROR")
	for _, s := range statuses {
		rows := "-"
		if s.Exists {
			rows = strconv.FormatInt(s.Rows, 10)
		}
		t.Row(s.Name, strconv.FormatBool(s.Exists), rows, s.Err)
	}
	fmt.Fprintln(w, t.Render())
}

type IDSample struct {
	Table  string
	Sample string
	Kind   db.IDKind
	Err    string
}

func IDKinds(w io.Writer, samples []IDSample) {
	title(w, "primary key types")
	t := newTable("TABLE", "SAMPLE", "KIND", "ERROR")
	for _, s := range samples {
		t.Row(s.Table, s.Sample, string(s.Kind), s.Err)
	}
	fmt.Fprintln(w, t.Render())
}

// CodePlan prints planned or applied codes; failed maps property id to the write error.
func CodePlan(w io.Writer, plan []codes.Assignment, failed map[int64]error) {
	title(w, "property codes")
	t := newTable("ID", "CODE", "TYPE", "TITLE", "RESULT")
	var assigned, kept, errs int
	for _, a := range plan {
		result := "assigned"
		switch {
		case a.Reused:
			result = "kept"
			kept++
		case failed[a.ID] != nil:
			result = "error: " + failed[a.ID].Error()
			errs++
		default:
			assigned++
		}
		t.Row(strconv.FormatInt(a.ID, 10), a.Code, a.Type, truncate(a.Title, 40), result)
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "assigned: %d  kept: %d  errors: %d  total: %d\n", assigned, kept, errs, len(plan))
}

func Coverage(w io.Writer, c codes.CoverageStats, byType map[string]int) {
	Tally(w, "properties by type", byType)
	fmt.Fprintf(w, "with code: %d/%d  without code: %d/%d\n", c.WithCode, c.Total, c.WithoutCode, c.Total)
}

// Tally prints counts sorted by key.
func Tally(w io.Writer, heading string, counts map[string]int) {
	title(w, "%s", heading)
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	t := newTable("KEY", "COUNT")
	for _, k := range keys {
		t.Row(k, strconv.Itoa(counts[k]))
	}
	fmt.Fprintln(w, t.Render())
}

func Payments(w io.Writer, c *db.Client, schedules []db.PaymentSchedule, s payments.Summary) {
	title(w, "payment schedule: %s <%s>", c.FullName, c.Email)
	t := newTable("CONCEPT", "AMOUNT", "PAID", "DUE", "STATUS")
	for _, p := range schedules {
		t.Row(p.PaymentConcept, p.Amount.StringFixed(2), p.PaidAmount.StringFixed(2), p.DueDate.Format("2006-01-02"), p.Status)
	}
	fmt.Fprintln(w, t.Render())

	fmt.Fprintf(w, "scheduled: %d\n", s.Scheduled)
	fmt.Fprintf(w, "total: %s  paid: %s  pending: %s\n", s.Total.StringFixed(2), s.Paid.StringFixed(2), s.Pending.StringFixed(2))
	fmt.Fprintf(w, "overdue: %d (%s)  next 30 days: %d (%s)\n", s.OverdueCount, s.Overdue.StringFixed(2), s.UpcomingCount, s.Upcoming.StringFixed(2))
}

func Inquiries(w io.Writer, list []db.ServiceInquiry) {
	title(w, "service inquiries (%d)", len(list))
	t := newTable("CLIENT", "SERVICE", "STATUS", "CREATED")
	statuses := make([]string, 0, len(list))
	for _, q := range list {
		t.Row(q.ClientName, q.ServiceType, q.Status, q.CreatedAt.UTC().Format(time.RFC3339))
		statuses = append(statuses, q.Status)
	}
	fmt.Fprintln(w, t.Render())
	Tally(w, "inquiries by status", payments.GroupByStatus(statuses))
}

func Breadcrumbs(w io.Writer, trail []breadcrumbs.Crumb) {
	if !breadcrumbs.Visible(trail) {
		fmt.Fprintln(w, "(dashboard: no breadcrumbs shown)")
		return
	}
	parts := make([]string, 0, len(trail))
	for _, c := range trail {
		parts = append(parts, fmt.Sprintf("%s [%s]", c.Label, c.Path))
	}
	fmt.Fprintln(w, strings.Join(parts, " > "))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

// Duplicates lists code collisions; removed maps property id to the outcome
// of its soft delete (nil error = done). A nil map means nothing was changed.
func Duplicates(w io.Writer, groups []codes.DuplicateGroup, removed map[int64]error) {
	title(w, "duplicate property codes (%d)", len(groups))
	t := newTable("CODE", "ID", "TITLE", "CREATED", "ACTION")
	extra := 0
	for _, g := range groups {
		t.Row(g.Code, strconv.FormatInt(g.Keep.ID, 10), truncate(g.Keep.Title, 40), g.Keep.CreatedAt.UTC().Format(time.RFC3339), "keep")
		for _, p := range g.Remove {
			extra++
			action := "duplicate"
			if removed != nil {
				if err, ok := removed[p.ID]; ok {
					action = "soft deleted"
					if err != nil {
						action = "error: " + err.Error()
					}
				}
			}
			t.Row(g.Code, strconv.FormatInt(p.ID, 10), truncate(p.Title, 40), p.CreatedAt.UTC().Format(time.RFC3339), action)
		}
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "codes: %d  extra rows: %d\n", len(groups), extra)
}

func AppointmentSync(w io.Writer, s *db.AppointmentSync) {
	title(w, "appointments vs property_appointments")
	t := newTable("ISSUE", "ID", "WHO", "WHEN")
	for _, a := range s.Orphans {
		t.Row("not linked", a.ID, a.ContactName, ts(a.StartTime))
	}
	for _, a := range s.Dangling {
		t.Row("broken link -> "+a.PropertyAppointmentID, a.ID, a.ContactName, ts(a.StartTime))
	}
	for _, p := range s.Unsynced {
		t.Row("no appointment", p.ID, p.ClientName, ts(p.AppointmentDate))
	}
	fmt.Fprintln(w, t.Render())

	fmt.Fprintf(w, "appointments: %d  property appointments: %d  linked: %d\n",
		s.Appointments, s.PropertyAppointments, s.Linked)
	if s.InSync() {
		fmt.Fprintln(w, "in sync")
	} else {
		fmt.Fprintf(w, "OUT OF SYNC: %d not linked, %d broken links, %d without appointment\n",
			len(s.Orphans), len(s.Dangling), len(s.Unsynced))
	}
}

func AdvisorPhotos(w io.Writer, checks []db.PhotoCheck) {
	title(w, "advisor photos (%d)", len(checks))
	t := newTable("ADVISOR", "SPECIALTY", "STATE", "PHOTO")
	states := make([]string, 0, len(checks))
	for _, c := range checks {
		t.Row(c.Advisor.Name, c.Advisor.Specialty, string(c.State), truncate(c.Advisor.Photo, 60))
		states = append(states, string(c.State))
	}
	fmt.Fprintln(w, t.Render())
	Tally(w, "photos by state", payments.GroupByStatus(states))
}
