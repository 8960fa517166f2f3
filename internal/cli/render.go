package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dukerupert/maidmanager/internal/calendar"
	"github.com/dukerupert/maidmanager/internal/controller"
	"github.com/dukerupert/maidmanager/internal/format"
	"github.com/dukerupert/maidmanager/internal/model"
)

func currency(v float64) string { return format.Currency(v) }

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
}

func renderRoster(w io.Writer, maids []model.Maid) {
	if len(maids) == 0 {
		fmt.Fprintln(w, "No maids yet. Add one with 'maidmanager maids add'.")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tNAME\tMOBILE\tTASKS")
	for _, m := range maids {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", m.ID, m.Name, m.Mobile, len(m.Tasks))
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%s total\n", format.Count(int64(len(maids))))
}

func renderMaid(w io.Writer, m model.Maid, loc *time.Location) {
	fmt.Fprintf(w, "%s (%s)\n", m.Name, m.ID)
	fmt.Fprintf(w, "Mobile:  %s\n", m.Mobile)
	if m.Address != "" {
		fmt.Fprintf(w, "Address: %s\n", m.Address)
	}
	fmt.Fprintln(w)
	renderTasks(w, m.Tasks)
	fmt.Fprintln(w)
	renderAttendance(w, m.Attendance, loc)
}

func renderTasks(w io.Writer, tasks []model.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks assigned.")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "TASK ID\tNAME\tFREQUENCY\tPRICE")
	for _, t := range tasks {
		id := t.ID
		if id == "" {
			id = "(unsaved)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", id, t.Name, t.Frequency, currency(t.Price))
	}
	tw.Flush()
}

func renderAttendance(w io.Writer, records []model.AttendanceRecord, loc *time.Location) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No attendance recorded.")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "DATE\tTASK\tSTATUS")
	for _, r := range calendar.SortByDateDesc(records) {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", calendar.Display(r.Date, loc), r.TaskName, r.Status)
	}
	tw.Flush()
}

func renderPayroll(w io.Writer, p model.PayrollResponse) {
	if p.BillingCycle.Start != "" || p.BillingCycle.End != "" {
		fmt.Fprintf(w, "Billing cycle: %s to %s\n", cycleDay(p.BillingCycle.Start), cycleDay(p.BillingCycle.End))
	}
	tw := table(w)
	fmt.Fprintf(tw, "Total salary\t%s\n", currency(p.TotalSalary))
	fmt.Fprintf(tw, "Deductions\t%s\n", currency(p.TotalDeductions))
	fmt.Fprintf(tw, "Payable\t%s\n", currency(p.PayableAmount))
	tw.Flush()

	if len(p.DeductionsBreakdown) == 0 {
		return
	}
	fmt.Fprintln(w)
	tw = table(w)
	fmt.Fprintln(tw, "TASK\tMISSED\tDEDUCTION")
	for _, d := range p.DeductionsBreakdown {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.TaskName, format.Days(d.MissedDays), currency(d.DeductionAmount))
	}
	tw.Flush()
}

// cycleDay shortens a gateway timestamp to its day; other text is shown
// unchanged.
func cycleDay(s string) string {
	t, err := model.ParseTimestamp(s)
	if err != nil {
		return s
	}
	return t.Format(calendar.DayLayout)
}

func renderIdentity(w io.Writer, id controller.Identity, gateway string, now time.Time) {
	fmt.Fprintf(w, "Gateway: %s\n", gateway)
	if id.Opaque {
		fmt.Fprintln(w, "Logged in (token carries no readable claims)")
		return
	}
	if id.UserID != "" {
		fmt.Fprintf(w, "User:    %s\n", id.UserID)
	}
	if !id.IssuedAt.IsZero() {
		fmt.Fprintf(w, "Issued:  %s\n", id.IssuedAt.Local().Format(calendar.DisplayLayout))
	}
	if !id.ExpiresAt.IsZero() {
		state := "valid"
		if id.Expired(now) {
			state = "expired"
		}
		fmt.Fprintf(w, "Expires: %s (%s)\n", id.ExpiresAt.Local().Format(calendar.DisplayLayout), state)
	}
}
