// Package calendar holds the date rules for attendance: which days may be
// back-filled by hand, how a picked day is sent to the gateway, and how
// records are shown.
package calendar

import (
	"sort"
	"time"

	"github.com/dukerupert/maidmanager/internal/model"
)

const (
	// DayLayout is the wire form of a manual attendance date.
	DayLayout = "2006-01-02"
	// DisplayLayout renders an attendance record's date.
	DisplayLayout = "02 Jan 2006, 03:04 PM"
)

// Selectable reports whether the day picked at utcMillis may be used for
// manual attendance. The picked day is the UTC day that FormatDay stores;
// it may not be later than today in loc.
func Selectable(utcMillis int64, now time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	return FormatDay(utcMillis) <= now.In(loc).Format(DayLayout)
}

// FormatDay returns the UTC calendar day of utcMillis as YYYY-MM-DD.
// Date pickers hand back midnight UTC of the chosen day, so the UTC view
// is the day the user picked.
func FormatDay(utcMillis int64) string {
	return time.UnixMilli(utcMillis).UTC().Format(DayLayout)
}

// ParseDay reads a YYYY-MM-DD day as midnight UTC.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, s, time.UTC)
}

// Display renders an attendance date in loc. Dates the gateway sent in an
// unknown form are shown as received.
func Display(ts model.Timestamp, loc *time.Location) string {
	if ts.IsZero() {
		return ts.Raw
	}
	if loc == nil {
		loc = time.Local
	}
	return ts.Time.In(loc).Format(DisplayLayout)
}

// SortByDateDesc returns a copy of records, newest first. Records without
// a parseable date sort last, in their original order.
func SortByDateDesc(records []model.AttendanceRecord) []model.AttendanceRecord {
	out := make([]model.AttendanceRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Date, out[j].Date
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.Time.After(b.Time)
	})
	return out
}
