// Package calendar holds the date arithmetic shared by the reservation rules
// and the HTTP layer. Reservations are day-grained: every helper here works
// on calendar days and ignores the time-of-day component.
package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format of a calendar day.
const DateLayout = "2006-01-02"

// Week identifies an ISO-8601 week: weeks start on Monday and week 1 is the
// week that contains the first Thursday of the year. Year is the ISO year,
// which differs from the calendar year for a few days around January 1st.
type Week struct {
	Year int
	Week int
}

// String formats the week as YYYY-Www (e.g. 2024-W24). This is the value
// stored in reservations.iso_week.
func (w Week) String() string {
	return fmt.Sprintf("%04d-W%02d", w.Year, w.Week)
}

// Day truncates t to midnight UTC of the calendar day t falls on in its own
// location. Two instants on the same wall-clock day compare equal after Day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}

// ISOWeek returns the ISO-8601 week of the calendar day t falls on.
func ISOWeek(t time.Time) Week {
	year, week := Day(t).ISOWeek()
	return Week{Year: year, Week: week}
}

// SameISOWeek reports whether a and b share both ISO week number and ISO year.
func SameISOWeek(a, b time.Time) bool {
	return ISOWeek(a) == ISOWeek(b)
}

// Tomorrow returns the calendar day following the day of now. now should
// already be expressed in the business location.
func Tomorrow(now time.Time) time.Time {
	return Day(now).AddDate(0, 0, 1)
}

// ParseDay parses a YYYY-MM-DD string into a calendar day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

// FormatDay renders the calendar day of t as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return Day(t).Format(DateLayout)
}
