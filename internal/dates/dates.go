// Package dates holds the calendar helpers the week view and the
// reminder digest lean on.
package dates

import (
	"time"

	"github.com/jinzhu/now"

	"weekly-planner/internal/model"
)

// DueSoonDays is how far ahead a due date still counts as "due soon".
const DueSoonDays = 3

// WeekDays returns the seven days of the week containing base,
// starting on weekStart.
func WeekDays(base time.Time, weekStart time.Weekday) []time.Time {
	cfg := &now.Config{WeekStartDay: weekStart, TimeLocation: base.Location()}
	start := cfg.With(base).BeginningOfWeek()
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// DueSoon reports whether due falls within today..today+DueSoonDays.
// Unparseable dates are never due soon.
func DueSoon(due string, today time.Time) bool {
	diff, ok := calendarDays(today, due)
	return ok && diff >= 0 && diff <= DueSoonDays
}

// Overdue reports whether due lies strictly before today.
func Overdue(due string, today time.Time) bool {
	diff, ok := calendarDays(today, due)
	return ok && diff < 0
}

// calendarDays is the whole-day distance from today to the due date,
// ignoring time of day.
func calendarDays(today time.Time, due string) (int, bool) {
	d, err := time.Parse(model.DateLayout, due)
	if err != nil {
		return 0, false
	}
	from := startOfDay(today)
	to := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, today.Location())
	return int(to.Sub(from).Hours() / 24), true
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
