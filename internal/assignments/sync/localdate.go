package sync

import "time"

// DateLayout is the local calendar date format used across the assignment
// store.
const DateLayout = "2006-01-02"

// Window is the sweep window of one sync pass: inclusive local calendar
// dates plus the UTC instants bounding the upstream fetch.
type Window struct {
	Start      string
	End        string
	FetchStart time.Time
	FetchEnd   time.Time
}

// ComputeWindow returns [today-daysBack, today+daysAhead] expressed as local
// calendar dates in the hotel's zone.
func ComputeWindow(now time.Time, daysBack, daysAhead int, loc *time.Location) Window {
	local := now.In(loc)
	first := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -daysBack)
	last := first.AddDate(0, 0, daysBack+daysAhead)

	return Window{
		Start:      first.Format(DateLayout),
		End:        last.Format(DateLayout),
		FetchStart: first.UTC(),
		FetchEnd:   last.AddDate(0, 0, 1).UTC(),
	}
}

// LocalDate converts a UTC instant to the hotel's local calendar date.
// A missing instant falls back to today's local date rather than failing:
// an assignment landing on today beats one being dropped.
func LocalDate(t *time.Time, now time.Time, loc *time.Location) string {
	if t == nil || t.IsZero() {
		return now.In(loc).Format(DateLayout)
	}
	return t.In(loc).Format(DateLayout)
}
