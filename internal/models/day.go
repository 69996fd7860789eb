package models

import "time"

const DateLayout = "2006-01-02"

// DateOf returns midnight UTC of t's calendar date, read in t's own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween enumerates every calendar day from start through end inclusive.
func DaysBetween(start, end time.Time) []time.Time {
	from, to := DateOf(start), DateOf(end)
	if to.Before(from) {
		return nil
	}
	days := make([]time.Time, 0, int(to.Sub(from).Hours()/24)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func FormatDays(days []time.Time) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.Format(DateLayout))
	}
	return out
}
