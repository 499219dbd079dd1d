package calendar

import "time"

// WeekendDefinition marks which weekdays are non-working for a company.
// The json keys match the shape stored on the time_off_policies row.
type WeekendDefinition struct {
	Sun bool `json:"sun"`
	Mon bool `json:"mon"`
	Tue bool `json:"tue"`
	Wed bool `json:"wed"`
	Thu bool `json:"thu"`
	Fri bool `json:"fri"`
	Sat bool `json:"sat"`
}

// DefaultWeekends is the fallback when a company has no stored policy.
func DefaultWeekends() WeekendDefinition {
	return WeekendDefinition{Sat: true, Sun: true}
}

// IsWeekend reports whether the weekday of t is marked non-working.
func (w WeekendDefinition) IsWeekend(t time.Time) bool {
	switch t.Weekday() {
	case time.Sunday:
		return w.Sun
	case time.Monday:
		return w.Mon
	case time.Tuesday:
		return w.Tue
	case time.Wednesday:
		return w.Wed
	case time.Thursday:
		return w.Thu
	case time.Friday:
		return w.Fri
	case time.Saturday:
		return w.Sat
	}
	return false
}

// CountChargeableDays returns the number of business days in [start, end],
// both endpoints inclusive. A day is chargeable unless its weekday is marked
// as weekend or its date appears in holidays. Returns 0 when end is before
// start. Time-of-day and location are ignored; only the calendar date counts.
func CountChargeableDays(start, end time.Time, weekends WeekendDefinition, holidays []time.Time) int {
	startDay := truncateToDate(start)
	endDay := truncateToDate(end)
	if endDay.Before(startDay) {
		return 0
	}

	holidaySet := make(map[time.Time]struct{}, len(holidays))
	for _, h := range holidays {
		holidaySet[truncateToDate(h)] = struct{}{}
	}

	count := 0
	for d := startDay; !d.After(endDay); d = d.AddDate(0, 0, 1) {
		if weekends.IsWeekend(d) {
			continue
		}
		if _, ok := holidaySet[d]; ok {
			continue
		}
		count++
	}
	return count
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
