package domain

import "time"

type CalendarDay struct {
	Date     time.Time
	Weekday  string
	Activity string
}

// IsTeachingDay is true when no holiday or activity is annotated.
func (d CalendarDay) IsTeachingDay() bool {
	return d.Activity == ""
}

type TeachingCalendar struct {
	Days []CalendarDay
}

// WeekdayCounts maps a weekday name to the number of its teaching occurrences.
type WeekdayCounts map[string]int

func (c *TeachingCalendar) WeekdayCounts() WeekdayCounts {
	counts := make(WeekdayCounts)
	for _, day := range c.Days {
		if day.IsTeachingDay() {
			counts[day.Weekday]++
		}
	}
	return counts
}

// Lookup finds the calendar record for the date, ignoring the time of day.
func (c *TeachingCalendar) Lookup(date time.Time) (CalendarDay, bool) {
	y, m, d := date.Date()
	for _, day := range c.Days {
		dy, dm, dd := day.Date.Date()
		if dy == y && dm == m && dd == d {
			return day, true
		}
	}
	return CalendarDay{}, false
}
