package domain

import "time"

type DayStatus int

const (
	DayTeaching DayStatus = iota + 1
	DayNotTeaching
	DayNoClasses
	DayNotInCalendar
)

func (s DayStatus) String() string {
	switch s {
	case DayTeaching:
		return "teaching"
	case DayNotTeaching:
		return "not a teaching day"
	case DayNoClasses:
		return "no classes"
	case DayNotInCalendar:
		return "not in calendar"
	}
	return "unknown"
}

// DaySchedule is the answer to a date query. Subjects is only filled for
// DayTeaching, in period order with lab runs merged.
type DaySchedule struct {
	Date     time.Time
	Weekday  string
	Status   DayStatus
	Activity string
	Subjects []string
}
