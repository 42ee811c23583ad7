package domain

import (
	"strings"
	"time"
)

const BreakLabel = "break"

// TimetableGrid is the weekly timetable: one row per weekday, every row
// having the same period columns.
type TimetableGrid struct {
	Periods []string
	Rows    []TimetableRow
}

type TimetableRow struct {
	Weekday string
	Cells   []string
}

// IsBreak reports whether a cell carries no class.
func IsBreak(cell string) bool {
	cell = strings.TrimSpace(cell)
	return cell == "" || strings.EqualFold(cell, BreakLabel)
}

var weekdaysByName = func() map[string]time.Weekday {
	m := make(map[string]time.Weekday, 14)
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		m[name] = d
		m[name[:3]] = d
	}
	return m
}()

// CanonicalWeekday trims the name and normalises English weekday spellings
// ("mon", "MONDAY") to time.Weekday names. Anything else is returned trimmed.
func CanonicalWeekday(name string) string {
	name = strings.TrimSpace(name)
	if d, ok := weekdaysByName[strings.ToLower(name)]; ok {
		return d.String()
	}
	return name
}
