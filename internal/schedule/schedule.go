package schedule

import (
	"sort"
	"strings"
	"time"

	"github.com/ilyadubrovsky/tracking-attendance/internal/domain"
)

// Schedule is the read-only result of deriving a timetable against a
// teaching calendar. Derive it again when either input changes.
type Schedule struct {
	subjects        []string
	totals          map[string]int
	classifications map[string]domain.Classification
	weekdaySlots    map[string][]string
	weekdayCounts   domain.WeekdayCounts
	calendar        *domain.TeachingCalendar
}

type labSession struct {
	weekday string
	column  int
}

func Derive(
	grid *domain.TimetableGrid,
	calendar *domain.TeachingCalendar,
	classifier domain.Classifier,
) *Schedule {
	s := &Schedule{
		totals:          make(map[string]int),
		classifications: make(map[string]domain.Classification),
		weekdaySlots:    make(map[string][]string),
		weekdayCounts:   calendar.WeekdayCounts(),
		calendar:        calendar,
	}

	for _, row := range grid.Rows {
		for _, cell := range row.Cells {
			label := strings.TrimSpace(cell)
			if domain.IsBreak(label) {
				continue
			}
			if _, ok := s.classifications[label]; !ok {
				s.classifications[label] = classifier.Classify(label)
				s.subjects = append(s.subjects, label)
			}
		}
	}
	sort.Strings(s.subjects)

	lectureDays := make(map[string]map[string]struct{}, len(s.subjects))
	labSessions := make(map[string]map[labSession]struct{}, len(s.subjects))
	for _, row := range grid.Rows {
		weekday := domain.CanonicalWeekday(row.Weekday)

		prev := ""
		for column, cell := range row.Cells {
			label := strings.TrimSpace(cell)
			if domain.IsBreak(label) {
				prev = ""
				continue
			}

			if s.classifications[label].IsLab() {
				if prev == label {
					continue
				}
				if labSessions[label] == nil {
					labSessions[label] = make(map[labSession]struct{})
				}
				labSessions[label][labSession{weekday: weekday, column: column}] = struct{}{}
			} else {
				if lectureDays[label] == nil {
					lectureDays[label] = make(map[string]struct{})
				}
				lectureDays[label][weekday] = struct{}{}
			}

			s.weekdaySlots[weekday] = append(s.weekdaySlots[weekday], label)
			prev = label
		}
	}

	for _, subject := range s.subjects {
		total := 0
		for session := range labSessions[subject] {
			total += s.weekdayCounts[session.weekday]
		}
		for weekday := range lectureDays[subject] {
			total += s.weekdayCounts[weekday]
		}
		s.totals[subject] = total * s.classifications[subject].Multiplier
	}

	return s
}

// Subjects returns the subject universe in lexicographic order.
func (s *Schedule) Subjects() []string {
	subjects := make([]string, len(s.subjects))
	copy(subjects, s.subjects)
	return subjects
}

// Total is the expected number of classes for the subject over the term.
func (s *Schedule) Total(subject string) (int, bool) {
	total, ok := s.totals[subject]
	return total, ok
}

func (s *Schedule) Totals() map[string]int {
	totals := make(map[string]int, len(s.totals))
	for subject, total := range s.totals {
		totals[subject] = total
	}
	return totals
}

func (s *Schedule) Classification(subject string) (domain.Classification, bool) {
	cl, ok := s.classifications[subject]
	return cl, ok
}

func (s *Schedule) WeekdayCounts() domain.WeekdayCounts {
	counts := make(domain.WeekdayCounts, len(s.weekdayCounts))
	for weekday, n := range s.weekdayCounts {
		counts[weekday] = n
	}
	return counts
}

// Day answers which classes take place on the date.
func (s *Schedule) Day(date time.Time) domain.DaySchedule {
	day, ok := s.calendar.Lookup(date)
	if !ok {
		return domain.DaySchedule{
			Date:    date,
			Weekday: date.Weekday().String(),
			Status:  domain.DayNotInCalendar,
		}
	}

	result := domain.DaySchedule{
		Date:     day.Date,
		Weekday:  day.Weekday,
		Activity: day.Activity,
	}
	if !day.IsTeachingDay() {
		result.Status = domain.DayNotTeaching
		return result
	}

	slots := s.weekdaySlots[day.Weekday]
	if len(slots) == 0 {
		result.Status = domain.DayNoClasses
		return result
	}

	result.Status = domain.DayTeaching
	result.Subjects = make([]string, len(slots))
	copy(result.Subjects, slots)

	return result
}
