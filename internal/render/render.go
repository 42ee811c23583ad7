// Package render formats tracker results as plain text for the CLI and the
// bot.
package render

import (
	"fmt"
	"strings"

	"github.com/ilyadubrovsky/tracking-attendance/internal/domain"
)

var standingMarks = map[domain.Standing]string{
	domain.StandingSafe:     "🟢",
	domain.StandingWarning:  "🟠",
	domain.StandingCritical: "🔴",
}

// Advice is the one line recommendation shown under a summary: the miss
// budget when at or above the threshold, otherwise the classes needed.
func Advice(s domain.Summary, threshold int) string {
	if s.Total == 0 {
		return "No classes scheduled."
	}
	if s.Percentage >= float64(threshold) {
		return fmt.Sprintf("You can miss %d more class(es) and stay at or above %d%%.", s.MissBudget, threshold)
	}
	if !s.Need.Reachable {
		return fmt.Sprintf("Not possible to reach %d%% with the remaining classes.", threshold)
	}
	return fmt.Sprintf("Attend the next %d class(es) to reach %d%%.", s.Need.Classes, threshold)
}

func Subject(s domain.SubjectSummary, threshold int) string {
	kind := ""
	if s.Classification.IsLab() {
		kind = " (lab)"
	}
	return fmt.Sprintf("%s %s%s: %.2f%%\nAttended: %d / %d, missed: %d\n%s",
		standingMarks[s.Standing], s.Subject, kind, s.Percentage,
		s.Present, s.Total, s.Absent,
		Advice(s.Summary, threshold),
	)
}

func Subjects(summaries []domain.SubjectSummary, threshold int) string {
	if len(summaries) == 0 {
		return "The timetable has no subjects."
	}
	blocks := make([]string, 0, len(summaries))
	for _, s := range summaries {
		blocks = append(blocks, Subject(s, threshold))
	}
	return strings.Join(blocks, "\n\n")
}

func Overall(s domain.Summary, threshold int) string {
	return fmt.Sprintf("%s Overall: %.2f%%\nTotal attended: %d / %d, missed: %d\n%s",
		standingMarks[s.Standing], s.Percentage,
		s.Present, s.Total, s.Absent,
		Advice(s, threshold),
	)
}

func Day(day domain.DaySchedule) string {
	date := day.Date.Format("Mon, 02 Jan 2006")
	switch day.Status {
	case domain.DayNotInCalendar:
		return fmt.Sprintf("%s is not in the academic calendar.", date)
	case domain.DayNotTeaching:
		return fmt.Sprintf("%s is not a teaching day: %s.", date, day.Activity)
	case domain.DayNoClasses:
		return fmt.Sprintf("%s: no classes.", date)
	}

	lines := make([]string, 0, len(day.Subjects)+1)
	lines = append(lines, fmt.Sprintf("%s:", date))
	for i, subject := range day.Subjects {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, subject))
	}
	return strings.Join(lines, "\n")
}

func Mark(r domain.MarkResult, mark domain.Mark) string {
	if r.Outcome == domain.OutcomeCapacityExceeded {
		return fmt.Sprintf("%s: every scheduled class is already recorded (%d present, %d absent).",
			r.Subject, r.Record.Present, r.Record.Absent)
	}
	return fmt.Sprintf("%s: marked %s (%d present, %d absent).",
		r.Subject, mark, r.Record.Present, r.Record.Absent)
}

func Marks(results []domain.MarkResult, mark domain.Mark) string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, Mark(r, mark))
	}
	return strings.Join(lines, "\n")
}
