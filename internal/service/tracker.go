package service

import (
	"context"
	"time"

	"github.com/ilyadubrovsky/tracking-attendance/internal/domain"
)

// Tracker is what presentation adapters call into.
type Tracker interface {
	Subjects() []string
	Threshold() int
	TotalExpected(subject string) (int, error)
	Record(subject string) (domain.AttendanceRecord, error)
	Percentage(subject string) (float64, error)
	MissBudget(subject string) (int, error)
	NeedToReach(subject string) (domain.Need, error)
	Summary(subject string) (domain.SubjectSummary, error)
	Summaries() []domain.SubjectSummary
	Overall() domain.Summary
	Day(date time.Time) domain.DaySchedule
	ParseDate(s string) (time.Time, error)

	Refresh(ctx context.Context) error
	RecordPresent(ctx context.Context, subject string) (domain.MarkResult, error)
	RecordAbsent(ctx context.Context, subject string) (domain.MarkResult, error)
	BulkMark(ctx context.Context, subjects []string, mark domain.Mark) ([]domain.MarkResult, error)
	MarkDay(ctx context.Context, date time.Time, mark domain.Mark) (domain.DaySchedule, []domain.MarkResult, error)
	ResetAll(ctx context.Context) (map[string]domain.AttendanceRecord, error)
}
