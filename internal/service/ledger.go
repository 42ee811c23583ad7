package service

import (
	"context"

	"github.com/ilyadubrovsky/tracking-attendance/internal/domain"
)

type Ledger interface {
	Subjects() []string
	Record(subject string) (domain.AttendanceRecord, error)
	Records() map[string]domain.AttendanceRecord
	Refresh(ctx context.Context) error
	RecordPresent(ctx context.Context, subject string) (domain.MarkResult, error)
	RecordAbsent(ctx context.Context, subject string) (domain.MarkResult, error)
	BulkMark(ctx context.Context, subjects []string, mark domain.Mark) ([]domain.MarkResult, error)
	ResetAll(ctx context.Context) (map[string]domain.AttendanceRecord, error)
}
