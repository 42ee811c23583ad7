package dbo

import (
	"time"

	"github.com/ilyadubrovsky/tracking-attendance/internal/domain"
)

type AttendanceRecord struct {
	Subject   string
	Present   int32
	Absent    int32
	UpdatedAt time.Time
}

func FromDomain(subject string, record domain.AttendanceRecord, updatedAt time.Time) *AttendanceRecord {
	return &AttendanceRecord{
		Subject:   subject,
		Present:   int32(record.Present),
		Absent:    int32(record.Absent),
		UpdatedAt: updatedAt,
	}
}

func (r *AttendanceRecord) ToDomain() domain.AttendanceRecord {
	return domain.AttendanceRecord{
		Present: int(r.Present),
		Absent:  int(r.Absent),
	}
}
