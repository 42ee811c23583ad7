package source

import (
	"context"

	"github.com/ilyadubrovsky/tracking-attendance/internal/domain"
)

type Timetable interface {
	Timetable(ctx context.Context) (*domain.TimetableGrid, error)
}

type Calendar interface {
	Calendar(ctx context.Context) (*domain.TeachingCalendar, error)
}
