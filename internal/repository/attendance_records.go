package repository

import (
	"context"

	"github.com/ilyadubrovsky/tracking-attendance/internal/domain"
)

// AttendanceRecords is the durable ledger store. The full record set is
// rewritten on every Update.
type AttendanceRecords interface {
	// Load returns the stored records. found is false when nothing has been
	// stored yet.
	Load(ctx context.Context) (records map[string]domain.AttendanceRecord, found bool, err error)
	// Update loads the stored records under an exclusive lock, lets fn mutate
	// them in place and saves the result. Nothing is saved when fn fails.
	Update(ctx context.Context, fn func(records map[string]domain.AttendanceRecord) error) error
}
