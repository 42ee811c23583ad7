package attendance_records

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ilyadubrovsky/tracking-attendance/internal/database"
	"github.com/ilyadubrovsky/tracking-attendance/internal/domain"
	"github.com/ilyadubrovsky/tracking-attendance/internal/repository/attendance_records/dbo"
	"github.com/jackc/pgx/v4"
)

type repo struct {
	db database.PG
}

func NewRepository(db database.PG) *repo {
	return &repo{
		db: db,
	}
}

func (r *repo) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS attendance_records (
		    subject    TEXT PRIMARY KEY,
		    present    INTEGER NOT NULL DEFAULT 0 CHECK (present >= 0),
		    absent     INTEGER NOT NULL DEFAULT 0 CHECK (absent >= 0),
		    updated_at TIMESTAMPTZ NOT NULL
		)
	`

	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("db.Exec: %w", err)
	}

	return nil
}

func (r *repo) Load(ctx context.Context) (map[string]domain.AttendanceRecord, bool, error) {
	query := `
		SELECT
		    subject,
		    present,
		    absent,
		    updated_at
		FROM
		    attendance_records
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, false, fmt.Errorf("db.Query: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, false, err
	}

	return records, len(records) != 0, nil
}

func (r *repo) Update(
	ctx context.Context,
	fn func(records map[string]domain.AttendanceRecord) error,
) error {
	lockQuery := `
		LOCK TABLE attendance_records IN SHARE ROW EXCLUSIVE MODE
	`

	selectQuery := `
		SELECT
		    subject,
		    present,
		    absent,
		    updated_at
		FROM
		    attendance_records
	`

	deleteQuery := `
		DELETE FROM attendance_records
	`

	insertQuery := `
		INSERT INTO attendance_records (
		    subject,
		    present,
		    absent,
		    updated_at
		)
		VALUES ($1, $2, $3, $4)
	`

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("db.Begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx, lockQuery); err != nil {
		return fmt.Errorf("tx.Exec lockQuery: %w", err)
	}

	rows, err := tx.Query(ctx, selectQuery)
	if err != nil {
		return fmt.Errorf("tx.Query selectQuery: %w", err)
	}
	records, err := scanRecords(rows)
	rows.Close()
	if err != nil {
		return err
	}

	if err = fn(records); err != nil {
		return err
	}

	if _, err = tx.Exec(ctx, deleteQuery); err != nil {
		return fmt.Errorf("tx.Exec deleteQuery: %w", err)
	}

	subjects := make([]string, 0, len(records))
	for subject := range records {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)

	now := time.Now()
	batch := &pgx.Batch{}
	for _, subject := range subjects {
		row := dbo.FromDomain(subject, records[subject], now)
		batch.Queue(insertQuery,
			row.Subject,   // $1
			row.Present,   // $2
			row.Absent,    // $3
			row.UpdatedAt, // $4
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range subjects {
		if _, err = results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("results.Exec insertQuery: %w", err)
		}
	}
	if err = results.Close(); err != nil {
		return fmt.Errorf("results.Close: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("tx.Commit: %w", err)
	}

	return nil
}

func scanRecords(rows pgx.Rows) (map[string]domain.AttendanceRecord, error) {
	records := make(map[string]domain.AttendanceRecord)
	for rows.Next() {
		row := &dbo.AttendanceRecord{}
		err := rows.Scan(
			&row.Subject,
			&row.Present,
			&row.Absent,
			&row.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}

		records[row.Subject] = row.ToDomain()
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return records, nil
}
