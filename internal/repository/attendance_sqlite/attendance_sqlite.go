package attendance_sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/ilyadubrovsky/tracking-attendance/internal/database"
	"github.com/ilyadubrovsky/tracking-attendance/internal/domain"
)

const (
	createAttendanceRecordsTableSQL = `
  CREATE TABLE IF NOT EXISTS attendance_records (
  subject TEXT PRIMARY KEY,
  present INTEGER NOT NULL DEFAULT 0 CHECK (present >= 0),
  absent INTEGER NOT NULL DEFAULT 0 CHECK (absent >= 0),
  updated_at DATETIME NOT NULL
  )`

	selectAttendanceRecordsSQL = `SELECT subject, present, absent FROM attendance_records`
	deleteAttendanceRecordsSQL = `DELETE FROM attendance_records`
	insertAttendanceRecordSQL  = `INSERT INTO attendance_records (subject, present, absent, updated_at) VALUES (?, ?, ?, ?)`
)

type repo struct {
	db database.SQLite
}

func NewRepository(db database.SQLite) *repo {
	return &repo{
		db: db,
	}
}

func (r *repo) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createAttendanceRecordsTableSQL); err != nil {
		return fmt.Errorf("db.ExecContext: %w", err)
	}
	return nil
}

func (r *repo) Load(ctx context.Context) (map[string]domain.AttendanceRecord, bool, error) {
	rows, err := r.db.QueryContext(ctx, selectAttendanceRecordsSQL)
	if err != nil {
		return nil, false, fmt.Errorf("db.QueryContext: %w", err)
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
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db.BeginTx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, selectAttendanceRecordsSQL)
	if err != nil {
		return fmt.Errorf("tx.QueryContext: %w", err)
	}
	records, err := scanRecords(rows)
	rows.Close()
	if err != nil {
		return err
	}

	if err = fn(records); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, deleteAttendanceRecordsSQL); err != nil {
		return fmt.Errorf("tx.ExecContext delete: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertAttendanceRecordSQL)
	if err != nil {
		return fmt.Errorf("tx.PrepareContext: %w", err)
	}
	defer stmt.Close()

	subjects := make([]string, 0, len(records))
	for subject := range records {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)

	now := time.Now()
	for _, subject := range subjects {
		record := records[subject]
		if _, err = stmt.ExecContext(ctx, subject, record.Present, record.Absent, now); err != nil {
			return fmt.Errorf("stmt.ExecContext: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("tx.Commit: %w", err)
	}

	return nil
}

func scanRecords(rows *sql.Rows) (map[string]domain.AttendanceRecord, error) {
	records := make(map[string]domain.AttendanceRecord)
	for rows.Next() {
		var (
			subject string
			record  domain.AttendanceRecord
		)
		if err := rows.Scan(&subject, &record.Present, &record.Absent); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}
		records[subject] = record
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return records, nil
}
