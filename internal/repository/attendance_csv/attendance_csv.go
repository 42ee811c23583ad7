// Package attendance_csv stores the ledger as a flat CSV file with the
// columns subject, present, absent.
package attendance_csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
	"github.com/ilyadubrovsky/tracking-attendance/internal/domain"
	ierrors "github.com/ilyadubrovsky/tracking-attendance/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var header = []string{"subject", "present", "absent"}

type repo struct {
	path string
	lock *flock.Flock
}

func NewRepository(path string) *repo {
	return &repo{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

func (r *repo) Load(_ context.Context) (map[string]domain.AttendanceRecord, bool, error) {
	if err := r.ensureDir(); err != nil {
		return nil, false, err
	}
	if err := r.lock.RLock(); err != nil {
		return nil, false, fmt.Errorf("lock.RLock: %w", err)
	}
	defer r.lock.Unlock()

	return r.read()
}

func (r *repo) Update(
	_ context.Context,
	fn func(records map[string]domain.AttendanceRecord) error,
) error {
	if err := r.ensureDir(); err != nil {
		return err
	}
	if err := r.lock.Lock(); err != nil {
		return fmt.Errorf("lock.Lock: %w", err)
	}
	defer r.lock.Unlock()

	records, _, err := r.read()
	if err != nil {
		return err
	}

	if err = fn(records); err != nil {
		return err
	}

	if err = r.write(records); err != nil {
		return err
	}

	return nil
}

func (r *repo) ensureDir() error {
	if err := os.MkdirAll(filepath.Dir(r.path), os.ModePerm); err != nil {
		return fmt.Errorf("os.MkdirAll: %w", err)
	}
	return nil
}

func (r *repo) read() (map[string]domain.AttendanceRecord, bool, error) {
	records := make(map[string]domain.AttendanceRecord)

	f, err := os.Open(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return records, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("os.Open: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(transform.NewReader(f, unicode.BOMOverride(transform.Nop)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	head, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return records, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reader.Read header: %w", err)
	}
	columns, err := headerColumns(head)
	if err != nil {
		return nil, false, err
	}

	for line := 2; ; line++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, false, fmt.Errorf("reader.Read: %w", err)
		}

		subject, record, err := parseRecord(fields, columns)
		if err != nil {
			log.Warn().Str("file", r.path).Int("line", line).Msgf("skipping ledger row: %v", err)
			continue
		}
		records[subject] = record
	}

	return records, true, nil
}

func (r *repo) write(records map[string]domain.AttendanceRecord) error {
	subjects := make([]string, 0, len(records))
	for subject := range records {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("os.CreateTemp: %w", err)
	}
	defer os.Remove(tmp.Name())

	writer := csv.NewWriter(tmp)
	if err = writer.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("writer.Write header: %w", err)
	}
	for _, subject := range subjects {
		record := records[subject]
		err = writer.Write([]string{
			subject,
			strconv.Itoa(record.Present),
			strconv.Itoa(record.Absent),
		})
		if err != nil {
			tmp.Close()
			return fmt.Errorf("writer.Write: %w", err)
		}
	}
	writer.Flush()
	if err = writer.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("writer.Flush: %w", err)
	}

	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("tmp.Sync: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("tmp.Close: %w", err)
	}

	if err = os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("os.Rename: %w", err)
	}

	return nil
}

type columnIndex struct {
	subject, present, absent int
}

func headerColumns(head []string) (columnIndex, error) {
	idx := columnIndex{subject: -1, present: -1, absent: -1}
	for i, name := range head {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "subject":
			idx.subject = i
		case "present":
			idx.present = i
		case "absent":
			idx.absent = i
		}
	}
	if idx.subject < 0 || idx.present < 0 || idx.absent < 0 {
		return idx, fmt.Errorf("%w: ledger header %v", ierrors.ErrMalformedRow, head)
	}
	return idx, nil
}

func parseRecord(fields []string, idx columnIndex) (string, domain.AttendanceRecord, error) {
	if len(fields) <= idx.subject || len(fields) <= idx.present || len(fields) <= idx.absent {
		return "", domain.AttendanceRecord{}, fmt.Errorf("%w: %d fields", ierrors.ErrMalformedRow, len(fields))
	}

	subject := strings.TrimSpace(fields[idx.subject])
	if subject == "" {
		return "", domain.AttendanceRecord{}, fmt.Errorf("%w: empty subject", ierrors.ErrMalformedRow)
	}

	present, err := strconv.Atoi(strings.TrimSpace(fields[idx.present]))
	if err != nil || present < 0 {
		return "", domain.AttendanceRecord{}, fmt.Errorf("%w: present %q", ierrors.ErrMalformedRow, fields[idx.present])
	}
	absent, err := strconv.Atoi(strings.TrimSpace(fields[idx.absent]))
	if err != nil || absent < 0 {
		return "", domain.AttendanceRecord{}, fmt.Errorf("%w: absent %q", ierrors.ErrMalformedRow, fields[idx.absent])
	}

	return subject, domain.AttendanceRecord{Present: present, Absent: absent}, nil
}
