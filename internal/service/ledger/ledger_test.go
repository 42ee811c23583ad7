package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilyadubrovsky/tracking-attendance/internal/domain"
	ierrors "github.com/ilyadubrovsky/tracking-attendance/internal/errors"
	"github.com/ilyadubrovsky/tracking-attendance/internal/repository/attendance_csv"
)

type memoryRepo struct {
	records  map[string]domain.AttendanceRecord
	found    bool
	writes   int
	failNext error
}

func (m *memoryRepo) Load(context.Context) (map[string]domain.AttendanceRecord, bool, error) {
	return copyRecords(m.records), m.found, nil
}

func (m *memoryRepo) Update(_ context.Context, fn func(map[string]domain.AttendanceRecord) error) error {
	records := copyRecords(m.records)
	if err := fn(records); err != nil {
		return err
	}
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	m.records = records
	m.found = true
	m.writes++
	return nil
}

var capacity = map[string]int{
	"Chem Lab": 2,
	"Maths":    3,
	"Zero":     0,
}

func subjects() []string {
	return []string{"Chem Lab", "Maths", "Zero"}
}

func newLedger(t *testing.T, repo *memoryRepo) *svc {
	t.Helper()
	s, err := NewService(context.Background(), repo, subjects(), capacity)
	require.NoError(t, err)
	return s
}

func TestNewService_InitializesMissingStore(t *testing.T) {
	repo := &memoryRepo{}
	s := newLedger(t, repo)

	assert.Equal(t, 1, repo.writes)
	assert.Equal(t, map[string]domain.AttendanceRecord{
		"Chem Lab": {}, "Maths": {}, "Zero": {},
	}, repo.records)
	assert.Equal(t, repo.records, s.Records())
}

func TestNewService_KeysByUniverse(t *testing.T) {
	repo := &memoryRepo{
		found: true,
		records: map[string]domain.AttendanceRecord{
			"Maths":   {Present: 1, Absent: 1},
			"Dropped": {Present: 7},
		},
	}
	s := newLedger(t, repo)

	assert.Equal(t, 0, repo.writes)
	assert.Equal(t, map[string]domain.AttendanceRecord{
		"Chem Lab": {}, "Maths": {Present: 1, Absent: 1}, "Zero": {},
	}, s.Records())
}

func TestRecordPresent_CapsAtCapacity(t *testing.T) {
	repo := &memoryRepo{}
	s := newLedger(t, repo)
	ctx := context.Background()

	res, err := s.RecordPresent(ctx, "Chem Lab")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCommitted, res.Outcome)
	assert.Equal(t, domain.AttendanceRecord{Present: 1}, res.Record)

	res, err = s.RecordAbsent(ctx, "Chem Lab")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCommitted, res.Outcome)
	assert.Equal(t, domain.AttendanceRecord{Present: 1, Absent: 1}, res.Record)

	writes := repo.writes
	res, err = s.RecordPresent(ctx, "Chem Lab")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCapacityExceeded, res.Outcome)
	assert.Equal(t, domain.AttendanceRecord{Present: 1, Absent: 1}, res.Record)
	assert.Equal(t, writes, repo.writes, "no-op must not rewrite the store")

	res, err = s.RecordAbsent(ctx, "Zero")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCapacityExceeded, res.Outcome)
}

func TestRecordPresent_UnknownSubject(t *testing.T) {
	s := newLedger(t, &memoryRepo{})

	_, err := s.RecordPresent(context.Background(), "Astrology")
	assert.ErrorIs(t, err, ierrors.ErrUnknownSubject)

	_, err = s.Record("Astrology")
	assert.ErrorIs(t, err, ierrors.ErrUnknownSubject)
}

func TestBulkMark_PartialApplication(t *testing.T) {
	repo := &memoryRepo{}
	s := newLedger(t, repo)
	ctx := context.Background()

	_, err := s.BulkMark(ctx, []string{"Chem Lab", "Chem Lab"}, domain.MarkPresent)
	require.NoError(t, err)

	writes := repo.writes
	results, err := s.BulkMark(ctx, []string{"Chem Lab", "Maths", "Zero"}, domain.MarkAbsent)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, domain.OutcomeCapacityExceeded, results[0].Outcome)
	assert.Equal(t, domain.OutcomeCommitted, results[1].Outcome)
	assert.Equal(t, domain.AttendanceRecord{Absent: 1}, results[1].Record)
	assert.Equal(t, domain.OutcomeCapacityExceeded, results[2].Outcome)
	assert.Equal(t, writes+1, repo.writes, "one write per batch")
}

func TestBulkMark_UnknownSubjectAbortsBeforeWriting(t *testing.T) {
	repo := &memoryRepo{}
	s := newLedger(t, repo)
	writes := repo.writes

	_, err := s.BulkMark(context.Background(), []string{"Maths", "Astrology"}, domain.MarkPresent)
	assert.ErrorIs(t, err, ierrors.ErrUnknownSubject)
	assert.Equal(t, writes, repo.writes)

	rec, err := s.Record("Maths")
	require.NoError(t, err)
	assert.Equal(t, domain.AttendanceRecord{}, rec)
}

func TestMutation_FailedWriteKeepsSnapshot(t *testing.T) {
	repo := &memoryRepo{}
	s := newLedger(t, repo)

	repo.failNext = errors.New("disk full")
	_, err := s.RecordPresent(context.Background(), "Maths")
	require.Error(t, err)

	rec, err := s.Record("Maths")
	require.NoError(t, err)
	assert.Equal(t, domain.AttendanceRecord{}, rec)
}

func TestResetAll(t *testing.T) {
	repo := &memoryRepo{}
	s := newLedger(t, repo)
	ctx := context.Background()

	_, err := s.RecordPresent(ctx, "Maths")
	require.NoError(t, err)
	_, err = s.RecordAbsent(ctx, "Chem Lab")
	require.NoError(t, err)

	records, err := s.ResetAll(ctx)
	require.NoError(t, err)
	for _, subject := range subjects() {
		assert.Equal(t, domain.AttendanceRecord{}, records[subject], subject)
		assert.Equal(t, domain.AttendanceRecord{}, repo.records[subject], subject)
	}
}

func TestLedger_CSVStoreAcrossSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance_data.csv")
	ctx := context.Background()

	first, err := NewService(ctx, attendance_csv.NewRepository(path), subjects(), capacity)
	require.NoError(t, err)
	second, err := NewService(ctx, attendance_csv.NewRepository(path), subjects(), capacity)
	require.NoError(t, err)

	_, err = first.RecordPresent(ctx, "Maths")
	require.NoError(t, err)
	res, err := second.RecordPresent(ctx, "Maths")
	require.NoError(t, err)
	assert.Equal(t, domain.AttendanceRecord{Present: 2}, res.Record, "second session sees the first write")

	require.NoError(t, first.Refresh(ctx))
	rec, err := first.Record("Maths")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Present)
}
