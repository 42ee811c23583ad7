package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ilyadubrovsky/tracking-attendance/internal/domain"
	ierrors "github.com/ilyadubrovsky/tracking-attendance/internal/errors"
	"github.com/ilyadubrovsky/tracking-attendance/internal/repository"
	"github.com/rs/zerolog/log"
)

// errUnchanged aborts a store update that would rewrite identical data.
var errUnchanged = errors.New("ledger unchanged")

type svc struct {
	mu       sync.Mutex
	repo     repository.AttendanceRecords
	subjects []string
	capacity map[string]int
	records  map[string]domain.AttendanceRecord
}

// NewService loads the ledger for the subject universe. capacity holds the
// expected class total of every subject. A store that was never written is
// initialised with zero records.
func NewService(
	ctx context.Context,
	repo repository.AttendanceRecords,
	subjects []string,
	capacity map[string]int,
) (*svc, error) {
	s := &svc{
		repo:     repo,
		subjects: subjects,
		capacity: capacity,
	}

	records, found, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo.Load: %w", err)
	}

	if !found {
		log.Info().Int("subjects", len(subjects)).Msg("initializing attendance ledger")
		err = repo.Update(ctx, func(stored map[string]domain.AttendanceRecord) error {
			s.normalize(stored)
			records = copyRecords(stored)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("repo.Update: %w", err)
		}
	}

	s.normalize(records)
	for _, subject := range subjects {
		if rec := records[subject]; rec.Counted() > capacity[subject] {
			log.Warn().
				Str("subject", subject).
				Int("counted", rec.Counted()).
				Int("capacity", capacity[subject]).
				Msg("stored record exceeds expected classes")
		}
	}
	s.records = records

	return s, nil
}

// normalize keys records exactly by the subject universe.
func (s *svc) normalize(records map[string]domain.AttendanceRecord) {
	known := make(map[string]struct{}, len(s.subjects))
	for _, subject := range s.subjects {
		known[subject] = struct{}{}
		if _, ok := records[subject]; !ok {
			records[subject] = domain.AttendanceRecord{}
		}
	}
	for subject := range records {
		if _, ok := known[subject]; !ok {
			delete(records, subject)
		}
	}
}

func (s *svc) Subjects() []string {
	subjects := make([]string, len(s.subjects))
	copy(subjects, s.subjects)
	return subjects
}

func (s *svc) Record(subject string) (domain.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[subject]
	if !ok {
		return domain.AttendanceRecord{}, fmt.Errorf("%w: %q", ierrors.ErrUnknownSubject, subject)
	}
	return record, nil
}

func (s *svc) Records() map[string]domain.AttendanceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return copyRecords(s.records)
}

// Refresh reloads the snapshot from the store, picking up writes made by
// other sessions.
func (s *svc) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, _, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("repo.Load: %w", err)
	}
	s.normalize(records)
	s.records = records

	return nil
}

func (s *svc) RecordPresent(ctx context.Context, subject string) (domain.MarkResult, error) {
	return s.mark(ctx, subject, domain.MarkPresent)
}

func (s *svc) RecordAbsent(ctx context.Context, subject string) (domain.MarkResult, error) {
	return s.mark(ctx, subject, domain.MarkAbsent)
}

func (s *svc) mark(ctx context.Context, subject string, mark domain.Mark) (domain.MarkResult, error) {
	results, err := s.BulkMark(ctx, []string{subject}, mark)
	if err != nil {
		return domain.MarkResult{}, err
	}
	return results[0], nil
}

// BulkMark applies the capped increment to every listed subject. Subjects
// already at capacity are reported and skipped, the rest of the batch is
// still applied and written once.
func (s *svc) BulkMark(ctx context.Context, subjects []string, mark domain.Mark) ([]domain.MarkResult, error) {
	for _, subject := range subjects {
		if _, ok := s.capacity[subject]; !ok {
			return nil, fmt.Errorf("%w: %q", ierrors.ErrUnknownSubject, subject)
		}
	}

	var results []domain.MarkResult
	err := s.mutate(ctx, func(records map[string]domain.AttendanceRecord) bool {
		results = make([]domain.MarkResult, 0, len(subjects))
		changed := false
		for _, subject := range subjects {
			record := records[subject]
			outcome := domain.OutcomeCapacityExceeded
			if record.Counted() < s.capacity[subject] {
				switch mark {
				case domain.MarkPresent:
					record.Present++
				case domain.MarkAbsent:
					record.Absent++
				}
				records[subject] = record
				outcome = domain.OutcomeCommitted
				changed = true
			}
			results = append(results, domain.MarkResult{
				Subject: subject,
				Record:  record,
				Outcome: outcome,
			})
		}
		return changed
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}

// ResetAll sets every record to zero and returns the new snapshot.
func (s *svc) ResetAll(ctx context.Context) (map[string]domain.AttendanceRecord, error) {
	err := s.mutate(ctx, func(records map[string]domain.AttendanceRecord) bool {
		for subject := range records {
			records[subject] = domain.AttendanceRecord{}
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	return s.Records(), nil
}

// mutate runs fn as one read-modify-write-persist unit. fn reports whether
// it changed anything. The snapshot is replaced only after the store
// accepted the write.
func (s *svc) mutate(ctx context.Context, fn func(records map[string]domain.AttendanceRecord) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next map[string]domain.AttendanceRecord
	err := s.repo.Update(ctx, func(stored map[string]domain.AttendanceRecord) error {
		s.normalize(stored)
		changed := fn(stored)
		next = copyRecords(stored)
		if !changed {
			return errUnchanged
		}
		return nil
	})
	if err != nil && !errors.Is(err, errUnchanged) {
		return fmt.Errorf("repo.Update: %w", err)
	}

	s.records = next
	return nil
}

func copyRecords(records map[string]domain.AttendanceRecord) map[string]domain.AttendanceRecord {
	cp := make(map[string]domain.AttendanceRecord, len(records))
	for subject, record := range records {
		cp[subject] = record
	}
	return cp
}
