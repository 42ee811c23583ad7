package tracker

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ilyadubrovsky/tracking-attendance/internal/aggregate"
	"github.com/ilyadubrovsky/tracking-attendance/internal/domain"
	ierrors "github.com/ilyadubrovsky/tracking-attendance/internal/errors"
	"github.com/ilyadubrovsky/tracking-attendance/internal/schedule"
	"github.com/ilyadubrovsky/tracking-attendance/internal/service"
	"github.com/ilyadubrovsky/tracking-attendance/internal/threshold"
	"github.com/jellydator/ttlcache/v3"
	"github.com/rs/zerolog/log"
)

const dayKeyLayout = "2006-01-02"

// Tracker is the session context: the derived schedule, the ledger and the
// arithmetic configured for this deployment.
type Tracker struct {
	schedule    *schedule.Schedule
	ledger      service.Ledger
	calculator  *threshold.Calculator
	aggregator  *aggregate.Aggregator
	dayCache    *ttlcache.Cache[string, domain.DaySchedule]
	dateLayouts []string
	now         func() time.Time
}

func New(
	sched *schedule.Schedule,
	ledger service.Ledger,
	calculator *threshold.Calculator,
	aggregator *aggregate.Aggregator,
	dayCache *ttlcache.Cache[string, domain.DaySchedule],
	dateLayouts []string,
) *Tracker {
	return &Tracker{
		schedule:    sched,
		ledger:      ledger,
		calculator:  calculator,
		aggregator:  aggregator,
		dayCache:    dayCache,
		dateLayouts: dateLayouts,
		now:         time.Now,
	}
}

func (t *Tracker) Subjects() []string {
	return t.schedule.Subjects()
}

func (t *Tracker) Threshold() int {
	return t.calculator.Threshold
}

func (t *Tracker) TotalExpected(subject string) (int, error) {
	total, ok := t.schedule.Total(subject)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ierrors.ErrUnknownSubject, subject)
	}
	return total, nil
}

func (t *Tracker) Record(subject string) (domain.AttendanceRecord, error) {
	return t.ledger.Record(subject)
}

func (t *Tracker) triple(subject string) (domain.Triple, error) {
	total, err := t.TotalExpected(subject)
	if err != nil {
		return domain.Triple{}, err
	}
	record, err := t.ledger.Record(subject)
	if err != nil {
		return domain.Triple{}, fmt.Errorf("ledger.Record: %w", err)
	}

	return domain.Triple{
		Present: record.Present,
		Absent:  record.Absent,
		Total:   total,
	}, nil
}

func (t *Tracker) Percentage(subject string) (float64, error) {
	tr, err := t.triple(subject)
	if err != nil {
		return 0, err
	}
	return t.calculator.Percentage(tr), nil
}

func (t *Tracker) MissBudget(subject string) (int, error) {
	tr, err := t.triple(subject)
	if err != nil {
		return 0, err
	}
	return t.calculator.MaxAdditionalMissable(tr), nil
}

func (t *Tracker) NeedToReach(subject string) (domain.Need, error) {
	tr, err := t.triple(subject)
	if err != nil {
		return domain.Need{}, err
	}
	return t.calculator.MinAdditionalNeeded(tr), nil
}

func (t *Tracker) Summary(subject string) (domain.SubjectSummary, error) {
	tr, err := t.triple(subject)
	if err != nil {
		return domain.SubjectSummary{}, err
	}
	cl, _ := t.schedule.Classification(subject)

	return domain.SubjectSummary{
		Subject:        subject,
		Classification: cl,
		Summary:        t.calculator.Summarize(tr),
	}, nil
}

// Summaries evaluates every subject in universe order.
func (t *Tracker) Summaries() []domain.SubjectSummary {
	subjects := t.schedule.Subjects()
	summaries := make([]domain.SubjectSummary, 0, len(subjects))
	for _, subject := range subjects {
		summary, err := t.Summary(subject)
		if err != nil {
			log.Error().Str("subject", subject).Msgf("Summaries: %v", err)
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// Overall folds every subject with the configured aggregation mode.
func (t *Tracker) Overall() domain.Summary {
	entries := make([]aggregate.Entry, 0)
	for _, subject := range t.schedule.Subjects() {
		tr, err := t.triple(subject)
		if err != nil {
			log.Error().Str("subject", subject).Msgf("Overall: %v", err)
			continue
		}
		cl, _ := t.schedule.Classification(subject)
		entries = append(entries, aggregate.Entry{Classification: cl, Triple: tr})
	}

	return t.calculator.Summarize(t.aggregator.Overall(entries))
}

func (t *Tracker) Day(date time.Time) domain.DaySchedule {
	key := date.Format(dayKeyLayout)
	if item := t.dayCache.Get(key); item != nil {
		return copyDay(item.Value())
	}

	day := t.schedule.Day(date)
	t.dayCache.Set(key, day, ttlcache.DefaultTTL)

	return copyDay(day)
}

func copyDay(day domain.DaySchedule) domain.DaySchedule {
	if day.Subjects != nil {
		subjects := make([]string, len(day.Subjects))
		copy(subjects, day.Subjects)
		day.Subjects = subjects
	}
	return day
}

// ParseDate accepts the calendar date layouts and the words today,
// yesterday and tomorrow.
func (t *Tracker) ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	y, m, d := t.now().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	switch strings.ToLower(s) {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	}

	for _, layout := range t.dateLayouts {
		if date, err := time.Parse(layout, s); err == nil {
			return date, nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q matches none of %v", s, t.dateLayouts)
}

func (t *Tracker) Refresh(ctx context.Context) error {
	return t.ledger.Refresh(ctx)
}

func (t *Tracker) RecordPresent(ctx context.Context, subject string) (domain.MarkResult, error) {
	return t.ledger.RecordPresent(ctx, subject)
}

func (t *Tracker) RecordAbsent(ctx context.Context, subject string) (domain.MarkResult, error) {
	return t.ledger.RecordAbsent(ctx, subject)
}

func (t *Tracker) BulkMark(ctx context.Context, subjects []string, mark domain.Mark) ([]domain.MarkResult, error) {
	return t.ledger.BulkMark(ctx, subjects, mark)
}

// MarkDay marks every distinct subject scheduled on the date. Nothing is
// marked unless the date is a teaching day with classes.
func (t *Tracker) MarkDay(ctx context.Context, date time.Time, mark domain.Mark) (domain.DaySchedule, []domain.MarkResult, error) {
	day := t.Day(date)
	if day.Status != domain.DayTeaching {
		return day, nil, nil
	}

	seen := make(map[string]struct{}, len(day.Subjects))
	subjects := make([]string, 0, len(day.Subjects))
	for _, subject := range day.Subjects {
		if _, ok := seen[subject]; ok {
			continue
		}
		seen[subject] = struct{}{}
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)

	results, err := t.ledger.BulkMark(ctx, subjects, mark)
	if err != nil {
		return day, nil, fmt.Errorf("ledger.BulkMark: %w", err)
	}

	return day, results, nil
}

func (t *Tracker) ResetAll(ctx context.Context) (map[string]domain.AttendanceRecord, error) {
	return t.ledger.ResetAll(ctx)
}
