package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/ilyadubrovsky/tracking-attendance/internal/aggregate"
	"github.com/ilyadubrovsky/tracking-attendance/internal/config"
	"github.com/ilyadubrovsky/tracking-attendance/internal/database/pg"
	"github.com/ilyadubrovsky/tracking-attendance/internal/database/sqlite"
	"github.com/ilyadubrovsky/tracking-attendance/internal/domain"
	ierrors "github.com/ilyadubrovsky/tracking-attendance/internal/errors"
	"github.com/ilyadubrovsky/tracking-attendance/internal/repository"
	"github.com/ilyadubrovsky/tracking-attendance/internal/repository/attendance_csv"
	"github.com/ilyadubrovsky/tracking-attendance/internal/repository/attendance_records"
	"github.com/ilyadubrovsky/tracking-attendance/internal/repository/attendance_sqlite"
	"github.com/ilyadubrovsky/tracking-attendance/internal/schedule"
	"github.com/ilyadubrovsky/tracking-attendance/internal/service"
	"github.com/ilyadubrovsky/tracking-attendance/internal/service/ledger"
	"github.com/ilyadubrovsky/tracking-attendance/internal/service/telegram"
	"github.com/ilyadubrovsky/tracking-attendance/internal/service/tracker"
	"github.com/ilyadubrovsky/tracking-attendance/internal/source"
	"github.com/ilyadubrovsky/tracking-attendance/internal/source/csvsource"
	"github.com/ilyadubrovsky/tracking-attendance/internal/source/htmlsource"
	"github.com/ilyadubrovsky/tracking-attendance/internal/threshold"
	"github.com/ilyadubrovsky/tracking-attendance/pkg/httpclient"
	"github.com/jellydator/ttlcache/v3"
	"github.com/rs/zerolog/log"
)

const (
	DriverCSV      = "csv"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	FormatCSV  = "csv"
	FormatHTML = "html"
)

type App struct {
	cfg      *config.Config
	tracker  *tracker.Tracker
	dayCache *ttlcache.Cache[string, domain.DaySchedule]
	closers  []func()
}

// New derives the schedule, opens the ledger store and assembles the
// tracker. Close releases everything New opened.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	sched, err := a.deriveSchedule(ctx)
	if err != nil {
		return nil, fmt.Errorf("deriveSchedule: %w", err)
	}

	store, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("openStore: %w", err)
	}

	ledgerSvc, err := ledger.NewService(ctx, store, sched.Subjects(), sched.Totals())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("ledger.NewService: %w", err)
	}

	calculator, err := threshold.NewCalculator(cfg.Attendance.Threshold, cfg.Attendance.WarningThreshold)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("threshold.NewCalculator: %w", err)
	}

	mode, err := aggregate.ParseMode(cfg.Attendance.Aggregation)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("aggregate.ParseMode: %w", err)
	}

	a.dayCache = ttlcache.New[string, domain.DaySchedule](
		ttlcache.WithTTL[string, domain.DaySchedule](cfg.Cache.DayTTL),
	)
	go a.dayCache.Start()
	a.closers = append(a.closers, a.dayCache.Stop)

	a.tracker = tracker.New(
		sched,
		ledgerSvc,
		calculator,
		aggregate.New(mode, cfg.Attendance.LabWeight),
		a.dayCache,
		a.dateLayouts(),
	)

	log.Info().
		Int("subjects", len(sched.Subjects())).
		Str("driver", cfg.Ledger.Driver).
		Str("aggregation", string(mode)).
		Msg("tracker initialized")

	return a, nil
}

func (a *App) Tracker() service.Tracker {
	return a.tracker
}

func (a *App) dateLayouts() []string {
	if len(a.cfg.Calendar.DateLayouts) == 0 {
		return csvsource.DefaultDateLayouts
	}
	return a.cfg.Calendar.DateLayouts
}

func (a *App) deriveSchedule(ctx context.Context) (*schedule.Schedule, error) {
	timetableSource, err := a.timetableSource()
	if err != nil {
		return nil, err
	}

	grid, err := timetableSource.Timetable(ctx)
	if err != nil {
		return nil, fmt.Errorf("Timetable: %w", err)
	}

	var calendarSource source.Calendar = csvsource.NewCalendar(a.cfg.Calendar.Path, a.dateLayouts())
	calendar, err := calendarSource.Calendar(ctx)
	if err != nil {
		return nil, fmt.Errorf("Calendar: %w", err)
	}

	classifier, err := newClassifier(a.cfg.Attendance)
	if err != nil {
		return nil, fmt.Errorf("newClassifier: %w", err)
	}

	return schedule.Derive(grid, calendar, classifier), nil
}

func (a *App) timetableSource() (source.Timetable, error) {
	cfg := a.cfg.Timetable
	switch strings.ToLower(cfg.Format) {
	case FormatCSV:
		return csvsource.NewTimetable(cfg.Location), nil
	case FormatHTML:
		return htmlsource.NewTimetable(cfg.Location, cfg.Selector, httpclient.NewClient(cfg.FetchTimeout)), nil
	}
	return nil, fmt.Errorf("%w: %s", ierrors.ErrUnsupportedFormat, cfg.Format)
}

func (a *App) openStore(ctx context.Context) (repository.AttendanceRecords, error) {
	cfg := a.cfg.Ledger
	switch strings.ToLower(cfg.Driver) {
	case DriverCSV:
		return attendance_csv.NewRepository(cfg.CSVPath), nil
	case DriverSQLite:
		db, err := sqlite.New(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite.New: %w", err)
		}
		a.closers = append(a.closers, func() { db.Close() })

		repo := attendance_sqlite.NewRepository(db)
		if err = repo.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("attendance_sqlite.Migrate: %w", err)
		}
		return repo, nil
	case DriverPostgres:
		db, err := pg.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("pg.New: %w", err)
		}
		a.closers = append(a.closers, db.Close)

		repo := attendance_records.NewRepository(db)
		if err = repo.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("attendance_records.Migrate: %w", err)
		}
		return repo, nil
	}
	return nil, fmt.Errorf("%w: %s", ierrors.ErrUnsupportedDriver, cfg.Driver)
}

func newClassifier(cfg config.Attendance) (domain.Classifier, error) {
	classifier := domain.Classifier{
		Subjects:  make(map[string]domain.Classification, len(cfg.Subjects)),
		InferLabs: cfg.InferLabs,
	}
	for _, subject := range cfg.Subjects {
		// an empty category leaves the label to inference
		var category domain.Category
		if subject.Category != "" {
			parsed, err := domain.ParseCategory(subject.Category)
			if err != nil {
				return domain.Classifier{}, fmt.Errorf("subject %q: %w", subject.Label, err)
			}
			category = parsed
		}
		classifier.Subjects[subject.Label] = domain.Classification{
			Category:   category,
			Multiplier: subject.Multiplier,
		}
	}
	return classifier, nil
}

// RunBot serves the Telegram bot until ctx is done.
func (a *App) RunBot(ctx context.Context) error {
	var bot service.Telegram
	bot, err := telegram.NewService(a.tracker, a.cfg.Telegram)
	if err != nil {
		return fmt.Errorf("telegram.NewService: %w", err)
	}

	go bot.Start()
	log.Info().Msg("telegram bot started")

	<-ctx.Done()
	bot.Stop()
	log.Info().Msg("telegram bot stopped")

	return nil
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
