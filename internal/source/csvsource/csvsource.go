// Package csvsource reads the weekly timetable and the academic calendar
// from CSV files.
package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ilyadubrovsky/tracking-attendance/internal/domain"
	ierrors "github.com/ilyadubrovsky/tracking-attendance/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var DefaultDateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2-Jan-2006",
	"02-Jan-2006",
	"January 2, 2006",
}

type Timetable struct {
	path string
}

func NewTimetable(path string) *Timetable {
	return &Timetable{path: path}
}

func (t *Timetable) Timetable(_ context.Context) (*domain.TimetableGrid, error) {
	f, err := openInput(t.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	grid, skipped, err := ParseTimetable(f)
	if err != nil {
		return nil, fmt.Errorf("ParseTimetable(%s): %w", t.path, err)
	}

	log.Info().
		Str("file", t.path).
		Int("rows", len(grid.Rows)).
		Int("skipped", skipped).
		Msg("timetable loaded")

	return grid, nil
}

type Calendar struct {
	path    string
	layouts []string
}

func NewCalendar(path string, layouts []string) *Calendar {
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}
	return &Calendar{path: path, layouts: layouts}
}

func (c *Calendar) Calendar(_ context.Context) (*domain.TeachingCalendar, error) {
	f, err := openInput(c.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cal, skipped, err := ParseCalendar(f, c.layouts)
	if err != nil {
		return nil, fmt.Errorf("ParseCalendar(%s): %w", c.path, err)
	}

	log.Info().
		Str("file", c.path).
		Int("days", len(cal.Days)).
		Int("skipped", skipped).
		Msg("academic calendar loaded")

	return cal, nil
}

func openInput(path string) (*os.File, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ierrors.ErrMissingInputData, path)
	}
	if err != nil {
		return nil, fmt.Errorf("os.Open: %w", err)
	}
	return f, nil
}

// newReader drops a leading byte order mark, as left by spreadsheet exports.
func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(transform.Nop)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader
}

// ParseTimetable reads a grid whose first column is the weekday and whose
// remaining columns are the periods. Rows without a weekday are skipped and
// counted, short rows are padded with breaks.
func ParseTimetable(r io.Reader) (*domain.TimetableGrid, int, error) {
	reader := newReader(r)

	head, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, fmt.Errorf("%w: empty timetable", ierrors.ErrMissingInputData)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("reader.Read header: %w", err)
	}
	if len(head) < 2 {
		return nil, 0, fmt.Errorf("%w: timetable needs a weekday column and at least one period", ierrors.ErrMissingInputData)
	}

	grid := &domain.TimetableGrid{Periods: trimAll(head[1:])}
	skipped := 0
	for line := 2; ; line++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, skipped, fmt.Errorf("reader.Read: %w", err)
		}

		row, err := timetableRow(fields, len(grid.Periods))
		if err != nil {
			log.Warn().Int("line", line).Msgf("skipping timetable row: %v", err)
			skipped++
			continue
		}
		grid.Rows = append(grid.Rows, row)
	}

	return grid, skipped, nil
}

func timetableRow(fields []string, periods int) (domain.TimetableRow, error) {
	if len(fields) == 0 || strings.TrimSpace(fields[0]) == "" {
		return domain.TimetableRow{}, fmt.Errorf("%w: no weekday", ierrors.ErrMalformedRow)
	}

	cells := make([]string, periods)
	copy(cells, trimAll(fields[1:]))

	return domain.TimetableRow{
		Weekday: domain.CanonicalWeekday(fields[0]),
		Cells:   cells,
	}, nil
}

// ParseCalendar reads the Date, Day and Activity columns, in any order.
// Rows with an unparsable date or no weekday are skipped and counted.
func ParseCalendar(r io.Reader, layouts []string) (*domain.TeachingCalendar, int, error) {
	reader := newReader(r)

	head, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, fmt.Errorf("%w: empty calendar", ierrors.ErrMissingInputData)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("reader.Read header: %w", err)
	}

	dateIdx, dayIdx, activityIdx := -1, -1, -1
	for i, name := range head {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date":
			dateIdx = i
		case "day":
			dayIdx = i
		case "activity":
			activityIdx = i
		}
	}
	if dateIdx < 0 || dayIdx < 0 || activityIdx < 0 {
		return nil, 0, fmt.Errorf("%w: calendar header must contain Date, Day and Activity, got %v",
			ierrors.ErrMissingInputData, head)
	}

	cal := &domain.TeachingCalendar{}
	skipped := 0
	for line := 2; ; line++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, skipped, fmt.Errorf("reader.Read: %w", err)
		}

		day, err := calendarDay(fields, dateIdx, dayIdx, activityIdx, layouts)
		if err != nil {
			log.Warn().Int("line", line).Msgf("skipping calendar row: %v", err)
			skipped++
			continue
		}
		cal.Days = append(cal.Days, day)
	}

	return cal, skipped, nil
}

func calendarDay(fields []string, dateIdx, dayIdx, activityIdx int, layouts []string) (domain.CalendarDay, error) {
	field := func(i int) string {
		if i < len(fields) {
			return strings.TrimSpace(fields[i])
		}
		return ""
	}

	rawDate, weekday := field(dateIdx), field(dayIdx)
	if rawDate == "" || weekday == "" {
		return domain.CalendarDay{}, fmt.Errorf("%w: date %q, day %q", ierrors.ErrMalformedRow, rawDate, weekday)
	}

	date, err := parseDate(rawDate, layouts)
	if err != nil {
		return domain.CalendarDay{}, fmt.Errorf("%w: %v", ierrors.ErrMalformedRow, err)
	}

	return domain.CalendarDay{
		Date:     date,
		Weekday:  domain.CanonicalWeekday(weekday),
		Activity: field(activityIdx),
	}, nil
}

func parseDate(s string, layouts []string) (time.Time, error) {
	for _, layout := range layouts {
		if date, err := time.Parse(layout, s); err == nil {
			return date, nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q matches none of %v", s, layouts)
}

func trimAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
