package csvsource

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilyadubrovsky/tracking-attendance/internal/domain"
	ierrors "github.com/ilyadubrovsky/tracking-attendance/internal/errors"
)

const timetableCSV = `Day,9:00,10:00,11:00,12:00
Monday,Maths,Physics Lab,Physics Lab,Break
Tuesday, Chemistry ,,Maths
,Ghost,Ghost,Ghost,Ghost
wed,History,History,History,History
`

func TestParseTimetable(t *testing.T) {
	grid, skipped, err := ParseTimetable(strings.NewReader(timetableCSV))
	require.NoError(t, err)

	assert.Equal(t, 1, skipped)
	assert.Equal(t, []string{"9:00", "10:00", "11:00", "12:00"}, grid.Periods)
	require.Len(t, grid.Rows, 3)

	assert.Equal(t, "Monday", grid.Rows[0].Weekday)
	assert.Equal(t, []string{"Maths", "Physics Lab", "Physics Lab", "Break"}, grid.Rows[0].Cells)

	assert.Equal(t, "Tuesday", grid.Rows[1].Weekday)
	assert.Equal(t, []string{"Chemistry", "", "Maths", ""}, grid.Rows[1].Cells, "short rows are padded")

	assert.Equal(t, "Wednesday", grid.Rows[2].Weekday)
}

func TestParseTimetable_Empty(t *testing.T) {
	_, _, err := ParseTimetable(strings.NewReader(""))
	assert.ErrorIs(t, err, ierrors.ErrMissingInputData)

	_, _, err = ParseTimetable(strings.NewReader("Day\n"))
	assert.ErrorIs(t, err, ierrors.ErrMissingInputData)
}

const calendarCSV = `Activity,Date,Day
,2024-01-01,Monday
Republic Day,2024-01-26,Friday
,not-a-date,Tuesday
,2024-01-03,
,02/01/2024,tue
`

func TestParseCalendar(t *testing.T) {
	cal, skipped, err := ParseCalendar(strings.NewReader(calendarCSV), DefaultDateLayouts)
	require.NoError(t, err)

	assert.Equal(t, 2, skipped)
	require.Len(t, cal.Days, 3)

	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), cal.Days[0].Date)
	assert.True(t, cal.Days[0].IsTeachingDay())

	assert.Equal(t, "Republic Day", cal.Days[1].Activity)
	assert.False(t, cal.Days[1].IsTeachingDay())

	assert.Equal(t, time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC), cal.Days[2].Date)
	assert.Equal(t, "Tuesday", cal.Days[2].Weekday)

	assert.Equal(t, domain.WeekdayCounts{"Monday": 1, "Tuesday": 1}, cal.WeekdayCounts())
}

func TestParseCalendar_MissingColumns(t *testing.T) {
	_, _, err := ParseCalendar(strings.NewReader("Date,Day\n2024-01-01,Monday\n"), DefaultDateLayouts)
	assert.ErrorIs(t, err, ierrors.ErrMissingInputData)
}

func TestSources_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	_, err := NewTimetable(filepath.Join(dir, "timetable.csv")).Timetable(ctx)
	assert.ErrorIs(t, err, ierrors.ErrMissingInputData)

	_, err = NewCalendar(filepath.Join(dir, "academic_calendar.csv"), nil).Calendar(ctx)
	assert.ErrorIs(t, err, ierrors.ErrMissingInputData)
}

func TestSources_ReadFiles(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	timetablePath := filepath.Join(dir, "timetable.csv")
	calendarPath := filepath.Join(dir, "academic_calendar.csv")
	require.NoError(t, os.WriteFile(timetablePath, []byte(timetableCSV), 0o644))
	require.NoError(t, os.WriteFile(calendarPath, []byte(calendarCSV), 0o644))

	grid, err := NewTimetable(timetablePath).Timetable(ctx)
	require.NoError(t, err)
	assert.Len(t, grid.Rows, 3)

	calendar := NewCalendar(calendarPath, nil)
	cal, err := calendar.Calendar(ctx)
	require.NoError(t, err)
	assert.Len(t, cal.Days, 3)
	assert.Equal(t, time.Date(2024, time.January, 26, 0, 0, 0, 0, time.UTC), cal.Days[1].Date)
}

func TestParseCalendar_ByteOrderMark(t *testing.T) {
	cal, skipped, err := ParseCalendar(strings.NewReader("\ufeffDate,Day,Activity\n2024-01-01,Monday,\n"), DefaultDateLayouts)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, cal.Days, 1)
	assert.Equal(t, "Monday", cal.Days[0].Weekday)
}

func TestParseTimetable_ByteOrderMark(t *testing.T) {
	grid, _, err := ParseTimetable(strings.NewReader("\ufeffDay,9:00\nMonday,Maths\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"9:00"}, grid.Periods)
	require.Len(t, grid.Rows, 1)
	assert.Equal(t, []string{"Maths"}, grid.Rows[0].Cells)
}
