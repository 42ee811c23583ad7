package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configYAML = `
timetable:
  format: html
  location: https://example.org/timetable
calendar:
  path: data/calendar.csv
  date_layouts: ["2006-01-02", "02/01/2006"]
ledger:
  driver: sqlite
attendance:
  threshold: 80
  aggregation: lab_weighted
  subjects:
    - label: TCS-502
      multiplier: 2
    - label: Workshop
      category: lab
`

func TestNewConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o644))

	cfg, err := NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "html", cfg.Timetable.Format)
	assert.Equal(t, "table", cfg.Timetable.Selector)
	assert.Equal(t, 15*time.Second, cfg.Timetable.FetchTimeout)
	assert.Equal(t, []string{"2006-01-02", "02/01/2006"}, cfg.Calendar.DateLayouts)

	assert.Equal(t, "sqlite", cfg.Ledger.Driver)
	assert.Equal(t, "data/attendance.db", cfg.Ledger.SQLitePath)

	assert.Equal(t, 80, cfg.Attendance.Threshold)
	assert.Equal(t, 50, cfg.Attendance.WarningThreshold)
	assert.Equal(t, 2, cfg.Attendance.LabWeight)
	assert.True(t, cfg.Attendance.InferLabs)
	assert.Equal(t, []Subject{
		{Label: "TCS-502", Multiplier: 2},
		{Label: "Workshop", Category: "lab"},
	}, cfg.Attendance.Subjects)

	assert.Equal(t, time.Hour, cfg.Cache.DayTTL)
	assert.Equal(t, 10*time.Second, cfg.Telegram.LongPollerDelay)
}

func TestNewConfig_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o644))
	t.Setenv("ATTENDANCE_THRESHOLD", "60")
	t.Setenv("LEDGER_DRIVER", "csv")

	cfg, err := NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.Attendance.Threshold)
	assert.Equal(t, "csv", cfg.Ledger.Driver)
}

func TestNewConfig_MissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
