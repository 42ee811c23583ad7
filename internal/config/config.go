package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const DefaultPath = "configs/config.yml"

type Config struct {
	Log        Log        `yaml:"log"`
	Timetable  Timetable  `yaml:"timetable"`
	Calendar   Calendar   `yaml:"calendar"`
	Ledger     Ledger     `yaml:"ledger"`
	Attendance Attendance `yaml:"attendance"`
	Cache      Cache      `yaml:"cache"`
	Telegram   Telegram   `yaml:"telegram"`
}

type Log struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Pretty bool   `yaml:"pretty" env:"LOG_PRETTY" env-default:"false"`
}

type Timetable struct {
	// Format is csv or html.
	Format string `yaml:"format" env:"TIMETABLE_FORMAT" env-default:"csv"`
	// Location is a file path, or an http(s) URL for the html format.
	Location     string        `yaml:"location" env:"TIMETABLE_LOCATION" env-default:"data/timetable.csv"`
	Selector     string        `yaml:"selector" env:"TIMETABLE_SELECTOR" env-default:"table"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"TIMETABLE_FETCH_TIMEOUT" env-default:"15s"`
}

type Calendar struct {
	Path        string   `yaml:"path" env:"CALENDAR_PATH" env-default:"data/academic_calendar.csv"`
	DateLayouts []string `yaml:"date_layouts" env:"CALENDAR_DATE_LAYOUTS" env-separator:";"`
}

type Ledger struct {
	// Driver is csv, sqlite or postgres.
	Driver      string `yaml:"driver" env:"LEDGER_DRIVER" env-default:"csv"`
	CSVPath     string `yaml:"csv_path" env:"LEDGER_CSV_PATH" env-default:"data/attendance_data.csv"`
	SQLitePath  string `yaml:"sqlite_path" env:"LEDGER_SQLITE_PATH" env-default:"data/attendance.db"`
	PostgresDSN string `yaml:"postgres_dsn" env:"PG_DSN"`
}

type Attendance struct {
	Threshold        int       `yaml:"threshold" env:"ATTENDANCE_THRESHOLD" env-default:"75"`
	WarningThreshold int       `yaml:"warning_threshold" env:"ATTENDANCE_WARNING_THRESHOLD" env-default:"50"`
	Aggregation      string    `yaml:"aggregation" env:"ATTENDANCE_AGGREGATION" env-default:"unweighted"`
	LabWeight        int       `yaml:"lab_weight" env:"ATTENDANCE_LAB_WEIGHT" env-default:"2"`
	InferLabs        bool      `yaml:"infer_labs" env:"ATTENDANCE_INFER_LABS" env-default:"true"`
	Subjects         []Subject `yaml:"subjects"`
}

// Subject declares how a timetable label is classified.
type Subject struct {
	Label      string `yaml:"label"`
	Category   string `yaml:"category"`
	Multiplier int    `yaml:"multiplier"`
}

type Cache struct {
	DayTTL time.Duration `yaml:"day_ttl" env:"CACHE_DAY_TTL" env-default:"1h"`
}

type Telegram struct {
	BotToken        string        `yaml:"bot_token" env:"TELEGRAM_TOKEN"`
	LongPollerDelay time.Duration `yaml:"long_poller_delay" env:"TELEGRAM_LONG_POLLER_DELAY" env-default:"10s"`
	OwnerID         int64         `yaml:"owner_id" env:"TELEGRAM_OWNER_ID"`
}

// NewConfig loads .env when present and then reads the yaml file, letting
// environment variables override it.
func NewConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msgf("godotenv.Load: %v", err)
	}

	cfg := &Config{}
	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		help, _ := cleanenv.GetDescription(cfg, nil)
		log.Debug().Msg(help)
		return nil, fmt.Errorf("cleanenv.ReadConfig: %w", err)
	}

	return cfg, nil
}
