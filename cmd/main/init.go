package main

import (
	"os"
	"time"

	"github.com/ilyadubrovsky/tracking-attendance/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func initLogger(cfg config.Log) {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
