package errors

import "errors"

var (
	ErrMissingInputData   = errors.New("input data is missing")
	ErrMalformedRow       = errors.New("row is malformed")
	ErrUnknownSubject     = errors.New("subject is not in the timetable")
	ErrInvalidThreshold   = errors.New("threshold must be within 1..100")
	ErrUnsupportedDriver  = errors.New("ledger driver is not supported")
	ErrUnsupportedFormat  = errors.New("timetable format is not supported")
	ErrInvalidAggregation = errors.New("aggregation mode is not supported")
	ErrBotTokenMissing    = errors.New("telegram bot token is not configured")
	ErrBotOwnerMissing    = errors.New("telegram owner id is not configured")
)
