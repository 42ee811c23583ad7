package domain

type AttendanceRecord struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
}

func (r AttendanceRecord) Counted() int {
	return r.Present + r.Absent
}

// Triple is the input of every threshold computation.
type Triple struct {
	Present int
	Absent  int
	Total   int
}

func (t Triple) Remaining() int {
	if rem := t.Total - t.Present - t.Absent; rem > 0 {
		return rem
	}
	return 0
}

// Mark selects which counter a ledger mutation increments.
type Mark int

const (
	MarkPresent Mark = iota + 1
	MarkAbsent
)

func (m Mark) String() string {
	switch m {
	case MarkPresent:
		return "present"
	case MarkAbsent:
		return "absent"
	}
	return "unknown"
}

// Outcome of a ledger mutation. Hitting the capacity is an expected,
// user-facing result and not an error.
type Outcome int

const (
	OutcomeCommitted Outcome = iota + 1
	OutcomeCapacityExceeded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCommitted:
		return "committed"
	case OutcomeCapacityExceeded:
		return "capacity exceeded"
	}
	return "unknown"
}

type MarkResult struct {
	Subject string
	Record  AttendanceRecord
	Outcome Outcome
}

// Need is the answer to "how many consecutive classes must be attended".
// Reachable is false when even attending every remaining class is not enough.
type Need struct {
	Classes   int
	Reachable bool
}

type Standing int

const (
	StandingSafe Standing = iota + 1
	StandingWarning
	StandingCritical
)

func (s Standing) String() string {
	switch s {
	case StandingSafe:
		return "safe"
	case StandingWarning:
		return "warning"
	case StandingCritical:
		return "critical"
	}
	return "unknown"
}

type Summary struct {
	Triple
	Percentage float64
	Standing   Standing
	MissBudget int
	Need       Need
}

type SubjectSummary struct {
	Subject        string
	Classification Classification
	Summary
}
