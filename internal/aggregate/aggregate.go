package aggregate

import (
	"fmt"
	"strings"

	"github.com/ilyadubrovsky/tracking-attendance/internal/domain"
	ierrors "github.com/ilyadubrovsky/tracking-attendance/internal/errors"
)

// Mode is the weighting policy used when folding subjects into one overall
// triple.
type Mode string

const (
	// ModeUnweighted sums every subject as is.
	ModeUnweighted Mode = "unweighted"
	// ModeLabWeighted multiplies present, absent and total of lab subjects by
	// the lab weight.
	ModeLabWeighted Mode = "lab_weighted"
)

const DefaultLabWeight = 2

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeUnweighted, "":
		return ModeUnweighted, nil
	case ModeLabWeighted:
		return ModeLabWeighted, nil
	}
	return "", fmt.Errorf("%w: %q", ierrors.ErrInvalidAggregation, s)
}

type Aggregator struct {
	Mode      Mode
	LabWeight int
}

func New(mode Mode, labWeight int) *Aggregator {
	if labWeight <= 0 {
		labWeight = DefaultLabWeight
	}
	return &Aggregator{
		Mode:      mode,
		LabWeight: labWeight,
	}
}

type Entry struct {
	Classification domain.Classification
	Triple         domain.Triple
}

func (a *Aggregator) weight(cl domain.Classification) int {
	if a.Mode == ModeLabWeighted && cl.IsLab() {
		return a.LabWeight
	}
	return 1
}

func (a *Aggregator) Overall(entries []Entry) domain.Triple {
	var overall domain.Triple
	for _, e := range entries {
		w := a.weight(e.Classification)
		overall.Present += e.Triple.Present * w
		overall.Absent += e.Triple.Absent * w
		overall.Total += e.Triple.Total * w
	}
	return overall
}
