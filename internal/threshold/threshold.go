// Package threshold holds the attendance arithmetic. All functions are pure
// over (present, absent, total) and use integer math for every comparison
// against the threshold.
package threshold

import (
	"fmt"

	"github.com/ilyadubrovsky/tracking-attendance/internal/domain"
	ierrors "github.com/ilyadubrovsky/tracking-attendance/internal/errors"
)

const (
	DefaultThreshold        = 75
	DefaultWarningThreshold = 50
)

type Calculator struct {
	// Threshold is the minimum acceptable attendance percentage.
	Threshold int
	// Warning is the percentage under which a subject becomes critical.
	Warning int
}

func NewCalculator(threshold, warning int) (*Calculator, error) {
	if threshold < 1 || threshold > 100 {
		return nil, fmt.Errorf("%w: got %d", ierrors.ErrInvalidThreshold, threshold)
	}
	if warning < 0 || warning > threshold {
		return nil, fmt.Errorf("%w: warning %d above threshold %d", ierrors.ErrInvalidThreshold, warning, threshold)
	}

	return &Calculator{
		Threshold: threshold,
		Warning:   warning,
	}, nil
}

// Percentage is 100*present over the classes actually counted, where the
// counted classes never exceed total.
func Percentage(present, absent, total int) float64 {
	counted := present + absent
	if total < counted {
		counted = total
	}
	if counted <= 0 {
		return 0
	}

	return 100 * float64(present) / float64(counted)
}

func (c *Calculator) Percentage(t domain.Triple) float64 {
	return Percentage(t.Present, t.Absent, t.Total)
}

// meets reports whether present out of counted reaches the threshold.
// Nothing counted is 0%.
func (c *Calculator) meets(present, counted int) bool {
	if counted <= 0 {
		return false
	}
	return 100*present >= c.Threshold*counted
}

// MaxAdditionalMissable is the largest k within the remaining classes such
// that missing k more still keeps the percentage at or above the threshold.
func (c *Calculator) MaxAdditionalMissable(t domain.Triple) int {
	slack := 100*t.Present - c.Threshold*(t.Present+t.Absent)
	if slack <= 0 {
		return 0
	}

	k := slack / c.Threshold
	if rem := t.Remaining(); k > rem {
		k = rem
	}

	return k
}

// MinAdditionalNeeded is the smallest number of consecutive attended classes
// that lifts the percentage to the threshold without exceeding total.
func (c *Calculator) MinAdditionalNeeded(t domain.Triple) domain.Need {
	counted := t.Present + t.Absent

	var n int
	switch {
	case c.Threshold == 100:
		if t.Absent > 0 {
			return domain.Need{Reachable: false}
		}
	default:
		deficit := c.Threshold*counted - 100*t.Present
		if deficit > 0 {
			step := 100 - c.Threshold
			n = (deficit + step - 1) / step
		}
	}
	if counted+n == 0 {
		n = 1
	}

	if t.Present+n > t.Total || !c.meets(t.Present+n, counted+n) {
		return domain.Need{Reachable: false}
	}

	return domain.Need{Classes: n, Reachable: true}
}

func (c *Calculator) Standing(percentage float64) domain.Standing {
	switch {
	case percentage >= float64(c.Threshold):
		return domain.StandingSafe
	case percentage >= float64(c.Warning):
		return domain.StandingWarning
	default:
		return domain.StandingCritical
	}
}

// Summarize evaluates every derived figure for one triple.
func (c *Calculator) Summarize(t domain.Triple) domain.Summary {
	percentage := c.Percentage(t)

	return domain.Summary{
		Triple:     t,
		Percentage: percentage,
		Standing:   c.Standing(percentage),
		MissBudget: c.MaxAdditionalMissable(t),
		Need:       c.MinAdditionalNeeded(t),
	}
}
