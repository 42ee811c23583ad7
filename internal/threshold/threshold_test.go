package threshold

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilyadubrovsky/tracking-attendance/internal/domain"
	ierrors "github.com/ilyadubrovsky/tracking-attendance/internal/errors"
)

func newCalculator(t *testing.T) *Calculator {
	t.Helper()
	c, err := NewCalculator(DefaultThreshold, DefaultWarningThreshold)
	require.NoError(t, err)
	return c
}

func TestNewCalculator_Validation(t *testing.T) {
	_, err := NewCalculator(0, 0)
	assert.ErrorIs(t, err, ierrors.ErrInvalidThreshold)

	_, err = NewCalculator(101, 50)
	assert.ErrorIs(t, err, ierrors.ErrInvalidThreshold)

	_, err = NewCalculator(75, 80)
	assert.ErrorIs(t, err, ierrors.ErrInvalidThreshold)

	c, err := NewCalculator(80, 60)
	require.NoError(t, err)
	assert.Equal(t, 80, c.Threshold)
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		name                   string
		present, absent, total int
		want                   float64
	}{
		{"nothing counted", 0, 0, 10, 0},
		{"zero total", 3, 1, 0, 0},
		{"scenario 30/5/40", 30, 5, 40, 100 * 30.0 / 35.0},
		{"scenario 10/20/40", 10, 20, 40, 100 * 10.0 / 30.0},
		{"all present", 4, 0, 4, 100},
		{"clamped to total", 8, 4, 10, 80},
		{"counted capped at total", 12, 12, 22, 100 * 12.0 / 22.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Percentage(tt.present, tt.absent, tt.total), 1e-9)
		})
	}
}

func TestPercentage_CountedCappedAtTotal(t *testing.T) {
	for p := 0; p <= 12; p++ {
		for a := 0; a <= 12; a++ {
			for total := 1; total < p+a; total++ {
				want := 100 * float64(p) / float64(total)
				got := Percentage(p, a, total)
				assert.InDelta(t, want, got, 1e-9, "p=%d a=%d t=%d", p, a, total)
				assert.InDelta(t, got, Percentage(p, a+1, total), 1e-9,
					"absence beyond capacity p=%d a=%d t=%d", p, a, total)
			}
			assert.Zero(t, Percentage(p, a, 0), "p=%d a=%d t=0", p, a)
		}
	}
}

func TestPercentage_Monotone(t *testing.T) {
	const total = 20
	for p := 0; p < total; p++ {
		for a := 0; p+a < total; a++ {
			base := Percentage(p, a, total)
			assert.GreaterOrEqual(t, Percentage(p+1, a, total), base, "present p=%d a=%d", p, a)
			assert.LessOrEqual(t, Percentage(p, a+1, total), base, "absent p=%d a=%d", p, a)
		}
	}
}

func TestMaxAdditionalMissable(t *testing.T) {
	c := newCalculator(t)

	tests := []struct {
		name   string
		triple domain.Triple
		want   int
	}{
		{"scenario boundary inclusive", domain.Triple{Present: 30, Absent: 5, Total: 40}, 5},
		{"capped by remaining", domain.Triple{Present: 30, Absent: 0, Total: 32}, 2},
		{"below threshold", domain.Triple{Present: 10, Absent: 20, Total: 40}, 0},
		{"nothing counted", domain.Triple{Present: 0, Absent: 0, Total: 10}, 0},
		{"exactly at threshold", domain.Triple{Present: 3, Absent: 1, Total: 10}, 0},
		{"full record", domain.Triple{Present: 9, Absent: 1, Total: 10}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.MaxAdditionalMissable(tt.triple))
		})
	}
}

func TestMaxAdditionalMissable_BoundaryTight(t *testing.T) {
	c := newCalculator(t)

	const total = 40
	for p := 0; p <= total; p++ {
		for a := 0; p+a <= total; a++ {
			tr := domain.Triple{Present: p, Absent: a, Total: total}
			k := c.MaxAdditionalMissable(tr)
			require.GreaterOrEqual(t, k, 0)
			require.LessOrEqual(t, k, tr.Remaining())

			if k > 0 {
				assert.GreaterOrEqual(t, Percentage(p, a+k, total), float64(DefaultThreshold), "p=%d a=%d", p, a)
			}
			if k < tr.Remaining() {
				assert.Less(t, Percentage(p, a+k+1, total), float64(DefaultThreshold), "p=%d a=%d k=%d", p, a, k)
			}
		}
	}
}

func TestMinAdditionalNeeded(t *testing.T) {
	c := newCalculator(t)

	tests := []struct {
		name   string
		triple domain.Triple
		want   domain.Need
	}{
		{"scenario unreachable", domain.Triple{Present: 10, Absent: 20, Total: 40}, domain.Need{Reachable: false}},
		{"scenario reachable with larger total", domain.Triple{Present: 10, Absent: 20, Total: 60}, domain.Need{Classes: 50, Reachable: true}},
		{"already above", domain.Triple{Present: 30, Absent: 5, Total: 40}, domain.Need{Classes: 0, Reachable: true}},
		{"fresh start", domain.Triple{Present: 0, Absent: 0, Total: 10}, domain.Need{Classes: 1, Reachable: true}},
		{"no classes at all", domain.Triple{Present: 0, Absent: 0, Total: 0}, domain.Need{Reachable: false}},
		{"one miss", domain.Triple{Present: 0, Absent: 1, Total: 10}, domain.Need{Classes: 3, Reachable: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.MinAdditionalNeeded(tt.triple))
		})
	}
}

func TestMinAdditionalNeeded_Minimal(t *testing.T) {
	c := newCalculator(t)

	const total = 60
	for p := 0; p <= 30; p++ {
		for a := 0; a <= 30; a++ {
			need := c.MinAdditionalNeeded(domain.Triple{Present: p, Absent: a, Total: total})
			if !need.Reachable {
				continue
			}
			n := need.Classes
			require.LessOrEqual(t, p+n, total)
			// unclamped view: the attended classes are added to the counted ones
			assert.GreaterOrEqual(t, Percentage(p+n, a, p+n+a), float64(DefaultThreshold), "p=%d a=%d n=%d", p, a, n)
			if n > 0 {
				assert.Less(t, Percentage(p+n-1, a, p+n-1+a), float64(DefaultThreshold), "p=%d a=%d n=%d", p, a, n)
			}
		}
	}
}

func TestMinAdditionalNeeded_FullThreshold(t *testing.T) {
	c, err := NewCalculator(100, 50)
	require.NoError(t, err)

	assert.Equal(t, domain.Need{Reachable: false}, c.MinAdditionalNeeded(domain.Triple{Present: 5, Absent: 1, Total: 20}))
	assert.Equal(t, domain.Need{Classes: 0, Reachable: true}, c.MinAdditionalNeeded(domain.Triple{Present: 5, Absent: 0, Total: 20}))
	assert.Equal(t, 0, c.MaxAdditionalMissable(domain.Triple{Present: 5, Absent: 0, Total: 20}))
}

func TestStanding(t *testing.T) {
	c := newCalculator(t)

	assert.Equal(t, domain.StandingSafe, c.Standing(75))
	assert.Equal(t, domain.StandingWarning, c.Standing(74.99))
	assert.Equal(t, domain.StandingWarning, c.Standing(50))
	assert.Equal(t, domain.StandingCritical, c.Standing(33.3))
}

func TestSummarize(t *testing.T) {
	c := newCalculator(t)

	s := c.Summarize(domain.Triple{Present: 30, Absent: 5, Total: 40})
	assert.InDelta(t, 85.714, s.Percentage, 1e-3)
	assert.Equal(t, domain.StandingSafe, s.Standing)
	assert.Equal(t, 5, s.MissBudget)
	assert.Equal(t, domain.Need{Classes: 0, Reachable: true}, s.Need)
}
