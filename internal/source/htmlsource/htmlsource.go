// Package htmlsource reads the weekly timetable from an HTML table, either
// a local file or a page fetched over HTTP.
package htmlsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ilyadubrovsky/tracking-attendance/internal/domain"
	ierrors "github.com/ilyadubrovsky/tracking-attendance/internal/errors"
	"github.com/ilyadubrovsky/tracking-attendance/pkg/httpclient"
	"github.com/rs/zerolog/log"
)

const DefaultSelector = "table"

var replacedString = regexp.MustCompile(`\s+`)

type Timetable struct {
	location string
	selector string
	client   httpclient.Client
}

func NewTimetable(location, selector string, client httpclient.Client) *Timetable {
	if selector == "" {
		selector = DefaultSelector
	}
	return &Timetable{
		location: location,
		selector: selector,
		client:   client,
	}
}

func (t *Timetable) Timetable(ctx context.Context) (*domain.TimetableGrid, error) {
	body, err := t.open(ctx)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	document, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("goquery.NewDocumentFromReader: %w", err)
	}

	grid, skipped, err := ParseTable(document.Find(t.selector).First())
	if err != nil {
		return nil, fmt.Errorf("ParseTable(%s): %w", t.location, err)
	}

	log.Info().
		Str("location", t.location).
		Int("rows", len(grid.Rows)).
		Int("skipped", skipped).
		Msg("timetable loaded")

	return grid, nil
}

func (t *Timetable) open(ctx context.Context) (io.ReadCloser, error) {
	if strings.HasPrefix(t.location, "http://") || strings.HasPrefix(t.location, "https://") {
		body, err := t.client.Fetch(ctx, t.location)
		if err != nil {
			return nil, fmt.Errorf("%w: client.Fetch: %v", ierrors.ErrMissingInputData, err)
		}
		return body, nil
	}

	f, err := os.Open(t.location)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ierrors.ErrMissingInputData, t.location)
	}
	if err != nil {
		return nil, fmt.Errorf("os.Open: %w", err)
	}
	return f, nil
}

// ParseTable turns a table into a grid. The first row is the header, the
// first cell of every other row is the weekday. A cell spanning several
// periods repeats its label in each of them.
func ParseTable(table *goquery.Selection) (*domain.TimetableGrid, int, error) {
	if table.Length() == 0 {
		return nil, 0, fmt.Errorf("%w: no timetable table found", ierrors.ErrMissingInputData)
	}

	rows := table.Find("tr")
	if rows.Length() < 1 {
		return nil, 0, fmt.Errorf("%w: empty timetable table", ierrors.ErrMissingInputData)
	}

	head := expandCells(rows.First())
	if len(head) < 2 {
		return nil, 0, fmt.Errorf("%w: timetable needs a weekday column and at least one period", ierrors.ErrMissingInputData)
	}

	grid := &domain.TimetableGrid{Periods: head[1:]}
	skipped := 0
	rows.Slice(1, rows.Length()).Each(func(i int, tr *goquery.Selection) {
		cells := expandCells(tr)
		if len(cells) == 0 || cells[0] == "" {
			log.Warn().Int("row", i+2).Msgf("skipping timetable row: %v: no weekday", ierrors.ErrMalformedRow)
			skipped++
			return
		}

		periods := make([]string, len(grid.Periods))
		copy(periods, cells[1:])
		grid.Rows = append(grid.Rows, domain.TimetableRow{
			Weekday: domain.CanonicalWeekday(cells[0]),
			Cells:   periods,
		})
	})

	return grid, skipped, nil
}

func expandCells(tr *goquery.Selection) []string {
	var cells []string
	tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		text := strings.TrimSpace(replacedString.ReplaceAllString(cell.Text(), " "))
		span := 1
		if raw, ok := cell.Attr("colspan"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && n > 1 {
				span = n
			}
		}
		for j := 0; j < span; j++ {
			cells = append(cells, text)
		}
	})
	return cells
}
