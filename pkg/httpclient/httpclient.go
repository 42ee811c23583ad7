// Package httpclient fetches remote timetable documents.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const userAgent = "tracking-attendance/1.0"

var ErrUnexpectedStatus = errors.New("unexpected response status")

type Client interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

type client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) Client {
	return &client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch performs a GET request. The caller closes the returned body.
func (c *client) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	request.Header.Set("User-Agent", userAgent)
	request.Header.Set("Accept", "text/html,application/xhtml+xml")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("httpClient.Do: %w", err)
	}

	if response.StatusCode != http.StatusOK {
		response.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, response.Status)
	}

	return response.Body, nil
}
