// Package mealdb is a thin client for TheMealDB's public JSON API.
//
// The server does not interpret meals: every response body is passed back
// to the caller unchanged as json.RawMessage. The client's only jobs are to
// build the URL, bound the request in time and size, and turn every kind of
// failure into one apperror.ErrUpstream.
package mealdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sakif/mealdb/internal/apperror"
)

// maxBodyBytes caps how much of an upstream response is read. The largest
// TheMealDB payloads (full category listings) are well under 1 MiB.
const maxBodyBytes = 4 << 20

// Client calls TheMealDB. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *slog.Logger
}

// NewClient builds a client for baseURL (for example
// "https://www.themealdb.com/api/json/v1/1"). timeout bounds each call; zero
// leaves it to the request context.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("mealdb: parsing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("mealdb: base URL %q must be http or https", baseURL)
	}
	return &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// Get fetches endpoint (e.g. "search.php") with the given query and returns
// the body verbatim.
//
// FAILURE MODES:
// All of these come back as an *apperror.AppError wrapping ErrUpstream,
// with the underlying cause attached for logging:
//   - transport errors and timeouts (including ctx cancellation)
//   - any non-2xx status
//   - a body that is not valid JSON (TheMealDB answers some bad
//     requests with an empty 200)
//
// There is no retry.
func (c *Client) Get(ctx context.Context, endpoint string, query url.Values) (json.RawMessage, error) {
	u := c.baseURL.JoinPath(endpoint)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, upstream(endpoint, fmt.Errorf("building request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, upstream(endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, upstream(endpoint, fmt.Errorf("reading body: %w", err))
	}

	c.logger.Debug("mealdb call",
		slog.String("endpoint", endpoint),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, upstream(endpoint, fmt.Errorf("status %d", resp.StatusCode))
	}
	if len(body) > maxBodyBytes {
		return nil, upstream(endpoint, errors.New("response body too large"))
	}
	if !json.Valid(body) {
		return nil, upstream(endpoint, errors.New("response is not JSON"))
	}
	return json.RawMessage(body), nil
}

func upstream(endpoint string, cause error) error {
	return apperror.Upstream("mealdb: "+endpoint+" failed", cause)
}
