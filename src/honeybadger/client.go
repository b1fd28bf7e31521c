// Package honeybadger is a small client for the two Honeybadger endpoints a
// deploy touches: source map ingestion and deploy tracking.
package honeybadger

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sofmeright/hbdeploy/src/version"
)

// DefaultBaseURL is the public Honeybadger API.
const DefaultBaseURL = "https://api.honeybadger.io"

const (
	sourceMapsPath = "/v1/source_maps"
	deploysPath    = "/v1/deploys"
)

// Client talks to the Honeybadger API. Requests carry the API key in the
// form body, so the client itself holds no credentials.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New creates a client. timeout bounds each request end to end; zero
// disables the limit.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// APIError is a non-2xx response.
type APIError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.Status, e.Body)
}

func (c *Client) do(req *http.Request) error {
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", "application/json")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Method: req.Method,
			URL:    req.URL.String(),
			Status: resp.StatusCode,
			Body:   truncateBody(body, 512),
		}
	}
	return nil
}

func truncateBody(b []byte, max int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
