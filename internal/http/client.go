package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "MusicUniverse"

// maxErrorSnippet bounds how much of a failed response body is kept.
const maxErrorSnippet = 200

// Client wraps HTTP operations used to fetch catalog resources.
//
// Client provides:
//   - Configured User-Agent header
//   - Status and Content-Type checks for JSON resources
//   - Plain byte downloads for covers
//
// The underlying http.Client has no timeout of its own; callers bound each
// request with a context (see CandidateFetcher).
//
// Example usage:
//
//	client := NewClient("")
//
//	// Fetch a JSON document
//	raw, err := client.GetJSON(ctx, "https://example.com/data/data.json")
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new HTTP client. An empty userAgent selects
// DefaultUserAgent.
func NewClient(userAgent string) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		httpClient: &http.Client{},
		userAgent:  userAgent,
	}
}

// NewClientWith wraps an existing http.Client, typically one created by
// httptest.
func NewClientWith(hc *http.Client, userAgent string) *Client {
	c := NewClient(userAgent)
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Status     string
	Snippet    string
}

func (e *StatusError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
	}
	return fmt.Sprintf("HTTP %d: %s: %s", e.StatusCode, e.Status, e.Snippet)
}

// ContentTypeError reports a successful response that is not JSON, for
// example an HTML index page served by a single-page-app fallback route.
type ContentTypeError struct {
	ContentType string
	Snippet     string
}

func (e *ContentTypeError) Error() string {
	return fmt.Sprintf("unexpected content type %q: %s", e.ContentType, e.Snippet)
}

// Get performs a GET request and returns the response body as bytes.
//
// Returns an error if:
//   - The request fails
//   - The response status is not 2xx
//   - Reading the body fails
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.do(ctx, url, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Snippet: readSnippet(resp.Body)}
	}

	return io.ReadAll(resp.Body)
}

// GetJSON performs a GET request and returns the raw JSON body.
//
// Besides the checks done by Get, the response must declare a JSON content
// type and the body must be syntactically valid JSON. The shape of the
// document is not checked here.
//
// Example:
//
//	raw, err := client.GetJSON(ctx, "/data/aggregated_data.json")
//	var counts model.AggregateCounts
//	json.Unmarshal(raw, &counts)
func (c *Client) GetJSON(ctx context.Context, url string) (json.RawMessage, error) {
	resp, err := c.do(ctx, url, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Snippet: readSnippet(resp.Body)}
	}

	ct := resp.Header.Get("Content-Type")
	if !IsJSONContentType(ct) {
		return nil, &ContentTypeError{ContentType: ct, Snippet: readSnippet(resp.Body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("invalid JSON body from %s", url)
	}

	return json.RawMessage(body), nil
}

func (c *Client) do(ctx context.Context, url, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	return c.httpClient.Do(req)
}

// IsJSONContentType reports whether ct names application/json or a
// +json media type.
func IsJSONContentType(ct string) bool {
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func readSnippet(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorSnippet))
	return strings.TrimSpace(string(data))
}

// Since returns the elapsed time rounded for log output.
func Since(start time.Time) time.Duration {
	return time.Since(start).Round(time.Millisecond)
}
