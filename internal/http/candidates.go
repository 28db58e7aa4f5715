package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

// Policy controls how a list of candidate URLs is tried.
type Policy struct {
	// Timeout bounds each individual request. Zero disables the bound.
	Timeout time.Duration

	// MaxCandidates caps how many candidates are tried. Zero means all.
	MaxCandidates int
}

// DefaultPolicy returns a 5 second per-request timeout with no candidate cap.
func DefaultPolicy() Policy {
	return Policy{Timeout: 5 * time.Second}
}

// limit returns the candidates the policy allows, in order.
func (p Policy) limit(candidates []string) []string {
	if p.MaxCandidates > 0 && len(candidates) > p.MaxCandidates {
		return candidates[:p.MaxCandidates]
	}
	return candidates
}

// CandidateError records why one candidate was skipped.
type CandidateError struct {
	URL     string
	Timeout bool
	Err     error
}

func (e *CandidateError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s: timed out", e.URL)
	}
	return fmt.Sprintf("%s: %v", e.URL, e.Err)
}

func (e *CandidateError) Unwrap() error {
	return e.Err
}

// ErrNoCandidates is returned when the candidate list is empty.
var ErrNoCandidates = errors.New("no candidate URLs")

// ExhaustedError is returned when every candidate failed.
type ExhaustedError struct {
	Attempts []*CandidateError
}

func (e *ExhaustedError) Error() string {
	if len(e.Attempts) == 0 {
		return ErrNoCandidates.Error()
	}
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.Error()
	}
	return "all candidates failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes the individual attempts to errors.Is and errors.As.
func (e *ExhaustedError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a
	}
	if len(errs) == 0 {
		return []error{ErrNoCandidates}
	}
	return errs
}

// CandidateFetcher fetches a JSON document from the first working URL of
// an ordered candidate list.
//
// Candidates are tried one after the other; the next one starts only after
// the previous one failed or timed out. A candidate fails on a transport
// error, a non-2xx status, a non-JSON content type, or a timeout.
//
// Example:
//
//	f := NewCandidateFetcher(NewClient(""), DefaultPolicy(), slog.Default())
//	raw, err := f.FetchJSON(ctx, []string{
//	    "https://example.com/app/data/data.json",
//	    "https://example.com/data/data.json",
//	})
type CandidateFetcher struct {
	client *Client
	policy Policy
	logger *slog.Logger
}

// NewCandidateFetcher creates a fetcher. A nil logger selects slog.Default().
func NewCandidateFetcher(client *Client, policy Policy, logger *slog.Logger) *CandidateFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &CandidateFetcher{client: client, policy: policy, logger: logger}
}

// Policy returns the fetcher's policy.
func (f *CandidateFetcher) Policy() Policy {
	return f.policy
}

// FetchJSON returns the body of the first candidate that succeeds.
//
// If ctx is cancelled the fetch stops immediately and ctx.Err() is
// returned. If every candidate fails an *ExhaustedError is returned.
func (f *CandidateFetcher) FetchJSON(ctx context.Context, candidates []string) (json.RawMessage, error) {
	candidates = f.policy.limit(candidates)
	if len(candidates) == 0 {
		return nil, &ExhaustedError{}
	}

	var attempts []*CandidateError
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		f.logger.Debug("fetching candidate", "url", candidate)

		raw, err := f.fetchOne(ctx, candidate)
		if err == nil {
			f.logger.Debug("candidate succeeded", "url", candidate, "bytes", len(raw), "elapsed", Since(start))
			return raw, nil
		}

		// The caller gave up; this is not a candidate failure.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		attempt := &CandidateError{
			URL:     candidate,
			Timeout: errors.Is(err, context.DeadlineExceeded),
			Err:     err,
		}
		attempts = append(attempts, attempt)
		f.logger.Warn("candidate failed", "url", candidate, "timeout", attempt.Timeout, "error", err)
	}

	return nil, &ExhaustedError{Attempts: attempts}
}

func (f *CandidateFetcher) fetchOne(ctx context.Context, candidate string) (json.RawMessage, error) {
	if f.policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.policy.Timeout)
		defer cancel()
	}
	return f.client.GetJSON(ctx, candidate)
}

// ResolveCandidates resolves resource paths against a base URL, keeping
// order and dropping duplicates.
//
// Paths without a leading slash are relative to the base path, so a
// deployment under a sub-path finds its own copy first; paths with a
// leading slash are relative to the host root. Absolute URLs are kept.
//
// Example:
//
//	ResolveCandidates("https://example.com/app", []string{"data/data.json", "/data/data.json"})
//	// ["https://example.com/app/data/data.json", "https://example.com/data/data.json"]
func ResolveCandidates(base string, paths []string) ([]string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	if !strings.HasSuffix(baseURL.Path, "/") {
		baseURL.Path += "/"
	}

	seen := make(map[string]struct{}, len(paths))
	resolved := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		ref, err := url.Parse(p)
		if err != nil {
			return nil, fmt.Errorf("invalid candidate path %q: %w", p, err)
		}
		u := baseURL.ResolveReference(ref).String()
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		resolved = append(resolved, u)
	}

	return resolved, nil
}
