// Package http provides the HTTP client used to fetch catalog resources.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Status and Content-Type checks for JSON documents
//   - Byte downloads for remote covers
//
// # Candidate Fetching
//
// Catalog resources may live under different base paths depending on the
// deployment, so each resource is described by an ordered list of
// candidate URLs and a Policy:
//
//	candidates, _ := http.ResolveCandidates("https://example.com/app", []string{
//	    "data/data.json",
//	    "/data/data.json",
//	})
//	f := http.NewCandidateFetcher(http.NewClient(""), http.Policy{Timeout: 5 * time.Second}, logger)
//	raw, err := f.FetchJSON(ctx, candidates)
//
// # Errors
//
// Each skipped candidate is recorded as a *CandidateError. When every
// candidate fails FetchJSON returns an *ExhaustedError listing them.
// Cancelling the caller's context is not a candidate failure: FetchJSON
// stops and returns ctx.Err().
package http
