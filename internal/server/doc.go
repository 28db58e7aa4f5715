// Package server exposes the catalog over HTTP with chi.
//
// Every catalog route loads the snapshot through the shared Store, so the
// first request triggers the fetch and concurrent requests wait for the
// same one. When the track list cannot be fetched the API answers 503:
//
//	{"error": "...", "kind": "network", "retryable": true}
//
// and POST /api/refetch retries.
package server
