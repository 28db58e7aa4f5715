// Package search provides local search over a catalog snapshot: substring
// matching, an artist filter, artist rankings with suggestions, and the
// word-cloud frequency lists.
package search
