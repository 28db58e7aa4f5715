package model

import (
	"path"
	"strings"
)

// FirstNonEmpty returns the first non-blank value in priority order,
// or "" when every candidate is blank.
//
// Example:
//
//	FirstNonEmpty(track.MobileCover, track.Cover, "/images/fallback.webp")
func FirstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if strings.TrimSpace(c) != "" {
			return c
		}
	}
	return ""
}

// CoverOptions controls cover path resolution.
type CoverOptions struct {
	// Mobile prefers MobileCover when the track has one.
	Mobile bool

	// Fallback is used when the track has no cover at all.
	Fallback string

	// OptimizedDir is the directory holding the pre-optimized .webp covers.
	// Empty disables the rewrite.
	OptimizedDir string
}

// ResolveCover picks the cover to display for a track.
//
// Priority is mobile cover (only when opts.Mobile), then cover, then the
// fallback. Relative covers are rewritten to OptimizedDir/<name>.webp;
// absolute http(s) URLs are returned unchanged.
//
// Example:
//
//	t := Track{Cover: "covers/abbey-road.jpg"}
//	ResolveCover(&t, CoverOptions{OptimizedDir: "/optimized-images"})
//	// "/optimized-images/abbey-road.webp"
func ResolveCover(t *Track, opts CoverOptions) string {
	mobile := ""
	if opts.Mobile {
		mobile = t.MobileCover
	}

	cover := FirstNonEmpty(mobile, t.Cover)
	if cover == "" {
		return opts.Fallback
	}
	if IsAbsoluteURL(cover) || opts.OptimizedDir == "" {
		return cover
	}

	return OptimizedCoverPath(opts.OptimizedDir, cover)
}

// OptimizedCoverPath maps a cover file to its optimized .webp sibling.
func OptimizedCoverPath(dir, cover string) string {
	name := path.Base(strings.ReplaceAll(cover, "\\", "/"))
	name = strings.TrimSuffix(name, path.Ext(name))
	return path.Join(dir, name+".webp")
}

// IsAbsoluteURL reports whether s is an http or https URL.
func IsAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
