// Package model defines the core data structures shared by the catalog,
// its consumers, and the import tools.
//
// # Track
//
// Track is one entry of the music collection. Records are decoded from the
// track list with DecodeTrack, which accepts the legacy "music" title field
// and numeric or string ids:
//
//	track, err := model.DecodeTrack(raw)
//	fmt.Println(track.ID, track.Title, track.Artists())
//
// # Aggregate Counts
//
// AggregateCounts carries the precomputed artist and style counts:
//
//	counts := model.EmptyAggregateCounts()
//
// # Covers
//
// ResolveCover picks the cover to display from an explicit priority list:
//
//	src := model.ResolveCover(&track, model.CoverOptions{
//	    Mobile:       true,
//	    Fallback:     "/images/fallback.webp",
//	    OptimizedDir: "/optimized-images",
//	})
//
// # Dates
//
// ParseDate understands the archive format "2006年01月02日 15:04" as well as
// RFC 3339 and plain ISO dates.
package model
