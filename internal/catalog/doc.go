// Package catalog loads the music collection and keeps one validated,
// tag-indexed snapshot of it per session.
//
// A load fetches two resources concurrently:
//   - the track list (required)
//   - the precomputed artist and style counts (optional)
//
// Shape problems in either payload never fail a load; they are logged and
// replaced by empty defaults. Only a track list that cannot be fetched
// from any candidate location fails, with a retryable *LoadError.
//
// # Snapshots
//
// Every successful load publishes an immutable *View into a Cache. A
// View carries the tracks with their scene positions and derived tags,
// the aggregate counts, and a tag index:
//
//	view, err := store.Load(ctx)
//	if err != nil {
//	    return err
//	}
//	for tag, n := range view.TagFrequency() {
//	    fmt.Println(tag, n)
//	}
//
// Refetch replaces the snapshot in one step. Readers never see a
// partially built View.
package catalog
