package catalog

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_fetcher.go -package=mocks github.com/handiism/music-universe/internal/catalog Fetcher

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/handiism/music-universe/internal/model"
)

// Fetcher fetches a JSON document from the first working candidate URL.
// *http.CandidateFetcher implements it.
type Fetcher interface {
	FetchJSON(ctx context.Context, candidates []string) (json.RawMessage, error)
}

// Sources lists the candidate URLs of the two catalog resources, in the
// order they are tried.
type Sources struct {
	Tracks     []string
	Aggregates []string
}

// Options configures a Store. The zero value is usable.
type Options struct {
	// Logger receives load diagnostics. Nil selects slog.Default().
	Logger *slog.Logger

	// Positions assigns scene positions. Nil selects a fresh assigner
	// with DefaultPositionRadius.
	Positions *PositionAssigner

	// MaxAge makes Load treat older snapshots as missing. Zero means a
	// snapshot never expires within the session.
	MaxAge time.Duration

	// Now is the clock. Nil selects time.Now.
	Now func() time.Time
}

// Store produces validated, tag-indexed catalog snapshots.
//
// Store fetches at most once per session unless Refetch is called, and is
// safe for concurrent use:
//   - Concurrent Load calls share a single in-flight fetch
//   - A caller that cancels its context stops waiting; the fetch is only
//     aborted when no caller is left waiting for it
//   - A cancelled fetch never reaches the cache
//   - Refetch never joins a fetch that was already running; it waits for a
//     fresh one queued behind it, shared by every Refetch that arrived
//     meanwhile
//
// Example:
//
//	store := catalog.NewStore(fetcher, catalog.NewCache(), sources, catalog.Options{Logger: logger})
//
//	view, err := store.Load(ctx)
//	switch {
//	case catalog.IsCancelled(err):
//	    // nothing to show yet
//	case catalog.IsRetryable(err):
//	    // offer a retry that calls store.Refetch
//	}
type Store struct {
	fetcher   Fetcher
	cache     *Cache
	sources   Sources
	logger    *slog.Logger
	positions *PositionAssigner
	maxAge    time.Duration
	now       func() time.Time

	mu     sync.Mutex
	flight *flight
	next   *flight // refetch queued behind flight
}

// flight is one in-flight fetch shared by every caller waiting on it.
type flight struct {
	ctx     context.Context
	done    chan struct{}
	view    *View
	err     error
	waiters int
	cancel  context.CancelFunc
}

// NewStore creates a Store that publishes into cache.
func NewStore(fetcher Fetcher, cache *Cache, sources Sources, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Positions == nil {
		opts.Positions = NewPositionAssigner(DefaultPositionRadius, nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Store{
		fetcher:   fetcher,
		cache:     cache,
		sources:   sources,
		logger:    opts.Logger,
		positions: opts.Positions,
		maxAge:    opts.MaxAge,
		now:       opts.Now,
	}
}

// Cache returns the cache the store publishes into.
func (s *Store) Cache() *Cache {
	return s.cache
}

// Load returns the cached snapshot, fetching it first if there is none.
//
// Errors:
//   - *LoadError with Kind KindNetwork when the track list could not be
//     fetched from any candidate (retryable)
//   - ctx.Err() when the caller stopped waiting
func (s *Store) Load(ctx context.Context) (*View, error) {
	if v := s.fresh(); v != nil {
		return v, nil
	}

	s.mu.Lock()
	// A flight may have published between the check above and the lock.
	if v := s.fresh(); v != nil {
		s.mu.Unlock()
		return v, nil
	}
	f := s.join(ctx)
	s.mu.Unlock()

	return s.wait(ctx, f)
}

// Refetch runs the full fetch sequence again, bypassing the cache, and
// replaces the snapshot on success. Readers keep seeing the previous
// snapshot until the replacement is published. On failure the previous
// snapshot stays in place.
//
// A fetch already running when Refetch is called started before the
// request, so Refetch waits for a new one that starts when it finishes.
func (s *Store) Refetch(ctx context.Context) (*View, error) {
	s.mu.Lock()
	var f *flight
	if s.flight == nil {
		f = s.join(ctx)
	} else {
		if s.next == nil {
			s.next = newFlight(ctx)
		}
		f = s.next
		f.waiters++
	}
	s.mu.Unlock()

	return s.wait(ctx, f)
}

// fresh returns the cached snapshot unless it is missing or expired.
func (s *Store) fresh() *View {
	v := s.cache.View()
	if v == nil {
		return nil
	}
	if s.maxAge > 0 && s.now().Sub(v.LoadedAt) > s.maxAge {
		return nil
	}
	return v
}

// join registers the caller on the current flight, starting one if needed.
// s.mu must be held.
func (s *Store) join(ctx context.Context) *flight {
	if s.flight == nil {
		s.start(newFlight(ctx))
	}
	s.flight.waiters++
	return s.flight
}

func newFlight(ctx context.Context) *flight {
	// The fetch outlives any single caller; it keeps ctx values only.
	fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	return &flight{ctx: fctx, done: make(chan struct{}), cancel: cancel}
}

// start runs f as the current flight. s.mu must be held.
func (s *Store) start(f *flight) {
	s.flight = f
	go s.run(f.ctx, f)
}

// promote starts the queued refetch once no flight is running. s.mu must
// be held.
func (s *Store) promote() {
	if s.flight == nil && s.next != nil {
		f := s.next
		s.next = nil
		s.start(f)
	}
}

func (s *Store) wait(ctx context.Context, f *flight) (*View, error) {
	select {
	case <-f.done:
		s.leave(f)
		return f.view, f.err
	case <-ctx.Done():
	}

	// Prefer a result that is already there.
	select {
	case <-f.done:
		s.leave(f)
		return f.view, f.err
	default:
	}

	s.leave(f)
	s.logger.Debug("catalog load abandoned by caller", "reason", ctx.Err())
	return nil, ctx.Err()
}

// leave unregisters a caller. The last caller to leave an unfinished
// flight cancels it and detaches it so later callers start afresh; a queued
// refetch nobody waits for is dropped before it starts.
func (s *Store) leave(f *flight) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f.waiters--
	if f.waiters > 0 {
		return
	}
	select {
	case <-f.done:
		return
	default:
	}

	f.cancel()
	switch f {
	case s.flight:
		s.flight = nil
		s.promote()
	case s.next:
		s.next = nil
	}
}

func (s *Store) run(ctx context.Context, f *flight) {
	defer f.cancel()

	start := time.Now()
	view, err := s.fetchAndBuild(ctx)
	elapsed := time.Since(start).Round(time.Millisecond)

	s.mu.Lock()
	switch {
	case err == nil && ctx.Err() != nil:
		view, err = nil, ctx.Err()
	case err == nil:
		s.cache.replace(view)
	}
	if s.flight == f {
		s.flight = nil
	}
	s.promote()
	f.view, f.err = view, err
	s.mu.Unlock()
	close(f.done)

	switch {
	case err == nil:
		s.logger.Info("catalog loaded",
			"tracks", len(view.Tracks),
			"tags", len(view.Tags.Frequency),
			"elapsed", elapsed)
	case IsCancelled(err):
		s.logger.Debug("catalog load cancelled")
	default:
		s.logger.Error("catalog load failed", "error", err)
	}
}

// fetchAndBuild fetches both resources concurrently, then validates and
// derives. Derivation starts only after both fetches have resolved.
func (s *Store) fetchAndBuild(ctx context.Context) (*View, error) {
	var (
		tracksRaw json.RawMessage
		aggRaw    json.RawMessage
		aggErr    error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := s.fetcher.FetchJSON(gctx, s.sources.Tracks)
		if err != nil {
			return err
		}
		tracksRaw = raw
		return nil
	})
	if len(s.sources.Aggregates) > 0 {
		g.Go(func() error {
			// The aggregate counts are optional; their failure is absorbed.
			aggRaw, aggErr = s.fetcher.FetchJSON(gctx, s.sources.Aggregates)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, networkError(ResourceTracks, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tracks := decodeTracks(tracksRaw, s.logger)

	aggregates := model.EmptyAggregateCounts()
	switch {
	case aggErr != nil:
		s.logger.Warn("aggregate counts unavailable, using empty counts", "error", networkError(ResourceAggregates, aggErr))
	case aggRaw != nil:
		aggregates = decodeAggregates(aggRaw, s.logger)
	}

	enrich(tracks, s.positions)

	return newView(tracks, aggregates, s.now()), nil
}
