package cover

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	apphttp "github.com/handiism/music-universe/internal/http"
	ioutils "github.com/handiism/music-universe/internal/io"
	"github.com/handiism/music-universe/internal/model"
)

// ErrInvalidName is returned for cover names that escape the cover directory.
var ErrInvalidName = errors.New("invalid cover name")

// ErrNoCover is returned when a track has no cover to show.
var ErrNoCover = errors.New("track has no cover")

const (
	// DefaultRemoteTimeout bounds the download of one remote cover.
	DefaultRemoteTimeout = 10 * time.Second

	// maxRemoteMemo caps how many remote thumbnails stay in memory.
	maxRemoteMemo = 256
)

// Service produces JPEG thumbnails of track covers.
//
// Local covers are read from the cover directory; absolute URLs are
// downloaded with the HTTP client. Concurrent requests for the same cover
// share one decode, and finished thumbnails are kept in memory for the
// life of the process. At most maxRemoteMemo remote thumbnails are kept;
// past that they are rebuilt on each request.
type Service struct {
	dir           string
	maxSize       int
	client        *apphttp.Client
	remoteTimeout time.Duration
	images        *ioutils.ImageService
	logger        *slog.Logger

	group singleflight.Group

	mu          sync.RWMutex
	memo        map[string][]byte
	remoteMemo  int
	remoteLimit int
}

// NewService creates a cover service reading local covers from dir.
func NewService(dir string, maxSize int, client *apphttp.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		dir:           dir,
		maxSize:       maxSize,
		client:        client,
		remoteTimeout: DefaultRemoteTimeout,
		images:        ioutils.NewImageService(),
		logger:        logger,
		memo:          make(map[string][]byte),
		remoteLimit:   maxRemoteMemo,
	}
}

// SetRemoteTimeout changes the bound on remote cover downloads. Zero or
// less keeps the current value.
func (s *Service) SetRemoteTimeout(d time.Duration) {
	if d > 0 {
		s.remoteTimeout = d
	}
}

// Resolve returns the cover location to show for a track, preferring the
// mobile cover when mobile is set. Relative covers are returned as is.
func Resolve(t *model.Track, mobile bool) string {
	return model.ResolveCover(t, model.CoverOptions{Mobile: mobile})
}

// TrackThumbnail returns the thumbnail of a track's resolved cover.
func (s *Service) TrackThumbnail(ctx context.Context, t *model.Track, mobile bool) ([]byte, error) {
	src := Resolve(t, mobile)
	if src == "" {
		return nil, ErrNoCover
	}
	return s.Thumbnail(ctx, src)
}

// Thumbnail returns the thumbnail for src, a file name under the cover
// directory or an absolute http(s) URL. Callers must only pass URLs taken
// from the catalog, never from a request.
func (s *Service) Thumbnail(ctx context.Context, src string) ([]byte, error) {
	key := src
	if !model.IsAbsoluteURL(src) {
		name, err := cleanName(src)
		if err != nil {
			return nil, err
		}
		key = name
	}

	s.mu.RLock()
	thumb, ok := s.memo[key]
	s.mu.RUnlock()
	if ok {
		return thumb, nil
	}

	// The shared work must not die with the first caller's request.
	v, err, shared := s.group.Do(key, func() (any, error) {
		return s.build(context.WithoutCancel(ctx), key)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("cover thumbnail shared", "cover", key)
	}
	return v.([]byte), nil
}

func (s *Service) build(ctx context.Context, key string) ([]byte, error) {
	data, err := s.read(ctx, key)
	if err != nil {
		return nil, err
	}

	thumb, err := s.images.Thumbnail(ctx, data, s.maxSize)
	if err != nil {
		return nil, fmt.Errorf("thumbnail %s: %w", key, err)
	}

	s.remember(key, thumb)

	s.logger.Debug("cover thumbnail built", "cover", key, "bytes", len(thumb))
	return thumb, nil
}

func (s *Service) remember(key string, thumb []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if model.IsAbsoluteURL(key) {
		if s.remoteMemo >= s.remoteLimit {
			return
		}
		s.remoteMemo++
	}
	s.memo[key] = thumb
}

func (s *Service) read(ctx context.Context, key string) ([]byte, error) {
	if model.IsAbsoluteURL(key) {
		if s.client == nil {
			return nil, fmt.Errorf("remote cover %s: no HTTP client", key)
		}
		// The build is shared and detached from callers; only this bounds it.
		ctx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
		defer cancel()
		return s.client.Get(ctx, key)
	}
	return os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(key)))
}

// cleanName rejects names that would leave the cover directory.
func cleanName(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	cleaned := path.Clean("/" + name)[1:]
	if cleaned == "" || cleaned != strings.TrimPrefix(name, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return cleaned, nil
}
