package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/handiism/music-universe/internal/audio"
	ioutils "github.com/handiism/music-universe/internal/io"
	"github.com/handiism/music-universe/internal/model"
	"github.com/handiism/music-universe/internal/tags"
)

// Output file names, matching what the catalog fetches.
const (
	TracksFile     = "data.json"
	AggregatesFile = "aggregated_data.json"
	CoversDir      = "covers"
)

// dateLayout is the archive date format written to data.json.
const dateLayout = "2006年01月02日 15:04"

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents an import progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Result summarizes an import.
type Result struct {
	Tracks  int
	Skipped int
	Covers  int
}

// record is one entry of data.json.
type record struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
	Note   string `json:"note,omitempty"`
	Cover  string `json:"cover,omitempty"`
	Date   string `json:"date,omitempty"`
}

// Importer builds catalog data files from a folder of MP3 files.
type Importer struct {
	concurrency int
	location    *time.Location
	onProgress  func(ProgressEvent)
}

// New creates an Importer reading up to concurrency files at once.
// onProgress may be nil; it is called from several goroutines.
func New(concurrency int, onProgress func(ProgressEvent)) *Importer {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Importer{
		concurrency: concurrency,
		location:    time.Local,
		onProgress:  onProgress,
	}
}

// Run scans srcDir recursively for .mp3 files and writes data.json,
// aggregated_data.json and the extracted covers into outDir.
//
// Files whose tags cannot be read are reported and skipped. Records are
// numbered in path order so repeated imports keep their ids.
func (im *Importer) Run(ctx context.Context, srcDir, outDir string) (*Result, error) {
	paths, err := findMP3s(srcDir)
	if err != nil {
		return nil, err
	}
	im.progress(ProgressEvent{Message: fmt.Sprintf("Found %d MP3 files in %s", len(paths), srcDir), Level: LevelInfo})

	files := make([]*audio.FileTags, len(paths))
	var skipped int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.concurrency)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ft, err := audio.ReadTags(p)
			if err != nil {
				atomic.AddInt32(&skipped, 1)
				im.progress(ProgressEvent{Message: fmt.Sprintf("Skipping %s: %v", filepath.Base(p), err), Level: LevelWarning})
				return nil // Continue with other files
			}
			files[i] = ft
			im.progress(ProgressEvent{Message: fmt.Sprintf("Read %s", filepath.Base(p)), Level: LevelVerbose})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records, covers := im.buildRecords(files)

	written, err := im.writeCovers(ctx, outDir, covers)
	if err != nil {
		return nil, err
	}

	if err := writeJSON(ctx, filepath.Join(outDir, TracksFile), records); err != nil {
		return nil, err
	}
	if err := writeJSON(ctx, filepath.Join(outDir, AggregatesFile), aggregate(records)); err != nil {
		return nil, err
	}

	res := &Result{Tracks: len(records), Skipped: int(skipped), Covers: written}
	im.progress(ProgressEvent{
		Message: fmt.Sprintf("Imported %d tracks (%d skipped, %d covers) into %s", res.Tracks, res.Skipped, res.Covers, outDir),
		Level:   LevelSuccess,
	})
	return res, nil
}

func findMP3s(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(p), ".mp3") {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(paths)
	return paths, nil
}

// buildRecords turns tags into records and collects one cover per name.
func (im *Importer) buildRecords(files []*audio.FileTags) ([]record, map[string]*audio.FileTags) {
	records := make([]record, 0, len(files))
	covers := make(map[string]*audio.FileTags)

	for _, ft := range files {
		if ft == nil {
			continue
		}
		rec := record{
			ID:     len(records) + 1,
			Title:  ft.Title,
			Artist: ft.Artist,
			Album:  ft.Album,
			Note:   joinNote(ft.Genre, ft.Comment),
			Date:   time.Unix(ft.ModTime, 0).In(im.location).Format(dateLayout),
		}
		if ft.Cover != nil {
			name := coverName(ft)
			rec.Cover = path.Join(CoversDir, name)
			if _, ok := covers[name]; !ok {
				covers[name] = ft
			}
		}
		records = append(records, rec)
	}

	return records, covers
}

func (im *Importer) writeCovers(ctx context.Context, outDir string, covers map[string]*audio.FileTags) (int, error) {
	dir := filepath.Join(outDir, CoversDir)
	var (
		mu      sync.Mutex
		written int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.concurrency)
	for name, ft := range covers {
		g.Go(func() error {
			if err := ioutils.WriteFileAtomic(gctx, filepath.Join(dir, name), ft.Cover); err != nil {
				return fmt.Errorf("write cover %s: %w", name, err)
			}
			mu.Lock()
			written++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return written, nil
}

// coverName names a cover after its album, or its title for singles.
func coverName(ft *audio.FileTags) string {
	base := model.FirstNonEmpty(ft.Album, ft.Title)
	if ft.Artist != "" {
		base = ft.Artist + " - " + base
	}
	name := ioutils.SanitizeFileName(base)
	if name == "" {
		name = "cover"
	}
	return name + audio.CoverExt(ft.CoverMIME)
}

func joinNote(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

// aggregate computes the artist and style counts served next to data.json.
func aggregate(records []record) model.AggregateCounts {
	counts := model.EmptyAggregateCounts()
	styles := make(map[string]int)
	for _, r := range records {
		for _, name := range model.SplitArtists(r.Artist) {
			counts.ArtistCounts[name]++
		}
		for _, tag := range tags.Derive(r.Note) {
			styles[tag]++
		}
	}
	counts.StyleCounts = tags.MergeStyleCounts(styles)
	return counts
}

func writeJSON(ctx context.Context, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return ioutils.WriteFileAtomic(ctx, path, append(data, '\n'))
}

func (im *Importer) progress(event ProgressEvent) {
	if im.onProgress != nil {
		im.onProgress(event)
	}
}
