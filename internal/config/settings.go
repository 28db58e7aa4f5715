package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"

	"github.com/handiism/music-universe/internal/catalog"
	apphttp "github.com/handiism/music-universe/internal/http"
)

// AppName names the settings and data directories.
const AppName = "music-universe"

// envPrefix prefixes every environment override.
const envPrefix = "MUSICVERSE_"

// Settings holds all configuration options.
type Settings struct {
	// Catalog source
	BaseURL        string   `json:"base_url"`
	TrackPaths     []string `json:"track_paths"`
	AggregatePaths []string `json:"aggregate_paths"`

	// Fetch policy
	RequestTimeout float64 `json:"request_timeout"` // seconds
	MaxCandidates  int     `json:"max_candidates"`
	UserAgent      string  `json:"user_agent"`

	// Catalog behaviour
	PositionRange float64 `json:"position_range"`
	CacheMaxAge   float64 `json:"cache_max_age"` // seconds, 0 = never expires

	// Server
	ListenAddr string `json:"listen_addr"`
	DataDir    string `json:"data_dir"`

	// Covers
	CoverDir         string `json:"cover_dir"`
	ThumbnailMaxSize int    `json:"thumbnail_max_size"`

	// Logging
	LogLevel  string `json:"log_level"`  // debug, info, warn, error
	LogFormat string `json:"log_format"` // text, json
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	dataDir := filepath.Join(xdg.DataHome, AppName, "data")
	return &Settings{
		BaseURL:        "http://localhost:8080/",
		TrackPaths:     []string{"data/data.json", "/data/data.json"},
		AggregatePaths: []string{"data/aggregated_data.json", "/data/aggregated_data.json"},

		RequestTimeout: 5,
		MaxCandidates:  0,
		UserAgent:      apphttp.DefaultUserAgent,

		PositionRange: catalog.DefaultPositionRadius,
		CacheMaxAge:   0,

		ListenAddr: ":8080",
		DataDir:    dataDir,

		CoverDir:         filepath.Join(dataDir, "covers"),
		ThumbnailMaxSize: 600,

		LogLevel:  "info",
		LogFormat: "text",
	}
}

// DefaultPath returns the settings file location under the XDG config home.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "settings.json")
}

// Load reads settings from a JSON file. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return settings, nil
}

// LoadWithEnv loads the settings file, then applies environment overrides.
// A .env file in the working directory is read first; variables already
// set in the environment win over it. A missing .env is fine; one that
// cannot be parsed is an error.
func LoadWithEnv(path string) (*Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	settings, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := settings.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return settings, settings.Validate()
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides fields from MUSICVERSE_* variables. lookup is usually
// os.LookupEnv.
func (s *Settings) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(envPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	if v, ok := get("BASE_URL"); ok {
		s.BaseURL = v
	}
	if v, ok := get("TRACK_PATHS"); ok {
		s.TrackPaths = splitList(v)
	}
	if v, ok := get("AGGREGATE_PATHS"); ok {
		s.AggregatePaths = splitList(v)
	}
	if v, ok := get("USER_AGENT"); ok {
		s.UserAgent = v
	}
	if v, ok := get("LISTEN_ADDR"); ok {
		s.ListenAddr = v
	}
	if v, ok := get("DATA_DIR"); ok {
		s.DataDir = v
	}
	if v, ok := get("COVER_DIR"); ok {
		s.CoverDir = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		s.LogLevel = v
	}
	if v, ok := get("LOG_FORMAT"); ok {
		s.LogFormat = v
	}

	floats := []struct {
		name string
		dst  *float64
	}{
		{"REQUEST_TIMEOUT", &s.RequestTimeout},
		{"POSITION_RANGE", &s.PositionRange},
		{"CACHE_MAX_AGE", &s.CacheMaxAge},
	}
	for _, f := range floats {
		if v, ok := get(f.name); ok {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, f.name, err)
			}
			*f.dst = n
		}
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"MAX_CANDIDATES", &s.MaxCandidates},
		{"THUMBNAIL_MAX_SIZE", &s.ThumbnailMaxSize},
	}
	for _, f := range ints {
		if v, ok := get(f.name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, f.name, err)
			}
			*f.dst = n
		}
	}

	return nil
}

// Validate rejects values no component can work with.
func (s *Settings) Validate() error {
	var errs []error
	if len(s.TrackPaths) == 0 {
		errs = append(errs, errors.New("track_paths must list at least one location"))
	}
	if s.RequestTimeout < 0 {
		errs = append(errs, errors.New("request_timeout must not be negative"))
	}
	if s.MaxCandidates < 0 {
		errs = append(errs, errors.New("max_candidates must not be negative"))
	}
	if s.PositionRange <= 0 {
		errs = append(errs, errors.New("position_range must be positive"))
	}
	if s.CacheMaxAge < 0 {
		errs = append(errs, errors.New("cache_max_age must not be negative"))
	}
	if s.ThumbnailMaxSize < 0 {
		errs = append(errs, errors.New("thumbnail_max_size must not be negative"))
	}
	return errors.Join(errs...)
}

// ToPolicy converts settings to the candidate fetch policy.
func (s *Settings) ToPolicy() apphttp.Policy {
	return apphttp.Policy{
		Timeout:       seconds(s.RequestTimeout),
		MaxCandidates: s.MaxCandidates,
	}
}

// ToSources resolves the configured paths against BaseURL.
func (s *Settings) ToSources() (catalog.Sources, error) {
	tracks, err := apphttp.ResolveCandidates(s.BaseURL, s.TrackPaths)
	if err != nil {
		return catalog.Sources{}, err
	}
	aggregates, err := apphttp.ResolveCandidates(s.BaseURL, s.AggregatePaths)
	if err != nil {
		return catalog.Sources{}, err
	}
	return catalog.Sources{Tracks: tracks, Aggregates: aggregates}, nil
}

// MaxAge returns CacheMaxAge as a duration.
func (s *Settings) MaxAge() time.Duration {
	return seconds(s.CacheMaxAge)
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

func splitList(v string) []string {
	var items []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
