// Package config provides configuration management for music-universe.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - MUSICVERSE_* environment overrides, optionally from a .env file
//   - Conversion to the fetch Policy and catalog Sources
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Reads data/data.json, then /data/data.json, relative to BaseURL
//	// 5 second timeout per candidate
//	// Snapshots never expire within a session
//
// # Loading from File
//
//	settings, err := config.LoadWithEnv(config.DefaultPath())
//	if err != nil {
//	    // Uses defaults if the file doesn't exist
//	}
//
// The default path lives under the XDG config home, e.g.
// ~/.config/music-universe/settings.json.
//
// # Environment
//
// Every scalar setting has an override named after its JSON key, e.g.
// MUSICVERSE_BASE_URL or MUSICVERSE_CACHE_MAX_AGE. List settings take a
// comma-separated value.
package config
