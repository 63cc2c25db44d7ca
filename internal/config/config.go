package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	// HoverDelayMs is how long a dragged item must linger over another slot
	// before the two slots swap mid-drag.
	HoverDelayMs int `json:"hover_delay_ms,omitempty"`

	// LongPressMs is how long a press must be held before edit mode starts
	// and the item is picked up.
	LongPressMs int `json:"long_press_ms,omitempty"`

	// CaptureRadius is the maximum distance in pixels between
	// a release point and a slot center for that slot to receive the drop.
	CaptureRadius float64 `json:"capture_radius,omitempty"`

	// ExtractBuffer expands the folder window bounds on every side. A folder
	// drag released outside the expanded bounds moves the link to the desktop.
	ExtractBuffer float64 `json:"extract_buffer,omitempty"`

	// FaviconService is a printf template receiving the hostname of a new link.
	FaviconService string `json:"favicon_service,omitempty"`

	// SearchEngine is the engine the search bar starts with.
	SearchEngine string `json:"search_engine,omitempty"`

	// WebBind and WebPort control the address of `perch serve`.
	WebBind string `json:"web_bind,omitempty"`
	WebPort int    `json:"web_port,omitempty"`

	// AllowedPaths is an allowlist of directories for import/export operations.
	// Paths outside ~/.perch/exports require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for import/export.
	// Symlink and extension checks still apply.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of tool type prefixes to disable entirely.
	// Known types: "desktop", "folder", "search".
	DisabledTypes []string `json:"disabled_types,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		HoverDelayMs:   800,
		LongPressMs:    500,
		CaptureRadius:  100,
		ExtractBuffer:  50,
		FaviconService: "https://www.google.com/s2/favicons?domain=%s&sz=128",
		SearchEngine:   "google",
		WebBind:        "127.0.0.1",
		WebPort:        7410,
	}
}

// HoverDelay returns HoverDelayMs as a duration.
func (c *Config) HoverDelay() time.Duration {
	return time.Duration(c.HoverDelayMs) * time.Millisecond
}

// LongPress returns LongPressMs as a duration.
func (c *Config) LongPress() time.Duration {
	return time.Duration(c.LongPressMs) * time.Millisecond
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.perch.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.HoverDelayMs = pickInt(overlay.HoverDelayMs, base.HoverDelayMs)
	result.LongPressMs = pickInt(overlay.LongPressMs, base.LongPressMs)
	result.WebPort = pickInt(overlay.WebPort, base.WebPort)
	result.DBMaxOpenConns = pickInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = pickInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns)

	result.CaptureRadius = overlay.CaptureRadius
	if result.CaptureRadius <= 0 {
		result.CaptureRadius = base.CaptureRadius
	}
	result.ExtractBuffer = overlay.ExtractBuffer
	if result.ExtractBuffer <= 0 {
		result.ExtractBuffer = base.ExtractBuffer
	}

	result.FaviconService = pickString(overlay.FaviconService, base.FaviconService)
	result.SearchEngine = pickString(overlay.SearchEngine, base.SearchEngine)
	result.WebBind = pickString(overlay.WebBind, base.WebBind)

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	// Arrays: merge and deduplicate
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

func pickInt(overlay, base int) int {
	if overlay > 0 {
		return overlay
	}
	return base
}

func pickString(overlay, base string) string {
	if s := strings.TrimSpace(overlay); s != "" {
		return s
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
