package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".regionpatch"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the YAML configuration file shape. All fields are optional;
// zero values leave the corresponding Config field untouched so CLI flags
// and defaults win where the file is silent.
type File struct {
	// BaseURL overrides the boundary source root.
	BaseURL string `yaml:"base_url"`

	// FilenameTemplate overrides the boundary file name template.
	FilenameTemplate string `yaml:"filename_template"`

	// IDProperty and NameProperty override the GeoJSON feature
	// properties carrying the region identifier and display name.
	IDProperty   string `yaml:"id_property"`
	NameProperty string `yaml:"name_property"`

	// Vintages overrides the ordered vintage list, primary first.
	Vintages []int `yaml:"vintages"`

	// CacheDir overrides the boundary cache directory.
	CacheDir string `yaml:"cache_dir"`

	// MaxDistanceKM overrides the maximum resolution distance,
	// in kilometres for readability.
	MaxDistanceKM float64 `yaml:"max_distance_km"`

	// FetchTimeout overrides the per-download timeout (e.g. "2m").
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// RequestsPerSecond overrides the download rate limit.
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Concurrency overrides the number of files patched in parallel.
	Concurrency int `yaml:"concurrency"`

	// Files lists input table paths to patch.
	Files []string `yaml:"files"`

	// Glob overrides the discovery pattern used when Files is empty.
	Glob string `yaml:"glob"`

	// LatitudeColumn and LongitudeColumn override the coordinate
	// column names in the input tables.
	LatitudeColumn  string `yaml:"latitude_column"`
	LongitudeColumn string `yaml:"longitude_column"`
}

// Apply copies the file's non-zero settings onto cfg.
func (f *File) Apply(cfg *Config) {
	if f.BaseURL != "" {
		cfg.BaseURL = f.BaseURL
	}
	if f.FilenameTemplate != "" {
		cfg.FilenameTemplate = f.FilenameTemplate
	}
	if f.IDProperty != "" {
		cfg.IDProperty = f.IDProperty
	}
	if f.NameProperty != "" {
		cfg.NameProperty = f.NameProperty
	}
	if len(f.Vintages) > 0 {
		cfg.Vintages = f.Vintages
	}
	if f.CacheDir != "" {
		cfg.CacheDir = f.CacheDir
	}
	if f.MaxDistanceKM > 0 {
		cfg.MaxDistance = f.MaxDistanceKM * 1000
	}
	if f.FetchTimeout > 0 {
		cfg.FetchTimeout = f.FetchTimeout
	}
	if f.RequestsPerSecond > 0 {
		cfg.RequestsPerSecond = f.RequestsPerSecond
	}
	if f.Concurrency > 0 {
		cfg.Concurrency = f.Concurrency
	}
	if len(f.Files) > 0 {
		cfg.Files = f.Files
	}
	if f.Glob != "" {
		cfg.FileGlob = f.Glob
	}
	if f.LatitudeColumn != "" {
		cfg.LatitudeColumn = f.LatitudeColumn
	}
	if f.LongitudeColumn != "" {
		cfg.LongitudeColumn = f.LongitudeColumn
	}
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .regionpatch in the current directory
// 3. Look for .regionpatch in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	// If explicit path is provided, use it
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	// Check home directory
	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
