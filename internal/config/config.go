package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These mirror the Eurostat GISCO NUTS distribution layout and the
// resolution parameters that work for continental-scale European data.
const (
	// DefaultBaseURL is the Eurostat GISCO NUTS GeoJSON distribution.
	// Each (vintage, level) pair maps to exactly one file below it.
	DefaultBaseURL = "https://gisco-services.ec.europa.eu/distribution/v2/nuts/geojson/"

	// DefaultFilenameTemplate builds the boundary file name from a
	// vintage year and a granularity level, in that order. The 01M
	// variant is the 1:1 million simplified geometry, which keeps
	// downloads small; the 50 km resolution bound absorbs the
	// simplification error near coastlines.
	DefaultFilenameTemplate = "NUTS_RG_01M_%d_4326_LEVL_%d.geojson"

	// DefaultIDProperty is the GeoJSON feature property carrying the
	// region identifier.
	DefaultIDProperty = "NUTS_ID"

	// DefaultNameProperty is the GeoJSON feature property carrying the
	// region display name.
	DefaultNameProperty = "NUTS_NAME"

	// DefaultMaxDistance is the maximum resolution distance in metres.
	// 50 km accommodates coastal points that fall just outside
	// simplified coastline polygons while refusing matches so distant
	// they would misattribute a point to an unrelated region.
	DefaultMaxDistance = 50_000.0

	// DefaultFetchTimeout bounds one boundary download. The largest
	// level-3 file is a few tens of megabytes, so a generous timeout
	// avoids false failures on slow links while still guaranteeing the
	// fetch cannot block forever.
	DefaultFetchTimeout = 5 * time.Minute

	// DefaultConcurrency is the number of files patched in parallel.
	// Resolution is CPU-bound against read-only indices, so a small
	// fixed degree is enough; the four index builds have their own
	// natural parallelism of four.
	DefaultConcurrency = 4

	// DefaultRequestsPerSecond limits boundary downloads. The GISCO
	// service is a shared public resource; at most eight files are
	// fetched per run, so politeness costs almost nothing.
	DefaultRequestsPerSecond = 2.0

	// DefaultFileGlob selects input tables when none are given on the
	// command line.
	DefaultFileGlob = "*.csv"

	// DefaultLatitudeColumn is the input column carrying latitude.
	DefaultLatitudeColumn = "latitude"

	// DefaultLongitudeColumn is the input column carrying longitude.
	DefaultLongitudeColumn = "longitude"

	// AppName is the application name used for XDG directory paths.
	AppName = "regionpatch"
)

// DefaultVintages returns the default ordered vintage list: the 2024
// release as the primary source, with 2016 as the fallback so regions
// retired between releases (e.g. the UK after Brexit) remain resolvable.
func DefaultVintages() []int {
	return []int{2024, 2016}
}

// Config holds all configuration options for regionpatch.
// This struct is populated from CLI flags and the optional config file and
// passed through the application via dependency injection rather than
// global state.
type Config struct {
	// BaseURL is the boundary source root. One HTTP GET per
	// (vintage, level) pair is issued below it on a cache miss.
	BaseURL string

	// FilenameTemplate is the fmt template producing a boundary file
	// name from (vintage, level). It must contain two integer verbs.
	FilenameTemplate string

	// IDProperty is the GeoJSON feature property holding the region
	// identifier.
	IDProperty string

	// NameProperty is the GeoJSON feature property holding the region
	// display name.
	NameProperty string

	// Vintages is the ordered list of dataset release years, primary
	// first. Later entries only contribute regions whose identifier is
	// absent from all earlier entries.
	Vintages []int

	// CacheDir is the directory where fetched boundary files are
	// persisted. Repeated runs skip network access for cached files.
	CacheDir string

	// MaxDistance is the maximum resolution distance in metres. Points
	// farther than this from every region polygon stay unresolved.
	MaxDistance float64

	// FetchTimeout bounds each boundary download, connection included.
	FetchTimeout time.Duration

	// RequestsPerSecond rate-limits boundary downloads.
	RequestsPerSecond float64

	// Concurrency is the number of input files patched in parallel.
	Concurrency int

	// Files is the list of input table paths to patch. When empty, the
	// patch command discovers files matching FileGlob instead.
	Files []string

	// FileGlob is the glob pattern used to discover input tables when
	// no explicit paths are given.
	FileGlob string

	// LatitudeColumn and LongitudeColumn name the coordinate columns
	// in the input tables.
	LatitudeColumn  string
	LongitudeColumn string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport enables JSON run-report output instead of the
	// human-readable format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown run-report output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the run report.
	// When set, the report is written there instead of stdout.
	ReportFile string

	// ConfigFilePath is the path to the configuration file. If empty,
	// the tool searches for .regionpatch in the current directory and
	// then in the user's home directory.
	ConfigFilePath string

	// DBDir is the directory holding the SQLite run database. Patch
	// runs are recorded there for the history command.
	DBDir string

	// SaveToDB indicates whether to record the run in the database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
// All fields are set to the defaults above; callers override specific
// values from flags or the config file after creation.
func NewConfig() *Config {
	return &Config{
		BaseURL:           DefaultBaseURL,
		FilenameTemplate:  DefaultFilenameTemplate,
		IDProperty:        DefaultIDProperty,
		NameProperty:      DefaultNameProperty,
		Vintages:          DefaultVintages(),
		CacheDir:          XDGCacheDir(),
		MaxDistance:       DefaultMaxDistance,
		FetchTimeout:      DefaultFetchTimeout,
		RequestsPerSecond: DefaultRequestsPerSecond,
		Concurrency:       DefaultConcurrency,
		FileGlob:          DefaultFileGlob,
		LatitudeColumn:    DefaultLatitudeColumn,
		LongitudeColumn:   DefaultLongitudeColumn,
	}
}

// XDGDataDir returns the XDG data directory for regionpatch.
// On Linux: ~/.local/share/regionpatch
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for regionpatch.
// On Linux: ~/.cache/regionpatch
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid. The first error
// found is returned because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrNoBaseURL
	}

	// Vintage order is the merge precedence; an empty list means no
	// boundary data at all.
	if len(c.Vintages) == 0 {
		return ErrNoVintages
	}
	seen := make(map[int]struct{}, len(c.Vintages))
	for _, v := range c.Vintages {
		if _, ok := seen[v]; ok {
			return ErrDuplicateVintage
		}
		seen[v] = struct{}{}
	}

	if c.MaxDistance <= 0 {
		return ErrInvalidMaxDistance
	}

	if c.FetchTimeout <= 0 {
		return ErrInvalidFetchTimeout
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.RequestsPerSecond <= 0 {
		return ErrInvalidRateLimit
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
