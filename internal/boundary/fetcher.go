package boundary

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"
)

// Fetcher downloads boundary files and caches them on disk.
// The cache is the idempotence mechanism: a file that already exists at
// its expected path is returned without any network access, so repeated
// runs are free after the first. There is no retry policy beyond a single
// attempt per run.
//
// Design decision: We use a struct with the http.Client rather than
// passing the client on each call because:
//  1. Client configuration (timeouts) should be consistent
//  2. Connection pooling works better with a shared client
//  3. Easier to test with httptest servers
type Fetcher struct {
	// client is the HTTP client used for downloads.
	client *http.Client

	// baseURL is the boundary source root.
	baseURL string

	// filenameTemplate builds a file name from (vintage, level).
	filenameTemplate string

	// cacheDir is where downloaded files are persisted.
	cacheDir string

	// limiter throttles downloads. Shared across concurrent level
	// builds so the combined request rate stays bounded.
	limiter *rate.Limiter

	// logger is used for cache-hit/download logging.
	logger *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithBaseURL sets the boundary source root URL.
func WithBaseURL(baseURL string) FetcherOption {
	return func(f *Fetcher) {
		f.baseURL = baseURL
	}
}

// WithFilenameTemplate sets the fmt template producing a boundary file
// name from a vintage year and a level, in that order.
func WithFilenameTemplate(tmpl string) FetcherOption {
	return func(f *Fetcher) {
		f.filenameTemplate = tmpl
	}
}

// WithTimeout sets the per-download timeout, connection included.
func WithTimeout(timeout time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.client.Timeout = timeout
	}
}

// WithHTTPClient replaces the HTTP client. Mainly useful in tests.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithRateLimit throttles downloads to rps requests per second.
func WithRateLimit(rps float64) FetcherOption {
	return func(f *Fetcher) {
		f.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithFetcherLogger sets a custom logger.
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher caching into cacheDir.
func NewFetcher(cacheDir string, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:           &http.Client{Timeout: 5 * time.Minute},
		cacheDir:         cacheDir,
		filenameTemplate: "NUTS_RG_01M_%d_4326_LEVL_%d.geojson",
		limiter:          rate.NewLimiter(rate.Limit(2), 1),
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.logger == nil {
		f.logger = slog.Default()
	}

	return f
}

// Filename returns the boundary file name for a (vintage, level) pair.
func (f *Fetcher) Filename(vintage, level int) string {
	return fmt.Sprintf(f.filenameTemplate, vintage, level)
}

// Fetch returns the local path of the boundary file for (vintage, level),
// downloading and caching it first if needed. A failed download returns an
// *AcquisitionError and leaves no partial file in the cache.
func (f *Fetcher) Fetch(ctx context.Context, vintage, level int) (string, error) {
	filename := f.Filename(vintage, level)
	dest := filepath.Join(f.cacheDir, filename)

	if _, err := os.Stat(dest); err == nil {
		f.logger.Debug("using cached boundaries",
			"vintage", vintage,
			"level", level,
			"path", dest,
		)
		return dest, nil
	}

	srcURL, err := url.JoinPath(f.baseURL, filename)
	if err != nil {
		return "", &AcquisitionError{Vintage: vintage, Level: level, URL: f.baseURL, Err: err}
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return "", &AcquisitionError{Vintage: vintage, Level: level, URL: srcURL, Err: err}
	}

	f.logger.Info("downloading boundaries",
		"vintage", vintage,
		"level", level,
		"url", srcURL,
	)

	if err := f.download(ctx, srcURL, dest); err != nil {
		return "", &AcquisitionError{Vintage: vintage, Level: level, URL: srcURL, Err: err}
	}

	return dest, nil
}

// download retrieves srcURL and atomically publishes it at dest.
// The body is written to a temporary file in the cache directory and
// renamed into place, so concurrent first-time fetches of the same key
// cannot observe or leave behind a partial file.
func (f *Fetcher) download(ctx context.Context, srcURL, dest string) error {
	if err := os.MkdirAll(f.cacheDir, 0750); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort cleanup

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(f.cacheDir, filepath.Base(dest)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // No-op after successful rename

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close() //nolint:errcheck // Best effort cleanup
		return fmt.Errorf("failed to write boundary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close boundary file: %w", err)
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("failed to publish boundary file: %w", err)
	}

	return nil
}
