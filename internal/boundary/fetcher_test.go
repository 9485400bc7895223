package boundary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

// TestFetcherFetch tests download, caching, and failure behavior.
func TestFetcherFetch(t *testing.T) {
	t.Parallel()

	t.Run("downloads and persists the boundary file", func(t *testing.T) {
		t.Parallel()

		body := `{"type":"FeatureCollection","features":[]}`
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/NUTS_RG_01M_2024_4326_LEVL_0.geojson" {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write([]byte(body))
		}))
		defer srv.Close()

		cacheDir := t.TempDir()
		f := NewFetcher(cacheDir, WithBaseURL(srv.URL))

		path, err := f.Fetch(context.Background(), 2024, 0)
		if err != nil {
			t.Fatalf("expected fetch to succeed, got %v", err)
		}
		if filepath.Dir(path) != cacheDir {
			t.Errorf("expected file in cache dir, got %s", path)
		}

		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != body {
			t.Errorf("expected cached body %q, got %q", body, got)
		}
	})

	t.Run("second fetch uses cache without network access", func(t *testing.T) {
		t.Parallel()

		var requests atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			requests.Add(1)
			_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[]}`))
		}))
		defer srv.Close()

		f := NewFetcher(t.TempDir(), WithBaseURL(srv.URL))

		first, err := f.Fetch(context.Background(), 2016, 2)
		if err != nil {
			t.Fatal(err)
		}
		second, err := f.Fetch(context.Background(), 2016, 2)
		if err != nil {
			t.Fatal(err)
		}

		if first != second {
			t.Errorf("expected identical cache paths, got %q and %q", first, second)
		}
		if n := requests.Load(); n != 1 {
			t.Errorf("expected exactly 1 HTTP request, got %d", n)
		}
	})

	t.Run("non-success status returns AcquisitionError without partial file", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer srv.Close()

		cacheDir := t.TempDir()
		f := NewFetcher(cacheDir, WithBaseURL(srv.URL))

		_, err := f.Fetch(context.Background(), 2024, 3)

		var acqErr *AcquisitionError
		if !errors.As(err, &acqErr) {
			t.Fatalf("expected AcquisitionError, got %v", err)
		}
		if acqErr.Vintage != 2024 || acqErr.Level != 3 {
			t.Errorf("expected error tagged (2024, 3), got (%d, %d)", acqErr.Vintage, acqErr.Level)
		}

		// A failed download must not publish anything at the cache path.
		if _, statErr := os.Stat(filepath.Join(cacheDir, f.Filename(2024, 3))); !os.IsNotExist(statErr) {
			t.Error("expected no cached file after failed download")
		}
	})

	t.Run("unreachable server returns AcquisitionError", func(t *testing.T) {
		t.Parallel()

		f := NewFetcher(t.TempDir(), WithBaseURL("http://127.0.0.1:1"))

		_, err := f.Fetch(context.Background(), 2024, 0)

		var acqErr *AcquisitionError
		if !errors.As(err, &acqErr) {
			t.Fatalf("expected AcquisitionError, got %v", err)
		}
	})
}
