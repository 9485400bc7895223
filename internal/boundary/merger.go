package boundary

import (
	"context"
	"log/slog"

	"github.com/epifield/regionpatch/internal/model"
)

// PathFetcher resolves a (vintage, level) pair to a local boundary file,
// downloading it if necessary. Satisfied by *Fetcher.
type PathFetcher interface {
	Fetch(ctx context.Context, vintage, level int) (string, error)
}

// Merger builds the merged boundary set for a level across vintages.
//
// Vintages are processed in priority order, primary first. A later
// vintage only contributes regions whose identifier is absent from the
// accumulated set. This is a replacement-avoidance policy, not a
// correctness check: it intentionally keeps stale fallback regions
// (e.g. a pre-secession boundary) permanently resolvable for historical
// points. Overlapping geometry across vintages is not reconciled;
// duplicate identifiers are the only collision signal.
type Merger struct {
	fetcher PathFetcher
	loader  *Loader
	logger  *slog.Logger
}

// MergerOption configures a Merger.
type MergerOption func(*Merger)

// WithMergerLogger sets a custom logger.
func WithMergerLogger(logger *slog.Logger) MergerOption {
	return func(m *Merger) {
		m.logger = logger
	}
}

// NewMerger creates a Merger using the given fetcher and loader.
func NewMerger(fetcher PathFetcher, loader *Loader, opts ...MergerOption) *Merger {
	m := &Merger{
		fetcher: fetcher,
		loader:  loader,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.logger == nil {
		m.logger = slog.Default()
	}

	return m
}

// BuildSet fetches, loads, and merges all vintages for one level.
// Any fetch or parse failure aborts the build: there is no partial-success
// mode for a level's boundary set.
func (m *Merger) BuildSet(ctx context.Context, level int, vintages []int) (*model.BoundarySet, error) {
	set := model.NewBoundarySet(level)

	for i, vintage := range vintages {
		path, err := m.fetcher.Fetch(ctx, vintage, level)
		if err != nil {
			return nil, err
		}

		regions, err := m.loader.Load(path, vintage)
		if err != nil {
			return nil, err
		}

		var added int
		for _, r := range regions {
			if set.Add(r) {
				added++
			}
		}

		if i > 0 {
			set.FallbackCounts[vintage] = added
			if added > 0 {
				m.logger.Info("fallback vintage contributed regions",
					"level", level,
					"vintage", vintage,
					"added", added,
				)
			}
		}
	}

	m.logger.Info("merged boundary set",
		"level", level,
		"regions", set.Len(),
	)

	return set, nil
}
