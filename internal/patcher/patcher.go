package patcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/epifield/regionpatch/internal/geo"
	"github.com/epifield/regionpatch/internal/model"
	"github.com/epifield/regionpatch/internal/table"
)

// ErrMissingCoordinateColumns is returned when an input table lacks the
// latitude or longitude column. Such a table cannot be patched at all,
// unlike individual rows with empty coordinates, which pass through.
var ErrMissingCoordinateColumns = errors.New("table is missing the latitude or longitude column")

// Patcher enriches observation tables using one resolver per granularity
// level. It is read-only after construction and safe for concurrent use.
type Patcher struct {
	// resolvers holds one resolver per level; the slice index is the level.
	resolvers []*geo.Resolver

	// latColumn and lonColumn name the coordinate columns.
	latColumn string
	lonColumn string

	// logger is used for per-file progress logging.
	logger *slog.Logger
}

// Option configures a Patcher.
type Option func(*Patcher)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Patcher) {
		p.logger = logger
	}
}

// WithCoordinateColumns overrides the coordinate column names.
// Defaults are "latitude" and "longitude".
func WithCoordinateColumns(lat, lon string) Option {
	return func(p *Patcher) {
		p.latColumn = lat
		p.lonColumn = lon
	}
}

// New creates a Patcher over the given per-level resolvers.
func New(resolvers []*geo.Resolver, opts ...Option) *Patcher {
	p := &Patcher{
		resolvers: resolvers,
		latColumn: "latitude",
		lonColumn: "longitude",
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// PatchFile patches one table in place and returns its statistics.
//
// Dropping the region columns before re-adding them makes repeated runs
// idempotent: patching an already-patched table yields identical output.
func (p *Patcher) PatchFile(ctx context.Context, path string) (*model.FileReport, error) {
	start := time.Now()

	tbl, err := table.Read(path)
	if err != nil {
		return nil, err
	}

	tbl.DropColumns(model.RegionColumns()...)

	latIdx := tbl.ColumnIndex(p.latColumn)
	lonIdx := tbl.ColumnIndex(p.lonColumn)
	if latIdx < 0 || lonIdx < 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrMissingCoordinateColumns)
	}

	// Partition rows by coordinate presence. rowFor maps each
	// coordinate back to its original row position so results can be
	// spliced into the full table afterwards.
	var coords []model.Coordinate
	var rowFor []int
	for i, row := range tbl.Rows {
		lat, latOK := parseCoordinate(row[latIdx])
		lon, lonOK := parseCoordinate(row[lonIdx])
		if latOK && lonOK {
			coords = append(coords, model.Coordinate{Lat: lat, Lon: lon})
			rowFor = append(rowFor, i)
		}
	}

	colStart := tbl.AppendColumns(model.RegionColumns()...)

	report := &model.FileReport{
		Path:      path,
		Rows:      len(tbl.Rows),
		CoordRows: len(coords),
	}

	if len(coords) == 0 {
		// Nothing to resolve; the new columns stay empty.
		if err := tbl.Write(); err != nil {
			return nil, err
		}
		report.Duration = time.Since(start)
		p.logger.Info("no rows with coordinates, skipped resolution", "file", path)
		return report, nil
	}

	// The four levels write disjoint column pairs and disjoint counters,
	// so they can run concurrently against the shared row slices.
	g, ctx := errgroup.WithContext(ctx)
	for level, resolver := range p.resolvers {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			results := resolver.ResolveMany(coords)
			idCol := colStart + 2*level
			for k, res := range results {
				row := tbl.Rows[rowFor[k]]
				row[idCol] = res.ID
				row[idCol+1] = res.Name
				if res.Resolved() {
					report.LevelMatched[level]++
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := tbl.Write(); err != nil {
		return nil, err
	}

	report.Duration = time.Since(start)
	p.logger.Info("patched table",
		"file", path,
		"rows", report.Rows,
		"coordRows", report.CoordRows,
		"matched", report.Matched(),
		"matchRate", fmt.Sprintf("%.1f%%", report.MatchRate()*100),
	)

	return report, nil
}

// parseCoordinate parses one coordinate cell. Empty or non-numeric cells
// mean the row is excluded from spatial resolution, not an error.
func parseCoordinate(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
