// Package boundary acquires and merges administrative boundary datasets.
//
// It contains three collaborating pieces:
//   - Fetcher: downloads one boundary file per (vintage, level) pair and
//     caches it on disk, so repeated runs skip network access
//   - Loader: parses a boundary GeoJSON file into Region values
//   - Merger: combines regions across vintages for one level, primary
//     vintage first, adding fallback regions only for unseen identifiers
//
// A failed fetch or parse is fatal for the level being built: no partial
// boundary set is usable for resolution.
package boundary
