// Package geo implements the spatial side of region resolution.
//
// It projects boundary geometry and query points from geographic
// coordinates into the ETRS89-extended / LAEA Europe plane (EPSG:3035),
// where Euclidean distance is metres, builds an R-tree index over the
// projected polygons, and resolves points to their nearest region within
// a bounded search radius.
//
// Nearest-region matching is used instead of strict point-in-polygon
// containment so that coastal and boundary points lying just outside
// simplified polygons still resolve to the right region.
package geo
