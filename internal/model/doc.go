// Package model defines the core data structures used throughout regionpatch.
//
// This package contains the following main types:
//   - Region: An administrative region boundary (id, name, geometry)
//   - BoundarySet: The merged regions for one granularity level
//   - Coordinate: A geographic point observation
//   - ResolutionResult: The region assignment for one point at one level
//   - RunReport / FileReport: Statistics for a patch run
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (boundary, geo, patcher, report, database)
// need to use these types, so centralizing them prevents import cycles.
package model
