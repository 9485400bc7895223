// Package patcher orchestrates the batch enrichment of observation
// tables with region assignments.
//
// For each input table it strips any stale region columns, partitions
// rows by coordinate presence, resolves the coordinate-bearing rows
// against all four granularity levels, splices the eight region columns
// back at the original row positions, and writes the table back in place.
// Rows without coordinates pass through with empty region fields.
//
// A BatchProcessor runs many files concurrently against the shared
// read-only resolvers; one unreadable file is reported, not fatal.
package patcher
