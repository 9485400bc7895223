// Package main provides the entry point for the regionpatch CLI.
//
// regionpatch assigns geocoded observations to administrative regions at
// four nested granularity levels and appends the assignments as columns
// to CSV tables.
//
// Usage:
//
//	regionpatch patch data/*.csv
//	regionpatch fetch
//
// See --help for all available options.
package main

// main is the entry point for regionpatch.
func main() {
	Execute()
}
