// Package config provides configuration structures and utilities for
// regionpatch. It defines the boundary source settings, cache locations,
// resolution parameters, and report generation preferences.
package config
