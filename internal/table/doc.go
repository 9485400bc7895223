// Package table reads and writes the row-oriented CSV tables that the
// patcher enriches. A table is a header plus rows of string cells; ragged
// rows are normalized to the header width on read, and writes replace the
// original file atomically.
package table
