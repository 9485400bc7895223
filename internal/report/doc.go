// Package report renders patch-run summaries in multiple formats:
// a human-readable text report for terminals and a Markdown report for
// documentation and sharing. JSON output is handled by the command layer
// with encoding/json since it is a straight serialization of the model.
package report
