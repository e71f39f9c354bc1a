// Package diag defines the diagnostic model shared by the header compiler,
// the manifest loader and the coherence checker.
//
// Diagnostic is the central record:
//
//   - Severity: info, warning or error.
//   - Code: compact numeric identifier with a stable string form (HDR, PAT,
//     CFG and COH ranges, see codes.go).
//   - Message: short, actionable text.
//   - Subject: what the finding is about, usually an impl name.
//   - Notes: secondary subjects, e.g. the other impl of an overlapping pair.
//
// Producers emit through a Reporter; BagReporter aggregates into a Bag which
// supports limits, sorting and deduplication. FormatShort renders the
// one-line-per-entry form used by the CLI and tests.
//
// Diagnostics carry no pointers into pattern storage so they can be cached
// and serialised safely.
package diag
