// Package runner drives one reconciliation pass end to end: environment
// checks, the recursive scan, the two matching passes, and staging, with
// a per-run id threaded through every log line. Apply runs take an
// advisory file lock so only one process stages into an output tree.
package runner
