// Package preflight validates the environment before a run: the source
// root must be readable, destination directories must be writable or
// creatable, and optional external binaries are probed for availability.
package preflight
