// Package logging provides slog construction and shared structured
// logging helpers for livestage.
//
// Two output formats exist: a human console format with a leading
// component prefix, and plain JSON for machine consumption. Field key
// constants keep attribute names consistent across components.
package logging
