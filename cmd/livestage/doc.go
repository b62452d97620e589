// Package main hosts the livestage CLI entrypoint and command graph.
//
// The Cobra-based command tree wires terminal invocations into the runner
// pipeline, configuration scaffolding, and environment checks. It keeps the
// heavy lifting in the internal packages; commands parse flags, resolve the
// configuration, and render results.
package main
