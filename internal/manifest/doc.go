// Package manifest records every staging decision into two append-only
// tab-separated logs, one per output collection. The manifests are the
// single source of truth for auditing a run and for future reversal.
package manifest
