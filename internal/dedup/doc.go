// Package dedup computes content fingerprints and tracks which ones a run
// has already emitted. Fingerprints decide only duplicate-skip staging;
// they are never used as file identity. An optional SQLite cache carries
// fingerprints across runs.
package dedup
