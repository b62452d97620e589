// Package catalog walks a source tree and builds the in-memory index of
// candidate stills and videos consumed by the pair matcher.
//
// Classification is purely extension-based against two configured sets;
// files matching neither set are recorded as "other". The index is keyed
// both by (directory, base name) and by base name alone, and owns its
// MediaFile values until the matcher consumes them.
package catalog
