// Package matcher reconstructs still+video pairs from the catalog index.
//
// Matching is purely structural (name and location, plus an optional
// advisory duration gate); no metadata is consulted. Two ordered passes
// guarantee that same-directory matches always win over cross-directory
// ones and that no file is consumed twice.
package matcher
