package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"
)

// HashFile computes the SHA-256 content fingerprint of a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Index tracks which content fingerprints have been emitted during a run.
// The first file to claim a fingerprint wins; later claimants are reported
// as duplicates. All methods are safe for concurrent use so hashing can be
// parallelized.
type Index struct {
	mu    sync.Mutex
	seen  map[string]string // fingerprint -> first claimant source path
	memo  map[string]string // source path -> fingerprint
	cache *Cache            // optional persistent cache, may be nil
}

// NewIndex constructs an Index. cache may be nil for purely in-memory
// operation.
func NewIndex(cache *Cache) *Index {
	return &Index{
		seen:  make(map[string]string),
		memo:  make(map[string]string),
		cache: cache,
	}
}

// Fingerprint returns the content fingerprint of path, consulting the
// in-run memo and the persistent cache before reading bytes. Results are
// memoized for the duration of the run.
func (i *Index) Fingerprint(path string) (string, error) {
	i.mu.Lock()
	if fp, ok := i.memo[path]; ok {
		i.mu.Unlock()
		return fp, nil
	}
	i.mu.Unlock()

	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	if i.cache != nil {
		if fp, ok := i.cache.Lookup(path, info.Size(), info.ModTime().UnixNano()); ok {
			i.remember(path, fp)
			return fp, nil
		}
	}

	fp, err := HashFile(path)
	if err != nil {
		return "", err
	}
	if i.cache != nil {
		_ = i.cache.Store(path, info.Size(), info.ModTime().UnixNano(), fp)
	}
	i.remember(path, fp)
	return fp, nil
}

func (i *Index) remember(path, fingerprint string) {
	i.mu.Lock()
	i.memo[path] = fingerprint
	i.mu.Unlock()
}

// Seen reports whether a fingerprint has already been claimed.
func (i *Index) Seen(fingerprint string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	_, ok := i.seen[fingerprint]
	return ok
}

// Record claims a fingerprint for the given source path without checking
// prior ownership.
func (i *Index) Record(fingerprint, path string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.seen[fingerprint]; !ok {
		i.seen[fingerprint] = path
	}
}

// Claim atomically records the fingerprint for path if unclaimed. It
// returns the winning path and whether this call was the first claim.
func (i *Index) Claim(fingerprint, path string) (winner string, first bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if existing, ok := i.seen[fingerprint]; ok {
		return existing, false
	}
	i.seen[fingerprint] = path
	return path, true
}

// Warm computes fingerprints for the given paths with bounded parallelism,
// filling the memo so later sequential staging never blocks on hashing.
// Per-file failures are ignored here; they resurface when staging asks for
// the same fingerprint.
func (i *Index) Warm(ctx context.Context, paths []string, workers int) error {
	if workers < 1 {
		workers = 1
	}
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for _, path := range paths {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, _ = i.Fingerprint(path)
			return nil
		})
	}
	return group.Wait()
}
