package dedup_test

import (
	"context"
	"path/filepath"
	"testing"

	"livestage/internal/dedup"
	"livestage/internal/testsupport"
)

func TestHashFileStable(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bin")
	b := filepath.Join(dir, "b.bin")
	c := filepath.Join(dir, "c.bin")
	testsupport.WriteContent(t, a, []byte("identical payload"))
	testsupport.WriteContent(t, b, []byte("identical payload"))
	testsupport.WriteContent(t, c, []byte("different payload"))

	idx := dedup.NewIndex(nil)
	fpA, err := idx.Fingerprint(a)
	if err != nil {
		t.Fatalf("fingerprint a: %v", err)
	}
	fpB, err := idx.Fingerprint(b)
	if err != nil {
		t.Fatalf("fingerprint b: %v", err)
	}
	fpC, err := idx.Fingerprint(c)
	if err != nil {
		t.Fatalf("fingerprint c: %v", err)
	}

	if fpA != fpB {
		t.Fatal("identical content must share a fingerprint")
	}
	if fpA == fpC {
		t.Fatal("different content must not share a fingerprint")
	}
}

func TestClaimFirstWins(t *testing.T) {
	idx := dedup.NewIndex(nil)

	winner, first := idx.Claim("fp1", "/src/a")
	if !first || winner != "/src/a" {
		t.Fatalf("first claim: winner=%q first=%v", winner, first)
	}

	winner, first = idx.Claim("fp1", "/src/b")
	if first {
		t.Fatal("second claim must not win")
	}
	if winner != "/src/a" {
		t.Fatalf("winner = %q, want /src/a", winner)
	}

	if !idx.Seen("fp1") {
		t.Fatal("Seen must report claimed fingerprint")
	}
	if idx.Seen("fp2") {
		t.Fatal("Seen must not report unclaimed fingerprint")
	}
}

func TestCacheRoundTripAndInvalidation(t *testing.T) {
	cache, err := dedup.OpenCache(filepath.Join(t.TempDir(), "nested", "hashes.db"))
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer cache.Close()

	if err := cache.Store("/x/a.heic", 100, 42, "deadbeef"); err != nil {
		t.Fatalf("Store: %v", err)
	}

	if fp, ok := cache.Lookup("/x/a.heic", 100, 42); !ok || fp != "deadbeef" {
		t.Fatalf("Lookup = %q, %v", fp, ok)
	}
	if _, ok := cache.Lookup("/x/a.heic", 100, 43); ok {
		t.Fatal("stale mtime must miss")
	}
	if _, ok := cache.Lookup("/x/a.heic", 101, 42); ok {
		t.Fatal("stale size must miss")
	}

	if err := cache.Store("/x/a.heic", 100, 43, "cafef00d"); err != nil {
		t.Fatalf("Store update: %v", err)
	}
	if fp, ok := cache.Lookup("/x/a.heic", 100, 43); !ok || fp != "cafef00d" {
		t.Fatalf("updated Lookup = %q, %v", fp, ok)
	}
}

func TestFingerprintUsesCacheAcrossIndexes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mov")
	testsupport.WriteContent(t, path, []byte("mov payload"))

	cache, err := dedup.OpenCache(filepath.Join(dir, "hashes.db"))
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer cache.Close()

	first := dedup.NewIndex(cache)
	fp1, err := first.Fingerprint(path)
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}

	second := dedup.NewIndex(cache)
	fp2, err := second.Fingerprint(path)
	if err != nil {
		t.Fatalf("fingerprint from cache: %v", err)
	}
	if fp1 != fp2 {
		t.Fatalf("cache returned different fingerprint: %q vs %q", fp1, fp2)
	}
}

func TestWarmFillsMemoInParallel(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		path := filepath.Join(dir, "f", "file"+string(rune('a'+i))+".bin")
		testsupport.WriteFile(t, path, int64(128+i))
		paths = append(paths, path)
	}
	// One missing file must not fail the warm pass.
	paths = append(paths, filepath.Join(dir, "absent.bin"))

	idx := dedup.NewIndex(nil)
	if err := idx.Warm(context.Background(), paths, 4); err != nil {
		t.Fatalf("Warm: %v", err)
	}

	for _, path := range paths[:20] {
		if _, err := idx.Fingerprint(path); err != nil {
			t.Fatalf("fingerprint after warm: %v", err)
		}
	}
}
