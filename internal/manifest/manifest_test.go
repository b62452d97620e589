package manifest_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"livestage/internal/manifest"
)

func TestFileLogWritesRowsIncrementally(t *testing.T) {
	pairsDir := t.TempDir()
	leftoversDir := t.TempDir()

	log, err := manifest.NewFileLog(pairsDir, leftoversDir)
	if err != nil {
		t.Fatalf("NewFileLog: %v", err)
	}

	if err := log.AppendPair(manifest.PairRow{
		PairID:    "00001_IMG_1",
		MatchType: "same_dir",
		Basename:  "IMG_1",
		StillSrc:  "/src/IMG_1.HEIC",
		VideoSrc:  "/src/IMG_1.MOV",
		StillOut:  "/out/00001_IMG_1__STILL.HEIC",
		VideoOut:  "/out/00001_IMG_1__VIDEO.MOV",
	}); err != nil {
		t.Fatalf("AppendPair: %v", err)
	}
	if err := log.AppendLeftover(manifest.LeftoverRow{
		LeftID:      "L000001",
		Action:      manifest.ActionSkipDup,
		Src:         "/src/dup.jpg",
		OutOrReason: "duplicate of /src/IMG_1.HEIC",
	}); err != nil {
		t.Fatalf("AppendLeftover: %v", err)
	}
	if err := log.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	pairs, err := os.ReadFile(filepath.Join(pairsDir, manifest.PairsFileName))
	if err != nil {
		t.Fatalf("read pair manifest: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(pairs), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("pair manifest lines = %d, want 2", len(lines))
	}
	if lines[0] != "pair_id\tmatch_type\tbasename\tstill_src\tvideo_src\tstill_out\tvideo_out" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "00001_IMG_1\tsame_dir\tIMG_1\t") {
		t.Fatalf("unexpected row: %q", lines[1])
	}

	leftovers, err := os.ReadFile(filepath.Join(leftoversDir, manifest.LeftoversFileName))
	if err != nil {
		t.Fatalf("read leftover manifest: %v", err)
	}
	if !strings.Contains(string(leftovers), "L000001\tSKIP_DUP\t/src/dup.jpg\t") {
		t.Fatalf("unexpected leftover manifest: %q", leftovers)
	}
}

func TestInMemoryLogRecordsWithoutFiles(t *testing.T) {
	log := manifest.NewLog()

	if err := log.AppendLeftover(manifest.LeftoverRow{LeftID: "L000001", Action: manifest.ActionLinked}); err != nil {
		t.Fatalf("AppendLeftover: %v", err)
	}
	if err := log.AppendLeftover(manifest.LeftoverRow{LeftID: "L000002", Action: manifest.ActionError}); err != nil {
		t.Fatalf("AppendLeftover: %v", err)
	}

	rows := log.LeftoverRows()
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].LeftID != "L000001" || rows[1].LeftID != "L000002" {
		t.Fatal("append order not preserved")
	}
	if err := log.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestFieldsAreSanitized(t *testing.T) {
	pairsDir := t.TempDir()
	leftoversDir := t.TempDir()

	log, err := manifest.NewFileLog(pairsDir, leftoversDir)
	if err != nil {
		t.Fatalf("NewFileLog: %v", err)
	}
	if err := log.AppendLeftover(manifest.LeftoverRow{
		LeftID:      "L000001",
		Action:      manifest.ActionError,
		Src:         "/src/odd\tname.jpg",
		OutOrReason: "multi\nline reason",
	}); err != nil {
		t.Fatalf("AppendLeftover: %v", err)
	}
	_ = log.Close()

	content, err := os.ReadFile(filepath.Join(leftoversDir, manifest.LeftoversFileName))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2 (embedded newline not sanitized)", len(lines))
	}
	if got := strings.Count(lines[1], "\t"); got != 3 {
		t.Fatalf("row has %d tabs, want 3 (embedded tab not sanitized)", got)
	}
}
