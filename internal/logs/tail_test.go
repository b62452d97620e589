package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"livestage/internal/logs"
)

func writeLines(t *testing.T, path string, lines string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.WriteString(lines); err != nil {
		t.Fatal(err)
	}
}

func TestLastLinesReturnsTrailingWindow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "livestage.log")
	writeLines(t, path, "one\ntwo\nthree\nfour\n")

	lines, offset, err := logs.LastLines(path, 2)
	if err != nil {
		t.Fatalf("LastLines: %v", err)
	}
	if len(lines) != 2 || lines[0] != "three" || lines[1] != "four" {
		t.Fatalf("unexpected lines: %v", lines)
	}
	if offset == 0 {
		t.Fatal("expected nonzero offset")
	}
}

func TestLastLinesMissingFile(t *testing.T) {
	lines, offset, err := logs.LastLines(filepath.Join(t.TempDir(), "absent.log"), 10)
	if err != nil || len(lines) != 0 || offset != 0 {
		t.Fatalf("missing file should be empty: %v %d %v", lines, offset, err)
	}
}

func TestReadFromContinuesAtOffset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "livestage.log")
	writeLines(t, path, "first\n")

	_, offset, err := logs.LastLines(path, 0)
	if err != nil {
		t.Fatalf("LastLines: %v", err)
	}

	writeLines(t, path, "second\nthird\n")
	lines, newOffset, err := logs.ReadFrom(path, offset)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if len(lines) != 2 || lines[0] != "second" {
		t.Fatalf("unexpected lines: %v", lines)
	}
	if newOffset <= offset {
		t.Fatalf("offset did not advance: %d -> %d", offset, newOffset)
	}
}

func TestReadFromResetsAfterTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "livestage.log")
	writeLines(t, path, "a long opening line\n")
	_, offset, err := logs.LastLines(path, 0)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("new\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	lines, _, err := logs.ReadFrom(path, offset)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if len(lines) != 1 || lines[0] != "new" {
		t.Fatalf("truncated file should restart from the top: %v", lines)
	}
}

func TestFollowEmitsNewLinesUntilCanceled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "livestage.log")
	writeLines(t, path, "seed\n")

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan string, 8)

	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, 0, func(lines []string) {
			for _, line := range lines {
				got <- line
			}
		})
	}()

	select {
	case line := <-got:
		if line != "seed" {
			t.Errorf("unexpected line %q", line)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for first batch")
	}

	writeLines(t, path, "appended\n")
	select {
	case line := <-got:
		if line != "appended" {
			t.Errorf("unexpected line %q", line)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for appended line")
	}

	cancel()
	if err := <-done; err != context.Canceled {
		t.Fatalf("Follow should return context.Canceled, got %v", err)
	}
}
