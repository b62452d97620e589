package ffprobe_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"livestage/internal/services"
	"livestage/internal/services/ffprobe"
)

// writeStub installs a fake ffprobe that prints the given script output.
func writeStub(t *testing.T, script string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ffprobe")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestProbeParsesDuration(t *testing.T) {
	stub := writeStub(t, `echo '{"format":{"duration":"2.734000"}}'`)
	prober := ffprobe.New(stub, time.Second)

	seconds, err := prober.Probe(context.Background(), "/tmp/clip.mov")
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if seconds != 2.734 {
		t.Fatalf("unexpected duration: %v", seconds)
	}
}

func TestProbeMissingDuration(t *testing.T) {
	stub := writeStub(t, `echo '{"format":{}}'`)
	prober := ffprobe.New(stub, time.Second)

	if _, err := prober.Probe(context.Background(), "/tmp/clip.mov"); err == nil {
		t.Fatal("expected error for missing duration")
	}
}

func TestProbeToolFailure(t *testing.T) {
	stub := writeStub(t, `echo "decode failed" >&2; exit 1`)
	prober := ffprobe.New(stub, time.Second)

	_, err := prober.Probe(context.Background(), "/tmp/clip.mov")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestProbeEmptyPath(t *testing.T) {
	prober := ffprobe.New("", time.Second)
	if _, err := prober.Probe(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestNewDefaults(t *testing.T) {
	prober := ffprobe.New("  ", 0)
	if prober.Binary() != "ffprobe" {
		t.Fatalf("unexpected binary: %q", prober.Binary())
	}
}
