package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"livestage/internal/services"
)

// Prober answers duration queries by shelling out to ffprobe. It is the
// production duration oracle; the matcher treats every failure as advisory.
type Prober struct {
	binary  string
	timeout time.Duration
}

// New constructs a Prober. An empty binary falls back to "ffprobe" on
// PATH; a non-positive timeout falls back to 30 seconds.
func New(binary string, timeout time.Duration) *Prober {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Prober{binary: binary, timeout: timeout}
}

// Binary returns the executable the prober invokes.
func (p *Prober) Binary() string { return p.binary }

// Available reports whether the configured binary can be found on PATH.
func (p *Prober) Available() bool {
	_, err := exec.LookPath(p.binary)
	return err == nil
}

type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe executes ffprobe against the provided path and returns the container
// duration in seconds.
func (p *Prober) Probe(ctx context.Context, path string) (float64, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return 0, errors.New("ffprobe: empty path")
	}

	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(probeCtx, p.binary, "-v", "error", "-show_entries", "format=duration", "-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "probe", p.binary, strings.TrimSpace(string(output)), err)
	}

	var result probeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return 0, fmt.Errorf("ffprobe parse: %w", err)
	}

	raw := strings.TrimSpace(result.Format.Duration)
	if raw == "" {
		return 0, errors.New("ffprobe: no duration reported")
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe parse duration %q: %w", raw, err)
	}
	if seconds < 0 {
		return 0, fmt.Errorf("ffprobe: negative duration %v", seconds)
	}
	return seconds, nil
}
