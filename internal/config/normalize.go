package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Subdirectory names derived when a single output_dir is configured.
const (
	PairsSubdir     = "LivePhotos"
	LeftoversSubdir = "OtherMedia"
)

// normalize expands paths, derives destination directories from output_dir,
// and canonicalizes extension sets and enum-like string fields.
func (c *Config) normalize() error {
	var err error
	if c.Paths.RootDir, err = expandOptional(c.Paths.RootDir); err != nil {
		return err
	}
	if c.Paths.OutputDir, err = expandOptional(c.Paths.OutputDir); err != nil {
		return err
	}
	if c.Paths.PairsDir, err = expandOptional(c.Paths.PairsDir); err != nil {
		return err
	}
	if c.Paths.LeftoversDir, err = expandOptional(c.Paths.LeftoversDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandOptional(c.Paths.LogDir); err != nil {
		return err
	}
	if c.HashCache.Path, err = expandOptional(c.HashCache.Path); err != nil {
		return err
	}

	if c.Paths.OutputDir != "" {
		if c.Paths.PairsDir == "" {
			c.Paths.PairsDir = filepath.Join(c.Paths.OutputDir, PairsSubdir)
		}
		if c.Paths.LeftoversDir == "" {
			c.Paths.LeftoversDir = filepath.Join(c.Paths.OutputDir, LeftoversSubdir)
		}
	}

	c.Matching.StillExtensions = normalizeExtensions(c.Matching.StillExtensions)
	c.Matching.VideoExtensions = normalizeExtensions(c.Matching.VideoExtensions)

	c.Staging.TransferMode = strings.ToLower(strings.TrimSpace(c.Staging.TransferMode))
	if c.Staging.TransferMode == "" {
		c.Staging.TransferMode = "link"
	}
	if c.Staging.Workers < 1 {
		c.Staging.Workers = 1
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}

// Renormalize re-expands paths, re-derives destinations, and re-validates
// after a caller overrides individual fields.
func (c *Config) Renormalize() error {
	if err := c.normalize(); err != nil {
		return err
	}
	return c.Validate()
}

func expandOptional(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", nil
	}
	expanded, err := expandPath(trimmed)
	if err != nil {
		return "", fmt.Errorf("normalize path %q: %w", trimmed, err)
	}
	return expanded, nil
}

// normalizeExtensions lowercases, trims, dot-prefixes, and dedupes an
// extension list while preserving order of first appearance.
func normalizeExtensions(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		ext := strings.ToLower(strings.TrimSpace(value))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	return out
}
