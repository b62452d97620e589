package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig tags all validation failures so callers can distinguish
// configuration problems from runtime ones.
var ErrInvalidConfig = errors.New("invalid configuration")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate checks the normalized configuration for internal consistency.
// It does not touch the filesystem; existence of the root and destinations
// is a preflight concern.
func (c *Config) Validate() error {
	switch c.Staging.TransferMode {
	case "link", "copy":
	default:
		return invalid("transfer_mode must be %q or %q, got %q", "link", "copy", c.Staging.TransferMode)
	}

	if c.Matching.MaxVideoSeconds < 0 {
		return invalid("max_video_seconds must be >= 0, got %v", c.Matching.MaxVideoSeconds)
	}
	if c.Matching.ProbeTimeout <= 0 {
		return invalid("probe_timeout must be > 0, got %d", c.Matching.ProbeTimeout)
	}
	if len(c.Matching.StillExtensions) == 0 {
		return invalid("still_extensions must not be empty")
	}
	if len(c.Matching.VideoExtensions) == 0 {
		return invalid("video_extensions must not be empty")
	}
	for _, ext := range c.Matching.StillExtensions {
		for _, other := range c.Matching.VideoExtensions {
			if ext == other {
				return invalid("extension %q is listed as both still and video", ext)
			}
		}
	}

	if c.Paths.PairsDir != "" && c.Paths.PairsDir == c.Paths.LeftoversDir {
		return invalid("pairs_dir and leftovers_dir must differ")
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		return invalid("logging format must be %q or %q, got %q", "console", "json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("logging level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}

	if c.HashCache.Enabled && strings.TrimSpace(c.HashCache.Path) == "" {
		return invalid("hash_cache.path must be set when the cache is enabled")
	}

	return nil
}

// ValidateForRun extends Validate with the requirements a staging run needs:
// a root and both destinations must be configured. Destinations may sit
// inside the scan root; the scanner excludes them from the walk.
func (c *Config) ValidateForRun() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Paths.RootDir == "" {
		return invalid("root_dir is required")
	}
	if c.Paths.PairsDir == "" {
		return invalid("pairs_dir is required (set pairs_dir or output_dir)")
	}
	if c.Paths.LeftoversDir == "" {
		return invalid("leftovers_dir is required (set leftovers_dir or output_dir)")
	}
	return nil
}
