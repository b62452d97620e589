package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains source and destination directory configuration.
type Paths struct {
	// RootDir is the tree holding the unpacked export to reconcile.
	RootDir string `toml:"root_dir"`
	// OutputDir, when set, derives PairsDir and LeftoversDir as the
	// LivePhotos and OtherMedia subdirectories.
	OutputDir    string `toml:"output_dir"`
	PairsDir     string `toml:"pairs_dir"`
	LeftoversDir string `toml:"leftovers_dir"`
	LogDir       string `toml:"log_dir"`
}

// Matching contains configuration for the pairing passes.
type Matching struct {
	// MaxVideoSeconds bounds cross-directory pairing; 0 disables the check.
	MaxVideoSeconds float64  `toml:"max_video_seconds"`
	StillExtensions []string `toml:"still_extensions"`
	VideoExtensions []string `toml:"video_extensions"`
	FFprobeBinary   string   `toml:"ffprobe_binary"`
	// ProbeTimeout is the per-probe ffprobe timeout in seconds.
	ProbeTimeout int `toml:"probe_timeout"`
}

// Staging contains configuration for materializing output entries.
type Staging struct {
	DryRun          bool   `toml:"dry_run"`
	TransferMode    string `toml:"transfer_mode"`
	DedupeLeftovers bool   `toml:"dedupe_leftovers"`
	IncludeOthers   bool   `toml:"include_others"`
	// Workers bounds parallel fingerprint computation.
	Workers int `toml:"workers"`
}

// HashCache contains configuration for the persistent fingerprint cache.
type HashCache struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for livestage.
//
// Sections by subsystem:
//   - Paths: source root and the two destination collections
//   - Matching: extension classification and cross-directory duration gate
//   - Staging: dry-run, link-vs-copy, dedup, worker bounds
//   - HashCache: persistent content-fingerprint cache
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Matching  Matching  `toml:"matching"`
	Staging   Staging   `toml:"staging"`
	HashCache HashCache `toml:"hash_cache"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/livestage/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("livestage.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// FFprobeBinary returns the ffprobe executable used by the duration oracle.
func (c *Config) FFprobeBinary() string {
	if trimmed := strings.TrimSpace(c.Matching.FFprobeBinary); trimmed != "" {
		return trimmed
	}
	return "ffprobe"
}

// CopyMode reports whether staging should copy instead of symlink.
func (c *Config) CopyMode() bool {
	return strings.EqualFold(strings.TrimSpace(c.Staging.TransferMode), "copy")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
