package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Default returns the baseline configuration before any file or flag
// overrides are applied. Dry-run is on by default so a bare invocation
// never mutates anything.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir(),
		},
		Matching: Matching{
			MaxVideoSeconds: 6.0,
			StillExtensions: []string{".heic", ".jpg", ".jpeg", ".png"},
			VideoExtensions: []string{".mov", ".mp4"},
			ProbeTimeout:    30,
		},
		Staging: Staging{
			DryRun:       true,
			TransferMode: "link",
			Workers:      defaultWorkers(),
		},
		HashCache: HashCache{
			Enabled: true,
			Path:    defaultHashCachePath(),
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}

func defaultWorkers() int {
	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

func defaultLogDir() string {
	return filepath.Join(defaultStateBase(), "logs")
}

func defaultHashCachePath() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && base != "" {
		return filepath.Join(base, "livestage", "hashes.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".livestage", "hashes.db")
	}
	return filepath.Join(home, ".cache", "livestage", "hashes.db")
}

func defaultStateBase() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".livestage")
	}
	return filepath.Join(home, ".local", "share", "livestage")
}
