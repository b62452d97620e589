package preflight

import (
	"path/filepath"

	"livestage/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all directory checks for the given config. The source
// root must exist; destination directories only need a writable ancestor
// since staging creates them on demand.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckSourceRoot("Source root", cfg.Paths.RootDir),
		CheckDestinationDir("Pairs directory", cfg.Paths.PairsDir),
		CheckDestinationDir("Leftovers directory", cfg.Paths.LeftoversDir),
	}

	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDestinationDir("Log directory", cfg.Paths.LogDir))
	}
	if cfg.HashCache.Enabled && cfg.HashCache.Path != "" {
		results = append(results, CheckDestinationDir("Hash cache directory", filepath.Dir(cfg.HashCache.Path)))
	}

	return results
}

// Failed filters the results down to the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}
