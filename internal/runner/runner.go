package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"livestage/internal/catalog"
	"livestage/internal/config"
	"livestage/internal/dedup"
	"livestage/internal/logging"
	"livestage/internal/manifest"
	"livestage/internal/matcher"
	"livestage/internal/preflight"
	"livestage/internal/report"
	"livestage/internal/services"
	"livestage/internal/services/ffprobe"
	"livestage/internal/staging"
)

// LockFileName is the advisory lock taken next to the pairs directory so
// two processes cannot stage into the same output concurrently.
const LockFileName = ".livestage.lock"

// Outcome carries everything a completed run produced.
type Outcome struct {
	RunID   string
	Summary report.Summary

	Pairs     []matcher.Pair
	Leftovers []*catalog.MediaFile

	PairRows     []manifest.PairRow
	LeftoverRows []manifest.LeftoverRow
}

// Runner executes the scan, match, and stage phases against one config.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
}

func New(cfg *config.Config, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "runner"),
	}
}

// Run executes one full pipeline pass. Dry-run produces the same decisions
// as an apply run without mutating anything under the destinations.
func (r *Runner) Run(ctx context.Context) (*Outcome, error) {
	cfg := r.cfg
	if err := cfg.ValidateForRun(); err != nil {
		return nil, err
	}
	if err := checkEnvironment(cfg); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	apply := !cfg.Staging.DryRun

	logging.WithContext(ctx, r.logger).Info("run starting",
		logging.String("root", cfg.Paths.RootDir),
		logging.Bool("dry_run", cfg.Staging.DryRun),
		logging.Bool("copy", cfg.CopyMode()),
	)

	if apply {
		for _, dir := range []string{cfg.Paths.PairsDir, cfg.Paths.LeftoversDir} {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, services.Wrap(services.ErrDestination, "preflight", "create output root", dir, err)
			}
		}
		lock := flock.New(filepath.Join(filepath.Dir(cfg.Paths.PairsDir), LockFileName))
		held, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire staging lock: %w", err)
		}
		if !held {
			return nil, services.Wrap(services.ErrTransient, "preflight", "acquire staging lock",
				"another process is staging into this output", nil)
		}
		defer func() { _ = lock.Unlock() }()
	}

	outcome := &Outcome{RunID: runID}
	outcome.Summary.RunID = runID
	outcome.Summary.DryRun = cfg.Staging.DryRun

	idx, err := r.scan(ctx)
	if err != nil {
		return nil, err
	}
	outcome.Summary.AddScan(idx)

	result, err := r.match(ctx, idx)
	if err != nil {
		return nil, err
	}
	outcome.Summary.AddMatch(result)
	outcome.Pairs = result.Pairs

	outcome.Leftovers = result.Leftovers
	if cfg.Staging.IncludeOthers {
		outcome.Leftovers = append(outcome.Leftovers, idx.Others...)
		outcome.Summary.Leftovers = len(outcome.Leftovers)
	}

	if err := r.stage(ctx, outcome); err != nil {
		return nil, err
	}

	logging.WithContext(ctx, r.logger).Info("run complete",
		logging.Int("pairs", len(outcome.Pairs)),
		logging.Int("leftovers", len(outcome.Leftovers)),
		logging.Int("warnings", outcome.Summary.Warnings()),
		logging.Int("errors", outcome.Summary.Errors()),
	)
	return outcome, nil
}

// checkEnvironment turns failed directory checks into fatal errors before
// any work starts. The source root is a configuration problem; everything
// else is an unusable destination.
func checkEnvironment(cfg *config.Config) error {
	failed := preflight.Failed(preflight.RunAll(cfg))
	if len(failed) == 0 {
		return nil
	}
	details := make([]string, 0, len(failed))
	marker := services.ErrDestination
	for _, result := range failed {
		if result.Name == "Source root" {
			marker = services.ErrConfiguration
		}
		details = append(details, result.Detail)
	}
	return services.Wrap(marker, "preflight", "check directories", strings.Join(details, "; "), nil)
}

func (r *Runner) scan(ctx context.Context) (*catalog.Index, error) {
	ctx = logging.WithPhase(ctx, "scan")
	classifier := catalog.NewClassifier(r.cfg.Matching.StillExtensions, r.cfg.Matching.VideoExtensions)
	scanner := catalog.NewScanner(classifier, []string{r.cfg.Paths.PairsDir, r.cfg.Paths.LeftoversDir}, r.logger)
	return scanner.Scan(ctx, r.cfg.Paths.RootDir)
}

func (r *Runner) match(ctx context.Context, idx *catalog.Index) (*matcher.Result, error) {
	ctx = logging.WithPhase(ctx, "match")
	logger := logging.WithContext(ctx, r.logger)

	var oracle matcher.DurationOracle
	if r.cfg.Matching.MaxVideoSeconds > 0 {
		prober := ffprobe.New(r.cfg.FFprobeBinary(), time.Duration(r.cfg.Matching.ProbeTimeout)*time.Second)
		if prober.Available() {
			oracle = prober
		} else {
			logger.Warn("ffprobe not found, cross-directory duration check disabled",
				logging.String("binary", prober.Binary()))
		}
	}

	m := matcher.New(oracle, r.cfg.Matching.MaxVideoSeconds, r.logger)
	return m.Match(ctx, idx)
}

func (r *Runner) stage(ctx context.Context, outcome *Outcome) error {
	cfg := r.cfg
	ctx = logging.WithPhase(ctx, "stage")
	logger := logging.WithContext(ctx, r.logger)

	index, closeCache := r.dedupIndex(ctx, logger, outcome)
	defer closeCache()

	log, err := r.newManifestLog()
	if err != nil {
		return err
	}

	engine := staging.NewEngine(staging.Options{
		PairsDir:     cfg.Paths.PairsDir,
		LeftoversDir: cfg.Paths.LeftoversDir,
		DryRun:       cfg.Staging.DryRun,
		Copy:         cfg.CopyMode(),
		Dedupe:       cfg.Staging.DedupeLeftovers,
	}, index, log, r.logger)

	stats, entryErrors, stageErr := engine.Stage(ctx, outcome.Pairs, outcome.Leftovers)
	outcome.Summary.AddStage(stats, entryErrors)
	outcome.PairRows = log.PairRows()
	outcome.LeftoverRows = log.LeftoverRows()

	if closeErr := log.Close(); closeErr != nil && stageErr == nil {
		stageErr = services.Wrap(services.ErrDestination, "stage", "close manifests", "", closeErr)
	}
	return stageErr
}

// dedupIndex builds the fingerprint index when dedup is on, opening the
// persistent cache and pre-hashing every staged path in parallel. Cache
// failures degrade to in-memory hashing.
func (r *Runner) dedupIndex(ctx context.Context, logger *slog.Logger, outcome *Outcome) (*dedup.Index, func()) {
	cfg := r.cfg
	if !cfg.Staging.DedupeLeftovers {
		return nil, func() {}
	}

	var cache *dedup.Cache
	if cfg.HashCache.Enabled && cfg.HashCache.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.HashCache.Path), 0o755); err != nil {
			logger.Warn("hash cache directory unavailable, continuing without cache", logging.Error(err))
		} else if opened, err := dedup.OpenCache(cfg.HashCache.Path); err != nil {
			logger.Warn("hash cache unavailable, continuing without cache", logging.Error(err))
		} else {
			cache = opened
		}
	}

	index := dedup.NewIndex(cache)

	paths := make([]string, 0, 2*len(outcome.Pairs)+len(outcome.Leftovers))
	for _, pair := range outcome.Pairs {
		paths = append(paths, pair.Still.Path, pair.Video.Path)
	}
	for _, leftover := range outcome.Leftovers {
		paths = append(paths, leftover.Path)
	}
	if err := index.Warm(ctx, paths, cfg.Staging.Workers); err != nil {
		logger.Warn("fingerprint pre-computation interrupted", logging.Error(err))
	}

	return index, func() {
		if cache != nil {
			_ = cache.Close()
		}
	}
}

func (r *Runner) newManifestLog() (*manifest.Log, error) {
	if r.cfg.Staging.DryRun {
		return manifest.NewLog(), nil
	}
	log, err := manifest.NewFileLog(r.cfg.Paths.PairsDir, r.cfg.Paths.LeftoversDir)
	if err != nil {
		return nil, services.Wrap(services.ErrDestination, "stage", "open manifests", "", err)
	}
	return log, nil
}
