package staging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"livestage/internal/catalog"
	"livestage/internal/dedup"
	"livestage/internal/fileutil"
	"livestage/internal/logging"
	"livestage/internal/manifest"
	"livestage/internal/matcher"
	"livestage/internal/services"
)

// Options configures a staging run.
type Options struct {
	PairsDir     string
	LeftoversDir string
	// DryRun computes every name and decision without touching the
	// filesystem.
	DryRun bool
	// Copy duplicates bytes instead of symlinking.
	Copy bool
	// Dedupe skips entries whose content fingerprint was already staged.
	Dedupe bool
}

// Stats summarizes staging outcomes.
type Stats struct {
	PairsStaged      int
	PairMemberSkips  int
	PairErrors       int
	LeftoversStaged  int
	LeftoversSkipped int
	LeftoverErrors   int
}

// EntryError pairs one failed entry with its cause, for the issue report.
type EntryError struct {
	Src string
	Dst string
	Err error
}

// Engine materializes pairs and leftovers into the two output collections.
// Entries are processed in their given order; numbering is derived from
// that order, so identical inputs always yield identical output names.
type Engine struct {
	opts   Options
	index  *dedup.Index
	log    *manifest.Log
	logger *slog.Logger

	stats  Stats
	errors []EntryError
}

// NewEngine constructs an Engine. index may be nil when Options.Dedupe is
// false; log receives one row per decision.
func NewEngine(opts Options, index *dedup.Index, log *manifest.Log, logger *slog.Logger) *Engine {
	return &Engine{
		opts:   opts,
		index:  index,
		log:    log,
		logger: logging.NewComponentLogger(logger, "staging"),
	}
}

// PairPrefix builds the numbered output prefix of a pair.
func PairPrefix(sequenceID int, base string) string {
	return fmt.Sprintf("%05d_%s", sequenceID, base)
}

// PairStillName and PairVideoName build the two output file names of a pair.
func PairStillName(pair matcher.Pair) string {
	return PairPrefix(pair.SequenceID, pair.Base) + "__STILL" + pair.Still.Ext
}

func PairVideoName(pair matcher.Pair) string {
	return PairPrefix(pair.SequenceID, pair.Base) + "__VIDEO" + pair.Video.Ext
}

// LeftoverID builds the numbered identifier of a leftover entry.
func LeftoverID(index int) string {
	return fmt.Sprintf("L%06d", index)
}

// LeftoverName builds the output file name of a leftover entry.
func LeftoverName(index int, file *catalog.MediaFile) string {
	return LeftoverID(index) + "__" + file.Base + file.Ext
}

// Stage processes all pairs, then all leftovers. Pairs go first so a
// leftover duplicating pair content loses the dedup claim. Per-entry
// failures are isolated; only unusable destination roots abort the run.
func (e *Engine) Stage(ctx context.Context, pairs []matcher.Pair, leftovers []*catalog.MediaFile) (Stats, []EntryError, error) {
	logger := logging.WithContext(ctx, e.logger)

	if !e.opts.DryRun {
		for _, dir := range []string{e.opts.PairsDir, e.opts.LeftoversDir} {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return e.stats, e.errors, services.Wrap(services.ErrDestination, "stage", "create output root", dir, err)
			}
		}
	}

	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			e.recordPairInterrupted(pair)
			return e.stats, e.errors, err
		}
		e.stagePair(logger, pair)
	}

	for i, leftover := range leftovers {
		leftID := LeftoverID(i + 1)
		if err := ctx.Err(); err != nil {
			_ = e.log.AppendLeftover(manifest.LeftoverRow{
				LeftID:      leftID,
				Action:      manifest.ActionError,
				Src:         leftover.Path,
				OutOrReason: "run canceled before entry started",
			})
			return e.stats, e.errors, err
		}
		e.stageLeftover(logger, i+1, leftover)
	}

	logger.Info("staging complete",
		logging.Int("pairs_staged", e.stats.PairsStaged),
		logging.Int("leftovers_staged", e.stats.LeftoversStaged),
		logging.Int("duplicates_skipped", e.stats.LeftoversSkipped+e.stats.PairMemberSkips),
		logging.Int("errors", e.stats.PairErrors+e.stats.LeftoverErrors),
		logging.Bool("dry_run", e.opts.DryRun),
	)
	return e.stats, e.errors, nil
}

func (e *Engine) stagePair(logger *slog.Logger, pair matcher.Pair) {
	stillDst := filepath.Join(e.opts.PairsDir, PairStillName(pair))
	videoDst := filepath.Join(e.opts.PairsDir, PairVideoName(pair))

	stillOut, stillOK := e.stageMember(logger, pair.Still, stillDst)
	videoOut, videoOK := e.stageMember(logger, pair.Video, videoDst)

	_ = e.log.AppendPair(manifest.PairRow{
		PairID:    PairPrefix(pair.SequenceID, pair.Base),
		MatchType: string(pair.Type),
		Basename:  pair.Base,
		StillSrc:  pair.Still.Path,
		VideoSrc:  pair.Video.Path,
		StillOut:  stillOut,
		VideoOut:  videoOut,
	})

	if stillOK && videoOK {
		e.stats.PairsStaged++
	}
}

// stageMember stages one half of a pair. The returned string is the
// destination path on success, or a SKIP_DUP/ERROR marker that lands in the
// manifest's out column.
func (e *Engine) stageMember(logger *slog.Logger, file *catalog.MediaFile, dst string) (string, bool) {
	if skipped, winner := e.claimedElsewhere(file.Path); skipped {
		e.stats.PairMemberSkips++
		logger.Debug("pair member duplicates staged content",
			logging.String(logging.FieldPath, file.Path),
			logging.String("duplicate_of", winner),
		)
		return "SKIP_DUP", false
	}

	if _, err := e.transfer(file.Path, dst); err != nil {
		e.stats.PairErrors++
		e.errors = append(e.errors, EntryError{Src: file.Path, Dst: dst, Err: err})
		logger.Warn("pair member staging failed",
			logging.String(logging.FieldPath, file.Path),
			logging.Error(err),
		)
		return "ERROR: " + err.Error(), false
	}
	return dst, true
}

func (e *Engine) stageLeftover(logger *slog.Logger, index int, file *catalog.MediaFile) {
	leftID := LeftoverID(index)
	dst := filepath.Join(e.opts.LeftoversDir, LeftoverName(index, file))

	if skipped, winner := e.claimedElsewhere(file.Path); skipped {
		e.stats.LeftoversSkipped++
		_ = e.log.AppendLeftover(manifest.LeftoverRow{
			LeftID:      leftID,
			Action:      manifest.ActionSkipDup,
			Src:         file.Path,
			OutOrReason: "duplicate of " + winner,
		})
		return
	}

	linked, err := e.transfer(file.Path, dst)
	if err != nil {
		e.stats.LeftoverErrors++
		e.errors = append(e.errors, EntryError{Src: file.Path, Dst: dst, Err: err})
		_ = e.log.AppendLeftover(manifest.LeftoverRow{
			LeftID:      leftID,
			Action:      manifest.ActionError,
			Src:         file.Path,
			OutOrReason: err.Error(),
		})
		logger.Warn("leftover staging failed",
			logging.String(logging.FieldPath, file.Path),
			logging.Error(err),
		)
		return
	}

	action := manifest.ActionCopied
	if linked {
		action = manifest.ActionLinked
	}
	e.stats.LeftoversStaged++
	_ = e.log.AppendLeftover(manifest.LeftoverRow{
		LeftID:      leftID,
		Action:      action,
		Src:         file.Path,
		OutOrReason: dst,
	})
}

// claimedElsewhere fingerprints the file when dedup is enabled and reports
// whether another file already claimed the same content. A fingerprint
// failure disables dedup for that file only; it is staged normally.
func (e *Engine) claimedElsewhere(path string) (bool, string) {
	if !e.opts.Dedupe || e.index == nil {
		return false, ""
	}
	fingerprint, err := e.index.Fingerprint(path)
	if err != nil {
		return false, ""
	}
	winner, first := e.index.Claim(fingerprint, path)
	if first {
		return false, ""
	}
	return true, winner
}

// transfer materializes one destination entry and reports whether a
// symlink was created. Existing destinations are never overwritten; that
// is a per-entry error.
func (e *Engine) transfer(src, dst string) (bool, error) {
	if _, err := os.Lstat(dst); err == nil {
		return false, fmt.Errorf("destination already exists: %s", dst)
	} else if !os.IsNotExist(err) {
		return false, err
	}

	if e.opts.DryRun {
		return !e.opts.Copy, nil
	}

	if e.opts.Copy {
		return false, fileutil.CopyFileAtomic(src, dst)
	}
	return fileutil.SymlinkOrCopy(src, dst)
}

func (e *Engine) recordPairInterrupted(pair matcher.Pair) {
	_ = e.log.AppendPair(manifest.PairRow{
		PairID:    PairPrefix(pair.SequenceID, pair.Base),
		MatchType: string(pair.Type),
		Basename:  pair.Base,
		StillSrc:  pair.Still.Path,
		VideoSrc:  pair.Video.Path,
		StillOut:  "ERROR: run canceled before entry started",
		VideoOut:  "ERROR: run canceled before entry started",
	})
}
