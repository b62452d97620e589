package matcher

import (
	"context"
	"log/slog"
	"sort"

	"livestage/internal/catalog"
	"livestage/internal/logging"
)

// MatchType distinguishes how a pair was reconstructed. The values appear
// verbatim in the pair manifest.
type MatchType string

const (
	MatchSameDirectory  MatchType = "same_dir"
	MatchCrossDirectory MatchType = "cross_dir"
)

// Pair is a reconstructed still+video unit. SequenceID is 1-based and
// strictly increasing in finalization order; output naming depends on it.
type Pair struct {
	SequenceID int
	Type       MatchType
	Base       string
	Still      *catalog.MediaFile
	Video      *catalog.MediaFile
}

// Ambiguity records a same-directory base name with competing candidates.
// No pair is formed for it; all members stay leftovers.
type Ambiguity struct {
	Dir    string
	Base   string
	Stills []*catalog.MediaFile
	Videos []*catalog.MediaFile
}

// DurationReject records a cross-directory candidate whose video exceeded
// the configured duration threshold.
type DurationReject struct {
	Base    string
	Video   string
	Seconds float64
	Limit   float64
}

// ProbeFailure records an advisory oracle failure; the pairing proceeded.
type ProbeFailure struct {
	Base  string
	Video string
	Err   error
}

// Result is the complete outcome of the two matching passes. Leftovers
// holds every media file not consumed into a pair, in scan order.
type Result struct {
	Pairs           []Pair
	Leftovers       []*catalog.MediaFile
	Ambiguities     []Ambiguity
	DurationRejects []DurationReject
	ProbeFailures   []ProbeFailure
}

// DurationOracle answers best-effort video duration queries.
type DurationOracle interface {
	Probe(ctx context.Context, path string) (seconds float64, err error)
}

// Matcher reconstructs pairs from a catalog index using two ordered passes.
type Matcher struct {
	oracle     DurationOracle
	maxSeconds float64
	logger     *slog.Logger
}

// New constructs a Matcher. maxSeconds bounds cross-directory videos; 0
// disables the duration gate and the oracle is never consulted. A nil
// oracle likewise disables the gate.
func New(oracle DurationOracle, maxSeconds float64, logger *slog.Logger) *Matcher {
	if maxSeconds < 0 {
		maxSeconds = 0
	}
	return &Matcher{
		oracle:     oracle,
		maxSeconds: maxSeconds,
		logger:     logging.NewComponentLogger(logger, "matcher"),
	}
}

// Match runs Pass A (same-directory) then Pass B (cross-directory) over an
// immutable index snapshot. A file consumed by an earlier pass is invisible
// to later ones, so no file ever lands in more than one pair. Given the
// same index, the result is identical on every run.
func (m *Matcher) Match(ctx context.Context, idx *catalog.Index) (*Result, error) {
	logger := logging.WithContext(ctx, m.logger)
	result := &Result{}
	used := make(map[*catalog.MediaFile]struct{})

	m.sameDirectoryPass(logger, idx, result, used)

	if err := m.crossDirectoryPass(ctx, logger, idx, result, used); err != nil {
		return nil, err
	}

	for _, file := range idx.Files {
		if _, consumed := used[file]; !consumed {
			result.Leftovers = append(result.Leftovers, file)
		}
	}

	sameDir := 0
	for _, pair := range result.Pairs {
		if pair.Type == MatchSameDirectory {
			sameDir++
		}
	}
	logger.Info("matching complete",
		logging.Int("pairs", len(result.Pairs)),
		logging.Int("same_dir", sameDir),
		logging.Int("cross_dir", len(result.Pairs)-sameDir),
		logging.Int("leftovers", len(result.Leftovers)),
		logging.Int("ambiguities", len(result.Ambiguities)),
	)
	return result, nil
}

// sameDirectoryPass emits a pair for every (directory, base) that holds
// exactly one still and exactly one video. Multiple candidates on either
// side are ambiguous: no guess is made and the group is left alone.
// Iteration is in directory-then-basename lexical order for deterministic
// sequence ids.
func (m *Matcher) sameDirectoryPass(logger *slog.Logger, idx *catalog.Index, result *Result, used map[*catalog.MediaFile]struct{}) {
	keys := make([]catalog.Key, 0, len(idx.Stills))
	for key := range idx.Stills {
		if len(idx.Videos[key]) > 0 {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Dir != keys[j].Dir {
			return keys[i].Dir < keys[j].Dir
		}
		return keys[i].Base < keys[j].Base
	})

	for _, key := range keys {
		stills := idx.Stills[key]
		videos := idx.Videos[key]

		if len(stills) != 1 || len(videos) != 1 {
			result.Ambiguities = append(result.Ambiguities, Ambiguity{
				Dir:    key.Dir,
				Base:   key.Base,
				Stills: stills,
				Videos: videos,
			})
			logger.Warn("ambiguous same-directory group, leaving unpaired",
				logging.String(logging.FieldPath, key.Dir),
				logging.String(logging.FieldBasename, key.Base),
				logging.Int("stills", len(stills)),
				logging.Int("videos", len(videos)),
			)
			continue
		}

		result.Pairs = append(result.Pairs, Pair{
			SequenceID: len(result.Pairs) + 1,
			Type:       MatchSameDirectory,
			Base:       stills[0].Base,
			Still:      stills[0],
			Video:      videos[0],
		})
		used[stills[0]] = struct{}{}
		used[videos[0]] = struct{}{}
	}
}

// crossDirectoryPass pairs base names that survive Pass A with exactly one
// unused still and exactly one unused video in different directories. The
// duration gate is advisory: an oracle failure logs a warning and the
// pairing proceeds.
func (m *Matcher) crossDirectoryPass(ctx context.Context, logger *slog.Logger, idx *catalog.Index, result *Result, used map[*catalog.MediaFile]struct{}) error {
	bases := make([]string, 0, len(idx.StillsByBase))
	seen := make(map[string]struct{}, len(idx.StillsByBase))
	for base := range idx.StillsByBase {
		bases = append(bases, base)
		seen[base] = struct{}{}
	}
	for base := range idx.VideosByBase {
		if _, ok := seen[base]; !ok {
			bases = append(bases, base)
		}
	}
	sort.Strings(bases)

	for _, base := range bases {
		if err := ctx.Err(); err != nil {
			return err
		}

		still, ok := singleUnused(idx.StillsByBase[base], used)
		if !ok {
			continue
		}
		video, ok := singleUnused(idx.VideosByBase[base], used)
		if !ok {
			continue
		}
		if still.Dir == video.Dir {
			// A surviving same-directory combination means Pass A saw an
			// ambiguous group; never pair it here.
			continue
		}

		if m.maxSeconds > 0 && m.oracle != nil {
			seconds, err := m.oracle.Probe(ctx, video.Path)
			switch {
			case err != nil:
				result.ProbeFailures = append(result.ProbeFailures, ProbeFailure{Base: base, Video: video.Path, Err: err})
				logger.Warn("duration probe failed, pairing without duration check",
					logging.String(logging.FieldBasename, base),
					logging.String(logging.FieldPath, video.Path),
					logging.Error(err),
				)
			case seconds > m.maxSeconds:
				result.DurationRejects = append(result.DurationRejects, DurationReject{
					Base:    base,
					Video:   video.Path,
					Seconds: seconds,
					Limit:   m.maxSeconds,
				})
				logger.Debug("cross-directory candidate rejected by duration",
					logging.String(logging.FieldBasename, base),
					logging.Float64("seconds", seconds),
					logging.Float64("limit", m.maxSeconds),
				)
				continue
			}
		}

		result.Pairs = append(result.Pairs, Pair{
			SequenceID: len(result.Pairs) + 1,
			Type:       MatchCrossDirectory,
			Base:       still.Base,
			Still:      still,
			Video:      video,
		})
		used[still] = struct{}{}
		used[video] = struct{}{}
	}
	return nil
}

// singleUnused returns the sole unconsumed file in candidates, if exactly
// one exists.
func singleUnused(candidates []*catalog.MediaFile, used map[*catalog.MediaFile]struct{}) (*catalog.MediaFile, bool) {
	var found *catalog.MediaFile
	for _, candidate := range candidates {
		if _, consumed := used[candidate]; consumed {
			continue
		}
		if found != nil {
			return nil, false
		}
		found = candidate
	}
	return found, found != nil
}
