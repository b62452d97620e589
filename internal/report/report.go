// Package report aggregates per-run counters and advisory issues into a
// summary the command layer renders after a run.
package report

import (
	"fmt"

	"livestage/internal/catalog"
	"livestage/internal/matcher"
	"livestage/internal/staging"
)

// Severity distinguishes advisory findings from per-entry failures.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue records one finding that did not stop the run.
type Issue struct {
	Severity Severity
	Category string
	Path     string
	Detail   string
}

// Summary collects everything a run produced besides the manifests.
type Summary struct {
	RunID  string
	DryRun bool

	Scanned         int
	Stills          int
	Videos          int
	Others          int
	SameDirPairs    int
	CrossDirPairs   int
	Leftovers       int
	PairsStaged     int
	LeftoversStaged int
	DuplicateSkips  int
	EntryErrors     int

	Issues []Issue
}

// AddScan folds the catalog index counters and scan warnings in.
func (s *Summary) AddScan(idx *catalog.Index) {
	if idx == nil {
		return
	}
	s.Scanned = idx.TotalScanned
	for _, file := range idx.Files {
		switch file.Kind {
		case catalog.KindStill:
			s.Stills++
		case catalog.KindVideo:
			s.Videos++
		}
	}
	s.Others = len(idx.Others)
	for _, warning := range idx.Warnings {
		s.Issues = append(s.Issues, Issue{
			Severity: SeverityWarning,
			Category: "scan",
			Path:     warning.Path,
			Detail:   warning.Reason,
		})
	}
}

// AddMatch folds the pairing outcome in, turning ambiguities, duration
// rejects, and probe failures into advisory issues.
func (s *Summary) AddMatch(result *matcher.Result) {
	if result == nil {
		return
	}
	for _, pair := range result.Pairs {
		if pair.Type == matcher.MatchSameDirectory {
			s.SameDirPairs++
		} else {
			s.CrossDirPairs++
		}
	}
	s.Leftovers = len(result.Leftovers)

	for _, ambiguity := range result.Ambiguities {
		s.Issues = append(s.Issues, Issue{
			Severity: SeverityWarning,
			Category: "ambiguity",
			Path:     ambiguity.Dir,
			Detail: fmt.Sprintf("base %q matches %d stills and %d videos; all left unpaired",
				ambiguity.Base, len(ambiguity.Stills), len(ambiguity.Videos)),
		})
	}
	for _, reject := range result.DurationRejects {
		s.Issues = append(s.Issues, Issue{
			Severity: SeverityWarning,
			Category: "duration",
			Path:     reject.Video,
			Detail:   fmt.Sprintf("video runs %.1fs, over the %.1fs pairing limit", reject.Seconds, reject.Limit),
		})
	}
	for _, failure := range result.ProbeFailures {
		s.Issues = append(s.Issues, Issue{
			Severity: SeverityWarning,
			Category: "probe",
			Path:     failure.Video,
			Detail:   fmt.Sprintf("duration probe failed, paired anyway: %v", failure.Err),
		})
	}
}

// AddStage folds the staging counters and per-entry failures in.
func (s *Summary) AddStage(stats staging.Stats, entryErrors []staging.EntryError) {
	s.PairsStaged = stats.PairsStaged
	s.LeftoversStaged = stats.LeftoversStaged
	s.DuplicateSkips = stats.LeftoversSkipped + stats.PairMemberSkips
	s.EntryErrors = stats.PairErrors + stats.LeftoverErrors
	for _, entryErr := range entryErrors {
		s.Issues = append(s.Issues, Issue{
			Severity: SeverityError,
			Category: "stage",
			Path:     entryErr.Src,
			Detail:   entryErr.Err.Error(),
		})
	}
}

// Warnings and Errors count issues by severity.
func (s *Summary) Warnings() int { return s.countSeverity(SeverityWarning) }

func (s *Summary) Errors() int { return s.countSeverity(SeverityError) }

func (s *Summary) countSeverity(severity Severity) int {
	count := 0
	for _, issue := range s.Issues {
		if issue.Severity == severity {
			count++
		}
	}
	return count
}
