package runner_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"livestage/internal/config"
	"livestage/internal/logging"
	"livestage/internal/manifest"
	"livestage/internal/runner"
	"livestage/internal/services"
	"livestage/internal/testsupport"
)

func seedRoot(t *testing.T, cfg *config.Config) {
	t.Helper()
	root := cfg.Paths.RootDir
	testsupport.WriteContent(t, filepath.Join(root, "2023", "IMG_0001.HEIC"), []byte("still one"))
	testsupport.WriteContent(t, filepath.Join(root, "2023", "IMG_0001.MOV"), []byte("video one"))
	testsupport.WriteContent(t, filepath.Join(root, "2023", "IMG_0002.JPG"), []byte("unmatched"))
	testsupport.WriteContent(t, filepath.Join(root, "notes.txt"), []byte("not media"))
}

func TestRunDryRunDecidesWithoutMutating(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	seedRoot(t, cfg)

	outcome, err := runner.New(cfg, logging.NewNop()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(outcome.Pairs) != 1 || outcome.Pairs[0].Base != "IMG_0001" {
		t.Fatalf("unexpected pairs: %+v", outcome.Pairs)
	}
	if len(outcome.Leftovers) != 1 {
		t.Fatalf("unexpected leftovers: %+v", outcome.Leftovers)
	}
	if len(outcome.PairRows) != 1 || len(outcome.LeftoverRows) != 1 {
		t.Fatalf("expected manifest rows in dry run, got %d/%d", len(outcome.PairRows), len(outcome.LeftoverRows))
	}
	if outcome.RunID == "" || outcome.Summary.RunID != outcome.RunID {
		t.Errorf("run id not threaded through: %+v", outcome.Summary)
	}

	if _, err := os.Stat(cfg.Paths.PairsDir); !os.IsNotExist(err) {
		t.Errorf("dry run created pairs dir")
	}
	if _, err := os.Stat(cfg.Paths.LeftoversDir); !os.IsNotExist(err) {
		t.Errorf("dry run created leftovers dir")
	}
}

func TestRunApplyStagesAndWritesManifests(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithApply(), testsupport.WithCopyMode())
	seedRoot(t, cfg)

	outcome, err := runner.New(cfg, logging.NewNop()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Summary.PairsStaged != 1 || outcome.Summary.LeftoversStaged != 1 {
		t.Fatalf("unexpected summary: %+v", outcome.Summary)
	}

	staged := []string{
		filepath.Join(cfg.Paths.PairsDir, "00001_IMG_0001__STILL.HEIC"),
		filepath.Join(cfg.Paths.PairsDir, "00001_IMG_0001__VIDEO.MOV"),
		filepath.Join(cfg.Paths.LeftoversDir, "L000001__IMG_0002.JPG"),
		filepath.Join(cfg.Paths.PairsDir, manifest.PairsFileName),
		filepath.Join(cfg.Paths.LeftoversDir, manifest.LeftoversFileName),
	}
	for _, path := range staged {
		if _, statErr := os.Stat(path); statErr != nil {
			t.Errorf("missing %s: %v", path, statErr)
		}
	}

	raw, readErr := os.ReadFile(filepath.Join(cfg.Paths.PairsDir, manifest.PairsFileName))
	if readErr != nil {
		t.Fatalf("read pairs manifest: %v", readErr)
	}
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "same_dir") || !strings.Contains(lines[1], "IMG_0001") {
		t.Errorf("unexpected pair row: %q", lines[1])
	}
}

func TestRunDryRunMatchesApplyDecisions(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCopyMode())
	seedRoot(t, cfg)

	dry, err := runner.New(cfg, logging.NewNop()).Run(context.Background())
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}

	cfg.Staging.DryRun = false
	applied, err := runner.New(cfg, logging.NewNop()).Run(context.Background())
	if err != nil {
		t.Fatalf("apply run: %v", err)
	}

	if len(dry.PairRows) != len(applied.PairRows) {
		t.Fatalf("pair row counts diverge: %d vs %d", len(dry.PairRows), len(applied.PairRows))
	}
	for i := range dry.PairRows {
		if dry.PairRows[i] != applied.PairRows[i] {
			t.Errorf("pair row %d diverges:\ndry:   %+v\napply: %+v", i, dry.PairRows[i], applied.PairRows[i])
		}
	}
	if len(dry.LeftoverRows) != len(applied.LeftoverRows) {
		t.Fatalf("leftover row counts diverge: %d vs %d", len(dry.LeftoverRows), len(applied.LeftoverRows))
	}
	for i := range dry.LeftoverRows {
		if dry.LeftoverRows[i] != applied.LeftoverRows[i] {
			t.Errorf("leftover row %d diverges:\ndry:   %+v\napply: %+v", i, dry.LeftoverRows[i], applied.LeftoverRows[i])
		}
	}
}

func TestRunDeduplicatesLeftoverContent(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithApply(), testsupport.WithCopyMode(), testsupport.WithDedupe())
	root := cfg.Paths.RootDir
	testsupport.WriteContent(t, filepath.Join(root, "a", "scan.jpg"), []byte("same bytes"))
	testsupport.WriteContent(t, filepath.Join(root, "b", "scan_copy.jpg"), []byte("same bytes"))

	outcome, err := runner.New(cfg, logging.NewNop()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Summary.LeftoversStaged != 1 || outcome.Summary.DuplicateSkips != 1 {
		t.Fatalf("unexpected summary: %+v", outcome.Summary)
	}

	skips := 0
	for _, row := range outcome.LeftoverRows {
		if row.Action == manifest.ActionSkipDup {
			skips++
		}
	}
	if skips != 1 {
		t.Errorf("expected one SKIP_DUP row, got %d", skips)
	}
}

func TestRunIncludeOthersStagesUnclassifiedFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Staging.IncludeOthers = true
	seedRoot(t, cfg)

	outcome, err := runner.New(cfg, logging.NewNop()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	found := false
	for _, leftover := range outcome.Leftovers {
		if filepath.Base(leftover.Path) == "notes.txt" {
			found = true
		}
	}
	if !found {
		t.Errorf("include_others should stage unclassified files: %+v", outcome.Leftovers)
	}
	if outcome.Summary.Leftovers != len(outcome.Leftovers) {
		t.Errorf("summary leftovers = %d, staged %d", outcome.Summary.Leftovers, len(outcome.Leftovers))
	}
}

func TestRunMissingRootIsConfigurationError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.RootDir = filepath.Join(t.TempDir(), "gone")

	_, err := runner.New(cfg, logging.NewNop()).Run(context.Background())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRunApplyRefusesHeldLock(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithApply())
	seedRoot(t, cfg)

	lockDir := filepath.Dir(cfg.Paths.PairsDir)
	lock := flock.New(filepath.Join(lockDir, runner.LockFileName))
	held, err := lock.TryLock()
	if err != nil || !held {
		t.Fatalf("take lock: held=%v err=%v", held, err)
	}
	defer func() { _ = lock.Unlock() }()

	_, runErr := runner.New(cfg, logging.NewNop()).Run(context.Background())
	if !errors.Is(runErr, services.ErrTransient) {
		t.Fatalf("expected transient lock error, got %v", runErr)
	}
}
