package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunCommandDryRunByDefault(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seed(t, "2023/IMG_0001.HEIC", "still")
	env.seed(t, "2023/IMG_0001.MOV", "video")
	env.seed(t, "2023/IMG_0002.JPG", "unmatched")

	out, _, err := runCLI(t, env.configPath, "run")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "dry run")
	requireContains(t, out, "Pairs (same dir)")

	if _, statErr := os.Stat(env.pairsDir); !os.IsNotExist(statErr) {
		t.Fatalf("dry run created %s", env.pairsDir)
	}
}

func TestRunCommandApplyStagesOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seed(t, "IMG_0001.HEIC", "still")
	env.seed(t, "IMG_0001.MOV", "video")

	out, _, err := runCLI(t, env.configPath, "run", "--apply")
	if err != nil {
		t.Fatalf("run --apply: %v", err)
	}
	requireContains(t, out, "Run Summary")

	for _, name := range []string{"00001_IMG_0001__STILL.HEIC", "00001_IMG_0001__VIDEO.MOV"} {
		staged := filepath.Join(env.pairsDir, name)
		if _, statErr := os.Stat(staged); statErr != nil {
			t.Fatalf("expected staged file at %s: %v", staged, statErr)
		}
	}
}

func TestRunCommandRequiresDestinations(t *testing.T) {
	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	root := filepath.Join(base, "export")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(base, "livestage.toml")
	if err := os.WriteFile(configPath, []byte("[paths]\nroot_dir = \""+root+"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err := runCLI(t, configPath, "run")
	if err == nil {
		t.Fatal("run without destinations should fail")
	}
}

func TestConfigInitAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")
	out, _, err := runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, statErr := os.Stat(target); statErr != nil {
		t.Fatalf("expected config file at %s: %v", target, statErr)
	}

	if _, _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("second init without --overwrite should fail")
	}

	out, _, err = runCLI(t, env.configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "transfer_mode")
	requireContains(t, out, "copy")
}

func TestConfigValidateReportsRunnable(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}
