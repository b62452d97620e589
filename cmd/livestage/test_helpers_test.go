package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	root         string
	pairsDir     string
	leftoversDir string
	configPath   string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	env := &cliTestEnv{
		root:         filepath.Join(base, "export"),
		pairsDir:     filepath.Join(base, "out", "LivePhotos"),
		leftoversDir: filepath.Join(base, "out", "OtherMedia"),
		configPath:   filepath.Join(base, "livestage.toml"),
	}
	if err := os.MkdirAll(env.root, 0o755); err != nil {
		t.Fatalf("mkdir root: %v", err)
	}

	content := fmt.Sprintf(`[paths]
root_dir = %q
pairs_dir = %q
leftovers_dir = %q
log_dir = %q

[staging]
transfer_mode = "copy"

[hash_cache]
enabled = false
`, env.root, env.pairsDir, env.leftoversDir, filepath.Join(base, "logs"))
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func (e *cliTestEnv) seed(t *testing.T, relPath, content string) {
	t.Helper()
	path := filepath.Join(e.root, relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = []string{"--config", configPath}
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
