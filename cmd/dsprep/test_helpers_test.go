package main

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dsprep/internal/testsupport"
)

var polypRect = image.Rect(1, 1, 4, 3)

type cliTestEnv struct {
	baseDir    string
	ersRoot    string
	outputPath string
	configPath string
}

// setupCLITestEnv writes a small ERS tree and a config file pointing at it.
// HOME is redirected so the user's own config is never read.
func setupCLITestEnv(t *testing.T, patients, frames int) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("DSPREP_ERS_PATH", "")
	t.Setenv("DSPREP_HYPERKVASIR_PATH", "")

	env := &cliTestEnv{
		baseDir:    base,
		ersRoot:    filepath.Join(base, "ers"),
		outputPath: filepath.Join(base, "out"),
		configPath: filepath.Join(base, "dsprep.toml"),
	}
	for p := 0; p < patients; p++ {
		for f := 0; f < frames; f++ {
			name := fmt.Sprintf("%04d", f)
			testsupport.WriteERSFrame(t, env.ersRoot, fmt.Sprintf("%03d", p), "samples", name+".png",
				testsupport.ERSMask{Name: name + "_pol.png", Rect: polypRect})
		}
	}
	writeTestConfig(t, env.configPath, env.ersRoot, env.outputPath)
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--log-level", "error"}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path, ersRoot, outputPath string) {
	t.Helper()
	content := fmt.Sprintf(
		"[dataset]\ntraining_type = \"binary-seg\"\n\n[ers]\npath = %q\n\n[output]\npath = %q\nworkers = 2\n",
		ersRoot,
		outputPath,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
