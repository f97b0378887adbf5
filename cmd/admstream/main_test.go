package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Chdir(base)

	configPath := filepath.Join(base, "config.toml")
	content := "[logging]\nlevel = \"error\"\n\n[segmenter]\nframe_duration_ms = 1000\n\n[scene]\nobjects = 2\nduration_ms = 3000\nblock_interval_ms = 500\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliTestEnv{configPath: configPath}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--quiet"}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
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

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Frames: 1s full")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
}

func TestSegmentJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"--json", "segment"}, env.configPath)
	if err != nil {
		t.Fatalf("segment: %v", err)
	}
	var frames []frameSummary
	if err := json.Unmarshal([]byte(out), &frames); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(frames))
	}
	if frames[0].ID != "FF_00000001" || frames[2].End != "3s" {
		t.Fatalf("unexpected frames: %+v", frames)
	}
	if frames[1].Blocks == 0 || frames[1].Transport == "" {
		t.Fatalf("expected blocks and transport in %+v", frames[1])
	}
}

func TestSegmentFlagsOverrideConfig(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"--json", "segment", "--frame", "500ms", "--objects", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("segment: %v", err)
	}
	var frames []frameSummary
	if err := json.Unmarshal([]byte(out), &frames); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(frames) != 6 {
		t.Fatalf("expected 6 frames, got %d", len(frames))
	}
}

func TestRoundTripTable(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"roundtrip", "--metrics"}, env.configPath)
	if err != nil {
		t.Fatalf("roundtrip: %v", err)
	}
	requireContains(t, out, "Valid: yes")
	requireContains(t, out, "AC_00031001")
	requireContains(t, out, "admstream_combiner_pushes_total")
	if strings.Contains(out, "| no ") {
		t.Fatalf("expected every channel to match:\n%s", out)
	}
}

func TestIDsParse(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"--json", "ids", "parse", "AO_1001", "AT_00031001_02"}, env.configPath)
	if err != nil {
		t.Fatalf("ids parse: %v", err)
	}
	var parsed []parsedID
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(parsed) != 2 || parsed[0].Kind != "object" || parsed[1].Counter != 2 {
		t.Fatalf("unexpected parse result: %+v", parsed)
	}

	if _, _, err := runCLI(t, []string{"ids", "parse", "XX_1"}, env.configPath); err == nil {
		t.Fatal("expected error for malformed id")
	}
}

func TestIDsReassign(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"--json", "ids", "reassign"}, env.configPath)
	if err != nil {
		t.Fatalf("ids reassign: %v", err)
	}
	var changes []idChange
	if err := json.Unmarshal([]byte(out), &changes); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	seen := map[string]bool{}
	for _, c := range changes {
		if seen[c.After] {
			t.Fatalf("duplicate identity %s after reassignment", c.After)
		}
		seen[c.After] = true
	}
	if !seen["APR_1001"] || !seen["ATU_00000001"] {
		t.Fatalf("expected programme and track uid identities in %v", seen)
	}
}
