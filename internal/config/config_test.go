package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"admstream/internal/config"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	want := filepath.Join(tempHome, ".config", "admstream", "config.toml")
	if resolved != want {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, want)
	}
	if cfg.FrameDuration() != 500*time.Millisecond {
		t.Fatalf("unexpected frame duration: %s", cfg.FrameDuration())
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.Output.Format != "table" {
		t.Fatalf("unexpected output format: %q", cfg.Output.Format)
	}
}

func TestLoadProjectFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)

	content := "[segmenter]\nframe_duration_ms = 250\nframe_type = \"Intermediate\"\n\n[scene]\nobjects = 4\n"
	if err := os.WriteFile(filepath.Join(dir, "admstream.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected project config to be found")
	}
	if cfg.FrameDuration() != 250*time.Millisecond {
		t.Fatalf("unexpected frame duration: %s", cfg.FrameDuration())
	}
	if cfg.Segmenter.FrameType != "intermediate" {
		t.Fatalf("expected normalized frame type, got %q", cfg.Segmenter.FrameType)
	}
	if cfg.Scene.Objects != 4 || cfg.Scene.DurationMS != 5000 {
		t.Fatalf("unexpected scene: %+v", cfg.Scene)
	}
}

func TestLogLevelEnvOverride(t *testing.T) {
	t.Setenv(config.LogLevelEnv, "DEBUG")
	path := filepath.Join(t.TempDir(), "missing.toml")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected env level, got %q", cfg.Logging.Level)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"log level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"frame duration", func(c *config.Config) { c.Segmenter.FrameDurationMS = 0 }, "frame_duration_ms"},
		{"frame type", func(c *config.Config) { c.Segmenter.FrameType = "partial" }, "frame_type"},
		{"transport id", func(c *config.Config) { c.Segmenter.TransportID = 0x10000 }, "transport_id"},
		{"flow id", func(c *config.Config) { c.Segmenter.FlowID = "not-a-uuid" }, "flow_id"},
		{"objects", func(c *config.Config) { c.Scene.Objects = 0 }, "scene.objects"},
		{"block interval", func(c *config.Config) { c.Scene.BlockIntervalMS = -1 }, "block_interval_ms"},
		{"output", func(c *config.Config) { c.Output.Format = "yaml" }, "output.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestFlowIDFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Segmenter.FlowID = "6f1c1e0a-3a52-4f61-9c1f-1c2f0d9c1a11"
	if got := cfg.FlowID().String(); got != cfg.Segmenter.FlowID {
		t.Fatalf("unexpected flow id: %s", got)
	}
	cfg.Segmenter.FlowID = ""
	if cfg.FlowID() == cfg.FlowID() {
		t.Fatal("expected fresh flow ids when unset")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}
	if decoded.Segmenter.FrameDurationMS != config.Default().Segmenter.FrameDurationMS {
		t.Fatalf("sample frame duration drifted from defaults: %d", decoded.Segmenter.FrameDurationMS)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil || !exists {
		t.Fatalf("Load sample: exists=%v err=%v", exists, err)
	}
	if cfg.Scene.Language != "en" {
		t.Fatalf("unexpected scene language: %q", cfg.Scene.Language)
	}
}
