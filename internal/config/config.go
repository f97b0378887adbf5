package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Segmenter contains the frame layout used when slicing a document.
type Segmenter struct {
	FrameDurationMS int    `toml:"frame_duration_ms"`
	FrameType       string `toml:"frame_type"`
	TransportID     int    `toml:"transport_id"`
	FlowID          string `toml:"flow_id"` // Empty: a random flow id per run
}

// Scene describes the synthetic scene built by the CLI.
type Scene struct {
	Objects         int    `toml:"objects"`
	DurationMS      int    `toml:"duration_ms"`
	BlockIntervalMS int    `toml:"block_interval_ms"`
	ProgrammeEndMS  int    `toml:"programme_end_ms"` // 0 leaves the programme open-ended
	Language        string `toml:"language"`
}

// Output selects how CLI results are rendered.
type Output struct {
	Format  string `toml:"format"`
	Metrics bool   `toml:"metrics"`
}

// Config encapsulates all configuration values for admstream.
//
// Configuration sections:
//   - Logging: log format, level and optional file
//   - Segmenter: frame duration, type and transport identity
//   - Scene: synthetic scene parameters for the demo commands
//   - Output: table or json rendering, metrics dump
type Config struct {
	Logging   Logging   `toml:"logging"`
	Segmenter Segmenter `toml:"segmenter"`
	Scene     Scene     `toml:"scene"`
	Output    Output    `toml:"output"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. A missing file
// yields the defaults; exists reports whether a file was read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// FrameDuration returns the configured frame length.
func (c *Config) FrameDuration() time.Duration {
	return time.Duration(c.Segmenter.FrameDurationMS) * time.Millisecond
}

// FlowID returns the configured flow id, or a fresh random one when unset.
func (c *Config) FlowID() uuid.UUID {
	if id, err := uuid.Parse(c.Segmenter.FlowID); err == nil {
		return id
	}
	return uuid.New()
}

// SceneDuration returns the lifetime of each synthetic object.
func (c *Config) SceneDuration() time.Duration {
	return time.Duration(c.Scene.DurationMS) * time.Millisecond
}

// BlockInterval returns the spacing of synthetic block formats.
func (c *Config) BlockInterval() time.Duration {
	return time.Duration(c.Scene.BlockIntervalMS) * time.Millisecond
}

// ProgrammeEnd returns the programme end, or 0 when open-ended.
func (c *Config) ProgrammeEnd() time.Duration {
	return time.Duration(c.Scene.ProgrammeEndMS) * time.Millisecond
}
