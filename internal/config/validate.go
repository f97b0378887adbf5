package config

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"admstream/internal/frame"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateSegmenter(); err != nil {
		return err
	}
	if err := c.validateScene(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateSegmenter() error {
	if c.Segmenter.FrameDurationMS <= 0 {
		return errors.New("segmenter.frame_duration_ms must be positive")
	}
	if _, err := frame.ParseType(c.Segmenter.FrameType); err != nil {
		return fmt.Errorf("segmenter.frame_type: %w", err)
	}
	if c.Segmenter.TransportID < 0 || c.Segmenter.TransportID > 0xFFFF {
		return errors.New("segmenter.transport_id must fit in 16 bits")
	}
	if c.Segmenter.FlowID != "" {
		if _, err := uuid.Parse(c.Segmenter.FlowID); err != nil {
			return fmt.Errorf("segmenter.flow_id: %w", err)
		}
	}
	return nil
}

func (c *Config) validateScene() error {
	if c.Scene.Objects < 1 {
		return errors.New("scene.objects must be at least 1")
	}
	if c.Scene.DurationMS <= 0 {
		return errors.New("scene.duration_ms must be positive")
	}
	if c.Scene.BlockIntervalMS <= 0 {
		return errors.New("scene.block_interval_ms must be positive")
	}
	if c.Scene.ProgrammeEndMS < 0 {
		return errors.New("scene.programme_end_ms must not be negative")
	}
	return nil
}

func (c *Config) validateOutput() error {
	switch c.Output.Format {
	case "table", "json":
		return nil
	default:
		return fmt.Errorf("output.format must be table or json, got %q", c.Output.Format)
	}
}
