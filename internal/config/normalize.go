package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	c.normalizeSegmenter()
	c.normalizeScene()
	c.normalizeOutput()
	return nil
}

func (c *Config) normalizeLogging() error {
	if value, ok := os.LookupEnv(LogLevelEnv); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.File) != "" {
		path, err := expandPath(strings.TrimSpace(c.Logging.File))
		if err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
		c.Logging.File = path
	}
	return nil
}

func (c *Config) normalizeSegmenter() {
	c.Segmenter.FrameType = strings.ToLower(strings.TrimSpace(c.Segmenter.FrameType))
	if c.Segmenter.FrameType == "" {
		c.Segmenter.FrameType = defaultFrameType
	}
	c.Segmenter.FlowID = strings.TrimSpace(c.Segmenter.FlowID)
}

func (c *Config) normalizeScene() {
	c.Scene.Language = strings.TrimSpace(c.Scene.Language)
}

func (c *Config) normalizeOutput() {
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Output.Format == "" {
		c.Output.Format = defaultOutputFormat
	}
}
