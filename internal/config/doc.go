// Package config loads, normalizes, and validates admstream configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the ADMSTREAM_LOG_LEVEL
// environment override. Settings cover logging, the segmenter frame layout,
// the synthetic scene used by the demo commands, and output rendering.
package config
