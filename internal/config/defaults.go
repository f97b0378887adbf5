package config

const (
	defaultConfigPath      = "~/.config/admstream/config.toml"
	projectConfigName      = "admstream.toml"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultFrameDurationMS = 500
	defaultFrameType       = "full"
	defaultTransportID     = 1
	defaultSceneObjects    = 2
	defaultSceneDurationMS = 5000
	defaultBlockIntervalMS = 1000
	defaultSceneLanguage   = "en"
	defaultOutputFormat    = "table"

	// LogLevelEnv overrides logging.level when set.
	LogLevelEnv = "ADMSTREAM_LOG_LEVEL"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Segmenter: Segmenter{
			FrameDurationMS: defaultFrameDurationMS,
			FrameType:       defaultFrameType,
			TransportID:     defaultTransportID,
		},
		Scene: Scene{
			Objects:         defaultSceneObjects,
			DurationMS:      defaultSceneDurationMS,
			BlockIntervalMS: defaultBlockIntervalMS,
			Language:        defaultSceneLanguage,
		},
		Output: Output{
			Format: defaultOutputFormat,
		},
	}
}
