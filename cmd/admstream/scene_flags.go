package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"admstream/internal/adm"
	"admstream/internal/config"
	"admstream/internal/scene"
)

// sceneFlags override the [scene] and [segmenter] sections for one run.
type sceneFlags struct {
	objects       int
	duration      time.Duration
	blockInterval time.Duration
	programmeEnd  time.Duration
	frame         time.Duration
	metrics       bool
}

func (f *sceneFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.objects, "objects", 0, "Number of objects in the scene")
	cmd.Flags().DurationVar(&f.duration, "duration", 0, "Lifetime of every object")
	cmd.Flags().DurationVar(&f.blockInterval, "block-interval", 0, "Spacing of block formats")
	cmd.Flags().DurationVar(&f.programmeEnd, "programme-end", 0, "Programme end; 0 leaves it open")
	cmd.Flags().DurationVar(&f.frame, "frame", 0, "Frame duration")
	cmd.Flags().BoolVar(&f.metrics, "metrics", false, "Print collected metrics")
}

// resolve merges the flags that were set onto cfg.
func (f *sceneFlags) resolve(cmd *cobra.Command, cfg *config.Config) (scene.Options, time.Duration) {
	opts := scene.OptionsFromConfig(cfg)
	frame := cfg.FrameDuration()
	flags := cmd.Flags()
	if flags.Changed("objects") {
		opts.Objects = f.objects
	}
	if flags.Changed("duration") {
		opts.Duration = f.duration
	}
	if flags.Changed("block-interval") {
		opts.BlockInterval = f.blockInterval
	}
	if flags.Changed("programme-end") {
		opts.ProgrammeEnd = f.programmeEnd
	}
	if flags.Changed("frame") {
		frame = f.frame
	}
	return opts, frame
}

func (f *sceneFlags) wantMetrics(cfg *config.Config) bool {
	return f.metrics || cfg.Output.Metrics
}

// buildScene constructs the scene and returns the time span it covers.
func buildScene(opts scene.Options) (*adm.Document, time.Duration, error) {
	doc, err := scene.Build(opts)
	if err != nil {
		return nil, 0, fmt.Errorf("build scene: %w", err)
	}
	return doc, max(opts.Duration, opts.ProgrammeEnd), nil
}
