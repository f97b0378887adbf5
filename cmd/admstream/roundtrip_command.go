package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"admstream/internal/adm"
	"admstream/internal/combine"
	"admstream/internal/metrics"
)

type channelResult struct {
	ChannelFormat string `json:"channel_format"`
	SourceBlocks  int    `json:"source_blocks"`
	MergedBlocks  int    `json:"merged_blocks"`
	Match         bool   `json:"match"`
}

type roundTripResult struct {
	Frames   int             `json:"frames"`
	Elements int             `json:"elements"`
	Valid    bool            `json:"valid"`
	Channels []channelResult `json:"channels"`
}

func newRoundTripCommand(ctx *commandContext) *cobra.Command {
	var flags sceneFlags
	cmd := &cobra.Command{
		Use:   "roundtrip",
		Short: "Segment a scene and combine the frames back into one document",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger(cmd.Context())
			if err != nil {
				return err
			}
			var m *metrics.Metrics
			if flags.wantMetrics(cfg) {
				m = metrics.New()
			}
			src, frames, err := segmentScene(cmd, ctx, &flags, m)
			if err != nil {
				return err
			}

			c := combine.New(combine.WithLogger(logger), combine.WithMetrics(m))
			for _, f := range frames {
				if err := c.Push(f); err != nil {
					return fmt.Errorf("push %s: %w", f.Header.ID, err)
				}
			}

			result := compareDocuments(src, c.Document())
			result.Frames = len(frames)
			if err := emit(cmd, ctx, result, func() string {
				rows := make([][]string, 0, len(result.Channels))
				for _, ch := range result.Channels {
					rows = append(rows, []string{ch.ChannelFormat, strconv.Itoa(ch.SourceBlocks), strconv.Itoa(ch.MergedBlocks), yesNo(ch.Match)})
				}
				return fmt.Sprintf("Frames: %d  Elements: %d  Valid: %s\n%s",
					result.Frames, result.Elements, yesNo(result.Valid),
					renderTable(cmd.OutOrStdout(),
						[]string{"Channel format", "Source blocks", "Merged blocks", "Match"},
						rows,
						[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
					))
			}); err != nil {
				return err
			}
			if err := printMetrics(cmd, ctx, m); err != nil {
				return err
			}
			for _, ch := range result.Channels {
				if !ch.Match {
					return fmt.Errorf("channel format %s lost blocks in the round trip", ch.ChannelFormat)
				}
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// compareDocuments checks every channel format of src against its
// counterpart in merged by block identity.
func compareDocuments(src, merged *adm.Document) roundTripResult {
	result := roundTripResult{
		Elements: merged.Len(),
		Valid:    adm.Validate(merged) == nil,
	}
	for _, cf := range src.ChannelFormats() {
		ch := channelResult{ChannelFormat: cf.ID().String(), SourceBlocks: cf.Len()}
		if got := merged.ChannelFormatFor(cf.ID()); got != nil {
			ch.MergedBlocks = got.Len()
			ch.Match = sameBlocks(cf, got)
		}
		result.Channels = append(result.Channels, ch)
	}
	return result
}

func sameBlocks(a, b *adm.ChannelFormat) bool {
	if a.Len() != b.Len() {
		return false
	}
	for _, blk := range a.BlockFormats() {
		if _, ok := b.BlockFormat(blk.ID()); !ok {
			return false
		}
	}
	return true
}
