package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"admstream/internal/adm"
	"admstream/internal/frame"
	"admstream/internal/metrics"
	"admstream/internal/segment"
)

type frameSummary struct {
	ID        string `json:"id"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Type      string `json:"type"`
	Elements  int    `json:"elements"`
	Blocks    int    `json:"blocks"`
	Transport string `json:"transport,omitempty"`
}

func summarizeFrame(f *frame.Frame) frameSummary {
	s := frameSummary{
		ID:       f.Header.ID.String(),
		Start:    f.Header.Start.String(),
		End:      f.End().String(),
		Type:     f.Header.Type.String(),
		Elements: f.Document.Len(),
	}
	for _, cf := range f.Document.ChannelFormats() {
		s.Blocks += cf.Len()
	}
	if len(f.Transport) > 0 {
		tp := f.Transport[0]
		s.Transport = fmt.Sprintf("%s (%d tracks)", tp.ID, tp.NumTracks())
	}
	return s
}

func newSegmentCommand(ctx *commandContext) *cobra.Command {
	var flags sceneFlags
	cmd := &cobra.Command{
		Use:   "segment",
		Short: "Build a scene and list the frames it segments into",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var m *metrics.Metrics
			if flags.wantMetrics(cfg) {
				m = metrics.New()
			}
			_, frames, err := segmentScene(cmd, ctx, &flags, m)
			if err != nil {
				return err
			}

			summaries := make([]frameSummary, 0, len(frames))
			for _, f := range frames {
				summaries = append(summaries, summarizeFrame(f))
			}
			if err := emit(cmd, ctx, summaries, func() string {
				rows := make([][]string, 0, len(summaries))
				for _, s := range summaries {
					rows = append(rows, []string{s.ID, s.Start, s.End, s.Type, strconv.Itoa(s.Elements), strconv.Itoa(s.Blocks), s.Transport})
				}
				return renderTable(cmd.OutOrStdout(),
					[]string{"Frame", "Start", "End", "Type", "Elements", "Blocks", "Transport"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignRight, alignRight, alignLeft},
				)
			}); err != nil {
				return err
			}
			return printMetrics(cmd, ctx, m)
		},
	}
	flags.register(cmd)
	return cmd
}

// segmentScene builds the configured scene and cuts it into contiguous
// frames covering its whole span.
func segmentScene(cmd *cobra.Command, ctx *commandContext, flags *sceneFlags, m *metrics.Metrics) (*adm.Document, []*frame.Frame, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := ctx.ensureLogger(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	opts, frameDuration := flags.resolve(cmd, cfg)
	doc, span, err := buildScene(opts)
	if err != nil {
		return nil, nil, err
	}
	frameType, err := frame.ParseType(cfg.Segmenter.FrameType)
	if err != nil {
		return nil, nil, err
	}

	seg, err := segment.New(doc,
		segment.WithLogger(logger),
		segment.WithMetrics(m),
		segment.WithFlowID(cfg.FlowID()),
		segment.WithFrameType(frameType),
		segment.WithTransport(frame.TransportFor(frame.TransportID(cfg.Segmenter.TransportID), doc)),
	)
	if err != nil {
		return nil, nil, err
	}
	frames, err := seg.Frames(0, span, frameDuration)
	if err != nil {
		return nil, nil, err
	}
	return doc, frames, nil
}

func printMetrics(cmd *cobra.Command, ctx *commandContext, m *metrics.Metrics) error {
	if m == nil || ctx.jsonOutput() {
		return nil
	}
	samples, err := m.Snapshot()
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(samples))
	for _, s := range samples {
		rows = append(rows, []string{s.Name, s.Labels, strconv.FormatFloat(s.Value, 'g', -1, 64)})
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), renderTable(cmd.OutOrStdout(),
		[]string{"Metric", "Labels", "Value"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight},
	))
	return err
}
