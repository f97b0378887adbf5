package segment_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admstream/internal/adm"
	"admstream/internal/frame"
	"admstream/internal/metrics"
	"admstream/internal/segment"
)

func secs(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

type fixture struct {
	doc       *adm.Document
	programme *adm.Programme
	object    *adm.Object
	channel   *adm.ChannelFormat
}

// newFixture builds programme > content > object > pack > channel with
// blocks at 1, 2, 3 and 4 seconds; the last lasts one second.
func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{
		doc:       adm.NewDocument(),
		programme: adm.NewProgramme("p"),
		object:    adm.NewObject("o"),
		channel:   adm.NewChannelFormat("c", adm.TypeObjects),
	}
	f.object.SetStart(0)
	f.object.SetDuration(5 * time.Second)
	for i := 1; i <= 4; i++ {
		b := adm.NewBlockFormat(secs(float64(i)))
		if i == 4 {
			b.SetDuration(time.Second)
		}
		require.NoError(t, f.channel.AddBlockFormat(b))
	}
	content := adm.NewContent("c")
	pack := adm.NewPackFormat("p", adm.TypeObjects)
	_, err := f.doc.Add(f.programme)
	require.NoError(t, err)
	require.NoError(t, f.programme.AddContent(content))
	require.NoError(t, content.AddObject(f.object))
	require.NoError(t, f.object.AddPackFormat(pack))
	require.NoError(t, pack.AddChannelFormat(f.channel))
	return f
}

func counters(t *testing.T, fr *frame.Frame, id adm.ID) []uint32 {
	t.Helper()
	cf, ok := fr.Document.Lookup(id).(*adm.ChannelFormat)
	require.True(t, ok)
	var out []uint32
	for _, b := range cf.BlockFormats() {
		out = append(out, b.Counter())
	}
	return out
}

func TestFrameWindowing(t *testing.T) {
	tests := []struct {
		name  string
		start float64
		dur   float64
		want  []uint32
	}{
		{"before first block", 0, 0.5, nil},
		{"around first block", 1, 0.5, []uint32{1, 2}},
		{"between blocks", 2.25, 0.5, []uint32{1, 2, 3}},
		{"spanning two blocks", 2.25, 1.5, []uint32{1, 2, 3, 4}},
		{"inside last block", 4.5, 0.5, []uint32{3, 4}},
		{"after object end", 5.25, 0.5, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			s, err := segment.New(f.doc)
			require.NoError(t, err)

			fr, err := s.Frame(secs(tt.start), secs(tt.dur))
			require.NoError(t, err)
			assert.Equal(t, tt.want, counters(t, fr, f.channel.ID()))
		})
	}
}

func TestSharedChannelFrameKeepsCounterOrder(t *testing.T) {
	f := newFixture(t)
	late := adm.NewObject("late")
	late.SetStart(secs(2))
	late.SetDuration(5 * time.Second)
	require.NoError(t, f.programme.Contents()[0].AddObject(late))
	require.NoError(t, late.AddPackFormat(f.object.PackFormats()[0]))

	s, err := segment.New(f.doc)
	require.NoError(t, err)
	require.Len(t, s.Items(), 2)

	fr, err := s.Frame(secs(4), secs(1))
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 3, 4}, counters(t, fr, f.channel.ID()))
}

func TestFrameHeaderAndIsolation(t *testing.T) {
	f := newFixture(t)
	flow := uuid.New()
	tp := frame.TransportTrackFormat{ID: 7, Tracks: []frame.AudioTrack{{TrackID: 1}}}
	m := metrics.New()
	s, err := segment.New(f.doc,
		segment.WithFlowID(flow),
		segment.WithTransport(tp),
		segment.WithFrameType(frame.TypeDivided),
		segment.WithMetrics(m),
	)
	require.NoError(t, err)
	assert.Equal(t, flow, s.FlowID())

	first, err := s.Frame(secs(1), secs(0.5))
	require.NoError(t, err)
	second, err := s.Frame(secs(1.5), secs(0.5))
	require.NoError(t, err)

	assert.Equal(t, frame.FormatID(1), first.Header.ID)
	assert.Equal(t, frame.FormatID(2), second.Header.ID)
	assert.Equal(t, flow, first.Header.FlowID)
	assert.Equal(t, frame.TypeDivided, first.Header.Type)
	assert.Equal(t, secs(1.5), first.End())
	require.Len(t, first.Transport, 1)
	assert.Equal(t, frame.TransportID(7), first.Transport[0].ID)

	// Frames share nothing with the source or each other.
	assert.Equal(t, 4, f.channel.Len())
	assert.Equal(t, f.doc.Len(), first.Document.Len())
	assert.NotSame(t, f.channel, first.Document.Lookup(f.channel.ID()))
	assert.NotSame(t, first.Document.Lookup(f.channel.ID()), second.Document.Lookup(f.channel.ID()))

	assert.Equal(t, 2.0, m.Value("admstream_segmenter_frames_total", ""))
	assert.Equal(t, 5.0, m.Value("admstream_segmenter_blocks_copied_total", ""))
}

func TestNewSortsSourceBlocks(t *testing.T) {
	f := newFixture(t)
	early := adm.NewBlockFormat(secs(0.5))
	require.NoError(t, f.channel.AddBlockFormat(early))

	_, err := segment.New(f.doc)
	require.NoError(t, err)
	assert.Same(t, early, f.channel.BlockFormats()[0])
}

func TestItemsFallBackToProgrammeEnd(t *testing.T) {
	f := newFixture(t)
	f.object.Attributes().Unset(adm.AttrDuration)
	f.object.SetStart(secs(1))

	s, err := segment.New(f.doc)
	require.NoError(t, err)
	assert.Equal(t, []segment.Item{{ChannelFormat: f.channel.ID(), Start: secs(1)}}, s.Items())

	f.programme.SetStart(secs(1))
	f.programme.SetEnd(secs(4))
	s, err = segment.New(f.doc)
	require.NoError(t, err)
	assert.Equal(t, []segment.Item{{ChannelFormat: f.channel.ID(), Start: secs(1), End: secs(3), Bounded: true}}, s.Items())
}

func TestUnboundedItemCopiesTail(t *testing.T) {
	f := newFixture(t)
	f.object.Attributes().Unset(adm.AttrDuration)
	s, err := segment.New(f.doc)
	require.NoError(t, err)

	fr, err := s.Frame(secs(10), secs(1))
	require.NoError(t, err)
	assert.Equal(t, []uint32{3, 4}, counters(t, fr, f.channel.ID()))
}

func TestInvalidWindow(t *testing.T) {
	f := newFixture(t)
	s, err := segment.New(f.doc)
	require.NoError(t, err)

	_, err = s.Frame(-time.Second, time.Second)
	assert.ErrorIs(t, err, segment.ErrInvalidWindow)
	_, err = s.Frame(0, 0)
	assert.ErrorIs(t, err, segment.ErrInvalidWindow)
	_, err = s.Frames(0, time.Second, 0)
	assert.ErrorIs(t, err, segment.ErrInvalidWindow)

	_, err = segment.New(nil)
	assert.Error(t, err)
}

func TestFramesCoverRange(t *testing.T) {
	f := newFixture(t)
	s, err := segment.New(f.doc)
	require.NoError(t, err)

	frames, err := s.Frames(0, secs(2.5), time.Second)
	require.NoError(t, err)
	require.Len(t, frames, 3)
	assert.Equal(t, secs(2), frames[2].Header.Start)
	assert.Equal(t, secs(0.5), frames[2].Header.Duration)
}
