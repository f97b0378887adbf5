// Package segment slices a complete ADM document into independent,
// time-bounded frames.
//
// Construction sorts the block formats of the source document, snapshots the
// document without blocks as a base frame, and traces every programme down to
// its channel formats to learn the time window each channel format is active
// in. Each frame is then a copy of the base plus the blocks that fall inside
// the requested window, widened by two blocks before and one after so that
// consumers keep interpolation context. Adjacent frames therefore overlap at
// their boundaries; the combiner drops the duplicates by identity.
package segment

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"admstream/internal/adm"
	"admstream/internal/frame"
	"admstream/internal/logging"
	"admstream/internal/metrics"
)

// ErrInvalidWindow is returned for a negative start or a non-positive duration.
var ErrInvalidWindow = errors.New("invalid window")

// Item is the active window of one channel format as seen through one
// object. End is meaningful only when Bounded is set.
type Item struct {
	ChannelFormat adm.ID
	Start         time.Duration
	End           time.Duration
	Bounded       bool
}

type item struct {
	Item
	source *adm.ChannelFormat
}

// Segmenter produces frames from one source document.
type Segmenter struct {
	source    *adm.Document
	base      *frame.Frame
	items     []item
	next      frame.FormatID
	flowID    uuid.UUID
	frameType frame.Type
	transport *frame.TransportTrackFormat
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// Option configures a Segmenter.
type Option func(*Segmenter)

// WithLogger sets the logger; debug records are emitted per frame.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Segmenter) { s.logger = logger }
}

// WithMetrics records frame counts and build times.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Segmenter) { s.metrics = m }
}

// WithFlowID stamps every frame with id instead of a random flow id.
func WithFlowID(id uuid.UUID) Option {
	return func(s *Segmenter) { s.flowID = id }
}

// WithTransport attaches a copy of tp to every frame.
func WithTransport(tp frame.TransportTrackFormat) Option {
	return func(s *Segmenter) {
		clone := tp.Clone()
		s.transport = &clone
	}
}

// WithFrameType sets the header type of every frame. The default is full.
func WithFrameType(t frame.Type) Option {
	return func(s *Segmenter) { s.frameType = t }
}

// New prepares a segmenter for doc. Block formats of doc are sorted in place.
func New(doc *adm.Document, opts ...Option) (*Segmenter, error) {
	if doc == nil {
		return nil, errors.New("segment: nil document")
	}
	s := &Segmenter{source: doc, frameType: frame.TypeFull}
	for _, opt := range opts {
		opt(s)
	}
	if s.flowID == uuid.Nil {
		s.flowID = uuid.New()
	}
	s.logger = logging.NewComponentLogger(s.logger, "segmenter").With(
		logging.String(logging.FieldFlowID, s.flowID.String()),
	)

	for _, cf := range doc.ChannelFormats() {
		cf.SortBlockFormats()
	}

	s.base = &frame.Frame{Document: doc.Copy()}
	for _, cf := range s.base.Document.ChannelFormats() {
		cf.ClearBlockFormats()
	}

	s.items = collectItems(doc)
	s.logger.Debug("segmenter ready",
		logging.Int("channel_formats", len(doc.ChannelFormats())),
		logging.Int("items", len(s.items)),
	)
	return s, nil
}

// timingPolicy follows presentation references down to channel formats
// without detouring through track UIDs.
type timingPolicy struct{ adm.DefaultPolicy }

func (timingPolicy) ShouldRecurse(parent, child adm.Element) bool {
	return parent.Kind() != adm.KindObject || child.Kind() != adm.KindTrackUID
}

func collectItems(doc *adm.Document) []item {
	tracer := adm.RouteTracer{Policy: timingPolicy{}}
	seen := map[Item]bool{}
	var items []item
	for _, p := range doc.Programmes() {
		for _, route := range tracer.Trace(p) {
			cf, ok := route.Last().(*adm.ChannelFormat)
			if !ok {
				continue
			}
			it := Item{ChannelFormat: cf.ID()}
			if objects := route.Objects(); len(objects) > 0 {
				nearest := objects[len(objects)-1]
				it.Start = nearest.Start()
				if d, ok := nearest.Duration(); ok {
					it.End, it.Bounded = it.Start+d, true
				}
			}
			if !it.Bounded {
				if end, ok := p.End(); ok {
					it.End, it.Bounded = end-p.Start(), true
				}
			}
			if seen[it] {
				continue
			}
			seen[it] = true
			items = append(items, item{Item: it, source: cf})
		}
	}
	return items
}

// Items returns the windows learned from the source document.
func (s *Segmenter) Items() []Item {
	out := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it.Item)
	}
	return out
}

// FlowID returns the flow id stamped on every frame.
func (s *Segmenter) FlowID() uuid.UUID {
	return s.flowID
}

// Frame builds the next frame covering [start, start+duration).
func (s *Segmenter) Frame(start, duration time.Duration) (*frame.Frame, error) {
	if start < 0 || duration <= 0 {
		return nil, fmt.Errorf("segment frame at %s for %s: %w", start, duration, ErrInvalidWindow)
	}
	began := time.Now()

	f := s.base.Copy()
	s.next++
	f.Header = frame.Header{
		ID:       s.next,
		Start:    start,
		Duration: duration,
		Type:     s.frameType,
		FlowID:   s.flowID,
	}
	if s.transport != nil {
		f.Transport = []frame.TransportTrackFormat{s.transport.Clone()}
	}

	copied := 0
	for _, it := range s.items {
		n, err := s.copyBlocks(f.Document, it, start, start+duration)
		if err != nil {
			return nil, err
		}
		copied += n
	}
	// Items sharing a channel format append in item order.
	for _, cf := range f.Document.ChannelFormats() {
		cf.SortBlockFormats()
	}

	s.metrics.RecordFrame(copied, time.Since(began))
	s.logger.Debug("frame built",
		logging.String(logging.FieldFrameID, f.Header.ID.String()),
		logging.Duration("start", start),
		logging.Duration("duration", duration),
		logging.Int("blocks", copied),
	)
	return f, nil
}

// copyBlocks copies the blocks of one item that fall in [segStart, segEnd)
// into dst, widened by two blocks before and one after.
func (s *Segmenter) copyBlocks(dst *adm.Document, it item, segStart, segEnd time.Duration) (int, error) {
	if it.Bounded && it.End <= segStart {
		return 0, nil
	}
	if it.Start >= segEnd {
		return 0, nil
	}
	from, to := max(segStart, it.Start), segEnd
	if it.Bounded {
		to = min(to, it.End)
	}

	blocks := it.source.BlockFormats()
	at := func(i int) time.Duration { return it.Start + blocks[i].Start() }
	lo := sort.Search(len(blocks), func(i int) bool { return at(i) > from })
	hi := sort.Search(len(blocks), func(i int) bool { return at(i) > to })
	if hi == 0 {
		return 0, nil
	}

	target, ok := dst.Lookup(it.ChannelFormat).(*adm.ChannelFormat)
	if !ok {
		return 0, fmt.Errorf("segment: channel format %s missing from frame", it.ChannelFormat)
	}
	copied := 0
	for _, b := range blocks[max(0, lo-2):min(len(blocks), hi+1)] {
		if _, exists := target.BlockFormat(b.ID()); exists {
			continue
		}
		if err := target.AddBlockFormat(b.Clone()); err != nil {
			return copied, fmt.Errorf("segment: copy block %s: %w", b.ID(), err)
		}
		copied++
	}
	return copied, nil
}

// Frames builds consecutive contiguous frames of length step covering
// [start, end). The last frame is shortened to end exactly at end.
func (s *Segmenter) Frames(start, end, step time.Duration) ([]*frame.Frame, error) {
	if step <= 0 || end <= start {
		return nil, fmt.Errorf("segment frames %s..%s step %s: %w", start, end, step, ErrInvalidWindow)
	}
	var frames []*frame.Frame
	for t := start; t < end; t += step {
		f, err := s.Frame(t, min(step, end-t))
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, nil
}
