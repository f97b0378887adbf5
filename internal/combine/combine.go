// Package combine rebuilds one cumulative document from a stream of frames.
//
// Every push is planned against the running state first and only committed
// when the whole frame is acceptable, so a rejected push leaves the combiner
// exactly as it was. Elements are matched by identity. Block formats are
// appended per channel format behind a cursor; blocks already merged are
// dropped, and a block that would land behind the cursor without having been
// merged is rejected as an out-of-order push.
package combine

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"admstream/internal/adm"
	"admstream/internal/frame"
	"admstream/internal/logging"
	"admstream/internal/metrics"
)

// blockState tracks what has been merged for one channel format.
type blockState struct {
	cursor uint32
	merged map[uint32]bool
}

// Combiner accumulates frames. It is not safe for concurrent use.
type Combiner struct {
	doc       *adm.Document
	transport *frame.TransportTrackFormat
	blocks    map[adm.ID]*blockState
	header    frame.Header
	pushed    bool
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// Option configures a Combiner.
type Option func(*Combiner)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Combiner) { c.logger = logger }
}

// WithMetrics records accepted and rejected pushes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Combiner) { c.metrics = m }
}

// New returns an empty combiner.
func New(opts ...Option) *Combiner {
	c := &Combiner{
		doc:    adm.NewDocument(),
		blocks: map[adm.ID]*blockState{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "combiner")
	return c
}

// Document returns the running document. A push that adds elements replaces
// it, so callers should fetch it again after pushing.
func (c *Combiner) Document() *adm.Document {
	return c.doc
}

// Transport returns the running transport description, if any frame carried
// one.
func (c *Combiner) Transport() (frame.TransportTrackFormat, bool) {
	if c.transport == nil {
		return frame.TransportTrackFormat{}, false
	}
	return c.transport.Clone(), true
}

// Frame returns a copy of the cumulative state as one frame whose header
// spans every pushed window.
func (c *Combiner) Frame() *frame.Frame {
	f := &frame.Frame{Header: c.header, Document: c.doc.Copy()}
	f.Header.Type = frame.TypeAll
	if c.transport != nil {
		f.Transport = []frame.TransportTrackFormat{c.transport.Clone()}
	}
	return f
}

// plan is everything one push will change, computed without touching the
// running state.
type plan struct {
	clones    []adm.Element
	edges     []adm.Edge
	blocks    []pendingBlock
	transport *frame.TransportTrackFormat
	merged    map[string]int
}

type pendingBlock struct {
	channel adm.ID
	block   *adm.BlockFormat
}

// Push merges f into the running state. On error nothing is changed.
func (c *Combiner) Push(f *frame.Frame) error {
	if err := c.push(f); err != nil {
		kind := "unknown"
		attrs := []logging.Attr{
			logging.String(logging.FieldFrameID, frameID(f)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "frame stream is inconsistent; the frame was discarded"),
			logging.String(logging.FieldImpact, "running document unchanged"),
		}
		var admErr *adm.Error
		if errors.As(err, &admErr) {
			kind = admErr.ErrorKind()
			attrs = append(attrs, elementAttrs(admErr.ID)...)
		}
		c.metrics.RecordRejection(kind)
		logging.WarnWithContext(c.logger, "push rejected", "push_rejected", attrs...)
		return err
	}
	return nil
}

// elementAttrs names the element a rejection is about, and its channel
// format when it is a block or channel format.
func elementAttrs(id adm.ID) []logging.Attr {
	if id.IsZero() {
		return nil
	}
	attrs := []logging.Attr{logging.ElementID(id)}
	if id.Kind == adm.KindChannelFormat || id.Kind == adm.KindBlockFormat {
		cf := adm.ID{Kind: adm.KindChannelFormat, Type: id.Type, Value: id.Value}
		attrs = append(attrs, logging.String(logging.FieldChannelFormat, cf.String()))
	}
	return attrs
}

func frameID(f *frame.Frame) string {
	if f == nil {
		return ""
	}
	return f.Header.ID.String()
}

func (c *Combiner) push(f *frame.Frame) error {
	if f == nil || f.Document == nil {
		return adm.Wrap(adm.ErrProtocolViolation, "combiner push", adm.ID{}, "frame has no document")
	}
	p := plan{merged: map[string]int{}}
	if err := c.planTransport(f, &p); err != nil {
		return err
	}
	c.planElements(f.Document, &p)
	if err := c.planBlocks(f.Document, &p); err != nil {
		return err
	}

	doc := c.doc
	if len(p.clones) > 0 || len(p.edges) > 0 {
		staged, err := stage(c.doc.Copy(), p)
		if err != nil {
			return err
		}
		doc = staged
	}
	c.commit(doc, f, p)
	return nil
}

func (c *Combiner) planTransport(f *frame.Frame, p *plan) error {
	switch len(f.Transport) {
	case 0:
		if c.transport != nil {
			clone := c.transport.Clone()
			p.transport = &clone
		}
		return nil
	case 1:
	default:
		return adm.Wrap(adm.ErrProtocolViolation, "combiner push", adm.ID{}, "frame %s carries %d transport descriptions", f.Header.ID, len(f.Transport))
	}

	incoming := f.Transport[0]
	if c.transport == nil {
		clone := incoming.Clone()
		p.transport = &clone
		return nil
	}
	if incoming.ID != c.transport.ID {
		return adm.Wrap(adm.ErrProtocolViolation, "combiner push", adm.ID{}, "transport changed from %s to %s", c.transport.ID, incoming.ID)
	}
	merged := c.transport.Clone()
	merged.Merge(incoming)
	p.transport = &merged
	return nil
}

// planElements clones every element the running document lacks, in
// dependency order, and records every reference that is not in place yet.
func (c *Combiner) planElements(src *adm.Document, p *plan) {
	for _, kind := range adm.TopLevelKinds {
		for _, e := range src.ElementsOfKind(kind) {
			if c.doc.Has(e.ID()) {
				continue
			}
			p.clones = append(p.clones, adm.CloneElement(e))
			p.merged[kind.String()]++
		}
	}
	for _, e := range src.All() {
		for _, edge := range adm.Edges(e) {
			if !c.linked(edge) {
				p.edges = append(p.edges, edge)
			}
		}
	}
}

// linked reports whether edge already exists in the running document.
func (c *Combiner) linked(edge adm.Edge) bool {
	from, to := c.doc.Lookup(edge.From), c.doc.Lookup(edge.To)
	if from == nil || to == nil {
		return false
	}
	if o, ok := from.(*adm.Object); ok {
		if target, ok := to.(*adm.Object); ok {
			set := o.Objects()
			if edge.Complementary {
				set = o.Complementary()
			}
			for _, x := range set {
				if x == target {
					return true
				}
			}
			return false
		}
	}
	for _, ref := range adm.References(from) {
		if ref == to {
			return true
		}
	}
	return false
}

// planBlocks selects the incoming blocks that extend each channel format
// past its cursor, walking them in counter order.
func (c *Combiner) planBlocks(src *adm.Document, p *plan) error {
	for _, cf := range src.ChannelFormats() {
		state := c.blocks[cf.ID()]
		var cursor uint32
		if state != nil {
			cursor = state.cursor
		}
		blocks := cf.BlockFormats()
		slices.SortFunc(blocks, func(a, b *adm.BlockFormat) int {
			return cmp.Compare(a.Counter(), b.Counter())
		})
		for _, b := range blocks {
			counter := b.Counter()
			if state != nil && state.merged[counter] {
				continue
			}
			if counter <= cursor {
				return adm.Wrap(adm.ErrProtocolViolation, "combiner push", b.ID(), "block arrives behind cursor %d of %s", cursor, cf.ID())
			}
			cursor = counter
			p.blocks = append(p.blocks, pendingBlock{channel: cf.ID(), block: b})
		}
	}
	return nil
}

// stage applies the element part of p to doc, a private copy of the running
// document. Any failure discards doc.
func stage(doc *adm.Document, p plan) (*adm.Document, error) {
	for _, clone := range p.clones {
		want := clone.ID()
		if _, err := doc.Add(clone); err != nil {
			return nil, fmt.Errorf("combiner add %s: %w", want, err)
		}
		if got := clone.ID(); got != want {
			return nil, adm.Wrap(adm.ErrStructuralViolation, "combiner push", want, "identity changed to %s on insert", got)
		}
	}
	if err := link(doc, p.edges); err != nil {
		return nil, err
	}
	return doc, nil
}

// link resolves every recorded edge by identity and wires it.
func link(doc *adm.Document, edges []adm.Edge) error {
	for _, edge := range edges {
		from := doc.Lookup(edge.From)
		if from == nil {
			return adm.Wrap(adm.ErrUnresolvedReference, "combiner resolve", edge.From, "source of reference to %s is missing", edge.To)
		}
		to := doc.Lookup(edge.To)
		if to == nil {
			return adm.Wrap(adm.ErrUnresolvedReference, "combiner resolve", edge.From, "target %s is missing", edge.To)
		}
		if err := adm.Link(from, to, edge.Complementary); err != nil {
			return fmt.Errorf("combiner link %s to %s: %w", edge.From, edge.To, err)
		}
	}
	return nil
}

func (c *Combiner) commit(doc *adm.Document, f *frame.Frame, p plan) {
	for _, pb := range p.blocks {
		cf := doc.ChannelFormatFor(pb.channel)
		// Counters behind the cursor were rejected during planning, so the
		// clone keeps its identity.
		_ = cf.AddBlockFormat(pb.block.Clone())
		state := c.blocks[pb.channel]
		if state == nil {
			state = &blockState{merged: map[uint32]bool{}}
			c.blocks[pb.channel] = state
		}
		state.cursor = pb.block.Counter()
		state.merged[state.cursor] = true
	}
	c.doc = doc
	c.transport = p.transport
	c.accumulateHeader(f.Header)

	c.metrics.RecordPush(p.merged, len(p.blocks))
	c.logger.Debug("frame merged",
		logging.String(logging.FieldFrameID, f.Header.ID.String()),
		logging.Int("elements", len(p.clones)),
		logging.Int("references", len(p.edges)),
		logging.Int("blocks", len(p.blocks)),
	)
}

func (c *Combiner) accumulateHeader(h frame.Header) {
	if !c.pushed {
		c.header = h
		c.pushed = true
		return
	}
	if h.FlowID != c.header.FlowID && h.FlowID != uuid.Nil {
		logging.WarnWithContext(c.logger, "flow id changed between frames", "flow_mismatch",
			logging.String(logging.FieldFlowID, h.FlowID.String()),
			logging.String("expected_flow_id", c.header.FlowID.String()),
			logging.String(logging.FieldImpact, "frame merged into the running document anyway"),
		)
	}
	start := min(c.header.Start, h.Start)
	end := max(c.header.End(), h.End())
	c.header.ID = h.ID
	c.header.Start = start
	c.header.Duration = end - start
}

// Span returns the window covered by every accepted push.
func (c *Combiner) Span() (start, end time.Duration) {
	return c.header.Start, c.header.End()
}
