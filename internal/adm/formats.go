package adm

import (
	"cmp"
	"slices"
	"time"
	"weak"
)

// PackFormat groups channel formats (and nested pack formats) of one type.
type PackFormat struct {
	element
	channelFormats []*ChannelFormat
	packFormats    []*PackFormat
}

// NewPackFormat returns a detached pack format of type t.
func NewPackFormat(name string, t TypeDescriptor) *PackFormat {
	return &PackFormat{element: newElement(KindPackFormat, t, name)}
}

func (*PackFormat) Kind() Kind { return KindPackFormat }

// SetID replaces the identity of a detached pack format.
func (p *PackFormat) SetID(id ID) error { return p.setID(KindPackFormat, id) }

// ChannelFormats returns the referenced channel formats.
func (p *PackFormat) ChannelFormats() []*ChannelFormat { return slices.Clone(p.channelFormats) }

// PackFormats returns the nested pack formats.
func (p *PackFormat) PackFormats() []*PackFormat { return slices.Clone(p.packFormats) }

// AddChannelFormat references cf.
func (p *PackFormat) AddChannelFormat(cf *ChannelFormat) error {
	if slices.Contains(p.channelFormats, cf) {
		return nil
	}
	if err := adopt(p, cf, "pack format add channel format"); err != nil {
		return err
	}
	p.channelFormats = append(p.channelFormats, cf)
	return nil
}

// RemoveChannelFormat drops the reference to cf.
func (p *PackFormat) RemoveChannelFormat(cf *ChannelFormat) {
	p.channelFormats = deleteRef(p.channelFormats, cf)
}

// AddPackFormat nests pf under p.
func (p *PackFormat) AddPackFormat(pf *PackFormat) error {
	if slices.Contains(p.packFormats, pf) {
		return nil
	}
	if err := adopt(p, pf, "pack format add pack format"); err != nil {
		return err
	}
	p.packFormats = append(p.packFormats, pf)
	return nil
}

// RemovePackFormat drops the nested reference to pf.
func (p *PackFormat) RemovePackFormat(pf *PackFormat) {
	p.packFormats = deleteRef(p.packFormats, pf)
}

// ChannelFormat describes one signal and owns its time-indexed block formats.
type ChannelFormat struct {
	element
	blocks []*BlockFormat
}

// NewChannelFormat returns a detached channel format of type t.
func NewChannelFormat(name string, t TypeDescriptor) *ChannelFormat {
	return &ChannelFormat{element: newElement(KindChannelFormat, t, name)}
}

func (*ChannelFormat) Kind() Kind { return KindChannelFormat }

// SetID replaces the identity of a detached channel format.
func (c *ChannelFormat) SetID(id ID) error { return c.setID(KindChannelFormat, id) }

// BlockFormats returns the owned block formats in storage order.
func (c *ChannelFormat) BlockFormats() []*BlockFormat { return slices.Clone(c.blocks) }

// Len returns the number of owned block formats.
func (c *ChannelFormat) Len() int { return len(c.blocks) }

// AddBlockFormat takes ownership of b. A block owned by another channel
// format is rejected. A missing or clashing counter is replaced by the first
// free counter at or after it.
func (c *ChannelFormat) AddBlockFormat(b *BlockFormat) error {
	if b.parent == c {
		return nil
	}
	if b.parent != nil {
		return Wrap(ErrStructuralViolation, "channel format add block format", c.id, "block %s is owned by %s", b.ID(), b.parent.id)
	}
	occupied := make([]uint32, 0, len(c.blocks))
	for _, existing := range c.blocks {
		occupied = append(occupied, existing.counter)
	}
	b.counter = firstFree(occupied, max(b.counter, 1))
	b.parent = c
	c.blocks = append(c.blocks, b)
	return nil
}

// RemoveBlockFormat releases b. It reports whether b was owned by c.
func (c *ChannelFormat) RemoveBlockFormat(b *BlockFormat) bool {
	if b.parent != c {
		return false
	}
	c.blocks = deleteRef(c.blocks, b)
	b.parent = nil
	return true
}

// ClearBlockFormats releases every owned block format.
func (c *ChannelFormat) ClearBlockFormats() {
	for _, b := range c.blocks {
		b.parent = nil
	}
	c.blocks = nil
}

// BlockFormat returns the owned block with the given identity.
func (c *ChannelFormat) BlockFormat(id ID) (*BlockFormat, bool) {
	for _, b := range c.blocks {
		if b.ID() == id {
			return b, true
		}
	}
	return nil, false
}

// SortBlockFormats orders the owned blocks by (start, duration). A block
// without a duration sorts before one with a duration at the same start.
func (c *ChannelFormat) SortBlockFormats() {
	slices.SortStableFunc(c.blocks, compareBlocks)
}

func compareBlocks(a, b *BlockFormat) int {
	if r := cmp.Compare(a.Start(), b.Start()); r != 0 {
		return r
	}
	ad, aok := a.Duration()
	bd, bok := b.Duration()
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	}
	return cmp.Compare(ad, bd)
}

// renumberBlocks assigns counters 1..n in storage order.
func (c *ChannelFormat) renumberBlocks() {
	for i, b := range c.blocks {
		b.counter = uint32(i + 1)
	}
}

// BlockFormat is one time-indexed parameter set of a channel format. Its
// identity derives from the owning channel format.
type BlockFormat struct {
	parent  *ChannelFormat
	counter uint32
	attrs   Attributes
}

// NewBlockFormat returns a detached block starting at start, relative to the
// object that uses its channel format.
func NewBlockFormat(start time.Duration) *BlockFormat {
	b := &BlockFormat{}
	b.attrs.Set(AttrStart, start)
	return b
}

// ID returns the derived block identity.
func (b *BlockFormat) ID() ID {
	id := ID{Kind: KindBlockFormat, Counter: b.counter}
	if b.parent != nil {
		id.Type = b.parent.id.Type
		id.Value = b.parent.id.Value
	}
	return id
}

// Counter returns the local counter.
func (b *BlockFormat) Counter() uint32 { return b.counter }

// SetCounter sets the local counter of a detached block.
func (b *BlockFormat) SetCounter(counter uint32) error {
	if b.parent != nil {
		return Wrap(ErrStructuralViolation, "block set counter", b.ID(), "block is owned by a channel format")
	}
	b.counter = counter
	return nil
}

// ChannelFormat returns the owning channel format, or nil.
func (b *BlockFormat) ChannelFormat() *ChannelFormat { return b.parent }

// Attributes returns the block attributes.
func (b *BlockFormat) Attributes() *Attributes { return &b.attrs }

// Start returns the block start relative to the owning object.
func (b *BlockFormat) Start() time.Duration {
	v, _ := Attr[time.Duration](&b.attrs, AttrStart)
	return v
}

// Duration returns the block duration when set.
func (b *BlockFormat) Duration() (time.Duration, bool) {
	return explicit[time.Duration](&b.attrs, AttrDuration)
}

// SetDuration sets the block duration.
func (b *BlockFormat) SetDuration(d time.Duration) { b.attrs.Set(AttrDuration, d) }

// Gain returns the linear gain, 1 by default.
func (b *BlockFormat) Gain() float64 {
	v, _ := Attr[float64](&b.attrs, AttrGain)
	return v
}

// SetGain sets the linear gain.
func (b *BlockFormat) SetGain(g float64) { b.attrs.Set(AttrGain, g) }

// Position is a polar object position.
type Position struct {
	Azimuth   float64
	Elevation float64
	Distance  float64
}

// Position returns the polar position; azimuth and elevation default to 0.
func (b *BlockFormat) Position() Position {
	az, _ := explicit[float64](&b.attrs, AttrAzimuth)
	el, _ := explicit[float64](&b.attrs, AttrElevation)
	dist, _ := Attr[float64](&b.attrs, AttrDistance)
	return Position{Azimuth: az, Elevation: el, Distance: dist}
}

// SetPosition stores a polar position.
func (b *BlockFormat) SetPosition(p Position) {
	b.attrs.Set(AttrAzimuth, p.Azimuth)
	b.attrs.Set(AttrElevation, p.Elevation)
	b.attrs.Set(AttrDistance, p.Distance)
}

// Clone returns a detached copy of b that keeps its counter.
func (b *BlockFormat) Clone() *BlockFormat {
	return &BlockFormat{counter: b.counter, attrs: b.attrs.Clone()}
}

// StreamFormat links a channel format or pack format to its track formats.
type StreamFormat struct {
	element
	channelFormat *ChannelFormat
	packFormat    *PackFormat
	trackFormats  []weak.Pointer[TrackFormat]
}

// NewStreamFormat returns a detached stream format of type t.
func NewStreamFormat(name string, t TypeDescriptor) *StreamFormat {
	return &StreamFormat{element: newElement(KindStreamFormat, t, name)}
}

func (*StreamFormat) Kind() Kind { return KindStreamFormat }

// SetID replaces the identity of a detached stream format.
func (s *StreamFormat) SetID(id ID) error { return s.setID(KindStreamFormat, id) }

// ChannelFormat returns the referenced channel format, or nil.
func (s *StreamFormat) ChannelFormat() *ChannelFormat { return s.channelFormat }

// PackFormat returns the referenced pack format, or nil.
func (s *StreamFormat) PackFormat() *PackFormat { return s.packFormat }

// SetChannelFormat replaces the channel format reference; nil clears it.
func (s *StreamFormat) SetChannelFormat(cf *ChannelFormat) error {
	if cf == nil {
		s.channelFormat = nil
		return nil
	}
	if err := adopt(s, cf, "stream format set channel format"); err != nil {
		return err
	}
	s.channelFormat = cf
	return nil
}

// SetPackFormat replaces the pack format reference.
func (s *StreamFormat) SetPackFormat(pf *PackFormat) error {
	if pf == nil {
		s.packFormat = nil
		return nil
	}
	if err := adopt(s, pf, "stream format set pack format"); err != nil {
		return err
	}
	s.packFormat = pf
	return nil
}

// UnsetChannelFormat clears the channel format reference.
func (s *StreamFormat) UnsetChannelFormat() { s.channelFormat = nil }

// UnsetPackFormat clears the pack format reference.
func (s *StreamFormat) UnsetPackFormat() { s.packFormat = nil }

// TrackFormats returns the live weakly-referenced track formats. Links whose
// target was collected or belongs to another document are skipped.
func (s *StreamFormat) TrackFormats() []*TrackFormat {
	live := make([]*TrackFormat, 0, len(s.trackFormats))
	for _, wp := range s.trackFormats {
		tf := wp.Value()
		if tf == nil || tf.doc != s.doc {
			continue
		}
		live = append(live, tf)
	}
	return live
}

// AddTrackFormat records a non-owning back-reference to tf.
func (s *StreamFormat) AddTrackFormat(tf *TrackFormat) error {
	if slices.Contains(s.TrackFormats(), tf) {
		return nil
	}
	if err := adopt(s, tf, "stream format add track format"); err != nil {
		return err
	}
	s.trackFormats = append(s.trackFormats, weak.Make(tf))
	return nil
}

// RemoveTrackFormat drops the back-reference to tf and prunes dead links.
func (s *StreamFormat) RemoveTrackFormat(tf *TrackFormat) {
	s.trackFormats = slices.DeleteFunc(s.trackFormats, func(wp weak.Pointer[TrackFormat]) bool {
		v := wp.Value()
		return v == nil || v == tf
	})
}

// TrackFormat describes the format of data on a track.
type TrackFormat struct {
	element
	streamFormat *StreamFormat
}

// NewTrackFormat returns a detached track format of type t.
func NewTrackFormat(name string, t TypeDescriptor) *TrackFormat {
	return &TrackFormat{element: newElement(KindTrackFormat, t, name)}
}

func (*TrackFormat) Kind() Kind { return KindTrackFormat }

// SetID replaces the identity of a detached track format.
func (t *TrackFormat) SetID(id ID) error { return t.setID(KindTrackFormat, id) }

// StreamFormat returns the referenced stream format, or nil.
func (t *TrackFormat) StreamFormat() *StreamFormat { return t.streamFormat }

// SetStreamFormat replaces the stream format reference.
func (t *TrackFormat) SetStreamFormat(sf *StreamFormat) error {
	if sf == nil {
		t.streamFormat = nil
		return nil
	}
	if err := adopt(t, sf, "track format set stream format"); err != nil {
		return err
	}
	t.streamFormat = sf
	return nil
}

// UnsetStreamFormat clears the stream format reference.
func (t *TrackFormat) UnsetStreamFormat() { t.streamFormat = nil }

// TrackUID identifies one physical track and what it carries. A TrackUID with
// no references is the silent placeholder.
type TrackUID struct {
	element
	trackFormat   *TrackFormat
	packFormat    *PackFormat
	channelFormat *ChannelFormat
}

// NewTrackUID returns a detached track UID.
func NewTrackUID() *TrackUID {
	return &TrackUID{element: newElement(KindTrackUID, TypeUndefined, "")}
}

func (*TrackUID) Kind() Kind { return KindTrackUID }

// SetID replaces the identity of a detached track UID.
func (u *TrackUID) SetID(id ID) error { return u.setID(KindTrackUID, id) }

// IsSilent reports whether u carries no references.
func (u *TrackUID) IsSilent() bool {
	return u.trackFormat == nil && u.packFormat == nil && u.channelFormat == nil
}

// TrackFormat returns the referenced track format, or nil.
func (u *TrackUID) TrackFormat() *TrackFormat { return u.trackFormat }

// PackFormat returns the referenced pack format, or nil.
func (u *TrackUID) PackFormat() *PackFormat { return u.packFormat }

// ChannelFormat returns the directly referenced channel format, or nil.
func (u *TrackUID) ChannelFormat() *ChannelFormat { return u.channelFormat }

// SetTrackFormat replaces the track format reference.
func (u *TrackUID) SetTrackFormat(tf *TrackFormat) error {
	if tf == nil {
		u.trackFormat = nil
		return nil
	}
	if err := adopt(u, tf, "track uid set track format"); err != nil {
		return err
	}
	u.trackFormat = tf
	return nil
}

// SetPackFormat replaces the pack format reference.
func (u *TrackUID) SetPackFormat(pf *PackFormat) error {
	if pf == nil {
		u.packFormat = nil
		return nil
	}
	if err := adopt(u, pf, "track uid set pack format"); err != nil {
		return err
	}
	u.packFormat = pf
	return nil
}

// SetChannelFormat replaces the channel format reference.
func (u *TrackUID) SetChannelFormat(cf *ChannelFormat) error {
	if cf == nil {
		u.channelFormat = nil
		return nil
	}
	if err := adopt(u, cf, "track uid set channel format"); err != nil {
		return err
	}
	u.channelFormat = cf
	return nil
}

// UnsetTrackFormat clears the track format reference.
func (u *TrackUID) UnsetTrackFormat() { u.trackFormat = nil }

// UnsetPackFormat clears the pack format reference.
func (u *TrackUID) UnsetPackFormat() { u.packFormat = nil }

// UnsetChannelFormat clears the channel format reference.
func (u *TrackUID) UnsetChannelFormat() { u.channelFormat = nil }
