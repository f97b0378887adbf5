package adm

import "weak"

// CloneElement returns a detached copy of e carrying its identity and
// attributes but no references. Channel formats are cloned without blocks.
func CloneElement(e Element) Element {
	b := e.base()
	base := element{id: b.id, attrs: b.attrs.Clone()}
	switch e.(type) {
	case *Programme:
		return &Programme{element: base}
	case *Content:
		return &Content{element: base}
	case *Object:
		return &Object{element: base}
	case *PackFormat:
		return &PackFormat{element: base}
	case *ChannelFormat:
		return &ChannelFormat{element: base}
	case *StreamFormat:
		return &StreamFormat{element: base}
	case *TrackFormat:
		return &TrackFormat{element: base}
	case *TrackUID:
		return &TrackUID{element: base}
	}
	return nil
}

// Copy returns an independent deep copy of d. Every element is cloned first,
// then every reference is re-resolved through the source-to-copy mapping, so
// the result does not depend on traversal order. Identities are preserved.
func (d *Document) Copy() *Document {
	out := NewDocument()
	mapping := make(map[Element]Element, d.Len())
	for _, src := range d.All() {
		dst := CloneElement(src)
		dst.base().doc = out
		a := out.arenas[dst.Kind()]
		a.items = append(a.items, dst)
		a.index[dst.ID()] = dst
		mapping[src] = dst
	}
	for src, dst := range mapping {
		copyReferences(src, dst, mapping)
		if cf, ok := src.(*ChannelFormat); ok {
			CopyBlockFormats(dst.(*ChannelFormat), cf)
		}
	}
	return out
}

// CopyBlockFormats appends clones of every block of src to dst, keeping
// counters.
func CopyBlockFormats(dst, src *ChannelFormat) {
	for _, b := range src.blocks {
		c := b.Clone()
		c.parent = dst
		dst.blocks = append(dst.blocks, c)
	}
}

func copyReferences(src, dst Element, m map[Element]Element) {
	switch s := src.(type) {
	case *Programme:
		dst.(*Programme).contents = remap(s.contents, m)
	case *Content:
		dst.(*Content).objects = remap(s.objects, m)
	case *Object:
		o := dst.(*Object)
		o.objects = remap(s.objects, m)
		o.complementary = remap(s.complementary, m)
		o.packFormats = remap(s.packFormats, m)
		o.trackUIDs = remap(s.trackUIDs, m)
	case *PackFormat:
		p := dst.(*PackFormat)
		p.channelFormats = remap(s.channelFormats, m)
		p.packFormats = remap(s.packFormats, m)
	case *StreamFormat:
		sf := dst.(*StreamFormat)
		sf.channelFormat = remapOne(s.channelFormat, m)
		sf.packFormat = remapOne(s.packFormat, m)
		for _, tf := range remap(s.TrackFormats(), m) {
			sf.trackFormats = append(sf.trackFormats, weak.Make(tf))
		}
	case *TrackFormat:
		dst.(*TrackFormat).streamFormat = remapOne(s.streamFormat, m)
	case *TrackUID:
		u := dst.(*TrackUID)
		u.trackFormat = remapOne(s.trackFormat, m)
		u.packFormat = remapOne(s.packFormat, m)
		u.channelFormat = remapOne(s.channelFormat, m)
	}
}

func remap[T Element](refs []T, m map[Element]Element) []T {
	if len(refs) == 0 {
		return nil
	}
	out := make([]T, 0, len(refs))
	for _, r := range refs {
		if c, ok := m[r]; ok {
			out = append(out, c.(T))
		}
	}
	return out
}

func remapOne[T interface {
	Element
	comparable
}](ref T, m map[Element]Element) T {
	var zero T
	if ref == zero {
		return zero
	}
	c, ok := m[ref]
	if !ok {
		return zero
	}
	return c.(T)
}
