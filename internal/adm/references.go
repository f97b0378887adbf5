package adm

// references returns every element e points at, including complementary
// objects and live weak track format links. This is the edge table used for
// auto-parenting and copying.
func references(e Element) []Element {
	var out []Element
	switch v := e.(type) {
	case *Programme:
		out = appendAll(out, v.contents)
	case *Content:
		out = appendAll(out, v.objects)
	case *Object:
		out = appendAll(out, v.objects)
		out = appendAll(out, v.complementary)
		out = appendAll(out, v.packFormats)
		out = appendAll(out, v.trackUIDs)
	case *PackFormat:
		out = appendAll(out, v.channelFormats)
		out = appendAll(out, v.packFormats)
	case *StreamFormat:
		out = appendOne(out, v.channelFormat)
		out = appendOne(out, v.packFormat)
		out = appendAll(out, v.TrackFormats())
	case *TrackFormat:
		out = appendOne(out, v.streamFormat)
	case *TrackUID:
		out = appendOne(out, v.trackFormat)
		out = appendOne(out, v.packFormat)
		out = appendOne(out, v.channelFormat)
	}
	return out
}

// children returns the forward edges walked by the route tracer: no weak
// back-links and no complementary alternatives.
func children(e Element) []Element {
	var out []Element
	switch v := e.(type) {
	case *Programme:
		out = appendAll(out, v.contents)
	case *Content:
		out = appendAll(out, v.objects)
	case *Object:
		out = appendAll(out, v.objects)
		out = appendAll(out, v.packFormats)
		out = appendAll(out, v.trackUIDs)
	case *PackFormat:
		out = appendAll(out, v.packFormats)
		out = appendAll(out, v.channelFormats)
	case *TrackUID:
		out = appendOne(out, v.trackFormat)
		out = appendOne(out, v.packFormat)
		out = appendOne(out, v.channelFormat)
	case *TrackFormat:
		out = appendOne(out, v.streamFormat)
	case *StreamFormat:
		out = appendOne(out, v.channelFormat)
		out = appendOne(out, v.packFormat)
	}
	return out
}

// References returns the elements e points at, in edge-table order.
func References(e Element) []Element {
	return references(e)
}

// unlink strips every reference dependent holds to target.
func unlink(dependent, target Element) {
	switch v := dependent.(type) {
	case *Programme:
		if t, ok := target.(*Content); ok {
			v.RemoveContent(t)
		}
	case *Content:
		if t, ok := target.(*Object); ok {
			v.RemoveObject(t)
		}
	case *Object:
		switch t := target.(type) {
		case *Object:
			v.RemoveObject(t)
			v.RemoveComplementary(t)
		case *PackFormat:
			v.RemovePackFormat(t)
		case *TrackUID:
			v.RemoveTrackUID(t)
		}
	case *PackFormat:
		switch t := target.(type) {
		case *ChannelFormat:
			v.RemoveChannelFormat(t)
		case *PackFormat:
			v.RemovePackFormat(t)
		}
	case *StreamFormat:
		switch t := target.(type) {
		case *ChannelFormat:
			if v.channelFormat == t {
				v.channelFormat = nil
			}
		case *PackFormat:
			if v.packFormat == t {
				v.packFormat = nil
			}
		case *TrackFormat:
			v.RemoveTrackFormat(t)
		}
	case *TrackFormat:
		if t, ok := target.(*StreamFormat); ok && v.streamFormat == t {
			v.streamFormat = nil
		}
	case *TrackUID:
		switch t := target.(type) {
		case *TrackFormat:
			if v.trackFormat == t {
				v.trackFormat = nil
			}
		case *PackFormat:
			if v.packFormat == t {
				v.packFormat = nil
			}
		case *ChannelFormat:
			if v.channelFormat == t {
				v.channelFormat = nil
			}
		}
	}
}

// link records a reference from src to dst according to the edge table,
// going through the public setters so ownership and cycle rules apply.
// complementary selects the complementary edge set for Object pairs.
func link(src, dst Element, complementary bool) error {
	switch v := src.(type) {
	case *Programme:
		if t, ok := dst.(*Content); ok {
			return v.AddContent(t)
		}
	case *Content:
		if t, ok := dst.(*Object); ok {
			return v.AddObject(t)
		}
	case *Object:
		switch t := dst.(type) {
		case *Object:
			if complementary {
				return v.AddComplementary(t)
			}
			return v.AddObject(t)
		case *PackFormat:
			return v.AddPackFormat(t)
		case *TrackUID:
			return v.AddTrackUID(t)
		}
	case *PackFormat:
		switch t := dst.(type) {
		case *ChannelFormat:
			return v.AddChannelFormat(t)
		case *PackFormat:
			return v.AddPackFormat(t)
		}
	case *StreamFormat:
		switch t := dst.(type) {
		case *ChannelFormat:
			return v.SetChannelFormat(t)
		case *PackFormat:
			return v.SetPackFormat(t)
		case *TrackFormat:
			return v.AddTrackFormat(t)
		}
	case *TrackFormat:
		if t, ok := dst.(*StreamFormat); ok {
			return v.SetStreamFormat(t)
		}
	case *TrackUID:
		switch t := dst.(type) {
		case *TrackFormat:
			return v.SetTrackFormat(t)
		case *PackFormat:
			return v.SetPackFormat(t)
		case *ChannelFormat:
			return v.SetChannelFormat(t)
		}
	}
	return Wrap(ErrStructuralViolation, "link", src.ID(), "%s cannot reference %s", src.Kind(), dst.Kind())
}

// Edge is one typed reference, recorded by identity.
type Edge struct {
	From          ID
	To            ID
	Complementary bool
}

// Edges lists the outgoing references of e by identity.
func Edges(e Element) []Edge {
	var out []Edge
	from := e.ID()
	if o, ok := e.(*Object); ok {
		for _, c := range o.complementary {
			out = append(out, Edge{From: from, To: c.ID(), Complementary: true})
		}
		for _, c := range o.objects {
			out = append(out, Edge{From: from, To: c.ID()})
		}
		for _, pf := range o.packFormats {
			out = append(out, Edge{From: from, To: pf.ID()})
		}
		for _, uid := range o.trackUIDs {
			out = append(out, Edge{From: from, To: uid.ID()})
		}
		return out
	}
	for _, ref := range references(e) {
		out = append(out, Edge{From: from, To: ref.ID()})
	}
	return out
}

// Link establishes a reference from src to dst, choosing the setter from the
// pair of kinds.
func Link(src, dst Element, complementary bool) error {
	return link(src, dst, complementary)
}

func appendAll[T Element](out []Element, refs []T) []Element {
	for _, r := range refs {
		out = append(out, r)
	}
	return out
}

func appendOne[T interface {
	Element
	comparable
}](out []Element, ref T) []Element {
	var zero T
	if ref == zero {
		return out
	}
	return append(out, ref)
}
