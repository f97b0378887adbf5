package adm

import "slices"

// firstFree returns the first value >= start not present in occupied. It
// sorts occupied, binary-searches for start and walks the contiguous run of
// taken values, so holes left by removals are reused.
func firstFree(occupied []uint32, start uint32) uint32 {
	slices.Sort(occupied)
	occupied = slices.Compact(occupied)
	i, found := slices.BinarySearch(occupied, start)
	if !found {
		return start
	}
	v := start
	for i < len(occupied) && occupied[i] == v {
		i++
		v++
	}
	return v
}

// assignID returns the identity e receives when inserted into d. Common
// definition identities are kept. Otherwise the search starts at the
// element's own value (or counter) when set, else at the kind default, and
// takes the first free slot in the element's (kind, partition) group.
func (d *Document) assignID(e Element) ID {
	id := e.ID()
	id.Kind = e.Kind()
	if id.IsCommonDefinition() && id.Defined() {
		return id
	}

	switch id.Kind {
	case KindTrackFormat:
		return d.assignTrackFormatID(e.(*TrackFormat), id)
	case KindTrackUID:
		id.Value = firstFree(d.occupiedValues(id.Kind, id.Type, false), orDefault(id.Value, 1))
		return id
	default:
		id.Value = firstFree(d.occupiedValues(id.Kind, id.Type, id.Kind.Partitioned()), orDefault(id.Value, defaultValue))
		return id
	}
}

// orDefault returns v, or def when v is unset.
func orDefault(v, def uint32) uint32 {
	if v == 0 {
		return def
	}
	return v
}

// assignTrackFormatID picks a value and counter. A track format without a
// value borrows the value of its stream format when that one is defined, so
// the family stays aligned; the counter is then searched within that value.
func (d *Document) assignTrackFormatID(tf *TrackFormat, id ID) ID {
	if id.Value == 0 {
		if sf := tf.streamFormat; sf != nil && sf.id.Value != 0 && !sf.id.IsCommonDefinition() {
			id.Value = sf.id.Value
		} else {
			id.Value = firstFree(d.occupiedValues(KindTrackFormat, id.Type, true), defaultValue)
		}
	}
	var counters []uint32
	for _, other := range d.arenas[KindTrackFormat].items {
		oid := other.ID()
		if oid.Type == id.Type && oid.Value == id.Value {
			counters = append(counters, oid.Counter)
		}
	}
	id.Counter = firstFree(counters, max(id.Counter, 1))
	return id
}

// occupiedValues collects the values in use within a (kind, partition)
// group. Common definition values are never part of the search.
func (d *Document) occupiedValues(kind Kind, t TypeDescriptor, partitioned bool) []uint32 {
	items := d.arenas[kind].items
	out := make([]uint32, 0, len(items))
	for _, e := range items {
		id := e.ID()
		if partitioned && id.Type != t {
			continue
		}
		if id.IsCommonDefinition() {
			continue
		}
		out = append(out, id.Value)
	}
	return out
}
