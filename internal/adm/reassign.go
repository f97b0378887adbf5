package adm

// allocKey names one counter sequence. Stream, channel and track formats of
// one type share a single family sequence.
type allocKey struct {
	kind Kind
	t    TypeDescriptor
}

// allocator hands out sequential values per key, skipping reserved ones.
type allocator struct {
	next     map[allocKey]uint32
	reserved map[allocKey]map[uint32]bool
}

func newAllocator() *allocator {
	return &allocator{
		next:     make(map[allocKey]uint32),
		reserved: make(map[allocKey]map[uint32]bool),
	}
}

func (a *allocator) reserve(key allocKey, v uint32) {
	if a.reserved[key] == nil {
		a.reserved[key] = make(map[uint32]bool)
	}
	a.reserved[key][v] = true
}

func (a *allocator) take(key allocKey, start uint32) uint32 {
	v, ok := a.next[key]
	if !ok {
		v = start
	}
	for a.reserved[key][v] {
		v++
	}
	a.next[key] = v + 1
	return v
}

const familyKind = KindStreamFormat

// Reassign renumbers every identity outside the common definitions range in
// a deterministic order. Silent track UIDs keep their identity. Stream
// formats propagate their value to the channel format they reference and to
// every track format referencing them; channel formats given a fresh value
// renumber their block formats from 1.
func Reassign(d *Document) {
	alloc := newAllocator()
	fresh := map[Element]bool{}

	for _, k := range TopLevelKinds {
		for _, e := range d.arenas[k].items {
			b := e.base()
			if uid, ok := e.(*TrackUID); ok && uid.IsSilent() {
				alloc.reserve(allocKey{kind: KindTrackUID}, b.id.Value)
				continue
			}
			if b.id.IsCommonDefinition() {
				continue
			}
			b.id.Value = 0
			b.id.Counter = 0
		}
	}

	assignSequential := func(k Kind, start uint32) {
		for _, e := range d.arenas[k].items {
			b := e.base()
			if b.id.Value != 0 {
				continue
			}
			key := allocKey{kind: k}
			if k.Partitioned() {
				key.t = b.id.Type
			}
			b.id.Value = alloc.take(key, start)
		}
	}
	assignSequential(KindProgramme, defaultValue)
	assignSequential(KindContent, defaultValue)
	assignSequential(KindObject, defaultValue)
	assignSequential(KindPackFormat, defaultValue)

	setChannelFormat := func(cf *ChannelFormat, v uint32) {
		if cf == nil || cf.id.Value != 0 || cf.id.IsCommonDefinition() {
			return
		}
		cf.id.Value = v
		fresh[cf] = true
	}

	counters := map[*StreamFormat]uint32{}
	for _, sf := range Elements[*StreamFormat](d) {
		if sf.id.Value != 0 {
			continue
		}
		v := alloc.take(allocKey{kind: familyKind, t: sf.id.Type}, defaultValue)
		sf.id.Value = v
		setChannelFormat(sf.channelFormat, v)
	}
	for _, tf := range Elements[*TrackFormat](d) {
		if tf.id.Value != 0 {
			continue
		}
		sf := tf.streamFormat
		if sf == nil || sf.id.IsCommonDefinition() {
			continue
		}
		counters[sf]++
		tf.id.Value = sf.id.Value
		tf.id.Counter = counters[sf]
	}
	for _, uid := range Elements[*TrackUID](d) {
		if cf := uid.channelFormat; cf != nil && cf.id.Value == 0 && !cf.id.IsCommonDefinition() {
			setChannelFormat(cf, alloc.take(allocKey{kind: familyKind, t: cf.id.Type}, defaultValue))
		}
	}
	for _, cf := range Elements[*ChannelFormat](d) {
		if cf.id.Value == 0 {
			setChannelFormat(cf, alloc.take(allocKey{kind: familyKind, t: cf.id.Type}, defaultValue))
		}
	}
	for _, tf := range Elements[*TrackFormat](d) {
		if tf.id.Value == 0 {
			tf.id.Value = alloc.take(allocKey{kind: familyKind, t: tf.id.Type}, defaultValue)
			tf.id.Counter = 1
		}
	}
	for _, uid := range Elements[*TrackUID](d) {
		if uid.id.Value == 0 && !uid.IsSilent() {
			uid.id.Value = alloc.take(allocKey{kind: KindTrackUID}, 1)
		}
	}

	for cf := range fresh {
		cf.(*ChannelFormat).renumberBlocks()
	}
	d.reindex()
}
