package adm

import (
	"slices"
)

// Document owns a set of elements and indexes them by kind and identity.
type Document struct {
	arenas map[Kind]*arena
}

type arena struct {
	items []Element
	index map[ID]Element
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	d := &Document{arenas: make(map[Kind]*arena, len(TopLevelKinds))}
	for _, k := range TopLevelKinds {
		d.arenas[k] = &arena{index: make(map[ID]Element)}
	}
	return d
}

// Add parents e and every not-yet-present element reachable from it through
// the reference table. It returns false when e is already in d. If any
// element of that closure belongs to another document, or carries a common
// definition identity already used in d, nothing is mutated and the error
// wraps ErrStructuralViolation.
func (d *Document) Add(e Element) (bool, error) {
	if e.Document() == d {
		return false, nil
	}
	pending, err := d.closure(e)
	if err != nil {
		return false, err
	}
	// Referenced kinds first so dependent identities can derive from them.
	slices.SortStableFunc(pending, func(a, b Element) int {
		return int(a.Kind()) - int(b.Kind())
	})
	for _, el := range pending {
		d.insert(el)
	}
	return true, nil
}

// closure collects e and everything it transitively references that is not
// already in d, breadth first. It validates ownership and reserved identities
// without mutating anything.
func (d *Document) closure(e Element) ([]Element, error) {
	var pending []Element
	queued := map[Element]bool{e: true}
	reserved := map[ID]Element{}
	for queue := []Element{e}; len(queue) > 0; queue = queue[1:] {
		cur := queue[0]
		switch owner := cur.Document(); {
		case owner == d:
			continue
		case owner != nil:
			return nil, Wrap(ErrStructuralViolation, "document add", cur.ID(), "element belongs to another document")
		}
		if id := cur.ID(); id.IsCommonDefinition() && id.Defined() {
			if existing := d.Lookup(id); existing != nil {
				return nil, Wrap(ErrStructuralViolation, "document add", id, "common definition identity already present")
			}
			if other, ok := reserved[id]; ok && other != cur {
				return nil, Wrap(ErrStructuralViolation, "document add", id, "common definition identity used twice")
			}
			reserved[id] = cur
		}
		pending = append(pending, cur)
		for _, ref := range references(cur) {
			if !queued[ref] {
				queued[ref] = true
				queue = append(queue, ref)
			}
		}
	}
	return pending, nil
}

func (d *Document) insert(e Element) {
	b := e.base()
	b.id = d.assignID(e)
	b.doc = d
	a := d.arenas[e.Kind()]
	a.items = append(a.items, e)
	a.index[b.id] = e
}

// Remove detaches e from d and strips every reference other elements in d
// hold to it. It reports whether e was in d.
func (d *Document) Remove(e Element) bool {
	if e.Document() != d {
		return false
	}
	a := d.arenas[e.Kind()]
	a.items = deleteRef(a.items, e)
	if a.index[e.ID()] == e {
		delete(a.index, e.ID())
	}
	for _, k := range TopLevelKinds {
		for _, dependent := range d.arenas[k].items {
			unlink(dependent, e)
		}
	}
	e.base().doc = nil
	return true
}

// Lookup returns the element with the given identity, or nil. Block format
// identities resolve to their owning channel format.
func (d *Document) Lookup(id ID) Element {
	if id.Kind == KindBlockFormat {
		if cf := d.ChannelFormatFor(id); cf != nil {
			return cf
		}
		return nil
	}
	a, ok := d.arenas[id.Kind]
	if !ok {
		return nil
	}
	return a.index[id]
}

// ChannelFormatFor returns the channel format owning the block identity id.
func (d *Document) ChannelFormatFor(id ID) *ChannelFormat {
	cfID := ID{Kind: KindChannelFormat, Type: id.Type, Value: id.Value}
	cf, _ := d.arenas[KindChannelFormat].index[cfID].(*ChannelFormat)
	return cf
}

// BlockFormat resolves a block identity.
func (d *Document) BlockFormat(id ID) (*BlockFormat, bool) {
	cf := d.ChannelFormatFor(id)
	if cf == nil {
		return nil, false
	}
	return cf.BlockFormat(id)
}

// Has reports whether an element with the given identity is present.
func (d *Document) Has(id ID) bool {
	return d.Lookup(id) != nil
}

// Len returns the number of top-level elements.
func (d *Document) Len() int {
	n := 0
	for _, a := range d.arenas {
		n += len(a.items)
	}
	return n
}

// All returns every element in dependency order, then insertion order.
func (d *Document) All() []Element {
	out := make([]Element, 0, d.Len())
	for _, k := range TopLevelKinds {
		out = append(out, d.arenas[k].items...)
	}
	return out
}

// ElementsOfKind returns the elements of kind k in insertion order.
func (d *Document) ElementsOfKind(k Kind) []Element {
	a, ok := d.arenas[k]
	if !ok {
		return nil
	}
	return slices.Clone(a.items)
}

// Elements returns the elements of type T in insertion order.
func Elements[T Element](d *Document) []T {
	var zero T
	a, ok := d.arenas[zero.Kind()]
	if !ok {
		return nil
	}
	out := make([]T, 0, len(a.items))
	for _, e := range a.items {
		out = append(out, e.(T))
	}
	return out
}

// Programmes returns the programmes in insertion order.
func (d *Document) Programmes() []*Programme { return Elements[*Programme](d) }

// Contents returns the contents in insertion order.
func (d *Document) Contents() []*Content { return Elements[*Content](d) }

// Objects returns the objects in insertion order.
func (d *Document) Objects() []*Object { return Elements[*Object](d) }

// PackFormats returns the pack formats in insertion order.
func (d *Document) PackFormats() []*PackFormat { return Elements[*PackFormat](d) }

// ChannelFormats returns the channel formats in insertion order.
func (d *Document) ChannelFormats() []*ChannelFormat { return Elements[*ChannelFormat](d) }

// StreamFormats returns the stream formats in insertion order.
func (d *Document) StreamFormats() []*StreamFormat { return Elements[*StreamFormat](d) }

// TrackFormats returns the track formats in insertion order.
func (d *Document) TrackFormats() []*TrackFormat { return Elements[*TrackFormat](d) }

// TrackUIDs returns the track UIDs in insertion order.
func (d *Document) TrackUIDs() []*TrackUID { return Elements[*TrackUID](d) }

// reindex rebuilds every identity index from the arenas.
func (d *Document) reindex() {
	for _, a := range d.arenas {
		clear(a.index)
		for _, e := range a.items {
			a.index[e.ID()] = e
		}
	}
}

// adopt checks that src and dst may reference each other and parents
// whichever side is detached. Nothing is mutated on failure.
func adopt(src, dst Element, op string) error {
	sd, dd := src.Document(), dst.Document()
	switch {
	case sd != nil && dd != nil && sd != dd:
		return Wrap(ErrStructuralViolation, op, dst.ID(), "referenced element belongs to another document")
	case sd != nil && dd == nil:
		_, err := sd.Add(dst)
		return err
	case sd == nil && dd != nil:
		_, err := dd.Add(src)
		return err
	}
	return nil
}
