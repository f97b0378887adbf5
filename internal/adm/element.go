package adm

import (
	"slices"
	"time"
)

// Element is implemented by the eight top-level element kinds.
type Element interface {
	ID() ID
	Kind() Kind
	Document() *Document
	Attributes() *Attributes
	Name() string
	base() *element
}

type element struct {
	id    ID
	doc   *Document
	attrs Attributes
}

func (e *element) ID() ID                  { return e.id }
func (e *element) Document() *Document     { return e.doc }
func (e *element) Attributes() *Attributes { return &e.attrs }
func (e *element) base() *element          { return e }

// Name returns the element name, or "" when unset.
func (e *element) Name() string {
	name, _ := explicit[string](&e.attrs, AttrName)
	return name
}

// SetName sets the element name.
func (e *element) SetName(name string) {
	e.attrs.Set(AttrName, name)
}

// setID replaces the identity of a detached element. Parented elements only
// change identity through their document.
func (e *element) setID(kind Kind, id ID) error {
	if e.doc != nil {
		return Wrap(ErrStructuralViolation, "set id", e.id, "element is owned by a document")
	}
	if id.Type == TypeUndefined {
		id.Type = e.id.Type
	}
	id.Kind = kind
	e.id = id
	return nil
}

func newElement(kind Kind, t TypeDescriptor, name string) element {
	e := element{id: ID{Kind: kind, Type: t}}
	if name != "" {
		e.attrs.Set(AttrName, name)
	}
	return e
}

// Programme is the top of the presentation hierarchy.
type Programme struct {
	element
	contents []*Content
}

// NewProgramme returns a detached programme.
func NewProgramme(name string) *Programme {
	return &Programme{element: newElement(KindProgramme, TypeUndefined, name)}
}

func (*Programme) Kind() Kind { return KindProgramme }

// SetID replaces the identity of a detached programme.
func (p *Programme) SetID(id ID) error { return p.setID(KindProgramme, id) }

// Start returns the programme start, 0 by default.
func (p *Programme) Start() time.Duration {
	v, _ := Attr[time.Duration](&p.attrs, AttrStart)
	return v
}

// SetStart sets the programme start.
func (p *Programme) SetStart(start time.Duration) { p.attrs.Set(AttrStart, start) }

// End returns the programme end when set.
func (p *Programme) End() (time.Duration, bool) {
	return explicit[time.Duration](&p.attrs, AttrEnd)
}

// SetEnd sets the programme end.
func (p *Programme) SetEnd(end time.Duration) { p.attrs.Set(AttrEnd, end) }

// Language returns the canonical BCP-47 language tag, if set.
func (p *Programme) Language() string {
	v, _ := explicit[string](&p.attrs, AttrLanguage)
	return v
}

// SetLanguage validates and stores a BCP-47 language tag.
func (p *Programme) SetLanguage(tag string) error {
	canonical, err := canonicalLanguage(tag)
	if err != nil {
		return err
	}
	p.attrs.Set(AttrLanguage, canonical)
	return nil
}

// Contents returns the referenced contents.
func (p *Programme) Contents() []*Content { return slices.Clone(p.contents) }

// AddContent references c, parenting whichever side is detached.
func (p *Programme) AddContent(c *Content) error {
	if slices.Contains(p.contents, c) {
		return nil
	}
	if err := adopt(p, c, "programme add content"); err != nil {
		return err
	}
	p.contents = append(p.contents, c)
	return nil
}

// RemoveContent drops the reference to c.
func (p *Programme) RemoveContent(c *Content) {
	p.contents = deleteRef(p.contents, c)
}

// Content groups objects that form one component of a programme.
type Content struct {
	element
	objects []*Object
}

// NewContent returns a detached content.
func NewContent(name string) *Content {
	return &Content{element: newElement(KindContent, TypeUndefined, name)}
}

func (*Content) Kind() Kind { return KindContent }

// SetID replaces the identity of a detached content.
func (c *Content) SetID(id ID) error { return c.setID(KindContent, id) }

// Language returns the canonical BCP-47 language tag, if set.
func (c *Content) Language() string {
	v, _ := explicit[string](&c.attrs, AttrLanguage)
	return v
}

// SetLanguage validates and stores a BCP-47 language tag.
func (c *Content) SetLanguage(tag string) error {
	canonical, err := canonicalLanguage(tag)
	if err != nil {
		return err
	}
	c.attrs.Set(AttrLanguage, canonical)
	return nil
}

// Objects returns the referenced objects.
func (c *Content) Objects() []*Object { return slices.Clone(c.objects) }

// AddObject references o, parenting whichever side is detached.
func (c *Content) AddObject(o *Object) error {
	if slices.Contains(c.objects, o) {
		return nil
	}
	if err := adopt(c, o, "content add object"); err != nil {
		return err
	}
	c.objects = append(c.objects, o)
	return nil
}

// RemoveObject drops the reference to o.
func (c *Content) RemoveObject(o *Object) {
	c.objects = deleteRef(c.objects, o)
}

// Object binds pack formats and track UIDs over a time span.
type Object struct {
	element
	objects       []*Object
	complementary []*Object
	packFormats   []*PackFormat
	trackUIDs     []*TrackUID
}

// NewObject returns a detached object.
func NewObject(name string) *Object {
	return &Object{element: newElement(KindObject, TypeUndefined, name)}
}

func (*Object) Kind() Kind { return KindObject }

// SetID replaces the identity of a detached object.
func (o *Object) SetID(id ID) error { return o.setID(KindObject, id) }

// Start returns the object start relative to its programme, 0 by default.
func (o *Object) Start() time.Duration {
	v, _ := Attr[time.Duration](&o.attrs, AttrStart)
	return v
}

// HasStart reports whether a start was set explicitly.
func (o *Object) HasStart() bool { return o.attrs.Has(AttrStart) }

// SetStart sets the object start.
func (o *Object) SetStart(start time.Duration) { o.attrs.Set(AttrStart, start) }

// Duration returns the object duration when set.
func (o *Object) Duration() (time.Duration, bool) {
	return explicit[time.Duration](&o.attrs, AttrDuration)
}

// SetDuration sets the object duration.
func (o *Object) SetDuration(d time.Duration) { o.attrs.Set(AttrDuration, d) }

// Importance returns the object importance, 10 by default.
func (o *Object) Importance() int {
	v, _ := Attr[int](&o.attrs, AttrImportance)
	return v
}

// SetImportance sets the object importance.
func (o *Object) SetImportance(v int) { o.attrs.Set(AttrImportance, v) }

// Objects returns the nested objects.
func (o *Object) Objects() []*Object { return slices.Clone(o.objects) }

// Complementary returns the complementary objects.
func (o *Object) Complementary() []*Object { return slices.Clone(o.complementary) }

// PackFormats returns the referenced pack formats.
func (o *Object) PackFormats() []*PackFormat { return slices.Clone(o.packFormats) }

// TrackUIDs returns the referenced track UIDs.
func (o *Object) TrackUIDs() []*TrackUID { return slices.Clone(o.trackUIDs) }

// AddObject nests child under o. A reference that would make o reachable from
// itself fails with ErrReferenceCycle and leaves the graph unchanged. Any
// complementary relation between the pair is cleared.
func (o *Object) AddObject(child *Object) error {
	if slices.Contains(o.objects, child) {
		return nil
	}
	if child == o || reachable(child, o, (*Object).nested) {
		return Wrap(ErrReferenceCycle, "object add object", o.id, "%s already reaches %s", child.id, o.id)
	}
	if err := adopt(o, child, "object add object"); err != nil {
		return err
	}
	o.complementary = deleteRef(o.complementary, child)
	child.complementary = deleteRef(child.complementary, o)
	o.objects = append(o.objects, child)
	return nil
}

// RemoveObject drops the nested reference to child.
func (o *Object) RemoveObject(child *Object) {
	o.objects = deleteRef(o.objects, child)
}

// AddComplementary marks other as a complementary alternative to o. Cycles in
// the complementary edge set fail with ErrReferenceCycle. Any plain nesting
// between the pair is cleared.
func (o *Object) AddComplementary(other *Object) error {
	if slices.Contains(o.complementary, other) {
		return nil
	}
	if other == o || reachable(other, o, (*Object).complementaryEdges) {
		return Wrap(ErrReferenceCycle, "object add complementary", o.id, "%s already reaches %s", other.id, o.id)
	}
	if err := adopt(o, other, "object add complementary"); err != nil {
		return err
	}
	o.objects = deleteRef(o.objects, other)
	other.objects = deleteRef(other.objects, o)
	o.complementary = append(o.complementary, other)
	return nil
}

// RemoveComplementary drops the complementary reference to other.
func (o *Object) RemoveComplementary(other *Object) {
	o.complementary = deleteRef(o.complementary, other)
}

// AddPackFormat references pf.
func (o *Object) AddPackFormat(pf *PackFormat) error {
	if slices.Contains(o.packFormats, pf) {
		return nil
	}
	if err := adopt(o, pf, "object add pack format"); err != nil {
		return err
	}
	o.packFormats = append(o.packFormats, pf)
	return nil
}

// RemovePackFormat drops the reference to pf.
func (o *Object) RemovePackFormat(pf *PackFormat) {
	o.packFormats = deleteRef(o.packFormats, pf)
}

// AddTrackUID references uid.
func (o *Object) AddTrackUID(uid *TrackUID) error {
	if slices.Contains(o.trackUIDs, uid) {
		return nil
	}
	if err := adopt(o, uid, "object add track uid"); err != nil {
		return err
	}
	o.trackUIDs = append(o.trackUIDs, uid)
	return nil
}

// RemoveTrackUID drops the reference to uid.
func (o *Object) RemoveTrackUID(uid *TrackUID) {
	o.trackUIDs = deleteRef(o.trackUIDs, uid)
}

func (o *Object) nested() []*Object             { return o.objects }
func (o *Object) complementaryEdges() []*Object { return o.complementary }

// reachable reports whether target can be reached from start by following
// next. Iterative depth-first search.
func reachable(start, target *Object, next func(*Object) []*Object) bool {
	stack := []*Object{start}
	seen := map[*Object]bool{}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == target {
			return true
		}
		if seen[cur] {
			continue
		}
		seen[cur] = true
		stack = append(stack, next(cur)...)
	}
	return false
}

func deleteRef[T comparable](refs []T, target T) []T {
	return slices.DeleteFunc(refs, func(v T) bool { return v == target })
}
