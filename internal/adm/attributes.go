package adm

import (
	"fmt"
	"maps"
	"time"

	"golang.org/x/text/language"
)

// AttrKey names an optional element attribute.
type AttrKey string

// Attribute keys shared across element kinds.
const (
	AttrName           AttrKey = "name"
	AttrLanguage       AttrKey = "language"
	AttrStart          AttrKey = "start"
	AttrEnd            AttrKey = "end"
	AttrDuration       AttrKey = "duration"
	AttrImportance     AttrKey = "importance"
	AttrInteract       AttrKey = "interact"
	AttrDisableDucking AttrKey = "disable_ducking"
	AttrDialogue       AttrKey = "dialogue"
	AttrGain           AttrKey = "gain"
	AttrAzimuth        AttrKey = "azimuth"
	AttrElevation      AttrKey = "elevation"
	AttrDistance       AttrKey = "distance"
	AttrJumpPosition   AttrKey = "jump_position"
	AttrFormatLabel    AttrKey = "format_label"
)

// attrDefaults holds values reported by Get when an attribute is unset.
var attrDefaults = map[AttrKey]any{
	AttrStart:          time.Duration(0),
	AttrImportance:     10,
	AttrInteract:       false,
	AttrDisableDucking: false,
	AttrGain:           1.0,
	AttrDistance:       1.0,
	AttrJumpPosition:   false,
}

// Attributes is a keyed set of optional values. The zero value is ready to use.
type Attributes struct {
	values map[AttrKey]any
}

// Get returns the explicit value, or the default when unset.
func (a *Attributes) Get(key AttrKey) (any, bool) {
	if v, ok := a.values[key]; ok {
		return v, true
	}
	v, ok := attrDefaults[key]
	return v, ok
}

// Has reports whether key was explicitly set.
func (a *Attributes) Has(key AttrKey) bool {
	_, ok := a.values[key]
	return ok
}

// IsDefault reports whether key is unset but has a default.
func (a *Attributes) IsDefault(key AttrKey) bool {
	if a.Has(key) {
		return false
	}
	_, ok := attrDefaults[key]
	return ok
}

// Set stores an explicit value.
func (a *Attributes) Set(key AttrKey, value any) {
	if a.values == nil {
		a.values = make(map[AttrKey]any)
	}
	a.values[key] = value
}

// Unset removes an explicit value, reverting to the default if any.
func (a *Attributes) Unset(key AttrKey) {
	delete(a.values, key)
}

// Keys returns the explicitly set keys.
func (a *Attributes) Keys() []AttrKey {
	keys := make([]AttrKey, 0, len(a.values))
	for k := range a.values {
		keys = append(keys, k)
	}
	return keys
}

// Clone returns an independent copy.
func (a *Attributes) Clone() Attributes {
	return Attributes{values: maps.Clone(a.values)}
}

// Attr returns the typed value of key, falling back to its default. ok is
// false when the key has neither an explicit value nor a default of type T.
func Attr[T any](a *Attributes, key AttrKey) (T, bool) {
	var zero T
	v, ok := a.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// explicit returns the typed value only when it was set explicitly.
func explicit[T any](a *Attributes, key AttrKey) (T, bool) {
	var zero T
	if !a.Has(key) {
		return zero, false
	}
	return Attr[T](a, key)
}

// canonicalLanguage validates a BCP-47 tag and returns its canonical form.
func canonicalLanguage(tag string) (string, error) {
	parsed, err := language.Parse(tag)
	if err != nil {
		return "", fmt.Errorf("language %q: %w", tag, err)
	}
	return parsed.String(), nil
}
