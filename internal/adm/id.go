package adm

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies an element kind.
type Kind uint8

// Element kinds, in dependency order (referenced kinds first).
const (
	KindUnknown Kind = iota
	KindChannelFormat
	KindPackFormat
	KindStreamFormat
	KindTrackFormat
	KindTrackUID
	KindObject
	KindContent
	KindProgramme
	KindBlockFormat
)

// TopLevelKinds lists the eight document-level kinds in dependency order.
var TopLevelKinds = []Kind{
	KindChannelFormat,
	KindPackFormat,
	KindStreamFormat,
	KindTrackFormat,
	KindTrackUID,
	KindObject,
	KindContent,
	KindProgramme,
}

var kindPrefixes = map[Kind]string{
	KindProgramme:     "APR",
	KindContent:       "ACO",
	KindObject:        "AO",
	KindPackFormat:    "AP",
	KindChannelFormat: "AC",
	KindStreamFormat:  "AS",
	KindTrackFormat:   "AT",
	KindTrackUID:      "ATU",
	KindBlockFormat:   "AB",
}

var kindNames = map[Kind]string{
	KindProgramme:     "programme",
	KindContent:       "content",
	KindObject:        "object",
	KindPackFormat:    "pack_format",
	KindChannelFormat: "channel_format",
	KindStreamFormat:  "stream_format",
	KindTrackFormat:   "track_format",
	KindTrackUID:      "track_uid",
	KindBlockFormat:   "block_format",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Prefix returns the textual identity prefix, e.g. "AO".
func (k Kind) Prefix() string {
	return kindPrefixes[k]
}

// Partitioned reports whether identities of this kind carry a type descriptor.
func (k Kind) Partitioned() bool {
	switch k {
	case KindPackFormat, KindChannelFormat, KindStreamFormat, KindTrackFormat, KindBlockFormat:
		return true
	}
	return false
}

// TypeDescriptor partitions format identities.
type TypeDescriptor uint16

// Type descriptors defined by BS.2076.
const (
	TypeUndefined      TypeDescriptor = 0
	TypeDirectSpeakers TypeDescriptor = 1
	TypeMatrix         TypeDescriptor = 2
	TypeObjects        TypeDescriptor = 3
	TypeHOA            TypeDescriptor = 4
	TypeBinaural       TypeDescriptor = 5
)

func (t TypeDescriptor) String() string {
	switch t {
	case TypeDirectSpeakers:
		return "DirectSpeakers"
	case TypeMatrix:
		return "Matrix"
	case TypeObjects:
		return "Objects"
	case TypeHOA:
		return "HOA"
	case TypeBinaural:
		return "Binaural"
	default:
		return "undefined"
	}
}

const (
	// commonDefinitionsMax is the highest value reserved for common definitions.
	commonDefinitionsMax uint32 = 0x0FFF
	defaultValue         uint32 = 0x1001
)

// ID is the identity of an element. Value 0 means undefined. Counter is the
// TrackFormat sub-index or the BlockFormat local counter.
type ID struct {
	Kind    Kind
	Type    TypeDescriptor
	Value   uint32
	Counter uint32
}

// IsZero reports whether no part of the identity is set.
func (id ID) IsZero() bool {
	return id == ID{}
}

// Defined reports whether the identity is complete for its kind.
func (id ID) Defined() bool {
	switch id.Kind {
	case KindTrackFormat, KindBlockFormat:
		return id.Value != 0 && id.Counter != 0
	case KindUnknown:
		return false
	default:
		return id.Value != 0
	}
}

// IsCommonDefinition reports whether the identity lies in the reserved range
// used by the common definitions catalogue.
func (id ID) IsCommonDefinition() bool {
	if !id.Kind.Partitioned() {
		return false
	}
	return id.Value != 0 && id.Value <= commonDefinitionsMax
}

// Less orders identities of the same kind by (type, value, counter).
func (id ID) Less(other ID) bool {
	if id.Kind != other.Kind {
		return id.Kind < other.Kind
	}
	if id.Type != other.Type {
		return id.Type < other.Type
	}
	if id.Value != other.Value {
		return id.Value < other.Value
	}
	return id.Counter < other.Counter
}

func (id ID) String() string {
	prefix := id.Kind.Prefix()
	if prefix == "" {
		return ""
	}
	switch id.Kind {
	case KindProgramme, KindContent, KindObject:
		return fmt.Sprintf("%s_%04X", prefix, id.Value)
	case KindTrackUID:
		return fmt.Sprintf("%s_%08X", prefix, id.Value)
	case KindTrackFormat:
		return fmt.Sprintf("%s_%04X%04X_%02X", prefix, uint16(id.Type), id.Value, id.Counter)
	case KindBlockFormat:
		return fmt.Sprintf("%s_%04X%04X_%08X", prefix, uint16(id.Type), id.Value, id.Counter)
	default:
		return fmt.Sprintf("%s_%04X%04X", prefix, uint16(id.Type), id.Value)
	}
}

// ParseID parses the textual identity form produced by ID.String.
func ParseID(raw string) (ID, error) {
	raw = strings.TrimSpace(raw)
	prefix, rest, ok := strings.Cut(raw, "_")
	if !ok {
		return ID{}, fmt.Errorf("parse id %q: missing separator", raw)
	}
	var kind Kind
	for k, p := range kindPrefixes {
		if p == prefix {
			kind = k
			break
		}
	}
	if kind == KindUnknown {
		return ID{}, fmt.Errorf("parse id %q: unknown prefix %q", raw, prefix)
	}

	id := ID{Kind: kind}
	switch kind {
	case KindProgramme, KindContent, KindObject:
		v, err := parseHex(rest, 4)
		if err != nil {
			return ID{}, fmt.Errorf("parse id %q: %w", raw, err)
		}
		id.Value = v
	case KindTrackUID:
		v, err := parseHex(rest, 8)
		if err != nil {
			return ID{}, fmt.Errorf("parse id %q: %w", raw, err)
		}
		id.Value = v
	default:
		main, counter, hasCounter := strings.Cut(rest, "_")
		if len(main) != 8 {
			return ID{}, fmt.Errorf("parse id %q: expected 8 hex digits, got %q", raw, main)
		}
		t, err := parseHex(main[:4], 4)
		if err != nil {
			return ID{}, fmt.Errorf("parse id %q: %w", raw, err)
		}
		v, err := parseHex(main[4:], 4)
		if err != nil {
			return ID{}, fmt.Errorf("parse id %q: %w", raw, err)
		}
		id.Type = TypeDescriptor(t)
		id.Value = v

		width := 0
		switch kind {
		case KindTrackFormat:
			width = 2
		case KindBlockFormat:
			width = 8
		}
		if width == 0 && hasCounter {
			return ID{}, fmt.Errorf("parse id %q: unexpected counter", raw)
		}
		if width > 0 {
			if !hasCounter {
				return ID{}, fmt.Errorf("parse id %q: missing counter", raw)
			}
			c, err := parseHex(counter, width)
			if err != nil {
				return ID{}, fmt.Errorf("parse id %q: %w", raw, err)
			}
			id.Counter = c
		}
	}
	return id, nil
}

func parseHex(s string, width int) (uint32, error) {
	if len(s) != width {
		return 0, fmt.Errorf("expected %d hex digits, got %q", width, s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}
