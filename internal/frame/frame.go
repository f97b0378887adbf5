// Package frame describes one independently transmittable slice of an ADM
// document: a header with position and type, an optional transport track
// description, and the element set.
package frame

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"admstream/internal/adm"
)

// Type classifies a frame within a stream.
type Type uint8

// Frame types.
const (
	TypeHeader Type = iota
	TypeFull
	TypeDivided
	TypeIntermediate
	TypeAll
)

var typeNames = map[Type]string{
	TypeHeader:       "header",
	TypeFull:         "full",
	TypeDivided:      "divided",
	TypeIntermediate: "intermediate",
	TypeAll:          "all",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseType converts a frame type name.
func ParseType(name string) (Type, error) {
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown frame type %q", name)
}

// FormatID is the sequential frame identity.
type FormatID uint32

func (id FormatID) String() string {
	return fmt.Sprintf("FF_%08X", uint32(id))
}

// Header positions a frame in time.
type Header struct {
	ID       FormatID
	Start    time.Duration
	Duration time.Duration
	Type     Type
	FlowID   uuid.UUID
}

// End returns Start+Duration.
func (h Header) End() time.Duration {
	return h.Start + h.Duration
}

// Frame is a header, at most one transport description in a well-formed
// stream, and the document slice.
type Frame struct {
	Header    Header
	Transport []TransportTrackFormat
	Document  *adm.Document
}

// New returns an empty frame with the given header.
func New(h Header) *Frame {
	return &Frame{Header: h, Document: adm.NewDocument()}
}

// Copy returns a deep copy whose document shares nothing with f.
func (f *Frame) Copy() *Frame {
	out := &Frame{Header: f.Header}
	if f.Document != nil {
		out.Document = f.Document.Copy()
	} else {
		out.Document = adm.NewDocument()
	}
	for _, tp := range f.Transport {
		out.Transport = append(out.Transport, tp.Clone())
	}
	return out
}

// End returns the end of the frame window.
func (f *Frame) End() time.Duration {
	return f.Header.End()
}

// TransportID identifies a transport track description.
type TransportID uint16

func (id TransportID) String() string {
	return fmt.Sprintf("TP_%04X", uint16(id))
}

// AudioTrack lists the track UIDs carried on one physical track.
type AudioTrack struct {
	TrackID int
	UIDs    []adm.ID
}

// TransportTrackFormat maps physical tracks to track UIDs.
type TransportTrackFormat struct {
	ID     TransportID
	Tracks []AudioTrack
}

// NumTracks returns the number of physical tracks described.
func (t TransportTrackFormat) NumTracks() int {
	return len(t.Tracks)
}

// NumIDs returns the number of track UID entries across all tracks.
func (t TransportTrackFormat) NumIDs() int {
	n := 0
	for _, tr := range t.Tracks {
		n += len(tr.UIDs)
	}
	return n
}

// Clone returns an independent copy.
func (t TransportTrackFormat) Clone() TransportTrackFormat {
	out := TransportTrackFormat{ID: t.ID, Tracks: make([]AudioTrack, 0, len(t.Tracks))}
	for _, tr := range t.Tracks {
		out.Tracks = append(out.Tracks, AudioTrack{TrackID: tr.TrackID, UIDs: slices.Clone(tr.UIDs)})
	}
	return out
}

// Merge cumulates other into t. Tracks with an unseen index are appended;
// tracks with a known index gain the UIDs they did not list yet.
func (t *TransportTrackFormat) Merge(other TransportTrackFormat) {
	for _, incoming := range other.Tracks {
		i := slices.IndexFunc(t.Tracks, func(tr AudioTrack) bool { return tr.TrackID == incoming.TrackID })
		if i < 0 {
			t.Tracks = append(t.Tracks, AudioTrack{TrackID: incoming.TrackID, UIDs: slices.Clone(incoming.UIDs)})
			continue
		}
		for _, uid := range incoming.UIDs {
			if !slices.Contains(t.Tracks[i].UIDs, uid) {
				t.Tracks[i].UIDs = append(t.Tracks[i].UIDs, uid)
			}
		}
	}
}

// TransportFor describes every non-silent track UID of doc on its own
// physical track, numbered from 1 in insertion order.
func TransportFor(id TransportID, doc *adm.Document) TransportTrackFormat {
	out := TransportTrackFormat{ID: id}
	for _, uid := range doc.TrackUIDs() {
		if uid.IsSilent() {
			continue
		}
		out.Tracks = append(out.Tracks, AudioTrack{TrackID: len(out.Tracks) + 1, UIDs: []adm.ID{uid.ID()}})
	}
	return out
}
