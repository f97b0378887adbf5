// Package adm models object-based broadcast audio metadata (ITU-R BS.2076
// "ADM") as an in-memory graph of typed elements joined by directional
// references.
//
// A Document owns eight kinds of top-level element: Programme, Content,
// Object, PackFormat, ChannelFormat, StreamFormat, TrackFormat and TrackUID.
// ChannelFormats additionally own time-indexed BlockFormats. Elements are
// built detached, join a Document when added directly or when a parented
// element starts referencing them, and receive an identity at that moment if
// they did not carry one.
//
// # Key Types
//
// ID: value identity (kind, type partition, value, counter) with the textual
// form used by encoders, e.g. AO_1001 or AB_00031001_00000002.
//
// Attributes: keyed optional values with a side table of defaults, so callers
// can tell "explicitly set" apart from "defaulted".
//
// Document: per-kind arenas in insertion order plus identity indexes.
//
// RouteTracer: depth-first walk from any element to terminal elements under a
// pluggable TracePolicy.
//
// # Invariants
//
// Cross-document references are rejected with ErrStructuralViolation. Plain
// and complementary Object edges are each kept acyclic (ErrReferenceCycle).
// Identities in the common-definitions range are never reassigned.
//
// # Concurrency
//
// Nothing in this package locks. A Document and everything reachable from it
// must be mutated by one goroutine at a time.
package adm
