package adm

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStructuralViolation marks an element already owned by another
	// document, or an identity that cannot be stored in this one.
	ErrStructuralViolation = errors.New("structural violation")
	// ErrReferenceCycle marks an Object edge that would close a cycle.
	ErrReferenceCycle = errors.New("reference cycle")
	// ErrUnresolvedReference marks a recorded reference whose target cannot
	// be found by identity.
	ErrUnresolvedReference = errors.New("unresolved reference")
	// ErrProtocolViolation marks a frame stream that breaks framing rules.
	ErrProtocolViolation = errors.New("protocol violation")
)

// Error carries the operation and element involved in a failure. Unwrap
// returns the sentinel so errors.Is works against the exported markers.
type Error struct {
	Op     string
	ID     ID
	Detail string
	Err    error
}

func (e *Error) Error() string {
	parts := make([]string, 0, 3)
	if op := strings.TrimSpace(e.Op); op != "" {
		parts = append(parts, op)
	}
	if !e.ID.IsZero() {
		parts = append(parts, e.ID.String())
	}
	if detail := strings.TrimSpace(e.Detail); detail != "" {
		parts = append(parts, detail)
	}
	marker := "adm error"
	if e.Err != nil {
		marker = e.Err.Error()
	}
	if len(parts) == 0 {
		return marker
	}
	return fmt.Sprintf("%s: %s", marker, strings.Join(parts, ": "))
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorKind classifies the error with a stable string.
func (e *Error) ErrorKind() string {
	switch {
	case errors.Is(e.Err, ErrStructuralViolation):
		return "structural_violation"
	case errors.Is(e.Err, ErrReferenceCycle):
		return "reference_cycle"
	case errors.Is(e.Err, ErrUnresolvedReference):
		return "unresolved_reference"
	case errors.Is(e.Err, ErrProtocolViolation):
		return "protocol_violation"
	default:
		return "unknown"
	}
}

// Wrap builds an *Error tagged with marker. A nil marker is treated as a
// structural violation.
func Wrap(marker error, op string, id ID, format string, args ...any) error {
	if marker == nil {
		marker = ErrStructuralViolation
	}
	detail := format
	if len(args) > 0 {
		detail = fmt.Sprintf(format, args...)
	}
	return &Error{Op: op, ID: id, Detail: detail, Err: marker}
}
