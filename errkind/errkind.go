/*
NAME
  errkind.go

DESCRIPTION
  errkind.go classifies the failure modes a decoder or encoder in this
  module can raise.

AUTHOR
  pyisle contributors

LICENSE
  Part of pyisle (github.com/floriandotorg/pyisle), an independent
  reimplementation not affiliated with or endorsed by the original
  game's publishers.
*/

// Package errkind classifies the failure modes a decoder or encoder in
// this module can raise, so a per-file driver can decide whether to skip
// a file and carry on or treat the failure as a programmer error.
package errkind

import "fmt"

// Kind distinguishes why an operation failed.
type Kind int

const (
	// MalformedInput means the bytes being decoded don't match the
	// format: bad magic, disallowed opcode, a length that doesn't add
	// up. Fatal to the current decode, not to the process.
	MalformedInput Kind = iota

	// InvariantViolation means calling code broke a precondition of an
	// in-memory builder (for instance adding a second root node to a
	// GLBWriter). These indicate a bug in this module, not bad input.
	InvariantViolation

	// Unsupported means the input is well-formed but uses a feature
	// this module deliberately doesn't decode (an FLC chunk type
	// outside the set this decoder understands).
	Unsupported
)

func (k Kind) String() string {
	switch k {
	case MalformedInput:
		return "malformed input"
	case InvariantViolation:
		return "invariant violation"
	case Unsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Error wraps an underlying error with the operation that raised it and
// a Kind so callers can type-switch on severity.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error tagging err with kind and the operation name op.
func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
