// Package stream implements the lazy stream-source abstraction (spec.md
// section 4.G) the driver pulls items from: a synthetic Zipf generator and
// a minimal file-backed line reader. Dataset parsing proper (CSV/TXT,
// column selection) is explicitly out of scope (spec.md section 1); these
// are the opaque-iterator-of-tokens implementations the spec treats as an
// external collaborator's responsibility.
package stream

import "github.com/pkg/errors"

// ErrExhausted is returned by a Source once it has no more items. The
// driver treats this as normal termination, per spec.md section 5.
var ErrExhausted = errors.New("stream: source exhausted")

// Source is a lazy, finite or infinite sequence of items. Next blocks (or
// applies whatever back-pressure the producer implements) until an item is
// ready, returns ErrExhausted when the sequence ends, or returns any other
// error as a fatal I/O failure the driver propagates and terminates on
// (spec.md section 7).
//
// Grounded on sim/sim.go's Simulator func type, generalized from
// func() (uint64, error) to func() (string, error) since this domain's
// items are textual (spec.md section 3: items are hashed via their
// textual representation).
type Source interface {
	Next() (string, error)
}

// SourceFunc adapts a plain function to the Source interface, the same
// closure-as-interface pattern sim.go's Simulator type uses.
type SourceFunc func() (string, error)

func (f SourceFunc) Next() (string, error) { return f() }
