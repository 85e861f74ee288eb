// Package hashfam implements the deterministic multi-hash family shared by
// every sketch variant: turning an arbitrary item into depth independent
// indices into [0, width), and, for count-sketch, depth independent ±1
// signs.
package hashfam

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-farm"
)

// Digester produces the per-row indices and signs for one sketch. A single
// Digester is shared by all rows of a sketch so that the sketch is
// self-consistent across its own lifetime; it carries no mutable state.
type Digester struct {
	width uint64
}

// New returns a Digester for a sketch with the given width. width must be
// at least 1.
func New(width uint64) *Digester {
	if width == 0 {
		panic("hashfam: width must be >= 1")
	}
	return &Digester{width: width}
}

// CanonicalBytes is the single funnel every item passes through before
// hashing. Items are already strings (their text form), and the bytes are
// used as-is, so an integer item hashes the same as its decimal text
// -- see spec.md section 9.
func CanonicalBytes(item string) []byte {
	return []byte(item)
}

// Indices returns depth row indices in [0, width) for item, one per row.
func (d *Digester) Indices(item string, depth int) []uint64 {
	b := CanonicalBytes(item)
	out := make([]uint64, depth)
	for i := 0; i < depth; i++ {
		out[i] = d.indexForRow(b, i)
	}
	return out
}

// Index returns the row-i index in [0, width) for item.
func (d *Digester) Index(item string, row int) uint64 {
	return d.indexForRow(CanonicalBytes(item), row)
}

func (d *Digester) indexForRow(item []byte, row int) uint64 {
	tag := strconv.Itoa(row)
	buf := make([]byte, 0, len(item)+len(tag))
	buf = append(buf, item...)
	buf = append(buf, tag...)
	return farm.Fingerprint64(buf) % d.width
}

// Signs returns depth row signs in {-1, +1} for item, one per row, used
// only by count-sketch. The sign stream is independent of the index
// stream: it uses a different digest (xxhash rather than farm) and a
// distinguishing row tag, so that the sign bit for a row never collides
// with the bits that selected that row's index.
func (d *Digester) Signs(item string, depth int) []int64 {
	b := CanonicalBytes(item)
	out := make([]int64, depth)
	for i := 0; i < depth; i++ {
		out[i] = d.signForRow(b, i)
	}
	return out
}

// Sign returns the row-i sign for item.
func (d *Digester) Sign(item string, row int) int64 {
	return d.signForRow(CanonicalBytes(item), row)
}

func (d *Digester) signForRow(item []byte, row int) int64 {
	tag := "_sign" + strconv.Itoa(row)
	buf := make([]byte, 0, len(item)+len(tag))
	buf = append(buf, item...)
	buf = append(buf, tag...)
	h := xxhash.Sum64(buf)
	if h&1 == 0 {
		return 1
	}
	return -1
}
