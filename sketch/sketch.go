// Package sketch implements the five frequency-sketch variants described by
// the specification: classic count-min, conservative-update count-min,
// count-mean-min, count-sketch (signed AGMS), and sliding-window count-min,
// plus the optional exponential-bucket count-min variant. All share the
// capability set a driver and evaluator need: Add, Query, Reset,
// LoadFactor, TotalCount, DeepCopy, MemoryBytes.
package sketch

import "github.com/pkg/errors"

// ErrNegativeCount is returned by Add when count < 0 on a variant that only
// accepts non-negative updates.
var ErrNegativeCount = errors.New("sketch: count must be >= 0")

// ErrUnsupportedCount is returned by Add when a variant requires count == 1
// and a different value was supplied.
var ErrUnsupportedCount = errors.New("sketch: this variant only supports count == 1")

// Sketch is the capability interface every variant satisfies. Kept small and
// uniform by design: the driver and evaluator dispatch across variants
// without a type switch.
type Sketch interface {
	// Add folds count into the sketch's estimate of item.
	Add(item string, count int64) error
	// Query returns the current frequency estimate for item.
	Query(item string) int64
	// Reset clears all counter state.
	Reset()
	// LoadFactor returns the fraction of non-zero cells in the fullest row,
	// in [0, 1].
	LoadFactor() float64
	// TotalCount returns the sum of update magnitudes applied so far.
	TotalCount() int64
	// DeepCopy returns an independent copy of the sketch, safe to mutate or
	// read concurrently with the original -- this is what the driver takes
	// a snapshot with.
	DeepCopy() Sketch
	// MemoryBytes returns the byte footprint of the sketch's counter
	// storage.
	MemoryBytes() int64
	// Width and Depth report the sketch's fixed dimensions.
	Width() int
	Depth() int
}

// Kind names one of the five required variants, plus the optional ECM
// variant.
type Kind string

const (
	KindClassic        Kind = "CountMinSketch"
	KindConservative   Kind = "ConservativeCountMinSketch"
	KindCountMeanMin   Kind = "CountMeanMinSketch"
	KindCountSketch    Kind = "CountSketch"
	KindSliding        Kind = "SlidingCountMinSketch"
	KindExponential    Kind = "ExponentialBucketCountMinSketch"
)

// ErrUnknownKind is returned by New for an unrecognized Kind.
var ErrUnknownKind = errors.New("sketch: unknown algorithm kind")

// New dispatches construction by Kind, the tagged-variant pattern spec.md
// section 9 calls for in place of the source's dynamic subclassing.
// windowSize is only consulted by KindExponential, where 0 selects
// width*depth; KindSliding always uses width*depth as its window. Pass 0
// for the other variants.
func New(kind Kind, width, depth int, windowSize int64) (Sketch, error) {
	if width <= 0 || depth <= 0 {
		return nil, errors.Errorf("sketch: width and depth must be >= 1 (got width=%d depth=%d)", width, depth)
	}
	switch kind {
	case KindClassic:
		return newClassic(width, depth), nil
	case KindConservative:
		return newConservative(width, depth), nil
	case KindCountMeanMin:
		return newCountMeanMin(width, depth), nil
	case KindCountSketch:
		return newCountSketch(width, depth), nil
	case KindSliding:
		return newSliding(width, depth), nil
	case KindExponential:
		return newECM(width, depth, windowSize), nil
	default:
		return nil, errors.Wrapf(ErrUnknownKind, "%q", string(kind))
	}
}
