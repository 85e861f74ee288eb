package sketch

import (
	"github.com/dgraph-io/freqsketch/hashfam"
	"github.com/pkg/errors"
)

// ecmBucketCap is the maximum number of Bucket records retained per cell;
// an insert that would exceed it drops the oldest bucket (spec.md section
// 3: "up to K=100 Bucket records").
const ecmBucketCap = 100

// Bucket is one exponential-histogram run: "number" = 2^exponent inserts
// that arrived in [start, end].
type Bucket struct {
	exponent int
	start    int64
	end      int64
}

func (b Bucket) weight() int64 { return int64(1) << uint(b.exponent) }

// ecmCell holds buckets ordered oldest-first. Re-derived from the standard
// exponential-histogram merge invariant rather than transliterated from
// the source, per spec.md section 9's explicit warning that the source's
// bucket-shift logic is undertested.
type ecmCell struct {
	buckets []Bucket
}

func (c *ecmCell) expire(now, windowSize int64) {
	cutoff := now - windowSize
	i := 0
	for i < len(c.buckets) && c.buckets[i].end <= cutoff {
		i++
	}
	if i > 0 {
		c.buckets = c.buckets[i:]
	}
}

func (c *ecmCell) insert(now int64) {
	c.buckets = append(c.buckets, Bucket{exponent: 0, start: now, end: now})
	c.mergeEqualExponents()
	if len(c.buckets) > ecmBucketCap {
		// drop the oldest bucket rather than grow unbounded; this loses
		// precision on the very oldest span, matching the exponential
		// histogram's bounded-error trade-off.
		c.buckets = c.buckets[1:]
	}
}

// mergeEqualExponents repeatedly collapses the two oldest adjacent buckets
// that share an exponent, doubling the exponent of the merged bucket, until
// no adjacent pair shares one. This is the classic exponential-histogram
// invariant: at most a bounded number of buckets per exponent level.
func (c *ecmCell) mergeEqualExponents() {
	for {
		pair := -1
		for i := 0; i+1 < len(c.buckets); i++ {
			if c.buckets[i].exponent == c.buckets[i+1].exponent {
				pair = i
				break
			}
		}
		if pair == -1 {
			return
		}
		merged := Bucket{
			exponent: c.buckets[pair].exponent + 1,
			start:    c.buckets[pair].start,
			end:      c.buckets[pair+1].end,
		}
		next := append([]Bucket(nil), c.buckets[:pair]...)
		next = append(next, merged)
		next = append(next, c.buckets[pair+2:]...)
		c.buckets = next
	}
}

// estimate sums 2^e over every bucket but the oldest, plus half the
// oldest's weight, per spec.md section 3's ECM cell-estimate rule.
func (c *ecmCell) estimate() int64 {
	if len(c.buckets) == 0 {
		return 0
	}
	var total int64
	for i := 1; i < len(c.buckets); i++ {
		total += c.buckets[i].weight()
	}
	total += c.buckets[0].weight() / 2
	return total
}

func (c *ecmCell) nonEmpty() bool { return len(c.buckets) > 0 }

// ECM implements the optional exponential-bucket count-min sketch (spec.md
// section 4.B.6), retained for parity with the source. Add only accepts
// count == 1.
type ECM struct {
	width      int
	depth      int
	windowSize int64
	cells      [][]ecmCell // [row][col]
	digester   *hashfam.Digester
	now        int64
	total      int64
}

func newECM(width, depth int, windowSize int64) *ECM {
	if windowSize <= 0 {
		windowSize = int64(width) * int64(depth)
	}
	cells := make([][]ecmCell, depth)
	for i := range cells {
		cells[i] = make([]ecmCell, width)
	}
	return &ECM{
		width:      width,
		depth:      depth,
		windowSize: windowSize,
		cells:      cells,
		digester:   hashfam.New(uint64(width)),
	}
}

func (e *ECM) Add(item string, count int64) error {
	if count != 1 {
		return errors.Wrapf(ErrUnsupportedCount, "ECM.Add called with count=%d", count)
	}
	e.now = e.total
	idx := e.digester.Indices(item, e.depth)
	for row, col := range idx {
		cell := &e.cells[row][col]
		cell.expire(e.now, e.windowSize)
		cell.insert(e.now)
	}
	e.total++
	return nil
}

func (e *ECM) Query(item string) int64 {
	idx := e.digester.Indices(item, e.depth)
	min := int64(-1)
	for row, col := range idx {
		cell := &e.cells[row][col]
		cell.expire(e.total, e.windowSize)
		v := cell.estimate()
		if min == -1 || v < min {
			min = v
		}
	}
	if min == -1 {
		return 0
	}
	return min
}

func (e *ECM) Reset() {
	for r := range e.cells {
		for c := range e.cells[r] {
			e.cells[r][c] = ecmCell{}
		}
	}
	e.total = 0
	e.now = 0
}

func (e *ECM) LoadFactor() float64 {
	best := 0
	for row := 0; row < e.depth; row++ {
		nonZero := 0
		for col := 0; col < e.width; col++ {
			if e.cells[row][col].nonEmpty() {
				nonZero++
			}
		}
		if nonZero > best {
			best = nonZero
		}
	}
	return float64(best) / float64(e.width)
}

func (e *ECM) TotalCount() int64 { return e.total }

// MemoryBytes sums realized bucket storage rather than a fixed dense size,
// per spec.md section 4.F's "for ECM, sum realized bucket storage".
func (e *ECM) MemoryBytes() int64 {
	const bucketSize = int64(24) // exponent (int) + start + end (int64s), rounded
	var total int64
	for row := range e.cells {
		for col := range e.cells[row] {
			total += int64(len(e.cells[row][col].buckets)) * bucketSize
		}
	}
	return total
}

func (e *ECM) Width() int { return e.width }
func (e *ECM) Depth() int { return e.depth }

func (e *ECM) DeepCopy() Sketch {
	cells := make([][]ecmCell, e.depth)
	for r := range cells {
		cells[r] = make([]ecmCell, e.width)
		for c := range cells[r] {
			cells[r][c] = ecmCell{buckets: append([]Bucket(nil), e.cells[r][c].buckets...)}
		}
	}
	return &ECM{
		width:      e.width,
		depth:      e.depth,
		windowSize: e.windowSize,
		cells:      cells,
		digester:   e.digester,
		now:        e.now,
		total:      e.total,
	}
}
