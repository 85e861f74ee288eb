package sketch

import (
	"sort"

	"github.com/dgraph-io/freqsketch/hashfam"
)

// CountSketch implements the signed AGMS count-sketch (spec.md section
// 4.B.4): each row's cell is nudged by +/-count according to a per-item,
// per-row sign, and Query returns the median of sign-corrected cells --
// an unbiased estimator that may be negative. The sketch itself never
// clamps; callers needing non-negative estimates clamp on their own.
//
// No teacher analog: ristretto's cmSketch is unsigned-only. Built directly
// from spec.md on top of hashfam's independent sign stream.
type CountSketch struct {
	width    int
	depth    int
	rows     [][]int64
	digester *hashfam.Digester
	total    int64
}

func newCountSketch(width, depth int) *CountSketch {
	rows := make([][]int64, depth)
	for i := range rows {
		rows[i] = make([]int64, width)
	}
	return &CountSketch{
		width:    width,
		depth:    depth,
		rows:     rows,
		digester: hashfam.New(uint64(width)),
	}
}

// Add accepts signed counts: count may be negative, and the magnitude
// |count| is what accrues to TotalCount, per spec.md section 3 ("Count
// Sketch additionally accepts signed updates... accumulates |count|").
func (c *CountSketch) Add(item string, count int64) error {
	idx := c.digester.Indices(item, c.depth)
	signs := c.digester.Signs(item, c.depth)
	for row, col := range idx {
		c.rows[row][col] += signs[row] * count
	}
	if count < 0 {
		c.total += -count
	} else {
		c.total += count
	}
	return nil
}

func (c *CountSketch) Query(item string) int64 {
	idx := c.digester.Indices(item, c.depth)
	signs := c.digester.Signs(item, c.depth)
	estimates := make([]int64, c.depth)
	for row, col := range idx {
		estimates[row] = signs[row] * c.rows[row][col]
	}
	sort.Slice(estimates, func(i, j int) bool { return estimates[i] < estimates[j] })
	n := len(estimates)
	if n%2 == 1 {
		return estimates[n/2]
	}
	a, b := estimates[n/2-1], estimates[n/2]
	// integer median of the middle pair, rounding toward zero the way
	// spec.md's "coerced to integer" leaves unspecified but which keeps
	// the estimator closest to unbiased for small samples.
	sum := a + b
	if sum >= 0 {
		return sum / 2
	}
	return -((-sum) / 2)
}

func (c *CountSketch) Reset() {
	for i := range c.rows {
		row := c.rows[i]
		for j := range row {
			row[j] = 0
		}
	}
	c.total = 0
}

func (c *CountSketch) LoadFactor() float64 {
	best := 0
	for _, row := range c.rows {
		nonZero := 0
		for _, v := range row {
			if v != 0 {
				nonZero++
			}
		}
		if nonZero > best {
			best = nonZero
		}
	}
	return float64(best) / float64(c.width)
}

func (c *CountSketch) TotalCount() int64  { return c.total }
func (c *CountSketch) MemoryBytes() int64 { return int64(c.width) * int64(c.depth) * 8 }
func (c *CountSketch) Width() int         { return c.width }
func (c *CountSketch) Depth() int         { return c.depth }

func (c *CountSketch) DeepCopy() Sketch {
	rows := make([][]int64, c.depth)
	for i := range rows {
		rows[i] = append([]int64(nil), c.rows[i]...)
	}
	return &CountSketch{
		width:    c.width,
		depth:    c.depth,
		rows:     rows,
		digester: c.digester,
		total:    c.total,
	}
}
