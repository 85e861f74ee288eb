package sketch

import "sort"

// CountMeanMin implements the count-mean-min sketch (spec.md section
// 4.B.3): Add is identical to classic CMS, but Query subtracts each row's
// expected noise contribution before taking the median, then clamps to
// [0, classicMin] so the debias step never produces a negative estimate
// or an over-estimate beyond what the classic sketch reports. Unlike the
// classic sketch, the result can fall below the true count.
//
// Built on the same row/hash table as Classic; the teacher carries no
// analog (ristretto never needed a debiased CMS variant).
type CountMeanMin struct {
	t *table
}

func newCountMeanMin(width, depth int) *CountMeanMin {
	return &CountMeanMin{t: newTable(width, depth)}
}

func (c *CountMeanMin) Add(item string, count int64) error {
	if count < 0 {
		return ErrNegativeCount
	}
	idx := c.t.indices(item)
	for row, col := range idx {
		c.t.rows[row][col] += count
	}
	c.t.total += count
	return nil
}

func (c *CountMeanMin) Query(item string) int64 {
	idx := c.t.indices(item)
	depth := len(idx)
	width := c.t.width

	cellMin := c.t.rows[0][idx[0]]
	estimates := make([]float64, depth)
	for row, col := range idx {
		cell := c.t.rows[row][col]
		if cell < cellMin {
			cellMin = cell
		}
		var noise float64
		if width > 1 {
			rowSum := int64(0)
			for _, v := range c.t.rows[row] {
				rowSum += v
			}
			noise = float64(rowSum-cell) / float64(width-1)
		}
		estimates[row] = float64(cell) - noise
	}
	sort.Float64s(estimates)
	median := medianOf(estimates)

	result := median
	if float64(cellMin) < result {
		result = float64(cellMin)
	}
	if result < 0 {
		result = 0
	}
	return int64(result + 0.5)
}

func medianOf(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func (c *CountMeanMin) Reset()              { c.t.reset() }
func (c *CountMeanMin) LoadFactor() float64 { return c.t.loadFactor() }
func (c *CountMeanMin) TotalCount() int64   { return c.t.total }
func (c *CountMeanMin) MemoryBytes() int64  { return c.t.memoryBytes() }
func (c *CountMeanMin) Width() int          { return c.t.width }
func (c *CountMeanMin) Depth() int          { return c.t.depth }

func (c *CountMeanMin) DeepCopy() Sketch {
	return &CountMeanMin{t: c.t.clone()}
}
