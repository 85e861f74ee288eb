package sketch

import "github.com/dgraph-io/freqsketch/hashfam"

// table is the dense depth x width counter array shared by classic,
// conservative, and count-mean-min -- the three variants whose cells are
// plain non-negative int64 counters. Grounded
// on sketch.go's cmRow/cmSketch split between per-row storage and the
// sketch that owns depth independent rows of it, generalized from packed
// 4-bit nibbles to full int64 cells (spec.md section 3 requires
// non-negative integer cells, not nibbles -- nibble packing was a
// cache-specific space trick, not part of this domain).
type table struct {
	width    int
	depth    int
	rows     [][]int64
	digester *hashfam.Digester
	total    int64
}

func newTable(width, depth int) *table {
	rows := make([][]int64, depth)
	for i := range rows {
		rows[i] = make([]int64, width)
	}
	return &table{
		width:    width,
		depth:    depth,
		rows:     rows,
		digester: hashfam.New(uint64(width)),
	}
}

func (t *table) indices(item string) []uint64 {
	return t.digester.Indices(item, t.depth)
}

func (t *table) reset() {
	for i := range t.rows {
		row := t.rows[i]
		for j := range row {
			row[j] = 0
		}
	}
	t.total = 0
}

func (t *table) loadFactor() float64 {
	best := 0
	for _, row := range t.rows {
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
	return float64(best) / float64(t.width)
}

func (t *table) memoryBytes() int64 {
	const cellSize = int64(8) // int64 cells
	return int64(t.width) * int64(t.depth) * cellSize
}

func (t *table) clone() *table {
	rows := make([][]int64, t.depth)
	for i := range rows {
		rows[i] = append([]int64(nil), t.rows[i]...)
	}
	return &table{
		width:    t.width,
		depth:    t.depth,
		rows:     rows,
		digester: t.digester,
		total:    t.total,
	}
}
