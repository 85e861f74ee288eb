package sketch

import "github.com/dgraph-io/freqsketch/hashfam"

// slidingCell holds the (active, backup) pair spec.md section 4.B.5
// requires per cell.
type slidingCell struct {
	active int64
	backup int64
}

// Sliding implements the pair-of-counters sliding-window count-min sketch
// (spec.md section 4.B.5). A single flat scan pointer sweeps every cell
// exactly once per window_size = width*depth insertions; on each Add, the
// cell currently under the pointer is aged (active becomes backup, active
// resets to zero) before the current item's cells are incremented. Query
// sums active+backup across the hashed rows and takes the minimum.
//
// No teacher analog: ristretto's cmSketch ages by halving its counters on
// an explicit Reset call, not by a per-insert swept window. Built directly
// from spec.md's pseudocode.
type Sliding struct {
	width      int
	depth      int
	totalSlots int64
	cells      []slidingCell // flat, row-major: cells[row*width+col]
	pointer    int64
	digester   *hashfam.Digester
	total      int64
}

func newSliding(width, depth int) *Sliding {
	totalSlots := int64(width) * int64(depth)
	return &Sliding{
		width:      width,
		depth:      depth,
		totalSlots: totalSlots,
		cells:      make([]slidingCell, totalSlots),
		digester:   hashfam.New(uint64(width)),
	}
}

// Add ages exactly one cell per unit of count and then increments every
// row's hashed cell for item, per spec.md's mN=1 default.
func (s *Sliding) Add(item string, count int64) error {
	if count < 0 {
		return ErrNegativeCount
	}
	idx := s.digester.Indices(item, s.depth)
	for i := int64(0); i < count; i++ {
		s.ageOneSlot()
		for row, col := range idx {
			s.cellAt(row, int(col)).active++
		}
		s.total++
	}
	return nil
}

func (s *Sliding) ageOneSlot() {
	row := int(s.pointer / int64(s.width))
	col := int(s.pointer % int64(s.width))
	c := s.cellAt(row, col)
	c.backup = c.active
	c.active = 0
	s.pointer = (s.pointer + 1) % s.totalSlots
}

func (s *Sliding) cellAt(row, col int) *slidingCell {
	return &s.cells[row*s.width+col]
}

func (s *Sliding) Query(item string) int64 {
	idx := s.digester.Indices(item, s.depth)
	min := int64(-1)
	for row, col := range idx {
		c := s.cellAt(row, int(col))
		v := c.active + c.backup
		if min == -1 || v < min {
			min = v
		}
	}
	if min == -1 {
		return 0
	}
	return min
}

func (s *Sliding) Reset() {
	for i := range s.cells {
		s.cells[i] = slidingCell{}
	}
	s.pointer = 0
	s.total = 0
}

func (s *Sliding) LoadFactor() float64 {
	best := 0
	for row := 0; row < s.depth; row++ {
		nonZero := 0
		for col := 0; col < s.width; col++ {
			c := s.cellAt(row, col)
			if c.active != 0 || c.backup != 0 {
				nonZero++
			}
		}
		if nonZero > best {
			best = nonZero
		}
	}
	return float64(best) / float64(s.width)
}

func (s *Sliding) TotalCount() int64 { return s.total }

// MemoryBytes counts two int64 fields per cell.
func (s *Sliding) MemoryBytes() int64 { return s.totalSlots * 16 }

func (s *Sliding) Width() int { return s.width }
func (s *Sliding) Depth() int { return s.depth }

func (s *Sliding) DeepCopy() Sketch {
	cp := &Sliding{
		width:      s.width,
		depth:      s.depth,
		totalSlots: s.totalSlots,
		cells:      append([]slidingCell(nil), s.cells...),
		pointer:    s.pointer,
		digester:   s.digester,
		total:      s.total,
	}
	return cp
}
