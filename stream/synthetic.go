package stream

import (
	"math/rand"
	"strconv"
	"sync"
	"time"
)

// DefaultZipfS is the default Zipf skew parameter, spec.md section 6.
const DefaultZipfS = 1.3

// DefaultZipfSize is the default population size for the synthetic
// dataset, spec.md section 6.
const DefaultZipfSize = 500_000

// NewZipf returns a Source drawing from a Zipf distribution over
// [0, size), stringified, with skew parameter s. size must be >= 1.
//
// Grounded directly on sim/sim.go's NewZipfian: a mutex-guarded closure
// wrapping math/rand's Zipf generator, seeded from the wall clock.
// Generalized to return string items (via strconv.FormatUint) rather than
// raw uint64s, and to apply an optional per-item delay matching spec.md
// section 6's "inter-item delay sleep_time".
func NewZipf(s float64, size uint64, sleep time.Duration) Source {
	if size == 0 {
		size = 1
	}
	var mu sync.Mutex
	z := rand.NewZipf(rand.New(rand.NewSource(time.Now().UnixNano())), s, 1, size-1)
	count := uint64(0)
	return SourceFunc(func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if count >= size {
			return "", ErrExhausted
		}
		count++
		if sleep > 0 {
			time.Sleep(sleep)
		}
		return strconv.FormatUint(z.Uint64(), 10), nil
	})
}
