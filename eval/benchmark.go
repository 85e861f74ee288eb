package eval

import (
	"math/rand"
	"time"

	"github.com/dgraph-io/freqsketch/sketch"
)

// QueryTimeSampleThreshold bounds the cost of the query-time benchmark
// itself on large working sets, per spec.md section 4.E.
const QueryTimeSampleThreshold = 100_000

// BenchmarkQueryTime measures the average wall-clock cost of Query over a
// sample of truthSnapshot's keys, per spec.md section 4.E. When the
// truth snapshot has more than QueryTimeSampleThreshold keys, a uniform
// sample of that size is drawn without replacement; otherwise every key is
// used.
//
// Grounded on the teacher's own benchmark idiom (cache_bench_test.go wraps
// hash calls in time.Now()/time.Since loops), lifted out of *_test.go into
// a library function the driver calls at run time.
func BenchmarkQueryTime(sketchSnapshot sketch.Sketch, truthSnapshot map[string]int64) time.Duration {
	keys := make([]string, 0, len(truthSnapshot))
	for k := range truthSnapshot {
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return 0
	}
	if len(keys) > QueryTimeSampleThreshold {
		keys = sampleWithoutReplacement(keys, QueryTimeSampleThreshold)
	}

	start := time.Now()
	for _, k := range keys {
		_ = sketchSnapshot.Query(k)
	}
	elapsed := time.Since(start)
	return elapsed / time.Duration(len(keys))
}

// sampleWithoutReplacement draws n keys from keys using a partial
// Fisher-Yates shuffle; it does not mutate keys.
func sampleWithoutReplacement(keys []string, n int) []string {
	cp := append([]string(nil), keys...)
	for i := 0; i < n; i++ {
		j := i + rand.Intn(len(cp)-i)
		cp[i], cp[j] = cp[j], cp[i]
	}
	return cp[:n]
}
