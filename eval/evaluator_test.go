package eval

import (
	"testing"

	"github.com/dgraph-io/freqsketch/sketch"
)

// mockSketch lets the evaluator tests drive exact scripted query
// responses, the way spec.md section 8's scenarios S2-S4 specify.
type mockSketch struct {
	responses map[string]int64
}

func (m *mockSketch) Add(item string, count int64) error { return nil }
func (m *mockSketch) Query(item string) int64             { return m.responses[item] }
func (m *mockSketch) Reset()                               {}
func (m *mockSketch) LoadFactor() float64                  { return 0 }
func (m *mockSketch) TotalCount() int64                    { return 0 }
func (m *mockSketch) DeepCopy() sketch.Sketch              { return m }
func (m *mockSketch) MemoryBytes() int64                   { return 0 }
func (m *mockSketch) Width() int                            { return 1 }
func (m *mockSketch) Depth() int                            { return 1 }

func TestEvaluateEmptyTruth(t *testing.T) {
	m := &mockSketch{responses: map[string]int64{}}
	_, err := Evaluate(m, map[string]int64{})
	if err != ErrEmptyTruth {
		t.Fatalf("got %v, want ErrEmptyTruth", err)
	}
}

// TestEvaluatePerfectSketch is property 8 from spec.md section 8 and
// scenario S2.
func TestEvaluatePerfectSketch(t *testing.T) {
	truth := map[string]int64{"apple": 10, "banana": 20, "cherry": 30, "ginger": 40}
	m := &mockSketch{responses: map[string]int64{"apple": 10, "banana": 20, "cherry": 30, "ginger": 40}}

	rec, err := Evaluate(m, truth)
	if err != nil {
		t.Fatal(err)
	}
	if rec.AvgError != 0 {
		t.Fatalf("avg_error = %f, want 0", rec.AvgError)
	}
	if rec.AvgErrorPercentage != 0 {
		t.Fatalf("avg_error_percentage = %f, want 0", rec.AvgErrorPercentage)
	}
	if rec.ExactMatchPercentage != 100 {
		t.Fatalf("exact_match_percentage = %f, want 100", rec.ExactMatchPercentage)
	}
	if len(rec.TopOverestimations) != 0 || len(rec.TopUnderestimations) != 0 {
		t.Fatalf("expected empty over/under lists, got %d/%d", len(rec.TopOverestimations), len(rec.TopUnderestimations))
	}
}

// TestEvaluateScenarioS3 matches spec.md section 8 scenario S3 exactly.
func TestEvaluateScenarioS3(t *testing.T) {
	truth := map[string]int64{"apple": 10, "banana": 20, "cherry": 30, "ginger": 40}
	m := &mockSketch{responses: map[string]int64{"apple": 10, "banana": 22, "cherry": 30, "ginger": 41}}

	rec, err := Evaluate(m, truth)
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(rec.AvgError, 0.75) {
		t.Fatalf("avg_error = %f, want 0.75", rec.AvgError)
	}
	if !approxEqual(rec.AvgErrorPercentage, 3.125) {
		t.Fatalf("avg_error_percentage = %f, want 3.125", rec.AvgErrorPercentage)
	}
	if !approxEqual(rec.MaxErrorPercentage, 10.0) {
		t.Fatalf("max_error_percentage = %f, want 10.0", rec.MaxErrorPercentage)
	}
	if !approxEqual(rec.ExactMatchPercentage, 50) {
		t.Fatalf("exact_match_percentage = %f, want 50", rec.ExactMatchPercentage)
	}
}

// TestEvaluateScenarioS4 matches spec.md section 8 scenario S4 exactly.
func TestEvaluateScenarioS4(t *testing.T) {
	truth := map[string]int64{"apple": 10, "banana": 20, "cherry": 30, "ginger": 40}
	m := &mockSketch{responses: map[string]int64{"apple": 15, "banana": 30, "cherry": 50, "ginger": 60}}

	rec, err := Evaluate(m, truth)
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(rec.AvgError, 13.75) {
		t.Fatalf("avg_error = %f, want 13.75", rec.AvgError)
	}
	if !approxEqual(rec.AvgErrorPercentage, 54.1667) {
		t.Fatalf("avg_error_percentage = %f, want ~54.1667", rec.AvgErrorPercentage)
	}
	if !approxEqual(rec.MaxErrorPercentage, 66.6667) {
		t.Fatalf("max_error_percentage = %f, want ~66.6667", rec.MaxErrorPercentage)
	}
	if rec.ExactMatchPercentage != 0 {
		t.Fatalf("exact_match_percentage = %f, want 0", rec.ExactMatchPercentage)
	}
}

func TestPercentileMapEmptyForNoValues(t *testing.T) {
	m := percentileMap(nil)
	if len(m) != 0 {
		t.Fatalf("expected empty map, got %v", m)
	}
}

func TestPercentileMapHasRequiredKeys(t *testing.T) {
	m := percentileMap([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	for _, key := range []string{"50th", "90th", "95th", "100th"} {
		if _, ok := m[key]; !ok {
			t.Fatalf("missing required percentile key %q", key)
		}
	}
}

func TestTopListsShortWhenFewerThanTwenty(t *testing.T) {
	truth := map[string]int64{"a": 10, "b": 20}
	m := &mockSketch{responses: map[string]int64{"a": 15, "b": 20}}
	rec, err := Evaluate(m, truth)
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.TopOverestimations) != 1 {
		t.Fatalf("expected exactly 1 overestimation, got %d", len(rec.TopOverestimations))
	}
}

func approxEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-3
}
