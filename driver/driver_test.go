package driver

import (
	"path/filepath"
	"testing"

	"github.com/dgraph-io/freqsketch/resultlog"
	"github.com/dgraph-io/freqsketch/sketch"
	"github.com/dgraph-io/freqsketch/stream"
)

func fixedSource(items []string) stream.Source {
	i := 0
	return stream.SourceFunc(func() (string, error) {
		if i >= len(items) {
			return "", stream.ErrExhausted
		}
		item := items[i]
		i++
		return item, nil
	})
}

// TestRunScenarioS1 matches spec.md section 8 scenario S1.
func TestRunScenarioS1(t *testing.T) {
	items := make([]string, 0, 60)
	for i := 0; i < 10; i++ {
		items = append(items, "apple")
	}
	for i := 0; i < 20; i++ {
		items = append(items, "banana")
	}
	for i := 0; i < 30; i++ {
		items = append(items, "cherry")
	}

	cfg := Config{
		Algorithm:    sketch.KindClassic,
		Width:        1000,
		Depth:        5,
		EvalInterval: 60,
	}
	path := filepath.Join(t.TempDir(), "results.json")
	stats, err := Run(cfg, fixedSource(items), path)
	if err != nil {
		t.Fatal(err)
	}
	if stats.ProcessedItems != 60 {
		t.Fatalf("processed items = %d, want 60", stats.ProcessedItems)
	}

	records, err := resultlog.ReadAll(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) == 0 {
		t.Fatal("expected at least one record")
	}
	last := records[len(records)-1]
	if last.ProcessedItems != 60 {
		t.Fatalf("last record processed_items = %d, want 60", last.ProcessedItems)
	}
}

func TestRunEmitsFinalRecordOffCadence(t *testing.T) {
	items := []string{"a", "b", "c"}
	cfg := Config{
		Algorithm:    sketch.KindClassic,
		Width:        100,
		Depth:        3,
		EvalInterval: 1000, // never hit mid-stream
	}
	path := filepath.Join(t.TempDir(), "results.json")
	stats, err := Run(cfg, fixedSource(items), path)
	if err != nil {
		t.Fatal(err)
	}
	if stats.RecordsWritten != 1 {
		t.Fatalf("records written = %d, want exactly 1 (the final record)", stats.RecordsWritten)
	}
}

func TestRunRespectsMaxItems(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	cfg := Config{
		Algorithm:    sketch.KindClassic,
		Width:        50,
		Depth:        2,
		EvalInterval: 1000,
		MaxItems:     3,
	}
	path := filepath.Join(t.TempDir(), "results.json")
	stats, err := Run(cfg, fixedSource(items), path)
	if err != nil {
		t.Fatal(err)
	}
	if stats.ProcessedItems != 3 {
		t.Fatalf("processed items = %d, want 3", stats.ProcessedItems)
	}
}

// TestRunUsesDecayingTruthForSlidingAlgorithm runs the sliding variant end
// to end and checks that a record is written; the record does not expose
// which ground-truth counter Run chose, so that choice is not asserted.
func TestRunUsesDecayingTruthForSlidingAlgorithm(t *testing.T) {
	items := make([]string, 0, 30)
	for i := 1; i <= 30; i++ {
		items = append(items, itoa(i))
	}
	cfg := Config{
		Algorithm:    sketch.KindSliding,
		Width:        10,
		Depth:        2,
		EvalInterval: 30,
	}
	path := filepath.Join(t.TempDir(), "results.json")
	_, err := Run(cfg, fixedSource(items), path)
	if err != nil {
		t.Fatal(err)
	}
	records, err := resultlog.ReadAll(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) == 0 {
		t.Fatal("expected at least one record")
	}
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	return string(buf[pos:])
}
