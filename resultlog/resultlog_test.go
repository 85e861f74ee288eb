package resultlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dgraph-io/freqsketch/eval"
)

// TestAppendCorrectness is property 9 from spec.md section 8: after n
// evaluations the file parses as an array of exactly n records in
// chronological order with strictly increasing processed_items.
func TestAppendCorrectness(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.json")
	w, err := NewWriter(path)
	require.NoError(t, err)

	for i := int64(1); i <= 5; i++ {
		require.NoError(t, w.Append(&eval.Record{ProcessedItems: i * 100}))
	}

	records, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, records, 5)

	prev := int64(0)
	for _, r := range records {
		require.Greater(t, r.ProcessedItems, prev)
		prev = r.ProcessedItems
	}
}

func TestReadAllOnMissingFile(t *testing.T) {
	records, err := ReadAll(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	require.Len(t, records, 0)
}

func TestTailReturnsLastN(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.json")
	w, err := NewWriter(path)
	require.NoError(t, err)

	for i := int64(1); i <= 10; i++ {
		require.NoError(t, w.Append(&eval.Record{ProcessedItems: i}))
	}

	tail, err := Tail(path, 3)
	require.NoError(t, err)
	require.Len(t, tail, 3)
	require.Equal(t, int64(8), tail[0].ProcessedItems)
	require.Equal(t, int64(10), tail[2].ProcessedItems)
}

func TestCorruptLogIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := ReadAll(path)
	require.Error(t, err)
}
