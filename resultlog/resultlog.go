// Package resultlog implements the driver's append-only results log
// (spec.md section 6): a JSON array of evaluation records, rewritten
// atomically on every append.
package resultlog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/freqsketch/eval"
	"github.com/pkg/errors"
)

// ErrCorruptLog is wrapped and returned when an existing log file cannot be
// parsed as a JSON array of records -- spec.md section 7's Transient
// category; callers may retry with back-off rather than treat this as
// fatal.
var ErrCorruptLog = errors.New("resultlog: existing file is not a valid record array")

// Writer owns a single results.json file. Per spec.md section 5, it is
// single-writer: callers must not share a Writer across goroutines without
// external synchronization beyond what Append itself provides.
//
// Grounded on z/file.go's Wrapf-per-step error handling style; the
// temp-file-then-rename body itself has no teacher analog (ristretto
// never persists JSON) and follows spec.md section 5's explicit guidance:
// "a port that wants atomic append-on-crash should write line-delimited
// records" -- here we keep the JSON-array schema spec.md section 6
// requires, but make each rewrite atomic via write-temp-then-rename so a
// killed driver leaves the previous array intact rather than a half
// written one.
type Writer struct {
	mu   sync.Mutex
	path string
}

// NewWriter returns a Writer for path, creating parent directories as
// needed.
func NewWriter(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrapf(err, "resultlog: creating directory for %s", path)
	}
	return &Writer{path: path}, nil
}

// Append reads the current array (if any), adds record, and rewrites the
// file atomically: write to a sibling .tmp file, then os.Rename over the
// original. Rename is atomic at the filesystem level, so a crash mid-write
// leaves the previous, fully-written array readable (spec.md section 5).
func (w *Writer) Append(record *eval.Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	records, err := readAll(w.path)
	if err != nil {
		return err
	}
	records = append(records, record)

	tmp := w.path + ".tmp"
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errors.Wrap(err, "resultlog: marshaling records")
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "resultlog: writing temp file %s", tmp)
	}
	if err := os.Rename(tmp, w.path); err != nil {
		return errors.Wrapf(err, "resultlog: renaming %s to %s", tmp, w.path)
	}
	return nil
}

// readAll returns the existing records in path, or an empty slice if the
// file does not yet exist.
func readAll(path string) ([]*eval.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "resultlog: reading %s", path)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var records []*eval.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrapf(ErrCorruptLog, "%s: %v", path, err)
	}
	return records, nil
}

// ReadAll parses path's full record array. Readers that race a concurrent
// Writer (spec.md section 5's shared-resource policy) should retry on
// ErrCorruptLog with a small delay rather than treat it as fatal.
func ReadAll(path string) ([]*eval.Record, error) {
	return readAll(path)
}

// Tail returns the last n records in path (or fewer, if the log is
// shorter), without re-running the stream -- the operational surface
// SPEC_FULL.md's supplemented-features section adds on top of the
// distilled spec's CLI section.
func Tail(path string, n int) ([]*eval.Record, error) {
	records, err := readAll(path)
	if err != nil {
		return nil, err
	}
	if n <= 0 || n >= len(records) {
		return records, nil
	}
	return records[len(records)-n:], nil
}
