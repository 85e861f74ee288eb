// Package driver implements the streaming simulation harness (spec.md
// section 4.H): it pulls items from a stream.Source, mirrors each into a
// sketch and a ground-truth counter, and periodically snapshots both for
// the evaluator, appending the results to a resultlog.Writer.
package driver

import (
	"time"

	"github.com/dgraph-io/freqsketch/eval"
	"github.com/dgraph-io/freqsketch/resultlog"
	"github.com/dgraph-io/freqsketch/sketch"
	"github.com/dgraph-io/freqsketch/stream"
	"github.com/dgraph-io/freqsketch/truth"
	"github.com/pkg/errors"
)

// groundTruth is the narrow interface both truth.Truth and
// truth.DecayingTruth satisfy; the driver only ever needs Add and GetAll.
type groundTruth interface {
	Add(item string)
	GetAll() map[string]int64
}

// Stats summarizes a completed run, returned by Run for callers (tests,
// the CLI's closing log line) that want a final tally without re-reading
// the results log.
type Stats struct {
	ProcessedItems int64
	RecordsWritten int64
}

// Run drives one simulation: source is pulled until exhaustion (or
// cfg.MaxItems, if set), mirroring every item into a fresh sketch of
// cfg.Algorithm and an appropriate ground-truth counter, and appending an
// eval.Record to writer every cfg.EvalInterval processed items plus one
// final record on exhaustion (spec.md section 4.H).
//
// Per spec.md section 7's propagation policy: a sketch-level invariant
// violation (e.g. a negative count reaching a variant that forbids it) or
// a stream I/O error other than stream.ErrExhausted is fatal and returned
// immediately; an empty-truth evaluator condition produces no record but
// does not stop the run.
//
// Grounded on cache.go's processItems single-consumer loop
// (for { select { case i := <-c.setBuf: ... } }), adapted from a
// channel-fed consumer to a direct pull loop since spec.md section 5
// describes one producer and one single-threaded consumer per driver, with
// no fan-in buffer to arbitrate.
func Run(cfg Config, source stream.Source, resultsPath string) (Stats, error) {
	cfg.ApplyDefaults()

	windowSize := int64(cfg.Width) * int64(cfg.Depth)
	sk, err := sketch.New(cfg.Algorithm, cfg.Width, cfg.Depth, windowSize)
	if err != nil {
		return Stats{}, errors.Wrap(err, "driver: constructing sketch")
	}

	var gt groundTruth
	if cfg.Algorithm == sketch.KindSliding {
		gt = truth.NewDecayingTruth(int(windowSize))
	} else {
		gt = truth.NewTruth()
	}

	writer, err := resultlog.NewWriter(resultsPath)
	if err != nil {
		return Stats{}, errors.Wrap(err, "driver: opening results log")
	}

	var stats Stats
	for {
		item, err := source.Next()
		if err != nil {
			if errors.Is(err, stream.ErrExhausted) {
				break
			}
			return stats, errors.Wrap(err, "driver: stream source failed")
		}

		if err := sk.Add(item, 1); err != nil {
			return stats, errors.Wrap(err, "driver: sketch invariant violation")
		}
		gt.Add(item)
		stats.ProcessedItems++

		if sk.TotalCount()%cfg.EvalInterval == 0 {
			wrote, err := snapshotAndAppend(sk, gt, writer, stats.ProcessedItems)
			if err != nil {
				return stats, err
			}
			if wrote {
				stats.RecordsWritten++
			}
		}

		if cfg.MaxItems > 0 && stats.ProcessedItems >= cfg.MaxItems {
			break
		}
	}

	wrote, err := snapshotAndAppend(sk, gt, writer, stats.ProcessedItems)
	if err != nil {
		return stats, err
	}
	if wrote {
		stats.RecordsWritten++
	}
	return stats, nil
}

// snapshotAndAppend takes a deep copy of sk and a plain copy of gt's
// counts, evaluates them, and appends the result to writer. It reports
// wrote=false (not an error) when the evaluator declines to produce a
// record because the truth snapshot is empty -- spec.md section 7's
// "Evaluator empty-data conditions produce no record but do not terminate
// the driver."
func snapshotAndAppend(sk sketch.Sketch, gt groundTruth, writer *resultlog.Writer, processed int64) (bool, error) {
	snapshot := sk.DeepCopy()
	truthSnapshot := gt.GetAll()

	rec, err := eval.Evaluate(snapshot, truthSnapshot)
	if err != nil {
		if errors.Is(err, eval.ErrEmptyTruth) {
			return false, nil
		}
		return false, errors.Wrap(err, "driver: evaluating snapshot")
	}
	rec.ProcessedItems = processed
	queryTime := eval.BenchmarkQueryTime(snapshot, truthSnapshot)
	rec.AvgQueryTimeNanos = float64(queryTime.Nanoseconds())

	if err := writer.Append(rec); err != nil {
		return false, errors.Wrap(err, "driver: appending result record")
	}
	return true, nil
}

// DefaultTimestamp returns the current local time formatted
// YYYY-MM-DD_HH-MM-SS, spec.md section 6's default --timestamp value.
func DefaultTimestamp(now time.Time) string {
	return now.Format("2006-01-02_15-04-05")
}
