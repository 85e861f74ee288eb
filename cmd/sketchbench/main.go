// Command sketchbench drives a frequency sketch against a stream and
// writes periodic accuracy/performance/memory measurements to a results
// log (spec.md section 6). Flags and output layout follow spec.md
// section 6's "Driver CLI surface"; the flat, subcommand-free flag style
// is grounded on the teacher's own contrib/memtest main, not a CLI
// framework (no cobra/viper is wired anywhere in dgraph-io/ristretto's
// own command surface -- see SPEC_FULL.md's AMBIENT STACK section).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/dgraph-io/freqsketch/driver"
	"github.com/dgraph-io/freqsketch/eval"
	"github.com/dgraph-io/freqsketch/resultlog"
	"github.com/dgraph-io/freqsketch/sketch"
	"github.com/dgraph-io/freqsketch/stream"
)

func main() {
	var (
		algorithm  = flag.String("algorithm", "", "sketch algorithm: CountMinSketch | ConservativeCountMinSketch | CountMeanMinSketch | CountSketch | SlidingCountMinSketch")
		dataset    = flag.String("dataset", "", "dataset name; \"synthetic\" routes to the Zipf generator, anything else routes to a file-backed tokenizer of that path")
		width      = flag.Int("width", 0, "override config width (0 = use config/default)")
		depth      = flag.Int("depth", 0, "override config depth (0 = use config/default)")
		timestamp  = flag.String("timestamp", "", "output directory tag; default is the current local time")
		configPath = flag.String("config", "", "path to a JSON config file (spec.md section 6 schema)")
		root       = flag.String("root", "results", "root output directory")
		summarize  = flag.Int("summarize", 0, "if > 0, print the last N result records from an existing results.json instead of running the stream")
		maxItems   = flag.Int64("max-items", 0, "stop after this many stream items (0 = unbounded)")
	)
	flag.Parse()

	if *summarize > 0 {
		if err := runSummarize(*root, *dataset, *algorithm, *width, *depth, *timestamp, *summarize); err != nil {
			log.Fatalf("sketchbench: %v", err)
		}
		return
	}

	if *algorithm == "" {
		log.Fatal("sketchbench: --algorithm is required")
	}
	if *dataset == "" {
		log.Fatal("sketchbench: --dataset is required")
	}

	cfg := driver.DefaultConfig()
	if *configPath != "" {
		if err := loadConfigFile(*configPath, &cfg); err != nil {
			log.Fatalf("sketchbench: %v", err)
		}
	}
	cfg.Algorithm = sketch.Kind(*algorithm)
	cfg.Dataset = *dataset
	if *width > 0 {
		cfg.Width = *width
	}
	if *depth > 0 {
		cfg.Depth = *depth
	}
	if *maxItems > 0 {
		cfg.MaxItems = *maxItems
	}
	cfg.Timestamp = *timestamp
	if cfg.Timestamp == "" {
		cfg.Timestamp = driver.DefaultTimestamp(time.Now())
	}
	cfg.ApplyDefaults()

	src, err := buildSource(*dataset, cfg)
	if err != nil {
		log.Fatalf("sketchbench: %v", err)
	}

	resultsPath := outputPath(*root, cfg)
	log.Printf("sketchbench: writing results to %s", resultsPath)

	stats, err := driver.Run(cfg, src, resultsPath)
	if err != nil {
		log.Fatalf("sketchbench: %v", err)
	}
	log.Printf("sketchbench: processed %d items, wrote %d records", stats.ProcessedItems, stats.RecordsWritten)
}

// buildSource routes "synthetic" to the Zipf generator and any other
// dataset name to a file-backed line reader, per spec.md section 6.
func buildSource(dataset string, cfg driver.Config) (stream.Source, error) {
	if dataset == "synthetic" {
		return stream.NewZipf(stream.DefaultZipfS, stream.DefaultZipfSize, cfg.SleepTime), nil
	}
	f, err := os.Open(dataset)
	if err != nil {
		return nil, fmt.Errorf("opening dataset %q: %w", dataset, err)
	}
	return stream.NewLineReader(f), nil
}

func loadConfigFile(path string, cfg *driver.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %q: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %q: %w", path, err)
	}
	return nil
}

// outputPath lays out <root>/<dataset>/<algorithm>/w<W>_d<D>/<timestamp>/results.json
// per spec.md section 6.
func outputPath(root string, cfg driver.Config) string {
	dir := filepath.Join(
		root,
		cfg.Dataset,
		string(cfg.Algorithm),
		fmt.Sprintf("w%d_d%d", cfg.Width, cfg.Depth),
		cfg.Timestamp,
	)
	return filepath.Join(dir, "results.json")
}

func runSummarize(root, dataset, algorithm string, width, depth int, timestamp string, n int) error {
	path := filepath.Join(root, dataset, algorithm, fmt.Sprintf("w%d_d%d", width, depth), timestamp, "results.json")
	records, err := resultlog.Tail(path, n)
	if err != nil {
		return fmt.Errorf("summarizing %q: %w", path, err)
	}
	for _, r := range records {
		printSummaryLine(r)
	}
	return nil
}

func printSummaryLine(r *eval.Record) {
	fmt.Printf(
		"processed=%d avg_error=%.3f exact%%=%.1f over%%=%.1f under%%=%.1f load_factor=%.3f memory=%s\n",
		r.ProcessedItems, r.AvgError, r.ExactMatchPercentage,
		r.OverestimationPercentage, r.UnderestimationPercentage,
		r.LoadFactor, eval.FormatMemory(r.MemoryUsageBytes),
	)
}
