package driver

import (
	"time"

	"github.com/dgraph-io/freqsketch/sketch"
)

// Config configures one driver run, spec.md section 4.H / section 6.
//
// Grounded on the teacher's own Config-struct-plus-defaults shape (no
// teacher file defines exactly this; the pattern of a plain struct decoded
// from JSON with zero-value fields backfilled afterward is the ambient
// convention config-heavy repos in the pack use -- see SPEC_FULL.md's
// AMBIENT STACK section).
type Config struct {
	Algorithm sketch.Kind `json:"algorithm"`
	Dataset   string      `json:"dataset_name"`
	Width     int         `json:"width"`
	Depth     int         `json:"depth"`

	// EvalInterval is the number of processed items between snapshots
	// (spec.md section 4.H step 3).
	EvalInterval int64 `json:"eval_interval"`
	// VisInterval is carried through for the excluded dashboard
	// collaborator (spec.md section 1); the driver itself does not act on
	// it.
	VisInterval int64 `json:"vis_interval"`
	// Field names the CSV column the excluded file-tokenizing
	// collaborator would read; the driver carries it through unused,
	// since dataset parsing is out of scope (spec.md section 1).
	Field string `json:"field"`
	// SleepTime is the inter-item delay applied by the synthetic Zipf
	// source (spec.md section 6).
	SleepTime time.Duration `json:"sleep_time"`

	// Timestamp tags the output directory (spec.md section 6); callers
	// leaving it empty get the current local time formatted
	// YYYY-MM-DD_HH-MM-SS.
	Timestamp string `json:"-"`

	// MaxItems stops the run after this many stream items even against an
	// infinite Source; 0 means unbounded. Supplemented feature -- see
	// SPEC_FULL.md.
	MaxItems int64 `json:"-"`
}

// DefaultConfig returns the spec.md section 6 defaults.
func DefaultConfig() Config {
	return Config{
		Width:        1000,
		Depth:        5,
		EvalInterval: 1000,
		VisInterval:  1000,
	}
}

// ApplyDefaults backfills zero-value fields from DefaultConfig, the way a
// JSON-decoded config struct is expected to be used: decode first, then
// fill gaps, rather than require every key in the file.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.Width == 0 {
		c.Width = d.Width
	}
	if c.Depth == 0 {
		c.Depth = d.Depth
	}
	if c.EvalInterval == 0 {
		c.EvalInterval = d.EvalInterval
	}
	if c.VisInterval == 0 {
		c.VisInterval = d.VisInterval
	}
}
