package stream

import (
	"bufio"
	"io"
	"strings"
	"sync"
)

// NewLineReader returns a Source yielding one trimmed, non-empty token per
// line of r. It is the minimal file-backed implementation of spec.md
// section 4.G's "opaque iterator of tokens" -- CSV column selection and
// TXT tokenization proper belong to the excluded dataset-parsing
// collaborator (spec.md section 1); this is the fallback any dataset name
// other than "synthetic" routes to (spec.md section 6).
//
// Grounded on sim/sim.go's NewReader/ParseLirs: a bufio.Reader wrapped in
// a mutex-guarded closure that parses one line at a time, adapted from the
// LIRS/ARC trace grammar to a plain one-token-per-line reader.
func NewLineReader(r io.Reader) Source {
	var mu sync.Mutex
	br := bufio.NewReader(r)
	return SourceFunc(func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		for {
			line, err := br.ReadString('\n')
			token := strings.TrimSpace(line)
			if token != "" {
				return token, nil
			}
			if err != nil {
				if err == io.EOF {
					return "", ErrExhausted
				}
				return "", err
			}
		}
	})
}
