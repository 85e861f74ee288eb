package stream

import (
	"strings"
	"testing"
)

func TestZipfIsSkewed(t *testing.T) {
	s := NewZipf(1.5, 1000, 0)
	counts := make(map[string]int)
	for i := 0; i < 1000; i++ {
		item, err := s.Next()
		if err != nil {
			t.Fatal(err)
		}
		counts[item]++
	}
	if len(counts) == 0 || len(counts) == 1000 {
		t.Fatalf("distribution not skewed: %d distinct out of 1000 draws", len(counts))
	}
}

func TestZipfExhausts(t *testing.T) {
	s := NewZipf(1.3, 10, 0)
	for i := 0; i < 10; i++ {
		if _, err := s.Next(); err != nil {
			t.Fatalf("unexpected error before exhaustion: %v", err)
		}
	}
	if _, err := s.Next(); err != ErrExhausted {
		t.Fatalf("got %v, want ErrExhausted", err)
	}
}

func TestLineReaderYieldsTokens(t *testing.T) {
	r := strings.NewReader("apple\nbanana\n\ncherry\n")
	s := NewLineReader(r)
	want := []string{"apple", "banana", "cherry"}
	for _, w := range want {
		got, err := s.Next()
		if err != nil {
			t.Fatal(err)
		}
		if got != w {
			t.Fatalf("got %q, want %q", got, w)
		}
	}
	if _, err := s.Next(); err != ErrExhausted {
		t.Fatalf("got %v, want ErrExhausted", err)
	}
}

func TestLineReaderHandlesNoTrailingNewline(t *testing.T) {
	r := strings.NewReader("only-line")
	s := NewLineReader(r)
	got, err := s.Next()
	if err != nil {
		t.Fatal(err)
	}
	if got != "only-line" {
		t.Fatalf("got %q, want %q", got, "only-line")
	}
	if _, err := s.Next(); err != ErrExhausted {
		t.Fatalf("got %v, want ErrExhausted", err)
	}
}
