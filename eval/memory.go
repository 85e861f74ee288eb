package eval

import "github.com/dustin/go-humanize"

// FormatMemory renders a byte count for human-readable log lines, grounded
// on contrib/memtest/main.go's humanize.IBytes-driven status printf.
func FormatMemory(bytesUsed int64) string {
	if bytesUsed < 0 {
		bytesUsed = 0
	}
	return humanize.IBytes(uint64(bytesUsed))
}
