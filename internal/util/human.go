package util

import "github.com/dustin/go-humanize"

// Human formats a byte count with binary units, e.g. "3.0 MiB".
func Human(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
