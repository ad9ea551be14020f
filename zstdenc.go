// Package zstdenc implements the encoding half of the Zstandard frame
// format: it wraps arbitrary input in a self-describing compressed frame
// that any conforming Zstandard decoder can reconstruct.
//
// The package targets correctness and bounded worst-case expansion rather
// than ratio: blocks that do not compress are stored raw, so output never
// grows past the input plus per-block header overhead.
package zstdenc

import "log"

// enable debug printing
const debug = false

// enable encoding debug printing
const debugEncoder = debug

const (
	// maxBlockSize is the largest payload allowed in one block: the
	// format's 128 KiB ceiling minus a reserve for header overhead.
	maxBlockSize = 128*1024 - 20

	// windowSize is the window-size hint written to every frame header.
	windowSize = 256 * 1024
)

func println(a ...interface{}) {
	if debug || debugEncoder {
		log.Println(a...)
	}
}

func printf(format string, a ...interface{}) {
	if debug || debugEncoder {
		log.Printf(format, a...)
	}
}
