package zstdenc

import (
	"errors"
	"fmt"
)

// LevelMax is the highest numeric compression level accepted.
const LevelMax = 22

// ErrUnsupportedLevel is returned by Compress for levels whose strategy is
// not implemented. The frame is never silently produced with a different
// level.
var ErrUnsupportedLevel = errors.New("zstdenc: compression level not implemented")

// A Level is a numeric Zstandard compression level that has been validated
// to lie in [0, LevelMax]. Construct one with NewLevel; internal code may
// convert already-validated values directly.
type Level uint8

// NewLevel validates n as a compression level. Out-of-range values are an
// error, never clamped.
func NewLevel(n int) (Level, error) {
	if n < 0 || n > LevelMax {
		return 0, fmt.Errorf("zstdenc: level %d outside [0, %d]", n, LevelMax)
	}
	return Level(n), nil
}

// CompressionLevel returns the strategy the level selects. Levels matching a
// named preset are that preset; this is the single normalization step, and
// it is idempotent.
func (l Level) CompressionLevel() CompressionLevel {
	return CompressionLevel(l)
}

// CompressionLevel selects how a FrameCompressor trades speed against
// ratio. The named presets correspond to fixed numeric levels; other values
// in [0, LevelMax] are plain numeric levels.
type CompressionLevel uint8

const (
	// Uncompressed wraps the input in a frame without compressing it.
	Uncompressed CompressionLevel = 0

	// Fastest is roughly equivalent to Zstandard level 1.
	Fastest CompressionLevel = 1

	// Default is roughly equivalent to Zstandard level 3, the level the
	// reference compressor uses when none is given. Not implemented.
	Default CompressionLevel = 3

	// Better is roughly equivalent to Zstandard level 7. Not implemented.
	Better CompressionLevel = 7

	// Best is roughly equivalent to Zstandard level 11. Not implemented.
	Best CompressionLevel = 11
)

func (c CompressionLevel) String() string {
	switch c {
	case Uncompressed:
		return "uncompressed"
	case Fastest:
		return "fastest"
	case Default:
		return "default"
	case Better:
		return "better"
	case Best:
		return "best"
	}
	return fmt.Sprintf("level %d", uint8(c))
}
