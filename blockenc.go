// Copyright 2019+ Klaus Post. All rights reserved.
// License information can be found in the LICENSE file.
// Based on work by Yann Collet, released under BSD License.

package zstdenc

import (
	"errors"
	"math"
	"math/bits"

	"github.com/delta4chat/zstdenc/huff0"
)

type blockType uint8

const (
	blockTypeRaw blockType = iota
	blockTypeRLE
	blockTypeCompressed
	blockTypeReserved
)

type literalsBlockType uint8

const (
	literalsBlockRaw literalsBlockType = iota
	literalsBlockRLE
	literalsBlockCompressed
	literalsBlockTreeless
)

// errIncompressible signals that a block should be re-emitted raw.
var errIncompressible = errors.New("incompressible")

// blockHeader contains the information for a block header.
type blockHeader uint32

// setLast sets the 'last' indicator on a block.
func (h *blockHeader) setLast(b bool) {
	if b {
		*h = *h | 1
	} else {
		const mask = (1 << 24) - 2
		*h = *h & mask
	}
}

// setSize will store the compressed size of a block.
func (h *blockHeader) setSize(v uint32) {
	const mask = 7
	*h = (*h)&mask | blockHeader(v<<3)
}

// setType sets the block type.
func (h *blockHeader) setType(t blockType) {
	const mask = 1 | (((1 << 24) - 1) ^ 7)
	*h = (*h & mask) | blockHeader(t<<1)
}

// appendTo will append the block header to a slice.
func (h blockHeader) appendTo(b []byte) []byte {
	return append(b, uint8(h), uint8(h>>8), uint8(h>>16))
}

// literalsHeader contains literals header information.
type literalsHeader uint64

// setType can be used to set the type of literal block.
func (h *literalsHeader) setType(t literalsBlockType) {
	const mask = math.MaxUint64 - 3
	*h = (*h & mask) | literalsHeader(t)
}

// setSizes will set the size of a compressed literals section and the input length.
func (h *literalsHeader) setSizes(compLen, inLen int, single bool) {
	compBits, inBits := bits.Len32(uint32(compLen)), bits.Len32(uint32(inLen))
	// Only retain 2 bits
	const mask = 3
	lh := uint64(*h & mask)
	switch {
	case compBits <= 10 && inBits <= 10:
		if !single {
			lh |= 1 << 2
		}
		lh |= (uint64(inLen) << 4) | (uint64(compLen) << (10 + 4)) | (3 << 60)
	case compBits <= 14 && inBits <= 14:
		if single {
			panic("single stream used with more than 10 bits length")
		}
		lh |= (2 << 2) | (uint64(inLen) << 4) | (uint64(compLen) << (14 + 4)) | (4 << 60)
	case compBits <= 18 && inBits <= 18:
		if single {
			panic("single stream used with more than 10 bits length")
		}
		lh |= (3 << 2) | (uint64(inLen) << 4) | (uint64(compLen) << (18 + 4)) | (5 << 60)
	default:
		panic("internal error: block too big")
	}
	*h = literalsHeader(lh)
}

// appendTo will append the literals header to a byte slice.
func (h literalsHeader) appendTo(b []byte) []byte {
	size := uint8(h >> 60)
	switch size {
	case 3:
		b = append(b, uint8(h), uint8(h>>8), uint8(h>>16))
	case 4:
		b = append(b, uint8(h), uint8(h>>8), uint8(h>>16), uint8(h>>24))
	case 5:
		b = append(b, uint8(h), uint8(h>>8), uint8(h>>16), uint8(h>>24), uint8(h>>32))
	default:
		panic("internal error: literals header has invalid size")
	}
	return b
}

// size returns the output size with currently set values.
func (h literalsHeader) size() int {
	return int(h >> 60)
}

// blockEnc assembles the header and payload of a single block.
type blockEnc struct {
	literals []byte
	output   []byte
	last     bool
}

// reset prepares the block for the next encode. The frame-scoped match
// finder state lives outside the block encoder.
func (b *blockEnc) reset() {
	b.literals = b.literals[:0]
	b.output = b.output[:0]
	b.last = false
}

// encodeRaw sets the output to a raw representation of the supplied bytes.
func (b *blockEnc) encodeRaw(a []byte) {
	var bh blockHeader
	bh.setLast(b.last)
	bh.setSize(uint32(len(a)))
	bh.setType(blockTypeRaw)
	b.output = bh.appendTo(b.output)
	b.output = append(b.output, a...)
	if debugEncoder {
		println("Adding RAW block, length", len(a), "last:", b.last)
	}
}

// encodeRLE sets the output to an RLE block: a single byte the decoder
// replicates to the given logical length.
func (b *blockEnc) encodeRLE(val byte, length uint32) {
	var bh blockHeader
	bh.setLast(b.last)
	bh.setSize(length)
	bh.setType(blockTypeRLE)
	b.output = bh.appendTo(b.output)
	b.output = append(b.output, val)
	if debugEncoder {
		println("Adding RLE block, length", length, "last:", b.last)
	}
}

// pushLiterals appends the literal bytes selected by matches to the block.
// Matched spans are folded back into literals: encoding them as
// back-references needs the sequence entropy coder, which lives outside
// this encoder.
func (b *blockEnc) pushLiterals(src []byte, matches []Match) {
	pos := 0
	for _, m := range matches {
		b.literals = append(b.literals, src[pos:pos+m.Unmatched]...)
		pos += m.Unmatched
		b.literals = append(b.literals, src[pos:pos+m.Length]...)
		pos += m.Length
	}
	b.literals = append(b.literals, src[pos:]...)
}

// encodeLits writes a compressed block holding the entropy-coded literals
// and an empty sequences section. It returns errIncompressible when a raw
// block would be at least as small, or when the payload would reach the
// block-size ceiling.
func (b *blockEnc) encodeLits() error {
	lits := b.literals
	// Don't bother with extremely small blocks.
	if len(lits) < 32 {
		return errIncompressible
	}

	var (
		out    []byte
		single bool
		err    error
	)
	if len(lits) >= 1024 {
		// Use 4 streams.
		out, err = huff0.Compress4X(lits)
	} else {
		single = true
		out, err = huff0.Compress1X(lits)
	}
	switch err {
	case nil:
	case huff0.ErrUseRLE:
		b.encodeRLE(lits[0], uint32(len(lits)))
		return nil
	case huff0.ErrIncompressible:
		return errIncompressible
	default:
		return err
	}

	var lh literalsHeader
	lh.setType(literalsBlockCompressed)
	lh.setSizes(len(out), len(lits), single)

	// Literals section plus one byte for the empty sequences section.
	size := lh.size() + len(out) + 1
	if size >= len(lits) || size >= maxBlockSize {
		return errIncompressible
	}

	var bh blockHeader
	bh.setLast(b.last)
	bh.setType(blockTypeCompressed)
	bh.setSize(uint32(size))
	b.output = bh.appendTo(b.output)
	b.output = lh.appendTo(b.output)
	b.output = append(b.output, out...)
	// No sequences.
	b.output = append(b.output, 0)
	if debugEncoder {
		printf("Compressed %d literals to %d bytes", len(lits), size)
	}
	return nil
}
