package huff0

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
)

// ReadTable parses a direct table description from in and returns the
// reconstructed table along with the bytes following it. Only the direct
// (4-bit weights) representation is supported; FSE-compressed weight tables
// are never produced by this package.
func ReadTable(in []byte) (*Table, []byte, error) {
	if len(in) == 0 {
		return nil, nil, errors.New("huff0: empty table description")
	}
	header := int(in[0])
	if header < 128 {
		return nil, nil, errors.New("huff0: FSE-compressed weights not supported")
	}
	n := header - 127
	nbBytes := (n + 1) / 2
	if len(in) < 1+nbBytes {
		return nil, nil, fmt.Errorf("huff0: table description truncated, need %d bytes", 1+nbBytes)
	}

	weights := make([]int, n+1)
	for i := 0; i < n; i++ {
		v := in[1+i/2]
		if i&1 == 0 {
			weights[i] = int(v >> 4)
		} else {
			weights[i] = int(v & 0xf)
		}
	}

	// The last weight completes the Kraft sum to the next power of two.
	sum := 0
	for _, w := range weights[:n] {
		if w > 0 {
			sum += 1 << (w - 1)
		}
	}
	if sum == 0 {
		return nil, nil, errors.New("huff0: table description has no symbols")
	}
	maxBits := bits.Len(uint(sum))
	rest := 1<<maxBits - sum
	if rest&(rest-1) != 0 {
		return nil, nil, errors.New("huff0: corrupt table description")
	}
	weights[n] = bits.Len(uint(rest))

	return BuildFromWeights(weights), in[1+nbBytes:], nil
}

// Decompress1X decodes a table description followed by a single bitstream,
// producing exactly regenSize bytes.
func Decompress1X(in []byte, regenSize int) ([]byte, error) {
	t, stream, err := ReadTable(in)
	if err != nil {
		return nil, err
	}
	return t.decompressStream(make([]byte, 0, regenSize), stream, regenSize)
}

// Decompress4X decodes a table description, a 6 byte jump table and four
// bitstreams, producing exactly regenSize bytes.
func Decompress4X(in []byte, regenSize int) ([]byte, error) {
	t, rest, err := ReadTable(in)
	if err != nil {
		return nil, err
	}
	if len(rest) < 6 {
		return nil, errors.New("huff0: missing jump table")
	}
	sizes := [4]int{
		int(binary.LittleEndian.Uint16(rest[0:])),
		int(binary.LittleEndian.Uint16(rest[2:])),
		int(binary.LittleEndian.Uint16(rest[4:])),
	}
	streams := rest[6:]
	sizes[3] = len(streams) - sizes[0] - sizes[1] - sizes[2]
	if sizes[3] <= 0 {
		return nil, errors.New("huff0: corrupt jump table")
	}

	quarter := (regenSize + 3) / 4
	out := make([]byte, 0, regenSize)
	offset := 0
	for i := 0; i < 4; i++ {
		regen := quarter
		if i == 3 {
			regen = regenSize - 3*quarter
		}
		if regen < 0 {
			return nil, errors.New("huff0: invalid regenerated size")
		}
		out, err = t.decompressStream(out, streams[offset:offset+sizes[i]], regen)
		if err != nil {
			return nil, err
		}
		offset += sizes[i]
	}
	return out, nil
}

// decoder builds a (length, codeword) -> symbol lookup for t.
func (t *Table) decoder() map[uint32]byte {
	m := make(map[uint32]byte, maxSymbols)
	for sym := 0; sym < maxSymbols; sym++ {
		e := t.codes[sym]
		if e.nBits > 0 {
			m[uint32(e.nBits)<<16|uint32(e.val)] = byte(sym)
		}
	}
	return m
}

// decompressStream appends regen decoded bytes from one bitstream to dst.
func (t *Table) decompressStream(dst, stream []byte, regen int) ([]byte, error) {
	br, err := newBitReader(stream)
	if err != nil {
		return nil, err
	}
	codes := t.decoder()
	for n := 0; n < regen; n++ {
		acc := uint32(0)
		length := uint8(0)
		for {
			length++
			if length > t.maxBits {
				return nil, errors.New("huff0: corrupt bitstream")
			}
			acc = acc<<1 | br.readBit()
			if sym, ok := codes[uint32(length)<<16|acc]; ok {
				dst = append(dst, sym)
				break
			}
		}
	}
	return dst, nil
}

// bitReader reads a reverse bitstream: starting below the end-of-stream
// marker in the final byte and moving backwards. Reads past the start of the
// stream return zero bits, matching the zero padding decoders assume.
type bitReader struct {
	in   []byte
	bits int
}

func newBitReader(in []byte) (*bitReader, error) {
	if len(in) == 0 {
		return nil, errors.New("huff0: empty bitstream")
	}
	last := in[len(in)-1]
	if last == 0 {
		return nil, errors.New("huff0: bitstream missing end marker")
	}
	return &bitReader{
		in:   in,
		bits: (len(in)-1)*8 + bits.Len8(last) - 1,
	}, nil
}

func (r *bitReader) readBit() uint32 {
	if r.bits <= 0 {
		return 0
	}
	r.bits--
	return uint32(r.in[r.bits>>3]>>(uint(r.bits)&7)) & 1
}
