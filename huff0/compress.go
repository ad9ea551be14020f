package huff0

import (
	"encoding/binary"
	"fmt"
)

// Compress1X compresses in as a single bitstream, preceded by the table
// description. The output layout matches the Compressed_Literals_Block
// single-stream format. Returns ErrIncompressible if the result would not be
// smaller than the input, and ErrUseRLE if the input is one repeated byte.
func Compress1X(in []byte) ([]byte, error) {
	t, err := prepareTable(in)
	if err != nil {
		return nil, err
	}
	out, err := t.writeTable(make([]byte, 0, len(in)))
	if err != nil {
		return nil, err
	}
	out = t.compressStream(out, in)
	if len(out) >= len(in) {
		return nil, ErrIncompressible
	}
	return out, nil
}

// Compress4X compresses in as four independent bitstreams sharing one table:
// the table description, a 6 byte jump table holding the sizes of the first
// three streams, then the streams. The input is split with the first three
// streams covering (len+3)/4 bytes each and the last the remainder.
func Compress4X(in []byte) ([]byte, error) {
	if len(in) < 12 {
		// The format requires four non-empty streams.
		return nil, ErrIncompressible
	}
	t, err := prepareTable(in)
	if err != nil {
		return nil, err
	}
	out, err := t.writeTable(make([]byte, 0, len(in)))
	if err != nil {
		return nil, err
	}

	jump := len(out)
	out = append(out, 0, 0, 0, 0, 0, 0)

	quarter := (len(in) + 3) / 4
	for i := 0; i < 4; i++ {
		seg := in[i*quarter:]
		if i < 3 {
			seg = seg[:quarter]
		}
		before := len(out)
		out = t.compressStream(out, seg)
		size := len(out) - before
		if i < 3 {
			if size > 0xffff {
				return nil, ErrIncompressible
			}
			binary.LittleEndian.PutUint16(out[jump+i*2:], uint16(size))
		}
	}
	if len(out) >= len(in) {
		return nil, ErrIncompressible
	}
	return out, nil
}

// prepareTable builds the code table from the input's histogram.
func prepareTable(in []byte) (*Table, error) {
	if len(in) == 0 {
		return nil, ErrIncompressible
	}
	if len(in) > BlockSizeMax {
		return nil, fmt.Errorf("huff0: input of %d bytes exceeds max of %d", len(in), BlockSizeMax)
	}
	var count [maxSymbols]int
	for _, v := range in {
		count[v]++
	}
	distinct := 0
	for _, c := range count {
		if c > 0 {
			distinct++
		}
	}
	if distinct == 1 {
		return nil, ErrUseRLE
	}
	t, err := BuildFromCounts(count[:])
	if err != nil {
		return nil, err
	}
	if t.maxBits > tableLogMax {
		// Deeper codes than the format permits; callers fall back to an
		// uncompressed representation.
		return nil, ErrIncompressible
	}
	return t, nil
}

// compressStream appends one encoded bitstream for src to dst. Symbols are
// encoded back to front so that the reverse-reading decoder produces the
// first input byte first.
func (t *Table) compressStream(dst, src []byte) []byte {
	bw := bitWriter{out: dst}
	for i := len(src) - 1; i >= 0; {
		bw.encSymbol(t, src[i])
		i--
		if i >= 0 {
			bw.encSymbol(t, src[i])
			i--
		}
		bw.flush32()
	}
	bw.close()
	return bw.out
}

// writeTable appends the direct table description: a header byte of 127+N,
// then N 4-bit weights packed two per byte, high nibble first. The weight of
// the last symbol in use is not transmitted; the decoder infers it from the
// Kraft remainder. Tables that cannot be represented this way (more than 128
// transmitted weights, or a weight above 15) report ErrIncompressible so the
// caller falls back to an uncompressed representation.
func (t *Table) writeTable(dst []byte) ([]byte, error) {
	maxSym := -1
	for sym := maxSymbols - 1; sym >= 0; sym-- {
		if t.codes[sym].nBits > 0 {
			maxSym = sym
			break
		}
	}
	if maxSym < 1 {
		return nil, ErrIncompressible
	}
	n := maxSym // weights for symbols [0, maxSym); the last one is implied
	if n > 128 {
		return nil, ErrIncompressible
	}
	dst = append(dst, byte(127+n))
	for i := 0; i < n; i += 2 {
		w := t.weight(i)
		if w > 15 {
			return nil, ErrIncompressible
		}
		v := byte(w) << 4
		if i+1 < n {
			w = t.weight(i + 1)
			if w > 15 {
				return nil, ErrIncompressible
			}
			v |= byte(w)
		}
		dst = append(dst, v)
	}
	return dst, nil
}
