package huff0

// bitWriter produces the reverse-read bitstreams used by the Zstandard
// format. Bits accumulate in a little-endian container and are flushed in
// byte order; a decoder starts at the final 1-bit marker and reads the
// stream backwards.
type bitWriter struct {
	bitContainer uint64
	nBits        uint8
	out          []byte
}

// addBits16Clean appends the lowest bits of value to the stream.
// Bits above the requested count must be zero.
func (b *bitWriter) addBits16Clean(value uint16, bits uint8) {
	b.bitContainer |= uint64(value) << (b.nBits & 63)
	b.nBits += bits
}

// encSymbol appends the code for symbol to the stream.
func (b *bitWriter) encSymbol(ct *Table, symbol byte) {
	e := ct.codes[symbol]
	b.bitContainer |= uint64(e.val) << (b.nBits & 63)
	b.nBits += e.nBits
}

// flush32 flushes whole bytes until fewer than 32 bits remain buffered.
func (b *bitWriter) flush32() {
	if b.nBits < 32 {
		return
	}
	b.out = append(b.out,
		byte(b.bitContainer),
		byte(b.bitContainer>>8),
		byte(b.bitContainer>>16),
		byte(b.bitContainer>>24))
	b.nBits -= 32
	b.bitContainer >>= 32
}

// flushAlign writes out the remaining bits, zero-padding the final byte.
func (b *bitWriter) flushAlign() {
	nbBytes := (b.nBits + 7) >> 3
	for i := uint8(0); i < nbBytes; i++ {
		b.out = append(b.out, byte(b.bitContainer>>(i*8)))
	}
	b.nBits = 0
	b.bitContainer = 0
}

// close appends the end-of-stream marker and aligns to a byte boundary.
func (b *bitWriter) close() {
	b.addBits16Clean(1, 1)
	b.flushAlign()
}
