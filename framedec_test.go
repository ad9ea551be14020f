package zstdenc

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/delta4chat/zstdenc/huff0"
)

// parsedBlock is one block pulled out of a frame by parseFrameBlocks.
type parsedBlock struct {
	typ  blockType
	size int
	body []byte
	last bool
}

// parseFrameBlocks splits a frame produced by this package into its blocks.
// It is deliberately strict about the fixed parts of the header (no content
// size, no checksum, no dictionary, 256K window) so structural mistakes fail
// tests instead of being skipped over.
func parseFrameBlocks(t *testing.T, frame []byte) []parsedBlock {
	t.Helper()
	if len(frame) < 6 {
		t.Fatalf("frame too short: %d bytes", len(frame))
	}
	if !bytes.Equal(frame[:4], frameMagic) {
		t.Fatalf("bad magic number % x", frame[:4])
	}
	if fhd := frame[4]; fhd != 0 {
		t.Fatalf("unexpected frame header descriptor %#x", fhd)
	}
	if wd := frame[5]; wd != 0x40 {
		t.Fatalf("unexpected window descriptor %#x", wd)
	}
	rest := frame[6:]

	var blocks []parsedBlock
	for {
		if len(rest) < 3 {
			t.Fatal("missing block header")
		}
		bh := uint32(rest[0]) | uint32(rest[1])<<8 | uint32(rest[2])<<16
		rest = rest[3:]
		blk := parsedBlock{
			typ:  blockType(bh >> 1 & 3),
			size: int(bh >> 3),
			last: bh&1 != 0,
		}

		n := blk.size
		if blk.typ == blockTypeRLE {
			n = 1
		}
		if n > len(rest) {
			t.Fatalf("block of %d bytes overruns frame", n)
		}
		blk.body = rest[:n]
		rest = rest[n:]
		blocks = append(blocks, blk)
		if blk.last {
			break
		}
	}
	if len(rest) != 0 {
		t.Fatalf("%d trailing bytes after last block", len(rest))
	}
	return blocks
}

// decodeFrame reconstructs the content of a frame produced by this package.
// It decodes independently of the reference decoder, so the two can
// cross-check each other.
func decodeFrame(t *testing.T, frame []byte) []byte {
	t.Helper()
	var out []byte
	for _, blk := range parseFrameBlocks(t, frame) {
		switch blk.typ {
		case blockTypeRaw:
			out = append(out, blk.body...)
		case blockTypeRLE:
			out = append(out, bytes.Repeat(blk.body, blk.size)...)
		case blockTypeCompressed:
			out = append(out, decodeLiteralsOnlyBlock(t, blk.body)...)
		default:
			t.Fatalf("reserved block type %d", blk.typ)
		}
	}
	return out
}

// decodeLiteralsOnlyBlock decodes a compressed block that carries Huffman
// literals and an empty sequences section, the only compressed layout this
// encoder emits.
func decodeLiteralsOnlyBlock(t *testing.T, block []byte) []byte {
	t.Helper()
	if len(block) < 3 {
		t.Fatal("literals section truncated")
	}
	if lt := literalsBlockType(block[0] & 3); lt != literalsBlockCompressed {
		t.Fatalf("unexpected literals block type %d", lt)
	}

	var regen, comp int
	single := false
	switch sf := block[0] >> 2 & 3; sf {
	case 0, 1:
		v := uint32(block[0]) | uint32(block[1])<<8 | uint32(block[2])<<16
		regen = int(v >> 4 & 1023)
		comp = int(v >> 14 & 1023)
		single = sf == 0
		block = block[3:]
	case 2:
		if len(block) < 4 {
			t.Fatal("literals header truncated")
		}
		v := binary.LittleEndian.Uint32(block)
		regen = int(v >> 4 & 0x3fff)
		comp = int(v >> 18 & 0x3fff)
		block = block[4:]
	case 3:
		if len(block) < 5 {
			t.Fatal("literals header truncated")
		}
		v := uint64(binary.LittleEndian.Uint32(block)) | uint64(block[4])<<32
		regen = int(v >> 4 & 0x3ffff)
		comp = int(v >> 22 & 0x3ffff)
		block = block[5:]
	}
	if comp > len(block) {
		t.Fatalf("literals payload of %d bytes overruns block", comp)
	}

	var lits []byte
	var err error
	if single {
		lits, err = huff0.Decompress1X(block[:comp], regen)
	} else {
		lits, err = huff0.Decompress4X(block[:comp], regen)
	}
	if err != nil {
		t.Fatal(err)
	}
	if rest := block[comp:]; len(rest) != 1 || rest[0] != 0 {
		t.Fatalf("expected empty sequences section, got % x", rest)
	}
	return lits
}

func TestLiteralsHeaderRoundTrip(t *testing.T) {
	cases := []struct {
		comp, in int
		single   bool
	}{
		{50, 100, true},
		{50, 100, false},
		{1000, 1023, false},
		{1024, 5000, false},
		{16000, 16383, false},
		{20000, 131052, false},
	}
	for _, c := range cases {
		var lh literalsHeader
		lh.setType(literalsBlockCompressed)
		lh.setSizes(c.comp, c.in, c.single)
		b := lh.appendTo(nil)
		if len(b) != lh.size() {
			t.Errorf("header for (%d, %d) serialized to %d bytes, size() says %d", c.comp, c.in, len(b), lh.size())
		}

		if lt := literalsBlockType(b[0] & 3); lt != literalsBlockCompressed {
			t.Errorf("header for (%d, %d) has type %d", c.comp, c.in, lt)
		}
		var regen, comp int
		single := false
		switch sf := b[0] >> 2 & 3; sf {
		case 0, 1:
			v := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
			regen = int(v >> 4 & 1023)
			comp = int(v >> 14 & 1023)
			single = sf == 0
		case 2:
			v := binary.LittleEndian.Uint32(b)
			regen = int(v >> 4 & 0x3fff)
			comp = int(v >> 18 & 0x3fff)
		case 3:
			v := uint64(binary.LittleEndian.Uint32(b)) | uint64(b[4])<<32
			regen = int(v >> 4 & 0x3ffff)
			comp = int(v >> 22 & 0x3ffff)
		}
		if regen != c.in || comp != c.comp || single != c.single {
			t.Errorf("header for (%d, %d, %v) decoded as (%d, %d, %v)", c.comp, c.in, c.single, comp, regen, single)
		}
	}
}
