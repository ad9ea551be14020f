package zstdenc

import "io"

// A FrameCompressor encodes one complete Zstandard frame from Source to
// Dest. It is single-use: create a new one for each frame.
type FrameCompressor struct {
	// Source supplies the bytes to compress. It is read to EOF before any
	// output is produced.
	Source io.Reader

	// Dest receives the encoded frame. Each block is written as soon as it
	// is complete.
	Dest io.Writer

	// Level selects the compression strategy.
	Level CompressionLevel

	// MatchFinder performs the LZ77 stage for compressing levels. If nil,
	// a MatchGenerator sized to the frame window is used.
	MatchFinder MatchFinder

	blk     blockEnc
	matches []Match
}

// NewFrameCompressor returns a FrameCompressor that reads src, writes the
// frame to dest, and compresses with the strategy the level selects.
func NewFrameCompressor(src io.Reader, dest io.Writer, level CompressionLevel) *FrameCompressor {
	return &FrameCompressor{
		Source: src,
		Dest:   dest,
		Level:  level,
	}
}

// Compress reads Source to EOF and writes one complete Zstandard frame to
// Dest. The input is split into blocks of at most maxBlockSize bytes and
// the final block is flagged as last, so the frame is terminated even when
// the input is empty.
func (fc *FrameCompressor) Compress() error {
	switch fc.Level {
	case Uncompressed, Fastest:
	default:
		return ErrUnsupportedLevel
	}

	data, err := io.ReadAll(fc.Source)
	if err != nil {
		return err
	}

	header := frameHeader{WindowSize: windowSize}.appendTo(nil)
	if _, err := fc.Dest.Write(header); err != nil {
		return err
	}
	if debugEncoder {
		println("Frame header written, input length", len(data))
	}

	if len(data) == 0 {
		// A frame must contain at least one block.
		fc.blk.reset()
		fc.blk.last = true
		fc.blk.encodeRaw(nil)
		_, err := fc.Dest.Write(fc.blk.output)
		return err
	}

	mf := fc.MatchFinder
	if mf == nil {
		mf = &MatchGenerator{WindowSize: windowSize}
	}
	mf.Reset()

	for index := 0; index < len(data); index += maxBlockSize {
		block := data[index:]
		if len(block) > maxBlockSize {
			block = block[:maxBlockSize]
		}
		fc.blk.reset()
		fc.blk.last = index+maxBlockSize >= len(data)

		switch fc.Level {
		case Uncompressed:
			fc.blk.encodeRaw(block)
		case Fastest:
			fc.encodeFastest(mf, block)
		}

		if _, err := fc.Dest.Write(fc.blk.output); err != nil {
			return err
		}
	}
	return nil
}

// encodeFastest encodes one block with the greedy strategy: an RLE shortcut
// for constant blocks, otherwise match-folded literals with a raw fallback.
func (fc *FrameCompressor) encodeFastest(mf MatchFinder, block []byte) {
	if allSameByte(block) {
		// The window must still advance over the block.
		mf.AddHistory(block)
		fc.blk.encodeRLE(block[0], uint32(len(block)))
		return
	}

	fc.matches = mf.FindMatches(fc.matches[:0], block)
	fc.blk.pushLiterals(block, fc.matches)
	if err := fc.blk.encodeLits(); err != nil {
		fc.blk.encodeRaw(block)
	}
}

func allSameByte(b []byte) bool {
	for _, v := range b[1:] {
		if v != b[0] {
			return false
		}
	}
	return true
}
