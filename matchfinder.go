package zstdenc

import "encoding/binary"

// A Match is the basic unit of LZ77 compression.
type Match struct {
	Unmatched int // the number of unmatched bytes since the previous match
	Length    int // the number of bytes in the matched string; it may be 0 at the end of the input
	Distance  int // how far back in the stream to copy from
}

// A MatchFinder performs the LZ77 stage of compression, looking for matches.
//
// Its history spans a whole frame and must observe every input byte exactly
// once, in block order, whether or not matches were searched for in it;
// AddHistory is the path for blocks that skip the search.
type MatchFinder interface {
	// FindMatches looks for matches in src, appends them to dst, and
	// returns dst. The matches cover all of src: the sum of Unmatched and
	// Length over the result equals len(src).
	FindMatches(dst []Match, src []byte) []Match

	// AddHistory advances the history window over src without searching
	// for matches in it.
	AddHistory(src []byte)

	// Reset clears any internal state, preparing the MatchFinder to be
	// used with a new frame.
	Reset()
}

// An absoluteMatch is like a Match, but it stores indexes into the history
// buffer instead of lengths.
type absoluteMatch struct {
	Start int // index of the first byte
	End   int // index of the byte after the last byte
	Match int // index of the previous data that matches
}

const (
	maxTableSize = 1 << 14
	shift        = 32 - 14
	// tableMask is redundant, but helps the compiler eliminate bounds
	// checks.
	tableMask = maxTableSize - 1
)

func hash4(u uint32) uint32 {
	return (u * 2654435761) >> shift
}

// MatchGenerator is a MatchFinder that uses a single hash table and greedy
// parsing. It is the finder the Fastest level uses.
type MatchGenerator struct {
	// WindowSize is the history capacity in bytes: the maximum distance
	// to look back for a match. The default is 131072 (128K).
	WindowSize int

	table [maxTableSize]uint32

	history []byte
}

func (m *MatchGenerator) Reset() {
	m.table = [maxTableSize]uint32{}
	m.history = m.history[:0]
}

func (m *MatchGenerator) windowSize() int {
	if m.WindowSize == 0 {
		return 128 << 10
	}
	return m.WindowSize
}

// shrink trims the history buffer back to the window capacity once it has
// grown to twice that size.
func (m *MatchGenerator) shrink() {
	w := m.windowSize()
	if len(m.history) <= 2*w {
		return
	}
	delta := len(m.history) - w
	copy(m.history, m.history[delta:])
	m.history = m.history[:w]

	for i, v := range m.table {
		newV := int(v) - delta
		if newV < 0 {
			newV = 0
		}
		m.table[i] = uint32(newV)
	}
}

// AddHistory advances the window over src without looking for matches.
func (m *MatchGenerator) AddHistory(src []byte) {
	m.shrink()
	m.history = append(m.history, src...)
}

// FindMatches looks for matches in src, appends them to dst, and returns dst.
func (m *MatchGenerator) FindMatches(dst []Match, src []byte) []Match {
	m.shrink()
	start := len(m.history)
	m.history = append(m.history, src...)
	end := len(m.history)

	s := start
	nextEmit := start
	for s < end {
		match := m.search(s, nextEmit, end)
		if match.End-match.Start < 4 {
			s++
			continue
		}

		dst = append(dst, Match{
			Unmatched: match.Start - nextEmit,
			Length:    match.End - match.Start,
			Distance:  match.Start - match.Match,
		})
		nextEmit = match.End
		s = nextEmit
	}

	if nextEmit < end {
		dst = append(dst, Match{
			Unmatched: end - nextEmit,
		})
	}
	return dst
}

func (m *MatchGenerator) search(pos, min, max int) absoluteMatch {
	if pos+4 > len(m.history) {
		return absoluteMatch{}
	}
	src := m.history

	h := hash4(binary.LittleEndian.Uint32(src[pos:]))
	candidate := int(m.table[h&tableMask])
	m.table[h&tableMask] = uint32(pos)

	if candidate == 0 || pos-candidate > m.windowSize() {
		return absoluteMatch{}
	}
	if binary.LittleEndian.Uint32(src[pos:]) != binary.LittleEndian.Uint32(src[candidate:]) {
		return absoluteMatch{}
	}

	// We have a 4-byte match now.

	start := pos
	match := candidate
	end := extendMatch(src[:max], match+4, start+4)
	for start > min && match > 0 && src[start-1] == src[match-1] {
		start--
		match--
	}

	return absoluteMatch{
		Start: start,
		End:   end,
		Match: match,
	}
}

// extendMatch returns the largest k such that src[i:k] equals src[j:k].
func extendMatch(src []byte, i, j int) int {
	for ; j < len(src) && src[i] == src[j]; i, j = i+1, j+1 {
	}
	return j
}
