// Package huff0 implements the canonical Huffman coding used for the
// literals section of the Zstandard format.
//
// Tables are represented as per-symbol weights. A weight is an inverse-length
// proxy: a symbol with weight w receives a code of maxBits - w + 1 bits, and
// the weights of the symbols in use always sum (as 2^(w-1) terms) to a power
// of two, so a decoder can rebuild the exact codes from the weights alone.
// No tree is ever built or transmitted.
package huff0

import (
	"errors"
	"fmt"
	"math/bits"
	"sort"
)

const (
	// maxSymbols is the alphabet size: one entry per possible byte value.
	maxSymbols = 256

	// BlockSizeMax is the maximum input size for a single compression call.
	BlockSizeMax = 128 << 10

	// tableLogMax is the deepest code length the literals format permits.
	tableLogMax = 11
)

var (
	// ErrIncompressible is returned when input is judged to be too hard to compress.
	ErrIncompressible = errors.New("huff0: input is not compressible")

	// ErrUseRLE is returned when the input is a single byte value repeated.
	ErrUseRLE = errors.New("huff0: input is single value repeated")
)

type cTableEntry struct {
	val   uint16
	nBits uint8
}

// A Table holds the canonical code for every symbol in the alphabet.
// Symbols that do not occur have a zero-length code.
type Table struct {
	codes   [maxSymbols]cTableEntry
	maxBits uint8
}

// Code returns the codeword and bit length assigned to sym.
// A bit length of zero means the symbol is not part of the code.
func (t *Table) Code(sym byte) (val uint16, nBits uint8) {
	e := t.codes[sym]
	return e.val, e.nBits
}

// weight returns the transmitted weight for sym, zero for absent symbols.
func (t *Table) weight(sym int) int {
	e := t.codes[sym]
	if e.nBits == 0 {
		return 0
	}
	return int(t.maxBits-e.nBits) + 1
}

// BuildFromWeights constructs the canonical code table for the given
// per-symbol weights. Codewords are assigned in the unique canonical order:
// ascending weight, ties broken by symbol value, the running value shifted
// right by the weight gap at each group boundary. This is the same numbering
// a decoder derives from the weights, which is what makes transmitting only
// weights sufficient.
//
// The weights must satisfy Kraft equality: the sum of 2^(w-1) over symbols
// with w > 0 must be a power of two. A violation means the weights were
// derived incorrectly upstream, so it panics rather than returning an error.
func BuildFromWeights(weights []int) *Table {
	if len(weights) > maxSymbols {
		panic(fmt.Sprintf("huff0: %d weights for a %d symbol alphabet", len(weights), maxSymbols))
	}
	type entry struct {
		symbol uint8
		weight int
	}
	sorted := make([]entry, 0, len(weights))
	for sym, w := range weights {
		if w < 0 {
			panic(fmt.Sprintf("huff0: negative weight for symbol %d", sym))
		}
		if w > 0 {
			sorted = append(sorted, entry{symbol: uint8(sym), weight: w})
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].weight != sorted[j].weight {
			return sorted[i].weight < sorted[j].weight
		}
		return sorted[i].symbol < sorted[j].symbol
	})

	weightSum := 0
	for _, e := range sorted {
		weightSum += 1 << (e.weight - 1)
	}
	if weightSum == 0 || weightSum&(weightSum-1) != 0 {
		panic(fmt.Sprintf("huff0: weight sum %d is not a power of two", weightSum))
	}
	maxBits := bits.Len(uint(weightSum)) - 1

	t := &Table{maxBits: uint8(maxBits)}
	value := 0
	currentWeight := 0
	var currentBits uint8
	for _, e := range sorted {
		if e.weight != currentWeight {
			if currentWeight > 0 {
				// Codes get one bit shorter per weight step, so the
				// running value loses one bit per step. Weight groups
				// are not always contiguous.
				value >>= uint(e.weight - currentWeight)
			}
			currentWeight = e.weight
			currentBits = uint8(maxBits - e.weight + 1)
		}
		t.codes[e.symbol] = cTableEntry{val: uint16(value), nBits: currentBits}
		value++
	}
	return t
}

// BuildFromCounts derives a weight assignment from raw symbol occurrence
// counts and builds the table from it. The assignment is rank based: it
// generates a Kraft-exact weight sequence for the number of symbols in use,
// then hands the smallest weight to the least frequent symbol and so on, so
// a more frequent symbol never gets a longer code. Only the order of the
// counts matters, not their magnitudes.
//
// At least two distinct symbols must occur, and counts may not cover more
// than 256 symbols.
func BuildFromCounts(counts []int) (*Table, error) {
	if len(counts) > maxSymbols {
		return nil, fmt.Errorf("huff0: %d counts exceeds the %d symbol alphabet", len(counts), maxSymbols)
	}
	nonzero := 0
	for sym, c := range counts {
		if c < 0 {
			return nil, fmt.Errorf("huff0: negative count for symbol %d", sym)
		}
		if c > 0 {
			nonzero++
		}
	}
	if nonzero < 2 {
		return nil, fmt.Errorf("huff0: need at least 2 distinct symbols, have %d", nonzero)
	}

	weights := distributeWeights(nonzero)
	limit := bits.Len(uint(len(weights))) - 1 + 2
	redistributeWeights(weights, limit)

	// weights is non-decreasing; hand the smallest weight to the least
	// frequent symbol. The stable sort keeps equal counts in symbol order.
	order := make([]int, len(counts))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] < counts[order[j]]
	})

	distributed := make([]int, len(counts))
	next := 0
	for _, sym := range order {
		if counts[sym] == 0 {
			continue
		}
		distributed[sym] = weights[next]
		next++
	}
	return BuildFromWeights(distributed), nil
}

// distributeWeights generates a weight sequence of the given length whose
// implied code lengths satisfy Kraft equality by construction. It starts two
// symbols at weight 1 and keeps doubling the number of symbols added at the
// current weight; when a doubling would overshoot the remaining budget it
// instead places a single symbol at the next weight level. The result is
// non-decreasing.
func distributeWeights(amount int) []int {
	if amount < 2 || amount > maxSymbols {
		panic(fmt.Sprintf("huff0: weight distribution for %d symbols, want 2..%d", amount, maxSymbols))
	}
	weights := make([]int, 0, amount)
	targetWeight := 1
	weightCounter := 2

	weights = append(weights, 1, 1)

	for len(weights) < amount {
		addNew := 1 << (weightCounter - targetWeight)
		if available := amount - len(weights); addNew > available {
			targetWeight = weightCounter
			addNew = 1
		}
		for i := 0; i < addNew; i++ {
			weights = append(weights, targetWeight)
		}
		weightCounter++
	}
	return weights
}

// redistributeWeights caps the largest weight in the sorted sequence at
// maxWeight. Weights are first raised onto the reduced scale while tracking
// the Kraft budget this adds, the budget is then repaid by decrementing the
// currently largest weight whose contribution still fits, and finally the
// whole sequence is shifted down so the smallest weight is 1. Every step
// keeps the 2^w sum at a power of two.
func redistributeWeights(weights []int, maxWeight int) {
	largest := weights[len(weights)-1]
	if largest <= maxWeight {
		return
	}
	decrease := largest - maxWeight

	debt := 0
	for i, w := range weights {
		if w < decrease {
			for add := w; add < decrease; add++ {
				debt += 1 << add
			}
			weights[i] = decrease
		}
	}

	for debt > 0 {
		bestIdx, bestWeight := 0, 0
		for i, w := range weights {
			if 1<<(w-1) > debt {
				break
			}
			if w > bestWeight {
				bestWeight = w
				bestIdx = i
			}
		}
		debt -= 1 << (bestWeight - 1)
		weights[bestIdx]--
	}

	if weights[0] > 1 {
		offset := weights[0] - 1
		for i := range weights {
			weights[i] -= offset
		}
	}
}
