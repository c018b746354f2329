// Copyright © 2023-2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package bwt

import (
	"errors"

	"github.com/twotwotwo/sorts"
)

// ErrInvalidCode means a symbol other than 0-3 in the text.
var ErrInvalidCode = errors.New("bwt: only 2-bit codes (0-3) are allowed")

// ErrInvalidInterval means the sampling interval is not positive.
var ErrInvalidInterval = errors.New("bwt: sampling interval should be positive")

// DefaultOccInterval is the default distance between two occurrence checkpoints.
var DefaultOccInterval = 64

// sentinel is the symbol stored in the row of the suffix starting at offset 0.
// It is not one of the four bases, so it is never counted.
const sentinel = 4

// BWT is the Burrows-Wheeler transform of a 2-bit coded text terminated with
// a sentinel smaller than all bases.
//
// Rows are the sorted suffixes of text$. Row 0 is the suffix "$",
// and the symbol of row Primary() is the sentinel.
type BWT struct {
	n       int    // text length
	primary int    // row of the whole text
	bwt     []byte // symbol of each row

	// counts[b]: symbols in the text smaller than b, counts[4] == n
	counts [5]int

	occInterval int
	// occ[k<<2|b]: occurrences of b in rows [0, k*occInterval)
	occ []int
}

// Build creates the BWT of a text of 2-bit codes and returns it with the
// full suffix array, in which sa[0] == len(codes).
func Build(codes []byte, occInterval int) (*BWT, []int, error) {
	if occInterval <= 0 {
		return nil, nil, ErrInvalidInterval
	}
	for _, c := range codes {
		if c > 3 {
			return nil, nil, ErrInvalidCode
		}
	}

	sa := SuffixArrayOf(codes)

	b := &BWT{n: len(codes), bwt: make([]byte, len(sa)), occInterval: occInterval}
	for row, s := range sa {
		if s == 0 {
			b.primary = row
			b.bwt[row] = sentinel
			continue
		}
		b.bwt[row] = codes[s-1]
	}
	b.init()

	return b, sa, nil
}

// init computes counts and occurrence checkpoints from the symbols.
func (b *BWT) init() {
	b.occ = make([]int, (len(b.bwt)/b.occInterval+1)<<2)

	var cnt [4]int
	for row, c := range b.bwt {
		if row%b.occInterval == 0 {
			k := row / b.occInterval << 2
			copy(b.occ[k:k+4], cnt[:])
		}
		if c != sentinel {
			cnt[c]++
		}
	}
	if len(b.bwt)%b.occInterval == 0 { // the last checkpoint
		k := len(b.bwt) / b.occInterval << 2
		copy(b.occ[k:k+4], cnt[:])
	}

	b.counts[0] = 0
	for c := 0; c < 4; c++ {
		b.counts[c+1] = b.counts[c] + cnt[c]
	}
}

// Length returns the number of rows, i.e., text length + 1.
func (b *BWT) Length() int { return len(b.bwt) }

// TextLength returns the length of the text.
func (b *BWT) TextLength() int { return b.n }

// Primary returns the row holding the sentinel symbol.
func (b *BWT) Primary() int { return b.primary }

// OccInterval returns the distance between two occurrence checkpoints.
func (b *BWT) OccInterval() int { return b.occInterval }

// Counts returns the number of symbols in the text smaller than base.
func (b *BWT) Counts(base uint8) int {
	if base > 3 {
		return b.n
	}
	return b.counts[base]
}

// Occurrences returns the number of base in rows [0, pos].
// It returns 0 for pos < 0, and pos beyond the last row is clamped.
func (b *BWT) Occurrences(base uint8, pos int) int {
	if pos < 0 || base > 3 {
		return 0
	}
	if pos >= len(b.bwt) {
		pos = len(b.bwt) - 1
	}

	end := pos + 1
	k := end / b.occInterval
	n := b.occ[k<<2|int(base)]
	for _, c := range b.bwt[k*b.occInterval : end] {
		if c == base {
			n++
		}
	}
	return n
}

// Symbol returns the symbol of a row, 4 for the sentinel.
func (b *BWT) Symbol(row int) uint8 {
	return b.bwt[row]
}

// LF maps a row to the row of the suffix one position to the left.
// The row of the whole text maps to row 0, the suffix "$".
func (b *BWT) LF(row int) int {
	c := b.bwt[row]
	if c == sentinel {
		return 0
	}
	return b.counts[c] + b.Occurrences(c, row)
}

// BackwardStep prepends base to the string of rows [lo, hi].
// The result is empty if newLo > newHi.
func (b *BWT) BackwardStep(base uint8, lo, hi int) (int, int) {
	if base > 3 {
		return 1, 0
	}
	c := b.counts[base]
	return c + b.Occurrences(base, lo-1) + 1, c + b.Occurrences(base, hi)
}

// Interval returns the rows of suffixes starting with the pattern
// of 2-bit codes. The pattern is absent if lo > hi.
func (b *BWT) Interval(pattern []byte) (lo, hi int) {
	lo, hi = 0, len(b.bwt)-1
	for i := len(pattern) - 1; i >= 0; i-- {
		lo, hi = b.BackwardStep(pattern[i], lo, hi)
		if lo > hi {
			return
		}
	}
	return
}

// SuffixArrayOf returns the suffix array of codes with a sentinel,
// sa[0] == len(codes).
//
// Suffixes are sorted by prefix doubling. Each round sorts them by the
// ranks of their first h symbols and of the next h symbols, until all
// ranks are distinct.
func SuffixArrayOf(codes []byte) []int {
	n := len(codes)
	sa := make([]int, n+1)
	rank := make([]int, n+1)
	tmp := make([]int, n+1)
	for i, c := range codes {
		sa[i] = i
		rank[i] = int(c) + 1
	}
	sa[n] = n // the sentinel has the lowest rank, 0

	s := &doublingSorter{sa: sa, rank: rank}
	for h := 1; ; h <<= 1 {
		s.h = h
		sorts.Quicksort(s)

		tmp[sa[0]] = 0
		for i := 1; i <= n; i++ {
			tmp[sa[i]] = tmp[sa[i-1]]
			if s.Less(i-1, i) {
				tmp[sa[i]]++
			}
		}
		copy(rank, tmp)

		if rank[sa[n]] == n {
			break
		}
	}
	return sa
}

type doublingSorter struct {
	sa   []int
	rank []int
	h    int
}

func (s *doublingSorter) key(i int) (int, int) {
	if j := i + s.h; j < len(s.rank) {
		return s.rank[i], s.rank[j]
	}
	return s.rank[i], -1
}

func (s *doublingSorter) Len() int { return len(s.sa) }

func (s *doublingSorter) Less(i, j int) bool {
	a1, a2 := s.key(s.sa[i])
	b1, b2 := s.key(s.sa[j])
	if a1 != b1 {
		return a1 < b1
	}
	return a2 < b2
}

func (s *doublingSorter) Swap(i, j int) { s.sa[i], s.sa[j] = s.sa[j], s.sa[i] }
