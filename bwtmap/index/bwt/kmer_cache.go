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
	"math"

	"github.com/shenwei356/kmers"
)

// MaxCacheK is the largest k of a KmerCache.
const MaxCacheK = 12

// ErrCacheKOverflow means k is out of [1, MaxCacheK].
var ErrCacheKOverflow = errors.New("bwt: k-mer size of cache should be in [1, 12]")

var base2code = [256]int8{}

func init() {
	for i := range base2code {
		base2code[i] = -1
	}
	base2code['A'], base2code['a'] = 0, 0
	base2code['C'], base2code['c'] = 1, 1
	base2code['G'], base2code['g'] = 2, 2
	base2code['T'], base2code['t'] = 3, 3
}

// KmerCache stores the BWT intervals of all k-mers,
// so the last k steps of a backward search are one lookup.
type KmerCache struct {
	k  int
	lo []int32
	hi []int32
}

// NewKmerCache computes intervals of all 4^k k-mers.
func NewKmerCache(b *BWT, k int) (*KmerCache, error) {
	if k < 1 || k > MaxCacheK {
		return nil, ErrCacheKOverflow
	}
	if b.Length() > math.MaxInt32 {
		return nil, errors.New("bwt: text too long for k-mer cache")
	}

	n := 1 << (uint(k) << 1)
	c := &KmerCache{k: k, lo: make([]int32, n), hi: make([]int32, n)}

	codes := make([]byte, k)
	var lo, hi int
	for code := 0; code < n; code++ {
		for i, s := range kmers.MustDecode(uint64(code), k) {
			codes[i] = byte(base2code[s])
		}
		lo, hi = b.Interval(codes)
		if lo > hi {
			lo, hi = 1, 0
		}
		c.lo[code], c.hi[code] = int32(lo), int32(hi)
	}
	return c, nil
}

// K returns the k-mer size.
func (c *KmerCache) K() int { return c.k }

// Lookup returns the interval of a k-mer in ASCII.
// ok is false for k-mers of other sizes or with bases other than ACGT.
func (c *KmerCache) Lookup(kmer []byte) (lo, hi int, ok bool) {
	if len(kmer) != c.k {
		return 1, 0, false
	}
	for _, s := range kmer {
		if base2code[s] < 0 {
			return 1, 0, false
		}
	}
	code, err := kmers.Encode(kmer)
	if err != nil {
		return 1, 0, false
	}
	return int(c.lo[code]), int(c.hi[code]), true
}

// LookupCodes is Lookup for a k-mer of 2-bit codes.
func (c *KmerCache) LookupCodes(codes []byte) (lo, hi int, ok bool) {
	if len(codes) != c.k {
		return 1, 0, false
	}
	var code int
	for _, s := range codes {
		if s > 3 {
			return 1, 0, false
		}
		code = code<<2 | int(s)
	}
	return int(c.lo[code]), int(c.hi[code]), true
}
