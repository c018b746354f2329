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
	"bytes"
	"math/rand"
	"os"
	"sort"
	"testing"
)

func randCodes(r *rand.Rand, n int, alphabet int) []byte {
	codes := make([]byte, n)
	for i := range codes {
		codes[i] = byte(r.Intn(alphabet))
	}
	return codes
}

func naiveSA(codes []byte) []int {
	sa := make([]int, len(codes)+1)
	for i := range sa {
		sa[i] = i
	}
	sort.Slice(sa, func(i, j int) bool {
		return bytes.Compare(codes[sa[i]:], codes[sa[j]:]) < 0
	})
	return sa
}

func countPattern(text, pattern []byte) int {
	var n int
	for i := 0; i+len(pattern) <= len(text); i++ {
		if bytes.Equal(text[i:i+len(pattern)], pattern) {
			n++
		}
	}
	return n
}

func TestSuffixArrayOf(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	texts := [][]byte{
		{},
		{0},
		{3, 3, 3, 3, 3, 3, 3},
		{0, 1, 2, 3, 0, 1, 2, 3, 0, 1, 2, 3},
	}
	for i := 0; i < 50; i++ {
		texts = append(texts, randCodes(r, 1+r.Intn(200), 1+r.Intn(4)))
	}

	for _, text := range texts {
		sa := SuffixArrayOf(text)
		expected := naiveSA(text)
		if len(sa) != len(expected) {
			t.Fatalf("length: %d, expected: %d", len(sa), len(expected))
		}
		for i := range sa {
			if sa[i] != expected[i] {
				t.Fatalf("text %v, sa[%d]: %d, expected: %d", text, i, sa[i], expected[i])
			}
		}
	}
}

func TestOccurrences(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for _, occInterval := range []int{1, 3, 64} {
		text := randCodes(r, 500, 4)
		b, sa, err := Build(text, occInterval)
		if err != nil {
			t.Fatal(err)
		}
		if b.Length() != len(text)+1 || len(sa) != len(text)+1 {
			t.Fatalf("unexpected length: %d", b.Length())
		}
		if sa[0] != len(text) {
			t.Errorf("the first row should be the sentinel suffix")
		}
		if sa[b.Primary()] != 0 {
			t.Errorf("primary row %d has offset %d", b.Primary(), sa[b.Primary()])
		}

		var cnt [4]int
		for pos := 0; pos < b.Length(); pos++ {
			if sa[pos] > 0 {
				cnt[text[sa[pos]-1]]++
			}
			for c := uint8(0); c < 4; c++ {
				if o := b.Occurrences(c, pos); o != cnt[c] {
					t.Fatalf("interval %d, Occurrences(%d, %d): %d, expected %d", occInterval, c, pos, o, cnt[c])
				}
			}
		}

		for c := uint8(0); c < 4; c++ {
			if b.Occurrences(c, -1) != 0 {
				t.Errorf("Occurrences(%d, -1) should be 0", c)
			}
			if b.Occurrences(c, b.Length()+10) != cnt[c] {
				t.Errorf("positions beyond the last row should be clamped")
			}
		}

		var smaller int
		for c := uint8(0); c < 4; c++ {
			if b.Counts(c) != smaller {
				t.Errorf("Counts(%d): %d, expected %d", c, b.Counts(c), smaller)
			}
			smaller += cnt[c]
		}
	}
}

func TestLFAndSuffixArray(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	text := randCodes(r, 300, 4)
	b, sa, err := Build(text, 5)
	if err != nil {
		t.Fatal(err)
	}

	for row := range sa {
		if row == b.Primary() {
			if b.LF(row) != 0 {
				t.Errorf("LF of the primary row should be 0")
			}
			continue
		}
		if sa[b.LF(row)] != sa[row]-1 {
			t.Fatalf("LF(%d) = %d, offsets %d and %d", row, b.LF(row), sa[row], sa[b.LF(row)])
		}
	}

	for _, interval := range []int{1, 2, 7, 32, 1000} {
		s, err := NewSuffixArray(b, sa, interval)
		if err != nil {
			t.Fatal(err)
		}
		for row := range sa {
			if s.Get(row) != sa[row] {
				t.Fatalf("interval %d, Get(%d): %d, expected: %d", interval, row, s.Get(row), sa[row])
			}
		}
	}

	if _, err = NewSuffixArray(b, sa, 0); err != ErrInvalidInterval {
		t.Errorf("expected error for interval 0")
	}
}

func TestInterval(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	text := randCodes(r, 1000, 4)
	b, sa, err := Build(text, 16)
	if err != nil {
		t.Fatal(err)
	}
	s, _ := NewSuffixArray(b, sa, 4)

	for i := 0; i < 200; i++ {
		var pattern []byte
		if i%2 == 0 { // present
			start := r.Intn(len(text) - 10)
			pattern = text[start : start+1+r.Intn(10)]
		} else {
			pattern = randCodes(r, 1+r.Intn(8), 4)
		}

		lo, hi := b.Interval(pattern)
		expected := countPattern(text, pattern)
		var hits int
		if lo <= hi {
			hits = hi - lo + 1
		}
		if hits != expected {
			t.Fatalf("pattern %v: %d hits, expected %d", pattern, hits, expected)
		}

		for _, loc := range s.Locate(lo, hi) {
			if !bytes.Equal(text[loc:loc+len(pattern)], pattern) {
				t.Fatalf("pattern %v: wrong location %d", pattern, loc)
			}
		}
	}

	if lo, hi := b.BackwardStep(4, 0, b.Length()); lo <= hi {
		t.Errorf("non-base symbol should give an empty interval")
	}
}

func TestBuildInvalid(t *testing.T) {
	if _, _, err := Build([]byte{0, 1, 4}, 8); err != ErrInvalidCode {
		t.Errorf("expected ErrInvalidCode, got %v", err)
	}
	if _, _, err := Build([]byte{0, 1}, 0); err != ErrInvalidInterval {
		t.Errorf("expected ErrInvalidInterval, got %v", err)
	}
}

func TestSerialization(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	text := randCodes(r, 777, 4)
	b, sa, err := Build(text, 8)
	if err != nil {
		t.Fatal(err)
	}
	s, _ := NewSuffixArray(b, sa, 5)

	fileBWT, fileSA := "test.bwt", "test.sa"
	defer func() {
		os.Remove(fileBWT)
		os.Remove(fileSA)
	}()

	if _, err = b.WriteToFile(fileBWT); err != nil {
		t.Fatal(err)
	}
	if _, err = s.WriteToFile(fileSA); err != nil {
		t.Fatal(err)
	}

	b2, err := NewFromFile(fileBWT)
	if err != nil {
		t.Fatal(err)
	}
	s2, err := NewSuffixArrayFromFile(fileSA, b2)
	if err != nil {
		t.Fatal(err)
	}

	if b2.Length() != b.Length() || b2.Primary() != b.Primary() || b2.OccInterval() != 8 {
		t.Fatalf("header mismatch")
	}
	for row := 0; row < b.Length(); row++ {
		if b2.Symbol(row) != b.Symbol(row) {
			t.Fatalf("symbol of row %d: %d, expected %d", row, b2.Symbol(row), b.Symbol(row))
		}
		if s2.Get(row) != sa[row] {
			t.Fatalf("Get(%d): %d, expected %d", row, s2.Get(row), sa[row])
		}
	}

	// a suffix array file is not a BWT file
	if _, err = NewFromFile(fileSA); err != ErrInvalidFileFormat {
		t.Errorf("expected ErrInvalidFileFormat, got %v", err)
	}
}

func TestKmerCache(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	text := randCodes(r, 2000, 4)
	b, _, err := Build(text, 32)
	if err != nil {
		t.Fatal(err)
	}

	k := 4
	c, err := NewKmerCache(b, k)
	if err != nil {
		t.Fatal(err)
	}
	if c.K() != k {
		t.Errorf("k: %d", c.K())
	}

	bases := []byte("ACGT")
	for i := 0; i < 100; i++ {
		codes := randCodes(r, k, 4)
		kmer := make([]byte, k)
		for j, code := range codes {
			kmer[j] = bases[code]
		}

		lo, hi := b.Interval(codes)
		if lo > hi {
			lo, hi = 1, 0
		}

		lo1, hi1, ok := c.Lookup(kmer)
		if !ok || lo1 != lo || hi1 != hi {
			t.Fatalf("Lookup(%s): [%d, %d], expected [%d, %d]", kmer, lo1, hi1, lo, hi)
		}
		lo2, hi2, ok := c.LookupCodes(codes)
		if !ok || lo2 != lo || hi2 != hi {
			t.Fatalf("LookupCodes(%v): [%d, %d], expected [%d, %d]", codes, lo2, hi2, lo, hi)
		}
	}

	if _, _, ok := c.Lookup([]byte("ACNT")); ok {
		t.Errorf("k-mers with N should not be found")
	}
	if _, _, ok := c.Lookup([]byte("ACGTA")); ok {
		t.Errorf("k-mers of other sizes should not be found")
	}
	if _, err = NewKmerCache(b, 13); err != ErrCacheKOverflow {
		t.Errorf("expected ErrCacheKOverflow")
	}
}
