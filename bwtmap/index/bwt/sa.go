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
	"bufio"
	"io"

	"github.com/shenwei356/BWTMap/bwtmap/util"
	"github.com/shenwei356/xopen"
)

// DefaultSAInterval is the default sampling interval of suffix arrays.
var DefaultSAInterval = 32

// SuffixArray is a suffix array sampled at rows that are multiples of
// the interval. Other rows are resolved by walking the BWT with LF.
type SuffixArray struct {
	bwt      *BWT
	interval int
	samples  []int // samples[k] = SA[k*interval]
}

// NewSuffixArray samples the full suffix array sa of a BWT.
func NewSuffixArray(b *BWT, sa []int, interval int) (*SuffixArray, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	s := &SuffixArray{bwt: b, interval: interval}
	s.samples = make([]int, 0, len(sa)/interval+1)
	for row := 0; row < len(sa); row += interval {
		s.samples = append(s.samples, sa[row])
	}
	return s, nil
}

// Interval returns the sampling interval.
func (s *SuffixArray) Interval() int { return s.interval }

// Get returns the 0-based text offset of the suffix of a row.
func (s *SuffixArray) Get(row int) int {
	var steps int
	for row%s.interval != 0 {
		if row == s.bwt.primary { // the whole text
			return steps
		}
		row = s.bwt.LF(row)
		steps++
	}
	return s.samples[row/s.interval] + steps
}

// Locate returns text offsets of all rows in [lo, hi].
func (s *SuffixArray) Locate(lo, hi int) []int {
	if lo > hi {
		return nil
	}
	locs := make([]int, 0, hi-lo+1)
	for row := lo; row <= hi; row++ {
		locs = append(locs, s.Get(row))
	}
	return locs
}

// NewSuffixArrayFromFile reads a sampled suffix array of a BWT from a file.
func NewSuffixArrayFromFile(file string, b *BWT) (*SuffixArray, error) {
	fh, err := xopen.Ropen(file)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	return ReadSuffixArray(fh, b)
}

// WriteToFile writes the suffix array to a file.
func (s *SuffixArray) WriteToFile(file string) (int, error) {
	outfh, err := xopen.Wopen(file)
	if err != nil {
		return 0, err
	}
	defer outfh.Close()

	return s.Write(outfh)
}

// Write writes the suffix array to a writer.
//
// Header (32 bytes):
//
//	Magic number, 8 bytes, bwtmapSA
//	Main and minor versions, 2 bytes
//	Blank, 6 bytes
//	Sampling interval, 8 bytes
//	Number of samples, 8 bytes
//
// Data: samples in pairs, as group varints.
//
//	Control byte, 1 byte
//	Two samples, 2-16 bytes
//
// An odd number of samples is padded with a 0.
func (s *SuffixArray) Write(w io.Writer) (int, error) {
	var N int
	var err error

	buf := make([]byte, 32)
	copy(buf[:8], MagicSA[:])
	buf[8] = MainVersion
	buf[9] = MinorVersion
	be.PutUint64(buf[16:24], uint64(s.interval))
	be.PutUint64(buf[24:32], uint64(len(s.samples)))
	_, err = w.Write(buf)
	if err != nil {
		return N, err
	}
	N += len(buf)

	bw := bufio.NewWriter(w)
	bufVar := make([]byte, 17)
	var ctrl byte
	var n int
	var v2 uint64
	for i := 0; i < len(s.samples); i += 2 {
		if i+1 < len(s.samples) {
			v2 = uint64(s.samples[i+1])
		} else {
			v2 = 0
		}
		ctrl, n = util.PutUint64s(bufVar[1:], uint64(s.samples[i]), v2)
		bufVar[0] = ctrl

		_, err = bw.Write(bufVar[:n+1])
		if err != nil {
			return N, err
		}
		N += n + 1
	}

	return N, bw.Flush()
}

// ReadSuffixArray reads a sampled suffix array of a BWT from an io.Reader.
func ReadSuffixArray(r io.Reader, b *BWT) (*SuffixArray, error) {
	buf := make([]byte, 32)
	if err := readHeader(r, MagicSA, buf); err != nil {
		return nil, err
	}

	s := &SuffixArray{bwt: b, interval: int(be.Uint64(buf[16:24]))}
	nSamples := int(be.Uint64(buf[24:32]))
	if s.interval <= 0 || nSamples != (b.Length()+s.interval-1)/s.interval {
		return nil, ErrInvalidFileFormat
	}
	s.samples = make([]int, 0, nSamples+1)

	br := bufio.NewReader(r)
	data := make([]byte, 16)
	var ctrl byte
	var nBytes, n int
	var v1, v2 uint64
	var err error
	for len(s.samples) < nSamples {
		ctrl, err = br.ReadByte()
		if err != nil {
			return nil, ErrBrokenFile
		}
		nBytes = util.CtrlByte2ByteLengthsUint64(ctrl)
		_, err = io.ReadFull(br, data[:nBytes])
		if err != nil {
			return nil, ErrBrokenFile
		}

		v1, v2, n = util.Uint64s(ctrl, data[:nBytes])
		if n == 0 {
			return nil, ErrBrokenFile
		}
		s.samples = append(s.samples, int(v1), int(v2))
	}
	s.samples = s.samples[:nSamples]

	return s, nil
}
