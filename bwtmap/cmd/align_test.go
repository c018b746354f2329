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

package cmd

import (
	"bytes"
	"testing"

	"github.com/shenwei356/BWTMap/bwtmap/align"
)

func TestFormatAlignment(t *testing.T) {
	var tr *align.Trace
	for _, s := range []align.State{
		align.Match, align.Match, align.Mismatch, align.Match,
		align.Deletion, align.Match, align.Insertion, align.Match,
	} {
		tr = tr.Append(s)
	}
	// the head is the leftmost run, so the steps above are reversed
	ref := []byte("ACGTACG")
	read := []byte("AGCTTCG")

	var buf bytes.Buffer
	formatAlignment(&buf, ref, read, tr)

	// runs: 1=, 1I, 1=, 1D, 1=, 1X, 2=
	want := "\tA-CGTACG\t| | | ||\tAGC-TTCG"
	if buf.String() != want {
		t.Errorf("unexpected alignment text:\n%q\n%q", buf.String(), want)
	}
}

func TestEqualInts(t *testing.T) {
	if !equalInts(nil, []int{}) {
		t.Errorf("empty slices should be equal")
	}
	if equalInts([]int{1, 2}, []int{1, 3}) {
		t.Errorf("different slices should not be equal")
	}
}
