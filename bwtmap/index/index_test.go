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

package index

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"testing"

	"github.com/shenwei356/BWTMap/bwtmap/index/twobit"
)

func randSeq(r *rand.Rand, n int) []byte {
	s := make([]byte, n)
	for i := range s {
		s[i] = "ACGT"[r.Intn(4)]
	}
	return s
}

func naiveLocate(text, pattern []byte) []int {
	var locs []int
	for i := 0; i+len(pattern) <= len(text); i++ {
		if bytes.Equal(text[i:i+len(pattern)], pattern) {
			locs = append(locs, i+1)
		}
	}
	return locs
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// buildTestIndex writes two contigs, the first one with a run of N.
func buildTestIndex(t *testing.T, prefix string) ([][]byte, *Index) {
	r := rand.New(rand.NewSource(1))
	seq1 := randSeq(r, 300)
	copy(seq1[100:105], "NNNNN")
	seq2 := randSeq(r, 200)
	seqs := [][]byte{seq1, seq2}

	file := prefix + ".fa"
	var buf bytes.Buffer
	for i, s := range seqs {
		fmt.Fprintf(&buf, ">chr%d test\n%s\n", i+1, s)
	}
	if err := os.WriteFile(file, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	opt := DefaultBuildOptions
	opt.SAInterval = 4
	opt.OccInterval = 16
	opt.KmerCacheK = 4
	if err := Build(prefix, []string{file}, &opt); err != nil {
		t.Fatal(err)
	}

	idx, err := NewFromPrefix(prefix, 2)
	if err != nil {
		t.Fatal(err)
	}
	return seqs, idx
}

func removeTestIndex(prefix string) {
	os.Remove(prefix + ".fa")
	for _, ext := range Exts {
		os.Remove(prefix + ext)
	}
}

func TestIndex(t *testing.T) {
	prefix := "test_index"
	defer removeTestIndex(prefix)

	seqs, idx := buildTestIndex(t, prefix)
	defer func() {
		if err := idx.Close(); err != nil {
			t.Error(err)
		}
	}()

	// metadata
	if idx.Info.Length != 500 || len(idx.Info.Contigs) != 2 {
		t.Fatalf("unexpected info: %+v", idx.Info)
	}
	if c := idx.Info.Contigs[1]; c.Name != "chr2" || c.Offset != 300 || c.Length != 200 {
		t.Errorf("unexpected contig: %+v", c)
	}
	holes := idx.Holes()
	if len(holes) != 1 || holes[0] != (Hole{Offset: 100, Length: 5, Symbol: 'N'}) {
		t.Errorf("unexpected holes: %v", holes)
	}

	// resolving positions
	tests := []struct {
		start, length int
		i, pos        int
		crosses       bool
	}{
		{1, 10, 0, 1, false},
		{291, 10, 0, 291, false},
		{295, 10, 0, 295, true},
		{301, 10, 1, 1, false},
		{500, 1, 1, 200, false},
		{501, 1, -1, 0, false},
		{0, 1, -1, 0, false},
	}
	for _, test := range tests {
		i, pos, crosses := idx.Resolve(test.start, test.length)
		if i != test.i || pos != test.pos || crosses != test.crosses {
			t.Errorf("Resolve(%d, %d): %d, %d, %v; expected %d, %d, %v",
				test.start, test.length, i, pos, crosses, test.i, test.pos, test.crosses)
		}
	}

	// ambiguous bases
	if !idx.HasAmbiguity(95, 101) || !idx.HasAmbiguity(105, 110) || !idx.HasAmbiguity(102, 103) {
		t.Errorf("regions overlapping with N should be ambiguous")
	}
	if idx.HasAmbiguity(90, 100) || idx.HasAmbiguity(106, 120) {
		t.Errorf("regions next to N should not be ambiguous")
	}

	// subsequences
	s, err := idx.SubSeq(96, 110)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(s, seqs[0][95:110]) {
		t.Errorf("SubSeq: %s, expected %s", s, seqs[0][95:110])
	}
	s, err = idx.SubSeq(290, 310)
	if err != nil {
		t.Fatal(err)
	}
	expected := append(append([]byte{}, seqs[0][289:]...), seqs[1][:10]...)
	if !bytes.Equal(s, expected) {
		t.Errorf("SubSeq: %s, expected %s", s, expected)
	}
	if _, err = idx.SubSeq(10, 501); err == nil {
		t.Errorf("regions out of range should be rejected")
	}
}

func TestLocateExact(t *testing.T) {
	prefix := "test_locate"
	defer removeTestIndex(prefix)

	_, idx := buildTestIndex(t, prefix)
	defer idx.Close()

	// the reference with N replaced
	rdr, err := twobit.NewReader(prefix + ExtPac)
	if err != nil {
		t.Fatal(err)
	}
	text, err := rdr.SubSeq(0, idx.Info.Length-1)
	rdr.Close()
	if err != nil {
		t.Fatal(err)
	}
	for i := 100; i < 105; i++ {
		if text[i] == 'N' {
			t.Fatalf("N should be replaced in the packed reference")
		}
	}

	r := rand.New(rand.NewSource(2))
	for i := 0; i < 300; i++ {
		var pattern []byte
		size := 1 + r.Intn(12)
		if i%3 == 0 {
			pattern = randSeq(r, size)
		} else {
			start := r.Intn(len(text) - size)
			pattern = text[start : start+size]
		}

		expected := naiveLocate(text, pattern)
		locs := idx.LocateExact(pattern)
		if !equalInts(locs, expected) {
			t.Fatalf("LocateExact(%s): %v, expected %v", pattern, locs, expected)
		}
		locs = idx.LocateExactReverse(pattern)
		if !equalInts(locs, expected) {
			t.Fatalf("LocateExactReverse(%s): %v, expected %v", pattern, locs, expected)
		}
	}

	if locs := idx.LocateExact([]byte("ACGNT")); locs != nil {
		t.Errorf("patterns with N should not match")
	}
}

func TestIndexAlign(t *testing.T) {
	prefix := "test_align"
	defer removeTestIndex(prefix)

	seqs, idx := buildTestIndex(t, prefix)
	defer idx.Close()

	aligner, err := idx.NewAligner(nil)
	if err != nil {
		t.Fatal(err)
	}

	read := append([]byte{}, seqs[1][50:80]...)
	for _, b := range []byte("ACGT") {
		if b != read[10] {
			read[10] = b
			break
		}
	}

	aln, _, err := aligner.AlignSeq(read)
	if err != nil {
		t.Fatal(err)
	}
	if aln == nil {
		t.Fatalf("no alignment")
	}
	i, pos, crosses := idx.Resolve(aln.Start, aln.RefLength())
	if i != 1 || pos != 51 || crosses || aln.NegativeStrand || aln.Mismatches != 1 {
		t.Errorf("unexpected alignment: %s, contig %d, pos %d", aln, i, pos)
	}
}

func TestBuildErrors(t *testing.T) {
	if err := Build("test_none", nil, nil); err != ErrNoInputFiles {
		t.Errorf("expected ErrNoInputFiles, got %v", err)
	}

	opt := DefaultBuildOptions
	opt.KmerCacheK = 20
	if err := Build("test_none", []string{"x.fa"}, &opt); err == nil {
		t.Errorf("invalid options should be rejected")
	}

	if _, err := NewFromPrefix("test_none", 1); err == nil {
		t.Errorf("missing index files should be reported")
	}
}
