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
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/shenwei356/BWTMap/bwtmap/align"
	"github.com/shenwei356/BWTMap/bwtmap/index/bwt"
	"github.com/shenwei356/BWTMap/bwtmap/index/twobit"
	"github.com/shenwei356/util/pathutil"
	"github.com/twotwotwo/sorts/sortutil"
)

// File extensions of an index.
const (
	ExtBWT    = ".bwt"  // BWT of the reference
	ExtSA     = ".sa"   // sampled suffix array of the reference
	ExtRevBWT = ".rbwt" // BWT of the reversed reference
	ExtRevSA  = ".rsa"  // sampled suffix array of the reversed reference
	ExtPac    = ".pac"  // 2-bit packed reference
	ExtAnn    = ".ann"  // metadata and contigs
	ExtAmb    = ".amb"  // runs of ambiguous bases
)

// Exts are all the file extensions of an index.
var Exts = []string{ExtBWT, ExtSA, ExtRevBWT, ExtRevSA, ExtPac, ExtAnn, ExtAmb}

// ErrVersionMismatch means version mismatch between files and program
var ErrVersionMismatch = errors.New("index: version mismatch")

// ErrBrokenIndex means the index files are not consistent.
var ErrBrokenIndex = errors.New("index: broken index")

// ErrNoInputFiles means no reference files are given.
var ErrNoInputFiles = errors.New("index: no input files")

// ErrEmptyReference means no bases in the reference files.
var ErrEmptyReference = errors.New("index: no valid sequences in input files")

// Strands could be used to output strand for a reverse complement flag
var Strands = [2]byte{'+', '-'}

// Index is a loaded reference index.
// It is safe for concurrent use.
type Index struct {
	prefix string

	Info *Info

	Forward   *bwt.BWT
	ForwardSA *bwt.SuffixArray
	Reverse   *bwt.BWT
	ReverseSA *bwt.SuffixArray

	cache *bwt.KmerCache // of the forward BWT, optional

	holes *holeTree

	// reader pool of the packed reference
	pacReaders chan *twobit.Reader
}

// CheckFiles checks if all index files with the prefix exist.
func CheckFiles(prefix string) error {
	for _, ext := range Exts {
		ok, err := pathutil.Exists(prefix + ext)
		if err != nil {
			return errors.Wrapf(err, "check index file: %s", prefix+ext)
		}
		if !ok {
			return fmt.Errorf("index file not found: %s", prefix+ext)
		}
	}
	return nil
}

// NewFromPrefix loads an index. threads is the number of
// readers of the packed reference, i.e., concurrent SubSeq calls.
func NewFromPrefix(prefix string, threads int) (*Index, error) {
	if err := CheckFiles(prefix); err != nil {
		return nil, err
	}
	if threads < 1 {
		threads = 1
	}

	info, err := readInfo(prefix + ExtAnn)
	if err != nil {
		return nil, err
	}

	idx := &Index{prefix: prefix, Info: info}

	// forward and reverse indexes
	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		idx.Forward, idx.ForwardSA, errs[0] = loadBWT(prefix+ExtBWT, prefix+ExtSA)
	}()
	go func() {
		defer wg.Done()
		idx.Reverse, idx.ReverseSA, errs[1] = loadBWT(prefix+ExtRevBWT, prefix+ExtRevSA)
	}()

	holes, err := readHoles(prefix + ExtAmb)
	if err != nil {
		wg.Wait()
		return nil, err
	}
	idx.holes, err = newHoleTree(holes)
	if err != nil {
		wg.Wait()
		return nil, errors.Wrap(err, "index ambiguous bases")
	}

	wg.Wait()
	for _, err = range errs {
		if err != nil {
			return nil, err
		}
	}

	if idx.Forward.TextLength() != info.Length || idx.Reverse.TextLength() != info.Length {
		return nil, errors.Wrapf(ErrBrokenIndex, "reference length: %d, BWT lengths: %d and %d",
			info.Length, idx.Forward.TextLength(), idx.Reverse.TextLength())
	}

	if info.KmerCacheK > 0 {
		idx.cache, err = bwt.NewKmerCache(idx.Forward, info.KmerCacheK)
		if err != nil {
			return nil, err
		}
	}

	idx.pacReaders = make(chan *twobit.Reader, threads)
	var rdr *twobit.Reader
	for i := 0; i < threads; i++ {
		rdr, err = twobit.NewReader(prefix + ExtPac)
		if err != nil {
			idx.Close()
			return nil, errors.Wrapf(err, "open %s", prefix+ExtPac)
		}
		if rdr.Bases() != info.Length {
			rdr.Close()
			idx.Close()
			return nil, errors.Wrapf(ErrBrokenIndex, "%d bases in %s", rdr.Bases(), prefix+ExtPac)
		}
		idx.pacReaders <- rdr
	}

	return idx, nil
}

func loadBWT(fileBWT, fileSA string) (*bwt.BWT, *bwt.SuffixArray, error) {
	b, err := bwt.NewFromFile(fileBWT)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "read %s", fileBWT)
	}
	s, err := bwt.NewSuffixArrayFromFile(fileSA, b)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "read %s", fileSA)
	}
	return b, s, nil
}

// Close closes the readers of the packed reference.
func (idx *Index) Close() error {
	if idx.pacReaders == nil {
		return nil
	}
	var err, err1 error
	close(idx.pacReaders)
	for rdr := range idx.pacReaders {
		if err1 = rdr.Close(); err1 != nil && err == nil {
			err = err1
		}
	}
	idx.pacReaders = nil
	return err
}

// Prefix returns the path prefix of the index files.
func (idx *Index) Prefix() string { return idx.prefix }

// Holes returns the runs of ambiguous bases.
func (idx *Index) Holes() []Hole { return idx.holes.holes }

// NewAligner creates an Aligner over the index.
func (idx *Index) NewAligner(opt *align.Options) (*align.Aligner, error) {
	return align.NewAligner(idx.Forward, idx.ForwardSA, idx.Reverse, opt)
}

// Resolve maps a placement of length bases at a 1-based global start
// to a contig and a 1-based position in it. crosses is true if the
// placement extends into the next contig. i is -1 for invalid positions.
func (idx *Index) Resolve(start, length int) (i int, pos int, crosses bool) {
	offset := start - 1
	if offset < 0 || offset >= idx.Info.Length || length < 0 {
		return -1, 0, false
	}

	contigs := idx.Info.Contigs
	i = sort.Search(len(contigs), func(j int) bool {
		return contigs[j].Offset+contigs[j].Length > offset
	})
	c := &contigs[i]
	return i, offset - c.Offset + 1, offset+length > c.Offset+c.Length
}

// HasAmbiguity tells if the 1-based region [start, end] overlaps with
// ambiguous bases, which are replaced with random bases in the index.
func (idx *Index) HasAmbiguity(start, end int) bool {
	return len(idx.holes.overlaps(start-1, end-1)) > 0
}

// SubSeq returns the reference bases of the 1-based region [start, end],
// with ambiguous bases restored.
func (idx *Index) SubSeq(start, end int) ([]byte, error) {
	if start < 1 || end > idx.Info.Length || start > end {
		return nil, fmt.Errorf("index: invalid region [%d, %d] of reference with %d bases", start, end, idx.Info.Length)
	}

	rdr := <-idx.pacReaders
	s, err := rdr.SubSeq(start-1, end-1)
	idx.pacReaders <- rdr
	if err != nil {
		return nil, err
	}

	var i, j int
	for _, h := range idx.holes.overlaps(start-1, end-1) {
		i, j = h.Offset-(start-1), h.End()-(start-1)
		if i < 0 {
			i = 0
		}
		if j >= len(s) {
			j = len(s) - 1
		}
		for ; i <= j; i++ {
			s[i] = h.Symbol
		}
	}
	return s, nil
}

var base2code [256]int8

func init() {
	for i := range base2code {
		base2code[i] = -1
	}
	for i, b := range []byte("ACGTacgt") {
		base2code[b] = int8(i & 3)
	}
}

// encode converts ASCII bases to 2-bit codes. ok is false
// if there are bases other than ACGT.
func encode(pattern []byte) (codes []byte, ok bool) {
	codes = make([]byte, len(pattern))
	var c int8
	for i, b := range pattern {
		if c = base2code[b]; c < 0 {
			return nil, false
		}
		codes[i] = byte(c)
	}
	return codes, true
}

// LocateExact returns sorted 1-based starts of all exact matches of a pattern.
// Patterns with bases other than ACGT do not match.
func (idx *Index) LocateExact(pattern []byte) []int {
	codes, ok := encode(pattern)
	if !ok || len(codes) == 0 {
		return nil
	}

	var lo, hi int
	i := len(codes)
	if idx.cache != nil && len(codes) >= idx.cache.K() {
		i -= idx.cache.K()
		lo, hi, _ = idx.cache.LookupCodes(codes[i:])
	} else {
		lo, hi = 0, idx.Forward.Length()-1
	}
	for i--; i >= 0 && lo <= hi; i-- {
		lo, hi = idx.Forward.BackwardStep(codes[i], lo, hi)
	}
	if lo > hi {
		return nil
	}

	locs := idx.ForwardSA.Locate(lo, hi)
	for j := range locs {
		locs[j]++
	}
	sortutil.Ints(locs)
	return locs
}

// LocateExactReverse is LocateExact with the index of the reversed reference.
// The results should be the same.
func (idx *Index) LocateExactReverse(pattern []byte) []int {
	codes, ok := encode(pattern)
	if !ok || len(codes) == 0 {
		return nil
	}

	// search the reversed pattern in the reversed reference,
	// i.e., the pattern from left to right
	lo, hi := 0, idx.Reverse.Length()-1
	for _, c := range codes {
		lo, hi = idx.Reverse.BackwardStep(c, lo, hi)
		if lo > hi {
			return nil
		}
	}

	n := idx.Info.Length
	locs := idx.ReverseSA.Locate(lo, hi)
	for j, p := range locs {
		locs[j] = n - p - len(codes) + 1
	}
	sortutil.Ints(locs)
	return locs
}
