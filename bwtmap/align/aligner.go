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

package align

import (
	"errors"
	"fmt"
)

// ErrEmptyRead means the read has no bases.
var ErrEmptyRead = errors.New("align: empty read")

// ErrBoundsMismatch means the lower-bound table does not belong to the read.
var ErrBoundsMismatch = errors.New("align: size of lower-bound table does not match read length")

// ErrNilIndex means a required index is missing.
var ErrNilIndex = errors.New("align: nil index")

// Options contains the scoring and the limits of the search.
// The names follow the options of BWA aln.
type Options struct {
	MismatchPenalty     int // -M
	GapOpenPenalty      int // -O
	GapExtensionPenalty int // -E

	MaxEditDistance  int // -n
	MaxGapOpens      int // -o
	MaxGapExtensions int // -e

	// Resource limits of one search, 0 for no limit.
	// Reaching any of them ends the search without an alignment.
	MaxFrontier   int // nodes waiting in the frontier
	MaxExpansions int // nodes taken from the frontier

	// DisableLowerBound turns off pruning with the lower-bound table,
	// which makes the search exhaustive within MaxEditDistance.
	DisableLowerBound bool
}

// DefaultOptions is the default Options.
var DefaultOptions = Options{
	MismatchPenalty:     3,
	GapOpenPenalty:      11,
	GapExtensionPenalty: 4,

	MaxEditDistance:  4,
	MaxGapOpens:      1,
	MaxGapExtensions: 6,

	MaxFrontier:   1 << 20,
	MaxExpansions: 1 << 22,
}

// Validate checks the values.
func (o *Options) Validate() error {
	if o.MismatchPenalty < 0 || o.GapOpenPenalty < 0 || o.GapExtensionPenalty < 0 {
		return fmt.Errorf("align: penalties should be non-negative")
	}
	if o.MaxEditDistance < 0 || o.MaxGapOpens < 0 || o.MaxGapExtensions < 0 {
		return fmt.Errorf("align: maximum differences should be non-negative")
	}
	if o.MaxFrontier < 0 || o.MaxExpansions < 0 {
		return fmt.Errorf("align: search limits should be non-negative")
	}
	return nil
}

// Score computes the penalty of a set of differences.
func (o *Options) Score(mismatches, gapOpens, gapExtensions int) int {
	return mismatches*o.MismatchPenalty +
		gapOpens*o.GapOpenPenalty +
		gapExtensions*o.GapExtensionPenalty
}

// Stats records what a search did.
type Stats struct {
	Expanded int // nodes taken from the frontier
	Pushed   int // nodes added to the frontier, seeds included
	Pruned   int // nodes dropped by the bound or the edit distance

	BudgetExceeded bool // a resource limit ended the search
}

// Aligner finds the best inexact placement of reads with a best-first
// branch-and-bound search over a BWT index.
//
// Only substitutions are generated during expansion, gap counts stay zero.
// An Aligner is immutable, and it is safe to call its methods concurrently.
type Aligner struct {
	opt Options

	forward IndexView   // index of the reference, for the search
	sa      SuffixArray // suffix array of the forward index
	reverse IndexView   // index of the reversed reference, for lower bounds
}

// NewAligner creates an Aligner. opt == nil means DefaultOptions.
func NewAligner(forward IndexView, sa SuffixArray, reverse IndexView, opt *Options) (*Aligner, error) {
	if forward == nil || sa == nil || reverse == nil {
		return nil, ErrNilIndex
	}
	if opt == nil {
		opt = &DefaultOptions
	}
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	return &Aligner{opt: *opt, forward: forward, sa: sa, reverse: reverse}, nil
}

// Options returns a copy of the options.
func (a *Aligner) Options() Options {
	return a.opt
}

// LowerBounds computes the lower-bound table of a read.
func (a *Aligner) LowerBounds(read []Base) []LowerBound {
	return BuildLowerBounds(read, a.reverse)
}

// Align searches one orientation of a read, with its lower-bound table.
// A nil Alignment without error means no alignment within the limits.
func (a *Aligner) Align(read []Base, bounds []LowerBound) (*Alignment, error) {
	aln, _, err := a.AlignWithStats(read, bounds)
	return aln, err
}

// AlignWithStats is Align, also returning the statistics of the search.
func (a *Aligner) AlignWithStats(read []Base, bounds []LowerBound) (*Alignment, *Stats, error) {
	if len(read) == 0 {
		return nil, nil, ErrEmptyRead
	}
	if len(bounds) != len(read) {
		return nil, nil, ErrBoundsMismatch
	}

	s := a.newSearch([]query{{read: read, bounds: bounds}})
	aln := s.run()
	return aln, &s.stats, nil
}

// AlignSeq aligns a read given as ASCII bases, searching the read and its
// reverse complement in one frontier. The best alignment of both strands
// is returned, nil if there is none.
func (a *Aligner) AlignSeq(seq []byte) (*Alignment, *Stats, error) {
	if len(seq) == 0 {
		return nil, nil, ErrEmptyRead
	}

	read := EncodeBases(seq)
	rc := ReverseComplement(read)

	s := a.newSearch([]query{
		{read: read, bounds: a.LowerBounds(read)},
		{read: rc, bounds: a.LowerBounds(rc), negative: true},
	})
	aln := s.run()
	return aln, &s.stats, nil
}

// query is one orientation of a read.
type query struct {
	read     []Base
	bounds   []LowerBound
	negative bool
}

// search holds the state of one invocation.
type search struct {
	a       *Aligner
	queries []query

	frontier frontier
	seq      uint64 // sequence number of the next node

	stats Stats
}

func (a *Aligner) newSearch(queries []query) *search {
	return &search{
		a:        a,
		queries:  queries,
		frontier: frontier{nodes: make([]*node, 0, 64)},
	}
}

func (s *search) push(n *node) {
	n.seq = s.seq
	s.seq++
	s.frontier.push(n)
	s.stats.Pushed++
}

func (s *search) run() *Alignment {
	opt := &s.a.opt

	for i, q := range s.queries {
		s.push(&node{
			position: len(q.read),
			lo:       0,
			hi:       s.a.forward.Length(),
			strand:   i,
		})
	}

	var n *node
	var q *query
	for s.frontier.Len() > 0 {
		if opt.MaxExpansions > 0 && s.stats.Expanded >= opt.MaxExpansions {
			s.stats.BudgetExceeded = true
			return nil
		}

		n = s.frontier.pop()
		s.stats.Expanded++
		q = &s.queries[n.strand]

		if n.diffs() > opt.MaxEditDistance {
			s.stats.Pruned++
			continue
		}

		// the frontier pops in ascending score and scores never decrease
		// along a path, so the first complete node is optimal.
		if n.position == 0 {
			return s.alignment(n, q)
		}

		// the bases left need at least this many more differences
		if !opt.DisableLowerBound && n.diffs()+q.bounds[n.position-1].Value > opt.MaxEditDistance {
			s.stats.Pruned++
			continue
		}

		s.expand(n, q)

		if opt.MaxFrontier > 0 && s.frontier.Len() > opt.MaxFrontier {
			s.stats.BudgetExceeded = true
			return nil
		}
	}

	return nil
}

// expand places the next read base against each of the four bases.
func (s *search) expand(n *node, q *query) {
	opt := &s.a.opt
	target := q.read[n.position-1]

	var lo, hi, mismatches int
	var state State
	for b := A; b <= T; b++ {
		lo, hi = BackwardStep(s.a.forward, b, n.lo, n.hi)
		if lo > hi { // absent from the reference
			continue
		}

		mismatches, state = n.mismatches, Match
		if b != target {
			mismatches++
			state = Mismatch
		}
		if mismatches+n.gapOpens+n.gapExtensions > opt.MaxEditDistance {
			s.stats.Pruned++
			continue
		}

		s.push(&node{
			position:      n.position - 1,
			lo:            lo,
			hi:            hi,
			mismatches:    mismatches,
			gapOpens:      n.gapOpens,
			gapExtensions: n.gapExtensions,
			score:         opt.Score(mismatches, n.gapOpens, n.gapExtensions),
			strand:        n.strand,
			trace:         n.trace.Append(state),
		})
	}
}

func (s *search) alignment(n *node, q *query) *Alignment {
	return &Alignment{
		Start:          s.a.sa.Get(n.lo) + 1,
		NegativeStrand: q.negative,

		Mismatches:    n.mismatches,
		GapOpens:      n.gapOpens,
		GapExtensions: n.gapExtensions,
		Score:         n.score,

		Hits:   n.hi - n.lo + 1,
		Length: len(q.read),

		Trace: n.trace,
	}
}
