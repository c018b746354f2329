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
	"strconv"
	"strings"
)

// State is the classification of one step of an alignment.
type State uint8

const (
	Match     State = iota // read base equals the reference base
	Mismatch               // substitution
	Insertion              // read base absent from the reference
	Deletion               // reference base absent from the read
)

// Aligned tells whether the state consumes both a read base and a reference base.
func (s State) Aligned() bool {
	return s == Match || s == Mismatch
}

// Symbol returns the extended CIGAR operation of the state.
func (s State) Symbol() byte {
	switch s {
	case Match:
		return '='
	case Mismatch:
		return 'X'
	case Insertion:
		return 'I'
	case Deletion:
		return 'D'
	}
	return '?'
}

func (s State) String() string {
	switch s {
	case Match:
		return "match"
	case Mismatch:
		return "mismatch"
	case Insertion:
		return "insertion"
	case Deletion:
		return "deletion"
	}
	return "unknown"
}

// Run is a run of steps with the same state.
type Run struct {
	State State
	Len   int
}

// Trace is a persistent run-length list of alignment states.
//
// A Trace is never modified after creation. Append returns a new head that
// shares the rest of the list, so search nodes branching from the same
// parent reuse its runs. The head holds the most recently appended run.
// A nil *Trace is an empty trace.
type Trace struct {
	prev  *Trace
	state State
	run   int
	total int // steps in the whole list
}

// Append returns a trace with one more step of the given state.
func (t *Trace) Append(s State) *Trace {
	if t == nil {
		return &Trace{state: s, run: 1, total: 1}
	}
	if t.state == s {
		return &Trace{prev: t.prev, state: s, run: t.run + 1, total: t.total + 1}
	}
	return &Trace{prev: t, state: s, run: 1, total: t.total + 1}
}

// Len returns the number of steps.
func (t *Trace) Len() int {
	if t == nil {
		return 0
	}
	return t.total
}

// Count returns the number of steps of the given state.
func (t *Trace) Count(s State) int {
	var n int
	for ; t != nil; t = t.prev {
		if t.state == s {
			n += t.run
		}
	}
	return n
}

// Runs returns the runs from the head to the first appended one.
// In backward search, the head is the leftmost part of the alignment,
// so the runs are in reference order.
func (t *Trace) Runs() []Run {
	var runs []Run
	for ; t != nil; t = t.prev {
		runs = append(runs, Run{State: t.state, Len: t.run})
	}
	return runs
}

// String returns the trace in the extended CIGAR format, e.g., 12=1X7=.
// An empty trace returns "*".
func (t *Trace) String() string {
	if t == nil {
		return "*"
	}
	var b strings.Builder
	for ; t != nil; t = t.prev {
		b.WriteString(strconv.Itoa(t.run))
		b.WriteByte(t.state.Symbol())
	}
	return b.String()
}
