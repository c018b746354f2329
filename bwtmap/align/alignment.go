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

import "fmt"

// Alignment is the best placement of a read.
// It is created once by an Aligner and not modified after that.
type Alignment struct {
	Start          int  // 1-based offset in the reference
	NegativeStrand bool // the reverse complement of the read is aligned

	Mismatches    int
	GapOpens      int
	GapExtensions int
	Score         int

	Hits   int // number of reference locations sharing this placement
	Length int // read length

	Trace *Trace
}

// Strand returns '+' or '-'.
func (a *Alignment) Strand() byte {
	if a.NegativeStrand {
		return '-'
	}
	return '+'
}

// RefLength returns the number of reference bases covered.
func (a *Alignment) RefLength() int {
	return a.Length - a.Trace.Count(Insertion) + a.Trace.Count(Deletion)
}

// End returns the 1-based end position in the reference.
func (a *Alignment) End() int {
	return a.Start + a.RefLength() - 1
}

func (a *Alignment) String() string {
	return fmt.Sprintf("%d%c mismatches=%d gapOpens=%d gapExtensions=%d score=%d hits=%d trace=%s",
		a.Start, a.Strand(), a.Mismatches, a.GapOpens, a.GapExtensions, a.Score, a.Hits, a.Trace)
}
