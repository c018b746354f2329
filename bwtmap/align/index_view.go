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

// IndexView is a read-only accessor over a BWT index.
// Two instances are used in alignment, one built over the reference
// and the other one over the reversed reference.
//
// Rows are numbered from 0 to Length()-1, row 0 is the sentinel suffix.
type IndexView interface {
	// Length returns the number of rows, i.e., reference length + 1.
	Length() int

	// Counts returns the number of reference symbols
	// sorting strictly before base. The sentinel is not counted.
	Counts(base uint8) int

	// Occurrences returns the number of base in rows [0, pos] of the transform.
	// Occurrences(base, -1) == 0, and positions beyond the last row are clamped.
	Occurrences(base uint8, pos int) int
}

// SuffixArray maps a row of an IndexView to the 0-based reference offset
// of its suffix.
type SuffixArray interface {
	Get(row int) int
}

// BackwardStep prepends base to the string represented by interval [lo, hi]
// and returns the new interval. It is empty if newLo > newHi.
// N always results in an empty interval.
func BackwardStep(view IndexView, base Base, lo, hi int) (int, int) {
	if base > T {
		return 1, 0
	}
	b := uint8(base)
	c := view.Counts(b)
	return c + view.Occurrences(b, lo-1) + 1, c + view.Occurrences(b, hi)
}
