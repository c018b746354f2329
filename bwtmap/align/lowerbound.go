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

// LowerBound is one entry of the lower-bound table.
//
// Value is the number of times the interval had to be reset while scanning
// the read. It is an admissible lower bound on the number of differences
// needed to place the corresponding read prefix anywhere in the reference.
type LowerBound struct {
	Lo    int // interval in the reverse index after this position
	Hi    int
	Value int
}

// BuildLowerBounds computes the lower-bound table of a read with the index
// of the reversed reference. Entry i bounds read[0..i], which is exactly the
// part still unplaced when the backward search over the forward index
// stands at position i+1.
//
// Prepending bases to a string of the reversed reference is the same as
// appending them in the reference, so a single left-to-right pass finds a
// greedy partition of the read into pieces absent from the reference.
// Each piece costs at least one difference.
func BuildLowerBounds(read []Base, reverse IndexView) []LowerBound {
	bounds := make([]LowerBound, len(read))

	n := reverse.Length()
	lo, hi := 0, n
	var z int
	for i, b := range read {
		lo, hi = BackwardStep(reverse, b, lo, hi)
		if lo > hi {
			lo, hi = 0, n
			z++
		}
		bounds[i] = LowerBound{Lo: lo, Hi: hi, Value: z}
	}
	return bounds
}
