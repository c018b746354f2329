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

import "testing"

func TestTrace(t *testing.T) {
	var t0 *Trace
	if t0.String() != "*" || t0.Len() != 0 || t0.Runs() != nil {
		t.Errorf("nil trace should be empty")
	}

	t1 := t0.Append(Match).Append(Match)
	t2 := t1.Append(Mismatch)
	t3 := t1.Append(Match)
	t4 := t2.Append(Match).Append(Match).Append(Match)

	tests := []struct {
		trace      *Trace
		s          string
		n          int
		mismatches int
	}{
		{t1, "2=", 2, 0},
		{t2, "1X2=", 3, 1},
		{t3, "3=", 3, 0},
		{t4, "3=1X2=", 6, 1},
	}
	for i, test := range tests {
		if s := test.trace.String(); s != test.s {
			t.Errorf("#%d: %s, expected %s", i, s, test.s)
		}
		if test.trace.Len() != test.n {
			t.Errorf("#%d: length %d, expected %d", i, test.trace.Len(), test.n)
		}
		if c := test.trace.Count(Mismatch); c != test.mismatches {
			t.Errorf("#%d: %d mismatches, expected %d", i, c, test.mismatches)
		}
	}

	runs := t4.Runs()
	expected := []Run{{Match, 3}, {Mismatch, 1}, {Match, 2}}
	if len(runs) != len(expected) {
		t.Fatalf("runs: %v", runs)
	}
	for i, r := range runs {
		if r != expected[i] {
			t.Errorf("run %d: %v, expected %v", i, r, expected[i])
		}
	}
}

func TestStateSymbol(t *testing.T) {
	var s []byte
	for _, state := range []State{Match, Mismatch, Insertion, Deletion} {
		s = append(s, state.Symbol())
	}
	if string(s) != "=XID" {
		t.Errorf("unexpected symbols: %s", s)
	}
	if !Mismatch.Aligned() || Insertion.Aligned() {
		t.Errorf("wrong Aligned()")
	}
}
