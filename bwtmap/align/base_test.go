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
	"bytes"
	"testing"
)

func TestEncodeBases(t *testing.T) {
	bases := EncodeBases([]byte("ACGTacgtNnRY-"))
	expected := []Base{A, C, G, T, A, C, G, T, N, N, N, N, N}
	for i, b := range bases {
		if b != expected[i] {
			t.Errorf("base %d: %s, expected %s", i, b, expected[i])
		}
	}

	if s := DecodeBases(bases); !bytes.Equal(s, []byte("ACGTACGTNNNNN")) {
		t.Errorf("unexpected decoded bases: %s", s)
	}
}

func TestReverseComplement(t *testing.T) {
	tests := []struct {
		seq string
		rc  string
	}{
		{"", ""},
		{"A", "T"},
		{"ACGT", "ACGT"},
		{"AACNG", "CNGTT"},
		{"GATTACA", "TGTAATC"},
	}
	for _, test := range tests {
		rc := DecodeBases(ReverseComplement(EncodeBases([]byte(test.seq))))
		if string(rc) != test.rc {
			t.Errorf("%s: %s, expected %s", test.seq, rc, test.rc)
		}
	}

	if N.Complement() != N {
		t.Errorf("N should stay N")
	}
}
