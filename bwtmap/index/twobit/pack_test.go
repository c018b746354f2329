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

package twobit

import (
	"math/rand"
	"os"
	"testing"
)

func TestPackUnpack(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for n := 0; n < 70; n++ {
		codes := make([]byte, n)
		for i := range codes {
			codes[i] = byte(r.Intn(4))
		}

		packed := Pack(codes)
		if len(packed) != (n+3)/4 {
			t.Errorf("n=%d: unexpected packed length: %d", n, len(packed))
			continue
		}

		codes2, err := Unpack(packed, n)
		if err != nil {
			t.Errorf("n=%d: %s", n, err)
			continue
		}
		for i := range codes {
			if codes[i] != codes2[i] {
				t.Errorf("n=%d: code #%d unmatched: %d vs %d", n, i, codes[i], codes2[i])
				break
			}
		}
	}

	if _, err := Unpack([]byte{0, 0}, 3); err != ErrInvalidTwoBitData {
		t.Errorf("expected ErrInvalidTwoBitData, got: %v", err)
	}
}

func TestReaderSubSeq(t *testing.T) {
	s := []byte("ACGTTGCAAACCCGGGTTTACGTAGCTAGCTAGGATCGATCGA")
	codes := make([]byte, len(s))
	for i, b := range s {
		switch b {
		case 'C':
			codes[i] = 1
		case 'G':
			codes[i] = 2
		case 'T':
			codes[i] = 3
		}
	}

	file := "test.pac"
	if err := Write(file, codes); err != nil {
		t.Error(err)
		return
	}
	defer func() {
		if os.RemoveAll(file) != nil {
			t.Errorf("failed to remove the file: %s", file)
		}
	}()

	rdr, err := NewReader(file)
	if err != nil {
		t.Error(err)
		return
	}
	defer rdr.Close()

	if rdr.Bases() != len(s) {
		t.Errorf("unexpected number of bases: %d, expected: %d", rdr.Bases(), len(s))
	}

	for start := 0; start < len(s); start++ {
		for end := start; end < len(s); end++ {
			sub, err := rdr.SubSeq(start, end)
			if err != nil {
				t.Errorf("[%d, %d]: %s", start, end, err)
				return
			}
			if string(sub) != string(s[start:end+1]) {
				t.Errorf("[%d, %d]: %s, expected: %s", start, end, sub, s[start:end+1])
				return
			}
		}
	}

	if _, err = rdr.SubSeq(10, 5); err == nil {
		t.Errorf("invalid range should return an error")
	}
}

func TestReaderInvalidFile(t *testing.T) {
	file := "test.invalid.pac"
	if err := os.WriteFile(file, []byte("not a pack file, really not"), 0644); err != nil {
		t.Error(err)
		return
	}
	defer os.RemoveAll(file)

	if _, err := NewReader(file); err != ErrInvalidFileFormat {
		t.Errorf("expected ErrInvalidFileFormat, got: %v", err)
	}
}
