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

package util

import (
	"math/rand"
	"testing"
)

func TestGroupVarint(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	tests := [][2]uint64{
		{0, 0},
		{255, 256},
		{1<<64 - 1, 1},
		{1 << 56, 1<<56 - 1},
	}
	for i := 0; i < 2000; i++ {
		tests = append(tests,
			[2]uint64{r.Uint64(), r.Uint64()},
			[2]uint64{uint64(r.Uint32()), uint64(r.Intn(256))},
			[2]uint64{uint64(r.Intn(65536)), uint64(r.Intn(1 << 24))},
		)
	}

	buf := make([]byte, 16)
	var ctrl byte
	var n, n2 int
	var v1, v2 uint64
	for i, test := range tests {
		ctrl, n = PutUint64s(buf, test[0], test[1])
		if CtrlByte2ByteLengthsUint64(ctrl) != n {
			t.Errorf("#%d, wrong byte length: %d vs %d", i, CtrlByte2ByteLengthsUint64(ctrl), n)
		}

		v1, v2, n2 = Uint64s(ctrl, buf[:n])
		if n2 != n {
			t.Errorf("#%d, wrong decoded length: %d, expected: %d", i, n2, n)
		}
		if v1 != test[0] || v2 != test[1] {
			t.Errorf("#%d, wrong decoded result: %d, %d, answer: %d, %d", i, v1, v2, test[0], test[1])
		}
	}

	_, _, n2 = Uint64s(0xff, buf[:3])
	if n2 != 0 {
		t.Errorf("short buffer should not be decoded")
	}
}

func TestByteLengthUint64(t *testing.T) {
	tests := []struct {
		v uint64
		n uint8
	}{
		{0, 1}, {255, 1}, {256, 2}, {65535, 2}, {65536, 3},
		{1<<32 - 1, 4}, {1 << 32, 5}, {1<<56 - 1, 7}, {1 << 56, 8}, {1<<64 - 1, 8},
	}
	for _, test := range tests {
		if n := ByteLengthUint64(test.v); n != test.n {
			t.Errorf("ByteLengthUint64(%d) = %d, expected %d", test.v, n, test.n)
		}
	}
}

func TestUniqInts(t *testing.T) {
	list := []int{5, 1, 3, 1, 5, 9, 3}
	UniqInts(&list)
	expected := []int{1, 3, 5, 9}
	if len(list) != len(expected) {
		t.Fatalf("unexpected result: %v", list)
	}
	for i, v := range expected {
		if list[i] != v {
			t.Errorf("unexpected result: %v", list)
			break
		}
	}

	s := ReverseBytes([]byte("ACGTT"))
	if string(s) != "TTGCA" {
		t.Errorf("unexpected reversed bytes: %s", s)
	}
}
