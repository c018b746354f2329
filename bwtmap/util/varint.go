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

// Group varint for pairs of uint64s.
//
// A pair is stored as one control byte followed by 2-16 data bytes.
// The high 3 bits of the lower 6 bits in the control byte hold
// (byte length of v1) - 1, the low 3 bits hold (byte length of v2) - 1.
// Data bytes are big-endian and use the minimum number of bytes.

var offsetsUint64 = [8]uint8{56, 48, 40, 32, 24, 16, 8, 0}

// PutUint64s encodes two uint64s into buf (at least 16 bytes),
// and returns the control byte and the number of data bytes written.
func PutUint64s(buf []byte, v1, v2 uint64) (ctrl byte, n int) {
	blen := ByteLengthUint64(v1)
	ctrl = byte(blen-1) << 3
	n = putBigEndian(buf, v1, blen)

	blen = ByteLengthUint64(v2)
	ctrl |= byte(blen - 1)
	n += putBigEndian(buf[n:], v2, blen)
	return
}

func putBigEndian(buf []byte, v uint64, blen uint8) int {
	var n int
	for _, offset := range offsetsUint64[8-blen:] {
		buf[n] = byte(v >> offset)
		n++
	}
	return n
}

// Uint64s decodes a pair encoded by PutUint64s.
// n == 0 means buf is too short.
func Uint64s(ctrl byte, buf []byte) (v1, v2 uint64, n int) {
	blen1 := int(ctrl>>3&7) + 1
	blen2 := int(ctrl&7) + 1
	if len(buf) < blen1+blen2 {
		return 0, 0, 0
	}

	for _, b := range buf[:blen1] {
		v1 = v1<<8 | uint64(b)
	}
	for _, b := range buf[blen1 : blen1+blen2] {
		v2 = v2<<8 | uint64(b)
	}
	return v1, v2, blen1 + blen2
}

// CtrlByte2ByteLengthsUint64 returns the number of data bytes of a control byte.
func CtrlByte2ByteLengthsUint64(ctrl byte) int {
	return int(ctrl>>3&7+ctrl&7) + 2
}

// ByteLengthUint64 returns the minimum number of bytes to store an integer.
func ByteLengthUint64(v uint64) uint8 {
	var n uint8 = 1
	for v >>= 8; v > 0; v >>= 8 {
		n++
	}
	return n
}
