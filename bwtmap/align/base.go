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

// Base is a nucleotide code used in searching.
// A, C, G and T are 0-3, all other symbols are N.
type Base uint8

const (
	A Base = iota
	C
	G
	T
	N // any symbol other than A, C, G, T. It never matches.
)

// NumBases is the number of bases tried at each search step.
const NumBases = 4

var base2code [256]Base

var code2base = [5]byte{'A', 'C', 'G', 'T', 'N'}

func init() {
	for i := range base2code {
		base2code[i] = N
	}
	base2code['A'], base2code['a'] = A, A
	base2code['C'], base2code['c'] = C, C
	base2code['G'], base2code['g'] = G, G
	base2code['T'], base2code['t'] = T, T
}

// EncodeBase converts an ASCII symbol to a Base.
func EncodeBase(b byte) Base {
	return base2code[b]
}

// EncodeBases converts an ASCII sequence to Bases.
func EncodeBases(s []byte) []Base {
	bases := make([]Base, len(s))
	for i, b := range s {
		bases[i] = base2code[b]
	}
	return bases
}

// DecodeBases converts Bases back to upper-case ASCII symbols.
func DecodeBases(bases []Base) []byte {
	s := make([]byte, len(bases))
	for i, b := range bases {
		s[i] = b.Byte()
	}
	return s
}

// Byte returns the ASCII symbol of the base.
func (b Base) Byte() byte {
	if b > N {
		return 'N'
	}
	return code2base[b]
}

func (b Base) String() string {
	return string(b.Byte())
}

// Complement returns the complementary base, N for N.
func (b Base) Complement() Base {
	if b > T {
		return N
	}
	return T - b
}

// ReverseComplement returns the reverse complement of bases.
func ReverseComplement(bases []Base) []Base {
	rc := make([]Base, len(bases))
	n := len(bases) - 1
	for i, b := range bases {
		rc[n-i] = b.Complement()
	}
	return rc
}
