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
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

var be = binary.BigEndian

// Magic number for checking file format
var Magic = [8]byte{'b', 'w', 't', 'm', 'p', 'a', 'c', 'k'}

// MainVersion is use for checking compatibility
var MainVersion uint8 = 0

// MinorVersion is less important
var MinorVersion uint8 = 1

// BufferSize is size of reading and writing buffer
var BufferSize = 65536

// ErrInvalidFileFormat means invalid file format.
var ErrInvalidFileFormat = errors.New("2bit pack: invalid binary format")

// ErrBrokenFile means the file is not complete.
var ErrBrokenFile = errors.New("2bit pack: broken file")

// ErrVersionMismatch means version mismatch between files and program
var ErrVersionMismatch = errors.New("2bit pack: version mismatch")

// ErrInvalidTwoBitData means the length of two bit data does not match the number of bases
var ErrInvalidTwoBitData = errors.New("2bit pack: invalid two-bit data")

// the header: magic number, versions, number of bases
const headerSize = 24

// Pack packs 2-bit codes (0-3, higher bits are ignored) into bytes,
// 4 codes per byte, the first code in the highest two bits.
func Pack(codes []byte) []byte {
	packed := make([]byte, (len(codes)+3)>>2)
	var shift uint
	for i, c := range codes {
		shift = uint(3-i&3) << 1
		packed[i>>2] |= (c & 3) << shift
	}
	return packed
}

// Unpack restores n 2-bit codes from packed bytes.
func Unpack(packed []byte, n int) ([]byte, error) {
	// possible bases for n bytes: [n*4-3, n*4]
	if n < 0 || n > len(packed)<<2 || n < (len(packed)<<2)-3 {
		return nil, ErrInvalidTwoBitData
	}
	codes := make([]byte, n)
	unpackTo(codes, packed, 0)
	return codes, nil
}

// unpackTo fills codes from packed data, where codes[0] is the
// (skip)th code of packed.
func unpackTo(codes []byte, packed []byte, skip int) {
	var j int
	for i := range codes {
		j = i + skip
		codes[i] = packed[j>>2] >> (uint(3-j&3) << 1) & 3
	}
}

// Write saves 2-bit codes of a whole sequence to a file.
//
// Header (24 bytes):
//
//	Magic number, 8 bytes, bwtmpack
//	Main and minor versions, 2 bytes
//	Blank, 6 bytes
//	Number of bases: 8 bytes
//
// Data: 2-bit packed bases, 4 bases per byte.
func Write(file string, codes []byte) error {
	fh, err := os.Create(file)
	if err != nil {
		return err
	}
	w := bufio.NewWriterSize(fh, BufferSize)

	buf := make([]byte, headerSize)
	copy(buf[:8], Magic[:])
	buf[8] = MainVersion
	buf[9] = MinorVersion
	be.PutUint64(buf[16:24], uint64(len(codes)))
	if _, err = w.Write(buf); err != nil {
		fh.Close()
		return err
	}

	if _, err = w.Write(Pack(codes)); err != nil {
		fh.Close()
		return err
	}

	if err = w.Flush(); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}

// Reader is for extracting subsequences from a packed file.
// It is not safe for concurrent use.
type Reader struct {
	fh    *os.File
	bases int

	buf []byte
}

// NewReader returns a reader from a file.
func NewReader(file string) (*Reader, error) {
	fh, err := os.Open(file)
	if err != nil {
		return nil, err
	}

	r := &Reader{fh: fh, buf: make([]byte, headerSize)}

	n, err := io.ReadFull(fh, r.buf)
	if err != nil {
		fh.Close()
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return nil, ErrBrokenFile
		}
		return nil, err
	}
	if n < headerSize {
		fh.Close()
		return nil, ErrBrokenFile
	}
	if [8]byte(r.buf[:8]) != Magic {
		fh.Close()
		return nil, ErrInvalidFileFormat
	}
	if r.buf[8] != MainVersion {
		fh.Close()
		return nil, ErrVersionMismatch
	}
	r.bases = int(be.Uint64(r.buf[16:24]))

	return r, nil
}

// Bases returns the number of bases in the file.
func (r *Reader) Bases() int {
	return r.bases
}

// Close the file handler.
func (r *Reader) Close() error {
	return r.fh.Close()
}

var bit2base = [4]byte{'A', 'C', 'G', 'T'}

// SubSeq returns the bases from start to end (both 0-based and included).
// Positions out of range are trimmed.
func (r *Reader) SubSeq(start int, end int) ([]byte, error) {
	if start < 0 {
		start = 0
	}
	if end >= r.bases {
		end = r.bases - 1
	}
	if end < start {
		return nil, fmt.Errorf("2bit pack: invalid range: [%d, %d]", start, end)
	}

	_, err := r.fh.Seek(int64(headerSize+start>>2), io.SeekStart)
	if err != nil {
		return nil, err
	}

	nBytes := end>>2 - start>>2 + 1
	if nBytes > cap(r.buf) {
		r.buf = make([]byte, nBytes)
	}
	buf := r.buf[:nBytes]
	if _, err = io.ReadFull(r.fh, buf); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return nil, ErrBrokenFile
		}
		return nil, err
	}

	s := make([]byte, end-start+1)
	unpackTo(s, buf, start&3)
	for i, c := range s {
		s[i] = bit2base[c]
	}
	return s, nil
}
