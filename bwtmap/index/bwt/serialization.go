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

package bwt

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"

	"github.com/shenwei356/BWTMap/bwtmap/index/twobit"
	"github.com/shenwei356/xopen"
)

var be = binary.BigEndian

// Magic number for checking file format
var Magic = [8]byte{'b', 'w', 't', 'm', 'a', 'p', 'B', 'W'}

// MagicSA is the magic number of sampled suffix array files.
var MagicSA = [8]byte{'b', 'w', 't', 'm', 'a', 'p', 'S', 'A'}

// MainVersion is use for checking compatibility
var MainVersion uint8 = 0

// MinorVersion is less important
var MinorVersion uint8 = 1

// ErrInvalidFileFormat means invalid file format.
var ErrInvalidFileFormat = errors.New("bwt: invalid binary format")

// ErrBrokenFile means the file is not complete.
var ErrBrokenFile = errors.New("bwt: broken file")

// ErrVersionMismatch means version mismatch between files and program
var ErrVersionMismatch = errors.New("bwt: version mismatch")

// NewFromFile reads a BWT from a file.
func NewFromFile(file string) (*BWT, error) {
	fh, err := xopen.Ropen(file)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	return Read(fh)
}

// WriteToFile writes the BWT to a file.
func (b *BWT) WriteToFile(file string) (int, error) {
	outfh, err := xopen.Wopen(file)
	if err != nil {
		return 0, err
	}
	defer outfh.Close()

	return b.Write(outfh)
}

// Write writes the BWT to a writer.
//
// Header (48 bytes):
//
//	Magic number, 8 bytes, bwtmapBW
//	Main and minor versions, 2 bytes
//	Blank, 6 bytes
//	Text length, 8 bytes
//	Primary row, 8 bytes
//	Occurrence checkpoint interval, 8 bytes
//	Reserved, 8 bytes
//
// Data: symbols of all rows, 2-bit packed, 4 per byte.
// The sentinel is saved as A and restored with the primary row.
// Counts and checkpoints are computed again in reading.
func (b *BWT) Write(w io.Writer) (int, error) {
	var N int
	var err error

	buf := make([]byte, 48)
	copy(buf[:8], Magic[:])
	buf[8] = MainVersion
	buf[9] = MinorVersion
	be.PutUint64(buf[16:24], uint64(b.n))
	be.PutUint64(buf[24:32], uint64(b.primary))
	be.PutUint64(buf[32:40], uint64(b.occInterval))

	_, err = w.Write(buf)
	if err != nil {
		return N, err
	}
	N += len(buf)

	packed := twobit.Pack(b.bwt)
	_, err = w.Write(packed)
	if err != nil {
		return N, err
	}
	N += len(packed)

	return N, nil
}

// readHeader checks the magic number and version and returns the header.
func readHeader(r io.Reader, magic [8]byte, buf []byte) error {
	n, err := io.ReadFull(r, buf)
	if err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return ErrBrokenFile
		}
		return err
	}
	if n < len(buf) {
		return ErrBrokenFile
	}
	if [8]byte(buf[:8]) != magic {
		return ErrInvalidFileFormat
	}
	if buf[8] != MainVersion {
		return ErrVersionMismatch
	}
	return nil
}

// Read reads a BWT from an io.Reader.
func Read(r io.Reader) (*BWT, error) {
	buf := make([]byte, 48)
	if err := readHeader(r, Magic, buf); err != nil {
		return nil, err
	}

	b := &BWT{
		n:           int(be.Uint64(buf[16:24])),
		primary:     int(be.Uint64(buf[24:32])),
		occInterval: int(be.Uint64(buf[32:40])),
	}
	if b.occInterval <= 0 || b.primary > b.n {
		return nil, ErrInvalidFileFormat
	}

	rows := b.n + 1
	packed := make([]byte, (rows+3)>>2)
	_, err := io.ReadFull(bufio.NewReader(r), packed)
	if err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return nil, ErrBrokenFile
		}
		return nil, err
	}

	b.bwt, err = twobit.Unpack(packed, rows)
	if err != nil {
		return nil, ErrBrokenFile
	}
	b.bwt[b.primary] = sentinel
	b.init()

	return b, nil
}
