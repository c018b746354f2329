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

package index

import (
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/shenwei356/xopen"
)

// MainVersion is use for checking compatibility
var MainVersion uint8 = 0

// MinorVersion is less important
var MinorVersion uint8 = 1

// Contig is a reference sequence in the concatenated reference.
type Contig struct {
	Name   string `toml:"name"`
	Offset int    `toml:"offset"` // 0-based offset in the concatenated reference
	Length int    `toml:"length"`
}

// Info is the metadata of an index, saved as the .ann file.
type Info struct {
	MainVersion  uint8 `toml:"main-version" comment:"index format"`
	MinorVersion uint8 `toml:"minor-version"`

	Length      int   `toml:"length" comment:"total length of the reference"`
	SAInterval  int   `toml:"sa-interval"`
	OccInterval int   `toml:"occ-interval"`
	KmerCacheK  int   `toml:"kmer-cache-k"`
	RandSeed    int64 `toml:"rand-seed" comment:"seed for replacing ambiguous bases"`

	InputFiles []string `toml:"input-files"`
	Contigs    []Contig `toml:"contigs"`
}

func writeInfo(file string, info *Info) error {
	data, err := toml.Marshal(info)
	if err != nil {
		return errors.Wrap(err, "marshal index info")
	}

	outfh, err := xopen.Wopen(file)
	if err != nil {
		return err
	}
	_, err = outfh.Write(data)
	if err != nil {
		outfh.Close()
		return err
	}
	return outfh.Close()
}

func readInfo(file string) (*Info, error) {
	fh, err := xopen.Ropen(file)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	info := &Info{}
	if err = toml.NewDecoder(fh).Decode(info); err != nil {
		return nil, errors.Wrapf(err, "parse index info: %s", file)
	}
	if info.MainVersion != MainVersion {
		return nil, ErrVersionMismatch
	}

	var n int
	for _, c := range info.Contigs {
		if c.Offset != n || c.Length <= 0 {
			return nil, errors.Wrapf(ErrBrokenIndex, "invalid contig: %s", c.Name)
		}
		n += c.Length
	}
	if n != info.Length {
		return nil, errors.Wrapf(ErrBrokenIndex, "sum of contig lengths (%d) != reference length (%d)", n, info.Length)
	}
	return info, nil
}
