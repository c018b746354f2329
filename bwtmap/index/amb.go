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
	"bufio"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rdleal/intervalst/interval"
	"github.com/shenwei356/xopen"
	"github.com/zeebo/wyhash"
)

// Hole is a run of one non-ACGT symbol in the reference.
type Hole struct {
	Offset int // 0-based offset in the concatenated reference
	Length int
	Symbol byte
}

// End returns the 0-based offset of the last base.
func (h Hole) End() int { return h.Offset + h.Length - 1 }

// holeRecorder collects holes while encoding the reference.
type holeRecorder struct {
	holes []Hole
	seed  uint64
	buf   [8]byte
}

// add records a non-ACGT symbol at offset and returns a pseudo-random base
// (0-3) to replace it. The same offset and seed give the same base.
func (r *holeRecorder) add(offset int, symbol byte) byte {
	n := len(r.holes)
	if n > 0 && r.holes[n-1].Symbol == symbol && r.holes[n-1].Offset+r.holes[n-1].Length == offset {
		r.holes[n-1].Length++
	} else {
		r.holes = append(r.holes, Hole{Offset: offset, Length: 1, Symbol: symbol})
	}

	binary.BigEndian.PutUint64(r.buf[:], uint64(offset))
	return byte(wyhash.Hash(r.buf[:], r.seed) & 3)
}

func writeHoles(file string, holes []Hole) error {
	outfh, err := xopen.Wopen(file)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(outfh)
	fmt.Fprintf(w, "#offset\tlength\tsymbol\n")
	for _, h := range holes {
		fmt.Fprintf(w, "%d\t%d\t%c\n", h.Offset, h.Length, h.Symbol)
	}
	if err = w.Flush(); err != nil {
		outfh.Close()
		return err
	}
	return outfh.Close()
}

func readHoles(file string) ([]Hole, error) {
	fh, err := xopen.Ropen(file)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	holes := make([]Hole, 0, 128)
	scanner := bufio.NewScanner(fh)
	var line string
	var items []string
	var h Hole
	var i int
	for scanner.Scan() {
		i++
		line = strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" || line[0] == '#' {
			continue
		}

		items = strings.Split(line, "\t")
		if len(items) != 3 || len(items[2]) != 1 {
			return nil, errors.Wrapf(ErrBrokenIndex, "%s: invalid line %d", file, i)
		}
		h.Offset, err = strconv.Atoi(items[0])
		if err != nil {
			return nil, errors.Wrapf(err, "%s: line %d", file, i)
		}
		h.Length, err = strconv.Atoi(items[1])
		if err != nil {
			return nil, errors.Wrapf(err, "%s: line %d", file, i)
		}
		if h.Offset < 0 || h.Length <= 0 {
			return nil, errors.Wrapf(ErrBrokenIndex, "%s: invalid hole in line %d", file, i)
		}
		h.Symbol = items[2][0]

		holes = append(holes, h)
	}
	if err = scanner.Err(); err != nil {
		return nil, err
	}

	return holes, nil
}

// holeTree answers overlap queries of holes.
type holeTree struct {
	holes []Hole
	tree  *interval.SearchTree[int, int] // values are indexes of holes
}

func newHoleTree(holes []Hole) (*holeTree, error) {
	cmpFn := func(x, y int) int { return x - y }
	t := &holeTree{holes: holes, tree: interval.NewSearchTree[int, int](cmpFn)}
	for i, h := range holes {
		// stored as [offset, offset+length)
		if err := t.tree.Insert(h.Offset, h.Offset+h.Length, i); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// overlaps returns holes overlapping with 0-based region [start, end].
func (t *holeTree) overlaps(start, end int) []Hole {
	if len(t.holes) == 0 {
		return nil
	}
	idxs, ok := t.tree.AllIntersections(start-1, end+1)
	if !ok {
		return nil
	}

	var hs []Hole
	var h Hole
	for _, i := range idxs {
		h = t.holes[i]
		if h.Offset <= end && h.End() >= start {
			hs = append(hs, h)
		}
	}
	return hs
}
