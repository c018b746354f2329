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
	"container/heap"
	"fmt"
)

// node is a partial alignment in the search.
type node struct {
	position int // read bases not placed yet, counted from the 3' end inward
	lo, hi   int // interval of the bases placed so far

	mismatches    int
	gapOpens      int
	gapExtensions int
	score         int

	seq    uint64 // creation order in one search, for breaking ties
	strand int    // index of the query orientation

	trace *Trace
}

func (n *node) diffs() int {
	return n.mismatches + n.gapOpens + n.gapExtensions
}

// frontier is a min-heap of nodes ordered by score,
// the earliest created node wins a tie.
type frontier struct {
	nodes []*node
}

func (h frontier) Len() int { return len(h.nodes) }

func (h frontier) Less(i, j int) bool {
	a, b := h.nodes[i], h.nodes[j]
	if a.score != b.score {
		return a.score < b.score
	}
	return a.seq < b.seq
}

func (h frontier) Swap(i, j int) { h.nodes[i], h.nodes[j] = h.nodes[j], h.nodes[i] }

func (h *frontier) Push(x interface{}) {
	h.nodes = append(h.nodes, x.(*node))
}

func (h *frontier) Pop() interface{} {
	n := len(h.nodes)
	x := h.nodes[n-1]
	h.nodes[n-1] = nil
	h.nodes = h.nodes[:n-1]
	return x
}

// push adds a live node. An empty interval here means the backward step
// is broken, and continuing would return wrong alignments.
func (h *frontier) push(n *node) {
	if n.lo > n.hi {
		panic(fmt.Sprintf("align: empty interval [%d, %d] pushed to the frontier", n.lo, n.hi))
	}
	heap.Push(h, n)
}

func (h *frontier) pop() *node {
	return heap.Pop(h).(*node)
}
