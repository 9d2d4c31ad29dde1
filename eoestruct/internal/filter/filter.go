// Copyright 2024 The eoestruct Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package filter implements a sorted run-length-compressed bitset over
// [0,len), used by package column to select/demerge rows and by the
// editor to restrict an All scope's variables.
package filter

import "fmt"

type run struct {
	start, len int
}

type shape int

const (
	shapeAll shape = iota
	shapeNone
	shapeSome
)

// Filter is an immutable, sorted run-length bitset over [0, total).
type Filter struct {
	shape shape
	runs  []run
	total int
	count int
}

// All returns the filter selecting every position in [0,total).
func All(total int) Filter {
	return Filter{shape: shapeAll, total: total, count: total}
}

// None returns the filter selecting no positions.
func None(total int) Filter {
	return Filter{shape: shapeNone, total: total, count: 0}
}

// Len returns the size of the universe [0,Len()) this filter partitions.
func (f Filter) Len() int { return f.total }

// Count returns the number of selected positions.
func (f Filter) Count() int { return f.count }

// IsAll reports whether the filter selects every position.
func (f Filter) IsAll() bool { return f.shape == shapeAll }

// IsNone reports whether the filter selects no position.
func (f Filter) IsNone() bool { return f.shape == shapeNone }

// Positions returns the selected positions in increasing order.
func (f Filter) Positions() []int {
	switch f.shape {
	case shapeAll:
		out := make([]int, f.total)
		for i := range out {
			out[i] = i
		}
		return out
	case shapeNone:
		return nil
	default:
		out := make([]int, 0, f.count)
		for _, r := range f.runs {
			for i := 0; i < r.len; i++ {
				out = append(out, r.start+i)
			}
		}
		return out
	}
}

// Builder appends selected indices left to right, in non-decreasing order,
// merging adjacent indices into runs as it goes.
type Builder struct {
	runs  []run
	count int
}

// Set appends index to the builder. index must be >= every index set so far;
// setting an index that is already set is a no-op.
func (b *Builder) Set(index int) {
	if n := len(b.runs); n > 0 {
		last := &b.runs[n-1]
		if index < last.start+last.len {
			return
		}
		if last.start+last.len == index {
			last.len++
			b.count++
			return
		}
	}
	b.count++
	b.runs = append(b.runs, run{start: index, len: 1})
}

// Make normalizes the accumulated runs into a canonical Filter of the given
// universe size: All when a single run spans [0,len), None when empty, Some
// otherwise.
func (b *Builder) Make(total int) Filter {
	if len(b.runs) == 0 {
		return None(total)
	}
	if len(b.runs) == 1 && b.runs[0].start == 0 && b.runs[0].len == total {
		return All(total)
	}
	runs := make([]run, len(b.runs))
	copy(runs, b.runs)
	return Filter{shape: shapeSome, runs: runs, total: total, count: b.count}
}

// numIterator walks a run list lazily, supporting peek-then-advance the way
// union/intersect need to merge two run lists without materializing them.
type numIterator struct {
	runs  []run
	ri    int
	pos   int
}

func newNumIterator(runs []run) *numIterator {
	return &numIterator{runs: runs}
}

func (n *numIterator) peek() (int, bool) {
	for {
		if n.ri >= len(n.runs) {
			return 0, false
		}
		if n.pos < n.runs[n.ri].len {
			break
		}
		n.pos = 0
		n.ri++
	}
	return n.runs[n.ri].start + n.pos, true
}

func (n *numIterator) advance(index int) {
	for {
		if n.ri >= len(n.runs) {
			return
		}
		r := n.runs[n.ri]
		if index < r.start+r.len {
			if index > r.start {
				n.pos = index - r.start
			} else {
				n.pos = 0
			}
			return
		}
		n.pos = 0
		n.ri++
	}
}

// And returns the intersection of f and other. Both must share the same Len.
func (f Filter) And(other Filter) Filter {
	switch {
	case f.shape == shapeAll:
		return other
	case other.shape == shapeAll:
		return f
	case f.shape == shapeNone || other.shape == shapeNone:
		return None(f.total)
	default:
		return intersect(f.runs, other.runs, f.total)
	}
}

// Or returns the union of f and other. Both must share the same Len.
func (f Filter) Or(other Filter) Filter {
	switch {
	case f.shape == shapeAll || other.shape == shapeAll:
		return All(f.total)
	case f.shape == shapeNone:
		return other
	case other.shape == shapeNone:
		return f
	default:
		return union(f.runs, other.runs, f.total)
	}
}

func union(a, b []run, total int) Filter {
	ai, bi := newNumIterator(a), newNumIterator(b)
	var out Builder
	for {
		av, aok := ai.peek()
		bv, bok := bi.peek()
		switch {
		case aok && bok:
			switch {
			case av == bv:
				out.Set(av)
				ai.advance(av + 1)
				bi.advance(bv + 1)
			case av < bv:
				out.Set(av)
				ai.advance(av + 1)
			default:
				out.Set(bv)
				bi.advance(bv + 1)
			}
		case aok:
			out.Set(av)
			ai.advance(av + 1)
		case bok:
			out.Set(bv)
			bi.advance(bv + 1)
		default:
			return out.Make(total)
		}
	}
}

func intersect(a, b []run, total int) Filter {
	ai, bi := newNumIterator(a), newNumIterator(b)
	var out Builder
	for {
		av, aok := ai.peek()
		bv, bok := bi.peek()
		if !aok || !bok {
			return out.Make(total)
		}
		switch {
		case av == bv:
			out.Set(av)
			ai.advance(bv + 1)
			bi.advance(av + 1)
		case av < bv:
			ai.advance(bv)
		default:
			bi.advance(av)
		}
	}
}

// Select filters a slice of arbitrary data by this filter. An All filter
// returns a copy of input as-is and a None filter returns nil; otherwise it
// reads input[(start+i) mod len(input)] for each selected run position — the
// modulo lets a filter select from a conceptually-broadcast source whose
// backing slice is shorter than the filter's universe.
func Select[Z any](f Filter, input []Z) []Z {
	if len(input) == 0 {
		return nil
	}
	switch f.shape {
	case shapeAll:
		out := make([]Z, len(input))
		copy(out, input)
		return out
	case shapeNone:
		return nil
	default:
		out := make([]Z, 0, f.count)
		for _, r := range f.runs {
			for i := 0; i < r.len; i++ {
				out = append(out, input[(r.start+i)%len(input)])
			}
		}
		return out
	}
}

func (f Filter) String() string {
	switch f.shape {
	case shapeAll:
		return fmt.Sprintf("all(%d)", f.total)
	case shapeNone:
		return fmt.Sprintf("none(%d)", f.total)
	default:
		return fmt.Sprintf("some(%v/%d)", f.runs, f.total)
	}
}
