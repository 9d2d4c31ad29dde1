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

// Package column implements EachOrEvery (C1): a run-length/broadcast-aware
// logical sequence used as the storage of template variable payloads. A
// Column is one of three shapes: Unindexed (a plain owned slice), Indexed
// (a shared slice plus an index vector), or Every (one value broadcast to
// any length). Column data is treated as shared-immutable: once built, a
// Column's backing slice is never mutated in place.
package column

import "eoestruct.dev/go/eoestruct/internal/filter"

type shape int

const (
	shapeUnindexed shape = iota
	shapeIndexed
	shapeEvery
)

// Column is a logical sequence of T in one of three shapes.
type Column[T any] struct {
	shape shape
	data  []T
	idx   []int
}

// Each builds an Unindexed column whose logical sequence is data itself.
func Each[T any](data []T) Column[T] {
	return Column[T]{shape: shapeUnindexed, data: data}
}

// Every builds a column broadcasting a single value to any length.
func Every[T any](v T) Column[T] {
	return Column[T]{shape: shapeEvery, data: []T{v}}
}

// indexed builds an Indexed column sharing data with the given index vector.
func indexed[T any](data []T, idx []int) Column[T] {
	return Column[T]{shape: shapeIndexed, data: data, idx: idx}
}

// Len reports the logical length, or ok=false for a broadcast Every column.
func (c Column[T]) Len() (n int, ok bool) {
	switch c.shape {
	case shapeUnindexed:
		return len(c.data), true
	case shapeIndexed:
		return len(c.idx), true
	default:
		return 0, false
	}
}

// IsEvery reports whether the column is a broadcast (infinite) column.
func (c Column[T]) IsEvery() bool { return c.shape == shapeEvery }

// Get returns the logical element at position i. Callers must validate i
// against Len for Unindexed/Indexed columns; an Every column answers any i.
func (c Column[T]) Get(i int) T {
	switch c.shape {
	case shapeUnindexed:
		return c.data[i]
	case shapeIndexed:
		return c.data[c.idx[i]]
	default:
		return c.data[0]
	}
}

// Compatible reports whether c's length agrees with len: true if c is Every,
// or its finite length equals len.
func (c Column[T]) Compatible(length int) bool {
	if n, ok := c.Len(); ok {
		return n == length
	}
	return true
}

// Map applies f to the stored data only, preserving index shape.
func Map[T, Y any](c Column[T], f func(T) Y) Column[Y] {
	out := make([]Y, len(c.data))
	for i, v := range c.data {
		out[i] = f(v)
	}
	idx := c.idx
	if idx != nil {
		cp := make([]int, len(idx))
		copy(cp, idx)
		idx = cp
	}
	return Column[Y]{shape: c.shape, data: out, idx: idx}
}

// Zip produces a column of the zipped logical values: when either side is
// Every, the result carries the other side's shape (broadcasting the Every
// value pointwise); two Indexed columns zip to an Unindexed column.
func Zip[A, B, W any](a Column[A], b Column[B], f func(A, B) W) Column[W] {
	if a.shape != shapeEvery && b.shape == shapeEvery {
		return zipInner(a, b, f)
	}
	if a.shape == shapeEvery && b.shape != shapeEvery {
		return swapZip(a, b, f)
	}
	return zipInner(a, b, f)
}

func swapZip[A, B, W any](a Column[A], b Column[B], f func(A, B) W) Column[W] {
	// a is Every, b is not: iterate b's shape, broadcasting a's single value.
	switch b.shape {
	case shapeUnindexed:
		out := make([]W, len(b.data))
		for i, bv := range b.data {
			out[i] = f(a.data[0], bv)
		}
		return Column[W]{shape: shapeUnindexed, data: out}
	case shapeIndexed:
		out := make([]W, len(b.idx))
		for i, bi := range b.idx {
			out[i] = f(a.data[0], b.data[bi])
		}
		return Column[W]{shape: shapeUnindexed, data: out}
	default:
		return Column[W]{shape: shapeEvery, data: []W{f(a.data[0], b.data[0])}}
	}
}

func zipInner[A, B, W any](a Column[A], b Column[B], f func(A, B) W) Column[W] {
	switch {
	case b.shape == shapeEvery:
		out := make([]W, len(a.data))
		for i, av := range a.data {
			out[i] = f(av, b.data[0])
		}
		return Column[W]{shape: a.shape, idx: a.idx, data: out}

	case a.shape == shapeUnindexed && b.shape == shapeUnindexed:
		n := len(a.data)
		if len(b.data) < n {
			n = len(b.data)
		}
		out := make([]W, n)
		for i := 0; i < n; i++ {
			out[i] = f(a.data[i], b.data[i])
		}
		return Column[W]{shape: shapeUnindexed, data: out}

	case a.shape == shapeIndexed && b.shape == shapeUnindexed:
		n := len(a.idx)
		if len(b.data) < n {
			n = len(b.data)
		}
		out := make([]W, n)
		for i := 0; i < n; i++ {
			out[i] = f(a.data[a.idx[i]], b.data[i])
		}
		return Column[W]{shape: shapeUnindexed, data: out}

	case a.shape == shapeUnindexed && b.shape == shapeIndexed:
		n := len(a.data)
		if len(b.idx) < n {
			n = len(b.idx)
		}
		out := make([]W, n)
		for i := 0; i < n; i++ {
			out[i] = f(a.data[i], b.data[b.idx[i]])
		}
		return Column[W]{shape: shapeUnindexed, data: out}

	default: // both Indexed
		n := len(a.idx)
		if len(b.idx) < n {
			n = len(b.idx)
		}
		out := make([]W, n)
		for i := 0; i < n; i++ {
			out[i] = f(a.data[a.idx[i]], b.data[b.idx[i]])
		}
		return Column[W]{shape: shapeUnindexed, data: out}
	}
}

// Filter returns the column restricted to the positions selected by f,
// rewriting the index rather than copying data where possible.
func Filter[T any](c Column[T], f filter.Filter) Column[T] {
	if f.IsAll() {
		return c
	}
	if f.IsNone() {
		return Column[T]{shape: shapeUnindexed}
	}
	positions := f.Positions()
	switch c.shape {
	case shapeEvery:
		return c
	case shapeUnindexed:
		idx := make([]int, len(positions))
		for i, p := range positions {
			idx[i] = p
		}
		return indexed(c.data, idx)
	default: // Indexed
		idx := make([]int, len(positions))
		for i, p := range positions {
			idx[i] = c.idx[p]
		}
		return indexed(c.data, idx)
	}
}

// Index converts c to an Indexed column sharing deduplicated data, grouping
// logical elements by key(elem).
func Index[T any, K comparable](c Column[T], key func(T) K) Column[T] {
	if c.shape == shapeEvery {
		return c
	}
	squash := func(elems func(int) T, n int) ([]int, []T) {
		idx := make([]int, n)
		var data []T
		seen := map[K]int{}
		for i := 0; i < n; i++ {
			v := elems(i)
			k := key(v)
			if pos, ok := seen[k]; ok {
				idx[i] = pos
			} else {
				pos := len(data)
				seen[k] = pos
				data = append(data, v)
				idx[i] = pos
			}
		}
		return idx, data
	}
	if c.shape == shapeUnindexed {
		idx, data := squash(func(i int) T { return c.data[i] }, len(c.data))
		return indexed(data, idx)
	}
	// Indexed: remap old index values through a fresh squash of referenced data.
	oldToNew, data := squash(func(i int) T { return c.data[i] }, len(c.data))
	idx := make([]int, len(c.idx))
	for i, old := range c.idx {
		idx[i] = oldToNew[old]
	}
	return indexed(data, idx)
}

// Demerge partitions [0,length) into groups keyed by key(elem), returning
// each key with the Filter of positions mapping to it.
func Demerge[T any, K comparable](c Column[T], length int, key func(T) K) []KeyFilter[K] {
	if c.shape == shapeEvery {
		return []KeyFilter[K]{{Key: key(c.data[0]), Filter: filter.All(length)}}
	}
	type builder struct {
		key K
		b   filter.Builder
	}
	var order []K
	builders := map[K]*filter.Builder{}
	get := func(i int) T {
		if c.shape == shapeUnindexed {
			return c.data[i]
		}
		return c.data[c.idx[i]]
	}
	n := length
	for i := 0; i < n; i++ {
		k := key(get(i))
		b, ok := builders[k]
		if !ok {
			b = &filter.Builder{}
			builders[k] = b
			order = append(order, k)
		}
		b.Set(i)
	}
	out := make([]KeyFilter[K], 0, len(order))
	for _, k := range order {
		out = append(out, KeyFilter[K]{Key: k, Filter: builders[k].Make(length)})
	}
	return out
}

// KeyFilter is one (key, filter) pair produced by Demerge.
type KeyFilter[K comparable] struct {
	Key    K
	Filter filter.Filter
}

// MakeFilter returns the filter of positions whose logical element satisfies
// pred.
func MakeFilter[T any](c Column[T], length int, pred func(T) bool) filter.Filter {
	if c.shape == shapeEvery {
		if pred(c.data[0]) {
			return filter.All(length)
		}
		return filter.None(length)
	}
	var b filter.Builder
	get := func(i int) T {
		if c.shape == shapeUnindexed {
			return c.data[i]
		}
		return c.data[c.idx[i]]
	}
	for i := 0; i < length; i++ {
		if pred(get(i)) {
			b.Set(i)
		}
	}
	return b.Make(length)
}

// ToEach returns an Unindexed column of exactly length logical elements if
// that reshaping is possible (Every always is; Unindexed/Indexed only if
// their current length already equals length).
func ToEach[T any](c Column[T], length int) (Column[T], bool) {
	switch c.shape {
	case shapeEvery:
		out := make([]T, length)
		for i := range out {
			out[i] = c.data[0]
		}
		return Each(out), true
	case shapeUnindexed:
		if len(c.data) != length {
			return Column[T]{}, false
		}
		return c, true
	default:
		if len(c.idx) != length {
			return Column[T]{}, false
		}
		out := make([]T, length)
		for i, p := range c.idx {
			out[i] = c.data[p]
		}
		return Each(out), true
	}
}

// FoldMut folds external data into c pointwise: for Unindexed/Every columns
// the external slice cycles; for Indexed columns it is consumed in
// lock-step and the result collapses to Unindexed.
func FoldMut[T, Z any](c Column[T], data []Z, f func(T, Z) T) Column[T] {
	switch c.shape {
	case shapeIndexed:
		out := make([]T, len(c.idx))
		for i, p := range c.idx {
			out[i] = f(c.data[p], data[i])
		}
		return Each(out)
	default: // Every or Unindexed: cycle external data
		out := make([]T, len(c.data))
		for i, v := range c.data {
			out[i] = f(v, data[i%len(data)])
		}
		return Column[T]{shape: c.shape, data: out}
	}
}
