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

package eoestruct

import (
	eoeerrors "eoestruct.dev/go/eoestruct/errors"
)

// pathElemKind classifies one segment of a Path.
type pathElemKind int

const (
	peIndex pathElemKind = iota
	peKey
	peWildcard
)

// PathElem is one segment of a Path: an array/all-scope row index, an
// object key, or a wildcard matching every element/pair/row at that level.
type PathElem struct {
	kind  pathElemKind
	index int
	key   string
}

// Index addresses element i of an array, or row i of an All scope.
func Index(i int) PathElem { return PathElem{kind: peIndex, index: i} }

// Key addresses the pair with the given key in an object.
func Key(key string) PathElem { return PathElem{kind: peKey, key: key} }

// Wildcard addresses every element/pair/row at the current level.
func Wildcard() PathElem { return PathElem{kind: peWildcard} }

// IsWildcard reports whether e is a Wildcard segment.
func (e PathElem) IsWildcard() bool { return e.kind == peWildcard }

// Int returns e's index and whether e actually is an Index segment.
func (e PathElem) Int() (int, bool) { return e.index, e.kind == peIndex }

// StringKey returns e's key and whether e actually is a Key segment.
func (e PathElem) StringKey() (string, bool) { return e.key, e.kind == peKey }

func (e PathElem) String() string {
	switch e.kind {
	case peIndex:
		return itoa(e.index)
	case peKey:
		return e.key
	default:
		return "*"
	}
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// Path is a sequence of PathElem navigating into a Built (or Template; see
// edit.go) document: numeric/wildcard segments descend into BArray
// elements or BAll rows, key/wildcard segments descend into BObject pairs.
type Path []PathElem

// SelectorVisitor receives the outcome of navigating one concrete (fully
// resolved, no remaining wildcards) path produced by Select.
type SelectorVisitor interface {
	// Constant is called once per concrete path that resolves to a scalar.
	Constant(path Path, value Const) error
	// Missing is called once per concrete path prefix that fails to
	// resolve (out-of-range index, absent key, a false Condition, or a
	// path that runs past a scalar), with err classifying why.
	Missing(path Path, err error) error
}

// Select navigates b along path, resolving any All scopes and Conditions
// it passes through, and reports one Constant or Missing event per
// concrete path a Wildcard segment may fan out to.
func Select(b Built, lates *LateBindings, path Path, vis SelectorVisitor) error {
	s := &selector{lates: lates, vis: vis}
	return s.walk(b, path, nil)
}

type selector struct {
	lates *LateBindings
	vis   SelectorVisitor
	stack []frame
}

func clonePath(trail Path, next PathElem) Path {
	out := make(Path, len(trail)+1)
	copy(out, trail)
	out[len(trail)] = next
	return out
}

func (s *selector) walk(b Built, path Path, trail Path) error {
	// A Condition does not consume a path element: it is transparent to
	// addressing, only gating whether anything is there at all.
	if cond, ok := b.(BCondition); ok {
		live, err := truthyAt(s.stack, cond.Depth, cond.Width, s.lates)
		if err != nil {
			return err
		}
		if !live {
			return s.vis.Missing(trail, eoeerrors.Newf(eoeerrors.BadPath, "condition is false"))
		}
		return s.walk(cond.Body, path, trail)
	}

	if len(path) == 0 {
		c, ok, err := s.asConst(b)
		if err != nil {
			return err
		}
		if !ok {
			return s.vis.Missing(trail, eoeerrors.Newf(eoeerrors.BadPath, "path does not resolve to a scalar"))
		}
		return s.vis.Constant(trail, c)
	}

	head, rest := path[0], path[1:]
	switch n := b.(type) {
	case BArray:
		switch head.kind {
		case peIndex:
			if head.index < 0 || head.index >= len(n.Elements) {
				return s.vis.Missing(clonePath(trail, head), eoeerrors.Newf(eoeerrors.BadPath, "array index %d out of range", head.index))
			}
			return s.walk(n.Elements[head.index], rest, clonePath(trail, head))
		case peWildcard:
			for i, c := range n.Elements {
				if err := s.walk(c, rest, clonePath(trail, Index(i))); err != nil {
					return err
				}
			}
			return nil
		default:
			return s.vis.Missing(clonePath(trail, head), eoeerrors.Newf(eoeerrors.BadPathComponent, "array requires an index or wildcard"))
		}

	case BObject:
		switch head.kind {
		case peKey:
			for _, p := range n.Pairs {
				if p.Key == head.key {
					return s.walk(p.Value, rest, clonePath(trail, head))
				}
			}
			return s.vis.Missing(clonePath(trail, head), eoeerrors.Newf(eoeerrors.BadPath, "object has no key %q", head.key))
		case peWildcard:
			for _, p := range n.Pairs {
				if err := s.walk(p.Value, rest, clonePath(trail, Key(p.Key))); err != nil {
					return err
				}
			}
			return nil
		default:
			return s.vis.Missing(clonePath(trail, head), eoeerrors.Newf(eoeerrors.BadPathComponent, "object requires a key or wildcard"))
		}

	case BAll:
		rows, resolved, err := resolveAllRows(n, s.lates)
		if err != nil {
			return err
		}
		switch head.kind {
		case peIndex:
			if head.index < 0 || head.index >= rows {
				return s.vis.Missing(clonePath(trail, head), eoeerrors.Newf(eoeerrors.BadPath, "all-scope row %d out of range", head.index))
			}
			s.stack = append(s.stack, frame{slots: resolved, row: head.index})
			err := s.walk(n.Body, rest, clonePath(trail, head))
			s.stack = s.stack[:len(s.stack)-1]
			return err
		case peWildcard:
			for r := 0; r < rows; r++ {
				s.stack = append(s.stack, frame{slots: resolved, row: r})
				err := s.walk(n.Body, rest, clonePath(trail, Index(r)))
				s.stack = s.stack[:len(s.stack)-1]
				if err != nil {
					return err
				}
			}
			return nil
		default:
			return s.vis.Missing(clonePath(trail, head), eoeerrors.Newf(eoeerrors.BadPathComponent, "all scope requires an index or wildcard"))
		}

	default: // BConst, BVar: a scalar, but the path isn't exhausted
		return s.vis.Missing(clonePath(trail, head), eoeerrors.Newf(eoeerrors.BadPath, "path continues past a scalar"))
	}
}

// asConst resolves b to a Const if it is (or, through Conditions, leads
// directly to) a scalar.
func (s *selector) asConst(b Built) (Const, bool, error) {
	switch n := b.(type) {
	case BConst:
		return n.Value, true, nil
	case BVar:
		c, err := getAt(s.stack, n.Depth, n.Width, s.lates)
		return c, err == nil, err
	case BCondition:
		live, err := truthyAt(s.stack, n.Depth, n.Width, s.lates)
		if err != nil || !live {
			return Const{}, false, err
		}
		return s.asConst(n.Body)
	default:
		return Const{}, false, nil
	}
}
