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
	"eoestruct.dev/go/eoestruct/internal/filter"
)

// PathSet is a trie over Path prefixes, used to decide in one pass whether
// any of a batch of edits touches a given subtree, instead of re-walking
// the whole document once per path. Insert a Path per edit, then query
// each node visited during a rebuild with Child.
type PathSet struct {
	terminal bool
	indices  map[int]*PathSet
	keys     map[string]*PathSet
	wildcard *PathSet
}

// NewPathSet returns an empty set.
func NewPathSet() *PathSet {
	return &PathSet{indices: map[int]*PathSet{}, keys: map[string]*PathSet{}}
}

// Insert records path as interesting.
func (ps *PathSet) Insert(path Path) {
	n := ps
	for _, e := range path {
		switch e.kind {
		case peIndex:
			child, ok := n.indices[e.index]
			if !ok {
				child = NewPathSet()
				n.indices[e.index] = child
			}
			n = child
		case peKey:
			child, ok := n.keys[e.key]
			if !ok {
				child = NewPathSet()
				n.keys[e.key] = child
			}
			n = child
		default:
			if n.wildcard == nil {
				n.wildcard = NewPathSet()
			}
			n = n.wildcard
		}
	}
	n.terminal = true
}

// Terminal reports whether ps itself is the end of an inserted path.
func (ps *PathSet) Terminal() bool { return ps.terminal }

// Child descends one segment, reporting the sub-trie reachable by an exact
// index/key match or, failing that, by a wildcard entry, and whether any
// edit reaches this far.
func (ps *PathSet) Child(e PathElem) (*PathSet, bool) {
	switch e.kind {
	case peIndex:
		if child, ok := ps.indices[e.index]; ok {
			return child, true
		}
	case peKey:
		if child, ok := ps.keys[e.key]; ok {
			return child, true
		}
	}
	if ps.wildcard != nil {
		return ps.wildcard, true
	}
	return nil, false
}

// Extract returns the subtree of t addressed by path (Conditions and All
// scopes are transparent to addressing: a numeric/wildcard segment
// descends into an All's rows the same way it descends into an array).
// Unlike Select, Extract does not require lates or resolve any variable —
// it returns the template subtree as-is, variables and all.
func Extract(t Template, path Path) (Template, error) {
	if len(path) == 0 {
		return t, nil
	}
	head, rest := path[0], path[1:]
	switch n := t.(type) {
	case TCondition:
		sub, err := Extract(n.Body, path)
		if err != nil {
			return nil, err
		}
		return TCondition{Var: n.Var, Body: sub}, nil

	case TAll:
		sub, err := extractAllMember(n, head, rest)
		if err != nil {
			return nil, err
		}
		return sub, nil

	case TArray:
		idx, ok := head.Int()
		if !ok {
			if head.IsWildcard() {
				return nil, eoeerrors.Newf(eoeerrors.BadPathComponent, "extract does not support a wildcard over a plain array; address one index at a time")
			}
			return nil, eoeerrors.Newf(eoeerrors.BadPathComponent, "array requires an index")
		}
		if idx < 0 || idx >= len(n.Elements) {
			return nil, eoeerrors.Newf(eoeerrors.BadPath, "array index %d out of range", idx)
		}
		return Extract(n.Elements[idx], rest)

	case TObject:
		key, ok := head.StringKey()
		if !ok {
			return nil, eoeerrors.Newf(eoeerrors.BadPathComponent, "object requires a key")
		}
		for _, p := range n.Pairs {
			if p.Key == key {
				return Extract(p.Value, rest)
			}
		}
		return nil, eoeerrors.Newf(eoeerrors.BadPath, "object has no key %q", key)

	default:
		return nil, eoeerrors.Newf(eoeerrors.BadPath, "path continues past a scalar")
	}
}

func extractAllMember(n TAll, head PathElem, rest Path) (Template, error) {
	if _, ok := head.Int(); !ok && !head.IsWildcard() {
		return nil, eoeerrors.Newf(eoeerrors.BadPathComponent, "all scope requires an index or wildcard")
	}
	return Extract(n.Body, rest)
}

// ExtractValue extracts the subtree at path and, if it is variable-free,
// fully resolves it to a Value via Build+Expand with no late bindings.
func ExtractValue(t Template, path Path) (Value, error) {
	sub, err := Extract(t, path)
	if err != nil {
		return Value{}, err
	}
	built, err := Build(sub, nil)
	if err != nil {
		return Value{}, err
	}
	return ExpandToValue(built, nil)
}

// Substitute returns a copy of t with the node at path replaced by
// replacement, rebuilding the spine from the root down to path (a
// persistent, copy-on-write edit: every node off the direct path is
// shared, unchanged, with the original).
func Substitute(t Template, path Path, replacement Template) (Template, error) {
	return replaceAt(t, path, func(Template) (Template, error) { return replacement, nil })
}

// Replace is like Substitute but computes the new subtree from the old one
// at path, via f, instead of supplying it directly.
func Replace(t Template, path Path, f func(Template) (Template, error)) (Template, error) {
	return replaceAt(t, path, f)
}

func replaceAt(t Template, path Path, f func(Template) (Template, error)) (Template, error) {
	if len(path) == 0 {
		return f(t)
	}
	head, rest := path[0], path[1:]
	switch n := t.(type) {
	case TCondition:
		body, err := replaceAt(n.Body, path, f)
		if err != nil {
			return nil, err
		}
		return TCondition{Var: n.Var, Body: body}, nil

	case TAll:
		if _, ok := head.Int(); !ok && !head.IsWildcard() {
			return nil, eoeerrors.Newf(eoeerrors.BadPathComponent, "all scope requires an index or wildcard")
		}
		body, err := replaceAt(n.Body, rest, f)
		if err != nil {
			return nil, err
		}
		return TAll{Group: n.Group, Body: body}, nil

	case TArray:
		idx, ok := head.Int()
		if !ok {
			return nil, eoeerrors.Newf(eoeerrors.BadPathComponent, "array requires an index")
		}
		if idx < 0 || idx >= len(n.Elements) {
			return nil, eoeerrors.Newf(eoeerrors.BadPath, "array index %d out of range", idx)
		}
		elems := make([]Template, len(n.Elements))
		copy(elems, n.Elements)
		child, err := replaceAt(elems[idx], rest, f)
		if err != nil {
			return nil, err
		}
		elems[idx] = child
		return TArray{Elements: elems}, nil

	case TObject:
		key, ok := head.StringKey()
		if !ok {
			return nil, eoeerrors.Newf(eoeerrors.BadPathComponent, "object requires a key")
		}
		pairs := make([]Pair, len(n.Pairs))
		copy(pairs, n.Pairs)
		found := false
		for i, p := range pairs {
			if p.Key == key {
				child, err := replaceAt(p.Value, rest, f)
				if err != nil {
					return nil, err
				}
				pairs[i] = Pair{Key: key, Value: child}
				found = true
				break
			}
		}
		if !found {
			return nil, eoeerrors.Newf(eoeerrors.BadPath, "object has no key %q", key)
		}
		return TObject{Pairs: pairs}, nil

	default:
		return nil, eoeerrors.Newf(eoeerrors.BadPath, "path continues past a scalar")
	}
}

// SetIndex finds the All scope at path and, for every variable its group
// references with a finite column, replaces it with a one-element column
// holding that variable's logical value at index — pinning a previously
// iterated All to a single, concrete row without disturbing the scope's
// other variables or its enclosing structure (spec §4.6). A variable whose
// group member is Late or infinite (an Every broadcast) is left untouched,
// since there is no row of it yet to peek.
func SetIndex(t Template, path Path, index int) (Template, error) {
	return Replace(t, path, func(n Template) (Template, error) {
		all, ok := n.(TAll)
		if !ok {
			return nil, eoeerrors.Newf(eoeerrors.BadPath, "set_index target is not an all scope")
		}
		values := collectGroupValues(all.Body, all.Group)
		pinned := map[VarId]VariableValue{}
		for id, v := range values {
			if one, ok := v.atIndex(index); ok {
				pinned[id] = one
			}
		}
		return TAll{Group: all.Group, Body: transformGroupVars(all.Body, pinned)}, nil
	})
}

// FilterTemplate finds the All scope at path and applies f to every
// variable its group references, restricting each one's column to f's
// selected positions (spec §4.6). f is a run-length-compressed selection
// over the scope's own logical length, not an arbitrary reorder/repeat
// list — mirroring column.Filter.
func FilterTemplate(t Template, path Path, f filter.Filter) (Template, error) {
	return Replace(t, path, func(n Template) (Template, error) {
		all, ok := n.(TAll)
		if !ok {
			return nil, eoeerrors.Newf(eoeerrors.BadPath, "filter target is not an all scope")
		}
		values := collectGroupValues(all.Body, all.Group)
		filtered := map[VarId]VariableValue{}
		for id, v := range values {
			filtered[id] = v.filterVV(f)
		}
		return TAll{Group: all.Group, Body: transformGroupVars(all.Body, filtered)}, nil
	})
}

// Compatible finds the All scope at path and reports whether every
// variable its group references is itself group-compatible with length
// (spec §4.6): Every and Late members are trivially compatible, a finite
// one must equal length exactly.
func Compatible(t Template, path Path, length int) (bool, error) {
	sub, err := Extract(t, path)
	if err != nil {
		return false, err
	}
	all, ok := sub.(TAll)
	if !ok {
		return false, eoeerrors.Newf(eoeerrors.BadPath, "compatible target is not an all scope")
	}
	values := collectGroupValues(all.Body, all.Group)
	for _, v := range values {
		if !v.compatibleWithLen(length) {
			return false, nil
		}
	}
	return true, nil
}

// transformGroupVars rewrites every TVar/TCondition in t whose Var.ID has
// an entry in newVals, swapping in its replacement value; every other node
// is rebuilt structurally unchanged. It walks into nested All scopes the
// same way collectGroupValues does, so a reference arbitrarily deep under
// the targeted scope still gets updated.
func transformGroupVars(t Template, newVals map[VarId]VariableValue) Template {
	switch n := t.(type) {
	case TVar:
		if v, ok := newVals[n.Var.ID]; ok {
			return TVar{Var: Var{ID: n.Var.ID, Value: v}}
		}
		return n
	case TCondition:
		body := transformGroupVars(n.Body, newVals)
		if v, ok := newVals[n.Var.ID]; ok {
			return TCondition{Var: Var{ID: n.Var.ID, Value: v}, Body: body}
		}
		return TCondition{Var: n.Var, Body: body}
	case TArray:
		elems := make([]Template, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = transformGroupVars(e, newVals)
		}
		return TArray{Elements: elems}
	case TObject:
		pairs := make([]Pair, len(n.Pairs))
		for i, p := range n.Pairs {
			pairs[i] = Pair{Key: p.Key, Value: transformGroupVars(p.Value, newVals)}
		}
		return TObject{Pairs: pairs}
	case TAll:
		return TAll{Group: n.Group, Body: transformGroupVars(n.Body, newVals)}
	default:
		return t
	}
}

// ExtractV navigates a fully-expanded Value tree by path, with no
// Condition/All/variable machinery to resolve.
func ExtractV(v Value, path Path) (Value, error) {
	if len(path) == 0 {
		return v, nil
	}
	head, rest := path[0], path[1:]
	switch {
	case v.kind == valueArray:
		idx, ok := head.Int()
		if !ok {
			return Value{}, eoeerrors.Newf(eoeerrors.BadPathComponent, "array requires an index")
		}
		if idx < 0 || idx >= len(v.arr) {
			return Value{}, eoeerrors.Newf(eoeerrors.BadPath, "array index %d out of range", idx)
		}
		return ExtractV(v.arr[idx], rest)
	case v.kind == valueObject:
		key, ok := head.StringKey()
		if !ok {
			return Value{}, eoeerrors.Newf(eoeerrors.BadPathComponent, "object requires a key")
		}
		for _, p := range v.obj {
			if p.Key == key {
				return ExtractV(p.Value, rest)
			}
		}
		return Value{}, eoeerrors.Newf(eoeerrors.BadPath, "object has no key %q", key)
	default:
		return Value{}, eoeerrors.Newf(eoeerrors.BadPath, "path continues past a scalar")
	}
}

// SubstituteV returns a copy of v with the node at path replaced.
func SubstituteV(v Value, path Path, replacement Value) (Value, error) {
	if len(path) == 0 {
		return replacement, nil
	}
	head, rest := path[0], path[1:]
	switch {
	case v.kind == valueArray:
		idx, ok := head.Int()
		if !ok || idx < 0 || idx >= len(v.arr) {
			return Value{}, eoeerrors.Newf(eoeerrors.BadPath, "array index out of range")
		}
		arr := make([]Value, len(v.arr))
		copy(arr, v.arr)
		child, err := SubstituteV(arr[idx], rest, replacement)
		if err != nil {
			return Value{}, err
		}
		arr[idx] = child
		return NewArray(arr...), nil
	case v.kind == valueObject:
		key, ok := head.StringKey()
		if !ok {
			return Value{}, eoeerrors.Newf(eoeerrors.BadPathComponent, "object requires a key")
		}
		pairs := make([]ValuePair, len(v.obj))
		copy(pairs, v.obj)
		for i, p := range pairs {
			if p.Key == key {
				child, err := SubstituteV(p.Value, rest, replacement)
				if err != nil {
					return Value{}, err
				}
				pairs[i] = ValuePair{Key: key, Value: child}
				return NewObject(pairs...), nil
			}
		}
		return Value{}, eoeerrors.Newf(eoeerrors.BadPath, "object has no key %q", key)
	default:
		return Value{}, eoeerrors.Newf(eoeerrors.BadPath, "path continues past a scalar")
	}
}

// FilterV returns a copy of the array Value at path restricted to keep.
func FilterV(v Value, path Path, keep []int) (Value, error) {
	sub, err := ExtractV(v, path)
	if err != nil {
		return Value{}, err
	}
	if sub.kind != valueArray {
		return Value{}, eoeerrors.Newf(eoeerrors.BadPath, "filter target is not an array")
	}
	out := make([]Value, len(keep))
	for i, idx := range keep {
		if idx < 0 || idx >= len(sub.arr) {
			return Value{}, eoeerrors.Newf(eoeerrors.BadPath, "filter: index %d out of range", idx)
		}
		out[i] = sub.arr[idx]
	}
	return SubstituteV(v, path, NewArray(out...))
}
