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
	"sync/atomic"

	"github.com/google/uuid"

	eoeerrors "eoestruct.dev/go/eoestruct/errors"
	"eoestruct.dev/go/eoestruct/internal/approxnum"
	"eoestruct.dev/go/eoestruct/internal/column"
	"eoestruct.dev/go/eoestruct/internal/filter"
)

// varSeq is the process-wide source of VarId values. Ids are unique for the
// life of the process but are never required to be dense (spec §3, §5): a
// template may discard ids freely.
var varSeq uint64

// VarId names one template variable. The zero VarId is never issued by
// NewVarId, so it can serve as a "no id" sentinel where convenient.
type VarId uint64

// NewVarId allocates a fresh, process-wide unique VarId.
func NewVarId() VarId {
	return VarId(atomic.AddUint64(&varSeq, 1))
}

// VarGroup is an ordered set of VarIds sharing one All scope, in the order
// the caller declares them; that order fixes each member's slot (width).
type VarGroup []VarId

// Contains reports whether id is a member of g.
func (g VarGroup) Contains(id VarId) bool {
	for _, v := range g {
		if v == id {
			return true
		}
	}
	return false
}

// varKind tags which column type (or Late indirection) a VariableValue
// currently holds.
type varKind int

const (
	varNumber varKind = iota
	varString
	varBoolean
	varLate
)

// VariableValue is the payload bound to a template Var: a homogeneous
// sequence of numbers, strings, or booleans (held as a column.Column, so it
// may be a plain sequence, a shared-index sequence, or a single broadcast
// value), or an indirection onto another variable to be supplied later via
// LateBindings (spec §5's "late" / external-binding variables).
type VariableValue struct {
	kind    varKind
	numbers column.Column[float64]
	strings column.Column[string]
	bools   column.Column[bool]
	late    VarId
}

// NumberVar wraps a column of numbers.
func NumberVar(c column.Column[float64]) VariableValue {
	return VariableValue{kind: varNumber, numbers: c}
}

// StringVar wraps a column of strings.
func StringVar(c column.Column[string]) VariableValue {
	return VariableValue{kind: varString, strings: c}
}

// BoolVar wraps a column of booleans.
func BoolVar(c column.Column[bool]) VariableValue {
	return VariableValue{kind: varBoolean, bools: c}
}

// LateVar returns a VariableValue that indirects to whatever value id is
// eventually bound to in a LateBindings table.
func LateVar(id VarId) VariableValue {
	return VariableValue{kind: varLate, late: id}
}

// IsLate reports whether v is an unresolved late indirection.
func (v VariableValue) IsLate() bool { return v.kind == varLate }

// toConst reports whether v is a trivial broadcast of a single value with no
// late indirection, returning that value as a Const if so. The builder does
// not call it: a `Var` wrapping `column.Every` stays a BVar in the built form.
func (v VariableValue) toConst() (Const, bool) {
	switch v.kind {
	case varNumber:
		if v.numbers.IsEvery() {
			return NumberConst(v.numbers.Get(0)), true
		}
	case varString:
		if v.strings.IsEvery() {
			return StringConst(v.strings.Get(0)), true
		}
	case varBoolean:
		if v.bools.IsEvery() {
			return BoolConst(v.bools.Get(0)), true
		}
	}
	return Const{}, false
}

// resolve follows late indirections until it reaches a concrete column,
// detecting cycles by bounding the chase to the number of bindings recorded.
func (v VariableValue) resolve(lates *LateBindings) (VariableValue, error) {
	seen := 0
	limit := 1
	if lates != nil {
		limit = len(lates.bindings) + 1
	}
	for v.kind == varLate {
		seen++
		if seen > limit {
			return VariableValue{}, eoeerrors.Newf(eoeerrors.LateBindingShape, "late binding cycle at var %d", v.late)
		}
		if lates == nil {
			return VariableValue{}, eoeerrors.Newf(eoeerrors.LateBindingShape, "var %d has no late binding", v.late)
		}
		next, ok := lates.bindings[v.late]
		if !ok {
			return VariableValue{}, eoeerrors.Newf(eoeerrors.LateBindingShape, "var %d has no late binding", v.late)
		}
		v = next
	}
	return v, nil
}

// isFinite reports whether v (after resolving any late indirection) has a
// definite length, as opposed to being an infinite Every broadcast.
func (v VariableValue) isFinite(lates *LateBindings) (bool, error) {
	r, err := v.resolve(lates)
	if err != nil {
		return false, err
	}
	_, ok := r.len()
	return ok, nil
}

// len reports the resolved column's finite length, mirroring column.Len.
func (v VariableValue) len() (int, bool) {
	switch v.kind {
	case varNumber:
		return v.numbers.Len()
	case varString:
		return v.strings.Len()
	case varBoolean:
		return v.bools.Len()
	default:
		return 0, false
	}
}

// checkBuildCompatible folds v's length (if finite) into compat, without
// resolving late indirections (a Late v leaves compat unchanged); callers
// pass an already-resolved value, as checkCompatible does.
func (v VariableValue) checkBuildCompatible(compat column.GroupCompat) column.GroupCompat {
	switch v.kind {
	case varNumber:
		return column.AddColumn(compat, v.numbers)
	case varString:
		return column.AddColumn(compat, v.strings)
	case varBoolean:
		return column.AddColumn(compat, v.bools)
	default:
		return compat
	}
}

// checkCompatible resolves v and folds its length into compat, returning a
// GroupIncompatible error immediately if the fold contradicts what has been
// seen already.
func (v VariableValue) checkCompatible(lates *LateBindings, compat column.GroupCompat) (column.GroupCompat, error) {
	r, err := v.resolve(lates)
	if err != nil {
		return compat, err
	}
	next := r.checkBuildCompatible(compat)
	if !next.Compatible() {
		return next, eoeerrors.Newf(eoeerrors.GroupIncompatible, "variable length disagrees with enclosing all scope")
	}
	return next, nil
}

// get resolves v and returns its logical element at index as a Const.
func (v VariableValue) get(lates *LateBindings, index int) (Const, error) {
	r, err := v.resolve(lates)
	if err != nil {
		return Const{}, err
	}
	switch r.kind {
	case varNumber:
		return NumberConst(r.numbers.Get(index)), nil
	case varString:
		return StringConst(r.strings.Get(index)), nil
	case varBoolean:
		return BoolConst(r.bools.Get(index)), nil
	default:
		return Const{}, eoeerrors.Newf(eoeerrors.UnknownVarType, "variable resolved to no concrete column")
	}
}

// exists reports whether index is in range for v's resolved column (always
// true for an Every broadcast).
func (v VariableValue) exists(lates *LateBindings, index int) (bool, error) {
	r, err := v.resolve(lates)
	if err != nil {
		return false, err
	}
	n, ok := r.len()
	if !ok {
		return true, nil
	}
	return index >= 0 && index < n, nil
}

// atIndex returns a singleton VariableValue holding v's logical element at
// index, for the Editor's set_index operation (spec §4.6): ok is false for
// a Late indirection (not yet resolvable) or an Every broadcast or an
// out-of-range index (nothing the Editor can collapse to one row).
func (v VariableValue) atIndex(index int) (VariableValue, bool) {
	switch v.kind {
	case varNumber:
		n, ok := v.numbers.Len()
		if !ok || index < 0 || index >= n {
			return VariableValue{}, false
		}
		return NumberVar(column.Each([]float64{v.numbers.Get(index)})), true
	case varString:
		n, ok := v.strings.Len()
		if !ok || index < 0 || index >= n {
			return VariableValue{}, false
		}
		return StringVar(column.Each([]string{v.strings.Get(index)})), true
	case varBoolean:
		n, ok := v.bools.Len()
		if !ok || index < 0 || index >= n {
			return VariableValue{}, false
		}
		return BoolVar(column.Each([]bool{v.bools.Get(index)})), true
	default:
		return VariableValue{}, false
	}
}

// compatibleWithLen reports whether v's own column (not following late
// indirection) agrees with length, mirroring Column.Compatible; a Late
// indirection is trivially compatible since its eventual column is not yet
// known.
func (v VariableValue) compatibleWithLen(length int) bool {
	switch v.kind {
	case varNumber:
		return v.numbers.Compatible(length)
	case varString:
		return v.strings.Compatible(length)
	case varBoolean:
		return v.bools.Compatible(length)
	default:
		return true
	}
}

// filterVV restricts v's own column to the positions selected by f. It does
// not follow late indirection: a late variable is returned unchanged and is
// not filtered.
func (v VariableValue) filterVV(f filter.Filter) VariableValue {
	switch v.kind {
	case varNumber:
		return NumberVar(column.Filter(v.numbers, f))
	case varString:
		return StringVar(column.Filter(v.strings, f))
	case varBoolean:
		return BoolVar(column.Filter(v.bools, f))
	default:
		return v
	}
}

// approxKey returns a hashable key for grouping equal numbers at k
// significant digits, suitable as the key function of Demerge over a
// number-valued column.
func approxKey(k int32) func(float64) [2]int64 {
	return func(v float64) [2]int64 { return approxnum.New(v, k).Key() }
}

// LateBindings records the concrete values eventually supplied for Late
// variables, keyed by VarId. A caller builds a template containing LateVar
// placeholders, then populates a LateBindings table (e.g. as user input
// arrives) before Build or Expand resolves them.
type LateBindings struct {
	bindings map[VarId]VariableValue
	tags     map[VarId]string
	byTag    map[string]VarId
}

// NewLateBindings returns an empty binding table.
func NewLateBindings() *LateBindings {
	return &LateBindings{
		bindings: map[VarId]VariableValue{},
		tags:     map[VarId]string{},
		byTag:    map[string]VarId{},
	}
}

// Add records that source resolves target: every later reference to
// target's variable (directly, or transitively through another late
// binding) resolves to source. target must itself be a Late indirection
// (binding a non-late, already-concrete variable makes no sense: nothing
// ever consults a binding for it) and must not already be bound; source
// must not itself be another unresolved Late indirection (chaining one
// late variable to another is rejected outright, not merely cycles of it,
// since resolve has no way to tell a legitimate chain from one that will
// never be supplied).
func (lb *LateBindings) Add(target VariableValue, source VariableValue) error {
	if target.kind != varLate {
		return eoeerrors.Newf(eoeerrors.LateBindingShape, "can only bind to late variables")
	}
	if source.kind == varLate {
		return eoeerrors.Newf(eoeerrors.LateBindingShape, "cannot bind late variables to late variables")
	}
	id := target.late
	if _, ok := lb.bindings[id]; ok {
		return eoeerrors.Newf(eoeerrors.LateBindingShape, "var %d is already bound", id)
	}
	lb.bindings[id] = source
	return nil
}

// Register allocates a fresh VarId for a late variable and a stable,
// externally-shareable tag for it (e.g. a form field name), returning both.
// The tag is a UUID rather than the VarId itself so that ids remain free to
// be renumbered across process restarts without invalidating a caller's
// already-distributed references.
func (lb *LateBindings) Register() (VarId, string) {
	id := NewVarId()
	tag := uuid.NewString()
	lb.tags[id] = tag
	lb.byTag[tag] = id
	return id, tag
}

// Tag returns the external tag registered for id, if any.
func (lb *LateBindings) Tag(id VarId) (string, bool) {
	t, ok := lb.tags[id]
	return t, ok
}

// ByTag resolves an external tag back to its VarId, if Register produced it.
func (lb *LateBindings) ByTag(tag string) (VarId, bool) {
	id, ok := lb.byTag[tag]
	return id, ok
}
