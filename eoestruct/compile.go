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
	"eoestruct.dev/go/eoestruct/internal/column"
)

// Build lowers t to its Built form, resolving every Var/Condition reference
// to a (depth, width) coordinate into the stack of enclosing All scopes and
// checking the structural invariants spec.md §7 assigns to the builder:
// a Condition may not be the template's root (TopLevelCondition), an All
// scope with no variables actually referenced by its body may not drive
// iteration (EmptyAll; a declared-but-unreferenced group member is simply
// given a nil slot, and a scope with an empty group degenerates to a
// one-element array around its body), the columns an All scope governs
// must agree on length (GroupIncompatible) and include at least one finite
// one (NoFiniteDriver), and every Var/Condition must resolve within an
// enclosing scope (FreeVariable). lates may be nil if t contains no Late
// variables.
func Build(t Template, lates *LateBindings) (Built, error) {
	if _, ok := t.(TCondition); ok {
		return nil, eoeerrors.Newf(eoeerrors.TopLevelCondition, "template root may not be a condition")
	}
	b := &builder{lates: lates}
	return b.build(t)
}

type scopeFrame struct {
	group VarGroup
}

type builder struct {
	lates  *LateBindings
	scopes []scopeFrame
}

func (b *builder) build(t Template) (Built, error) {
	switch n := t.(type) {
	case TConst:
		return BConst{Value: n.Value}, nil

	case TVar:
		depth, width, err := b.resolveRef(n.Var.ID)
		if err != nil {
			return nil, err
		}
		return BVar{Depth: depth, Width: width}, nil

	case TArray:
		children := make([]Built, len(n.Elements))
		hasCond := false
		for i, e := range n.Elements {
			c, err := b.build(e)
			if err != nil {
				return nil, err
			}
			children[i] = c
			if containsCondition(c) {
				hasCond = true
			}
		}
		return BArray{Elements: children, HasConditions: hasCond}, nil

	case TObject:
		pairs := make([]BPair, len(n.Pairs))
		for i, p := range n.Pairs {
			c, err := b.build(p.Value)
			if err != nil {
				return nil, err
			}
			pairs[i] = BPair{Key: p.Key, Value: c}
		}
		return BObject{Pairs: pairs}, nil

	case TAll:
		return b.buildAll(n)

	case TCondition:
		depth, width, err := b.resolveRef(n.Var.ID)
		if err != nil {
			return nil, err
		}
		body, err := b.build(n.Body)
		if err != nil {
			return nil, err
		}
		return BCondition{Depth: depth, Width: width, Body: body}, nil

	default:
		return nil, eoeerrors.Newf(eoeerrors.UnknownVarType, "unrecognised template node %T", t)
	}
}

func (b *builder) buildAll(n TAll) (Built, error) {
	values := collectGroupValues(n.Body, n.Group)

	// An All scope with no declared variables degenerates to a one-element
	// array holding its body, rather than an error: it binds nothing and
	// adds no depth level, so references in its body to enclosing scopes
	// resolve exactly as they would without it.
	if len(n.Group) == 0 {
		body, err := b.build(n.Body)
		if err != nil {
			return nil, err
		}
		return BArray{Elements: []Built{body}, HasConditions: containsCondition(body)}, nil
	}

	compat := column.NewGroupCompat(nil)
	anyFinite := false
	for _, id := range n.Group {
		v, ok := values[id]
		if !ok {
			// declared but never referenced in the body: contributes no
			// length constraint and gets a nil slot below.
			continue
		}
		var err error
		compat, err = v.checkCompatible(b.lates, compat)
		if err != nil {
			return nil, err
		}
		finite, err := v.isFinite(b.lates)
		if err != nil {
			return nil, err
		}
		if finite {
			anyFinite = true
		}
	}
	if len(values) == 0 {
		return nil, eoeerrors.Newf(eoeerrors.EmptyAll, "all scope declares variables but none are referenced in its body")
	}
	if !anyFinite {
		return nil, eoeerrors.Newf(eoeerrors.NoFiniteDriver, "all scope has no finite variable to drive iteration")
	}

	slots := make([]*VariableValue, len(n.Group))
	for i, id := range n.Group {
		if v, ok := values[id]; ok {
			v := v
			slots[i] = &v
		}
	}

	b.scopes = append(b.scopes, scopeFrame{group: n.Group})
	body, err := b.build(n.Body)
	b.scopes = b.scopes[:len(b.scopes)-1]
	if err != nil {
		return nil, err
	}
	return BAll{Slots: slots, Body: body}, nil
}

// resolveRef finds id in the nearest enclosing scope carrying it, returning
// its depth (0 = innermost) and width (position within that scope's group).
func (b *builder) resolveRef(id VarId) (depth, width int, err error) {
	for i := len(b.scopes) - 1; i >= 0; i-- {
		frame := b.scopes[i]
		for w, gid := range frame.group {
			if gid == id {
				return len(b.scopes) - 1 - i, w, nil
			}
		}
	}
	return 0, 0, eoeerrors.Newf(eoeerrors.FreeVariable, "variable %d is not bound by any enclosing all scope", id)
}

// collectGroupValues walks body (including nested scopes, since a group
// member's first textual reference may be arbitrarily deep) recording the
// VariableValue carried by the first TVar/TCondition occurrence of each id
// in group. An id in group that is never referenced in body is simply
// absent from the result; the caller gives it a nil slot rather than
// treating it as an error.
func collectGroupValues(body Template, group VarGroup) map[VarId]VariableValue {
	want := map[VarId]bool{}
	for _, id := range group {
		want[id] = true
	}
	found := map[VarId]VariableValue{}
	var walk func(t Template)
	walk = func(t Template) {
		switch n := t.(type) {
		case TVar:
			if want[n.Var.ID] {
				if _, ok := found[n.Var.ID]; !ok {
					found[n.Var.ID] = n.Var.Value
				}
			}
		case TCondition:
			if want[n.Var.ID] {
				if _, ok := found[n.Var.ID]; !ok {
					found[n.Var.ID] = n.Var.Value
				}
			}
			walk(n.Body)
		case TArray:
			for _, e := range n.Elements {
				walk(e)
			}
		case TObject:
			for _, p := range n.Pairs {
				walk(p.Value)
			}
		case TAll:
			walk(n.Body)
		}
	}
	walk(body)
	return found
}

// Unbuild reverses Build, synthesizing fresh VarIds for the variables a
// Built document's BAll scopes carry positionally. The result is equivalent
// to (but not necessarily identical to, since ids are renumbered) the
// Template that produced b.
func Unbuild(b Built) Template {
	u := &unbuilder{}
	return u.unbuild(b)
}

type unbuildFrame struct {
	ids   []VarId
	slots []*VariableValue
}

type unbuilder struct {
	scopes []unbuildFrame
}

func (u *unbuilder) unbuild(b Built) Template {
	switch n := b.(type) {
	case BConst:
		return TConst{Value: n.Value}

	case BVar:
		id, value := u.lookup(n.Depth, n.Width)
		return TVar{Var: Var{ID: id, Value: value}}

	case BArray:
		elems := make([]Template, len(n.Elements))
		for i, c := range n.Elements {
			elems[i] = u.unbuild(c)
		}
		return TArray{Elements: elems}

	case BObject:
		pairs := make([]Pair, len(n.Pairs))
		for i, p := range n.Pairs {
			pairs[i] = Pair{Key: p.Key, Value: u.unbuild(p.Value)}
		}
		return TObject{Pairs: pairs}

	case BAll:
		ids := make([]VarId, len(n.Slots))
		for i := range n.Slots {
			ids[i] = NewVarId()
		}
		u.scopes = append(u.scopes, unbuildFrame{ids: ids, slots: n.Slots})
		body := u.unbuild(n.Body)
		u.scopes = u.scopes[:len(u.scopes)-1]
		return TAll{Group: VarGroup(ids), Body: body}

	case BCondition:
		id, value := u.lookup(n.Depth, n.Width)
		body := u.unbuild(n.Body)
		return TCondition{Var: Var{ID: id, Value: value}, Body: body}

	default:
		return TConst{Value: NullConst()}
	}
}

func (u *unbuilder) lookup(depth, width int) (VarId, VariableValue) {
	i := len(u.scopes) - 1 - depth
	frame := u.scopes[i]
	return frame.ids[width], *frame.slots[width]
}
