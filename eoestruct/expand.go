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

// Visitor receives a streaming, depth-first walk of a Built document's
// expansion: one VisitConst per emitted atom, VisitSeparator between
// successive emitted siblings (array elements, object pairs, or rows of an
// All scope's own bracketed array), and matching Start/End pairs around
// arrays, objects, each object pair, and each All scope's row sequence. A
// Condition-gated subtree calls none of these for that occurrence; a
// structurally-present array, object, or All scope always calls its
// Start/End even when every element/pair/row it contains is elided.
type Visitor interface {
	VisitConst(Const) error
	VisitSeparator() error
	VisitArrayStart() error
	VisitArrayEnd() error
	VisitObjectStart() error
	VisitObjectEnd() error
	VisitPairStart(key string) error
	VisitPairEnd() error
}

// Expand drives vis over b's expansion, iterating every All scope in
// lock-step over its variables' current rows and eliding Condition-gated
// subtrees whose governing variable is falsy for a given row.
func Expand(b Built, lates *LateBindings, vis Visitor) error {
	e := &expander{lates: lates, visitor: vis}
	_, err := e.emit(b)
	return err
}

// frame is one active All scope: its slots after late-binding resolution,
// and the row currently being visited.
type frame struct {
	slots []VariableValue
	row   int
}

type expander struct {
	lates   *LateBindings
	visitor Visitor
	stack   []frame
}

// emit walks b, invoking the visitor, and reports whether anything was
// actually emitted for b (false only for an elided Condition; an All always
// emits its bracketing array, even with no rows).
func (e *expander) emit(b Built) (bool, error) {
	switch n := b.(type) {
	case BConst:
		if err := e.visitor.VisitConst(n.Value); err != nil {
			return false, err
		}
		return true, nil

	case BVar:
		c, err := e.get(n.Depth, n.Width)
		if err != nil {
			return false, err
		}
		if err := e.visitor.VisitConst(c); err != nil {
			return false, err
		}
		return true, nil

	case BCondition:
		live, err := e.checkCondition(n.Depth, n.Width)
		if err != nil || !live {
			return false, err
		}
		return e.emit(n.Body)

	case BArray:
		if err := e.visitor.VisitArrayStart(); err != nil {
			return false, err
		}
		started := false
		for _, c := range n.Elements {
			emitted, err := e.emit(c)
			if err != nil {
				return false, err
			}
			if emitted {
				if started {
					if err := e.visitor.VisitSeparator(); err != nil {
						return false, err
					}
				}
				started = true
			}
		}
		if err := e.visitor.VisitArrayEnd(); err != nil {
			return false, err
		}
		return true, nil

	case BObject:
		if err := e.visitor.VisitObjectStart(); err != nil {
			return false, err
		}
		started := false
		for _, p := range n.Pairs {
			emits, err := e.wouldEmit(p.Value)
			if err != nil {
				return false, err
			}
			if !emits {
				continue
			}
			if started {
				if err := e.visitor.VisitSeparator(); err != nil {
					return false, err
				}
			}
			if err := e.visitor.VisitPairStart(p.Key); err != nil {
				return false, err
			}
			if _, err := e.emit(p.Value); err != nil {
				return false, err
			}
			if err := e.visitor.VisitPairEnd(); err != nil {
				return false, err
			}
			started = true
		}
		if err := e.visitor.VisitObjectEnd(); err != nil {
			return false, err
		}
		return true, nil

	case BAll:
		if err := e.visitor.VisitArrayStart(); err != nil {
			return false, err
		}
		rows, resolved, err := resolveAllRows(n, e.lates)
		if err != nil {
			return false, err
		}
		started := false
		for r := 0; r < rows; r++ {
			e.stack = append(e.stack, frame{slots: resolved, row: r})
			emitted, err := e.emit(n.Body)
			e.stack = e.stack[:len(e.stack)-1]
			if err != nil {
				return false, err
			}
			if emitted {
				if started {
					if err := e.visitor.VisitSeparator(); err != nil {
						return false, err
					}
				}
				started = true
			}
		}
		if err := e.visitor.VisitArrayEnd(); err != nil {
			return false, err
		}
		return true, nil

	default:
		return false, eoeerrors.Newf(eoeerrors.UnknownVarType, "unrecognised built node %T", b)
	}
}

// wouldEmit is emit's side-effect-free twin, used by object-pair elision to
// decide whether a pair's key is written at all before committing to the
// visitor calls.
func (e *expander) wouldEmit(b Built) (bool, error) {
	switch n := b.(type) {
	case BConst, BVar:
		return true, nil

	case BCondition:
		live, err := e.checkCondition(n.Depth, n.Width)
		if err != nil || !live {
			return false, err
		}
		return e.wouldEmit(n.Body)

	case BArray, BObject:
		return true, nil

	case BAll:
		if _, _, err := resolveAllRows(n, e.lates); err != nil {
			return false, err
		}
		return true, nil

	default:
		return false, eoeerrors.Newf(eoeerrors.UnknownVarType, "unrecognised built node %T", b)
	}
}

// resolveAllRows resolves n's slots (following any late indirection) and
// returns how many lock-step rows the scope iterates, recomputing
// compatibility in case late bindings shifted a column's length since
// Build. It is a free function, not an *expander method, so the Selector
// (select.go) can share it without an expander instance.
func resolveAllRows(n BAll, lates *LateBindings) (int, []VariableValue, error) {
	resolved := make([]VariableValue, len(n.Slots))
	compat := column.NewGroupCompat(nil)
	for i, s := range n.Slots {
		if s == nil {
			continue
		}
		r, err := (*s).resolve(lates)
		if err != nil {
			return 0, nil, err
		}
		resolved[i] = r
		length, ok := r.len()
		compat = compat.Add(length, ok)
		if !compat.Compatible() {
			return 0, nil, eoeerrors.Newf(eoeerrors.GroupIncompatible, "all scope variables disagree on length during expansion")
		}
	}
	length, ok := compat.Len()
	if !ok {
		return 0, nil, eoeerrors.Newf(eoeerrors.NoFiniteDriver, "all scope has no finite variable to drive iteration")
	}
	return length, resolved, nil
}

// getAt returns the Const value of the variable at (depth, width) for the
// currently active row of the corresponding frame in stack.
func getAt(stack []frame, depth, width int, lates *LateBindings) (Const, error) {
	f := stack[len(stack)-1-depth]
	return f.slots[width].get(lates, f.row)
}

func truthyAt(stack []frame, depth, width int, lates *LateBindings) (bool, error) {
	c, err := getAt(stack, depth, width, lates)
	if err != nil {
		return false, err
	}
	return c.Truthy(), nil
}

func (e *expander) get(depth, width int) (Const, error) {
	return getAt(e.stack, depth, width, e.lates)
}

func (e *expander) checkCondition(depth, width int) (bool, error) {
	return truthyAt(e.stack, depth, width, e.lates)
}
