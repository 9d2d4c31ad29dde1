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

// Built is a Template after Build has resolved every variable reference to
// a de Bruijn-style (depth, width) coordinate into the stack of enclosing
// BAll scopes, the way a compiler resolves a lexical variable reference to
// a (frame, slot) pair instead of a name. depth counts outward from the
// innermost enclosing BAll (0 = that scope itself); width indexes into that
// scope's slots in VarGroup declaration order.
type Built interface {
	isBuilt()
}

// BConst is a literal atom, unchanged from the source TConst.
type BConst struct {
	Value Const
}

// BVar references the variable at (Depth, Width) in the enclosing BAll
// stack.
type BVar struct {
	Depth int
	Width int
}

// BArray is an ordered sequence of children. HasConditions records whether
// any descendant (without crossing into a nested BAll's own scope) is a
// BCondition. It is informational (shown by Dump): Expand and Select check
// every BCondition they reach whatever its value.
type BArray struct {
	Elements       []Built
	HasConditions bool
}

// BPair is one key/value entry of a BObject.
type BPair struct {
	Key   string
	Value Built
}

// BObject is an ordered key/value node.
type BObject struct {
	Pairs []BPair
}

// BAll is a resolved iteration scope. Slots holds one *VariableValue per
// group member, in VarGroup declaration order, shared by pointer so that
// filterVV/resolve narrowing applied while expanding is visible to every
// BVar at width i that was assigned during Build.
type BAll struct {
	Slots []*VariableValue
	Body  Built
}

// BCondition gates Body on the truthiness of the variable at (Depth,
// Width), the same coordinate space BVar uses.
type BCondition struct {
	Depth int
	Width int
	Body  Built
}

func (BConst) isBuilt()     {}
func (BVar) isBuilt()       {}
func (BArray) isBuilt()     {}
func (BObject) isBuilt()    {}
func (BAll) isBuilt()       {}
func (BCondition) isBuilt() {}

// containsCondition reports whether b (not descending into a nested BAll's
// own scope) contains a BCondition, used to compute BArray.HasConditions
// when an array literal is built directly rather than via the Builder's
// bottom-up fold.
func containsCondition(b Built) bool {
	switch n := b.(type) {
	case BCondition:
		return true
	case BArray:
		return n.HasConditions
	case BObject:
		for _, p := range n.Pairs {
			if containsCondition(p.Value) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
