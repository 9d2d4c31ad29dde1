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

// valueKind classifies a Value node. Order is the total order between
// kinds used by Compare: Null < Bool < Number < String < Array < Object.
type valueKind int

const (
	valueNull valueKind = iota
	valueBool
	valueNumber
	valueString
	valueArray
	valueObject
)

// ValuePair is one key/value entry of an object Value, in declaration
// order.
type ValuePair struct {
	Key   string
	Value Value
}

// Value is a fully-expanded document (C10): every variable has been
// resolved to a concrete atom and every All/Condition has been resolved
// away, leaving the plain JSON-shaped tree of null/bool/number/string,
// ordered arrays, and ordered (possibly key-duplicated) objects.
type Value struct {
	kind valueKind
	b    bool
	n    float64
	s    string
	arr  []Value
	obj  []ValuePair
}

// NewNull returns the null value.
func NewNull() Value { return Value{kind: valueNull} }

// NewBool wraps a boolean value.
func NewBool(v bool) Value { return Value{kind: valueBool, b: v} }

// NewNumber wraps a numeric value.
func NewNumber(v float64) Value { return Value{kind: valueNumber, n: v} }

// NewString wraps a string value.
func NewString(v string) Value { return Value{kind: valueString, s: v} }

// NewArray wraps an ordered sequence of child values.
func NewArray(elements ...Value) Value {
	return Value{kind: valueArray, arr: elements}
}

// NewObject wraps an ordered sequence of key/value pairs.
func NewObject(pairs ...ValuePair) Value {
	return Value{kind: valueObject, obj: pairs}
}

// NewValuePair builds one NewObject entry.
func NewValuePair(key string, v Value) ValuePair {
	return ValuePair{Key: key, Value: v}
}

// FromConst lifts an atom into the Value tree.
func FromConst(c Const) Value {
	switch c.kind {
	case constNull:
		return NewNull()
	case constBool:
		b, _ := c.Bool()
		return NewBool(b)
	case constNumber:
		n, _ := c.Number()
		return NewNumber(n)
	default:
		s, _ := c.StringValue()
		return NewString(s)
	}
}

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == valueNull }

// Bool returns v's boolean payload and whether v actually is a Bool.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == valueBool }

// Number returns v's numeric payload and whether v actually is a Number.
func (v Value) Number() (float64, bool) { return v.n, v.kind == valueNumber }

// StringValue returns v's string payload and whether v actually is a
// String.
func (v Value) StringValue() (string, bool) { return v.s, v.kind == valueString }

// Array returns v's children and whether v actually is an Array.
func (v Value) Array() ([]Value, bool) { return v.arr, v.kind == valueArray }

// Object returns v's pairs and whether v actually is an Object.
func (v Value) Object() ([]ValuePair, bool) { return v.obj, v.kind == valueObject }

// AsConst returns v as a Const if it is an atom (not Array/Object).
func (v Value) AsConst() (Const, bool) {
	switch v.kind {
	case valueNull:
		return NullConst(), true
	case valueBool:
		return BoolConst(v.b), true
	case valueNumber:
		return NumberConst(v.n), true
	case valueString:
		return StringConst(v.s), true
	default:
		return Const{}, false
	}
}

// Truthy reports v's boolean interpretation (spec §4.11): atoms follow
// Const's rule; an array or object is true iff it has at least one
// element/pair.
func (v Value) Truthy() bool {
	switch v.kind {
	case valueArray:
		return len(v.arr) > 0
	case valueObject:
		return len(v.obj) > 0
	default:
		c, _ := v.AsConst()
		return c.Truthy()
	}
}

// Equal reports whether v and other compare equal.
func (v Value) Equal(other Value) bool { return v.Compare(other) == 0 }

// Compare orders v against other: first by kind, then by value within a
// kind (arrays/objects compare element-wise, then by length for a common
// prefix — the usual slice-ordering convention).
func (v Value) Compare(other Value) int {
	if v.kind != other.kind {
		if v.kind < other.kind {
			return -1
		}
		return 1
	}
	switch v.kind {
	case valueNull:
		return 0
	case valueBool:
		return boolCompare(v.b, other.b)
	case valueNumber:
		switch {
		case v.n < other.n:
			return -1
		case v.n > other.n:
			return 1
		default:
			return 0
		}
	case valueString:
		switch {
		case v.s < other.s:
			return -1
		case v.s > other.s:
			return 1
		default:
			return 0
		}
	case valueArray:
		return compareValueSlices(v.arr, other.arr)
	default: // valueObject
		n := len(v.obj)
		if len(other.obj) < n {
			n = len(other.obj)
		}
		for i := 0; i < n; i++ {
			if v.obj[i].Key != other.obj[i].Key {
				if v.obj[i].Key < other.obj[i].Key {
					return -1
				}
				return 1
			}
			if c := v.obj[i].Value.Compare(other.obj[i].Value); c != 0 {
				return c
			}
		}
		switch {
		case len(v.obj) < len(other.obj):
			return -1
		case len(v.obj) > len(other.obj):
			return 1
		default:
			return 0
		}
	}
}

func compareValueSlices(a, b []Value) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := a[i].Compare(b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// ExpandToValue fully materializes b's expansion into a Value tree.
func ExpandToValue(b Built, lates *LateBindings) (Value, error) {
	vb := &valueBuilder{}
	if err := Expand(b, lates, vb); err != nil {
		return Value{}, err
	}
	return vb.result, nil
}

// ToBuilt lifts a fully-expanded Value back into a variable-free Built
// document, e.g. to splice a previously-computed result back in as a
// constant subtree via the Editor's substitute/replace operations.
func ToBuilt(v Value) Built {
	switch v.kind {
	case valueArray:
		children := make([]Built, len(v.arr))
		hasCond := false
		for i, e := range v.arr {
			children[i] = ToBuilt(e)
		}
		return BArray{Elements: children, HasConditions: hasCond}
	case valueObject:
		pairs := make([]BPair, len(v.obj))
		for i, p := range v.obj {
			pairs[i] = BPair{Key: p.Key, Value: ToBuilt(p.Value)}
		}
		return BObject{Pairs: pairs}
	default:
		c, _ := v.AsConst()
		return BConst{Value: c}
	}
}

// valueBuilder is the Visitor that drives ExpandToValue.
type valueBuilder struct {
	stack  []vbFrame
	result Value
}

type vbFrame struct {
	isObject   bool
	arr        []Value
	obj        []ValuePair
	pendingKey string
}

func (vb *valueBuilder) push(v Value) {
	if len(vb.stack) == 0 {
		vb.result = v
		return
	}
	top := &vb.stack[len(vb.stack)-1]
	if top.isObject {
		top.obj = append(top.obj, ValuePair{Key: top.pendingKey, Value: v})
	} else {
		top.arr = append(top.arr, v)
	}
}

func (vb *valueBuilder) pop() vbFrame {
	n := len(vb.stack) - 1
	f := vb.stack[n]
	vb.stack = vb.stack[:n]
	return f
}

func (vb *valueBuilder) VisitConst(c Const) error {
	vb.push(FromConst(c))
	return nil
}

func (vb *valueBuilder) VisitSeparator() error { return nil }

func (vb *valueBuilder) VisitArrayStart() error {
	vb.stack = append(vb.stack, vbFrame{isObject: false})
	return nil
}

func (vb *valueBuilder) VisitArrayEnd() error {
	f := vb.pop()
	vb.push(NewArray(f.arr...))
	return nil
}

func (vb *valueBuilder) VisitObjectStart() error {
	vb.stack = append(vb.stack, vbFrame{isObject: true})
	return nil
}

func (vb *valueBuilder) VisitObjectEnd() error {
	f := vb.pop()
	vb.push(NewObject(f.obj...))
	return nil
}

func (vb *valueBuilder) VisitPairStart(key string) error {
	vb.stack[len(vb.stack)-1].pendingKey = key
	return nil
}

func (vb *valueBuilder) VisitPairEnd() error { return nil }
