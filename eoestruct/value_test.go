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

import "testing"

func TestValueTruthy(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want bool
	}{
		{"null", NewNull(), false},
		{"empty array", NewArray(), false},
		{"nonempty array", NewArray(NewNull()), true},
		{"empty object", NewObject(), false},
		{"nonempty object", NewObject(NewValuePair("k", NewBool(false))), true},
		{"zero", NewNumber(0), false},
		{"nonzero", NewNumber(1), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.v.Truthy(); got != c.want {
				t.Errorf("Truthy() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestValueTotalOrder(t *testing.T) {
	ordered := []Value{
		NewNull(),
		NewBool(false),
		NewBool(true),
		NewNumber(-1),
		NewNumber(5),
		NewString("a"),
		NewString("b"),
		NewArray(NewNumber(1)),
		NewArray(NewNumber(1), NewNumber(2)),
		NewObject(NewValuePair("a", NewNumber(1))),
		NewObject(NewValuePair("b", NewNumber(1))),
	}
	for i := 0; i < len(ordered)-1; i++ {
		if c := ordered[i].Compare(ordered[i+1]); c >= 0 {
			t.Errorf("ordered[%d] should sort before ordered[%d], got Compare=%d", i, i+1, c)
		}
	}
}

func TestValueEqualArraysAndObjects(t *testing.T) {
	a := NewArray(NewNumber(1), NewString("x"))
	b := NewArray(NewNumber(1), NewString("x"))
	if !a.Equal(b) {
		t.Errorf("equal arrays should compare equal")
	}
	c := NewArray(NewNumber(1), NewString("y"))
	if a.Equal(c) {
		t.Errorf("differing arrays should not compare equal")
	}

	o1 := NewObject(NewValuePair("k", NewNumber(1)), NewValuePair("j", NewNumber(2)))
	o2 := NewObject(NewValuePair("k", NewNumber(1)), NewValuePair("j", NewNumber(2)))
	if !o1.Equal(o2) {
		t.Errorf("equal objects should compare equal")
	}
}

func TestToBuiltRoundTrip(t *testing.T) {
	v := NewObject(
		NewValuePair("name", NewString("ada")),
		NewValuePair("tags", NewArray(NewString("x"), NewString("y"))),
		NewValuePair("ok", NewBool(true)),
	)
	built := ToBuilt(v)
	got, err := ExpandToValue(built, nil)
	if err != nil {
		t.Fatalf("ExpandToValue: %v", err)
	}
	if !got.Equal(v) {
		t.Errorf("round trip mismatch: got %#v, want %#v", got, v)
	}
}

func TestFromConstMatchesAsConst(t *testing.T) {
	consts := []Const{NullConst(), BoolConst(true), NumberConst(3.5), StringConst("hi")}
	for _, c := range consts {
		v := FromConst(c)
		back, ok := v.AsConst()
		if !ok {
			t.Fatalf("AsConst() failed for %v", v)
		}
		if !back.Equal(c) {
			t.Errorf("FromConst/AsConst round trip mismatch: got %v, want %v", back, c)
		}
	}
}
