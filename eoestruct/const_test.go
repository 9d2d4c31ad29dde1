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

func TestConstTruthy(t *testing.T) {
	cases := []struct {
		name string
		c    Const
		want bool
	}{
		{"null", NullConst(), false},
		{"false", BoolConst(false), false},
		{"true", BoolConst(true), true},
		{"zero", NumberConst(0), false},
		{"nonzero", NumberConst(-3.5), true},
		{"empty string", StringConst(""), false},
		{"nonempty string", StringConst("x"), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.c.Truthy(); got != c.want {
				t.Errorf("Truthy() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestConstTotalOrder(t *testing.T) {
	ordered := []Const{
		NullConst(),
		BoolConst(false),
		BoolConst(true),
		NumberConst(-1),
		NumberConst(5),
		StringConst("a"),
		StringConst("b"),
	}
	for i := 0; i < len(ordered)-1; i++ {
		if c := ordered[i].Compare(ordered[i+1]); c >= 0 {
			t.Errorf("ordered[%d]=%v should sort before ordered[%d]=%v, got Compare=%d", i, ordered[i], i+1, ordered[i+1], c)
		}
	}
}

func TestConstEqual(t *testing.T) {
	if !NumberConst(3).Equal(NumberConst(3)) {
		t.Errorf("NumberConst(3) should equal itself")
	}
	if NumberConst(3).Equal(StringConst("3")) {
		t.Errorf("values of different kinds should never be equal")
	}
}
