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
	"testing"

	"eoestruct.dev/go/eoestruct/internal/column"
	"eoestruct.dev/go/eoestruct/internal/filter"
)

func TestPathSetChildAndTerminal(t *testing.T) {
	ps := NewPathSet()
	ps.Insert(Path{Index(1), Key("name")})
	ps.Insert(Path{Wildcard(), Key("score")})

	child, ok := ps.Child(Index(1))
	if !ok {
		t.Fatalf("expected Child(Index(1)) to exist via wildcard or exact match")
	}
	grandchild, ok := child.Child(Key("name"))
	if !ok || !grandchild.Terminal() {
		t.Fatalf("expected terminal node at [1]/name")
	}

	_, ok = ps.Child(Index(99))
	if !ok {
		t.Fatalf("expected wildcard entry to match any index")
	}
}

func TestExtractNavigatesArraysAndObjects(t *testing.T) {
	tmpl := ObjectNode(
		NewPair("items", ArrayNode(
			ConstNode(NumberConst(1)),
			ConstNode(NumberConst(2)),
		)),
	)
	got, err := Extract(tmpl, Path{Key("items"), Index(1)})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	c, ok := got.(TConst)
	if !ok || !c.Value.Equal(NumberConst(2)) {
		t.Fatalf("got %#v, want TConst(2)", got)
	}
}

func TestExtractMissingKeyErrors(t *testing.T) {
	tmpl := ObjectNode(NewPair("a", ConstNode(NumberConst(1))))
	_, err := Extract(tmpl, Path{Key("missing")})
	if err == nil {
		t.Fatalf("expected error for missing key")
	}
}

func TestSubstituteRebuildsSpineOnly(t *testing.T) {
	tmpl := ArrayNode(
		ConstNode(NumberConst(1)),
		ConstNode(NumberConst(2)),
		ConstNode(NumberConst(3)),
	)
	replaced, err := Substitute(tmpl, Path{Index(1)}, ConstNode(StringConst("two")))
	if err != nil {
		t.Fatalf("Substitute: %v", err)
	}

	origArr := tmpl.(TArray)
	newArr := replaced.(TArray)
	if len(newArr.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(newArr.Elements))
	}
	// untouched siblings are shared, unchanged
	if newArr.Elements[0] != origArr.Elements[0] {
		t.Errorf("expected element 0 to be shared unchanged")
	}
	if newArr.Elements[2] != origArr.Elements[2] {
		t.Errorf("expected element 2 to be shared unchanged")
	}
	c, ok := newArr.Elements[1].(TConst)
	if !ok || !c.Value.Equal(StringConst("two")) {
		t.Fatalf("got %#v at index 1, want TConst(\"two\")", newArr.Elements[1])
	}

	// original is untouched
	origC, ok := origArr.Elements[1].(TConst)
	if !ok || !origC.Value.Equal(NumberConst(2)) {
		t.Fatalf("original template was mutated: %#v", origArr.Elements[1])
	}
}

func TestSetIndexPinsAllScopeToOneRow(t *testing.T) {
	scores := NewVar(NumberVar(column.Each([]float64{10, 20, 30})))
	tmpl := AllNode(VarGroup{scores.ID}, VarNode(scores))

	got, err := SetIndex(tmpl, nil, 2)
	if err != nil {
		t.Fatalf("SetIndex: %v", err)
	}
	built, err := Build(got, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	val, err := ExpandToValue(built, nil)
	if err != nil {
		t.Fatalf("ExpandToValue: %v", err)
	}
	want := NewArray(NewNumber(30))
	if !val.Equal(want) {
		t.Fatalf("got %#v, want %#v", val, want)
	}
}

func TestSetIndexLeavesUnreferencedGroupMembersAlone(t *testing.T) {
	scores := NewVar(NumberVar(column.Each([]float64{10, 20, 30})))
	tags := NewVar(StringVar(column.Each([]string{"a", "b", "c"})))
	tmpl := AllNode(VarGroup{scores.ID, tags.ID}, VarNode(scores))

	got, err := SetIndex(tmpl, nil, 1)
	if err != nil {
		t.Fatalf("SetIndex: %v", err)
	}
	built, err := Build(got, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	val, err := ExpandToValue(built, nil)
	if err != nil {
		t.Fatalf("ExpandToValue: %v", err)
	}
	want := NewArray(NewNumber(20))
	if !val.Equal(want) {
		t.Fatalf("got %#v, want %#v", val, want)
	}
}

func TestFilterTemplateRestrictsAllScope(t *testing.T) {
	scores := NewVar(NumberVar(column.Each([]float64{10, 20, 30})))
	tmpl := AllNode(VarGroup{scores.ID}, VarNode(scores))

	var b filter.Builder
	b.Set(0)
	b.Set(2)
	keep := b.Make(3)
	got, err := FilterTemplate(tmpl, nil, keep)
	if err != nil {
		t.Fatalf("FilterTemplate: %v", err)
	}
	built, err := Build(got, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	val, err := ExpandToValue(built, nil)
	if err != nil {
		t.Fatalf("ExpandToValue: %v", err)
	}
	want := NewArray(NewNumber(10), NewNumber(30))
	if !val.Equal(want) {
		t.Fatalf("got %#v, want %#v", val, want)
	}
}

func TestCompatibleChecksAllScopeGroupAgainstLength(t *testing.T) {
	a := NewVar(NumberVar(column.Each([]float64{1, 2, 3})))
	b := NewVar(StringVar(column.Each([]string{"x", "y", "z"})))
	tmpl := AllNode(VarGroup{a.ID, b.ID}, ObjectNode(
		NewPair("a", VarNode(a)),
		NewPair("b", VarNode(b)),
	))

	ok, err := Compatible(tmpl, nil, 3)
	if err != nil {
		t.Fatalf("Compatible: %v", err)
	}
	if !ok {
		t.Fatalf("expected length-3 group to report compatible with 3")
	}

	ok, err = Compatible(tmpl, nil, 2)
	if err != nil {
		t.Fatalf("Compatible: %v", err)
	}
	if ok {
		t.Fatalf("expected length-3 group to report incompatible with 2")
	}
}

func TestCompatibleTreatsEveryAsTriviallyCompatible(t *testing.T) {
	flag := NewVar(BoolVar(column.Every(true)))
	nums := NewVar(NumberVar(column.Each([]float64{1, 2, 3, 4})))
	tmpl := AllNode(VarGroup{flag.ID, nums.ID}, ConditionNode(flag, VarNode(nums)))

	ok, err := Compatible(tmpl, nil, 4)
	if err != nil {
		t.Fatalf("Compatible: %v", err)
	}
	if !ok {
		t.Fatalf("expected an Every column to never make the group incompatible")
	}
}

func TestExtractValueResolvesVariableFreeSubtree(t *testing.T) {
	tmpl := ObjectNode(
		NewPair("items", ArrayNode(ConstNode(NumberConst(1)), ConstNode(NumberConst(2)))),
	)
	got, err := ExtractValue(tmpl, Path{Key("items")})
	if err != nil {
		t.Fatalf("ExtractValue: %v", err)
	}
	want := NewArray(NewNumber(1), NewNumber(2))
	if !got.Equal(want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestValueSideExtractSubstituteFilter(t *testing.T) {
	v := NewObject(NewValuePair("items", NewArray(NewNumber(1), NewNumber(2), NewNumber(3))))

	got, err := ExtractV(v, Path{Key("items"), Index(1)})
	if err != nil {
		t.Fatalf("ExtractV: %v", err)
	}
	if !got.Equal(NewNumber(2)) {
		t.Fatalf("got %v, want 2", got)
	}

	replaced, err := SubstituteV(v, Path{Key("items"), Index(1)}, NewNumber(99))
	if err != nil {
		t.Fatalf("SubstituteV: %v", err)
	}
	want := NewObject(NewValuePair("items", NewArray(NewNumber(1), NewNumber(99), NewNumber(3))))
	if !replaced.Equal(want) {
		t.Errorf("got %#v, want %#v", replaced, want)
	}

	filtered, err := FilterV(v, Path{Key("items")}, []int{2, 0})
	if err != nil {
		t.Fatalf("FilterV: %v", err)
	}
	wantFiltered := NewObject(NewValuePair("items", NewArray(NewNumber(3), NewNumber(1))))
	if !filtered.Equal(wantFiltered) {
		t.Errorf("got %#v, want %#v", filtered, wantFiltered)
	}
}
