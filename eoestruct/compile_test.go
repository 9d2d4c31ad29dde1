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

	"github.com/google/go-cmp/cmp"

	eoeerrors "eoestruct.dev/go/eoestruct/errors"
	"eoestruct.dev/go/eoestruct/internal/column"
)

func TestBuildAndExpandAllScope(t *testing.T) {
	names := NewVar(StringVar(column.Each([]string{"ada", "grace", "margaret"})))
	scores := NewVar(NumberVar(column.Each([]float64{98, 87, 91})))

	tmpl := AllNode(VarGroup{names.ID, scores.ID}, ObjectNode(
		NewPair("name", VarNode(names)),
		NewPair("score", VarNode(scores)),
	))

	built, err := Build(tmpl, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	got, err := ExpandToValue(built, nil)
	if err != nil {
		t.Fatalf("ExpandToValue: %v", err)
	}

	want := NewArray(
		NewObject(NewValuePair("name", NewString("ada")), NewValuePair("score", NewNumber(98))),
		NewObject(NewValuePair("name", NewString("grace")), NewValuePair("score", NewNumber(87))),
		NewObject(NewValuePair("name", NewString("margaret")), NewValuePair("score", NewNumber(91))),
	)
	if diff := cmp.Diff(want, got, cmp.Comparer(func(a, b Value) bool { return a.Equal(b) })); diff != "" {
		t.Errorf("ExpandToValue mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildRejectsTopLevelCondition(t *testing.T) {
	v := NewVar(BoolVar(column.Every(true)))
	_, err := Build(ConditionNode(v, ConstNode(NullConst())), nil)
	if k, ok := eoeerrors.KindOf(err); !ok || k != eoeerrors.TopLevelCondition {
		t.Fatalf("want TopLevelCondition, got %v", err)
	}
}

func TestBuildEmptyGroupDegeneratesToSingleElementArray(t *testing.T) {
	built, err := Build(AllNode(nil, ConstNode(NumberConst(7))), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got, err := ExpandToValue(built, nil)
	if err != nil {
		t.Fatalf("ExpandToValue: %v", err)
	}
	want := NewArray(NewNumber(7))
	if !got.Equal(want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestBuildRejectsEmptyAll(t *testing.T) {
	a := NewVar(NumberVar(column.Each([]float64{1, 2})))
	tmpl := AllNode(VarGroup{a.ID}, ConstNode(NullConst()))
	_, err := Build(tmpl, nil)
	if k, ok := eoeerrors.KindOf(err); !ok || k != eoeerrors.EmptyAll {
		t.Fatalf("want EmptyAll, got %v", err)
	}
}

func TestBuildRejectsGroupIncompatible(t *testing.T) {
	a := NewVar(NumberVar(column.Each([]float64{1, 2, 3})))
	b := NewVar(NumberVar(column.Each([]float64{1, 2})))
	tmpl := AllNode(VarGroup{a.ID, b.ID}, ObjectNode(
		NewPair("a", VarNode(a)),
		NewPair("b", VarNode(b)),
	))
	_, err := Build(tmpl, nil)
	if k, ok := eoeerrors.KindOf(err); !ok || k != eoeerrors.GroupIncompatible {
		t.Fatalf("want GroupIncompatible, got %v", err)
	}
}

func TestBuildRejectsNoFiniteDriver(t *testing.T) {
	a := NewVar(NumberVar(column.Every(1)))
	tmpl := AllNode(VarGroup{a.ID}, VarNode(a))
	_, err := Build(tmpl, nil)
	if k, ok := eoeerrors.KindOf(err); !ok || k != eoeerrors.NoFiniteDriver {
		t.Fatalf("want NoFiniteDriver, got %v", err)
	}
}

func TestBuildRejectsFreeVariable(t *testing.T) {
	a := NewVar(NumberVar(column.Each([]float64{1, 2})))
	_, err := Build(VarNode(a), nil)
	if k, ok := eoeerrors.KindOf(err); !ok || k != eoeerrors.FreeVariable {
		t.Fatalf("want FreeVariable, got %v", err)
	}
}

func TestConditionElidesFalsyRows(t *testing.T) {
	active := NewVar(BoolVar(column.Each([]bool{true, false, true})))
	nums := NewVar(NumberVar(column.Each([]float64{1, 2, 3})))
	tmpl := AllNode(VarGroup{active.ID, nums.ID}, ConditionNode(active, VarNode(nums)))
	built, err := Build(tmpl, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got, err := ExpandToValue(built, nil)
	if err != nil {
		t.Fatalf("ExpandToValue: %v", err)
	}
	want := NewArray(NewNumber(1), NewNumber(3))
	if !got.Equal(want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestUnbuildRoundTripsShape(t *testing.T) {
	names := NewVar(StringVar(column.Each([]string{"x", "y"})))
	tmpl := AllNode(VarGroup{names.ID}, VarNode(names))

	built, err := Build(tmpl, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	back := Unbuild(built)
	rebuilt, err := Build(back, nil)
	if err != nil {
		t.Fatalf("Build(Unbuild(built)): %v", err)
	}

	got, err := ExpandToValue(rebuilt, nil)
	if err != nil {
		t.Fatalf("ExpandToValue: %v", err)
	}
	want := NewArray(NewString("x"), NewString("y"))
	if !got.Equal(want) {
		t.Errorf("round trip mismatch: got %#v, want %#v", got, want)
	}
}

func TestLateBindingResolves(t *testing.T) {
	lates := NewLateBindings()
	target := NewVarId()
	if err := lates.Add(LateVar(target), NumberVar(column.Each([]float64{5, 6}))); err != nil {
		t.Fatalf("Add: %v", err)
	}

	tmpl := AllNode(VarGroup{target}, VarNode(Var{ID: target, Value: LateVar(target)}))
	built, err := Build(tmpl, lates)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got, err := ExpandToValue(built, lates)
	if err != nil {
		t.Fatalf("ExpandToValue: %v", err)
	}
	want := NewArray(NewNumber(5), NewNumber(6))
	if !got.Equal(want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestLateBindingRejectsLateToLate(t *testing.T) {
	lates := NewLateBindings()
	late1 := NewVarId()
	late2 := NewVarId()
	err := lates.Add(LateVar(late1), LateVar(late2))
	if err == nil {
		t.Fatalf("expected error binding a late variable to another late variable")
	}
	if k, ok := eoeerrors.KindOf(err); !ok || k != eoeerrors.LateBindingShape {
		t.Fatalf("want LateBindingShape, got %v", err)
	}
}

func TestLateBindingRejectsNonLateTarget(t *testing.T) {
	lates := NewLateBindings()
	early := NumberVar(column.Each([]float64{1, 2}))
	late := NewVarId()
	err := lates.Add(early, LateVar(late))
	if err == nil {
		t.Fatalf("expected error binding a non-late target")
	}
	if k, ok := eoeerrors.KindOf(err); !ok || k != eoeerrors.LateBindingShape {
		t.Fatalf("want LateBindingShape, got %v", err)
	}
}
