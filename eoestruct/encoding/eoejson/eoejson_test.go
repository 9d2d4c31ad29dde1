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

package eoejson

import (
	"bytes"
	"testing"

	eoestruct "eoestruct.dev/go/eoestruct"
	"eoestruct.dev/go/eoestruct/internal/column"
)

func TestFromJSONPlainDocument(t *testing.T) {
	reg := NewVarRegistry()
	tmpl, err := FromJSON([]byte(`{"a":1,"b":["x","y"],"c":null,"d":true}`), reg)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	built, err := eoestruct.Build(tmpl, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got, err := eoestruct.ExpandToValue(built, nil)
	if err != nil {
		t.Fatalf("ExpandToValue: %v", err)
	}
	want := eoestruct.NewObject(
		eoestruct.NewValuePair("a", eoestruct.NewNumber(1)),
		eoestruct.NewValuePair("b", eoestruct.NewArray(eoestruct.NewString("x"), eoestruct.NewString("y"))),
		eoestruct.NewValuePair("c", eoestruct.NewNull()),
		eoestruct.NewValuePair("d", eoestruct.NewBool(true)),
	)
	if !got.Equal(want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestFromJSONVarAndAllAndIf(t *testing.T) {
	reg := NewVarRegistry()
	names := eoestruct.NewVar(eoestruct.StringVar(column.Each([]string{"ada", "grace"})))
	active := eoestruct.NewVar(eoestruct.BoolVar(column.Each([]bool{true, false})))
	reg.Declare("names", names)
	reg.Declare("active", active)

	doc := `{
		"$all": ["names", "active"],
		"$body": {
			"$if": "active",
			"$then": {"name": {"$var": "names"}}
		}
	}`
	tmpl, err := FromJSON([]byte(doc), reg)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	built, err := eoestruct.Build(tmpl, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got, err := eoestruct.ExpandToValue(built, nil)
	if err != nil {
		t.Fatalf("ExpandToValue: %v", err)
	}
	want := eoestruct.NewArray(eoestruct.NewObject(eoestruct.NewValuePair("name", eoestruct.NewString("ada"))))
	if !got.Equal(want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestFromJSONUnregisteredVariableErrors(t *testing.T) {
	reg := NewVarRegistry()
	_, err := FromJSON([]byte(`{"$var":"missing"}`), reg)
	if err == nil {
		t.Fatalf("expected error for unregistered variable")
	}
}

func TestFromJSONRejectsExtraKeysInMagicObject(t *testing.T) {
	reg := NewVarRegistry()
	names := eoestruct.NewVar(eoestruct.StringVar(column.Each([]string{"x"})))
	reg.Declare("names", names)
	_, err := FromJSON([]byte(`{"$var":"names","extra":1}`), reg)
	if err == nil {
		t.Fatalf("expected error for extra key after $var")
	}
}

func TestToJSONRoundTrip(t *testing.T) {
	reg := NewVarRegistry()
	scores := eoestruct.NewVar(eoestruct.NumberVar(column.Each([]float64{1, 2, 3})))
	reg.Declare("scores", scores)

	tmpl, err := FromJSON([]byte(`{"$all":["scores"],"$body":{"$var":"scores"}}`), reg)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	built, err := eoestruct.Build(tmpl, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var buf bytes.Buffer
	if err := ToJSON(&buf, built, nil); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	want := `[1,2,3]`
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestValueToJSON(t *testing.T) {
	v := eoestruct.NewObject(
		eoestruct.NewValuePair("ok", eoestruct.NewBool(false)),
		eoestruct.NewValuePair("n", eoestruct.NewNumber(2.5)),
	)
	var buf bytes.Buffer
	if err := ValueToJSON(&buf, v); err != nil {
		t.Fatalf("ValueToJSON: %v", err)
	}
	want := `{"ok":false,"n":2.5}`
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
