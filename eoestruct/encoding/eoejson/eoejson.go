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

// Package eoejson bridges eoestruct templates and values to and from JSON
// (C12), the way encoding/json in the teacher's own module wraps the
// standard library's scanner rather than hand-rolling one. Plain JSON
// (null/bool/number/string/array/object) maps directly onto
// eoestruct.Const/Template nodes; three magic object shapes extend the
// dialect to carry variables and control structure that plain JSON has no
// vocabulary for:
//
//	{"$var": "name"}                   a reference to a registered variable
//	{"$if": "name", "$then": <node>}    a Condition gated on that variable
//	{"$all": ["n1","n2"], "$body": <node>}  an All scope over those variables
//
// A magic object must contain exactly the keys its shape names, and
// ("$all"/"$body", "$if"/"$then") must appear adjacently in that order;
// this lets the decoder recognise the shape from its first key without
// buffering the whole object.
package eoejson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	eoestruct "eoestruct.dev/go/eoestruct"
	eoeerrors "eoestruct.dev/go/eoestruct/errors"
)

// VarRegistry maps the variable names a JSON document's "$var"/"$if"/"$all"
// entries refer to onto the Vars a caller has already constructed (with
// their actual column data). FromJSON never invents variable data itself.
type VarRegistry struct {
	byName map[string]eoestruct.Var
}

// NewVarRegistry returns an empty registry.
func NewVarRegistry() *VarRegistry {
	return &VarRegistry{byName: map[string]eoestruct.Var{}}
}

// Declare registers v under name, for later "$var"/"$if"/"$all" lookups.
func (r *VarRegistry) Declare(name string, v eoestruct.Var) {
	r.byName[name] = v
}

// Lookup returns the Var registered under name.
func (r *VarRegistry) Lookup(name string) (eoestruct.Var, bool) {
	v, ok := r.byName[name]
	return v, ok
}

// FromJSON parses data as an eoejson document, resolving "$var"/"$if"/
// "$all" references against reg.
func FromJSON(data []byte, reg *VarRegistry) (eoestruct.Template, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	t, err := parseValue(dec, reg)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func parseValue(dec *json.Decoder, reg *VarRegistry) (eoestruct.Template, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '[':
			var elems []eoestruct.Template
			for dec.More() {
				e, err := parseValue(dec, reg)
				if err != nil {
					return nil, err
				}
				elems = append(elems, e)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return eoestruct.ArrayNode(elems...), nil
		case '{':
			return parseObject(dec, reg)
		default:
			return nil, eoeerrors.Newf(eoeerrors.BadPathComponent, "unexpected JSON delimiter %v", v)
		}
	case bool:
		return eoestruct.ConstNode(eoestruct.BoolConst(v)), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, err
		}
		return eoestruct.ConstNode(eoestruct.NumberConst(f)), nil
	case string:
		return eoestruct.ConstNode(eoestruct.StringConst(v)), nil
	case nil:
		return eoestruct.ConstNode(eoestruct.NullConst()), nil
	default:
		return nil, eoeerrors.Newf(eoeerrors.UnknownVarType, "unrecognised JSON token %T", tok)
	}
}

func parseObject(dec *json.Decoder, reg *VarRegistry) (eoestruct.Template, error) {
	var pairs []eoestruct.Pair
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, eoeerrors.Newf(eoeerrors.BadPathComponent, "object key was not a string")
		}

		if len(pairs) > 0 && (key == "$var" || key == "$if" || key == "$all") {
			return nil, eoeerrors.Newf(eoeerrors.BadPath, "magic key %q must be the first key of its object", key)
		}
		switch key {
		case "$var":
			name, err := expectStringValue(dec)
			if err != nil {
				return nil, err
			}
			v, ok := reg.Lookup(name)
			if !ok {
				return nil, eoeerrors.Newf(eoeerrors.UnknownVarType, "unregistered variable %q", name)
			}
			if err := expectClose(dec); err != nil {
				return nil, err
			}
			return eoestruct.VarNode(v), nil

		case "$if":
			name, err := expectStringValue(dec)
			if err != nil {
				return nil, err
			}
			v, ok := reg.Lookup(name)
			if !ok {
				return nil, eoeerrors.Newf(eoeerrors.UnknownVarType, "unregistered variable %q", name)
			}
			if err := expectKey(dec, "$then"); err != nil {
				return nil, err
			}
			body, err := parseValue(dec, reg)
			if err != nil {
				return nil, err
			}
			if err := expectClose(dec); err != nil {
				return nil, err
			}
			return eoestruct.ConditionNode(v, body), nil

		case "$all":
			names, err := parseStringArray(dec)
			if err != nil {
				return nil, err
			}
			group := make(eoestruct.VarGroup, len(names))
			for i, n := range names {
				v, ok := reg.Lookup(n)
				if !ok {
					return nil, eoeerrors.Newf(eoeerrors.UnknownVarType, "unregistered variable %q", n)
				}
				group[i] = v.ID
			}
			if err := expectKey(dec, "$body"); err != nil {
				return nil, err
			}
			body, err := parseValue(dec, reg)
			if err != nil {
				return nil, err
			}
			if err := expectClose(dec); err != nil {
				return nil, err
			}
			return eoestruct.AllNode(group, body), nil

		default:
			val, err := parseValue(dec, reg)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, eoestruct.NewPair(key, val))
		}
	}
	if _, err := dec.Token(); err != nil { // consume '}'
		return nil, err
	}
	return eoestruct.ObjectNode(pairs...), nil
}

func expectStringValue(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	s, ok := tok.(string)
	if !ok {
		return "", eoeerrors.Newf(eoeerrors.BadPathComponent, "expected a string value")
	}
	return s, nil
}

func expectKey(dec *json.Decoder, want string) error {
	if !dec.More() {
		return eoeerrors.Newf(eoeerrors.BadPath, "expected key %q", want)
	}
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	key, ok := tok.(string)
	if !ok || key != want {
		return eoeerrors.Newf(eoeerrors.BadPath, "expected key %q, got %v", want, tok)
	}
	return nil
}

func expectClose(dec *json.Decoder) error {
	if dec.More() {
		return eoeerrors.Newf(eoeerrors.BadPath, "unexpected extra key in magic object")
	}
	_, err := dec.Token() // consume '}'
	return err
}

func parseStringArray(dec *json.Decoder) ([]string, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, eoeerrors.Newf(eoeerrors.BadPathComponent, "expected an array of variable names")
	}
	var out []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		s, ok := tok.(string)
		if !ok {
			return nil, eoeerrors.Newf(eoeerrors.BadPathComponent, "variable name was not a string")
		}
		out = append(out, s)
	}
	if _, err := dec.Token(); err != nil { // consume ']'
		return nil, err
	}
	return out, nil
}

// ToJSON fully expands b (resolving lates) and writes it to w as plain
// JSON: a document with no remaining variables has no use for the magic
// object shapes FromJSON understands, so the round-trip is JSON in, JSON
// out.
func ToJSON(w io.Writer, b eoestruct.Built, lates *eoestruct.LateBindings) error {
	jv := &jsonVisitor{w: w}
	return eoestruct.Expand(b, lates, jv)
}

type jsonVisitor struct {
	w   io.Writer
	err error
}

func (v *jsonVisitor) writeRaw(s string) {
	if v.err != nil {
		return
	}
	_, v.err = io.WriteString(v.w, s)
}

func (v *jsonVisitor) VisitConst(c eoestruct.Const) error {
	if v.err != nil {
		return v.err
	}
	if b, ok := c.Bool(); ok {
		v.writeRaw(strconv.FormatBool(b))
		return v.err
	}
	if n, ok := c.Number(); ok {
		enc, err := json.Marshal(n)
		if err != nil {
			return err
		}
		v.writeRaw(string(enc))
		return v.err
	}
	if s, ok := c.StringValue(); ok {
		enc, err := json.Marshal(s)
		if err != nil {
			return err
		}
		v.writeRaw(string(enc))
		return v.err
	}
	v.writeRaw("null")
	return v.err
}

func (v *jsonVisitor) VisitSeparator() error  { v.writeRaw(","); return v.err }
func (v *jsonVisitor) VisitArrayStart() error { v.writeRaw("["); return v.err }
func (v *jsonVisitor) VisitArrayEnd() error   { v.writeRaw("]"); return v.err }
func (v *jsonVisitor) VisitObjectStart() error { v.writeRaw("{"); return v.err }
func (v *jsonVisitor) VisitObjectEnd() error   { v.writeRaw("}"); return v.err }

func (v *jsonVisitor) VisitPairStart(key string) error {
	enc, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v.writeRaw(fmt.Sprintf("%s:", enc))
	return v.err
}

func (v *jsonVisitor) VisitPairEnd() error { return nil }

// ValueToJSON marshals a fully-expanded Value directly, with no template
// machinery in play, for the common case of emitting an already-computed
// result.
func ValueToJSON(w io.Writer, val eoestruct.Value) error {
	return eoestruct.Expand(eoestruct.ToBuilt(val), nil, &jsonVisitor{w: w})
}
