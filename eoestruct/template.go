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

// Template is the surface syntax of an eoestruct document: a tree that may
// still contain variables and All/Condition scopes. Build lowers a Template
// to a Built document; Unbuild reverses that. The concrete node types below
// are the only implementations of Template; callers outside this package
// construct one with the ConstNode/VarNode/ArrayNode/ObjectNode/AllNode/
// ConditionNode functions
// and consume it opaquely (via Build, Select, or the Editor).
type Template interface {
	isTemplate()
}

// TConst is a literal atom.
type TConst struct {
	Value Const
}

// TVar is a variable reference. Every occurrence of the same ID within one
// template is expected to carry an equal Value; the builder uses the first
// occurrence it sees per ID and does not re-validate later ones.
type TVar struct {
	Var Var
}

// TArray is an ordered sequence of child nodes.
type TArray struct {
	Elements []Template
}

// Pair is one key/value entry of a TObject, in declaration order.
type Pair struct {
	Key   string
	Value Template
}

// TObject is an ordered sequence of key/value pairs. Unlike a JSON object,
// key order is significant and keys are not required to be unique (spec
// §4.2 treats the pair list, not a map, as the canonical representation).
type TObject struct {
	Pairs []Pair
}

// TAll introduces an iteration scope: Group lists the VarIds whose bound
// columns are iterated in lock-step to drive repetition of Body, one row at
// a time. An empty Group makes Build lower the scope to a one-element array
// holding Body; a non-empty Group none of whose members Body references is
// rejected by Build (EmptyAll).
type TAll struct {
	Group VarGroup
	Body  Template
}

// TCondition elides Body for a given iteration row when Var's value is
// falsy at that row (spec §4.11). A Condition may not be the template's
// root node (TopLevelCondition).
type TCondition struct {
	Var  Var
	Body Template
}

func (TConst) isTemplate()     {}
func (TVar) isTemplate()       {}
func (TArray) isTemplate()     {}
func (TObject) isTemplate()    {}
func (TAll) isTemplate()       {}
func (TCondition) isTemplate() {}

// ConstNode builds a literal atom node.
func ConstNode(v Const) Template { return TConst{Value: v} }

// VarNode builds a variable-reference node.
func VarNode(v Var) Template { return TVar{Var: v} }

// ArrayNode builds an ordered-sequence node from its children, in order.
func ArrayNode(elements ...Template) Template {
	return TArray{Elements: elements}
}

// ObjectNode builds an ordered key/value node from its pairs, in order.
func ObjectNode(pairs ...Pair) Template {
	return TObject{Pairs: pairs}
}

// NewPair builds one TObject entry.
func NewPair(key string, value Template) Pair {
	return Pair{Key: key, Value: value}
}

// AllNode builds an iteration-scope node over group, repeating body once per
// row of group's co-indexed variables.
func AllNode(group VarGroup, body Template) Template {
	return TAll{Group: group, Body: body}
}

// ConditionNode builds a scope that elides body on rows where v is falsy.
func ConditionNode(v Var, body Template) Template {
	return TCondition{Var: v, Body: body}
}
