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

// Package eoestruct implements a template engine for structured data
// documents (the JSON data model: null, booleans, numbers, strings,
// ordered arrays, string-keyed objects).
//
// A Template is a variant tree whose leaves may be Const atoms or Vars
// bound to a single value or a homogeneous sequence of values. An All
// node introduces a scope that iterates a group of co-indexed variables
// in lock-step, emitting its body once per row; a Condition node elides
// its body when a bound variable's current row is falsy.
//
// Build lowers a Template to a Built form with variables resolved to
// positional (depth, width) coordinates into the enclosing All stack.
// Expand drives a streaming Visitor over a Built document, iterating All
// scopes and gating Conditions. Select and the Editor operations navigate
// and rewrite templates and built/expanded trees by path.
package eoestruct
