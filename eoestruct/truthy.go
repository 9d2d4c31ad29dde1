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

import "errors"

// errTruthyDecided aborts an in-progress Expand as soon as the root's
// truthiness is known, so Truthy never materializes more of the document
// than the single leading const, or the root container's first child, it
// takes to decide.
var errTruthyDecided = errors.New("eoestruct: truthiness decided")

// Truthy reports b's boolean interpretation (spec §4.11): a bare scalar
// root is truthy per Const.Truthy; a root array, object or All (which
// expands to an array of rows) is truthy iff it has at least one emitted
// child, regardless of that child's own value.
func Truthy(b Built, lates *LateBindings) (bool, error) {
	v := &truthyVisitor{}
	err := Expand(b, lates, v)
	if err != nil && !errors.Is(err, errTruthyDecided) {
		return false, err
	}
	if v.gotConst {
		return v.constVal.Truthy(), nil
	}
	return v.nonEmpty, nil
}

// truthyVisitor is the "prove falsy" short-circuit visitor: it watches only
// the first event at root depth (0) and, for a container root, the first
// event at depth 1 (the root's first child, or its matching End), since
// either is sufficient to decide truthiness without visiting the rest.
type truthyVisitor struct {
	depth    int
	gotConst bool
	constVal Const
	nonEmpty bool
}

func (v *truthyVisitor) VisitConst(c Const) error {
	if v.depth == 0 {
		v.gotConst = true
		v.constVal = c
		return errTruthyDecided
	}
	if v.depth == 1 {
		v.nonEmpty = true
		return errTruthyDecided
	}
	return nil
}

func (v *truthyVisitor) VisitSeparator() error { return nil }

func (v *truthyVisitor) VisitArrayStart() error {
	if v.depth == 1 {
		v.nonEmpty = true
		return errTruthyDecided
	}
	v.depth++
	return nil
}

func (v *truthyVisitor) VisitArrayEnd() error {
	if v.depth == 1 {
		v.nonEmpty = false
		return errTruthyDecided
	}
	v.depth--
	return nil
}

func (v *truthyVisitor) VisitObjectStart() error {
	if v.depth == 1 {
		v.nonEmpty = true
		return errTruthyDecided
	}
	v.depth++
	return nil
}

func (v *truthyVisitor) VisitObjectEnd() error {
	if v.depth == 1 {
		v.nonEmpty = false
		return errTruthyDecided
	}
	v.depth--
	return nil
}

func (v *truthyVisitor) VisitPairStart(string) error {
	if v.depth == 1 {
		v.nonEmpty = true
		return errTruthyDecided
	}
	return nil
}

func (v *truthyVisitor) VisitPairEnd() error { return nil }
