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
	"fmt"
	"io"
	"strings"
)

// dumper is a small recursive-indent writer, the same shape the teacher's
// internal evaluator debug printer uses: write(depth, format, args...)
// prefixes each line with two spaces per depth.
type dumper struct {
	w   io.Writer
	err error
}

func (d *dumper) write(depth int, format string, args ...interface{}) {
	if d.err != nil {
		return
	}
	_, err := fmt.Fprintf(d.w, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
	if err != nil {
		d.err = err
	}
}

// Dump writes a human-readable, indented rendering of b to w, annotating
// BVar/BCondition references with their (depth, width) coordinates and
// BAll scopes with their slot count, for debugging a built document
// without expanding it.
func Dump(w io.Writer, b Built) error {
	d := &dumper{w: w}
	d.dump(b, 0)
	return d.err
}

func (d *dumper) dump(b Built, depth int) {
	switch n := b.(type) {
	case BConst:
		d.write(depth, "const %s", n.Value.String())
	case BVar:
		d.write(depth, "var(depth=%d, width=%d)", n.Depth, n.Width)
	case BCondition:
		d.write(depth, "condition(depth=%d, width=%d)", n.Depth, n.Width)
		d.dump(n.Body, depth+1)
	case BArray:
		d.write(depth, "array[%d] hasConditions=%v", len(n.Elements), n.HasConditions)
		for _, c := range n.Elements {
			d.dump(c, depth+1)
		}
	case BObject:
		d.write(depth, "object[%d]", len(n.Pairs))
		for _, p := range n.Pairs {
			d.write(depth+1, "%q:", p.Key)
			d.dump(p.Value, depth+2)
		}
	case BAll:
		d.write(depth, "all[%d slots]", len(n.Slots))
		d.dump(n.Body, depth+1)
	default:
		d.write(depth, "<unknown %T>", b)
	}
}

// DumpTemplate writes an indented rendering of a pre-build Template to w,
// showing variable ids and groups instead of resolved coordinates.
func DumpTemplate(w io.Writer, t Template) error {
	d := &dumper{w: w}
	d.dumpTemplate(t, 0)
	return d.err
}

func (d *dumper) dumpTemplate(t Template, depth int) {
	switch n := t.(type) {
	case TConst:
		d.write(depth, "const %s", n.Value.String())
	case TVar:
		d.write(depth, "var(id=%d)", n.Var.ID)
	case TCondition:
		d.write(depth, "condition(id=%d)", n.Var.ID)
		d.dumpTemplate(n.Body, depth+1)
	case TArray:
		d.write(depth, "array[%d]", len(n.Elements))
		for _, c := range n.Elements {
			d.dumpTemplate(c, depth+1)
		}
	case TObject:
		d.write(depth, "object[%d]", len(n.Pairs))
		for _, p := range n.Pairs {
			d.write(depth+1, "%q:", p.Key)
			d.dumpTemplate(p.Value, depth+2)
		}
	case TAll:
		d.write(depth, "all(group=%v)", []VarId(n.Group))
		d.dumpTemplate(n.Body, depth+1)
	default:
		d.write(depth, "<unknown %T>", t)
	}
}

// DumpValue writes an indented rendering of a fully-expanded Value to w.
func DumpValue(w io.Writer, v Value) error {
	d := &dumper{w: w}
	d.dumpValue(v, 0)
	return d.err
}

func (d *dumper) dumpValue(v Value, depth int) {
	switch v.kind {
	case valueArray:
		d.write(depth, "array[%d]", len(v.arr))
		for _, c := range v.arr {
			d.dumpValue(c, depth+1)
		}
	case valueObject:
		d.write(depth, "object[%d]", len(v.obj))
		for _, p := range v.obj {
			d.write(depth+1, "%q:", p.Key)
			d.dumpValue(p.Value, depth+2)
		}
	default:
		c, _ := v.AsConst()
		d.write(depth, "%s", c.String())
	}
}
