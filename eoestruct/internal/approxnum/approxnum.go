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

// Package approxnum canonicalizes an IEEE-754 double for hashing/equality
// purposes to a configurable number of significant digits (C3).
package approxnum

import "math"

// Number wraps a float64 together with the significant-digit count used to
// canonicalize it for Hash/Equal. The template system always uses k=14.
type Number struct {
	Value float64
	K     int32
}

// New builds a Number with the given significant-digit precision.
func New(value float64, k int32) Number {
	return Number{Value: value, K: k}
}

// canonical pair: (decimal exponent of the leading digit, rounded mantissa).
type parts struct {
	log int32
	x   int64
}

func (n Number) parts() parts {
	log10 := math.Log10(math.Abs(n.Value))
	if math.IsInf(log10, 0) || math.IsNaN(log10) {
		return parts{}
	}
	log := int32(math.Floor(log10))
	mul := math.Pow(10, float64(n.K-log-1))
	x := int64(math.Round(n.Value * mul))
	return parts{log: log, x: x}
}

// Equal reports whether a and b canonicalize to the same (log, mantissa)
// pair at their (possibly differing) precisions.
func (n Number) Equal(other Number) bool {
	return n.parts() == other.parts()
}

// Key returns a comparable value suitable for use as a map key (e.g. by
// column.Demerge / column.Index when grouping approximate numbers).
func (n Number) Key() [2]int64 {
	p := n.parts()
	return [2]int64{int64(p.log), p.x}
}
