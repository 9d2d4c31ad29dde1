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

package column

// GroupCompat summarizes the common finite length of a set of columns
// being considered together (e.g. the bindings of one All scope). It is a
// three-state monoid: Any (nothing finite seen yet), Require(n) (every
// finite column seen so far agreed on length n), or Invalid (two finite
// columns disagreed).
type GroupCompat struct {
	state groupState
	n     int
}

type groupState int

const (
	gcAny groupState = iota
	gcRequire
	gcInvalid
)

// NewGroupCompat seeds the monoid, optionally with an already-known length.
func NewGroupCompat(length *int) GroupCompat {
	if length == nil {
		return GroupCompat{state: gcAny}
	}
	return GroupCompat{state: gcRequire, n: *length}
}

// Add folds in one more column's length, returning the updated state. ok
// should be false for a broadcast (Every) column, which never contradicts
// a Require.
func (gc GroupCompat) Add(length int, ok bool) GroupCompat {
	if !ok {
		return gc
	}
	switch gc.state {
	case gcAny:
		return GroupCompat{state: gcRequire, n: length}
	case gcRequire:
		if gc.n != length {
			return GroupCompat{state: gcInvalid}
		}
		return gc
	default:
		return gc
	}
}

// AddColumn folds in the length of c directly.
func AddColumn[T any](gc GroupCompat, c Column[T]) GroupCompat {
	length, ok := c.Len()
	return gc.Add(length, ok)
}

// Len returns the agreed-upon length, if one has been established.
func (gc GroupCompat) Len() (int, bool) {
	if gc.state == gcRequire {
		return gc.n, true
	}
	return 0, false
}

// Compatible reports whether no contradiction has been observed.
func (gc GroupCompat) Compatible() bool { return gc.state != gcInvalid }

// Complete reports whether a finite length has been established.
func (gc GroupCompat) Complete() bool { return gc.state == gcRequire }
