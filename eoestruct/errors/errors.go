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

// Package errors defines the error kinds raised by the eoestruct builder,
// expander, selector and editor.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies the fatal condition behind an [Error]. The constants
// below list every kind together with its trigger.
type Kind int

const (
	// FreeVariable: a Var or Condition refers to a VarId not in scope.
	FreeVariable Kind = iota
	// TopLevelCondition: Condition appeared as the outermost template node.
	TopLevelCondition
	// EmptyAll: an All scope observed zero referenced variables.
	EmptyAll
	// GroupIncompatible: sibling variables in an All scope disagree on length.
	GroupIncompatible
	// NoFiniteDriver: an All scope's variables are all broadcast/infinite.
	NoFiniteDriver
	// BadPath: path descent hit an incompatible node or missing key.
	BadPath
	// BadPathComponent: a path token was not an integer or '*' where required.
	BadPathComponent
	// LateBindingShape: a late binding's source or target has the wrong shape.
	LateBindingShape
	// HomogeneityError: a JSON variable-binding array mixed atom kinds.
	HomogeneityError
	// UnknownVarType: a JSON variable-binding array began with an unsupported atom.
	UnknownVarType
)

func (k Kind) String() string {
	switch k {
	case FreeVariable:
		return "free variable"
	case TopLevelCondition:
		return "top level condition"
	case EmptyAll:
		return "empty all"
	case GroupIncompatible:
		return "group incompatible"
	case NoFiniteDriver:
		return "no finite driver"
	case BadPath:
		return "bad path"
	case BadPathComponent:
		return "bad path component"
	case LateBindingShape:
		return "late binding shape"
	case HomogeneityError:
		return "homogeneity error"
	case UnknownVarType:
		return "unknown var type"
	}
	return "unknown error kind"
}

// Error is the concrete error type returned by eoestruct's builder,
// expander, selector and editor. Callers that only care about the
// classification of a failure should use [errors.As] together with
// [Kind.String], or compare Kind directly after an As conversion.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

// Newf builds an Error of the given kind, formatting its message with
// fmt.Sprintf at construction time.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrapf is like Newf but records err as the underlying cause, retrievable
// via errors.Unwrap.
func Wrapf(err error, kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...), err: err}
}

func (e *Error) Error() string {
	if e.msg == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.msg
}

// Unwrap allows errors.Is / errors.As to see through to the wrapped cause.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

// KindOf extracts the Kind from err if it is (or wraps) an *Error,
// reporting false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
