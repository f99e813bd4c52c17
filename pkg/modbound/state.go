// SPDX-License-Identifier: Apache-2.0
/*
Copyright (C) 2026 The Falco Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package modbound

import (
	"fmt"
	"unsafe"

	"github.com/falcosecurity/modbound-go/pkg/raw"
)

// State is the state shared by all module-bound allocators: the raw pair
// captured for the resolved kind of T under P. The pair is never changed
// in place, only replaced as a whole by the assignment methods.
//
// The zero State is unbound: it holds no pair.
type State[T any, P Policy] struct {
	ops raw.Operators
}

func capture[T any, P Policy]() raw.Operators {
	return raw.Capture(Resolve[T, P]() == KindArray)
}

// NewState captures the pair of the calling module.
func NewState[T any, P Policy]() State[T, P] {
	return State[T, P]{ops: capture[T, P]()}
}

// Copy ignores the pair of s and captures a fresh one in the calling
// module.
func (s State[T, P]) Copy() State[T, P] {
	return NewState[T, P]()
}

// Assign captures a fresh pair in the calling module, unless s and o are
// the same state.
func (s *State[T, P]) Assign(o *State[T, P]) {
	if s == o {
		return
	}
	s.ops = capture[T, P]()
}

// Move returns a state holding the pair of s. s is not modified.
func (s State[T, P]) Move() State[T, P] {
	return State[T, P]{ops: s.ops}
}

// MoveAssign copies the pair of o into s. o is not modified.
func (s *State[T, P]) MoveAssign(o *State[T, P]) {
	if s == o {
		return
	}
	s.ops = o.ops
}

// Operators returns the captured pair.
func (s State[T, P]) Operators() raw.Operators {
	return s.ops
}

// Kind returns the resolved kind of the state.
func (s State[T, P]) Kind() Kind {
	return Resolve[T, P]()
}

// Bound reports whether s holds a pair.
func (s State[T, P]) Bound() bool {
	return s.ops.Valid()
}

func checkKinds[U any, PU Policy, T any, PT Policy]() error {
	to, from := Resolve[U, PU](), Resolve[T, PT]()
	if to != from {
		return fmt.Errorf("%w: cannot convert %s allocator of %v to %s allocator of %v",
			ErrKindMismatch, from, typeName[T](), to, typeName[U]())
	}
	return nil
}

// CopyState converts src into a state of another element type or policy
// and captures a fresh pair. The resolved kinds must match.
func CopyState[U any, PU Policy, T any, PT Policy](src *State[T, PT]) (State[U, PU], error) {
	if err := checkKinds[U, PU, T, PT](); err != nil {
		return State[U, PU]{}, err
	}
	return NewState[U, PU](), nil
}

// MoveState converts src into a state of another element type or policy
// holding the pair of src. The resolved kinds must match.
func MoveState[U any, PU Policy, T any, PT Policy](src *State[T, PT]) (State[U, PU], error) {
	if err := checkKinds[U, PU, T, PT](); err != nil {
		return State[U, PU]{}, err
	}
	return State[U, PU]{ops: src.ops}, nil
}

// AssignState is the cross-type version of State.Assign. dst is left
// unchanged on error.
func AssignState[U any, PU Policy, T any, PT Policy](dst *State[U, PU], src *State[T, PT]) error {
	if err := checkKinds[U, PU, T, PT](); err != nil {
		return err
	}
	if unsafe.Pointer(dst) != unsafe.Pointer(src) {
		dst.ops = capture[U, PU]()
	}
	return nil
}

// MoveAssignState is the cross-type version of State.MoveAssign. dst is
// left unchanged on error.
func MoveAssignState[U any, PU Policy, T any, PT Policy](dst *State[U, PU], src *State[T, PT]) error {
	if err := checkKinds[U, PU, T, PT](); err != nil {
		return err
	}
	if unsafe.Pointer(dst) != unsafe.Pointer(src) {
		dst.ops = src.ops
	}
	return nil
}
