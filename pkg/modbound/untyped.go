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

import "github.com/falcosecurity/modbound-go/pkg/raw"

// void is the element type of untyped allocators. It is not an array
// type, so Deduced resolves to KindSingle for it.
type void struct{}

// Untyped is a module-bound allocator without element type. It follows
// the construction and assignment rules of Allocator but cannot allocate:
// it only carries a binding, for example to be rebound later to a
// concrete element type.
type Untyped[P Policy] struct {
	state State[void, P]
}

// NewUntyped returns an untyped allocator bound to the calling module.
func NewUntyped[P Policy]() Untyped[P] {
	return Untyped[P]{state: NewState[void, P]()}
}

// Copy returns an untyped allocator bound to the calling module.
func (u Untyped[P]) Copy() Untyped[P] {
	return Untyped[P]{state: u.state.Copy()}
}

// Assign rebinds u to the calling module, unless u and o are the same
// allocator.
func (u *Untyped[P]) Assign(o *Untyped[P]) {
	u.state.Assign(&o.state)
}

// Move returns an untyped allocator bound to the same pair as u.
func (u Untyped[P]) Move() Untyped[P] {
	return Untyped[P]{state: u.state.Move()}
}

// MoveAssign binds u to the pair of o.
func (u *Untyped[P]) MoveAssign(o *Untyped[P]) {
	u.state.MoveAssign(&o.state)
}

// Operators returns the captured raw pair.
func (u Untyped[P]) Operators() raw.Operators {
	return u.state.Operators()
}

// Kind returns the resolved allocation kind.
func (u Untyped[P]) Kind() Kind {
	return u.state.Kind()
}

// Equal reports whether u and o are interchangeable.
func (u Untyped[P]) Equal(o Bound) bool {
	return Equal(u, o)
}

// Erase is the copy conversion of a typed allocator to an untyped one.
// It fails with ErrKindMismatch if the resolved kinds differ, which is
// the case for an array kind and a policy other than Array.
func Erase[P Policy, T any, PT Policy](a Allocator[T, PT]) (Untyped[P], error) {
	s, err := CopyState[void, P](&a.state)
	return Untyped[P]{state: s}, err
}

// EraseMove is the move conversion of a typed allocator to an untyped
// one.
func EraseMove[P Policy, T any, PT Policy](a Allocator[T, PT]) (Untyped[P], error) {
	s, err := MoveState[void, P](&a.state)
	return Untyped[P]{state: s}, err
}

// RebindUntyped returns an allocator of U with the policy of u, bound to
// the calling module.
func RebindUntyped[U any, P Policy](u Untyped[P]) Allocator[U, P] {
	return New[U, P]()
}

// Restore is the move conversion of an untyped allocator back to a typed
// one: the result holds the pair of u. It fails with ErrKindMismatch if
// the resolved kinds differ.
func Restore[U any, PU Policy, P Policy](u Untyped[P]) (Allocator[U, PU], error) {
	s, err := MoveState[U, PU](&u.state)
	return Allocator[U, PU]{state: s}, err
}
