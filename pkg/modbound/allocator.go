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
	"math"
	"reflect"
	"unsafe"

	"github.com/falcosecurity/modbound-go/pkg/raw"
)

// Bound is implemented by every module-bound allocator.
type Bound interface {
	// Operators returns the raw pair the allocator is bound to.
	Operators() raw.Operators
}

// Equal reports whether a and b are bound to the same raw pair, which
// means storage allocated through one may be deallocated through the
// other. It is symmetric and ignores element types and policies. A nil
// Bound is equal to nothing.
func Equal(a, b Bound) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Operators() == b.Operators()
}

// Allocator allocates storage for elements of T through the raw pair of
// the module it was constructed in. T may be an array or slice type, in
// which case the stored elements are of type StorageType[T]().
//
// The zero Allocator is unbound: Allocate fails with ErrUnbound and
// Deallocate panics on non-nil pointers. Use New.
type Allocator[T any, P Policy] struct {
	state State[T, P]
}

// New returns an allocator bound to the calling module.
func New[T any, P Policy]() Allocator[T, P] {
	return Allocator[T, P]{state: NewState[T, P]()}
}

// Copy returns an allocator bound to the calling module. The pair of a is
// not copied.
func (a Allocator[T, P]) Copy() Allocator[T, P] {
	return Allocator[T, P]{state: a.state.Copy()}
}

// Assign rebinds a to the calling module, unless a and o are the same
// allocator.
func (a *Allocator[T, P]) Assign(o *Allocator[T, P]) {
	a.state.Assign(&o.state)
}

// Move returns an allocator bound to the same pair as a.
func (a Allocator[T, P]) Move() Allocator[T, P] {
	return Allocator[T, P]{state: a.state.Move()}
}

// MoveAssign binds a to the pair of o. o is not modified.
func (a *Allocator[T, P]) MoveAssign(o *Allocator[T, P]) {
	a.state.MoveAssign(&o.state)
}

// Operators returns the captured raw pair.
func (a Allocator[T, P]) Operators() raw.Operators {
	return a.state.Operators()
}

// Kind returns the resolved allocation kind.
func (a Allocator[T, P]) Kind() Kind {
	return a.state.Kind()
}

// Equal reports whether a and o are interchangeable, see Equal.
func (a Allocator[T, P]) Equal(o Bound) bool {
	return Equal(a, o)
}

// ValueType returns the type of the stored elements.
func (a Allocator[T, P]) ValueType() reflect.Type {
	return StorageType[T]()
}

// Sizeof returns the size in bytes of one stored element.
func (a Allocator[T, P]) Sizeof() uintptr {
	return StorageType[T]().Size()
}

// Alignof returns the alignment of the stored elements.
func (a Allocator[T, P]) Alignof() uintptr {
	return uintptr(StorageType[T]().Align())
}

// MaxSize returns the largest count that Allocate can be asked for
// without overflowing the byte size.
func (a Allocator[T, P]) MaxSize() int {
	size := a.Sizeof()
	if size == 0 || ^uintptr(0)/size > math.MaxInt {
		return math.MaxInt
	}
	return int(^uintptr(0) / size)
}

// Allocate requests exactly n*Sizeof() bytes from the captured allocation
// function. Raw failures are returned wrapped, and match
// raw.ErrOutOfMemory when the heap is exhausted.
func (a Allocator[T, P]) Allocate(n int) (unsafe.Pointer, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}
	ops := a.state.Operators()
	if !ops.Valid() {
		return nil, ErrUnbound
	}
	if n > a.MaxSize() {
		return nil, fmt.Errorf("%w: %d elements of %s overflow the address space",
			raw.ErrOutOfMemory, n, a.ValueType())
	}
	p, err := ops.Allocate(a.Sizeof() * uintptr(n))
	if err != nil {
		return nil, fmt.Errorf("allocating %d elements of %s: %w", n, a.ValueType(), err)
	}
	return p, nil
}

// AllocateHint is Allocate. The hint is ignored.
func (a Allocator[T, P]) AllocateHint(n int, hint unsafe.Pointer) (unsafe.Pointer, error) {
	return a.Allocate(n)
}

// Deallocate hands p to the captured deallocation function. n is
// ignored. A nil p is passed through and is a no-op for every heap
// honoring the raw package contract.
func (a Allocator[T, P]) Deallocate(p unsafe.Pointer, n int) {
	ops := a.state.Operators()
	if !ops.Valid() {
		if p == nil {
			return
		}
		panic("modbound-go/modbound: deallocate through an unbound allocator")
	}
	ops.Deallocate(p)
}

// Rebind returns an allocator of U with the same policy as a, bound to
// the calling module. The kind is resolved again for U.
func Rebind[U any, T any, P Policy](a Allocator[T, P]) Allocator[U, P] {
	return New[U, P]()
}

// Convert is the copy conversion between allocators sharing a pinned
// policy. It cannot fail: both kinds are P's.
func Convert[U any, T any, P Pinned](a Allocator[T, P]) Allocator[U, P] {
	return New[U, P]()
}

// ConvertMove is the move conversion between allocators sharing a pinned
// policy: the result holds the pair of a.
func ConvertMove[U any, T any, P Pinned](a Allocator[T, P]) Allocator[U, P] {
	return Allocator[U, P]{state: State[U, P]{ops: a.state.ops}}
}

// CopyAs is the copy conversion to any element type and policy. It fails
// with ErrKindMismatch if the resolved kinds differ. The check runs when
// called, not at compile time, because a Deduced kind depends on the
// element type; prefer Convert, which cannot mismatch, when both sides
// share a Single or Array policy.
func CopyAs[U any, PU Policy, T any, PT Policy](a Allocator[T, PT]) (Allocator[U, PU], error) {
	s, err := CopyState[U, PU](&a.state)
	return Allocator[U, PU]{state: s}, err
}

// MoveAs is the move conversion to any element type and policy. It fails
// with ErrKindMismatch if the resolved kinds differ. Like CopyAs the check
// runs when called; prefer ConvertMove for a shared Single or Array
// policy.
func MoveAs[U any, PU Policy, T any, PT Policy](a Allocator[T, PT]) (Allocator[U, PU], error) {
	s, err := MoveState[U, PU](&a.state)
	return Allocator[U, PU]{state: s}, err
}

// AssignFrom is the cross-type Assign. dst is left unchanged on error,
// which is reported when called as for CopyAs.
func AssignFrom[U any, PU Policy, T any, PT Policy](dst *Allocator[U, PU], src *Allocator[T, PT]) error {
	return AssignState(&dst.state, &src.state)
}

// MoveAssignFrom is the cross-type MoveAssign. dst is left unchanged on
// error.
func MoveAssignFrom[U any, PU Policy, T any, PT Policy](dst *Allocator[U, PU], src *Allocator[T, PT]) error {
	return MoveAssignState(&dst.state, &src.state)
}
