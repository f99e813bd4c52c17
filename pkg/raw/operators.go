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

package raw

import (
	"errors"
	"fmt"
	"unsafe"
)

// ErrOutOfMemory is returned when a raw allocation function cannot
// satisfy a request.
var ErrOutOfMemory = errors.New("out of memory")

// ErrUnsupported is returned when a heap is not available in the
// current build or platform.
var ErrUnsupported = errors.New("heap not supported")

// AllocFunc reserves size bytes and returns the address of the block.
type AllocFunc func(size uintptr) (unsafe.Pointer, error)

// FreeFunc releases a block obtained from the matching AllocFunc.
// It must accept a nil pointer.
type FreeFunc func(p unsafe.Pointer)

// Alloc is a named raw allocation function. Go functions are not
// comparable, so the identity of a raw function is the identity of the
// *Alloc wrapping it.
type Alloc struct {
	name string
	fn   AllocFunc
}

// NewAlloc wraps fn. Every call returns a distinct identity, even for
// the same fn.
func NewAlloc(name string, fn AllocFunc) *Alloc {
	if fn == nil {
		panic("modbound-go/raw.NewAlloc: fn must not be nil")
	}
	return &Alloc{name: name, fn: fn}
}

// Name returns the name given at creation.
func (a *Alloc) Name() string {
	return a.name
}

// Call invokes the wrapped function.
func (a *Alloc) Call(size uintptr) (unsafe.Pointer, error) {
	return a.fn(size)
}

// Free is a named raw deallocation function, see Alloc.
type Free struct {
	name string
	fn   FreeFunc
}

// NewFree wraps fn. Every call returns a distinct identity.
func NewFree(name string, fn FreeFunc) *Free {
	if fn == nil {
		panic("modbound-go/raw.NewFree: fn must not be nil")
	}
	return &Free{name: name, fn: fn}
}

// Name returns the name given at creation.
func (f *Free) Name() string {
	return f.name
}

// Call invokes the wrapped function.
func (f *Free) Call(p unsafe.Pointer) {
	f.fn(p)
}

// Operators is an immutable (allocate, deallocate) pair. Two pairs are
// equal, with ==, iff both functions are the same objects.
type Operators struct {
	Alloc *Alloc
	Free  *Free
}

// NewOperators wraps alloc and free into a fresh pair.
func NewOperators(name string, alloc AllocFunc, free FreeFunc) Operators {
	return Operators{
		Alloc: NewAlloc(name, alloc),
		Free:  NewFree(name, free),
	}
}

// Valid reports whether both functions are set.
func (o Operators) Valid() bool {
	return o.Alloc != nil && o.Free != nil
}

// Allocate requests size bytes from the allocation function. A nil
// block returned without an error is reported as ErrOutOfMemory.
func (o Operators) Allocate(size uintptr) (unsafe.Pointer, error) {
	p, err := o.Alloc.Call(size)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s could not reserve %d bytes", ErrOutOfMemory, o.Alloc.name, size)
	}
	return p, nil
}

// Deallocate hands p to the deallocation function, nil included.
func (o Operators) Deallocate(p unsafe.Pointer) {
	o.Free.Call(p)
}

func (o Operators) String() string {
	if !o.Valid() {
		return "<nil>"
	}
	return fmt.Sprintf("(%s, %s)", o.Alloc.name, o.Free.name)
}
