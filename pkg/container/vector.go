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

package container

import (
	"fmt"
	"math"
	"reflect"
	"unsafe"

	"github.com/falcosecurity/modbound-go/pkg/log"
	"github.com/falcosecurity/modbound-go/pkg/modbound"
	"github.com/falcosecurity/modbound-go/pkg/raw"
)

const minVectorCap = 4

// Vector is a growable array of E stored in memory of a module-bound
// allocator. E may be an array type, in which case each element takes as
// many storage elements of the allocator as E has. Use NewVector.
type Vector[E any, P modbound.Policy] struct {
	alloc  modbound.Allocator[E, P]
	stride int
	data   unsafe.Pointer
	len    int
	cap    int
}

// elemStride returns the number of storage elements of alloc one E spans.
func elemStride[E any, P modbound.Policy](alloc modbound.Allocator[E, P]) int {
	size, storage := reflect.TypeOf((*E)(nil)).Elem().Size(), alloc.Sizeof()
	if size == 0 || storage == 0 {
		return 1
	}
	return int(size / storage)
}

func newVector[E any, P modbound.Policy](alloc modbound.Allocator[E, P]) *Vector[E, P] {
	return &Vector[E, P]{alloc: alloc, stride: elemStride(alloc)}
}

// NewVector returns an empty vector using alloc for its storage.
func NewVector[E any, P modbound.Policy](alloc modbound.Allocator[E, P]) (*Vector[E, P], error) {
	if err := checkElem[E](); err != nil {
		return nil, err
	}
	return newVector(alloc), nil
}

// Allocator returns the allocator of the vector.
func (v *Vector[E, P]) Allocator() modbound.Allocator[E, P] {
	return v.alloc
}

// Len returns the number of elements.
func (v *Vector[E, P]) Len() int {
	return v.len
}

// Cap returns the number of elements the current storage can hold.
func (v *Vector[E, P]) Cap() int {
	return v.cap
}

// Slice returns a view of the elements. The view is invalidated by any
// operation that reallocates or releases the storage.
func (v *Vector[E, P]) Slice() []E {
	if v.data == nil {
		return nil
	}
	return unsafe.Slice((*E)(v.data), v.cap)[:v.len:v.len]
}

// At returns the element at index i.
func (v *Vector[E, P]) At(i int) (E, error) {
	if i < 0 || i >= v.len {
		var zero E
		return zero, fmt.Errorf("%w: %d with length %d", ErrIndexOutOfRange, i, v.len)
	}
	return v.Slice()[i], nil
}

// Set replaces the element at index i.
func (v *Vector[E, P]) Set(i int, value E) error {
	if i < 0 || i >= v.len {
		return fmt.Errorf("%w: %d with length %d", ErrIndexOutOfRange, i, v.len)
	}
	v.Slice()[i] = value
	return nil
}

// Reserve makes sure the storage can hold at least n elements.
func (v *Vector[E, P]) Reserve(n int) error {
	if n <= v.cap {
		return nil
	}
	if n > math.MaxInt/v.stride {
		return fmt.Errorf("%w: %d elements of %s", raw.ErrOutOfMemory, n, reflect.TypeOf((*E)(nil)).Elem())
	}
	data, err := v.alloc.Allocate(n * v.stride)
	if err != nil {
		return err
	}
	if v.len > 0 {
		copy(unsafe.Slice((*E)(data), n), v.Slice())
	}
	if v.data != nil {
		v.alloc.Deallocate(v.data, v.cap*v.stride)
	}
	v.data = data
	v.cap = n
	return nil
}

// Push appends value, growing the storage if needed. The vector is left
// unchanged if the allocation fails.
func (v *Vector[E, P]) Push(value E) error {
	if v.len == v.cap {
		grow := 2 * v.cap
		if grow < minVectorCap {
			grow = minVectorCap
		}
		if err := v.Reserve(grow); err != nil {
			return err
		}
	}
	unsafe.Slice((*E)(v.data), v.cap)[v.len] = value
	v.len++
	return nil
}

// Pop removes and returns the last element.
func (v *Vector[E, P]) Pop() (E, error) {
	var zero E
	if v.len == 0 {
		return zero, ErrEmpty
	}
	s := v.Slice()
	value := s[v.len-1]
	s[v.len-1] = zero
	v.len--
	return value, nil
}

// Clear removes all the elements and keeps the storage.
func (v *Vector[E, P]) Clear() {
	v.len = 0
}

// Free releases the storage through the allocator of the vector. The
// vector is empty and usable afterwards.
func (v *Vector[E, P]) Free() {
	if v.data != nil {
		v.alloc.Deallocate(v.data, v.cap*v.stride)
	}
	v.data = nil
	v.len = 0
	v.cap = 0
}

// Detach returns the storage of v and empties v. The caller owns the
// storage and must release it through the pair of the allocator of v,
// possibly from another module.
func (v *Vector[E, P]) Detach() unsafe.Pointer {
	data := v.data
	v.data = nil
	v.len = 0
	v.cap = 0
	return data
}

// Clone returns a copy of v whose allocator is a copy of the allocator of
// v, which binds it to the calling module.
func (v *Vector[E, P]) Clone() (*Vector[E, P], error) {
	c := newVector(v.alloc.Copy())
	if err := c.assignElems(v.Slice()); err != nil {
		return nil, err
	}
	return c, nil
}

func (v *Vector[E, P]) assignElems(elems []E) error {
	v.Clear()
	if err := v.Reserve(len(elems)); err != nil {
		return err
	}
	if len(elems) > 0 {
		copy(unsafe.Slice((*E)(v.data), v.cap), elems)
	}
	v.len = len(elems)
	return nil
}

// Swap exchanges the contents of v and o. When the allocators are equal
// the storages are exchanged, otherwise the elements are copied into
// storage allocated by the receiving allocator. Each vector keeps its own
// allocator.
func (v *Vector[E, P]) Swap(o *Vector[E, P]) error {
	if v == o {
		return nil
	}
	if v.alloc.Equal(o.alloc) {
		v.data, o.data = o.data, v.data
		v.len, o.len = o.len, v.len
		v.cap, o.cap = o.cap, v.cap
		return nil
	}

	log.WithPrefix("container").
		WithField("from", o.alloc.Operators().String()).
		WithField("to", v.alloc.Operators().String()).
		Debug("swapping vectors with non-interchangeable allocators")

	mine := newVector(v.alloc)
	if err := mine.assignElems(o.Slice()); err != nil {
		return err
	}
	theirs := newVector(o.alloc)
	if err := theirs.assignElems(v.Slice()); err != nil {
		mine.Free()
		return err
	}
	v.Free()
	o.Free()
	*v, *o = *mine, *theirs
	return nil
}

// MoveFrom moves the elements of o into v, releasing the previous
// storage of v. The storage of o is taken over if the allocators are
// equal, otherwise the elements are copied and o's storage is released
// through its own allocator. o is empty afterwards.
func (v *Vector[E, P]) MoveFrom(o *Vector[E, P]) error {
	if v == o {
		return nil
	}
	if v.alloc.Equal(o.alloc) {
		v.Free()
		v.data, v.len, v.cap = o.data, o.len, o.cap
		o.data, o.len, o.cap = nil, 0, 0
		return nil
	}

	log.WithPrefix("container").
		WithField("from", o.alloc.Operators().String()).
		WithField("to", v.alloc.Operators().String()).
		Debug("moving vector between non-interchangeable allocators")

	if err := v.assignElems(o.Slice()); err != nil {
		return err
	}
	o.Free()
	return nil
}
