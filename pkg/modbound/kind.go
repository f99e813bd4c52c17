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
	"reflect"
)

// Kind tells which raw pair of a heap an allocator uses.
type Kind uint8

const (
	// KindSingle uses the single-object pair.
	KindSingle Kind = iota
	// KindArray uses the array pair.
	KindArray
	// KindDeduced deduces KindSingle or KindArray from the element type
	// at every binding level. It is only a policy, never a resolved kind.
	KindDeduced
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindArray:
		return "array"
	case KindDeduced:
		return "deduced"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Single is the policy pinning the single-object pair, even when
// rebinding.
type Single struct{}

func (Single) kind() Kind { return KindSingle }

// Array is the policy pinning the array pair, even when rebinding.
type Array struct{}

func (Array) kind() Kind { return KindArray }

// Deduced is the policy deducing the pair from the element type at every
// binding level.
type Deduced struct{}

func (Deduced) kind() Kind { return KindDeduced }

// Policy is the constraint of the allocation policy type parameter.
type Policy interface {
	Single | Array | Deduced
	kind() Kind
}

// Pinned is satisfied by the policies whose resolved kind does not
// depend on the element type. Conversions between allocators sharing a
// pinned policy can never mismatch.
type Pinned interface {
	Single | Array
	kind() Kind
}

// PolicyKind returns the kind declared by P, KindDeduced included.
func PolicyKind[P Policy]() Kind {
	var p P
	return p.kind()
}

// Resolve returns the kind used by an allocator of T with policy P:
// Single and Array are returned as is, Deduced resolves to KindArray iff
// T is an array or slice type.
func Resolve[T any, P Policy]() Kind {
	k := PolicyKind[P]()
	if k != KindDeduced {
		return k
	}
	if IsArray[T]() {
		return KindArray
	}
	return KindSingle
}

// IsArray reports whether T is an array ([N]E) or slice ([]E) type.
func IsArray[T any]() bool {
	return isArrayType(reflect.TypeOf((*T)(nil)).Elem())
}

func isArrayType(t reflect.Type) bool {
	k := t.Kind()
	return k == reflect.Array || k == reflect.Slice
}

// StorageType returns T with all its array and slice extents removed,
// which is the type of the elements an allocator of T stores.
// For example, [4][]int32 gives int32.
func StorageType[T any]() reflect.Type {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for isArrayType(t) {
		t = t.Elem()
	}
	return t
}
