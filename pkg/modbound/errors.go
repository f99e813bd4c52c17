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
	"errors"
	"reflect"
)

var (
	// ErrKindMismatch is returned when converting between allocators
	// whose resolved kinds differ. Conversions through Convert and
	// ConvertMove cannot fail this way.
	ErrKindMismatch = errors.New("raw allocation kind mismatch (array/single object allocation)")

	// ErrInvalidCount is returned when allocating a negative number of
	// elements.
	ErrInvalidCount = errors.New("invalid element count")

	// ErrUnbound is returned when allocating through the zero value of an
	// allocator, which holds no raw pair.
	ErrUnbound = errors.New("allocator is not bound to any module")
)

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
