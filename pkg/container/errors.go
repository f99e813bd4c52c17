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
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrPointerElem is returned when creating a container whose element
	// type holds Go pointers.
	ErrPointerElem = errors.New("element type contains Go pointers")

	// ErrIndexOutOfRange is returned when accessing an element past the
	// end of a container.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrEmpty is returned when removing an element from an empty
	// container.
	ErrEmpty = errors.New("container is empty")
)

func checkElem[E any]() error {
	t := reflect.TypeOf((*E)(nil)).Elem()
	if hasPointers(t) {
		return fmt.Errorf("%w: %s", ErrPointerElem, t)
	}
	return nil
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Chan,
		reflect.Func, reflect.Interface, reflect.Slice, reflect.String:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
