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

//go:build cgo

package raw

/*
#include <stdlib.h>
*/
import "C"
import (
	"fmt"
	"sync"
	"unsafe"
)

func cMalloc(size uintptr) (unsafe.Pointer, error) {
	if size == 0 {
		size = 1
	}
	p := C.malloc(C.size_t(size))
	if p == nil {
		return nil, fmt.Errorf("%w: malloc(%d)", ErrOutOfMemory, size)
	}
	return p, nil
}

func cCalloc(size uintptr) (unsafe.Pointer, error) {
	if size == 0 {
		size = 1
	}
	p := C.calloc(1, C.size_t(size))
	if p == nil {
		return nil, fmt.Errorf("%w: calloc(%d)", ErrOutOfMemory, size)
	}
	return p, nil
}

// free(NULL) is a no-op by the C standard
func cFree(p unsafe.Pointer) {
	C.free(p)
}

var (
	cHeapOnce sync.Once
	cHeap     *Heap
)

// CHeap returns the heap backed by the C runtime this module is linked
// against. Arrays are zero-filled.
func CHeap() (*Heap, error) {
	cHeapOnce.Do(func() {
		cHeap = NewHeap("c",
			NewOperators("malloc", cMalloc, cFree),
			NewOperators("calloc", cCalloc, cFree),
		)
	})
	return cHeap, nil
}

func defaultHeap() *Heap {
	h, _ := CHeap()
	return h
}
