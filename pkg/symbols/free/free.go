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


// Package free exports the C symbols other modules use to allocate and
// release memory through this module's heap: a module receiving memory
// allocated here must release it by calling back into this module.
//
// modbound_free_mem releases memory allocated through the single-object
// pair of the heap installed in this module. The handle-based symbols
// give C code the same capture semantics as a module-bound allocator: a
// handle keeps the pair captured at modbound_capture, whatever heap is
// installed later.
//
// Memory returned to C must live outside the Go heap, so the exported
// symbols are meant to be used with the C or mmap heaps.
package free

/*
#include <stdint.h>
#include <stdlib.h>
*/
import "C"
import (
	"sync"
	"unsafe"

	"github.com/falcosecurity/modbound-go/pkg/cgo"
	"github.com/falcosecurity/modbound-go/pkg/config"
	"github.com/falcosecurity/modbound-go/pkg/log"
	"github.com/falcosecurity/modbound-go/pkg/raw"
)

// Return codes of modbound_configure.
const (
	Success int32 = 0
	Failure int32 = 1
)

var (
	mu      sync.Mutex
	restore func()
)

func deconfigure() {
	if restore != nil {
		restore()
		restore = nil
	}
}

//export modbound_configure
func modbound_configure(document *C.char) int32 {
	mu.Lock()
	defer mu.Unlock()

	c, err := config.FromJSON(C.GoString(document))
	if err == nil {
		deconfigure()
		restore, err = c.Apply()
	}
	if err != nil {
		log.WithPrefix("free").WithError(err).Error("cannot configure heap")
		return Failure
	}
	return Success
}

//export modbound_deconfigure
func modbound_deconfigure() {
	mu.Lock()
	defer mu.Unlock()
	deconfigure()
}

//export modbound_capture
func modbound_capture(array C.int) C.uintptr_t {
	return C.uintptr_t(cgo.NewHandle(raw.Capture(array != 0)))
}

//export modbound_allocate
func modbound_allocate(h C.uintptr_t, size C.size_t) unsafe.Pointer {
	p, err := cgo.Handle(h).Allocate(uintptr(size))
	if err != nil {
		log.WithPrefix("free").
			WithError(err).
			WithField("size", uint64(size)).
			Debug("allocation failed")
		return nil
	}
	return p
}

//export modbound_deallocate
func modbound_deallocate(h C.uintptr_t, p unsafe.Pointer) {
	cgo.Handle(h).Deallocate(p)
}

//export modbound_release
func modbound_release(h C.uintptr_t) {
	cgo.Handle(h).Delete()
}

//export modbound_free_mem
func modbound_free_mem(p unsafe.Pointer) {
	raw.Capture(false).Deallocate(p)
}
