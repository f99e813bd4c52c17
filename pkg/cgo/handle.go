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


// Package cgo lets C code hold on to the raw pair captured by a
// module-bound allocator. C callers receive an integer Handle and pass it
// back to this module to allocate or release memory through the pair the
// handle was created with.
package cgo

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/falcosecurity/modbound-go/pkg/raw"
)

// Handle identifies a raw pair handed to C code. The zero value of a
// Handle is not valid and thus is safe to use as a sentinel in C APIs.
//
// The number of live handles is capped to MaxHandle. C code is expected
// to hold a handle per allocator it keeps alive, which is a small number
// per module, so the cap is considered acceptable.
//
// Handles are safe for concurrent use, but a handle must not be used
// concurrently with its own Delete.
type Handle uintptr

const (
	// MaxHandle is the largest value that an Handle can hold
	MaxHandle = 1024 - 1

	// max number of times we're willing to iterate over the slots
	// doing compare-and-swap before giving up
	maxNewHandleRounds = 20
)

var handles [MaxHandle + 1]atomic.Pointer[raw.Operators]

// NewHandle returns a handle for ops.
//
// The handle is valid until Delete is called on it. C code may keep a
// copy of the handle, so a program must explicitly call Delete when the
// handle is no longer needed.
//
// This function panics if ops is not valid, or if no handle is
// available after MaxHandle handles are live.
func NewHandle(ops raw.Operators) Handle {
	if !ops.Valid() {
		panic("modbound-go/cgo: cannot create a handle for invalid operators")
	}
	p := &ops
	rounds := 0
	for h := uintptr(1); ; h++ {
		// note: we attempt accessing slots 1..MaxHandle (included)
		if handles[h].CompareAndSwap(nil, p) {
			return Handle(h)
		}
		if h < MaxHandle {
			continue
		}
		h = uintptr(0) // note: will be incremented when continuing
		if rounds < maxNewHandleRounds {
			rounds++
			continue
		}
		panic(fmt.Sprintf("modbound-go/cgo: could not obtain a new handle after round #%d", rounds))
	}
}

func (h Handle) load(op string) *raw.Operators {
	var p *raw.Operators
	if h > 0 && h <= MaxHandle {
		p = handles[h].Load()
	}
	if p == nil {
		panic(fmt.Sprintf("modbound-go/cgo: misuse (%s) of an invalid Handle %d", op, h))
	}
	return p
}

// Operators returns the pair of a valid handle. It panics if the handle
// is invalid.
func (h Handle) Operators() raw.Operators {
	return *h.load("operators")
}

// Allocate allocates size bytes through the pair of the handle.
func (h Handle) Allocate(size uintptr) (unsafe.Pointer, error) {
	return h.load("allocate").Allocate(size)
}

// Deallocate releases p through the pair of the handle.
func (h Handle) Deallocate(p unsafe.Pointer) {
	h.load("deallocate").Deallocate(p)
}

// Delete invalidates a handle. Memory allocated through the handle stays
// valid and can still be released by any holder of the same pair.
//
// The method panics if the handle is invalid.
func (h Handle) Delete() {
	p := h.load("delete")
	if !handles[h].CompareAndSwap(p, nil) {
		panic(fmt.Sprintf("modbound-go/cgo: concurrent delete of Handle %d", h))
	}
}

// Live returns the number of valid handles.
func Live() int {
	n := 0
	for i := 1; i <= MaxHandle; i++ {
		if handles[i].Load() != nil {
			n++
		}
	}
	return n
}

func resetHandles() {
	for i := range handles {
		handles[i].Store(nil)
	}
}
