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

// Package rawtest provides raw operator pairs that record how they are
// called, meant to be used in tests to simulate distinct modules.
package rawtest

import (
	"sync"
	"unsafe"

	"github.com/falcosecurity/modbound-go/pkg/raw"
)

// Recorder is a raw operator pair backed by Go memory that records the
// requested sizes and the released pointers.
type Recorder struct {
	mu     sync.Mutex
	ops    raw.Operators
	sizes  []uintptr
	freed  []unsafe.Pointer
	blocks map[unsafe.Pointer][]uint64
	fail   error
}

// NewRecorder creates a recorder whose pair has a fresh identity.
func NewRecorder(name string) *Recorder {
	r := &Recorder{blocks: make(map[unsafe.Pointer][]uint64)}
	r.ops = raw.NewOperators(name, r.alloc, r.free)
	return r
}

func (r *Recorder) alloc(size uintptr) (unsafe.Pointer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sizes = append(r.sizes, size)
	if r.fail != nil {
		return nil, r.fail
	}
	block := make([]uint64, size/8+1)
	p := unsafe.Pointer(&block[0])
	r.blocks[p] = block
	return p, nil
}

func (r *Recorder) free(p unsafe.Pointer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.freed = append(r.freed, p)
	delete(r.blocks, p)
}

// Operators returns the recorded pair.
func (r *Recorder) Operators() raw.Operators {
	return r.ops
}

// FailWith makes every next allocation fail with err. A nil err restores
// normal behavior.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	r.fail = err
	r.mu.Unlock()
}

// Sizes returns the sizes requested so far, in call order.
func (r *Recorder) Sizes() []uintptr {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uintptr(nil), r.sizes...)
}

// Freed returns the pointers released so far, in call order. Nil
// releases are recorded too.
func (r *Recorder) Freed() []unsafe.Pointer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]unsafe.Pointer(nil), r.freed...)
}

// Live returns the number of blocks handed out and not released.
func (r *Recorder) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.blocks)
}

// Owns reports whether p was handed out by this recorder and is still
// live.
func (r *Recorder) Owns(p unsafe.Pointer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.blocks[p]
	return ok
}

// Heap is a raw.Heap whose two pairs are recorders, standing for the
// allocation facility of one module.
type Heap struct {
	*raw.Heap
	Single *Recorder
	Array  *Recorder
}

// NewHeap creates a heap with two fresh recorders.
func NewHeap(name string) *Heap {
	single, array := NewRecorder(name+".single"), NewRecorder(name+".array")
	return &Heap{
		Heap:   raw.NewHeap(name, single.Operators(), array.Operators()),
		Single: single,
		Array:  array,
	}
}

// Install installs the heap in the raw package and returns the restore
// function.
func (h *Heap) Install() (restore func()) {
	return raw.Install(h.Heap)
}
