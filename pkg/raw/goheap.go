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
	"fmt"
	"math"
	"sync"
	"unsafe"
)

const wordSize = unsafe.Sizeof(uint64(0))

// goArena hands out word-aligned blocks of Go memory and keeps them
// reachable until they are freed. Blocks are never scanned by the
// garbage collector, so they must not hold the only reference to Go
// pointers.
type goArena struct {
	mu   sync.Mutex
	live map[unsafe.Pointer][]uint64
}

func newGoArena() *goArena {
	return &goArena{live: make(map[unsafe.Pointer][]uint64)}
}

func (g *goArena) alloc(size uintptr) (unsafe.Pointer, error) {
	if size > math.MaxInt-wordSize {
		return nil, fmt.Errorf("%w: %d bytes exceed the go heap limit", ErrOutOfMemory, size)
	}
	words := (size + wordSize - 1) / wordSize
	if words == 0 {
		words = 1
	}
	block := make([]uint64, words)
	p := unsafe.Pointer(&block[0])
	g.mu.Lock()
	g.live[p] = block
	g.mu.Unlock()
	return p, nil
}

func (g *goArena) free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	g.mu.Lock()
	delete(g.live, p)
	g.mu.Unlock()
}

func (g *goArena) len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.live)
}

var (
	goHeapOnce   sync.Once
	goHeap       *Heap
	goHeapArenas [2]*goArena
)

// GoHeap returns the heap backed by this module's Go runtime. Each
// c-shared module embeds its own runtime, so blocks from this heap must
// never be released by another module.
func GoHeap() *Heap {
	goHeapOnce.Do(func() {
		single, array := newGoArena(), newGoArena()
		goHeapArenas = [2]*goArena{single, array}
		goHeap = NewHeap("go",
			NewOperators("go.alloc", single.alloc, single.free),
			NewOperators("go.alloc[]", array.alloc, array.free),
		)
	})
	return goHeap
}

// GoHeapLive returns the number of live blocks of the Go heap for the
// single-object and array pairs.
func GoHeapLive() (single, array int) {
	GoHeap()
	return goHeapArenas[0].len(), goHeapArenas[1].len()
}
