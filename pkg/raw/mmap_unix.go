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

//go:build unix

package raw

import (
	"fmt"
	"math"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/falcosecurity/modbound-go/pkg/log"
)

// mmapArena maps every block as its own anonymous private mapping. It is
// meant for few, large blocks whose pages must not be shared with any
// other allocator of the process.
type mmapArena struct {
	mu       sync.Mutex
	pageSize uintptr
	live     map[unsafe.Pointer][]byte
}

func newMmapArena() *mmapArena {
	return &mmapArena{
		pageSize: uintptr(unix.Getpagesize()),
		live:     make(map[unsafe.Pointer][]byte),
	}
}

func (m *mmapArena) alloc(size uintptr) (unsafe.Pointer, error) {
	if size > math.MaxInt-m.pageSize {
		return nil, fmt.Errorf("%w: %d bytes exceed the mmap limit", ErrOutOfMemory, size)
	}
	length := (size + m.pageSize - 1) &^ (m.pageSize - 1)
	if length == 0 {
		length = m.pageSize
	}
	block, err := unix.Mmap(-1, 0, int(length), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap(%d): %s", ErrOutOfMemory, length, err.Error())
	}
	p := unsafe.Pointer(&block[0])
	m.mu.Lock()
	m.live[p] = block
	m.mu.Unlock()
	return p, nil
}

func (m *mmapArena) free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	m.mu.Lock()
	block, ok := m.live[p]
	delete(m.live, p)
	m.mu.Unlock()
	if !ok {
		return
	}
	if err := unix.Munmap(block); err != nil {
		log.WithPrefix("raw").WithError(err).Warn("munmap failed")
	}
}

var (
	mmapHeapOnce sync.Once
	mmapHeap     *Heap
)

// MmapHeap returns a page-granular heap. Each block is rounded up to
// whole pages and unmapped on release.
func MmapHeap() (*Heap, error) {
	mmapHeapOnce.Do(func() {
		single, array := newMmapArena(), newMmapArena()
		mmapHeap = NewHeap("mmap",
			NewOperators("mmap", single.alloc, single.free),
			NewOperators("mmap[]", array.alloc, array.free),
		)
	})
	return mmapHeap, nil
}
