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
	"sync"
	"unsafe"

	"github.com/falcosecurity/modbound-go/pkg/log"
)

// Stats counts the blocks that went through a tracked heap.
type Stats struct {
	mu        sync.Mutex
	name      string
	allocs    int64
	frees     int64
	liveBytes uintptr
	live      map[unsafe.Pointer]uintptr
}

func (s *Stats) wrap(ops Operators) Operators {
	alloc := func(size uintptr) (unsafe.Pointer, error) {
		p, err := ops.Allocate(size)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.allocs++
		s.live[p] = size
		s.liveBytes += size
		s.mu.Unlock()
		return p, nil
	}
	free := func(p unsafe.Pointer) {
		if p != nil {
			s.mu.Lock()
			if size, ok := s.live[p]; ok {
				s.frees++
				s.liveBytes -= size
				delete(s.live, p)
			}
			s.mu.Unlock()
		}
		ops.Deallocate(p)
	}
	return NewOperators(ops.Alloc.name+"+tracked", alloc, free)
}

// Allocs returns the number of successful allocations.
func (s *Stats) Allocs() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allocs
}

// Frees returns the number of released blocks that were known to the
// tracked heap.
func (s *Stats) Frees() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frees
}

// Live returns the number of blocks not released yet and their total
// size in bytes.
func (s *Stats) Live() (blocks int, bytes uintptr) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live), s.liveBytes
}

// Report logs a warning if some blocks are still live, and returns their
// number.
func (s *Stats) Report() int {
	blocks, bytes := s.Live()
	if blocks > 0 {
		log.WithPrefix("raw").
			WithField("heap", s.name).
			WithField("blocks", blocks).
			WithField("bytes", bytes).
			Warn("heap has live blocks")
	}
	return blocks
}

// Track wraps h into a heap with new function identities that records
// every block it hands out. Allocators bound to the tracked heap are not
// interchangeable with allocators bound to h.
func Track(h *Heap) (*Heap, *Stats) {
	s := &Stats{
		name: h.name,
		live: make(map[unsafe.Pointer]uintptr),
	}
	return NewHeap(h.name+"+tracked", s.wrap(h.single), s.wrap(h.array)), s
}
