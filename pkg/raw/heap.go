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
	"sync/atomic"

	"github.com/falcosecurity/modbound-go/pkg/log"
)

// Heap is the global allocation facility of a module: one pair for
// single objects and one for arrays.
type Heap struct {
	name   string
	single Operators
	array  Operators
}

// NewHeap creates a heap from its two pairs. It panics if any of the
// four functions is missing.
func NewHeap(name string, single, array Operators) *Heap {
	if !single.Valid() || !array.Valid() {
		panic("modbound-go/raw.NewHeap: single and array operators must be valid")
	}
	return &Heap{
		name:   name,
		single: single,
		array:  array,
	}
}

// Name returns the name of the heap.
func (h *Heap) Name() string {
	return h.name
}

// Operators returns the array pair if array is true, the single-object
// pair otherwise.
func (h *Heap) Operators(array bool) Operators {
	if array {
		return h.array
	}
	return h.single
}

func (h *Heap) String() string {
	return h.name
}

var current atomic.Pointer[Heap]

func init() {
	current.Store(defaultHeap())
}

// Install makes h the heap visible to this module and returns a function
// restoring the previous one. Allocators that already captured their
// operators are not affected.
func Install(h *Heap) (restore func()) {
	if h == nil {
		panic("modbound-go/raw.Install: heap must not be nil")
	}
	prev := current.Swap(h)
	log.WithPrefix("raw").
		WithField("heap", h.name).
		WithField("previous", prev.name).
		Debug("installed heap")
	return func() {
		current.Store(prev)
	}
}

// Current returns the heap visible to this module.
func Current() *Heap {
	return current.Load()
}

// Capture returns the raw pair of the current heap for the requested
// allocation kind. It is a pure function of array and of the installed
// heap.
func Capture(array bool) Operators {
	return current.Load().Operators(array)
}
