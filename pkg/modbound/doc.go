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

// Package modbound provides module-bound allocators: allocators that
// release memory in the module (shared library, plugin, executable) they
// were constructed in.
//
// A Go module built with -buildmode=c-shared embeds its own runtime and
// its own copy of the raw package, hence its own heap. Memory handed out
// by one module cannot be released by the allocation functions of
// another. An Allocator captures the raw allocate/deallocate pair of the
// module in which it is constructed (see raw.Capture) and routes every
// Allocate and Deallocate through that pair, no matter which module later
// moves it around.
//
// Copy and move have different semantics:
//
//   - New, Copy, Assign and the cross-type copies capture a fresh pair in
//     the calling module. A copy reflects where the allocator value was
//     brought into existence, not where its source lived.
//   - Move, MoveAssign and the cross-type moves copy the source's pair.
//     The source is left untouched and stays usable. Plain Go assignment
//     (b := a) behaves like Move.
//
// Each allocator type carries an allocation policy type parameter:
// Single or Array pin the single-object or array pair forever, Deduced
// picks the array pair iff the element type is an array or slice type, and
// does so again at every Rebind. Container code usually rebinds to its
// internal node or element type, so Deduced over []byte rebound to byte
// ends up using the single-object pair.
//
// Two allocators are Equal iff they captured the very same pair. Memory
// allocated through one may be deallocated through the other only when
// they are Equal. Deallocating through an unequal allocator is not
// detected, it is a contract violation of the caller.
//
// Memory returned by Allocate is never scanned by the Go garbage
// collector, and element types must not hold Go pointers that are not
// kept alive elsewhere.
package modbound
