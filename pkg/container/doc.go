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

// Package container provides containers whose storage is obtained from a
// module-bound allocator, so that a container built in one module can be
// handed to another one and still release its storage in the module it
// was allocated in.
//
// The containers honor stateful allocators: before transferring storage
// from one container to another (Swap, MoveFrom, Splice) they check
// whether the two allocators are Equal. Storage is relinked only between
// equal allocators, otherwise elements are copied into storage of the
// receiving allocator and the original storage is released through its
// own allocator.
//
// Element types must not contain Go pointers, because the garbage
// collector does not scan memory obtained from raw heaps.
package container
