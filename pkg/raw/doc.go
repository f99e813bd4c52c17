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

// Package raw holds the raw allocation primitives of the module this
// package is linked into.
//
// A Go module built with -buildmode=c-shared gets its own copy of every
// package-level variable, including the heap installed in this package.
// Capture therefore always returns the allocate/deallocate pair of the
// module whose code is running, which is the property module-bound
// allocators rely on: memory must go back to the same pair it came from.
//
// Every heap exposes two pairs, one for single objects and one for
// arrays. The two pairs of a heap have distinct identities even when they
// end up in the same underlying allocator, so that memory obtained
// through one is never considered releasable through the other.
//
// Every FreeFunc shipped by this package treats a nil pointer as a no-op.
// Custom heaps installed with Install must honor the same contract,
// because some container code releases nil pointers.
package raw
