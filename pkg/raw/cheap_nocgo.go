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

//go:build !cgo

package raw

import "fmt"

// CHeap is not available without cgo.
func CHeap() (*Heap, error) {
	return nil, fmt.Errorf("%w: the C heap requires cgo", ErrUnsupported)
}

func defaultHeap() *Heap {
	return GoHeap()
}
