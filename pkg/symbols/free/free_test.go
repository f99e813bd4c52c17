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

//go:build cgo

package free

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/falcosecurity/modbound-go/pkg/cgo"
	"github.com/falcosecurity/modbound-go/pkg/raw"
	"github.com/falcosecurity/modbound-go/pkg/raw/rawtest"
)

func cString(s string) *_Ctype_char {
	b := append([]byte(s), 0)
	return (*_Ctype_char)(unsafe.Pointer(&b[0]))
}

func TestCaptureAllocateRelease(t *testing.T) {
	src := rawtest.NewHeap("source")
	undo := src.Install()
	single := modbound_capture(0)
	array := modbound_capture(1)
	undo()

	dst := rawtest.NewHeap("destination")
	defer dst.Install()()

	// handles keep the pairs captured when they were created
	p := modbound_allocate(single, 16)
	require.NotNil(t, p)
	assert.True(t, src.Single.Owns(p))
	q := modbound_allocate(array, 64)
	require.NotNil(t, q)
	assert.True(t, src.Array.Owns(q))

	modbound_deallocate(single, p)
	modbound_deallocate(array, q)
	modbound_deallocate(single, nil)
	assert.Equal(t, 0, src.Single.Live())
	assert.Equal(t, 0, src.Array.Live())
	assert.Empty(t, dst.Single.Sizes())

	modbound_release(single)
	modbound_release(array)
	assert.Panics(t, func() { modbound_release(single) })
}

func TestAllocateFailure(t *testing.T) {
	h := rawtest.NewHeap("module")
	defer h.Install()()
	h.Single.FailWith(raw.ErrOutOfMemory)

	handle := modbound_capture(0)
	defer modbound_release(handle)
	assert.Nil(t, modbound_allocate(handle, 8))
}

func TestFreeMem(t *testing.T) {
	h := rawtest.NewHeap("module")
	defer h.Install()()

	p, err := raw.Capture(false).Allocate(32)
	require.NoError(t, err)
	modbound_free_mem(p)
	modbound_free_mem(nil)
	assert.Equal(t, []unsafe.Pointer{p, nil}, h.Single.Freed())
}

func TestConfigure(t *testing.T) {
	prev := raw.Current()
	live := cgo.Live()

	assert.Equal(t, Success, modbound_configure(cString(`{"heap": "go", "name": "plugin"}`)))
	assert.Equal(t, "plugin", raw.Current().Name())
	assert.Equal(t, raw.GoHeap().Operators(false), raw.Capture(false))

	// reconfiguring restores the previous heap first
	assert.Equal(t, Success, modbound_configure(cString(`{"heap": "go", "name": "other"}`)))
	assert.Equal(t, "other", raw.Current().Name())

	assert.Equal(t, Failure, modbound_configure(cString(`{"heap": "stack"}`)))
	assert.Equal(t, "other", raw.Current().Name())

	modbound_deconfigure()
	assert.Same(t, prev, raw.Current())
	modbound_deconfigure()
	assert.Same(t, prev, raw.Current())
	assert.Equal(t, live, cgo.Live())
}
