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


package container

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/falcosecurity/modbound-go/pkg/modbound"
	"github.com/falcosecurity/modbound-go/pkg/raw"
	"github.com/falcosecurity/modbound-go/pkg/raw/rawtest"
)

func installHeap(t *testing.T, name string) *rawtest.Heap {
	h := rawtest.NewHeap(name)
	t.Cleanup(h.Install())
	return h
}

func pushAll[P modbound.Policy](t *testing.T, v *Vector[int64, P], values ...int64) {
	for _, value := range values {
		require.NoError(t, v.Push(value))
	}
}

func TestVectorRejectsPointers(t *testing.T) {
	installHeap(t, "module")

	_, err := NewVector(modbound.New[*int, modbound.Array]())
	assert.True(t, errors.Is(err, ErrPointerElem))
	_, err = NewVector(modbound.New[struct {
		id   int
		name string
	}, modbound.Array]())
	assert.True(t, errors.Is(err, ErrPointerElem))
	_, err = NewVector(modbound.New[[4]uint32, modbound.Array]())
	assert.NoError(t, err)
}

func TestVectorPushPop(t *testing.T) {
	h := installHeap(t, "module")
	v, err := NewVector(modbound.New[int64, modbound.Array]())
	require.NoError(t, err)

	pushAll(t, v, 1, 2, 3, 4, 5)
	assert.Equal(t, 5, v.Len())
	assert.Equal(t, 8, v.Cap())
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, v.Slice())
	assert.Equal(t, []uintptr{32, 64}, h.Array.Sizes())
	assert.Len(t, h.Array.Freed(), 1)
	assert.Equal(t, 1, h.Array.Live())

	value, err := v.At(4)
	require.NoError(t, err)
	assert.Equal(t, int64(5), value)
	_, err = v.At(5)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	assert.True(t, errors.Is(v.Set(-1, 0), ErrIndexOutOfRange))
	require.NoError(t, v.Set(0, 10))

	value, err = v.Pop()
	require.NoError(t, err)
	assert.Equal(t, int64(5), value)
	assert.Equal(t, []int64{10, 2, 3, 4}, v.Slice())

	v.Clear()
	_, err = v.Pop()
	assert.True(t, errors.Is(err, ErrEmpty))
	assert.Equal(t, 8, v.Cap())

	v.Free()
	assert.Equal(t, 0, h.Array.Live())
	assert.Nil(t, v.Slice())
	assert.Len(t, h.Array.Freed(), 2)
	v.Free()
	assert.Len(t, h.Array.Freed(), 2)
}

func TestVectorPushFailure(t *testing.T) {
	h := installHeap(t, "module")
	v, err := NewVector(modbound.New[int64, modbound.Array]())
	require.NoError(t, err)
	pushAll(t, v, 1, 2, 3, 4)

	h.Array.FailWith(raw.ErrOutOfMemory)
	err = v.Push(5)
	assert.True(t, errors.Is(err, raw.ErrOutOfMemory))
	assert.Equal(t, []int64{1, 2, 3, 4}, v.Slice())

	h.Array.FailWith(nil)
	require.NoError(t, v.Push(5))
	v.Free()
	assert.Equal(t, 0, h.Array.Live())
}

func TestVectorClone(t *testing.T) {
	src := installHeap(t, "source")
	v, err := NewVector(modbound.New[int64, modbound.Array]())
	require.NoError(t, err)
	pushAll(t, v, 1, 2, 3)

	dst := installHeap(t, "destination")
	c, err := v.Clone()
	require.NoError(t, err)
	assert.Equal(t, v.Slice(), c.Slice())
	assert.False(t, c.Allocator().Equal(v.Allocator()))
	assert.Equal(t, dst.Array.Operators(), c.Allocator().Operators())

	v.Free()
	c.Free()
	assert.Equal(t, 0, src.Array.Live())
	assert.Equal(t, 0, dst.Array.Live())
}

func TestVectorSwapEqual(t *testing.T) {
	h := installHeap(t, "module")
	a, _ := NewVector(modbound.New[int64, modbound.Array]())
	b, _ := NewVector(modbound.New[int64, modbound.Array]())
	pushAll(t, a, 1, 2)
	pushAll(t, b, 3)
	before := h.Array.Sizes()

	aData, bData := a.data, b.data
	require.NoError(t, a.Swap(b))
	assert.Equal(t, []int64{3}, a.Slice())
	assert.Equal(t, []int64{1, 2}, b.Slice())
	assert.Equal(t, bData, a.data)
	assert.Equal(t, aData, b.data)
	assert.Equal(t, before, h.Array.Sizes())

	a.Free()
	b.Free()
	assert.Equal(t, 0, h.Array.Live())
}

func TestVectorSwapUnequal(t *testing.T) {
	src := installHeap(t, "source")
	a, _ := NewVector(modbound.New[int64, modbound.Array]())
	pushAll(t, a, 1, 2)

	dst := installHeap(t, "destination")
	b, _ := NewVector(modbound.New[int64, modbound.Array]())
	pushAll(t, b, 3)

	require.NoError(t, a.Swap(b))
	assert.Equal(t, []int64{3}, a.Slice())
	assert.Equal(t, []int64{1, 2}, b.Slice())
	// each vector keeps its allocator and storage from its own module
	assert.Equal(t, src.Array.Operators(), a.Allocator().Operators())
	assert.True(t, src.Array.Owns(a.data))
	assert.Equal(t, dst.Array.Operators(), b.Allocator().Operators())
	assert.True(t, dst.Array.Owns(b.data))

	a.Free()
	b.Free()
	assert.Equal(t, 0, src.Array.Live())
	assert.Equal(t, 0, dst.Array.Live())
}

func TestVectorMoveFrom(t *testing.T) {
	src := installHeap(t, "source")
	a, _ := NewVector(modbound.New[int64, modbound.Array]())
	pushAll(t, a, 1, 2, 3)
	same, _ := NewVector(a.Allocator().Move())

	data := a.data
	require.NoError(t, same.MoveFrom(a))
	assert.Equal(t, data, same.data)
	assert.Equal(t, 0, a.Len())
	assert.Nil(t, a.Slice())

	dst := installHeap(t, "destination")
	other, _ := NewVector(modbound.New[int64, modbound.Array]())
	require.NoError(t, other.MoveFrom(same))
	assert.Equal(t, []int64{1, 2, 3}, other.Slice())
	assert.True(t, dst.Array.Owns(other.data))
	assert.Equal(t, 0, same.Len())
	assert.Equal(t, 0, src.Array.Live())
	assert.Contains(t, src.Array.Freed(), data)

	other.Free()
	assert.Equal(t, 0, dst.Array.Live())
}

func TestVectorDetach(t *testing.T) {
	h := installHeap(t, "module")
	v, _ := NewVector(modbound.New[byte, modbound.Single]())
	for _, b := range []byte("hello") {
		require.NoError(t, v.Push(b))
	}

	p := v.Detach()
	require.NotNil(t, p)
	assert.Equal(t, 0, v.Len())
	assert.Equal(t, "hello", string(unsafe.Slice((*byte)(p), 5)))
	v.Free()
	assert.True(t, h.Single.Owns(p))

	// any holder of the same pair can release it
	raw.Capture(false).Deallocate(p)
	assert.Equal(t, 0, h.Single.Live())
}

func TestVectorArrayElements(t *testing.T) {
	h := installHeap(t, "module")
	v, err := NewVector(modbound.New[[4]uint32, modbound.Single]())
	require.NoError(t, err)
	assert.Equal(t, 4, v.stride)

	for i := uint32(0); i < 5; i++ {
		require.NoError(t, v.Push([4]uint32{i, i + 1, i + 2, i + 3}))
	}
	// every element spans four uint32 of the allocator
	assert.Equal(t, []uintptr{64, 128}, h.Single.Sizes())
	last, err := v.At(4)
	require.NoError(t, err)
	assert.Equal(t, [4]uint32{4, 5, 6, 7}, last)

	c, err := v.Clone()
	require.NoError(t, err)
	assert.Equal(t, v.Slice(), c.Slice())
	assert.Equal(t, uintptr(80), h.Single.Sizes()[2])

	v.Free()
	c.Free()
	assert.Equal(t, 0, h.Single.Live())

	d, err := NewVector(modbound.New[[2][3]uint16, modbound.Deduced]())
	require.NoError(t, err)
	require.NoError(t, d.Push([2][3]uint16{{1, 2, 3}, {4, 5, 6}}))
	assert.Equal(t, []uintptr{48}, h.Array.Sizes())
	d.Free()
	assert.Equal(t, 0, h.Array.Live())
}
