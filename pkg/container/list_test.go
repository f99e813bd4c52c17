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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/falcosecurity/modbound-go/pkg/modbound"
)

func TestListKinds(t *testing.T) {
	installHeap(t, "module")

	_, err := NewList(modbound.New[[4]byte, modbound.Deduced]())
	assert.True(t, errors.Is(err, modbound.ErrKindMismatch))
	_, err = NewList(modbound.New[[4]byte, modbound.Single]())
	assert.NoError(t, err)
	_, err = NewList(modbound.New[*int, modbound.Single]())
	assert.True(t, errors.Is(err, ErrPointerElem))
}

func TestListPushPop(t *testing.T) {
	h := installHeap(t, "module")
	l, err := NewList(modbound.New[int64, modbound.Deduced]())
	require.NoError(t, err)
	assert.Equal(t, h.Single.Operators(), l.Allocator().Operators())

	require.NoError(t, l.PushBack(2))
	require.NoError(t, l.PushBack(3))
	require.NoError(t, l.PushFront(1))
	assert.Equal(t, 3, l.Len())
	assert.Equal(t, []int64{1, 2, 3}, l.Values())
	assert.Equal(t, 3, h.Single.Live())
	assert.Equal(t, []uintptr{24, 24, 24}, h.Single.Sizes())

	value, err := l.PopFront()
	require.NoError(t, err)
	assert.Equal(t, int64(1), value)
	value, err = l.PopBack()
	require.NoError(t, err)
	assert.Equal(t, int64(3), value)
	value, err = l.PopBack()
	require.NoError(t, err)
	assert.Equal(t, int64(2), value)
	assert.Equal(t, 0, h.Single.Live())

	_, err = l.PopFront()
	assert.True(t, errors.Is(err, ErrEmpty))
	_, err = l.PopBack()
	assert.True(t, errors.Is(err, ErrEmpty))
}

func TestListClone(t *testing.T) {
	src := installHeap(t, "source")
	l, _ := NewList(modbound.New[int64, modbound.Single]())
	require.NoError(t, l.PushBack(1))
	require.NoError(t, l.PushBack(2))

	dst := installHeap(t, "destination")
	c, err := l.Clone()
	require.NoError(t, err)
	assert.Equal(t, l.Values(), c.Values())
	assert.Equal(t, 2, dst.Single.Live())

	l.Free()
	c.Free()
	assert.Equal(t, 0, src.Single.Live())
	assert.Equal(t, 0, dst.Single.Live())
}

func TestListSpliceEqual(t *testing.T) {
	h := installHeap(t, "module")
	a, _ := NewList(modbound.New[int64, modbound.Single]())
	b, _ := NewList(modbound.New[int64, modbound.Single]())
	require.NoError(t, a.PushBack(1))
	require.NoError(t, b.PushBack(2))
	require.NoError(t, b.PushBack(3))

	require.NoError(t, a.Splice(b))
	assert.Equal(t, []int64{1, 2, 3}, a.Values())
	assert.Equal(t, 0, b.Len())
	assert.Empty(t, h.Single.Freed())
	assert.Len(t, h.Single.Sizes(), 3)

	require.NoError(t, b.Splice(a))
	assert.Equal(t, []int64{1, 2, 3}, b.Values())
	require.NoError(t, b.Splice(b))
	assert.Equal(t, 3, b.Len())

	b.Free()
	assert.Equal(t, 0, h.Single.Live())
}

func TestListSpliceUnequal(t *testing.T) {
	src := installHeap(t, "source")
	a, _ := NewList(modbound.New[int64, modbound.Single]())
	require.NoError(t, a.PushBack(1))
	require.NoError(t, a.PushBack(2))

	dst := installHeap(t, "destination")
	b, _ := NewList(modbound.New[int64, modbound.Single]())
	require.NoError(t, b.PushBack(0))

	require.NoError(t, b.Splice(a))
	assert.Equal(t, []int64{0, 1, 2}, b.Values())
	assert.Equal(t, 0, a.Len())
	assert.Equal(t, 0, src.Single.Live())
	assert.Len(t, src.Single.Freed(), 2)
	assert.Equal(t, 3, dst.Single.Live())

	b.Free()
	assert.Equal(t, 0, dst.Single.Live())
}
