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

package modbound

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pair struct {
	a, b int64
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		resolved Kind
		expected Kind
	}{
		{"single/int", Resolve[int, Single](), KindSingle},
		{"single/[]int", Resolve[[]int, Single](), KindSingle},
		{"array/int", Resolve[int, Array](), KindArray},
		{"array/[4]int", Resolve[[4]int, Array](), KindArray},
		{"deduced/int", Resolve[int, Deduced](), KindSingle},
		{"deduced/*int", Resolve[*int, Deduced](), KindSingle},
		{"deduced/pair", Resolve[pair, Deduced](), KindSingle},
		{"deduced/[]byte", Resolve[[]byte, Deduced](), KindArray},
		{"deduced/[8]pair", Resolve[[8]pair, Deduced](), KindArray},
		{"deduced/void", Resolve[void, Deduced](), KindSingle},
	}
	for _, tt := range tests {
		if tt.resolved != tt.expected {
			t.Errorf("(%s) expected %s, but found %s", tt.name, tt.expected, tt.resolved)
		}
	}
}

func TestPolicyKind(t *testing.T) {
	assert.Equal(t, KindSingle, PolicyKind[Single]())
	assert.Equal(t, KindArray, PolicyKind[Array]())
	assert.Equal(t, KindDeduced, PolicyKind[Deduced]())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "single", KindSingle.String())
	assert.Equal(t, "array", KindArray.String())
	assert.Equal(t, "deduced", KindDeduced.String())
	assert.Equal(t, "Kind(7)", Kind(7).String())
}

func TestIsArray(t *testing.T) {
	assert.True(t, IsArray[[]int]())
	assert.True(t, IsArray[[3]int]())
	assert.True(t, IsArray[[][2]int]())
	assert.False(t, IsArray[int]())
	assert.False(t, IsArray[*[]int]())
	assert.False(t, IsArray[string]())
	assert.False(t, IsArray[map[int]int]())
}

func TestStorageType(t *testing.T) {
	assert.Equal(t, reflect.TypeOf(int32(0)), StorageType[[4][]int32]())
	assert.Equal(t, reflect.TypeOf(byte(0)), StorageType[[]byte]())
	assert.Equal(t, reflect.TypeOf(pair{}), StorageType[pair]())
	assert.Equal(t, reflect.TypeOf(&pair{}), StorageType[[]*pair]())
}
