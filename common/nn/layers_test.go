// Copyright 2025 mfrec Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinearLayer(t *testing.T) {
	l := NewLinear(3, 2)
	assert.Equal(t, []int{3, 2}, l.W.shape)
	assert.Equal(t, []int{2}, l.B.shape)
	assert.Len(t, l.Parameters(), 2)

	x := Rand(4, 3)
	y := l.Forward(x)
	assert.Equal(t, []int{4, 2}, y.shape)
}

func TestEmbeddingLayer(t *testing.T) {
	e := NewEmbedding(10, 4)
	assert.Equal(t, []int{10, 4}, e.W.shape)
	assert.Len(t, e.Parameters(), 1)

	ids := NewTensor([]float32{0, 5, 9}, 3)
	y := e.Forward(ids)
	assert.Equal(t, []int{3, 4}, y.shape)
	assert.Equal(t, e.W.data[20:24], y.data[4:8])
}

func TestSequential(t *testing.T) {
	model := NewSequential(
		NewLinear(4, 8),
		NewReLU(),
		NewLinear(8, 1),
		NewSigmoid(),
	)
	assert.Len(t, model.Parameters(), 4)

	x := Rand(16, 4)
	y := model.Forward(x)
	assert.Equal(t, []int{16, 1}, y.shape)
	for _, v := range y.data {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
	}
}
