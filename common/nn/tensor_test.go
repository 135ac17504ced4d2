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

func TestBackwardSharedTensor(t *testing.T) {
	// loss = a + a with a = x^2, so dloss/dx = 4x. The backward of Square
	// must run once, after both contributions to a's gradient arrived.
	x := NewTensor([]float32{1, 2}, 2)
	a := Square(x)
	loss := Add(a, a)
	loss.Backward()
	assert.Equal(t, []float32{2, 2}, a.grad.data)
	assert.Equal(t, []float32{4, 8}, x.grad.data)
}

func TestBackwardDiamond(t *testing.T) {
	// x feeds two branches that rejoin in a product.
	f := func(x *Tensor) *Tensor { return Mul(Sigmoid(x), Square(x)) }
	x := Rand(2, 3)
	y := f(x)
	y.Backward()
	dx := numericalDiff(f, x)
	allClose(t, x.grad, dx)
}

func TestBackwardChain(t *testing.T) {
	// plain chains keep working: d((2x)^2)/dx = 8x
	x := NewTensor([]float32{1, 3}, 2)
	y := Square(Mul(x, NewScalar(2)))
	y.Backward()
	assert.Equal(t, []float32{8, 24}, x.grad.data)
}
