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

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParams(t *testing.T) {
	p := Params{
		NEpochs:   10,
		Lr:        0.05,
		Optimizer: "adam",
	}
	assert.Equal(t, 10, p.GetInt(NEpochs, 100))
	assert.Equal(t, 100, p.GetInt(NFactors, 100))
	assert.Equal(t, int64(10), p.GetInt64(NEpochs, 0))
	assert.Equal(t, float32(0.05), p.GetFloat32(Lr, 0.001))
	assert.Equal(t, float32(0.001), p.GetFloat32(Reg, 0.001))
	assert.Equal(t, "adam", p.GetString(Optimizer, "sgd"))
	assert.Equal(t, "sgd", p.GetString("Missing", "sgd"))

	// type mismatch falls back to default
	assert.Equal(t, 1, p.GetInt(Optimizer, 1))
}

func TestParamsCopy(t *testing.T) {
	p := Params{NEpochs: 10}
	q := p.Copy()
	q[NEpochs] = 20
	assert.Equal(t, 10, p.GetInt(NEpochs, 0))
	assert.Equal(t, 20, q.GetInt(NEpochs, 0))
}

func TestBaseModel(t *testing.T) {
	m := new(BaseModel)
	m.SetParams(Params{RandomState: int64(42)})
	assert.Equal(t, Params{RandomState: int64(42)}, m.GetParams())
	a := m.GetRandomGenerator().Int63()
	m.SetParams(Params{RandomState: int64(42)})
	b := m.GetRandomGenerator().Int63()
	assert.Equal(t, a, b)
}
