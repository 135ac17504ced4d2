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

package mf

import (
	"context"
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"

	"github.com/mfrec-io/mfrec/dataset"
	"github.com/mfrec-io/mfrec/model"
)

// newRankOneDataset builds ratings from the product of per-user and per-item
// latent values, a pattern a single factor can recover exactly.
func newRankOneDataset(users, items int) (*dataset.Dataset, *dataset.Dataset) {
	rng := rand.New(rand.NewSource(42))
	a := make([]float32, users)
	b := make([]float32, items)
	for u := range a {
		a[u] = 0.5 + rng.Float32()
	}
	for i := range b {
		b[i] = 0.5 + rng.Float32()
	}
	ratings := make([]dataset.Rating, 0, users*items)
	for u := 0; u < users; u++ {
		for i := 0; i < items; i++ {
			ratings = append(ratings, dataset.Rating{User: u, Item: i, Score: a[u] * b[i]})
		}
	}
	return dataset.NewDataset(ratings).Split(0.2, 0)
}

func TestMF(t *testing.T) {
	trainSet, testSet := newRankOneDataset(16, 16)
	m := NewMF(model.Params{
		model.NFactors:    8,
		model.NEpochs:     50,
		model.BatchSize:   16,
		model.Lr:          0.05,
		model.Optimizer:   "adam",
		model.InitStdDev:  0.1,
		model.RandomState: 0,
	})
	score := m.Fit(context.Background(), trainSet, testSet, NewFitConfig().SetVerbose(10))
	assert.Less(t, score.RMSE, float32(0.3))
}

func TestMLP(t *testing.T) {
	trainSet, testSet := newRankOneDataset(16, 16)
	m := NewMLP(model.Params{
		model.NFactors:    8,
		model.NEpochs:     50,
		model.BatchSize:   16,
		model.HiddenSize:  16,
		model.Lr:          0.01,
		model.Optimizer:   "adam",
		model.InitStdDev:  0.1,
		model.RandomState: 0,
	})
	score := m.Fit(context.Background(), trainSet, testSet, NewFitConfig().SetVerbose(10))
	assert.Less(t, score.RMSE, float32(0.5))
}

func TestDropoutMLP(t *testing.T) {
	trainSet, testSet := newRankOneDataset(16, 16)
	m := NewDropoutMLP(model.Params{
		model.NFactors:    8,
		model.NEpochs:     50,
		model.BatchSize:   16,
		model.HiddenSize:  16,
		model.Lr:          0.01,
		model.Dropout:     0.2,
		model.Optimizer:   "adam",
		model.InitStdDev:  0.1,
		model.RandomState: 0,
	})
	score := m.Fit(context.Background(), trainSet, testSet, NewFitConfig().SetVerbose(10))
	assert.False(t, math32.IsNaN(score.RMSE))
	assert.Less(t, score.RMSE, float32(1))
}

func TestSGDMomentumFit(t *testing.T) {
	trainSet, testSet := newRankOneDataset(16, 16)
	m := NewMF(model.Params{
		model.NFactors:    8,
		model.NEpochs:     50,
		model.BatchSize:   16,
		model.Lr:          0.05,
		model.Momentum:    0.9,
		model.Optimizer:   "sgd",
		model.InitStdDev:  0.1,
		model.RandomState: 0,
	})
	score := m.Fit(context.Background(), trainSet, testSet, NewFitConfig().SetVerbose(10))
	assert.Less(t, score.RMSE, float32(0.5))
}

func TestPredictUnknown(t *testing.T) {
	trainSet, testSet := newRankOneDataset(8, 8)
	m := NewMF(model.Params{
		model.NEpochs:     1,
		model.BatchSize:   8,
		model.RandomState: 0,
	})
	m.Fit(context.Background(), trainSet, testSet, NewFitConfig())
	// ids outside the trained ranges fall back to the global mean
	assert.Equal(t, trainSet.GlobalMean(), m.Predict(100, 0))
	assert.Equal(t, trainSet.GlobalMean(), m.Predict(0, 100))
	assert.Equal(t, trainSet.GlobalMean(), m.Predict(-1, 0))
}

func TestFitCanceled(t *testing.T) {
	trainSet, testSet := newRankOneDataset(8, 8)
	m := NewMF(model.Params{
		model.NEpochs:     1000,
		model.BatchSize:   8,
		model.RandomState: 0,
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	score := m.Fit(ctx, trainSet, testSet, NewFitConfig().SetVerbose(100))
	assert.False(t, math32.IsNaN(score.RMSE))
}

func TestNewModel(t *testing.T) {
	m, err := NewModel("mf", nil)
	assert.NoError(t, err)
	assert.Equal(t, "mf", GetModelName(m))
	m, err = NewModel("mlp", nil)
	assert.NoError(t, err)
	assert.Equal(t, "mlp", GetModelName(m))
	m, err = NewModel("mlp-dropout", nil)
	assert.NoError(t, err)
	assert.Equal(t, "mlp-dropout", GetModelName(m))
	_, err = NewModel("unknown", nil)
	assert.Error(t, err)
}

func TestClear(t *testing.T) {
	trainSet, testSet := newRankOneDataset(8, 8)
	m := NewMLP(model.Params{
		model.NEpochs:     1,
		model.BatchSize:   8,
		model.RandomState: 0,
	})
	m.Fit(context.Background(), trainSet, testSet, NewFitConfig())
	assert.NotNil(t, m.userEmbedding)
	m.Clear()
	assert.Nil(t, m.userEmbedding)
	assert.Nil(t, m.userHidden)
}

func TestParamsGrid(t *testing.T) {
	m := NewMF(nil)
	grid := m.GetParamsGrid(false)
	assert.Len(t, grid[model.NFactors], 1)
	grid = m.GetParamsGrid(true)
	assert.Len(t, grid[model.NFactors], 4)
}
