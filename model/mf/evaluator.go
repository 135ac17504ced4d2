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
	"github.com/chewxy/math32"

	"github.com/mfrec-io/mfrec/dataset"
)

// RMSE is the root mean squared error between ground truth ratings and
// predictions. Both slices must have the same length.
func RMSE(groundTruth, predictions []float32) float32 {
	sum := float32(0)
	for i := range groundTruth {
		diff := groundTruth[i] - predictions[i]
		sum += diff * diff
	}
	return math32.Sqrt(sum / float32(len(groundTruth)))
}

// EvaluateRegression computes RMSE of a model over a rating set.
func EvaluateRegression(m Model, testSet *dataset.Dataset) float32 {
	groundTruth := make([]float32, testSet.Count())
	predictions := make([]float32, testSet.Count())
	for i := 0; i < testSet.Count(); i++ {
		userId, itemId, score := testSet.Get(i)
		groundTruth[i] = score
		predictions[i] = m.internalPredict(userId, itemId)
	}
	return RMSE(groundTruth, predictions)
}
