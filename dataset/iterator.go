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

package dataset

import (
	"github.com/mfrec-io/mfrec/base"
)

// Batch is one group of ratings consumed by a single training step. All three
// sequences have the configured batch length.
type Batch struct {
	Users  []int32
	Items  []int32
	Scores []float32
}

// Iterator yields fixed-size batches over a dataset. Each pass yields exactly
// floor(count/batchSize) batches; remainder ratings are dropped. Reset
// reshuffles the underlying ratings in place and rewinds; there is no way to
// restart mid-pass.
type Iterator struct {
	data      *Dataset
	batchSize int
	cursor    int
	rng       base.RandomGenerator
}

func NewIterator(data *Dataset, batchSize int, seed int64) *Iterator {
	return &Iterator{
		data:      data,
		batchSize: batchSize,
		rng:       base.NewRandomGenerator(seed),
	}
}

func (it *Iterator) BatchSize() int {
	return it.batchSize
}

// Next returns the next batch, or false once fewer than batchSize ratings
// remain.
func (it *Iterator) Next() (*Batch, bool) {
	if it.cursor+it.batchSize > len(it.data.ratings) {
		return nil, false
	}
	batch := &Batch{
		Users:  make([]int32, it.batchSize),
		Items:  make([]int32, it.batchSize),
		Scores: make([]float32, it.batchSize),
	}
	for i, r := range it.data.ratings[it.cursor : it.cursor+it.batchSize] {
		batch.Users[i] = int32(r.User)
		batch.Items[i] = int32(r.Item)
		batch.Scores[i] = r.Score
	}
	it.cursor += it.batchSize
	return batch, true
}

// Reset reshuffles the ratings in place and rewinds the iterator.
func (it *Iterator) Reset() {
	it.rng.Shuffle(len(it.data.ratings), func(i, j int) {
		it.data.ratings[i], it.data.ratings[j] = it.data.ratings[j], it.data.ratings[i]
	})
	it.cursor = 0
}
