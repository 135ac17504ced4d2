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
	"fmt"
	"reflect"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/chewxy/math32"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/mfrec-io/mfrec/base/log"
	"github.com/mfrec-io/mfrec/common/nn"
	"github.com/mfrec-io/mfrec/dataset"
	"github.com/mfrec-io/mfrec/model"
)

type Score struct {
	RMSE float32
}

func (score Score) ZapFields() []zap.Field {
	return []zap.Field{zap.Float32("RMSE", score.RMSE)}
}

func (score Score) BetterThan(s Score) bool {
	return score.RMSE < s.RMSE
}

type FitConfig struct {
	Verbose int
}

func NewFitConfig() *FitConfig {
	return &FitConfig{
		Verbose: 1,
	}
}

func (config *FitConfig) SetVerbose(verbose int) *FitConfig {
	config.Verbose = verbose
	return config
}

func (config *FitConfig) LoadDefaultIfNil() *FitConfig {
	if config == nil {
		return NewFitConfig()
	}
	return config
}

type Model interface {
	model.Model
	// Fit a model with a train set and parameters.
	Fit(ctx context.Context, trainSet, testSet *dataset.Dataset, config *FitConfig) Score
	// Predict the rating given by a user to an item.
	Predict(userId, itemId int) float32
	// internalPredict predicts without unknown-id logging.
	internalPredict(userId, itemId int) float32
}

// baseFactorization holds the two embedding towers shared by all model
// variants, plus the bookkeeping required to answer queries for ids that were
// never trained.
type baseFactorization struct {
	model.BaseModel
	name string

	// towers
	userEmbedding *nn.EmbeddingLayer
	itemEmbedding *nn.EmbeddingLayer
	userHidden    *nn.LinearLayer
	itemHidden    *nn.LinearLayer

	// dataset stats
	userCount   int
	itemCount   int
	userTrained *bitset.BitSet
	itemTrained *bitset.BitSet
	globalMean  float32

	// variant switches
	hidden     bool
	useDropout bool

	// hyper parameters
	nFactors   int
	nEpochs    int
	batchSize  int
	hiddenSize int
	lr         float32
	reg        float32
	momentum   float32
	dropout    float32
	initStdDev float32
	optimizer  string
}

func (m *baseFactorization) SetParams(params model.Params) {
	m.BaseModel.SetParams(params)
	m.nFactors = m.Params.GetInt(model.NFactors, 64)
	m.nEpochs = m.Params.GetInt(model.NEpochs, 10)
	m.batchSize = m.Params.GetInt(model.BatchSize, 64)
	m.hiddenSize = m.Params.GetInt(model.HiddenSize, 64)
	m.lr = m.Params.GetFloat32(model.Lr, 0.05)
	m.reg = m.Params.GetFloat32(model.Reg, 1e-4)
	m.momentum = m.Params.GetFloat32(model.Momentum, 0.9)
	m.initStdDev = m.Params.GetFloat32(model.InitStdDev, 0.01)
	m.optimizer = m.Params.GetString(model.Optimizer, "sgd")
	if m.useDropout {
		m.dropout = m.Params.GetFloat32(model.Dropout, 0.5)
	} else {
		m.dropout = 0
	}
}

func (m *baseFactorization) GetParamsGrid(withSize bool) model.ParamsGrid {
	return model.ParamsGrid{
		model.NFactors:   lo.If(withSize, []interface{}{16, 32, 64, 128}).Else([]interface{}{64}),
		model.Lr:         []interface{}{0.001, 0.005, 0.01, 0.05, 0.1},
		model.Reg:        []interface{}{1e-5, 1e-4, 1e-3},
		model.InitStdDev: []interface{}{0.001, 0.005, 0.01, 0.05, 0.1},
	}
}

func (m *baseFactorization) Clear() {
	m.userEmbedding = nil
	m.itemEmbedding = nil
	m.userHidden = nil
	m.itemHidden = nil
	m.userTrained = nil
	m.itemTrained = nil
}

func (m *baseFactorization) Init(trainSet *dataset.Dataset) {
	rng := m.GetRandomGenerator()
	m.userCount = trainSet.CountUsers()
	m.itemCount = trainSet.CountItems()
	m.globalMean = trainSet.GlobalMean()
	// set trained flags
	m.userTrained = bitset.New(uint(m.userCount))
	m.itemTrained = bitset.New(uint(m.itemCount))
	for i := 0; i < trainSet.Count(); i++ {
		user, item, _ := trainSet.Get(i)
		m.userTrained.Set(uint(user))
		m.itemTrained.Set(uint(item))
	}
	// initialize towers
	m.userEmbedding = &nn.EmbeddingLayer{
		W: nn.NewTensor(rng.NormalVector(m.userCount*m.nFactors, 0, m.initStdDev), m.userCount, m.nFactors).RequireGrad(),
	}
	m.itemEmbedding = &nn.EmbeddingLayer{
		W: nn.NewTensor(rng.NormalVector(m.itemCount*m.nFactors, 0, m.initStdDev), m.itemCount, m.nFactors).RequireGrad(),
	}
	if m.hidden {
		scale := 1 / math32.Sqrt(float32(m.nFactors))
		m.userHidden = &nn.LinearLayer{
			W: nn.NewTensor(rng.NormalVector(m.nFactors*m.hiddenSize, 0, scale), m.nFactors, m.hiddenSize).RequireGrad(),
			B: nn.Zeros(m.hiddenSize).RequireGrad(),
		}
		m.itemHidden = &nn.LinearLayer{
			W: nn.NewTensor(rng.NormalVector(m.nFactors*m.hiddenSize, 0, scale), m.nFactors, m.hiddenSize).RequireGrad(),
			B: nn.Zeros(m.hiddenSize).RequireGrad(),
		}
	}
}

func (m *baseFactorization) parameters() []*nn.Tensor {
	params := append(m.userEmbedding.Parameters(), m.itemEmbedding.Parameters()...)
	if m.hidden {
		params = append(params, m.userHidden.Parameters()...)
		params = append(params, m.itemHidden.Parameters()...)
	}
	return params
}

func idTensor(ids []int32) *nn.Tensor {
	data := make([]float32, len(ids))
	for i, id := range ids {
		data[i] = float32(id)
	}
	return nn.NewTensor(data, len(data))
}

// forward maps batches of user and item ids to predicted scores. Dropout is
// applied in training mode only.
func (m *baseFactorization) forward(users, items []int32, training bool) *nn.Tensor {
	u := m.userEmbedding.Forward(idTensor(users))
	v := m.itemEmbedding.Forward(idTensor(items))
	if m.hidden {
		u = nn.ReLu(m.userHidden.Forward(u))
		v = nn.ReLu(m.itemHidden.Forward(v))
		if training && m.dropout > 0 {
			u = nn.Dropout(u, m.dropout)
			v = nn.Dropout(v, m.dropout)
		}
	}
	return nn.Dot(u, v)
}

func (m *baseFactorization) newOptimizer() (nn.Optimizer, error) {
	switch m.optimizer {
	case "sgd":
		optimizer := nn.NewSGD(m.parameters(), m.lr).SetMomentum(m.momentum)
		optimizer.SetWeightDecay(m.reg)
		return optimizer, nil
	case "adam":
		optimizer := nn.NewAdam(m.parameters(), m.lr)
		optimizer.SetWeightDecay(m.reg)
		return optimizer, nil
	}
	return nil, errors.Errorf("unknown optimizer %v", m.optimizer)
}

// Fit trains the model with minibatch gradient descent against a squared
// error objective. The test set is evaluated every config.Verbose epochs.
func (m *baseFactorization) Fit(ctx context.Context, trainSet, testSet *dataset.Dataset, config *FitConfig) Score {
	config = config.LoadDefaultIfNil()
	log.Logger().Info("fit "+m.name,
		zap.Int("train_set_size", trainSet.Count()),
		zap.Int("test_set_size", testSet.Count()),
		zap.Any("params", m.GetParams()),
		zap.Any("config", config))
	m.Init(trainSet)
	optimizer, err := m.newOptimizer()
	if err != nil {
		log.Logger().Fatal("failed to create optimizer", zap.Error(err))
	}
	evalStart := time.Now()
	rmse := EvaluateRegression(m, testSet)
	evalTime := time.Since(evalStart)
	log.Logger().Debug(fmt.Sprintf("fit %s %v/%v", m.name, 0, m.nEpochs),
		zap.String("eval_time", evalTime.String()),
		zap.Float32("RMSE", rmse))

	it := dataset.NewIterator(trainSet, m.batchSize, m.GetRandomGenerator().Int63())
	for epoch := 1; epoch <= m.nEpochs; epoch++ {
		if ctx.Err() != nil {
			log.Logger().Warn("fit canceled", zap.Error(ctx.Err()))
			break
		}
		fitStart := time.Now()
		cost := float32(0)
		it.Reset()
		for {
			batch, ok := it.Next()
			if !ok {
				break
			}
			prediction := m.forward(batch.Users, batch.Items, true)
			target := nn.NewTensor(batch.Scores, len(batch.Scores))
			loss := nn.MeanSquareError(target, prediction)
			optimizer.ZeroGrad()
			loss.Backward()
			optimizer.Step()
			cost += loss.Data()[0]
		}
		fitTime := time.Since(fitStart)
		if epoch%config.Verbose == 0 || epoch == m.nEpochs {
			evalStart = time.Now()
			rmse = EvaluateRegression(m, testSet)
			evalTime = time.Since(evalStart)
			log.Logger().Info(fmt.Sprintf("fit %s %v/%v", m.name, epoch, m.nEpochs),
				zap.String("fit_time", fitTime.String()),
				zap.String("eval_time", evalTime.String()),
				zap.Float32("loss", cost),
				zap.Float32("RMSE", rmse))
		}
	}
	log.Logger().Info("fit "+m.name+" complete", zap.Float32("RMSE", rmse))
	return Score{RMSE: rmse}
}

// Predict the rating given by a user to an item. Ids outside the trained
// ranges fall back to the global mean rating.
func (m *baseFactorization) Predict(userId, itemId int) float32 {
	if !m.trained(userId, itemId) {
		log.Logger().Warn("unknown user or item",
			zap.Int("user_id", userId), zap.Int("item_id", itemId))
		return m.globalMean
	}
	return m.internalPredict(userId, itemId)
}

func (m *baseFactorization) internalPredict(userId, itemId int) float32 {
	if !m.trained(userId, itemId) {
		return m.globalMean
	}
	prediction := m.forward([]int32{int32(userId)}, []int32{int32(itemId)}, false)
	return prediction.Data()[0]
}

func (m *baseFactorization) trained(userId, itemId int) bool {
	if userId < 0 || userId >= m.userCount || itemId < 0 || itemId >= m.itemCount {
		return false
	}
	return m.userTrained.Test(uint(userId)) && m.itemTrained.Test(uint(itemId))
}

// MF predicts ratings by the inner product of independent user and item
// embeddings.
type MF struct {
	baseFactorization
}

func NewMF(params model.Params) *MF {
	m := new(MF)
	m.name = "mf"
	m.SetParams(params)
	return m
}

// MLP passes each embedding through a dense layer with ReLU activation
// before the inner product.
type MLP struct {
	baseFactorization
}

func NewMLP(params model.Params) *MLP {
	m := new(MLP)
	m.name = "mlp"
	m.hidden = true
	m.SetParams(params)
	return m
}

// DropoutMLP is MLP with inverted dropout after the activation, applied in
// training mode only.
type DropoutMLP struct {
	baseFactorization
}

func NewDropoutMLP(params model.Params) *DropoutMLP {
	m := new(DropoutMLP)
	m.name = "mlp-dropout"
	m.hidden = true
	m.useDropout = true
	m.SetParams(params)
	return m
}

func GetModelName(m Model) string {
	switch m.(type) {
	case *MF:
		return "mf"
	case *MLP:
		return "mlp"
	case *DropoutMLP:
		return "mlp-dropout"
	default:
		return reflect.TypeOf(m).String()
	}
}

// NewModel creates a model by name.
func NewModel(name string, params model.Params) (Model, error) {
	switch name {
	case "mf":
		return NewMF(params), nil
	case "mlp":
		return NewMLP(params), nil
	case "mlp-dropout":
		return NewDropoutMLP(params), nil
	}
	return nil, errors.Errorf("unknown model %v", name)
}
