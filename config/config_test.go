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

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"github.com/mfrec-io/mfrec/model"
)

func TestUnmarshal(t *testing.T) {
	viper.Reset()
	data, err := os.ReadFile("config.toml.template")
	assert.NoError(t, err)
	text := string(data)
	text = strings.Replace(text, "model = \"mf\"", "model = \"mlp-dropout\"", -1)
	text = strings.Replace(text, "optimizer = \"sgd\"", "optimizer = \"adam\"", -1)
	setDefault()
	viper.SetConfigType("toml")
	err = viper.ReadConfig(strings.NewReader(text))
	assert.NoError(t, err)
	var config Config
	err = viper.Unmarshal(&config)
	assert.NoError(t, err)

	// [data]
	assert.Equal(t, "", config.Data.Path)
	assert.Equal(t, float32(0.2), config.Data.TestRatio)
	assert.Equal(t, int64(42), config.Data.Seed)
	// [train]
	assert.Equal(t, "mlp-dropout", config.Train.Model)
	assert.Equal(t, "adam", config.Train.Optimizer)
	assert.Equal(t, 10, config.Train.NEpochs)
	assert.Equal(t, 64, config.Train.NFactors)
	assert.Equal(t, 64, config.Train.BatchSize)
	assert.Equal(t, 64, config.Train.HiddenSize)
	assert.Equal(t, float32(0.05), config.Train.Lr)
	assert.Equal(t, float32(1e-4), config.Train.Reg)
	assert.Equal(t, float32(0.9), config.Train.Momentum)
	assert.Equal(t, float32(0.5), config.Train.Dropout)
	assert.Equal(t, float32(0.01), config.Train.InitStdDev)
	assert.Equal(t, 1, config.Train.Verbose)
	assert.NoError(t, config.Validate())
}

func TestLoadConfigDefault(t *testing.T) {
	viper.Reset()
	config, err := LoadConfig("")
	assert.NoError(t, err)
	assert.Equal(t, "mf", config.Train.Model)
	assert.Equal(t, float32(0.2), config.Data.TestRatio)
}

func TestValidate(t *testing.T) {
	viper.Reset()
	config, err := LoadConfig("")
	assert.NoError(t, err)
	config.Train.Model = "unknown"
	assert.Error(t, config.Validate())
	config.Train.Model = "mf"
	config.Data.TestRatio = 1.5
	assert.Error(t, config.Validate())
}

func TestLoadConfigFile(t *testing.T) {
	viper.Reset()
	path := filepath.Join(t.TempDir(), "config.toml")
	text := "[data]\ntest_ratio = 0.1\n[train]\nmodel = \"mlp\"\nn_epochs = 5\n"
	assert.NoError(t, os.WriteFile(path, []byte(text), 0644))
	config, err := LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, float32(0.1), config.Data.TestRatio)
	assert.Equal(t, "mlp", config.Train.Model)
	assert.Equal(t, 5, config.Train.NEpochs)
	// untouched keys keep their defaults
	assert.Equal(t, 64, config.Train.NFactors)
}

func TestParams(t *testing.T) {
	viper.Reset()
	config, err := LoadConfig("")
	assert.NoError(t, err)
	params := config.Train.Params()
	assert.Equal(t, "sgd", params.GetString(model.Optimizer, ""))
	assert.Equal(t, 10, params.GetInt(model.NEpochs, 0))
	assert.Equal(t, float32(0.05), params.GetFloat32(model.Lr, 0))
}
