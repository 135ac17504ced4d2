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
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/juju/errors"
	"github.com/spf13/viper"

	"github.com/mfrec-io/mfrec/model"
)

// Config is the configuration for a training run.
type Config struct {
	Data  DataConfig  `mapstructure:"data"`
	Train TrainConfig `mapstructure:"train"`
}

// DataConfig describes the rating source. An empty path falls back to the
// built-in MovieLens 100K dataset.
type DataConfig struct {
	Path      string  `mapstructure:"path"`
	TestRatio float32 `mapstructure:"test_ratio" validate:"gt=0,lt=1"`
	Seed      int64   `mapstructure:"seed"`
}

// TrainConfig holds the model type and its hyper-parameters.
type TrainConfig struct {
	Model      string  `mapstructure:"model" validate:"oneof=mf mlp mlp-dropout"`
	Optimizer  string  `mapstructure:"optimizer" validate:"oneof=sgd adam"`
	NEpochs    int     `mapstructure:"n_epochs" validate:"gt=0"`
	NFactors   int     `mapstructure:"n_factors" validate:"gt=0"`
	BatchSize  int     `mapstructure:"batch_size" validate:"gt=0"`
	HiddenSize int     `mapstructure:"hidden_size" validate:"gt=0"`
	Lr         float32 `mapstructure:"lr" validate:"gt=0"`
	Reg        float32 `mapstructure:"reg" validate:"gte=0"`
	Momentum   float32 `mapstructure:"momentum" validate:"gte=0,lt=1"`
	Dropout    float32 `mapstructure:"dropout" validate:"gte=0,lt=1"`
	InitStdDev float32 `mapstructure:"init_std_dev" validate:"gt=0"`
	Verbose    int     `mapstructure:"verbose" validate:"gt=0"`
}

func setDefault() {
	// [data]
	viper.SetDefault("data.test_ratio", 0.2)
	viper.SetDefault("data.seed", 42)
	// [train]
	viper.SetDefault("train.model", "mf")
	viper.SetDefault("train.optimizer", "sgd")
	viper.SetDefault("train.n_epochs", 10)
	viper.SetDefault("train.n_factors", 64)
	viper.SetDefault("train.batch_size", 64)
	viper.SetDefault("train.hidden_size", 64)
	viper.SetDefault("train.lr", 0.05)
	viper.SetDefault("train.reg", 1e-4)
	viper.SetDefault("train.momentum", 0.9)
	viper.SetDefault("train.dropout", 0.5)
	viper.SetDefault("train.init_std_dev", 0.01)
	viper.SetDefault("train.verbose", 1)
}

// LoadConfig loads and validates the configuration from a TOML file. An empty
// path loads the defaults.
func LoadConfig(path string) (*Config, error) {
	setDefault()
	viper.SetConfigType("toml")
	viper.SetEnvPrefix("mfrec")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return nil, errors.Trace(err)
		}
	}
	var conf Config
	if err := viper.Unmarshal(&conf); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}

// Validate checks the configuration against the struct tags.
func (config *Config) Validate() error {
	return validator.New().Struct(config)
}

// Params converts the training section to model hyper-parameters.
func (config *TrainConfig) Params() model.Params {
	return model.Params{
		model.Optimizer:  config.Optimizer,
		model.NEpochs:    config.NEpochs,
		model.NFactors:   config.NFactors,
		model.BatchSize:  config.BatchSize,
		model.HiddenSize: config.HiddenSize,
		model.Lr:         config.Lr,
		model.Reg:        config.Reg,
		model.Momentum:   config.Momentum,
		model.Dropout:    config.Dropout,
		model.InitStdDev: config.InitStdDev,
	}
}
