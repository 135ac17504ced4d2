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
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mfrec-io/mfrec/base/log"
	"github.com/mfrec-io/mfrec/cmd/version"
	"github.com/mfrec-io/mfrec/config"
	"github.com/mfrec-io/mfrec/dataset"
	"github.com/mfrec-io/mfrec/datautil"
	"github.com/mfrec-io/mfrec/model"
	"github.com/mfrec-io/mfrec/model/mf"
)

var mfrecCommand = &cobra.Command{
	Use:   "mfrec",
	Short: "Train matrix factorization models on MovieLens style ratings.",
	Run: func(cmd *cobra.Command, args []string) {
		// Show version
		if showVersion, _ := cmd.PersistentFlags().GetBool("version"); showVersion {
			fmt.Println(version.BuildInfo())
			return
		}
		// setup logger
		debug, _ := cmd.PersistentFlags().GetBool("debug")
		log.SetLogger(cmd.PersistentFlags(), debug)

		// load config
		configPath, _ := cmd.PersistentFlags().GetString("config")
		log.Logger().Info("load config", zap.String("config", configPath))
		conf, err := config.LoadConfig(configPath)
		if err != nil {
			log.Logger().Fatal("failed to load config", zap.Error(err))
		}

		// load ratings
		var ratings *dataset.Dataset
		if conf.Data.Path != "" {
			ratings, err = dataset.LoadRatings(conf.Data.Path)
		} else {
			ratings, err = datautil.LoadMovieLens()
		}
		if err != nil {
			log.Logger().Fatal("failed to load ratings", zap.Error(err))
		}
		trainSet, testSet := ratings.Split(conf.Data.TestRatio, conf.Data.Seed)

		// create model
		params := conf.Train.Params()
		params[model.RandomState] = conf.Data.Seed
		m, err := mf.NewModel(conf.Train.Model, params)
		if err != nil {
			log.Logger().Fatal("failed to create model", zap.Error(err))
		}

		// train model
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		score := m.Fit(ctx, trainSet, testSet, mf.NewFitConfig().SetVerbose(conf.Train.Verbose))
		log.Logger().Info("training complete", score.ZapFields()...)
	},
}

func init() {
	log.AddFlags(mfrecCommand.PersistentFlags())
	mfrecCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	mfrecCommand.PersistentFlags().StringP("config", "c", "", "configuration file path")
	mfrecCommand.PersistentFlags().BoolP("version", "v", false, "mfrec version")
}

func main() {
	if err := mfrecCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}
