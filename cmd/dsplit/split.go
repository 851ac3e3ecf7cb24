// Copyright 2025 gorse Project Authors
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
	"fmt"
	"io"

	"github.com/gorse-io/dsplit/base/log"
	"github.com/gorse-io/dsplit/config"
	"github.com/gorse-io/dsplit/dataset"
	"github.com/gorse-io/dsplit/storage/blob"
	"github.com/juju/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var splitBindings = map[string]string{
	"input":       "input",
	"output":      "output.dir",
	"train-ratio": "split.train_ratio",
	"val-ratio":   "split.val_ratio",
	"test-ratio":  "split.test_ratio",
	"seed":        "split.seed",
}

var splitCommand = &cobra.Command{
	Use:   "split",
	Short: "Split a dataset and write subsets, indices and flattened records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig(cmd, splitBindings)
		if err != nil {
			return errors.Trace(err)
		}
		progress, _ := cmd.Flags().GetBool("progress")
		return runSplit(conf, cmd.OutOrStdout(), progress)
	},
}

func init() {
	defaultConfig := config.GetDefaultConfig()
	flags := splitCommand.Flags()
	flags.StringP("input", "i", defaultConfig.Input, "location of the dataset to split")
	flags.StringP("output", "o", defaultConfig.Output.Dir, "location outputs are written to")
	flags.Float64("train-ratio", defaultConfig.Split.TrainRatio, "share of items in the train subset")
	flags.Float64("val-ratio", defaultConfig.Split.ValRatio, "share of items in the validation subset")
	flags.Float64("test-ratio", defaultConfig.Split.TestRatio, "share of items in the test subset")
	flags.Int64("seed", defaultConfig.Split.Seed, "random seed")
	flags.Bool("progress", false, "show progress of written outputs")
}

func runSplit(conf *config.Config, stdout io.Writer, progress bool) error {
	// load dataset
	inputLocation, inputName := blob.SplitLocation(conf.Input)
	inputStore, err := blob.Open(inputLocation, conf.Storage)
	if err != nil {
		return errors.Trace(err)
	}
	data, err := dataset.Load(inputStore, inputName)
	if err != nil {
		return errors.Trace(err)
	}
	log.Logger().Info("load dataset", zap.String("input", conf.Input), zap.Int("size", data.Len()))

	// split dataset
	splits, err := dataset.Split(data, dataset.Ratio{
		Train: conf.Split.TrainRatio,
		Val:   conf.Split.ValRatio,
		Test:  conf.Split.TestRatio,
	}, conf.Split.Seed)
	if err != nil {
		return errors.Trace(err)
	}
	log.Logger().Info("split dataset",
		zap.Int64("seed", conf.Split.Seed),
		zap.Int("train", splits.Train.Len()),
		zap.Int("val", splits.Val.Len()),
		zap.Int("test", splits.Test.Len()))

	// save splits
	store, err := blob.Open(conf.Output.Dir, conf.Storage)
	if err != nil {
		return errors.Trace(err)
	}
	if progress {
		store = progressStore{Store: store}
	}
	if err = dataset.Save(store, conf.Output.TrainSet, splits.Train); err != nil {
		return errors.Trace(err)
	}
	if conf.Output.TrainJSONL != "" {
		if err = dataset.FlattenTo(store, conf.Output.TrainJSONL, splits.Train); err != nil {
			return errors.Trace(err)
		}
	}
	if err = dataset.Save(store, conf.Output.ValSet, splits.Val); err != nil {
		return errors.Trace(err)
	}
	if err = dataset.Save(store, conf.Output.TestSet, splits.Test); err != nil {
		return errors.Trace(err)
	}
	if conf.Output.TestJSONL != "" {
		if err = dataset.FlattenTo(store, conf.Output.TestJSONL, splits.Test); err != nil {
			return errors.Trace(err)
		}
	}
	if err = dataset.Save(store, conf.Output.Indices, splits.Indices); err != nil {
		return errors.Trace(err)
	}
	log.Logger().Info("save splits", zap.String("output", conf.Output.Dir))

	fmt.Fprintf(stdout, "Total dataset size: %d\n", data.Len())
	fmt.Fprintf(stdout, "Training set size: %d\n", splits.Train.Len())
	fmt.Fprintf(stdout, "Validation set size: %d\n", splits.Val.Len())
	fmt.Fprintf(stdout, "Test set size: %d\n", splits.Test.Len())
	return nil
}

// progressStore shows bytes written to each created file on stderr.
type progressStore struct {
	blob.Store
}

func (s progressStore) Create(name string) (io.WriteCloser, error) {
	w, err := s.Store.Create(name)
	if err != nil {
		return nil, err
	}
	return &progressWriter{
		WriteCloser: w,
		bar:         progressbar.DefaultBytes(-1, "writing "+name),
	}, nil
}

type progressWriter struct {
	io.WriteCloser
	bar *progressbar.ProgressBar
}

func (w *progressWriter) Write(p []byte) (int, error) {
	n, err := w.WriteCloser.Write(p)
	_ = w.bar.Add(n)
	return n, err
}

func (w *progressWriter) Close() error {
	_ = w.bar.Finish()
	return w.WriteCloser.Close()
}
