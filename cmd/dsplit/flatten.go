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
	"github.com/gorse-io/dsplit/base/log"
	"github.com/gorse-io/dsplit/config"
	"github.com/gorse-io/dsplit/dataset"
	"github.com/gorse-io/dsplit/storage/blob"
	"github.com/juju/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var flattenCommand = &cobra.Command{
	Use:   "flatten",
	Short: "Flatten a mapping of records into JSON lines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig(cmd, nil)
		if err != nil {
			return errors.Trace(err)
		}
		input, _ := cmd.Flags().GetString("input")
		output, _ := cmd.Flags().GetString("output")
		return runFlatten(conf.Storage, input, output)
	},
}

func init() {
	flattenCommand.Flags().StringP("input", "i", "", "location of a JSON mapping from id to record")
	flattenCommand.Flags().StringP("output", "o", "", "location of the JSON lines file")
	_ = flattenCommand.MarkFlagRequired("input")
	_ = flattenCommand.MarkFlagRequired("output")
}

func runFlatten(storage config.StorageConfig, input, output string) error {
	inputLocation, inputName := blob.SplitLocation(input)
	inputStore, err := blob.Open(inputLocation, storage)
	if err != nil {
		return errors.Trace(err)
	}
	data, err := dataset.Load(inputStore, inputName)
	if err != nil {
		return errors.Trace(err)
	}
	outputLocation, outputName := blob.SplitLocation(output)
	outputStore, err := blob.Open(outputLocation, storage)
	if err != nil {
		return errors.Trace(err)
	}
	if err = dataset.FlattenTo(outputStore, outputName, data); err != nil {
		return errors.Trace(err)
	}
	log.Logger().Info("flatten dataset", zap.String("input", input), zap.String("output", output), zap.Int("records", data.Len()))
	return nil
}
