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
	"github.com/juju/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCommand = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the configuration after merging, from lowest to highest priority:
defaults, the config file, DSPLIT_* environment variables. Secrets are masked.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig(cmd, nil)
		if err != nil {
			return errors.Trace(err)
		}
		data, err := yaml.Marshal(conf.Redacted())
		if err != nil {
			return errors.Trace(err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return errors.Trace(err)
	},
}
