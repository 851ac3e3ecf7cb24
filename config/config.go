// Copyright 2020 gorse Project Authors
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

	"github.com/go-viper/mapstructure/v2"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

const (
	SchemeS3    = "s3"
	SchemeGCS   = "gs"
	SchemeAzure = "azblob"
)

// Config is the configuration for dsplit.
type Config struct {
	Input   string        `mapstructure:"input" yaml:"input" validate:"required"`
	Split   SplitConfig   `mapstructure:"split" yaml:"split"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
}

// SplitConfig holds the subset ratios and the sampling seed. The ratios must
// also sum to one, which the splitter checks.
type SplitConfig struct {
	TrainRatio float64 `mapstructure:"train_ratio" yaml:"train_ratio" validate:"gte=0,lte=1"`
	ValRatio   float64 `mapstructure:"val_ratio" yaml:"val_ratio" validate:"gte=0,lte=1"`
	TestRatio  float64 `mapstructure:"test_ratio" yaml:"test_ratio" validate:"gte=0,lte=1"`
	Seed       int64   `mapstructure:"seed" yaml:"seed"`
}

// OutputConfig names the files written below Dir. An empty JSONL name skips
// flattening of that subset.
type OutputConfig struct {
	Dir        string `mapstructure:"dir" yaml:"dir" validate:"required"`
	TrainSet   string `mapstructure:"train_set" yaml:"train_set" validate:"required"`
	ValSet     string `mapstructure:"val_set" yaml:"val_set" validate:"required"`
	TestSet    string `mapstructure:"test_set" yaml:"test_set" validate:"required"`
	Indices    string `mapstructure:"indices" yaml:"indices" validate:"required"`
	TrainJSONL string `mapstructure:"train_jsonl" yaml:"train_jsonl"`
	TestJSONL  string `mapstructure:"test_jsonl" yaml:"test_jsonl"`
}

type StorageConfig struct {
	S3    S3Config        `mapstructure:"s3" yaml:"s3"`
	GCS   GCSConfig       `mapstructure:"gcs" yaml:"gcs"`
	Azure AzureBlobConfig `mapstructure:"azure" yaml:"azure"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl" yaml:"use_ssl"`
	// Bucket and Prefix come from the location URL.
	Bucket string `mapstructure:"-" yaml:"-"`
	Prefix string `mapstructure:"-" yaml:"-"`
}

type GCSConfig struct {
	CredentialsFile string `mapstructure:"credentials_file" yaml:"credentials_file"`
	// Bucket and Prefix come from the location URL.
	Bucket string `mapstructure:"-" yaml:"-"`
	Prefix string `mapstructure:"-" yaml:"-"`
}

type AzureBlobConfig struct {
	ConnectionString string `mapstructure:"connection_string" yaml:"connection_string"`
	AccountName      string `mapstructure:"account_name" yaml:"account_name"`
	AccountKey       string `mapstructure:"account_key" yaml:"account_key"`
	Endpoint         string `mapstructure:"endpoint" yaml:"endpoint"`
}

// GetDefaultConfig returns the configuration used when nothing is set.
func GetDefaultConfig() *Config {
	return &Config{
		Input: "test_set.json",
		Split: SplitConfig{
			TrainRatio: 0.96,
			ValRatio:   0,
			TestRatio:  0.04,
			Seed:       42,
		},
		Output: OutputConfig{
			Dir:        ".",
			TrainSet:   "data/train_set.json",
			ValSet:     "data/val_set.json",
			TestSet:    "data/test_set.json",
			Indices:    "data/split_indices.json",
			TrainJSONL: "haystack.jsonl",
			TestJSONL:  "needle.jsonl",
		},
	}
}

func setDefault(v *viper.Viper) {
	defaultConfig := GetDefaultConfig()
	v.SetDefault("input", defaultConfig.Input)
	v.SetDefault("split.train_ratio", defaultConfig.Split.TrainRatio)
	v.SetDefault("split.val_ratio", defaultConfig.Split.ValRatio)
	v.SetDefault("split.test_ratio", defaultConfig.Split.TestRatio)
	v.SetDefault("split.seed", defaultConfig.Split.Seed)
	v.SetDefault("output.dir", defaultConfig.Output.Dir)
	v.SetDefault("output.train_set", defaultConfig.Output.TrainSet)
	v.SetDefault("output.val_set", defaultConfig.Output.ValSet)
	v.SetDefault("output.test_set", defaultConfig.Output.TestSet)
	v.SetDefault("output.indices", defaultConfig.Output.Indices)
	v.SetDefault("output.train_jsonl", defaultConfig.Output.TrainJSONL)
	v.SetDefault("output.test_jsonl", defaultConfig.Output.TestJSONL)
	// storage keys have empty defaults but must be known for env lookup
	for _, key := range []string{
		"storage.s3.endpoint", "storage.s3.access_key_id", "storage.s3.secret_access_key",
		"storage.gcs.credentials_file",
		"storage.azure.connection_string", "storage.azure.account_name", "storage.azure.account_key", "storage.azure.endpoint",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("storage.s3.use_ssl", false)
}

// LoadConfig loads configuration from defaults, the file at path (if any),
// DSPLIT_* environment variables and flags already bound to v, in increasing
// order of priority.
func LoadConfig(v *viper.Viper, path string) (*Config, error) {
	setDefault(v)
	v.SetEnvPrefix("dsplit")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Annotatef(err, "read config %s", path)
		}
	}
	var conf Config
	if err := v.Unmarshal(&conf, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	))); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}

// Redacted returns a copy safe to print.
func (config *Config) Redacted() *Config {
	redacted := *config
	redacted.Storage.S3.SecretAccessKey = redact(config.Storage.S3.SecretAccessKey)
	redacted.Storage.Azure.AccountKey = redact(config.Storage.Azure.AccountKey)
	redacted.Storage.Azure.ConnectionString = redact(config.Storage.Azure.ConnectionString)
	return &redacted
}

func redact(s string) string {
	return strings.Repeat("x", len(s))
}
