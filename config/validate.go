// Copyright 2021 gorse Project Authors
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
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/juju/errors"
)

// Validate checks field ranges and that every remote location has the
// settings its backend needs.
func (config *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			messages := make([]string, 0, len(fieldErrors))
			for _, fieldError := range fieldErrors {
				messages = append(messages, fieldError.Namespace()+" ("+fieldError.Tag()+")")
			}
			return errors.NotValidf("config fields %s", strings.Join(messages, ", "))
		}
		return errors.Trace(err)
	}
	for _, location := range []string{config.Input, config.Output.Dir} {
		if err := config.Storage.validateLocation(location); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

func (storage *StorageConfig) validateLocation(location string) error {
	u, err := url.Parse(location)
	if err != nil || len(u.Scheme) < 2 || u.Scheme == "file" {
		return nil
	}
	if u.Host == "" {
		return errors.NotValidf("location %s without bucket", location)
	}
	switch u.Scheme {
	case SchemeS3:
		if storage.S3.Endpoint == "" {
			return errors.NotValidf("location %s without storage.s3.endpoint", location)
		}
	case SchemeAzure:
		if storage.Azure.ConnectionString == "" && (storage.Azure.AccountName == "" || storage.Azure.AccountKey == "") {
			return errors.NotValidf("location %s without storage.azure credentials", location)
		}
	}
	return nil
}
