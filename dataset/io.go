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

package dataset

import (
	"io"

	"github.com/gorse-io/dsplit/base/json"
	"github.com/gorse-io/dsplit/storage/blob"
	"github.com/juju/errors"
)

// Load reads and decodes the dataset stored as name.
func Load(store blob.Store, name string) (Dataset, error) {
	r, err := store.Open(name)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Trace(err)
	}
	ds, err := FromJSON(data)
	if err != nil {
		return nil, errors.Annotatef(err, "load %s", name)
	}
	return ds, nil
}

// Save writes v to name as JSON indented by two spaces.
func Save(store blob.Store, name string, v any) error {
	data, err := json.MarshalIndent(v)
	if err != nil {
		return errors.Trace(err)
	}
	w, err := store.Create(name)
	if err != nil {
		return errors.Trace(err)
	}
	if _, err = w.Write(data); err != nil {
		_ = w.Close()
		return errors.Trace(err)
	}
	return errors.Trace(w.Close())
}
