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
	"bytes"

	"github.com/gorse-io/dsplit/base/json"
	"github.com/juju/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Dataset is either a *Sequence or a *Mapping. Both select items by position,
// so the splitter never needs to know which one it holds.
type Dataset interface {
	// Len returns the number of items.
	Len() int
	// SubSet selects items by position, in the order of indices. The result has
	// the same representation as the receiver.
	SubSet(indices []int) Dataset
	MarshalJSON() ([]byte, error)
}

var (
	_ Dataset = (*Sequence)(nil)
	_ Dataset = (*Mapping)(nil)
)

// Sequence is an ordered list of JSON values.
type Sequence struct {
	items []json.RawMessage
}

func NewSequence(items ...json.RawMessage) *Sequence {
	return &Sequence{items: items}
}

func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Item returns the i-th value.
func (s *Sequence) Item(i int) json.RawMessage {
	return s.items[i]
}

func (s *Sequence) SubSet(indices []int) Dataset {
	items := make([]json.RawMessage, 0, len(indices))
	for _, i := range indices {
		items = append(items, s.items[i])
	}
	return &Sequence{items: items}
}

func (s *Sequence) MarshalJSON() ([]byte, error) {
	if s == nil || len(s.items) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(s.items)
}

// Mapping is an ordered map from record identifier to record. Iteration follows
// insertion order, which for decoded documents is the order of keys in the source.
type Mapping struct {
	pairs *orderedmap.OrderedMap[string, json.RawMessage]
	keys  []string
}

func NewMapping() *Mapping {
	return &Mapping{pairs: orderedmap.New[string, json.RawMessage]()}
}

// Set adds or replaces a record. A replaced record keeps its position.
func (m *Mapping) Set(key string, value json.RawMessage) {
	if m.pairs == nil {
		m.pairs = orderedmap.New[string, json.RawMessage]()
	}
	if _, present := m.pairs.Set(key, value); !present {
		m.keys = append(m.keys, key)
	}
}

func (m *Mapping) Get(key string) (json.RawMessage, bool) {
	if m == nil || m.pairs == nil {
		return nil, false
	}
	return m.pairs.Get(key)
}

// Keys returns identifiers in iteration order.
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

func (m *Mapping) SubSet(indices []int) Dataset {
	subset := NewMapping()
	for _, i := range indices {
		key := m.keys[i]
		value, _ := m.pairs.Get(key)
		subset.Set(key, value)
	}
	return subset
}

func (m *Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		data, err := json.Marshal(key)
		if err != nil {
			return nil, errors.Trace(err)
		}
		buf.Write(data)
		buf.WriteByte(':')
		value, _ := m.pairs.Get(key)
		if data, err = json.Marshal(value); err != nil {
			return nil, errors.Trace(err)
		}
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *Mapping) UnmarshalJSON(data []byte) error {
	pairs := orderedmap.New[string, json.RawMessage]()
	if err := pairs.UnmarshalJSON(data); err != nil {
		return errors.Trace(err)
	}
	m.pairs = pairs
	m.keys = make([]string, 0, pairs.Len())
	for pair := pairs.Oldest(); pair != nil; pair = pair.Next() {
		m.keys = append(m.keys, pair.Key)
	}
	return nil
}

// FromJSON decodes a dataset document. A JSON array becomes a Sequence and a
// JSON object becomes a Mapping. Any other value is not a dataset.
func FromJSON(data []byte) (Dataset, error) {
	if !json.Valid(data) {
		return nil, errors.NotValidf("malformed JSON dataset")
	}
	trimmed := bytes.TrimSpace(data)
	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, errors.Trace(err)
		}
		return NewSequence(items...), nil
	case '{':
		mapping := NewMapping()
		if err := mapping.UnmarshalJSON(trimmed); err != nil {
			return nil, errors.Trace(err)
		}
		return mapping, nil
	default:
		return nil, errors.NotSupportedf("dataset of JSON %s", kindOf(trimmed[0]))
	}
}

func kindOf(c byte) string {
	switch c {
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}
