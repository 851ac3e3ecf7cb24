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
	"strings"

	"github.com/gorse-io/dsplit/base/json"
	"github.com/gorse-io/dsplit/base/log"
	"github.com/gorse-io/dsplit/storage/blob"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

const (
	FieldContexts      = "CONTEXTS"
	FieldLongAnswer    = "LONG_ANSWER"
	FieldQuestion      = "QUESTION"
	FieldMeshes        = "MESHES"
	FieldFinalDecision = "final_decision"
)

// Record is a question with its supporting passages, answer and labels.
// MESHES and final_decision are kept as raw JSON since their shape varies.
type Record struct {
	Contexts      []string
	LongAnswer    string
	Question      string
	Meshes        json.RawMessage
	FinalDecision json.RawMessage
}

// DecodeRecord parses the record stored under id. A missing field is a
// NotFound error and a field of the wrong shape is a NotValid error.
func DecodeRecord(id string, data json.RawMessage) (*Record, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, errors.NotValidf("record %q that is not a JSON object", id)
	}
	for _, name := range []string{FieldContexts, FieldLongAnswer, FieldQuestion, FieldMeshes, FieldFinalDecision} {
		if _, ok := fields[name]; !ok {
			return nil, errors.NotFoundf("field %s of record %q", name, id)
		}
	}
	var record Record
	if err := decodeField(fields, id, FieldContexts, &record.Contexts); err != nil {
		return nil, errors.Trace(err)
	}
	if record.Contexts == nil {
		return nil, errors.NotValidf("null field %s of record %q", FieldContexts, id)
	}
	if err := decodeField(fields, id, FieldLongAnswer, &record.LongAnswer); err != nil {
		return nil, errors.Trace(err)
	}
	if err := decodeField(fields, id, FieldQuestion, &record.Question); err != nil {
		return nil, errors.Trace(err)
	}
	record.Meshes = fields[FieldMeshes]
	record.FinalDecision = fields[FieldFinalDecision]
	return &record, nil
}

func decodeField(fields map[string]json.RawMessage, id, name string, v any) error {
	raw := fields[name]
	if string(raw) == "null" {
		return errors.NotValidf("null field %s of record %q", name, id)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.NotValidf("field %s of record %q with unexpected type", name, id)
	}
	return nil
}

// Conclusion is one line of the flattened output.
type Conclusion struct {
	Idx           string          `json:"idx"`
	Question      string          `json:"QUESTION"`
	Conclusion    string          `json:"CONCLUSION"`
	Type          json.RawMessage `json:"TYPE"`
	FinalDecision json.RawMessage `json:"FINAL_DECISION"`
}

// Flatten joins every context and then the long answer, each followed by a
// newline, into the conclusion text.
func Flatten(id string, record *Record) Conclusion {
	var builder strings.Builder
	for _, context := range record.Contexts {
		builder.WriteString(context)
		builder.WriteByte('\n')
	}
	builder.WriteString(record.LongAnswer)
	builder.WriteByte('\n')
	return Conclusion{
		Idx:           id,
		Question:      record.Question,
		Conclusion:    builder.String(),
		Type:          record.Meshes,
		FinalDecision: record.FinalDecision,
	}
}

// WriteJSONL writes one conclusion per record of data, one JSON object per
// line, in iteration order. Lines written before a failing record are kept.
func WriteJSONL(w io.Writer, data Dataset) error {
	mapping, ok := data.(*Mapping)
	if !ok {
		return errors.NotSupportedf("flattening dataset of type %T", data)
	}
	encoder := json.NewLineEncoder(w)
	for _, id := range mapping.Keys() {
		value, _ := mapping.Get(id)
		record, err := DecodeRecord(id, value)
		if err != nil {
			return errors.Trace(err)
		}
		if err = encoder.Encode(Flatten(id, record)); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// FlattenTo creates or overwrites name in store with the flattened records of
// data. The writer is closed on every path, so a failure part way through
// leaves a partial file behind.
func FlattenTo(store blob.Store, name string, data Dataset) (err error) {
	if _, ok := data.(*Mapping); !ok {
		return errors.NotSupportedf("flattening dataset of type %T", data)
	}
	w, err := store.Create(name)
	if err != nil {
		return errors.Trace(err)
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil {
			if err == nil {
				err = errors.Trace(closeErr)
			} else {
				log.Logger().Error("failed to close flattened output", zap.String("name", name), zap.Error(closeErr))
			}
		}
	}()
	if err = WriteJSONL(w, data); err != nil {
		return errors.Trace(err)
	}
	log.Logger().Debug("flatten dataset", zap.String("name", name), zap.Int("records", data.Len()))
	return nil
}
