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
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorse-io/dsplit/base/json"
	"github.com/gorse-io/dsplit/config"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRecords(t *testing.T, path string, n int) {
	var buf strings.Builder
	buf.WriteString("{")
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteString(",")
		}
		fmt.Fprintf(&buf, `"%d": {"CONTEXTS": ["context %d."], "LONG_ANSWER": "answer %d.", "QUESTION": "question %d?", "MESHES": ["m"], "final_decision": "yes"}`, i, i, i, i)
	}
	buf.WriteString("}")
	require.NoError(t, os.WriteFile(path, []byte(buf.String()), 0644))
}

func testConfig(dir string) *config.Config {
	conf := config.GetDefaultConfig()
	conf.Input = filepath.Join(dir, "test_set.json")
	conf.Output.Dir = dir
	return conf
}

func TestRunSplit(t *testing.T) {
	dir := t.TempDir()
	writeRecords(t, filepath.Join(dir, "test_set.json"), 50)
	conf := testConfig(dir)
	conf.Split = config.SplitConfig{TrainRatio: 0.6, ValRatio: 0.2, TestRatio: 0.2, Seed: 42}

	var stdout bytes.Buffer
	require.NoError(t, runSplit(conf, &stdout, false))
	assert.Equal(t, "Total dataset size: 50\nTraining set size: 30\nValidation set size: 10\nTest set size: 10\n", stdout.String())

	for _, name := range []string{
		"data/train_set.json", "data/val_set.json", "data/test_set.json",
		"data/split_indices.json", "haystack.jsonl", "needle.jsonl",
	} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	data, err := os.ReadFile(filepath.Join(dir, "data/split_indices.json"))
	require.NoError(t, err)
	var indices struct {
		Train []int `json:"train_indices"`
		Val   []int `json:"val_indices"`
		Test  []int `json:"test_indices"`
	}
	require.NoError(t, json.Unmarshal(data, &indices))
	assert.Len(t, indices.Train, 30)
	assert.Len(t, indices.Val, 10)
	assert.Len(t, indices.Test, 10)
	all := lo.Union(indices.Train, indices.Val, indices.Test)
	assert.ElementsMatch(t, lo.Range(50), all)

	haystack, err := os.ReadFile(filepath.Join(dir, "haystack.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, 30, strings.Count(string(haystack), "\n"))
	needle, err := os.ReadFile(filepath.Join(dir, "needle.jsonl"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(needle), "\n"), "\n")
	require.Len(t, lines, 10)
	first := fmt.Sprint(indices.Test[0])
	assert.JSONEq(t, fmt.Sprintf(`{"idx": %q, "QUESTION": "question %s?", "CONCLUSION": "context %s.\nanswer %s.\n", "TYPE": ["m"], "FINAL_DECISION": "yes"}`,
		first, first, first, first), lines[0])

	// same seed, same outputs
	train, err := os.ReadFile(filepath.Join(dir, "data/train_set.json"))
	require.NoError(t, err)
	stdout.Reset()
	require.NoError(t, runSplit(conf, &stdout, true))
	again, err := os.ReadFile(filepath.Join(dir, "data/train_set.json"))
	require.NoError(t, err)
	assert.Equal(t, string(train), string(again))
}

func TestRunSplit_Sequence(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test_set.json"), []byte(`[1, 2, 3, 4]`), 0644))
	conf := testConfig(dir)
	conf.Output.TrainJSONL = ""
	conf.Output.TestJSONL = ""

	var stdout bytes.Buffer
	require.NoError(t, runSplit(conf, &stdout, false))
	assert.Contains(t, stdout.String(), "Total dataset size: 4\n")
	assert.NoFileExists(t, filepath.Join(dir, "haystack.jsonl"))

	// a sequence cannot be flattened
	conf.Output.TrainJSONL = "haystack.jsonl"
	err := runSplit(conf, &stdout, false)
	assert.True(t, errors.Is(err, errors.NotSupported))
}

func TestRunSplit_Ratio(t *testing.T) {
	dir := t.TempDir()
	writeRecords(t, filepath.Join(dir, "test_set.json"), 10)
	conf := testConfig(dir)
	conf.Split = config.SplitConfig{TrainRatio: 0.5, ValRatio: 0.3, TestRatio: 0.3}

	var stdout bytes.Buffer
	err := runSplit(conf, &stdout, false)
	assert.True(t, errors.Is(err, errors.NotValid))
	assert.Zero(t, stdout.Len())
	assert.NoDirExists(t, filepath.Join(dir, "data"))
}

func TestRunFlatten(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "records.json")
	writeRecords(t, input, 3)
	output := filepath.Join(dir, "out", "records.jsonl")
	require.NoError(t, runFlatten(config.StorageConfig{}, input, output))
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	for i, line := range lines {
		var conclusion map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &conclusion))
		assert.Equal(t, fmt.Sprint(i), conclusion["idx"])
	}

	err = runFlatten(config.StorageConfig{}, filepath.Join(dir, "missing.json"), output)
	assert.Error(t, err)
}

func TestRootCommand(t *testing.T) {
	var stdout bytes.Buffer
	rootCommand.SetOut(&stdout)
	rootCommand.SetArgs([]string{"version"})
	require.NoError(t, rootCommand.Execute())
	assert.Contains(t, stdout.String(), "Version:")
}
