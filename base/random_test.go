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

package base

import (
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestRandomGenerator_Sample(t *testing.T) {
	excludeSet := mapset.NewSet(0, 1, 2, 3, 4)
	rng := NewRandomGenerator(0)
	for i := 1; i <= 10; i++ {
		sampled := rng.Sample(0, 10, i, excludeSet)
		assert.Equal(t, min(i, 5), len(sampled))
		assert.Equal(t, len(sampled), len(lo.Uniq(sampled)))
		for j := range sampled {
			assert.False(t, excludeSet.Contains(sampled[j]))
		}
	}
}

func TestRandomGenerator_SampleAll(t *testing.T) {
	rng := NewRandomGenerator(0)
	assert.Equal(t, []int{0, 1, 2, 3}, rng.Sample(0, 4, 4))
	assert.Equal(t, []int{1, 3}, rng.Sample(0, 4, 2, mapset.NewSet(0, 2)))
}

func TestRandomGenerator_SampleEmpty(t *testing.T) {
	rng := NewRandomGenerator(0)
	assert.Empty(t, rng.Sample(0, 10, 0))
	assert.NotNil(t, rng.Sample(0, 0, 0))
	assert.Empty(t, rng.Sample(0, 0, 3))
}

func TestRandomGenerator_SampleDeterministic(t *testing.T) {
	a := NewRandomGenerator(42).Sample(0, 1000, 100)
	b := NewRandomGenerator(42).Sample(0, 1000, 100)
	c := NewRandomGenerator(43).Sample(0, 1000, 100)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
