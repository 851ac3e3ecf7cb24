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
	"math"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/dsplit/base"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

const ratioTolerance = 1e-10

// Ratio is the share of items assigned to each subset.
type Ratio struct {
	Train float64
	Val   float64
	Test  float64
}

// Validate checks that every share is a finite non-negative number and that
// shares sum to one.
func (r Ratio) Validate() error {
	for _, v := range []float64{r.Train, r.Val, r.Test} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.NotValidf("ratio %v in %v/%v/%v", v, r.Train, r.Val, r.Test)
		}
	}
	if r.Train < 0 || r.Val < 0 || r.Test < 0 {
		return errors.NotValidf("negative ratio in %v/%v/%v", r.Train, r.Val, r.Test)
	}
	if sum := r.Train + r.Val + r.Test; math.Abs(sum-1) > ratioTolerance {
		return errors.NotValidf("ratios %v/%v/%v summing to %v instead of 1", r.Train, r.Val, r.Test, sum)
	}
	return nil
}

// Indices records which positions of the source went into each subset.
type Indices struct {
	Train []int `json:"train_indices"`
	Val   []int `json:"val_indices"`
	Test  []int `json:"test_indices"`
}

// Splits is the result of Split.
type Splits struct {
	Train   Dataset
	Val     Dataset
	Test    Dataset
	Indices Indices
}

// Split partitions data into train, validation and test subsets.
//
// The train subset holds floor(n*ratio.Train) items drawn uniformly without
// replacement, and the validation subset floor(n*ratio.Val) items drawn from the
// rest. Every remaining item goes to the test subset, so test absorbs rounding.
// Train and validation indices keep draw order. Test indices are ascending.
// Calls with the same data, ratio and seed always return the same splits.
func Split(data Dataset, ratio Ratio, seed int64) (*Splits, error) {
	switch data.(type) {
	case *Sequence, *Mapping:
	default:
		return nil, errors.NotSupportedf("dataset of type %T", data)
	}
	if err := ratio.Validate(); err != nil {
		return nil, errors.Trace(err)
	}

	rng := base.NewRandomGenerator(seed)
	total := data.Len()
	trainSize := int(float64(total) * ratio.Train)
	valSize := int(float64(total) * ratio.Val)

	trainIndices := rng.Sample(0, total, trainSize)
	trainSet := mapset.NewSet(trainIndices...)
	valIndices := rng.Sample(0, total, valSize, trainSet)
	valSet := mapset.NewSet(valIndices...)
	testIndices := lo.Filter(lo.Range(total), func(i int, _ int) bool {
		return !trainSet.Contains(i) && !valSet.Contains(i)
	})

	return &Splits{
		Train: data.SubSet(trainIndices),
		Val:   data.SubSet(valIndices),
		Test:  data.SubSet(testIndices),
		Indices: Indices{
			Train: trainIndices,
			Val:   valIndices,
			Test:  testIndices,
		},
	}, nil
}
