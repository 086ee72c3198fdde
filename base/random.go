// Copyright 2026 gorse Project Authors
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
	"math/rand"
	"time"

	"github.com/gorse-io/trinity/matrix"
	"gonum.org/v1/gonum/mat"
)

// RandomGenerator is the random generator for synthesized datasets and task operands.
type RandomGenerator struct {
	*rand.Rand
}

// NewRandomGenerator creates a RandomGenerator. A zero seed draws one from the clock.
func NewRandomGenerator(seed int64) RandomGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return RandomGenerator{rand.New(rand.NewSource(seed))}
}

// UniformVector makes a vec filled with uniform random floats.
func (rng RandomGenerator) UniformVector(size int, low, high float64) []float64 {
	ret := make([]float64, size)
	scale := high - low
	for i := 0; i < len(ret); i++ {
		ret[i] = rng.Float64()*scale + low
	}
	return ret
}

// UniformMatrix makes a matrix filled with uniform random floats in [low, high).
func (rng RandomGenerator) UniformMatrix(row, col int, low, high float64) *mat.Dense {
	if row == 0 || col == 0 {
		return &mat.Dense{}
	}
	return mat.NewDense(row, col, rng.UniformVector(row*col, low, high))
}

// OneHot makes a key matrix with exactly one uniformly random nonzero per row.
func (rng RandomGenerator) OneHot(row, col int) *matrix.OneHot {
	indices := make([]int, row)
	for i := range indices {
		indices[i] = rng.Intn(col)
	}
	return matrix.NewOneHot(col, indices)
}
