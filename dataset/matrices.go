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

package dataset

import (
	"math"

	"github.com/gorse-io/trinity/algebra"
	"github.com/gorse-io/trinity/base"
	"github.com/gorse-io/trinity/common/log"
	"github.com/gorse-io/trinity/matrix"
	"github.com/juju/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Matrices is a dataset in both representations.
type Matrices struct {
	Materialized *algebra.Materialized
	Normalized   *algebra.Normalized
	// Target is a column of ones, one per row.
	Target *algebra.Materialized
}

// Dims returns the shape of the logical matrix.
func (m *Matrices) Dims() (int, int) {
	return m.Materialized.Dims()
}

// NewMatrices materializes S ⊕ K1·R1 ⊕ ... and builds the normalized form of the
// same blocks. An empty s means there is no base block.
func NewMatrices(backend *algebra.Backend, s mat.Matrix, ks, rs []mat.Matrix) (*Matrices, error) {
	if len(ks) != len(rs) {
		return nil, errors.NotValidf("%d key matrices with %d value matrices", len(ks), len(rs))
	}
	lib := backend.Lib()
	var t *mat.Dense
	if !matrix.IsEmpty(s) {
		t = mat.DenseCopyOf(s)
	}
	for i := range ks {
		kr, err := lib.LeftMatrixMultiplication(ks[i], rs[i])
		if err != nil {
			return nil, errors.Annotatef(err, "join key %d", i)
		}
		if t == nil {
			t = kr
		} else if t, err = lib.ColumnWiseAppend(t, kr); err != nil {
			return nil, errors.Annotatef(err, "join key %d", i)
		}
	}
	if t == nil {
		return nil, errors.NotValidf("dataset without blocks")
	}
	normalized, err := backend.Normalize(s, ks, rs)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Matrices{
		Materialized: backend.Wrap(t),
		Normalized:   normalized,
		Target:       backend.Wrap(matrix.Ones(lib.NumRows(t), 1)),
	}, nil
}

// Generator synthesizes datasets with a single foreign-key join.
type Generator struct {
	backend *algebra.Backend
	rng     base.RandomGenerator
}

func NewGenerator(backend *algebra.Backend, rng base.RandomGenerator) *Generator {
	return &Generator{backend: backend, rng: rng}
}

// Generate builds S of round(nR·tr) × dS, a one-hot K of round(nR·tr) × nR and
// R of nR × round(dS·fr), all values uniform in [0, 1).
func (g *Generator) Generate(nR, dS int, tr, fr float64) (*Matrices, error) {
	nS := int(math.Round(float64(nR) * tr))
	dR := int(math.Round(float64(dS) * fr))
	if nR <= 0 || dS <= 0 || nS <= 0 || dR <= 0 {
		return nil, errors.NotValidf("dataset of nR=%d, dS=%d, TR=%v, FR=%v", nR, dS, tr, fr)
	}
	log.Logger().Debug("generate dataset",
		zap.Int("n_s", nS), zap.Int("d_s", dS), zap.Int("n_r", nR), zap.Int("d_r", dR))
	s := g.rng.UniformMatrix(nS, dS, 0, 1)
	k := g.rng.OneHot(nS, nR)
	r := g.rng.UniformMatrix(nR, dR, 0, 1)
	return NewMatrices(g.backend, s, []mat.Matrix{k}, []mat.Matrix{r})
}
