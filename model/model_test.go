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

package model

import (
	"math"
	"testing"

	"github.com/gorse-io/trinity/algebra"
	"github.com/gorse-io/trinity/base"
	"github.com/gorse-io/trinity/engine/morpheus"
	"github.com/gorse-io/trinity/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

const tolerance = 1e-9

type fixture struct {
	materialized algebra.Operand
	normalized   algebra.Operand
	target       algebra.Operand
	rng          base.RandomGenerator
}

func newFixture(t *testing.T, nS, nR, dS, dR int) *fixture {
	rng := base.NewRandomGenerator(1)
	backend := algebra.NewBackend(morpheus.New())
	s := rng.UniformMatrix(nS, dS, 0, 1)
	k := rng.OneHot(nS, nR)
	r := rng.UniformMatrix(nR, dR, 0, 1)
	var kr, t2 mat.Dense
	kr.Mul(k, r)
	t2.Augment(s, &kr)
	n, err := backend.Normalize(s, []mat.Matrix{k}, []mat.Matrix{r})
	require.NoError(t, err)
	return &fixture{
		materialized: backend.Wrap(&t2),
		normalized:   n,
		target:       backend.Wrap(matrix.Ones(nS, 1)),
		rng:          rng,
	}
}

func (f *fixture) uniform(r, c int) algebra.Operand {
	return algebra.NewMaterialized(f.rng.UniformMatrix(r, c, 0, 1))
}

func assertClose(t *testing.T, expected, actual algebra.Operand) {
	a, err := algebra.Materialize(expected)
	require.NoError(t, err)
	b, err := algebra.Materialize(actual)
	require.NoError(t, err)
	ok, err := matrix.AllClose(b, a, tolerance, tolerance)
	require.NoError(t, err)
	assert.True(t, ok, "max abs diff too large")
}

func TestLinearRegression(t *testing.T) {
	f := newFixture(t, 60, 20, 4, 3)
	wInit := f.uniform(7, 1)
	params := Params{NIterations: 20, Gamma: 1e-3}
	a := NewLinearRegression(params)
	require.NoError(t, a.Fit(f.materialized, f.target, wInit))
	b := NewLinearRegression(params)
	require.NoError(t, b.Fit(f.normalized, f.target, wInit))
	assertClose(t, a.W, b.W)
	// deterministic
	c := NewLinearRegression(params)
	require.NoError(t, c.Fit(f.materialized, f.target, wInit))
	assert.True(t, mat.Equal(a.W.(*algebra.Materialized).Matrix(), c.W.(*algebra.Materialized).Matrix()))
	// descends
	assert.False(t, mat.Equal(wInit.(*algebra.Materialized).Matrix(), a.W.(*algebra.Materialized).Matrix()))
}

func TestLogisticRegression(t *testing.T) {
	f := newFixture(t, 60, 20, 4, 3)
	wInit := f.uniform(7, 1)
	params := Params{NIterations: 20, Gamma: 1e-6}
	a := NewLogisticRegression(params)
	require.NoError(t, a.Fit(f.materialized, f.target, wInit))
	b := NewLogisticRegression(params)
	require.NoError(t, b.Fit(f.normalized, f.target, wInit))
	assertClose(t, a.W, b.W)
	c := NewLogisticRegression(params)
	require.NoError(t, c.Fit(f.normalized, f.target, wInit))
	assertClose(t, b.W, c.W)
}

func TestKMeans(t *testing.T) {
	f := newFixture(t, 60, 20, 4, 3)
	data, err := algebra.Materialize(f.materialized)
	require.NoError(t, err)
	centers := algebra.NewMaterialized(mat.DenseCopyOf(data.Slice(0, 3, 0, 7).T()))
	params := Params{NIterations: 5, NCenters: 3}

	a := NewKMeans(params)
	require.NoError(t, a.Fit(f.materialized, centers))
	b := NewKMeans(params)
	require.NoError(t, b.Fit(f.normalized, centers))
	assertClose(t, a.Assignment, b.Assignment)
	assertClose(t, a.Centers, b.Centers)

	// every point has at least one center
	rowSum, err := algebra.RowSum(a.Assignment)
	require.NoError(t, err)
	r, _ := rowSum.Dims()
	assert.Equal(t, 60, r)
	for i := 0; i < r; i++ {
		assert.GreaterOrEqual(t, rowSum.(*algebra.Materialized).Matrix().At(i, 0), 1.0)
	}

	// wrong center shape
	assert.Error(t, NewKMeans(Params{NCenters: 4}).Fit(f.materialized, centers))
}

func TestKMeansTies(t *testing.T) {
	// both centers are equally far from the middle point
	x := algebra.NewMaterialized(mat.NewDense(3, 1, []float64{0, 1, 2}))
	centers := algebra.NewMaterialized(mat.NewDense(1, 2, []float64{0, 2}))
	km := NewKMeans(Params{NIterations: 1, NCenters: 2})
	require.NoError(t, km.Fit(x, centers))
	assignment := km.Assignment.(*algebra.Materialized).Matrix()
	assert.Equal(t, []float64{1, 0}, mat.Row(nil, 0, assignment))
	assert.Equal(t, []float64{1, 1}, mat.Row(nil, 1, assignment))
	assert.Equal(t, []float64{0, 1}, mat.Row(nil, 2, assignment))
	c := km.Centers.(*algebra.Materialized).Matrix()
	assert.InDelta(t, 0.5, c.At(0, 0), tolerance)
	assert.InDelta(t, 1.5, c.At(0, 1), tolerance)
}

func TestKMeansEmptyCluster(t *testing.T) {
	x := algebra.NewMaterialized(mat.NewDense(2, 1, []float64{0, 1}))
	centers := algebra.NewMaterialized(mat.NewDense(1, 2, []float64{0, 100}))
	km := NewKMeans(Params{NIterations: 1, NCenters: 2})
	require.NoError(t, km.Fit(x, centers))
	assert.True(t, math.IsNaN(km.Centers.(*algebra.Materialized).Matrix().At(0, 1)))
}

func TestGNMF(t *testing.T) {
	f := newFixture(t, 60, 20, 4, 3)
	wInit := f.uniform(60, 5)
	hInit := f.uniform(5, 7)
	params := Params{NIterations: 10, NComponents: 5}
	a := NewGNMF(params)
	require.NoError(t, a.Fit(f.materialized, wInit, hInit))
	b := NewGNMF(params)
	require.NoError(t, b.Fit(f.normalized, wInit, hInit))
	assertClose(t, a.W, b.W)
	assertClose(t, a.H, b.H)
	for _, m := range []algebra.Operand{a.W, a.H} {
		dense, err := algebra.Materialize(m)
		require.NoError(t, err)
		assert.False(t, matrix.HasNonFinite(dense))
		for _, v := range dense.RawMatrix().Data {
			assert.GreaterOrEqual(t, v, 0.0)
		}
	}
}
