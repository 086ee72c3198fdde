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

package algebra

import (
	"testing"

	"github.com/gorse-io/trinity/base"
	"github.com/gorse-io/trinity/engine"
	"github.com/gorse-io/trinity/engine/morpheus"
	"github.com/gorse-io/trinity/matrix"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

const tolerance = 1e-9

// newPair builds the same logical matrix in both representations.
func newPair(t *testing.T, nR, dS int) (*Materialized, *Normalized) {
	rng := base.NewRandomGenerator(1)
	backend := NewBackend(morpheus.New())
	s := rng.UniformMatrix(nR, dS, 0, 1)
	k := rng.OneHot(nR, nR)
	r := rng.UniformMatrix(nR, dS, 0, 1)
	var kr, t2 mat.Dense
	kr.Mul(k, r)
	t2.Augment(s, &kr)
	n, err := backend.Normalize(s, []mat.Matrix{k}, []mat.Matrix{r})
	require.NoError(t, err)
	return backend.Wrap(&t2), n
}

func assertEquivalent(t *testing.T, expected, actual Operand) {
	a, err := Materialize(expected)
	require.NoError(t, err)
	b, err := Materialize(actual)
	require.NoError(t, err)
	ok, err := matrix.AllClose(b, a, tolerance, tolerance)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLeftMultiply(t *testing.T) {
	m, n := newPair(t, 100, 20)
	rng := base.NewRandomGenerator(2)
	_, c := m.Dims()
	x := NewBackend(nil).Wrap(rng.UniformMatrix(c, 2, 0, 1))
	expected, err := LeftMultiply(m, x)
	require.NoError(t, err)
	actual, err := LeftMultiply(n, x)
	require.NoError(t, err)
	r, cols := actual.Dims()
	assert.Equal(t, 100, r)
	assert.Equal(t, 2, cols)
	assertEquivalent(t, expected, actual)
}

func TestRightMultiply(t *testing.T) {
	m, n := newPair(t, 30, 4)
	rng := base.NewRandomGenerator(2)
	r, _ := m.Dims()
	x := NewBackend(nil).Wrap(rng.UniformMatrix(2, r, 0, 1))
	expected, err := RightMultiply(m, x)
	require.NoError(t, err)
	actual, err := RightMultiply(n, x)
	require.NoError(t, err)
	assertEquivalent(t, expected, actual)
	// o·x is x·o with the operands swapped
	swapped, err := LeftMultiply(x, n)
	require.NoError(t, err)
	assertEquivalent(t, actual, swapped)
	_, err = LeftMultiply(n, n)
	assert.True(t, errors.Is(err, matrix.ErrUnsupportedOperation))
	_, err = LeftMultiply(n, x)
	assert.True(t, errors.Is(err, matrix.ErrShapeMismatch))
}

func TestScalarOps(t *testing.T) {
	m, n := newPair(t, 30, 4)
	for _, op := range []func(Operand) (Operand, error){
		func(x Operand) (Operand, error) { return ScalarAdd(x, 42) },
		func(x Operand) (Operand, error) { return ScalarMul(x, 42) },
		func(x Operand) (Operand, error) { return ScalarPow(x, 2) },
	} {
		expected, err := op(m)
		require.NoError(t, err)
		actual, err := op(n)
		require.NoError(t, err)
		assert.Equal(t, KindNormalized, actual.Kind())
		assertEquivalent(t, expected, actual)
	}
	_, err := Exp(n)
	assert.True(t, errors.Is(err, matrix.ErrUnsupportedOperation))
}

func TestReductions(t *testing.T) {
	m, n := newPair(t, 30, 4)
	mt, err := Transpose(m)
	require.NoError(t, err)
	nt, err := Transpose(n)
	require.NoError(t, err)
	for _, pair := range [][2]Operand{{m, n}, {mt, nt}} {
		for _, op := range []func(Operand) (Operand, error){RowSum, ColSum, CrossProduct} {
			expected, err := op(pair[0])
			require.NoError(t, err)
			actual, err := op(pair[1])
			require.NoError(t, err)
			assert.Equal(t, KindMaterialized, actual.Kind())
			assertEquivalent(t, expected, actual)
		}
		expected, err := Sum(pair[0])
		require.NoError(t, err)
		actual, err := Sum(pair[1])
		require.NoError(t, err)
		assert.InDelta(t, expected, actual, tolerance*expected)
	}
}

func TestTransposeInvolution(t *testing.T) {
	m, n := newPair(t, 30, 4)
	for _, x := range []Operand{m, n} {
		xt, err := Transpose(x)
		require.NoError(t, err)
		r, c := xt.Dims()
		assert.Equal(t, 8, r)
		assert.Equal(t, 30, c)
		xtt, err := Transpose(xt)
		require.NoError(t, err)
		assertEquivalent(t, x, xtt)
	}
}

func TestRowSumOfOnes(t *testing.T) {
	x := NewBackend(nil).Wrap(matrix.Ones(50, 10))
	rowSum, err := RowSum(x)
	require.NoError(t, err)
	r, c := rowSum.Dims()
	assert.Equal(t, 50, r)
	assert.Equal(t, 1, c)
	for i := 0; i < r; i++ {
		assert.Equal(t, 10.0, rowSum.(*Materialized).Matrix().At(i, 0))
	}
}

func TestMaterializedOnly(t *testing.T) {
	m, n := newPair(t, 10, 2)
	_, err := Add(m, n)
	assert.True(t, errors.Is(err, matrix.ErrUnsupportedOperation))
	_, err = Slice(n, 0, 1, 0, 1)
	assert.True(t, errors.Is(err, matrix.ErrUnsupportedOperation))
	_, err = EqualRowMin(n)
	assert.True(t, errors.Is(err, matrix.ErrUnsupportedOperation))
	s, err := Slice(m, 0, 2, 0, 3)
	require.NoError(t, err)
	joined, err := Concat(s, s, Rows)
	require.NoError(t, err)
	r, c := joined.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 3, c)
	_, err = Concat(s, m, Columns)
	assert.True(t, errors.Is(err, matrix.ErrShapeMismatch))
}

type panicEngine struct{}

func (panicEngine) Name() string { return "panic" }

func (panicEngine) Build(mat.Matrix, []mat.Matrix, []mat.Matrix, bool, engine.MatrixLib) (engine.Handle, error) {
	panic("engine crashed")
}

type panicHandle struct {
	engine.Handle
}

func (panicHandle) RowSum() (*mat.Dense, error) {
	panic("engine crashed")
}

func TestEngineUnavailable(t *testing.T) {
	_, err := NewBackend(panicEngine{}).Normalize(mat.NewDense(1, 1, nil), nil, nil)
	assert.True(t, errors.Is(err, matrix.ErrEngineUnavailable))
	_, err = NewBackend(nil).Normalize(mat.NewDense(1, 1, nil), nil, nil)
	assert.True(t, errors.Is(err, matrix.ErrEngineUnavailable))

	_, n := newPair(t, 10, 2)
	broken := n.derive(panicHandle{n.morph})
	_, err = RowSum(broken)
	assert.True(t, errors.Is(err, matrix.ErrEngineUnavailable))
}
