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

package matrix

import (
	"math"

	"github.com/juju/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Lib implements linear algebra kernels on materialized matrices. Operands are
// either *mat.Dense or *OneHot (or transposed views of them) and are never
// modified; every kernel returns a freshly allocated result.
//
// Lib is the adapter handed to factored engines so they can run the dense
// sub-computations of their rewrites.
type Lib struct{}

// NewLib creates a materialized kernel library.
func NewLib() *Lib {
	return &Lib{}
}

func (lib *Lib) apply(m mat.Matrix, f func(v float64) float64) *mat.Dense {
	var dst mat.Dense
	dst.Apply(func(_, _ int, v float64) float64 { return f(v) }, m)
	return &dst
}

// ScalarAddition adds v to every element.
func (lib *Lib) ScalarAddition(m mat.Matrix, v float64) *mat.Dense {
	return lib.apply(m, func(x float64) float64 { return x + v })
}

// ScalarMultiplication multiplies every element by v.
func (lib *Lib) ScalarMultiplication(m mat.Matrix, v float64) *mat.Dense {
	return lib.apply(m, func(x float64) float64 { return x * v })
}

// ScalarExponentiation raises every element to the power p.
func (lib *Lib) ScalarExponentiation(m mat.Matrix, p float64) *mat.Dense {
	if p == 2 {
		return lib.apply(m, func(x float64) float64 { return x * x })
	}
	return lib.apply(m, func(x float64) float64 { return math.Pow(x, p) })
}

// Exp computes e^x element-wise.
func (lib *Lib) Exp(m mat.Matrix) *mat.Dense {
	return lib.apply(m, math.Exp)
}

// LeftMatrixMultiplication computes m·o.
func (lib *Lib) LeftMatrixMultiplication(m, o mat.Matrix) (*mat.Dense, error) {
	_, mc := m.Dims()
	if oRows, _ := o.Dims(); mc != oRows {
		return nil, ShapeError("left matrix multiplication", m, o)
	}
	return lib.mul(m, o), nil
}

// RightMatrixMultiplication computes o·m.
func (lib *Lib) RightMatrixMultiplication(m, o mat.Matrix) (*mat.Dense, error) {
	mr, _ := m.Dims()
	if _, oc := o.Dims(); oc != mr {
		return nil, ShapeError("right matrix multiplication", m, o)
	}
	return lib.mul(o, m), nil
}

// CrossProduct computes mᵀ·m.
func (lib *Lib) CrossProduct(m mat.Matrix) *mat.Dense {
	if k, ok := m.(*OneHot); ok {
		counts := k.Counts()
		dst := mat.NewDense(k.cols, k.cols, nil)
		for j, c := range counts {
			dst.Set(j, j, c)
		}
		return dst
	}
	return lib.mul(m.T(), m)
}

// mul dispatches to the sparse kernels when either side is an indicator matrix.
func (lib *Lib) mul(a, b mat.Matrix) *mat.Dense {
	switch a := a.(type) {
	case *OneHot:
		return a.mulLeft(b)
	case mat.Transpose:
		if k, ok := a.Matrix.(*OneHot); ok {
			return k.mulLeftT(b)
		}
	}
	switch b := b.(type) {
	case *OneHot:
		return b.mulRight(a)
	case mat.Transpose:
		if k, ok := b.Matrix.(*OneHot); ok {
			return k.mulRightT(a)
		}
	}
	var dst mat.Dense
	dst.Mul(a, b)
	return &dst
}

// RowSum reduces every row to its sum and returns an r x 1 column vector.
func (lib *Lib) RowSum(m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	dst := mat.NewDense(r, 1, nil)
	switch m := m.(type) {
	case *OneHot:
		for i := 0; i < r; i++ {
			dst.Set(i, 0, 1)
		}
	case *mat.Dense:
		for i := 0; i < r; i++ {
			dst.Set(i, 0, floats.Sum(m.RawRowView(i)))
		}
	default:
		for i := 0; i < r; i++ {
			var sum float64
			for j := 0; j < c; j++ {
				sum += m.At(i, j)
			}
			dst.Set(i, 0, sum)
		}
	}
	return dst
}

// ColumnSum reduces every column to its sum and returns a 1 x c row vector.
func (lib *Lib) ColumnSum(m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	switch m := m.(type) {
	case *OneHot:
		return mat.NewDense(1, c, m.Counts())
	case *mat.Dense:
		sums := make([]float64, c)
		for i := 0; i < r; i++ {
			floats.Add(sums, m.RawRowView(i))
		}
		return mat.NewDense(1, c, sums)
	default:
		sums := make([]float64, c)
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				sums[j] += m.At(i, j)
			}
		}
		return mat.NewDense(1, c, sums)
	}
}

// ElementWiseSum returns the sum of all elements.
func (lib *Lib) ElementWiseSum(m mat.Matrix) float64 {
	if k, ok := m.(*OneHot); ok {
		return float64(k.NNZ())
	}
	return mat.Sum(m)
}

// RowWiseAppend stacks o below m.
func (lib *Lib) RowWiseAppend(m, o mat.Matrix) (*mat.Dense, error) {
	_, mc := m.Dims()
	if _, oc := o.Dims(); mc != oc {
		return nil, ShapeError("row-wise append", m, o)
	}
	var dst mat.Dense
	dst.Stack(m, o)
	return &dst, nil
}

// ColumnWiseAppend appends the columns of o to the right of m.
func (lib *Lib) ColumnWiseAppend(m, o mat.Matrix) (*mat.Dense, error) {
	mr, _ := m.Dims()
	if oRows, _ := o.Dims(); mr != oRows {
		return nil, ShapeError("column-wise append", m, o)
	}
	var dst mat.Dense
	dst.Augment(m, o)
	return &dst, nil
}

// MatrixAddition adds two matrices of equal shape.
func (lib *Lib) MatrixAddition(m, o mat.Matrix) (*mat.Dense, error) {
	if !sameShape(m, o) {
		return nil, ShapeError("matrix addition", m, o)
	}
	var dst mat.Dense
	dst.Add(m, o)
	return &dst, nil
}

// MatrixSubtraction computes m - o element-wise.
func (lib *Lib) MatrixSubtraction(m, o mat.Matrix) (*mat.Dense, error) {
	if !sameShape(m, o) {
		return nil, ShapeError("matrix subtraction", m, o)
	}
	var dst mat.Dense
	dst.Sub(m, o)
	return &dst, nil
}

// ElementWiseMultiplication computes the Hadamard product of m and o.
func (lib *Lib) ElementWiseMultiplication(m, o mat.Matrix) (*mat.Dense, error) {
	if !sameShape(m, o) {
		return nil, ShapeError("element-wise multiplication", m, o)
	}
	var dst mat.Dense
	dst.MulElem(m, o)
	return &dst, nil
}

// ElementWiseDivision computes m ⊘ o. Zero denominators follow IEEE 754 and
// produce Inf or NaN.
func (lib *Lib) ElementWiseDivision(m, o mat.Matrix) (*mat.Dense, error) {
	if !sameShape(m, o) {
		return nil, ShapeError("element-wise division", m, o)
	}
	var dst mat.Dense
	dst.DivElem(m, o)
	return &dst, nil
}

// RowMin returns an r x 1 column holding the minimum of every row.
func (lib *Lib) RowMin(m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	dst := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		minimum := math.Inf(1)
		for j := 0; j < c; j++ {
			minimum = math.Min(minimum, m.At(i, j))
		}
		dst.Set(i, 0, minimum)
	}
	return dst
}

// EqualRowMin returns a 0/1 matrix marking every element equal to the minimum
// of its row. Ties mark every tied column.
func (lib *Lib) EqualRowMin(m mat.Matrix) *mat.Dense {
	minimums := lib.RowMin(m)
	var dst mat.Dense
	dst.Apply(func(i, _ int, v float64) float64 {
		if v == minimums.At(i, 0) {
			return 1
		}
		return 0
	}, m)
	return &dst
}

// Transpose returns the transpose of m as a view.
func (lib *Lib) Transpose(m mat.Matrix) mat.Matrix {
	if t, ok := m.(mat.Transpose); ok {
		return t.Matrix
	}
	return m.T()
}

// Splice copies rows [rowBeg, rowEnd) and columns [colBeg, colEnd) of m.
func (lib *Lib) Splice(m mat.Matrix, rowBeg, rowEnd, colBeg, colEnd int) (*mat.Dense, error) {
	r, c := m.Dims()
	if rowBeg < 0 || rowEnd > r || rowBeg > rowEnd || colBeg < 0 || colEnd > c || colBeg > colEnd {
		return nil, errors.Annotatef(ErrShapeMismatch, "splice [%d:%d, %d:%d] of %dx%d",
			rowBeg, rowEnd, colBeg, colEnd, r, c)
	}
	if rowEnd == rowBeg || colEnd == colBeg {
		return &mat.Dense{}, nil
	}
	dst := mat.NewDense(rowEnd-rowBeg, colEnd-colBeg, nil)
	if d, ok := m.(*mat.Dense); ok {
		dst.Copy(d.Slice(rowBeg, rowEnd, colBeg, colEnd))
		return dst, nil
	}
	for i := rowBeg; i < rowEnd; i++ {
		for j := colBeg; j < colEnd; j++ {
			dst.Set(i-rowBeg, j-colBeg, m.At(i, j))
		}
	}
	return dst, nil
}

// NumRows returns the number of rows of m.
func (lib *Lib) NumRows(m mat.Matrix) int {
	r, _ := m.Dims()
	return r
}

// NumCols returns the number of columns of m.
func (lib *Lib) NumCols(m mat.Matrix) int {
	_, c := m.Dims()
	return c
}

func sameShape(a, b mat.Matrix) bool {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	return ar == br && ac == bc
}
