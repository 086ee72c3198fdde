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
	"github.com/gorse-io/trinity/matrix"
	"github.com/juju/errors"
	"gonum.org/v1/gonum/mat"
)

// Axis selects the direction of Concat.
type Axis int

const (
	Rows    Axis = iota // stack below
	Columns             // append to the right
)

func binary(op string, x, y Operand, f func(lib *matrix.Lib, a, b mat.Matrix) (*mat.Dense, error)) (Operand, error) {
	a, ok := x.(*Materialized)
	if !ok {
		return nil, unsupported(op, x)
	}
	b, ok := y.(*Materialized)
	if !ok {
		return nil, unsupported(op, y)
	}
	m, err := f(a.lib, a.m, b.m)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Materialized{lib: a.lib, m: m}, nil
}

func Add(x, y Operand) (Operand, error) {
	return binary("matrix addition", x, y, (*matrix.Lib).MatrixAddition)
}

func Sub(x, y Operand) (Operand, error) {
	return binary("matrix subtraction", x, y, (*matrix.Lib).MatrixSubtraction)
}

func MulElem(x, y Operand) (Operand, error) {
	return binary("element-wise multiplication", x, y, (*matrix.Lib).ElementWiseMultiplication)
}

func DivElem(x, y Operand) (Operand, error) {
	return binary("element-wise division", x, y, (*matrix.Lib).ElementWiseDivision)
}

// Concat joins x and y along axis.
func Concat(x, y Operand, axis Axis) (Operand, error) {
	if axis == Rows {
		return binary("row-wise append", x, y, (*matrix.Lib).RowWiseAppend)
	}
	return binary("column-wise append", x, y, (*matrix.Lib).ColumnWiseAppend)
}

// Slice copies rows [r0, r1) and columns [c0, c1).
func Slice(x Operand, r0, r1, c0, c1 int) (Operand, error) {
	m, ok := x.(*Materialized)
	if !ok {
		return nil, unsupported("slice", x)
	}
	s, err := m.lib.Splice(m.m, r0, r1, c0, c1)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Materialized{lib: m.lib, m: s}, nil
}

// RowMin returns the minimum of every row as a column vector.
func RowMin(x Operand) (Operand, error) {
	m, ok := x.(*Materialized)
	if !ok {
		return nil, unsupported("row minimum", x)
	}
	return &Materialized{lib: m.lib, m: m.lib.RowMin(m.m)}, nil
}

// EqualRowMin marks with 1 every element equal to its row minimum.
func EqualRowMin(x Operand) (Operand, error) {
	m, ok := x.(*Materialized)
	if !ok {
		return nil, unsupported("row minimum", x)
	}
	return &Materialized{lib: m.lib, m: m.lib.EqualRowMin(m.m)}, nil
}
