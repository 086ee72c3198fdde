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
	"github.com/gorse-io/trinity/engine"
	"github.com/gorse-io/trinity/matrix"
	"github.com/juju/errors"
	"gonum.org/v1/gonum/mat"
)

func unsupported(op string, x Operand) error {
	if x == nil {
		return matrix.UnsupportedError(op, "nil")
	}
	return matrix.UnsupportedError(op, x.Kind().String())
}

// scalarOp applies a factored-form-preserving operator to either representation.
func scalarOp(op string, x Operand, dense func(*matrix.Lib, mat.Matrix) *mat.Dense,
	factored func(engine.Handle) engine.Handle) (Operand, error) {
	switch x := x.(type) {
	case *Materialized:
		return &Materialized{lib: x.lib, m: dense(x.lib, x.m)}, nil
	case *Normalized:
		var h engine.Handle
		if err := x.call(op, func() error {
			h = factored(x.morph)
			return nil
		}); err != nil {
			return nil, errors.Trace(err)
		}
		return x.derive(h), nil
	default:
		return nil, unsupported(op, x)
	}
}

// ScalarAdd adds v to every element.
func ScalarAdd(x Operand, v float64) (Operand, error) {
	return scalarOp("scalar addition", x,
		func(lib *matrix.Lib, m mat.Matrix) *mat.Dense { return lib.ScalarAddition(m, v) },
		func(h engine.Handle) engine.Handle { return h.ScalarAddition(v) })
}

// ScalarMul multiplies every element by v.
func ScalarMul(x Operand, v float64) (Operand, error) {
	return scalarOp("scalar multiplication", x,
		func(lib *matrix.Lib, m mat.Matrix) *mat.Dense { return lib.ScalarMultiplication(m, v) },
		func(h engine.Handle) engine.Handle { return h.ScalarMultiplication(v) })
}

// ScalarPow raises every element to the power p.
func ScalarPow(x Operand, p float64) (Operand, error) {
	return scalarOp("scalar exponentiation", x,
		func(lib *matrix.Lib, m mat.Matrix) *mat.Dense { return lib.ScalarExponentiation(m, p) },
		func(h engine.Handle) engine.Handle { return h.ScalarExponentiation(p) })
}

// Exp computes e^x element-wise. Only materialized operands support it.
func Exp(x Operand) (Operand, error) {
	m, ok := x.(*Materialized)
	if !ok {
		return nil, unsupported("exp", x)
	}
	return &Materialized{lib: m.lib, m: m.lib.Exp(m.m)}, nil
}

// Transpose returns xᵀ.
func Transpose(x Operand) (Operand, error) {
	switch x := x.(type) {
	case *Materialized:
		return &Materialized{lib: x.lib, m: x.lib.Transpose(x.m)}, nil
	case *Normalized:
		var h engine.Handle
		if err := x.call("transpose", func() error {
			h = x.morph.Transpose()
			return nil
		}); err != nil {
			return nil, errors.Trace(err)
		}
		return x.derive(h), nil
	default:
		return nil, unsupported("transpose", x)
	}
}

// LeftMultiply computes x·o.
func LeftMultiply(x, o Operand) (Operand, error) {
	switch x := x.(type) {
	case *Materialized:
		switch o := o.(type) {
		case *Materialized:
			m, err := x.lib.LeftMatrixMultiplication(x.m, o.m)
			if err != nil {
				return nil, errors.Trace(err)
			}
			return &Materialized{lib: x.lib, m: m}, nil
		case *Normalized:
			// x·N is N multiplied from the right
			return o.product("right matrix multiplication", func(h engine.Handle) (*mat.Dense, error) {
				return h.RightMatrixMultiplication(x.m)
			})
		}
	case *Normalized:
		if o, ok := o.(*Materialized); ok {
			return x.product("left matrix multiplication", func(h engine.Handle) (*mat.Dense, error) {
				return h.LeftMatrixMultiplication(o.m)
			})
		}
		return nil, errors.Annotatef(matrix.ErrUnsupportedOperation,
			"left matrix multiplication of normalized by %v operand", kindOf(o))
	}
	return nil, unsupported("left matrix multiplication", x)
}

// RightMultiply computes o·x.
func RightMultiply(x, o Operand) (Operand, error) {
	return LeftMultiply(o, x)
}

// CrossProduct computes xᵀ·x.
func CrossProduct(x Operand) (Operand, error) {
	switch x := x.(type) {
	case *Materialized:
		return &Materialized{lib: x.lib, m: x.lib.CrossProduct(x.m)}, nil
	case *Normalized:
		return x.product("cross product", func(h engine.Handle) (*mat.Dense, error) {
			return h.CrossProduct()
		})
	default:
		return nil, unsupported("cross product", x)
	}
}

// RowSum reduces every row, returning a column vector.
func RowSum(x Operand) (Operand, error) {
	switch x := x.(type) {
	case *Materialized:
		return &Materialized{lib: x.lib, m: x.lib.RowSum(x.m)}, nil
	case *Normalized:
		return x.product("row sum", func(h engine.Handle) (*mat.Dense, error) {
			return h.RowSum()
		})
	default:
		return nil, unsupported("row sum", x)
	}
}

// ColSum reduces every column, returning a row vector.
func ColSum(x Operand) (Operand, error) {
	switch x := x.(type) {
	case *Materialized:
		return &Materialized{lib: x.lib, m: x.lib.ColumnSum(x.m)}, nil
	case *Normalized:
		return x.product("column sum", func(h engine.Handle) (*mat.Dense, error) {
			return h.ColumnSum()
		})
	default:
		return nil, unsupported("column sum", x)
	}
}

// Sum adds up every element.
func Sum(x Operand) (float64, error) {
	switch x := x.(type) {
	case *Materialized:
		return x.lib.ElementWiseSum(x.m), nil
	case *Normalized:
		var sum float64
		err := x.call("element-wise sum", func() error {
			var err error
			sum, err = x.morph.ElementWiseSum()
			return err
		})
		return sum, errors.Trace(err)
	default:
		return 0, unsupported("element-wise sum", x)
	}
}

// product runs an engine operator whose result is dense.
func (x *Normalized) product(op string, f func(h engine.Handle) (*mat.Dense, error)) (Operand, error) {
	var m *mat.Dense
	if err := x.call(op, func() error {
		var err error
		m, err = f(x.morph)
		return err
	}); err != nil {
		return nil, errors.Trace(err)
	}
	return &Materialized{lib: x.lib, m: m}, nil
}

// Materialize expands x into a dense matrix. Normalized operands are expanded
// by multiplying with the identity.
func Materialize(x Operand) (*mat.Dense, error) {
	switch x := x.(type) {
	case *Materialized:
		return mat.DenseCopyOf(x.m), nil
	case *Normalized:
		_, c := x.Dims()
		o, err := x.product("materialize", func(h engine.Handle) (*mat.Dense, error) {
			return h.LeftMatrixMultiplication(matrix.Identity(c))
		})
		if err != nil {
			return nil, errors.Trace(err)
		}
		return o.(*Materialized).m.(*mat.Dense), nil
	default:
		return nil, unsupported("materialize", x)
	}
}

func kindOf(x Operand) string {
	if x == nil {
		return "nil"
	}
	return x.Kind().String()
}
