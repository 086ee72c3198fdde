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

// Package morpheus implements the factorized rewrite rules for a normalized matrix
// T = [S | K1·R1 | K2·R2 | ...] where every K is a one-hot key matrix.
package morpheus

import (
	"github.com/gorse-io/trinity/engine"
	"github.com/gorse-io/trinity/matrix"
	"github.com/juju/errors"
	"gonum.org/v1/gonum/mat"
)

// Name is the registry name of this engine.
const Name = "morpheus"

func init() {
	engine.Register(Name, func() (engine.Engine, error) {
		return New(), nil
	})
}

type Engine struct{}

func New() *Engine {
	return &Engine{}
}

func (e *Engine) Name() string {
	return Name
}

// Build validates the blocks and returns a handle over them. Keys given as dense
// 0/1 matrices are converted to one-hot form.
func (e *Engine) Build(s mat.Matrix, ks, rs []mat.Matrix, emptyBase bool, lib engine.MatrixLib) (engine.Handle, error) {
	if lib == nil {
		return nil, errors.NotValidf("nil matrix lib")
	}
	if len(ks) != len(rs) {
		return nil, errors.NotValidf("%d key matrices with %d value matrices", len(ks), len(rs))
	}
	if emptyBase && len(ks) == 0 {
		return nil, errors.NotValidf("normalized matrix without base nor key/value pairs")
	}
	if !emptyBase && s == nil {
		return nil, errors.NotValidf("nil base block")
	}
	n := &Normalized{lib: lib}
	if !emptyBase {
		n.s = s
		n.rows, n.cols = s.Dims()
	}
	n.ks = make([]*matrix.OneHot, len(ks))
	n.rs = make([]mat.Matrix, len(rs))
	for i := range ks {
		k, ok := matrix.AsOneHot(ks[i])
		if !ok {
			return nil, errors.NotValidf("key matrix %d is not one-hot", i)
		}
		kr, kc := k.Dims()
		if i == 0 && emptyBase {
			n.rows = kr
		}
		if kr != n.rows {
			return nil, errors.Annotatef(matrix.ErrShapeMismatch, "key matrix %d has %d rows, want %d", i, kr, n.rows)
		}
		if rr := lib.NumRows(rs[i]); rr != kc {
			return nil, errors.Annotatef(matrix.ErrShapeMismatch, "key matrix %d has %d columns but value matrix has %d rows", i, kc, rr)
		}
		n.ks[i] = k
		n.rs[i] = rs[i]
		n.cols += lib.NumCols(rs[i])
	}
	return n, nil
}

// Normalized is the handle returned by Build. It is immutable.
type Normalized struct {
	lib   engine.MatrixLib
	s     mat.Matrix
	ks    []*matrix.OneHot
	rs    []mat.Matrix
	rows  int
	cols  int
	trans bool
}

func (n *Normalized) Dims() (int, int) {
	if n.trans {
		return n.cols, n.rows
	}
	return n.rows, n.cols
}

func (n *Normalized) Transpose() engine.Handle {
	t := *n
	t.trans = !n.trans
	return &t
}

// apply maps f over the base block and every value block: f(K·R) = K·f(R).
func (n *Normalized) apply(f func(m mat.Matrix) *mat.Dense) *Normalized {
	t := *n
	if n.s != nil {
		t.s = f(n.s)
	}
	t.rs = make([]mat.Matrix, len(n.rs))
	for i, r := range n.rs {
		t.rs[i] = f(r)
	}
	return &t
}

func (n *Normalized) ScalarAddition(v float64) engine.Handle {
	return n.apply(func(m mat.Matrix) *mat.Dense { return n.lib.ScalarAddition(m, v) })
}

func (n *Normalized) ScalarMultiplication(v float64) engine.Handle {
	return n.apply(func(m mat.Matrix) *mat.Dense { return n.lib.ScalarMultiplication(m, v) })
}

func (n *Normalized) ScalarExponentiation(p float64) engine.Handle {
	return n.apply(func(m mat.Matrix) *mat.Dense { return n.lib.ScalarExponentiation(m, p) })
}

func (n *Normalized) LeftMatrixMultiplication(o mat.Matrix) (*mat.Dense, error) {
	if _, c := n.Dims(); c != n.lib.NumRows(o) {
		return nil, matrix.ShapeError("left matrix multiplication", n, o)
	}
	if n.trans {
		// Tᵀ·X = (Xᵀ·T)ᵀ
		r, err := n.rmm(n.lib.Transpose(o))
		if err != nil {
			return nil, errors.Trace(err)
		}
		return mat.DenseCopyOf(n.lib.Transpose(r)), nil
	}
	return n.lmm(o)
}

func (n *Normalized) RightMatrixMultiplication(o mat.Matrix) (*mat.Dense, error) {
	if r, _ := n.Dims(); r != n.lib.NumCols(o) {
		return nil, matrix.ShapeError("right matrix multiplication", n, o)
	}
	if n.trans {
		// X·Tᵀ = (T·Xᵀ)ᵀ
		r, err := n.lmm(n.lib.Transpose(o))
		if err != nil {
			return nil, errors.Trace(err)
		}
		return mat.DenseCopyOf(n.lib.Transpose(r)), nil
	}
	return n.rmm(o)
}

// At materializes a single element. It exists so a handle satisfies mat.Matrix
// for error reporting and tests; operators never call it.
func (n *Normalized) At(i, j int) float64 {
	if n.trans {
		i, j = j, i
	}
	if n.s != nil {
		_, sc := n.s.Dims()
		if j < sc {
			return n.s.At(i, j)
		}
		j -= sc
	}
	for b, r := range n.rs {
		rc := n.lib.NumCols(r)
		if j < rc {
			return r.At(n.ks[b].Index(i), j)
		}
		j -= rc
	}
	panic(mat.ErrIndexOutOfRange)
}

func (n *Normalized) T() mat.Matrix {
	return mat.Transpose{Matrix: n}
}

// lmm computes T·X = S·X[0:dS] + Σ Ki·(Ri·X[offset_i:offset_i+dRi]).
func (n *Normalized) lmm(x mat.Matrix) (*mat.Dense, error) {
	xc := n.lib.NumCols(x)
	result := mat.NewDense(n.rows, xc, nil)
	offset := 0
	if n.s != nil {
		sc := n.lib.NumCols(n.s)
		part, err := n.lib.Splice(x, 0, sc, 0, xc)
		if err != nil {
			return nil, errors.Trace(err)
		}
		if result, err = n.lib.LeftMatrixMultiplication(n.s, part); err != nil {
			return nil, errors.Trace(err)
		}
		offset = sc
	}
	for i, r := range n.rs {
		rc := n.lib.NumCols(r)
		part, err := n.lib.Splice(x, offset, offset+rc, 0, xc)
		if err != nil {
			return nil, errors.Trace(err)
		}
		rx, err := n.lib.LeftMatrixMultiplication(r, part)
		if err != nil {
			return nil, errors.Trace(err)
		}
		krx, err := n.lib.LeftMatrixMultiplication(n.ks[i], rx)
		if err != nil {
			return nil, errors.Trace(err)
		}
		if result, err = n.lib.MatrixAddition(result, krx); err != nil {
			return nil, errors.Trace(err)
		}
		offset += rc
	}
	return result, nil
}

// rmm computes X·T = [X·S | (X·K1)·R1 | ...].
func (n *Normalized) rmm(x mat.Matrix) (*mat.Dense, error) {
	var result *mat.Dense
	if n.s != nil {
		xs, err := n.lib.LeftMatrixMultiplication(x, n.s)
		if err != nil {
			return nil, errors.Trace(err)
		}
		result = xs
	}
	for i, r := range n.rs {
		xk, err := n.lib.LeftMatrixMultiplication(x, n.ks[i])
		if err != nil {
			return nil, errors.Trace(err)
		}
		xkr, err := n.lib.LeftMatrixMultiplication(xk, r)
		if err != nil {
			return nil, errors.Trace(err)
		}
		if result == nil {
			result = xkr
		} else if result, err = n.lib.ColumnWiseAppend(result, xkr); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return result, nil
}

// RowSum returns rowSum(S) + Σ Ki·rowSum(Ri), or colSum(T)ᵀ when transposed.
func (n *Normalized) RowSum() (*mat.Dense, error) {
	if n.trans {
		colSum, err := n.columnSum()
		if err != nil {
			return nil, errors.Trace(err)
		}
		return mat.DenseCopyOf(n.lib.Transpose(colSum)), nil
	}
	return n.rowSum()
}

// ColumnSum returns [colSum(S) | colSum(K1)·R1 | ...], or rowSum(T)ᵀ when transposed.
func (n *Normalized) ColumnSum() (*mat.Dense, error) {
	if n.trans {
		rowSum, err := n.rowSum()
		if err != nil {
			return nil, errors.Trace(err)
		}
		return mat.DenseCopyOf(n.lib.Transpose(rowSum)), nil
	}
	return n.columnSum()
}

func (n *Normalized) rowSum() (*mat.Dense, error) {
	result := mat.NewDense(n.rows, 1, nil)
	if n.s != nil {
		result = n.lib.RowSum(n.s)
	}
	for i, r := range n.rs {
		kr, err := n.lib.LeftMatrixMultiplication(n.ks[i], n.lib.RowSum(r))
		if err != nil {
			return nil, errors.Trace(err)
		}
		if result, err = n.lib.MatrixAddition(result, kr); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return result, nil
}

func (n *Normalized) columnSum() (*mat.Dense, error) {
	var result *mat.Dense
	if n.s != nil {
		result = n.lib.ColumnSum(n.s)
	}
	for i, r := range n.rs {
		cr, err := n.lib.LeftMatrixMultiplication(n.lib.ColumnSum(n.ks[i]), r)
		if err != nil {
			return nil, errors.Trace(err)
		}
		if result == nil {
			result = cr
		} else if result, err = n.lib.ColumnWiseAppend(result, cr); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return result, nil
}

// ElementWiseSum returns sum(S) + Σ colSum(Ki)·rowSum(Ri).
func (n *Normalized) ElementWiseSum() (float64, error) {
	var sum float64
	if n.s != nil {
		sum = n.lib.ElementWiseSum(n.s)
	}
	for i, r := range n.rs {
		cr, err := n.lib.LeftMatrixMultiplication(n.lib.ColumnSum(n.ks[i]), n.lib.RowSum(r))
		if err != nil {
			return 0, errors.Trace(err)
		}
		sum += cr.At(0, 0)
	}
	return sum, nil
}

// CrossProduct returns Tᵀ·T block by block, or T·Tᵀ = S·Sᵀ + Σ Ki·(Ri·Riᵀ)·Kiᵀ
// when transposed.
func (n *Normalized) CrossProduct() (*mat.Dense, error) {
	if n.trans {
		return n.gram()
	}
	return n.crossProduct()
}

func (n *Normalized) gram() (*mat.Dense, error) {
	result := mat.NewDense(n.rows, n.rows, nil)
	if n.s != nil {
		ss, err := n.lib.LeftMatrixMultiplication(n.s, n.lib.Transpose(n.s))
		if err != nil {
			return nil, errors.Trace(err)
		}
		result = ss
	}
	for i, r := range n.rs {
		rr, err := n.lib.LeftMatrixMultiplication(r, n.lib.Transpose(r))
		if err != nil {
			return nil, errors.Trace(err)
		}
		krr, err := n.lib.LeftMatrixMultiplication(n.ks[i], rr)
		if err != nil {
			return nil, errors.Trace(err)
		}
		krrk, err := n.lib.LeftMatrixMultiplication(krr, n.ks[i].T())
		if err != nil {
			return nil, errors.Trace(err)
		}
		if result, err = n.lib.MatrixAddition(result, krrk); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return result, nil
}

func (n *Normalized) crossProduct() (*mat.Dense, error) {
	// blocks[0] is the base block, blocks[i+1] is Ki·Ri
	type block struct {
		offset, width int
	}
	var blocks []block
	offset := 0
	if n.s != nil {
		sc := n.lib.NumCols(n.s)
		blocks = append(blocks, block{offset: 0, width: sc})
		offset = sc
	}
	base := len(blocks)
	for _, r := range n.rs {
		rc := n.lib.NumCols(r)
		blocks = append(blocks, block{offset: offset, width: rc})
		offset += rc
	}

	result := mat.NewDense(n.cols, n.cols, nil)
	put := func(a, b int, m *mat.Dense) {
		ba, bb := blocks[a], blocks[b]
		result.Slice(ba.offset, ba.offset+ba.width, bb.offset, bb.offset+bb.width).(*mat.Dense).Copy(m)
		if a != b {
			result.Slice(bb.offset, bb.offset+bb.width, ba.offset, ba.offset+ba.width).(*mat.Dense).Copy(m.T())
		}
	}

	if n.s != nil {
		put(0, 0, n.lib.CrossProduct(n.s))
		st := n.lib.Transpose(n.s)
		for i, r := range n.rs {
			// Sᵀ·Ki·Ri
			sk, err := n.lib.LeftMatrixMultiplication(st, n.ks[i])
			if err != nil {
				return nil, errors.Trace(err)
			}
			skr, err := n.lib.LeftMatrixMultiplication(sk, r)
			if err != nil {
				return nil, errors.Trace(err)
			}
			put(0, base+i, skr)
		}
	}
	for i, ri := range n.rs {
		rit := n.lib.Transpose(ri)
		for j := i; j < len(n.rs); j++ {
			// Riᵀ·(Kiᵀ·Kj)·Rj, with Kiᵀ·Ki = diag(counts)
			var kk mat.Matrix
			if i == j {
				kk = n.lib.CrossProduct(n.ks[i])
			} else {
				m, err := n.lib.LeftMatrixMultiplication(n.ks[i].T(), n.ks[j])
				if err != nil {
					return nil, errors.Trace(err)
				}
				kk = m
			}
			kkr, err := n.lib.LeftMatrixMultiplication(kk, n.rs[j])
			if err != nil {
				return nil, errors.Trace(err)
			}
			rkkr, err := n.lib.LeftMatrixMultiplication(rit, kkr)
			if err != nil {
				return nil, errors.Trace(err)
			}
			put(base+i, base+j, rkkr)
		}
	}
	return result, nil
}
