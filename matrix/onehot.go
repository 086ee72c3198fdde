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
	"gonum.org/v1/gonum/mat"
)

// OneHot is a sparse indicator matrix with exactly one 1 per row. Row i has its
// nonzero at column Index(i). It models a foreign key join between a fact table
// (rows) and a dimension table (columns).
type OneHot struct {
	cols    int
	indices []int
}

// NewOneHot creates a len(indices) x cols indicator matrix. It panics with
// mat.ErrIndexOutOfRange if any index is outside [0, cols).
func NewOneHot(cols int, indices []int) *OneHot {
	for _, j := range indices {
		if j < 0 || j >= cols {
			panic(mat.ErrIndexOutOfRange)
		}
	}
	return &OneHot{cols: cols, indices: indices}
}

// AsOneHot converts m to an indicator matrix if every row of m holds exactly one
// entry equal to 1 and zeros elsewhere.
func AsOneHot(m mat.Matrix) (*OneHot, bool) {
	if k, ok := m.(*OneHot); ok {
		return k, true
	}
	r, c := m.Dims()
	indices := make([]int, r)
	for i := 0; i < r; i++ {
		indices[i] = -1
		for j := 0; j < c; j++ {
			switch v := m.At(i, j); {
			case v == 0:
			case v == 1 && indices[i] < 0:
				indices[i] = j
			default:
				return nil, false
			}
		}
		if indices[i] < 0 {
			return nil, false
		}
	}
	return &OneHot{cols: c, indices: indices}, true
}

// Dims returns the number of rows and columns.
func (k *OneHot) Dims() (int, int) {
	return len(k.indices), k.cols
}

// At returns the element at row i, column j.
func (k *OneHot) At(i, j int) float64 {
	if i < 0 || i >= len(k.indices) || j < 0 || j >= k.cols {
		panic(mat.ErrIndexOutOfRange)
	}
	if k.indices[i] == j {
		return 1
	}
	return 0
}

// T returns the implicit transpose.
func (k *OneHot) T() mat.Matrix {
	return mat.Transpose{Matrix: k}
}

// Index returns the column of the nonzero in row i.
func (k *OneHot) Index(i int) int {
	return k.indices[i]
}

// NNZ returns the number of nonzeros.
func (k *OneHot) NNZ() int {
	return len(k.indices)
}

// Counts returns the column sums, i.e. how many rows reference each column.
func (k *OneHot) Counts() []float64 {
	counts := make([]float64, k.cols)
	for _, j := range k.indices {
		counts[j]++
	}
	return counts
}

// mulLeft computes k·b by gathering rows of b.
func (k *OneHot) mulLeft(b mat.Matrix) *mat.Dense {
	_, bc := b.Dims()
	dst := mat.NewDense(len(k.indices), bc, nil)
	if bd, ok := b.(*mat.Dense); ok {
		for i, j := range k.indices {
			dst.SetRow(i, bd.RawRowView(j))
		}
		return dst
	}
	for i, j := range k.indices {
		for c := 0; c < bc; c++ {
			dst.Set(i, c, b.At(j, c))
		}
	}
	return dst
}

// mulLeftT computes kᵀ·b by scatter-adding rows of b.
func (k *OneHot) mulLeftT(b mat.Matrix) *mat.Dense {
	_, bc := b.Dims()
	dst := mat.NewDense(k.cols, bc, nil)
	for i, j := range k.indices {
		row := dst.RawRowView(j)
		for c := range row {
			row[c] += b.At(i, c)
		}
	}
	return dst
}

// mulRight computes a·k by scatter-adding columns of a.
func (k *OneHot) mulRight(a mat.Matrix) *mat.Dense {
	ar, _ := a.Dims()
	dst := mat.NewDense(ar, k.cols, nil)
	for i, j := range k.indices {
		for r := 0; r < ar; r++ {
			dst.Set(r, j, dst.At(r, j)+a.At(r, i))
		}
	}
	return dst
}

// mulRightT computes a·kᵀ by gathering columns of a.
func (k *OneHot) mulRightT(a mat.Matrix) *mat.Dense {
	ar, _ := a.Dims()
	dst := mat.NewDense(ar, len(k.indices), nil)
	for i, j := range k.indices {
		for r := 0; r < ar; r++ {
			dst.Set(r, i, a.At(r, j))
		}
	}
	return dst
}
