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

	"gonum.org/v1/gonum/mat"
)

// MaxAbsDiff returns the largest absolute element difference between a and b.
// The shapes must match.
func MaxAbsDiff(a, b mat.Matrix) (float64, error) {
	if !sameShape(a, b) {
		return 0, ShapeError("compare", a, b)
	}
	r, c := a.Dims()
	var diff float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			x, y := a.At(i, j), b.At(i, j)
			if x == y || math.IsNaN(x) && math.IsNaN(y) {
				continue
			}
			diff = math.Max(diff, math.Abs(x-y))
		}
	}
	return diff, nil
}

// AllClose reports whether |a - b| <= atol + rtol*|b| holds for every element.
// NaNs compare equal to NaNs so degenerate trajectories can still be matched.
// Shapes are asserted first.
func AllClose(a, b mat.Matrix, atol, rtol float64) (bool, error) {
	if !sameShape(a, b) {
		return false, ShapeError("compare", a, b)
	}
	r, c := a.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			x, y := a.At(i, j), b.At(i, j)
			switch {
			case math.IsNaN(x) || math.IsNaN(y):
				if !(math.IsNaN(x) && math.IsNaN(y)) {
					return false, nil
				}
			case math.IsInf(x, 0) || math.IsInf(y, 0):
				if x != y {
					return false, nil
				}
			case math.Abs(x-y) > atol+rtol*math.Abs(y):
				return false, nil
			}
		}
	}
	return true, nil
}

// HasNonFinite reports whether m contains NaN or Inf.
func HasNonFinite(m mat.Matrix) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := m.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return true
			}
		}
	}
	return false
}

// Ones creates an r x c matrix filled with ones.
func Ones(r, c int) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = 1
	}
	return mat.NewDense(r, c, data)
}

// Identity creates an n x n identity matrix.
func Identity(n int) *mat.Dense {
	dst := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		dst.Set(i, i, 1)
	}
	return dst
}

// IsEmpty reports whether m has no rows and no columns.
func IsEmpty(m mat.Matrix) bool {
	if m == nil {
		return true
	}
	r, c := m.Dims()
	return r == 0 && c == 0
}
