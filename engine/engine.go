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

package engine

import (
	"sort"
	"sync"

	"github.com/gorse-io/trinity/matrix"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"
)

// MatrixLib performs dense sub-computations on behalf of an engine.
type MatrixLib interface {
	ScalarAddition(m mat.Matrix, v float64) *mat.Dense
	ScalarMultiplication(m mat.Matrix, v float64) *mat.Dense
	ScalarExponentiation(m mat.Matrix, p float64) *mat.Dense
	LeftMatrixMultiplication(m, o mat.Matrix) (*mat.Dense, error)
	RightMatrixMultiplication(m, o mat.Matrix) (*mat.Dense, error)
	CrossProduct(m mat.Matrix) *mat.Dense
	RowSum(m mat.Matrix) *mat.Dense
	ColumnSum(m mat.Matrix) *mat.Dense
	ElementWiseSum(m mat.Matrix) float64
	RowWiseAppend(m, o mat.Matrix) (*mat.Dense, error)
	ColumnWiseAppend(m, o mat.Matrix) (*mat.Dense, error)
	MatrixAddition(m, o mat.Matrix) (*mat.Dense, error)
	Transpose(m mat.Matrix) mat.Matrix
	Splice(m mat.Matrix, rowBeg, rowEnd, colBeg, colEnd int) (*mat.Dense, error)
	NumRows(m mat.Matrix) int
	NumCols(m mat.Matrix) int
}

var _ MatrixLib = (*matrix.Lib)(nil)

// Handle is a factored matrix. Operators that keep the factored form return a new
// Handle, products and reductions return dense results.
type Handle interface {
	Dims() (r, c int)
	ScalarAddition(v float64) Handle
	ScalarMultiplication(v float64) Handle
	ScalarExponentiation(p float64) Handle
	// LeftMatrixMultiplication computes self·o.
	LeftMatrixMultiplication(o mat.Matrix) (*mat.Dense, error)
	// RightMatrixMultiplication computes o·self.
	RightMatrixMultiplication(o mat.Matrix) (*mat.Dense, error)
	// CrossProduct computes selfᵀ·self.
	CrossProduct() (*mat.Dense, error)
	RowSum() (*mat.Dense, error)
	ColumnSum() (*mat.Dense, error)
	ElementWiseSum() (float64, error)
	Transpose() Handle
}

// Engine builds factored handles from a base block and key/value pairs.
type Engine interface {
	Name() string
	Build(s mat.Matrix, ks, rs []mat.Matrix, emptyBase bool, lib MatrixLib) (Handle, error)
}

// Factory creates an engine instance.
type Factory func() (Engine, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes an engine available by name. It panics if the name is taken.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if factory == nil {
		panic("engine: register nil factory")
	}
	if _, dup := registry[name]; dup {
		panic("engine: register called twice for " + name)
	}
	registry[name] = factory
}

// Open creates the engine registered under name.
func Open(name string) (Engine, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Annotatef(matrix.ErrEngineUnavailable, "unknown engine %q", name)
	}
	e, err := factory()
	if err != nil {
		return nil, errors.Annotatef(matrix.ErrEngineUnavailable, "open engine %q: %v", name, err)
	}
	return e, nil
}

// Names returns the sorted names of registered engines.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := lo.Keys(registry)
	sort.Strings(names)
	return names
}
