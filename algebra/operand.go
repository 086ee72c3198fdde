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

// Kind tells the representation behind an Operand.
type Kind int

const (
	KindMaterialized Kind = iota
	KindNormalized
)

func (k Kind) String() string {
	switch k {
	case KindMaterialized:
		return "materialized"
	case KindNormalized:
		return "normalized"
	default:
		return "unknown"
	}
}

// Operand is a matrix-like value. Its only implementations are *Materialized
// and *Normalized.
type Operand interface {
	Kind() Kind
	Dims() (r, c int)
	operand()
}

// Materialized is a fully expanded matrix.
type Materialized struct {
	lib *matrix.Lib
	m   mat.Matrix
}

// NewMaterialized wraps m with its own kernels.
func NewMaterialized(m mat.Matrix) *Materialized {
	return &Materialized{lib: matrix.NewLib(), m: m}
}

func (x *Materialized) Kind() Kind {
	return KindMaterialized
}

func (x *Materialized) Dims() (int, int) {
	return x.m.Dims()
}

// Matrix returns the underlying matrix. Callers must not modify it.
func (x *Materialized) Matrix() mat.Matrix {
	return x.m
}

func (x *Materialized) operand() {}

// Normalized is the factored form S ⊕ (K1·R1 ⊕ K2·R2 ⊕ ...). Only the value
// returned by Backend.Normalize keeps the blocks; derived values hold the
// engine handle alone.
type Normalized struct {
	S     mat.Matrix
	Ks    []mat.Matrix
	Rs    []mat.Matrix
	Empty bool

	lib   *matrix.Lib
	morph engine.Handle
}

func (x *Normalized) Kind() Kind {
	return KindNormalized
}

func (x *Normalized) Dims() (int, int) {
	return x.morph.Dims()
}

func (x *Normalized) operand() {}

func (x *Normalized) derive(h engine.Handle) *Normalized {
	return &Normalized{lib: x.lib, morph: h}
}

// call runs f against the engine, turning an engine crash into ErrEngineUnavailable.
func (x *Normalized) call(op string, f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Annotatef(matrix.ErrEngineUnavailable, "%s: %v", op, r)
		}
	}()
	return f()
}

// Backend creates operands of both representations.
type Backend struct {
	lib    *matrix.Lib
	engine engine.Engine
}

// NewBackend creates a backend whose normalized operands are built by e.
func NewBackend(e engine.Engine) *Backend {
	return &Backend{lib: matrix.NewLib(), engine: e}
}

// Lib returns the materialized kernels handed to the engine.
func (b *Backend) Lib() *matrix.Lib {
	return b.lib
}

// Wrap makes a materialized operand.
func (b *Backend) Wrap(m mat.Matrix) *Materialized {
	return &Materialized{lib: b.lib, m: m}
}

// Normalize builds a normalized operand. A nil or 0×0 base block marks the
// normalized matrix as having no base.
func (b *Backend) Normalize(s mat.Matrix, ks, rs []mat.Matrix) (n *Normalized, err error) {
	if b.engine == nil {
		return nil, errors.Annotate(matrix.ErrEngineUnavailable, "no engine")
	}
	n = &Normalized{S: s, Ks: ks, Rs: rs, Empty: matrix.IsEmpty(s), lib: b.lib}
	err = n.call("build", func() error {
		var err error
		n.morph, err = b.engine.Build(s, ks, rs, n.Empty, b.lib)
		return err
	})
	if err != nil {
		if errors.Is(err, matrix.ErrEngineUnavailable) {
			return nil, errors.Trace(err)
		}
		return nil, errors.Annotatef(err, "build %s normalized matrix", b.engine.Name())
	}
	return n, nil
}
