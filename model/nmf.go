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
	"github.com/gorse-io/trinity/algebra"
	"github.com/gorse-io/trinity/common/log"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// GNMF factorizes X ≈ W·H with Lee-Seung multiplicative updates:
//
//	H ← H ⊙ (Wᵀ·X) ⊘ (Wᵀ·W·H)
//	W ← W ⊙ (X·Hᵀ) ⊘ (W·H·Hᵀ)
//
// Zero denominators are not guarded.
type GNMF struct {
	BaseModel
	W algebra.Operand // n × components
	H algebra.Operand // components × d
	// Hyper-parameters
	nComponents int
	nIterations int
}

// NewGNMF creates a non-negative matrix factorization.
func NewGNMF(params Params) *GNMF {
	nmf := new(GNMF)
	nmf.SetParams(params)
	return nmf
}

// SetParams sets hyper-parameters of the factorization.
func (nmf *GNMF) SetParams(params Params) {
	nmf.BaseModel.SetParams(params)
	nmf.nComponents = nmf.Params.GetInt(NComponents, 5)
	nmf.nIterations = nmf.Params.GetInt(NIterations, 20)
}

// Fit runs the fixed number of updates from wInit and hInit.
func (nmf *GNMF) Fit(x, wInit, hInit algebra.Operand) error {
	log.Logger().Debug("fit gaussian nmf",
		zap.Int("n_components", nmf.nComponents), zap.Int("n_iterations", nmf.nIterations))
	w, h := wInit, hInit
	for i := 0; i < nmf.nIterations; i++ {
		wt, err := algebra.Transpose(w)
		if err != nil {
			return errors.Trace(err)
		}
		numerator, err := algebra.LeftMultiply(wt, x)
		if err != nil {
			return errors.Trace(err)
		}
		wh, err := algebra.LeftMultiply(w, h)
		if err != nil {
			return errors.Trace(err)
		}
		denominator, err := algebra.LeftMultiply(wt, wh)
		if err != nil {
			return errors.Trace(err)
		}
		if h, err = update(h, numerator, denominator); err != nil {
			return errors.Trace(err)
		}

		ht, err := algebra.Transpose(h)
		if err != nil {
			return errors.Trace(err)
		}
		if numerator, err = algebra.LeftMultiply(x, ht); err != nil {
			return errors.Trace(err)
		}
		hht, err := algebra.LeftMultiply(h, ht)
		if err != nil {
			return errors.Trace(err)
		}
		if denominator, err = algebra.LeftMultiply(w, hht); err != nil {
			return errors.Trace(err)
		}
		if w, err = update(w, numerator, denominator); err != nil {
			return errors.Trace(err)
		}
	}
	nmf.W, nmf.H = w, h
	return nil
}

// update returns m ⊙ numerator ⊘ denominator.
func update(m, numerator, denominator algebra.Operand) (algebra.Operand, error) {
	ratio, err := algebra.DivElem(numerator, denominator)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return algebra.MulElem(m, ratio)
}
