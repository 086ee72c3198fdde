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

// LinearRegression fits w by gradient descent: w ← w − γ·Xᵀ·(X·w − y).
type LinearRegression struct {
	BaseModel
	W algebra.Operand
	// Hyper-parameters
	gamma       float64
	nIterations int
}

// NewLinearRegression creates a linear regression.
func NewLinearRegression(params Params) *LinearRegression {
	lr := new(LinearRegression)
	lr.SetParams(params)
	return lr
}

// SetParams sets hyper-parameters of linear regression.
func (lr *LinearRegression) SetParams(params Params) {
	lr.BaseModel.SetParams(params)
	lr.gamma = lr.Params.GetFloat64(Gamma, 1e-6)
	lr.nIterations = lr.Params.GetInt(NIterations, 20)
}

// Fit runs the fixed number of iterations from wInit.
func (lr *LinearRegression) Fit(x, y, wInit algebra.Operand) error {
	log.Logger().Debug("fit linear regression",
		zap.Float64("gamma", lr.gamma), zap.Int("n_iterations", lr.nIterations))
	xt, err := algebra.Transpose(x)
	if err != nil {
		return errors.Trace(err)
	}
	w := wInit
	for i := 0; i < lr.nIterations; i++ {
		xw, err := algebra.LeftMultiply(x, w)
		if err != nil {
			return errors.Trace(err)
		}
		residual, err := algebra.Sub(xw, y)
		if err != nil {
			return errors.Trace(err)
		}
		if w, err = descend(w, xt, residual, lr.gamma); err != nil {
			return errors.Trace(err)
		}
	}
	lr.W = w
	return nil
}

// LogisticRegression fits w by gradient descent: w ← w − γ·Xᵀ·(y ⊘ (1 + exp(X·w))).
type LogisticRegression struct {
	BaseModel
	W algebra.Operand
	// Hyper-parameters
	gamma       float64
	nIterations int
}

// NewLogisticRegression creates a logistic regression.
func NewLogisticRegression(params Params) *LogisticRegression {
	lr := new(LogisticRegression)
	lr.SetParams(params)
	return lr
}

// SetParams sets hyper-parameters of logistic regression.
func (lr *LogisticRegression) SetParams(params Params) {
	lr.BaseModel.SetParams(params)
	lr.gamma = lr.Params.GetFloat64(Gamma, 1e-6)
	lr.nIterations = lr.Params.GetInt(NIterations, 20)
}

// Fit runs the fixed number of iterations from wInit.
func (lr *LogisticRegression) Fit(x, y, wInit algebra.Operand) error {
	log.Logger().Debug("fit logistic regression",
		zap.Float64("gamma", lr.gamma), zap.Int("n_iterations", lr.nIterations))
	xt, err := algebra.Transpose(x)
	if err != nil {
		return errors.Trace(err)
	}
	w := wInit
	for i := 0; i < lr.nIterations; i++ {
		xw, err := algebra.LeftMultiply(x, w)
		if err != nil {
			return errors.Trace(err)
		}
		exp, err := algebra.Exp(xw)
		if err != nil {
			return errors.Trace(err)
		}
		denominator, err := algebra.ScalarAdd(exp, 1)
		if err != nil {
			return errors.Trace(err)
		}
		ratio, err := algebra.DivElem(y, denominator)
		if err != nil {
			return errors.Trace(err)
		}
		if w, err = descend(w, xt, ratio, lr.gamma); err != nil {
			return errors.Trace(err)
		}
	}
	lr.W = w
	return nil
}

// descend returns w − γ·Xᵀ·r.
func descend(w, xt, r algebra.Operand, gamma float64) (algebra.Operand, error) {
	gradient, err := algebra.LeftMultiply(xt, r)
	if err != nil {
		return nil, errors.Trace(err)
	}
	step, err := algebra.ScalarMul(gradient, gamma)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return algebra.Sub(w, step)
}
