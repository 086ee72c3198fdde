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
	"github.com/gorse-io/trinity/matrix"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// KMeans runs Lloyd's iterations. Distances are expanded as
// ‖x‖² − 2x·c + ‖c‖² so the data matrix only appears in products.
//
// A point at equal distance to several centers is assigned to all of them, and
// an empty cluster yields NaN coordinates.
type KMeans struct {
	BaseModel
	Centers    algebra.Operand // d × k
	Assignment algebra.Operand // n × k, 0/1
	// Hyper-parameters
	nCenters    int
	nIterations int
}

// NewKMeans creates a k-means clustering.
func NewKMeans(params Params) *KMeans {
	km := new(KMeans)
	km.SetParams(params)
	return km
}

// SetParams sets hyper-parameters of k-means.
func (km *KMeans) SetParams(params Params) {
	km.BaseModel.SetParams(params)
	km.nCenters = km.Params.GetInt(NCenters, 10)
	km.nIterations = km.Params.GetInt(NIterations, 20)
}

// Fit clusters the rows of x starting from the d × k centers.
func (km *KMeans) Fit(x, centers algebra.Operand) error {
	n, d := x.Dims()
	cd, k := centers.Dims()
	if cd != d || k != km.nCenters {
		return errors.Annotatef(matrix.ErrShapeMismatch,
			"%d×%d initial centers for %d columns and %d centers", cd, k, d, km.nCenters)
	}
	log.Logger().Debug("fit k-means",
		zap.Int("n_centers", km.nCenters), zap.Int("n_iterations", km.nIterations))
	allOne := algebra.NewMaterialized(matrix.Ones(n, 1))
	allOneK := algebra.NewMaterialized(matrix.Ones(1, k))
	allOneC := algebra.NewMaterialized(matrix.Ones(d, 1))

	// ‖x‖² broadcast to n × k
	squared, err := algebra.ScalarPow(x, 2)
	if err != nil {
		return errors.Trace(err)
	}
	norms, err := algebra.RowSum(squared)
	if err != nil {
		return errors.Trace(err)
	}
	t2, err := algebra.LeftMultiply(norms, allOneK)
	if err != nil {
		return errors.Trace(err)
	}
	t22, err := algebra.ScalarMul(x, 2)
	if err != nil {
		return errors.Trace(err)
	}
	xt, err := algebra.Transpose(x)
	if err != nil {
		return errors.Trace(err)
	}

	var assignment algebra.Operand
	for i := 0; i < km.nIterations; i++ {
		centerPow, err := algebra.ScalarPow(centers, 2)
		if err != nil {
			return errors.Trace(err)
		}
		centerNorms, err := algebra.ColSum(centerPow)
		if err != nil {
			return errors.Trace(err)
		}
		c2, err := algebra.LeftMultiply(allOne, centerNorms)
		if err != nil {
			return errors.Trace(err)
		}
		xc, err := algebra.LeftMultiply(t22, centers)
		if err != nil {
			return errors.Trace(err)
		}
		dist, err := algebra.Sub(t2, xc)
		if err != nil {
			return errors.Trace(err)
		}
		if dist, err = algebra.Add(dist, c2); err != nil {
			return errors.Trace(err)
		}
		if assignment, err = algebra.EqualRowMin(dist); err != nil {
			return errors.Trace(err)
		}
		counts, err := algebra.ColSum(assignment)
		if err != nil {
			return errors.Trace(err)
		}
		numerator, err := algebra.LeftMultiply(xt, assignment)
		if err != nil {
			return errors.Trace(err)
		}
		denominator, err := algebra.LeftMultiply(allOneC, counts)
		if err != nil {
			return errors.Trace(err)
		}
		if centers, err = algebra.DivElem(numerator, denominator); err != nil {
			return errors.Trace(err)
		}
	}
	km.Centers = centers
	km.Assignment = assignment
	return nil
}
