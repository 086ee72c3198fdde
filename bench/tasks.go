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

package bench

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/trinity/algebra"
	"github.com/gorse-io/trinity/base"
	"github.com/gorse-io/trinity/config"
	"github.com/gorse-io/trinity/dataset"
	"github.com/gorse-io/trinity/model"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// Task names.
const (
	ScalarAddition            = "scalarAddition"
	ScalarMultiplication      = "scalarMultiplication"
	LeftMatrixMultiplication  = "leftMatrixMultiplication"
	RightMatrixMultiplication = "rightMatrixMultiplication"
	RowWiseSum                = "rowWiseSum"
	ColumnWiseSum             = "columnWiseSum"
	ElementWiseSum            = "elementWiseSum"
	CrossProduct              = "crossProduct"
	LogisticRegression        = "logisticRegression"
	KMeansClustering          = "kMeansClustering"
	LinearRegression          = "linearRegression"
	GNMFClustering            = "GNMFClustering"
)

// Task selectors.
const (
	SelectAll       = "all"
	SelectMicro     = "micro"
	SelectAlgorithm = "algorithm"
	SelectTest      = "test"
)

// scalar is the operand of scalar tasks.
const scalar = 42

var (
	MicroTasks = []string{
		ScalarAddition, ScalarMultiplication,
		LeftMatrixMultiplication, RightMatrixMultiplication,
		RowWiseSum, ColumnWiseSum, ElementWiseSum, CrossProduct,
	}
	AlgorithmTasks = []string{
		LogisticRegression, KMeansClustering, LinearRegression, GNMFClustering,
	}
	// TestTasks are checked for equality between representations.
	TestTasks = MicroTasks
)

// SelectTasks resolves a selector or a task name into task names.
func SelectTasks(selector string) ([]string, error) {
	switch selector {
	case SelectAll:
		return lo.Flatten([][]string{MicroTasks, AlgorithmTasks}), nil
	case SelectMicro:
		return MicroTasks, nil
	case SelectAlgorithm:
		return AlgorithmTasks, nil
	case SelectTest:
		return TestTasks, nil
	}
	known := mapset.NewSet(MicroTasks...).Union(mapset.NewSet(AlgorithmTasks...))
	if !known.Contains(selector) {
		return nil, errors.NotFoundf("task %q", selector)
	}
	return []string{selector}, nil
}

// Runner executes a task against one operand.
type Runner func(x algebra.Operand) (algebra.Result, error)

// Task is a named runner with its auxiliary operands bound.
type Task struct {
	Name   string
	Runner Runner
	// Transposable tasks are also checked on the transposed operands. Tasks with
	// fixed-shape auxiliary operands are not.
	Transposable bool
}

func matrixRunner(f func(algebra.Operand) (algebra.Operand, error)) Runner {
	return func(x algebra.Operand) (algebra.Result, error) {
		y, err := f(x)
		if err != nil {
			return algebra.Result{}, errors.Trace(err)
		}
		return algebra.MatrixResult(y), nil
	}
}

// BuildTasks binds the named tasks to auxiliary operands drawn for the shape of
// the dataset.
func BuildTasks(names []string, matrices *dataset.Matrices, cfg *config.Config, rng base.RandomGenerator) ([]Task, error) {
	nMat, dMat := matrices.Dims()
	params := model.NewParamsFromConfig(cfg)
	uniform := func(r, c int) algebra.Operand {
		return algebra.NewMaterialized(rng.UniformMatrix(r, c, 0, 1))
	}
	tasks := make([]Task, 0, len(names))
	for _, name := range names {
		task := Task{Name: name}
		switch name {
		case ScalarAddition:
			task.Transposable = true
			task.Runner = matrixRunner(func(x algebra.Operand) (algebra.Operand, error) {
				return algebra.ScalarAdd(x, scalar)
			})
		case ScalarMultiplication:
			task.Transposable = true
			task.Runner = matrixRunner(func(x algebra.Operand) (algebra.Operand, error) {
				return algebra.ScalarMul(x, scalar)
			})
		case LeftMatrixMultiplication:
			arg := uniform(dMat, cfg.Bench.LMMCols)
			task.Runner = matrixRunner(func(x algebra.Operand) (algebra.Operand, error) {
				return algebra.LeftMultiply(x, arg)
			})
		case RightMatrixMultiplication:
			arg := uniform(cfg.Bench.RMMRows, nMat)
			task.Runner = matrixRunner(func(x algebra.Operand) (algebra.Operand, error) {
				return algebra.RightMultiply(x, arg)
			})
		case RowWiseSum:
			task.Transposable = true
			task.Runner = matrixRunner(algebra.RowSum)
		case ColumnWiseSum:
			task.Transposable = true
			task.Runner = matrixRunner(algebra.ColSum)
		case ElementWiseSum:
			task.Transposable = true
			task.Runner = func(x algebra.Operand) (algebra.Result, error) {
				sum, err := algebra.Sum(x)
				if err != nil {
					return algebra.Result{}, errors.Trace(err)
				}
				return algebra.ScalarResult(sum), nil
			}
		case CrossProduct:
			task.Transposable = true
			task.Runner = matrixRunner(algebra.CrossProduct)
		case LogisticRegression:
			wInit := uniform(dMat, 1)
			task.Runner = matrixRunner(func(x algebra.Operand) (algebra.Operand, error) {
				lr := model.NewLogisticRegression(params)
				if err := lr.Fit(x, matrices.Target, wInit); err != nil {
					return nil, errors.Trace(err)
				}
				return lr.W, nil
			})
		case LinearRegression:
			wInit := uniform(dMat, 1)
			task.Runner = matrixRunner(func(x algebra.Operand) (algebra.Operand, error) {
				lr := model.NewLinearRegression(params)
				if err := lr.Fit(x, matrices.Target, wInit); err != nil {
					return nil, errors.Trace(err)
				}
				return lr.W, nil
			})
		case KMeansClustering:
			// the first rows of the data are the initial centers
			centers, err := algebra.Slice(matrices.Materialized, 0, cfg.Algorithm.Centers, 0, dMat)
			if err != nil {
				return nil, errors.Annotatef(err, "%d initial centers from %d rows", cfg.Algorithm.Centers, nMat)
			}
			if centers, err = algebra.Transpose(centers); err != nil {
				return nil, errors.Trace(err)
			}
			task.Runner = matrixRunner(func(x algebra.Operand) (algebra.Operand, error) {
				km := model.NewKMeans(params)
				if err := km.Fit(x, centers); err != nil {
					return nil, errors.Trace(err)
				}
				return km.Centers, nil
			})
		case GNMFClustering:
			wInit := uniform(nMat, cfg.Algorithm.Components)
			hInit := uniform(cfg.Algorithm.Components, dMat)
			task.Runner = matrixRunner(func(x algebra.Operand) (algebra.Operand, error) {
				nmf := model.NewGNMF(params)
				if err := nmf.Fit(x, wInit, hInit); err != nil {
					return nil, errors.Trace(err)
				}
				return nmf.W, nil
			})
		default:
			return nil, errors.NotFoundf("task %q", name)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
