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
	"github.com/gorse-io/trinity/algebra"
	"github.com/gorse-io/trinity/matrix"
	"github.com/juju/errors"
	"gonum.org/v1/gonum/mat"
)

// Report is the outcome of an equality check.
type Report struct {
	Task       string
	Transposed bool
	Agree      bool
	MaxAbsDiff float64
}

// Verifier checks that a task produces the same result on both representations.
type Verifier struct {
	tolerance float64
}

func NewVerifier(tolerance float64) *Verifier {
	return &Verifier{tolerance: tolerance}
}

// Verify runs the task once on each operand. Results must be of the same kind and
// shape, then agree element-wise within |a-b| <= tol + tol·|b|.
func (v *Verifier) Verify(task Task, materialized, normalized algebra.Operand, transposed bool) (*Report, error) {
	expected, err := task.Runner(materialized)
	if err != nil {
		return nil, errors.Annotatef(err, "run %s on %s", task.Name, materialized.Kind())
	}
	actual, err := task.Runner(normalized)
	if err != nil {
		return nil, errors.Annotatef(err, "run %s on %s", task.Name, normalized.Kind())
	}
	if expected.IsScalar() != actual.IsScalar() {
		return nil, errors.Annotatef(matrix.ErrShapeMismatch, "%s returns a scalar on one representation only", task.Name)
	}
	a, err := resultMatrix(expected)
	if err != nil {
		return nil, errors.Trace(err)
	}
	b, err := resultMatrix(actual)
	if err != nil {
		return nil, errors.Trace(err)
	}
	report := &Report{Task: task.Name, Transposed: transposed}
	if report.Agree, err = matrix.AllClose(a, b, v.tolerance, v.tolerance); err != nil {
		return nil, errors.Annotatef(err, "compare %s", task.Name)
	}
	if report.MaxAbsDiff, err = matrix.MaxAbsDiff(a, b); err != nil {
		return nil, errors.Trace(err)
	}
	return report, nil
}

// resultMatrix expands a result, a scalar becoming a 1×1 matrix.
func resultMatrix(r algebra.Result) (*mat.Dense, error) {
	if r.IsScalar() {
		return mat.NewDense(1, 1, []float64{r.Scalar}), nil
	}
	return algebra.Materialize(r.Operand)
}

// VerifyTask checks the task on the operands and, if the task allows it, on
// their transposes.
func (v *Verifier) VerifyTask(task Task, materialized, normalized algebra.Operand) ([]*Report, error) {
	report, err := v.Verify(task, materialized, normalized, false)
	if err != nil {
		return nil, errors.Trace(err)
	}
	reports := []*Report{report}
	if !task.Transposable {
		return reports, nil
	}
	mt, err := algebra.Transpose(materialized)
	if err != nil {
		return nil, errors.Trace(err)
	}
	nt, err := algebra.Transpose(normalized)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if report, err = v.Verify(task, mt, nt, true); err != nil {
		return nil, errors.Trace(err)
	}
	return append(reports, report), nil
}
