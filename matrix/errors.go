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
	"github.com/juju/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	// ErrShapeMismatch is returned when operand dimensions violate the algebraic
	// precondition of an operator.
	ErrShapeMismatch = errors.ConstError("shape mismatch")
	// ErrUnsupportedOperation is returned when a backend lacks a capability.
	ErrUnsupportedOperation = errors.ConstError("unsupported operation")
	// ErrEngineUnavailable is returned when the factored engine cannot be reached.
	ErrEngineUnavailable = errors.ConstError("engine unavailable")
)

// ShapeError annotates ErrShapeMismatch with the operator name and both shapes.
func ShapeError(op string, a, b mat.Matrix) error {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	return errors.Annotatef(ErrShapeMismatch, "%s: %dx%d and %dx%d", op, ar, ac, br, bc)
}

// UnsupportedError annotates ErrUnsupportedOperation with the operator and operand kind.
func UnsupportedError(op, kind string) error {
	return errors.Annotatef(ErrUnsupportedOperation, "%s on %s operand", op, kind)
}
