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

package dataset

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/gorse-io/trinity/algebra"
	"github.com/gorse-io/trinity/base"
	"github.com/gorse-io/trinity/common/log"
	"github.com/gorse-io/trinity/matrix"
	"github.com/juju/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Load reads a real dataset: the base block S, one foreign-key column per key
// file (0-based row indices into the matching value file) and the value blocks Rs.
func Load(backend *algebra.Backend, meta *Meta) (*Matrices, error) {
	var s mat.Matrix = &mat.Dense{}
	if meta.S != "" {
		dense, err := loadDense(meta.path(meta.S))
		if err != nil {
			return nil, errors.Trace(err)
		}
		s = dense
	}
	ks := make([]mat.Matrix, len(meta.Ks))
	rs := make([]mat.Matrix, len(meta.Rs))
	for i := range meta.Rs {
		r, err := loadDense(meta.path(meta.Rs[i]))
		if err != nil {
			return nil, errors.Trace(err)
		}
		k, err := loadKeys(meta.path(meta.Ks[i]), r.RawMatrix().Rows)
		if err != nil {
			return nil, errors.Trace(err)
		}
		ks[i], rs[i] = k, r
	}
	log.Logger().Info("load dataset", zap.String("name", meta.Name), zap.Int("n_joins", len(ks)))
	return NewMatrices(backend, s, ks, rs)
}

func loadDense(path string) (*mat.Dense, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	var data []float64
	rows, cols := 0, -1
	err = base.ReadLines(bufio.NewScanner(file), ',', func(_ int, fields []string) error {
		if cols < 0 {
			cols = len(fields)
		} else if len(fields) != cols {
			return errors.NotValidf("%d fields, want %d", len(fields), cols)
		}
		for _, field := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return errors.Trace(err)
			}
			data = append(data, v)
		}
		rows++
		return nil
	})
	if err != nil {
		return nil, errors.Annotatef(err, "load %s", path)
	}
	if rows == 0 {
		return nil, errors.NotValidf("empty matrix file %s", path)
	}
	return mat.NewDense(rows, cols, data), nil
}

func loadKeys(path string, cols int) (*matrix.OneHot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	var indices []int
	err = base.ReadLines(bufio.NewScanner(file), ',', func(_ int, fields []string) error {
		if len(fields) != 1 {
			return errors.NotValidf("%d fields in key file", len(fields))
		}
		index, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return errors.Trace(err)
		}
		if index < 0 || index >= cols {
			return errors.NotValidf("key %d out of [0, %d)", index, cols)
		}
		indices = append(indices, index)
		return nil
	})
	if err != nil {
		return nil, errors.Annotatef(err, "load %s", path)
	}
	return matrix.NewOneHot(cols, indices), nil
}
