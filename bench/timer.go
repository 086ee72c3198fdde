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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorse-io/trinity/algebra"
	"github.com/gorse-io/trinity/common/log"
	"github.com/juju/errors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// Mode names. Any mode other than ModeTrinity times the materialized matrix.
const (
	ModeTrinity      = "trinity"
	ModeMaterialized = "materialized"
)

// FormatRatio formats a ratio the shortest way, e.g. 1, 2.5.
func FormatRatio(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// OutputPath returns <dir>/<task>[_<outputMeta>]_TR=<tr>_FR=<fr>_<mode>.txt.
func OutputPath(dir, task, outputMeta string, tr, fr float64, mode string) string {
	parts := []string{task}
	if outputMeta != "" {
		parts = append(parts, outputMeta)
	}
	parts = append(parts, "TR="+FormatRatio(tr), "FR="+FormatRatio(fr), mode)
	return filepath.Join(dir, strings.Join(parts, "_")+".txt")
}

// Timer measures task runners.
type Timer struct {
	repeats  int
	progress io.Writer
}

// NewTimer creates a timer running every task repeats times. Progress is drawn to
// progress unless it is nil.
func NewTimer(repeats int, progress io.Writer) *Timer {
	return &Timer{repeats: repeats, progress: progress}
}

// Time runs the task on x and appends the elapsed seconds of every run to path,
// one decimal value per line. The file is synced after every line.
func (t *Timer) Time(task Task, x algebra.Operand, path string) ([]float64, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()

	var bar *progressbar.ProgressBar
	if t.progress != nil {
		bar = progressbar.NewOptions(t.repeats,
			progressbar.OptionSetWriter(t.progress),
			progressbar.OptionSetDescription(task.Name),
			progressbar.OptionClearOnFinish())
	}
	samples := make([]float64, 0, t.repeats)
	for i := 0; i < t.repeats; i++ {
		start := time.Now()
		if _, err = task.Runner(x); err != nil {
			return nil, errors.Annotatef(err, "run %s", task.Name)
		}
		elapsed := time.Since(start).Seconds()
		log.Logger().Debug("iteration", zap.String("task", task.Name),
			zap.Int("iteration", i), zap.Int("repeats", t.repeats), zap.Float64("seconds", elapsed))
		if _, err = fmt.Fprintln(file, strconv.FormatFloat(elapsed, 'f', -1, 64)); err != nil {
			return nil, errors.Trace(err)
		}
		if err = file.Sync(); err != nil {
			return nil, errors.Trace(err)
		}
		samples = append(samples, elapsed)
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return samples, errors.Trace(file.Close())
}
