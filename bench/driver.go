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
	"io"
	"os"

	"github.com/gorse-io/trinity/algebra"
	"github.com/gorse-io/trinity/base"
	"github.com/gorse-io/trinity/common/log"
	"github.com/gorse-io/trinity/config"
	"github.com/gorse-io/trinity/dataset"
	"github.com/gorse-io/trinity/storage/results"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Options are the arguments of one benchmark invocation.
type Options struct {
	MetaPath string
	Selector string
	// Iterations is the requested iteration count. Timing always runs the
	// configured number of repeats.
	Iterations int
	OutputDir  string
	Mode       string
	// Override replaces the ratios of the dataset with TR and FR.
	Override bool
	TR       float64
	FR       float64
}

// Outcome collects what a run measured.
type Outcome struct {
	Summaries []Summary
	Reports   []*Report
}

// Driver runs benchmark configurations one after another.
type Driver struct {
	cfg     *config.Config
	backend *algebra.Backend
	rng     base.RandomGenerator
	store   results.Store
	out     io.Writer
}

// NewDriver creates a driver. The store and out are optional: without a store
// timings are only written to files, without out no progress is drawn.
func NewDriver(cfg *config.Config, backend *algebra.Backend, store results.Store, out io.Writer) *Driver {
	return &Driver{
		cfg:     cfg,
		backend: backend,
		rng:     base.NewRandomGenerator(cfg.Generator.Seed),
		store:   store,
		out:     out,
	}
}

// Run executes the selected tasks for every ratio pair. The test selector
// checks equality between representations, any other selector times tasks.
func (d *Driver) Run(opts Options) (*Outcome, error) {
	meta, err := dataset.LoadMeta(opts.MetaPath)
	if err != nil {
		return nil, errors.Trace(err)
	}
	names, err := SelectTasks(opts.Selector)
	if err != nil {
		return nil, errors.Trace(err)
	}
	testing := opts.Selector == SelectTest
	if !testing {
		if info, err := os.Stat(opts.OutputDir); err != nil {
			return nil, errors.Annotatef(err, "output directory")
		} else if !info.IsDir() {
			return nil, errors.NotValidf("output directory %s", opts.OutputDir)
		}
	}
	trs, frs := meta.Ratios()
	if opts.Override {
		trs, frs = []float64{opts.TR}, []float64{opts.FR}
	}
	log.Logger().Info("begin benchmarking loop",
		zap.String("dataset", meta.Name),
		zap.Strings("tasks", names),
		zap.Int("iterations", opts.Iterations),
		zap.Int("repeats", d.cfg.Bench.Repeats),
		zap.String("mode", opts.Mode),
		zap.Float64s("trs", trs),
		zap.Float64s("frs", frs))

	outcome := new(Outcome)
	timer := NewTimer(d.cfg.Bench.Repeats, d.out)
	verifier := NewVerifier(d.cfg.Bench.Tolerance)
	for _, pair := range ratioPairs(trs, frs) {
		tr, fr := pair.A, pair.B
		var matrices *dataset.Matrices
		if meta.IsSynthesized() {
			matrices, err = dataset.NewGenerator(d.backend, d.rng).Generate(meta.NR, meta.DS, tr, fr)
		} else {
			matrices, err = dataset.Load(d.backend, meta)
		}
		if err != nil {
			return nil, errors.Trace(err)
		}
		tasks, err := BuildTasks(names, matrices, d.cfg, d.rng)
		if err != nil {
			return nil, errors.Trace(err)
		}
		for _, task := range tasks {
			log.Logger().Info("run task", zap.String("task", task.Name),
				zap.Float64("tr", tr), zap.Float64("fr", fr), zap.String("mode", opts.Mode))
			if testing {
				reports, err := verifier.VerifyTask(task, matrices.Materialized, matrices.Normalized)
				if err != nil {
					return nil, errors.Trace(err)
				}
				for _, report := range reports {
					fields := []zap.Field{zap.String("task", report.Task), zap.Bool("transposed", report.Transposed),
						zap.Bool("agree", report.Agree), zap.Float64("max_abs_diff", report.MaxAbsDiff)}
					if report.Agree {
						log.Logger().Info("representations agree", fields...)
					} else {
						log.Logger().Warn("representations disagree", fields...)
					}
				}
				outcome.Reports = append(outcome.Reports, reports...)
				continue
			}
			var x algebra.Operand = matrices.Materialized
			if opts.Mode == ModeTrinity {
				x = matrices.Normalized
			}
			run := results.NewRun(task.Name, opts.Mode, tr, fr, meta.OutputMeta)
			path := OutputPath(opts.OutputDir, task.Name, meta.OutputMeta, tr, fr, opts.Mode)
			if run.Samples, err = timer.Time(task, x, path); err != nil {
				return nil, errors.Trace(err)
			}
			summary := Summarize(task.Name, opts.Mode, tr, fr, run.Samples)
			log.Logger().Info("task complete", zap.String("task", task.Name), zap.String("output", path),
				zap.Float64("mean", summary.Mean), zap.Float64("std_dev", summary.StdDev))
			outcome.Summaries = append(outcome.Summaries, summary)
			if d.store != nil {
				if err = d.store.InsertRun(run); err != nil {
					return nil, errors.Trace(err)
				}
			}
		}
	}
	return outcome, nil
}

// Sweep runs every mode for every ratio pair, each as an overridden run.
func (d *Driver) Sweep(opts Options, modes []string, trs, frs []float64) (*Outcome, error) {
	outcome := new(Outcome)
	for _, mode := range modes {
		for _, pair := range ratioPairs(trs, frs) {
			o := opts
			o.Mode, o.Override, o.TR, o.FR = mode, true, pair.A, pair.B
			result, err := d.Run(o)
			if err != nil {
				return nil, errors.Annotatef(err, "mode %s, TR=%s, FR=%s", mode, FormatRatio(pair.A), FormatRatio(pair.B))
			}
			outcome.Summaries = append(outcome.Summaries, result.Summaries...)
			outcome.Reports = append(outcome.Reports, result.Reports...)
		}
	}
	return outcome, nil
}

// ratioPairs returns every (tr, fr) pair, tuple ratios outermost.
func ratioPairs(trs, frs []float64) []lo.Tuple2[float64, float64] {
	pairs := make([]lo.Tuple2[float64, float64], 0, len(trs)*len(frs))
	for _, tr := range trs {
		for _, fr := range frs {
			pairs = append(pairs, lo.T2(tr, fr))
		}
	}
	return pairs
}

// Render prints the outcome tables to w.
func (o *Outcome) Render(w io.Writer) error {
	if len(o.Summaries) > 0 {
		if err := RenderSummaries(w, o.Summaries); err != nil {
			return errors.Trace(err)
		}
	}
	if len(o.Reports) > 0 {
		if err := RenderReports(w, o.Reports); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}
