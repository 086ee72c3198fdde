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
	"bufio"
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gorse-io/trinity/algebra"
	"github.com/gorse-io/trinity/base"
	"github.com/gorse-io/trinity/config"
	"github.com/gorse-io/trinity/dataset"
	"github.com/gorse-io/trinity/engine/morpheus"
	"github.com/gorse-io/trinity/matrix"
	"github.com/gorse-io/trinity/storage/results"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func newTestConfig() *config.Config {
	cfg := config.GetDefaultConfig()
	cfg.Generator.Seed = 1
	return cfg
}

func writeMeta(t *testing.T, dir, content string) string {
	path := filepath.Join(dir, "meta.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readSamples(t *testing.T, path string) []float64 {
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	var samples []float64
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		v, err := strconv.ParseFloat(scanner.Text(), 64)
		require.NoError(t, err)
		samples = append(samples, v)
	}
	require.NoError(t, scanner.Err())
	return samples
}

func TestSelectTasks(t *testing.T) {
	names, err := SelectTasks(SelectAll)
	assert.NoError(t, err)
	assert.Len(t, names, len(MicroTasks)+len(AlgorithmTasks))
	names, err = SelectTasks(SelectMicro)
	assert.NoError(t, err)
	assert.Equal(t, MicroTasks, names)
	names, err = SelectTasks(SelectAlgorithm)
	assert.NoError(t, err)
	assert.Equal(t, AlgorithmTasks, names)
	names, err = SelectTasks(SelectTest)
	assert.NoError(t, err)
	assert.Equal(t, TestTasks, names)
	names, err = SelectTasks(RowWiseSum)
	assert.NoError(t, err)
	assert.Equal(t, []string{RowWiseSum}, names)
	_, err = SelectTasks("transpose")
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "scalarAddition_TR=1_FR=2.5_trinity.txt"),
		OutputPath("out", ScalarAddition, "", 1, 2.5, ModeTrinity))
	assert.Equal(t, filepath.Join("out", "rowWiseSum_dense_TR=10_FR=0.5_materialized.txt"),
		OutputPath("out", RowWiseSum, "dense", 10, 0.5, ModeMaterialized))
}

func TestDriver_Timing(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(out, 0o755))
	metaPath := writeMeta(t, dir, `{"name": "synthesized", "nR": 100, "dS": 20, "TRs": [1], "FRs": [1]}`)

	driver := NewDriver(newTestConfig(), algebra.NewBackend(morpheus.New()), nil, nil)
	outcome, err := driver.Run(Options{
		MetaPath:   metaPath,
		Selector:   ScalarAddition,
		Iterations: 1,
		OutputDir:  out,
		Mode:       ModeTrinity,
	})
	require.NoError(t, err)
	require.Len(t, outcome.Summaries, 1)
	assert.Equal(t, 25, outcome.Summaries[0].N)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "scalarAddition_TR=1_FR=1_trinity.txt", entries[0].Name())
	samples := readSamples(t, filepath.Join(out, entries[0].Name()))
	assert.Len(t, samples, 25)
	for _, v := range samples {
		assert.GreaterOrEqual(t, v, 0.0)
	}

	// a second run appends
	_, err = driver.Run(Options{MetaPath: metaPath, Selector: ScalarAddition, OutputDir: out, Mode: ModeTrinity})
	require.NoError(t, err)
	assert.Len(t, readSamples(t, filepath.Join(out, entries[0].Name())), 50)
}

func TestDriver_MissingOutputDir(t *testing.T) {
	dir := t.TempDir()
	metaPath := writeMeta(t, dir, `{"name": "synthesized", "nR": 100, "dS": 20, "TRs": [1], "FRs": [1]}`)
	driver := NewDriver(newTestConfig(), algebra.NewBackend(morpheus.New()), nil, nil)
	_, err := driver.Run(Options{
		MetaPath:  metaPath,
		Selector:  ScalarAddition,
		OutputDir: filepath.Join(dir, "missing"),
		Mode:      ModeMaterialized,
	})
	assert.Error(t, err)
	// the equality check writes nothing
	_, err = driver.Run(Options{
		MetaPath:  metaPath,
		Selector:  SelectTest,
		OutputDir: filepath.Join(dir, "missing"),
	})
	assert.NoError(t, err)
}

func TestDriver_UnknownTask(t *testing.T) {
	dir := t.TempDir()
	metaPath := writeMeta(t, dir, `{"name": "synthesized", "nR": 100, "dS": 20, "TRs": [1], "FRs": [1]}`)
	driver := NewDriver(newTestConfig(), algebra.NewBackend(morpheus.New()), nil, nil)
	_, err := driver.Run(Options{MetaPath: metaPath, Selector: "transpose", OutputDir: dir})
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestDriver_Test(t *testing.T) {
	dir := t.TempDir()
	metaPath := writeMeta(t, dir, `{"name": "synthesized", "nR": 60, "dS": 8, "TRs": [1, 2], "FRs": [0.5, 1]}`)
	driver := NewDriver(newTestConfig(), algebra.NewBackend(morpheus.New()), nil, nil)
	outcome, err := driver.Run(Options{MetaPath: metaPath, Selector: SelectTest, OutputDir: dir})
	require.NoError(t, err)
	assert.Empty(t, outcome.Summaries)
	// lmm and rmm are checked once, the other micro tasks twice
	assert.Len(t, outcome.Reports, 4*(2*len(TestTasks)-2))
	for _, report := range outcome.Reports {
		assert.True(t, report.Agree, "%s transposed=%v diff=%v", report.Task, report.Transposed, report.MaxAbsDiff)
	}
	// the test run writes no timing files
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDriver_Override(t *testing.T) {
	dir := t.TempDir()
	metaPath := writeMeta(t, dir, `{"name": "synthesized", "nR": 50, "dS": 5, "TRs": [1, 2], "FRs": [1, 2]}`)
	cfg := newTestConfig()
	cfg.Bench.Repeats = 3
	driver := NewDriver(cfg, algebra.NewBackend(morpheus.New()), nil, nil)
	outcome, err := driver.Run(Options{
		MetaPath:  metaPath,
		Selector:  ColumnWiseSum,
		OutputDir: dir,
		Mode:      ModeMaterialized,
		Override:  true,
		TR:        3,
		FR:        0.5,
	})
	require.NoError(t, err)
	require.Len(t, outcome.Summaries, 1)
	assert.Equal(t, 3.0, outcome.Summaries[0].TR)
	assert.Equal(t, 0.5, outcome.Summaries[0].FR)
	assert.FileExists(t, filepath.Join(dir, "columnWiseSum_TR=3_FR=0.5_materialized.txt"))
}

func TestDriver_Sweep(t *testing.T) {
	dir := t.TempDir()
	metaPath := writeMeta(t, dir, `{"name": "synthesized", "nR": 40, "dS": 4, "TRs": [1], "FRs": [1]}`)
	store, err := results.Open("sqlite://" + filepath.Join(dir, "results.db"))
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Init())

	cfg := newTestConfig()
	cfg.Bench.Repeats = 2
	var progress bytes.Buffer
	driver := NewDriver(cfg, algebra.NewBackend(morpheus.New()), store, &progress)
	outcome, err := driver.Sweep(Options{MetaPath: metaPath, Selector: ElementWiseSum, OutputDir: dir},
		[]string{ModeTrinity, ModeMaterialized}, []float64{1, 2}, []float64{1})
	require.NoError(t, err)
	assert.Len(t, outcome.Summaries, 4)

	runs, err := store.ListRuns(ElementWiseSum)
	require.NoError(t, err)
	assert.Len(t, runs, 4)
	for _, run := range runs {
		assert.Len(t, run.Samples, 2)
	}

	var buf bytes.Buffer
	require.NoError(t, outcome.Render(&buf))
	assert.Contains(t, buf.String(), ElementWiseSum)
	assert.Contains(t, buf.String(), ModeMaterialized)
}

func TestAlgorithmTasks(t *testing.T) {
	backend := algebra.NewBackend(morpheus.New())
	rng := base.NewRandomGenerator(1)
	matrices, err := dataset.NewGenerator(backend, rng).Generate(100, 10, 2, 0.5)
	require.NoError(t, err)
	cfg := newTestConfig()
	cfg.Algorithm.Iterations = 5
	tasks, err := BuildTasks(AlgorithmTasks, matrices, cfg, rng)
	require.NoError(t, err)
	require.Len(t, tasks, len(AlgorithmTasks))
	verifier := NewVerifier(1e-6)
	for _, task := range tasks {
		reports, err := verifier.VerifyTask(task, matrices.Materialized, matrices.Normalized)
		require.NoError(t, err, task.Name)
		require.Len(t, reports, 1)
		assert.True(t, reports[0].Agree, "%s diff=%v", task.Name, reports[0].MaxAbsDiff)
	}
}

func TestBuildTasks_TooFewRows(t *testing.T) {
	backend := algebra.NewBackend(morpheus.New())
	rng := base.NewRandomGenerator(1)
	matrices, err := dataset.NewGenerator(backend, rng).Generate(5, 3, 1, 1)
	require.NoError(t, err)
	_, err = BuildTasks([]string{KMeansClustering}, matrices, newTestConfig(), rng)
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	summary := Summarize(RowWiseSum, ModeTrinity, 1, 2, []float64{1, 2, 3})
	assert.Equal(t, 3, summary.N)
	assert.InDelta(t, 2, summary.Mean, 1e-12)
	assert.InDelta(t, 1, summary.StdDev, 1e-12)
	assert.Equal(t, 1.0, summary.Min)
	assert.Equal(t, 3.0, summary.Max)
	assert.Zero(t, Summarize(RowWiseSum, ModeTrinity, 1, 2, []float64{4}).StdDev)
	assert.Zero(t, Summarize(RowWiseSum, ModeTrinity, 1, 2, nil).N)

	var buf bytes.Buffer
	require.NoError(t, RenderReports(&buf, []*Report{{Task: CrossProduct, Transposed: true, Agree: true}}))
	assert.Contains(t, buf.String(), CrossProduct)
}

func TestVerifier_Degenerate(t *testing.T) {
	backend := algebra.NewBackend(morpheus.New())
	s := mat.NewDense(3, 2, []float64{1, 2, math.NaN(), 4, 5, 6})
	k := matrix.NewOneHot(2, []int{0, 1, 1})
	r := mat.NewDense(2, 1, []float64{7, 8})
	matrices, err := dataset.NewMatrices(backend, s, []mat.Matrix{k}, []mat.Matrix{r})
	require.NoError(t, err)
	tasks, err := BuildTasks([]string{ElementWiseSum, RowWiseSum}, matrices, newTestConfig(), base.NewRandomGenerator(1))
	require.NoError(t, err)
	verifier := NewVerifier(1e-9)
	for _, task := range tasks {
		reports, err := verifier.VerifyTask(task, matrices.Materialized, matrices.Normalized)
		require.NoError(t, err)
		for _, report := range reports {
			assert.True(t, report.Agree, "%s transposed=%v", report.Task, report.Transposed)
			assert.Zero(t, report.MaxAbsDiff)
		}
	}

	// scalars of different values or signs of infinity disagree
	for _, values := range [][2]float64{{1, 2}, {math.Inf(1), math.Inf(-1)}, {math.NaN(), 1}} {
		task := Task{Name: ElementWiseSum, Runner: func(x algebra.Operand) (algebra.Result, error) {
			if x.Kind() == algebra.KindMaterialized {
				return algebra.ScalarResult(values[0]), nil
			}
			return algebra.ScalarResult(values[1]), nil
		}}
		report, err := verifier.Verify(task, matrices.Materialized, matrices.Normalized, false)
		require.NoError(t, err)
		assert.False(t, report.Agree, "%v", values)
	}
}
