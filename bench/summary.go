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
	"strconv"

	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the timing series of one task under one configuration.
type Summary struct {
	Task   string
	Mode   string
	TR     float64
	FR     float64
	N      int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summarize computes statistics of a timing series.
func Summarize(task, mode string, tr, fr float64, samples []float64) Summary {
	summary := Summary{Task: task, Mode: mode, TR: tr, FR: fr, N: len(samples)}
	if len(samples) == 0 {
		return summary
	}
	summary.Mean, summary.StdDev = stat.MeanStdDev(samples, nil)
	if len(samples) == 1 {
		summary.StdDev = 0
	}
	summary.Min = floats.Min(samples)
	summary.Max = floats.Max(samples)
	return summary
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}

// RenderSummaries prints summaries as a table.
func RenderSummaries(w io.Writer, summaries []Summary) error {
	table := tablewriter.NewWriter(w)
	table.Header("Task", "Mode", "TR", "FR", "N", "Mean (s)", "StdDev (s)", "Min (s)", "Max (s)")
	for _, s := range summaries {
		if err := table.Append([]string{
			s.Task, s.Mode, FormatRatio(s.TR), FormatRatio(s.FR), strconv.Itoa(s.N),
			formatSeconds(s.Mean), formatSeconds(s.StdDev), formatSeconds(s.Min), formatSeconds(s.Max),
		}); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(table.Render())
}

// RenderReports prints equality reports as a table.
func RenderReports(w io.Writer, reports []*Report) error {
	table := tablewriter.NewWriter(w)
	table.Header("Task", "Transposed", "Agree", "Max Abs Diff")
	for _, r := range reports {
		if err := table.Append([]string{
			r.Task, strconv.FormatBool(r.Transposed), strconv.FormatBool(r.Agree), fmt.Sprintf("%.3g", r.MaxAbsDiff),
		}); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(table.Render())
}
