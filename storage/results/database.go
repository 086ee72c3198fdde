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

// Package results persists timing series of benchmark runs.
package results

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorse-io/trinity/storage"
	"github.com/juju/errors"
	"github.com/klauspost/cpuid/v2"
	"github.com/samber/lo"
)

// Run is the timing series of one task under one configuration.
type Run struct {
	ID         string
	Task       string
	Mode       string
	TR         float64
	FR         float64
	OutputMeta string
	StartTime  time.Time
	// CPU is the processor brand and features of the host that timed the run.
	CPU        string
	Samples    []float64 // seconds
}

// HostCPU describes the processor running the benchmark, e.g.
// "Intel(R) Xeon(R) CPU (AVX,AVX2,FMA3)". Only vector extensions used by
// dense kernels are listed.
func HostCPU() string {
	features := lo.Filter([]cpuid.FeatureID{cpuid.SSE2, cpuid.AVX, cpuid.AVX2, cpuid.FMA3, cpuid.AVX512F, cpuid.ASIMD},
		func(id cpuid.FeatureID, _ int) bool { return cpuid.CPU.Supports(id) })
	names := lo.Map(features, func(id cpuid.FeatureID, _ int) string { return id.String() })
	return cpuid.CPU.BrandName + " (" + strings.Join(names, ",") + ")"
}

// NewRun creates a run with a random id.
func NewRun(task, mode string, tr, fr float64, outputMeta string) *Run {
	return &Run{
		ID:         uuid.NewString(),
		Task:       task,
		Mode:       mode,
		TR:         tr,
		FR:         fr,
		OutputMeta: outputMeta,
		StartTime:  time.Now(),
		CPU:        HostCPU(),
	}
}

type Store interface {
	Close() error
	Init() error
	InsertRun(run *Run) error
	// ListRuns returns runs of a task, or of every task if task is empty.
	ListRuns(task string) ([]*Run, error)
}

// Open a connection to a timing store.
func Open(path string) (Store, error) {
	var err error
	if strings.HasPrefix(path, storage.SQLitePrefix) {
		dataSourceName := path[len(storage.SQLitePrefix):]
		// append parameters
		if dataSourceName, err = storage.AppendURLParams(dataSourceName, []lo.Tuple2[string, string]{
			{A: "_pragma", B: "busy_timeout(10000)"},
			{A: "_pragma", B: "journal_mode(wal)"},
		}); err != nil {
			return nil, errors.Trace(err)
		}
		// connect to database
		database := new(SQLite)
		if database.db, err = sql.Open("sqlite", dataSourceName); err != nil {
			return nil, errors.Trace(err)
		}
		return database, nil
	}
	return nil, errors.NotSupportedf("timing store %s", path)
}
