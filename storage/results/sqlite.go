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

package results

import (
	"database/sql"

	"github.com/juju/errors"
	_ "modernc.org/sqlite"
)

type SQLite struct {
	db *sql.DB
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Init() error {
	// Create tables
	if _, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	task TEXT,
	mode TEXT,
	tr REAL,
	fr REAL,
	output_meta TEXT,
	start_time TIMESTAMP,
	cpu TEXT
);`); err != nil {
		return errors.Trace(err)
	}
	if _, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS samples (
	run_id TEXT,
	iteration INTEGER,
	seconds REAL,
	PRIMARY KEY (run_id, iteration)
);`); err != nil {
		return errors.Trace(err)
	}
	return nil
}

func (s *SQLite) InsertRun(run *Run) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Trace(err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	if _, err = tx.Exec(`
INSERT INTO runs (id, task, mode, tr, fr, output_meta, start_time, cpu)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, run.ID, run.Task, run.Mode, run.TR, run.FR, run.OutputMeta, run.StartTime.UTC(), run.CPU); err != nil {
		return errors.Trace(err)
	}
	for i, seconds := range run.Samples {
		if _, err = tx.Exec(`
INSERT INTO samples (run_id, iteration, seconds) VALUES (?, ?, ?)
`, run.ID, i, seconds); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(tx.Commit())
}

func (s *SQLite) ListRuns(task string) ([]*Run, error) {
	rs, err := s.db.Query(`
SELECT id, task, mode, tr, fr, output_meta, start_time, cpu FROM runs
WHERE ? = '' OR task = ?
ORDER BY start_time, id
`, task, task)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var runs []*Run
	for rs.Next() {
		var run Run
		if err = rs.Scan(&run.ID, &run.Task, &run.Mode, &run.TR, &run.FR, &run.OutputMeta, &run.StartTime, &run.CPU); err != nil {
			_ = rs.Close()
			return nil, errors.Trace(err)
		}
		runs = append(runs, &run)
	}
	if err = rs.Err(); err != nil {
		_ = rs.Close()
		return nil, errors.Trace(err)
	}
	if err = rs.Close(); err != nil {
		return nil, errors.Trace(err)
	}
	for _, run := range runs {
		if run.Samples, err = s.listSamples(run.ID); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return runs, nil
}

func (s *SQLite) listSamples(runID string) ([]float64, error) {
	rs, err := s.db.Query(`
SELECT seconds FROM samples WHERE run_id = ? ORDER BY iteration
`, runID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer rs.Close()
	var samples []float64
	for rs.Next() {
		var seconds float64
		if err = rs.Scan(&seconds); err != nil {
			return nil, errors.Trace(err)
		}
		samples = append(samples, seconds)
	}
	return samples, errors.Trace(rs.Err())
}
