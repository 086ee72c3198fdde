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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Default(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), config)
	assert.Equal(t, 25, config.Bench.Repeats)
	assert.Equal(t, 2, config.Bench.LMMCols)
	assert.Equal(t, 2, config.Bench.RMMRows)
	assert.Equal(t, 1e-9, config.Bench.Tolerance)
	assert.Equal(t, 20, config.Algorithm.Iterations)
	assert.Equal(t, 1e-6, config.Algorithm.Gamma)
	assert.Equal(t, 10, config.Algorithm.Centers)
	assert.Equal(t, 5, config.Algorithm.Components)
	assert.Equal(t, int64(0), config.Generator.Seed)
	assert.Equal(t, "morpheus", config.Engine.Name)
	assert.Empty(t, config.Database.ResultsStore)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[bench]
repeats = 5
tolerance = 1e-6

[algorithm]
centers = 3

[generator]
seed = 42

[database]
results_store = "sqlite:///tmp/results.db"
`), 0o644))
	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5, config.Bench.Repeats)
	assert.Equal(t, 1e-6, config.Bench.Tolerance)
	assert.Equal(t, 2, config.Bench.LMMCols)
	assert.Equal(t, 3, config.Algorithm.Centers)
	assert.Equal(t, int64(42), config.Generator.Seed)
	assert.Equal(t, "sqlite:///tmp/results.db", config.Database.ResultsStore)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("TRINITY_BENCH_REPEATS", "7")
	t.Setenv("TRINITY_ENGINE_NAME", "other")
	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 7, config.Bench.Repeats)
	assert.Equal(t, "other", config.Engine.Name)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bench:\n  repeats: 0\n"), 0o644))
	_, err := LoadConfig(path)
	assert.True(t, errors.Is(err, errors.NotValid))

	config := GetDefaultConfig()
	config.Database.ResultsStore = "mysql://localhost"
	assert.True(t, errors.Is(config.Validate(), errors.NotValid))

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
