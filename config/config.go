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
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding the configuration,
// e.g. TRINITY_BENCH_REPEATS.
const EnvPrefix = "TRINITY"

// Config is the configuration of benchmark runs.
type Config struct {
	Bench     BenchConfig     `mapstructure:"bench"`
	Algorithm AlgorithmConfig `mapstructure:"algorithm"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Database  DatabaseConfig  `mapstructure:"database"`
}

// BenchConfig is the configuration of the timing harness and the equality check.
type BenchConfig struct {
	Repeats   int     `mapstructure:"repeats" validate:"gt=0"`
	LMMCols   int     `mapstructure:"lmm_cols" validate:"gt=0"`
	RMMRows   int     `mapstructure:"rmm_rows" validate:"gt=0"`
	Tolerance float64 `mapstructure:"tolerance" validate:"gt=0"`
}

// AlgorithmConfig is the configuration of algorithm tasks.
type AlgorithmConfig struct {
	Iterations int     `mapstructure:"iterations" validate:"gte=0"`
	Gamma      float64 `mapstructure:"gamma" validate:"gt=0"`
	Centers    int     `mapstructure:"centers" validate:"gt=0"`
	Components int     `mapstructure:"components" validate:"gt=0"`
}

// GeneratorConfig is the configuration of the synthetic data generator.
type GeneratorConfig struct {
	// Seed of the random generator, zero draws one from the clock.
	Seed int64 `mapstructure:"seed"`
}

// EngineConfig selects the factorized algebra engine.
type EngineConfig struct {
	Name string `mapstructure:"name" validate:"required"`
}

// DatabaseConfig is the configuration of the timing store. An empty path disables it.
type DatabaseConfig struct {
	ResultsStore string `mapstructure:"results_store" validate:"omitempty,startswith=sqlite://"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Bench: BenchConfig{
			Repeats:   25,
			LMMCols:   2,
			RMMRows:   2,
			Tolerance: 1e-9,
		},
		Algorithm: AlgorithmConfig{
			Iterations: 20,
			Gamma:      1e-6,
			Centers:    10,
			Components: 5,
		},
		Engine: EngineConfig{
			Name: "morpheus",
		},
	}
}

func setDefault(v *viper.Viper) {
	defaultConfig := GetDefaultConfig()
	// [bench]
	v.SetDefault("bench.repeats", defaultConfig.Bench.Repeats)
	v.SetDefault("bench.lmm_cols", defaultConfig.Bench.LMMCols)
	v.SetDefault("bench.rmm_rows", defaultConfig.Bench.RMMRows)
	v.SetDefault("bench.tolerance", defaultConfig.Bench.Tolerance)
	// [algorithm]
	v.SetDefault("algorithm.iterations", defaultConfig.Algorithm.Iterations)
	v.SetDefault("algorithm.gamma", defaultConfig.Algorithm.Gamma)
	v.SetDefault("algorithm.centers", defaultConfig.Algorithm.Centers)
	v.SetDefault("algorithm.components", defaultConfig.Algorithm.Components)
	// [generator]
	v.SetDefault("generator.seed", defaultConfig.Generator.Seed)
	// [engine]
	v.SetDefault("engine.name", defaultConfig.Engine.Name)
	// [database]
	v.SetDefault("database.results_store", defaultConfig.Database.ResultsStore)
}

// LoadConfig loads configuration from a TOML, YAML or JSON file and the environment.
// An empty path loads defaults and the environment only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefault(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Annotatef(err, "read config %s", path)
		}
	}
	var conf Config
	if err := v.Unmarshal(&conf, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}

// Validate checks value ranges.
func (config *Config) Validate() error {
	if err := validator.New().Struct(config); err != nil {
		return errors.NewNotValid(err, "invalid config")
	}
	return nil
}
