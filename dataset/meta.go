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
	"encoding/json"
	"path/filepath"

	"github.com/invopop/jsonschema"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Synthesized is the dataset name that selects the synthetic generator.
const Synthesized = "synthesized"

// Meta describes the dataset of a benchmark run.
type Meta struct {
	Name string `mapstructure:"name" json:"name" jsonschema_description:"synthesized or the name of a real dataset"`
	// Base row and column counts of a synthesized dataset.
	NR int `mapstructure:"nR" json:"nR,omitempty" jsonschema:"minimum=1"`
	DS int `mapstructure:"dS" json:"dS,omitempty" jsonschema:"minimum=1"`
	// Tuple ratios and feature ratios to sweep.
	TRs []float64 `mapstructure:"TRs" json:"TRs,omitempty"`
	FRs []float64 `mapstructure:"FRs" json:"FRs,omitempty"`
	// OutputMeta is inserted into timing file names when not empty.
	OutputMeta string `mapstructure:"outputMeta" json:"outputMeta,omitempty"`
	// CSV files of a real dataset, relative to the metadata file.
	S  string   `mapstructure:"S" json:"S,omitempty"`
	Ks []string `mapstructure:"Ks" json:"Ks,omitempty" jsonschema_description:"one 0-based foreign key column per file"`
	Rs []string `mapstructure:"Rs" json:"Rs,omitempty"`

	dir string
}

// MetaSchema returns the JSON schema of dataset metadata files.
func MetaSchema() ([]byte, error) {
	reflector := &jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(&Meta{})
	schema.Title = "Dataset metadata"
	b, err := json.MarshalIndent(schema, "", "  ")
	return b, errors.Trace(err)
}

// LoadMeta reads dataset metadata from a JSON file.
func LoadMeta(path string) (*Meta, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Annotatef(err, "read dataset metadata %s", path)
	}
	var meta Meta
	if err := v.Unmarshal(&meta); err != nil {
		return nil, errors.Trace(err)
	}
	meta.dir = filepath.Dir(path)
	if err := meta.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &meta, nil
}

func (meta *Meta) IsSynthesized() bool {
	return meta.Name == Synthesized
}

// Validate checks the fields required by the kind of dataset.
func (meta *Meta) Validate() error {
	if meta.Name == "" {
		return errors.NotValidf("dataset without name")
	}
	if meta.IsSynthesized() {
		if meta.NR <= 0 || meta.DS <= 0 {
			return errors.NotValidf("synthesized dataset of %d×%d", meta.NR, meta.DS)
		}
		if len(meta.TRs) == 0 || len(meta.FRs) == 0 {
			return errors.NotValidf("synthesized dataset without ratios")
		}
		if lo.SomeBy(append(append([]float64{}, meta.TRs...), meta.FRs...), func(v float64) bool { return v <= 0 }) {
			return errors.NotValidf("non-positive ratio in %v and %v", meta.TRs, meta.FRs)
		}
		return nil
	}
	if len(meta.Ks) != len(meta.Rs) {
		return errors.NotValidf("dataset %s with %d key files and %d value files", meta.Name, len(meta.Ks), len(meta.Rs))
	}
	if meta.S == "" && len(meta.Ks) == 0 {
		return errors.NotValidf("dataset %s without files", meta.Name)
	}
	return nil
}

// Ratios returns the tuple and feature ratios to sweep. Real datasets have a
// single configuration.
func (meta *Meta) Ratios() (trs, frs []float64) {
	if meta.IsSynthesized() {
		return meta.TRs, meta.FRs
	}
	return []float64{1}, []float64{1}
}

func (meta *Meta) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(meta.dir, name)
}
