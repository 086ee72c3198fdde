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

package model

// Model is the interface for all algorithms.
type Model interface {
	// Set parameters.
	SetParams(params Params)
	// Get parameters.
	GetParams() Params
}

// BaseModel manages hyper-parameters.
type BaseModel struct {
	Params Params // Hyper-parameters
}

// SetParams sets hyper-parameters.
func (model *BaseModel) SetParams(params Params) {
	model.Params = params
}

// GetParams returns all hyper-parameters.
func (model *BaseModel) GetParams() Params {
	return model.Params
}

var (
	_ Model = (*LinearRegression)(nil)
	_ Model = (*LogisticRegression)(nil)
	_ Model = (*KMeans)(nil)
	_ Model = (*GNMF)(nil)
)
