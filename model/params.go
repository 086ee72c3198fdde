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

import (
	"reflect"

	"github.com/gorse-io/trinity/common/log"
	"github.com/gorse-io/trinity/config"
	"go.uber.org/zap"
)

/* ParamName */

// ParamName is the type of hyper-parameter names.
type ParamName string

// Predefined hyper-parameter names
const (
	Gamma       ParamName = "Gamma"       // learning rate
	NIterations ParamName = "NIterations" // number of iterations
	NCenters    ParamName = "NCenters"    // number of k-means centers
	NComponents ParamName = "NComponents" // number of factorization components
)

// Params stores hyper-parameters for an algorithm. It is a map between names
// and values. For example, hyper-parameters for linear regression are given by:
//
//	model.Params{
//		model.Gamma:       1e-6,
//		model.NIterations: 20,
//	}
type Params map[ParamName]interface{}

// GetInt gets a integer parameter by name. Returns _default if not exists or type doesn't match.
func (parameters Params) GetInt(name ParamName, _default int) int {
	if val, exist := parameters[name]; exist {
		switch val := val.(type) {
		case int:
			return val
		default:
			log.Logger().Error("type mismatch", zap.String("param", string(name)),
				zap.String("expect", "int"), zap.Stringer("actual", reflect.TypeOf(val)))
		}
	}
	return _default
}

// GetFloat64 gets a float parameter by name. Returns _default if not exists or type doesn't match. The
// type will be converted if given int.
func (parameters Params) GetFloat64(name ParamName, _default float64) float64 {
	if val, exist := parameters[name]; exist {
		switch val := val.(type) {
		case float64:
			return val
		case float32:
			return float64(val)
		case int:
			return float64(val)
		default:
			log.Logger().Error("type mismatch", zap.String("param", string(name)),
				zap.String("expect", "float64"), zap.Stringer("actual", reflect.TypeOf(val)))
		}
	}
	return _default
}

// NewParamsFromConfig collects algorithm hyper-parameters from the configuration.
func NewParamsFromConfig(cfg *config.Config) Params {
	return Params{
		Gamma:       cfg.Algorithm.Gamma,
		NIterations: cfg.Algorithm.Iterations,
		NCenters:    cfg.Algorithm.Centers,
		NComponents: cfg.Algorithm.Components,
	}
}
