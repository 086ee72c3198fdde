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

/*

Package model provides iterative algorithms written against the algebra operators,
so the same code trains on materialized and normalized matrices.

	* LinearRegression: gradient descent on squared loss.
	* LogisticRegression: gradient descent with the y ⊘ (1 + exp(Xw)) gradient.
	* KMeans: Lloyd's iterations with tie-inclusive assignment.
	* GNMF: Lee-Seung multiplicative updates.

None of them stops early: every fit runs exactly NIterations iterations.
*/
package model
