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

package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestSetLogger(t *testing.T) {
	for _, debug := range []bool{true, false} {
		path := filepath.Join(t.TempDir(), "trinity.log")
		flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
		AddFlags(flagSet)
		assert.NoError(t, flagSet.Parse([]string{"--log-path", path}))
		SetLogger(flagSet, debug)
		Logger().Info("hello")
		_ = Logger().Sync()
		content, err := os.ReadFile(path)
		assert.NoError(t, err)
		assert.Contains(t, string(content), "hello")
	}
}

func TestCloseLogger(t *testing.T) {
	CloseLogger()
	assert.False(t, Logger().Core().Enabled(zapcore.ErrorLevel))
	assert.True(t, Logger().Core().Enabled(zapcore.FatalLevel))
}
