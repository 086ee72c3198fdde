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

package base

import (
	"bufio"
	"strings"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestReadLines(t *testing.T) {
	text := "1,2,3\n\n\"4,5\",\"6\"\"\",7\n\"8\n9\",10\n"
	var lines []int
	var records [][]string
	err := ReadLines(bufio.NewScanner(strings.NewReader(text)), ',', func(line int, fields []string) error {
		lines = append(lines, line)
		records = append(records, fields)
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 3, 5}, lines)
	assert.Equal(t, [][]string{
		{"1", "2", "3"},
		{"4,5", "6\"", "7"},
		{"8\n9", "10"},
	}, records)
}

func TestReadLines_Error(t *testing.T) {
	err := ReadLines(bufio.NewScanner(strings.NewReader("1\n2\n")), ',', func(line int, fields []string) error {
		if line == 2 {
			return errors.New("bad value")
		}
		return nil
	})
	assert.ErrorContains(t, err, "line 2")
	err = ReadLines(bufio.NewScanner(strings.NewReader("\"1\n")), ',', func(int, []string) error { return nil })
	assert.True(t, errors.Is(err, errors.NotValid))
}
