// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"path/filepath"
	"testing"

	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/circuit"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/config"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/field"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/util/assert"
)

func Test_Compile_01(t *testing.T) {
	var producer = circuit.Producer{Prime: "babybear"}
	//
	target, opts, err := compileTarget(config.Default(), compileFlags{}, &producer)
	assert.NoError(t, err)
	assert.Equal(t, ".", target.Dir)
	assert.Equal(t, "circuit", target.Name)
	assert.True(t, target.Field == field.BABYBEAR)
	assert.True(t, target.Runtime)
	assert.False(t, target.InputMap)
	assert.Equal(t, config.DEFAULT_MAX_THREADS, opts.MaxThreads)
}

// Flags take precedence over the configuration, which takes precedence over
// the bundle.
func Test_Compile_02(t *testing.T) {
	var (
		producer = circuit.Producer{Prime: "babybear"}
		cfg      = config.Default()
	)
	//
	cfg.Dir = "/work"
	cfg.Output.Dir = "build"
	cfg.Field.Prime = "koalabear"
	cfg.Runtime.MaxThreads = 4
	//
	target, opts, err := compileTarget(cfg, compileFlags{}, &producer)
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join("/work", "build"), target.Dir)
	assert.True(t, target.Field == field.KOALABEAR)
	assert.Equal(t, uint(4), opts.MaxThreads)
	//
	flags := compileFlags{output: "out", name: "mul", prime: "m31", maxThreads: 2, noRuntime: true, inputMap: true}
	target, opts, err = compileTarget(cfg, flags, &producer)
	assert.NoError(t, err)
	assert.Equal(t, "out", target.Dir)
	assert.Equal(t, "mul", target.Name)
	assert.True(t, target.Field == field.M31)
	assert.False(t, target.Runtime)
	assert.True(t, target.InputMap)
	assert.Equal(t, uint(2), opts.MaxThreads)
}

func Test_Compile_03(t *testing.T) {
	var producer circuit.Producer
	//
	_, _, err := compileTarget(config.Default(), compileFlags{}, &producer)
	assert.Error(t, err)
	//
	_, _, err = compileTarget(config.Default(), compileFlags{prime: "p17"}, &producer)
	assert.Error(t, err)
}
