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
package cgen

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/bucket"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/field"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/util/assert"
)

func Test_Write_01(t *testing.T) {
	var (
		dir    = t.TempDir()
		target = Target{Dir: dir, Name: "multiplier", Field: field.M31, Runtime: true, InputMap: true}
	)
	//
	written, err := WriteCircuit(twoTemplates(false), target, Options{})
	assert.NoError(t, err)
	//
	for _, name := range []string{"multiplier.cpp", "multiplier.dat", "multiplier.inputs.cbor", "circom.hpp",
		"calcwit.hpp", "calcwit.cpp", "main.cpp", "fr.hpp", "fr.cpp", "Makefile"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, "missing %s", name)
	}
	//
	assert.Equal(t, 10, len(written))
	// No temporary files are left behind
	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Equal(t, 10, len(entries))
}

// Nothing is written for a malformed circuit.
func Test_Write_02(t *testing.T) {
	var (
		dir    = filepath.Join(t.TempDir(), "out")
		target = Target{Dir: dir, Name: "bad", Field: field.M31}
		c      = twoTemplates(false)
	)
	//
	c.Templates[0].Body = append(c.Templates[0].Body, &bucket.Load{Address: &bucket.Variable{}, Size: 1})
	//
	written, err := WriteCircuit(c, target, Options{})
	assert.Error(t, err)
	assert.Equal(t, 0, len(written))
	//
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

// Runtime support is only available for some fields.
func Test_Write_03(t *testing.T) {
	var (
		dir    = filepath.Join(t.TempDir(), "out")
		target = Target{Dir: dir, Name: "c", Field: field.BN128, Runtime: true}
	)
	//
	_, err := WriteCircuit(twoTemplates(false), target, Options{})
	assert.Error(t, err)
	//
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

// A failed write leaves an existing file untouched.
func Test_Write_04(t *testing.T) {
	var (
		path    = filepath.Join(t.TempDir(), "file.txt")
		failure = errors.New("failure")
	)
	//
	assert.NoError(t, os.WriteFile(path, []byte("original"), 0o644))
	//
	err := AtomicWrite(path, func(out io.Writer) error {
		_, _ = out.Write([]byte("partial"))
		return failure
	})
	//
	assert.True(t, errors.Is(err, failure))
	//
	contents, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "original", string(contents))
	//
	entries, err := os.ReadDir(filepath.Dir(path))
	assert.NoError(t, err)
	assert.Equal(t, 1, len(entries))
}
