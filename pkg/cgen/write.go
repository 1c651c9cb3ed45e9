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
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/circuit"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/field"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/runtime"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/util"
	log "github.com/sirupsen/logrus"
)

// Target describes where (and what) to write for a given circuit.
type Target struct {
	// Dir is the directory into which all files are written.  This is created
	// if it does not already exist.
	Dir string
	// Name of the circuit, which determines the name of the generated files.
	Name string
	// Field over which the circuit is defined.
	Field *field.Field
	// Runtime indicates whether the runtime support files should be written.
	Runtime bool
	// InputMap indicates whether the input map should be written.
	InputMap bool
}

// AtomicWrite writes a file such that, on failure, the file is either left
// unchanged or not created.  Contents are written into a temporary file within
// the same directory, which is then renamed.
func AtomicWrite(path string, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	// Cleanup on failure
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()
	//
	buffered := bufio.NewWriter(tmp)
	//
	if err = write(buffered); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	} else if err = buffered.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	} else if err = tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	} else if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	//
	log.Debugf("written %s", path)
	//
	return nil
}

// WriteCircuit generates the source unit for a given circuit along with its
// data file and (optionally) the runtime support files and input map.  All
// contents are produced before any file is written, such that malformed
// circuits leave no output behind.  The paths of all files written are
// returned.
func WriteCircuit(c *circuit.Circuit, target Target, opts Options) ([]string, error) {
	var (
		written []string
		stats   = util.NewPerfStats()
	)
	//
	files, err := Render(c, target, opts)
	if err != nil {
		return nil, err
	}
	//
	stats.Log("Generating circuit")
	stats = util.NewPerfStats()
	//
	if err := os.MkdirAll(target.Dir, 0o755); err != nil {
		return nil, err
	}
	//
	for _, f := range files {
		var (
			path     = filepath.Join(target.Dir, f.Name)
			contents = f.Contents
		)
		//
		if err := AtomicWrite(path, func(out io.Writer) error {
			_, err := out.Write(contents)
			return err
		}); err != nil {
			return written, err
		}
		//
		written = append(written, path)
	}
	//
	stats.Log("Writing circuit")
	//
	return written, nil
}

// Render produces the contents of every file written for a given circuit, in
// the order they are written.
func Render(c *circuit.Circuit, target Target, opts Options) ([]runtime.File, error) {
	var (
		files  []runtime.File
		source bytes.Buffer
		data   bytes.Buffer
	)
	//
	if err := Generate(c, opts, &source); err != nil {
		return nil, err
	} else if err := WriteDat(&data, &c.Producer, target.Field); err != nil {
		return nil, err
	}
	//
	files = append(files, runtime.File{Name: target.Name + ".cpp", Contents: source.Bytes()},
		runtime.File{Name: target.Name + ".dat", Contents: data.Bytes()})
	//
	if target.InputMap {
		var inputs bytes.Buffer
		//
		if err := WriteInputMap(&inputs, &c.Producer); err != nil {
			return nil, err
		}
		//
		files = append(files, runtime.File{Name: target.Name + ".inputs.cbor", Contents: inputs.Bytes()})
	}
	//
	if target.Runtime {
		support, err := runtime.Files(target.Name, target.Field.Name)
		if err != nil {
			return nil, err
		}
		//
		files = append(files, support...)
	}
	//
	return files, nil
}
