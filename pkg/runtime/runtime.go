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
package runtime

import (
	"embed"
	"fmt"
	"path"
)

// Support files shared by every field live under common.  The field
// arithmetic (fr.hpp and fr.cpp) is generated per field by internal/generator.
//
//go:embed common m31 koalabear babybear
var files embed.FS

// COMMON_DIR is the embedded directory holding the field independent files.
const COMMON_DIR = "common"

// COMMON lists the support files which do not depend upon the field.
var COMMON = []string{"circom.hpp", "calcwit.hpp", "calcwit.cpp", "main.cpp"}

// FIELD lists the support files implementing the arithmetic of a field.
var FIELD = []string{"fr.hpp", "fr.cpp"}

// File is a support file to be written alongside the generated circuit.
type File struct {
	Name     string
	Contents []byte
}

// HasField determines whether support files exist for a given field.
func HasField(name string) bool {
	if name == COMMON_DIR {
		return false
	}
	//
	_, err := files.ReadDir(name)
	//
	return err == nil
}

// Files returns the support files needed to build a generated circuit called
// name over the given field, in a fixed order.
func Files(name string, field string) ([]File, error) {
	var result []File
	//
	if !HasField(field) {
		return nil, fmt.Errorf("no runtime support for field %s", field)
	}
	//
	for _, f := range COMMON {
		bytes, err := files.ReadFile(path.Join(COMMON_DIR, f))
		if err != nil {
			return nil, err
		}
		//
		result = append(result, File{f, bytes})
	}
	//
	for _, f := range FIELD {
		bytes, err := files.ReadFile(path.Join(field, f))
		if err != nil {
			return nil, err
		}
		//
		result = append(result, File{f, bytes})
	}
	// The makefile is specialised to the name of the circuit.
	makefile, err := files.ReadFile(path.Join(COMMON_DIR, "Makefile"))
	if err != nil {
		return nil, err
	}
	//
	result = append(result, File{"Makefile", append([]byte(fmt.Sprintf("NAME=%s\n", name)), makefile...)})
	//
	return result, nil
}
