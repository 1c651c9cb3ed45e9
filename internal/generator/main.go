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
package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/consensys/bavard"
)

const copyrightHolder = "Consensys Software Inc."

//go:generate go run main.go
func main() {
	specs := []fieldSpecs{
		{Name: "m31", Modulus: 1<<31 - 1},
		{Name: "koalabear", Modulus: 1<<31 - 1<<24 + 1},
		{Name: "babybear", Modulus: 1<<31 - 1<<27 + 1},
	}

	for _, spec := range specs {
		cfg, err := spec.config()
		assertNoError(err, "for field \"%s\"", spec.Name)

		for _, file := range []string{"fr.hpp", "fr.cpp"} {
			output := fmt.Sprintf("../../pkg/runtime/%s/%s", spec.Name, file)
			template := fmt.Sprintf("templates/%s.tmpl", file)
			// Outputs are C++, hence must not be run through gofmt / goimports.
			assertNoError(bavard.GenerateFromFiles(output, []string{template}, cfg,
				bavard.Apache2(copyrightHolder, 2025),
				bavard.GeneratedBy("witgen"),
				bavard.Format(false),
				bavard.Import(false),
			), "for field \"%s\"", spec.Name)
		}
	}
}

type fieldSpecs struct {
	Name    string
	Modulus uint32
}

type fieldConfig struct {
	fieldSpecs
	// Bits required to hold an element.
	Bits int
}

// config checks the product of two elements fits within a 64-bit word, on
// which the generated arithmetic relies.
func (f fieldSpecs) config() (*fieldConfig, error) {
	const R = 1 << 32

	if f.Modulus >= R>>1 {
		return nil, fmt.Errorf("modulus must be less than 2³¹")
	} else if f.Modulus < 3 {
		return nil, fmt.Errorf("modulus must be an odd prime")
	}

	bits := 0
	for m := f.Modulus; m != 0; m >>= 1 {
		bits++
	}

	return &fieldConfig{f, bits}, nil
}

func assertNoError(err error, contextAndArgs ...any) {
	if err != nil {
		msg := err.Error()

		if len(contextAndArgs) > 0 {
			allArgs := append(slices.Clone(contextAndArgs[1:]), err)
			msg = fmt.Sprintf(contextAndArgs[0].(string)+": %v", allArgs...)
		}

		fmt.Println(msg)
		os.Exit(1)
	}
}
