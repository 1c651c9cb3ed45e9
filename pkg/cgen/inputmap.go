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
	"io"
	"slices"

	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/circuit"
	"github.com/fxamacker/cbor/v2"
)

// InputMap returns the top-level input signals of the main component ordered
// by their signal offset.
func InputMap(p *circuit.Producer) []circuit.InputSignal {
	inputs := slices.Clone(p.MainInputList)
	//
	slices.SortStableFunc(inputs, func(l, r circuit.InputSignal) int {
		switch {
		case l.Offset < r.Offset:
			return -1
		case l.Offset > r.Offset:
			return 1
		default:
			return 0
		}
	})
	//
	return inputs
}

// WriteInputMap writes the input map of the main component using canonical
// CBOR, such that identical circuits give identical bytes.
func WriteInputMap(out io.Writer, p *circuit.Producer) error {
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return err
	}
	//
	bytes, err := mode.Marshal(InputMap(p))
	if err != nil {
		return err
	}
	//
	_, err = out.Write(bytes)
	//
	return err
}

// ReadInputMap decodes an input map previously written by WriteInputMap.
func ReadInputMap(data []byte) ([]circuit.InputSignal, error) {
	var inputs []circuit.InputSignal
	//
	if err := cbor.Unmarshal(data, &inputs); err != nil {
		return nil, err
	}
	//
	return inputs, nil
}
