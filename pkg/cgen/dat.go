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
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"io"

	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/circuit"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/field"
)

// MIN_INPUT_HASHMAP_SIZE is the smallest number of entries in the input hash
// map.
const MIN_INPUT_HASHMAP_SIZE uint = 256

// HashEntry is a single entry of the input hash map.  An entry with a zero
// size is empty.
type HashEntry struct {
	Hash     uint64
	SignalId uint64
	Size     uint64
}

// InputHashMapSize determines the number of entries in the input hash map for
// a given number of inputs.  This is always a power of two, and at least twice
// the number of inputs.
func InputHashMapSize(inputs uint) uint {
	size := MIN_INPUT_HASHMAP_SIZE
	//
	for size < 2*inputs {
		size <<= 1
	}
	//
	return size
}

// HashSignalName computes the 64-bit FNV-1a hash used to locate an input signal
// by name at runtime.
func HashSignalName(name string) uint64 {
	h := fnv.New64a()
	// Never fails
	_, _ = h.Write([]byte(name))
	//
	return h.Sum64()
}

// InputHashMap constructs the input hash map of the main component, where
// collisions are resolved by linear probing.
func InputHashMap(p *circuit.Producer) ([]HashEntry, error) {
	var (
		size    = InputHashMapSize(uint(len(p.MainInputList)))
		entries = make([]HashEntry, size)
		mask    = uint64(size - 1)
	)
	//
	for _, input := range p.MainInputList {
		hash := HashSignalName(input.Name)
		pos := hash & mask
		//
		for entries[pos].Size != 0 {
			if entries[pos].Hash == hash {
				return nil, fmt.Errorf("duplicate input signal \"%s\"", input.Name)
			}
			//
			pos = (pos + 1) & mask
		}
		//
		entries[pos] = HashEntry{hash, uint64(input.Offset), uint64(input.Size)}
	}
	//
	return entries, nil
}

// WriteDat writes the data file read by the runtime on start up.  This
// consists of the input hash map, the witness to signal list, the field
// constants (as raw limbs) and the per-template I/O map.  All quantities are
// little endian.
func WriteDat(out io.Writer, p *circuit.Producer, f *field.Field) error {
	var buffer bytes.Buffer
	//
	entries, err := InputHashMap(p)
	if err != nil {
		return err
	}
	// Input hash map
	for _, e := range entries {
		writeUint64s(&buffer, e.Hash, e.SignalId, e.Size)
	}
	// Witness to signal list
	for _, s := range p.WitnessToSignal {
		writeUint64s(&buffer, uint64(s))
	}
	// Field constants
	for i, c := range p.FieldConstants {
		limbs, err := f.Encode(c)
		if err != nil {
			return fmt.Errorf("field constant %d: %w", i, err)
		}
		//
		writeUint64s(&buffer, limbs...)
	}
	// I/O map keys, followed by their definitions.
	keys := p.IOMapKeys()
	//
	for _, k := range keys {
		writeUint32s(&buffer, uint32(k))
	}
	//
	for _, k := range keys {
		defs := p.IOMap[k]
		writeUint32s(&buffer, uint32(len(defs)))
		//
		for _, def := range defs {
			writeUint32s(&buffer, uint32(def.Offset), uint32(len(def.Lengths)))
			//
			for _, l := range def.Lengths {
				writeUint32s(&buffer, uint32(l))
			}
		}
	}
	//
	_, err = out.Write(buffer.Bytes())
	//
	return err
}

func writeUint64s(buffer *bytes.Buffer, words ...uint64) {
	var bytes [8]byte
	//
	for _, w := range words {
		binary.LittleEndian.PutUint64(bytes[:], w)
		buffer.Write(bytes[:])
	}
}

func writeUint32s(buffer *bytes.Buffer, words ...uint32) {
	var bytes [4]byte
	//
	for _, w := range words {
		binary.LittleEndian.PutUint32(bytes[:], w)
		buffer.Write(bytes[:])
	}
}
