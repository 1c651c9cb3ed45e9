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
package field

import (
	"fmt"
	"math/big"
	"strings"

	bls12_377 "github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	bn254 "github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/field/babybear"
	"github.com/consensys/gnark-crypto/field/goldilocks"
	"github.com/consensys/gnark-crypto/field/koalabear"
)

// Field describes a prime field over which a circuit is defined.
type Field struct {
	// Name of the field (e.g. "m31").
	Name string
	// Modulus of the field.
	Modulus *big.Int
	// Runtime indicates whether field arithmetic support files exist for this
	// field.
	Runtime bool
	// reduce a decimal constant into raw (little-endian) limbs.
	encode func(*Field, *big.Int) []uint64
}

// M31 is the Mersenne prime 2^31 - 1.
var M31 = &Field{"m31", big.NewInt(1<<31 - 1), true, encodeBig}

// KOALABEAR is the prime 2^31 - 2^24 + 1.
var KOALABEAR = &Field{"koalabear", koalabear.Modulus(), true, encodeBig}

// BABYBEAR is the prime 2^31 - 2^27 + 1.
var BABYBEAR = &Field{"babybear", babybear.Modulus(), true, encodeBig}

// GOLDILOCKS is the prime 2^64 - 2^32 + 1.
var GOLDILOCKS = &Field{"goldilocks", goldilocks.Modulus(), false, encodeBig}

// BN128 is the scalar field of the BN254 curve.
var BN128 = &Field{"bn128", bn254.Modulus(), false, encodeBn254}

// BLS12_377 is the scalar field of the BLS12-377 curve.
var BLS12_377 = &Field{"bls12377", bls12_377.Modulus(), false, encodeBls12377}

// FIELDS lists all fields known by name.
var FIELDS = []*Field{M31, KOALABEAR, BABYBEAR, GOLDILOCKS, BN128, BLS12_377}

// Lookup returns the field with the given name, or whose modulus is given in
// decimal.
func Lookup(prime string) (*Field, error) {
	var modulus big.Int
	//
	for _, f := range FIELDS {
		if strings.EqualFold(f.Name, prime) {
			return f, nil
		}
	}
	//
	if _, ok := modulus.SetString(prime, 10); !ok {
		return nil, fmt.Errorf("unknown prime field \"%s\"", prime)
	}
	//
	for _, f := range FIELDS {
		if f.Modulus.Cmp(&modulus) == 0 {
			return f, nil
		}
	}
	//
	return nil, fmt.Errorf("unsupported prime %s", prime)
}

// Limbs returns the number of 64-bit words used to represent an element.
func (p *Field) Limbs() uint {
	return uint((p.Modulus.BitLen() + 63) / 64)
}

// Encode reduces a decimal constant modulo the field's prime, and returns its
// raw little-endian limbs.  Negative constants are mapped to their additive
// inverse.
func (p *Field) Encode(constant string) ([]uint64, error) {
	var value big.Int
	//
	if _, ok := value.SetString(constant, 10); !ok {
		return nil, fmt.Errorf("invalid field constant \"%s\"", constant)
	}
	//
	value.Mod(&value, p.Modulus)
	//
	return p.encode(p, &value), nil
}

func (p *Field) String() string {
	return p.Name
}

func encodeBig(f *Field, value *big.Int) []uint64 {
	var (
		limbs = make([]uint64, f.Limbs())
		mask  = new(big.Int).SetUint64(^uint64(0))
		v     = new(big.Int).Set(value)
		word  big.Int
	)
	//
	for i := range limbs {
		limbs[i] = word.And(v, mask).Uint64()
		v.Rsh(v, 64)
	}
	//
	return limbs
}

func encodeBn254(_ *Field, value *big.Int) []uint64 {
	var e bn254.Element
	//
	e.SetBigInt(value)
	limbs := e.Bits()
	//
	return limbs[:]
}

func encodeBls12377(_ *Field, value *big.Int) []uint64 {
	var e bls12_377.Element
	//
	e.SetBigInt(value)
	limbs := e.Bits()
	//
	return limbs[:]
}
