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
	"testing"

	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/util/assert"
)

func Test_Lookup_01(t *testing.T) {
	f, err := Lookup("m31")
	assert.NoError(t, err)
	assert.Equal(t, "m31", f.Name)
	assert.Equal(t, uint(1), f.Limbs())
}

func Test_Lookup_02(t *testing.T) {
	f, err := Lookup("2147483647")
	assert.NoError(t, err)
	assert.True(t, f == M31)
}

func Test_Lookup_03(t *testing.T) {
	f, err := Lookup("21888242871839275222246405745257275088548364400416034343698204186575808495617")
	assert.NoError(t, err)
	assert.True(t, f == BN128)
	assert.Equal(t, uint(4), f.Limbs())
	assert.False(t, f.Runtime)
}

func Test_Lookup_04(t *testing.T) {
	_, err := Lookup("17")
	assert.Error(t, err)
	//
	_, err = Lookup("nonsense")
	assert.Error(t, err)
}

func Test_Lookup_05(t *testing.T) {
	f, err := Lookup("KoalaBear")
	assert.NoError(t, err)
	assert.Equal(t, "2130706433", f.Modulus.String())
}

func Test_Encode_01(t *testing.T) {
	limbs, err := M31.Encode("2147483650")
	assert.NoError(t, err)
	assert.Equal(t, []uint64{3}, limbs)
}

func Test_Encode_02(t *testing.T) {
	limbs, err := M31.Encode("-1")
	assert.NoError(t, err)
	assert.Equal(t, []uint64{2147483646}, limbs)
}

func Test_Encode_03(t *testing.T) {
	limbs, err := BN128.Encode("18446744073709551617")
	assert.NoError(t, err)
	assert.Equal(t, []uint64{1, 1, 0, 0}, limbs)
}

func Test_Encode_04(t *testing.T) {
	limbs, err := GOLDILOCKS.Encode("18446744069414584322")
	assert.NoError(t, err)
	assert.Equal(t, []uint64{1}, limbs)
}

func Test_Encode_05(t *testing.T) {
	_, err := M31.Encode("12a")
	assert.Error(t, err)
}
