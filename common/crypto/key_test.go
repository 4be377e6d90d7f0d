/*
 * Copyright 2022 ICON Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	devKeyWIF    = "5KQwrPbwdL6PhXujxW37FSSQZ1JiwsST4cqQzDeyXtP79zkvFD3"
	devKeyPublic = "EOS6MRyAjQq8ud7hVNYcfnVPJqcVpscN5So8BhtHuGYqET5GDW5CV"
)

func TestParsePrivateKey_WIF(t *testing.T) {
	key, err := ParsePrivateKey(devKeyWIF)
	require.NoError(t, err)
	assert.Equal(t, devKeyWIF, key.String())
	assert.Equal(t, devKeyPublic, key.PublicKey().String())
	assert.Len(t, key.Bytes(), PrivateKeyLen)
}

func TestParsePrivateKey_K1(t *testing.T) {
	key, err := ParsePrivateKey(devKeyWIF)
	require.NoError(t, err)

	k1 := key.StringK1()
	assert.True(t, strings.HasPrefix(k1, "PVT_K1_"))

	key2, err := ParsePrivateKey(k1)
	require.NoError(t, err)
	assert.Equal(t, key.Bytes(), key2.Bytes())
}

func TestParsePrivateKey_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"Empty", ""},
		{"NotBase58", "0OIl"},
		{"BadChecksum", devKeyWIF[:len(devKeyWIF)-1] + "4"},
		{"Short", devKeyWIF[:20]},
		{"BadK1", "PVT_K1_abc"},
		{"UnknownCurve", "PVT_R1_2JrJRQXEagWobhJbHWtP11muTWmJZvV7sF9yfN1Bnw9DqGEVUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePrivateKey(tt.key)
			assert.Error(t, err)
		})
	}
}

func TestPrivateKeyFromBytes_Range(t *testing.T) {
	_, err := PrivateKeyFromBytes(make([]byte, PrivateKeyLen))
	assert.Error(t, err)

	max := make([]byte, PrivateKeyLen)
	for i := range max {
		max[i] = 0xff
	}
	_, err = PrivateKeyFromBytes(max)
	assert.Error(t, err)

	_, err = PrivateKeyFromBytes([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestParsePublicKey(t *testing.T) {
	pub, err := ParsePublicKey(devKeyPublic)
	require.NoError(t, err)
	assert.Equal(t, devKeyPublic, pub.String())

	k1 := pub.StringK1()
	assert.True(t, strings.HasPrefix(k1, "PUB_K1_"))
	pub2, err := ParsePublicKey(k1)
	require.NoError(t, err)
	assert.True(t, pub.Equal(pub2))

	_, err = ParsePublicKey("EOS" + devKeyPublic[3:len(devKeyPublic)-1] + "X")
	assert.Error(t, err)
	_, err = ParsePublicKey("XYZ6MRyAjQq8ud7hVNYcfnVPJqcVpscN5So8BhtHuGYqET5GDW5CV")
	assert.Error(t, err)
}

func TestGenerateKeyPair(t *testing.T) {
	for i := 0; i < 8; i++ {
		priv, pub, err := GenerateKeyPair()
		require.NoError(t, err)
		assert.True(t, pub.Equal(priv.PublicKey()))

		parsed, err := ParsePrivateKey(priv.String())
		require.NoError(t, err)
		assert.Equal(t, priv.Bytes(), parsed.Bytes())

		pub2, err := PublicKeyFromBytes(pub.SerializeUncompressed())
		require.NoError(t, err)
		assert.True(t, pub.Equal(pub2))
	}
}
