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
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign_InvalidArguments(t *testing.T) {
	key, err := ParsePrivateKey(devKeyWIF)
	require.NoError(t, err)

	_, err = Sign([]byte{1, 2, 3}, key)
	assert.Error(t, err)
	_, err = Sign(SHA256([]byte("x")), nil)
	assert.Error(t, err)
}

func TestSign_RecoverAndVerify(t *testing.T) {
	key, err := ParsePrivateKey(devKeyWIF)
	require.NoError(t, err)
	other, _, err := GenerateKeyPair()
	require.NoError(t, err)

	hash := SHA256([]byte("claimrewards"))
	sig, err := Sign(hash, key)
	require.NoError(t, err)
	assert.Len(t, sig.Bytes(), SignatureLen)

	pub, err := sig.RecoverPublicKey(hash)
	require.NoError(t, err)
	assert.Equal(t, devKeyPublic, pub.String())

	assert.True(t, sig.Verify(hash, key.PublicKey()))
	assert.False(t, sig.Verify(hash, other.PublicKey()))
	assert.False(t, sig.Verify(SHA256([]byte("other")), key.PublicKey()))
}

func TestSignature_StringRoundTrip(t *testing.T) {
	key, err := ParsePrivateKey(devKeyWIF)
	require.NoError(t, err)
	hash := SHA256([]byte("roundtrip"))
	sig, err := Sign(hash, key)
	require.NoError(t, err)

	s := sig.String()
	assert.True(t, strings.HasPrefix(s, "SIG_K1_"))

	parsed, err := ParseSignature(s)
	require.NoError(t, err)
	assert.Equal(t, sig.Bytes(), parsed.Bytes())

	_, err = ParseSignature("SIG_R1_" + s[7:])
	assert.Error(t, err)
	_, err = ParseSignature(s[:len(s)-2])
	assert.Error(t, err)
}

func TestSignature_IsCanonical(t *testing.T) {
	base := make([]byte, SignatureLen)
	base[0] = compactSigMagicOffset
	base[1], base[33] = 0x11, 0x22

	tests := []struct {
		name   string
		modify func(b []byte)
		want   bool
	}{
		{"Canonical", func(b []byte) {}, true},
		{"RHighBit", func(b []byte) { b[1] = 0x80 }, false},
		{"RPadded", func(b []byte) { b[1], b[2] = 0, 0x7f }, false},
		{"RZeroThenHigh", func(b []byte) { b[1], b[2] = 0, 0x80 }, true},
		{"SHighBit", func(b []byte) { b[33] = 0xff }, false},
		{"SPadded", func(b []byte) { b[33], b[34] = 0, 0x01 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := make([]byte, SignatureLen)
			copy(b, base)
			tt.modify(b)
			sig, err := SignatureFromBytes(b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sig.IsCanonical())
		})
	}
}

func TestSign_EventuallyCanonical(t *testing.T) {
	key, err := ParsePrivateKey(devKeyWIF)
	require.NoError(t, err)

	var nonce [4]byte
	found := false
	for i := uint32(0); i < 100 && !found; i++ {
		binary.BigEndian.PutUint32(nonce[:], i)
		sig, err := Sign(SHA256(nonce[:]), key)
		require.NoError(t, err)
		found = sig.IsCanonical()
	}
	assert.True(t, found)
}

func TestSignatureFromBytes_Invalid(t *testing.T) {
	_, err := SignatureFromBytes(make([]byte, 64))
	assert.Error(t, err)
	_, err = SignatureFromBytes(make([]byte, SignatureLen))
	assert.Error(t, err)
}
