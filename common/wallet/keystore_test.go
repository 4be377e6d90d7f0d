package wallet

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eosbp/bpclaim/common/crypto"
	"github.com/eosbp/bpclaim/common/errors"
)

const (
	testKeyWIF    = "5KQwrPbwdL6PhXujxW37FSSQZ1JiwsST4cqQzDeyXtP79zkvFD3"
	testKeyPublic = "EOS6MRyAjQq8ud7hVNYcfnVPJqcVpscN5So8BhtHuGYqET5GDW5CV"
)

func lightScrypt(t *testing.T) *ScryptParams {
	var k ScryptParams
	require.NoError(t, k.Init())
	k.N = 1 << 10
	return &k
}

func TestKeyStore_RoundTrip(t *testing.T) {
	sk, err := crypto.ParsePrivateKey(testKeyWIF)
	require.NoError(t, err)

	ks, err := encryptKey(sk, []byte("secret"), lightScrypt(t))
	require.NoError(t, err)

	var data KeyStoreData
	require.NoError(t, json.Unmarshal(ks, &data))
	assert.Equal(t, testKeyPublic, data.PublicKey)
	assert.Equal(t, "eos", data.CoinType)
	assert.Equal(t, 3, data.Version)
	assert.NotEmpty(t, data.ID)

	sk2, err := DecryptKeyStore(ks, []byte("secret"))
	require.NoError(t, err)
	assert.Equal(t, sk.Bytes(), sk2.Bytes())

	pk, err := ReadPublicKeyFromKeyStore(ks)
	require.NoError(t, err)
	assert.Equal(t, testKeyPublic, pk.String())
}

func TestKeyStore_WrongPassword(t *testing.T) {
	sk, err := crypto.ParsePrivateKey(testKeyWIF)
	require.NoError(t, err)
	ks, err := encryptKey(sk, []byte("secret"), lightScrypt(t))
	require.NoError(t, err)

	_, err = DecryptKeyStore(ks, []byte("guess"))
	assert.Error(t, err)
	assert.Equal(t, errors.IllegalArgumentError, errors.CodeOf(err))
}

func TestKeyStore_Invalid(t *testing.T) {
	_, err := DecryptKeyStore([]byte("{"), nil)
	assert.Error(t, err)

	_, err = DecryptKeyStore([]byte(`{"coinType":"icx"}`), nil)
	assert.Error(t, err)

	_, err = DecryptKeyStore([]byte(`{"coinType":"eos","crypto":{"cipher":"aes-256-gcm"}}`), nil)
	assert.Equal(t, errors.UnsupportedError, errors.CodeOf(err))
}

func TestKeyStoreFromWallet(t *testing.T) {
	w, err := New()
	require.NoError(t, err)

	ks, err := KeyStoreFromWallet(w, []byte("pw"))
	require.NoError(t, err)

	w2, err := NewFromKeyStore(ks, []byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, w.PublicKey(), w2.PublicKey())
}
