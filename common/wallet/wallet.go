package wallet

import (
	"github.com/eosbp/bpclaim/common/crypto"
	"github.com/eosbp/bpclaim/module"
)

type softwareWallet struct {
	skey *crypto.PrivateKey
	pkey *crypto.PublicKey
}

func (w *softwareWallet) Sign(digest []byte) ([]byte, error) {
	sig, err := crypto.Sign(digest, w.skey)
	if err != nil {
		return nil, err
	}
	return sig.Bytes(), nil
}

func (w *softwareWallet) PublicKey() []byte {
	return w.pkey.SerializeCompressed()
}

func (w *softwareWallet) String() string {
	return w.pkey.String()
}

func New() (module.Wallet, error) {
	sk, pk, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	return &softwareWallet{
		skey: sk,
		pkey: pk,
	}, nil
}

func NewFromPrivateKey(sk *crypto.PrivateKey) (module.Wallet, error) {
	pk := sk.PublicKey()
	return &softwareWallet{
		skey: sk,
		pkey: pk,
	}, nil
}

// NewFromWIF makes a wallet from a textual private key (WIF or PVT_K1_).
func NewFromWIF(s string) (module.Wallet, error) {
	sk, err := crypto.ParsePrivateKey(s)
	if err != nil {
		return nil, err
	}
	return NewFromPrivateKey(sk)
}

// PublicKeyString returns the legacy EOS form of the wallet key.
func PublicKeyString(w module.Wallet) (string, error) {
	pk, err := crypto.PublicKeyFromBytes(w.PublicKey())
	if err != nil {
		return "", err
	}
	return pk.String(), nil
}
