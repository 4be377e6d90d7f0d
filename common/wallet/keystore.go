package wallet

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"io"

	"github.com/gofrs/uuid"
	"golang.org/x/crypto/scrypt"
	"golang.org/x/crypto/sha3"

	"github.com/eosbp/bpclaim/common"
	"github.com/eosbp/bpclaim/common/crypto"
	"github.com/eosbp/bpclaim/common/errors"
	"github.com/eosbp/bpclaim/common/log"
	"github.com/eosbp/bpclaim/module"
)

const (
	coinTypeEOS     = "eos"
	cipherAES128CTR = "aes-128-ctr"
	kdfScrypt       = "scrypt"
	keyStoreVersion = 3
)

type AES128CTRParams struct {
	IV common.RawHexBytes `json:"iv"`
}

type ScryptParams struct {
	DKLen int                `json:"dklen"`
	N     int                `json:"n"`
	R     int                `json:"r"`
	P     int                `json:"p"`
	Salt  common.RawHexBytes `json:"salt"`
}

func (p *ScryptParams) Init() error {
	salt := make([]byte, 8)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return err
	}
	p.DKLen = 32
	p.P = 1
	p.R = 8
	p.N = 1 << 16
	p.Salt = salt
	return nil
}

func (p *ScryptParams) Key(pw []byte) ([]byte, error) {
	return scrypt.Key(pw, p.Salt.Bytes(), p.N, p.R, p.P, p.DKLen)
}

type CryptoData struct {
	Cipher       string             `json:"cipher"`
	CipherParams json.RawMessage    `json:"cipherparams"`
	CipherText   common.RawHexBytes `json:"ciphertext"`
	KDF          string             `json:"kdf"`
	KDFParams    json.RawMessage    `json:"kdfparams"`
	MAC          common.RawHexBytes `json:"mac"`
}

type KeyStoreData struct {
	PublicKey string     `json:"publicKey"`
	ID        string     `json:"id"`
	Version   int        `json:"version"`
	CoinType  string     `json:"coinType"`
	Crypto    CryptoData `json:"crypto"`
}

func SHA3SumKeccak256(data ...[]byte) []byte {
	s := sha3.NewLegacyKeccak256()
	for _, d := range data {
		s.Write(d)
	}
	return s.Sum([]byte{})
}

func EncryptKeyAsKeyStore(s *crypto.PrivateKey, pw []byte) ([]byte, error) {
	var k ScryptParams
	if err := k.Init(); err != nil {
		return nil, err
	}
	return encryptKey(s, pw, &k)
}

func encryptKey(s *crypto.PrivateKey, pw []byte, k *ScryptParams) ([]byte, error) {
	var ks KeyStoreData
	var c AES128CTRParams

	key, err := k.Key(pw)
	if err != nil {
		return nil, errors.Wrap(err, "fail to derive key")
	}
	ks.Crypto.KDF = kdfScrypt
	ks.Crypto.KDFParams, err = json.Marshal(k)
	if err != nil {
		return nil, err
	}

	b, err := aes.NewCipher(key[0:16])
	if err != nil {
		return nil, err
	}
	c.IV = make([]byte, b.BlockSize())
	if _, err = io.ReadFull(rand.Reader, c.IV); err != nil {
		return nil, err
	}
	secret := s.Bytes()
	cipherText := make([]byte, len(secret))
	enc := cipher.NewCTR(b, c.IV)
	enc.XORKeyStream(cipherText, secret)

	ks.Crypto.Cipher = cipherAES128CTR
	ks.Crypto.CipherParams, err = json.Marshal(&c)
	if err != nil {
		return nil, err
	}
	ks.Crypto.CipherText = cipherText
	ks.Crypto.MAC = SHA3SumKeccak256(key[16:32], cipherText)
	ks.Version = keyStoreVersion
	ks.CoinType = coinTypeEOS
	ks.ID = uuid.Must(uuid.NewV4()).String()
	ks.PublicKey = s.PublicKey().String()

	return json.Marshal(&ks)
}

func parseKeyStore(data []byte) (*KeyStoreData, error) {
	var ksData KeyStoreData
	if err := json.Unmarshal(data, &ksData); err != nil {
		return nil, errors.IllegalArgumentError.Wrap(err, "InvalidKeyStore")
	}
	if ksData.CoinType != coinTypeEOS {
		return nil, errors.IllegalArgumentError.Errorf("InvalidCoinType(coin=%s)", ksData.CoinType)
	}
	return &ksData, nil
}

func DecryptKeyStore(data, pw []byte) (*crypto.PrivateKey, error) {
	ksData, err := parseKeyStore(data)
	if err != nil {
		return nil, err
	}

	if ksData.Crypto.Cipher != cipherAES128CTR {
		return nil, errors.UnsupportedError.Errorf("UnsupportedCipher(cipher=%s)",
			ksData.Crypto.Cipher)
	}
	var cipherParams AES128CTRParams
	if err := json.Unmarshal(ksData.Crypto.CipherParams, &cipherParams); err != nil {
		return nil, errors.IllegalArgumentError.Wrap(err, "InvalidCipherParams")
	}

	if ksData.Crypto.KDF != kdfScrypt {
		return nil, errors.UnsupportedError.Errorf("UnsupportedKDF(kdf=%s)", ksData.Crypto.KDF)
	}
	var kdfParams ScryptParams
	if err := json.Unmarshal(ksData.Crypto.KDFParams, &kdfParams); err != nil {
		return nil, errors.IllegalArgumentError.Wrap(err, "InvalidKDFParams")
	}

	key, err := kdfParams.Key(pw)
	if err != nil {
		return nil, errors.IllegalArgumentError.Wrap(err, "InvalidKDFParams")
	}

	cipheredBytes := ksData.Crypto.CipherText.Bytes()
	mac := SHA3SumKeccak256(key[16:32], cipheredBytes)
	if !bytes.Equal(mac, ksData.Crypto.MAC.Bytes()) {
		return nil, errors.IllegalArgumentError.New("InvalidPassword")
	}

	block, err := aes.NewCipher(key[0:16])
	if err != nil {
		return nil, err
	}

	secretBytes := make([]byte, len(cipheredBytes))
	stream := cipher.NewCTR(block, cipherParams.IV.Bytes())
	stream.XORKeyStream(secretBytes, cipheredBytes)

	secret, err := crypto.PrivateKeyFromBytes(secretBytes)
	if err != nil {
		return nil, err
	}
	if public := secret.PublicKey().String(); public != ksData.PublicKey {
		log.Warnf("Recovered public key %s != keyStore public key %s",
			public, ksData.PublicKey)
	}
	return secret, nil
}

// ReadPublicKeyFromKeyStore returns the public key recorded in the keystore
// without decrypting it.
func ReadPublicKeyFromKeyStore(data []byte) (*crypto.PublicKey, error) {
	ksData, err := parseKeyStore(data)
	if err != nil {
		return nil, err
	}
	return crypto.ParsePublicKey(ksData.PublicKey)
}

func NewFromKeyStore(data, pw []byte) (module.Wallet, error) {
	secret, err := DecryptKeyStore(data, pw)
	if err != nil {
		return nil, err
	}
	return NewFromPrivateKey(secret)
}

func KeyStoreFromWallet(w module.Wallet, pw []byte) ([]byte, error) {
	s, ok := w.(*softwareWallet)
	if ok {
		return EncryptKeyAsKeyStore(s.skey, pw)
	} else {
		return nil, errors.UnsupportedError.New("NotSoftwareWallet")
	}
}
