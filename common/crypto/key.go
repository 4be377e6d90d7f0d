package crypto

import (
	"bytes"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/mr-tron/base58"

	"github.com/eosbp/bpclaim/common/errors"
)

const (
	PrivateKeyLen = 32

	PublicKeyLenCompressed   = 33
	PublicKeyLenUncompressed = 65

	// WIF may carry one extra byte marking a compressed public key.
	wifCompressedFlag = 0x01
)

// PrivateKey is a secp256k1 private key of the K1 curve.
type PrivateKey struct {
	real *secp256k1.PrivateKey
}

// ParsePrivateKey parses the textual private key. Both the legacy WIF form
// and the PVT_K1_ form are accepted.
func ParsePrivateKey(s string) (*PrivateKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.IllegalArgumentError.New("EmptyPrivateKey")
	}
	if strings.HasPrefix(s, "PVT_") {
		payload, err := decodeWithRipemd(s, prefixPrivateK1, PrivateKeyLen, curveK1)
		if err != nil {
			return nil, err
		}
		return PrivateKeyFromBytes(payload)
	}
	return parseWIF(s)
}

func parseWIF(s string) (*PrivateKey, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, errors.IllegalArgumentError.Wrap(err, "InvalidBase58")
	}
	var payload []byte
	switch len(raw) {
	case 1 + PrivateKeyLen + checksumLen:
		payload = raw[:1+PrivateKeyLen]
	case 1 + PrivateKeyLen + 1 + checksumLen:
		if raw[1+PrivateKeyLen] != wifCompressedFlag {
			return nil, errors.IllegalArgumentError.New("InvalidCompressionFlag")
		}
		payload = raw[:1+PrivateKeyLen+1]
	default:
		return nil, errors.IllegalArgumentError.Errorf("InvalidWIFLength(len=%d)", len(raw))
	}
	if payload[0] != wifVersion {
		return nil, errors.IllegalArgumentError.Errorf("InvalidWIFVersion(version=%#x)", payload[0])
	}
	if !bytes.Equal(raw[len(payload):], doubleSHAChecksum(payload)) {
		return nil, errors.IllegalArgumentError.New("ChecksumMismatch")
	}
	return PrivateKeyFromBytes(payload[1 : 1+PrivateKeyLen])
}

// PrivateKeyFromBytes returns a private key for the 32 byte scalar. The
// scalar must be in [1, N-1].
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != PrivateKeyLen {
		return nil, errors.IllegalArgumentError.Errorf("InvalidKeyLength(len=%d)", len(b))
	}
	var s secp256k1.ModNScalar
	if overflow := s.SetByteSlice(b); overflow || s.IsZero() {
		return nil, errors.IllegalArgumentError.New("KeyOutOfRange")
	}
	return &PrivateKey{real: secp256k1.NewPrivateKey(&s)}, nil
}

func (key *PrivateKey) Bytes() []byte {
	return key.real.Serialize()
}

func (key *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{real: key.real.PubKey()}
}

// String returns the legacy WIF form.
func (key *PrivateKey) String() string {
	payload := make([]byte, 0, 1+PrivateKeyLen+checksumLen)
	payload = append(payload, wifVersion)
	payload = append(payload, key.Bytes()...)
	payload = append(payload, doubleSHAChecksum(payload)...)
	return base58.Encode(payload)
}

func (key *PrivateKey) StringK1() string {
	return encodeWithRipemd(prefixPrivateK1, key.Bytes(), curveK1)
}

// PublicKey is a secp256k1 public key.
type PublicKey struct {
	real *secp256k1.PublicKey
}

// ParsePublicKey accepts the legacy EOS prefixed form and the PUB_K1_ form.
func ParsePublicKey(s string) (*PublicKey, error) {
	s = strings.TrimSpace(s)
	var payload []byte
	var err error
	switch {
	case strings.HasPrefix(s, prefixPublicK1):
		payload, err = decodeWithRipemd(s, prefixPublicK1, PublicKeyLenCompressed, curveK1)
	case strings.HasPrefix(s, prefixLegacyPublic):
		payload, err = decodeWithRipemd(s, prefixLegacyPublic, PublicKeyLenCompressed, "")
	default:
		return nil, errors.IllegalArgumentError.Errorf("UnknownPublicKeyFormat(key=%s)", s)
	}
	if err != nil {
		return nil, err
	}
	return PublicKeyFromBytes(payload)
}

// PublicKeyFromBytes parses compressed or uncompressed serialized keys.
func PublicKeyFromBytes(b []byte) (*PublicKey, error) {
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, errors.IllegalArgumentError.Wrap(err, "InvalidPublicKey")
	}
	return &PublicKey{real: pub}, nil
}

func (key *PublicKey) SerializeCompressed() []byte {
	return key.real.SerializeCompressed()
}

func (key *PublicKey) SerializeUncompressed() []byte {
	return key.real.SerializeUncompressed()
}

func (key *PublicKey) Equal(key2 *PublicKey) bool {
	if key == nil || key2 == nil {
		return key == key2
	}
	return key.real.IsEqual(key2.real)
}

// String returns the legacy form, e.g. EOS6MRy...
func (key *PublicKey) String() string {
	return encodeWithRipemd(prefixLegacyPublic, key.SerializeCompressed(), "")
}

func (key *PublicKey) StringK1() string {
	return encodeWithRipemd(prefixPublicK1, key.SerializeCompressed(), curveK1)
}

// GenerateKeyPair generates a private and public key pair.
func GenerateKeyPair() (*PrivateKey, *PublicKey, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, nil, errors.Wrap(err, "fail to generate key")
	}
	key := &PrivateKey{real: priv}
	return key, key.PublicKey(), nil
}
