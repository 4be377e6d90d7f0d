package crypto

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/eosbp/bpclaim/common/errors"
)

const (
	// SignatureLen is the length of [V|R|S] compact signature.
	SignatureLen = 65
	// HashLen is the bytes length of hash for signature
	HashLen = 32

	// V of a compact signature made with a compressed public key is
	// 27 + 4 + recovery id.
	compactSigMagicOffset = 27 + 4
)

// Signature is a compact ECDSA signature with the recovery byte first.
type Signature struct {
	bytes []byte
}

// Sign signs the 32 byte digest. The result may not be canonical, callers
// that need one must check IsCanonical and sign another digest.
func Sign(hash []byte, key *PrivateKey) (*Signature, error) {
	if len(hash) != HashLen {
		return nil, errors.IllegalArgumentError.Errorf("InvalidHashLength(len=%d)", len(hash))
	}
	if key == nil {
		return nil, errors.IllegalArgumentError.New("NilPrivateKey")
	}
	return &Signature{bytes: ecdsa.SignCompact(key.real, hash, true)}, nil
}

// ParseSignature parses a SIG_K1_ string.
func ParseSignature(s string) (*Signature, error) {
	payload, err := decodeWithRipemd(s, prefixSignatureK1, SignatureLen, curveK1)
	if err != nil {
		return nil, err
	}
	return SignatureFromBytes(payload)
}

func SignatureFromBytes(b []byte) (*Signature, error) {
	if len(b) != SignatureLen {
		return nil, errors.IllegalArgumentError.Errorf("InvalidSignatureLength(len=%d)", len(b))
	}
	if b[0] < compactSigMagicOffset || b[0] > compactSigMagicOffset+3 {
		return nil, errors.IllegalArgumentError.Errorf("InvalidRecoveryByte(v=%d)", b[0])
	}
	bs := make([]byte, SignatureLen)
	copy(bs, b)
	return &Signature{bytes: bs}, nil
}

func (sig *Signature) Bytes() []byte {
	return sig.bytes
}

// IsCanonical reports whether both R and S are 32 byte positive integers
// without superfluous leading zero, as the chain requires.
func (sig *Signature) IsCanonical() bool {
	s := sig.bytes
	if len(s) != SignatureLen {
		return false
	}
	return s[1]&0x80 == 0 &&
		!(s[1] == 0 && s[2]&0x80 == 0) &&
		s[33]&0x80 == 0 &&
		!(s[33] == 0 && s[34]&0x80 == 0)
}

func (sig *Signature) String() string {
	return encodeWithRipemd(prefixSignatureK1, sig.bytes, curveK1)
}

// RecoverPublicKey recovers the signer of the digest.
func (sig *Signature) RecoverPublicKey(hash []byte) (*PublicKey, error) {
	if len(hash) != HashLen {
		return nil, errors.IllegalArgumentError.Errorf("InvalidHashLength(len=%d)", len(hash))
	}
	pub, _, err := ecdsa.RecoverCompact(sig.bytes, hash)
	if err != nil {
		return nil, errors.IllegalArgumentError.Wrap(err, "RecoverFailed")
	}
	return &PublicKey{real: pub}, nil
}

// Verify checks the signature was made for the digest by the key.
func (sig *Signature) Verify(hash []byte, key *PublicKey) bool {
	pub, err := sig.RecoverPublicKey(hash)
	if err != nil {
		return false
	}
	return pub.Equal(key)
}
