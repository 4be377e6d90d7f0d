package crypto

import (
	"bytes"
	"crypto/sha256"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ripemd160"

	"github.com/eosbp/bpclaim/common/errors"
)

const (
	checksumLen = 4

	curveK1 = "K1"

	prefixLegacyPublic = "EOS"
	prefixPublicK1     = "PUB_K1_"
	prefixPrivateK1    = "PVT_K1_"
	prefixSignatureK1  = "SIG_K1_"

	wifVersion = 0x80
)

func SHA256(data ...[]byte) []byte {
	h := sha256.New()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

func RIPEMD160(data ...[]byte) []byte {
	h := ripemd160.New()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// ripemdChecksum is used by key and signature strings with a curve suffix.
// Legacy public keys pass an empty suffix.
func ripemdChecksum(payload []byte, suffix string) []byte {
	return RIPEMD160(payload, []byte(suffix))[:checksumLen]
}

// doubleSHAChecksum is the bitcoin WIF checksum.
func doubleSHAChecksum(payload []byte) []byte {
	return SHA256(SHA256(payload))[:checksumLen]
}

func encodeWithRipemd(prefix string, payload []byte, suffix string) string {
	buf := make([]byte, 0, len(payload)+checksumLen)
	buf = append(buf, payload...)
	buf = append(buf, ripemdChecksum(payload, suffix)...)
	return prefix + base58.Encode(buf)
}

func decodeWithRipemd(s, prefix string, size int, suffix string) ([]byte, error) {
	if !strings.HasPrefix(s, prefix) {
		return nil, errors.IllegalArgumentError.Errorf("InvalidPrefix(expected=%s)", prefix)
	}
	raw, err := base58.Decode(s[len(prefix):])
	if err != nil {
		return nil, errors.IllegalArgumentError.Wrap(err, "InvalidBase58")
	}
	if len(raw) != size+checksumLen {
		return nil, errors.IllegalArgumentError.Errorf("InvalidLength(len=%d,expected=%d)", len(raw), size+checksumLen)
	}
	payload := raw[:size]
	if !bytes.Equal(raw[size:], ripemdChecksum(payload, suffix)) {
		return nil, errors.IllegalArgumentError.New("ChecksumMismatch")
	}
	return payload, nil
}
