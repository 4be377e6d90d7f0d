package module

// Wallet signs digests with the producer's key.
type Wallet interface {
	// Sign returns a 65 bytes compact signature, the recovery byte first.
	Sign(digest []byte) ([]byte, error)
	// PublicKey returns the compressed public key.
	PublicKey() []byte
}
