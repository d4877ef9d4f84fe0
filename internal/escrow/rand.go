package escrow

import "crypto/rand"

// ColorSource supplies the optional entropy used to pick the creator's
// color. A nil or empty byte string means no randomness is available and
// the creator defaults to white.
type ColorSource interface {
	Bytes() []byte
}

// CryptoColorSource draws one byte from crypto/rand.
type CryptoColorSource struct{}

func (CryptoColorSource) Bytes() []byte {
	b := make([]byte, 1)
	if _, err := rand.Read(b); err != nil {
		return nil
	}
	return b
}

// FixedColorSource returns a canned byte string; used in tests and for
// deterministic deployments.
type FixedColorSource []byte

func (f FixedColorSource) Bytes() []byte { return []byte(f) }
