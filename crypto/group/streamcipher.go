package group

import (
	"fmt"

	"golang.org/x/crypto/chacha20"
)

// streamCipherNonce is fixed (all-zero). The diversifier key is derived
// once per incoming view key via HashToScalar("Spark d", s1), and every
// subaddress index of that key is encrypted under the same key and nonce,
// and hence the same keystream.
var streamCipherNonce = make([]byte, chacha20.NonceSize)

// StreamCipherXOR encrypts (or, identically, decrypts) data by XORing it
// with a ChaCha20 keystream derived from key. Because XOR with a keystream
// is its own inverse, a single function serves both directions, matching
// the diversifier cipher's self-inverse requirement: encryption and
// decryption under the same key are the same operation.
func StreamCipherXOR(key [32]byte, data []byte) ([]byte, error) {
	c, err := chacha20.NewUnauthenticatedCipher(key[:], streamCipherNonce)
	if err != nil {
		return nil, fmt.Errorf("group: init stream cipher: %w", err)
	}
	out := make([]byte, len(data))
	c.XORKeyStream(out, data)
	return out, nil
}
