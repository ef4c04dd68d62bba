package group

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// AEADEncrypt seals plaintext under key (a 32-byte symmetric key, typically
// derived as HashToScalar("aead", K_der.Bytes()).Bytes()) with the given
// associated data. It returns nonce‖ciphertext, where ciphertext includes
// the Poly1305 tag. golang.org/x/crypto/chacha20poly1305 is the same
// package family (golang.org/x/crypto) the teacher repo already depends
// on, and is the standard AEAD construction for this kind of recipient-data
// encryption.
func AEADEncrypt(key [32]byte, associatedData, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, fmt.Errorf("group: init aead: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("group: read nonce: %w", err)
	}
	ciphertext := aead.Seal(nil, nonce, plaintext, associatedData)
	return append(nonce, ciphertext...), nil
}

// AEADDecrypt opens a nonce‖ciphertext blob produced by AEADEncrypt under
// the same key and associated data. Returns an error (never a panic) on
// any authentication failure — callers use this to detect "not mine"
// during coin identification.
func AEADDecrypt(key [32]byte, associatedData, sealed []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, fmt.Errorf("group: init aead: %w", err)
	}
	if len(sealed) < aead.NonceSize() {
		return nil, fmt.Errorf("group: sealed data shorter than nonce")
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, associatedData)
	if err != nil {
		return nil, fmt.Errorf("group: aead open: %w", err)
	}
	return plaintext, nil
}
