// Package group provides the prime-order scalar field and curve point
// arithmetic the Spark proof systems are built on: scalars modulo the
// Ed25519 group order ℓ, curve points, hash-to-scalar/hash-to-point,
// multi-scalar multiplication, a CSPRNG, and the symmetric AEAD/stream
// cipher helpers used by coin encryption.
//
// It wraps filippo.io/edwards25519, the group-arithmetic library that
// backs Go's own crypto/ed25519, the same way the teacher's crypto/ecc
// packages wrap gnark-crypto's curve implementations.
package group

import (
	"crypto/rand"
	"fmt"

	"filippo.io/edwards25519"
)

// Scalar is an integer modulo the Ed25519 group order ℓ.
type Scalar struct {
	inner *edwards25519.Scalar
}

// NewScalar returns the zero scalar.
func NewScalar() *Scalar {
	return &Scalar{inner: edwards25519.NewScalar()}
}

// ScalarFromUniformBytes reduces a 64-byte uniformly random buffer into a
// scalar. Used by RandomScalar and HashToScalar.
func ScalarFromUniformBytes(b [64]byte) (*Scalar, error) {
	s, err := edwards25519.NewScalar().SetUniformBytes(b[:])
	if err != nil {
		return nil, fmt.Errorf("group: set uniform bytes: %w", err)
	}
	return &Scalar{inner: s}, nil
}

// ScalarFromCanonicalBytes decodes a 32-byte little-endian canonical scalar
// encoding.
func ScalarFromCanonicalBytes(b []byte) (*Scalar, error) {
	s, err := edwards25519.NewScalar().SetCanonicalBytes(b)
	if err != nil {
		return nil, fmt.Errorf("group: set canonical bytes: %w", err)
	}
	return &Scalar{inner: s}, nil
}

// ScalarFromUint64 returns the scalar representing the given small integer.
func ScalarFromUint64(v uint64) *Scalar {
	var buf [64]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	s, err := edwards25519.NewScalar().SetUniformBytes(buf[:])
	if err != nil {
		// SetUniformBytes only fails on wrong input length; buf is
		// always 64 bytes so this is unreachable.
		panic(err)
	}
	return &Scalar{inner: s}
}

// RandomScalar samples a fresh, uniformly distributed scalar using the
// process CSPRNG. Every call MUST draw fresh randomness; the caller must
// never reuse a sampled scalar across invocations.
func RandomScalar() (*Scalar, error) {
	var buf [64]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return nil, fmt.Errorf("group: read random bytes: %w", err)
	}
	return ScalarFromUniformBytes(buf)
}

// RandomNonzeroScalar samples a fresh scalar, retrying on the
// negligible-probability event that it samples exactly zero.
func RandomNonzeroScalar() (*Scalar, error) {
	for {
		s, err := RandomScalar()
		if err != nil {
			return nil, err
		}
		if !s.IsZero() {
			return s, nil
		}
	}
}

// Clone returns an independent copy of s.
func (s *Scalar) Clone() *Scalar {
	return &Scalar{inner: edwards25519.NewScalar().Set(s.inner)}
}

// Add returns s + other.
func (s *Scalar) Add(other *Scalar) *Scalar {
	return &Scalar{inner: edwards25519.NewScalar().Add(s.inner, other.inner)}
}

// Sub returns s - other.
func (s *Scalar) Sub(other *Scalar) *Scalar {
	return &Scalar{inner: edwards25519.NewScalar().Subtract(s.inner, other.inner)}
}

// Neg returns -s.
func (s *Scalar) Neg() *Scalar {
	return &Scalar{inner: edwards25519.NewScalar().Negate(s.inner)}
}

// Mul returns s * other.
func (s *Scalar) Mul(other *Scalar) *Scalar {
	return &Scalar{inner: edwards25519.NewScalar().Multiply(s.inner, other.inner)}
}

// MulAdd returns s*x + y.
func (s *Scalar) MulAdd(x, y *Scalar) *Scalar {
	return &Scalar{inner: edwards25519.NewScalar().MultiplyAdd(s.inner, x.inner, y.inner)}
}

// Invert returns s⁻¹. Panics if s is zero, matching the precondition that
// every caller of Invert must already have rejected a zero scalar as an
// invalid witness.
func (s *Scalar) Invert() *Scalar {
	if s.IsZero() {
		panic("group: invert of zero scalar")
	}
	return &Scalar{inner: edwards25519.NewScalar().Invert(s.inner)}
}

// Pow returns s^n for n >= 0, via repeated squaring.
func (s *Scalar) Pow(n uint64) *Scalar {
	result := ScalarFromUint64(1)
	base := s.Clone()
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		n >>= 1
	}
	return result
}

// Equal reports whether s == other in constant time.
func (s *Scalar) Equal(other *Scalar) bool {
	return s.inner.Equal(other.inner) == 1
}

// IsZero reports whether s is the additive identity.
func (s *Scalar) IsZero() bool {
	return s.Equal(NewScalar())
}

// Bytes returns the canonical 32-byte little-endian encoding of s.
func (s *Scalar) Bytes() []byte {
	return s.inner.Bytes()
}

func (s *Scalar) edwards() *edwards25519.Scalar { return s.inner }
