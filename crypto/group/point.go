package group

import (
	"fmt"

	"filippo.io/edwards25519"
)

// Point is a point on the Ed25519 curve (the full curve, not restricted to
// the prime-order subgroup, except where noted — hash-to-point clears the
// cofactor so that every Point produced by this package lies in the
// prime-order subgroup generated by Base).
type Point struct {
	inner *edwards25519.Point
}

// Zero returns the group identity element Z.
func Zero() *Point {
	return &Point{inner: edwards25519.NewIdentityPoint()}
}

// Base returns the standard Ed25519 base point G.
func Base() *Point {
	return &Point{inner: edwards25519.NewGeneratorPoint()}
}

// PointFromBytes decodes a canonical 32-byte compressed point encoding.
func PointFromBytes(b []byte) (*Point, error) {
	p, err := edwards25519.NewIdentityPoint().SetBytes(b)
	if err != nil {
		return nil, fmt.Errorf("group: decode point: %w", err)
	}
	return &Point{inner: p}, nil
}

// Clone returns an independent copy of p.
func (p *Point) Clone() *Point {
	return &Point{inner: edwards25519.NewIdentityPoint().Set(p.inner)}
}

// Add returns p + other.
func (p *Point) Add(other *Point) *Point {
	return &Point{inner: edwards25519.NewIdentityPoint().Add(p.inner, other.inner)}
}

// Sub returns p - other.
func (p *Point) Sub(other *Point) *Point {
	return &Point{inner: edwards25519.NewIdentityPoint().Subtract(p.inner, other.inner)}
}

// Neg returns -p.
func (p *Point) Neg() *Point {
	return &Point{inner: edwards25519.NewIdentityPoint().Negate(p.inner)}
}

// ScalarMult returns s*p.
func (p *Point) ScalarMult(s *Scalar) *Point {
	return &Point{inner: edwards25519.NewIdentityPoint().ScalarMult(s.inner, p.inner)}
}

// ScalarBaseMult returns s*G.
func ScalarBaseMult(s *Scalar) *Point {
	return &Point{inner: edwards25519.NewIdentityPoint().ScalarBaseMult(s.inner)}
}

// Equal reports whether p == other.
func (p *Point) Equal(other *Point) bool {
	return p.inner.Equal(other.inner) == 1
}

// IsZero reports whether p is the identity element.
func (p *Point) IsZero() bool {
	return p.Equal(Zero())
}

// Bytes returns the canonical 32-byte compressed encoding of p.
func (p *Point) Bytes() []byte {
	return p.inner.Bytes()
}

// MultiExp computes Σ scalars[i]*points[i]. len(scalars) must equal
// len(points); it returns ErrShapeMismatch-wrapped error via the caller's
// own checks — this function panics on mismatched lengths since it is an
// internal helper never exposed to untrusted callers directly.
func MultiExp(scalars []*Scalar, points []*Point) *Point {
	if len(scalars) != len(points) {
		panic("group: MultiExp length mismatch")
	}
	if len(scalars) == 0 {
		return Zero()
	}
	es := make([]*edwards25519.Scalar, len(scalars))
	ep := make([]*edwards25519.Point, len(points))
	for i := range scalars {
		es[i] = scalars[i].inner
		ep[i] = points[i].inner
	}
	return &Point{inner: edwards25519.NewIdentityPoint().VarTimeMultiScalarMult(es, ep)}
}
