package group

import (
	"crypto/sha512"
	"encoding/binary"
)

// frame canonically encodes a domain label followed by a sequence of
// byte strings as length-prefixed fields, so that no ambiguous
// concatenation of variable-length inputs can collide. Every hash-to-*
// function and the Fiat–Shamir transcript build on this framing.
func frame(label string, elems ...[]byte) []byte {
	buf := make([]byte, 0, 64+32*len(elems))
	buf = appendLenPrefixed(buf, []byte(label))
	for _, e := range elems {
		buf = appendLenPrefixed(buf, e)
	}
	return buf
}

func appendLenPrefixed(buf, data []byte) []byte {
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(data)))
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, data...)
	return buf
}

// HashToScalar derives a uniformly distributed, non-zero scalar from a
// domain label and a sequence of byte strings (typically the Bytes() of
// points/scalars being absorbed). Used both directly (e.g. deriving
// per-address scalars from "Spark Q2") and as the building block for
// transcript challenges.
func HashToScalar(label string, elems ...[]byte) *Scalar {
	counter := byte(0)
	for {
		h := sha512.Sum512(append(frame(label, elems...), counter))
		s, err := ScalarFromUniformBytes(h)
		if err != nil {
			panic(err) // h is always exactly 64 bytes
		}
		if !s.IsZero() {
			return s
		}
		counter++
	}
}

// HashToPoint derives a curve point in the prime-order subgroup from a
// domain label and a sequence of byte strings, via try-and-increment: hash
// until the candidate 32 bytes decode as a valid compressed point, then
// clear the curve's cofactor (8) so the result always lies in the
// subgroup generated by Base. This is the same try-and-increment strategy
// used for generator derivation throughout the retrieval pack (e.g. the
// bn254 Pedersen-commitment generator derivation), adapted to Ed25519's
// compressed-point encoding.
func HashToPoint(label string, elems ...[]byte) *Point {
	base := frame(label, elems...)
	cofactor := ScalarFromUint64(8)
	for counter := byte(0); ; counter++ {
		h := sha512.Sum512(append(base, counter))
		candidate, err := PointFromBytes(h[:32])
		if err != nil {
			continue
		}
		p := candidate.ScalarMult(cofactor)
		if p.IsZero() {
			continue
		}
		return p
	}
}
