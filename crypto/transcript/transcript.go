// Package transcript implements the domain-separated Fiat–Shamir
// transcript every Spark proof system shares (spec §4.1): a transcript is
// initialized with a domain label, absorbs each statement element in a
// canonical, length-prefixed order, and emits a uniformly distributed
// non-zero scalar challenge. Verification MUST reconstruct the challenge
// from identical inputs in identical order, so every proof system below
// builds a fresh Transcript and appends in exactly the same sequence on
// both the proving and verifying side.
package transcript

import (
	"crypto/sha512"
	"encoding/binary"

	"github.com/vocdoni/spark-core/crypto/group"
)

// Transcript is an absorb-only, domain-separated hash state.
type Transcript struct {
	buf       []byte
	challenge int
}

// New starts a fresh transcript under the given domain label (e.g.
// "Modified Chaum", "Asset Chaum", "Tag correspondence").
func New(label string) *Transcript {
	t := &Transcript{}
	t.appendLenPrefixed([]byte(label))
	return t
}

func (t *Transcript) appendLenPrefixed(data []byte) {
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(data)))
	t.buf = append(t.buf, lenBuf[:]...)
	t.buf = append(t.buf, data...)
}

// AppendPoint absorbs a curve point.
func (t *Transcript) AppendPoint(p *group.Point) *Transcript {
	t.appendLenPrefixed(p.Bytes())
	return t
}

// AppendPoints absorbs a vector of curve points in order.
func (t *Transcript) AppendPoints(ps ...*group.Point) *Transcript {
	for _, p := range ps {
		t.AppendPoint(p)
	}
	return t
}

// AppendScalar absorbs a scalar.
func (t *Transcript) AppendScalar(s *group.Scalar) *Transcript {
	t.appendLenPrefixed(s.Bytes())
	return t
}

// AppendScalars absorbs a vector of scalars in order.
func (t *Transcript) AppendScalars(ss ...*group.Scalar) *Transcript {
	for _, s := range ss {
		t.AppendScalar(s)
	}
	return t
}

// AppendBytes absorbs an arbitrary byte string (e.g. a context tag or an
// encoded message).
func (t *Transcript) AppendBytes(b []byte) *Transcript {
	t.appendLenPrefixed(b)
	return t
}

// AppendUint64 absorbs an integer (e.g. a player identifier or index).
func (t *Transcript) AppendUint64(v uint64) *Transcript {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	t.appendLenPrefixed(b[:])
	return t
}

// Challenge derives the next Fiat–Shamir challenge scalar from everything
// absorbed so far. It is non-zero by construction (retried on the
// negligible-probability zero outcome) and is itself absorbed back into
// the transcript, so a second call to Challenge on the same Transcript
// yields an independent value rather than repeating the first.
func (t *Transcript) Challenge() *group.Scalar {
	t.challenge++
	counter := byte(0)
	for {
		input := append(append([]byte{}, t.buf...), byte(t.challenge), counter)
		digest := sha512.Sum512(input)
		s, err := group.ScalarFromUniformBytes(digest)
		if err != nil {
			panic(err) // digest is always 64 bytes
		}
		if !s.IsZero() {
			t.AppendScalar(s)
			return s
		}
		counter++
	}
}
