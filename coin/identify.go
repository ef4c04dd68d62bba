package coin

import (
	"fmt"

	"github.com/vocdoni/spark-core/address"
	"github.com/vocdoni/spark-core/crypto/group"
	"github.com/vocdoni/spark-core/crypto/proofs/schnorr"
	"github.com/vocdoni/spark-core/crypto/rangeproof"
	"github.com/vocdoni/spark-core/params"
	"github.com/vocdoni/spark-core/sparkerr"
)

// DefaultLookaheadWindow bounds how many subaddress indices Identify will
// scan looking for a Q2 match before giving up (spec §9's original_source/
// "diversifier lookahead window").
const DefaultLookaheadWindow = 1000

// Identified is the plaintext recovered from a successful Identify call.
type Identified struct {
	Index uint64
	D     []byte
	Value uint64
	Memo  string
}

// Identify attempts to recognize c as addressed to ivk, scanning subaddress
// indices [0, lookahead). It returns sparkerr.ErrNotMine — a fast,
// expected negative rather than a logged failure — on any mismatch: view
// tag, Q2 lookup miss, Janus proof failure, AEAD authentication failure,
// or value-commitment mismatch.
func Identify(p params.CoinParameters, ivk *address.IncomingViewKey, c *Coin, lookahead uint64) (*Identified, error) {
	if lookahead == 0 {
		lookahead = DefaultLookaheadWindow
	}
	kDer := c.K.ScalarMult(ivk.S1)

	if c.Variant != Payout && viewTag(kDer) != c.ViewTag {
		return nil, sparkerr.ErrNotMine
	}

	q2Candidate := c.S.Sub(p.F.ScalarMult(serialScalar(kDer)))

	var foundIndex uint64
	found := false
	for i := uint64(0); i < lookahead; i++ {
		expect := p.F.ScalarMult(address.Q2Scalar(ivk.S1, i)).Add(ivk.P2)
		if expect.Equal(q2Candidate) {
			foundIndex = i
			found = true
			break
		}
	}
	if !found {
		return nil, sparkerr.ErrNotMine
	}

	plain, err := address.EncodeIndex(foundIndex, ivk.Params.IndexBytes)
	if err != nil {
		return nil, sparkerr.ErrNotMine
	}
	d, err := group.StreamCipherXOR(address.DiversifierKey(ivk.S1), plain)
	if err != nil {
		return nil, sparkerr.ErrNotMine
	}

	if c.Variant == Standard || c.Variant == Mint {
		q0 := group.HashToPoint("Spark div", d)
		if err := schnorr.Verify(schnorr.Statement{Generator: q0, Y: c.K}, c.JanusProof); err != nil {
			return nil, sparkerr.ErrNotMine
		}
	}

	result := &Identified{Index: foundIndex, D: d}

	switch c.Variant {
	case Standard:
		plain, err := group.AEADDecrypt(aeadKey(kDer), recipientAD(c.Variant), c.Ciphertext)
		if err != nil {
			return nil, sparkerr.ErrNotMine
		}
		if len(plain) < p.ValueBytes {
			return nil, sparkerr.ErrNotMine
		}
		value := decodeValue(plain[:p.ValueBytes])
		memo := unpadMemo(plain[p.ValueBytes:])
		expectC := p.G.ScalarMult(group.ScalarFromUint64(value)).Add(p.H.ScalarMult(valueScalar(kDer)))
		if !expectC.Equal(c.C) {
			return nil, sparkerr.ErrNotMine
		}
		if c.RangeProof == nil {
			return nil, sparkerr.ErrNotMine
		}
		if err := rangeproof.Verify(rangeproof.Statement{G: p.G, H: p.H, C: c.C, Bits: uint(8 * p.ValueBytes)}, c.RangeProof); err != nil {
			return nil, sparkerr.ErrNotMine
		}
		result.Value, result.Memo = value, memo

	case Mint:
		memoBytes, err := group.AEADDecrypt(aeadKey(kDer), recipientAD(c.Variant), c.Ciphertext)
		if err != nil {
			return nil, sparkerr.ErrNotMine
		}
		expectC := p.G.ScalarMult(group.ScalarFromUint64(c.Value)).Add(p.H.ScalarMult(valueScalar(kDer)))
		if !expectC.Equal(c.C) {
			return nil, sparkerr.ErrNotMine
		}
		result.Value, result.Memo = c.Value, unpadMemo(memoBytes)

	case Payout:
		expectC := p.G.ScalarMult(group.ScalarFromUint64(c.Value)).Add(p.H.ScalarMult(valueScalar(kDer)))
		if !expectC.Equal(c.C) {
			return nil, sparkerr.ErrNotMine
		}
		result.Value = c.Value

	default:
		return nil, fmt.Errorf("coin: unknown variant %v: %w", c.Variant, sparkerr.ErrTypeMismatch)
	}

	return result, nil
}
