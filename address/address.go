package address

import (
	"fmt"

	"github.com/vocdoni/spark-core/crypto/group"
	"github.com/vocdoni/spark-core/params"
)

// PublicAddress is a subaddress derived at index i: {params, Q0, Q1, Q2}.
// It is public; anyone may send a Coin to it, but only the matching
// IncomingViewKey can recognize it and only the matching FullViewKey (or
// SpendKey) can recover its value.
type PublicAddress struct {
	Params     params.AddressParameters
	Index      uint64
	D          []byte
	Q0, Q1, Q2 *group.Point
}

// NewPublicAddress derives subaddress i of the incoming view key: the
// diversifier d = StreamCipher(H("Spark d", s1), LE(i)). Q0 is the raw
// diversifier-derived generator hash_to_point("Spark div", d); Q1 = s1·Q0
// is its s1-scaled image. Sharing the same base point between Q0 and Q1
// (rather than hashing them under independent labels) is what lets a
// scanner recover K_der = s1·K directly from the published K = k·Q0
// (spec §4.8) without ever seeing Q1 itself, and is what ties a Janus
// proof over Q0 to exactly one diversifier.
func NewPublicAddress(k *IncomingViewKey, i uint64) (*PublicAddress, error) {
	plain, err := encodeIndex(i, k.Params.IndexBytes)
	if err != nil {
		return nil, err
	}
	d, err := group.StreamCipherXOR(diversifierKey(k.S1), plain)
	if err != nil {
		return nil, fmt.Errorf("address: encrypt diversifier: %w", err)
	}
	q0 := group.HashToPoint("Spark div", d)
	q1 := q0.ScalarMult(k.S1)
	var idxBuf [8]byte
	for j := 0; j < 8; j++ {
		idxBuf[j] = byte(i >> (8 * j))
	}
	q2Scalar := group.HashToScalar("Spark Q2", k.S1.Bytes(), idxBuf[:])
	q2 := k.Params.F.ScalarMult(q2Scalar).Add(k.P2)

	return &PublicAddress{Params: k.Params, Index: i, D: d, Q0: q0, Q1: q1, Q2: q2}, nil
}

// q2Scalar recomputes H("Spark Q2", s1, i), the scalar multiplying F in Q2,
// needed by both derivation and recovery.
func q2Scalar(s1 *group.Scalar, i uint64) *group.Scalar {
	var idxBuf [8]byte
	for j := 0; j < 8; j++ {
		idxBuf[j] = byte(i >> (8 * j))
	}
	return group.HashToScalar("Spark Q2", s1.Bytes(), idxBuf[:])
}

// Q2Scalar exports q2Scalar for package coin, which must
// recompute H("Spark Q2", s1, i) during recovery without re-deriving an
// entire PublicAddress.
func Q2Scalar(s1 *group.Scalar, i uint64) *group.Scalar {
	return q2Scalar(s1, i)
}
