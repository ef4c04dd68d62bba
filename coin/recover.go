package coin

import (
	"github.com/vocdoni/spark-core/address"
	"github.com/vocdoni/spark-core/crypto/group"
	"github.com/vocdoni/spark-core/log"
	"github.com/vocdoni/spark-core/params"
)

// Recovered is the full-view-key recovery of a coin: the serial scalar s
// and the deterministic linkability tag T, the unique nullifier used to
// prevent double-spend.
type Recovered struct {
	Identified
	S *group.Scalar
	T *group.Point
}

// Recover derives the serial scalar and linkability tag of c, requiring
// the FullViewKey (s2 is needed; an IncomingViewKey cannot recover T).
// The tag equation T = s⁻¹·(U−D) uses the fixed global generator U carried
// in p, the same one every modified-Chaum statement in the system binds
// against (spec §4.9).
func Recover(p params.CoinParameters, fvk *address.FullViewKey, c *Coin, lookahead uint64) (*Recovered, error) {
	ivk := fvk.IncomingViewKey()
	id, err := Identify(p, ivk, c, lookahead)
	if err != nil {
		return nil, err
	}

	kDer := c.K.ScalarMult(fvk.S1)
	s := serialScalar(kDer).Add(address.Q2Scalar(fvk.S1, id.Index)).Add(fvk.S2)
	t := p.U.Sub(fvk.D).ScalarMult(s.Invert())

	log.Debugf("coin: recovered %v coin at index %d", c.Variant, id.Index)
	return &Recovered{Identified: *id, S: s, T: t}, nil
}
