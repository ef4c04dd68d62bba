package coin

import (
	"github.com/vocdoni/spark-core/address"
	"github.com/vocdoni/spark-core/crypto/group"
	"github.com/vocdoni/spark-core/log"
	"github.com/vocdoni/spark-core/params"
	"github.com/vocdoni/spark-core/types"
	"github.com/vocdoni/spark-core/util"
)

// Delegation is a re-randomization of (S, C) bound to a caller-chosen id
// (spec §4.9), used to unlink spending from identification. S1Prime and
// C1Prime are the re-randomization secrets; the owner retains them to
// later prove knowledge of the opening inside a StakeTransaction. ID is
// kept as types.HexBytes since delegation identifiers are routinely
// logged and compared by their hex form rather than decoded further.
type Delegation struct {
	ID               types.HexBytes
	S1Prime, C1Prime *group.Scalar
	S1, C1           *group.Point
}

// Delegate binds rec (the output of Recover, carrying s and value) to id.
// A caller with no natural id of its own (e.g. no external transaction
// reference yet) may pass nil; one is then sampled at random.
func Delegate(p params.CoinParameters, fvk *address.FullViewKey, rec *Recovered, id []byte) *Delegation {
	if len(id) == 0 {
		id = util.RandomBytes(16)
	}
	s1p := group.HashToScalar("ser1", id, rec.S.Bytes(), fvk.S1.Bytes(), fvk.S2.Bytes())
	c1p := group.HashToScalar("val1", id, rec.S.Bytes(), fvk.S1.Bytes(), fvk.S2.Bytes())

	s1Point := p.F.ScalarMult(rec.S).Sub(p.H.ScalarMult(s1p)).Add(fvk.D)
	c1Point := p.G.ScalarMult(group.ScalarFromUint64(rec.Value)).Add(p.H.ScalarMult(c1p))

	log.Debugf("coin: delegated coin under id %x", []byte(id))
	return &Delegation{ID: id, S1Prime: s1p, C1Prime: c1p, S1: s1Point, C1: c1Point}
}
