package address

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/spark-core/crypto/group"
	"github.com/vocdoni/spark-core/params"
)

func testParams() params.AddressParameters {
	return params.AddressParameters{
		F:          group.HashToPoint("F_test"),
		G:          group.HashToPoint("G_test"),
		IndexBytes: 8,
	}
}

func TestAddressLookupRoundTrip(t *testing.T) {
	c := qt.New(t)
	p := testParams()
	s1 := group.HashToScalar("s1_test")

	ivk := &IncomingViewKey{Params: p, S1: s1, P2: group.Base()}
	const i = uint64(0x0123456789ABCDEF)

	addr, err := NewPublicAddress(ivk, i)
	c.Assert(err, qt.IsNil)

	got, err := ivk.GetIndex(addr.D)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, i)
}

func TestAddressLookupAllIndices(t *testing.T) {
	c := qt.New(t)
	p := params.AddressParameters{F: group.HashToPoint("F2"), G: group.Base(), IndexBytes: 1}
	sk, err := NewSpendKey(p)
	c.Assert(err, qt.IsNil)
	ivk := sk.IncomingViewKey()

	for i := uint64(0); i < 256; i++ {
		addr, err := NewPublicAddress(ivk, i)
		c.Assert(err, qt.IsNil)
		got, err := ivk.GetIndex(addr.D)
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, i, qt.Commentf("index %d round trip", i))
	}
}

func TestSpendKeyDerivationChain(t *testing.T) {
	c := qt.New(t)
	p := testParams()
	sk, err := NewSpendKey(p)
	c.Assert(err, qt.IsNil)

	fvk := sk.FullViewKey()
	ivk := fvk.IncomingViewKey()

	c.Assert(fvk.D.Equal(group.ScalarBaseMult(sk.R)), qt.IsTrue)
	c.Assert(ivk.S1.Equal(sk.S1), qt.IsTrue)
	c.Assert(ivk.P2.Equal(fvk.P2), qt.IsTrue)
}

func TestGetIndexRejectsWrongWidth(t *testing.T) {
	c := qt.New(t)
	p := testParams()
	ivk := &IncomingViewKey{Params: p, S1: group.HashToScalar("s1"), P2: group.Base()}
	_, err := ivk.GetIndex([]byte{1, 2, 3})
	c.Assert(err, qt.ErrorMatches, ".*shape mismatch.*")
}
