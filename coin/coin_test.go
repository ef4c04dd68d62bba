package coin

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/spark-core/address"
	"github.com/vocdoni/spark-core/crypto/group"
	"github.com/vocdoni/spark-core/params"
	"github.com/vocdoni/spark-core/sparkerr"
)

func testSetup(c *qt.C) (params.CoinParameters, *address.SpendKey, *address.PublicAddress) {
	p := params.CoinParameters{
		AddressParameters: params.AddressParameters{
			F:          group.HashToPoint("F_coin_test"),
			G:          group.Base(),
			IndexBytes: 8,
		},
		H:          group.HashToPoint("H_coin_test"),
		U:          group.HashToPoint("U_coin_test"),
		ValueBytes: 8,
		MemoBytes:  32,
	}
	sk, err := address.NewSpendKey(p.AddressParameters)
	c.Assert(err, qt.IsNil)
	addr, err := address.NewPublicAddress(sk.IncomingViewKey(), 7)
	c.Assert(err, qt.IsNil)
	return p, sk, addr
}

func TestStandardCoinRoundTrip(t *testing.T) {
	c := qt.New(t)
	p, sk, addr := testSetup(c)

	coin, _, err := Construct(p, addr, Standard, 12345, "hello", nil)
	c.Assert(err, qt.IsNil)

	ivk := sk.IncomingViewKey()
	id, err := Identify(p, ivk, coin, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(id.Value, qt.Equals, uint64(12345))
	c.Assert(id.Memo, qt.Equals, "hello")
	c.Assert(id.Index, qt.Equals, uint64(7))

	fvk := sk.FullViewKey()
	rec, err := Recover(p, fvk, coin, 0)
	c.Assert(err, qt.IsNil)

	sF := p.F.ScalarMult(rec.S)
	rG := fvk.D
	c.Assert(sF.Add(rG).Equal(coin.S), qt.IsTrue)

	sT := rec.T.ScalarMult(rec.S)
	c.Assert(sT.Add(rG).Equal(p.U), qt.IsTrue)
}

func TestMintCoinRoundTrip(t *testing.T) {
	c := qt.New(t)
	p, sk, addr := testSetup(c)

	coin, _, err := Construct(p, addr, Mint, 0, "", nil)
	c.Assert(err, qt.IsNil)
	c.Assert(coin.RangeProof, qt.IsNil)

	id, err := Identify(p, sk.IncomingViewKey(), coin, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(id.Value, qt.Equals, uint64(0))
	c.Assert(id.Memo, qt.Equals, "")
}

func TestPayoutCoinDeterministic(t *testing.T) {
	c := qt.New(t)
	p, sk, addr := testSetup(c)

	k := group.HashToScalar("payout_k")
	coin, _, err := Construct(p, addr, Payout, 500, "", k)
	c.Assert(err, qt.IsNil)
	c.Assert(coin.Ciphertext, qt.IsNil)
	c.Assert(coin.JanusProof, qt.IsNil)

	id, err := Identify(p, sk.IncomingViewKey(), coin, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(id.Value, qt.Equals, uint64(500))
}

func TestJanusAttackResistance(t *testing.T) {
	c := qt.New(t)
	p, sk, addr := testSetup(c)

	coin, _, err := Construct(p, addr, Standard, 10, "x", nil)
	c.Assert(err, qt.IsNil)

	otherAddr, err := address.NewPublicAddress(sk.IncomingViewKey(), 8)
	c.Assert(err, qt.IsNil)

	tampered := *coin
	tampered.S = coin.S.Sub(addr.Q2).Add(otherAddr.Q2)

	_, err = Identify(p, sk.IncomingViewKey(), &tampered, 0)
	c.Assert(err, qt.ErrorIs, sparkerr.ErrNotMine)
}

func TestIdentifyRejectsWrongViewKey(t *testing.T) {
	c := qt.New(t)
	p, _, addr := testSetup(c)

	coin, _, err := Construct(p, addr, Standard, 1, "m", nil)
	c.Assert(err, qt.IsNil)

	otherSk, err := address.NewSpendKey(p.AddressParameters)
	c.Assert(err, qt.IsNil)

	_, err = Identify(p, otherSk.IncomingViewKey(), coin, 0)
	c.Assert(err, qt.ErrorIs, sparkerr.ErrNotMine)
}

func TestMemoTooLongRejected(t *testing.T) {
	c := qt.New(t)
	p, _, addr := testSetup(c)
	longMemo := make([]byte, p.MemoBytes+1)
	_, _, err := Construct(p, addr, Standard, 1, string(longMemo), nil)
	c.Assert(err, qt.ErrorIs, sparkerr.ErrOutOfRange)
}
