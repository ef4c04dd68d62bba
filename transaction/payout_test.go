package transaction

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/spark-core/address"
	"github.com/vocdoni/spark-core/crypto/group"
	"github.com/vocdoni/spark-core/params"
)

func payoutTestSetup(c *qt.C) (params.CoinParameters, *address.PublicAddress) {
	p := params.CoinParameters{
		AddressParameters: params.AddressParameters{
			F:          group.HashToPoint("F_payout_test"),
			G:          group.Base(),
			IndexBytes: 8,
		},
		H:          group.HashToPoint("H_payout_test"),
		U:          group.HashToPoint("U_payout_test"),
		ValueBytes: 8,
		MemoBytes:  16,
	}
	sk, err := address.NewSpendKey(p.AddressParameters)
	c.Assert(err, qt.IsNil)
	addr, err := address.NewPublicAddress(sk.IncomingViewKey(), 3)
	c.Assert(err, qt.IsNil)
	return p, addr
}

func TestPayoutTransactionRoundTrip(t *testing.T) {
	c := qt.New(t)
	p, addr := payoutTestSetup(c)
	k := group.HashToScalar("payout_tx_test k")

	tx, err := ConstructPayout(p, addr, 777, k)
	c.Assert(err, qt.IsNil)
	c.Assert(tx.Verify(p), qt.IsNil)
}

func TestPayoutTransactionRejectsTamperedProof(t *testing.T) {
	c := qt.New(t)
	p, addr := payoutTestSetup(c)
	k := group.HashToScalar("payout_tx_test k2")

	tx, err := ConstructPayout(p, addr, 10, k)
	c.Assert(err, qt.IsNil)

	tampered := *tx
	tamperedPay := *tx.Pay
	tamperedPay.T = tamperedPay.T.Add(group.ScalarFromUint64(1))
	tampered.Pay = &tamperedPay

	c.Assert(tampered.Verify(p), qt.IsNotNil)
}

func TestPayoutTransactionRejectsWrongVariant(t *testing.T) {
	c := qt.New(t)
	p, addr := payoutTestSetup(c)
	k := group.HashToScalar("payout_tx_test k3")

	tx, err := ConstructPayout(p, addr, 10, k)
	c.Assert(err, qt.IsNil)

	tampered := *tx
	tamperedCoin := *tx.Coin
	tamperedCoin.Variant = 1
	tampered.Coin = &tamperedCoin

	c.Assert(tampered.Verify(p), qt.IsNotNil)
}
