// Package transaction composes the proof systems and coin algebra into
// verifiable transactions (spec §4.11): PayoutTransaction (a known
// recipient and disclosed value) and StakeTransaction (a hidden real coin
// proven to sit inside a cover set, spending via a modified-Chaum tag
// proof).
package transaction

import (
	"fmt"

	"github.com/vocdoni/spark-core/address"
	"github.com/vocdoni/spark-core/coin"
	"github.com/vocdoni/spark-core/crypto/group"
	"github.com/vocdoni/spark-core/crypto/transcript"
	"github.com/vocdoni/spark-core/log"
	"github.com/vocdoni/spark-core/params"
	"github.com/vocdoni/spark-core/sparkerr"
)

// payProof is a Schnorr-style proof of knowledge of k binding (k, coin,
// address), domain-separated under the "Payout" label (spec §6) rather
// than the generic "Schnorr" label crypto/proofs/schnorr hardcodes.
type payProof struct {
	A *group.Point
	T *group.Scalar
}

func payChallenge(generator, y, a *group.Point) *group.Scalar {
	tr := transcript.New("Payout")
	tr.AppendPoints(generator, y, a)
	return tr.Challenge()
}

func provePay(generator, y *group.Point, k *group.Scalar) (*payProof, error) {
	if !generator.ScalarMult(k).Equal(y) {
		return nil, fmt.Errorf("transaction: payout witness does not satisfy K: %w", sparkerr.ErrInvalidWitness)
	}
	nonce, err := group.RandomNonzeroScalar()
	if err != nil {
		return nil, err
	}
	a := generator.ScalarMult(nonce)
	c := payChallenge(generator, y, a)
	t := c.Mul(k).Add(nonce)
	return &payProof{A: a, T: t}, nil
}

func verifyPay(generator, y *group.Point, proof *payProof) error {
	c := payChallenge(generator, y, proof.A)
	left := generator.ScalarMult(proof.T)
	right := proof.A.Add(y.ScalarMult(c))
	if !left.Equal(right) {
		return fmt.Errorf("transaction: pay proof: %w", sparkerr.ErrVerificationFailed)
	}
	return nil
}

// PayoutTransaction discloses a PAYOUT coin's recipient and value, proven
// via a deterministic k the recipient can reconstruct independently.
type PayoutTransaction struct {
	Coin    *coin.Coin
	Address *address.PublicAddress
	Pay     *payProof
}

// ConstructPayout builds a PayoutTransaction for value sent to addr under
// deterministic scalar k (spec §4.11).
func ConstructPayout(p params.CoinParameters, addr *address.PublicAddress, value uint64, k *group.Scalar) (*PayoutTransaction, error) {
	c, secret, err := coin.Construct(p, addr, coin.Payout, value, "", k)
	if err != nil {
		return nil, fmt.Errorf("transaction: construct payout coin: %w", err)
	}
	pay, err := provePay(addr.Q0, c.K, secret.K)
	if err != nil {
		return nil, fmt.Errorf("transaction: pay proof: %w", err)
	}
	log.Infof("transaction: constructed payout transaction, value=%d", value)
	return &PayoutTransaction{Coin: c, Address: addr, Pay: pay}, nil
}

// Verify re-checks the Pay proof and that value stays within its declared
// byte width (spec §4.11's "re-verify the Pay proof and range of value").
func (tx *PayoutTransaction) Verify(p params.CoinParameters) error {
	if tx.Coin.Variant != coin.Payout {
		return fmt.Errorf("transaction: payout transaction carries a %v coin: %w", tx.Coin.Variant, sparkerr.ErrTypeMismatch)
	}
	if p.ValueBytes < 8 && tx.Coin.Value >= uint64(1)<<(8*p.ValueBytes) {
		return fmt.Errorf("transaction: payout value exceeds declared width: %w", sparkerr.ErrOutOfRange)
	}
	if err := verifyPay(tx.Address.Q0, tx.Coin.K, tx.Pay); err != nil {
		return err
	}
	log.Infof("transaction: verified payout transaction, value=%d", tx.Coin.Value)
	return nil
}
