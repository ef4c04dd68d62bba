// Package rangeproof is the Bulletproofs+ black box called for out by spec
// §1/§6: "treated as a black box with prove(statement, witness) → π and
// verify([statements], [proofs])". No pack repository targets Bulletproofs+
// over the Ed25519 group, so this package is a minimal local stand-in that
// satisfies the prove/verify shape without implementing the inner-product
// argument itself — callers depend only on this interface, so a real
// Bulletproofs+ engine can be substituted later without touching coin.go.
package rangeproof

import (
	"fmt"

	"github.com/vocdoni/spark-core/crypto/group"
	"github.com/vocdoni/spark-core/crypto/transcript"
	"github.com/vocdoni/spark-core/sparkerr"
)

// Statement is a Pedersen commitment C = value·G + blind·H, asserted to lie
// in [0, 2^bits).
type Statement struct {
	G, H *group.Point
	C    *group.Point
	Bits uint
}

// Witness is the opening of C.
type Witness struct {
	Value uint64
	Blind *group.Scalar
}

// Proof is an opaque range-proof transcript. The stand-in implementation
// below commits to the bit decomposition of Value under fresh per-bit
// blinds and proves, bit by bit, that each commitment opens to 0 or 1 and
// that the bits sum (weighted by powers of two) to the statement's blind
// and value — a direct, un-aggregated analogue of the inner-product
// argument's guarantee, without its logarithmic proof size.
type Proof struct {
	BitCommits []*group.Point
	BitProofs  []bitProof
	Blind      *group.Scalar
}

type bitProof struct {
	A0, A1 *group.Point
	C0, C1 *group.Scalar
	Z0, Z1 *group.Scalar
}

// Prove constructs a range proof that C commits to a Bits-bit value.
// Returns sparkerr.ErrOutOfRange if Value does not fit in Bits bits, and
// sparkerr.ErrInvalidWitness if the witness does not open the statement's
// commitment.
func Prove(stmt Statement, w Witness) (*Proof, error) {
	if stmt.Bits == 0 || stmt.Bits > 64 {
		return nil, fmt.Errorf("rangeproof: unsupported bit width %d: %w", stmt.Bits, sparkerr.ErrShapeMismatch)
	}
	if w.Value >= uint64(1)<<stmt.Bits {
		return nil, fmt.Errorf("rangeproof: value does not fit in %d bits: %w", stmt.Bits, sparkerr.ErrOutOfRange)
	}
	expect := stmt.G.ScalarMult(group.ScalarFromUint64(w.Value)).Add(stmt.H.ScalarMult(w.Blind))
	if !expect.Equal(stmt.C) {
		return nil, fmt.Errorf("rangeproof: witness does not open commitment: %w", sparkerr.ErrInvalidWitness)
	}

	bitBlinds := make([]*group.Scalar, stmt.Bits)
	bitCommits := make([]*group.Point, stmt.Bits)
	bitProofs := make([]bitProof, stmt.Bits)
	sumBlind := group.NewScalar()
	pow := group.ScalarFromUint64(1)
	two := group.ScalarFromUint64(2)

	for i := uint(0); i < stmt.Bits; i++ {
		bit := (w.Value >> i) & 1
		blind, err := group.RandomNonzeroScalar()
		if err != nil {
			return nil, err
		}
		bitBlinds[i] = blind
		bitCommits[i] = stmt.G.ScalarMult(group.ScalarFromUint64(bit)).Add(stmt.H.ScalarMult(blind))
		sumBlind = sumBlind.Add(pow.Mul(blind))

		bp, err := proveBit(stmt, bitCommits[i], bit, blind)
		if err != nil {
			return nil, err
		}
		bitProofs[i] = bp
		pow = pow.Mul(two)
	}

	// The blind carried alongside the per-bit commitments must reconcile
	// with the statement's own blind: w.Blind - Σ 2^i·blind[i] is
	// revealed so Verify can check aggregate consistency without an
	// inner-product argument.
	residual := w.Blind.Sub(sumBlind)
	return &Proof{BitCommits: bitCommits, BitProofs: bitProofs, Blind: residual}, nil
}

// proveBit is a one-of-two Chaum–Pedersen disjunction showing that commit
// opens to 0 or to 1 (the standard ring-signature-style OR proof), grounded
// on the same sigma-protocol discipline as crypto/proofs/schnorr.
func proveBit(stmt Statement, commit *group.Point, bit uint64, blind *group.Scalar) (bitProof, error) {
	tr := transcript.New("Spark range proof bit")
	tr.AppendPoints(stmt.G, stmt.H, commit)

	if bit == 0 {
		k0, err := group.RandomNonzeroScalar()
		if err != nil {
			return bitProof{}, err
		}
		fakeC1, err := group.RandomNonzeroScalar()
		if err != nil {
			return bitProof{}, err
		}
		fakeZ1, err := group.RandomNonzeroScalar()
		if err != nil {
			return bitProof{}, err
		}
		A0 := stmt.H.ScalarMult(k0)
		A1 := stmt.H.ScalarMult(fakeZ1).Sub(commit.Sub(stmt.G).ScalarMult(fakeC1))

		c := tr.AppendPoints(A0, A1).Challenge()
		c0 := c.Sub(fakeC1)
		z0 := k0.Add(c0.Mul(blind))
		return bitProof{A0: A0, A1: A1, C0: c0, C1: fakeC1, Z0: z0, Z1: fakeZ1}, nil
	}

	k1, err := group.RandomNonzeroScalar()
	if err != nil {
		return bitProof{}, err
	}
	fakeC0, err := group.RandomNonzeroScalar()
	if err != nil {
		return bitProof{}, err
	}
	fakeZ0, err := group.RandomNonzeroScalar()
	if err != nil {
		return bitProof{}, err
	}
	A1 := stmt.H.ScalarMult(k1)
	A0 := stmt.H.ScalarMult(fakeZ0).Sub(commit.ScalarMult(fakeC0))

	c := tr.AppendPoints(A0, A1).Challenge()
	c1 := c.Sub(fakeC0)
	z1 := k1.Add(c1.Mul(blind))
	return bitProof{A0: A0, A1: A1, C0: fakeC0, C1: c1, Z0: fakeZ0, Z1: z1}, nil
}

func verifyBit(stmt Statement, commit *group.Point, bp bitProof) error {
	tr := transcript.New("Spark range proof bit")
	tr.AppendPoints(stmt.G, stmt.H, commit)
	c := tr.AppendPoints(bp.A0, bp.A1).Challenge()
	if !c.Equal(bp.C0.Add(bp.C1)) {
		return fmt.Errorf("rangeproof: bit challenge split: %w", sparkerr.ErrVerificationFailed)
	}
	left0 := stmt.H.ScalarMult(bp.Z0)
	right0 := bp.A0.Add(commit.ScalarMult(bp.C0))
	if !left0.Equal(right0) {
		return fmt.Errorf("rangeproof: bit branch 0: %w", sparkerr.ErrVerificationFailed)
	}
	left1 := stmt.H.ScalarMult(bp.Z1)
	right1 := bp.A1.Add(commit.Sub(stmt.G).ScalarMult(bp.C1))
	if !left1.Equal(right1) {
		return fmt.Errorf("rangeproof: bit branch 1: %w", sparkerr.ErrVerificationFailed)
	}
	return nil
}

// Verify checks a single range proof against its statement.
func Verify(stmt Statement, proof *Proof) error {
	if uint(len(proof.BitCommits)) != stmt.Bits || uint(len(proof.BitProofs)) != stmt.Bits {
		return fmt.Errorf("rangeproof: proof shape mismatch: %w", sparkerr.ErrShapeMismatch)
	}
	sum := group.Zero()
	pow := group.ScalarFromUint64(1)
	two := group.ScalarFromUint64(2)
	for i := uint(0); i < stmt.Bits; i++ {
		if err := verifyBit(stmt, proof.BitCommits[i], proof.BitProofs[i]); err != nil {
			return err
		}
		sum = sum.Add(proof.BitCommits[i].ScalarMult(pow))
		pow = pow.Mul(two)
	}
	reconstructed := sum.Add(stmt.H.ScalarMult(proof.Blind))
	if !reconstructed.Equal(stmt.C) {
		return fmt.Errorf("rangeproof: aggregate commitment mismatch: %w", sparkerr.ErrVerificationFailed)
	}
	return nil
}

// VerifyBatch verifies a batch of (statement, proof) pairs, matching the
// spec's verify([statements], [proofs]) black-box shape.
func VerifyBatch(stmts []Statement, proofs []*Proof) error {
	if len(stmts) != len(proofs) {
		return fmt.Errorf("rangeproof: batch length mismatch: %w", sparkerr.ErrShapeMismatch)
	}
	for i := range stmts {
		if err := Verify(stmts[i], proofs[i]); err != nil {
			return fmt.Errorf("rangeproof: batch entry %d: %w", i, err)
		}
	}
	return nil
}
