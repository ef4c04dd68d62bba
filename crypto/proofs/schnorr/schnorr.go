// Package schnorr implements the Schnorr proof of knowledge of a discrete
// logarithm (spec §4.2). It is treated elsewhere in this module as a
// black-box collaborator with the prove/verify shape described in spec
// §1, used for Janus protection (coin construction) and stake balance
// proofs.
package schnorr

import (
	"fmt"

	"github.com/vocdoni/spark-core/crypto/group"
	"github.com/vocdoni/spark-core/crypto/transcript"
	"github.com/vocdoni/spark-core/sparkerr"
)

// Statement is (generator F', point Y) with the claim Y = x·F' for some x.
type Statement struct {
	Generator *group.Point
	Y         *group.Point
}

// Proof is (A, t): A = r·F', t = r + c·x.
type Proof struct {
	A *group.Point
	T *group.Scalar
}

// Prove builds a proof that the prover knows x such that Y = x·F'. It
// returns sparkerr.ErrInvalidWitness, without emitting a proof, if the
// supplied witness does not satisfy the statement.
func Prove(stmt Statement, x *group.Scalar) (*Proof, error) {
	if !stmt.Generator.ScalarMult(x).Equal(stmt.Y) {
		return nil, fmt.Errorf("schnorr: witness does not satisfy statement: %w", sparkerr.ErrInvalidWitness)
	}
	r, err := group.RandomNonzeroScalar()
	if err != nil {
		return nil, fmt.Errorf("schnorr: sample nonce: %w", err)
	}
	A := stmt.Generator.ScalarMult(r)
	c := challenge(stmt, A)
	t := c.Mul(x).Add(r)
	return &Proof{A: A, T: t}, nil
}

// Verify checks that t·F' = A + c·Y, reconstructing c from the statement
// and A via a fresh transcript identical to the one used in Prove.
func Verify(stmt Statement, proof *Proof) error {
	c := challenge(stmt, proof.A)
	lhs := stmt.Generator.ScalarMult(proof.T)
	rhs := proof.A.Add(stmt.Y.ScalarMult(c))
	if !lhs.Equal(rhs) {
		return fmt.Errorf("schnorr: %w", sparkerr.ErrVerificationFailed)
	}
	return nil
}

func challenge(stmt Statement, A *group.Point) *group.Scalar {
	tr := transcript.New("Schnorr")
	tr.AppendPoints(stmt.Generator, stmt.Y, A)
	return tr.Challenge()
}
