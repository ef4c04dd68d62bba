// Package tagproof implements the tag-correspondence argument (spec
// §4.3): a proof that a point S and a point U share the same pair of
// discrete logarithms (x,y) with respect to (F,G) and (T,G) respectively.
// It relates a coin's serial commitment S to its linkability tag image U
// under a shared representation. No other package in this module calls
// it; StakeTransaction's tag proof uses the modified Chaum proof.
package tagproof

import (
	"fmt"

	"github.com/vocdoni/spark-core/crypto/group"
	"github.com/vocdoni/spark-core/crypto/transcript"
	"github.com/vocdoni/spark-core/sparkerr"
)

// Statement is (F, G, U, context, S, T) with the claim that there exist
// (x,y) such that S = x·F + y·G and U = x·T + y·G.
type Statement struct {
	F, G, U *group.Point
	Context []byte
	S, T    *group.Point
}

// Witness is the pair (x,y) satisfying the statement.
type Witness struct {
	X, Y *group.Scalar
}

// Proof is (A1, A2, t1, t2).
type Proof struct {
	A1, A2 *group.Point
	T1, T2 *group.Scalar
}

// Prove constructs a tag-correspondence proof. Returns
// sparkerr.ErrInvalidWitness (without emitting a proof) if the witness
// does not satisfy the statement.
func Prove(stmt Statement, w Witness) (*Proof, error) {
	if err := checkWitness(stmt, w); err != nil {
		return nil, err
	}
	r, err := group.RandomNonzeroScalar()
	if err != nil {
		return nil, fmt.Errorf("tagproof: sample r: %w", err)
	}
	s, err := group.RandomNonzeroScalar()
	if err != nil {
		return nil, fmt.Errorf("tagproof: sample s: %w", err)
	}
	A1 := stmt.F.ScalarMult(r).Add(stmt.G.ScalarMult(s))
	A2 := stmt.T.ScalarMult(r).Add(stmt.G.ScalarMult(s))

	c := challenge(stmt, A1, A2)
	t1 := c.Mul(w.X).Add(r)
	t2 := c.Mul(w.Y).Add(s)
	return &Proof{A1: A1, A2: A2, T1: t1, T2: t2}, nil
}

func checkWitness(stmt Statement, w Witness) error {
	s := stmt.F.ScalarMult(w.X).Add(stmt.G.ScalarMult(w.Y))
	u := stmt.T.ScalarMult(w.X).Add(stmt.G.ScalarMult(w.Y))
	if !s.Equal(stmt.S) || !u.Equal(stmt.U) {
		return fmt.Errorf("tagproof: witness does not satisfy statement: %w", sparkerr.ErrInvalidWitness)
	}
	return nil
}

// Verify checks both tag-correspondence equations.
func Verify(stmt Statement, proof *Proof) error {
	c := challenge(stmt, proof.A1, proof.A2)

	lhs1 := stmt.F.ScalarMult(proof.T1).Add(stmt.G.ScalarMult(proof.T2))
	rhs1 := proof.A1.Add(stmt.S.ScalarMult(c))
	if !lhs1.Equal(rhs1) {
		return fmt.Errorf("tagproof: first equation: %w", sparkerr.ErrVerificationFailed)
	}

	lhs2 := stmt.T.ScalarMult(proof.T1).Add(stmt.G.ScalarMult(proof.T2))
	rhs2 := proof.A2.Add(stmt.U.ScalarMult(c))
	if !lhs2.Equal(rhs2) {
		return fmt.Errorf("tagproof: second equation: %w", sparkerr.ErrVerificationFailed)
	}
	return nil
}

func challenge(stmt Statement, A1, A2 *group.Point) *group.Scalar {
	tr := transcript.New("Tag correspondence")
	tr.AppendPoints(stmt.F, stmt.G, stmt.U)
	tr.AppendBytes(stmt.Context)
	tr.AppendPoints(stmt.S, stmt.T, A1, A2)
	return tr.Challenge()
}
