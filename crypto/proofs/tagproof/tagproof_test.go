package tagproof

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/spark-core/crypto/group"
	"github.com/vocdoni/spark-core/sparkerr"
)

func testStatement() (Statement, Witness) {
	F := group.HashToPoint("tagproof_test F")
	G := group.Base()
	T := group.HashToPoint("tagproof_test T")
	x := group.HashToScalar("tagproof_test x")
	y := group.HashToScalar("tagproof_test y")
	S := F.ScalarMult(x).Add(G.ScalarMult(y))
	U := T.ScalarMult(x).Add(G.ScalarMult(y))
	stmt := Statement{F: F, G: G, U: U, Context: []byte("ctx"), S: S, T: T}
	return stmt, Witness{X: x, Y: y}
}

func TestProveVerifyRoundTrip(t *testing.T) {
	c := qt.New(t)
	stmt, w := testStatement()

	proof, err := Prove(stmt, w)
	c.Assert(err, qt.IsNil)
	c.Assert(Verify(stmt, proof), qt.IsNil)
}

func TestProveRejectsBadWitness(t *testing.T) {
	c := qt.New(t)
	stmt, w := testStatement()
	w.X = group.HashToScalar("tagproof_test wrong x")

	_, err := Prove(stmt, w)
	c.Assert(err, qt.ErrorIs, sparkerr.ErrInvalidWitness)
}

func TestVerifyRejectsTamperedProof(t *testing.T) {
	c := qt.New(t)
	stmt, w := testStatement()

	proof, err := Prove(stmt, w)
	c.Assert(err, qt.IsNil)

	tampered := *proof
	tampered.T1 = tampered.T1.Add(group.ScalarFromUint64(1))
	c.Assert(Verify(stmt, &tampered), qt.ErrorIs, sparkerr.ErrVerificationFailed)
}

func TestVerifyRejectsMismatchedContext(t *testing.T) {
	c := qt.New(t)
	stmt, w := testStatement()

	proof, err := Prove(stmt, w)
	c.Assert(err, qt.IsNil)

	other := stmt
	other.Context = []byte("different")
	c.Assert(Verify(other, proof), qt.ErrorIs, sparkerr.ErrVerificationFailed)
}
