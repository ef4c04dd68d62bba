package chaum

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/spark-core/crypto/group"
	"github.com/vocdoni/spark-core/sparkerr"
)

func testStatement(w int) (Statement, Witness) {
	F := group.HashToPoint("chaum_test F")
	G := group.Base()
	H := group.HashToPoint("chaum_test H")
	U := group.HashToPoint("chaum_test U")
	m := group.HashToScalar("chaum_test m")

	y := group.HashToScalar("chaum_test y")
	x := make([]*group.Scalar, w)
	z := make([]*group.Scalar, w)
	S := make([]*group.Point, w)
	T := make([]*group.Point, w)
	for i := 0; i < w; i++ {
		x[i] = group.HashToScalar("chaum_test x", []byte{byte(i)})
		z[i] = group.HashToScalar("chaum_test z", []byte{byte(i)})
		T[i] = U.Sub(G.ScalarMult(y)).ScalarMult(x[i].Invert())
		S[i] = F.ScalarMult(x[i]).Add(G.ScalarMult(y)).Add(H.ScalarMult(z[i]))
	}
	ySlice := make([]*group.Scalar, w)
	for i := range ySlice {
		ySlice[i] = y.Clone()
	}
	return Statement{F: F, G: G, H: H, U: U, M: m, S: S, T: T}, Witness{X: x, Y: ySlice, Z: z}
}

func TestSinglePartyProveVerifyRoundTrip(t *testing.T) {
	c := qt.New(t)
	stmt, w := testStatement(3)

	proof, err := Prove(stmt, w)
	c.Assert(err, qt.IsNil)
	c.Assert(Verify(stmt, proof), qt.IsNil)
}

func TestMultisigVariantProveVerifyRoundTrip(t *testing.T) {
	c := qt.New(t)
	stmt, w := testStatement(2)

	proof, err := ProveMultisigVariant(stmt, w)
	c.Assert(err, qt.IsNil)
	c.Assert(VerifyMultisigVariant(stmt, proof), qt.IsNil)
}

func TestVariantsAreNotInterchangeable(t *testing.T) {
	c := qt.New(t)
	stmt, w := testStatement(3)

	proof, err := Prove(stmt, w)
	c.Assert(err, qt.IsNil)
	c.Assert(VerifyMultisigVariant(stmt, proof), qt.ErrorIs, sparkerr.ErrVerificationFailed)
}

func TestProveRejectsBadWitness(t *testing.T) {
	c := qt.New(t)
	stmt, w := testStatement(2)
	w.Z[0] = w.Z[0].Add(group.ScalarFromUint64(1))

	_, err := Prove(stmt, w)
	c.Assert(err, qt.ErrorIs, sparkerr.ErrInvalidWitness)
}

func TestVerifyRejectsTamperedProof(t *testing.T) {
	c := qt.New(t)
	stmt, w := testStatement(2)

	proof, err := Prove(stmt, w)
	c.Assert(err, qt.IsNil)

	tampered := *proof
	tampered.T2 = tampered.T2.Add(group.ScalarFromUint64(1))
	c.Assert(Verify(stmt, &tampered), qt.ErrorIs, sparkerr.ErrVerificationFailed)
}

func TestProveRejectsShapeMismatch(t *testing.T) {
	c := qt.New(t)
	stmt, w := testStatement(2)
	stmt.T = stmt.T[:1]

	_, err := Prove(stmt, w)
	c.Assert(err, qt.ErrorIs, sparkerr.ErrShapeMismatch)
}
