package schnorr

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/spark-core/crypto/group"
	"github.com/vocdoni/spark-core/sparkerr"
)

func TestProveVerifyRoundTrip(t *testing.T) {
	c := qt.New(t)
	generator := group.HashToPoint("schnorr_test generator")
	x := group.HashToScalar("schnorr_test x")
	y := generator.ScalarMult(x)

	proof, err := Prove(Statement{Generator: generator, Y: y}, x)
	c.Assert(err, qt.IsNil)
	c.Assert(Verify(Statement{Generator: generator, Y: y}, proof), qt.IsNil)
}

func TestProveRejectsBadWitness(t *testing.T) {
	c := qt.New(t)
	generator := group.HashToPoint("schnorr_test generator 2")
	y := group.HashToPoint("schnorr_test y 2")
	wrongX := group.HashToScalar("schnorr_test wrong x")

	_, err := Prove(Statement{Generator: generator, Y: y}, wrongX)
	c.Assert(err, qt.ErrorIs, sparkerr.ErrInvalidWitness)
}

func TestVerifyRejectsTamperedResponse(t *testing.T) {
	c := qt.New(t)
	generator := group.HashToPoint("schnorr_test generator 3")
	x := group.HashToScalar("schnorr_test x 3")
	y := generator.ScalarMult(x)

	proof, err := Prove(Statement{Generator: generator, Y: y}, x)
	c.Assert(err, qt.IsNil)

	tampered := *proof
	tampered.T = tampered.T.Add(group.ScalarFromUint64(1))
	c.Assert(Verify(Statement{Generator: generator, Y: y}, &tampered), qt.ErrorIs, sparkerr.ErrVerificationFailed)
}

func TestVerifyRejectsWrongStatement(t *testing.T) {
	c := qt.New(t)
	generator := group.HashToPoint("schnorr_test generator 4")
	x := group.HashToScalar("schnorr_test x 4")
	y := generator.ScalarMult(x)

	proof, err := Prove(Statement{Generator: generator, Y: y}, x)
	c.Assert(err, qt.IsNil)

	otherY := group.HashToPoint("schnorr_test other y")
	c.Assert(Verify(Statement{Generator: generator, Y: otherY}, proof), qt.ErrorIs, sparkerr.ErrVerificationFailed)
}
