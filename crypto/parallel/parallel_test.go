package parallel

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/spark-core/crypto/group"
	"github.com/vocdoni/spark-core/sparkerr"
)

func testStatement(n, m, realIndex int) (Statement, Witness) {
	H := group.HashToPoint("parallel_test H")
	size := 1
	for i := 0; i < m; i++ {
		size *= n
	}
	blindA := group.HashToScalar("parallel_test blindA")
	blindC := group.HashToScalar("parallel_test blindC")
	keysA := make([]*group.Point, size)
	keysC := make([]*group.Point, size)
	for i := 0; i < size; i++ {
		if i == realIndex {
			keysA[i] = H.ScalarMult(blindA)
			keysC[i] = H.ScalarMult(blindC)
			continue
		}
		keysA[i] = group.HashToPoint("parallel_test decoyA", []byte{byte(i)})
		keysC[i] = group.HashToPoint("parallel_test decoyC", []byte{byte(i)})
	}
	return Statement{N: n, M: m, H: H, KeysA: keysA, KeysC: keysC}, Witness{Index: realIndex, BlindA: blindA, BlindC: blindC}
}

func TestProveVerifyRoundTrip(t *testing.T) {
	c := qt.New(t)
	stmt, w := testStatement(2, 2, 3)

	proof, err := Prove(stmt, w)
	c.Assert(err, qt.IsNil)
	c.Assert(Verify(stmt, proof), qt.IsNil)
}

func TestProveRejectsBadOpeningA(t *testing.T) {
	c := qt.New(t)
	stmt, w := testStatement(2, 2, 0)
	w.BlindA = w.BlindA.Add(group.ScalarFromUint64(1))

	_, err := Prove(stmt, w)
	c.Assert(err, qt.ErrorIs, sparkerr.ErrInvalidWitness)
}

func TestProveRejectsBadOpeningC(t *testing.T) {
	c := qt.New(t)
	stmt, w := testStatement(2, 2, 0)
	w.BlindC = w.BlindC.Add(group.ScalarFromUint64(1))

	_, err := Prove(stmt, w)
	c.Assert(err, qt.ErrorIs, sparkerr.ErrInvalidWitness)
}

func TestProveRejectsIndexOutOfRange(t *testing.T) {
	c := qt.New(t)
	stmt, w := testStatement(2, 2, 0)
	w.Index = 4

	_, err := Prove(stmt, w)
	c.Assert(err, qt.ErrorIs, sparkerr.ErrOutOfRange)
}

func TestVerifyRejectsTamperedResponse(t *testing.T) {
	c := qt.New(t)
	stmt, w := testStatement(3, 1, 1)

	proof, err := Prove(stmt, w)
	c.Assert(err, qt.IsNil)

	tampered := *proof
	responses := make([]*group.Scalar, len(proof.ResponsesA))
	copy(responses, proof.ResponsesA)
	responses[2] = responses[2].Add(group.ScalarFromUint64(1))
	tampered.ResponsesA = responses

	c.Assert(Verify(stmt, &tampered), qt.ErrorIs, sparkerr.ErrVerificationFailed)
}

func TestVerifyRejectsTamperedCResponse(t *testing.T) {
	c := qt.New(t)
	stmt, w := testStatement(3, 1, 1)

	proof, err := Prove(stmt, w)
	c.Assert(err, qt.IsNil)

	tampered := *proof
	responses := make([]*group.Scalar, len(proof.ResponsesC))
	copy(responses, proof.ResponsesC)
	responses[0] = responses[0].Add(group.ScalarFromUint64(1))
	tampered.ResponsesC = responses

	c.Assert(Verify(stmt, &tampered), qt.ErrorIs, sparkerr.ErrVerificationFailed)
}

func TestVerifyRejectsTamperedKey(t *testing.T) {
	c := qt.New(t)
	stmt, w := testStatement(2, 2, 2)

	proof, err := Prove(stmt, w)
	c.Assert(err, qt.IsNil)

	tamperedKeys := make([]*group.Point, len(stmt.KeysA))
	copy(tamperedKeys, stmt.KeysA)
	tamperedKeys[0] = group.HashToPoint("parallel_test tampered key")
	tamperedStmt := stmt
	tamperedStmt.KeysA = tamperedKeys

	c.Assert(Verify(tamperedStmt, proof), qt.ErrorIs, sparkerr.ErrVerificationFailed)
}

func TestVerifyBatch(t *testing.T) {
	c := qt.New(t)
	stmt1, w1 := testStatement(2, 1, 0)
	stmt2, w2 := testStatement(2, 1, 1)

	p1, err := Prove(stmt1, w1)
	c.Assert(err, qt.IsNil)
	p2, err := Prove(stmt2, w2)
	c.Assert(err, qt.IsNil)

	c.Assert(VerifyBatch([]Statement{stmt1, stmt2}, []*Proof{p1, p2}), qt.IsNil)
}
