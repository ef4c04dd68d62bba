// Package chaum implements the modified Chaum proof (spec §4.5), the
// heart of spend authorization: a simultaneous proof of (a) a Pedersen-style
// representation of each S[i] on generators (F,G,H) and (b) a shared tag
// equation U = x[i]·T[i] + y[i]·G for every row i, binding the same x[i]
// into both.
//
// Challenge-power indexing differs between the single-party statement
// (powers start at c^1, implemented by Prove/Verify) and the threshold
// signing variant (powers start at c^0, implemented by
// ProveMultisigVariant/VerifyMultisigVariant in this package and driven
// end-to-end by package multisig) — this asymmetry is intentional per
// spec §9 and must never be unified.
package chaum

import (
	"fmt"

	"github.com/vocdoni/spark-core/crypto/group"
	"github.com/vocdoni/spark-core/crypto/transcript"
	"github.com/vocdoni/spark-core/sparkerr"
)

// Statement is the generators (F,G,H,U), a context scalar m, and the
// equal-length vectors S, T.
type Statement struct {
	F, G, H, U *group.Point
	M          *group.Scalar
	S, T       []*group.Point
}

// Witness is the equal-length vectors x, y, z satisfying, for every i,
// S[i] = x[i]F + y[i]G + z[i]H and U = x[i]T[i] + y[i]G.
type Witness struct {
	X, Y, Z []*group.Scalar
}

// Proof is (A1, A2, t1, t2, t3).
type Proof struct {
	A1 *group.Point
	A2 []*group.Point
	T1 []*group.Scalar
	T2 *group.Scalar
	T3 *group.Scalar
}

// Prove builds a single-party modified Chaum proof (challenge powers
// starting at c^1).
func Prove(stmt Statement, w Witness) (*Proof, error) {
	return prove(stmt, w, 1)
}

// Verify checks a single-party modified Chaum proof (challenge powers
// starting at c^1).
func Verify(stmt Statement, proof *Proof) error {
	return verify(stmt, proof, 1)
}

// ProveMultisigVariant builds a modified Chaum proof under the multisig
// challenge-power convention (powers starting at c^0), matching
// test_multisig in the reference implementation. Package multisig does
// not call it: it assembles its threshold signatures itself from
// Challenge, and they verify with VerifyMultisigVariant.
func ProveMultisigVariant(stmt Statement, w Witness) (*Proof, error) {
	return prove(stmt, w, 0)
}

// VerifyMultisigVariant checks a modified Chaum proof produced by the
// threshold signer (challenge powers starting at c^0).
func VerifyMultisigVariant(stmt Statement, proof *Proof) error {
	return verify(stmt, proof, 0)
}

func checkShapes(stmt Statement, n int) error {
	if len(stmt.S) != n || len(stmt.T) != n {
		return fmt.Errorf("chaum: statement vector length mismatch: %w", sparkerr.ErrShapeMismatch)
	}
	if n == 0 {
		return fmt.Errorf("chaum: empty statement: %w", sparkerr.ErrShapeMismatch)
	}
	return nil
}

func checkWitness(stmt Statement, w Witness) error {
	for i := range stmt.S {
		expectS := stmt.F.ScalarMult(w.X[i]).Add(stmt.G.ScalarMult(w.Y[i])).Add(stmt.H.ScalarMult(w.Z[i]))
		if !expectS.Equal(stmt.S[i]) {
			return fmt.Errorf("chaum: witness does not satisfy S[%d]: %w", i, sparkerr.ErrInvalidWitness)
		}
		expectU := stmt.T[i].ScalarMult(w.X[i]).Add(stmt.G.ScalarMult(w.Y[i]))
		if !expectU.Equal(stmt.U) {
			return fmt.Errorf("chaum: witness does not satisfy tag equation at %d: %w", i, sparkerr.ErrInvalidWitness)
		}
	}
	return nil
}

func prove(stmt Statement, w Witness, powerOffset int) (*Proof, error) {
	n := len(stmt.S)
	if err := checkShapes(stmt, n); err != nil {
		return nil, err
	}
	if len(w.X) != n || len(w.Y) != n || len(w.Z) != n {
		return nil, fmt.Errorf("chaum: witness vector length mismatch: %w", sparkerr.ErrShapeMismatch)
	}
	if err := checkWitness(stmt, w); err != nil {
		return nil, err
	}

	r := make([]*group.Scalar, n)
	s := make([]*group.Scalar, n)
	for i := 0; i < n; i++ {
		var err error
		r[i], err = group.RandomNonzeroScalar()
		if err != nil {
			return nil, err
		}
		s[i], err = group.RandomNonzeroScalar()
		if err != nil {
			return nil, err
		}
	}
	tNonce, err := group.RandomNonzeroScalar()
	if err != nil {
		return nil, err
	}

	A1 := stmt.H.ScalarMult(tNonce)
	for i := 0; i < n; i++ {
		A1 = A1.Add(stmt.F.ScalarMult(r[i])).Add(stmt.G.ScalarMult(s[i]))
	}
	A2 := make([]*group.Point, n)
	for i := 0; i < n; i++ {
		A2[i] = stmt.T[i].ScalarMult(r[i]).Add(stmt.G.ScalarMult(s[i]))
	}

	c := challenge(stmt, A1, A2)

	t1 := make([]*group.Scalar, n)
	t2 := group.NewScalar()
	t3 := tNonce.Clone()
	for i := 0; i < n; i++ {
		cp := c.Pow(uint64(i + powerOffset))
		t1[i] = r[i].Add(cp.Mul(w.X[i]))
		t2 = t2.Add(s[i]).Add(cp.Mul(w.Y[i]))
		t3 = t3.Add(cp.Mul(w.Z[i]))
	}

	return &Proof{A1: A1, A2: A2, T1: t1, T2: t2, T3: t3}, nil
}

func verify(stmt Statement, proof *Proof, powerOffset int) error {
	n := len(stmt.S)
	if err := checkShapes(stmt, n); err != nil {
		return err
	}
	if len(proof.A2) != n || len(proof.T1) != n {
		return fmt.Errorf("chaum: proof vector length mismatch: %w", sparkerr.ErrShapeMismatch)
	}

	c := challenge(stmt, proof.A1, proof.A2)

	// Equation 1: A1 + Σ c^(i+offset)·S[i] = t2·G + t3·H + Σ t1[i]·F
	left1 := proof.A1.Clone()
	right1 := stmt.G.ScalarMult(proof.T2).Add(stmt.H.ScalarMult(proof.T3))
	for i := 0; i < n; i++ {
		cp := c.Pow(uint64(i + powerOffset))
		left1 = left1.Add(stmt.S[i].ScalarMult(cp))
		right1 = right1.Add(stmt.F.ScalarMult(proof.T1[i]))
	}
	if !left1.Equal(right1) {
		return fmt.Errorf("chaum: representation equation: %w", sparkerr.ErrVerificationFailed)
	}

	// Equation 2: Σ (A2[i] + c^(i+offset)·U) = t2·G + Σ t1[i]·T[i]
	left2 := group.Zero()
	right2 := stmt.G.ScalarMult(proof.T2)
	for i := 0; i < n; i++ {
		cp := c.Pow(uint64(i + powerOffset))
		left2 = left2.Add(proof.A2[i]).Add(stmt.U.ScalarMult(cp))
		right2 = right2.Add(stmt.T[i].ScalarMult(proof.T1[i]))
	}
	if !left2.Equal(right2) {
		return fmt.Errorf("chaum: tag equation: %w", sparkerr.ErrVerificationFailed)
	}
	return nil
}

// Challenge exposes the Fiat–Shamir challenge derivation to package
// multisig, whose cooperative signers must compute the identical value
// that VerifyMultisigVariant will later reconstruct from the finished
// signature.
func Challenge(stmt Statement, A1 *group.Point, A2 []*group.Point) *group.Scalar {
	return challenge(stmt, A1, A2)
}

func challenge(stmt Statement, A1 *group.Point, A2 []*group.Point) *group.Scalar {
	tr := transcript.New("Modified Chaum")
	tr.AppendPoints(stmt.F, stmt.G, stmt.H, stmt.U)
	tr.AppendScalar(stmt.M)
	tr.AppendPoints(stmt.S...)
	tr.AppendPoints(stmt.T...)
	tr.AppendPoint(A1)
	tr.AppendPoints(A2...)
	return tr.Challenge()
}
