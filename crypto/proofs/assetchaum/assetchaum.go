// Package assetchaum implements the asset-Chaum aggregated equality
// argument (spec §4.4): a proof that a vector of Pedersen-style
// commitments C[0..n) share the same H-coefficient z, without revealing
// z or any of the per-entry (x,y) openings.
package assetchaum

import (
	"fmt"

	"github.com/vocdoni/spark-core/crypto/group"
	"github.com/vocdoni/spark-core/crypto/transcript"
	"github.com/vocdoni/spark-core/sparkerr"
)

// Statement is the generators (F,G,H) and the commitment vector C, with
// len(C) >= 2.
type Statement struct {
	F, G, H *group.Point
	C       []*group.Point
}

// Witness is the per-entry (x,y) vectors and the single shared z such
// that C[i] = x[i]F + y[i]G + zH for every i.
type Witness struct {
	X, Y []*group.Scalar
	Z    *group.Scalar
}

// Proof is (A, B, tx, ty, tz, ux, uy).
type Proof struct {
	A, B       *group.Point
	Tx, Ty, Tz *group.Scalar
	Ux, Uy     *group.Scalar
}

// Prove constructs an asset-Chaum proof. Returns sparkerr.ErrShapeMismatch
// if the statement/witness vectors disagree in length or n < 2, and
// sparkerr.ErrInvalidWitness (without emitting a proof) if the witness
// does not satisfy the statement.
func Prove(stmt Statement, w Witness) (*Proof, error) {
	n := len(stmt.C)
	if n < 2 {
		return nil, fmt.Errorf("assetchaum: need at least 2 commitments: %w", sparkerr.ErrShapeMismatch)
	}
	if len(w.X) != n || len(w.Y) != n {
		return nil, fmt.Errorf("assetchaum: witness vector length mismatch: %w", sparkerr.ErrShapeMismatch)
	}
	if err := checkWitness(stmt, w); err != nil {
		return nil, err
	}

	rx, err := group.RandomNonzeroScalar()
	if err != nil {
		return nil, err
	}
	ry, err := group.RandomNonzeroScalar()
	if err != nil {
		return nil, err
	}
	rz, err := group.RandomNonzeroScalar()
	if err != nil {
		return nil, err
	}
	sx, err := group.RandomNonzeroScalar()
	if err != nil {
		return nil, err
	}
	sy, err := group.RandomNonzeroScalar()
	if err != nil {
		return nil, err
	}

	A := stmt.F.ScalarMult(rx).Add(stmt.G.ScalarMult(ry)).Add(stmt.H.ScalarMult(rz))
	B := stmt.F.ScalarMult(sx).Add(stmt.G.ScalarMult(sy))

	c := challenge(stmt, A, B)

	tx := c.Mul(w.X[0]).Add(rx)
	ty := c.Mul(w.Y[0]).Add(ry)
	tz := c.Mul(w.Z).Add(rz)

	ux := sx.Clone()
	uy := sy.Clone()
	cPow := c.Clone()
	for i := 1; i < n; i++ {
		dx := w.X[i].Sub(w.X[0])
		dy := w.Y[i].Sub(w.Y[0])
		ux = ux.Add(cPow.Mul(dx))
		uy = uy.Add(cPow.Mul(dy))
		cPow = cPow.Mul(c)
	}

	return &Proof{A: A, B: B, Tx: tx, Ty: ty, Tz: tz, Ux: ux, Uy: uy}, nil
}

func checkWitness(stmt Statement, w Witness) error {
	for i, c := range stmt.C {
		expect := stmt.F.ScalarMult(w.X[i]).Add(stmt.G.ScalarMult(w.Y[i])).Add(stmt.H.ScalarMult(w.Z))
		if !expect.Equal(c) {
			return fmt.Errorf("assetchaum: witness does not satisfy entry %d: %w", i, sparkerr.ErrInvalidWitness)
		}
	}
	return nil
}

// Verify checks both asset-Chaum equations.
func Verify(stmt Statement, proof *Proof) error {
	n := len(stmt.C)
	if n < 2 {
		return fmt.Errorf("assetchaum: need at least 2 commitments: %w", sparkerr.ErrShapeMismatch)
	}
	c := challenge(stmt, proof.A, proof.B)

	left1 := stmt.F.ScalarMult(proof.Tx).Add(stmt.G.ScalarMult(proof.Ty)).Add(stmt.H.ScalarMult(proof.Tz))
	right1 := stmt.C[0].ScalarMult(c).Add(proof.A)
	if !left1.Equal(right1) {
		return fmt.Errorf("assetchaum: representation equation: %w", sparkerr.ErrVerificationFailed)
	}

	sum := group.Zero()
	cPow := c.Clone()
	for i := 1; i < n; i++ {
		diff := stmt.C[i].Sub(stmt.C[0])
		sum = sum.Add(diff.ScalarMult(cPow))
		cPow = cPow.Mul(c)
	}
	left2 := stmt.F.ScalarMult(proof.Ux).Add(stmt.G.ScalarMult(proof.Uy))
	right2 := proof.B.Add(sum)
	if !left2.Equal(right2) {
		return fmt.Errorf("assetchaum: aggregated equality equation: %w", sparkerr.ErrVerificationFailed)
	}
	return nil
}

func challenge(stmt Statement, A, B *group.Point) *group.Scalar {
	tr := transcript.New("Asset Chaum")
	tr.AppendPoints(stmt.F, stmt.G, stmt.H)
	tr.AppendPoints(stmt.C...)
	tr.AppendPoints(A, B)
	return tr.Challenge()
}
