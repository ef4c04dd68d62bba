package multisig

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/spark-core/crypto/group"
	"github.com/vocdoni/spark-core/crypto/proofs/chaum"
)

func runDKG(c *qt.C, n, t int) ([]*Player, map[int][]*group.Point) {
	players := make([]*Player, n)
	for i := 0; i < n; i++ {
		p, err := NewPlayer(i+1, t, n)
		c.Assert(err, qt.IsNil)
		players[i] = p
	}

	pkgs := make([]*Round1Package, n)
	for i, p := range players {
		pkg, err := p.Round1()
		c.Assert(err, qt.IsNil)
		pkgs[i] = pkg
	}
	for _, p := range players {
		for _, pkg := range pkgs {
			if pkg.Sender == p.ID {
				continue
			}
			c.Assert(p.VerifyRound1(pkg), qt.IsNil)
		}
	}

	recipients := make([]int, n)
	for i := range recipients {
		recipients[i] = i + 1
	}
	for _, sender := range players {
		shares := sender.Round2SharesFor(recipients)
		for _, share := range shares {
			for _, recipient := range players {
				if recipient.ID == share.To {
					c.Assert(recipient.ReceiveRound2Share(share), qt.IsNil)
				}
			}
		}
	}

	for _, p := range players {
		c.Assert(p.Finalize(), qt.IsNil)
	}

	allCommits := make(map[int][]*group.Point, n)
	for _, pkg := range pkgs {
		allCommits[pkg.Sender] = pkg.Commits
	}
	return players, allCommits
}

func TestMultisigCorrectness(t *testing.T) {
	c := qt.New(t)
	const n, threshold, w = 4, 2, 3

	players, allCommits := runDKG(c, n, threshold)

	groupD := players[0].GroupPublicKey()
	for _, p := range players[1:] {
		c.Assert(p.GroupPublicKey().Equal(groupD), qt.IsTrue)
	}

	var trueR *group.Scalar
	for i, p := range players {
		if i == 0 {
			trueR = p.coeffs[0].Clone()
		} else {
			trueR = trueR.Add(p.coeffs[0])
		}
	}
	c.Assert(group.ScalarBaseMult(trueR).Equal(groupD), qt.IsTrue)

	F := group.HashToPoint("F_ms_test")
	G := group.Base()
	H := group.HashToPoint("H_ms_test")
	U := group.HashToPoint("U_ms_test")
	m := group.HashToScalar("Our first obligation is to keep the foo counters turning")

	v := U.Sub(G.ScalarMult(trueR))

	x := make([]*group.Scalar, w)
	z := make([]*group.Scalar, w)
	S := make([]*group.Point, w)
	T := make([]*group.Point, w)
	for u := 0; u < w; u++ {
		x[u] = group.HashToScalar("x", []byte{byte(u)})
		z[u] = group.HashToScalar("z", []byte{byte(u)})
		T[u] = v.ScalarMult(x[u].Invert())
		S[u] = F.ScalarMult(x[u]).Add(G.ScalarMult(trueR)).Add(H.ScalarMult(z[u]))
	}

	stmt := chaum.Statement{F: F, G: G, H: H, U: U, M: m, S: S, T: T}
	pw := PublicWitness{X: x, Z: z}

	signerSet := []int{1, 2}
	nonces := make([]SignerNonces, len(signerSet))
	poppedByPlayer := make(map[int][]NoncePair, len(signerSet))
	for i, id := range signerSet {
		p := players[id-1]
		if _, err := p.Precompute(w); err != nil {
			c.Fatal(err)
		}
		popped, err := p.PopNonces(w)
		c.Assert(err, qt.IsNil)
		nonces[i] = SignerNonces{Player: id, Popped: popped}
		poppedByPlayer[id] = popped
	}

	prep, err := PrepareSigning(stmt, pw, signerSet, nonces)
	c.Assert(err, qt.IsNil)

	partials := make(map[int]*group.Scalar, len(signerSet))
	for _, id := range signerSet {
		p := players[id-1]
		partial, err := p.PartialT2(prep, poppedByPlayer[id], signerSet)
		c.Assert(err, qt.IsNil)
		c.Assert(VerifyPartialT2(prep, allCommits, id, poppedByPlayer[id], signerSet, partial), qt.IsNil)
		partials[id] = partial
	}

	proof := Aggregate(prep, partials)
	c.Assert(chaum.VerifyMultisigVariant(stmt, proof), qt.IsNil)
}

func TestNonceHygiene(t *testing.T) {
	c := qt.New(t)
	p, err := NewPlayer(1, 2, 4)
	c.Assert(err, qt.IsNil)
	_, err = p.Precompute(5)
	c.Assert(err, qt.IsNil)
	c.Assert(p.NonceStackLen(), qt.Equals, 5)

	_, err = p.PopNonces(3)
	c.Assert(err, qt.IsNil)
	c.Assert(p.NonceStackLen(), qt.Equals, 2)
}

func TestPopNoncesRejectsInsufficientStack(t *testing.T) {
	c := qt.New(t)
	p, err := NewPlayer(1, 2, 4)
	c.Assert(err, qt.IsNil)
	_, err = p.Precompute(1)
	c.Assert(err, qt.IsNil)
	_, err = p.PopNonces(3)
	c.Assert(err, qt.ErrorMatches, ".*protocol violation.*")
}
