package multisig

import (
	"fmt"
	"sort"

	"github.com/vocdoni/spark-core/crypto/group"
	"github.com/vocdoni/spark-core/crypto/proofs/chaum"
	"github.com/vocdoni/spark-core/crypto/transcript"
	"github.com/vocdoni/spark-core/log"
	"github.com/vocdoni/spark-core/sparkerr"
)

// PublicWitness is the part of a modified-Chaum witness that is known to
// every cooperating signer (the delegation/value scalars bound into S[u]
// and the tag equation). Only the y-component — the DKG-shared secret r
// behind D=r·G — is ever split among signers; x and z are ordinary public
// transaction data.
type PublicWitness struct {
	X, Z []*group.Scalar
}

// SignerNonces is one signer's popped nonces for a single signing
// invocation: Popped[u] is that signer's nonce pair for row u.
type SignerNonces struct {
	Player int
	Popped []NoncePair
}

func rowHashes(stmt chaum.Statement, signerSet []int, nonces []SignerNonces) ([]*group.Scalar, []*group.Scalar, []*group.Scalar, error) {
	w := len(stmt.S)
	sorted := make([]int, len(signerSet))
	copy(sorted, signerSet)
	sort.Ints(sorted)

	byPlayer := make(map[int]SignerNonces, len(nonces))
	for _, n := range nonces {
		if len(n.Popped) != w {
			return nil, nil, nil, fmt.Errorf("multisig: player %d popped %d nonces, want %d: %w", n.Player, len(n.Popped), w, sparkerr.ErrShapeMismatch)
		}
		byPlayer[n.Player] = n
	}
	for _, id := range sorted {
		if _, ok := byPlayer[id]; !ok {
			return nil, nil, nil, fmt.Errorf("multisig: missing nonces from signer %d: %w", id, sparkerr.ErrProtocolViolation)
		}
	}

	rho := make([]*group.Scalar, w)
	rhoFT := make([]*group.Scalar, w)
	rhoH := make([]*group.Scalar, w)

	for u := 0; u < w; u++ {
		tr := transcript.New("Spark multisig nonce hash")
		tr.AppendScalar(stmt.M)
		tr.AppendPoints(stmt.S[u], stmt.T[u])
		for _, id := range sorted {
			tr.AppendUint64(uint64(id))
		}
		for _, id := range sorted {
			tr.AppendPoints(byPlayer[id].Popped[u].PubD, byPlayer[id].Popped[u].PubE)
		}
		rho[u] = tr.Challenge()
		rhoFT[u] = group.HashToScalar("Spark multisig F/T", rho[u].Bytes())
		rhoH[u] = group.HashToScalar("Spark multisig H", rho[u].Bytes())
	}
	return rho, rhoFT, rhoH, nil
}

func commitmentSums(stmt chaum.Statement, signerSet []int, nonces []SignerNonces, rho []*group.Scalar) []*group.Point {
	w := len(stmt.S)
	byPlayer := make(map[int]SignerNonces, len(nonces))
	for _, n := range nonces {
		byPlayer[n.Player] = n
	}
	sums := make([]*group.Point, w)
	for u := 0; u < w; u++ {
		sum := group.Zero()
		for _, id := range signerSet {
			pair := byPlayer[id].Popped[u]
			sum = sum.Add(pair.PubD).Add(pair.PubE.ScalarMult(rho[u]))
		}
		sums[u] = sum
	}
	return sums
}

// PreparedSigning holds everything derived from the public round-1 nonce
// broadcast: the aggregate (A1, A2), the challenge, and the public parts
// of the response (t1, t3). Any party can compute this from public data;
// only the subsequent partial-t2 step requires a signer's private share.
type PreparedSigning struct {
	A1 *group.Point
	A2 []*group.Point
	C  *group.Scalar
	T1 []*group.Scalar
	T3 *group.Scalar

	rho []*group.Scalar
}

// PrepareSigning computes the public half of a threshold signature over
// stmt given the public witness components and every signer's broadcast
// nonce commitments (spec §4.10's A1, A2, c, t1, t3 derivation).
func PrepareSigning(stmt chaum.Statement, pw PublicWitness, signerSet []int, nonces []SignerNonces) (*PreparedSigning, error) {
	w := len(stmt.S)
	if len(pw.X) != w || len(pw.Z) != w {
		return nil, fmt.Errorf("multisig: public witness length mismatch: %w", sparkerr.ErrShapeMismatch)
	}
	rho, rhoFT, rhoH, err := rowHashes(stmt, signerSet, nonces)
	if err != nil {
		return nil, err
	}
	commitSums := commitmentSums(stmt, signerSet, nonces, rho)

	A1 := group.Zero()
	A2 := make([]*group.Point, w)
	for u := 0; u < w; u++ {
		A1 = A1.Add(stmt.F.ScalarMult(rhoFT[u])).Add(stmt.H.ScalarMult(rhoH[u])).Add(commitSums[u])
		A2[u] = stmt.T[u].ScalarMult(rhoFT[u]).Add(commitSums[u])
	}

	c := chaum.Challenge(stmt, A1, A2)

	t1 := make([]*group.Scalar, w)
	t3 := group.NewScalar()
	for u := 0; u < w; u++ {
		cp := c.Pow(uint64(u))
		t1[u] = rhoFT[u].Add(cp.Mul(pw.X[u]))
		t3 = t3.Add(rhoH[u]).Add(cp.Mul(pw.Z[u]))
	}

	log.Infof("multisig: prepared signing round over %d signers, %d rows", len(signerSet), w)
	return &PreparedSigning{A1: A1, A2: A2, C: c, T1: t1, T3: t3, rho: rho}, nil
}

// PartialT2 computes this player's contribution to t2 for the signer set,
// given its popped nonces for this invocation and its Lagrange
// coefficient over the set.
func (p *Player) PartialT2(prep *PreparedSigning, popped []NoncePair, signerSet []int) (*group.Scalar, error) {
	if !p.done {
		return nil, fmt.Errorf("multisig: player %d has not finished DKG: %w", p.ID, sparkerr.ErrProtocolViolation)
	}
	if len(popped) != len(prep.rho) {
		return nil, fmt.Errorf("multisig: popped %d nonces, want %d: %w", len(popped), len(prep.rho), sparkerr.ErrShapeMismatch)
	}
	lambda := LagrangeCoefficient(p.ID, signerSet)
	t2 := group.NewScalar()
	for u, pair := range popped {
		cp := prep.C.Pow(uint64(u))
		t2 = t2.Add(pair.D).Add(prep.rho[u].Mul(pair.E)).Add(lambda.Mul(p.r).Mul(cp))
	}
	return t2, nil
}

// VerifyPartialT2 checks signer id's published partial response against
// the public commitments and id's reconstructed public key share, without
// needing id's private nonces or secret share.
func VerifyPartialT2(prep *PreparedSigning, allCommits map[int][]*group.Point, id int, popped []NoncePair, signerSet []int, partial *group.Scalar) error {
	if len(popped) != len(prep.rho) {
		return fmt.Errorf("multisig: popped %d nonces, want %d: %w", len(popped), len(prep.rho), sparkerr.ErrShapeMismatch)
	}
	lambda := LagrangeCoefficient(id, signerSet)
	r := PublicShare(allCommits, id)

	expected := group.Zero()
	for u, pair := range popped {
		cp := prep.C.Pow(uint64(u))
		expected = expected.Add(pair.PubD).Add(pair.PubE.ScalarMult(prep.rho[u])).Add(r.ScalarMult(lambda.Mul(cp)))
	}
	if !group.ScalarBaseMult(partial).Equal(expected) {
		return fmt.Errorf("multisig: partial t2 from player %d: %w", id, sparkerr.ErrProtocolViolation)
	}
	return nil
}

// Aggregate combines every signer's partial t2 into the final modified-
// Chaum multisig signature, verifiable with chaum.VerifyMultisigVariant.
func Aggregate(prep *PreparedSigning, partials map[int]*group.Scalar) *chaum.Proof {
	t2 := group.NewScalar()
	for _, p := range partials {
		t2 = t2.Add(p)
	}
	log.Infof("multisig: aggregated %d partial t2 contributions", len(partials))
	return &chaum.Proof{A1: prep.A1, A2: prep.A2, T1: prep.T1, T2: t2, T3: prep.T3}
}
