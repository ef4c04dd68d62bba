package transaction

import (
	"fmt"

	"github.com/vocdoni/spark-core/address"
	"github.com/vocdoni/spark-core/coin"
	"github.com/vocdoni/spark-core/crypto/group"
	"github.com/vocdoni/spark-core/crypto/parallel"
	"github.com/vocdoni/spark-core/crypto/proofs/chaum"
	"github.com/vocdoni/spark-core/crypto/proofs/schnorr"
	"github.com/vocdoni/spark-core/log"
	"github.com/vocdoni/spark-core/params"
	"github.com/vocdoni/spark-core/sparkerr"
)

// StakeTransaction spends one real coin hidden inside a cover set of n^m
// candidate coins (spec §4.11). The cover holds full public Coin values;
// the spender proves, without revealing which, that the freshly
// delegated (S1, C1) is a re-randomization of one cover entry's (S, C) —
// S1 = cover[i].S − s1'·H and C1 = cover[i].C − (c − c1')·H for the real
// i, where c is that coin's value blind —
// via a parallel membership proof binding both vectors to the *same*
// hidden index at once. Binding only the S-vector would let a prover
// pick an unrelated C1 for any value it likes; parallel.Prove's shared
// per-branch challenge is what forces S1 and C1 to open against the same
// cover coin.
//
// The published S1/C1 also carry a Schnorr balance proof (C1 −
// (fee+stake)·G is a multiple of H) and a modified-Chaum tag proof
// binding Tag to the same serial secret committed inside S1.
type StakeTransaction struct {
	CoverS, CoverC []*group.Point
	N, M           int
	Fee, Stake     uint64
	S1, C1         *group.Point
	Tag            *group.Point
	Context        []byte
	Membership     *parallel.Proof
	Balance        *schnorr.Proof
	TagProof       *chaum.Proof
}

func tagChallenge(context []byte) *group.Scalar {
	return group.HashToScalar("Spark stake tag", context)
}

func coverSize(n, m int) int {
	size := 1
	for i := 0; i < m; i++ {
		size *= n
	}
	return size
}

// checkCoverIntegrity is the verifier's first pass over the cover set,
// separate from the membership proof itself: the two vectors must have
// exactly n^m entries each, none of them the identity point, and no
// (S,C) pair repeated — none of which the parallel proof's verification
// equations detect on their own.
func checkCoverIntegrity(coverS, coverC []*group.Point, n, m int) error {
	size := coverSize(n, m)
	if len(coverS) != size || len(coverC) != size {
		return fmt.Errorf("transaction: cover set sizes %d/%d do not match n^m=%d: %w", len(coverS), len(coverC), size, sparkerr.ErrShapeMismatch)
	}
	seen := make(map[string]bool, size)
	for i := range coverS {
		if coverS[i].IsZero() || coverC[i].IsZero() {
			return fmt.Errorf("transaction: cover entry %d is the identity point: %w", i, sparkerr.ErrVerificationFailed)
		}
		key := string(coverS[i].Bytes()) + string(coverC[i].Bytes())
		if seen[key] {
			return fmt.Errorf("transaction: cover entry %d duplicates an earlier entry: %w", i, sparkerr.ErrVerificationFailed)
		}
		seen[key] = true
	}
	return nil
}

// ConstructStake builds a StakeTransaction spending the coin recovered as
// rec and delegated as del, whose original (S, C) sits at cover[realIndex],
// paying fee and locking stake (fee+stake must equal the coin's value).
// sk must be the full SpendKey, not a FullViewKey, because the tag
// proof's witness needs r directly.
func ConstructStake(p params.CoinParameters, sk *address.SpendKey, rec *coin.Recovered, del *coin.Delegation, cover []*coin.Coin, realIndex, n, m int, fee, stake uint64, context []byte) (*StakeTransaction, error) {
	size := coverSize(n, m)
	if len(cover) != size {
		return nil, fmt.Errorf("transaction: cover set size %d does not match n^m=%d: %w", len(cover), size, sparkerr.ErrShapeMismatch)
	}
	if realIndex < 0 || realIndex >= size {
		return nil, fmt.Errorf("transaction: real index %d out of range: %w", realIndex, sparkerr.ErrOutOfRange)
	}
	if rec.Value != fee+stake {
		return nil, fmt.Errorf("transaction: input value %d does not balance fee+stake %d: %w", rec.Value, fee+stake, sparkerr.ErrInvalidWitness)
	}
	realS := p.F.ScalarMult(rec.S).Add(sk.FullViewKey().D)
	if !cover[realIndex].S.Equal(realS) {
		return nil, fmt.Errorf("transaction: cover[realIndex] does not match the spent coin: %w", sparkerr.ErrInvalidWitness)
	}

	balY := del.C1.Sub(p.G.ScalarMult(fee + stake))
	balProof, err := schnorr.Prove(schnorr.Statement{Generator: p.H, Y: balY}, del.C1Prime)
	if err != nil {
		return nil, fmt.Errorf("transaction: balance proof: %w", err)
	}

	// At the real index the C-side key is C − C1 = (c − c1')·H, where c is
	// the spent coin's own value blind H("val", K_der).
	kDer := cover[realIndex].K.ScalarMult(sk.S1)
	blindC := group.HashToScalar("val", kDer.Bytes()).Sub(del.C1Prime)

	coverS := make([]*group.Point, size)
	coverC := make([]*group.Point, size)
	keysA := make([]*group.Point, size)
	keysC := make([]*group.Point, size)
	for i, entry := range cover {
		coverS[i] = entry.S
		coverC[i] = entry.C
		keysA[i] = entry.S.Sub(del.S1)
		keysC[i] = entry.C.Sub(del.C1)
	}
	memProof, err := parallel.Prove(
		parallel.Statement{N: n, M: m, H: p.H, KeysA: keysA, KeysC: keysC},
		parallel.Witness{Index: realIndex, BlindA: del.S1Prime, BlindC: blindC},
	)
	if err != nil {
		return nil, fmt.Errorf("transaction: membership proof: %w", err)
	}

	tagStmt := chaum.Statement{
		F: p.F, G: p.G, H: p.H, U: p.U,
		M: tagChallenge(context),
		S: []*group.Point{del.S1},
		T: []*group.Point{rec.T},
	}
	tagWitness := chaum.Witness{
		X: []*group.Scalar{rec.S},
		Y: []*group.Scalar{sk.R},
		Z: []*group.Scalar{del.S1Prime.Neg()},
	}
	tagProof, err := chaum.Prove(tagStmt, tagWitness)
	if err != nil {
		return nil, fmt.Errorf("transaction: tag proof: %w", err)
	}

	log.Infof("transaction: constructed stake transaction over %d-entry cover set, fee=%d stake=%d", size, fee, stake)
	return &StakeTransaction{
		CoverS:     coverS,
		CoverC:     coverC,
		N:          n,
		M:          m,
		Fee:        fee,
		Stake:      stake,
		S1:         del.S1,
		C1:         del.C1,
		Tag:        rec.T,
		Context:    context,
		Membership: memProof,
		Balance:    balProof,
		TagProof:   tagProof,
	}, nil
}

// Verify checks a StakeTransaction in the order spec §4.11 demands: cover
// integrity, membership, the modified-Chaum tag equations, the balance
// Schnorr proof, and finally tag uniqueness against seen, the caller's
// double-spend oracle. seen is consulted last and, on a hit, the
// transaction is rejected without the caller needing to have recorded
// anything yet; callers should only mark tx.Tag as spent after Verify
// returns nil.
func (tx *StakeTransaction) Verify(p params.CoinParameters, seen func(tag *group.Point) bool) error {
	if err := checkCoverIntegrity(tx.CoverS, tx.CoverC, tx.N, tx.M); err != nil {
		return err
	}
	size := coverSize(tx.N, tx.M)

	keysA := make([]*group.Point, size)
	keysC := make([]*group.Point, size)
	for i := range tx.CoverS {
		keysA[i] = tx.CoverS[i].Sub(tx.S1)
		keysC[i] = tx.CoverC[i].Sub(tx.C1)
	}
	if err := parallel.Verify(parallel.Statement{N: tx.N, M: tx.M, H: p.H, KeysA: keysA, KeysC: keysC}, tx.Membership); err != nil {
		return fmt.Errorf("transaction: membership: %w", err)
	}

	tagStmt := chaum.Statement{
		F: p.F, G: p.G, H: p.H, U: p.U,
		M: tagChallenge(tx.Context),
		S: []*group.Point{tx.S1},
		T: []*group.Point{tx.Tag},
	}
	if err := chaum.Verify(tagStmt, tx.TagProof); err != nil {
		return fmt.Errorf("transaction: tag proof: %w", err)
	}

	balY := tx.C1.Sub(p.G.ScalarMult(tx.Fee + tx.Stake))
	if err := schnorr.Verify(schnorr.Statement{Generator: p.H, Y: balY}, tx.Balance); err != nil {
		return fmt.Errorf("transaction: balance: %w", err)
	}

	if seen != nil && seen(tx.Tag) {
		return fmt.Errorf("transaction: tag already spent: %w", sparkerr.ErrDuplicateTag)
	}
	log.Infof("transaction: verified stake transaction, fee=%d stake=%d", tx.Fee, tx.Stake)
	return nil
}
