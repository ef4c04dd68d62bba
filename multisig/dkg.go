// Package multisig implements the FROST-style distributed key generation
// and two-round threshold signing protocol (spec §4.10): a fixed set of ν
// players, threshold t, cooperatively producing modified-Chaum signatures
// without any single party ever holding the full spend key.
//
// The protocol is modeled as a cooperative single-threaded actor: each
// Player holds private state (its polynomial, its nonce stack, its
// received shares) and the caller drives rounds as ordinary synchronous
// Go calls, matching spec §5's "a single-threaded scheduler suffices
// because all work is CPU-bound scalar arithmetic."
package multisig

import (
	"fmt"
	"sort"

	"github.com/vocdoni/spark-core/crypto/group"
	"github.com/vocdoni/spark-core/crypto/transcript"
	"github.com/vocdoni/spark-core/log"
	"github.com/vocdoni/spark-core/sparkerr"
)

// Round1Package is player α's broadcast keygen message: Pedersen-VSS
// coefficient commitments, a PoK of the constant term, and the player's
// view-key shares.
type Round1Package struct {
	Sender  int
	Commits []*group.Point // C_α[0..t)
	R       *group.Point
	Mu      *group.Scalar
	S1Share *group.Scalar
	S2Share *group.Scalar
}

// Player is one of the ν DKG/signing participants.
type Player struct {
	ID        int
	Threshold int
	N         int

	coeffs []*group.Scalar // this player's own polynomial a[0..t)
	s1, s2 *group.Scalar

	commits map[int][]*group.Point // sender -> C_sender[0..t), kept for all senders including self
	shares  map[int]*group.Scalar  // sender -> r̂_{sender→this player}

	r    *group.Scalar // this player's final secret share, once Finalize has run
	d    *group.Point  // group public D, once Finalize has run
	done bool

	nonces NonceStack
}

// NewPlayer initializes player id's local DKG state: a fresh degree-(t-1)
// polynomial and view-key share scalars.
func NewPlayer(id, threshold, n int) (*Player, error) {
	if id < 1 || id > n {
		return nil, fmt.Errorf("multisig: player id %d out of [1,%d]: %w", id, n, sparkerr.ErrOutOfRange)
	}
	coeffs := make([]*group.Scalar, threshold)
	for i := range coeffs {
		s, err := group.RandomNonzeroScalar()
		if err != nil {
			return nil, err
		}
		coeffs[i] = s
	}
	s1, err := group.RandomNonzeroScalar()
	if err != nil {
		return nil, err
	}
	s2, err := group.RandomNonzeroScalar()
	if err != nil {
		return nil, err
	}
	return &Player{
		ID: id, Threshold: threshold, N: n,
		coeffs:  coeffs,
		s1:      s1,
		s2:      s2,
		commits: make(map[int][]*group.Point),
		shares:  make(map[int]*group.Scalar),
	}, nil
}

func keygenChallenge(id int, a0G, R *group.Point) *group.Scalar {
	tr := transcript.New("Spark multisig keygen")
	tr.AppendUint64(uint64(id))
	tr.AppendPoints(a0G, R)
	return tr.Challenge()
}

// Round1 produces this player's broadcast package.
func (p *Player) Round1() (*Round1Package, error) {
	commits := make([]*group.Point, p.Threshold)
	for j, a := range p.coeffs {
		commits[j] = group.ScalarBaseMult(a)
	}
	k, err := group.RandomNonzeroScalar()
	if err != nil {
		return nil, err
	}
	R := group.ScalarBaseMult(k)
	c := keygenChallenge(p.ID, commits[0], R)
	mu := c.Mul(p.coeffs[0]).Add(k)

	p.commits[p.ID] = commits
	log.Debugf("multisig: player %d produced round1 package", p.ID)
	return &Round1Package{Sender: p.ID, Commits: commits, R: R, Mu: mu, S1Share: p.s1, S2Share: p.s2}, nil
}

// VerifyRound1 checks a peer's PoK of the constant term (μ·G − c·C[0] = R)
// and, on success, records the peer's coefficient commitments so this
// player can later validate round-2 shares and compute public shares.
func (p *Player) VerifyRound1(pkg *Round1Package) error {
	if len(pkg.Commits) != p.Threshold {
		return fmt.Errorf("multisig: round1 from %d has %d commitments, want %d: %w", pkg.Sender, len(pkg.Commits), p.Threshold, sparkerr.ErrShapeMismatch)
	}
	c := keygenChallenge(pkg.Sender, pkg.Commits[0], pkg.R)
	left := group.ScalarBaseMult(pkg.Mu)
	right := pkg.R.Add(pkg.Commits[0].ScalarMult(c))
	if !left.Equal(right) {
		return fmt.Errorf("multisig: round1 PoK from player %d: %w", pkg.Sender, sparkerr.ErrProtocolViolation)
	}
	p.commits[pkg.Sender] = pkg.Commits
	log.Debugf("multisig: player %d recorded round1 commitments from player %d", p.ID, pkg.Sender)
	return nil
}

// polyEval evaluates Σ_j coeffs[j]·x^j via Horner's method.
func polyEval(coeffs []*group.Scalar, x *group.Scalar) *group.Scalar {
	result := group.NewScalar()
	for j := len(coeffs) - 1; j >= 0; j-- {
		result = result.Mul(x).Add(coeffs[j])
	}
	return result
}

// commitEval evaluates Σ_j x^j·commits[j] via Horner's method in the group.
func commitEval(commits []*group.Point, x *group.Scalar) *group.Point {
	result := group.Zero()
	for j := len(commits) - 1; j >= 0; j-- {
		result = result.ScalarMult(x).Add(commits[j])
	}
	return result
}

// Round2Share is the private share player α sends to player β: α's
// polynomial evaluated at β.
type Round2Share struct {
	From, To int
	Value    *group.Scalar
}

// Round2SharesFor computes the private shares this player sends to every
// other player (including itself), to be delivered out of band.
func (p *Player) Round2SharesFor(recipients []int) []*Round2Share {
	shares := make([]*Round2Share, len(recipients))
	for i, to := range recipients {
		shares[i] = &Round2Share{From: p.ID, To: to, Value: polyEval(p.coeffs, intToScalar(to))}
	}
	return shares
}

// ReceiveRound2Share verifies and records an incoming private share.
// Verification checks share·G against the sender's published coefficient
// commitments evaluated at this player's id (spec §4.10 round 2).
func (p *Player) ReceiveRound2Share(share *Round2Share) error {
	if share.To != p.ID {
		return fmt.Errorf("multisig: share addressed to %d delivered to %d: %w", share.To, p.ID, sparkerr.ErrProtocolViolation)
	}
	senderCommits, ok := p.commits[share.From]
	if !ok {
		return fmt.Errorf("multisig: no round1 commitments recorded for player %d: %w", share.From, sparkerr.ErrProtocolViolation)
	}
	expect := commitEval(senderCommits, intToScalar(p.ID))
	if !group.ScalarBaseMult(share.Value).Equal(expect) {
		return fmt.Errorf("multisig: round2 share from %d fails verification: %w", share.From, sparkerr.ErrProtocolViolation)
	}
	p.shares[share.From] = share.Value
	log.Debugf("multisig: player %d accepted round2 share from player %d", p.ID, share.From)
	return nil
}

// Finalize completes key generation once every round-1 commitment set and
// every round-2 share (from every other player, including self) has been
// recorded: the player's secret share r = Σ_α r̂_{α→this}, and the group
// public key D = Σ_α C_α[0].
func (p *Player) Finalize() error {
	if len(p.commits) != p.N {
		return fmt.Errorf("multisig: missing round1 commitments (have %d of %d): %w", len(p.commits), p.N, sparkerr.ErrProtocolViolation)
	}
	if len(p.shares) != p.N {
		return fmt.Errorf("multisig: missing round2 shares (have %d of %d): %w", len(p.shares), p.N, sparkerr.ErrProtocolViolation)
	}
	r := group.NewScalar()
	for _, v := range p.shares {
		r = r.Add(v)
	}
	d := group.Zero()
	for _, c := range p.commits {
		d = d.Add(c[0])
	}
	p.r, p.d = r, d
	p.done = true
	log.Infof("multisig: player %d finalized DKG, group key derived", p.ID)
	return nil
}

// GroupPublicKey returns D = r·G once Finalize has completed.
func (p *Player) GroupPublicKey() *group.Point { return p.d }

// SecretShare returns this player's final DKG secret share once Finalize
// has completed.
func (p *Player) SecretShare() *group.Scalar { return p.r }

// PublicShare returns player id's public key share R_id = Σ_α Σ_j
// id^j·C_α[j], reconstructable by anyone holding every player's round-1
// commitments (used to verify partial signature contributions).
func PublicShare(allCommits map[int][]*group.Point, id int) *group.Point {
	total := group.Zero()
	for _, commits := range allCommits {
		total = total.Add(commitEval(commits, intToScalar(id)))
	}
	return total
}

// AggregatedViewKeyShare1 derives s1 = H("Spark s1", sorted s1_α) from the
// round-1 shares every player published; AggregatedViewKeyShare2 is
// identical over s2_α. Both are deterministic across all honest players
// since the input is sorted by sender id.
func AggregatedViewKeyShare1(pkgs []*Round1Package) *group.Scalar {
	return aggregateSorted(pkgs, "Spark s1", func(pkg *Round1Package) *group.Scalar { return pkg.S1Share })
}

func AggregatedViewKeyShare2(pkgs []*Round1Package) *group.Scalar {
	return aggregateSorted(pkgs, "Spark s2", func(pkg *Round1Package) *group.Scalar { return pkg.S2Share })
}

func aggregateSorted(pkgs []*Round1Package, label string, pick func(*Round1Package) *group.Scalar) *group.Scalar {
	sorted := make([]*Round1Package, len(pkgs))
	copy(sorted, pkgs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Sender < sorted[j].Sender })
	elems := make([][]byte, len(sorted))
	for i, pkg := range sorted {
		elems[i] = pick(pkg).Bytes()
	}
	return group.HashToScalar(label, elems...)
}
