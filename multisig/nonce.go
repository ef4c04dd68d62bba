package multisig

import (
	"fmt"

	"github.com/vocdoni/spark-core/crypto/group"
	"github.com/vocdoni/spark-core/log"
	"github.com/vocdoni/spark-core/sparkerr"
)

// NoncePair is one (d, e) signing nonce together with its public
// commitments (D=d·G, E=e·G) broadcast during precomputation.
type NoncePair struct {
	D, E       *group.Scalar
	PubD, PubE *group.Point
}

// NonceStack is the per-player buffer of precomputed, unused nonce pairs
// (spec §4.10, §5): precompute appends, sign pops exactly w from the
// front, and a popped nonce must never be reused even if the signing
// invocation that consumed it fails.
type NonceStack struct {
	pairs []NoncePair
}

// Precompute samples count fresh nonce pairs and appends them to the
// stack, returning the newly generated pairs (including public
// commitments) so the caller can broadcast them.
func (s *NonceStack) Precompute(count int) ([]NoncePair, error) {
	fresh := make([]NoncePair, count)
	for i := 0; i < count; i++ {
		d, err := group.RandomNonzeroScalar()
		if err != nil {
			return nil, err
		}
		e, err := group.RandomNonzeroScalar()
		if err != nil {
			return nil, err
		}
		fresh[i] = NoncePair{D: d, E: e, PubD: group.ScalarBaseMult(d), PubE: group.ScalarBaseMult(e)}
	}
	s.pairs = append(s.pairs, fresh...)
	return fresh, nil
}

// Len reports how many unused nonce pairs remain.
func (s *NonceStack) Len() int { return len(s.pairs) }

// Pop removes and returns exactly w nonce pairs from the front of the
// stack, matching "sign() consumes the top w nonces". It returns
// sparkerr.ErrProtocolViolation rather than silently returning fewer than
// requested, since signing with a short nonce count would otherwise
// silently reuse a prior row's nonce.
func (s *NonceStack) Pop(w int) ([]NoncePair, error) {
	if len(s.pairs) < w {
		return nil, fmt.Errorf("multisig: nonce stack has %d pairs, need %d: %w", len(s.pairs), w, sparkerr.ErrProtocolViolation)
	}
	popped := make([]NoncePair, w)
	copy(popped, s.pairs[:w])
	s.pairs = s.pairs[w:]
	log.Debugf("multisig: popped %d nonce pairs, %d remain", w, len(s.pairs))
	return popped, nil
}

// Precompute appends count fresh nonce pairs to this player's stack.
func (p *Player) Precompute(count int) ([]NoncePair, error) {
	return p.nonces.Precompute(count)
}

// NonceStackLen reports this player's remaining unused nonce count.
func (p *Player) NonceStackLen() int { return p.nonces.Len() }

// PopNonces consumes exactly w nonce pairs from this player's stack for
// one signing invocation.
func (p *Player) PopNonces(w int) ([]NoncePair, error) {
	return p.nonces.Pop(w)
}
