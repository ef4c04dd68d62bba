// Package address implements hierarchical address derivation (spec §4.6):
// a SpendKey derives a FullViewKey and an IncomingViewKey, and each of
// those derives a sequence of PublicAddress subaddresses indexed by a
// non-negative integer that fits in IndexBytes bytes, via a diversifier
// encrypted under the incoming view key.
package address

import (
	"fmt"

	"github.com/vocdoni/spark-core/crypto/group"
	"github.com/vocdoni/spark-core/params"
	"github.com/vocdoni/spark-core/sparkerr"
)

// SpendKey is the root secret: three independently sampled uniform
// nonzero scalars. It is the only key that holds r, which spending (the
// stake tag proof) needs; coin recovery and tag derivation need only the
// FullViewKey. It must never be shared.
type SpendKey struct {
	Params params.AddressParameters
	S1, S2 *group.Scalar
	R      *group.Scalar
}

// NewSpendKey samples a fresh SpendKey under the given parameters.
func NewSpendKey(p params.AddressParameters) (*SpendKey, error) {
	s1, err := group.RandomNonzeroScalar()
	if err != nil {
		return nil, fmt.Errorf("address: sample s1: %w", err)
	}
	s2, err := group.RandomNonzeroScalar()
	if err != nil {
		return nil, fmt.Errorf("address: sample s2: %w", err)
	}
	r, err := group.RandomNonzeroScalar()
	if err != nil {
		return nil, fmt.Errorf("address: sample r: %w", err)
	}
	return &SpendKey{Params: p, S1: s1, S2: s2, R: r}, nil
}

// FullViewKey derives the viewing credential that can see incoming coins
// and their values but cannot spend (cannot recover R).
func (k *SpendKey) FullViewKey() *FullViewKey {
	d := group.ScalarBaseMult(k.R)
	p2 := k.Params.F.ScalarMult(k.S2).Add(d)
	return &FullViewKey{Params: k.Params, S1: k.S1, S2: k.S2, D: d, P2: p2}
}

// IncomingViewKey derives the lighter viewing credential that can see that
// a coin is addressed to this key, without seeing values.
func (k *SpendKey) IncomingViewKey() *IncomingViewKey {
	return k.FullViewKey().IncomingViewKey()
}

// FullViewKey is {params, s1, s2, D=r·G, P2=s2·F+D}. Derivable from
// SpendKey; cannot recover r.
type FullViewKey struct {
	Params params.AddressParameters
	S1, S2 *group.Scalar
	D, P2  *group.Point
}

// IncomingViewKey derives the lighter viewing credential, discarding s2.
func (k *FullViewKey) IncomingViewKey() *IncomingViewKey {
	return &IncomingViewKey{Params: k.Params, S1: k.S1, P2: k.P2}
}

// IncomingViewKey is {params, s1, P2}. Derivable from FullViewKey; cannot
// recover s2.
type IncomingViewKey struct {
	Params params.AddressParameters
	S1     *group.Scalar
	P2     *group.Point
}

// diversifierKey derives the 32-byte stream-cipher key H("Spark d", s1)
// shared by encryption (PublicAddress) and decryption (GetIndex).
func diversifierKey(s1 *group.Scalar) [32]byte {
	var key [32]byte
	copy(key[:], group.HashToScalar("Spark d", s1.Bytes()).Bytes())
	return key
}

// DiversifierKey exports diversifierKey for package coin, which must
// recompute the same stream-cipher key to recover a diversifier from a
// matched subaddress index during Identify.
func DiversifierKey(s1 *group.Scalar) [32]byte {
	return diversifierKey(s1)
}

// EncodeIndex exports encodeIndex for package coin's Identify, which must
// re-encode a matched index the same way PublicAddress derivation did.
func EncodeIndex(i uint64, width int) ([]byte, error) {
	return encodeIndex(i, width)
}

func encodeIndex(i uint64, width int) ([]byte, error) {
	if width <= 0 || width > 8 {
		return nil, fmt.Errorf("address: unsupported index width %d: %w", width, sparkerr.ErrShapeMismatch)
	}
	if width < 8 && i >= uint64(1)<<(8*width) {
		return nil, fmt.Errorf("address: index %d exceeds width %d: %w", i, width, sparkerr.ErrOutOfRange)
	}
	buf := make([]byte, width)
	for j := 0; j < width; j++ {
		buf[j] = byte(i >> (8 * j))
	}
	return buf, nil
}

func decodeIndex(buf []byte) uint64 {
	var i uint64
	for j := len(buf) - 1; j >= 0; j-- {
		i = (i << 8) | uint64(buf[j])
	}
	return i
}

// GetIndex inverts the diversifier cipher, recovering the subaddress
// index i that produced diversifier bytes d. Since StreamCipherXOR is its
// own inverse, this calls the identical routine used by PublicAddress.
func (k *IncomingViewKey) GetIndex(d []byte) (uint64, error) {
	if len(d) != k.Params.IndexBytes {
		return 0, fmt.Errorf("address: diversifier length %d does not match index width %d: %w", len(d), k.Params.IndexBytes, sparkerr.ErrShapeMismatch)
	}
	plain, err := group.StreamCipherXOR(diversifierKey(k.S1), d)
	if err != nil {
		return 0, fmt.Errorf("address: decrypt diversifier: %w", err)
	}
	return decodeIndex(plain), nil
}
