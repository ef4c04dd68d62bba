// Package coin implements coin construction, identification, recovery and
// delegation (spec §4.7-4.9): the discriminated STANDARD/MINT/PAYOUT
// variant union and the operations that move a Coin through its lifecycle
// (constructed → identified → recovered → delegated).
package coin

import (
	"fmt"

	"github.com/vocdoni/spark-core/address"
	"github.com/vocdoni/spark-core/crypto/group"
	"github.com/vocdoni/spark-core/crypto/proofs/schnorr"
	"github.com/vocdoni/spark-core/crypto/rangeproof"
	"github.com/vocdoni/spark-core/log"
	"github.com/vocdoni/spark-core/params"
	"github.com/vocdoni/spark-core/sparkerr"
	"github.com/vocdoni/spark-core/types"
)

// Variant is the discriminated Coin kind. Per spec §9's explicit bug-fix
// instruction, each variant below is assigned a distinct discriminant
// (the original source assigns STANDARD and MINT the same value).
type Variant int

const (
	Standard Variant = 1
	Mint     Variant = 2
	Payout   Variant = 3
)

func (v Variant) String() string {
	switch v {
	case Standard:
		return "STANDARD"
	case Mint:
		return "MINT"
	case Payout:
		return "PAYOUT"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// Coin is a published note. Field presence follows the variant: RangeProof
// is present only for Standard; JanusProof and Ciphertext are present for
// Standard and Mint but nil for Payout; Value is plaintext for Mint and
// Payout and meaningless (zero) for Standard, where it only exists inside
// Ciphertext.
type Coin struct {
	Variant    Variant
	K, S, C    *group.Point
	ViewTag    byte
	JanusProof *schnorr.Proof
	RangeProof *rangeproof.Proof
	Ciphertext types.HexBytes
	Value      uint64
}

// recipientAD returns the AEAD associated data for the variant, one of the
// two domain-separation tags reserved for recipient data (spec §6); these
// strings are part of the security contract and must never be unified.
func recipientAD(v Variant) []byte {
	switch v {
	case Mint:
		return []byte("Mint recipient data")
	default:
		return []byte("Spend recipient data")
	}
}

func serialScalar(kDer *group.Point) *group.Scalar {
	return group.HashToScalar("ser", kDer.Bytes())
}

func valueScalar(kDer *group.Point) *group.Scalar {
	return group.HashToScalar("val", kDer.Bytes())
}

func aeadKey(kDer *group.Point) [32]byte {
	var key [32]byte
	copy(key[:], group.HashToScalar("aead", kDer.Bytes()).Bytes())
	return key
}

func viewTag(kDer *group.Point) byte {
	return group.HashToScalar("view tag", kDer.Bytes()).Bytes()[0]
}

func encodeValue(value uint64, width int) []byte {
	buf := make([]byte, width)
	for i := 0; i < width && i < 8; i++ {
		buf[i] = byte(value >> (8 * i))
	}
	return buf
}

func decodeValue(buf []byte) uint64 {
	var v uint64
	for i := len(buf) - 1; i >= 0; i-- {
		v = (v << 8) | uint64(buf[i])
	}
	return v
}

func padMemo(memo string, width int) ([]byte, error) {
	b := []byte(memo)
	if len(b) > width {
		return nil, fmt.Errorf("coin: memo length %d exceeds %d: %w", len(b), width, sparkerr.ErrOutOfRange)
	}
	out := make([]byte, width)
	copy(out, b)
	return out, nil
}

func unpadMemo(buf []byte) string {
	i := len(buf)
	for i > 0 && buf[i-1] == 0 {
		i--
	}
	return string(buf[:i])
}

func checkValueWidth(value uint64, width int) error {
	if width < 8 && value >= uint64(1)<<(8*width) {
		return fmt.Errorf("coin: value %d exceeds %d-byte width: %w", value, width, sparkerr.ErrOutOfRange)
	}
	return nil
}

// ConstructionSecret carries the sender-side scalar k and K_der produced
// during Construct. Recover and Delegate do not use it (they recompute
// K_der from the view key); ConstructPayout uses k for its pay proof.
type ConstructionSecret struct {
	K    *group.Scalar
	KDer *group.Point
}

// Construct builds a Coin addressed to addr. k is the recovery-key
// scalar: pass nil for Standard/Mint to sample it uniformly, or a
// deterministic scalar for Payout (required, since Payout coins must be
// independently reconstructible by the recipient from public data alone).
func Construct(p params.CoinParameters, addr *address.PublicAddress, variant Variant, value uint64, memo string, k *group.Scalar) (*Coin, *ConstructionSecret, error) {
	if err := checkValueWidth(value, p.ValueBytes); err != nil {
		return nil, nil, err
	}
	if variant == Payout && k == nil {
		return nil, nil, fmt.Errorf("coin: payout requires a deterministic k: %w", sparkerr.ErrInvalidWitness)
	}
	if (variant == Standard || variant == Mint) && len([]byte(memo)) > p.MemoBytes {
		return nil, nil, fmt.Errorf("coin: memo length %d exceeds %d: %w", len(memo), p.MemoBytes, sparkerr.ErrOutOfRange)
	}
	var err error
	if k == nil {
		k, err = group.RandomNonzeroScalar()
		if err != nil {
			return nil, nil, fmt.Errorf("coin: sample k: %w", err)
		}
	}

	K := addr.Q0.ScalarMult(k)
	KDer := addr.Q1.ScalarMult(k)
	S := p.F.ScalarMult(serialScalar(KDer)).Add(addr.Q2)
	C := p.G.ScalarMult(group.ScalarFromUint64(value)).Add(p.H.ScalarMult(valueScalar(KDer)))

	c := &Coin{Variant: variant, K: K, S: S, C: C, ViewTag: viewTag(KDer)}

	if variant == Standard || variant == Mint {
		janus, err := schnorr.Prove(schnorr.Statement{Generator: addr.Q0, Y: K}, k)
		if err != nil {
			return nil, nil, fmt.Errorf("coin: janus proof: %w", err)
		}
		c.JanusProof = janus
	}

	switch variant {
	case Standard:
		memoBytes, err := padMemo(memo, p.MemoBytes)
		if err != nil {
			return nil, nil, err
		}
		plain := append(encodeValue(value, p.ValueBytes), memoBytes...)
		ct, err := group.AEADEncrypt(aeadKey(KDer), recipientAD(variant), plain)
		if err != nil {
			return nil, nil, fmt.Errorf("coin: encrypt recipient data: %w", err)
		}
		c.Ciphertext = ct

		rp, err := rangeproof.Prove(
			rangeproof.Statement{G: p.G, H: p.H, C: C, Bits: uint(8 * p.ValueBytes)},
			rangeproof.Witness{Value: value, Blind: valueScalar(KDer)},
		)
		if err != nil {
			return nil, nil, fmt.Errorf("coin: range proof: %w", err)
		}
		c.RangeProof = rp

	case Mint:
		memoBytes, err := padMemo(memo, p.MemoBytes)
		if err != nil {
			return nil, nil, err
		}
		ct, err := group.AEADEncrypt(aeadKey(KDer), recipientAD(variant), memoBytes)
		if err != nil {
			return nil, nil, fmt.Errorf("coin: encrypt recipient data: %w", err)
		}
		c.Ciphertext = ct
		c.Value = value

	case Payout:
		c.Value = value

	default:
		return nil, nil, fmt.Errorf("coin: unknown variant %v: %w", variant, sparkerr.ErrTypeMismatch)
	}

	log.Debugf("coin: constructed %v coin with value width %d bytes", variant, p.ValueBytes)
	return c, &ConstructionSecret{K: k, KDer: KDer}, nil
}

