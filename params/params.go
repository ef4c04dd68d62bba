// Package params centralizes the process-wide generator set and byte-width
// constants the rest of the Spark core is parameterized over, the direct
// analogue of the teacher's config.DefaultConfig: a plain struct with a
// package-level default constructor, never reconfigured at runtime.
package params

import "github.com/vocdoni/spark-core/crypto/group"

// AddressParameters fixes the two generators (F, G) and the diversifier
// index width used for address derivation (spec §3, §4.6).
// DefaultAddressParameters sets G to the standard Ed25519 base point.
type AddressParameters struct {
	F, G       *group.Point
	IndexBytes int
}

// CoinParameters extends AddressParameters with the additional generators
// (H, U) and the byte widths used for coin construction (spec §4.7).
type CoinParameters struct {
	AddressParameters
	H, U       *group.Point
	ValueBytes int
	MemoBytes  int
}

// DefaultAddressParameters derives F via hash-to-point of the fixed label
// "F" and fixes G to the standard base point, with an 8-byte diversifier
// index (supporting indices up to 2^64-1).
func DefaultAddressParameters() AddressParameters {
	return AddressParameters{
		F:          group.HashToPoint("F"),
		G:          group.Base(),
		IndexBytes: 8,
	}
}

// DefaultCoinParameters extends DefaultAddressParameters with H and U
// derived via hash-to-point of their fixed labels, an 8-byte value width
// (values up to 2^64-1) and a 128-byte memo width.
func DefaultCoinParameters() CoinParameters {
	return CoinParameters{
		AddressParameters: DefaultAddressParameters(),
		H:                 group.HashToPoint("H"),
		U:                 group.HashToPoint("U"),
		ValueBytes:        8,
		MemoBytes:         128,
	}
}
