// Package statuslist implements the Status-List credential lookup
// collaborator (C10): a cached, rate-limited client that fetches a
// remote status list and answers "is index i revoked" queries.
package statuslist

import (
	"encoding/base64"

	"github.com/openwallet-labs/sdjwt-go/pkg/sdjwt"
)

// BitVector is the decoded form of a status-list credential's `sub`
// claim: a packed bit string where bit i is 1 iff the credential bound
// to index i is revoked/suspended, spec.md §3/§4.10's baseline model.
type BitVector struct {
	bits []byte
	len  int
}

// DecodeBitVector parses a base64url-encoded packed bit string into a
// BitVector of bitLen bits.
func DecodeBitVector(encoded string, bitLen int) (*BitVector, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		if raw, err = base64.URLEncoding.DecodeString(encoded); err != nil {
			return nil, sdjwt.NewError(sdjwt.MalformedEncoding, "status_list", err)
		}
	}
	want := (bitLen + 7) / 8
	if len(raw) < want {
		return nil, sdjwt.NewError(sdjwt.MalformedEncoding, "status_list", nil)
	}
	return &BitVector{bits: raw, len: bitLen}, nil
}

// NewBitVector builds a BitVector of n bits, all initially 0, for
// issuance-side status-list construction.
func NewBitVector(n int) *BitVector {
	return &BitVector{bits: make([]byte, (n+7)/8), len: n}
}

// Len returns the number of indexable bits.
func (v *BitVector) Len() int {
	return v.len
}

// IsRevoked reports whether bit i is set. i >= Len() fails with
// IndexOutOfRange, per spec.md §8 invariant 8.
func (v *BitVector) IsRevoked(i int) (bool, error) {
	if i < 0 || i >= v.len {
		return false, sdjwt.NewError(sdjwt.IndexOutOfRange, "idx", nil)
	}
	byteIdx := i / 8
	bitPos := uint(i % 8)
	return (v.bits[byteIdx]>>bitPos)&1 == 1, nil
}

// Set marks index i revoked (true) or valid (false).
func (v *BitVector) Set(i int, revoked bool) error {
	if i < 0 || i >= v.len {
		return sdjwt.NewError(sdjwt.IndexOutOfRange, "idx", nil)
	}
	byteIdx := i / 8
	bitPos := uint(i % 8)
	if revoked {
		v.bits[byteIdx] |= 1 << bitPos
	} else {
		v.bits[byteIdx] &^= 1 << bitPos
	}
	return nil
}

// Encode base64url-encodes the packed bit string for embedding as a
// status-list credential's `sub` claim.
func (v *BitVector) Encode() string {
	return base64.RawURLEncoding.EncodeToString(v.bits)
}
