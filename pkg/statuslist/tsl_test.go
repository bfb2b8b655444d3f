package statuslist

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openwallet-labs/sdjwt-go/pkg/tsl"
)

func TestDecodeTSLBitVectorBits8(t *testing.T) {
	statuses := []uint8{tsl.StatusValid, tsl.StatusInvalid, tsl.StatusValid, tsl.StatusSuspended}
	encoded, err := tsl.CompressAndEncode(statuses)
	require.NoError(t, err)

	claim := &tsl.StatusListClaim{Bits: 8, Lst: encoded}
	vec, err := DecodeTSLBitVector(claim, len(statuses))
	require.NoError(t, err)

	for i, s := range statuses {
		revoked, err := vec.IsRevoked(i)
		require.NoError(t, err)
		require.Equal(t, s != tsl.StatusValid, revoked, "index %d", i)
	}
}

func TestUnpackEntriesNarrowBits(t *testing.T) {
	// bits=1: one byte holds 8 entries, LSB first.
	raw := []byte{0b00000101} // entries 0 and 2 set
	entries := unpackEntries(raw, 1)
	require.Len(t, entries, 8)
	require.Equal(t, uint8(1), entries[0])
	require.Equal(t, uint8(0), entries[1])
	require.Equal(t, uint8(1), entries[2])
	for i := 3; i < 8; i++ {
		require.Equal(t, uint8(0), entries[i])
	}
}

func TestUnpackEntriesBits8Passthrough(t *testing.T) {
	raw := []byte{0, 1, 2, 0}
	entries := unpackEntries(raw, 8)
	require.Equal(t, []uint8(raw), entries)
}

func TestTSLStatusListClaimRequiresField(t *testing.T) {
	_, err := TSLStatusListClaim(map[string]any{})
	require.Error(t, err)
}

func TestTSLStatusListClaimParses(t *testing.T) {
	claim, err := TSLStatusListClaim(map[string]any{
		"status_list": map[string]any{"bits": float64(8), "lst": "abc"},
	})
	require.NoError(t, err)
	require.Equal(t, 8, claim.Bits)
	require.Equal(t, "abc", claim.Lst)
}
