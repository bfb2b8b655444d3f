package statuslist

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openwallet-labs/sdjwt-go/pkg/sdjwt"
)

func TestBitVectorSetAndGet(t *testing.T) {
	v := NewBitVector(16)
	revoked, err := v.IsRevoked(3)
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, v.Set(3, true))
	revoked, err = v.IsRevoked(3)
	require.NoError(t, err)
	require.True(t, revoked)

	require.NoError(t, v.Set(3, false))
	revoked, err = v.IsRevoked(3)
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestBitVectorIndexOutOfRange(t *testing.T) {
	v := NewBitVector(8)
	_, err := v.IsRevoked(8)
	require.Error(t, err)
	var sdErr *sdjwt.Error
	require.ErrorAs(t, err, &sdErr)
	require.Equal(t, sdjwt.IndexOutOfRange, sdErr.Kind)

	err = v.Set(-1, true)
	require.Error(t, err)
}

func TestBitVectorEncodeDecodeRoundTrip(t *testing.T) {
	v := NewBitVector(20)
	require.NoError(t, v.Set(0, true))
	require.NoError(t, v.Set(19, true))
	require.NoError(t, v.Set(5, true))

	encoded := v.Encode()
	decoded, err := DecodeBitVector(encoded, 20)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		want, err := v.IsRevoked(i)
		require.NoError(t, err)
		got, err := decoded.IsRevoked(i)
		require.NoError(t, err)
		require.Equal(t, want, got, "index %d", i)
	}
}

func TestDecodeBitVectorRejectsShortInput(t *testing.T) {
	_, err := DecodeBitVector("AA", 1000)
	require.Error(t, err)
}
