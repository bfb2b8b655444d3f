package statuslist

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func countingTransport(calls *int32, vec *BitVector) Transport {
	return TransportFunc(func(ctx context.Context, uri string, deadline time.Time) ([]byte, string, error) {
		atomic.AddInt32(calls, 1)
		return []byte(vec.Encode()), "application/statuslist+jwt", nil
	})
}

func fixedBitDecoder(bitLen int) Decoder {
	return func(body []byte, _ int) (*BitVector, error) {
		return DecodeBitVector(string(body), bitLen)
	}
}

func TestEngineCachesWithinTTL(t *testing.T) {
	vec := NewBitVector(8)
	require.NoError(t, vec.Set(2, true))

	var calls int32
	engine := NewEngine(countingTransport(&calls, vec), fixedBitDecoder(8), EngineConfig{
		CacheTTL:  time.Minute,
		RateLimit: 1000,
		RateBurst: 10,
	})
	defer engine.Stop()

	for i := 0; i < 5; i++ {
		revoked, err := engine.IsRevoked(context.Background(), "https://status.example/list", 2, 8)
		require.NoError(t, err)
		require.True(t, revoked)
	}
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestEngineInvalidateForcesRefetch(t *testing.T) {
	vec := NewBitVector(8)
	var calls int32
	engine := NewEngine(countingTransport(&calls, vec), fixedBitDecoder(8), EngineConfig{
		CacheTTL:  time.Minute,
		RateLimit: 1000,
		RateBurst: 10,
	})
	defer engine.Stop()

	_, err := engine.IsRevoked(context.Background(), "https://status.example/list", 0, 8)
	require.NoError(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))

	engine.Invalidate("https://status.example/list")

	_, err = engine.IsRevoked(context.Background(), "https://status.example/list", 0, 8)
	require.NoError(t, err)
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestEngineDistinctURIsFetchIndependently(t *testing.T) {
	vec := NewBitVector(8)
	var calls int32
	engine := NewEngine(countingTransport(&calls, vec), fixedBitDecoder(8), EngineConfig{
		CacheTTL:  time.Minute,
		RateLimit: 1000,
		RateBurst: 10,
	})
	defer engine.Stop()

	_, err := engine.IsRevoked(context.Background(), "https://status.example/a", 0, 8)
	require.NoError(t, err)
	_, err = engine.IsRevoked(context.Background(), "https://status.example/b", 0, 8)
	require.NoError(t, err)
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
