package sdjwt

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDigestBuilderLaterWins(t *testing.T) {
	b := newDigestBuilder(AlgSHA256, nil)
	d1, err := NewObjectDisclosure("name", "first")
	require.NoError(t, err)
	d2, err := NewObjectDisclosure("name", "second")
	require.NoError(t, err)

	require.NoError(t, b.addDisclosureDigest("name", d1))
	require.NoError(t, b.addDisclosureDigest("name", d2))

	want, err := d2.Digest(AlgSHA256)
	require.NoError(t, err)

	built := b.build()
	require.Len(t, built, 1)
	require.Equal(t, want, built[0])
}

func TestDigestBuilderBuildIsSorted(t *testing.T) {
	b := newDigestBuilder(AlgSHA256, nil)
	names := []string{"b_claim", "a_claim", "c_claim"}
	for _, n := range names {
		d, err := NewObjectDisclosure(n, n)
		require.NoError(t, err)
		require.NoError(t, b.addDisclosureDigest(n, d))
	}
	built := b.build()
	require.Len(t, built, 3)
	sorted := append([]string(nil), built...)
	sort.Strings(sorted)
	require.Equal(t, sorted, built)
}

func TestDigestBuilderDecoysAreIndistinguishable(t *testing.T) {
	b := newDigestBuilder(AlgSHA256, NewSecureRand())
	require.NoError(t, b.addDecoyDigest())
	require.NoError(t, b.addDecoyDigest())
	built := b.build()
	require.Len(t, built, 2)
	require.NotEqual(t, built[0], built[1])
	for _, digestText := range built {
		require.Len(t, digestText, 43) // unpadded base64url of a 32-byte sha-256 digest
	}
}

func TestDecoyCountWithinBounds(t *testing.T) {
	rnd := NewSeededRand(1)
	for i := 0; i < 100; i++ {
		n := decoyCount(10, 0.5, 2.0, rnd)
		require.GreaterOrEqual(t, n, int(roundHalfAwayFromZero(10*0.5)))
		require.LessOrEqual(t, n, int(roundHalfAwayFromZero(10*2.0)))
	}
}

func TestDecoyCountFixedWhenMinEqualsMax(t *testing.T) {
	rnd := NewSeededRand(2)
	require.Equal(t, 5, decoyCount(10, 0.5, 0.5, rnd))
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	require.Equal(t, 2.0, roundHalfAwayFromZero(1.5))
	require.Equal(t, -2.0, roundHalfAwayFromZero(-1.5))
	require.Equal(t, 1.0, roundHalfAwayFromZero(1.49))
	require.Equal(t, 0.0, roundHalfAwayFromZero(0))
}
