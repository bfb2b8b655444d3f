package sdjwt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeRetainsTopLevelClaims(t *testing.T) {
	enc := newEncoder(AlgSHA256, DecoyPolicy{}, NewSeededRand(7))
	result, err := enc.Encode(map[string]any{
		"iss":        "https://issuer.example",
		"vct":        "https://issuer.example/credentials/example",
		"given_name": "Alice",
	}, &DisclosureStructure{
		Fields: map[string]*DisclosureStructure{"given_name": {Disclose: true}},
	})
	require.NoError(t, err)
	require.Equal(t, "https://issuer.example", result.Tree["iss"])
	require.Equal(t, "https://issuer.example/credentials/example", result.Tree["vct"])
	require.NotContains(t, result.Tree, "given_name")
	require.Equal(t, AlgSHA256, result.Tree[sdAlgKey])
	require.Len(t, result.Disclosures, 1)
	require.Equal(t, "given_name", result.Disclosures[0].Name)
}

func TestEncodeRejectsReservedTopLevelKey(t *testing.T) {
	enc := newEncoder(AlgSHA256, DecoyPolicy{}, NewSeededRand(1))
	_, err := enc.Encode(map[string]any{"_sd_alg": "sha-256"}, nil)
	require.Error(t, err)
	var sdErr *Error
	require.ErrorAs(t, err, &sdErr)
	require.Equal(t, ReservedKey, sdErr.Kind)
}

func TestEncodeNonDisclosedClaimsPassThrough(t *testing.T) {
	enc := newEncoder(AlgSHA256, DecoyPolicy{}, NewSeededRand(3))
	result, err := enc.Encode(map[string]any{
		"iss":    "https://issuer.example",
		"locale": "en-US",
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "en-US", result.Tree["locale"])
	require.Empty(t, result.Disclosures)
	require.NotContains(t, result.Tree, sdKey)
}

func TestEncodeArrayElementDisclosure(t *testing.T) {
	enc := newEncoder(AlgSHA256, DecoyPolicy{}, NewSeededRand(5))
	result, err := enc.Encode(map[string]any{
		"iss":           "https://issuer.example",
		"nationalities": []any{"US", "SE"},
	}, &DisclosureStructure{
		Fields: map[string]*DisclosureStructure{
			"nationalities": {
				Elements: []*DisclosureStructure{{Disclose: true}, {Disclose: true}},
			},
		},
	})
	require.NoError(t, err)
	arr, ok := result.Tree["nationalities"].([]any)
	require.True(t, ok)
	require.Len(t, arr, 2)
	for _, el := range arr {
		m, ok := el.(map[string]any)
		require.True(t, ok)
		_, hasPlaceholder := m[arrayDigestKey]
		require.True(t, hasPlaceholder)
	}
	require.Len(t, result.Disclosures, 2)
}

func TestEncodeWithDecoysRehydratesCleanly(t *testing.T) {
	enc := newEncoder(AlgSHA256, DecoyPolicy{Min: 2, Max: 2}, NewSeededRand(42))
	result, err := enc.Encode(map[string]any{
		"iss":        "https://issuer.example",
		"given_name": "Alice",
		"email":      "alice@example.com",
	}, &DisclosureStructure{
		Fields: map[string]*DisclosureStructure{
			"given_name": {Disclose: true},
			"email":      {Disclose: true},
		},
	})
	require.NoError(t, err)
	sd, ok := result.Tree[sdKey].([]any)
	require.True(t, ok)
	// 2 real disclosures + round(3 members * 2.0) = 6 decoys (top level
	// only here).
	require.Len(t, sd, 8)

	core := &verifierCore{alg: AlgSHA256}
	claims, err := core.rehydrateChecked(result.Tree, result.Disclosures)
	require.NoError(t, err)
	require.Equal(t, "Alice", claims["given_name"])
	require.Equal(t, "alice@example.com", claims["email"])
	require.NotContains(t, claims, sdKey)
	require.NotContains(t, claims, sdAlgKey)
}
