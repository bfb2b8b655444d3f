package vc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestTypeMetadataEncodeDecodeRoundTrip(t *testing.T) {
	tm := &TypeMetadata{
		VCT:  "https://issuer.example/credentials/example",
		Name: "Example Credential",
		Display: []TypeDisplay{
			{Lang: "en-US", Name: "Example Credential"},
		},
		Claims: []ClaimMeta{
			{Path: []*string{strPtr("address"), strPtr("country")}, Mandatory: true},
		},
	}

	encoded, err := tm.Encode()
	require.NoError(t, err)

	decoded, err := DecodeTypeMetadata(encoded)
	require.NoError(t, err)
	require.Equal(t, tm.VCT, decoded.VCT)
	require.Equal(t, tm.Name, decoded.Name)
	require.Len(t, decoded.Claims, 1)
	require.Equal(t, "$.address.country", decoded.Claims[0].JSONPath())
	require.True(t, decoded.Claims[0].Mandatory)
}

func TestDecodeTypeMetadataAcceptsUnpaddedInput(t *testing.T) {
	tm := &TypeMetadata{VCT: "https://issuer.example/credentials/example"}
	encoded, err := tm.Encode()
	require.NoError(t, err)

	// Strip padding to exercise the raw-url-encoding fallback.
	unpadded := encoded
	for len(unpadded) > 0 && unpadded[len(unpadded)-1] == '=' {
		unpadded = unpadded[:len(unpadded)-1]
	}

	decoded, err := DecodeTypeMetadata(unpadded)
	require.NoError(t, err)
	require.Equal(t, tm.VCT, decoded.VCT)
}

func TestClaimMetaJSONPathEmptyWhenNoPath(t *testing.T) {
	var c *ClaimMeta
	require.Equal(t, "", c.JSONPath())

	empty := &ClaimMeta{}
	require.Equal(t, "", empty.JSONPath())
}
