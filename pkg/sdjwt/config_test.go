package sdjwt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIssuanceConfigDefaults(t *testing.T) {
	cfg := IssuanceConfig{}
	require.NoError(t, cfg.ApplyDefaults())
	require.Equal(t, AlgSHA256, cfg.DigestAlgorithm)
	require.Equal(t, "ES256", cfg.SignatureAlgorithm)
	require.True(t, cfg.IncludeSDAlg)
	require.NoError(t, cfg.Validate())
}

func TestIssuanceConfigRejectsBadDigestAlgorithm(t *testing.T) {
	cfg := IssuanceConfig{DigestAlgorithm: "sha-1", SignatureAlgorithm: "ES256"}
	err := cfg.Validate()
	require.Error(t, err)
	var sdErr *Error
	require.ErrorAs(t, err, &sdErr)
	require.Equal(t, AlgorithmDisallowed, sdErr.Kind)
}

func TestIssuanceConfigRejectsUnknownDigestAlgorithm(t *testing.T) {
	cfg := IssuanceConfig{DigestAlgorithm: "md5", SignatureAlgorithm: "ES256"}
	err := cfg.Validate()
	require.Error(t, err)
	var sdErr *Error
	require.ErrorAs(t, err, &sdErr)
	require.Equal(t, AlgorithmDisallowed, sdErr.Kind)
}

func TestIssuanceConfigRejectsDecoyMinAboveMax(t *testing.T) {
	cfg := IssuanceConfig{DigestAlgorithm: AlgSHA256, SignatureAlgorithm: "ES256", DecoyMin: 5, DecoyMax: 1}
	err := cfg.Validate()
	require.Error(t, err)
}

func TestVerificationConfigDefaults(t *testing.T) {
	cfg := VerificationConfig{}
	require.NoError(t, cfg.ApplyDefaults())
	require.ElementsMatch(t, []string{"ES256", "ES384", "ES512", "EdDSA"}, cfg.AllowedSignatureAlgs)
	require.NoError(t, cfg.Validate())
}

func TestVerificationConfigRejectsEmptyAllowList(t *testing.T) {
	cfg := VerificationConfig{AllowedSignatureAlgs: []string{}}
	err := cfg.Validate()
	require.Error(t, err)
}
