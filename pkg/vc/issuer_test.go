package vc

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/openwallet-labs/sdjwt-go/pkg/sdjwt"
)

func TestIssuerRequiresVCT(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	registry := sdjwt.NewAlgorithmRegistry()
	base := sdjwt.NewIssuer(key, jwt.SigningMethodES256, registry, WithTypOption())
	issuer := NewIssuer(base)

	_, err = issuer.Issue(context.Background(), map[string]any{"iss": "https://issuer.example"}, sdjwt.IssuanceConfig{}, nil)
	require.Error(t, err)
	var sdErr *sdjwt.Error
	require.ErrorAs(t, err, &sdErr)
	require.Equal(t, sdjwt.MissingRequiredClaim, sdErr.Kind)
	require.Equal(t, "vct", sdErr.Field)
}

func TestIssuerRequiresIss(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	registry := sdjwt.NewAlgorithmRegistry()
	base := sdjwt.NewIssuer(key, jwt.SigningMethodES256, registry, WithTypOption())
	issuer := NewIssuer(base)

	_, err = issuer.Issue(context.Background(), map[string]any{"vct": "https://issuer.example/credentials/example"}, sdjwt.IssuanceConfig{}, nil)
	require.Error(t, err)
	var sdErr *sdjwt.Error
	require.ErrorAs(t, err, &sdErr)
	require.Equal(t, sdjwt.MissingRequiredClaim, sdErr.Kind)
	require.Equal(t, "iss", sdErr.Field)
}

func TestIssuerDelegatesToBaseIssuer(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	registry := sdjwt.NewAlgorithmRegistry()
	base := sdjwt.NewIssuer(key, jwt.SigningMethodES256, registry, WithTypOption())
	issuer := NewIssuer(base)

	bundle, err := issuer.Issue(context.Background(), map[string]any{
		"iss": "https://issuer.example",
		"vct": "https://issuer.example/credentials/example",
	}, sdjwt.IssuanceConfig{}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, bundle.Compact)

	verifier := sdjwt.NewVerifier(sdjwt.StaticKeyProvider(&key.PublicKey), registry)
	result, err := verifier.Verify(context.Background(), bundle.Compact, sdjwt.VerificationConfig{})
	require.NoError(t, err)
	require.Equal(t, "https://issuer.example", result.Claims["iss"])
	require.Equal(t, "https://issuer.example/credentials/example", result.Claims["vct"])
	jti, _ := result.Claims["jti"].(string)
	require.NotEmpty(t, jti)
}

func TestIssuerPreservesCallerSuppliedJTI(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	registry := sdjwt.NewAlgorithmRegistry()
	base := sdjwt.NewIssuer(key, jwt.SigningMethodES256, registry, WithTypOption())
	issuer := NewIssuer(base)

	bundle, err := issuer.Issue(context.Background(), map[string]any{
		"iss": "https://issuer.example",
		"vct": "https://issuer.example/credentials/example",
		"jti": "urn:credential:fixed-id",
	}, sdjwt.IssuanceConfig{}, nil)
	require.NoError(t, err)

	verifier := sdjwt.NewVerifier(sdjwt.StaticKeyProvider(&key.PublicKey), registry)
	result, err := verifier.Verify(context.Background(), bundle.Compact, sdjwt.VerificationConfig{})
	require.NoError(t, err)
	require.Equal(t, "urn:credential:fixed-id", result.Claims["jti"])
}
