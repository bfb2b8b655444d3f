package sdjwt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDigestAlgorithmAllowed(t *testing.T) {
	require.True(t, DigestAlgorithmAllowed(AlgSHA256))
	require.True(t, DigestAlgorithmAllowed(AlgSHA384))
	require.True(t, DigestAlgorithmAllowed(AlgSHA512))
	require.False(t, DigestAlgorithmAllowed("sha-1"))
	require.False(t, DigestAlgorithmAllowed("md5"))
	require.False(t, DigestAlgorithmAllowed(""))
}

func TestAlgorithmRegistryDefaults(t *testing.T) {
	reg := NewAlgorithmRegistry()
	require.True(t, reg.Allowed("ES256"))
	require.True(t, reg.Allowed("ES384"))
	require.True(t, reg.Allowed("ES512"))
	require.True(t, reg.Allowed("EdDSA"))
	require.False(t, reg.Allowed("HS256"))

	m, err := reg.SignatureMethod("ES256")
	require.NoError(t, err)
	require.Equal(t, "ES256", m.Alg())

	_, err = reg.SignatureMethod("none")
	require.Error(t, err)
	var sdErr *Error
	require.ErrorAs(t, err, &sdErr)
	require.Equal(t, AlgorithmDisallowed, sdErr.Kind)
}

func TestAlgorithmRegistryExtra(t *testing.T) {
	reg := NewAlgorithmRegistry("PS256")
	require.True(t, reg.Allowed("PS256"))
	// Unknown identifiers are silently ignored rather than erroring.
	reg2 := NewAlgorithmRegistry("not-a-real-alg")
	require.False(t, reg2.Allowed("not-a-real-alg"))
}
