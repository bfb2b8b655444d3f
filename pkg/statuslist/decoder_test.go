package statuslist

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/openwallet-labs/sdjwt-go/pkg/sdjwt"
)

func TestStandardDecoderVerifiesAndDecodes(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	registry := sdjwt.NewAlgorithmRegistry()
	vec := NewBitVector(8)
	require.NoError(t, vec.Set(1, true))

	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"iss": "https://status.example",
		"sub": vec.Encode(),
		"iat": time.Now().Unix(),
	})
	signed, err := token.SignedString(key)
	require.NoError(t, err)

	decode := StandardDecoder(sdjwt.StaticKeyProvider(&key.PublicKey), registry, 5*time.Minute)
	decoded, err := decode([]byte(signed), 8)
	require.NoError(t, err)

	revoked, err := decoded.IsRevoked(1)
	require.NoError(t, err)
	require.True(t, revoked)
	revoked, err = decoded.IsRevoked(0)
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestStandardDecoderRejectsFutureIat(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	registry := sdjwt.NewAlgorithmRegistry()
	vec := NewBitVector(8)

	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"iss": "https://status.example",
		"sub": vec.Encode(),
		"iat": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(key)
	require.NoError(t, err)

	decode := StandardDecoder(sdjwt.StaticKeyProvider(&key.PublicKey), registry, 5*time.Minute)
	_, err = decode([]byte(signed), 8)
	require.Error(t, err)
	var sdErr *sdjwt.Error
	require.ErrorAs(t, err, &sdErr)
	require.Equal(t, sdjwt.InvalidSignature, sdErr.Kind)
}

func TestStandardDecoderRejectsBadSignature(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	otherKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	registry := sdjwt.NewAlgorithmRegistry()
	vec := NewBitVector(8)

	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"iss": "https://status.example",
		"sub": vec.Encode(),
	})
	signed, err := token.SignedString(key)
	require.NoError(t, err)

	decode := StandardDecoder(sdjwt.StaticKeyProvider(&otherKey.PublicKey), registry, 5*time.Minute)
	_, err = decode([]byte(signed), 8)
	require.Error(t, err)
}
