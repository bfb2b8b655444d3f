package sdjwt

import (
	"context"
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// randomClaimTree builds a flat claim map of randomized leaves (spec.md
// §8 invariant 1: rehydration must reproduce the original tree exactly),
// plus a matching DisclosureStructure marking every leaf disclosable.
// Leaves are string-shaped only: a numeric claim decodes back as
// json.Number rather than its original Go type, which would make this an
// encoding-shape test rather than a content round-trip.
func randomClaimTree(n int) (map[string]any, *DisclosureStructure) {
	claims := map[string]any{
		"iss": "https://issuer.example",
		"vct": "https://issuer.example/credentials/example",
	}
	structure := &DisclosureStructure{Fields: map[string]*DisclosureStructure{}}
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("claim_%d_%s", i, gofakeit.UUID())
		switch i % 2 {
		case 0:
			claims[name] = gofakeit.Name()
		case 1:
			claims[name] = gofakeit.Email()
		}
		structure.Fields[name] = &DisclosureStructure{Disclose: true}
	}
	return claims, structure
}

func TestPropertyRoundTripReproducesOriginalTree(t *testing.T) {
	key, registry := issuerKey(t)

	for trial := 0; trial < 10; trial++ {
		claims, structure := randomClaimTree(5)

		iss := NewIssuer(key, jwt.SigningMethodES256, registry)
		bundle, err := iss.Issue(context.Background(), claims, IssuanceConfig{Structure: structure}, nil)
		require.NoError(t, err)

		holder, err := NewHolder(bundle.Compact)
		require.NoError(t, err)
		presentation, err := holder.CreatePresentation(context.Background(), func(d *Disclosure) bool { return true }, nil)
		require.NoError(t, err)

		verifier := NewVerifier(StaticKeyProvider(&key.PublicKey), registry)
		result, err := verifier.Verify(context.Background(), presentation, VerificationConfig{})
		require.NoError(t, err)

		if diff := cmp.Diff(claims, result.Claims); diff != "" {
			t.Fatalf("trial %d: rehydrated claims differ from original (-want +got):\n%s", trial, diff)
		}
	}
}
