package sdjwt

import (
	"context"
	"time"
)

// VerifyJWS verifies a compact JWS (not an SD-JWT presentation) under a
// resolved key and algorithm registry, returning its claims. Exported
// for collaborator packages (statuslist) that need to validate a plain
// JWS — a status-list credential — without going through the
// disclosure-aware Verifier pipeline.
func VerifyJWS(ctx context.Context, jws string, keys KeyProvider, registry *AlgorithmRegistry) (map[string]any, error) {
	header, err := parseJWSHeader(jws)
	if err != nil {
		return nil, err
	}
	hint, err := parseJWSPayload(jws)
	if err != nil {
		return nil, err
	}
	alg, _ := header["alg"].(string)
	if !registry.Allowed(alg) {
		return nil, newErr(AlgorithmDisallowed, alg, nil)
	}
	key, err := keys.Resolve(ctx, header, hint)
	if err != nil {
		return nil, newErr(UnresolvedKey, "", err)
	}
	return verifySignature(jws, key, registry)
}

// CheckLifetime enforces exp/nbf against time.Now with the given clock
// skew, exported for the same reason as VerifyJWS.
func CheckLifetime(payload map[string]any, skew time.Duration) error {
	return checkLifetime(payload, skew)
}
