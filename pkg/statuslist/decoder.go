package statuslist

import (
	"context"
	"encoding/json"
	"time"

	"github.com/openwallet-labs/sdjwt-go/pkg/sdjwt"
)

// StandardDecoder builds the C10-contract Decoder: parse the fetched
// body as a JWS, verify it under the trusted issuer's key (the same
// key-provider injected into the VC verifier), reject a lifetime-invalid
// list, then extract `sub` as the packed bit string, per spec.md §4.10.
func StandardDecoder(keys sdjwt.KeyProvider, registry *sdjwt.AlgorithmRegistry, clockSkew time.Duration) Decoder {
	return func(body []byte, bitLen int) (*BitVector, error) {
		claims, err := sdjwt.VerifyJWS(context.Background(), string(body), keys, registry)
		if err != nil {
			return nil, err
		}
		if err := sdjwt.CheckLifetime(claims, clockSkew); err != nil {
			return nil, err
		}
		if err := checkIssuedAtNotFuture(claims, clockSkew); err != nil {
			return nil, err
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			return nil, sdjwt.NewError(sdjwt.MalformedEncoding, "sub", nil)
		}
		return DecodeBitVector(sub, bitLen)
	}
}

// checkIssuedAtNotFuture rejects a status list stamped with an `iat`
// further in the future than the clock-skew tolerance, per spec.md §4.10:
// a missing `exp` is accepted, but a future `iat` is never acceptable
// regardless of `exp`.
func checkIssuedAtNotFuture(claims map[string]any, skew time.Duration) error {
	v, ok := claims["iat"]
	if !ok {
		return nil
	}
	var iat int64
	switch n := v.(type) {
	case float64:
		iat = int64(n)
	case int64:
		iat = n
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return nil
		}
		iat = i
	default:
		return nil
	}
	if time.Now().Add(skew).Before(time.Unix(iat, 0)) {
		return sdjwt.NewError(sdjwt.InvalidSignature, "iat", nil)
	}
	return nil
}
