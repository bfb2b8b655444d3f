package vc

import (
	"context"
	"crypto/x509"
	"encoding/base64"

	"github.com/openwallet-labs/sdjwt-go/pkg/sdjwt"
	"github.com/openwallet-labs/sdjwt-go/pkg/trust"
)

// ParseX5C decodes a JOSE header's `x5c` array (base64-standard-encoded
// DER certificates, leaf first) into an x509 chain, for use with
// trust.TrustEvaluator or as a KeyProvider's resolved key source.
func ParseX5C(header map[string]any) (trust.X5CCertChain, error) {
	raw, ok := header["x5c"].([]any)
	if !ok || len(raw) == 0 {
		return nil, sdjwt.NewError(sdjwt.UnresolvedKey, "x5c", nil)
	}
	chain := make(trust.X5CCertChain, 0, len(raw))
	for _, entry := range raw {
		s, ok := entry.(string)
		if !ok {
			return nil, sdjwt.NewError(sdjwt.MalformedEncoding, "x5c", nil)
		}
		der, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, sdjwt.NewError(sdjwt.MalformedEncoding, "x5c", err)
		}
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, sdjwt.NewError(sdjwt.MalformedEncoding, "x5c", err)
		}
		chain = append(chain, cert)
	}
	return chain, nil
}

// X5CKeyProvider resolves the issuer's public key from the JWS header's
// x5c leaf certificate, validating the chain against evaluator before
// trusting the key it carries. A chain the evaluator rejects fails with
// UntrustedIssuer; an evaluator error or a missing leaf fails with
// UnresolvedKey, and a malformed x5c entry with MalformedEncoding. Any of
// these stops the base sdjwt.Verifier pipeline at key resolution, before
// the signature is checked.
func X5CKeyProvider(evaluator trust.TrustEvaluator) sdjwt.KeyProvider {
	return sdjwt.KeyProviderFunc(func(ctx context.Context, header map[string]any, payloadHint map[string]any) (any, error) {
		chain, err := ParseX5C(header)
		if err != nil {
			return nil, err
		}
		iss, _ := payloadHint["iss"].(string)
		decision, err := evaluator.Evaluate(ctx, &trust.EvaluationRequest{
			SubjectID: iss,
			KeyType:   trust.KeyTypeX5C,
			Key:       chain,
			Role:      trust.RoleCredentialIssuer,
		})
		if err != nil {
			return nil, sdjwt.NewError(sdjwt.UnresolvedKey, "x5c", err)
		}
		if !decision.Trusted {
			return nil, sdjwt.NewError(sdjwt.UntrustedIssuer, iss, nil)
		}
		leaf := chain.GetLeafCert()
		if leaf == nil {
			return nil, sdjwt.NewError(sdjwt.UnresolvedKey, "x5c", nil)
		}
		return leaf.PublicKey, nil
	})
}
