package sdjwt

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"time"

	"github.com/go-logr/logr"
)

// KeyProvider resolves the issuer's public signing key from a parsed JWS
// header, spec.md §6.3. Implementations must be deterministic per
// header; a lookup failure must surface as UnresolvedKey.
type KeyProvider interface {
	Resolve(ctx context.Context, header map[string]any, payloadHint map[string]any) (any, error)
}

// KeyProviderFunc adapts a plain function to KeyProvider.
type KeyProviderFunc func(ctx context.Context, header map[string]any, payloadHint map[string]any) (any, error)

func (f KeyProviderFunc) Resolve(ctx context.Context, header map[string]any, payloadHint map[string]any) (any, error) {
	return f(ctx, header, payloadHint)
}

// StaticKeyProvider resolves every header to the same fixed public key,
// the common case of a single pinned issuer key.
func StaticKeyProvider(key any) KeyProvider {
	return KeyProviderFunc(func(_ context.Context, _ map[string]any, _ map[string]any) (any, error) {
		return key, nil
	})
}

// VerificationResult is C8's output, spec.md §4.8 step 10.
type VerificationResult struct {
	Claims     map[string]any
	KBVerified bool
	Header     map[string]any
}

// Verifier implements C8's pipeline: tokenize, verify signature, parse
// and map disclosures, rehydrate, and optionally verify key binding.
type Verifier struct {
	keys     KeyProvider
	registry *AlgorithmRegistry
	log      logr.Logger
}

// VerifierOption configures a Verifier at construction time.
type VerifierOption func(*Verifier)

// WithVerifierLogger attaches a structured logger; the default discards.
func WithVerifierLogger(log logr.Logger) VerifierOption {
	return func(v *Verifier) { v.log = log }
}

// NewVerifier builds a Verifier around a key-resolution collaborator and
// an algorithm registry restricting acceptable signature algorithms.
func NewVerifier(keys KeyProvider, registry *AlgorithmRegistry, opts ...VerifierOption) *Verifier {
	v := &Verifier{keys: keys, registry: registry, log: logr.Discard()}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Verify runs the full C8 pipeline over a compact SD-JWT presentation.
func (v *Verifier) Verify(ctx context.Context, presentation string, cfg VerificationConfig) (*VerificationResult, error) {
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, newErr(MalformedEncoding, "config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	jwsPart, rawDisclosures, kbJWT, err := splitPresentation(presentation)
	if err != nil {
		return nil, err
	}

	header, err := parseJWSHeader(jwsPart)
	if err != nil {
		return nil, err
	}
	hint, err := parseJWSPayload(jwsPart)
	if err != nil {
		return nil, err
	}

	alg, _ := header["alg"].(string)
	if !v.registry.Allowed(alg) || !algInList(alg, cfg.AllowedSignatureAlgs) {
		return nil, newErr(AlgorithmDisallowed, alg, nil)
	}

	key, err := v.keys.Resolve(ctx, header, hint)
	if err != nil {
		return nil, newErr(UnresolvedKey, "", err)
	}

	payload, err := verifySignature(jwsPart, key, v.registry)
	if err != nil {
		return nil, err
	}

	if cfg.TrustedIssuer != "" {
		if iss, _ := payload["iss"].(string); iss != cfg.TrustedIssuer {
			return nil, newErr(UntrustedIssuer, iss, nil)
		}
	}
	if err := checkLifetime(payload, cfg.ClockSkew); err != nil {
		return nil, err
	}

	sdAlg, _ := payload[sdAlgKey].(string)
	if sdAlg == "" {
		sdAlg = AlgSHA256
	}
	if !DigestAlgorithmAllowed(sdAlg) {
		return nil, newErr(AlgorithmDisallowed, sdAlg, nil)
	}

	disclosures := make([]*Disclosure, 0, len(rawDisclosures))
	for _, enc := range rawDisclosures {
		d, err := parseDisclosure(enc)
		if err != nil {
			return nil, err
		}
		disclosures = append(disclosures, d)
	}

	core := &verifierCore{alg: sdAlg}
	claims, err := core.rehydrateChecked(payload, disclosures)
	if err != nil {
		return nil, err
	}
	delete(claims, sdAlgKey)

	result := &VerificationResult{Claims: claims, Header: header}

	if cfg.RequireKB && kbJWT == "" {
		return nil, newErr(KeyBindingFailed, "kb_jwt", nil)
	}
	if kbJWT != "" {
		prefix := combine(jwsPart, rawDisclosures, "")
		if err := v.verifyKeyBinding(ctx, kbJWT, prefix, sdAlg, payload, cfg); err != nil {
			return nil, err
		}
		result.KBVerified = true
	}

	v.log.V(1).Info("verified sd-jwt", "claims", len(result.Claims), "kb", result.KBVerified)
	return result, nil
}

func algInList(alg string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == alg {
			return true
		}
	}
	return false
}

// checkLifetime enforces exp/nbf against time.Now with skew tolerance.
func checkLifetime(payload map[string]any, skew time.Duration) error {
	now := time.Now()
	if exp, ok := numericClaim(payload, "exp"); ok {
		if now.After(time.Unix(exp, 0).Add(skew)) {
			return newErr(InvalidSignature, "exp", nil)
		}
	}
	if nbf, ok := numericClaim(payload, "nbf"); ok {
		if now.Before(time.Unix(nbf, 0).Add(-skew)) {
			return newErr(InvalidSignature, "nbf", nil)
		}
	}
	return nil
}

func numericClaim(m map[string]any, key string) (int64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		i, err := n.Int64()
		if err == nil {
			return i, true
		}
	}
	return 0, false
}

// verifyKeyBinding implements spec.md §4.8 step 9.
func (v *Verifier) verifyKeyBinding(ctx context.Context, kbJWT, prefix, sdAlg string, issuerPayload map[string]any, cfg VerificationConfig) error {
	header, err := parseJWSHeader(kbJWT)
	if err != nil {
		return newErr(KeyBindingFailed, "", err)
	}
	if typ, _ := header["typ"].(string); typ != "kb+jwt" {
		return newErr(KeyBindingFailed, "typ", nil)
	}

	holderKey, err := resolveHolderKey(issuerPayload)
	if err != nil {
		return err
	}

	claims, err := verifySignature(kbJWT, holderKey, v.registry)
	if err != nil {
		return newErr(KeyBindingFailed, "", err)
	}

	_, wantHash, err := digest(sdAlg, []byte(prefix))
	if err != nil {
		return err
	}
	gotHash, _ := claims["sd_hash"].(string)
	if subtle.ConstantTimeCompare([]byte(wantHash), []byte(gotHash)) != 1 {
		return newErr(DigestMismatch, "sd_hash", nil)
	}

	if cfg.ExpectedNonce != "" {
		nonce, _ := claims["nonce"].(string)
		if subtle.ConstantTimeCompare([]byte(nonce), []byte(cfg.ExpectedNonce)) != 1 {
			return newErr(KeyBindingFailed, "nonce", nil)
		}
	}
	if cfg.ExpectedAudience != "" {
		aud, _ := claims["aud"].(string)
		if aud != cfg.ExpectedAudience {
			return newErr(KeyBindingFailed, "aud", nil)
		}
	}
	if err := checkLifetime(claims, cfg.ClockSkew); err != nil {
		return newErr(KeyBindingFailed, "iat", err)
	}
	return nil
}

// resolveHolderKey extracts the holder's public key from the issuer
// payload's cnf.jwk confirmation claim, the only cnf shape this library
// produces (SPEC_FULL.md open-question decision).
func resolveHolderKey(payload map[string]any) (any, error) {
	cnf, ok := payload["cnf"].(map[string]any)
	if !ok {
		return nil, newErr(KeyBindingFailed, "cnf", nil)
	}
	jwkMap, ok := cnf["jwk"].(map[string]any)
	if !ok {
		return nil, newErr(KeyBindingFailed, "cnf.jwk", nil)
	}
	return jwkToPublicKey(jwkMap)
}
