package vc

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/openwallet-labs/sdjwt-go/pkg/sdjwt"
	"github.com/openwallet-labs/sdjwt-go/pkg/trust"
)

// Result is C9's output: the base SD-JWT verification result plus the
// VC profile's extracted payload fields.
type Result struct {
	sdjwt.VerificationResult
	Payload      *Payload
	TypeMetadata *TypeMetadata
}

// StatusChecker answers "is this index revoked" for a status-list URI,
// satisfied by *statuslist.Engine in production and by a stub in tests.
type StatusChecker interface {
	IsRevoked(ctx context.Context, uri string, idx, bitLen int) (bool, error)
}

// Verifier implements C9 on top of an sdjwt.Verifier: it does not pin a
// single top-level issuer claim into the base verification (VCs place
// the issuer identity in the credential body itself, per spec.md
// §4.9 step 1) and instead enforces issuer trust, a required `vct`, and
// status-list revocation afterward.
type Verifier struct {
	base          *sdjwt.Verifier
	trustedIssuer string
	trustEval     trust.TrustEvaluator
	status        StatusChecker
	statusBitLen  int
	log           logr.Logger
}

// VerifierOption configures a Verifier at construction time.
type VerifierOption func(*Verifier)

// WithTrustEvaluator attaches a certificate-chain trust evaluator
// (SPEC_FULL.md supplemented feature 2), used in addition to or instead
// of a single pinned TrustedIssuer string.
func WithTrustEvaluator(ev trust.TrustEvaluator) VerifierOption {
	return func(v *Verifier) { v.trustEval = ev }
}

// WithCachedTrustEvaluator wraps ev in a trust.CachingTrustEvaluator
// before attaching it, so that verifying many credentials from the same
// issuer in a short window evaluates the chain once instead of on every
// call. C9 re-runs issuer trust evaluation on every Verify, and an x5c
// chain validation is the expensive part of that path.
func WithCachedTrustEvaluator(ev trust.TrustEvaluator, cacheCfg trust.TrustCacheConfig) VerifierOption {
	return func(v *Verifier) { v.trustEval = trust.NewCachingTrustEvaluator(ev, cacheCfg) }
}

// WithTrustEvaluators combines several trust sources behind one
// trust.CompositeEvaluator under strategy (e.g. a local trust-anchor
// list tried first, falling back to a remote trust framework), then
// caches the combined result the same way WithCachedTrustEvaluator does.
func WithTrustEvaluators(strategy trust.CompositeStrategy, cacheCfg trust.TrustCacheConfig, evs ...trust.TrustEvaluator) VerifierOption {
	composite := trust.NewCompositeEvaluator(strategy, evs...)
	return func(v *Verifier) { v.trustEval = trust.NewCachingTrustEvaluator(composite, cacheCfg) }
}

// WithStatusChecker attaches the status-list engine used to resolve
// `status.status_list` pointers.
func WithStatusChecker(checker StatusChecker, bitLen int) VerifierOption {
	return func(v *Verifier) { v.status = checker; v.statusBitLen = bitLen }
}

// WithLogger attaches a structured logger.
func WithLogger(log logr.Logger) VerifierOption {
	return func(v *Verifier) { v.log = log }
}

// NewVerifier builds a C9 Verifier around a base sdjwt.Verifier and the
// issuer identifier credentials from this issuer must carry.
func NewVerifier(base *sdjwt.Verifier, trustedIssuer string, opts ...VerifierOption) *Verifier {
	v := &Verifier{base: base, trustedIssuer: trustedIssuer, log: logr.Discard()}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Verify runs C8 (via the base Verifier, with issuer-claim checking left
// to this method) then layers VC-specific checks: vct presence, issuer
// trust, and status-list revocation, per spec.md §4.9.
func (v *Verifier) Verify(ctx context.Context, presentation string, cfg sdjwt.VerificationConfig) (*Result, error) {
	// The base pipeline must not reject on TrustedIssuer mismatch itself —
	// this layer owns that check so it can also consult a TrustEvaluator.
	cfg.TrustedIssuer = ""

	base, err := v.base.Verify(ctx, presentation, cfg)
	if err != nil {
		return nil, err
	}

	payload, err := FromClaims(base.Claims)
	if err != nil {
		return nil, err
	}

	if err := v.checkIssuerTrust(ctx, payload, base.Header); err != nil {
		return nil, err
	}

	if payload.Status != nil && v.status != nil {
		revoked, err := v.status.IsRevoked(ctx, payload.Status.StatusList.URI, payload.Status.StatusList.Idx, v.statusBitLen)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, sdjwt.NewError(sdjwt.Revoked, payload.Status.StatusList.URI, nil)
		}
	}

	tm := v.decodeTypeMetadata(base.Header)

	v.log.V(1).Info("verified vc", "vct", payload.Type, "iss", payload.Issuer, "jti", payload.ID)
	return &Result{VerificationResult: *base, Payload: payload, TypeMetadata: tm}, nil
}

// decodeTypeMetadata extracts and decodes the first `vctm` entry from the
// JOSE header, if any. A VCTM document is non-normative display/disclosure
// metadata (SPEC_FULL.md supplemented feature 1): a missing or malformed
// entry never fails verification, it is just logged and dropped.
func (v *Verifier) decodeTypeMetadata(header map[string]any) *TypeMetadata {
	raw, ok := header["vctm"].([]any)
	if !ok || len(raw) == 0 {
		return nil
	}
	encoded, ok := raw[0].(string)
	if !ok {
		return nil
	}
	tm, err := DecodeTypeMetadata(encoded)
	if err != nil {
		v.log.V(1).Info("discarding malformed vctm header", "err", err.Error())
		return nil
	}
	return tm
}

func (v *Verifier) checkIssuerTrust(ctx context.Context, payload *Payload, header map[string]any) error {
	if v.trustedIssuer != "" && payload.Issuer != v.trustedIssuer {
		return sdjwt.NewError(sdjwt.UntrustedIssuer, payload.Issuer, nil)
	}
	if v.trustEval == nil {
		return nil
	}
	req := &trust.EvaluationRequest{
		SubjectID: payload.Issuer,
		KeyType:   trust.KeyTypeX5C,
		Role:      trust.RoleCredentialIssuer,
	}
	if chain, err := ParseX5C(header); err == nil {
		req.Key = chain
	}
	decision, err := v.trustEval.Evaluate(ctx, req)
	if err != nil {
		return sdjwt.NewError(sdjwt.UntrustedIssuer, payload.Issuer, err)
	}
	if !decision.Trusted {
		return sdjwt.NewError(sdjwt.UntrustedIssuer, payload.Issuer, nil)
	}
	return nil
}
