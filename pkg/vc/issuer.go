package vc

import (
	"context"

	"github.com/google/uuid"

	"github.com/openwallet-labs/sdjwt-go/pkg/sdjwt"
)

// Issuer wraps an sdjwt.Issuer, stamping the VC-profile `typ` header and
// requiring callers to supply the retained VC claims (iss, vct) rather
// than leaving them to be accidentally omitted.
type Issuer struct {
	base *sdjwt.Issuer
}

// NewIssuer builds a VC Issuer around an already-configured sdjwt.Issuer.
// Construct the base issuer with vc.WithTypOption to get the correct typ.
func NewIssuer(base *sdjwt.Issuer) *Issuer {
	return &Issuer{base: base}
}

// WithTypOption is sdjwt.WithTyp pre-bound to the VC profile's typ value,
// for use when constructing the base sdjwt.Issuer.
func WithTypOption() sdjwt.IssuerOption {
	return sdjwt.WithTyp(TypHeader)
}

// WithVCTMOption embeds tm as the JOSE header's `vctm` entry (a single-
// element array, the shape draft-ietf-oauth-sd-jwt-vc uses for an
// embedded type metadata document), so Verifier.Verify can recover it
// with DecodeTypeMetadata.
func WithVCTMOption(tm *TypeMetadata) (sdjwt.IssuerOption, error) {
	encoded, err := tm.Encode()
	if err != nil {
		return nil, err
	}
	return sdjwt.WithExtraHeader("vctm", []any{encoded}), nil
}

// Issue builds a VC credential. claims must include `iss` and `vct`
// (both retained/non-disclosable per spec.md); holderJWK binds a `cnf`
// confirmation key when the credential should support key binding. A
// `jti` is generated when the caller didn't already supply one, so every
// issued credential carries a stable identifier for revocation logs and
// holder-side storage keys.
func (i *Issuer) Issue(ctx context.Context, claims map[string]any, cfg sdjwt.IssuanceConfig, holderJWK map[string]any) (*sdjwt.IssuanceBundle, error) {
	if _, ok := claims["vct"].(string); !ok {
		return nil, sdjwt.NewError(sdjwt.MissingRequiredClaim, "vct", nil)
	}
	if _, ok := claims["iss"].(string); !ok {
		return nil, sdjwt.NewError(sdjwt.MissingRequiredClaim, "iss", nil)
	}
	if _, ok := claims["jti"]; !ok {
		claims["jti"] = uuid.NewString()
	}
	return i.base.Issue(ctx, claims, cfg, holderJWK)
}
