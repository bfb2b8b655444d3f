package sdjwt

import (
	"context"
	"strings"

	"github.com/go-logr/logr"
	"github.com/golang-jwt/jwt/v5"
)

// TypHeader is the JOSE `typ` value an Issuer stamps on plain (non-VC)
// SD-JWTs. The VC profile (pkg/vc) overrides this with its own variant.
const TypHeader = "sd+jwt"

// IssuanceBundle is C6's output: the compact issuance string plus its
// constituent parts, useful to callers that want to inspect or re-wrap
// the result (e.g. into flattened/general JSON serialization).
type IssuanceBundle struct {
	Compact     string
	JWS         string
	Disclosures []*Disclosure
}

// Issuer turns a claim tree into a signed, selectively-disclosable
// SD-JWT, per spec.md §4.6. An Issuer holds no mutable state across
// calls beyond its configuration and injected collaborators, so one
// instance may be shared across goroutines.
type Issuer struct {
	key      any
	signer   Signer
	method   jwt.SigningMethod
	registry *AlgorithmRegistry
	log      logr.Logger
	typ      string
	extra    map[string]any
}

// IssuerOption configures an Issuer at construction time.
type IssuerOption func(*Issuer)

// WithLogger attaches a structured logger; the default discards.
func WithLogger(log logr.Logger) IssuerOption {
	return func(i *Issuer) { i.log = log }
}

// WithTyp overrides the JOSE `typ` header value (used by the VC profile).
func WithTyp(typ string) IssuerOption {
	return func(i *Issuer) { i.typ = typ }
}

// WithExtraHeader stamps an additional, fixed JOSE header field on every
// credential this Issuer issues (used by the VC profile to carry `vctm`).
func WithExtraHeader(key string, value any) IssuerOption {
	return func(i *Issuer) {
		if i.extra == nil {
			i.extra = make(map[string]any)
		}
		i.extra[key] = value
	}
}

// NewIssuer builds an Issuer that signs with an in-process key.
func NewIssuer(key any, method jwt.SigningMethod, registry *AlgorithmRegistry, opts ...IssuerOption) *Issuer {
	iss := &Issuer{key: key, method: method, registry: registry, log: logr.Discard(), typ: TypHeader}
	for _, o := range opts {
		o(iss)
	}
	return iss
}

// NewIssuerWithSigner builds an Issuer that delegates signing to an
// external Signer (e.g. an HSM).
func NewIssuerWithSigner(signer Signer, registry *AlgorithmRegistry, opts ...IssuerOption) *Issuer {
	iss := &Issuer{signer: signer, registry: registry, log: logr.Discard(), typ: TypHeader}
	for _, o := range opts {
		o(iss)
	}
	return iss
}

// Issue builds the compact SD-JWT for claims under cfg, optionally
// binding holderJWK (a `cnf.jwk`-shaped map) to the credential.
func (i *Issuer) Issue(ctx context.Context, claims map[string]any, cfg IssuanceConfig, holderJWK map[string]any) (*IssuanceBundle, error) {
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, newErr(MalformedEncoding, "config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !i.registry.Allowed(cfg.SignatureAlgorithm) {
		return nil, newErr(AlgorithmDisallowed, cfg.SignatureAlgorithm, nil)
	}

	enc := newEncoder(cfg.DigestAlgorithm, DecoyPolicy{Min: cfg.DecoyMin, Max: cfg.DecoyMax}, NewSecureRand())
	result, err := enc.Encode(claims, cfg.Structure)
	if err != nil {
		return nil, err
	}

	if holderJWK != nil {
		result.Tree["cnf"] = map[string]any{"jwk": holderJWK}
	}

	header := map[string]any{"typ": i.typ, "alg": cfg.SignatureAlgorithm}
	for k, v := range i.extra {
		header[k] = v
	}

	var jws string
	if i.signer != nil {
		jws, err = signWithSigner(ctx, header, result.Tree, i.signer)
	} else {
		jws, err = sign(header, result.Tree, i.method, i.key)
	}
	if err != nil {
		return nil, err
	}

	encodedDisclosures := make([]string, len(result.Disclosures))
	for idx, d := range result.Disclosures {
		encodedDisclosures[idx] = d.Encoded()
	}

	i.log.V(1).Info("issued sd-jwt", "disclosures", len(result.Disclosures))

	return &IssuanceBundle{
		Compact:     combine(jws, encodedDisclosures, ""),
		JWS:         jws,
		Disclosures: result.Disclosures,
	}, nil
}

// FlattenedJSON is the flattened JWS JSON serialization envelope,
// spec.md §6.2, carrying disclosures/KB-JWT in the unprotected header.
type FlattenedJSON struct {
	Protected string         `json:"protected"`
	Payload   string         `json:"payload"`
	Signature string         `json:"signature"`
	Header    FlattenedExtra `json:"header"`
}

// FlattenedExtra is the unprotected-header extension carrying the
// disclosures and an optional KB-JWT alongside a flattened JWS.
type FlattenedExtra struct {
	Disclosures []string `json:"disclosures"`
	KBJWT       string   `json:"kb_jwt,omitempty"`
}

// IssueAsFlattenedJSON issues the same bundle as Issue but returns it
// wrapped in the flattened JWS JSON envelope instead of compact form.
func (i *Issuer) IssueAsFlattenedJSON(ctx context.Context, claims map[string]any, cfg IssuanceConfig, holderJWK map[string]any) (*FlattenedJSON, error) {
	bundle, err := i.Issue(ctx, claims, cfg, holderJWK)
	if err != nil {
		return nil, err
	}
	protected, payload, signature, err := splitCompactJWS(bundle.JWS)
	if err != nil {
		return nil, err
	}
	encoded := make([]string, len(bundle.Disclosures))
	for idx, d := range bundle.Disclosures {
		encoded[idx] = d.Encoded()
	}
	return &FlattenedJSON{
		Protected: protected,
		Payload:   payload,
		Signature: signature,
		Header:    FlattenedExtra{Disclosures: encoded},
	}, nil
}

// GeneralSignature is one entry of a General JSON serialization's
// `signatures` array.
type GeneralSignature struct {
	Protected string         `json:"protected"`
	Signature string         `json:"signature"`
	Header    FlattenedExtra `json:"header,omitempty"`
}

// GeneralJSON is the general JWS JSON serialization envelope, spec.md
// §6.2. Disclosures/KB-JWT live only under the first signature's header.
type GeneralJSON struct {
	Payload    string             `json:"payload"`
	Signatures []GeneralSignature `json:"signatures"`
}

// IssueAsGeneralJSON issues the same bundle as Issue but returns it
// wrapped in the general JWS JSON envelope.
func (i *Issuer) IssueAsGeneralJSON(ctx context.Context, claims map[string]any, cfg IssuanceConfig, holderJWK map[string]any) (*GeneralJSON, error) {
	flat, err := i.IssueAsFlattenedJSON(ctx, claims, cfg, holderJWK)
	if err != nil {
		return nil, err
	}
	return &GeneralJSON{
		Payload: flat.Payload,
		Signatures: []GeneralSignature{
			{Protected: flat.Protected, Signature: flat.Signature, Header: flat.Header},
		},
	}, nil
}

func splitCompactJWS(jws string) (protected, payload, signature string, err error) {
	parts := strings.Split(jws, ".")
	if len(parts) != 3 {
		return "", "", "", newErr(MalformedEncoding, "jws", nil)
	}
	return parts[0], parts[1], parts[2], nil
}
