package sdjwt

import "github.com/golang-jwt/jwt/v5"

// Allowed digest algorithm identifiers (spec §4.2). sha-1 and md5 are
// intentionally absent — AlgorithmRegistry rejects them at lookup and
// callers cannot opt in by any other path.
const (
	AlgSHA256 = "sha-256"
	AlgSHA384 = "sha-384"
	AlgSHA512 = "sha-512"
)

// digestAlgorithms is the fixed allow-list backing DigestAlgorithmAllowed.
var digestAlgorithms = map[string]bool{
	AlgSHA256: true,
	AlgSHA384: true,
	AlgSHA512: true,
}

// DigestAlgorithmAllowed reports whether name is one of the allow-listed
// digest algorithms. Weak algorithms (md5, sha-1) and anything unknown
// return false; there is no caller override.
func DigestAlgorithmAllowed(name string) bool {
	return digestAlgorithms[name]
}

// defaultSignatureAlgorithms is the default allow-list for JWS signing
// algorithms. Callers may extend it at construction time by passing extra
// identifiers to NewAlgorithmRegistry.
var defaultSignatureAlgorithms = map[string]jwt.SigningMethod{
	"ES256": jwt.SigningMethodES256,
	"ES384": jwt.SigningMethodES384,
	"ES512": jwt.SigningMethodES512,
	"EdDSA": jwt.SigningMethodEdDSA,
}

// AlgorithmRegistry enumerates the signature algorithms an Issuer or
// Verifier will accept. It is immutable after construction (§9 "Global
// state"): build it once, share the built value across calls.
type AlgorithmRegistry struct {
	signature map[string]jwt.SigningMethod
}

// NewAlgorithmRegistry builds a registry seeded with the default
// signature algorithms (ES256, ES384, ES512, EdDSA) plus any extra
// identifiers supplied by the caller.
func NewAlgorithmRegistry(extra ...string) *AlgorithmRegistry {
	reg := &AlgorithmRegistry{signature: make(map[string]jwt.SigningMethod, len(defaultSignatureAlgorithms)+len(extra))}
	for name, m := range defaultSignatureAlgorithms {
		reg.signature[name] = m
	}
	for _, name := range extra {
		if m := jwt.GetSigningMethod(name); m != nil {
			reg.signature[name] = m
		}
	}
	return reg
}

// SignatureMethod resolves an allow-listed algorithm name to its
// jwt.SigningMethod, or AlgorithmDisallowed if the registry never saw it.
func (r *AlgorithmRegistry) SignatureMethod(name string) (jwt.SigningMethod, error) {
	m, ok := r.signature[name]
	if !ok {
		return nil, newErr(AlgorithmDisallowed, name, nil)
	}
	return m, nil
}

// Allowed reports whether name is enumerated in the registry.
func (r *AlgorithmRegistry) Allowed(name string) bool {
	_, ok := r.signature[name]
	return ok
}
