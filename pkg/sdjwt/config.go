package sdjwt

import (
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// IssuanceConfig is C6's knob set, spec.md §6.5. Zero-value fields are
// filled in by ApplyDefaults before Validate is meaningful.
type IssuanceConfig struct {
	DigestAlgorithm    string  `validate:"oneof=sha-256 sha-384 sha-512" default:"sha-256"`
	SignatureAlgorithm string  `validate:"required" default:"ES256"`
	DecoyMin           float64 `validate:"gte=0,lte=10,ltefield=DecoyMax"`
	DecoyMax           float64 `validate:"gte=0,lte=10" default:"0"`
	IncludeSDAlg       bool    `default:"true"`
	Structure          *DisclosureStructure
}

// ApplyDefaults fills unset fields (per `default` tags) before Validate.
func (c *IssuanceConfig) ApplyDefaults() error {
	return defaults.Set(c)
}

// Validate checks the struct tags above, translating the first
// validator failure into a library Error. The digest algorithm allow-list
// is checked first so a weak or unknown digest algorithm always surfaces
// as AlgorithmDisallowed (spec.md §4.2, §8 invariant 7), never masked by
// the struct tag's oneof failure on the same field.
func (c *IssuanceConfig) Validate() error {
	if !DigestAlgorithmAllowed(c.DigestAlgorithm) {
		return newErr(AlgorithmDisallowed, c.DigestAlgorithm, nil)
	}
	if err := validate.Struct(c); err != nil {
		return newErr(UnsupportedAlgorithm, firstInvalidField(err), err)
	}
	return nil
}

// VerificationConfig is C8's knob set, spec.md §6.5.
type VerificationConfig struct {
	TrustedIssuer        string
	AllowedSignatureAlgs []string      `default:"[\"ES256\",\"ES384\",\"ES512\",\"EdDSA\"]"`
	ClockSkew            time.Duration `default:"5m"`
	StatusListCacheTTL   time.Duration `default:"10m"`
	StatusListDeadline   time.Duration `default:"5s"`
	RequireKB            bool
	ExpectedAudience     string
	ExpectedNonce        string
}

// ApplyDefaults fills unset fields before Validate.
func (c *VerificationConfig) ApplyDefaults() error {
	return defaults.Set(c)
}

// Validate rejects a configuration with an empty signature allow-list.
func (c *VerificationConfig) Validate() error {
	if len(c.AllowedSignatureAlgs) == 0 {
		return newErr(UnsupportedAlgorithm, "allowed_signature_algorithms", nil)
	}
	return nil
}

func firstInvalidField(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return ""
	}
	return verrs[0].Field()
}
