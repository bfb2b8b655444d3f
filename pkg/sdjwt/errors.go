// Package sdjwt implements the Selective Disclosure JWT selective-disclosure
// engine: encoding claims into an SD-JWT payload plus disclosures at
// issuance, filtering disclosures at presentation, and verifying a
// presentation's signature, digests, and key binding.
package sdjwt

import (
	"fmt"

	"github.com/moogar0880/problems"
)

// Kind identifies the category of an Error so callers can branch on it
// with errors.As instead of string matching.
type Kind string

const (
	// Structural errors.
	MalformedEncoding     Kind = "malformed_encoding"
	MalformedPresentation Kind = "malformed_presentation"
	ReservedKey           Kind = "reserved_key"
	UnsupportedAlgorithm  Kind = "unsupported_algorithm"
	AlgorithmDisallowed   Kind = "algorithm_disallowed"
	UnsupportedFormat     Kind = "unsupported_format"

	// Cryptographic errors.
	InvalidSignature Kind = "invalid_signature"
	KeyBindingFailed Kind = "key_binding_failed"
	DigestMismatch   Kind = "digest_mismatch"

	// Selective-disclosure protocol errors.
	DuplicateDisclosure   Kind = "duplicate_disclosure"
	SuperfluousDisclosure Kind = "superfluous_disclosure"
	MissingRequiredClaim  Kind = "missing_required_claim"

	// VC / trust errors.
	UntrustedIssuer     Kind = "untrusted_issuer"
	Revoked             Kind = "revoked"
	IndexOutOfRange     Kind = "index_out_of_range"
	StatusListUnavailable Kind = "status_list_unavailable"

	// Collaborator errors.
	UnresolvedKey Kind = "unresolved_key"
)

// Error is the single error type returned by every exported operation in
// this module. Field is optional context (a claim path, a disclosure
// index) useful for diagnostics; it must never carry key material.
type Error struct {
	Kind  Kind
	Field string
	Err   error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("sdjwt: %s (%s): %v", e.Kind, e.Field, e.Err)
	}
	return fmt.Sprintf("sdjwt: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, &Error{Kind: X}) match on Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// newErr builds an *Error, wrapping cause (which may be nil).
func newErr(kind Kind, field string, cause error) *Error {
	if cause == nil {
		cause = fmt.Errorf("%s", kind)
	}
	return &Error{Kind: kind, Field: field, Err: cause}
}

// NewError builds an *Error for collaborator packages (statuslist, vc)
// that need to surface one of this package's error kinds without
// reimplementing the wrapping convention.
func NewError(kind Kind, field string, cause error) *Error {
	return newErr(kind, field, cause)
}

// httpStatusFor maps an error Kind to the RFC 7807 status a caller's HTTP
// layer would plausibly use. The mapping is advisory: this library never
// performs HTTP I/O itself.
func httpStatusFor(k Kind) int {
	switch k {
	case InvalidSignature, KeyBindingFailed, DigestMismatch, UntrustedIssuer, Revoked:
		return 403
	case MalformedEncoding, MalformedPresentation, ReservedKey, UnsupportedAlgorithm,
		AlgorithmDisallowed, UnsupportedFormat, DuplicateDisclosure, SuperfluousDisclosure,
		MissingRequiredClaim, IndexOutOfRange:
		return 400
	case StatusListUnavailable, UnresolvedKey:
		return 502
	default:
		return 500
	}
}

// Problem renders the error as an RFC 7807 problem document so an HTTP
// layer embedding this library doesn't need to reimplement the mapping
// from selective-disclosure error kinds to problem+json.
func (e *Error) Problem() *problems.DefaultProblem {
	p := problems.NewDetailedProblem(httpStatusFor(e.Kind), e.Error())
	p.Type = "https://sdjwt.example/errors/" + string(e.Kind)
	p.Title = string(e.Kind)
	return p
}
