package sdjwt

import (
	"bytes"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"hash"
	"strings"
)

// b64urlEncode encodes bytes as unpadded base64url, the encoding used for
// every segment on the wire (JWS parts, disclosures, digests).
func b64urlEncode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// b64urlDecode decodes a base64url string, accepting both padded and
// unpadded input per draft-22 §4.2.3, and fails with MalformedEncoding on
// anything else.
func b64urlDecode(s string) ([]byte, error) {
	// Non-canonical padded input is still accepted on the wire: strip the
	// padding and decode the unpadded form.
	s = strings.TrimRight(s, "=")
	if len(s)%4 == 1 {
		return nil, newErr(MalformedEncoding, "", errBadLength)
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, newErr(MalformedEncoding, "", err)
	}
	return b, nil
}

var errBadLength = newErrorf("invalid base64url length")

func newErrorf(msg string) error { return &stringError{msg} }

type stringError struct{ s string }

func (e *stringError) Error() string { return e.s }

// canonicalJSON produces deterministic bytes for a disclosure array. Per
// draft-22 §4.2.1/4.2.2 the array is positional ([salt, name?, value]); no
// key sorting happens inside value — encoding/json's map ordering would be
// nondeterministic, so canonicalJSON only ever marshals the disclosure
// array itself, never a bare map, for digest purposes.
func canonicalJSON(v []any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, newErr(MalformedEncoding, "", err)
	}
	return b, nil
}

// newHash returns a hash.Hash for an allow-listed digest algorithm name
// and fails with UnsupportedAlgorithm for any other name.
func newHash(alg string) (hash.Hash, error) {
	switch alg {
	case AlgSHA256:
		return sha256.New(), nil
	case AlgSHA384:
		return sha512.New384(), nil
	case AlgSHA512:
		return sha512.New(), nil
	default:
		return nil, newErr(UnsupportedAlgorithm, alg, nil)
	}
}

// digest hashes raw bytes under alg and returns both the raw digest and
// its base64url text, the form stored in _sd arrays and "..." placeholders.
func digest(alg string, data []byte) (raw []byte, text string, err error) {
	h, err := newHash(alg)
	if err != nil {
		return nil, "", err
	}
	h.Write(data)
	raw = h.Sum(nil)
	return raw, b64urlEncode(raw), nil
}

// marshalJSON and unmarshalJSON wrap encoding/json with the package's
// Error type, so every JSON failure surfaces as MalformedEncoding
// regardless of which file calls into the standard library.
func marshalJSON(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, newErr(MalformedEncoding, "", err)
	}
	return b, nil
}

func unmarshalJSON(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return newErr(MalformedEncoding, "", err)
	}
	return nil
}

// decodeDisclosureArray parses the decoded bytes of a disclosure segment
// as a JSON array, using json.Number so numeric claim values round-trip
// without float64 precision loss.
func decodeDisclosureArray(raw []byte) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var arr []any
	if err := dec.Decode(&arr); err != nil {
		return nil, newErr(MalformedPresentation, "disclosure", err)
	}
	return arr, nil
}
