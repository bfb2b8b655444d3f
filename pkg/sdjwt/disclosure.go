package sdjwt

import (
	"crypto/rand"
	"io"
)

// saltBytes is the salt length in bytes (128 bits), the minimum spec.md
// §4.3 requires for an object/array disclosure salt.
const saltBytes = 16

// Disclosure is an immutable record binding a salt, an optional claim
// name, and a claim value to its canonical encoding and digest. Object
// disclosures carry Name; array disclosures never do.
type Disclosure struct {
	Salt     string
	Name     string
	HasName  bool
	Value    any
	encoded  string
	digests  map[string]string
}

// newDisclosure builds the canonical encoding eagerly; everything else
// about a Disclosure is derived from it.
func newDisclosure(rnd io.Reader, name string, hasName bool, value any) (*Disclosure, error) {
	salt, err := randomSalt(rnd)
	if err != nil {
		return nil, err
	}
	d := &Disclosure{Salt: salt, Name: name, HasName: hasName, Value: value}
	arr := d.array()
	enc, err := canonicalJSON(arr)
	if err != nil {
		return nil, err
	}
	d.encoded = b64urlEncode(enc)
	return d, nil
}

// NewObjectDisclosure creates a `[salt, name, value]` disclosure for an
// object member.
func NewObjectDisclosure(name string, value any) (*Disclosure, error) {
	return newDisclosure(rand.Reader, name, true, value)
}

// NewArrayDisclosure creates a `[salt, value]` disclosure for a sequence
// element.
func NewArrayDisclosure(value any) (*Disclosure, error) {
	return newDisclosure(rand.Reader, "", false, value)
}

// newObjectDisclosureWithRand and newArrayDisclosureWithRand let the
// encoder route salt generation through an injected random source so
// issuance is reproducible under NewSeededRand.
func newObjectDisclosureWithRand(rnd io.Reader, name string, value any) (*Disclosure, error) {
	return newDisclosure(rnd, name, true, value)
}

func newArrayDisclosureWithRand(rnd io.Reader, value any) (*Disclosure, error) {
	return newDisclosure(rnd, "", false, value)
}

func randomSalt(rnd io.Reader) (string, error) {
	b := make([]byte, saltBytes)
	if _, err := io.ReadFull(rnd, b); err != nil {
		return "", newErr(MalformedEncoding, "salt", err)
	}
	return b64urlEncode(b), nil
}

func (d *Disclosure) array() []any {
	if d.HasName {
		return []any{d.Salt, d.Name, d.Value}
	}
	return []any{d.Salt, d.Value}
}

// Encoded returns the cached base64url text of the disclosure, the form
// that travels on the wire between `~` separators.
func (d *Disclosure) Encoded() string {
	return d.encoded
}

// Digest returns the base64url digest of the disclosure's encoded form
// under alg, memoizing per algorithm.
func (d *Disclosure) Digest(alg string) (string, error) {
	if d.digests == nil {
		d.digests = make(map[string]string, 1)
	}
	if v, ok := d.digests[alg]; ok {
		return v, nil
	}
	_, text, err := digest(alg, []byte(d.encoded))
	if err != nil {
		return "", err
	}
	d.digests[alg] = text
	return text, nil
}

// Equal compares disclosures by encoded form, per spec.md §4.3.
func (d *Disclosure) Equal(other *Disclosure) bool {
	if other == nil {
		return false
	}
	return d.encoded == other.encoded
}

// parseDisclosure decodes a base64url disclosure segment from the wire
// into a Disclosure, rejecting malformed shapes and reserved names.
func parseDisclosure(encoded string) (*Disclosure, error) {
	raw, err := b64urlDecode(encoded)
	if err != nil {
		return nil, err
	}
	arr, err := decodeDisclosureArray(raw)
	if err != nil {
		return nil, err
	}
	d := &Disclosure{encoded: encoded}
	switch len(arr) {
	case 2:
		salt, ok := arr[0].(string)
		if !ok {
			return nil, newErr(MalformedPresentation, "disclosure", nil)
		}
		d.Salt = salt
		d.Value = arr[1]
	case 3:
		salt, ok := arr[0].(string)
		if !ok {
			return nil, newErr(MalformedPresentation, "disclosure", nil)
		}
		name, ok := arr[1].(string)
		if !ok {
			return nil, newErr(MalformedPresentation, "disclosure", nil)
		}
		if isReservedKey(name) {
			return nil, newErr(ReservedKey, name, nil)
		}
		d.Salt = salt
		d.Name = name
		d.HasName = true
		d.Value = arr[2]
	default:
		return nil, newErr(MalformedPresentation, "disclosure", nil)
	}
	return d, nil
}

// isReservedKey reports whether name is one of the claim names an input
// tree or disclosure may never author (spec.md §4.5 "reserved-key
// rejection").
func isReservedKey(name string) bool {
	return name == sdKey || name == sdAlgKey || name == arrayDigestKey
}

const (
	sdKey          = "_sd"
	sdAlgKey       = "_sd_alg"
	arrayDigestKey = "..."
)
