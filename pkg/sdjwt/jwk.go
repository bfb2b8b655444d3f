package sdjwt

import (
	"github.com/lestrrat-go/jwx/v3/jwk"
)

// jwkToPublicKey converts a `cnf.jwk`-shaped map (or any other inline
// JWK) into a Go public key usable by jwt.Parse/jwt.SignedString. Unlike
// the teacher's EC-only converter, this supports EC, RSA, and OKP keys
// via the pack's general-purpose JWK library.
func jwkToPublicKey(raw map[string]any) (any, error) {
	data, err := marshalJSON(raw)
	if err != nil {
		return nil, err
	}
	key, err := jwk.ParseKey(data)
	if err != nil {
		return nil, newErr(UnresolvedKey, "cnf.jwk", err)
	}
	var pub any
	if err := jwk.Export(key, &pub); err != nil {
		return nil, newErr(UnresolvedKey, "cnf.jwk", err)
	}
	return pub, nil
}

// publicKeyToJWK serializes a Go public key (EC/RSA/OKP) into the inline
// map form carried in `cnf.jwk`.
func publicKeyToJWK(pub any) (map[string]any, error) {
	key, err := jwk.Import(pub)
	if err != nil {
		return nil, newErr(MalformedEncoding, "jwk", err)
	}
	data, err := marshalJSON(key)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := unmarshalJSON(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
