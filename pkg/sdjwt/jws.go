package sdjwt

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Signer abstracts a signing key away from the raw crypto material so
// HSM-backed and in-process keys share one signing path (grounded on the
// teacher's sdjwtvc.Signer).
type Signer interface {
	Sign(ctx context.Context, signingInput []byte) ([]byte, error)
	Algorithm() string
	KeyID() string
}

// sign produces a compact JWS over header/claims using an in-process key
// and jwt.SigningMethod — the path used when the caller already holds a
// crypto.Signer/*ecdsa.PrivateKey rather than an HSM-backed Signer.
func sign(header, claims map[string]any, method jwt.SigningMethod, key any) (string, error) {
	token := jwt.NewWithClaims(method, jwt.MapClaims(claims))
	token.Header = header
	return token.SignedString(key)
}

// signWithSigner produces a compact JWS by delegating the actual
// signature operation to an external Signer, e.g. an HSM.
func signWithSigner(ctx context.Context, header, claims map[string]any, signer Signer) (string, error) {
	header["alg"] = signer.Algorithm()
	if kid := signer.KeyID(); kid != "" {
		header["kid"] = kid
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", newErr(MalformedEncoding, "header", err)
	}
	payloadJSON, err := json.Marshal(claims)
	if err != nil {
		return "", newErr(MalformedEncoding, "payload", err)
	}

	signingInput := base64.RawURLEncoding.EncodeToString(headerJSON) + "." +
		base64.RawURLEncoding.EncodeToString(payloadJSON)

	sig, err := signer.Sign(ctx, []byte(signingInput))
	if err != nil {
		return "", newErr(InvalidSignature, "", err)
	}
	return signingInput + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}

// combine joins the issuer JWS, the disclosures (in emission order), and
// an optional KB-JWT into the compact SD-JWT wire format. A trailing `~`
// is always present even with zero disclosures, per spec.md §6.1.
func combine(jws string, disclosures []string, kbJWT string) string {
	var b strings.Builder
	b.WriteString(jws)
	b.WriteByte('~')
	for _, d := range disclosures {
		b.WriteString(d)
		b.WriteByte('~')
	}
	if kbJWT != "" {
		b.WriteString(kbJWT)
	}
	return b.String()
}

// splitPresentation tokenizes a compact presentation by `~`. At least one
// tilde is required; the last segment is empty iff no KB-JWT is present.
func splitPresentation(presentation string) (jws string, disclosures []string, kbJWT string, err error) {
	if !strings.Contains(presentation, "~") {
		return "", nil, "", newErr(MalformedPresentation, "", nil)
	}
	parts := strings.Split(presentation, "~")
	jws = parts[0]
	if jws == "" {
		return "", nil, "", newErr(MalformedPresentation, "", nil)
	}
	body := parts[1 : len(parts)-1]
	for _, d := range body {
		if d == "" {
			return "", nil, "", newErr(MalformedPresentation, "disclosure", nil)
		}
	}
	kbJWT = parts[len(parts)-1]
	return jws, body, kbJWT, nil
}

// parseJWSHeader decodes the protected header of a compact JWS without
// verifying the signature, so the caller can resolve a key first.
func parseJWSHeader(jws string) (map[string]any, error) {
	segs := strings.Split(jws, ".")
	if len(segs) != 3 {
		return nil, newErr(MalformedPresentation, "jws", nil)
	}
	raw, err := b64urlDecode(segs[0])
	if err != nil {
		return nil, err
	}
	var header map[string]any
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, newErr(MalformedPresentation, "jws header", err)
	}
	return header, nil
}

// parseJWSPayload decodes the payload of a compact JWS without verifying
// the signature.
func parseJWSPayload(jws string) (map[string]any, error) {
	segs := strings.Split(jws, ".")
	if len(segs) != 3 {
		return nil, newErr(MalformedPresentation, "jws", nil)
	}
	raw, err := b64urlDecode(segs[1])
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, newErr(MalformedPresentation, "jws payload", err)
	}
	return payload, nil
}

// verifySignature verifies a compact JWS's signature with the resolved
// public key, restricting accepted algorithms to the registry.
func verifySignature(jws string, key any, registry *AlgorithmRegistry) (map[string]any, error) {
	parsed, err := jwt.Parse(jws, func(t *jwt.Token) (any, error) {
		alg, _ := t.Header["alg"].(string)
		if !registry.Allowed(alg) {
			return nil, newErr(AlgorithmDisallowed, alg, nil)
		}
		return key, nil
	}, jwt.WithValidMethods(allowedMethodNames(registry)))
	if err != nil {
		var sdErr *Error
		if asErr(err, &sdErr) {
			return nil, sdErr
		}
		return nil, newErr(InvalidSignature, "", err)
	}
	if !parsed.Valid {
		return nil, newErr(InvalidSignature, "", nil)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, newErr(MalformedPresentation, "claims", nil)
	}
	return map[string]any(claims), nil
}

func allowedMethodNames(registry *AlgorithmRegistry) []string {
	names := make([]string, 0, len(registry.signature))
	for name := range registry.signature {
		names = append(names, name)
	}
	return names
}

// asErr is a small errors.As wrapper kept local to avoid importing
// "errors" into every caller of verifySignature.
func asErr(err error, target **Error) bool {
	type unwrapper interface{ Unwrap() error }
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(unwrapper)
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
