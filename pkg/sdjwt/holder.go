package sdjwt

import (
	"context"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/golang-jwt/jwt/v5"
)

// Holder wraps a parsed issuance string, remembering the compact JWS,
// the parsed (still-encoded) payload, and the ordered disclosure list so
// repeated presentations can select different subsets without
// re-parsing, per spec.md §4.7.
type Holder struct {
	jws         string
	payload     map[string]any
	disclosures []*Disclosure
	sdAlg       string
}

// NewHolder parses a compact issuance string.
func NewHolder(issuance string) (*Holder, error) {
	jwsPart, rawDisclosures, kbJWT, err := splitPresentation(issuance)
	if err != nil {
		return nil, err
	}
	if kbJWT != "" {
		return nil, newErr(MalformedPresentation, "issuance", nil)
	}
	payload, err := parseJWSPayload(jwsPart)
	if err != nil {
		return nil, err
	}
	sdAlg, _ := payload[sdAlgKey].(string)
	if sdAlg == "" {
		sdAlg = AlgSHA256
	}
	disclosures := make([]*Disclosure, 0, len(rawDisclosures))
	for _, enc := range rawDisclosures {
		d, err := parseDisclosure(enc)
		if err != nil {
			return nil, err
		}
		disclosures = append(disclosures, d)
	}
	return &Holder{jws: jwsPart, payload: payload, disclosures: disclosures, sdAlg: sdAlg}, nil
}

// Disclosures returns the full ordered disclosure list from issuance.
func (h *Holder) Disclosures() []*Disclosure {
	return append([]*Disclosure(nil), h.disclosures...)
}

// Select filters the issued disclosures by predicate, preserving issuance
// order. It is not lazy: the matching disclosures are collected into a new
// slice before it returns, and each call filters the stored list again.
func (h *Holder) Select(predicate func(*Disclosure) bool) []*Disclosure {
	var out []*Disclosure
	for _, d := range h.disclosures {
		if predicate(d) {
			out = append(out, d)
		}
	}
	return out
}

// SelectByPaths resolves each JSONPath expression against the rehydrated
// (fully-disclosed) claim tree, letting a caller express "disclose
// address.country and email" without hand-writing a predicate. A path
// that does not resolve fails with MalformedPresentation. Selection is by
// name only: every object-member disclosure whose name equals a path's
// last segment is returned, wherever it sits in the tree, and array-element
// disclosures are never returned.
func (h *Holder) SelectByPaths(paths []string) ([]*Disclosure, error) {
	full, err := h.rehydrateAll()
	if err != nil {
		return nil, err
	}
	wantNames := make(map[string]bool)
	for _, p := range paths {
		_, err := jsonpath.Get(p, full)
		if err != nil {
			return nil, newErr(MalformedPresentation, p, err)
		}
		wantNames[lastPathSegment(p)] = true
	}
	return h.Select(func(d *Disclosure) bool {
		return d.HasName && wantNames[d.Name]
	}), nil
}

func lastPathSegment(path string) string {
	last := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' || path[i] == ']' {
			last = path[i+1:]
			break
		}
	}
	for len(last) > 0 && (last[len(last)-1] == '\'' || last[len(last)-1] == '"') {
		last = last[:len(last)-1]
	}
	for len(last) > 0 && (last[0] == '\'' || last[0] == '"' || last[0] == '[') {
		last = last[1:]
	}
	return last
}

// rehydrateAll reconstructs the full claim tree (every disclosure
// applied), used only internally by SelectByPaths to resolve JSONPath
// expressions against disclosed names.
func (h *Holder) rehydrateAll() (map[string]any, error) {
	v := &verifierCore{alg: h.sdAlg}
	tree, _, err := v.rehydrate(h.payload, h.disclosures)
	return tree, err
}

// KeyBindingRequest carries the parameters for an optional KB-JWT,
// spec.md §4.7 step 2.
type KeyBindingRequest struct {
	Audience string
	Nonce    string
	Key      any
	Signer   Signer
	Method   jwt.SigningMethod
	Typ      string
	Extra    map[string]any
}

// CreatePresentation materializes the disclosure subset matched by
// predicate and, if kb is non-nil, appends a signed KB-JWT whose
// sd_hash commits to the exact presentation prefix.
func (h *Holder) CreatePresentation(ctx context.Context, predicate func(*Disclosure) bool, kb *KeyBindingRequest) (string, error) {
	selected := h.Select(predicate)
	encoded := make([]string, len(selected))
	for i, d := range selected {
		encoded[i] = d.Encoded()
	}

	if kb == nil {
		return combine(h.jws, encoded, ""), nil
	}

	prefix := combine(h.jws, encoded, "")
	_, hashText, err := digest(h.sdAlg, []byte(prefix))
	if err != nil {
		return "", err
	}

	claims := map[string]any{}
	for k, v := range kb.Extra {
		claims[k] = v
	}
	claims["sd_hash"] = hashText
	if kb.Audience != "" {
		claims["aud"] = kb.Audience
	}
	if kb.Nonce != "" {
		claims["nonce"] = kb.Nonce
	}
	if _, ok := claims["iat"]; !ok {
		claims["iat"] = time.Now().Unix()
	}

	typ := kb.Typ
	if typ == "" {
		typ = "kb+jwt"
	}
	header := map[string]any{"typ": typ}

	var kbJWT string
	if kb.Signer != nil {
		header["alg"] = kb.Signer.Algorithm()
		kbJWT, err = signWithSigner(ctx, header, claims, kb.Signer)
	} else {
		header["alg"] = kb.Method.Alg()
		kbJWT, err = sign(header, claims, kb.Method, kb.Key)
	}
	if err != nil {
		return "", err
	}

	return combine(h.jws, encoded, kbJWT), nil
}
