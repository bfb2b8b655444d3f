// Package vc layers the SD-JWT VC profile (draft-ietf-oauth-sd-jwt-vc)
// on top of pkg/sdjwt: issuer-identity enforcement, status-list
// revocation checks, and optional x5c/trust-framework issuer trust,
// grounded on the teacher's pkg/sdjwtvc verification pipeline.
package vc

import (
	"encoding/json"

	"github.com/openwallet-labs/sdjwt-go/pkg/sdjwt"
)

// TypHeader is the JOSE `typ` value an Issuer stamps on VC-profile
// credentials, distinct from the plain SD-JWT default.
const TypHeader = "vc+sd-jwt"

// StatusRef is the `status.status_list` pointer spec.md §3/§4.9
// describes: a URI to the status-list credential and this credential's
// index within it.
type StatusRef struct {
	URI string `json:"uri"`
	Idx int    `json:"idx"`
}

// Payload is an SD-JWT VC payload's retained top-level shape: the
// fields spec.md §4 says a VC payload carries in addition to the base
// SD-JWT claims. Confirmation key and status are optional; everything
// else selectively-disclosable lives in the rehydrated claim map
// returned by Verify, not in this struct.
type Payload struct {
	Issuer      string         `json:"iss"`
	Type        string         `json:"vct"`
	ID          string         `json:"jti,omitempty"`
	IssuedAt    int64          `json:"iat,omitempty"`
	NotBefore   int64          `json:"nbf,omitempty"`
	Expiry      int64          `json:"exp,omitempty"`
	Confirmation map[string]any `json:"cnf,omitempty"`
	Status      *struct {
		StatusList StatusRef `json:"status_list"`
	} `json:"status,omitempty"`
}

// FromClaims extracts the VC profile's retained fields from a rehydrated
// claim map. It does not mutate claims.
func FromClaims(claims map[string]any) (*Payload, error) {
	vct, _ := claims["vct"].(string)
	if vct == "" {
		return nil, sdjwt.NewError(sdjwt.MissingRequiredClaim, "vct", nil)
	}
	iss, _ := claims["iss"].(string)
	jti, _ := claims["jti"].(string)
	p := &Payload{Issuer: iss, Type: vct, ID: jti}
	p.IssuedAt = int64(claimInt(claims["iat"]))
	p.NotBefore = int64(claimInt(claims["nbf"]))
	p.Expiry = int64(claimInt(claims["exp"]))
	if cnf, ok := claims["cnf"].(map[string]any); ok {
		p.Confirmation = cnf
	}
	if statusRaw, ok := claims["status"].(map[string]any); ok {
		if slRaw, ok := statusRaw["status_list"].(map[string]any); ok {
			uri, _ := slRaw["uri"].(string)
			idx := claimInt(slRaw["idx"])
			p.Status = &struct {
				StatusList StatusRef `json:"status_list"`
			}{StatusList: StatusRef{URI: uri, Idx: idx}}
		}
	}
	return p, nil
}

func claimInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	case json.Number:
		i, err := n.Int64()
		if err == nil {
			return int(i)
		}
		return 0
	default:
		return 0
	}
}
