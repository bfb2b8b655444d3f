package vc

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// TypeMetadata is the optional, non-normative VCTM companion document a
// VC profile may attach to a credential (SPEC_FULL.md supplemented
// feature 1): display hints for wallets and per-claim disclosure rules.
// Its presence or absence never affects verification outcomes.
type TypeMetadata struct {
	VCT         string        `json:"vct"`
	Name        string        `json:"name,omitempty"`
	Description string        `json:"description,omitempty"`
	Display     []TypeDisplay `json:"display,omitempty"`
	Claims      []ClaimMeta   `json:"claims,omitempty"`
	Extends     string        `json:"extends,omitempty"`
}

// TypeDisplay is one locale's rendering information for a credential type.
type TypeDisplay struct {
	Lang        string `json:"lang"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ClaimMeta describes one claim's display and disclosure policy.
type ClaimMeta struct {
	Path      []*string          `json:"path"`
	Display   []ClaimMetaDisplay `json:"display,omitempty"`
	SD        string             `json:"sd,omitempty"`
	Mandatory bool               `json:"mandatory,omitempty"`
}

// ClaimMetaDisplay is one locale's label for a claim.
type ClaimMetaDisplay struct {
	Lang  string `json:"lang"`
	Label string `json:"label"`
}

// JSONPath renders a ClaimMeta's Path as a JSONPath string, e.g.
// "$.address.country".
func (c *ClaimMeta) JSONPath() string {
	if c == nil || len(c.Path) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("$")
	for _, seg := range c.Path {
		if seg == nil {
			continue
		}
		b.WriteString(".")
		b.WriteString(*seg)
	}
	return b.String()
}

// DecodeTypeMetadata parses a base64url-encoded VCTM document, the form
// the JOSE header's `vctm` array element carries.
func DecodeTypeMetadata(encoded string) (*TypeMetadata, error) {
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		raw, err = base64.RawURLEncoding.DecodeString(encoded)
		if err != nil {
			return nil, err
		}
	}
	var tm TypeMetadata
	if err := json.Unmarshal(raw, &tm); err != nil {
		return nil, err
	}
	return &tm, nil
}

// Encode base64url-encodes the type metadata for embedding in a JOSE
// header's `vctm` array.
func (t *TypeMetadata) Encode() (string, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(data), nil
}
