package sdjwt

// DisclosureStructure mirrors the shape of an input claim tree, marking
// which leaves/branches are selectively disclosable. A nil structure (or
// a nil entry reached while descending) means "not disclosable at this
// level", matching spec.md §4.5 step 1's default of copying verbatim.
type DisclosureStructure struct {
	// Disclose marks this node itself as disclosable. Only meaningful for
	// leaves and for array elements; a mapping node is never itself wrapped
	// in a disclosure (its members are processed individually).
	Disclose bool
	// Fields describes child disclosability for mapping values, keyed by
	// claim name.
	Fields map[string]*DisclosureStructure
	// Elements describes child disclosability for sequence values, indexed
	// by position. A shorter slice than the array leaves trailing elements
	// non-disclosable.
	Elements []*DisclosureStructure
}

func (s *DisclosureStructure) field(name string) *DisclosureStructure {
	if s == nil || s.Fields == nil {
		return nil
	}
	return s.Fields[name]
}

func (s *DisclosureStructure) element(i int) *DisclosureStructure {
	if s == nil || i >= len(s.Elements) {
		return nil
	}
	return s.Elements[i]
}

// DecoyPolicy is the [min, max] range of the per-member decoy factor, per
// spec.md §4.5: a container of size n gets round(n*u) decoys for u
// uniform over [min, max]. Both bounds are in [0.0, 10.0] and min <= max.
type DecoyPolicy struct {
	Min float64
	Max float64
}

// EncodeResult is the output of encoding one claim tree: the transformed
// tree ready to become a JWS payload, plus the disclosures emitted in
// the order they were created.
type EncodeResult struct {
	Tree        map[string]any
	Disclosures []*Disclosure
}

// encoder applies spec.md §4.5's algorithm to an issuer payload.
type encoder struct {
	alg     string
	decoys  DecoyPolicy
	rnd     *randSource
	emitted []*Disclosure
}

func newEncoder(alg string, decoys DecoyPolicy, rnd *randSource) *encoder {
	if rnd == nil {
		rnd = NewSecureRand()
	}
	return &encoder{alg: alg, decoys: decoys, rnd: rnd}
}

// retainedTopLevelKeys are the claim names spec.md §4 lists as
// never-selectively-disclosable at the issuer payload top.
var retainedTopLevelKeys = map[string]bool{
	"iss": true, "iat": true, "nbf": true, "exp": true,
	"cnf": true, "vct": true, "type": true, "status": true,
}

// Encode runs the encoder over the top-level issuer payload.
func (e *encoder) Encode(claims map[string]any, structure *DisclosureStructure) (*EncodeResult, error) {
	out, err := e.encodeMapping(claims, structure, true)
	if err != nil {
		return nil, err
	}
	sdAlg := e.alg
	out[sdAlgKey] = sdAlg
	return &EncodeResult{Tree: out, Disclosures: e.emitted}, nil
}

func (e *encoder) encodeMapping(m map[string]any, structure *DisclosureStructure, topLevel bool) (map[string]any, error) {
	out := make(map[string]any, len(m))
	builder := newDigestBuilder(e.alg, e.rnd)

	for k, v := range m {
		if isReservedKey(k) {
			return nil, newErr(ReservedKey, k, nil)
		}
		if topLevel && retainedTopLevelKeys[k] {
			out[k] = v
			continue
		}

		child := structure.field(k)

		switch val := v.(type) {
		case map[string]any:
			rec, err := e.encodeMapping(val, child, false)
			if err != nil {
				return nil, err
			}
			out[k] = rec
			continue
		case []any:
			rec, err := e.encodeSequence(val, child)
			if err != nil {
				return nil, err
			}
			out[k] = rec
			continue
		}

		if child != nil && child.Disclose {
			d, err := newObjectDisclosureWithRand(e.rnd, k, v)
			if err != nil {
				return nil, err
			}
			if err := builder.addDisclosureDigest(k, d); err != nil {
				return nil, err
			}
			e.emitted = append(e.emitted, d)
			continue
		}
		out[k] = v
	}

	n := len(m)
	count := decoyCount(n, e.decoys.Min, e.decoys.Max, e.rnd)
	for i := 0; i < count; i++ {
		if err := builder.addDecoyDigest(); err != nil {
			return nil, err
		}
	}

	sd := builder.build()
	if len(sd) > 0 {
		sdAny := make([]any, len(sd))
		for i, s := range sd {
			sdAny[i] = s
		}
		out[sdKey] = sdAny
	}
	return out, nil
}

func (e *encoder) encodeSequence(arr []any, structure *DisclosureStructure) ([]any, error) {
	out := make([]any, 0, len(arr))

	for i, v := range arr {
		child := structure.element(i)

		switch val := v.(type) {
		case map[string]any:
			rec, err := e.encodeMapping(val, child, false)
			if err != nil {
				return nil, err
			}
			out = append(out, rec)
			continue
		case []any:
			rec, err := e.encodeSequence(val, child)
			if err != nil {
				return nil, err
			}
			out = append(out, rec)
			continue
		}

		if child != nil && child.Disclose {
			d, err := newArrayDisclosureWithRand(e.rnd, v)
			if err != nil {
				return nil, err
			}
			text, err := d.Digest(e.alg)
			if err != nil {
				return nil, err
			}
			e.emitted = append(e.emitted, d)
			out = append(out, map[string]any{arrayDigestKey: text})
			continue
		}
		out = append(out, v)
	}

	n := len(arr)
	count := decoyCount(n, e.decoys.Min, e.decoys.Max, e.rnd)
	for i := 0; i < count; i++ {
		raw := make([]byte, 64)
		if _, err := e.rnd.Read(raw); err != nil {
			return nil, newErr(MalformedEncoding, "decoy", err)
		}
		_, text, err := digest(e.alg, raw)
		if err != nil {
			return nil, err
		}
		pos := 0
		if len(out) > 0 {
			pos = e.rnd.Intn(len(out) + 1)
		}
		out = insertAt(out, pos, map[string]any{arrayDigestKey: text})
	}
	return out, nil
}

func insertAt(s []any, pos int, v any) []any {
	s = append(s, nil)
	copy(s[pos+1:], s[pos:])
	s[pos] = v
	return s
}
