package sdjwt

// verifierCore holds the one piece of state the rehydration walk needs:
// the digest algorithm declared by _sd_alg. It recurses to any depth,
// closing the gap in a shallow top-level-only _sd check (the original
// gap this generalizes only ever looked at the outermost object).
type verifierCore struct {
	alg string
}

// rehydrateChecked runs uniqueness, digest-mapping, and superfluous
// checks around rehydrate, the three checks spec.md §4.8 steps 5-7
// require in addition to the walk itself.
func (v *verifierCore) rehydrateChecked(payload map[string]any, disclosures []*Disclosure) (map[string]any, error) {
	seen := make(map[string]bool, len(disclosures))
	for _, d := range disclosures {
		if seen[d.Encoded()] {
			return nil, newErr(DuplicateDisclosure, d.Name, nil)
		}
		seen[d.Encoded()] = true
	}

	claims, consumed, err := v.rehydrate(payload, disclosures)
	if err != nil {
		return nil, err
	}

	for _, d := range disclosures {
		text, err := d.Digest(v.alg)
		if err != nil {
			return nil, err
		}
		if !consumed[text] {
			return nil, newErr(SuperfluousDisclosure, d.Name, nil)
		}
	}
	return claims, nil
}

// rehydrate walks payload recursively, replacing every consumed _sd
// digest and "..." placeholder with its disclosed value and dropping
// unmatched (decoy) digests silently, per spec.md §4.8 step 8. It
// returns the set of digests it consumed so the caller can check for
// superfluous disclosures.
func (v *verifierCore) rehydrate(payload map[string]any, disclosures []*Disclosure) (map[string]any, map[string]bool, error) {
	index := make(map[string]*Disclosure, len(disclosures))
	for _, d := range disclosures {
		text, err := d.Digest(v.alg)
		if err != nil {
			return nil, nil, err
		}
		index[text] = d
	}
	consumed := make(map[string]bool)
	out, err := v.walkMapping(payload, index, consumed, true)
	if err != nil {
		return nil, nil, err
	}
	return out, consumed, nil
}

func (v *verifierCore) walkMapping(m map[string]any, index map[string]*Disclosure, consumed map[string]bool, topLevel bool) (map[string]any, error) {
	out := make(map[string]any, len(m))

	for k, val := range m {
		if k == sdKey || k == sdAlgKey {
			continue
		}
		rehydrated, err := v.walkValue(val, index, consumed)
		if err != nil {
			return nil, err
		}
		out[k] = rehydrated
	}

	raw, ok := m[sdKey]
	if !ok {
		return out, nil
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil, newErr(MalformedPresentation, sdKey, nil)
	}
	for _, item := range arr {
		digestStr, ok := item.(string)
		if !ok {
			return nil, newErr(MalformedPresentation, sdKey, nil)
		}
		d, found := index[digestStr]
		if !found || consumed[digestStr] {
			continue
		}
		if !d.HasName {
			return nil, newErr(MalformedPresentation, sdKey, nil)
		}
		consumed[digestStr] = true
		rehydrated, err := v.walkValue(d.Value, index, consumed)
		if err != nil {
			return nil, err
		}
		out[d.Name] = rehydrated
	}
	return out, nil
}

func (v *verifierCore) walkSequence(arr []any, index map[string]*Disclosure, consumed map[string]bool) ([]any, error) {
	out := make([]any, 0, len(arr))
	for _, item := range arr {
		if digestStr, ok := arrayPlaceholderDigest(item); ok {
			d, found := index[digestStr]
			if !found || consumed[digestStr] {
				continue
			}
			if d.HasName {
				return nil, newErr(MalformedPresentation, arrayDigestKey, nil)
			}
			consumed[digestStr] = true
			rehydrated, err := v.walkValue(d.Value, index, consumed)
			if err != nil {
				return nil, err
			}
			out = append(out, rehydrated)
			continue
		}
		rehydrated, err := v.walkValue(item, index, consumed)
		if err != nil {
			return nil, err
		}
		out = append(out, rehydrated)
	}
	return out, nil
}

// walkValue recurses into composite values and passes scalars through
// unchanged. A disclosed value is ordinarily scalar (the encoder only
// ever wraps leaves), but a presentation is untrusted input, so a
// composite disclosed value is still walked for its own nested _sd/...
// entries rather than trusted verbatim.
func (v *verifierCore) walkValue(val any, index map[string]*Disclosure, consumed map[string]bool) (any, error) {
	switch vv := val.(type) {
	case map[string]any:
		return v.walkMapping(vv, index, consumed, false)
	case []any:
		return v.walkSequence(vv, index, consumed)
	default:
		return val, nil
	}
}

// arrayPlaceholderDigest reports whether item is a `{ "...": digest }`
// array-element placeholder and, if so, returns the digest string.
func arrayPlaceholderDigest(item any) (string, bool) {
	m, ok := item.(map[string]any)
	if !ok || len(m) != 1 {
		return "", false
	}
	raw, ok := m[arrayDigestKey]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}
