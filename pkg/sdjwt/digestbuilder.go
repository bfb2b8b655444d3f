package sdjwt

import (
	"crypto/rand"
	"io"
	"sort"
)

// digestBuilder accumulates the `_sd` digest set for one container
// (mapping or sequence) during encoding. It is stateless across Encode
// calls — callers construct a fresh builder per container and discard it
// after Build.
type digestBuilder struct {
	alg       string
	rnd       io.Reader
	byName    map[string]string // later-wins: claim name -> digest
	order     []string          // insertion order of names, for later-wins replay
	decoys    []string
}

func newDigestBuilder(alg string, rnd io.Reader) *digestBuilder {
	if rnd == nil {
		rnd = rand.Reader
	}
	return &digestBuilder{alg: alg, rnd: rnd, byName: make(map[string]string)}
}

// addDisclosureDigest inserts d's digest keyed by claim name. A later
// call with the same name overwrites the earlier digest (later-wins),
// per spec.md §4.4.
func (b *digestBuilder) addDisclosureDigest(name string, d *Disclosure) error {
	text, err := d.Digest(b.alg)
	if err != nil {
		return err
	}
	if _, exists := b.byName[name]; !exists {
		b.order = append(b.order, name)
	}
	b.byName[name] = text
	return nil
}

// addDecoyDigest appends a random digest drawn from a pseudo-random
// 64-byte preimage, indistinguishable from a real digest of the same
// algorithm once hashed.
func (b *digestBuilder) addDecoyDigest() error {
	preimage := make([]byte, 64)
	if _, err := io.ReadFull(b.rnd, preimage); err != nil {
		return newErr(MalformedEncoding, "decoy", err)
	}
	_, text, err := digest(b.alg, preimage)
	if err != nil {
		return err
	}
	b.decoys = append(b.decoys, text)
	return nil
}

// build returns the union of real and decoy digests as a lexically
// sorted list, hiding original claim order per spec.md §4.4.
func (b *digestBuilder) build() []string {
	all := make([]string, 0, len(b.byName)+len(b.decoys))
	for _, name := range b.order {
		all = append(all, b.byName[name])
	}
	all = append(all, b.decoys...)
	sort.Strings(all)
	return all
}

// decoyCount implements spec.md §4.5's decoy policy: round(n*u) for u
// uniform over [min, max] (or exactly min if min == max).
func decoyCount(n int, min, max float64, rnd *randSource) int {
	u := min
	if max > min {
		u = min + rnd.Float64()*(max-min)
	}
	return int(roundHalfAwayFromZero(float64(n) * u))
}

func roundHalfAwayFromZero(f float64) float64 {
	if f < 0 {
		return -roundHalfAwayFromZero(-f)
	}
	i := float64(int64(f))
	if f-i >= 0.5 {
		return i + 1
	}
	return i
}
