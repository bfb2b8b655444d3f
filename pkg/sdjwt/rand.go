package sdjwt

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"io"
	mathrand "math/rand/v2"
)

// randSource is the encoder's injectable source of randomness. Production
// issuance uses NewSecureRand (crypto/rand-backed); tests use
// NewSeededRand for reproducible decoy placement and counts, satisfying
// spec.md §4.5's "pure function of input + seed" determinism requirement.
type randSource struct {
	io.Reader
	float64 func() float64
	intn    func(n int) int
}

// NewSecureRand returns the cryptographically-secure random source used
// by default at issuance.
func NewSecureRand() *randSource {
	return &randSource{
		Reader: cryptorand.Reader,
		float64: func() float64 {
			var b [8]byte
			if _, err := io.ReadFull(cryptorand.Reader, b[:]); err != nil {
				return 0
			}
			// 53 bits of entropy, the same precision math/rand.Float64 uses.
			return float64(binary.BigEndian.Uint64(b[:])>>11) / (1 << 53)
		},
		intn: func(n int) int {
			if n <= 0 {
				return 0
			}
			var b [8]byte
			if _, err := io.ReadFull(cryptorand.Reader, b[:]); err != nil {
				return 0
			}
			return int(binary.BigEndian.Uint64(b[:]) % uint64(n))
		},
	}
}

// NewSeededRand returns a deterministic random source for tests: same
// seed, same decoy counts and positions, same salts.
func NewSeededRand(seed uint64) *randSource {
	src := mathrand.NewChaCha8(seedArray(seed))
	r := mathrand.New(src)
	return &randSource{
		Reader: asReader(r),
		float64: func() float64 { return r.Float64() },
		intn: func(n int) int {
			if n <= 0 {
				return 0
			}
			return r.IntN(n)
		},
	}
}

func (r *randSource) Float64() float64   { return r.float64() }
func (r *randSource) Intn(n int) int     { return r.intn(n) }

func seedArray(seed uint64) [32]byte {
	var out [32]byte
	binary.LittleEndian.PutUint64(out[0:8], seed)
	binary.LittleEndian.PutUint64(out[8:16], seed^0x9E3779B97F4A7C15)
	binary.LittleEndian.PutUint64(out[16:24], seed^0xD1B54A32D192ED03)
	binary.LittleEndian.PutUint64(out[24:32], seed^0xA24BAED4963EE407)
	return out
}

type chaRandReader struct{ r *mathrand.Rand }

func (c chaRandReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(c.r.IntN(256))
	}
	return len(p), nil
}

func asReader(r *mathrand.Rand) io.Reader {
	return chaRandReader{r: r}
}
