package statuslist

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/time/rate"

	"github.com/openwallet-labs/sdjwt-go/pkg/sdjwt"
)

// Transport fetches the raw bytes of a status-list credential, spec.md
// §6.4. The returned content type is expected to be `application/jwt`
// or `application/statuslist+jwt`; the engine does not otherwise
// interpret it.
type Transport interface {
	Get(ctx context.Context, uri string, deadline time.Time) (body []byte, contentType string, err error)
}

// TransportFunc adapts a plain function to Transport.
type TransportFunc func(ctx context.Context, uri string, deadline time.Time) ([]byte, string, error)

func (f TransportFunc) Get(ctx context.Context, uri string, deadline time.Time) ([]byte, string, error) {
	return f(ctx, uri, deadline)
}

// Decoder turns a fetched status-list credential's body into a
// BitVector at a given bit length. It is a function, not a fixed parser,
// so callers can plug in their own credential parsing; StandardDecoder is
// the default, which verifies the outer JWS and decodes its `sub` claim.
type Decoder func(body []byte, bitLen int) (*BitVector, error)

// EngineConfig configures an Engine. Zero-value fields fall back to
// sensible defaults (TTL 10m, one fetch in flight per URI per second).
type EngineConfig struct {
	CacheTTL      time.Duration
	CacheCapacity uint64
	FetchDeadline time.Duration
	RateLimit     rate.Limit
	RateBurst     int
	Log           logr.Logger
}

type cacheEntry struct {
	vector *BitVector
}

// Engine is C10: a cached, rate-limited status-list lookup. Successive
// IsRevoked calls for the same URI within the cache TTL issue exactly
// one transport call, per spec.md §8 invariant 9.
type Engine struct {
	transport Transport
	decode    Decoder
	cache     *ttlcache.Cache[string, *cacheEntry]
	limiters  *ttlcache.Cache[string, *rate.Limiter]
	deadline  time.Duration
	rateLimit rate.Limit
	rateBurst int
	log       logr.Logger
}

// NewEngine builds an Engine around a Transport and a Decoder.
func NewEngine(transport Transport, decode Decoder, cfg EngineConfig) *Engine {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	deadline := cfg.FetchDeadline
	if deadline <= 0 {
		deadline = 5 * time.Second
	}
	rl := cfg.RateLimit
	if rl <= 0 {
		rl = rate.Limit(1)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}
	log := cfg.Log
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	opts := []ttlcache.Option[string, *cacheEntry]{ttlcache.WithTTL[string, *cacheEntry](ttl)}
	if cfg.CacheCapacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, *cacheEntry](cfg.CacheCapacity))
	}
	cache := ttlcache.New(opts...)
	go cache.Start()

	limiters := ttlcache.New(ttlcache.WithTTL[string, *rate.Limiter](time.Hour))
	go limiters.Start()

	return &Engine{
		transport: transport,
		decode:    decode,
		cache:     cache,
		limiters:  limiters,
		deadline:  deadline,
		rateLimit: rl,
		rateBurst: burst,
		log:       log,
	}
}

// Stop stops the engine's background cache-expiration goroutines.
func (e *Engine) Stop() {
	e.cache.Stop()
	e.limiters.Stop()
}

// IsRevoked fetches (or reuses a cached copy of) the status list at uri
// and reports whether idx is revoked.
func (e *Engine) IsRevoked(ctx context.Context, uri string, idx, bitLen int) (bool, error) {
	vector, err := e.vectorFor(ctx, uri, bitLen)
	if err != nil {
		return false, err
	}
	return vector.IsRevoked(idx)
}

func (e *Engine) vectorFor(ctx context.Context, uri string, bitLen int) (*BitVector, error) {
	if item := e.cache.Get(uri); item != nil {
		e.log.V(1).Info("status list cache hit", "uri", uri)
		return item.Value().vector, nil
	}

	limiter := e.limiterFor(uri)
	if err := limiter.Wait(ctx); err != nil {
		return nil, sdjwt.NewError(sdjwt.StatusListUnavailable, uri, err)
	}

	// Re-check after acquiring the rate-limit slot: a concurrent caller
	// may have already populated the cache while this one waited.
	if item := e.cache.Get(uri); item != nil {
		return item.Value().vector, nil
	}

	deadline := time.Now().Add(e.deadline)
	body, _, err := e.transport.Get(ctx, uri, deadline)
	if err != nil {
		return nil, sdjwt.NewError(sdjwt.StatusListUnavailable, uri, err)
	}
	vector, err := e.decode(body, bitLen)
	if err != nil {
		return nil, err
	}

	e.log.V(1).Info("status list fetched", "uri", uri)
	e.cache.Set(uri, &cacheEntry{vector: vector}, ttlcache.DefaultTTL)
	return vector, nil
}

func (e *Engine) limiterFor(uri string) *rate.Limiter {
	if item := e.limiters.Get(uri); item != nil {
		return item.Value()
	}
	limiter := rate.NewLimiter(e.rateLimit, e.rateBurst)
	e.limiters.Set(uri, limiter, ttlcache.DefaultTTL)
	return limiter
}

// Invalidate evicts a cached bit vector, forcing the next lookup to
// refetch regardless of TTL.
func (e *Engine) Invalidate(uri string) {
	e.cache.Delete(uri)
}
