package statuslist

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig mirrors EngineConfig's tunable fields for services that want
// to configure the status-list engine from the process environment
// (`SDJWT_STATUSLIST_CACHE_TTL`, etc.) instead of wiring EngineConfig
// programmatically.
type EnvConfig struct {
	CacheTTL      time.Duration `envconfig:"cache_ttl" default:"10m"`
	CacheCapacity uint64        `envconfig:"cache_capacity" default:"0"`
	FetchDeadline time.Duration `envconfig:"fetch_deadline" default:"5s"`
}

// ConfigFromEnv populates an EnvConfig from SDJWT_STATUSLIST_* variables.
func ConfigFromEnv() (*EnvConfig, error) {
	var c EnvConfig
	if err := envconfig.Process("sdjwt_statuslist", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ToEngineConfig converts the environment-sourced config into an
// EngineConfig, leaving rate-limit and logger fields at their defaults
// since those are rarely environment-driven.
func (c *EnvConfig) ToEngineConfig() EngineConfig {
	return EngineConfig{
		CacheTTL:      c.CacheTTL,
		CacheCapacity: c.CacheCapacity,
		FetchDeadline: c.FetchDeadline,
	}
}
