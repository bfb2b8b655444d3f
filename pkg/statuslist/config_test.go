package statuslist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfigFromEnvDefaults(t *testing.T) {
	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	require.Equal(t, 10*time.Minute, cfg.CacheTTL)
	require.Equal(t, 5*time.Second, cfg.FetchDeadline)

	engineCfg := cfg.ToEngineConfig()
	require.Equal(t, cfg.CacheTTL, engineCfg.CacheTTL)
	require.Equal(t, cfg.FetchDeadline, engineCfg.FetchDeadline)
}

func TestConfigFromEnvOverride(t *testing.T) {
	t.Setenv("SDJWT_STATUSLIST_CACHE_TTL", "30m")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	require.Equal(t, 30*time.Minute, cfg.CacheTTL)
}
