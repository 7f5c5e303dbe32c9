package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/abhayporwals/taskyn/internal/jobs/sweeper"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{
		"APP_ENV", "PORT", "ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL", "GENERATION_PROVIDER",
		"CORS_ORIGINS", "SWEEPER_SCHEDULE", "COOKIE_SECURE",
	} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	require.Equal(t, "development", cfg.Env)
	require.Equal(t, ":8000", cfg.Address())
	require.Equal(t, 24*time.Hour, cfg.AccessTokenTTL)
	require.Equal(t, 240*time.Hour, cfg.RefreshTokenTTL)
	require.Equal(t, ProviderGemini, cfg.GenerationProvider)
	require.Equal(t, sweeper.DefaultSchedule, cfg.SweeperSchedule)
	require.Empty(t, cfg.CORSOrigins)
	require.False(t, cfg.CookieSecure)
	require.False(t, cfg.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "Production")
	t.Setenv("PORT", "9090")
	t.Setenv("ACCESS_TOKEN_TTL", "30m")
	t.Setenv("REFRESH_TOKEN_TTL", "3600")
	t.Setenv("GENERATION_PROVIDER", "OpenAI")
	t.Setenv("CORS_ORIGINS", "https://app.taskyn.dev, https://admin.taskyn.dev")
	t.Setenv("COOKIE_SECURE", "true")

	cfg := LoadConfig()
	require.True(t, cfg.IsProduction())
	require.Equal(t, ":9090", cfg.Address())
	require.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, time.Hour, cfg.RefreshTokenTTL)
	require.Equal(t, ProviderOpenAI, cfg.GenerationProvider)
	require.Equal(t, []string{"https://app.taskyn.dev", "https://admin.taskyn.dev"}, cfg.CORSOrigins)
	require.True(t, cfg.CookieSecure)
}

func TestConfigValidate(t *testing.T) {
	valid := Config{
		AccessTokenSecret:  "a",
		RefreshTokenSecret: "r",
		AccessTokenTTL:     time.Hour,
		RefreshTokenTTL:    time.Hour,
		GenerationProvider: ProviderGemini,
	}
	require.NoError(t, valid.Validate())

	cases := map[string]func(*Config){
		"missing access secret": func(c *Config) { c.AccessTokenSecret = "" },
		"missing both":          func(c *Config) { c.AccessTokenSecret, c.RefreshTokenSecret = "", "" },
		"same secrets":          func(c *Config) { c.RefreshTokenSecret = c.AccessTokenSecret },
		"zero ttl":              func(c *Config) { c.AccessTokenTTL = 0 },
		"unknown provider":      func(c *Config) { c.GenerationProvider = "claude" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid
			mutate(&c)
			require.Error(t, c.Validate())
		})
	}
}

func TestAvatarStoreNilWithoutBucket(t *testing.T) {
	require.Nil(t, Clients{}.AvatarStore())
}
