package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhayporwals/taskyn/internal/jobs/sweeper"
	"github.com/abhayporwals/taskyn/internal/platform/envutil"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Env     string
	Port    int
	LogMode string
	Version string

	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	CookieSecure       bool

	CORSOrigins []string

	GenerationProvider string

	RedisAddr       string
	RedisLockPrefix string

	SweeperSchedule string
	SweeperEnabled  bool

	ServiceName   string
	ShutdownGrace time.Duration
}

// LoadConfig reads .env when present and then the process environment.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		Env:     strings.ToLower(envutil.String("APP_ENV", "development")),
		Port:    envutil.Int("PORT", 8000),
		LogMode: envutil.String("LOG_MODE", "development"),
		Version: envutil.String("APP_VERSION", "dev"),

		AccessTokenSecret:  envutil.String("ACCESS_TOKEN_SECRET", ""),
		RefreshTokenSecret: envutil.String("REFRESH_TOKEN_SECRET", ""),
		AccessTokenTTL:     envutil.Duration("ACCESS_TOKEN_TTL", 24*time.Hour),
		RefreshTokenTTL:    envutil.Duration("REFRESH_TOKEN_TTL", 10*24*time.Hour),
		CookieSecure:       envutil.Bool("COOKIE_SECURE", false),

		CORSOrigins: envutil.List("CORS_ORIGINS", nil),

		GenerationProvider: strings.ToLower(envutil.String("GENERATION_PROVIDER", ProviderGemini)),

		RedisAddr:       envutil.String("REDIS_ADDR", ""),
		RedisLockPrefix: envutil.String("REDIS_LOCK_PREFIX", "taskyn:"),

		SweeperSchedule: envutil.String("SWEEPER_SCHEDULE", sweeper.DefaultSchedule),
		SweeperEnabled:  envutil.Bool("SWEEPER_ENABLED", true),

		ServiceName:   envutil.String("OTEL_SERVICE_NAME", "taskyn"),
		ShutdownGrace: envutil.Duration("SHUTDOWN_GRACE", 15*time.Second),
	}
}

func (c Config) IsProduction() bool { return c.Env == "production" }

func (c Config) Address() string { return fmt.Sprintf(":%d", c.Port) }

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.AccessTokenSecret) == "" {
		missing = append(missing, "ACCESS_TOKEN_SECRET")
	}
	if strings.TrimSpace(c.RefreshTokenSecret) == "" {
		missing = append(missing, "REFRESH_TOKEN_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing env vars: %s", strings.Join(missing, ", "))
	}
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	switch c.GenerationProvider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown GENERATION_PROVIDER %q", c.GenerationProvider)
	}
	return nil
}
