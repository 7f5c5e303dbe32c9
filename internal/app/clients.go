package app

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/abhayporwals/taskyn/internal/modules/learning/generation"
	"github.com/abhayporwals/taskyn/internal/observability"
	"github.com/abhayporwals/taskyn/internal/platform/gcp"
	"github.com/abhayporwals/taskyn/internal/platform/gemini"
	"github.com/abhayporwals/taskyn/internal/platform/logger"
	"github.com/abhayporwals/taskyn/internal/platform/openai"
	"github.com/abhayporwals/taskyn/internal/platform/redislock"
	"github.com/abhayporwals/taskyn/internal/platform/sendgrid"
	"github.com/abhayporwals/taskyn/internal/services"
)

type Clients struct {
	Generation *generation.Client
	Locker     redislock.Locker
	Redis      *goredis.Client
	Mailer     sendgrid.Client
	Avatars    *gcp.AvatarBucket
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")

	model, err := newModel(ctx, log, cfg.GenerationProvider)
	if err != nil {
		return Clients{}, fmt.Errorf("init %s client: %w", cfg.GenerationProvider, err)
	}
	gen := generation.NewClient(log, generation.FromModel(model), metrics)

	var (
		locker redislock.Locker
		rdb    *goredis.Client
	)
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		locker, rdb, err = redislock.NewRedisLocker(log, cfg.RedisAddr, cfg.RedisLockPrefix)
		if err != nil {
			log.Warn("Redis unavailable, using in-process generation locks", "error", err)
		}
	}
	if locker == nil {
		locker = redislock.NewLocalLocker()
	}

	var bucket *gcp.AvatarBucket
	if bcfg := gcp.AvatarBucketConfigFromEnv(); bcfg.Name != "" {
		bucket, err = gcp.NewAvatarBucket(ctx, log, bcfg)
		if err != nil {
			if rdb != nil {
				_ = rdb.Close()
			}
			return Clients{}, fmt.Errorf("init avatar bucket: %w", err)
		}
	} else {
		log.Warn("AVATAR_GCS_BUCKET_NAME not set, avatar uploads are disabled")
	}

	return Clients{
		Generation: gen,
		Locker:     locker,
		Redis:      rdb,
		Mailer:     sendgrid.New(log, sendgrid.ConfigFromEnv()),
		Avatars:    bucket,
	}, nil
}

func newModel(ctx context.Context, log *logger.Logger, provider string) (generation.JSONModel, error) {
	if provider == ProviderOpenAI {
		c, err := openai.NewClient(log, openai.ConfigFromEnv())
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	c, err := gemini.NewClient(ctx, log, gemini.ConfigFromEnv())
	if err != nil {
		return nil, err
	}
	return c, nil
}

// AvatarStore returns nil rather than a typed nil when no bucket is configured.
func (c Clients) AvatarStore() services.AvatarStore {
	if c.Avatars == nil {
		return nil
	}
	return c.Avatars
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Avatars != nil {
		_ = c.Avatars.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
