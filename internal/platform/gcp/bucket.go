package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/abhayporwals/taskyn/internal/platform/envutil"
	"github.com/abhayporwals/taskyn/internal/platform/logger"
)

type BucketConfig struct {
	Name          string
	CDNDomain     string
	EmulatorHost  string
	PublicBaseURL string
}

func AvatarBucketConfigFromEnv() BucketConfig {
	return BucketConfig{
		Name:          strings.TrimSpace(envutil.String("AVATAR_GCS_BUCKET_NAME", "")),
		CDNDomain:     strings.TrimSpace(envutil.String("AVATAR_CDN_DOMAIN", "")),
		EmulatorHost:  strings.TrimRight(strings.TrimSpace(envutil.String("STORAGE_EMULATOR_HOST", "")), "/"),
		PublicBaseURL: strings.TrimRight(strings.TrimSpace(envutil.String("OBJECT_STORAGE_PUBLIC_BASE_URL", "")), "/"),
	}
}

// AvatarBucket stores avatar images in a single GCS bucket.
type AvatarBucket struct {
	log    *logger.Logger
	client *storage.Client
	cfg    BucketConfig
}

func NewAvatarBucket(ctx context.Context, log *logger.Logger, cfg BucketConfig) (*AvatarBucket, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("missing env var AVATAR_GCS_BUCKET_NAME")
	}
	var opts []option.ClientOption
	if cfg.EmulatorHost != "" {
		_ = os.Setenv("STORAGE_EMULATOR_HOST", cfg.EmulatorHost)
		opts = append(opts, option.WithoutAuthentication())
	} else {
		opts = append(ClientOptionsFromEnv(), option.WithScopes(storage.ScopeReadWrite))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	log = log.With("service", "AvatarBucket")
	log.Info("Object storage initialized", "bucket", cfg.Name, "emulator_host", cfg.EmulatorHost, "cdn_domain", cfg.CDNDomain)
	return &AvatarBucket{log: log, client: client, cfg: cfg}, nil
}

// Upload writes the object and returns its public URL.
func (b *AvatarBucket) Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := b.client.Bucket(b.cfg.Name).Object(key).NewWriter(ctx)
	if contentType == "" {
		contentType = ContentTypeForKey(key)
	}
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return b.PublicURL(key), nil
}

// Delete removes the object. A missing object is not an error.
func (b *AvatarBucket) Delete(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	err := b.client.Bucket(b.cfg.Name).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete GCS object %s: %w", key, err)
	}
	return nil
}

func (b *AvatarBucket) PublicURL(key string) string {
	return PublicURL(b.cfg, key)
}

func (b *AvatarBucket) Close() error {
	return b.client.Close()
}

func PublicURL(cfg BucketConfig, key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	switch {
	case cfg.CDNDomain != "":
		return fmt.Sprintf("https://%s/%s", cfg.CDNDomain, key)
	case cfg.PublicBaseURL != "":
		return fmt.Sprintf("%s/%s/%s", cfg.PublicBaseURL, cfg.Name, key)
	case cfg.EmulatorHost != "":
		return fmt.Sprintf("%s/%s/%s", cfg.EmulatorHost, cfg.Name, key)
	default:
		return fmt.Sprintf("https://storage.googleapis.com/%s/%s", cfg.Name, key)
	}
}

func ContentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch {
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".webp"):
		return "image/webp"
	case strings.HasSuffix(s, ".gif"):
		return "image/gif"
	case strings.HasSuffix(s, ".svg"):
		return "image/svg+xml"
	default:
		return ""
	}
}
