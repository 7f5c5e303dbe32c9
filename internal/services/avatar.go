package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/abhayporwals/taskyn/internal/platform/apierr"
	"github.com/abhayporwals/taskyn/internal/platform/logger"
)

const (
	MaxAvatarBytes = 5 << 20
	avatarSize     = 512
)

var avatarContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/webp": {},
}

// AvatarStore is the object storage the processed avatars land in.
type AvatarStore interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

// AvatarUpload is a raw image as received from a multipart form.
type AvatarUpload struct {
	Data        []byte
	ContentType string
	Filename    string
}

type AvatarService interface {
	// Store validates, crops and uploads the image, returning the new object key and URL.
	Store(ctx context.Context, userID uuid.UUID, up AvatarUpload) (key string, publicURL string, err error)
	// Replace stores the image and then drops oldKey. Failure to drop is only logged.
	Replace(ctx context.Context, userID uuid.UUID, oldKey string, up AvatarUpload) (key string, publicURL string, err error)
	Remove(ctx context.Context, key string)
}

type avatarService struct {
	log   *logger.Logger
	store AvatarStore
	now   func() time.Time
}

// NewAvatarService accepts a nil store; uploads then fail with a 500 and only
// avatar URLs can be used.
func NewAvatarService(log *logger.Logger, store AvatarStore) AvatarService {
	return &avatarService{
		log:   log.With("service", "AvatarService"),
		store: store,
		now:   time.Now,
	}
}

func (as *avatarService) Store(ctx context.Context, userID uuid.UUID, up AvatarUpload) (string, string, error) {
	if userID == uuid.Nil {
		return "", "", apierr.Internal("user required", nil)
	}
	if err := validateAvatar(&up); err != nil {
		return "", "", err
	}
	if as.store == nil {
		return "", "", apierr.Internal("Avatar storage is not configured", nil)
	}

	processed, err := processUploadedAvatar(up.Data, avatarSize)
	if err != nil {
		return "", "", apierr.BadRequest("Avatar image could not be decoded")
	}

	// versioned key so CDN caches never serve the previous image
	key := fmt.Sprintf("user_avatar/%s/%d.png", userID.String(), as.now().UnixNano())
	publicURL, err := as.store.Upload(ctx, key, "image/png", bytes.NewReader(processed.Bytes()))
	if err != nil {
		return "", "", apierr.Internal("Failed to upload avatar", err)
	}
	return key, publicURL, nil
}

func (as *avatarService) Replace(ctx context.Context, userID uuid.UUID, oldKey string, up AvatarUpload) (string, string, error) {
	key, publicURL, err := as.Store(ctx, userID, up)
	if err != nil {
		return "", "", err
	}
	if oldKey = strings.TrimSpace(oldKey); oldKey != "" && oldKey != key {
		as.Remove(ctx, oldKey)
	}
	return key, publicURL, nil
}

func (as *avatarService) Remove(ctx context.Context, key string) {
	if as.store == nil || strings.TrimSpace(key) == "" {
		return
	}
	if err := as.store.Delete(ctx, key); err != nil {
		as.log.Warn("failed to delete avatar (ignored)", "key", key, "error", err)
	}
}

func validateAvatar(up *AvatarUpload) error {
	if len(up.Data) == 0 {
		return apierr.BadRequest("Avatar file is required")
	}
	if len(up.Data) > MaxAvatarBytes {
		return apierr.BadRequest("Avatar file must be 5MB or smaller")
	}
	ct := strings.ToLower(strings.TrimSpace(up.ContentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(up.Data)
	}
	if _, ok := avatarContentTypes[ct]; !ok {
		return apierr.BadRequest("Only JPEG, PNG and WebP images are allowed")
	}
	up.ContentType = ct
	return nil
}

// validAvatarURL accepts absolute http(s) URLs only.
func validAvatarURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func processUploadedAvatar(raw []byte, size int) (bytes.Buffer, error) {
	var out bytes.Buffer

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return out, fmt.Errorf("decode image: %w", err)
	}

	// Center-crop to square
	b := img.Bounds()
	w := b.Dx()
	h := b.Dy()
	side := w
	if h < w {
		side = h
	}
	if side == 0 {
		return out, fmt.Errorf("empty image")
	}
	x0 := b.Min.X + (w-side)/2
	y0 := b.Min.Y + (h-side)/2

	cropRect := image.Rect(0, 0, side, side)
	cropped := image.NewRGBA(cropRect)
	draw.Draw(cropped, cropRect, img, image.Point{X: x0, Y: y0}, draw.Src)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), cropped, cropped.Bounds(), draw.Over, nil)

	dc := gg.NewContext(size, size)
	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()
	dc.DrawImage(dst, 0, 0)

	if err := dc.EncodePNG(&out); err != nil {
		return out, fmt.Errorf("encode png: %w", err)
	}
	return out, nil
}
