package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/abhayporwals/taskyn/internal/platform/apierr"
	"github.com/abhayporwals/taskyn/internal/services"
)

// maxMultipartMemory caps the in-memory part of multipart parsing; larger parts spill to disk.
const maxMultipartMemory = 8 << 20

func uuidParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		return uuid.Nil, apierr.BadRequest("Invalid " + name)
	}
	return id, nil
}

// bindPatch decodes a JSON object body into a field map. An empty body is an empty patch.
func bindPatch(c *gin.Context) (map[string]any, error) {
	patch := map[string]any{}
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return patch, nil
	}
	if err := c.ShouldBindJSON(&patch); err != nil {
		if errors.Is(err, io.EOF) {
			return patch, nil
		}
		return nil, err
	}
	return patch, nil
}

// formAvatar reads the first present file among fields. It returns nil when none was sent.
func formAvatar(c *gin.Context, fields ...string) (*services.AvatarUpload, error) {
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, apierr.BadRequest("Invalid multipart form")
	}
	for _, field := range fields {
		fh, err := c.FormFile(field)
		if err != nil {
			continue
		}
		return readAvatar(fh)
	}
	return nil, nil
}

func readAvatar(fh *multipart.FileHeader) (*services.AvatarUpload, error) {
	if fh.Size > services.MaxAvatarBytes {
		return nil, apierr.BadRequest("Avatar file must be 5MB or smaller")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apierr.BadRequest("Avatar file could not be read")
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, services.MaxAvatarBytes+1))
	if err != nil {
		return nil, apierr.BadRequest("Avatar file could not be read")
	}
	return &services.AvatarUpload{
		Data:        raw,
		ContentType: fh.Header.Get("Content-Type"),
		Filename:    fh.Filename,
	}, nil
}

// setAuthCookies writes the token pair as httpOnly cookies scoped to the whole site.
func setAuthCookies(c *gin.Context, secure bool, pair *services.TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessCookie, pair.AccessToken, int(time.Until(pair.AccessExpiresAt).Seconds()), "/", "", secure, true)
	c.SetCookie(refreshCookie, pair.RefreshToken, int(time.Until(pair.RefreshExpiresAt).Seconds()), "/", "", secure, true)
}

func clearAuthCookies(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessCookie, "", -1, "/", "", secure, true)
	c.SetCookie(refreshCookie, "", -1, "/", "", secure, true)
}
