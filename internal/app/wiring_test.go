package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/abhayporwals/taskyn/internal/data/repos/testutil"
	httpx "github.com/abhayporwals/taskyn/internal/http"
	"github.com/abhayporwals/taskyn/internal/modules/learning/generation"
	"github.com/abhayporwals/taskyn/internal/modules/learning/prompts"
	"github.com/abhayporwals/taskyn/internal/observability"
	"github.com/abhayporwals/taskyn/internal/platform/logger"
	"github.com/abhayporwals/taskyn/internal/platform/redislock"
	"github.com/abhayporwals/taskyn/internal/platform/sendgrid"
)

type scriptedProvider struct{}

func (scriptedProvider) Name() string { return "scripted" }

func (scriptedProvider) Generate(_ context.Context, p prompts.Prompt) (string, error) {
	switch p.Name {
	case prompts.PromptTrack:
		return `{"title":"Go Services","categories":["go","http","sql"],"totalTasks":5,"description":"Build services"}`, nil
	case prompts.PromptAssignment:
		return `{"title":"Handler","description":"Write a handler","type":"code","difficulty":"easy","language":"go"}`, nil
	default:
		return `{"score":80,"feedback":"Solid"}`, nil
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func call(t *testing.T, r *gin.Engine, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func TestWiredRouterServesLearningFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := logger.Nop()
	metrics := observability.NewMetrics()
	cfg := Config{
		AccessTokenSecret:  "access-secret",
		RefreshTokenSecret: "refresh-secret",
		AccessTokenTTL:     time.Hour,
		RefreshTokenTTL:    24 * time.Hour,
		GenerationProvider: ProviderGemini,
	}
	clients := Clients{
		Generation: generation.NewClient(log, scriptedProvider{}, metrics),
		Locker:     redislock.NewLocalLocker(),
		Mailer:     sendgrid.New(log, sendgrid.Config{}),
	}

	reposet := wireRepos(db, log)
	serviceset := wireServices(db, log, cfg, reposet, clients)
	r := httpx.NewRouter(routerConfig(log, cfg, metrics, wireHandlers(db, log, cfg, serviceset), wireMiddleware(log, serviceset)))

	code, _ := call(t, r, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"fullName":  "Ada Lovelace",
		"userName":  "ada",
		"email":     "ada@example.com",
		"password":  "secret1",
		"avatarUrl": "https://cdn.example.com/ada.png",
	})
	require.Equal(t, http.StatusCreated, code)

	code, env := call(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, code)
	var login struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(t, login.AccessToken)

	code, _ = call(t, r, http.MethodPost, "/api/v1/tracks", login.AccessToken, map[string]string{})
	require.Equal(t, http.StatusNotFound, code, "generation needs preferences first")

	code, _ = call(t, r, http.MethodPatch, "/api/v1/preferences", login.AccessToken, map[string]any{
		"interests":               []string{"backend"},
		"preferredLanguage":       "go",
		"learningStyle":           "both",
		"preferredAssignmentType": "mixed",
		"availableHoursPerWeek":   6,
	})
	require.Equal(t, http.StatusOK, code)

	code, env = call(t, r, http.MethodPost, "/api/v1/tracks", login.AccessToken, map[string]string{})
	require.Equal(t, http.StatusCreated, code)
	var track struct {
		ID         string `json:"id"`
		Title      string `json:"title"`
		TotalTasks int    `json:"totalTasks"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &track))
	require.Equal(t, "Go Services", track.Title)
	require.Equal(t, 5, track.TotalTasks)

	code, env = call(t, r, http.MethodGet, "/api/v1/assignments/track/"+track.ID, login.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 5)

	code, _ = call(t, r, http.MethodGet, "/api/v1/assignments", "", nil)
	require.Equal(t, http.StatusUnauthorized, code)
}
