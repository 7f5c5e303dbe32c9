package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	learningrepo "github.com/abhayporwals/taskyn/internal/data/repos/learning"
	"github.com/abhayporwals/taskyn/internal/data/repos/testutil"
	userrepo "github.com/abhayporwals/taskyn/internal/data/repos/user"
	types "github.com/abhayporwals/taskyn/internal/domain"
	"github.com/abhayporwals/taskyn/internal/modules/learning/generation"
	"github.com/abhayporwals/taskyn/internal/modules/learning/prompts"
	"github.com/abhayporwals/taskyn/internal/platform/apierr"
	"github.com/abhayporwals/taskyn/internal/platform/ctxutil"
	"github.com/abhayporwals/taskyn/internal/platform/dbctx"
	"github.com/abhayporwals/taskyn/internal/platform/sendgrid"
)

func init() {
	bcryptCost = bcrypt.MinCost
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sendgrid.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg sendgrid.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) last() sendgrid.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sendgrid.Message{}
	}
	return m.sent[len(m.sent)-1]
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	failPut bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (s *fakeStore) Upload(_ context.Context, key, _ string, r io.Reader) (string, error) {
	if s.failPut {
		return "", errors.New("bucket unavailable")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = b
	return "https://cdn.test/" + key, nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

// fakeGenerator serves scripted drafts. assignErrAt fails the nth assignment call (1-based).
type fakeGenerator struct {
	mu          sync.Mutex
	track       generation.TrackDraft
	trackErr    error
	assignment  generation.AssignmentDraft
	assignErrAt int
	assignCalls int
	feedback    generation.FeedbackDraft
	feedbackErr error
	prompts     []prompts.Prompt
	block       chan struct{}
}

func (g *fakeGenerator) ProviderName() string { return "fake" }

func (g *fakeGenerator) GenerateTrack(_ context.Context, p prompts.Prompt) (generation.TrackDraft, error) {
	if g.block != nil {
		<-g.block
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, p)
	return g.track, g.trackErr
}

func (g *fakeGenerator) GenerateAssignment(_ context.Context, p prompts.Prompt) (generation.AssignmentDraft, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, p)
	g.assignCalls++
	if g.assignErrAt > 0 && g.assignCalls == g.assignErrAt {
		return generation.AssignmentDraft{}, &generation.ParseError{Prompt: prompts.PromptAssignment, Reason: "no JSON object"}
	}
	d := g.assignment
	d.Title = fmt.Sprintf("%s %d", d.Title, g.assignCalls)
	return d, nil
}

func (g *fakeGenerator) GenerateFeedback(_ context.Context, p prompts.Prompt) (generation.FeedbackDraft, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, p)
	return g.feedback, g.feedbackErr
}

type env struct {
	db          *gorm.DB
	users       userrepo.UserRepo
	prefs       userrepo.PreferencesRepo
	tracks      learningrepo.TrackRepo
	assignments learningrepo.AssignmentRepo
	feedback    learningrepo.FeedbackRepo
	store       *fakeStore
	mailer      *fakeMailer
	gen         *fakeGenerator
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return &env{
		db:          db,
		users:       userrepo.NewUserRepo(db, log),
		prefs:       userrepo.NewPreferencesRepo(db, log),
		tracks:      learningrepo.NewTrackRepo(db, log),
		assignments: learningrepo.NewAssignmentRepo(db, log),
		feedback:    learningrepo.NewFeedbackRepo(db, log),
		store:       newFakeStore(),
		mailer:      &fakeMailer{},
		gen: &fakeGenerator{
			track: generation.TrackDraft{Title: "Go Services", Categories: []string{"backend", "go", "apis"}, TotalTasks: 5, Description: "d"},
			assignment: generation.AssignmentDraft{
				Title: "Task", Description: "build it", Type: "code", Difficulty: "easy", Language: "Go",
			},
			feedback: generation.FeedbackDraft{Score: 80, Feedback: "solid", Suggestions: []string{"add tests"}},
		},
	}
}

func (e *env) avatarService(t *testing.T) AvatarService {
	return NewAvatarService(testutil.Logger(t), e.store)
}

func (e *env) authService(t *testing.T) *authService {
	return NewAuthService(e.db, testutil.Logger(t), AuthConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	}, e.users, e.avatarService(t)).(*authService)
}

func (e *env) userService(t *testing.T) UserService {
	return NewUserService(e.db, testutil.Logger(t), e.users, e.prefs, e.tracks, e.assignments, e.feedback, e.avatarService(t))
}

func (e *env) trackService(t *testing.T) TrackService {
	return NewTrackService(e.db, testutil.Logger(t), e.tracks, e.assignments, e.feedback)
}

func (e *env) assignmentService(t *testing.T) *assignmentService {
	return NewAssignmentService(e.db, testutil.Logger(t), e.users, e.prefs, e.tracks, e.assignments, e.feedback, e.gen).(*assignmentService)
}

// seedUser inserts a user with password "secret123" and returns a context authenticated as them.
func (e *env) seedUser(t *testing.T) (*types.User, context.Context) {
	t.Helper()
	name := "u" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	u := testutil.SeedUser(t, context.Background(), e.db, name, name+"@example.com", "secret123")
	return u, asUser(u)
}

func asUser(u *types.User) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: u.ID, Email: u.Email, UserName: u.UserName})
}

func bgDBC() dbctx.Context { return dbctx.New(context.Background()) }

func (e *env) reloadUser(t *testing.T, id uuid.UUID) *types.User {
	t.Helper()
	var u types.User
	require.NoError(t, e.db.Where("id = ?", id).First(&u).Error)
	return &u
}

func (e *env) reloadTrack(t *testing.T, id uuid.UUID) *types.Track {
	t.Helper()
	var tr types.Track
	require.NoError(t, e.db.Where("id = ?", id).First(&tr).Error)
	return &tr
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	ae := apierr.From(err)
	require.Equal(t, status, ae.Status, "error: %v", err)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
