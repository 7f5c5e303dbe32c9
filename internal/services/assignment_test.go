package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	learningrepo "github.com/abhayporwals/taskyn/internal/data/repos/learning"
	"github.com/abhayporwals/taskyn/internal/data/repos/testutil"
	types "github.com/abhayporwals/taskyn/internal/domain"
	"github.com/abhayporwals/taskyn/internal/domain/learning"
	"github.com/abhayporwals/taskyn/internal/platform/apierr"
)

func TestSubmitTwiceFailsAndKeepsFirstSubmission(t *testing.T) {
	e := newEnv(t)
	svc := e.assignmentService(t)
	u, ctx := e.seedUser(t)
	tr := testutil.SeedTrack(t, context.Background(), e.db, u.ID, "T")
	a := testutil.SeedAssignment(t, context.Background(), e.db, tr, "A", learning.TypeCode, learning.DifficultyEasy)

	got, err := svc.Submit(ctx, a.ID, SubmitInput{SubmissionContent: "first"})
	require.NoError(t, err)
	require.True(t, got.IsCompleted)
	require.Equal(t, learning.SubmissionText, got.SubmissionType)
	require.Equal(t, learning.FeedbackStatusSkipped, got.FeedbackStatus)

	_, err = svc.Submit(ctx, a.ID, SubmitInput{SubmissionContent: "second", Reflection: "again"})
	requireStatus(t, err, http.StatusBadRequest)
	require.Equal(t, apierr.CodeInvalidState, apierr.From(err).Code)

	var stored types.Assignment
	require.NoError(t, e.db.Where("id = ?", a.ID).First(&stored).Error)
	require.Equal(t, "first", stored.SubmissionContent)
	require.Empty(t, stored.Reflection)
}

func TestSubmitCompletesTrackOnLastTask(t *testing.T) {
	e := newEnv(t)
	svc := e.assignmentService(t)
	u, ctx := e.seedUser(t)
	bg := context.Background()
	tr := testutil.SeedTrack(t, bg, e.db, u.ID, "Three")
	var ids []uuid.UUID
	for _, title := range []string{"A1", "A2", "A3"} {
		ids = append(ids, testutil.SeedAssignment(t, bg, e.db, tr, title, learning.TypeCode, learning.DifficultyEasy).ID)
	}

	for i, id := range ids {
		_, err := svc.Submit(ctx, id, SubmitInput{SubmissionContent: "done", SubmissionType: learning.SubmissionCode})
		require.NoError(t, err)
		got := e.reloadTrack(t, tr.ID)
		require.Equal(t, 3, got.TotalTasks)
		require.Equal(t, i+1, got.CompletedTasks)
		if i < 2 {
			require.Equal(t, learning.TrackStatusActive, got.Status)
		}
	}
	require.Equal(t, learning.TrackStatusCompleted, e.reloadTrack(t, tr.ID).Status)

	stats := e.reloadUser(t, u.ID)
	require.Equal(t, 3, stats.TotalCompleted)
	require.Equal(t, 1, stats.StreakCount)
	require.NotNil(t, stats.LastCompletedAt)
}

func TestEmptyTrackNeverAutoCompletes(t *testing.T) {
	e := newEnv(t)
	u, _ := e.seedUser(t)
	tr := testutil.SeedTrack(t, context.Background(), e.db, u.ID, "Empty")

	require.NoError(t, e.tracks.ReconcileProgress(bgDBC(), tr.ID))
	got := e.reloadTrack(t, tr.ID)
	require.Equal(t, learning.TrackStatusActive, got.Status)
	require.Zero(t, got.TotalTasks)
}

func TestSubmitFeedbackOutcomes(t *testing.T) {
	e := newEnv(t)
	svc := e.assignmentService(t)
	u, ctx := e.seedUser(t)
	bg := context.Background()
	tr := testutil.SeedTrack(t, bg, e.db, u.ID, "T")

	ok := testutil.SeedAssignment(t, bg, e.db, tr, "ok", learning.TypeCode, learning.DifficultyEasy)
	got, err := svc.Submit(ctx, ok.ID, SubmitInput{SubmissionContent: "code", Reflection: "I learned channels"})
	require.NoError(t, err)
	require.Equal(t, learning.FeedbackStatusGenerated, got.FeedbackStatus)
	require.NotNil(t, got.AIFeedbackID)
	require.NotNil(t, got.Feedback)
	require.Equal(t, 80.0, got.Feedback.Score)

	fetched, err := svc.Get(ctx, ok.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.Feedback)
	require.Equal(t, "solid", fetched.Feedback.FeedbackText)
	require.Equal(t, []string{"add tests"}, []string(fetched.Feedback.Suggestions))

	e.gen.feedbackErr = errors.New("quota exceeded")
	failed := testutil.SeedAssignment(t, bg, e.db, tr, "failed", learning.TypeCode, learning.DifficultyEasy)
	got, err = svc.Submit(ctx, failed.ID, SubmitInput{SubmissionContent: "code", Reflection: "hmm"})
	require.NoError(t, err)
	require.True(t, got.IsCompleted)
	require.Equal(t, learning.FeedbackStatusFailed, got.FeedbackStatus)
	require.Nil(t, got.AIFeedbackID)

	blank := testutil.SeedAssignment(t, bg, e.db, tr, "blank", learning.TypeCode, learning.DifficultyEasy)
	got, err = svc.Submit(ctx, blank.ID, SubmitInput{SubmissionContent: "code", Reflection: "   "})
	require.NoError(t, err)
	require.Equal(t, learning.FeedbackStatusSkipped, got.FeedbackStatus)
}

func TestSubmitReviewsReflectionRegardlessOfFeedbackPreference(t *testing.T) {
	e := newEnv(t)
	svc := e.assignmentService(t)
	u, ctx := e.seedUser(t)
	bg := context.Background()
	p := testutil.SeedPreferences(t, bg, e.db, u.ID)
	require.NoError(t, e.db.Model(p).Update("wants_feedback", false).Error)
	tr := testutil.SeedTrack(t, bg, e.db, u.ID, "T")
	a := testutil.SeedAssignment(t, bg, e.db, tr, "A", learning.TypeCode, learning.DifficultyEasy)

	got, err := svc.Submit(ctx, a.ID, SubmitInput{SubmissionContent: "x", Reflection: "learned a lot"})
	require.NoError(t, err)
	require.Equal(t, learning.FeedbackStatusGenerated, got.FeedbackStatus)
	require.NotNil(t, got.AIFeedbackID)
	require.Len(t, e.gen.prompts, 1)
}

func TestSubmitValidation(t *testing.T) {
	e := newEnv(t)
	svc := e.assignmentService(t)
	u, ctx := e.seedUser(t)
	_, otherCtx := e.seedUser(t)
	tr := testutil.SeedTrack(t, context.Background(), e.db, u.ID, "T")
	a := testutil.SeedAssignment(t, context.Background(), e.db, tr, "A", learning.TypeCode, learning.DifficultyEasy)

	_, err := svc.Submit(ctx, a.ID, SubmitInput{SubmissionContent: "x", SubmissionType: "video"})
	requireStatus(t, err, http.StatusBadRequest)

	for _, content := range []string{"", "  \n\t"} {
		_, err = svc.Submit(ctx, a.ID, SubmitInput{SubmissionContent: content, Reflection: "r"})
		requireStatus(t, err, http.StatusBadRequest)
		require.Equal(t, "Submission content is required", apierr.From(err).Message)
	}
	var stored types.Assignment
	require.NoError(t, e.db.Where("id = ?", a.ID).First(&stored).Error)
	require.False(t, stored.IsCompleted)
	require.Nil(t, stored.SubmittedAt)

	_, err = svc.Submit(otherCtx, a.ID, SubmitInput{SubmissionContent: "x"})
	requireStatus(t, err, http.StatusNotFound)
}

func TestNextStreak(t *testing.T) {
	day := func(d, h int) *time.Time {
		v := time.Date(2025, 3, d, h, 0, 0, 0, time.UTC)
		return &v
	}
	cases := []struct {
		name string
		prev int
		last *time.Time
		now  time.Time
		want int
	}{
		{"first ever", 0, nil, *day(10, 9), 1},
		{"same day", 4, day(10, 1), *day(10, 23), 4},
		{"next day", 4, day(10, 23), *day(11, 0), 5},
		{"gap", 4, day(10, 12), *day(12, 12), 1},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, nextStreak(tc.prev, tc.last, tc.now), tc.name)
	}
}

func TestAssignmentPatchAndDelete(t *testing.T) {
	e := newEnv(t)
	svc := e.assignmentService(t)
	u, ctx := e.seedUser(t)
	bg := context.Background()
	tr := testutil.SeedTrack(t, bg, e.db, u.ID, "T")
	a := testutil.SeedAssignment(t, bg, e.db, tr, "A", learning.TypeCode, learning.DifficultyEasy)
	b := testutil.SeedAssignment(t, bg, e.db, tr, "B", learning.TypeCode, learning.DifficultyEasy)
	require.NoError(t, e.tracks.ReconcileProgress(bgDBC(), tr.ID))

	for _, field := range []string{"isCompleted", "reflection", "trackId", "feedbackStatus"} {
		_, err := svc.Update(ctx, a.ID, map[string]any{field: "x"})
		requireStatus(t, err, http.StatusBadRequest)
	}
	_, err := svc.Update(ctx, a.ID, map[string]any{"difficulty": "extreme"})
	requireStatus(t, err, http.StatusBadRequest)

	got, err := svc.Update(ctx, a.ID, map[string]any{"title": "Renamed", "difficulty": learning.DifficultyHard})
	require.NoError(t, err)
	require.Equal(t, "Renamed", got.Title)
	require.Equal(t, learning.DifficultyHard, got.Difficulty)

	require.NoError(t, svc.Delete(ctx, b.ID))
	require.Equal(t, 1, e.reloadTrack(t, tr.ID).TotalTasks)

	_, err = svc.Get(ctx, b.ID)
	requireStatus(t, err, http.StatusNotFound)
}

func TestAssignmentListsAndStats(t *testing.T) {
	e := newEnv(t)
	svc := e.assignmentService(t)
	u, ctx := e.seedUser(t)
	_, otherCtx := e.seedUser(t)
	bg := context.Background()
	tr := testutil.SeedTrack(t, bg, e.db, u.ID, "T")
	a := testutil.SeedAssignment(t, bg, e.db, tr, "A", learning.TypeCode, learning.DifficultyEasy)
	testutil.SeedAssignment(t, bg, e.db, tr, "B", learning.TypeCode, learning.DifficultyHard)
	testutil.SeedAssignment(t, bg, e.db, tr, "C", learning.TypeMCQ, learning.DifficultyEasy)

	_, err := svc.Submit(ctx, a.ID, SubmitInput{SubmissionContent: "x"})
	require.NoError(t, err)

	rows, err := svc.ListByTrack(ctx, tr.ID, learningrepo.AssignmentFilter{Type: learning.TypeCode})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	done := true
	rows, err = svc.List(ctx, learningrepo.AssignmentFilter{IsCompleted: &done})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, a.ID, rows[0].ID)

	_, err = svc.ListByTrack(otherCtx, tr.ID, learningrepo.AssignmentFilter{})
	requireStatus(t, err, http.StatusNotFound)

	_, err = svc.List(ctx, learningrepo.AssignmentFilter{Type: "essay"})
	requireStatus(t, err, http.StatusBadRequest)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, stats.TotalAssignments)
	require.EqualValues(t, 1, stats.CompletedAssignments)
	require.InDelta(t, 100.0/3, stats.CompletionRate, 0.001)
	require.Equal(t, StatBucket{Total: 2, Completed: 1}, stats.TypeBreakdown[learning.TypeCode])
	require.Equal(t, StatBucket{Total: 1, Completed: 0}, stats.TypeBreakdown[learning.TypeMCQ])
	require.Equal(t, StatBucket{Total: 2, Completed: 1}, stats.DifficultyBreakdown[learning.DifficultyEasy])

	empty, err := svc.Stats(otherCtx)
	require.NoError(t, err)
	require.Zero(t, empty.CompletionRate)
	require.Empty(t, empty.TypeBreakdown)
}
