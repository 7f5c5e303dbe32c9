package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	learningrepo "github.com/abhayporwals/taskyn/internal/data/repos/learning"
	"github.com/abhayporwals/taskyn/internal/data/repos/testutil"
	types "github.com/abhayporwals/taskyn/internal/domain"
	"github.com/abhayporwals/taskyn/internal/domain/learning"
)

func TestTrackListAndGetAreUserScoped(t *testing.T) {
	e := newEnv(t)
	svc := e.trackService(t)
	u, ctx := e.seedUser(t)
	other, otherCtx := e.seedUser(t)
	bg := context.Background()

	mine := testutil.SeedTrack(t, bg, e.db, u.ID, "Mine")
	testutil.SeedTrack(t, bg, e.db, other.ID, "Theirs")

	rows, err := svc.List(ctx, learningrepo.TrackFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, mine.ID, rows[0].ID)

	_, err = svc.Get(otherCtx, mine.ID)
	requireStatus(t, err, http.StatusNotFound)

	_, err = svc.List(ctx, learningrepo.TrackFilter{Status: "paused"})
	requireStatus(t, err, http.StatusBadRequest)

	archived, err := svc.Archive(ctx, mine.ID)
	require.NoError(t, err)
	require.Equal(t, learning.TrackStatusArchived, archived.Status)

	rows, err = svc.List(ctx, learningrepo.TrackFilter{Status: learning.TrackStatusActive})
	require.NoError(t, err)
	require.Empty(t, rows)

	active, err := svc.Reactivate(ctx, mine.ID)
	require.NoError(t, err)
	require.Equal(t, learning.TrackStatusActive, active.Status)
}

func TestTrackPatch(t *testing.T) {
	e := newEnv(t)
	svc := e.trackService(t)
	u, ctx := e.seedUser(t)
	tr := testutil.SeedTrack(t, context.Background(), e.db, u.ID, "Old")

	for _, field := range []string{"userId", "generatedBy", "totalTasks", "completedTasks"} {
		_, err := svc.Update(ctx, tr.ID, map[string]any{"title": "x", field: 3})
		requireStatus(t, err, http.StatusBadRequest)
	}
	require.Equal(t, "Old", e.reloadTrack(t, tr.ID).Title)

	for _, status := range []string{"paused", "completed"} {
		_, err := svc.Update(ctx, tr.ID, map[string]any{"status": status})
		requireStatus(t, err, http.StatusBadRequest)
	}
	require.Equal(t, learning.TrackStatusActive, e.reloadTrack(t, tr.ID).Status)

	got, err := svc.Update(ctx, tr.ID, map[string]any{"status": "archived"})
	require.NoError(t, err)
	require.Equal(t, learning.TrackStatusArchived, got.Status)

	got, err = svc.Update(ctx, tr.ID, map[string]any{
		"title":    "New",
		"category": []any{"go", "db"},
	})
	require.NoError(t, err)
	require.Equal(t, "New", got.Title)
	require.Equal(t, []string{"go", "db"}, []string(got.Category))

	_, err = svc.Update(ctx, uuid.New(), map[string]any{"title": "ghost"})
	requireStatus(t, err, http.StatusNotFound)
}

func TestTrackDeleteRemovesAssignments(t *testing.T) {
	e := newEnv(t)
	svc := e.trackService(t)
	u, ctx := e.seedUser(t)
	bg := context.Background()

	tr := testutil.SeedTrack(t, bg, e.db, u.ID, "Doomed")
	a := testutil.SeedAssignment(t, bg, e.db, tr, "A1", learning.TypeCode, learning.DifficultyEasy)
	testutil.SeedAssignment(t, bg, e.db, tr, "A2", learning.TypeMCQ, learning.DifficultyHard)
	require.NoError(t, e.db.Create(&types.Feedback{ID: uuid.New(), AssignmentID: a.ID, GeneratedBy: "ai", Score: 70, FeedbackText: "ok"}).Error)

	other := testutil.SeedTrack(t, bg, e.db, u.ID, "Survivor")
	testutil.SeedAssignment(t, bg, e.db, other, "B1", learning.TypeCode, learning.DifficultyEasy)

	require.NoError(t, svc.Delete(ctx, tr.ID))

	var n int64
	require.NoError(t, e.db.Model(&types.Assignment{}).Where("track_id = ?", tr.ID).Count(&n).Error)
	require.Zero(t, n)
	require.NoError(t, e.db.Model(&types.Feedback{}).Where("assignment_id = ?", a.ID).Count(&n).Error)
	require.Zero(t, n)
	require.NoError(t, e.db.Model(&types.Assignment{}).Where("track_id = ?", other.ID).Count(&n).Error)
	require.EqualValues(t, 1, n)

	requireStatus(t, svc.Delete(ctx, tr.ID), http.StatusNotFound)
}

func TestTrackProgress(t *testing.T) {
	e := newEnv(t)
	svc := e.trackService(t)
	u, ctx := e.seedUser(t)
	bg := context.Background()

	empty := testutil.SeedTrack(t, bg, e.db, u.ID, "Empty")
	p, err := svc.Progress(ctx, empty.ID)
	require.NoError(t, err)
	require.Zero(t, p.ProgressPercentage)
	require.Empty(t, p.Assignments)

	tr := testutil.SeedTrack(t, bg, e.db, u.ID, "Half")
	a := testutil.SeedAssignment(t, bg, e.db, tr, "A1", learning.TypeCode, learning.DifficultyEasy)
	testutil.SeedAssignment(t, bg, e.db, tr, "A2", learning.TypeCode, learning.DifficultyEasy)
	require.NoError(t, e.db.Model(&types.Assignment{}).Where("id = ?", a.ID).Update("is_completed", true).Error)

	p, err = svc.Progress(ctx, tr.ID)
	require.NoError(t, err)
	require.Equal(t, 2, p.TotalAssignments)
	require.Equal(t, 1, p.CompletedAssignments)
	require.InDelta(t, 50.0, p.ProgressPercentage, 0.001)
}
