package learning

import (
	"context"
	"testing"

	"github.com/abhayporwals/taskyn/internal/data/repos/testutil"
	types "github.com/abhayporwals/taskyn/internal/domain"
	"github.com/abhayporwals/taskyn/internal/domain/learning"
	"github.com/abhayporwals/taskyn/internal/platform/dbctx"
)

func TestAssignmentRepoMarkSubmittedOnce(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.WithTx(ctx, tx)

	repo := NewAssignmentRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "submitter", "submitter@example.com", "secret1")
	track := testutil.SeedTrack(t, ctx, tx, u.ID, "t")
	a := testutil.SeedAssignment(t, ctx, tx, track, "a", learning.TypeCode, learning.DifficultyHard)

	a.SubmissionContent = "first"
	a.SubmissionType = learning.SubmissionCode
	a.FeedbackStatus = learning.FeedbackStatusSkipped
	ok, err := repo.MarkSubmitted(dbc, a)
	if err != nil || !ok {
		t.Fatalf("MarkSubmitted: ok=%v err=%v", ok, err)
	}

	second := *a
	second.SubmissionContent = "second"
	ok, err = repo.MarkSubmitted(dbc, &second)
	if err != nil {
		t.Fatalf("MarkSubmitted(second): %v", err)
	}
	if ok {
		t.Fatalf("MarkSubmitted(second): expected no rows affected")
	}

	got, err := repo.GetForUser(dbc, a.ID, u.ID)
	if err != nil {
		t.Fatalf("GetForUser: %v", err)
	}
	if !got.IsCompleted || got.SubmissionContent != "first" || got.SubmittedAt == nil {
		t.Fatalf("first submission must be preserved: %+v", got)
	}
}

func TestAssignmentRepoFiltersAndStats(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.WithTx(ctx, tx)

	repo := NewAssignmentRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "statsuser", "statsuser@example.com", "secret1")
	trackA := testutil.SeedTrack(t, ctx, tx, u.ID, "a")
	trackB := testutil.SeedTrack(t, ctx, tx, u.ID, "b")

	code := testutil.SeedAssignment(t, ctx, tx, trackA, "code", learning.TypeCode, learning.DifficultyEasy)
	testutil.SeedAssignment(t, ctx, tx, trackA, "reading", learning.TypeReading, learning.DifficultyEasy)
	testutil.SeedAssignment(t, ctx, tx, trackB, "code2", learning.TypeCode, learning.DifficultyHard)

	code.FeedbackStatus = learning.FeedbackStatusSkipped
	if ok, err := repo.MarkSubmitted(dbc, code); err != nil || !ok {
		t.Fatalf("MarkSubmitted: ok=%v err=%v", ok, err)
	}

	byTrack, err := repo.ListByTrack(dbc, u.ID, trackA.ID, AssignmentFilter{})
	if err != nil {
		t.Fatalf("ListByTrack: %v", err)
	}
	if len(byTrack) != 2 {
		t.Fatalf("ListByTrack: expected 2, got %d", len(byTrack))
	}

	done := true
	completed, err := repo.ListByUser(dbc, u.ID, AssignmentFilter{IsCompleted: &done})
	if err != nil {
		t.Fatalf("ListByUser(completed): %v", err)
	}
	if len(completed) != 1 || completed[0].ID != code.ID {
		t.Fatalf("ListByUser(completed): unexpected %+v", completed)
	}

	codes, err := repo.ListByUser(dbc, u.ID, AssignmentFilter{Type: learning.TypeCode})
	if err != nil {
		t.Fatalf("ListByUser(code): %v", err)
	}
	if len(codes) != 2 {
		t.Fatalf("ListByUser(code): expected 2, got %d", len(codes))
	}

	rows, err := repo.Stats(dbc, u.ID)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	var total, doneCount int64
	for _, r := range rows {
		total += r.Total
		doneCount += r.Completed
		if r.Type == learning.TypeCode && r.Difficulty == learning.DifficultyEasy && r.Completed != 1 {
			t.Fatalf("Stats: expected code/easy completed=1, got %+v", r)
		}
	}
	if total != 3 || doneCount != 1 {
		t.Fatalf("Stats: total=%d completed=%d", total, doneCount)
	}
}

func TestAssignmentRepoDeleteOrphans(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.WithTx(ctx, tx)

	tracks := NewTrackRepo(db, testutil.Logger(t))
	repo := NewAssignmentRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "orphaner", "orphaner@example.com", "secret1")
	kept := testutil.SeedTrack(t, ctx, tx, u.ID, "kept")
	gone := testutil.SeedTrack(t, ctx, tx, u.ID, "gone")
	testutil.SeedAssignment(t, ctx, tx, kept, "stay", learning.TypeCode, learning.DifficultyEasy)
	testutil.SeedAssignment(t, ctx, tx, gone, "orphan", learning.TypeCode, learning.DifficultyEasy)

	if ok, err := tracks.Delete(dbc, gone.ID, u.ID); err != nil || !ok {
		t.Fatalf("Delete: ok=%v err=%v", ok, err)
	}
	n, err := repo.DeleteOrphans(dbc)
	if err != nil {
		t.Fatalf("DeleteOrphans: %v", err)
	}
	if n != 1 {
		t.Fatalf("DeleteOrphans: expected 1, got %d", n)
	}
	var remaining []*types.Assignment
	if err := tx.Find(&remaining).Error; err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(remaining) != 1 || remaining[0].TrackID != kept.ID {
		t.Fatalf("unexpected remaining assignments %+v", remaining)
	}
}
