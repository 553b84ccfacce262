package repos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/neuroplay/neuroplay-backend/internal/pkg/errors"
	"github.com/neuroplay/neuroplay-backend/internal/repos/testutil"
	"github.com/neuroplay/neuroplay-backend/internal/types"
)

func TestReportRepoLatestByScope(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewReportRepo(db, testutil.Logger(t))

	observer := testutil.SeedObserver(t, ctx, tx, "report-repo@test.local")
	learner := testutil.SeedLearner(t, ctx, tx, observer.ID, "Star", "RPRT2345")
	session := testutil.SeedSession(t, ctx, tx, learner.ID)

	older := &types.Report{
		ID:               uuid.New(),
		LearnerID:        learner.ID,
		Scope:            types.ReportScopeLearner,
		Audience:         types.AudienceParent,
		Content:          "older",
		GenerationMethod: types.GenerationTemplate,
		ValidationStatus: types.ValidationApproved,
		CreatedAt:        time.Now().Add(-time.Hour),
	}
	newer := &types.Report{
		ID:               uuid.New(),
		LearnerID:        learner.ID,
		Scope:            types.ReportScopeLearner,
		Audience:         types.AudienceParent,
		Content:          "newer",
		GenerationMethod: types.GenerationAI,
		ValidationStatus: types.ValidationApproved,
		CreatedAt:        time.Now(),
	}
	sessionScoped := &types.Report{
		ID:               uuid.New(),
		LearnerID:        learner.ID,
		Scope:            types.ReportScopeSession,
		SourceSessionID:  &session.ID,
		Audience:         types.AudienceParent,
		Content:          "session scoped",
		GenerationMethod: types.GenerationAI,
		ValidationStatus: types.ValidationApproved,
		CreatedAt:        time.Now(),
	}
	for _, r := range []*types.Report{older, newer, sessionScoped} {
		if _, err := repo.Create(ctx, tx, r); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	// Learner scope matches only rows without a source session.
	got, err := repo.FindLatestByScope(ctx, tx, learner.ID, types.ReportScopeLearner, types.AudienceParent, nil)
	if err != nil {
		t.Fatalf("FindLatestByScope: %v", err)
	}
	if got.ID != newer.ID {
		t.Fatalf("latest learner-scope: got %q", got.Content)
	}

	got, err = repo.FindLatestByScope(ctx, tx, learner.ID, types.ReportScopeSession, types.AudienceParent, &session.ID)
	if err != nil {
		t.Fatalf("FindLatestByScope session: %v", err)
	}
	if got.ID != sessionScoped.ID {
		t.Fatalf("latest session-scope: got %q", got.Content)
	}

	if _, err := repo.FindLatestByScope(ctx, tx, learner.ID, types.ReportScopeLearner, types.AudienceTeacher, nil); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("missing audience: got %v, want ErrNotFound", err)
	}
}

func TestReportRepoLatestServableAndValidationUpdate(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewReportRepo(db, testutil.Logger(t))

	observer := testutil.SeedObserver(t, ctx, tx, "report-servable@test.local")
	learner := testutil.SeedLearner(t, ctx, tx, observer.ID, "Star", "RPRT2346")

	rejected := &types.Report{
		ID:               uuid.New(),
		LearnerID:        learner.ID,
		Scope:            types.ReportScopeLearner,
		Audience:         types.AudienceParent,
		Content:          "rejected",
		GenerationMethod: types.GenerationAI,
		ValidationStatus: types.ValidationRejected,
		CreatedAt:        time.Now(),
	}
	rewritten := &types.Report{
		ID:               uuid.New(),
		LearnerID:        learner.ID,
		Scope:            types.ReportScopeLearner,
		Audience:         types.AudienceParent,
		Content:          "rewritten",
		GenerationMethod: types.GenerationAI,
		ValidationStatus: types.ValidationRewritten,
		CreatedAt:        time.Now().Add(-time.Minute),
	}
	for _, r := range []*types.Report{rejected, rewritten} {
		if _, err := repo.Create(ctx, tx, r); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := repo.FindLatestServable(ctx, tx, learner.ID)
	if err != nil {
		t.Fatalf("FindLatestServable: %v", err)
	}
	if got.ID != rewritten.ID {
		t.Fatalf("servable: got %q, rejected rows must be skipped", got.Content)
	}

	if err := repo.UpdateValidation(ctx, tx, rejected.ID, "cleaned", types.ValidationRewritten, []byte(`["diagnosis"]`)); err != nil {
		t.Fatalf("UpdateValidation: %v", err)
	}
	updated, err := repo.GetByID(ctx, tx, rejected.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.Content != "cleaned" || updated.ValidationStatus != types.ValidationRewritten {
		t.Fatalf("validation update not applied: %+v", updated)
	}
	if len(updated.Violations) == 0 {
		t.Fatalf("violations audit not stored")
	}

	if err := repo.UpdateValidation(ctx, tx, uuid.New(), "x", types.ValidationApproved, nil); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("update of missing report: got %v, want ErrNotFound", err)
	}
}
