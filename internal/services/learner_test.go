package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/neuroplay/neuroplay-backend/internal/logger"
	apperrors "github.com/neuroplay/neuroplay-backend/internal/pkg/errors"
	"github.com/neuroplay/neuroplay-backend/internal/types"
	"github.com/neuroplay/neuroplay-backend/internal/utils"
)

func newLearnerService(t *testing.T, repo *fakeLearnerRepo) LearnerService {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return NewLearnerService(nil, log, repo)
}

func TestLearnerCreateIssuesCode(t *testing.T) {
	repo := &fakeLearnerRepo{learners: make(map[uuid.UUID]*types.Learner)}
	svc := newLearnerService(t, repo)
	observerID := uuid.New()

	learner, err := svc.Create(context.Background(), observerID, "Star")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if learner.Alias != "Star" {
		t.Fatalf("alias: got %q", learner.Alias)
	}
	if !utils.IsValidLearnerCode(learner.LearnerCode) {
		t.Fatalf("issued code %q is not valid", learner.LearnerCode)
	}
}

func TestLearnerCreateEmptyAlias(t *testing.T) {
	repo := &fakeLearnerRepo{learners: make(map[uuid.UUID]*types.Learner)}
	svc := newLearnerService(t, repo)

	if _, err := svc.Create(context.Background(), uuid.New(), "   "); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("blank alias: got %v, want ErrInvalidArgument", err)
	}
}

func TestLearnerGetOwnership(t *testing.T) {
	repo := &fakeLearnerRepo{learners: make(map[uuid.UUID]*types.Learner)}
	svc := newLearnerService(t, repo)
	observerID := uuid.New()

	learner, err := svc.Create(context.Background(), observerID, "Star")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.Get(context.Background(), observerID, learner.ID); err != nil {
		t.Fatalf("owner Get failed: %v", err)
	}
	if _, err := svc.Get(context.Background(), uuid.New(), learner.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("stranger Get: got %v, want ErrNotFound", err)
	}
}

func TestLearnerRenameAndDelete(t *testing.T) {
	repo := &fakeLearnerRepo{learners: make(map[uuid.UUID]*types.Learner)}
	svc := newLearnerService(t, repo)
	observerID := uuid.New()
	ctx := context.Background()

	learner, err := svc.Create(ctx, observerID, "Star")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	renamed, err := svc.Rename(ctx, observerID, learner.ID, "Comet")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if renamed.Alias != "Comet" {
		t.Fatalf("alias after rename: got %q", renamed.Alias)
	}

	if err := svc.Delete(ctx, observerID, learner.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.Get(ctx, observerID, learner.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("Get after delete: got %v, want ErrNotFound", err)
	}
}

func TestLearnerResolveCode(t *testing.T) {
	repo := &fakeLearnerRepo{learners: make(map[uuid.UUID]*types.Learner)}
	svc := newLearnerService(t, repo)
	ctx := context.Background()

	learner, err := svc.Create(ctx, uuid.New(), "Star")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	resolved, err := svc.ResolveCode(ctx, learner.LearnerCode)
	if err != nil {
		t.Fatalf("ResolveCode failed: %v", err)
	}
	if resolved.ID != learner.ID {
		t.Fatalf("resolved wrong learner")
	}

	// Codes are case-insensitive on input.
	lower := make([]byte, len(learner.LearnerCode))
	for i := range learner.LearnerCode {
		c := learner.LearnerCode[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		lower[i] = c
	}
	if _, err := svc.ResolveCode(ctx, string(lower)); err != nil {
		t.Fatalf("lowercase ResolveCode failed: %v", err)
	}

	// Malformed codes never reach the repo.
	if _, err := svc.ResolveCode(ctx, "short"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("malformed code: got %v, want ErrNotFound", err)
	}
}
