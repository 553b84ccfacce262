package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/neuroplay/neuroplay-backend/internal/types"
)

func SeedObserver(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.Observer {
	tb.Helper()
	o := &types.Observer{
		ID:       uuid.New(),
		Email:    email,
		Password: "pw",
		Role:     types.RoleParent,
	}
	if err := tx.WithContext(ctx).Create(o).Error; err != nil {
		tb.Fatalf("seed observer: %v", err)
	}
	return o
}

func SeedLearner(tb testing.TB, ctx context.Context, tx *gorm.DB, observerID uuid.UUID, alias, code string) *types.Learner {
	tb.Helper()
	l := &types.Learner{
		ID:          uuid.New(),
		ObserverID:  observerID,
		Alias:       alias,
		LearnerCode: code,
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed learner: %v", err)
	}
	return l
}

func SeedSession(tb testing.TB, ctx context.Context, tx *gorm.DB, learnerID uuid.UUID) *types.Session {
	tb.Helper()
	s := &types.Session{
		ID:        uuid.New(),
		LearnerID: learnerID,
		GameSet:   "focus_tap",
		StartedAt: time.Now(),
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed session: %v", err)
	}
	return s
}
