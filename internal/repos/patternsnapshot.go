package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/neuroplay/neuroplay-backend/internal/logger"
	"github.com/neuroplay/neuroplay-backend/internal/types"
)

type PatternSnapshotRepo interface {
	Create(ctx context.Context, tx *gorm.DB, snapshot *types.PatternSnapshot) (*types.PatternSnapshot, error)
	ListByLearnerID(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID) ([]*types.PatternSnapshot, error)
	ListBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.PatternSnapshot, error)
}

type patternSnapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPatternSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) PatternSnapshotRepo {
	repoLog := baseLog.With("repo", "PatternSnapshotRepo")
	return &patternSnapshotRepo{db: db, log: repoLog}
}

func (psr *patternSnapshotRepo) Create(ctx context.Context, tx *gorm.DB, snapshot *types.PatternSnapshot) (*types.PatternSnapshot, error) {
	transaction := tx
	if transaction == nil {
		transaction = psr.db
	}

	if err := transaction.WithContext(ctx).Create(snapshot).Error; err != nil {
		return nil, err
	}

	return snapshot, nil
}

func (psr *patternSnapshotRepo) ListByLearnerID(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID) ([]*types.PatternSnapshot, error) {
	transaction := tx
	if transaction == nil {
		transaction = psr.db
	}

	var results []*types.PatternSnapshot
	if err := transaction.WithContext(ctx).
		Where("learner_id = ?", learnerID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (psr *patternSnapshotRepo) ListBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.PatternSnapshot, error) {
	transaction := tx
	if transaction == nil {
		transaction = psr.db
	}

	var results []*types.PatternSnapshot
	if err := transaction.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}
