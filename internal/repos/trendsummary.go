package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/neuroplay/neuroplay-backend/internal/logger"
	"github.com/neuroplay/neuroplay-backend/internal/types"
)

type TrendSummaryRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, summary *types.TrendSummary) (*types.TrendSummary, error)
	ListByLearnerID(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID) ([]*types.TrendSummary, error)
}

type trendSummaryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTrendSummaryRepo(db *gorm.DB, baseLog *logger.Logger) TrendSummaryRepo {
	repoLog := baseLog.With("repo", "TrendSummaryRepo")
	return &trendSummaryRepo{db: db, log: repoLog}
}

func (tsr *trendSummaryRepo) Upsert(ctx context.Context, tx *gorm.DB, summary *types.TrendSummary) (*types.TrendSummary, error) {
	transaction := tx
	if transaction == nil {
		transaction = tsr.db
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "learner_id"}, {Name: "pattern_name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"trend_type", "session_count", "updated_at",
			}),
		}).
		Create(summary).Error; err != nil {
		return nil, err
	}

	return summary, nil
}

func (tsr *trendSummaryRepo) ListByLearnerID(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID) ([]*types.TrendSummary, error) {
	transaction := tx
	if transaction == nil {
		transaction = tsr.db
	}

	var results []*types.TrendSummary
	if err := transaction.WithContext(ctx).
		Where("learner_id = ?", learnerID).
		Order("pattern_name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}
