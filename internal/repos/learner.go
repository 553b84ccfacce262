package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/neuroplay/neuroplay-backend/internal/logger"
	apperrors "github.com/neuroplay/neuroplay-backend/internal/pkg/errors"
	"github.com/neuroplay/neuroplay-backend/internal/types"
)

type LearnerRepo interface {
	Create(ctx context.Context, tx *gorm.DB, learner *types.Learner) (*types.Learner, error)
	GetByID(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID) (*types.Learner, error)
	GetByCode(ctx context.Context, tx *gorm.DB, learnerCode string) (*types.Learner, error)
	ListByObserverID(ctx context.Context, tx *gorm.DB, observerID uuid.UUID) ([]*types.Learner, error)
	UpdateAlias(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID, alias string) error
	DeleteByID(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID) error
}

type learnerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearnerRepo(db *gorm.DB, baseLog *logger.Logger) LearnerRepo {
	repoLog := baseLog.With("repo", "LearnerRepo")
	return &learnerRepo{db: db, log: repoLog}
}

func (lr *learnerRepo) Create(ctx context.Context, tx *gorm.DB, learner *types.Learner) (*types.Learner, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	if err := transaction.WithContext(ctx).Create(learner).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrConflict
		}
		return nil, err
	}

	return learner, nil
}

func (lr *learnerRepo) GetByID(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID) (*types.Learner, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	var result types.Learner
	if err := transaction.WithContext(ctx).
		Where("id = ?", learnerID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	return &result, nil
}

func (lr *learnerRepo) GetByCode(ctx context.Context, tx *gorm.DB, learnerCode string) (*types.Learner, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	var result types.Learner
	if err := transaction.WithContext(ctx).
		Where("learner_code = ?", learnerCode).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	return &result, nil
}

func (lr *learnerRepo) ListByObserverID(ctx context.Context, tx *gorm.DB, observerID uuid.UUID) ([]*types.Learner, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	var results []*types.Learner
	if err := transaction.WithContext(ctx).
		Where("observer_id = ?", observerID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (lr *learnerRepo) UpdateAlias(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID, alias string) error {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Learner{}).
		Where("id = ?", learnerID).
		Update("alias", alias)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (lr *learnerRepo) DeleteByID(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	res := transaction.WithContext(ctx).
		Where("id = ?", learnerID).
		Delete(&types.Learner{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}
