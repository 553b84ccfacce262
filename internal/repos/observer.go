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

type ObserverRepo interface {
	Create(ctx context.Context, tx *gorm.DB, observer *types.Observer) (*types.Observer, error)
	GetByID(ctx context.Context, tx *gorm.DB, observerID uuid.UUID) (*types.Observer, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Observer, error)
}

type observerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewObserverRepo(db *gorm.DB, baseLog *logger.Logger) ObserverRepo {
	repoLog := baseLog.With("repo", "ObserverRepo")
	return &observerRepo{db: db, log: repoLog}
}

func (or *observerRepo) Create(ctx context.Context, tx *gorm.DB, observer *types.Observer) (*types.Observer, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}

	if err := transaction.WithContext(ctx).Create(observer).Error; err != nil {
		return nil, err
	}

	return observer, nil
}

func (or *observerRepo) GetByID(ctx context.Context, tx *gorm.DB, observerID uuid.UUID) (*types.Observer, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}

	var result types.Observer
	if err := transaction.WithContext(ctx).
		Where("id = ?", observerID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	return &result, nil
}

func (or *observerRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Observer, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}

	var result types.Observer
	if err := transaction.WithContext(ctx).
		Where("email = ?", email).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	return &result, nil
}
