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

type ObserverTokenRepo interface {
	Create(ctx context.Context, tx *gorm.DB, token *types.ObserverToken) (*types.ObserverToken, error)
	GetByRefreshToken(ctx context.Context, tx *gorm.DB, refreshToken string) (*types.ObserverToken, error)
	GetByAccessToken(ctx context.Context, tx *gorm.DB, accessToken string) (*types.ObserverToken, error)
	DeleteByID(ctx context.Context, tx *gorm.DB, tokenID uuid.UUID) error
	DeleteByObserverID(ctx context.Context, tx *gorm.DB, observerID uuid.UUID) error
}

type observerTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewObserverTokenRepo(db *gorm.DB, baseLog *logger.Logger) ObserverTokenRepo {
	repoLog := baseLog.With("repo", "ObserverTokenRepo")
	return &observerTokenRepo{db: db, log: repoLog}
}

func (otr *observerTokenRepo) Create(ctx context.Context, tx *gorm.DB, token *types.ObserverToken) (*types.ObserverToken, error) {
	transaction := tx
	if transaction == nil {
		transaction = otr.db
	}

	if err := transaction.WithContext(ctx).Create(token).Error; err != nil {
		return nil, err
	}

	return token, nil
}

func (otr *observerTokenRepo) GetByRefreshToken(ctx context.Context, tx *gorm.DB, refreshToken string) (*types.ObserverToken, error) {
	transaction := tx
	if transaction == nil {
		transaction = otr.db
	}

	var result types.ObserverToken
	if err := transaction.WithContext(ctx).
		Where("refresh_token = ?", refreshToken).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	return &result, nil
}

func (otr *observerTokenRepo) GetByAccessToken(ctx context.Context, tx *gorm.DB, accessToken string) (*types.ObserverToken, error) {
	transaction := tx
	if transaction == nil {
		transaction = otr.db
	}

	var result types.ObserverToken
	if err := transaction.WithContext(ctx).
		Where("access_token = ?", accessToken).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	return &result, nil
}

func (otr *observerTokenRepo) DeleteByID(ctx context.Context, tx *gorm.DB, tokenID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = otr.db
	}

	return transaction.WithContext(ctx).
		Where("id = ?", tokenID).
		Delete(&types.ObserverToken{}).Error
}

func (otr *observerTokenRepo) DeleteByObserverID(ctx context.Context, tx *gorm.DB, observerID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = otr.db
	}

	return transaction.WithContext(ctx).
		Where("observer_id = ?", observerID).
		Delete(&types.ObserverToken{}).Error
}
