package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/neuroplay/neuroplay-backend/internal/logger"
	apperrors "github.com/neuroplay/neuroplay-backend/internal/pkg/errors"
	"github.com/neuroplay/neuroplay-backend/internal/types"
)

type SessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, session *types.Session) (*types.Session, error)
	GetByID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*types.Session, error)
	ListByLearnerID(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID) ([]*types.Session, error)
	MarkCompleted(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, completedAt time.Time, eventCount int) error
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	repoLog := baseLog.With("repo", "SessionRepo")
	return &sessionRepo{db: db, log: repoLog}
}

func (sr *sessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.Session) (*types.Session, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if err := transaction.WithContext(ctx).Create(session).Error; err != nil {
		return nil, err
	}

	return session, nil
}

func (sr *sessionRepo) GetByID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*types.Session, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var result types.Session
	if err := transaction.WithContext(ctx).
		Where("id = ?", sessionID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	return &result, nil
}

func (sr *sessionRepo) ListByLearnerID(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID) ([]*types.Session, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.Session
	if err := transaction.WithContext(ctx).
		Where("learner_id = ?", learnerID).
		Order("started_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (sr *sessionRepo) MarkCompleted(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, completedAt time.Time, eventCount int) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Session{}).
		Where("id = ?", sessionID).
		Updates(map[string]interface{}{
			"completed_at": completedAt,
			"event_count":  eventCount,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}
