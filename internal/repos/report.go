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

type ReportRepo interface {
	Create(ctx context.Context, tx *gorm.DB, report *types.Report) (*types.Report, error)
	GetByID(ctx context.Context, tx *gorm.DB, reportID uuid.UUID) (*types.Report, error)
	ListByLearnerID(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID) ([]*types.Report, error)
	FindLatestByScope(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID, scope, audience string, sourceSessionID *uuid.UUID) (*types.Report, error)
	FindLatestServable(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID) (*types.Report, error)
	UpdateValidation(ctx context.Context, tx *gorm.DB, reportID uuid.UUID, content, status string, violations []byte) error
}

type reportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReportRepo(db *gorm.DB, baseLog *logger.Logger) ReportRepo {
	repoLog := baseLog.With("repo", "ReportRepo")
	return &reportRepo{db: db, log: repoLog}
}

func (rr *reportRepo) Create(ctx context.Context, tx *gorm.DB, report *types.Report) (*types.Report, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	if err := transaction.WithContext(ctx).Create(report).Error; err != nil {
		return nil, err
	}

	return report, nil
}

func (rr *reportRepo) GetByID(ctx context.Context, tx *gorm.DB, reportID uuid.UUID) (*types.Report, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	var result types.Report
	if err := transaction.WithContext(ctx).
		Where("id = ?", reportID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	return &result, nil
}

func (rr *reportRepo) ListByLearnerID(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID) ([]*types.Report, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	var results []*types.Report
	if err := transaction.WithContext(ctx).
		Where("learner_id = ?", learnerID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

// FindLatestByScope looks for a reusable report for the same learner,
// scope, audience, and source session. Callers decide whether the
// validation status makes it servable.
func (rr *reportRepo) FindLatestByScope(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID, scope, audience string, sourceSessionID *uuid.UUID) (*types.Report, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	query := transaction.WithContext(ctx).
		Where("learner_id = ?", learnerID).
		Where("scope = ?", scope).
		Where("audience = ?", audience)
	if sourceSessionID != nil {
		query = query.Where("source_session_id = ?", *sourceSessionID)
	} else {
		query = query.Where("source_session_id IS NULL")
	}

	var result types.Report
	if err := query.Order("created_at DESC").First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	return &result, nil
}

// FindLatestServable returns the learner's most recent report whose
// validation status allows it to be shown to a client.
func (rr *reportRepo) FindLatestServable(ctx context.Context, tx *gorm.DB, learnerID uuid.UUID) (*types.Report, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	var result types.Report
	if err := transaction.WithContext(ctx).
		Where("learner_id = ?", learnerID).
		Where("validation_status IN ?", []string{types.ValidationApproved, types.ValidationRewritten}).
		Order("created_at DESC").
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	return &result, nil
}

func (rr *reportRepo) UpdateValidation(ctx context.Context, tx *gorm.DB, reportID uuid.UUID, content, status string, violations []byte) error {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	updates := map[string]interface{}{
		"content":           content,
		"validation_status": status,
	}
	if violations != nil {
		updates["violations"] = violations
	}

	res := transaction.WithContext(ctx).
		Model(&types.Report{}).
		Where("id = ?", reportID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}
