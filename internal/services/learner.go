package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/neuroplay/neuroplay-backend/internal/logger"
	apperrors "github.com/neuroplay/neuroplay-backend/internal/pkg/errors"
	"github.com/neuroplay/neuroplay-backend/internal/repos"
	"github.com/neuroplay/neuroplay-backend/internal/types"
	"github.com/neuroplay/neuroplay-backend/internal/utils"
)

const codeGenerationAttempts = 5

type LearnerService interface {
	Create(ctx context.Context, observerID uuid.UUID, alias string) (*types.Learner, error)
	List(ctx context.Context, observerID uuid.UUID) ([]*types.Learner, error)
	Get(ctx context.Context, observerID, learnerID uuid.UUID) (*types.Learner, error)
	Rename(ctx context.Context, observerID, learnerID uuid.UUID, alias string) (*types.Learner, error)
	Delete(ctx context.Context, observerID, learnerID uuid.UUID) error
	ResolveCode(ctx context.Context, code string) (*types.Learner, error)
}

type learnerService struct {
	db          *gorm.DB
	log         *logger.Logger
	learnerRepo repos.LearnerRepo
}

func NewLearnerService(db *gorm.DB, log *logger.Logger, learnerRepo repos.LearnerRepo) LearnerService {
	serviceLog := log.With("service", "LearnerService")
	return &learnerService{db: db, log: serviceLog, learnerRepo: learnerRepo}
}

// Create registers a learner alias under the observer and issues its
// access code. Aliases are unique per observer; codes are unique
// globally and regenerated on collision.
func (ls *learnerService) Create(ctx context.Context, observerID uuid.UUID, alias string) (*types.Learner, error) {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return nil, fmt.Errorf("%w: alias is required", apperrors.ErrInvalidArgument)
	}

	var lastErr error
	for attempt := 0; attempt < codeGenerationAttempts; attempt++ {
		code, err := utils.GenerateLearnerCode()
		if err != nil {
			return nil, err
		}
		now := time.Now()
		learner := &types.Learner{
			ID:          uuid.New(),
			ObserverID:  observerID,
			Alias:       alias,
			LearnerCode: code,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		created, err := ls.learnerRepo.Create(ctx, nil, learner)
		if err == nil {
			ls.log.Info("Learner created", "learner_id", created.ID)
			return created, nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		// A conflict can be the alias or a code collision. Alias
		// conflicts are stable across retries, so check explicitly.
		if _, codeErr := ls.learnerRepo.GetByCode(ctx, nil, code); codeErr == nil {
			lastErr = err
			continue
		}
		return nil, fmt.Errorf("%w: alias already in use", apperrors.ErrConflict)
	}
	return nil, fmt.Errorf("failed to allocate learner code: %w", lastErr)
}

func (ls *learnerService) List(ctx context.Context, observerID uuid.UUID) ([]*types.Learner, error) {
	return ls.learnerRepo.ListByObserverID(ctx, nil, observerID)
}

func (ls *learnerService) Get(ctx context.Context, observerID, learnerID uuid.UUID) (*types.Learner, error) {
	learner, err := ls.learnerRepo.GetByID(ctx, nil, learnerID)
	if err != nil {
		return nil, err
	}
	if learner.ObserverID != observerID {
		return nil, apperrors.ErrNotFound
	}
	return learner, nil
}

func (ls *learnerService) Rename(ctx context.Context, observerID, learnerID uuid.UUID, alias string) (*types.Learner, error) {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return nil, fmt.Errorf("%w: alias is required", apperrors.ErrInvalidArgument)
	}
	learner, err := ls.Get(ctx, observerID, learnerID)
	if err != nil {
		return nil, err
	}
	if err := ls.learnerRepo.UpdateAlias(ctx, nil, learner.ID, alias); err != nil {
		return nil, err
	}
	learner.Alias = alias
	return learner, nil
}

// Delete removes the learner; the database cascades to sessions,
// pattern snapshots, trend summaries and reports.
func (ls *learnerService) Delete(ctx context.Context, observerID, learnerID uuid.UUID) error {
	learner, err := ls.Get(ctx, observerID, learnerID)
	if err != nil {
		return err
	}
	if err := ls.learnerRepo.DeleteByID(ctx, nil, learner.ID); err != nil {
		return err
	}
	ls.log.Info("Learner deleted", "learner_id", learnerID)
	return nil
}

// ResolveCode maps a learner access code to its learner. Malformed
// codes resolve to not-found without touching the database.
func (ls *learnerService) ResolveCode(ctx context.Context, code string) (*types.Learner, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !utils.IsValidLearnerCode(code) {
		return nil, apperrors.ErrNotFound
	}
	return ls.learnerRepo.GetByCode(ctx, nil, code)
}
