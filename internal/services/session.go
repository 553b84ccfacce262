package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/neuroplay/neuroplay-backend/internal/eventstore"
	"github.com/neuroplay/neuroplay-backend/internal/logger"
	apperrors "github.com/neuroplay/neuroplay-backend/internal/pkg/errors"
	"github.com/neuroplay/neuroplay-backend/internal/ratelimit"
	"github.com/neuroplay/neuroplay-backend/internal/repos"
	"github.com/neuroplay/neuroplay-backend/internal/types"
)

// CompleteResult is what session completion reports back. A session
// with too few events completes without a pattern; that is a designed
// outcome, not an error.
type CompleteResult struct {
	SessionID       uuid.UUID
	TotalEvents     int
	PatternDetected string
}

type SessionService interface {
	Start(ctx context.Context, observerID, learnerID uuid.UUID, gameSet string) (*types.Session, error)
	AppendEvents(ctx context.Context, observerID, sessionID uuid.UUID, events []eventstore.TapEvent) (int, error)
	Complete(ctx context.Context, observerID, sessionID uuid.UUID) (*CompleteResult, error)
	Status(ctx context.Context, observerID, sessionID uuid.UUID) (*types.Session, int, error)

	StartByCode(ctx context.Context, code, gameSet string) (*types.Session, error)
	AppendEventsByCode(ctx context.Context, code string, sessionID uuid.UUID, events []eventstore.TapEvent) error
	CompleteByCode(ctx context.Context, code string, sessionID uuid.UUID) error
}

type sessionService struct {
	db          *gorm.DB
	log         *logger.Logger
	store       *eventstore.Store
	learners    LearnerService
	learnerRepo repos.LearnerRepo
	sessionRepo repos.SessionRepo
	patternRepo repos.PatternSnapshotRepo
	limiter     ratelimit.Limiter
}

func NewSessionService(db *gorm.DB, log *logger.Logger, store *eventstore.Store, learners LearnerService, learnerRepo repos.LearnerRepo, sessionRepo repos.SessionRepo, patternRepo repos.PatternSnapshotRepo, limiter ratelimit.Limiter) SessionService {
	serviceLog := log.With("service", "SessionService")
	return &sessionService{
		db:          db,
		log:         serviceLog,
		store:       store,
		learners:    learners,
		learnerRepo: learnerRepo,
		sessionRepo: sessionRepo,
		patternRepo: patternRepo,
		limiter:     limiter,
	}
}

func (ss *sessionService) Start(ctx context.Context, observerID, learnerID uuid.UUID, gameSet string) (*types.Session, error) {
	learner, err := ss.learnerRepo.GetByID(ctx, nil, learnerID)
	if err != nil {
		return nil, err
	}
	if learner.ObserverID != observerID {
		return nil, apperrors.ErrNotFound
	}
	return ss.start(ctx, learner, &observerID, gameSet)
}

func (ss *sessionService) start(ctx context.Context, learner *types.Learner, ownerID *uuid.UUID, gameSet string) (*types.Session, error) {
	if gameSet == "" {
		gameSet = "focus_tap"
	}

	now := time.Now()
	session := &types.Session{
		ID:        uuid.New(),
		LearnerID: learner.ID,
		GameSet:   gameSet,
		StartedAt: now,
		CreatedAt: now,
	}
	if _, err := ss.sessionRepo.Create(ctx, nil, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if err := ss.store.Create(session.ID, learner.ID, ownerID, gameSet); err != nil {
		return nil, fmt.Errorf("failed to open event buffer: %w", err)
	}
	ss.log.Info("Session started", "session_id", session.ID, "learner_id", learner.ID)
	return session, nil
}

func (ss *sessionService) AppendEvents(ctx context.Context, observerID, sessionID uuid.UUID, events []eventstore.TapEvent) (int, error) {
	if err := ss.authorizeSession(ctx, observerID, sessionID); err != nil {
		return 0, err
	}
	if err := ss.store.Append(sessionID, events); err != nil {
		return 0, err
	}
	return ss.store.Count(sessionID)
}

func (ss *sessionService) Complete(ctx context.Context, observerID, sessionID uuid.UUID) (*CompleteResult, error) {
	if err := ss.authorizeSession(ctx, observerID, sessionID); err != nil {
		return nil, err
	}
	return ss.complete(ctx, sessionID)
}

// complete drains the event buffer, derives a pattern when possible,
// and erases the raw events no matter what happened in between.
func (ss *sessionService) complete(ctx context.Context, sessionID uuid.UUID) (*CompleteResult, error) {
	snapshot, err := ss.store.Complete(sessionID)
	if err != nil {
		return nil, err
	}
	// Raw events must not survive this call, success or not.
	defer ss.store.Purge(sessionID)

	result := &CompleteResult{
		SessionID:   sessionID,
		TotalEvents: len(snapshot.Events),
	}

	features, err := ExtractFeatures(snapshot.Events)
	if err == nil {
		outcome := InferPattern(features)
		result.PatternDetected = outcome.PatternName

		record := &types.PatternSnapshot{
			ID:             uuid.New(),
			LearnerID:      snapshot.LearnerID,
			SessionID:      sessionID,
			PatternName:    outcome.PatternName,
			LearningImpact: outcome.LearningImpact,
			SupportFocus:   outcome.SupportFocus,
			Confidence:     outcome.Confidence,
			CreatedAt:      time.Now(),
		}
		if _, err := ss.patternRepo.Create(ctx, nil, record); err != nil {
			return nil, fmt.Errorf("failed to persist pattern snapshot: %w", err)
		}
	} else if !errors.Is(err, apperrors.ErrInsufficientData) {
		return nil, err
	}

	if err := ss.sessionRepo.MarkCompleted(ctx, nil, sessionID, time.Now(), result.TotalEvents); err != nil {
		ss.log.Warn("Failed to mark session completed", "session_id", sessionID, "error", err)
	}

	ss.log.Info("Session completed, raw events cleared", "session_id", sessionID, "total_events", result.TotalEvents, "pattern", result.PatternDetected)
	return result, nil
}

func (ss *sessionService) Status(ctx context.Context, observerID, sessionID uuid.UUID) (*types.Session, int, error) {
	session, err := ss.sessionRepo.GetByID(ctx, nil, sessionID)
	if err != nil {
		return nil, 0, err
	}
	learner, err := ss.learnerRepo.GetByID(ctx, nil, session.LearnerID)
	if err != nil {
		return nil, 0, err
	}
	if learner.ObserverID != observerID {
		return nil, 0, apperrors.ErrNotFound
	}

	buffered, err := ss.store.Count(sessionID)
	if errors.Is(err, apperrors.ErrNotFound) {
		// Completed or swept; the durable row carries the count.
		return session, session.EventCount, nil
	}
	if err != nil {
		return nil, 0, err
	}
	return session, buffered, nil
}

// StartByCode is the unauthenticated child-device entry point. The
// rate check runs before code validity so an attacker probing codes
// cannot distinguish valid from invalid ones once throttled.
func (ss *sessionService) StartByCode(ctx context.Context, code, gameSet string) (*types.Session, error) {
	learner, err := ss.resolveCodeLimited(ctx, code)
	if err != nil {
		return nil, err
	}
	return ss.start(ctx, learner, nil, gameSet)
}

func (ss *sessionService) AppendEventsByCode(ctx context.Context, code string, sessionID uuid.UUID, events []eventstore.TapEvent) error {
	learner, err := ss.resolveCodeLimited(ctx, code)
	if err != nil {
		return err
	}
	if err := ss.checkSessionLearner(ctx, sessionID, learner.ID); err != nil {
		return err
	}
	return ss.store.Append(sessionID, events)
}

// CompleteByCode completes a child-mode session. No analysis of any
// kind is returned to the device.
func (ss *sessionService) CompleteByCode(ctx context.Context, code string, sessionID uuid.UUID) error {
	learner, err := ss.resolveCodeLimited(ctx, code)
	if err != nil {
		return err
	}
	if err := ss.checkSessionLearner(ctx, sessionID, learner.ID); err != nil {
		return err
	}
	_, err = ss.complete(ctx, sessionID)
	return err
}

func (ss *sessionService) resolveCodeLimited(ctx context.Context, code string) (*types.Learner, error) {
	allowed, err := ss.limiter.Allow(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("rate limiter unavailable: %w", err)
	}
	if !allowed {
		return nil, apperrors.ErrRateLimited
	}
	return ss.learners.ResolveCode(ctx, code)
}

func (ss *sessionService) checkSessionLearner(ctx context.Context, sessionID, learnerID uuid.UUID) error {
	session, err := ss.sessionRepo.GetByID(ctx, nil, sessionID)
	if err != nil {
		return err
	}
	if session.LearnerID != learnerID {
		return apperrors.ErrNotFound
	}
	return nil
}

func (ss *sessionService) authorizeSession(ctx context.Context, observerID, sessionID uuid.UUID) error {
	session, err := ss.sessionRepo.GetByID(ctx, nil, sessionID)
	if err != nil {
		return err
	}
	learner, err := ss.learnerRepo.GetByID(ctx, nil, session.LearnerID)
	if err != nil {
		return err
	}
	if learner.ObserverID != observerID {
		return apperrors.ErrNotFound
	}
	return nil
}
