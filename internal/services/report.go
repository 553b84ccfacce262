package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/neuroplay/neuroplay-backend/internal/logger"
	apperrors "github.com/neuroplay/neuroplay-backend/internal/pkg/errors"
	"github.com/neuroplay/neuroplay-backend/internal/repos"
	"github.com/neuroplay/neuroplay-backend/internal/types"
)

// PatternSummary is the language-only view of a pattern snapshot
// served to clients. No confidence tier, no timestamps, no metrics.
type PatternSummary struct {
	PatternName    string `json:"pattern_name"`
	LearningImpact string `json:"learning_impact"`
	SupportFocus   string `json:"support_focus"`
}

type SessionReport struct {
	SessionID  uuid.UUID        `json:"session_id"`
	Patterns   []PatternSummary `json:"patterns"`
	Disclaimer string           `json:"disclaimer"`
}

type LearnerReport struct {
	LearnerID  uuid.UUID        `json:"learner_id"`
	Alias      string           `json:"alias"`
	Patterns   []PatternSummary `json:"patterns"`
	Disclaimer string           `json:"disclaimer"`
}

type AIReport struct {
	ReportID         uuid.UUID `json:"report_id"`
	Content          string    `json:"content"`
	ValidationStatus string    `json:"validation_status"`
	GenerationMethod string    `json:"generation_method"`
	Disclaimer       string    `json:"disclaimer"`
}

type ReportService interface {
	SessionReport(ctx context.Context, observerID, sessionID uuid.UUID) (*SessionReport, error)
	LearnerReport(ctx context.Context, observerID, learnerID uuid.UUID) (*LearnerReport, error)
	AIReport(ctx context.Context, observerID, reportID uuid.UUID) (*AIReport, error)
	LatestReportID(ctx context.Context, observerID, learnerID uuid.UUID) (uuid.UUID, error)
}

type reportService struct {
	db          *gorm.DB
	log         *logger.Logger
	learnerRepo repos.LearnerRepo
	sessionRepo repos.SessionRepo
	patternRepo repos.PatternSnapshotRepo
	reportRepo  repos.ReportRepo
}

func NewReportService(db *gorm.DB, log *logger.Logger, learnerRepo repos.LearnerRepo, sessionRepo repos.SessionRepo, patternRepo repos.PatternSnapshotRepo, reportRepo repos.ReportRepo) ReportService {
	serviceLog := log.With("service", "ReportService")
	return &reportService{
		db:          db,
		log:         serviceLog,
		learnerRepo: learnerRepo,
		sessionRepo: sessionRepo,
		patternRepo: patternRepo,
		reportRepo:  reportRepo,
	}
}

func (rs *reportService) SessionReport(ctx context.Context, observerID, sessionID uuid.UUID) (*SessionReport, error) {
	session, err := rs.sessionRepo.GetByID(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := rs.ownedLearner(ctx, observerID, session.LearnerID); err != nil {
		return nil, err
	}

	snapshots, err := rs.patternRepo.ListBySessionID(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}
	return &SessionReport{
		SessionID:  sessionID,
		Patterns:   summarize(snapshots),
		Disclaimer: DisclaimerShort,
	}, nil
}

func (rs *reportService) LearnerReport(ctx context.Context, observerID, learnerID uuid.UUID) (*LearnerReport, error) {
	learner, err := rs.ownedLearner(ctx, observerID, learnerID)
	if err != nil {
		return nil, err
	}
	snapshots, err := rs.patternRepo.ListByLearnerID(ctx, nil, learnerID)
	if err != nil {
		return nil, err
	}
	return &LearnerReport{
		LearnerID:  learnerID,
		Alias:      learner.Alias,
		Patterns:   summarize(snapshots),
		Disclaimer: DisclaimerShort,
	}, nil
}

func (rs *reportService) AIReport(ctx context.Context, observerID, reportID uuid.UUID) (*AIReport, error) {
	report, err := rs.reportRepo.GetByID(ctx, nil, reportID)
	if err != nil {
		return nil, err
	}
	if _, err := rs.ownedLearner(ctx, observerID, report.LearnerID); err != nil {
		return nil, err
	}
	return &AIReport{
		ReportID:         report.ID,
		Content:          report.Content,
		ValidationStatus: report.ValidationStatus,
		GenerationMethod: report.GenerationMethod,
		Disclaimer:       DisclaimerShort,
	}, nil
}

func (rs *reportService) LatestReportID(ctx context.Context, observerID, learnerID uuid.UUID) (uuid.UUID, error) {
	if _, err := rs.ownedLearner(ctx, observerID, learnerID); err != nil {
		return uuid.Nil, err
	}
	report, err := rs.reportRepo.FindLatestServable(ctx, nil, learnerID)
	if err != nil {
		return uuid.Nil, err
	}
	return report.ID, nil
}

func (rs *reportService) ownedLearner(ctx context.Context, observerID, learnerID uuid.UUID) (*types.Learner, error) {
	learner, err := rs.learnerRepo.GetByID(ctx, nil, learnerID)
	if err != nil {
		return nil, err
	}
	if learner.ObserverID != observerID {
		return nil, apperrors.ErrNotFound
	}
	return learner, nil
}

func summarize(snapshots []*types.PatternSnapshot) []PatternSummary {
	out := make([]PatternSummary, 0, len(snapshots))
	for _, s := range snapshots {
		out = append(out, PatternSummary{
			PatternName:    s.PatternName,
			LearningImpact: s.LearningImpact,
			SupportFocus:   s.SupportFocus,
		})
	}
	return out
}
