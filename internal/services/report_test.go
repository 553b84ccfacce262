package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/neuroplay/neuroplay-backend/internal/logger"
	apperrors "github.com/neuroplay/neuroplay-backend/internal/pkg/errors"
	"github.com/neuroplay/neuroplay-backend/internal/types"
)

type reportFixture struct {
	observerID  uuid.UUID
	learnerID   uuid.UUID
	sessionID   uuid.UUID
	learnerRepo *fakeLearnerRepo
	sessionRepo *fakeSessionRepo
	patternRepo *fakePatternRepo
	reportRepo  *fakeReportRepo
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	fx := &reportFixture{
		observerID:  uuid.New(),
		learnerID:   uuid.New(),
		sessionID:   uuid.New(),
		learnerRepo: &fakeLearnerRepo{learners: make(map[uuid.UUID]*types.Learner)},
		sessionRepo: newFakeSessionRepo(),
		patternRepo: &fakePatternRepo{},
		reportRepo:  newFakeReportRepo(),
	}
	fx.learnerRepo.learners[fx.learnerID] = &types.Learner{
		ID:         fx.learnerID,
		ObserverID: fx.observerID,
		Alias:      "Star",
	}
	fx.sessionRepo.sessions[fx.sessionID] = &types.Session{
		ID:        fx.sessionID,
		LearnerID: fx.learnerID,
		GameSet:   "focus_tap",
		StartedAt: time.Now(),
	}
	fx.patternRepo.snapshots = append(fx.patternRepo.snapshots, &types.PatternSnapshot{
		ID:             uuid.New(),
		LearnerID:      fx.learnerID,
		SessionID:      fx.sessionID,
		PatternName:    PatternSteadyFocus,
		LearningImpact: "Learner demonstrated consistent response patterns during the activity.",
		SupportFocus:   "Continue with current activities.",
		Confidence:     ConfidenceModerate,
		CreatedAt:      time.Now(),
	})
	return fx
}

func (fx *reportFixture) service(t *testing.T) ReportService {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return NewReportService(nil, log, fx.learnerRepo, fx.sessionRepo, fx.patternRepo, fx.reportRepo)
}

func TestSessionReportLanguageOnly(t *testing.T) {
	fx := newReportFixture(t)
	svc := fx.service(t)

	report, err := svc.SessionReport(context.Background(), fx.observerID, fx.sessionID)
	if err != nil {
		t.Fatalf("SessionReport failed: %v", err)
	}
	if len(report.Patterns) != 1 {
		t.Fatalf("patterns: got %d, want 1", len(report.Patterns))
	}
	p := report.Patterns[0]
	if p.PatternName != PatternSteadyFocus || p.LearningImpact == "" || p.SupportFocus == "" {
		t.Fatalf("pattern summary incomplete: %+v", p)
	}
	if report.Disclaimer != DisclaimerShort {
		t.Fatalf("disclaimer missing")
	}
}

func TestSessionReportOwnership(t *testing.T) {
	fx := newReportFixture(t)
	svc := fx.service(t)

	if _, err := svc.SessionReport(context.Background(), uuid.New(), fx.sessionID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("stranger session report: got %v, want ErrNotFound", err)
	}
}

func TestLearnerReport(t *testing.T) {
	fx := newReportFixture(t)
	svc := fx.service(t)

	report, err := svc.LearnerReport(context.Background(), fx.observerID, fx.learnerID)
	if err != nil {
		t.Fatalf("LearnerReport failed: %v", err)
	}
	if report.Alias != "Star" {
		t.Fatalf("alias: got %q", report.Alias)
	}
	if len(report.Patterns) != 1 {
		t.Fatalf("patterns: got %d, want 1", len(report.Patterns))
	}
}

func TestAIReportOwnership(t *testing.T) {
	fx := newReportFixture(t)
	svc := fx.service(t)

	report := &types.Report{
		ID:               uuid.New(),
		LearnerID:        fx.learnerID,
		Scope:            types.ReportScopeLearner,
		Audience:         types.AudienceParent,
		Content:          "Observational content. " + DisclaimerSentence,
		GenerationMethod: types.GenerationAI,
		ValidationStatus: types.ValidationApproved,
		CreatedAt:        time.Now(),
	}
	fx.reportRepo.reports[report.ID] = report

	got, err := svc.AIReport(context.Background(), fx.observerID, report.ID)
	if err != nil {
		t.Fatalf("AIReport failed: %v", err)
	}
	if got.Content != report.Content || got.ValidationStatus != types.ValidationApproved {
		t.Fatalf("report fields wrong: %+v", got)
	}
	if _, err := svc.AIReport(context.Background(), uuid.New(), report.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("stranger AIReport: got %v, want ErrNotFound", err)
	}
}

func TestLatestReportIDSkipsRejected(t *testing.T) {
	fx := newReportFixture(t)
	svc := fx.service(t)

	rejected := &types.Report{
		ID:               uuid.New(),
		LearnerID:        fx.learnerID,
		ValidationStatus: types.ValidationRejected,
		CreatedAt:        time.Now(),
	}
	approved := &types.Report{
		ID:               uuid.New(),
		LearnerID:        fx.learnerID,
		ValidationStatus: types.ValidationApproved,
		CreatedAt:        time.Now().Add(-time.Hour),
	}
	fx.reportRepo.reports[rejected.ID] = rejected
	fx.reportRepo.reports[approved.ID] = approved

	id, err := svc.LatestReportID(context.Background(), fx.observerID, fx.learnerID)
	if err != nil {
		t.Fatalf("LatestReportID failed: %v", err)
	}
	if id != approved.ID {
		t.Fatalf("latest servable: got %s, want approved %s", id, approved.ID)
	}
}

func TestLatestReportIDNoneServable(t *testing.T) {
	fx := newReportFixture(t)
	svc := fx.service(t)

	if _, err := svc.LatestReportID(context.Background(), fx.observerID, fx.learnerID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("no reports: got %v, want ErrNotFound", err)
	}
}
