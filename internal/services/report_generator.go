package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/neuroplay/neuroplay-backend/internal/llm"
	"github.com/neuroplay/neuroplay-backend/internal/logger"
	apperrors "github.com/neuroplay/neuroplay-backend/internal/pkg/errors"
	"github.com/neuroplay/neuroplay-backend/internal/repos"
	"github.com/neuroplay/neuroplay-backend/internal/types"
)

const generatorSystemPrompt = `You are an educational reporting assistant.
Write calm, supportive, non-diagnostic summaries of learning patterns.
DO NOT use diagnostic language, numbers, or medical terms.
End with: "` + DisclaimerSentence + `"`

type GenerateReportInput struct {
	LearnerID uuid.UUID
	Scope     string
	SessionID *uuid.UUID
	Audience  string
}

type GeneratorService interface {
	GenerateReport(ctx context.Context, observerID uuid.UUID, input GenerateReportInput) (*types.Report, bool, error)
}

type generatorService struct {
	db          *gorm.DB
	log         *logger.Logger
	learnerRepo repos.LearnerRepo
	patternRepo repos.PatternSnapshotRepo
	trendRepo   repos.TrendSummaryRepo
	reportRepo  repos.ReportRepo
	client      llm.Client
	validator   ValidatorService
}

// NewGeneratorService builds the narrative report generator. A nil
// client forces the deterministic template path for every report.
func NewGeneratorService(db *gorm.DB, log *logger.Logger, learnerRepo repos.LearnerRepo, patternRepo repos.PatternSnapshotRepo, trendRepo repos.TrendSummaryRepo, reportRepo repos.ReportRepo, client llm.Client, validator ValidatorService) GeneratorService {
	serviceLog := log.With("service", "GeneratorService")
	return &generatorService{
		db:          db,
		log:         serviceLog,
		learnerRepo: learnerRepo,
		patternRepo: patternRepo,
		trendRepo:   trendRepo,
		reportRepo:  reportRepo,
		client:      client,
		validator:   validator,
	}
}

// GenerateReport produces a persisted narrative report for the given
// scope. The returned bool reports whether a previously approved or
// rewritten report was reused instead of generating a new one.
func (gs *generatorService) GenerateReport(ctx context.Context, observerID uuid.UUID, input GenerateReportInput) (*types.Report, bool, error) {
	if input.Scope != types.ReportScopeSession && input.Scope != types.ReportScopeLearner {
		return nil, false, fmt.Errorf("%w: scope must be session or learner", apperrors.ErrInvalidArgument)
	}
	if input.Audience != types.AudienceParent && input.Audience != types.AudienceTeacher {
		return nil, false, fmt.Errorf("%w: audience must be parent or teacher", apperrors.ErrInvalidArgument)
	}
	if input.Scope == types.ReportScopeSession && input.SessionID == nil {
		return nil, false, fmt.Errorf("%w: session id required for session scope", apperrors.ErrInvalidArgument)
	}

	learner, err := gs.learnerRepo.GetByID(ctx, nil, input.LearnerID)
	if err != nil {
		return nil, false, err
	}
	if learner.ObserverID != observerID {
		return nil, false, apperrors.ErrNotFound
	}

	// Reuse a report that already passed governance for the same
	// parameters; no second model call, no second review.
	if existing, err := gs.reportRepo.FindLatestByScope(ctx, nil, input.LearnerID, input.Scope, input.Audience, input.SessionID); err == nil {
		if existing.ValidationStatus == types.ValidationApproved || existing.ValidationStatus == types.ValidationRewritten {
			return existing, true, nil
		}
	}

	patterns, err := gs.fetchPatterns(ctx, input)
	if err != nil {
		return nil, false, err
	}
	if len(patterns) == 0 {
		return nil, false, fmt.Errorf("%w: no patterns recorded for this scope", apperrors.ErrInsufficientData)
	}
	trends, err := gs.trendRepo.ListByLearnerID(ctx, nil, input.LearnerID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load trends: %w", err)
	}

	content, method := gs.produceContent(ctx, patterns, trends, input.Audience)

	// Safety is checked before the disclaimer is appended; the
	// disclaimer itself never influences the verdict.
	safe, violations := CheckSafety(content)

	status := types.ValidationPending
	if method == types.GenerationTemplate {
		// Template output is safe by construction.
		status = types.ValidationApproved
	} else if !safe {
		status = types.ValidationRejected
		gs.log.Warn("Generated report failed safety filter", "learner_id", input.LearnerID, "violations", violations)
	}

	content = EnsureDisclaimer(content)

	var violationsJSON []byte
	if !safe {
		violationsJSON, _ = json.Marshal(violations)
	}

	now := time.Now()
	report := &types.Report{
		ID:               uuid.New(),
		LearnerID:        input.LearnerID,
		Scope:            input.Scope,
		SourceSessionID:  input.SessionID,
		Audience:         input.Audience,
		Content:          content,
		GenerationMethod: method,
		ValidationStatus: status,
		Violations:       violationsJSON,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if _, err := gs.reportRepo.Create(ctx, nil, report); err != nil {
		return nil, false, fmt.Errorf("failed to persist report: %w", err)
	}

	// Second-pass governance review for model output that passed the
	// first filter. Review failures leave the report pending rather
	// than failing the whole operation.
	if method == types.GenerationAI && safe {
		finalStatus, err := gs.validator.ValidateReport(ctx, report.ID)
		if err != nil {
			gs.log.Warn("Report validation failed, leaving report pending", "report_id", report.ID, "error", err)
		} else {
			updated, err := gs.reportRepo.GetByID(ctx, nil, report.ID)
			if err == nil {
				report = updated
			} else {
				report.ValidationStatus = finalStatus
			}
		}
	}

	return report, false, nil
}

func (gs *generatorService) fetchPatterns(ctx context.Context, input GenerateReportInput) ([]*types.PatternSnapshot, error) {
	if input.Scope == types.ReportScopeSession {
		patterns, err := gs.patternRepo.ListBySessionID(ctx, nil, *input.SessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load session patterns: %w", err)
		}
		// A session snapshot must belong to the requested learner.
		filtered := patterns[:0]
		for _, p := range patterns {
			if p.LearnerID == input.LearnerID {
				filtered = append(filtered, p)
			}
		}
		return filtered, nil
	}
	patterns, err := gs.patternRepo.ListByLearnerID(ctx, nil, input.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load learner patterns: %w", err)
	}
	return patterns, nil
}

// produceContent calls the model when configured and falls back to the
// deterministic template on any failure. The operation never fails
// outright because of the model.
func (gs *generatorService) produceContent(ctx context.Context, patterns []*types.PatternSnapshot, trends []*types.TrendSummary, audience string) (string, string) {
	if gs.client == nil {
		return renderTemplateReport(patterns, trends, audience), types.GenerationTemplate
	}

	content, err := gs.client.Generate(ctx, generatorSystemPrompt, buildSafeInput(patterns, trends, audience))
	if err != nil {
		gs.log.Warn("Model generation failed, using template fallback", "kind", llm.KindOf(err), "error", err)
		return renderTemplateReport(patterns, trends, audience), types.GenerationTemplate
	}
	return content, types.GenerationAI
}

// buildSafeInput assembles the model prompt. It contains only the
// audience tag, pattern language fields, and trend labels. Raw events,
// numeric features, confidence tiers, and game identifiers must never
// appear here.
func buildSafeInput(patterns []*types.PatternSnapshot, trends []*types.TrendSummary, audience string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Audience: %s\n\n", audience)

	b.WriteString("Observed learning patterns:\n")
	for _, p := range patterns {
		fmt.Fprintf(&b, "- Pattern: %s\n", p.PatternName)
		fmt.Fprintf(&b, "  Learning impact: %s\n", p.LearningImpact)
		fmt.Fprintf(&b, "  Support focus: %s\n\n", p.SupportFocus)
	}

	if len(trends) > 0 {
		b.WriteString("Trend observations:\n")
		for _, t := range trends {
			fmt.Fprintf(&b, "- %s: %s\n", t.PatternName, t.TrendType)
		}
		b.WriteString("\n")
	}

	b.WriteString("Please generate a single, cohesive narrative report.")
	return b.String()
}

// renderTemplateReport is the deterministic no-model fallback. Its
// output is safe by construction and always carries the disclaimer.
func renderTemplateReport(patterns []*types.PatternSnapshot, trends []*types.TrendSummary, audience string) string {
	var lines []string

	if audience == types.AudienceParent {
		lines = append(lines, "This report describes learning patterns observed during activities with this learner.")
	} else {
		lines = append(lines, "This report summarizes learning patterns observed across activities with this learner.")
	}
	lines = append(lines, "")

	if len(patterns) > 0 {
		lines = append(lines, "Observed Patterns:", "")
		for _, p := range patterns {
			lines = append(lines, p.PatternName)
			if p.LearningImpact != "" {
				lines = append(lines, "  "+p.LearningImpact)
			}
			if p.SupportFocus != "" {
				lines = append(lines, "  "+p.SupportFocus)
			}
			lines = append(lines, "")
		}
	}

	if len(trends) > 0 {
		lines = append(lines, "Patterns Over Time:", "")
		for _, t := range trends {
			var desc string
			switch t.TrendType {
			case types.TrendStable:
				desc = "This pattern has appeared consistently across recent activities, suggesting a stable learning rhythm."
			case types.TrendImproving:
				desc = "Across recent activities, this pattern is appearing less strongly, suggesting growing ease with the task demands."
			case types.TrendFluctuating:
				desc = "This pattern has varied across activities, which is common as learners adapt to different tasks."
			default:
				desc = "This pattern has appeared across recent activities."
			}
			lines = append(lines, fmt.Sprintf("%s: %s", t.PatternName, desc), "")
		}
	}

	lines = append(lines, "These observations are part of the natural learning process and reflect the learner's developing skills.", "")
	lines = append(lines, DisclaimerSentence)
	return strings.Join(lines, "\n")
}
