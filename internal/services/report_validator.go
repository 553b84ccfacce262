package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/neuroplay/neuroplay-backend/internal/llm"
	"github.com/neuroplay/neuroplay-backend/internal/logger"
	"github.com/neuroplay/neuroplay-backend/internal/repos"
	"github.com/neuroplay/neuroplay-backend/internal/types"
)

const validatorSystemPrompt = `You are a language validator for educational reports.
Review reports and ensure they comply with non-diagnostic language rules.
You are a governance layer, not an intelligence layer: never add insights
or infer new patterns, only check and correct language.
Return STATUS: APPROVED, STATUS: REWRITTEN, or STATUS: REJECTED.`

// safeFallbackReport replaces content the validator rejects, so a
// user-facing report never ends in a rejected state when a safe
// substitute exists.
const safeFallbackReport = `The learner has engaged in learning activities, and patterns of engagement have been observed. These patterns are part of the natural learning process and reflect the learner's developing skills.

Supportive approaches that may help include providing structured routines and allowing for natural breaks during activities. These approaches can help maintain engagement while respecting the learner's natural rhythm.

Observational insights only. This is not a diagnostic assessment.`

type ValidatorService interface {
	ValidateReport(ctx context.Context, reportID uuid.UUID) (string, error)
}

type validatorService struct {
	db         *gorm.DB
	log        *logger.Logger
	reportRepo repos.ReportRepo
	client     llm.Client
	corpus     *PolicyCorpus
}

// NewValidatorService builds the second-pass report reviewer. A nil
// client degrades to filter-only validation.
func NewValidatorService(db *gorm.DB, log *logger.Logger, reportRepo repos.ReportRepo, client llm.Client, corpus *PolicyCorpus) ValidatorService {
	serviceLog := log.With("service", "ValidatorService")
	return &validatorService{
		db:         db,
		log:        serviceLog,
		reportRepo: reportRepo,
		client:     client,
		corpus:     corpus,
	}
}

// ValidateReport reviews a stored report against the policy corpus and
// updates its validation status, and possibly its content, in place.
func (vs *validatorService) ValidateReport(ctx context.Context, reportID uuid.UUID) (string, error) {
	report, err := vs.reportRepo.GetByID(ctx, nil, reportID)
	if err != nil {
		return "", err
	}
	if report.Content == "" {
		return "", fmt.Errorf("report %s has no content to validate", reportID)
	}

	if vs.client == nil {
		return vs.filterOnly(ctx, report)
	}

	response, err := vs.client.Generate(ctx, validatorSystemPrompt, vs.corpus.ReviewPrompt(report.Content))
	if err != nil {
		vs.log.Warn("Validator model call failed, degrading to filter-only", "report_id", reportID, "error", err)
		return vs.filterOnly(ctx, report)
	}

	status, newContent := parseVerdict(response)

	content := report.Content
	var violationsJSON []byte
	if newContent != "" {
		// Model rewrites are untrusted output and pass the same lexical
		// filter as generated content. An unsafe rewrite is replaced by
		// the fixed safe template, keeping the rewritten status.
		if safe, violations := CheckSafety(newContent); !safe {
			vs.log.Warn("Model rewrite failed safety filter, substituting safe template", "report_id", reportID, "violations", violations)
			violationsJSON, _ = json.Marshal(violations)
			newContent = safeFallbackReport
		}
		content = EnsureDisclaimer(newContent)
	}
	if err := vs.reportRepo.UpdateValidation(ctx, nil, reportID, content, status, violationsJSON); err != nil {
		return "", fmt.Errorf("failed to persist validation result: %w", err)
	}
	vs.log.Info("Report validated", "report_id", reportID, "status", status)
	return status, nil
}

// filterOnly is the degraded mode when the model is unavailable: the
// lexical filter alone decides, and no rewrite is possible.
func (vs *validatorService) filterOnly(ctx context.Context, report *types.Report) (string, error) {
	safe, violations := CheckSafety(report.Content)
	status := types.ValidationApproved
	var violationsJSON []byte
	if !safe {
		status = types.ValidationRejected
		violationsJSON, _ = json.Marshal(violations)
	}
	if err := vs.reportRepo.UpdateValidation(ctx, nil, report.ID, report.Content, status, violationsJSON); err != nil {
		return "", fmt.Errorf("failed to persist validation result: %w", err)
	}
	return status, nil
}

// parseVerdict extracts the validator's verdict from free-form model
// output. The marker search is strict; a response with no recognizable
// marker is approved rather than blocked, a deliberate fail-open
// availability choice. A rejection is converted into the fixed safe
// template and reported as rewritten.
func parseVerdict(response string) (status, newContent string) {
	lower := strings.ToLower(response)

	switch {
	case strings.Contains(lower, "status: approved"):
		return types.ValidationApproved, ""
	case strings.Contains(lower, "status: rewritten"):
		idx := strings.Index(lower, "status: rewritten")
		rewritten := strings.TrimSpace(response[idx+len("status: rewritten"):])
		if cut := strings.Index(strings.ToLower(rewritten), "status:"); cut >= 0 {
			rewritten = strings.TrimSpace(rewritten[:cut])
		}
		if rewritten == "" {
			return types.ValidationApproved, ""
		}
		return types.ValidationRewritten, rewritten
	case strings.Contains(lower, "status: rejected"):
		return types.ValidationRewritten, safeFallbackReport
	default:
		return types.ValidationApproved, ""
	}
}
