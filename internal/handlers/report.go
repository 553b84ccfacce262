package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/neuroplay/neuroplay-backend/internal/services"
)

type ReportHandler struct {
	reportService    services.ReportService
	generatorService services.GeneratorService
}

func NewReportHandler(reportService services.ReportService, generatorService services.GeneratorService) *ReportHandler {
	return &ReportHandler{reportService: reportService, generatorService: generatorService}
}

func (rh *ReportHandler) Generate(c *gin.Context) {
	observerID, ok := observerFrom(c)
	if !ok {
		return
	}
	var req struct {
		LearnerID string  `json:"learner_id"`
		Scope     string  `json:"scope"`
		SessionID *string `json:"session_id"`
		Audience  string  `json:"audience"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	learnerID, ok := uuidFromString(c, req.LearnerID)
	if !ok {
		return
	}
	input := services.GenerateReportInput{
		LearnerID: learnerID,
		Scope:     req.Scope,
		Audience:  req.Audience,
	}
	if req.SessionID != nil && *req.SessionID != "" {
		sessionID, ok := uuidFromString(c, *req.SessionID)
		if !ok {
			return
		}
		input.SessionID = &sessionID
	}
	report, cached, err := rh.generatorService.GenerateReport(c.Request.Context(), observerID, input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"report_id":         report.ID,
		"content":           report.Content,
		"validation_status": report.ValidationStatus,
		"generation_method": report.GenerationMethod,
		"cached_approved":   cached,
	})
}

func (rh *ReportHandler) SessionReport(c *gin.Context) {
	observerID, ok := observerFrom(c)
	if !ok {
		return
	}
	sessionID, ok := uuidParam(c, "session_id")
	if !ok {
		return
	}
	report, err := rh.reportService.SessionReport(c.Request.Context(), observerID, sessionID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, report)
}

func (rh *ReportHandler) LearnerReport(c *gin.Context) {
	observerID, ok := observerFrom(c)
	if !ok {
		return
	}
	learnerID, ok := uuidParam(c, "learner_id")
	if !ok {
		return
	}
	report, err := rh.reportService.LearnerReport(c.Request.Context(), observerID, learnerID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, report)
}

func (rh *ReportHandler) GetAIReport(c *gin.Context) {
	observerID, ok := observerFrom(c)
	if !ok {
		return
	}
	reportID, ok := uuidParam(c, "report_id")
	if !ok {
		return
	}
	report, err := rh.reportService.AIReport(c.Request.Context(), observerID, reportID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, report)
}

func (rh *ReportHandler) LatestReport(c *gin.Context) {
	observerID, ok := observerFrom(c)
	if !ok {
		return
	}
	learnerID, ok := uuidParam(c, "learner_id")
	if !ok {
		return
	}
	reportID, err := rh.reportService.LatestReportID(c.Request.Context(), observerID, learnerID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"report_id": reportID})
}

func uuidFromString(c *gin.Context, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return uuid.Nil, false
	}
	return id, true
}
