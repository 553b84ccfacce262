package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/neuroplay/neuroplay-backend/internal/db"
	"github.com/neuroplay/neuroplay-backend/internal/services"
)

type HealthHandler struct {
	dbService       *db.Service
	modelConfigured bool
}

func NewHealthHandler(dbService *db.Service, modelConfigured bool) *HealthHandler {
	return &HealthHandler{dbService: dbService, modelConfigured: modelConfigured}
}

func (hh *HealthHandler) HealthCheck(c *gin.Context) {
	dbStatus := "ok"
	sqlDB, err := hh.dbService.DB().DB()
	if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		dbStatus = "unavailable"
	}

	status := http.StatusOK
	if dbStatus != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"status":           dbStatus,
		"database":         dbStatus,
		"model_configured": hh.modelConfigured,
		"disclaimer":       services.DisclaimerShort,
	})
}

// Guardrails reports that the lexical safety layer is loaded and
// active. It exposes counts only, never the vocabulary itself.
func (hh *HealthHandler) Guardrails(c *gin.Context) {
	RespondOK(c, gin.H{
		"forbidden_terms_loaded": services.ForbiddenTermCount(),
		"disclaimer_active":      true,
		"disclaimer":             services.DisclaimerSentence,
	})
}
