package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/neuroplay/neuroplay-backend/internal/eventstore"
	"github.com/neuroplay/neuroplay-backend/internal/services"
)

type SessionHandler struct {
	sessionService services.SessionService
}

func NewSessionHandler(sessionService services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

func (sh *SessionHandler) Start(c *gin.Context) {
	observerID, ok := observerFrom(c)
	if !ok {
		return
	}
	var req struct {
		LearnerID string `json:"learner_id"`
		GameSet   string `json:"game_set"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	learnerID, ok := uuidFromString(c, req.LearnerID)
	if !ok {
		return
	}
	session, err := sh.sessionService.Start(c.Request.Context(), observerID, learnerID, req.GameSet)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{
		"session_id": session.ID,
		"learner_id": session.LearnerID,
		"game_set":   session.GameSet,
		"started_at": session.StartedAt,
	})
}

func (sh *SessionHandler) AppendEvents(c *gin.Context) {
	observerID, ok := observerFrom(c)
	if !ok {
		return
	}
	sessionID, ok := uuidParam(c, "session_id")
	if !ok {
		return
	}
	var req struct {
		Events []eventstore.TapEvent `json:"events"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	buffered, err := sh.sessionService.AppendEvents(c.Request.Context(), observerID, sessionID, req.Events)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"session_id": sessionID, "buffered_events": buffered})
}

func (sh *SessionHandler) Complete(c *gin.Context) {
	observerID, ok := observerFrom(c)
	if !ok {
		return
	}
	sessionID, ok := uuidParam(c, "session_id")
	if !ok {
		return
	}
	result, err := sh.sessionService.Complete(c.Request.Context(), observerID, sessionID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"session_id":       result.SessionID,
		"total_events":     result.TotalEvents,
		"pattern_detected": result.PatternDetected,
	})
}

func (sh *SessionHandler) Status(c *gin.Context) {
	observerID, ok := observerFrom(c)
	if !ok {
		return
	}
	sessionID, ok := uuidParam(c, "session_id")
	if !ok {
		return
	}
	session, buffered, err := sh.sessionService.Status(c.Request.Context(), observerID, sessionID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"session_id":   session.ID,
		"learner_id":   session.LearnerID,
		"game_set":     session.GameSet,
		"started_at":   session.StartedAt,
		"completed_at": session.CompletedAt,
		"event_count":  buffered,
	})
}

// Child-mode endpoints. No authentication; identity is the learner
// code, throttled inside the service. Responses never include any
// analysis output.

func (sh *SessionHandler) ChildStart(c *gin.Context) {
	var req struct {
		Code    string `json:"code"`
		GameSet string `json:"game_set"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	session, err := sh.sessionService.StartByCode(c.Request.Context(), req.Code, req.GameSet)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{
		"session_id": session.ID,
		"game_set":   session.GameSet,
		"started_at": session.StartedAt,
	})
}

func (sh *SessionHandler) ChildAppendEvents(c *gin.Context) {
	sessionID, ok := uuidParam(c, "session_id")
	if !ok {
		return
	}
	var req struct {
		Code   string                `json:"code"`
		Events []eventstore.TapEvent `json:"events"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := sh.sessionService.AppendEventsByCode(c.Request.Context(), req.Code, sessionID, req.Events); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"recorded": true})
}

func (sh *SessionHandler) ChildComplete(c *gin.Context) {
	sessionID, ok := uuidParam(c, "session_id")
	if !ok {
		return
	}
	var req struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := sh.sessionService.CompleteByCode(c.Request.Context(), req.Code, sessionID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "session complete"})
}
