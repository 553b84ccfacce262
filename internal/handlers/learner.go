package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/neuroplay/neuroplay-backend/internal/requestdata"
	"github.com/neuroplay/neuroplay-backend/internal/services"
	"github.com/neuroplay/neuroplay-backend/internal/types"
)

type LearnerHandler struct {
	learnerService services.LearnerService
}

func NewLearnerHandler(learnerService services.LearnerService) *LearnerHandler {
	return &LearnerHandler{learnerService: learnerService}
}

// learnerView is the observer-facing shape. The learner code is only
// surfaced here, to the owning observer; the model itself never
// serializes it.
func learnerView(l *types.Learner) gin.H {
	return gin.H{
		"learner_id":   l.ID,
		"alias":        l.Alias,
		"learner_code": l.LearnerCode,
		"created_at":   l.CreatedAt,
	}
}

func (lh *LearnerHandler) Create(c *gin.Context) {
	observerID, ok := observerFrom(c)
	if !ok {
		return
	}
	var req struct {
		Alias string `json:"alias"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	learner, err := lh.learnerService.Create(c.Request.Context(), observerID, req.Alias)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, learnerView(learner))
}

func (lh *LearnerHandler) List(c *gin.Context) {
	observerID, ok := observerFrom(c)
	if !ok {
		return
	}
	learners, err := lh.learnerService.List(c.Request.Context(), observerID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	views := make([]gin.H, 0, len(learners))
	for _, l := range learners {
		views = append(views, learnerView(l))
	}
	RespondOK(c, gin.H{"learners": views})
}

func (lh *LearnerHandler) Get(c *gin.Context) {
	observerID, ok := observerFrom(c)
	if !ok {
		return
	}
	learnerID, ok := uuidParam(c, "learner_id")
	if !ok {
		return
	}
	learner, err := lh.learnerService.Get(c.Request.Context(), observerID, learnerID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, learnerView(learner))
}

func (lh *LearnerHandler) Rename(c *gin.Context) {
	observerID, ok := observerFrom(c)
	if !ok {
		return
	}
	learnerID, ok := uuidParam(c, "learner_id")
	if !ok {
		return
	}
	var req struct {
		Alias string `json:"alias"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	learner, err := lh.learnerService.Rename(c.Request.Context(), observerID, learnerID, req.Alias)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, learnerView(learner))
}

func (lh *LearnerHandler) Delete(c *gin.Context) {
	observerID, ok := observerFrom(c)
	if !ok {
		return
	}
	learnerID, ok := uuidParam(c, "learner_id")
	if !ok {
		return
	}
	if err := lh.learnerService.Delete(c.Request.Context(), observerID, learnerID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "learner deleted"})
}

func observerFrom(c *gin.Context) (uuid.UUID, bool) {
	observerID, ok := requestdata.ObserverID(c.Request.Context())
	if !ok || observerID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return uuid.Nil, false
	}
	return observerID, true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return uuid.Nil, false
	}
	return id, true
}
