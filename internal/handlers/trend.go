package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/neuroplay/neuroplay-backend/internal/services"
	"github.com/neuroplay/neuroplay-backend/internal/types"
)

type TrendHandler struct {
	learnerService services.LearnerService
	trendService   services.TrendService
}

func NewTrendHandler(learnerService services.LearnerService, trendService services.TrendService) *TrendHandler {
	return &TrendHandler{learnerService: learnerService, trendService: trendService}
}

// trendView exposes language fields only. The frequency ratio and
// session counts behind the trend label stay internal to the
// aggregator.
func trendView(t *types.TrendSummary) gin.H {
	return gin.H{
		"pattern_name": t.PatternName,
		"trend_type":   t.TrendType,
	}
}

func (th *TrendHandler) List(c *gin.Context) {
	observerID, ok := observerFrom(c)
	if !ok {
		return
	}
	learnerID, ok := uuidParam(c, "learner_id")
	if !ok {
		return
	}
	if _, err := th.learnerService.Get(c.Request.Context(), observerID, learnerID); err != nil {
		RespondServiceError(c, err)
		return
	}
	trends, err := th.trendService.ListForLearner(c.Request.Context(), learnerID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	views := make([]gin.H, 0, len(trends))
	for _, t := range trends {
		views = append(views, trendView(t))
	}
	payload := gin.H{"learner_id": learnerID, "trends": views}
	if len(views) == 0 {
		payload["message"] = "Trends appear after at least 3 completed sessions."
	}
	RespondOK(c, payload)
}

func (th *TrendHandler) Recompute(c *gin.Context) {
	observerID, ok := observerFrom(c)
	if !ok {
		return
	}
	learnerID, ok := uuidParam(c, "learner_id")
	if !ok {
		return
	}
	if _, err := th.learnerService.Get(c.Request.Context(), observerID, learnerID); err != nil {
		RespondServiceError(c, err)
		return
	}
	trends, err := th.trendService.RecomputeForLearner(c.Request.Context(), learnerID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	views := make([]gin.H, 0, len(trends))
	for _, t := range trends {
		views = append(views, trendView(t))
	}
	RespondOK(c, gin.H{"learner_id": learnerID, "trends": views})
}
