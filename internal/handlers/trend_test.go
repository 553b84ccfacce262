package handlers

import (
	"testing"

	"github.com/google/uuid"

	"github.com/neuroplay/neuroplay-backend/internal/types"
)

func TestTrendViewLanguageOnly(t *testing.T) {
	view := trendView(&types.TrendSummary{
		ID:           uuid.New(),
		LearnerID:    uuid.New(),
		PatternName:  "Steady focus",
		TrendType:    types.TrendStable,
		SessionCount: 6,
	})

	if view["pattern_name"] != "Steady focus" || view["trend_type"] != types.TrendStable {
		t.Fatalf("language fields missing: %v", view)
	}
	for key := range view {
		if key != "pattern_name" && key != "trend_type" {
			t.Fatalf("unexpected field %q in trend view, only language fields may be exposed", key)
		}
	}
}
