package services

import (
	"testing"

	"github.com/neuroplay/neuroplay-backend/internal/eventstore"
)

func endToEndEvents() []eventstore.TapEvent {
	return []eventstore.TapEvent{
		{Timestamp: 120, AppearedAt: 50, Hit: true},
		{Timestamp: 260, AppearedAt: 50, Hit: true},
		{Timestamp: 500, AppearedAt: 50, Hit: true},
	}
}

func TestInferPatternPriorityOrder(t *testing.T) {
	tests := []struct {
		name           string
		features       FeatureSummary
		wantPattern    string
		wantConfidence string
	}{
		{
			name:           "high variability wins",
			features:       FeatureSummary{MeanRT: 100, StdevRT: 50, MissRate: 0, TotalEvents: 5},
			wantPattern:    PatternVariableFocus,
			wantConfidence: ConfidenceLow,
		},
		{
			name:           "high variability beats high miss rate",
			features:       FeatureSummary{MeanRT: 100, StdevRT: 50, MissRate: 0.9, TotalEvents: 12},
			wantPattern:    PatternVariableFocus,
			wantConfidence: ConfidenceModerate,
		},
		{
			name:           "high miss rate without variability",
			features:       FeatureSummary{MeanRT: 100, StdevRT: 10, MissRate: 0.5, TotalEvents: 4},
			wantPattern:    PatternTargetTracking,
			wantConfidence: ConfidenceLow,
		},
		{
			name:           "high miss rate with many events",
			features:       FeatureSummary{MeanRT: 100, StdevRT: 10, MissRate: 0.31, TotalEvents: 10},
			wantPattern:    PatternTargetTracking,
			wantConfidence: ConfidenceModerate,
		},
		{
			name:           "steady focus default",
			features:       FeatureSummary{MeanRT: 100, StdevRT: 10, MissRate: 0.1, TotalEvents: 3},
			wantPattern:    PatternSteadyFocus,
			wantConfidence: ConfidenceModerate,
		},
		{
			name:           "steady focus confidence fixed even with few events",
			features:       FeatureSummary{MeanRT: 200, StdevRT: 0, MissRate: 0, TotalEvents: 3},
			wantPattern:    PatternSteadyFocus,
			wantConfidence: ConfidenceModerate,
		},
		{
			name:           "exact threshold ratio is not variable",
			features:       FeatureSummary{MeanRT: 100, StdevRT: 40, MissRate: 0, TotalEvents: 5},
			wantPattern:    PatternSteadyFocus,
			wantConfidence: ConfidenceModerate,
		},
		{
			name:           "exact miss threshold is not tracking",
			features:       FeatureSummary{MeanRT: 100, StdevRT: 10, MissRate: 0.3, TotalEvents: 5},
			wantPattern:    PatternSteadyFocus,
			wantConfidence: ConfidenceModerate,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferPattern(&tt.features)
			if got.PatternName != tt.wantPattern {
				t.Fatalf("pattern: got %q, want %q", got.PatternName, tt.wantPattern)
			}
			if got.Confidence != tt.wantConfidence {
				t.Fatalf("confidence: got %q, want %q", got.Confidence, tt.wantConfidence)
			}
			if got.LearningImpact == "" || got.SupportFocus == "" || got.Explanation == "" {
				t.Fatalf("pattern text fields must be populated")
			}
		})
	}
}

func TestInferPatternEndToEndScenario(t *testing.T) {
	f, err := ExtractFeatures(endToEndEvents())
	if err != nil {
		t.Fatalf("ExtractFeatures failed: %v", err)
	}
	got := InferPattern(f)
	if got.PatternName != PatternVariableFocus {
		t.Fatalf("pattern: got %q, want %q", got.PatternName, PatternVariableFocus)
	}
	if got.Confidence != ConfidenceLow {
		t.Fatalf("confidence: got %q, want %q", got.Confidence, ConfidenceLow)
	}
}
