package services

import (
	"errors"
	"math"
	"testing"

	"github.com/neuroplay/neuroplay-backend/internal/eventstore"
	apperrors "github.com/neuroplay/neuroplay-backend/internal/pkg/errors"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func TestExtractFeaturesInsufficientData(t *testing.T) {
	tests := []struct {
		name   string
		events []eventstore.TapEvent
	}{
		{"nil", nil},
		{"empty", []eventstore.TapEvent{}},
		{"one", []eventstore.TapEvent{{Timestamp: 100, AppearedAt: 50, Hit: true}}},
		{"two", []eventstore.TapEvent{
			{Timestamp: 100, AppearedAt: 50, Hit: true},
			{Timestamp: 200, AppearedAt: 150, Hit: false},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ExtractFeatures(tt.events); !errors.Is(err, apperrors.ErrInsufficientData) {
				t.Fatalf("got %v, want ErrInsufficientData", err)
			}
		})
	}
}

func TestExtractFeaturesBasic(t *testing.T) {
	events := []eventstore.TapEvent{
		{Timestamp: 120, AppearedAt: 50, Hit: true},
		{Timestamp: 260, AppearedAt: 50, Hit: true},
		{Timestamp: 500, AppearedAt: 50, Hit: true},
	}
	f, err := ExtractFeatures(events)
	if err != nil {
		t.Fatalf("ExtractFeatures failed: %v", err)
	}
	// RTs are 70, 210, 450.
	if !approxEqual(f.MeanRT, 243.333, 0.01) {
		t.Fatalf("MeanRT: got %f, want ~243.33", f.MeanRT)
	}
	if !approxEqual(f.StdevRT, 190.962, 0.01) {
		t.Fatalf("StdevRT: got %f, want ~190.96", f.StdevRT)
	}
	if f.MissRate != 0 {
		t.Fatalf("MissRate: got %f, want 0", f.MissRate)
	}
	if f.TotalEvents != 3 || f.HitCount != 3 || f.MissCount != 0 {
		t.Fatalf("counts: got total=%d hit=%d miss=%d", f.TotalEvents, f.HitCount, f.MissCount)
	}
	if !f.HighVariability() {
		t.Fatalf("expected high variability (ratio %f)", f.StdevRT/f.MeanRT)
	}
}

func TestExtractFeaturesDiscardsNonPositiveRT(t *testing.T) {
	events := []eventstore.TapEvent{
		{Timestamp: 0, AppearedAt: 0, Hit: true},    // rt 0, invalid
		{Timestamp: 40, AppearedAt: 50, Hit: true},  // rt -10, invalid
		{Timestamp: 150, AppearedAt: 50, Hit: true}, // rt 100
		{Timestamp: 0, AppearedAt: 0, Hit: false},
	}
	f, err := ExtractFeatures(events)
	if err != nil {
		t.Fatalf("ExtractFeatures failed: %v", err)
	}
	if f.TotalEvents != 4 || f.HitCount != 3 || f.MissCount != 1 {
		t.Fatalf("counts: got total=%d hit=%d miss=%d", f.TotalEvents, f.HitCount, f.MissCount)
	}
	// Only one valid RT, so mean is that RT and stdev stays 0.
	if f.MeanRT != 100 {
		t.Fatalf("MeanRT: got %f, want 100", f.MeanRT)
	}
	if f.StdevRT != 0 {
		t.Fatalf("StdevRT: got %f, want 0", f.StdevRT)
	}
	if f.MissRate != 0.25 {
		t.Fatalf("MissRate: got %f, want 0.25", f.MissRate)
	}
}

func TestExtractFeaturesAllMisses(t *testing.T) {
	events := []eventstore.TapEvent{
		{Hit: false}, {Hit: false}, {Hit: false},
	}
	f, err := ExtractFeatures(events)
	if err != nil {
		t.Fatalf("ExtractFeatures failed: %v", err)
	}
	if f.MeanRT != 0 || f.StdevRT != 0 {
		t.Fatalf("timing stats with no hits: mean=%f stdev=%f", f.MeanRT, f.StdevRT)
	}
	if f.MissRate != 1 {
		t.Fatalf("MissRate: got %f, want 1", f.MissRate)
	}
	if f.HighVariability() {
		t.Fatalf("zero mean must never be high variability")
	}
	if !f.HighMissRate() {
		t.Fatalf("expected high miss rate")
	}
}
