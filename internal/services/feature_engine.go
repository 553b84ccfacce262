package services

import (
	"math"

	"github.com/neuroplay/neuroplay-backend/internal/eventstore"
	apperrors "github.com/neuroplay/neuroplay-backend/internal/pkg/errors"
)

// FeatureSummary is the transient, derived statistics bundle for one
// session. It is never persisted and never exposed to clients.
type FeatureSummary struct {
	MeanRT      float64
	StdevRT     float64
	MissRate    float64
	TotalEvents int
	HitCount    int
	MissCount   int
}

// HighVariability reports whether reaction-time spread is notably
// high relative to the mean. A zero mean can never be variable.
func (f *FeatureSummary) HighVariability() bool {
	if f.MeanRT == 0 {
		return false
	}
	return f.StdevRT/f.MeanRT > 0.4
}

// HighMissRate reports whether more than 30% of targets were missed.
func (f *FeatureSummary) HighMissRate() bool {
	return f.MissRate > 0.3
}

// ExtractFeatures derives summary statistics from raw tap events.
// Fewer than 3 events yields ErrInsufficientData. Reaction time is
// tap timestamp minus target appearance; non-positive values are
// invalid and excluded from timing statistics, though the event still
// counts toward totals and the miss rate denominator.
func ExtractFeatures(events []eventstore.TapEvent) (*FeatureSummary, error) {
	if len(events) < 3 {
		return nil, apperrors.ErrInsufficientData
	}

	var reactionTimes []float64
	hitCount := 0
	missCount := 0
	for _, e := range events {
		if e.Hit {
			hitCount++
			rt := float64(e.Timestamp - e.AppearedAt)
			if rt > 0 {
				reactionTimes = append(reactionTimes, rt)
			}
		} else {
			missCount++
		}
	}

	totalEvents := hitCount + missCount

	var meanRT, stdevRT float64
	if len(reactionTimes) > 0 {
		var sum float64
		for _, rt := range reactionTimes {
			sum += rt
		}
		meanRT = sum / float64(len(reactionTimes))

		if len(reactionTimes) >= 2 {
			var sq float64
			for _, rt := range reactionTimes {
				d := rt - meanRT
				sq += d * d
			}
			stdevRT = math.Sqrt(sq / float64(len(reactionTimes)-1))
		}
	}

	missRate := 0.0
	if totalEvents > 0 {
		missRate = float64(missCount) / float64(totalEvents)
	}

	return &FeatureSummary{
		MeanRT:      meanRT,
		StdevRT:     stdevRT,
		MissRate:    missRate,
		TotalEvents: totalEvents,
		HitCount:    hitCount,
		MissCount:   missCount,
	}, nil
}
