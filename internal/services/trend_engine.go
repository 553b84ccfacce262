package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/neuroplay/neuroplay-backend/internal/logger"
	"github.com/neuroplay/neuroplay-backend/internal/repos"
	"github.com/neuroplay/neuroplay-backend/internal/types"
)

const (
	trendMinSessions     = 3
	trendStableThreshold = 0.7
	trendEasingThreshold = 0.7
)

// TrendComputation is one computed per-pattern trend row before
// persistence.
type TrendComputation struct {
	PatternName  string
	TrendType    string
	Frequency    float64
	SessionCount int
}

// ComputeTrends derives qualitative per-pattern trend labels from a
// learner's pattern history. It is a pure function of the snapshot
// list: identical history yields identical output, in pattern-name
// order. Fewer than 3 distinct sessions yields an empty result.
//
// Snapshots must be in chronological order, which is how the repo
// returns them.
func ComputeTrends(snapshots []*types.PatternSnapshot) []TrendComputation {
	distinctSessions := make(map[uuid.UUID]struct{})
	byPattern := make(map[string][]*types.PatternSnapshot)
	for _, snap := range snapshots {
		distinctSessions[snap.SessionID] = struct{}{}
		byPattern[snap.PatternName] = append(byPattern[snap.PatternName], snap)
	}

	totalSessions := len(distinctSessions)
	if totalSessions < trendMinSessions {
		return nil
	}

	names := make([]string, 0, len(byPattern))
	for name := range byPattern {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]TrendComputation, 0, len(names))
	for _, name := range names {
		occurrences := byPattern[name]

		patternSessions := make(map[uuid.UUID]struct{})
		for _, snap := range occurrences {
			patternSessions[snap.SessionID] = struct{}{}
		}
		frequency := float64(len(patternSessions)) / float64(totalSessions)

		trendType := types.TrendFluctuating
		if frequency > trendStableThreshold {
			trendType = types.TrendStable
		} else {
			// Compare how often the pattern showed up early vs
			// recently; showing up less over time reads as the
			// pattern needing attention less.
			mid := len(occurrences) / 2
			earlyCount := distinctSessionCount(occurrences[:mid])
			recentCount := distinctSessionCount(occurrences[mid:])
			if float64(recentCount) < trendEasingThreshold*float64(earlyCount) {
				trendType = types.TrendImproving
			}
		}

		results = append(results, TrendComputation{
			PatternName:  name,
			TrendType:    trendType,
			Frequency:    frequency,
			SessionCount: len(patternSessions),
		})
	}
	return results
}

func distinctSessionCount(snapshots []*types.PatternSnapshot) int {
	seen := make(map[uuid.UUID]struct{})
	for _, snap := range snapshots {
		seen[snap.SessionID] = struct{}{}
	}
	return len(seen)
}

type TrendService interface {
	RecomputeForLearner(ctx context.Context, learnerID uuid.UUID) ([]*types.TrendSummary, error)
	ListForLearner(ctx context.Context, learnerID uuid.UUID) ([]*types.TrendSummary, error)
}

type trendService struct {
	db          *gorm.DB
	log         *logger.Logger
	patternRepo repos.PatternSnapshotRepo
	trendRepo   repos.TrendSummaryRepo
}

func NewTrendService(db *gorm.DB, log *logger.Logger, patternRepo repos.PatternSnapshotRepo, trendRepo repos.TrendSummaryRepo) TrendService {
	serviceLog := log.With("service", "TrendService")
	return &trendService{db: db, log: serviceLog, patternRepo: patternRepo, trendRepo: trendRepo}
}

// RecomputeForLearner rebuilds the learner's trend rows from pattern
// history and upserts them keyed by (learner, pattern name). Below the
// session threshold it returns an empty list and writes nothing.
func (ts *trendService) RecomputeForLearner(ctx context.Context, learnerID uuid.UUID) ([]*types.TrendSummary, error) {
	snapshots, err := ts.patternRepo.ListByLearnerID(ctx, nil, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pattern history: %w", err)
	}

	computed := ComputeTrends(snapshots)
	if len(computed) == 0 {
		return []*types.TrendSummary{}, nil
	}

	now := time.Now()
	summaries := make([]*types.TrendSummary, 0, len(computed))
	for _, c := range computed {
		summary := &types.TrendSummary{
			ID:           uuid.New(),
			LearnerID:    learnerID,
			PatternName:  c.PatternName,
			TrendType:    c.TrendType,
			SessionCount: c.SessionCount,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if _, err := ts.trendRepo.Upsert(ctx, nil, summary); err != nil {
			return nil, fmt.Errorf("failed to upsert trend summary: %w", err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (ts *trendService) ListForLearner(ctx context.Context, learnerID uuid.UUID) ([]*types.TrendSummary, error) {
	return ts.trendRepo.ListByLearnerID(ctx, nil, learnerID)
}
