package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/neuroplay/neuroplay-backend/internal/types"
)

func snapshotFor(sessionID uuid.UUID, pattern string, at time.Time) *types.PatternSnapshot {
	return &types.PatternSnapshot{
		ID:          uuid.New(),
		LearnerID:   uuid.Nil,
		SessionID:   sessionID,
		PatternName: pattern,
		CreatedAt:   at,
	}
}

func sessionIDs(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

func TestComputeTrendsBelowSessionThreshold(t *testing.T) {
	base := time.Now()
	sessions := sessionIDs(2)
	snapshots := []*types.PatternSnapshot{
		snapshotFor(sessions[0], PatternSteadyFocus, base),
		snapshotFor(sessions[1], PatternSteadyFocus, base.Add(time.Minute)),
		snapshotFor(sessions[1], PatternVariableFocus, base.Add(2*time.Minute)),
	}
	if got := ComputeTrends(snapshots); len(got) != 0 {
		t.Fatalf("expected empty below threshold, got %v", got)
	}
}

func TestComputeTrendsStable(t *testing.T) {
	base := time.Now()
	sessions := sessionIDs(4)
	var snapshots []*types.PatternSnapshot
	for i, sid := range sessions {
		snapshots = append(snapshots, snapshotFor(sid, PatternSteadyFocus, base.Add(time.Duration(i)*time.Minute)))
	}

	got := ComputeTrends(snapshots)
	if len(got) != 1 {
		t.Fatalf("expected 1 trend, got %d", len(got))
	}
	if got[0].TrendType != types.TrendStable {
		t.Fatalf("trend: got %q, want stable", got[0].TrendType)
	}
	if got[0].Frequency != 1 {
		t.Fatalf("frequency: got %f, want 1", got[0].Frequency)
	}
	if got[0].SessionCount != 4 {
		t.Fatalf("session count: got %d, want 4", got[0].SessionCount)
	}
}

func TestComputeTrendsImprovingEarlyHeavy(t *testing.T) {
	base := time.Now()
	// 10 sessions; pattern occurs in sessions 0..3 (early) and only
	// session 4 in the recent half of its own occurrence list.
	sessions := sessionIDs(10)
	var snapshots []*types.PatternSnapshot
	for i, sid := range sessions {
		snapshots = append(snapshots, snapshotFor(sid, PatternSteadyFocus, base.Add(time.Duration(i)*time.Minute)))
	}
	// Pattern occurrence list: sessions 0,1 early half; sessions 2,3
	// duplicated... keep it simple: 4 occurrences, early half has 2
	// distinct sessions, recent half has 1 distinct session repeated.
	occTimes := []time.Time{
		base.Add(time.Second),
		base.Add(time.Minute + time.Second),
		base.Add(2*time.Minute + time.Second),
		base.Add(2*time.Minute + 2*time.Second),
	}
	snapshots = append(snapshots,
		snapshotFor(sessions[0], PatternVariableFocus, occTimes[0]),
		snapshotFor(sessions[1], PatternVariableFocus, occTimes[1]),
		snapshotFor(sessions[2], PatternVariableFocus, occTimes[2]),
		snapshotFor(sessions[2], PatternVariableFocus, occTimes[3]),
	)

	got := ComputeTrends(snapshots)
	var variable *TrendComputation
	for i := range got {
		if got[i].PatternName == PatternVariableFocus {
			variable = &got[i]
		}
	}
	if variable == nil {
		t.Fatalf("missing trend for %q", PatternVariableFocus)
	}
	// frequency = 3/10, early distinct = 2, recent distinct = 1,
	// 1 < 0.7*2 so the pattern is easing.
	if variable.TrendType != types.TrendImproving {
		t.Fatalf("trend: got %q, want improving", variable.TrendType)
	}
	if variable.SessionCount != 3 {
		t.Fatalf("session count: got %d, want 3", variable.SessionCount)
	}
}

func TestComputeTrendsFluctuating(t *testing.T) {
	base := time.Now()
	sessions := sessionIDs(4)
	var snapshots []*types.PatternSnapshot
	for i, sid := range sessions {
		snapshots = append(snapshots, snapshotFor(sid, PatternSteadyFocus, base.Add(time.Duration(i)*time.Minute)))
	}
	// Pattern in half the sessions, evenly spread: not stable, not
	// easing.
	snapshots = append(snapshots,
		snapshotFor(sessions[0], PatternTargetTracking, base.Add(time.Second)),
		snapshotFor(sessions[3], PatternTargetTracking, base.Add(3*time.Minute+time.Second)),
	)

	got := ComputeTrends(snapshots)
	var tracking *TrendComputation
	for i := range got {
		if got[i].PatternName == PatternTargetTracking {
			tracking = &got[i]
		}
	}
	if tracking == nil {
		t.Fatalf("missing trend for %q", PatternTargetTracking)
	}
	if tracking.TrendType != types.TrendFluctuating {
		t.Fatalf("trend: got %q, want fluctuating", tracking.TrendType)
	}
}

func TestComputeTrendsDeterministicOrder(t *testing.T) {
	base := time.Now()
	sessions := sessionIDs(3)
	var snapshots []*types.PatternSnapshot
	for i, sid := range sessions {
		snapshots = append(snapshots,
			snapshotFor(sid, PatternVariableFocus, base.Add(time.Duration(i)*time.Minute)),
			snapshotFor(sid, PatternSteadyFocus, base.Add(time.Duration(i)*time.Minute+time.Second)),
		)
	}

	first := ComputeTrends(snapshots)
	second := ComputeTrends(snapshots)
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("row %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
	for i := 1; i < len(first); i++ {
		if first[i-1].PatternName >= first[i].PatternName {
			t.Fatalf("rows not sorted by pattern name: %+v", first)
		}
	}
}
