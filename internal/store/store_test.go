package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/tuipasat/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "tuipasat.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func sampleResult(start time.Time) model.SessionResult {
	return model.SessionResult{
		StartedAt:   start,
		EndedAt:     start.Add(2 * time.Minute),
		DurationMin: 2,
		StartISIMs:  3000,
		FinalISIMs:  2900,
		MinISIMs:    2900,
		Right:       4,
		Wrong:       1,
		Missed:      0,
		StoppedBy:   "automatic",
		Trials: []model.Trial{
			{Ordinal: 1, Stimulus: 3, Outcome: "right", ISIMs: 3000},
			{Ordinal: 2, Stimulus: 5, Outcome: "wrong", ISIMs: 3000},
		},
	}
}

func TestInsertAndListSessions(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := st.InsertSession(ctx, sampleResult(base.Add(time.Duration(i)*time.Hour)))
		if err != nil {
			t.Fatalf("insert session: %v", err)
		}
		ids = append(ids, id)
	}

	sessions, err := st.ListSessions(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}
	if sessions[0].SessionID != ids[0] || sessions[2].SessionID != ids[2] {
		t.Fatalf("unexpected order: %+v", sessions)
	}
	if sessions[0].RunID == "" || sessions[0].RunID == sessions[1].RunID {
		t.Fatalf("expected distinct generated run ids")
	}
	if sessions[1].Total() != 5 || sessions[1].FinalISIMs != 2900 || sessions[1].StoppedBy != "automatic" {
		t.Fatalf("unexpected aggregate: %+v", sessions[1])
	}
	if !sessions[0].StartedAt.Equal(base) {
		t.Fatalf("unexpected start time: %v", sessions[0].StartedAt)
	}

	since := base.Add(60 * time.Minute)
	filtered, err := st.ListSessions(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list filtered sessions: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("expected 2 sessions since %v, got %d", since, len(filtered))
	}
}

func TestListSessionsOrdersByInstant(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	plusFive := time.FixedZone("UTC+5", 5*60*60)

	ends := []time.Time{
		base,
		base.Add(500 * time.Millisecond),
		time.Date(2024, 5, 1, 11, 0, 0, 0, plusFive),
	}
	var ids []int64
	for _, end := range ends {
		result := sampleResult(end.Add(-2 * time.Minute))
		id, err := st.InsertSession(ctx, result)
		if err != nil {
			t.Fatalf("insert session: %v", err)
		}
		ids = append(ids, id)
	}

	sessions, err := st.ListSessions(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}
	want := []int64{ids[2], ids[0], ids[1]}
	for i, s := range sessions {
		if s.SessionID != want[i] {
			t.Fatalf("unexpected order at %d: got %d, want %d", i, s.SessionID, want[i])
		}
	}
	if !sessions[0].EndedAt.Equal(ends[2]) {
		t.Fatalf("unexpected end time: %v", sessions[0].EndedAt)
	}

	since := base.In(plusFive)
	filtered, err := st.ListSessions(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list filtered sessions: %v", err)
	}
	if len(filtered) != 2 || filtered[0].SessionID != ids[0] {
		t.Fatalf("unexpected filtered sessions: %+v", filtered)
	}
}

func TestListTrials(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	id, err := st.InsertSession(ctx, sampleResult(time.Unix(0, 0)))
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}

	trials, err := st.ListTrials(ctx, []int64{id})
	if err != nil {
		t.Fatalf("list trials: %v", err)
	}
	got := trials[id]
	if len(got) != 2 {
		t.Fatalf("expected 2 trials, got %d", len(got))
	}
	if got[0].Stimulus != 3 || got[1].Outcome != "wrong" {
		t.Fatalf("unexpected trials: %+v", got)
	}

	empty, err := st.ListTrials(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty result, got %v (%v)", empty, err)
	}
}

func TestInsertSessionKeepsRunID(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	result := sampleResult(time.Unix(0, 0))
	result.RunID = "fixed-run"
	if _, err := st.InsertSession(ctx, result); err != nil {
		t.Fatalf("insert session: %v", err)
	}
	if _, err := st.InsertSession(ctx, result); err == nil {
		t.Fatalf("expected duplicate run id to fail")
	}
	sessions, err := st.ListSessions(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].RunID != "fixed-run" {
		t.Fatalf("unexpected sessions: %+v", sessions)
	}
}
