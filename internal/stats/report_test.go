package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tuipasat/internal/model"
	"github.com/verte-zerg/tuipasat/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "tuipasat.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Hour)
		result := model.SessionResult{
			StartedAt:   start,
			EndedAt:     start.Add(time.Minute),
			DurationMin: 1,
			StartISIMs:  3000,
			FinalISIMs:  3000 - i*100,
			MinISIMs:    3000 - i*100,
			Right:       1,
			Wrong:       1,
			StoppedBy:   "manual",
			Trials: []model.Trial{
				{Ordinal: 1, Stimulus: 4, Outcome: "right", ISIMs: 3000},
				{Ordinal: 2, Stimulus: 9, Outcome: "wrong", ISIMs: 3000},
			},
		}
		id, err := st.InsertSession(ctx, result)
		if err != nil {
			t.Fatalf("insert session: %v", err)
		}
		ids = append(ids, id)
	}

	report, err := BuildReport(ctx, st, model.StatsConfig{Last: 2, CurveWindow: 1})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(report.Sessions))
	}
	if report.Sessions[0].SessionID != ids[1] || report.Sessions[1].SessionID != ids[2] {
		t.Fatalf("unexpected session ids: %+v", report.Sessions)
	}
	if len(report.WindowSessionIDs) != 1 || report.WindowSessionIDs[0] != ids[2] {
		t.Fatalf("unexpected window ids: %v", report.WindowSessionIDs)
	}
	if len(report.Trials) != 2 {
		t.Fatalf("expected trials for 2 sessions, got %d", len(report.Trials))
	}
	if len(report.WeakStimuli) != 2 || report.WeakStimuli[0].Stimulus != 9 {
		t.Fatalf("unexpected weak stimuli: %+v", report.WeakStimuli)
	}
}

func TestRenderReportPlain(t *testing.T) {
	end := time.Date(2024, 1, 2, 3, 4, 0, 0, time.Local)
	report := Report{
		Sessions: []model.SessionAggregate{
			{SessionID: 1, EndedAt: end, StoppedBy: "manual", Right: 3, Wrong: 1, StartISIMs: 3000, FinalISIMs: 3000, MinISIMs: 3000},
			{SessionID: 2, EndedAt: end.Add(time.Hour), StoppedBy: "automatic", Right: 4, StartISIMs: 3000, FinalISIMs: 2900, MinISIMs: 2900},
		},
		WeakStimuli: []StimulusAggregate{{Stimulus: 6, Right: 1, Wrong: 1}},
	}
	var buf bytes.Buffer
	if err := RenderReport(&buf, report, 1, 80); err != nil {
		t.Fatalf("render report: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Sessions: 2",
		"Trials: 8",
		"Fastest ISI: 2900 ms",
		"2024-01-02 03:04",
		"Accuracy (%)",
		"Final ISI (ms)",
		"Weakest stimuli: 6 (50.0%)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderReport(&buf, Report{}, 5, 80); err != nil {
		t.Fatalf("render report: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "No sessions found." {
		t.Fatalf("unexpected output: %q", got)
	}
}
