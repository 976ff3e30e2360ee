package stats

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/tuipasat/internal/model"
	"github.com/verte-zerg/tuipasat/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions         []model.SessionAggregate
	WindowSessionIDs []int64
	Trials           map[int64][]model.Trial
	WeakStimuli      []StimulusAggregate
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}

	windowIDs := lastSessionIDs(sessions, cfg.CurveWindow)
	trials, err := st.ListTrials(ctx, sessionIDs(sessions))
	if err != nil {
		return Report{}, err
	}
	windowTrials := make(map[int64][]model.Trial, len(windowIDs))
	for _, id := range windowIDs {
		windowTrials[id] = trials[id]
	}

	return Report{
		Sessions:         sessions,
		WindowSessionIDs: windowIDs,
		Trials:           trials,
		WeakStimuli:      WeakStimuli(windowTrials, 5),
	}, nil
}

func sessionIDs(sessions []model.SessionAggregate) []int64 {
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}

func lastSessionIDs(sessions []model.SessionAggregate, window int) []int64 {
	if window <= 0 || len(sessions) <= window {
		return sessionIDs(sessions)
	}
	return sessionIDs(sessions[len(sessions)-window:])
}

// RenderReport prints the report as plain text: summary, session table,
// curves and the weakest stimuli.
func RenderReport(w io.Writer, report Report, window, width int) error {
	if err := RenderSummary(w, report.Sessions); err != nil {
		return err
	}
	if len(report.Sessions) == 0 {
		return nil
	}
	if err := RenderSessionTable(w, report.Sessions); err != nil {
		return err
	}
	if err := RenderCurves(w, report.Sessions, window, width, defaultPlotHeight); err != nil {
		return err
	}
	if len(report.WeakStimuli) == 0 {
		return nil
	}
	items := make([]string, 0, len(report.WeakStimuli))
	for _, agg := range report.WeakStimuli {
		items = append(items, fmt.Sprintf("%d (%.1f%%)", agg.Stimulus, agg.Accuracy()*100))
	}
	_, err := fmt.Fprintf(w, "\nWeakest stimuli: %s\n", strings.Join(items, "  "))
	return err
}
