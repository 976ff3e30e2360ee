// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/tuipasat/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics computes accuracy and miss rate for a session.
func SessionMetrics(right, wrong, missed int) (accuracy, missRate float64) {
	total := right + wrong + missed
	if total <= 0 {
		return 0, 0
	}
	return float64(right) / float64(total), float64(missed) / float64(total)
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := minMax(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// TrialISISeries returns the ISI after every trial of a session.
func TrialISISeries(trials []model.Trial) []float64 {
	out := make([]float64, len(trials))
	for i, tr := range trials {
		out[i] = float64(tr.ISIMs)
	}
	return out
}

// RenderSummary prints a summary block for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	s := Summarize(sessions)
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", s.Sessions),
		fmt.Sprintf("Trials: %d", s.Trials),
		fmt.Sprintf("Avg Accuracy: %.2f%%", s.AvgAccuracy*100),
		fmt.Sprintf("Best Accuracy: %.2f%%", s.BestAccuracy*100),
		fmt.Sprintf("Avg Final ISI: %.0f ms", s.AvgFinalISI),
		fmt.Sprintf("Fastest ISI: %d ms", s.FastestISI),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Overview aggregates metrics across sessions.
type Overview struct {
	Sessions     int
	Trials       int
	AvgAccuracy  float64
	BestAccuracy float64
	AvgFinalISI  float64
	FastestISI   int
}

// Summarize computes an Overview. Sessions without trials count toward
// Sessions only.
func Summarize(sessions []model.SessionAggregate) Overview {
	o := Overview{Sessions: len(sessions)}
	scored := 0
	var accSum, isiSum float64
	for _, s := range sessions {
		total := s.Total()
		o.Trials += total
		isiSum += float64(s.FinalISIMs)
		if o.FastestISI == 0 || s.MinISIMs < o.FastestISI {
			o.FastestISI = s.MinISIMs
		}
		if total == 0 {
			continue
		}
		acc, _ := SessionMetrics(s.Right, s.Wrong, s.Missed)
		accSum += acc
		o.BestAccuracy = max(o.BestAccuracy, acc)
		scored++
	}
	if scored > 0 {
		o.AvgAccuracy = accSum / float64(scored)
	}
	if len(sessions) > 0 {
		o.AvgFinalISI = isiSum / float64(len(sessions))
	}
	return o
}

// RenderSessionTable prints one row per session, newest last.
func RenderSessionTable(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	headers, rows := SessionRows(sessions)
	lines := formatTable(headers, rows, map[int]bool{2: true, 3: true, 4: true, 5: true, 6: true, 7: true})
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// SessionRows formats sessions as table cells.
func SessionRows(sessions []model.SessionAggregate) ([]string, [][]string) {
	headers := []string{"Date", "Stop", "Right", "Wrong", "Missed", "Accuracy", "Start ISI", "Final ISI"}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		acc, _ := SessionMetrics(s.Right, s.Wrong, s.Missed)
		rows = append(rows, []string{
			s.EndedAt.Local().Format("2006-01-02 15:04"),
			s.StoppedBy,
			fmt.Sprintf("%d", s.Right),
			fmt.Sprintf("%d", s.Wrong),
			fmt.Sprintf("%d", s.Missed),
			fmt.Sprintf("%.1f%%", acc*100),
			fmt.Sprintf("%d", s.StartISIMs),
			fmt.Sprintf("%d", s.FinalISIMs),
		})
	}
	return headers, rows
}

// RenderCurves prints learning curves for accuracy and final ISI.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window, totalWidth, height int) error {
	if len(sessions) == 0 {
		return nil
	}
	accs := make([]float64, len(sessions))
	isis := make([]float64, len(sessions))
	for i, s := range sessions {
		acc, _ := SessionMetrics(s.Right, s.Wrong, s.Missed)
		accs[i] = acc * 100
		isis[i] = float64(s.FinalISIMs)
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	if err := PlotSeries(w, "Accuracy (%)", MovingAverage(accs, window), width, height); err != nil {
		return err
	}
	return PlotSeries(w, "Final ISI (ms)", MovingAverage(isis, window), width, height)
}

func minMax(values []float64) (float64, float64) {
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	return minVal, maxVal
}
