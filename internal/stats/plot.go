package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const (
	defaultPlotHeight   = 8
	minPlotWidth        = 10
	axisLabelWidth      = 7
	axisSeparator       = " │ "
	terminalWidthBackup = 80
)

var plotBlocks = []rune(" ▁▂▃▄▅▆▇█")

// PlotSeries renders a column chart of values, resampled to width columns.
func PlotSeries(w io.Writer, title string, values []float64, width, height int) error {
	if len(values) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	width = max(width, minPlotWidth)

	cols := resampleSeries(values, width)
	minVal, maxVal := minMax(cols)
	if math.Abs(maxVal-minVal) < 1e-9 {
		minVal--
		maxVal++
	}

	levels := len(plotBlocks) - 1
	if _, err := fmt.Fprintf(w, "%s  (min %.1f, max %.1f)\n", title, minVal, maxVal); err != nil {
		return err
	}
	for row := height - 1; row >= 0; row-- {
		label := ""
		switch row {
		case height - 1:
			label = fmt.Sprintf("%.0f", maxVal)
		case 0:
			label = fmt.Sprintf("%.0f", minVal)
		}
		var b strings.Builder
		b.WriteString(runewidth.FillLeft(label, axisLabelWidth))
		b.WriteString(axisSeparator)
		for _, v := range cols {
			filled := (v - minVal) / (maxVal - minVal) * float64(height*levels)
			cell := int(math.Round(filled)) - row*levels
			cell = max(0, min(cell, levels))
			b.WriteRune(plotBlocks[cell])
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(b.String(), " ")); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	plotWidth := totalWidth - axisLabelWidth - runewidth.StringWidth(axisSeparator)
	return max(plotWidth, minPlotWidth)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func resampleSeries(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	if len(values) <= width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		start := i * len(values) / width
		end := max((i+1)*len(values)/width, start+1)
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}
