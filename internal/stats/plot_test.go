package stats

import (
	"bytes"
	"strings"
	"testing"
)

func TestPlotSeriesRendersTitleAndLegend(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "Trends", []Series{
		{Name: "WPM", Values: []float64{10, 20, 30, 40}},
		{Name: "Health", Values: []float64{90, 80, 70, 60}},
	}, 20, 5)
	if err != nil {
		t.Fatalf("failed to plot series: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Trends") {
		t.Errorf("expected title in output, got:\n%s", out)
	}
	if !strings.Contains(out, "WPM: min=") || !strings.Contains(out, "Health: min=") {
		t.Errorf("expected per-series ranges in output, got:\n%s", out)
	}
	if !strings.Contains(out, "Legend: ") {
		t.Errorf("expected legend in output, got:\n%s", out)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	plotLines := 0
	for _, line := range lines {
		if strings.Contains(line, "│") {
			plotLines++
		}
	}
	if plotLines != 5 {
		t.Errorf("expected 5 plot rows, got %d:\n%s", plotLines, out)
	}
}

func TestPlotSeriesEmptyNoOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotSeries(&buf, "Trends", nil, 20, 5); err != nil {
		t.Fatalf("failed to plot empty series: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output for empty series, got %q", buf.String())
	}
}

func TestPlotWidthFor(t *testing.T) {
	axis := len([]rune(axisLabelTop)) + len([]rune(axisSeparator))
	if got := PlotWidthFor(80); got != 80-axis {
		t.Errorf("expected width %d, got %d", 80-axis, got)
	}
	if got := PlotWidthFor(0); got != minPlotWidth {
		t.Errorf("expected fallback width %d, got %d", minPlotWidth, got)
	}
	if got := PlotWidthFor(5); got != minPlotWidth {
		t.Errorf("expected minimum width %d, got %d", minPlotWidth, got)
	}
}

func TestResampleSeries(t *testing.T) {
	up := resampleSeries([]float64{0, 10}, 3)
	if len(up) != 3 {
		t.Fatalf("expected 3 values, got %d", len(up))
	}
	if up[0] != 0 || up[1] != 5 || up[2] != 10 {
		t.Errorf("expected interpolated [0 5 10], got %v", up)
	}
	down := resampleSeries([]float64{1, 3, 5, 7}, 2)
	if len(down) != 2 {
		t.Fatalf("expected 2 values, got %d", len(down))
	}
	if down[0] != 2 || down[1] != 6 {
		t.Errorf("expected bucket means [2 6], got %v", down)
	}
}
