// Package stats contains snapshot history calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/davrk/keypulse/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates a run of snapshot summaries.
type Summary struct {
	Count            int
	AvgWPM           float64
	BestWPM          float64
	AvgHealthScore   float64
	AvgFatigueScore  float64
	AvgActivePercent float64
	TotalKeystrokes  int64
	TotalMouseEvents int64
	Levels           map[model.FatigueLevel]int
	First            time.Time
	Last             time.Time
}

// Summarize computes aggregate figures over the snapshot history.
func Summarize(summaries []model.SnapshotSummary) Summary {
	out := Summary{Levels: make(map[model.FatigueLevel]int)}
	if len(summaries) == 0 {
		return out
	}
	out.Count = len(summaries)
	out.First = summaries[0].Timestamp
	out.Last = summaries[len(summaries)-1].Timestamp
	for _, sm := range summaries {
		out.AvgWPM += sm.WPM
		out.AvgHealthScore += sm.HealthScore
		out.AvgFatigueScore += sm.OverallFatigue
		out.AvgActivePercent += sm.ActiveTimePercentage
		if sm.WPM > out.BestWPM {
			out.BestWPM = sm.WPM
		}
		out.Levels[sm.Level]++
		if sm.TotalKeystrokes > out.TotalKeystrokes {
			out.TotalKeystrokes = sm.TotalKeystrokes
		}
		if sm.TotalMouseEvents > out.TotalMouseEvents {
			out.TotalMouseEvents = sm.TotalMouseEvents
		}
	}
	n := float64(out.Count)
	out.AvgWPM /= n
	out.AvgHealthScore /= n
	out.AvgFatigueScore /= n
	out.AvgActivePercent /= n
	return out
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
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints a summary block for the snapshot history.
func RenderSummary(w io.Writer, summaries []model.SnapshotSummary) error {
	if len(summaries) == 0 {
		_, err := fmt.Fprintln(w, "No snapshots recorded.")
		return err
	}
	sum := Summarize(summaries)
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Snapshots: %d (%s to %s)\n",
		sum.Count,
		sum.First.Local().Format("2006-01-02 15:04:05"),
		sum.Last.Local().Format("2006-01-02 15:04:05")); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg WPM: %.2f\n", sum.AvgWPM); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Best WPM: %.2f\n", sum.BestWPM); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg Health: %.1f\n", sum.AvgHealthScore); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg Fatigue: %.1f\n", sum.AvgFatigueScore); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg Active Time: %.1f%%\n", sum.AvgActivePercent); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Keystrokes: %d  Mouse events: %d\n",
		sum.TotalKeystrokes, sum.TotalMouseEvents); err != nil {
		return err
	}
	wpms := make([]float64, len(summaries))
	for i, sm := range summaries {
		wpms[i] = sm.WPM
	}
	if _, err := fmt.Fprintf(w, "WPM trend: %s\n", Sparkline(wpms)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderLevelTable prints the distribution of fatigue levels.
func RenderLevelTable(w io.Writer, summaries []model.SnapshotSummary) error {
	if len(summaries) == 0 {
		return nil
	}
	sum := Summarize(summaries)

	order := []model.FatigueLevel{
		model.FatigueMinimal,
		model.FatigueMild,
		model.FatigueModerate,
		model.FatigueHigh,
		model.FatigueSevere,
	}
	type row struct {
		level model.FatigueLevel
		count int
	}
	rows := make([]row, 0, len(order))
	for _, lvl := range order {
		if count, ok := sum.Levels[lvl]; ok {
			rows = append(rows, row{level: lvl, count: count})
		}
	}
	// Unknown levels from newer schema versions sort after the known ones.
	var extra []row
	for lvl, count := range sum.Levels {
		known := false
		for _, k := range order {
			if lvl == k {
				known = true
				break
			}
		}
		if !known {
			extra = append(extra, row{level: lvl, count: count})
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].level < extra[j].level })
	rows = append(rows, extra...)

	if _, err := fmt.Fprintln(w, "Fatigue Levels"); err != nil {
		return err
	}
	headers := []string{"Level", "Snapshots", "Share"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		share := float64(r.count) / float64(sum.Count) * 100
		tableRows = append(tableRows, []string{
			string(r.level),
			fmt.Sprintf("%d", r.count),
			fmt.Sprintf("%.1f%%", share),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true}
	for _, line := range formatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderCurves prints trend plots for WPM, health, and fatigue.
func RenderCurves(w io.Writer, summaries []model.SnapshotSummary, window int) error {
	return RenderCurvesWithSize(w, summaries, window, 0, 10, false)
}

// RenderCurvesWithSize prints trend plots sized to a given total width.
func RenderCurvesWithSize(w io.Writer, summaries []model.SnapshotSummary, window, totalWidth, height int, useColor bool) error {
	if len(summaries) == 0 {
		return nil
	}
	wpms := make([]float64, len(summaries))
	healths := make([]float64, len(summaries))
	fatigues := make([]float64, len(summaries))
	for i, sm := range summaries {
		wpms[i] = sm.WPM
		healths[i] = sm.HealthScore
		fatigues[i] = sm.OverallFatigue
	}
	wpms = MovingAverage(wpms, window)
	healths = MovingAverage(healths, window)
	fatigues = MovingAverage(fatigues, window)

	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, "Trends", []Series{
		{Name: "WPM", Values: wpms},
		{Name: "Health", Values: healths},
		{Name: "Fatigue", Values: fatigues},
	}, width, height, useColor)
}
