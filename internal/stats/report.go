// Package stats contains snapshot history calculations and reporting.
package stats

import (
	"context"
	"io"

	"github.com/davrk/keypulse/internal/model"
	"github.com/davrk/keypulse/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Summaries []model.SnapshotSummary
	Summary   Summary
}

// BuildReport loads and prepares snapshot history for rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	summaries, err := st.ListSnapshots(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Summaries: summaries,
		Summary:   Summarize(summaries),
	}, nil
}

// Render writes the full text report: summary, level table, and trend plots.
func (r Report) Render(w io.Writer, cfg model.StatsConfig, totalWidth int, useColor bool) error {
	if err := RenderSummary(w, r.Summaries); err != nil {
		return err
	}
	if err := RenderLevelTable(w, r.Summaries); err != nil {
		return err
	}
	return RenderCurvesWithSize(w, r.Summaries, cfg.CurveWindow, totalWidth, 10, useColor)
}
