package analyze

import (
	"math"
	"time"

	"github.com/davrk/keypulse/internal/model"
)

const (
	// idleGapSeconds is the per-event gap counted as one idle period.
	idleGapSeconds = 5.0
	// directionChangeCos marks a sharp turn: cos below 0.5 means over 60 degrees.
	directionChangeCos = 0.5
)

// Mouse derives motion and engagement statistics from ordered mouse events in
// the window. An empty window yields the zero value.
func Mouse(events []model.MouseEvent, now time.Time, cfg model.Settings) model.MouseMetrics {
	if len(events) == 0 {
		return model.MouseMetrics{}
	}

	moves := make([]model.MouseEvent, 0, len(events))
	clicks := 0
	scrolls := 0
	for _, e := range events {
		switch e.Kind {
		case model.MouseMove:
			moves = append(moves, e)
		case model.MouseClick:
			clicks++
		case model.MouseScroll:
			scrolls++
		}
	}

	var totalDistance float64
	for i := 1; i < len(moves); i++ {
		totalDistance += math.Hypot(moves[i].X-moves[i-1].X, moves[i].Y-moves[i-1].Y)
	}

	span := spanSeconds(events[0].Time, now)
	var avgSpeed float64
	if span > 0 {
		avgSpeed = totalDistance / span
	}

	var clickFrequency, scrollFrequency float64
	if windowSeconds := cfg.AnalysisWindow.Seconds(); windowSeconds > 0 {
		clickFrequency = float64(clicks) / windowSeconds * 60
		scrollFrequency = float64(scrolls) / windowSeconds * 60
	}

	idlePeriods := 0
	for i := 1; i < len(events); i++ {
		if events[i].Time.Sub(events[i-1].Time).Seconds() > idleGapSeconds {
			idlePeriods++
		}
	}

	var activePct float64
	if span > 0 {
		activePct = clamp((span-float64(idlePeriods)*idleGapSeconds)/span*100, 0, 100)
	}

	return model.MouseMetrics{
		TotalDistance:        totalDistance,
		AvgSpeed:             avgSpeed,
		ClickFrequency:       clickFrequency,
		ScrollFrequency:      scrollFrequency,
		MovementSmoothness:   smoothness(moves),
		IdlePeriods:          idlePeriods,
		ActiveTimePercentage: activePct,
	}
}

// smoothness measures how rarely the pointer changes direction sharply.
// Consecutive movement vectors with an angle over 60 degrees between them
// count as a direction change; zero-length vectors are skipped rather than
// counted. No movement at all reads as perfectly smooth.
func smoothness(moves []model.MouseEvent) float64 {
	if len(moves) == 0 {
		return 100
	}
	changes := 0
	for i := 1; i < len(moves)-1; i++ {
		v1x := moves[i].X - moves[i-1].X
		v1y := moves[i].Y - moves[i-1].Y
		v2x := moves[i+1].X - moves[i].X
		v2y := moves[i+1].Y - moves[i].Y

		mag1 := math.Hypot(v1x, v1y)
		mag2 := math.Hypot(v2x, v2y)
		if mag1 == 0 || mag2 == 0 {
			continue
		}
		cos := (v1x*v2x + v1y*v2y) / (mag1 * mag2)
		cos = clamp(cos, -1, 1)
		if cos < directionChangeCos {
			changes++
		}
	}
	return clamp(100-float64(changes)/float64(len(moves))*100, 0, 100)
}
