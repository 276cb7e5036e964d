package triage

import (
	"fmt"
	"math"
)

const (
	// FloorRating and below is treated as a critical low on its own.
	FloorRating = 1.5
	// DeclineCeiling bounds the short-term average for a decline to count.
	DeclineCeiling = 2.0
	// DeclineDrop is how far below the short-term average the current
	// rating must fall.
	DeclineDrop = 1.0
	// ShortWindow is how many of the most recent ratings form the average.
	ShortWindow = 3
	// HistoryWindow is how many prior ratings the pipeline loads.
	HistoryWindow = 5
)

type TrendResult struct {
	Triggered bool
	Reason    string

	Floor     bool
	Decline   bool
	RecentAvg float64
}

// EvaluateTrend applies the floor and rapid-decline rules. recent holds prior
// ratings newest first and never includes current. When both rules fire the
// decline reason wins.
func EvaluateTrend(current float64, recent []float64) TrendResult {
	var res TrendResult
	if math.IsNaN(current) {
		return res
	}

	if current <= FloorRating {
		res.Floor = true
		res.Triggered = true
		res.Reason = fmt.Sprintf("Very low mood detected (rating: %.1f)", current)
	}

	if len(recent) >= ShortWindow {
		var sum float64
		for _, r := range recent[:ShortWindow] {
			sum += r
		}
		avg := sum / ShortWindow
		res.RecentAvg = avg
		if avg <= DeclineCeiling && current < avg-DeclineDrop {
			res.Decline = true
			res.Triggered = true
			res.Reason = fmt.Sprintf("Rapid mood decline detected (current: %.1f, recent avg: %.1f)", current, avg)
		}
	}

	return res
}
