package triage

import (
	"strings"
	"testing"
)

func TestEvaluateTrend(t *testing.T) {
	cases := []struct {
		name        string
		current     float64
		recent      []float64
		triggered   bool
		floor       bool
		decline     bool
		reasonStart string
	}{
		{"floor at threshold", 1.5, nil, true, true, false, "Very low mood detected (rating: 1.5)"},
		{"floor ignores history", 1.0, []float64{5, 5, 5, 5, 5}, true, true, false, "Very low mood"},
		{"just above floor", 1.6, nil, false, false, false, ""},
		{"short history cannot decline", 0.5, []float64{2.0, 2.0}, true, true, false, "Very low mood"},
		{"decline tie does not fire", 1.0, []float64{2.0, 2.0, 2.0}, true, true, false, "Very low mood"},
		{"decline and floor", 0.5, []float64{2.0, 1.8, 2.2}, true, true, true, "Rapid mood decline detected (current: 0.5, recent avg: 2.0)"},
		{"avg above ceiling", 0.5, []float64{3.0, 3.0, 3.0}, true, true, false, "Very low mood"},
		{"only first three count", 3.0, []float64{4.5, 4.0, 4.2, 1.0, 1.0}, false, false, false, ""},
		{"healthy", 4.0, []float64{4.0, 3.5, 4.5}, false, false, false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EvaluateTrend(tc.current, tc.recent)
			if got.Triggered != tc.triggered || got.Floor != tc.floor || got.Decline != tc.decline {
				t.Fatalf("got %+v", got)
			}
			if !strings.HasPrefix(got.Reason, tc.reasonStart) {
				t.Fatalf("reason %q does not start with %q", got.Reason, tc.reasonStart)
			}
		})
	}
}

func TestEvaluateTrendFloorHoldsForAllLowRatings(t *testing.T) {
	histories := [][]float64{nil, {1}, {5, 5, 5}, {1, 1, 1, 1, 1}}
	for i := 0; i <= 10; i++ {
		r := float64(100+5*i) / 100
		for _, h := range histories {
			if !EvaluateTrend(r, h).Triggered {
				t.Fatalf("rating %v with history %v did not trigger", r, h)
			}
		}
	}
}

func TestEvaluateTrendShortHistoryNeverDeclines(t *testing.T) {
	for _, h := range [][]float64{nil, {}, {2}, {2, 2}} {
		for i := 0; i <= 20; i++ {
			r := float64(i) * 0.25
			if EvaluateTrend(r, h).Decline {
				t.Fatalf("decline fired with %d ratings", len(h))
			}
		}
	}
}
