package triage

import (
	"github.com/google/uuid"

	"github.com/yungbote/aura-backend/internal/domain/alerting"
	"github.com/yungbote/aura-backend/internal/pkg/textutil"
)

const (
	SnippetRunes = 200

	CrisisRationale = "Crisis language detected in conversation"
)

type Input struct {
	PatientID     uuid.UUID
	CurrentRating float64
	Confidence    float64
	UtteranceText string
	// RecentRatings are prior ratings, newest first, excluding CurrentRating.
	RecentRatings []float64
}

// Evidence is frozen into the alert's trigger data.
type Evidence struct {
	CurrentRating   float64   `json:"sentiment_rating"`
	Confidence      float64   `json:"confidence"`
	RecentRatings   []float64 `json:"recent_ratings"`
	MatchedKeywords []string  `json:"matched_keywords,omitempty"`
	TextSnippet     string    `json:"conversation_snippet"`
	LexiconVersion  int       `json:"lexicon_version,omitempty"`
}

type Verdict struct {
	IsCritical bool
	AlertType  alerting.AlertType
	Severity   alerting.Severity
	Rationale  string
	Evidence   Evidence
}

// Engine combines the trend rules with crisis-language detection. It holds
// no mutable state and is safe for concurrent use.
type Engine struct {
	detector Detector
}

func NewEngine(detector Detector) *Engine {
	return &Engine{detector: detector}
}

// Evaluate returns at most one verdict per utterance, or nil when nothing
// qualifies. Crisis language takes precedence over the trend signal.
func (e *Engine) Evaluate(in Input) *Verdict {
	trend := EvaluateTrend(in.CurrentRating, in.RecentRatings)

	var matched []string
	version := 0
	if e != nil && e.detector != nil {
		matched = e.detector.Detect(in.UtteranceText)
		version = e.detector.Version()
	}

	if !trend.Triggered && len(matched) == 0 {
		return nil
	}

	v := &Verdict{
		IsCritical: true,
		Severity:   alerting.SeverityCritical,
		Evidence: Evidence{
			CurrentRating:   in.CurrentRating,
			Confidence:      in.Confidence,
			RecentRatings:   append([]float64{}, in.RecentRatings...),
			MatchedKeywords: matched,
			TextSnippet:     textutil.TruncateRunes(in.UtteranceText, SnippetRunes),
			LexiconVersion:  version,
		},
	}
	if len(matched) > 0 {
		v.AlertType = alerting.AlertTypeSuicidalIdeation
		v.Rationale = CrisisRationale
	} else {
		v.AlertType = alerting.AlertTypeSevereDepression
		v.Rationale = trend.Reason
	}
	return v
}
