package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/aura-backend/internal/observability"
	"github.com/yungbote/aura-backend/internal/platform/logger"
	"github.com/yungbote/aura-backend/internal/platform/openai"
)

// ErrScoringUnavailable is returned when no rating could be produced.
var ErrScoringUnavailable = errors.New("sentiment scoring unavailable")

const (
	NeutralRating     = 3.0
	NeutralConfidence = 0.5
)

// SentimentScore rates one utterance on 1 (very negative) to 5 (very positive).
type SentimentScore struct {
	Rating     float64
	Confidence float64
}

func NeutralScore() SentimentScore {
	return SentimentScore{Rating: NeutralRating, Confidence: NeutralConfidence}
}

type SentimentScorer interface {
	Score(ctx context.Context, text string) (SentimentScore, error)
}

const sentimentSystemPrompt = `You are a sentiment analysis expert for a mental health support app.
Rate the emotional sentiment of the user's message on a 1-5 scale:
1 = very negative (severe distress, hopelessness)
2 = negative
3 = neutral
4 = positive
5 = very positive
Also give your confidence between 0 and 1.`

var sentimentSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"rating":     map[string]any{"type": "number"},
		"confidence": map[string]any{"type": "number"},
	},
	"required":             []string{"rating", "confidence"},
	"additionalProperties": false,
}

type llmSentimentScorer struct {
	log *logger.Logger
	ai  openai.Client
}

// NewSentimentScorer returns a scorer backed by the model. A nil client
// yields a scorer that always reports ErrScoringUnavailable.
func NewSentimentScorer(log *logger.Logger, ai openai.Client) SentimentScorer {
	return &llmSentimentScorer{log: log.With("service", "SentimentScorer"), ai: ai}
}

func (s *llmSentimentScorer) Score(ctx context.Context, text string) (SentimentScore, error) {
	if s.ai == nil {
		return SentimentScore{}, ErrScoringUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return SentimentScore{}, fmt.Errorf("%w: empty text", ErrScoringUnavailable)
	}
	obj, err := s.ai.GenerateJSON(ctx, sentimentSystemPrompt, text, "sentiment", sentimentSchema)
	if err != nil {
		return SentimentScore{}, fmt.Errorf("%w: %v", ErrScoringUnavailable, err)
	}
	rating, ok1 := obj["rating"].(float64)
	confidence, ok2 := obj["confidence"].(float64)
	if !ok1 || !ok2 {
		return SentimentScore{}, fmt.Errorf("%w: malformed model output", ErrScoringUnavailable)
	}
	return SentimentScore{Rating: clamp(rating, 1, 5), Confidence: clamp(confidence, 0, 1)}, nil
}

// scoreOrNeutral never fails: any scoring error becomes the neutral score.
func scoreOrNeutral(ctx context.Context, log *logger.Logger, metrics *observability.Metrics, scorer SentimentScorer, text string) SentimentScore {
	if scorer == nil {
		metrics.IncScoringFallback("no_scorer")
		return NeutralScore()
	}
	score, err := scorer.Score(ctx, text)
	if err != nil {
		log.Warn("Sentiment scoring failed; using neutral score", "error", err)
		metrics.IncScoringFallback("error")
		return NeutralScore()
	}
	return score
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
