package services

import (
	"context"
	"errors"
	"sync"

	"github.com/yungbote/aura-backend/internal/modules/escalation"
	"github.com/yungbote/aura-backend/internal/platform/openai"
)

type fakeAI struct {
	reply    string
	replyErr error
	json     map[string]any
	jsonErr  error

	mu      sync.Mutex
	history [][]openai.Message
	inputs  []string
}

func (f *fakeAI) GenerateText(ctx context.Context, system string, history []openai.Message, user string) (string, error) {
	f.mu.Lock()
	f.history = append(f.history, append([]openai.Message{}, history...))
	f.inputs = append(f.inputs, user)
	f.mu.Unlock()
	if f.replyErr != nil {
		return "", f.replyErr
	}
	return f.reply, nil
}

func (f *fakeAI) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	if f.jsonErr != nil {
		return nil, f.jsonErr
	}
	return f.json, nil
}

type fixedScorer struct {
	score SentimentScore
	err   error
}

func (s fixedScorer) Score(ctx context.Context, text string) (SentimentScore, error) {
	return s.score, s.err
}

type recordingTrigger struct {
	mu     sync.Mutex
	events []PipelineEvent
	ctxErr []error
}

func (r *recordingTrigger) Trigger(ctx context.Context, ev PipelineEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	r.ctxErr = append(r.ctxErr, ctx.Err())
}

type fakeEscalator struct {
	mu       sync.Mutex
	requests []escalation.Request
	ctxErrs  []error
	out      *escalation.Outcome
}

func (f *fakeEscalator) Dispatch(ctx context.Context, req escalation.Request) (*escalation.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	if f.out != nil {
		return f.out, nil
	}
	return &escalation.Outcome{State: escalation.StateDone}, nil
}

func (f *fakeEscalator) Requests() []escalation.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]escalation.Request{}, f.requests...)
}

type failingStarter struct{}

func (failingStarter) Start(ctx context.Context, ev PipelineEvent) error {
	return errors.New("temporal unavailable")
}

type recordingStarter struct {
	events []PipelineEvent
}

func (r *recordingStarter) Start(ctx context.Context, ev PipelineEvent) error {
	r.events = append(r.events, ev)
	return nil
}
