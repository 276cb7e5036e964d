package escalation

import (
	"context"
	"errors"
	"sync"

	"github.com/yungbote/aura-backend/internal/data/repos"
	types "github.com/yungbote/aura-backend/internal/domain"
	"github.com/yungbote/aura-backend/internal/platform/dbctx"
)

type fakeVoice struct {
	configured bool
	err        error
	block      bool
	panicWith  any

	mu    sync.Mutex
	calls []CallRequest
}

func (f *fakeVoice) Configured() bool { return f.configured }

func (f *fakeVoice) PlaceCall(ctx context.Context, req CallRequest) (*CallResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &CallResult{CallID: "CA1", ConversationID: "conv_1"}, nil
}

func (f *fakeVoice) Calls() []CallRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]CallRequest{}, f.calls...)
}

type sentText struct {
	To       string
	Body     string
	Callback string
}

type fakeSMS struct {
	err error
	// onSend runs inside the provider call.
	onSend func(callback string)

	mu   sync.Mutex
	sent []sentText
}

func (f *fakeSMS) SendText(ctx context.Context, to, body, callback string) (*TextResult, error) {
	f.mu.Lock()
	f.sent = append(f.sent, sentText{To: to, Body: body, Callback: callback})
	f.mu.Unlock()
	if f.onSend != nil {
		f.onSend(callback)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &TextResult{MessageID: "SM1", Status: "queued"}, nil
}

func (f *fakeSMS) Sent() []sentText {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentText{}, f.sent...)
}

type fakePublisher struct {
	mu     sync.Mutex
	events map[string][]any
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.events == nil {
		f.events = map[string][]any{}
	}
	f.events[channel] = append(f.events[channel], payload)
	return nil
}

type sentMail struct {
	to, subject, text string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeMailer) SendMail(ctx context.Context, toEmail, toName, subject, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{to: toEmail, subject: subject, text: text})
	return "mail-1", nil
}

type failingAlerts struct {
	repos.AlertRepo
}

func (failingAlerts) Create(dbc dbctx.Context, row *types.Alert) error {
	return errors.New("connection refused")
}
