package escalation

import "context"

// CallRequest asks a voice provider to phone a clinician with an agent that
// is primed with the alert context.
type CallRequest struct {
	To                string
	CustomerID        string
	Variables         map[string]string
	StatusCallbackURL string
}

type CallResult struct {
	CallID         string
	ConversationID string
}

type VoiceCaller interface {
	// Configured reports whether outbound calls can be placed at all.
	// An unconfigured caller is skipped without a notification row.
	Configured() bool
	PlaceCall(ctx context.Context, req CallRequest) (*CallResult, error)
}

type TextResult struct {
	MessageID string
	Status    string
}

type TextSender interface {
	SendText(ctx context.Context, to, body, statusCallbackURL string) (*TextResult, error)
}

// Mailer sends a plain-text email and returns the provider message id.
type Mailer interface {
	SendMail(ctx context.Context, toEmail, toName, subject, text string) (string, error)
}

// Publisher fans an event out to live dashboard subscribers.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}
