package escalation

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/aura-backend/internal/platform/elevenlabs"
	"github.com/yungbote/aura-backend/internal/platform/sendgrid"
	"github.com/yungbote/aura-backend/internal/platform/twilio"
)

type elevenLabsCaller struct {
	c elevenlabs.Client
}

func NewElevenLabsCaller(c elevenlabs.Client) VoiceCaller {
	return &elevenLabsCaller{c: c}
}

func (v *elevenLabsCaller) Configured() bool {
	return v != nil && v.c != nil && v.c.Configured()
}

func (v *elevenLabsCaller) PlaceCall(ctx context.Context, req CallRequest) (*CallResult, error) {
	res, err := v.c.OutboundCall(ctx, elevenlabs.OutboundCallRequest{
		ToNumber:          req.To,
		CustomerID:        req.CustomerID,
		DynamicVariables:  req.Variables,
		StatusCallbackURL: req.StatusCallbackURL,
	})
	if err != nil {
		return nil, err
	}
	return &CallResult{CallID: res.CallSID, ConversationID: res.ConversationID}, nil
}

type twilioSender struct {
	c twilio.Client
}

func NewTwilioSender(c twilio.Client) TextSender {
	return &twilioSender{c: c}
}

func (s *twilioSender) SendText(ctx context.Context, to, body, statusCallbackURL string) (*TextResult, error) {
	msg, err := s.c.SendSMS(ctx, twilio.SendSMSRequest{To: to, Body: body, StatusCallback: statusCallbackURL})
	if err != nil {
		return nil, err
	}
	return &TextResult{MessageID: msg.SID, Status: msg.Status}, nil
}

type sendGridMailer struct {
	c sendgrid.Client
}

func NewSendGridMailer(c sendgrid.Client) Mailer {
	return &sendGridMailer{c: c}
}

func (m *sendGridMailer) SendMail(ctx context.Context, toEmail, toName, subject, text string) (string, error) {
	res, err := m.c.Send(ctx, sendgrid.Message{
		ToEmail:  toEmail,
		ToName:   toName,
		Subject:  subject,
		Text:     text,
		Category: "critical-alert",
	})
	if err != nil {
		return "", err
	}
	if res.MessageID == "" {
		return "", fmt.Errorf("sendgrid accepted without message id (status %d)", res.StatusCode)
	}
	return res.MessageID, nil
}

// ErrSMSUnavailable marks SMS attempts made without provider credentials.
// SMS is never skipped; the attempt is recorded as failed.
var ErrSMSUnavailable = errors.New("sms provider not configured")

type unavailableSender struct{}

func NewUnavailableTextSender() TextSender { return unavailableSender{} }

func (unavailableSender) SendText(ctx context.Context, to, body, statusCallbackURL string) (*TextResult, error) {
	return nil, ErrSMSUnavailable
}
